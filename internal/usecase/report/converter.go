package report

import (
	"github.com/futig/medwatch-backend/internal/entity"
	"github.com/futig/medwatch-backend/internal/flow"
)

// sessionToState extracts what the engine needs from a stored session
func sessionToState(session *entity.Session) flow.State {
	return flow.State{
		Turns:   session.Turns,
		Cursor:  session.Cursor,
		Answers: session.Answers,
	}
}

func (uc *ReportUsecase) toTurnResult(session *entity.Session, result flow.Result) *entity.TurnResult {
	turn := &entity.TurnResult{
		SessionID:        session.ID,
		Response:         result.Text,
		Cursor:           session.Cursor,
		IsEndOfQuestions: result.IsEndOfQuestions,
		IntentSummary:    result.IntentSummary,
		ProductTypeHint:  result.ProductTypeHint,
		Classification:   result.Classification,
		SkippedSection:   result.SkippedSection,
		Status:           session.Status,
	}

	if question, ok := uc.questionnaire().Question(session.Cursor); ok && !result.IsEndOfQuestions {
		turn.NextQuestion = &question
	}

	return turn
}

func (uc *ReportUsecase) toSessionDTO(session *entity.Session) *entity.SessionDTO {
	answers := session.Answers
	if answers == nil {
		answers = map[string]string{}
	}
	turns := session.Turns
	if turns == nil {
		turns = []entity.Turn{}
	}

	return &entity.SessionDTO{
		ID:               session.ID,
		Status:           session.Status,
		Cursor:           session.Cursor,
		IsEndOfQuestions: session.Cursor >= uc.questionnaire().Count(),
		Answers:          answers,
		Conversation:     turns,
		Review:           session.Review,
		CreatedAt:        session.CreatedAt,
		UpdatedAt:        session.UpdatedAt,
	}
}
