package repository

import (
	"encoding/json"
	"fmt"

	"github.com/futig/medwatch-backend/internal/entity"
	"github.com/futig/medwatch-backend/internal/repository/sqlc"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgtype"
)

func toPgUUID(id string) (pgtype.UUID, error) {
	parsed, err := uuid.Parse(id)
	if err != nil {
		return pgtype.UUID{}, fmt.Errorf("invalid id %q: %w", id, entity.ErrInvalidParameter)
	}

	return pgtype.UUID{Bytes: parsed, Valid: true}, nil
}

func fromPgUUID(id pgtype.UUID) string {
	if !id.Valid {
		return ""
	}
	return uuid.UUID(id.Bytes).String()
}

func marshalAnswers(answers map[string]string) ([]byte, error) {
	if answers == nil {
		answers = map[string]string{}
	}

	data, err := json.Marshal(answers)
	if err != nil {
		return nil, fmt.Errorf("marshal answers: %w", err)
	}
	return data, nil
}

func marshalReview(review *entity.ReportReview) ([]byte, error) {
	if review == nil {
		return nil, nil
	}

	data, err := json.Marshal(review)
	if err != nil {
		return nil, fmt.Errorf("marshal review: %w", err)
	}
	return data, nil
}

func toEntitySession(dbSession *sqlc.ReportSession, dbTurns []sqlc.SessionTurn) (*entity.Session, error) {
	session := &entity.Session{
		ID:        fromPgUUID(dbSession.ID),
		Status:    entity.SessionStatus(dbSession.Status),
		Cursor:    int(dbSession.QuestionCursor),
		Answers:   map[string]string{},
		Turns:     make([]entity.Turn, 0, len(dbTurns)),
		CreatedAt: dbSession.CreatedAt.Time,
		UpdatedAt: dbSession.UpdatedAt.Time,
	}

	if len(dbSession.Answers) > 0 {
		if err := json.Unmarshal(dbSession.Answers, &session.Answers); err != nil {
			return nil, fmt.Errorf("unmarshal answers: %w", err)
		}
	}

	if len(dbSession.Review) > 0 {
		var review entity.ReportReview
		if err := json.Unmarshal(dbSession.Review, &review); err != nil {
			return nil, fmt.Errorf("unmarshal review: %w", err)
		}
		session.Review = &review
	}

	for i := range dbTurns {
		session.Turns = append(session.Turns, entity.Turn{
			Role:    entity.Role(dbTurns[i].Role),
			Content: dbTurns[i].Content,
		})
	}

	return session, nil
}

func toEntityReport(dbReport *sqlc.SubmittedReport) *entity.Report {
	return &entity.Report{
		ID:         fromPgUUID(dbReport.ID),
		SessionID:  fromPgUUID(dbReport.SessionID),
		Transcript: dbReport.Transcript,
		Review:     dbReport.Review,
		CreatedAt:  dbReport.CreatedAt.Time,
	}
}
