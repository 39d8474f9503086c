package handlers

import (
	"context"
	"fmt"

	"github.com/futig/medwatch-backend/internal/entity"
	"github.com/futig/medwatch-backend/internal/telegram/keyboard"
	"github.com/futig/medwatch-backend/internal/telegram/render"
	"github.com/futig/medwatch-backend/internal/telegram/state"
	"go.uber.org/zap"
)

// FinishedHandler answers free text once the questionnaire is done by re-sending the actions
type FinishedHandler struct {
	BaseHandler
	stateManager *state.Manager
	reportUC     ReportUsecase
	keyboard     *keyboard.Builder
}

// NewFinishedHandler creates a handler for the QUESTIONS_DONE and REVIEWED states
func NewFinishedHandler(
	bot BotAPI,
	stateManager *state.Manager,
	reportUC ReportUsecase,
	kb *keyboard.Builder,
	logger *zap.Logger,
) *FinishedHandler {
	return &FinishedHandler{
		BaseHandler: BaseHandler{
			states: []string{
				string(entity.SessionStatusQuestionsDone),
				string(entity.SessionStatusReviewed),
			},
			messageSender: NewMessageSender(bot, logger),
		},
		stateManager: stateManager,
		reportUC:     reportUC,
		keyboard:     kb,
	}
}

// Handle implements Handler
func (h *FinishedHandler) Handle(ctx context.Context, msg *Message) error {
	telegramSession, err := h.stateManager.GetSession(ctx, msg.UserID)
	if err != nil {
		return fmt.Errorf("get telegram session: %w", err)
	}

	session, err := h.reportUC.GetSession(ctx, telegramSession.SessionID)
	if err != nil {
		h.HandleError(ctx, msg.ChatID, err)
		return nil
	}

	markup := h.keyboard.KeyboardForStatus(session.Status)
	if markup == nil {
		h.sendMessage(msg.ChatID, render.ErrInvalidState, nil)
		return nil
	}

	text := render.MsgUseButtons
	if session.Status == entity.SessionStatusReviewed {
		text = render.RenderReview(session.Review)
	}

	messageID := h.sendMessage(msg.ChatID, text, *markup)
	replaceKeyboard(ctx, h.stateManager, h.messageSender, msg, messageID)

	return nil
}
