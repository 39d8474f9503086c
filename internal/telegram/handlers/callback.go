package handlers

import (
	"context"
	"errors"
	"fmt"

	"github.com/futig/medwatch-backend/internal/entity"
	"github.com/futig/medwatch-backend/internal/pkg/logger"
	"github.com/futig/medwatch-backend/internal/telegram/keyboard"
	"github.com/futig/medwatch-backend/internal/telegram/render"
	"github.com/futig/medwatch-backend/internal/telegram/state"
	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/grpc-ecosystem/go-grpc-middleware/logging/zap/ctxzap"
	"go.uber.org/zap"
)

// CallbackHandler handles all callback button clicks
type CallbackHandler struct {
	BaseHandler
	bot          BotAPI
	stateManager *state.Manager
	reportUC     ReportUsecase
	keyboard     *keyboard.Builder
}

// NewCallbackHandler creates a new callback handler
func NewCallbackHandler(
	bot BotAPI,
	stateManager *state.Manager,
	reportUC ReportUsecase,
	kb *keyboard.Builder,
	logger *zap.Logger,
) *CallbackHandler {
	return &CallbackHandler{
		BaseHandler: BaseHandler{
			states:        []string{HandlerStateCallback},
			messageSender: NewMessageSender(bot, logger),
		},
		bot:          bot,
		stateManager: stateManager,
		reportUC:     reportUC,
		keyboard:     kb,
	}
}

// Handle routes callback queries to appropriate actions
func (h *CallbackHandler) Handle(ctx context.Context, msg *Message) error {
	data, err := keyboard.ParseCallback(msg.CallbackData)
	if err != nil {
		return fmt.Errorf("parse callback: %w", err)
	}

	ctxzap.Info(ctx, "handling callback",
		zap.String("action", data.Action),
		zap.String("value", data.Value),
		zap.Int64("user_id", msg.UserID),
	)

	switch data.Action {
	case keyboard.PrefixAction:
		return h.handleAction(ctx, msg, data.Value)
	case keyboard.PrefixDownload:
		return h.handleDownload(ctx, msg, data.Value)
	case keyboard.PrefixConfirm:
		return h.handleConfirmation(ctx, msg, data.Value)
	default:
		ctxzap.Warn(ctx, "unknown callback action",
			zap.String("action", data.Action),
		)
		return fmt.Errorf("unknown action: %s", data.Action)
	}
}

// handleAction handles general actions
func (h *CallbackHandler) handleAction(ctx context.Context, msg *Message, value string) error {
	switch value {
	case keyboard.ActionStart:
		return h.handleStart(ctx, msg)
	case keyboard.ActionReview:
		return h.handleReview(ctx, msg)
	case keyboard.ActionSubmit:
		return h.handleSubmit(ctx, msg)
	default:
		return fmt.Errorf("unknown action value: %s", value)
	}
}

// handleStart opens a new report session and asks the first question
func (h *CallbackHandler) handleStart(ctx context.Context, msg *Message) error {
	// A fresh start abandons the session the user was working on
	if previous, err := h.stateManager.GetSession(ctx, msg.UserID); err == nil && previous.SessionID != "" {
		if _, err := h.reportUC.CancelSession(ctx, previous.SessionID); err != nil &&
			!errors.Is(err, entity.ErrSessionSubmitted) && !errors.Is(err, entity.ErrSessionNotFound) {
			ctxzap.Warn(ctx, "failed to cancel previous session",
				zap.Error(err),
				zap.String("session_id", previous.SessionID),
			)
		}
	}

	turn, err := h.reportUC.StartSession(ctx)
	if err != nil {
		h.HandleError(ctx, msg.ChatID, err)
		return nil
	}
	ctx = logger.WithSession(ctx, turn.SessionID)

	if err := h.stateManager.BindSession(ctx, msg.UserID, turn.SessionID); err != nil {
		return fmt.Errorf("bind session: %w", err)
	}

	h.messageSender.ClearKeyboard(msg.ChatID, msg.MessageID)
	h.sendMessage(msg.ChatID, render.RenderTurn(turn, h.reportUC.Questionnaire().Count), nil)

	ctxzap.Info(ctx, "report session started", zap.Int64("user_id", msg.UserID))
	return nil
}

// handleReview generates the pre-submission review
func (h *CallbackHandler) handleReview(ctx context.Context, msg *Message) error {
	sessionID, ok := h.boundSession(ctx, msg)
	if !ok {
		return nil
	}

	h.sendMessage(msg.ChatID, render.MsgReviewing, nil)

	stopTyping := showChatAction(ctx, h.bot, msg.ChatID, tgbotapi.ChatTyping)
	defer stopTyping()

	session, err := h.reportUC.ReviewReport(ctx, sessionID)
	if err != nil {
		h.HandleError(ctx, msg.ChatID, err)
		return nil
	}

	messageID := h.sendMessage(msg.ChatID, render.RenderReview(session.Review), h.keyboard.ReviewedKeyboard())
	replaceKeyboard(ctx, h.stateManager, h.messageSender, msg, messageID)

	return nil
}

// handleSubmit persists the reviewed report and releases the user
func (h *CallbackHandler) handleSubmit(ctx context.Context, msg *Message) error {
	sessionID, ok := h.boundSession(ctx, msg)
	if !ok {
		return nil
	}

	result, err := h.reportUC.SubmitReport(ctx, sessionID, &entity.SubmitReportRequest{})
	if err != nil {
		h.HandleError(ctx, msg.ChatID, err)
		return nil
	}

	h.messageSender.ClearKeyboard(msg.ChatID, msg.MessageID)
	if _, err := h.messageSender.SendReliably(ctx, msg.ChatID, render.RenderSubmitted(result.ReportID), nil); err != nil {
		ctxzap.Error(ctx, "submission confirmation not delivered",
			zap.Error(err),
			zap.String("report_id", result.ReportID),
		)
	}

	if err := h.stateManager.DeleteSession(ctx, msg.UserID); err != nil {
		ctxzap.Error(ctx, "failed to delete telegram session",
			zap.Error(err),
			zap.Int64("user_id", msg.UserID),
		)
	}

	return nil
}

// handleDownload sends the current report as a file
func (h *CallbackHandler) handleDownload(ctx context.Context, msg *Message, value string) error {
	format := entity.ResultFormat(value)
	if !format.IsValid() {
		return fmt.Errorf("unknown download format: %s", value)
	}

	sessionID, ok := h.boundSession(ctx, msg)
	if !ok {
		return nil
	}

	stopUpload := showChatAction(ctx, h.bot, msg.ChatID, tgbotapi.ChatUploadDocument)
	defer stopUpload()

	report, err := h.reportUC.ExportReport(ctx, sessionID, format)
	if err != nil {
		h.HandleError(ctx, msg.ChatID, err)
		return nil
	}

	if err := h.messageSender.SendDocument(msg.ChatID, report.Filename, report.Content); err != nil {
		h.HandleError(ctx, msg.ChatID, err)
	}

	return nil
}

// handleConfirmation resolves the /cancel confirmation prompt
func (h *CallbackHandler) handleConfirmation(ctx context.Context, msg *Message, value string) error {
	sessionID, ok := h.boundSession(ctx, msg)
	if !ok {
		return nil
	}

	h.messageSender.ClearKeyboard(msg.ChatID, msg.MessageID)

	switch value {
	case keyboard.ConfirmCancel:
		return CancelReport(ctx, h.stateManager, h.reportUC, h.messageSender, sessionID, msg.UserID, msg.ChatID)
	case keyboard.ConfirmProceed:
		err := h.stateManager.UpdateStateData(ctx, msg.UserID, func(d *state.StateData) { d.PendingConfirmation = "" })
		if err != nil {
			return fmt.Errorf("clear pending confirmation: %w", err)
		}
		h.sendMessage(msg.ChatID, render.MsgCancelAborted, nil)
		return nil
	default:
		return fmt.Errorf("unknown confirmation: %s", value)
	}
}

// boundSession returns the report session the user works on, telling them when there is none
func (h *CallbackHandler) boundSession(ctx context.Context, msg *Message) (string, bool) {
	telegramSession, err := h.stateManager.GetSession(ctx, msg.UserID)
	if err != nil || telegramSession.SessionID == "" {
		if err != nil && !errors.Is(err, state.ErrNotFound) {
			ctxzap.Error(ctx, "failed to get telegram session", zap.Error(err))
		}
		h.sendMessage(msg.ChatID, render.MsgNoSession, nil)
		return "", false
	}

	return telegramSession.SessionID, true
}

// CancelReport cancels the report session and forgets the user mapping
func CancelReport(
	ctx context.Context,
	sm *state.Manager,
	reportUC ReportUsecase,
	sender *MessageSender,
	sessionID string,
	userID, chatID int64,
) error {
	if sessionID != "" {
		if _, err := reportUC.CancelSession(ctx, sessionID); err != nil {
			ctxzap.Error(ctx, "failed to cancel session",
				zap.Error(err),
				zap.String("session_id", sessionID),
			)
		}
	}

	if err := sm.DeleteSession(ctx, userID); err != nil {
		return fmt.Errorf("delete telegram session: %w", err)
	}

	// Delivery failures are logged by the sender
	_, _ = sender.Send(chatID, render.MsgSessionFinished, nil)
	return nil
}
