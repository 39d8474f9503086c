package bot

import (
	"context"
	"errors"

	"github.com/futig/medwatch-backend/internal/pkg/logger"
	"github.com/futig/medwatch-backend/internal/telegram/handlers"
	"github.com/futig/medwatch-backend/internal/telegram/keyboard"
	"github.com/futig/medwatch-backend/internal/telegram/render"
	"github.com/futig/medwatch-backend/internal/telegram/state"
	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/grpc-ecosystem/go-grpc-middleware/logging/zap/ctxzap"
	"go.uber.org/zap"
)

const pendingCancel = "cancel"

func (b *Bot) handleUpdate(update tgbotapi.Update) {
	ctx := b.baseCtx

	switch {
	case update.CallbackQuery != nil:
		b.handleCallbackQuery(ctx, update.CallbackQuery)
	case update.Message == nil || update.Message.From == nil:
		return
	case update.Message.IsCommand():
		b.handleCommand(logger.AddFields(ctx, zap.Int64("user_id", update.Message.From.ID)), update.Message)
	default:
		b.handleMessage(logger.AddFields(ctx, zap.Int64("user_id", update.Message.From.ID)), update.Message)
	}
}

// handleMessage hands a text or voice message to the handler of the bound
// session's status.
func (b *Bot) handleMessage(ctx context.Context, message *tgbotapi.Message) {
	userID, chatID := message.From.ID, message.Chat.ID

	bound, err := b.stateManager.GetSessionWithSession(ctx, userID)
	switch {
	case errors.Is(err, state.ErrNotFound), err == nil && bound.TelegramSession.SessionID == "":
		b.reply(chatID, render.MsgNoSession)
		return
	case err != nil:
		ctxzap.Error(ctx, "failed to load telegram session", zap.Error(err))
		b.reply(chatID, render.ErrGeneric)
		return
	}
	ctx = logger.WithSession(ctx, bound.TelegramSession.SessionID)

	handler, ok := b.handlers[bound.SessionStatus]
	if !ok {
		// Submitted and cancelled sessions have no handler
		ctxzap.Info(ctx, "message for finished session", zap.String("status", bound.SessionStatus))
		b.reply(chatID, render.MsgNoSession)
		return
	}

	stateData, err := b.stateManager.GetStateData(ctx, userID)
	if err != nil {
		ctxzap.Error(ctx, "failed to load state data", zap.Error(err))
		b.reply(chatID, render.ErrGeneric)
		return
	}
	ctx = state.ContextWithStateData(ctx, stateData)

	msg := &handlers.Message{
		ChatID:    chatID,
		UserID:    userID,
		MessageID: message.MessageID,
		Text:      message.Text,
		Voice:     message.Voice,
	}
	if err := handler.Handle(ctx, msg); err != nil {
		ctxzap.Error(ctx, "handler failed", zap.Error(err), zap.String("status", bound.SessionStatus))
		b.reply(chatID, render.ErrGeneric)
	}
}

func (b *Bot) handleCommand(ctx context.Context, message *tgbotapi.Message) {
	command := message.Command()
	ctxzap.Info(ctx, "command received", zap.String("command", command))

	chatID := message.Chat.ID
	switch command {
	case "start":
		if _, err := b.sender.Send(chatID, render.MsgWelcome, b.keyboard.StartKeyboard()); err != nil {
			ctxzap.Error(ctx, "failed to send welcome message", zap.Error(err))
		}
	case "help":
		b.reply(chatID, render.MsgHelp)
	case "cancel":
		b.handleCancelCommand(ctx, message)
	default:
		b.reply(chatID, render.MsgUnknownCommand)
	}
}

// handleCancelCommand asks for confirmation first, a second /cancel confirms
func (b *Bot) handleCancelCommand(ctx context.Context, message *tgbotapi.Message) {
	userID, chatID := message.From.ID, message.Chat.ID

	telegramSession, err := b.stateManager.GetSession(ctx, userID)
	if err != nil || telegramSession.SessionID == "" {
		b.reply(chatID, render.MsgNoSession)
		return
	}

	stateData, err := b.stateManager.GetStateData(ctx, userID)
	if err != nil {
		ctxzap.Warn(ctx, "failed to load state data", zap.Error(err))
		stateData = &state.StateData{}
	}

	if stateData.PendingConfirmation == pendingCancel {
		err := handlers.CancelReport(ctx, b.stateManager, b.reportUC, b.sender, telegramSession.SessionID, userID, chatID)
		if err != nil {
			ctxzap.Error(ctx, "failed to cancel report", zap.Error(err))
			b.reply(chatID, render.ErrGeneric)
		}
		return
	}

	err = b.stateManager.UpdateStateData(ctx, userID, func(d *state.StateData) { d.PendingConfirmation = pendingCancel })
	if err != nil {
		ctxzap.Error(ctx, "failed to save pending confirmation", zap.Error(err))
	}
	if _, err := b.sender.Send(chatID, render.MsgConfirmCancel, b.keyboard.CancelConfirmKeyboard()); err != nil {
		ctxzap.Error(ctx, "failed to send cancel confirmation", zap.Error(err))
	}
}

// handleCallbackQuery answers the query at once so Telegram stops the
// spinner; results arrive as regular chat messages.
func (b *Bot) handleCallbackQuery(ctx context.Context, query *tgbotapi.CallbackQuery) {
	if query.Message == nil {
		b.answerCallback(ctx, query.ID, "")
		return
	}
	ctx = logger.AddFields(ctx, zap.Int64("user_id", query.From.ID))

	if _, err := keyboard.ParseCallback(query.Data); err != nil {
		ctxzap.Warn(ctx, "invalid callback data", zap.Error(err), zap.String("data", query.Data))
		b.answerCallback(ctx, query.ID, "❌ Invalid data")
		return
	}

	handler, ok := b.handlers[handlers.HandlerStateCallback]
	if !ok {
		ctxzap.Error(ctx, "callback handler not registered")
		b.answerCallback(ctx, query.ID, "❌ Handler not found")
		return
	}

	b.answerCallback(ctx, query.ID, "⏳ Working on it...")

	msg := &handlers.Message{
		ChatID:       query.Message.Chat.ID,
		UserID:       query.From.ID,
		MessageID:    query.Message.MessageID,
		CallbackData: query.Data,
		CallbackID:   query.ID,
	}
	if err := handler.Handle(ctx, msg); err != nil {
		ctxzap.Error(ctx, "callback handler failed", zap.Error(err))
		b.reply(msg.ChatID, render.ErrGeneric)
	}
}

// reply sends a plain message; MessageSender logs delivery failures
func (b *Bot) reply(chatID int64, text string) {
	_, _ = b.sender.Send(chatID, text, nil)
}

func (b *Bot) answerCallback(ctx context.Context, callbackID, text string) {
	if _, err := b.client.Request(tgbotapi.NewCallback(callbackID, text)); err != nil {
		ctxzap.Warn(ctx, "failed to answer callback", zap.Error(err), zap.String("callback_id", callbackID))
	}
}
