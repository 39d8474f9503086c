package handlers

import (
	"context"

	"github.com/futig/medwatch-backend/internal/telegram/state"
	"github.com/grpc-ecosystem/go-grpc-middleware/logging/zap/ctxzap"
	"go.uber.org/zap"
)

// replaceKeyboard strips the keyboard of the previous bot message and remembers the new one.
// Only the latest bot message keeps buttons, so stale clicks cannot act on an old step.
func replaceKeyboard(ctx context.Context, sm *state.Manager, sender *MessageSender, msg *Message, messageID int) {
	data, err := sm.GetStateData(ctx, msg.UserID)
	if err != nil {
		ctxzap.Warn(ctx, "failed to load state data", zap.Error(err))
		return
	}

	if data.LastMessageID != 0 && data.LastMessageID != messageID {
		sender.ClearKeyboard(msg.ChatID, data.LastMessageID)
	}
	if msg.CallbackID != "" && msg.MessageID != data.LastMessageID && msg.MessageID != messageID {
		sender.ClearKeyboard(msg.ChatID, msg.MessageID)
	}

	err = sm.UpdateStateData(ctx, msg.UserID, func(d *state.StateData) { d.LastMessageID = messageID })
	if err != nil {
		ctxzap.Warn(ctx, "failed to save last message id", zap.Error(err))
	}
}
