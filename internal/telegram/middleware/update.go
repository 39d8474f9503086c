package middleware

import (
	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"go.uber.org/zap"
)

// origin identifies who sent an update and where replies go.
type origin struct {
	userID int64
	chatID int64
}

// originOf reports false for updates that carry neither a message nor a
// callback, and for callbacks on inline messages without a chat.
func originOf(update tgbotapi.Update) (origin, bool) {
	switch {
	case update.Message != nil && update.Message.From != nil:
		return origin{userID: update.Message.From.ID, chatID: update.Message.Chat.ID}, true
	case update.CallbackQuery != nil && update.CallbackQuery.Message != nil:
		return origin{userID: update.CallbackQuery.From.ID, chatID: update.CallbackQuery.Message.Chat.ID}, true
	default:
		return origin{}, false
	}
}

func (o origin) fields() []zap.Field {
	return []zap.Field{zap.Int64("user_id", o.userID), zap.Int64("chat_id", o.chatID)}
}

// updateType names the kind of update for logs and metrics
func updateType(update tgbotapi.Update) string {
	switch {
	case update.CallbackQuery != nil:
		return "callback"
	case update.Message == nil:
		return "other"
	case update.Message.IsCommand():
		return "command"
	case update.Message.Voice != nil:
		return "voice"
	case update.Message.Text != "":
		return "text"
	default:
		return "other"
	}
}
