package middleware

import (
	"runtime/debug"

	"github.com/futig/medwatch-backend/internal/pkg/metrics"
	"github.com/futig/medwatch-backend/internal/telegram/render"
	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"go.uber.org/zap"
)

// RecoveryMiddleware turns a handler panic into a generic apology so one
// broken update does not take the update loop down.
type RecoveryMiddleware struct {
	logger *zap.Logger
	bot    Sender
}

func NewRecoveryMiddleware(logger *zap.Logger, bot Sender) *RecoveryMiddleware {
	return &RecoveryMiddleware{logger: logger, bot: bot}
}

func (m *RecoveryMiddleware) Handle(update tgbotapi.Update, next func(tgbotapi.Update)) {
	defer func() {
		r := recover()
		if r == nil {
			return
		}
		metrics.TelegramUpdates.WithLabelValues(updateType(update), "panic").Inc()

		src, ok := originOf(update)
		m.logger.Error("panic recovered in telegram handler", append(src.fields(),
			zap.Any("panic", r),
			zap.ByteString("stack", debug.Stack()),
			zap.Int("update_id", update.UpdateID),
		)...)

		if !ok {
			return
		}
		if _, err := m.bot.Send(tgbotapi.NewMessage(src.chatID, render.ErrGeneric)); err != nil {
			m.logger.Error("failed to send error message", append(src.fields(), zap.Error(err))...)
		}
	}()

	next(update)
}
