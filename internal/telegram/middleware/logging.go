package middleware

import (
	"time"

	"github.com/futig/medwatch-backend/internal/pkg/metrics"
	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"go.uber.org/zap"
)

type LoggingMiddleware struct {
	logger *zap.Logger
}

func NewLoggingMiddleware(logger *zap.Logger) *LoggingMiddleware {
	return &LoggingMiddleware{logger: logger}
}

// Handle logs the update around next and counts it as processed.
func (m *LoggingMiddleware) Handle(update tgbotapi.Update, next func(tgbotapi.Update)) {
	start := time.Now()
	kind := updateType(update)

	src, _ := originOf(update)
	fields := append(src.fields(),
		zap.String("type", kind),
		zap.Int("update_id", update.UpdateID),
	)
	m.logger.Debug("telegram update received", fields...)

	next(update)

	metrics.TelegramUpdates.WithLabelValues(kind, "processed").Inc()
	m.logger.Info("telegram update processed", append(fields, zap.Duration("duration", time.Since(start)))...)
}
