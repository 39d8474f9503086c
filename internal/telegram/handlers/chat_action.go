package handlers

import (
	"context"
	"sync"
	"time"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/grpc-ecosystem/go-grpc-middleware/logging/zap/ctxzap"
	"go.uber.org/zap"
)

// Telegram clears a chat action after five seconds.
var chatActionInterval = 4 * time.Second

// showChatAction keeps a chat action such as "typing" visible while a slow
// operation runs. The returned stop function is safe to call more than once.
func showChatAction(ctx context.Context, bot BotAPI, chatID int64, action string) (stop func()) {
	ctx, cancel := context.WithCancel(ctx)
	done := make(chan struct{})

	send := func() {
		if _, err := bot.Request(tgbotapi.NewChatAction(chatID, action)); err != nil {
			ctxzap.Debug(ctx, "chat action not delivered",
				zap.String("chat_action", action),
				zap.Int64("chat_id", chatID),
				zap.Error(err),
			)
		}
	}

	send()
	go func() {
		defer close(done)
		ticker := time.NewTicker(chatActionInterval)
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				send()
			}
		}
	}()

	var once sync.Once
	return func() {
		once.Do(func() {
			cancel()
			<-done
		})
	}
}
