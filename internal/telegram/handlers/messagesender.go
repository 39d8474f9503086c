package handlers

import (
	"context"
	"fmt"
	"time"

	"github.com/avast/retry-go/v4"
	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/grpc-ecosystem/go-grpc-middleware/logging/zap/ctxzap"
	"go.uber.org/zap"
)

const (
	reliableSendAttempts = 3
	reliableSendDelay    = 500 * time.Millisecond
)

// BotAPI is the part of tgbotapi.BotAPI used to talk to Telegram
type BotAPI interface {
	Send(c tgbotapi.Chattable) (tgbotapi.Message, error)
	Request(c tgbotapi.Chattable) (*tgbotapi.APIResponse, error)
}

// MessageSender sends chat messages and logs failed deliveries, so callers
// may ignore the error when there is nothing else to do.
type MessageSender struct {
	bot    BotAPI
	logger *zap.Logger
}

func NewMessageSender(bot BotAPI, logger *zap.Logger) *MessageSender {
	return &MessageSender{bot: bot, logger: logger}
}

func newTextMessage(chatID int64, text string, markup any) tgbotapi.MessageConfig {
	msg := tgbotapi.NewMessage(chatID, text)
	if markup != nil {
		msg.ReplyMarkup = markup
	}
	return msg
}

// Send returns the ID of the sent message
func (s *MessageSender) Send(chatID int64, text string, markup any) (int, error) {
	sent, err := s.bot.Send(newTextMessage(chatID, text, markup))
	if err != nil {
		s.logger.Error("failed to send message", zap.Error(err), zap.Int64("chat_id", chatID))
		return 0, err
	}
	return sent.MessageID, nil
}

// SendReliably retries with backoff. It is used for messages the user must
// not miss, like the reference of a submitted report.
func (s *MessageSender) SendReliably(ctx context.Context, chatID int64, text string, markup any) (int, error) {
	msg := newTextMessage(chatID, text, markup)
	sent, err := retry.DoWithData(
		func() (tgbotapi.Message, error) { return s.bot.Send(msg) },
		retry.Context(ctx),
		retry.Attempts(reliableSendAttempts),
		retry.Delay(reliableSendDelay),
		retry.DelayType(retry.BackOffDelay),
		retry.LastErrorOnly(true),
		retry.OnRetry(func(n uint, err error) {
			ctxzap.Warn(ctx, "message not delivered, retrying",
				zap.Error(err),
				zap.Uint("attempt", n+1),
				zap.Int64("chat_id", chatID),
			)
		}),
	)
	if err != nil {
		ctxzap.Error(ctx, "message not delivered", zap.Error(err), zap.Int64("chat_id", chatID))
		return 0, fmt.Errorf("send to chat %d: %w", chatID, err)
	}
	return sent.MessageID, nil
}

// SendDocument uploads an in-memory file to the chat
func (s *MessageSender) SendDocument(chatID int64, filename string, data []byte) error {
	doc := tgbotapi.NewDocument(chatID, tgbotapi.FileBytes{Name: filename, Bytes: data})
	if _, err := s.bot.Send(doc); err != nil {
		s.logger.Error("failed to send document",
			zap.Error(err),
			zap.Int64("chat_id", chatID),
			zap.String("filename", filename),
		)
		return fmt.Errorf("send document %s: %w", filename, err)
	}
	return nil
}

// ClearKeyboard strips the buttons of an earlier bot message. Telegram
// refuses edits of old or unchanged messages, which is not worth more than
// a debug line.
func (s *MessageSender) ClearKeyboard(chatID int64, messageID int) {
	if messageID == 0 {
		return
	}

	edit := tgbotapi.NewEditMessageReplyMarkup(chatID, messageID, tgbotapi.InlineKeyboardMarkup{
		InlineKeyboard: [][]tgbotapi.InlineKeyboardButton{},
	})
	if _, err := s.bot.Request(edit); err != nil {
		s.logger.Debug("failed to clear keyboard",
			zap.Error(err),
			zap.Int64("chat_id", chatID),
			zap.Int("message_id", messageID),
		)
	}
}
