package handlers

import (
	"context"

	"github.com/futig/medwatch-backend/internal/entity"
	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
)

// HandlerStateCallback is the pseudo state that receives every button click
const HandlerStateCallback = "CALLBACK"

// Message is a text, voice or button update reduced to what handlers use.
// CallbackData and CallbackID are set for button clicks only.
type Message struct {
	ChatID       int64
	UserID       int64
	MessageID    int
	Text         string
	Voice        *tgbotapi.Voice
	CallbackData string
	CallbackID   string
}

// Handler serves the updates of users whose session is in one of States.
type Handler interface {
	Handle(ctx context.Context, msg *Message) error
	States() []string
}

// BaseHandler is embedded by every handler
type BaseHandler struct {
	states        []string
	messageSender *MessageSender
}

func (h *BaseHandler) States() []string {
	return h.states
}

// sendMessage returns the new message ID, or 0 if it was not delivered
func (h *BaseHandler) sendMessage(chatID int64, text string, markup any) int {
	if h.messageSender == nil {
		return 0
	}
	id, _ := h.messageSender.Send(chatID, text, markup)
	return id
}

// Submitted and cancelled sessions are deliberately absent: the bot answers
// them without a handler.
var routableStates = map[string]bool{
	HandlerStateCallback:                      true,
	string(entity.SessionStatusInProgress):    true,
	string(entity.SessionStatusQuestionsDone): true,
	string(entity.SessionStatusReviewed):      true,
}

// IsValidState reports whether a handler may be registered for state
func IsValidState(state string) bool {
	return routableStates[state]
}
