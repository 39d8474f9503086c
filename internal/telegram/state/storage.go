package state

import (
	"context"
	"encoding/json"
	"errors"
	"time"
)

// ErrNotFound means the user never started a report in this bot
var ErrNotFound = errors.New("telegram session not found")

// StateDataCurrentVersion is written with every StateData. Older payloads
// decode with their unknown fields ignored.
const StateDataCurrentVersion = 2

// TelegramSession binds a Telegram user to at most one report session.
// StateData holds the encoded StateData of the chat.
type TelegramSession struct {
	UserID    int64           `json:"user_id"`
	SessionID string          `json:"session_id,omitempty"`
	StateData json.RawMessage `json:"state_data,omitempty"`
	CreatedAt time.Time       `json:"created_at"`
	UpdatedAt time.Time       `json:"updated_at"`
}

// TelegramSessionWithSession adds the status and cursor of the bound report
// session. SessionStatus is empty when nothing is bound.
type TelegramSessionWithSession struct {
	TelegramSession *TelegramSession
	SessionStatus   string
	Cursor          int
}

// StateData is chat UI state that the report session knows nothing about
type StateData struct {
	Version int `json:"version,omitempty"`

	// LastMessageID is the bot message that still shows buttons
	LastMessageID int `json:"last_message_id,omitempty"`

	// PendingConfirmation names a destructive action awaiting a second tap
	PendingConfirmation string `json:"pending_confirmation,omitempty"`
}

// Storage persists TelegramSession rows keyed by user ID
type Storage interface {
	Get(ctx context.Context, userID int64) (*TelegramSession, error)
	GetWithSession(ctx context.Context, userID int64) (*TelegramSessionWithSession, error)
	Set(ctx context.Context, session *TelegramSession) error
	Delete(ctx context.Context, userID int64) error
}
