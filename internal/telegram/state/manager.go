package state

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"
)

type stateDataKey struct{}

// StateDataFromContext returns the StateData cached for the current update
func StateDataFromContext(ctx context.Context) (*StateData, bool) {
	data, ok := ctx.Value(stateDataKey{}).(*StateData)
	return data, ok
}

// ContextWithStateData caches data for the rest of the update so handlers
// do not reload it from storage.
func ContextWithStateData(ctx context.Context, data *StateData) context.Context {
	return context.WithValue(ctx, stateDataKey{}, data)
}

// Manager maps Telegram users to their current report session and keeps the
// chat UI state next to that mapping.
type Manager struct {
	storage Storage
	now     func() time.Time
}

func NewManager(storage Storage) *Manager {
	return &Manager{storage: storage, now: time.Now}
}

func (m *Manager) GetSession(ctx context.Context, userID int64) (*TelegramSession, error) {
	session, err := m.storage.Get(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("load telegram session of user %d: %w", userID, err)
	}
	return session, nil
}

// GetSessionWithSession also returns the status and cursor of the bound
// report session, read in the same query.
func (m *Manager) GetSessionWithSession(ctx context.Context, userID int64) (*TelegramSessionWithSession, error) {
	result, err := m.storage.GetWithSession(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("load telegram session of user %d with report: %w", userID, err)
	}
	return result, nil
}

func (m *Manager) DeleteSession(ctx context.Context, userID int64) error {
	if err := m.storage.Delete(ctx, userID); err != nil {
		return fmt.Errorf("delete telegram session of user %d: %w", userID, err)
	}
	return nil
}

// BindSession points the user at sessionID. The UI state of the previous
// session is dropped.
func (m *Manager) BindSession(ctx context.Context, userID int64, sessionID string) error {
	session, err := m.storage.Get(ctx, userID)
	if errors.Is(err, ErrNotFound) {
		session, err = &TelegramSession{UserID: userID, CreatedAt: m.now()}, nil
	}
	if err != nil {
		return fmt.Errorf("load telegram session of user %d: %w", userID, err)
	}

	session.SessionID = sessionID
	session.StateData, err = encodeStateData(&StateData{})
	if err != nil {
		return err
	}
	return m.save(ctx, session)
}

// GetStateData prefers the copy cached in ctx over storage.
func (m *Manager) GetStateData(ctx context.Context, userID int64) (*StateData, error) {
	if data, ok := StateDataFromContext(ctx); ok {
		return data, nil
	}

	session, err := m.GetSession(ctx, userID)
	if err != nil {
		return nil, err
	}
	return decodeStateData(session.StateData)
}

// UpdateStateData applies mutate to the stored state and saves it. A copy
// cached in ctx receives the same change.
func (m *Manager) UpdateStateData(ctx context.Context, userID int64, mutate func(*StateData)) error {
	session, err := m.GetSession(ctx, userID)
	if err != nil {
		return err
	}

	data, err := decodeStateData(session.StateData)
	if err != nil {
		return err
	}
	mutate(data)

	if session.StateData, err = encodeStateData(data); err != nil {
		return err
	}
	if err := m.save(ctx, session); err != nil {
		return err
	}

	if cached, ok := StateDataFromContext(ctx); ok {
		mutate(cached)
	}
	return nil
}

func (m *Manager) save(ctx context.Context, session *TelegramSession) error {
	session.UpdatedAt = m.now()
	if err := m.storage.Set(ctx, session); err != nil {
		return fmt.Errorf("save telegram session of user %d: %w", session.UserID, err)
	}
	return nil
}

func encodeStateData(data *StateData) (json.RawMessage, error) {
	data.Version = StateDataCurrentVersion
	raw, err := json.Marshal(data)
	if err != nil {
		return nil, fmt.Errorf("encode state data: %w", err)
	}
	return raw, nil
}

// decodeStateData accepts older versions, which only lack fields.
func decodeStateData(raw json.RawMessage) (*StateData, error) {
	data := &StateData{}
	if len(raw) > 0 {
		if err := json.Unmarshal(raw, data); err != nil {
			return nil, fmt.Errorf("decode state data: %w", err)
		}
	}
	data.Version = StateDataCurrentVersion
	return data, nil
}
