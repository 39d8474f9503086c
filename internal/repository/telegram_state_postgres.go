package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/futig/medwatch-backend/internal/repository/sqlc"
	"github.com/futig/medwatch-backend/internal/telegram/state"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgtype"
	"github.com/jackc/pgx/v5/pgxpool"
)

var _ state.Storage = (*TelegramStatePostgres)(nil)

var emptyStateData = []byte("{}")

// TelegramStatePostgres stores which report session a Telegram user is
// answering, together with the chat UI state.
type TelegramStatePostgres struct {
	queries *sqlc.Queries
}

func NewTelegramStatePostgres(db *pgxpool.Pool) *TelegramStatePostgres {
	return &TelegramStatePostgres{queries: sqlc.New(db)}
}

func (r *TelegramStatePostgres) Get(ctx context.Context, userID int64) (*state.TelegramSession, error) {
	row, err := r.queries.GetTelegramSession(ctx, userID)
	if err != nil {
		return nil, userNotFound(err, userID)
	}
	return toTelegramSession(row.UserID, row.SessionID, row.StateData, row.CreatedAt, row.UpdatedAt), nil
}

// GetWithSession also reads the status and cursor of the bound report
// session. Both stay zero when the user has no session or it was purged.
func (r *TelegramStatePostgres) GetWithSession(ctx context.Context, userID int64) (*state.TelegramSessionWithSession, error) {
	row, err := r.queries.GetTelegramSessionWithSession(ctx, userID)
	if err != nil {
		return nil, userNotFound(err, userID)
	}

	return &state.TelegramSessionWithSession{
		TelegramSession: toTelegramSession(row.UserID, row.SessionID, row.StateData, row.TgCreatedAt, row.TgUpdatedAt),
		SessionStatus:   row.SessionStatus.String,
		Cursor:          int(row.SessionCursor.Int32),
	}, nil
}

func (r *TelegramStatePostgres) Set(ctx context.Context, ts *state.TelegramSession) error {
	params := sqlc.UpsertTelegramSessionParams{
		UserID:    ts.UserID,
		StateData: ts.StateData,
		CreatedAt: pgtype.Timestamptz{Time: ts.CreatedAt, Valid: true},
		UpdatedAt: pgtype.Timestamptz{Time: ts.UpdatedAt, Valid: true},
	}
	if len(params.StateData) == 0 {
		params.StateData = emptyStateData
	}
	// Users who pressed /start but got no session yet keep a NULL reference
	if ts.SessionID != "" {
		id, err := toPgUUID(ts.SessionID)
		if err != nil {
			return fmt.Errorf("telegram session of user %d: %w", ts.UserID, err)
		}
		params.SessionID = id
	}

	if err := r.queries.UpsertTelegramSession(ctx, params); err != nil {
		return fmt.Errorf("upsert telegram session of user %d: %w", ts.UserID, err)
	}
	return nil
}

func (r *TelegramStatePostgres) Delete(ctx context.Context, userID int64) error {
	if err := r.queries.DeleteTelegramSession(ctx, userID); err != nil {
		return fmt.Errorf("delete telegram session of user %d: %w", userID, err)
	}
	return nil
}

func userNotFound(err error, userID int64) error {
	if errors.Is(err, pgx.ErrNoRows) {
		return fmt.Errorf("telegram user %d: %w", userID, state.ErrNotFound)
	}
	return fmt.Errorf("query telegram session of user %d: %w", userID, err)
}

func toTelegramSession(userID int64, sessionID pgtype.UUID, data []byte, created, updated pgtype.Timestamptz) *state.TelegramSession {
	if len(data) == 0 {
		data = emptyStateData
	}
	return &state.TelegramSession{
		UserID:    userID,
		SessionID: fromPgUUID(sessionID),
		StateData: data,
		CreatedAt: created.Time,
		UpdatedAt: updated.Time,
	}
}
