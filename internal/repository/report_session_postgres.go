package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/futig/medwatch-backend/internal/entity"
	"github.com/futig/medwatch-backend/internal/repository/sqlc"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgtype"
	"github.com/jackc/pgx/v5/pgxpool"
)

// SessionRepository defines the interface for report session persistence
type SessionRepository interface {
	CreateSession(ctx context.Context, session *entity.Session) (*entity.Session, error)
	GetSessionByID(ctx context.Context, id string) (*entity.Session, error)
	SaveTurn(ctx context.Context, session *entity.Session, appended []entity.Turn) (*entity.Session, error)
	UpdateSessionStatus(ctx context.Context, id string, status entity.SessionStatus) (*entity.Session, error)
	UpdateSessionReview(ctx context.Context, id string, review *entity.ReportReview, status entity.SessionStatus) (
		*entity.Session, error,
	)
}

var _ SessionRepository = &SessionPostgres{}

// SessionPostgres implements SessionRepository using PostgreSQL
type SessionPostgres struct {
	db      *pgxpool.Pool
	queries *sqlc.Queries
}

func NewSessionPostgres(db *pgxpool.Pool) *SessionPostgres {
	return &SessionPostgres{
		db:      db,
		queries: sqlc.New(db),
	}
}

// CreateSession stores a new session together with its opening turns
func (r *SessionPostgres) CreateSession(ctx context.Context, session *entity.Session) (*entity.Session, error) {
	sessionID, err := toPgUUID(session.ID)
	if err != nil {
		return nil, err
	}

	answers, err := marshalAnswers(session.Answers)
	if err != nil {
		return nil, err
	}

	var created *entity.Session
	err = r.inTx(ctx, func(q *sqlc.Queries) error {
		dbSession, err := q.CreateReportSession(ctx, sqlc.CreateReportSessionParams{
			ID:             sessionID,
			Status:         string(session.Status),
			QuestionCursor: int32(session.Cursor),
			Answers:        answers,
		})
		if err != nil {
			return fmt.Errorf("create session: %w", err)
		}

		if err := insertTurns(ctx, q, sessionID, 0, session.Turns); err != nil {
			return err
		}

		created, err = toEntitySession(&dbSession, nil)
		if err != nil {
			return err
		}
		created.Turns = append(created.Turns, session.Turns...)
		return nil
	})
	if err != nil {
		return nil, err
	}

	return created, nil
}

// GetSessionByID loads a session and its full conversation log
func (r *SessionPostgres) GetSessionByID(ctx context.Context, id string) (*entity.Session, error) {
	sessionID, err := toPgUUID(id)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", entity.ErrSessionNotFound, err)
	}

	dbSession, err := r.queries.GetReportSession(ctx, sessionID)
	if err != nil {
		return nil, wrapNotFound(err, "get session")
	}

	dbTurns, err := r.queries.ListSessionTurns(ctx, sessionID)
	if err != nil {
		return nil, fmt.Errorf("list session turns: %w", err)
	}

	return toEntitySession(&dbSession, dbTurns)
}

// SaveTurn persists the progress of one turn. appended are the turns the turn
// added, they occupy the tail of session.Turns.
func (r *SessionPostgres) SaveTurn(ctx context.Context, session *entity.Session, appended []entity.Turn) (*entity.Session, error) {
	sessionID, err := toPgUUID(session.ID)
	if err != nil {
		return nil, err
	}

	if len(appended) > len(session.Turns) {
		return nil, fmt.Errorf("appended %d turns to a log of %d: %w", len(appended), len(session.Turns), entity.ErrInvalidParameter)
	}

	answers, err := marshalAnswers(session.Answers)
	if err != nil {
		return nil, err
	}

	var saved *entity.Session
	err = r.inTx(ctx, func(q *sqlc.Queries) error {
		dbSession, err := q.UpdateReportSessionProgress(ctx, sqlc.UpdateReportSessionProgressParams{
			ID:             sessionID,
			Status:         string(session.Status),
			QuestionCursor: int32(session.Cursor),
			Answers:        answers,
		})
		if err != nil {
			return wrapNotFound(err, "update session progress")
		}

		firstPosition := len(session.Turns) - len(appended)
		if err := insertTurns(ctx, q, sessionID, firstPosition, appended); err != nil {
			return err
		}

		saved, err = toEntitySession(&dbSession, nil)
		if err != nil {
			return err
		}
		saved.Turns = append(saved.Turns, session.Turns...)
		return nil
	})
	if err != nil {
		return nil, err
	}

	return saved, nil
}

func (r *SessionPostgres) UpdateSessionStatus(ctx context.Context, id string, status entity.SessionStatus) (*entity.Session, error) {
	sessionID, err := toPgUUID(id)
	if err != nil {
		return nil, err
	}

	dbSession, err := r.queries.UpdateReportSessionStatus(ctx, sqlc.UpdateReportSessionStatusParams{
		ID:     sessionID,
		Status: string(status),
	})
	if err != nil {
		return nil, wrapNotFound(err, "update session status")
	}

	return r.withTurns(ctx, &dbSession)
}

func (r *SessionPostgres) UpdateSessionReview(
	ctx context.Context,
	id string,
	review *entity.ReportReview,
	status entity.SessionStatus,
) (*entity.Session, error) {
	sessionID, err := toPgUUID(id)
	if err != nil {
		return nil, err
	}

	reviewData, err := marshalReview(review)
	if err != nil {
		return nil, err
	}

	dbSession, err := r.queries.UpdateReportSessionReview(ctx, sqlc.UpdateReportSessionReviewParams{
		ID:     sessionID,
		Review: reviewData,
		Status: string(status),
	})
	if err != nil {
		return nil, wrapNotFound(err, "update session review")
	}

	return r.withTurns(ctx, &dbSession)
}

func (r *SessionPostgres) withTurns(ctx context.Context, dbSession *sqlc.ReportSession) (*entity.Session, error) {
	dbTurns, err := r.queries.ListSessionTurns(ctx, dbSession.ID)
	if err != nil {
		return nil, fmt.Errorf("list session turns: %w", err)
	}

	return toEntitySession(dbSession, dbTurns)
}

func (r *SessionPostgres) inTx(ctx context.Context, fn func(q *sqlc.Queries) error) error {
	tx, err := r.db.Begin(ctx)
	if err != nil {
		return fmt.Errorf("begin transaction: %w", err)
	}
	defer tx.Rollback(ctx) //nolint:errcheck

	if err := fn(r.queries.WithTx(tx)); err != nil {
		return err
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("commit transaction: %w", err)
	}

	return nil
}

func insertTurns(ctx context.Context, q *sqlc.Queries, sessionID pgtype.UUID, firstPosition int, turns []entity.Turn) error {
	for i, turn := range turns {
		err := q.CreateSessionTurn(ctx, sqlc.CreateSessionTurnParams{
			SessionID: sessionID,
			Position:  int32(firstPosition + i),
			Role:      string(turn.Role),
			Content:   turn.Content,
		})
		if err != nil {
			return fmt.Errorf("create session turn %d: %w", firstPosition+i, err)
		}
	}

	return nil
}

func wrapNotFound(err error, action string) error {
	if errors.Is(err, pgx.ErrNoRows) {
		return fmt.Errorf("%s: %w", action, entity.ErrSessionNotFound)
	}
	return fmt.Errorf("%s: %w", action, err)
}
