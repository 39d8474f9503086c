package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/futig/medwatch-backend/internal/entity"
	"github.com/futig/medwatch-backend/internal/repository/sqlc"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// ReportRepository defines the interface for submitted report persistence
type ReportRepository interface {
	SaveReport(ctx context.Context, report *entity.Report) (*entity.Report, error)
	GetReportBySessionID(ctx context.Context, sessionID string) (*entity.Report, error)
}

var _ ReportRepository = &ReportPostgres{}

// ReportPostgres implements ReportRepository using PostgreSQL
type ReportPostgres struct {
	db      *pgxpool.Pool
	queries *sqlc.Queries
}

func NewReportPostgres(db *pgxpool.Pool) *ReportPostgres {
	return &ReportPostgres{
		db:      db,
		queries: sqlc.New(db),
	}
}

// SaveReport inserts the report and marks its session submitted in one transaction
func (r *ReportPostgres) SaveReport(ctx context.Context, report *entity.Report) (*entity.Report, error) {
	if report.ID == "" {
		report.ID = uuid.New().String()
	}

	reportID, err := toPgUUID(report.ID)
	if err != nil {
		return nil, err
	}

	sessionID, err := toPgUUID(report.SessionID)
	if err != nil {
		return nil, err
	}

	tx, err := r.db.Begin(ctx)
	if err != nil {
		return nil, fmt.Errorf("%w: begin transaction: %w", entity.ErrPersistenceFailed, err)
	}
	defer tx.Rollback(ctx) //nolint:errcheck

	q := r.queries.WithTx(tx)

	dbReport, err := q.CreateSubmittedReport(ctx, sqlc.CreateSubmittedReportParams{
		ID:         reportID,
		SessionID:  sessionID,
		Transcript: report.Transcript,
		Review:     report.Review,
	})
	if err != nil {
		return nil, fmt.Errorf("%w: create report: %w", entity.ErrPersistenceFailed, err)
	}

	_, err = q.UpdateReportSessionStatus(ctx, sqlc.UpdateReportSessionStatusParams{
		ID:     sessionID,
		Status: string(entity.SessionStatusSubmitted),
	})
	if err != nil {
		return nil, fmt.Errorf("%w: mark session submitted: %w", entity.ErrPersistenceFailed, err)
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, fmt.Errorf("%w: commit transaction: %w", entity.ErrPersistenceFailed, err)
	}

	return toEntityReport(&dbReport), nil
}

func (r *ReportPostgres) GetReportBySessionID(ctx context.Context, sessionID string) (*entity.Report, error) {
	id, err := toPgUUID(sessionID)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", entity.ErrReportNotFound, err)
	}

	dbReport, err := r.queries.GetSubmittedReportBySessionID(ctx, id)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, entity.ErrReportNotFound
		}
		return nil, fmt.Errorf("get report: %w", err)
	}

	return toEntityReport(&dbReport), nil
}
