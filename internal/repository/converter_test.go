package repository

import (
	"testing"
	"time"

	"github.com/futig/medwatch-backend/internal/entity"
	"github.com/futig/medwatch-backend/internal/repository/sqlc"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgtype"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestToPgUUID(t *testing.T) {
	id := uuid.New()

	pgID, err := toPgUUID(id.String())
	require.NoError(t, err)
	assert.True(t, pgID.Valid)
	assert.Equal(t, id.String(), fromPgUUID(pgID))

	_, err = toPgUUID("not-a-uuid")
	assert.ErrorIs(t, err, entity.ErrInvalidParameter)

	assert.Empty(t, fromPgUUID(pgtype.UUID{}))
}

func TestToEntitySession(t *testing.T) {
	id := uuid.New()
	now := time.Now().UTC()

	dbSession := &sqlc.ReportSession{
		ID:             pgtype.UUID{Bytes: id, Valid: true},
		Status:         string(entity.SessionStatusReviewed),
		QuestionCursor: 56,
		Answers:        []byte(`{"question_0":"rash"}`),
		Review:         []byte(`{"consistency_check":"ok","completeness_score":"9/10"}`),
		CreatedAt:      pgtype.Timestamptz{Time: now, Valid: true},
		UpdatedAt:      pgtype.Timestamptz{Time: now, Valid: true},
	}
	dbTurns := []sqlc.SessionTurn{
		{Position: 0, Role: "user", Content: ""},
		{Position: 1, Role: "assistant", Content: "What kind of problem did you experience?"},
	}

	session, err := toEntitySession(dbSession, dbTurns)
	require.NoError(t, err)

	assert.Equal(t, id.String(), session.ID)
	assert.Equal(t, entity.SessionStatusReviewed, session.Status)
	assert.Equal(t, 56, session.Cursor)
	assert.Equal(t, map[string]string{"question_0": "rash"}, session.Answers)
	require.NotNil(t, session.Review)
	assert.Equal(t, "9/10", session.Review.CompletenessScore)
	assert.Equal(t, []entity.Turn{
		{Role: entity.RoleUser, Content: ""},
		{Role: entity.RoleAssistant, Content: "What kind of problem did you experience?"},
	}, session.Turns)
}

func TestToEntitySession_NoReview(t *testing.T) {
	session, err := toEntitySession(&sqlc.ReportSession{Status: "IN_PROGRESS"}, nil)
	require.NoError(t, err)

	assert.Nil(t, session.Review)
	assert.NotNil(t, session.Answers)
	assert.Empty(t, session.Turns)
}

func TestMarshalAnswers_Nil(t *testing.T) {
	data, err := marshalAnswers(nil)
	require.NoError(t, err)
	assert.JSONEq(t, `{}`, string(data))

	review, err := marshalReview(nil)
	require.NoError(t, err)
	assert.Nil(t, review)
}
