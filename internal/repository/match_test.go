package repository

import (
	"context"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jonesrussell/north-cloud/project-ingestor/internal/logger"
	"github.com/jonesrussell/north-cloud/project-ingestor/internal/models"
)

func TestMatchCreateAssignsIdentityAndExpiry(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	repo := NewMatchRepository(db, logger.NewNop())

	mock.ExpectExec("INSERT INTO matches").WillReturnResult(sqlmock.NewResult(0, 1))

	m := &models.Match{
		FunderID:     7,
		ResearcherID: 12,
		MatchType:    models.MatchTypeFunding,
		Priority:     "high",
		OverallScore: 0.62,
		Reasoning:    []string{"Strong research area alignment"},
	}
	require.NoError(t, repo.Create(context.Background(), m))

	_, parseErr := uuid.Parse(m.ID)
	assert.NoError(t, parseErr, "created matches get a generated uuid")
	assert.Equal(t, models.MatchPending, m.Status)
	assert.WithinDuration(t, m.CreatedAt.Add(models.MatchTTL), m.ExpiresAt, time.Second)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestMatchExpireOld(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	repo := NewMatchRepository(db, logger.NewNop())

	mock.ExpectExec("UPDATE matches").
		WithArgs(models.MatchExpired, models.MatchPending).
		WillReturnResult(sqlmock.NewResult(0, 3))

	count, err := repo.ExpireOld(context.Background())
	require.NoError(t, err)
	assert.Equal(t, int64(3), count)
}

func TestMatchUpdateStatusNotFound(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	repo := NewMatchRepository(db, logger.NewNop())

	mock.ExpectExec("UPDATE matches").
		WithArgs("missing", models.MatchAccepted).
		WillReturnResult(sqlmock.NewResult(0, 0))

	assert.Error(t, repo.UpdateStatus(context.Background(), "missing", models.MatchAccepted))
}

func TestMatchListPending(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	repo := NewMatchRepository(db, logger.NewNop())

	now := time.Now()
	rows := sqlmock.NewRows([]string{
		"id", "funder_id", "researcher_id", "match_type", "priority", "status",
		"impact_score", "barrier_score", "compatibility_score", "overall_score",
		"created_at", "updated_at", "expires_at",
	}).AddRow(
		"m-1", int64(7), int64(12), models.MatchTypeFunding, "high", models.MatchPending,
		0.8, 0.5, 0.4, 0.59,
		now, now, now.Add(models.MatchTTL),
	)

	mock.ExpectQuery("SELECT (.+) FROM matches").
		WithArgs(models.MatchPending, 50).
		WillReturnRows(rows)

	matches, err := repo.ListPending(context.Background(), 50)
	require.NoError(t, err)
	require.Len(t, matches, 1)
	assert.Equal(t, int64(7), matches[0].FunderID)
	assert.Equal(t, 0.59, matches[0].OverallScore)
}
