package repository

import (
	"context"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jonesrussell/north-cloud/project-ingestor/internal/logger"
	"github.com/jonesrussell/north-cloud/project-ingestor/internal/models"
)

func TestFunderGetByID(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	repo := NewFunderRepository(db, logger.NewNop())

	rows := sqlmock.NewRows([]string{
		"id", "name", "funder_type", "country", "support_types",
		"research_interests", "career_stage_focus", "status",
	}).AddRow(
		int64(7), "Wellcome", "foundation", "UK", `["funding","mentorship"]`,
		`["genomics"]`, nil, "active",
	)

	mock.ExpectQuery("SELECT (.+) FROM funders").WithArgs(int64(7)).WillReturnRows(rows)

	f, err := repo.GetByID(context.Background(), 7)
	require.NoError(t, err)
	require.NotNil(t, f)
	assert.Equal(t, "Wellcome", f.Name)
	assert.Equal(t, []string{"funding", "mentorship"}, models.ParseJSONList(f.SupportTypes))
	assert.Equal(t, "", f.CareerStageFocus, "NULL columns read as empty strings")
}

func TestFunderGetByIDMissing(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	repo := NewFunderRepository(db, logger.NewNop())

	mock.ExpectQuery("SELECT (.+) FROM funders").
		WithArgs(int64(99)).
		WillReturnRows(sqlmock.NewRows([]string{"id"}))

	f, err := repo.GetByID(context.Background(), 99)
	require.NoError(t, err)
	assert.Nil(t, f)
}

func TestBuildResearcherWhere(t *testing.T) {
	t.Run("no filters", func(t *testing.T) {
		where, args := buildResearcherWhere(ResearcherFilters{})
		assert.Equal(t, "WHERE status = $1", where)
		assert.Equal(t, []any{models.StatusActive}, args)
	})

	t.Run("all filters", func(t *testing.T) {
		minImpact, maxImpact := 5.0, 9.0
		minBarrier, maxBarrier := 2.0, 8.0
		where, args := buildResearcherWhere(ResearcherFilters{
			MinImpactScore:  &minImpact,
			MaxImpactScore:  &maxImpact,
			MinBarrierScore: &minBarrier,
			MaxBarrierScore: &maxBarrier,
		})
		assert.Equal(t,
			"WHERE status = $1 AND impact_score >= $2 AND impact_score <= $3"+
				" AND barrier_score >= $4 AND barrier_score <= $5",
			where,
		)
		assert.Len(t, args, 5)
	})
}

func TestResearcherCountActive(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	repo := NewResearcherRepository(db, logger.NewNop())

	minImpact := 6.0
	mock.ExpectQuery(`SELECT COUNT\(\*\) FROM researchers`).
		WithArgs(models.StatusActive, 6.0).
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(42))

	count, err := repo.CountActive(context.Background(), ResearcherFilters{MinImpactScore: &minImpact})
	require.NoError(t, err)
	assert.Equal(t, 42, count)
}

func TestResearcherListActive(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	repo := NewResearcherRepository(db, logger.NewNop())

	rows := sqlmock.NewRows([]string{
		"id", "name", "country", "career_stage", "h_index", "total_citations",
		"research_interests", "current_funding_needs", "infrastructure_needs",
		"collaboration_needs", "mentorship_needs",
		"impact_score", "barrier_score", "matchability_score", "status",
	}).AddRow(
		int64(1), "Dr. Okoye", "Nigeria", "early_career", 12, 3400,
		`["malaria","genomics"]`, `["lab equipment"]`, nil, nil, nil,
		7.5, 6.0, 6.9, "active",
	)

	mock.ExpectQuery("SELECT (.+) FROM researchers (.+) ORDER BY impact_score DESC").
		WithArgs(models.StatusActive, 10, 0).
		WillReturnRows(rows)

	researchers, err := repo.ListActive(context.Background(), ResearcherFilters{}, 10, 0)
	require.NoError(t, err)
	require.Len(t, researchers, 1)
	assert.Equal(t, "Dr. Okoye", researchers[0].Name)
	assert.Equal(t, 7.5, researchers[0].ImpactScore)
	assert.Equal(t, "", researchers[0].MentorshipNeeds)
}
