package repository

import (
	"context"
	"errors"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jonesrussell/north-cloud/project-ingestor/internal/config"
	"github.com/jonesrussell/north-cloud/project-ingestor/internal/logger"
	"github.com/jonesrussell/north-cloud/project-ingestor/internal/models"
)

func newProject(id string) *models.Project {
	return &models.Project{
		ProjectID: id,
		Title:     "Test Project",
		Source:    "NGO",
		Sectors:   []string{"health"},
	}
}

func TestProjectUpsert(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	repo := NewProjectRepository(db, logger.NewNop(), config.CollisionLastWrite)

	mock.ExpectExec("INSERT INTO projects").
		WillReturnResult(sqlmock.NewResult(0, 1))

	require.NoError(t, repo.Upsert(context.Background(), newProject("p-1")))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestProjectUpsertRejectsEmptyID(t *testing.T) {
	db, _, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	repo := NewProjectRepository(db, logger.NewNop(), "")

	assert.Error(t, repo.Upsert(context.Background(), &models.Project{}))
	assert.Error(t, repo.Upsert(context.Background(), nil))
}

func TestProjectUpsertBatchCommitsAtEnd(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	repo := NewProjectRepository(db, logger.NewNop(), "")

	mock.ExpectBegin()
	for i := 0; i < 2; i++ {
		mock.ExpectExec("SAVEPOINT record").WillReturnResult(sqlmock.NewResult(0, 0))
		mock.ExpectExec("INSERT INTO projects").WillReturnResult(sqlmock.NewResult(0, 1))
		mock.ExpectExec("RELEASE SAVEPOINT record").WillReturnResult(sqlmock.NewResult(0, 0))
	}
	mock.ExpectCommit()

	result, err := repo.UpsertBatch(context.Background(), []*models.Project{
		newProject("p-1"), newProject("p-2"),
	})
	require.NoError(t, err)
	assert.Equal(t, 2, result.Succeeded)
	assert.Equal(t, 0, result.Failed)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestProjectUpsertBatchContinuesPastBadRecord(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	repo := NewProjectRepository(db, logger.NewNop(), "")

	mock.ExpectBegin()

	mock.ExpectExec("SAVEPOINT record").WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectExec("INSERT INTO projects").WillReturnError(errors.New("value too long"))
	mock.ExpectExec("ROLLBACK TO SAVEPOINT record").WillReturnResult(sqlmock.NewResult(0, 0))

	mock.ExpectExec("SAVEPOINT record").WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectExec("INSERT INTO projects").WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec("RELEASE SAVEPOINT record").WillReturnResult(sqlmock.NewResult(0, 0))

	mock.ExpectCommit()

	result, err := repo.UpsertBatch(context.Background(), []*models.Project{
		newProject("bad"), newProject("good"),
	})
	require.NoError(t, err)
	assert.Equal(t, 1, result.Succeeded)
	assert.Equal(t, 1, result.Failed)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestProjectCollisionPolicyError(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	repo := NewProjectRepository(db, logger.NewNop(), config.CollisionError)

	// The error policy issues a plain insert that ends at the VALUES list:
	// the statement text ends with NOW()) and carries no conflict clause, so
	// a duplicate key surfaces as a record error.
	mock.ExpectExec(`(?s)INSERT INTO projects.*NOW\(\)\)$`).
		WillReturnError(errors.New("duplicate key value violates unique constraint"))

	assert.Error(t, repo.Upsert(context.Background(), newProject("p-1")))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestProjectCollisionPolicyNamespace(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	repo := NewProjectRepository(db, logger.NewNop(), config.CollisionNamespace)

	mock.ExpectExec("INSERT INTO projects").
		WithArgs(
			"NGO:p-1", "Test Project", "", nil, nil,
			nil, false, nil, nil, nil,
			sqlmock.AnyArg(), "NGO", nil,
		).
		WillReturnResult(sqlmock.NewResult(0, 1))

	require.NoError(t, repo.Upsert(context.Background(), newProject("p-1")))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestProjectGetByIDMissing(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	repo := NewProjectRepository(db, logger.NewNop(), "")

	mock.ExpectQuery("SELECT (.+) FROM projects").
		WithArgs("nope").
		WillReturnRows(sqlmock.NewRows([]string{"project_id"}))

	p, err := repo.GetByID(context.Background(), "nope")
	require.NoError(t, err)
	assert.Nil(t, p)
}

func TestProjectCountBySource(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	repo := NewProjectRepository(db, logger.NewNop(), "")

	mock.ExpectQuery("SELECT source, COUNT").
		WillReturnRows(sqlmock.NewRows([]string{"source", "count"}).
			AddRow("UNDP", 120).
			AddRow("NIH", 45))

	counts, err := repo.CountBySource(context.Background())
	require.NoError(t, err)
	assert.Equal(t, map[string]int{"UNDP": 120, "NIH": 45}, counts)
}
