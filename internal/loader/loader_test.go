package loader

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jonesrussell/north-cloud/project-ingestor/internal/adapter"
	"github.com/jonesrussell/north-cloud/project-ingestor/internal/logger"
	"github.com/jonesrussell/north-cloud/project-ingestor/internal/models"
	"github.com/jonesrussell/north-cloud/project-ingestor/internal/repository"
)

type fakeStore struct {
	upserted []string
	batches  [][]*models.Project
	failIDs  map[string]bool
}

func (s *fakeStore) Upsert(_ context.Context, p *models.Project) error {
	if s.failIDs[p.ProjectID] {
		return errors.New("constraint violation")
	}
	s.upserted = append(s.upserted, p.ProjectID)
	return nil
}

func (s *fakeStore) UpsertBatch(_ context.Context, projects []*models.Project) (*repository.BatchResult, error) {
	s.batches = append(s.batches, projects)
	result := &repository.BatchResult{}
	for _, p := range projects {
		if s.failIDs[p.ProjectID] {
			result.Failed++
		} else {
			result.Succeeded++
		}
	}
	return result, nil
}

func TestLoadBatchMode(t *testing.T) {
	store := &fakeStore{}
	spec, ok := adapter.Lookup("ngo")
	require.True(t, ok)

	summary, err := New(store, logger.NewNop()).Load(context.Background(), spec, []adapter.RawRecord{
		{"id": "n-1", "title": "One"},
		{"title": "no id, skipped"},
		{"id": "n-2", "title": "Two"},
	})
	require.NoError(t, err)

	assert.Equal(t, 3, summary.Total)
	assert.Equal(t, 2, summary.Succeeded)
	assert.Equal(t, 1, summary.Skipped)
	assert.Equal(t, 0, summary.Failed)

	require.Len(t, store.batches, 1, "batch sources go through UpsertBatch")
	assert.Empty(t, store.upserted)
}

func TestLoadPerRecordModeContinuesPastFailures(t *testing.T) {
	store := &fakeStore{failIDs: map[string]bool{"u-2": true}}
	spec, ok := adapter.Lookup("undp")
	require.True(t, ok)
	require.True(t, spec.CommitPerRecord)

	summary, err := New(store, logger.NewNop()).Load(context.Background(), spec, []adapter.RawRecord{
		{"project_id": "u-1"},
		{"project_id": "u-2"},
		{"project_id": "u-3"},
	})
	require.NoError(t, err)

	assert.Equal(t, 2, summary.Succeeded)
	assert.Equal(t, 1, summary.Failed)
	assert.Equal(t, []string{"u-1", "u-3"}, store.upserted)
	assert.Empty(t, store.batches)
}

func TestLoadEmptyInput(t *testing.T) {
	store := &fakeStore{}
	spec, _ := adapter.Lookup("nih")

	summary, err := New(store, logger.NewNop()).Load(context.Background(), spec, nil)
	require.NoError(t, err)
	assert.Equal(t, 0, summary.Total)
	assert.Equal(t, 0, summary.Succeeded)
}
