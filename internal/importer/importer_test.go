package importer

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"

	"github.com/jonesrussell/north-cloud/project-ingestor/internal/loader"
	"github.com/jonesrussell/north-cloud/project-ingestor/internal/logger"
	"github.com/jonesrussell/north-cloud/project-ingestor/internal/models"
	"github.com/jonesrussell/north-cloud/project-ingestor/internal/repository"
)

type recordingStore struct {
	projects []*models.Project
}

func (s *recordingStore) Upsert(_ context.Context, p *models.Project) error {
	s.projects = append(s.projects, p)
	return nil
}

func (s *recordingStore) UpsertBatch(_ context.Context, projects []*models.Project) (*repository.BatchResult, error) {
	s.projects = append(s.projects, projects...)
	return &repository.BatchResult{Succeeded: len(projects)}, nil
}

func TestRunSkipsMissingAndLoadsPresent(t *testing.T) {
	dir := t.TempDir()

	csvPath := filepath.Join(dir, "aiddata_global_projects.csv")
	require.NoError(t, os.WriteFile(csvPath, []byte(
		"project_id,title,Value\naid-1,Water Project,\"12,000\"\n",
	), 0o644))

	jsonPath := filepath.Join(dir, "ngsc_car_parks.json")
	require.NoError(t, os.WriteFile(jsonPath, []byte(`{
		"type": "FeatureCollection",
		"features": [{"properties": {"CarParkID": "cp-7", "Name": "Civic Centre"}}]
	}`), 0o644))

	store := &recordingStore{}
	imp := New(loader.New(store, logger.NewNop()), logger.NewNop(), dir)

	summaries, err := imp.Run(context.Background())
	require.NoError(t, err)

	// Two of the six registered datasets are present.
	require.Len(t, summaries, 2)
	assert.Equal(t, "AidData", summaries[0].Source)
	assert.Equal(t, "NGSC-CarParks", summaries[1].Source)

	require.Len(t, store.projects, 2)
	assert.Equal(t, "aid-1", store.projects[0].ProjectID)
	require.NotNil(t, store.projects[0].FundingAmount)
	assert.Equal(t, int64(12000), *store.projects[0].FundingAmount)
	assert.Equal(t, "cp-7", store.projects[1].ProjectID)
	assert.False(t, store.projects[1].NeedsFunding)
}

func TestRunSkipsUnreadableDataset(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(
		filepath.Join(dir, "asic_banned_orgs.csv"), []byte(""), 0o644,
	))

	store := &recordingStore{}
	imp := New(loader.New(store, logger.NewNop()), logger.NewNop(), dir)

	summaries, err := imp.Run(context.Background())
	require.NoError(t, err, "an unreadable file is skipped, not fatal")
	assert.Empty(t, summaries)
}

func TestReadXLSXRecords(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "assets.xlsx")

	f := excelize.NewFile()
	sheet := f.GetSheetName(0)
	require.NoError(t, f.SetSheetRow(sheet, "A1", &[]string{"AssetID", "Title"}))
	require.NoError(t, f.SetSheetRow(sheet, "A2", &[]string{"x-1", "Depot"}))
	require.NoError(t, f.SetSheetRow(sheet, "A3", &[]string{"x-2"}))
	require.NoError(t, f.SaveAs(path))
	require.NoError(t, f.Close())

	records, err := ReadXLSXRecords(path)
	require.NoError(t, err)
	require.Len(t, records, 2)
	assert.Equal(t, "Depot", records[0]["Title"])
	assert.Equal(t, "", records[1]["Title"], "short rows pad like the CSV reader")
}
