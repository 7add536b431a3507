// Package importer loads the ad-hoc local datasets that arrive as files
// rather than APIs: council asset registries, appliance databases, and
// similar one-off exports dropped into the data directory.
package importer

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/jonesrussell/north-cloud/project-ingestor/internal/adapter"
	"github.com/jonesrussell/north-cloud/project-ingestor/internal/fetch"
	"github.com/jonesrussell/north-cloud/project-ingestor/internal/loader"
	"github.com/jonesrussell/north-cloud/project-ingestor/internal/logger"
)

// Dataset is one known local file and the source label its rows carry.
type Dataset struct {
	File   string
	Source string
}

// Datasets is the registry of ad-hoc files the importer knows how to load.
// A missing file is skipped, not an error; the drops arrive irregularly.
var Datasets = []Dataset{
	{File: "aiddata_global_projects.csv", Source: "AidData"},
	{File: "ngsc_car_parks.json", Source: "NGSC-CarParks"},
	{File: "ngsc_asset_buildings.json", Source: "NGSC-AssetBuildings"},
	{File: "southern_grampians_garbage_zones.json", Source: "SouthernGrampiansGarbage"},
	{File: "asic_banned_orgs.csv", Source: "ASIC-BannedOrgs"},
	{File: "energy_rating_appliances.csv", Source: "EnergyRating"},
}

// Importer walks the dataset registry and loads whatever is present in the
// data directory.
type Importer struct {
	loader  *loader.Loader
	logger  logger.Logger
	dataDir string
}

func New(l *loader.Loader, log logger.Logger, dataDir string) *Importer {
	return &Importer{loader: l, logger: log, dataDir: dataDir}
}

// Run loads every registered dataset found on disk and returns the per-
// source summaries. A dataset that fails to read is logged and skipped so
// the rest of the drop still loads.
func (i *Importer) Run(ctx context.Context) ([]*loader.Summary, error) {
	var summaries []*loader.Summary

	for _, dataset := range Datasets {
		path := filepath.Join(i.dataDir, dataset.File)
		if _, err := os.Stat(path); os.IsNotExist(err) {
			i.logger.Debug("Dataset not present, skipping", logger.String("file", dataset.File))
			continue
		}

		records, spec, err := readDataset(path, dataset.Source)
		if err != nil {
			i.logger.Warn("Dataset unreadable, skipping",
				logger.String("file", dataset.File),
				logger.Error(err),
			)
			continue
		}

		summary, err := i.loader.Load(ctx, spec, records)
		if err != nil {
			return summaries, fmt.Errorf("load dataset %s: %w", dataset.Source, err)
		}
		summaries = append(summaries, summary)
	}

	return summaries, nil
}

func readDataset(path, source string) ([]adapter.RawRecord, *adapter.Spec, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".csv":
		records, err := fetch.ReadCSVRecords(path)
		return records, adapter.MiscCSV(source), err
	case ".json", ".geojson":
		records, err := fetch.ReadJSONRecords(path)
		return records, adapter.MiscJSON(source), err
	case ".xlsx":
		records, err := ReadXLSXRecords(path)
		return records, adapter.MiscCSV(source), err
	default:
		return nil, nil, fmt.Errorf("unsupported dataset format: %s", path)
	}
}
