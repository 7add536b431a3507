// Package loader drives a batch of raw records through normalization and
// into the project store.
package loader

import (
	"context"

	"github.com/jonesrussell/north-cloud/project-ingestor/internal/adapter"
	"github.com/jonesrussell/north-cloud/project-ingestor/internal/logger"
	"github.com/jonesrussell/north-cloud/project-ingestor/internal/models"
	"github.com/jonesrussell/north-cloud/project-ingestor/internal/repository"
)

// ProjectStore is the slice of the repository the loader needs.
type ProjectStore interface {
	Upsert(ctx context.Context, p *models.Project) error
	UpsertBatch(ctx context.Context, projects []*models.Project) (*repository.BatchResult, error)
}

// Summary reports the outcome of one source load. Skipped counts records
// the adapter rejected (filtered out or no usable id); Failed counts
// records the store rejected. A batch always runs to the end regardless of
// either count.
type Summary struct {
	Source    string
	Total     int
	Succeeded int
	Failed    int
	Skipped   int
}

type Loader struct {
	store  ProjectStore
	logger logger.Logger
}

func New(store ProjectStore, log logger.Logger) *Loader {
	return &Loader{store: store, logger: log}
}

// Load normalizes and stores one source's records. The commit granularity
// follows the adapter: most sources commit once at end of batch, the
// streaming feeds commit per record so progress survives a crash. The
// returned error is non-nil only when the batch itself could not run;
// per-record failures land in the summary.
func (l *Loader) Load(ctx context.Context, spec *adapter.Spec, records []adapter.RawRecord) (*Summary, error) {
	summary := &Summary{Source: spec.Source, Total: len(records)}

	projects := make([]*models.Project, 0, len(records))
	for _, record := range records {
		p := spec.Normalize(record)
		if p == nil {
			summary.Skipped++
			l.logger.Debug("Record skipped by adapter", logger.String("source", spec.Source))
			continue
		}
		projects = append(projects, p)
	}

	if spec.CommitPerRecord {
		for _, p := range projects {
			if err := l.store.Upsert(ctx, p); err != nil {
				summary.Failed++
				l.logger.Warn("Record load failed",
					logger.String("source", spec.Source),
					logger.String("project_id", p.ProjectID),
					logger.Error(err),
				)
				continue
			}
			summary.Succeeded++
		}
	} else {
		result, err := l.store.UpsertBatch(ctx, projects)
		if err != nil {
			return nil, err
		}
		summary.Succeeded = result.Succeeded
		summary.Failed = result.Failed
	}

	l.logger.Info("Source load complete",
		logger.String("source", spec.Source),
		logger.Int("total", summary.Total),
		logger.Int("succeeded", summary.Succeeded),
		logger.Int("failed", summary.Failed),
		logger.Int("skipped", summary.Skipped),
	)
	return summary, nil
}
