// Package repository implements PostgreSQL persistence for projects,
// profiles, and matches.
package repository

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/lib/pq"

	"github.com/jonesrussell/north-cloud/project-ingestor/internal/config"
	"github.com/jonesrussell/north-cloud/project-ingestor/internal/logger"
	"github.com/jonesrussell/north-cloud/project-ingestor/internal/models"
)

const projectUpsertQuery = `
	INSERT INTO projects (
		project_id, title, description, start_date, end_date,
		funding_amount, needs_funding, country, region, project_type,
		sectors, source, source_url, updated_at
	) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, NOW())
	ON CONFLICT (project_id) DO UPDATE SET
		title = EXCLUDED.title,
		description = EXCLUDED.description,
		start_date = EXCLUDED.start_date,
		end_date = EXCLUDED.end_date,
		funding_amount = EXCLUDED.funding_amount,
		needs_funding = EXCLUDED.needs_funding,
		country = EXCLUDED.country,
		region = EXCLUDED.region,
		project_type = EXCLUDED.project_type,
		sectors = EXCLUDED.sectors,
		source = EXCLUDED.source,
		source_url = EXCLUDED.source_url,
		updated_at = NOW()`

const projectInsertQuery = `
	INSERT INTO projects (
		project_id, title, description, start_date, end_date,
		funding_amount, needs_funding, country, region, project_type,
		sectors, source, source_url, updated_at
	) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, NOW())`

// ProjectRepository writes canonical projects. The collision policy decides
// what happens when an incoming project_id already exists:
//
//	lastwrite  - overwrite every field (the default; re-ingestion refreshes)
//	error      - plain insert, the conflict surfaces as a record error
//	namespace  - prefix the key with the source so sources never collide
type ProjectRepository struct {
	db     *sql.DB
	logger logger.Logger
	policy string
}

func NewProjectRepository(db *sql.DB, log logger.Logger, policy string) *ProjectRepository {
	if policy == "" {
		policy = config.CollisionLastWrite
	}
	return &ProjectRepository{
		db:     db,
		logger: log,
		policy: policy,
	}
}

// Upsert writes one project in its own implicit transaction. Used by the
// per-record commit sources, where a crash mid-batch must not lose the
// records already processed.
func (r *ProjectRepository) Upsert(ctx context.Context, p *models.Project) error {
	if p == nil || p.ProjectID == "" {
		return fmt.Errorf("upsert project: missing project_id")
	}

	query, args := r.statement(p)
	if _, err := r.db.ExecContext(ctx, query, args...); err != nil {
		return fmt.Errorf("upsert project %s: %w", p.ProjectID, err)
	}
	return nil
}

// BatchResult summarizes one batch write.
type BatchResult struct {
	Succeeded int
	Failed    int
}

// UpsertBatch writes a batch inside one transaction, committing at the end.
// A failed record rolls back to a savepoint and the batch continues, so one
// malformed record costs one row, not the whole load. The returned error is
// non-nil only for batch-level failures (begin/commit); record-level
// failures are counted and logged.
func (r *ProjectRepository) UpsertBatch(ctx context.Context, projects []*models.Project) (*BatchResult, error) {
	result := &BatchResult{}

	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("begin batch: %w", err)
	}
	defer tx.Rollback() //nolint:errcheck // no-op after commit

	for _, p := range projects {
		if _, spErr := tx.ExecContext(ctx, "SAVEPOINT record"); spErr != nil {
			return nil, fmt.Errorf("savepoint: %w", spErr)
		}

		query, args := r.statement(p)
		if _, execErr := tx.ExecContext(ctx, query, args...); execErr != nil {
			result.Failed++
			r.logger.Warn("Record upsert failed",
				logger.String("project_id", p.ProjectID),
				logger.String("source", p.Source),
				logger.Error(execErr),
			)
			if _, rbErr := tx.ExecContext(ctx, "ROLLBACK TO SAVEPOINT record"); rbErr != nil {
				return nil, fmt.Errorf("rollback to savepoint: %w", rbErr)
			}
			continue
		}

		if _, relErr := tx.ExecContext(ctx, "RELEASE SAVEPOINT record"); relErr != nil {
			return nil, fmt.Errorf("release savepoint: %w", relErr)
		}
		result.Succeeded++
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("commit batch: %w", err)
	}
	return result, nil
}

// GetByID fetches one project by its canonical id. Returns nil when the
// project does not exist.
func (r *ProjectRepository) GetByID(ctx context.Context, projectID string) (*models.Project, error) {
	query := `
		SELECT project_id, title, description, start_date, end_date,
		       funding_amount, needs_funding, country, region, project_type,
		       sectors, source, source_url
		FROM projects
		WHERE project_id = $1`

	p := &models.Project{}
	err := r.db.QueryRowContext(ctx, query, projectID).Scan(
		&p.ProjectID, &p.Title, &p.Description, &p.StartDate, &p.EndDate,
		&p.FundingAmount, &p.NeedsFunding, &p.Country, &p.Region, &p.ProjectType,
		pq.Array(&p.Sectors), &p.Source, &p.SourceURL,
	)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get project %s: %w", projectID, err)
	}
	return p, nil
}

// CountBySource reports the stored row count per source label.
func (r *ProjectRepository) CountBySource(ctx context.Context) (map[string]int, error) {
	rows, err := r.db.QueryContext(ctx, `SELECT source, COUNT(*) FROM projects GROUP BY source`)
	if err != nil {
		return nil, fmt.Errorf("count by source: %w", err)
	}
	defer rows.Close()

	counts := make(map[string]int)
	for rows.Next() {
		var source string
		var count int
		if scanErr := rows.Scan(&source, &count); scanErr != nil {
			return nil, fmt.Errorf("scan count: %w", scanErr)
		}
		counts[source] = count
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("count by source: %w", err)
	}
	return counts, nil
}

func (r *ProjectRepository) statement(p *models.Project) (string, []any) {
	projectID := p.ProjectID
	query := projectUpsertQuery

	switch r.policy {
	case config.CollisionError:
		query = projectInsertQuery
	case config.CollisionNamespace:
		projectID = p.Source + ":" + p.ProjectID
	}

	sectors := p.Sectors
	if sectors == nil {
		sectors = []string{}
	}

	return query, []any{
		projectID, p.Title, p.Description, p.StartDate, p.EndDate,
		p.FundingAmount, p.NeedsFunding, p.Country, p.Region, p.ProjectType,
		pq.Array(sectors), p.Source, p.SourceURL,
	}
}
