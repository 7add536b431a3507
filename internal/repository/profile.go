package repository

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	"github.com/jonesrussell/north-cloud/project-ingestor/internal/logger"
	"github.com/jonesrussell/north-cloud/project-ingestor/internal/models"
)

// FunderRepository reads funder profiles.
type FunderRepository struct {
	db     *sql.DB
	logger logger.Logger
}

func NewFunderRepository(db *sql.DB, log logger.Logger) *FunderRepository {
	return &FunderRepository{db: db, logger: log}
}

// GetByID fetches one funder. Returns nil when no row exists.
func (r *FunderRepository) GetByID(ctx context.Context, id int64) (*models.Funder, error) {
	query := `
		SELECT id, name, funder_type, country, support_types,
		       research_interests, career_stage_focus, status
		FROM funders
		WHERE id = $1`

	f := &models.Funder{}
	var supportTypes, interests, stageFocus sql.NullString
	err := r.db.QueryRowContext(ctx, query, id).Scan(
		&f.ID, &f.Name, &f.FunderType, &f.Country,
		&supportTypes, &interests, &stageFocus, &f.Status,
	)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get funder %d: %w", id, err)
	}

	f.SupportTypes = supportTypes.String
	f.ResearchInterests = interests.String
	f.CareerStageFocus = stageFocus.String
	return f, nil
}

// ResearcherFilters narrows candidate selection by stored score ranges. Nil
// fields are unconstrained.
type ResearcherFilters struct {
	MinImpactScore  *float64
	MaxImpactScore  *float64
	MinBarrierScore *float64
	MaxBarrierScore *float64
}

// ResearcherRepository reads researcher profiles.
type ResearcherRepository struct {
	db     *sql.DB
	logger logger.Logger
}

func NewResearcherRepository(db *sql.DB, log logger.Logger) *ResearcherRepository {
	return &ResearcherRepository{db: db, logger: log}
}

const researcherColumns = `
	id, name, country, career_stage, h_index, total_citations,
	research_interests, current_funding_needs, infrastructure_needs,
	collaboration_needs, mentorship_needs,
	impact_score, barrier_score, matchability_score, status`

// GetByID fetches one researcher. Returns nil when no row exists.
func (r *ResearcherRepository) GetByID(ctx context.Context, id int64) (*models.Researcher, error) {
	query := `SELECT ` + researcherColumns + ` FROM researchers WHERE id = $1`

	row := r.db.QueryRowContext(ctx, query, id)
	researcher, err := scanResearcher(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get researcher %d: %w", id, err)
	}
	return researcher, nil
}

// CountActive counts active researchers passing the filters. The count runs
// before any limit or offset, so pagination math sees the full candidate
// pool.
func (r *ResearcherRepository) CountActive(ctx context.Context, filters ResearcherFilters) (int, error) {
	where, args := buildResearcherWhere(filters)

	var count int
	query := `SELECT COUNT(*) FROM researchers ` + where
	if err := r.db.QueryRowContext(ctx, query, args...).Scan(&count); err != nil {
		return 0, fmt.Errorf("count researchers: %w", err)
	}
	return count, nil
}

// ListActive lists active researchers passing the filters, ordered by
// stored impact score, highest first.
func (r *ResearcherRepository) ListActive(ctx context.Context, filters ResearcherFilters, limit, offset int) ([]*models.Researcher, error) {
	where, args := buildResearcherWhere(filters)

	args = append(args, limit, offset)
	query := fmt.Sprintf(
		`SELECT %s FROM researchers %s ORDER BY impact_score DESC LIMIT $%d OFFSET $%d`,
		researcherColumns, where, len(args)-1, len(args),
	)

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list researchers: %w", err)
	}
	defer rows.Close()

	var researchers []*models.Researcher
	for rows.Next() {
		researcher, scanErr := scanResearcher(rows)
		if scanErr != nil {
			return nil, fmt.Errorf("scan researcher: %w", scanErr)
		}
		researchers = append(researchers, researcher)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("list researchers: %w", err)
	}
	return researchers, nil
}

// ListUnscored lists researchers that have never been scored, capped at
// limit. A zero stored impact score is the sentinel for "never scored".
func (r *ResearcherRepository) ListUnscored(ctx context.Context, limit int) ([]*models.Researcher, error) {
	query := `SELECT ` + researcherColumns + ` FROM researchers WHERE impact_score = 0.0 LIMIT $1`

	rows, err := r.db.QueryContext(ctx, query, limit)
	if err != nil {
		return nil, fmt.Errorf("list unscored researchers: %w", err)
	}
	defer rows.Close()

	var researchers []*models.Researcher
	for rows.Next() {
		researcher, scanErr := scanResearcher(rows)
		if scanErr != nil {
			return nil, fmt.Errorf("scan researcher: %w", scanErr)
		}
		researchers = append(researchers, researcher)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("list unscored researchers: %w", err)
	}
	return researchers, nil
}

// UpdateScores persists recomputed profile scores.
func (r *ResearcherRepository) UpdateScores(ctx context.Context, id int64, impact, barrier, matchability float64) error {
	query := `
		UPDATE researchers
		SET impact_score = $2, barrier_score = $3, matchability_score = $4,
		    updated_at = NOW()
		WHERE id = $1`

	if _, err := r.db.ExecContext(ctx, query, id, impact, barrier, matchability); err != nil {
		return fmt.Errorf("update researcher scores %d: %w", id, err)
	}
	return nil
}

func buildResearcherWhere(filters ResearcherFilters) (string, []any) {
	conditions := []string{"status = $1"}
	args := []any{models.StatusActive}

	add := func(condition string, value *float64) {
		if value == nil {
			return
		}
		args = append(args, *value)
		conditions = append(conditions, fmt.Sprintf(condition, len(args)))
	}

	add("impact_score >= $%d", filters.MinImpactScore)
	add("impact_score <= $%d", filters.MaxImpactScore)
	add("barrier_score >= $%d", filters.MinBarrierScore)
	add("barrier_score <= $%d", filters.MaxBarrierScore)

	return "WHERE " + strings.Join(conditions, " AND "), args
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanResearcher(row rowScanner) (*models.Researcher, error) {
	researcher := &models.Researcher{}
	var interests, funding, infra, collab, mentor sql.NullString

	err := row.Scan(
		&researcher.ID, &researcher.Name, &researcher.Country, &researcher.CareerStage,
		&researcher.HIndex, &researcher.TotalCitations,
		&interests, &funding, &infra, &collab, &mentor,
		&researcher.ImpactScore, &researcher.BarrierScore, &researcher.MatchabilityScore,
		&researcher.Status,
	)
	if err != nil {
		return nil, err
	}

	researcher.ResearchInterests = interests.String
	researcher.CurrentFundingNeeds = funding.String
	researcher.InfrastructureNeeds = infra.String
	researcher.CollaborationNeeds = collab.String
	researcher.MentorshipNeeds = mentor.String
	return researcher, nil
}
