package repository

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/jonesrussell/north-cloud/project-ingestor/internal/logger"
	"github.com/jonesrussell/north-cloud/project-ingestor/internal/models"
)

// MatchRepository persists scored funder/researcher matches. The
// list-valued narrative fields are stored as JSON text, matching the
// profile tables.
type MatchRepository struct {
	db     *sql.DB
	logger logger.Logger
}

func NewMatchRepository(db *sql.DB, log logger.Logger) *MatchRepository {
	return &MatchRepository{db: db, logger: log}
}

// Create inserts a new pending match. The id, timestamps, and expiry are
// assigned here; the caller supplies scores and narratives.
func (r *MatchRepository) Create(ctx context.Context, m *models.Match) error {
	if m.ID == "" {
		m.ID = uuid.New().String()
	}
	now := time.Now().UTC()
	m.CreatedAt = now
	m.UpdatedAt = now
	m.ExpiresAt = now.Add(models.MatchTTL)
	if m.Status == "" {
		m.Status = models.MatchPending
	}

	reasoning, err := json.Marshal(m.Reasoning)
	if err != nil {
		return fmt.Errorf("marshal reasoning: %w", err)
	}
	barriers, err := json.Marshal(m.BarrierAnalysis)
	if err != nil {
		return fmt.Errorf("marshal barrier analysis: %w", err)
	}
	solutions, err := json.Marshal(m.SolutionProposal)
	if err != nil {
		return fmt.Errorf("marshal solution proposal: %w", err)
	}

	query := `
		INSERT INTO matches (
			id, funder_id, researcher_id, match_type, priority, status,
			impact_score, barrier_score, compatibility_score, overall_score,
			match_reasoning, barrier_analysis, solution_proposal,
			created_at, updated_at, expires_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16)`

	_, err = r.db.ExecContext(ctx, query,
		m.ID, m.FunderID, m.ResearcherID, m.MatchType, m.Priority, m.Status,
		m.ImpactScore, m.BarrierScore, m.CompatibilityScore, m.OverallScore,
		string(reasoning), string(barriers), string(solutions),
		m.CreatedAt, m.UpdatedAt, m.ExpiresAt,
	)
	if err != nil {
		return fmt.Errorf("create match: %w", err)
	}
	return nil
}

// ListPending returns pending matches oldest-first, capped at limit. Used
// by score maintenance, which re-reads both profiles per match.
func (r *MatchRepository) ListPending(ctx context.Context, limit int) ([]*models.Match, error) {
	query := `
		SELECT id, funder_id, researcher_id, match_type, priority, status,
		       impact_score, barrier_score, compatibility_score, overall_score,
		       created_at, updated_at, expires_at
		FROM matches
		WHERE status = $1
		ORDER BY created_at ASC
		LIMIT $2`

	rows, err := r.db.QueryContext(ctx, query, models.MatchPending, limit)
	if err != nil {
		return nil, fmt.Errorf("list pending matches: %w", err)
	}
	defer rows.Close()

	var matches []*models.Match
	for rows.Next() {
		m := &models.Match{}
		scanErr := rows.Scan(
			&m.ID, &m.FunderID, &m.ResearcherID, &m.MatchType, &m.Priority, &m.Status,
			&m.ImpactScore, &m.BarrierScore, &m.CompatibilityScore, &m.OverallScore,
			&m.CreatedAt, &m.UpdatedAt, &m.ExpiresAt,
		)
		if scanErr != nil {
			return nil, fmt.Errorf("scan match: %w", scanErr)
		}
		matches = append(matches, m)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("list pending matches: %w", err)
	}
	return matches, nil
}

// UpdateScores overwrites a match's scores and narratives after
// recomputation.
func (r *MatchRepository) UpdateScores(ctx context.Context, m *models.Match) error {
	reasoning, err := json.Marshal(m.Reasoning)
	if err != nil {
		return fmt.Errorf("marshal reasoning: %w", err)
	}
	barriers, err := json.Marshal(m.BarrierAnalysis)
	if err != nil {
		return fmt.Errorf("marshal barrier analysis: %w", err)
	}
	solutions, err := json.Marshal(m.SolutionProposal)
	if err != nil {
		return fmt.Errorf("marshal solution proposal: %w", err)
	}

	query := `
		UPDATE matches
		SET impact_score = $2, barrier_score = $3, compatibility_score = $4,
		    overall_score = $5, match_reasoning = $6, barrier_analysis = $7,
		    solution_proposal = $8, updated_at = NOW()
		WHERE id = $1`

	_, err = r.db.ExecContext(ctx, query,
		m.ID, m.ImpactScore, m.BarrierScore, m.CompatibilityScore, m.OverallScore,
		string(reasoning), string(barriers), string(solutions),
	)
	if err != nil {
		return fmt.Errorf("update match scores %s: %w", m.ID, err)
	}
	return nil
}

// ExistsForPair reports whether a match already links this funder and
// researcher for the given type.
func (r *MatchRepository) ExistsForPair(ctx context.Context, funderID, researcherID int64, matchType string) (bool, error) {
	query := `
		SELECT EXISTS (
			SELECT 1 FROM matches
			WHERE funder_id = $1 AND researcher_id = $2 AND match_type = $3
		)`

	var exists bool
	if err := r.db.QueryRowContext(ctx, query, funderID, researcherID, matchType).Scan(&exists); err != nil {
		return false, fmt.Errorf("check match pair: %w", err)
	}
	return exists, nil
}

// UpdateStatus moves a match through its lifecycle.
func (r *MatchRepository) UpdateStatus(ctx context.Context, id, status string) error {
	query := `UPDATE matches SET status = $2, updated_at = NOW() WHERE id = $1`

	result, err := r.db.ExecContext(ctx, query, id, status)
	if err != nil {
		return fmt.Errorf("update match status %s: %w", id, err)
	}
	if affected, raErr := result.RowsAffected(); raErr == nil && affected == 0 {
		return fmt.Errorf("update match status %s: not found", id)
	}
	return nil
}

// ExpireOld marks pending matches past their expiry as expired and returns
// how many were touched.
func (r *MatchRepository) ExpireOld(ctx context.Context) (int64, error) {
	query := `
		UPDATE matches
		SET status = $1, updated_at = NOW()
		WHERE status = $2 AND expires_at < NOW()`

	result, err := r.db.ExecContext(ctx, query, models.MatchExpired, models.MatchPending)
	if err != nil {
		return 0, fmt.Errorf("expire matches: %w", err)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("expire matches: %w", err)
	}

	if affected > 0 {
		r.logger.Info("Expired stale matches", logger.Int64("count", affected))
	}
	return affected, nil
}
