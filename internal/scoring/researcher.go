// Package scoring derives the stored 0-10 profile scores that the matcher
// consumes.
package scoring

import (
	"context"
	"fmt"

	"github.com/jonesrussell/north-cloud/project-ingestor/internal/logger"
	"github.com/jonesrussell/north-cloud/project-ingestor/internal/models"
)

// ResearcherScores are the three persisted profile scores, all on a 0-10
// scale.
type ResearcherScores struct {
	Impact       float64
	Barrier      float64
	Matchability float64
}

// ScoreResearcher computes a researcher's profile scores from bibliometrics
// and declared needs. Impact blends h-index and citations, capped at 10;
// each declared need contributes a fixed 2.5 to the barrier score, so four
// needs saturate it.
func ScoreResearcher(r *models.Researcher) ResearcherScores {
	impact := float64(r.HIndex)*0.5 + float64(r.TotalCitations)/1000.0
	if impact > 10.0 {
		impact = 10.0
	}

	needs := 0
	for _, declared := range []string{
		r.CurrentFundingNeeds,
		r.InfrastructureNeeds,
		r.CollaborationNeeds,
		r.MentorshipNeeds,
	} {
		if declared != "" {
			needs++
		}
	}
	barrier := float64(needs) * 2.5

	return ResearcherScores{
		Impact:       impact,
		Barrier:      barrier,
		Matchability: impact*0.6 + barrier*0.4,
	}
}

// ResearcherScoreStore is the researcher access batch scoring needs.
type ResearcherScoreStore interface {
	ListUnscored(ctx context.Context, limit int) ([]*models.Researcher, error)
	UpdateScores(ctx context.Context, id int64, impact, barrier, matchability float64) error
}

// BatchResult summarizes one batch scoring pass.
type BatchResult struct {
	Scored int
	Failed int
}

const defaultBatchLimit = 50

// BatchScoreResearchers scores up to limit unscored researchers and
// persists the results, continuing past individual failures.
func BatchScoreResearchers(ctx context.Context, store ResearcherScoreStore, log logger.Logger, limit int) (*BatchResult, error) {
	if limit <= 0 {
		limit = defaultBatchLimit
	}

	researchers, err := store.ListUnscored(ctx, limit)
	if err != nil {
		return nil, fmt.Errorf("batch score researchers: %w", err)
	}

	result := &BatchResult{}
	for _, researcher := range researchers {
		scores := ScoreResearcher(researcher)
		if updateErr := store.UpdateScores(ctx, researcher.ID, scores.Impact, scores.Barrier, scores.Matchability); updateErr != nil {
			result.Failed++
			log.Warn("Researcher scoring failed",
				logger.Int64("researcher_id", researcher.ID),
				logger.Error(updateErr),
			)
			continue
		}
		result.Scored++
	}

	log.Info("Researcher batch scored",
		logger.Int("scored", result.Scored),
		logger.Int("failed", result.Failed),
	)
	return result, nil
}
