package matching

import (
	"context"
	"fmt"

	"github.com/jonesrussell/north-cloud/project-ingestor/internal/logger"
)

// MaintenanceResult summarizes one score-refresh pass.
type MaintenanceResult struct {
	Updated int
	Skipped int
	Failed  int
}

const maintenanceBatchLimit = 500

// RefreshScores recomputes every pending match against the current
// profiles. Matches whose funder or researcher has disappeared are skipped;
// a failed update is logged and the pass continues.
func (s *Service) RefreshScores(ctx context.Context) (*MaintenanceResult, error) {
	matches, err := s.matches.ListPending(ctx, maintenanceBatchLimit)
	if err != nil {
		return nil, fmt.Errorf("refresh scores: %w", err)
	}

	result := &MaintenanceResult{}
	for _, match := range matches {
		funder, funderErr := s.funders.GetByID(ctx, match.FunderID)
		if funderErr != nil {
			result.Failed++
			s.logger.Warn("Score refresh failed", logger.String("match_id", match.ID), logger.Error(funderErr))
			continue
		}
		researcher, researcherErr := s.researchers.GetByID(ctx, match.ResearcherID)
		if researcherErr != nil {
			result.Failed++
			s.logger.Warn("Score refresh failed", logger.String("match_id", match.ID), logger.Error(researcherErr))
			continue
		}
		if funder == nil || researcher == nil {
			result.Skipped++
			continue
		}

		score := Compute(funder, researcher, match.MatchType)
		match.ImpactScore = score.Impact
		match.BarrierScore = score.Barrier
		match.CompatibilityScore = score.Compatibility
		match.OverallScore = score.Overall
		match.Reasoning = score.Reasoning
		match.BarrierAnalysis = score.BarrierAnalysis
		match.SolutionProposal = score.SolutionProposal

		if updateErr := s.matches.UpdateScores(ctx, match); updateErr != nil {
			result.Failed++
			s.logger.Warn("Score refresh failed", logger.String("match_id", match.ID), logger.Error(updateErr))
			continue
		}
		result.Updated++
	}

	s.logger.Info("Match scores refreshed",
		logger.Int("updated", result.Updated),
		logger.Int("skipped", result.Skipped),
		logger.Int("failed", result.Failed),
	)
	return result, nil
}

// ExpireOld marks pending matches past their expiry.
func (s *Service) ExpireOld(ctx context.Context) (int64, error) {
	return s.matches.ExpireOld(ctx)
}
