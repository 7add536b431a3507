package matching

import (
	"context"
	"fmt"
	"sort"

	"github.com/jonesrussell/north-cloud/project-ingestor/internal/logger"
	"github.com/jonesrussell/north-cloud/project-ingestor/internal/models"
	"github.com/jonesrussell/north-cloud/project-ingestor/internal/repository"
)

// FunderSource is the funder read access the service needs.
type FunderSource interface {
	GetByID(ctx context.Context, id int64) (*models.Funder, error)
}

// ResearcherSource is the researcher read access the service needs.
type ResearcherSource interface {
	GetByID(ctx context.Context, id int64) (*models.Researcher, error)
	CountActive(ctx context.Context, filters repository.ResearcherFilters) (int, error)
	ListActive(ctx context.Context, filters repository.ResearcherFilters, limit, offset int) ([]*models.Researcher, error)
}

// MatchStore is the match persistence the service needs.
type MatchStore interface {
	Create(ctx context.Context, m *models.Match) error
	ExistsForPair(ctx context.Context, funderID, researcherID int64, matchType string) (bool, error)
	ListPending(ctx context.Context, limit int) ([]*models.Match, error)
	UpdateScores(ctx context.Context, m *models.Match) error
	ExpireOld(ctx context.Context) (int64, error)
}

// Service generates and maintains matches.
type Service struct {
	funders     FunderSource
	researchers ResearcherSource
	matches     MatchStore
	logger      logger.Logger
}

func NewService(funders FunderSource, researchers ResearcherSource, matches MatchStore, log logger.Logger) *Service {
	return &Service{
		funders:     funders,
		researchers: researchers,
		matches:     matches,
		logger:      log,
	}
}

// RecommendOptions controls candidate selection and labeling. Zero-value
// MatchType and Priority fall back to "funding" and "medium".
type RecommendOptions struct {
	Filters   repository.ResearcherFilters
	MatchType string
	Priority  string
	Limit     int
	Offset    int
}

// Recommendations is one page of generated matches. TotalCount is the full
// candidate pool before scoring, and HasMore is derived from it; a page can
// be empty while HasMore is still true when every candidate on it scored
// below threshold.
type Recommendations struct {
	Matches    []*models.Match
	TotalCount int
	HasMore    bool
}

const defaultRecommendLimit = 10

// Recommend scores the active researchers passing the filters against one
// funder and returns those above the threshold, best first. An unknown
// funder yields an empty result rather than an error. The matches are not
// persisted; CreateMatch saves a chosen pairing.
func (s *Service) Recommend(ctx context.Context, funderID int64, opts RecommendOptions) (*Recommendations, error) {
	if opts.Limit <= 0 {
		opts.Limit = defaultRecommendLimit
	}
	matchType := opts.MatchType
	if matchType == "" {
		matchType = models.MatchTypeFunding
	}
	priority := opts.Priority
	if priority == "" {
		priority = "medium"
	}

	funder, err := s.funders.GetByID(ctx, funderID)
	if err != nil {
		return nil, fmt.Errorf("recommend for funder %d: %w", funderID, err)
	}
	if funder == nil {
		s.logger.Warn("Recommendation request for unknown funder", logger.Int64("funder_id", funderID))
		return &Recommendations{Matches: []*models.Match{}}, nil
	}

	totalCount, err := s.researchers.CountActive(ctx, opts.Filters)
	if err != nil {
		return nil, fmt.Errorf("recommend for funder %d: %w", funderID, err)
	}

	candidates, err := s.researchers.ListActive(ctx, opts.Filters, opts.Limit, opts.Offset)
	if err != nil {
		return nil, fmt.Errorf("recommend for funder %d: %w", funderID, err)
	}

	matches := []*models.Match{}
	for _, researcher := range candidates {
		score := Compute(funder, researcher, matchType)
		if !score.Recommended() {
			continue
		}
		matches = append(matches, buildMatch(funderID, researcher.ID, matchType, priority, score))
	}

	sort.SliceStable(matches, func(i, j int) bool {
		return matches[i].OverallScore > matches[j].OverallScore
	})

	s.logger.Info("Recommendations generated",
		logger.Int64("funder_id", funderID),
		logger.Int("candidates", len(candidates)),
		logger.Int("recommended", len(matches)),
	)

	return &Recommendations{
		Matches:    matches,
		TotalCount: totalCount,
		HasMore:    (opts.Offset + opts.Limit) < totalCount,
	}, nil
}

// CreateMatch scores and persists one explicit pairing. Duplicate pairings
// for the same match type are rejected.
func (s *Service) CreateMatch(ctx context.Context, funderID, researcherID int64, matchType, priority string) (*models.Match, error) {
	if matchType == "" {
		matchType = models.MatchTypeFunding
	}
	if priority == "" {
		priority = "medium"
	}

	exists, err := s.matches.ExistsForPair(ctx, funderID, researcherID, matchType)
	if err != nil {
		return nil, fmt.Errorf("create match: %w", err)
	}
	if exists {
		return nil, fmt.Errorf("create match: pairing %d/%d (%s) already exists", funderID, researcherID, matchType)
	}

	funder, err := s.funders.GetByID(ctx, funderID)
	if err != nil {
		return nil, fmt.Errorf("create match: %w", err)
	}
	researcher, err := s.researchers.GetByID(ctx, researcherID)
	if err != nil {
		return nil, fmt.Errorf("create match: %w", err)
	}
	if funder == nil || researcher == nil {
		return nil, fmt.Errorf("create match: funder or researcher not found")
	}

	match := buildMatch(funderID, researcherID, matchType, priority, Compute(funder, researcher, matchType))
	if err := s.matches.Create(ctx, match); err != nil {
		return nil, err
	}
	return match, nil
}

func buildMatch(funderID, researcherID int64, matchType, priority string, score *Score) *models.Match {
	return &models.Match{
		FunderID:           funderID,
		ResearcherID:       researcherID,
		MatchType:          matchType,
		Priority:           priority,
		Status:             models.MatchPending,
		ImpactScore:        score.Impact,
		BarrierScore:       score.Barrier,
		CompatibilityScore: score.Compatibility,
		OverallScore:       score.Overall,
		Reasoning:          score.Reasoning,
		BarrierAnalysis:    score.BarrierAnalysis,
		SolutionProposal:   score.SolutionProposal,
	}
}
