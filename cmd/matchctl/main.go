// Command matchctl operates the funder/researcher matching pipeline:
// generating recommendations, creating matches, refreshing scores, and
// expiring stale pairings.
//
// Usage:
//
//	matchctl -recommend 7 -limit 20
//	matchctl -create -funder 7 -researcher 12 -match-type mentorship
//	matchctl -score-researchers
//	matchctl -update-scores
//	matchctl -expire
package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"strings"

	"github.com/jonesrussell/north-cloud/project-ingestor/internal/bootstrap"
	"github.com/jonesrussell/north-cloud/project-ingestor/internal/config"
	"github.com/jonesrussell/north-cloud/project-ingestor/internal/events"
	"github.com/jonesrussell/north-cloud/project-ingestor/internal/matching"
	"github.com/jonesrussell/north-cloud/project-ingestor/internal/repository"
	"github.com/jonesrussell/north-cloud/project-ingestor/internal/scoring"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	var (
		configPath       = flag.String("config", config.GetConfigPath("config.yaml"), "path to config file")
		recommend        = flag.Int64("recommend", 0, "generate recommendations for a funder id")
		create           = flag.Bool("create", false, "create one match (-funder and -researcher required)")
		funderID         = flag.Int64("funder", 0, "funder id for -create")
		researcherID     = flag.Int64("researcher", 0, "researcher id for -create")
		scoreResearchers = flag.Bool("score-researchers", false, "score unscored researcher profiles")
		updateScores     = flag.Bool("update-scores", false, "recompute scores for pending matches")
		expire           = flag.Bool("expire", false, "expire pending matches past their expiry")
		matchType        = flag.String("match-type", "", "match type (funding, infrastructure, mentorship, collaboration)")
		priority         = flag.String("priority", "", "match priority")
		limit            = flag.Int("limit", 10, "page size")
		offset           = flag.Int("offset", 0, "page offset")
		minImpact        = flag.Float64("min-impact", -1, "minimum stored impact score")
		maxImpact        = flag.Float64("max-impact", -1, "maximum stored impact score")
		minBarrier       = flag.Float64("min-barrier", -1, "minimum stored barrier score")
		maxBarrier       = flag.Float64("max-barrier", -1, "maximum stored barrier score")
	)
	flag.Parse()

	app, err := bootstrap.New(*configPath)
	if err != nil {
		return err
	}
	defer app.Close()

	ctx := context.Background()

	switch {
	case *recommend > 0:
		opts := matching.RecommendOptions{
			Filters:   buildFilters(*minImpact, *maxImpact, *minBarrier, *maxBarrier),
			MatchType: *matchType,
			Priority:  *priority,
			Limit:     *limit,
			Offset:    *offset,
		}
		recs, recErr := app.Matcher.Recommend(ctx, *recommend, opts)
		if recErr != nil {
			return recErr
		}
		printRecommendations(recs)
		return nil

	case *create:
		if *funderID <= 0 || *researcherID <= 0 {
			return fmt.Errorf("-create requires -funder and -researcher")
		}
		match, createErr := app.Matcher.CreateMatch(ctx, *funderID, *researcherID, *matchType, *priority)
		if createErr != nil {
			return createErr
		}
		fmt.Printf("created match %s (overall %.2f)\n", match.ID, match.OverallScore)
		return nil

	case *scoreResearchers:
		result, scoreErr := scoring.BatchScoreResearchers(ctx, app.Researchers, app.Logger, *limit)
		if scoreErr != nil {
			return scoreErr
		}
		fmt.Printf("scored %d researchers (%d failed)\n", result.Scored, result.Failed)
		return nil

	case *updateScores:
		result, refreshErr := app.Matcher.RefreshScores(ctx)
		if refreshErr != nil {
			return refreshErr
		}
		fmt.Printf("updated %d matches (%d skipped, %d failed)\n",
			result.Updated, result.Skipped, result.Failed)
		app.Publisher.PublishAsync(events.EventMatchesScored, map[string]any{
			"updated": result.Updated,
			"skipped": result.Skipped,
			"failed":  result.Failed,
		})
		return nil

	case *expire:
		count, expireErr := app.Matcher.ExpireOld(ctx)
		if expireErr != nil {
			return expireErr
		}
		fmt.Printf("expired %d matches\n", count)
		app.Publisher.PublishAsync(events.EventMatchesExpired, map[string]any{"expired": count})
		return nil

	default:
		flag.Usage()
		return fmt.Errorf("nothing to do")
	}
}

func buildFilters(minImpact, maxImpact, minBarrier, maxBarrier float64) repository.ResearcherFilters {
	filters := repository.ResearcherFilters{}
	if minImpact >= 0 {
		filters.MinImpactScore = &minImpact
	}
	if maxImpact >= 0 {
		filters.MaxImpactScore = &maxImpact
	}
	if minBarrier >= 0 {
		filters.MinBarrierScore = &minBarrier
	}
	if maxBarrier >= 0 {
		filters.MaxBarrierScore = &maxBarrier
	}
	return filters
}

func printRecommendations(recs *matching.Recommendations) {
	fmt.Printf("%d of %d candidates recommended (has_more=%t)\n",
		len(recs.Matches), recs.TotalCount, recs.HasMore)

	for _, m := range recs.Matches {
		fmt.Printf("  researcher %-6d overall=%.2f impact=%.2f barrier=%.2f compat=%.2f\n",
			m.ResearcherID, m.OverallScore, m.ImpactScore, m.BarrierScore, m.CompatibilityScore)
		if len(m.Reasoning) > 0 {
			fmt.Printf("    %s\n", strings.Join(m.Reasoning, "; "))
		}
	}
}
