// Package matching scores funder/researcher pairs and generates
// recommendations from the stored profiles.
package matching

import (
	"fmt"
	"sort"
	"strings"

	"github.com/jonesrussell/north-cloud/project-ingestor/internal/models"
)

// Fixed weights for the overall score. They have always summed to 1.0.
const (
	impactWeight        = 0.4
	barrierWeight       = 0.3
	compatibilityWeight = 0.3
)

// compatibilityDenominator normalizes the factor count. It is 5.0 even
// though only four factors exist, so compatibility tops out at 0.8; the
// extra headroom is deliberate and downstream thresholds assume it.
const compatibilityDenominator = 5.0

// RecommendThreshold is the strict minimum overall score for a pair to be
// recommended. A score of exactly 0.3 does not qualify.
const RecommendThreshold = 0.3

// Score is one scored funder/researcher pairing with the narrative trail
// explaining it.
type Score struct {
	Impact           float64
	Barrier          float64
	Compatibility    float64
	Overall          float64
	Reasoning        []string
	BarrierAnalysis  []string
	SolutionProposal []string
}

// barrier kinds in the order they are evaluated; the order fixes the order
// of the analysis and proposal lists.
var barrierChecks = []struct {
	declared func(*models.Researcher) string
	analysis string
	solution string
}{
	{func(r *models.Researcher) string { return r.CurrentFundingNeeds }, "Funding needs identified", "Direct funding support"},
	{func(r *models.Researcher) string { return r.InfrastructureNeeds }, "Infrastructure needs identified", "Infrastructure support"},
	{func(r *models.Researcher) string { return r.CollaborationNeeds }, "Collaboration needs identified", "Network connections"},
	{func(r *models.Researcher) string { return r.MentorshipNeeds }, "Mentorship needs identified", "Expert guidance"},
}

// Compute scores one pair. Stored profile scores on the 0-10 scale are
// clamped into [0, 1]; compatibility counts the alignment factors that
// hold. The function is pure, so recomputing a match always yields the same
// result for the same profiles.
func Compute(funder *models.Funder, researcher *models.Researcher, matchType string) *Score {
	s := &Score{
		Impact:           clamp01(researcher.ImpactScore / 10.0),
		Barrier:          clamp01(researcher.BarrierScore / 10.0),
		Reasoning:        []string{},
		BarrierAnalysis:  []string{},
		SolutionProposal: []string{},
	}

	s.Reasoning = append(s.Reasoning,
		fmt.Sprintf("Researcher impact score: %v", researcher.ImpactScore),
		fmt.Sprintf("Researcher barrier score: %v", researcher.BarrierScore),
	)

	for _, check := range barrierChecks {
		if check.declared(researcher) != "" {
			s.BarrierAnalysis = append(s.BarrierAnalysis, check.analysis)
			s.SolutionProposal = append(s.SolutionProposal, check.solution)
		}
	}

	factors := compatibilityFactors(funder, researcher, matchType)
	s.Compatibility = clamp01(float64(len(factors)) / compatibilityDenominator)
	s.Reasoning = append(s.Reasoning, factors...)

	s.Overall = s.Impact*impactWeight + s.Barrier*barrierWeight + s.Compatibility*compatibilityWeight
	return s
}

// Recommended reports whether the score clears the recommendation
// threshold.
func (s *Score) Recommended() bool {
	return s.Overall > RecommendThreshold
}

func compatibilityFactors(funder *models.Funder, researcher *models.Researcher, matchType string) []string {
	factors := []string{}

	shared := sharedInterests(funder.ResearchInterests, researcher.ResearchInterests)
	if len(shared) > 0 {
		factors = append(factors, "Shared research interests: "+strings.Join(shared, ", "))
	}

	if funder.Country != "" && researcher.Country != "" && funder.Country == researcher.Country {
		factors = append(factors, "Geographic alignment")
	}

	if contains(models.ParseJSONList(funder.CareerStageFocus), researcher.CareerStage) {
		factors = append(factors, "Career stage alignment")
	}

	if contains(models.ParseJSONList(funder.SupportTypes), matchType) {
		factors = append(factors, "Support type alignment")
	}

	return factors
}

// sharedInterests intersects the two interest lists, sorted so the
// reasoning string is stable across runs.
func sharedInterests(funderRaw, researcherRaw string) []string {
	funderInterests := models.ParseJSONList(funderRaw)
	researcherInterests := models.ParseJSONList(researcherRaw)
	if len(funderInterests) == 0 || len(researcherInterests) == 0 {
		return nil
	}

	set := make(map[string]bool, len(funderInterests))
	for _, interest := range funderInterests {
		set[interest] = true
	}

	var shared []string
	seen := make(map[string]bool)
	for _, interest := range researcherInterests {
		if set[interest] && !seen[interest] {
			shared = append(shared, interest)
			seen[interest] = true
		}
	}
	sort.Strings(shared)
	return shared
}

func contains(list []string, value string) bool {
	for _, item := range list {
		if item == value {
			return true
		}
	}
	return false
}

func clamp01(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}
