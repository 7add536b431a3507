package scoring

import (
	"strings"

	"github.com/cloudflare/ahocorasick"
)

var noveltyKeywords = []string{
	"novel", "new", "innovative", "breakthrough", "first", "pioneering",
	"revolutionary", "groundbreaking", "state-of-the-art", "cutting-edge",
}

var societalKeywords = []string{
	"society", "social", "human", "health", "environment", "climate",
	"sustainability", "equity", "justice", "poverty", "education",
	"disaster", "crisis", "global", "world", "community",
}

var (
	fundingKeywords        = []string{"funding", "grant", "financial", "budget", "cost", "expensive"}
	infrastructureKeywords = []string{"infrastructure", "equipment", "facility", "computing", "server"}
	collaborationKeywords  = []string{"collaboration", "partnership", "team", "network", "consortium"}
)

// fieldKeywords maps a research field label to the keywords that imply it.
var fieldKeywords = []struct {
	field    string
	keywords []string
}{
	{"Artificial Intelligence", []string{"artificial intelligence", "ai", "machine learning", "ml", "deep learning"}},
	{"Computer Vision", []string{"computer vision", "image processing", "object detection", "cv", "visual"}},
	{"Natural Language Processing", []string{"natural language", "nlp", "text processing", "language model", "transformer"}},
	{"Robotics", []string{"robotics", "robot", "autonomous", "control systems", "automation"}},
	{"Data Science", []string{"data science", "big data", "analytics", "data mining", "statistics"}},
	{"Cybersecurity", []string{"cybersecurity", "security", "privacy", "encryption", "malware"}},
	{"Bioinformatics", []string{"bioinformatics", "genomics", "protein", "dna", "biological"}},
	{"Climate Science", []string{"climate", "environmental", "sustainability", "carbon", "green"}},
	{"Healthcare", []string{"healthcare", "medical", "clinical", "health", "medicine"}},
	{"Economics", []string{"economics", "financial", "market", "economy", "finance"}},
}

// TextScorer scores free text (titles, abstracts) with keyword heuristics.
// The matchers are compiled once; a scorer is safe for concurrent use.
type TextScorer struct {
	novelty        *ahocorasick.Matcher
	societal       *ahocorasick.Matcher
	funding        *ahocorasick.Matcher
	infrastructure *ahocorasick.Matcher
	collaboration  *ahocorasick.Matcher
	fields         []*ahocorasick.Matcher
}

func NewTextScorer() *TextScorer {
	s := &TextScorer{
		novelty:        ahocorasick.NewStringMatcher(noveltyKeywords),
		societal:       ahocorasick.NewStringMatcher(societalKeywords),
		funding:        ahocorasick.NewStringMatcher(fundingKeywords),
		infrastructure: ahocorasick.NewStringMatcher(infrastructureKeywords),
		collaboration:  ahocorasick.NewStringMatcher(collaborationKeywords),
	}
	for _, entry := range fieldKeywords {
		s.fields = append(s.fields, ahocorasick.NewStringMatcher(entry.keywords))
	}
	return s
}

func (s *TextScorer) distinctHits(m *ahocorasick.Matcher, text string) int {
	return len(m.Match([]byte(strings.ToLower(text))))
}

// NoveltyScore starts every text at 5.0 and adds a point per distinct
// novelty keyword, capped at 10.
func (s *TextScorer) NoveltyScore(text string) float64 {
	score := 5.0 + float64(s.distinctHits(s.novelty, text))
	if score > 10.0 {
		return 10.0
	}
	return score
}

// SocietalImpactScore starts at 5.0 and adds half a point per distinct
// societal keyword, capped at 10.
func (s *TextScorer) SocietalImpactScore(text string) float64 {
	score := 5.0 + float64(s.distinctHits(s.societal, text))*0.5
	if score > 10.0 {
		return 10.0
	}
	return score
}

// BarrierFindings are the barriers detected in a text, one category per
// keyword family. The score is two points per detected category, capped at
// 10.
type BarrierFindings struct {
	FundingLimitations  []string
	InfrastructureNeeds []string
	CollaborationNeeds  []string
	BarrierScore        float64
}

// DetectBarriers scans a text for the three barrier keyword families.
func (s *TextScorer) DetectBarriers(text string) BarrierFindings {
	findings := BarrierFindings{
		FundingLimitations:  []string{},
		InfrastructureNeeds: []string{},
		CollaborationNeeds:  []string{},
	}

	categories := 0
	if s.distinctHits(s.funding, text) > 0 {
		findings.FundingLimitations = append(findings.FundingLimitations, "Funding needs mentioned")
		categories++
	}
	if s.distinctHits(s.infrastructure, text) > 0 {
		findings.InfrastructureNeeds = append(findings.InfrastructureNeeds, "Infrastructure needs mentioned")
		categories++
	}
	if s.distinctHits(s.collaboration, text) > 0 {
		findings.CollaborationNeeds = append(findings.CollaborationNeeds, "Collaboration needs mentioned")
		categories++
	}

	findings.BarrierScore = float64(categories) * 2.0
	if findings.BarrierScore > 10.0 {
		findings.BarrierScore = 10.0
	}
	return findings
}

// ResearchFields labels a text with the research fields whose keyword
// families it mentions, in the fixed field order.
func (s *TextScorer) ResearchFields(text string) []string {
	lowered := []byte(strings.ToLower(text))

	fields := []string{}
	for i, matcher := range s.fields {
		if len(matcher.Match(lowered)) > 0 {
			fields = append(fields, fieldKeywords[i].field)
		}
	}
	return fields
}
