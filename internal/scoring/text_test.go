package scoring

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNoveltyScore(t *testing.T) {
	s := NewTextScorer()

	assert.Equal(t, 5.0, s.NoveltyScore("a study of sediment layers"))
	assert.Equal(t, 7.0, s.NoveltyScore("A novel and innovative approach"))
	assert.Equal(t, 10.0, s.NoveltyScore(
		"novel new innovative breakthrough pioneering revolutionary groundbreaking"),
		"score caps at 10")
}

func TestSocietalImpactScore(t *testing.T) {
	s := NewTextScorer()

	assert.Equal(t, 5.0, s.SocietalImpactScore("compiler optimization passes"))
	assert.Equal(t, 6.5, s.SocietalImpactScore("Climate impacts on community health"),
		"three keywords at half a point each")
}

func TestDetectBarriers(t *testing.T) {
	s := NewTextScorer()

	t.Run("no barriers", func(t *testing.T) {
		findings := s.DetectBarriers("pure theory with no constraints")
		assert.Empty(t, findings.FundingLimitations)
		assert.Equal(t, 0.0, findings.BarrierScore)
	})

	t.Run("two categories", func(t *testing.T) {
		findings := s.DetectBarriers("requires grant funding and specialized equipment")
		assert.Equal(t, []string{"Funding needs mentioned"}, findings.FundingLimitations)
		assert.Equal(t, []string{"Infrastructure needs mentioned"}, findings.InfrastructureNeeds)
		assert.Empty(t, findings.CollaborationNeeds)
		assert.Equal(t, 4.0, findings.BarrierScore)
	})
}

func TestResearchFields(t *testing.T) {
	s := NewTextScorer()

	fields := s.ResearchFields("Deep learning for clinical genomics")
	assert.Contains(t, fields, "Artificial Intelligence")
	assert.Contains(t, fields, "Bioinformatics")
	assert.Contains(t, fields, "Healthcare")
	assert.NotContains(t, fields, "Economics")

	assert.Empty(t, s.ResearchFields("xyzzy"))
}
