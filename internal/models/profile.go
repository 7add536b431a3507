package models

import "encoding/json"

// Statuses shared by funder and researcher profiles.
const (
	StatusActive   = "active"
	StatusInactive = "inactive"
	StatusPending  = "pending"
)

// Funder is a funding-party profile. The list-valued attributes
// (ResearchInterests, SupportTypes, CareerStageFocus) are stored as
// JSON-encoded text columns and parsed on use via ParseJSONList.
type Funder struct {
	ID                int64  `json:"id"                 db:"id"`
	Name              string `json:"name"               db:"name"`
	FunderType        string `json:"funder_type"        db:"funder_type"`
	Country           string `json:"country"            db:"country"`
	SupportTypes      string `json:"support_types"      db:"support_types"`
	ResearchInterests string `json:"research_interests" db:"research_interests"`
	CareerStageFocus  string `json:"career_stage_focus" db:"career_stage_focus"`
	Status            string `json:"status"             db:"status"`
}

// Researcher is a researcher profile. The four need fields hold
// JSON-encoded text; a non-empty value (even "[]") marks the need as
// declared, which is how the scorer has always read them.
type Researcher struct {
	ID                  int64   `json:"id"                    db:"id"`
	Name                string  `json:"name"                  db:"name"`
	Country             string  `json:"country"               db:"country"`
	CareerStage         string  `json:"career_stage"          db:"career_stage"`
	HIndex              int     `json:"h_index"               db:"h_index"`
	TotalCitations      int     `json:"total_citations"       db:"total_citations"`
	ResearchInterests   string  `json:"research_interests"    db:"research_interests"`
	CurrentFundingNeeds string  `json:"current_funding_needs" db:"current_funding_needs"`
	InfrastructureNeeds string  `json:"infrastructure_needs"  db:"infrastructure_needs"`
	CollaborationNeeds  string  `json:"collaboration_needs"   db:"collaboration_needs"`
	MentorshipNeeds     string  `json:"mentorship_needs"      db:"mentorship_needs"`
	ImpactScore         float64 `json:"impact_score"          db:"impact_score"`
	BarrierScore        float64 `json:"barrier_score"         db:"barrier_score"`
	MatchabilityScore   float64 `json:"matchability_score"    db:"matchability_score"`
	Status              string  `json:"status"                db:"status"`
}

// ParseJSONList decodes a JSON-encoded string list from a text column.
// Missing or unparseable values yield an empty list, never an error: legacy
// rows contain free text and NULLs and must not break scoring.
func ParseJSONList(raw string) []string {
	if raw == "" {
		return []string{}
	}
	var list []string
	if err := json.Unmarshal([]byte(raw), &list); err != nil {
		return []string{}
	}
	if list == nil {
		return []string{}
	}
	return list
}
