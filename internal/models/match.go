package models

import "time"

// Match lifecycle statuses.
const (
	MatchPending  = "pending"
	MatchAccepted = "accepted"
	MatchRejected = "rejected"
	MatchExpired  = "expired"
)

// Match types mirror the funder support types.
const (
	MatchTypeFunding        = "funding"
	MatchTypeInfrastructure = "infrastructure"
	MatchTypeMentorship     = "mentorship"
	MatchTypeCollaboration  = "collaboration"
)

// MatchTTL is the fixed offset from creation to expiry.
const MatchTTL = 30 * 24 * time.Hour

// Match is a scored funder/researcher pairing. OverallScore is always the
// fixed-weight combination of the other three scores; it is never set
// independently.
type Match struct {
	ID                 string    `json:"id"                  db:"id"`
	FunderID           int64     `json:"funder_id"           db:"funder_id"`
	ResearcherID       int64     `json:"researcher_id"       db:"researcher_id"`
	MatchType          string    `json:"match_type"          db:"match_type"`
	Priority           string    `json:"priority"            db:"priority"`
	Status             string    `json:"status"              db:"status"`
	ImpactScore        float64   `json:"impact_score"        db:"impact_score"`
	BarrierScore       float64   `json:"barrier_score"       db:"barrier_score"`
	CompatibilityScore float64   `json:"compatibility_score" db:"compatibility_score"`
	OverallScore       float64   `json:"overall_score"       db:"overall_score"`
	Reasoning          []string  `json:"reasoning"           db:"match_reasoning"`
	BarrierAnalysis    []string  `json:"barrier_analysis"    db:"barrier_analysis"`
	SolutionProposal   []string  `json:"solution_proposal"   db:"solution_proposal"`
	CreatedAt          time.Time `json:"created_at"          db:"created_at"`
	UpdatedAt          time.Time `json:"updated_at"          db:"updated_at"`
	ExpiresAt          time.Time `json:"expires_at"          db:"expires_at"`
}
