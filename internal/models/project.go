// Package models defines the canonical records shared across the service.
package models

// Project is the canonical record every source is normalized into. One row
// exists per distinct ProjectID; re-ingestion overwrites all fields
// (last-write-wins). Optional columns are pointers so absent source values
// reach the database as NULL rather than zero values.
//
// Dates are carried as source-native strings: the projects table has DATE
// columns and the driver hands the raw value to Postgres, matching how every
// loader in this family has always behaved. Only the NIH adapter truncates
// to a 10-character prefix first.
type Project struct {
	ProjectID     string   `json:"project_id"     db:"project_id"`
	Title         string   `json:"title"          db:"title"`
	Description   string   `json:"description"    db:"description"`
	StartDate     *string  `json:"start_date"     db:"start_date"`
	EndDate       *string  `json:"end_date"       db:"end_date"`
	FundingAmount *int64   `json:"funding_amount" db:"funding_amount"`
	NeedsFunding  bool     `json:"needs_funding"  db:"needs_funding"`
	Country       *string  `json:"country"        db:"country"`
	Region        *string  `json:"region"         db:"region"`
	ProjectType   *string  `json:"project_type"   db:"project_type"`
	Sectors       []string `json:"sectors"        db:"sectors"`
	Source        string   `json:"source"         db:"source"`
	SourceURL     *string  `json:"source_url"     db:"source_url"`
}
