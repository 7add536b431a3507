// Package adapter normalizes raw source records into canonical Projects.
//
// Each source is described by a declarative Spec: ordered fallback key
// chains per target field plus a small set of named transforms (sector
// normalization, locale-dict resolution, money coercion). A single engine
// drives every spec, so adding a source means adding a table entry, not a
// loader. The fallback order and the default-on-failure value per field are
// behavior, not incidental structure: they are preserved exactly per source.
package adapter

import (
	"strings"

	"github.com/jonesrussell/north-cloud/project-ingestor/internal/models"
)

// RawRecord is one decoded record in whatever shape the source's fetch step
// produced: a JSON object, a CSV row keyed by header, or a GeoJSON feature's
// properties object.
type RawRecord map[string]any

// AmountDefault selects the per-source fallback when monetary coercion
// fails or the value is absent.
type AmountDefault int

const (
	// AmountZero stores 0 on coercion failure.
	AmountZero AmountDefault = iota
	// AmountNull stores NULL on coercion failure.
	AmountNull
)

// NeedsMode selects how an adapter derives the needs_funding flag.
type NeedsMode int

const (
	// NeedsStatusActive compares the status field to "active",
	// case-insensitively.
	NeedsStatusActive NeedsMode = iota
	// NeedsStatusActiveExact compares the status field to "Active" exactly.
	// Only the UNDP feed has ever used the exact comparison; kept per
	// source rather than unified.
	NeedsStatusActiveExact
	// NeedsAlways marks every record as needing funding (humanitarian
	// sources).
	NeedsAlways
	// NeedsNever marks no record as needing funding (asset registries).
	NeedsNever
)

// NeedsRule is an adapter's hardcoded needs_funding derivation.
type NeedsRule struct {
	Mode      NeedsMode
	StatusKey string
}

// Spec is the declarative description of one source adapter. Key chains are
// tried in order; the first non-empty value wins. Keys may use dotted paths
// to reach nested objects ("organization.country").
type Spec struct {
	Source string

	IDKeys      []string
	TitleKeys   []string
	DescKeys    []string
	StartKeys   []string
	EndKeys     []string
	AmountKeys  []string
	CountryKeys []string
	RegionKeys  []string
	TypeKeys    []string
	SectorKeys  []string
	URLKeys     []string

	// LocaleText resolves title/description values that arrive as a
	// locale-keyed object ({"en": ..., "fr": ...}).
	LocaleText bool
	// TruncateDates cuts dates to a 10-character YYYY-MM-DD prefix.
	TruncateDates bool
	// AmountOnError is the per-source default when coercion fails.
	AmountOnError AmountDefault
	// TypeDefault is used when no TypeKeys value is present.
	TypeDefault string
	// URLTemplate builds a source_url from the project id when no URLKeys
	// value is present. Must contain a single %s verb.
	URLTemplate string

	NeedsFunding NeedsRule

	// Filter, when set, rejects records before normalization (false =
	// skip). Used by sources that ingest only a subset of the feed.
	Filter func(RawRecord) bool
	// Finalize, when set, runs after generic extraction for fields that do
	// not fit a key chain (nested sector objects, list-valued country
	// fallbacks).
	Finalize func(RawRecord, *models.Project)

	// CommitPerRecord marks the loader family that commits after every
	// upsert instead of at end of batch.
	CommitPerRecord bool
}

// Normalize maps one raw record onto the canonical Project. It returns nil
// when the record is filtered out or lacks a usable identifier; a Project
// with an empty ProjectID is never produced. Normalize is pure and never
// panics on malformed input, so one bad record cannot abort a batch.
func (s *Spec) Normalize(raw RawRecord) *models.Project {
	if raw == nil {
		return nil
	}
	if s.Filter != nil && !s.Filter(raw) {
		return nil
	}

	id := s.extractID(raw)
	if id == "" {
		return nil
	}

	p := &models.Project{
		ProjectID:   id,
		Title:       s.extractText(raw, s.TitleKeys),
		Description: s.extractText(raw, s.DescKeys),
		Source:      s.Source,
		Sectors:     NormalizeSectors(lookupValue(raw, s.SectorKeys)),
	}

	p.StartDate = s.extractDate(raw, s.StartKeys)
	p.EndDate = s.extractDate(raw, s.EndKeys)
	p.FundingAmount = s.extractAmount(raw)
	p.NeedsFunding = s.NeedsFunding.eval(raw)

	if v := lookupString(raw, s.CountryKeys); v != "" {
		p.Country = &v
	}
	if v := lookupString(raw, s.RegionKeys); v != "" {
		p.Region = &v
	}

	if v := lookupString(raw, s.TypeKeys); v != "" {
		p.ProjectType = &v
	} else if s.TypeDefault != "" {
		v := s.TypeDefault
		p.ProjectType = &v
	}

	if v := lookupString(raw, s.URLKeys); v != "" {
		p.SourceURL = &v
	} else if s.URLTemplate != "" {
		v := strings.Replace(s.URLTemplate, "%s", id, 1)
		p.SourceURL = &v
	}

	if s.Finalize != nil {
		s.Finalize(raw, p)
	}

	return p
}

func (s *Spec) extractID(raw RawRecord) string {
	return strings.TrimSpace(lookupString(raw, s.IDKeys))
}

func (s *Spec) extractText(raw RawRecord, keys []string) string {
	v := lookupValue(raw, keys)
	if v == nil {
		return ""
	}
	if s.LocaleText {
		return resolveLocaleText(v)
	}
	return coerceString(v)
}

func (s *Spec) extractDate(raw RawRecord, keys []string) *string {
	v := lookupString(raw, keys)
	if v == "" {
		return nil
	}
	if s.TruncateDates {
		v = truncateDate(v)
	}
	return &v
}

func (s *Spec) extractAmount(raw RawRecord) *int64 {
	v := lookupValue(raw, s.AmountKeys)
	if amount, ok := CoerceAmount(v); ok {
		return &amount
	}
	if s.AmountOnError == AmountNull {
		return nil
	}
	zero := int64(0)
	return &zero
}

func (r NeedsRule) eval(raw RawRecord) bool {
	switch r.Mode {
	case NeedsAlways:
		return true
	case NeedsNever:
		return false
	case NeedsStatusActiveExact:
		return lookupString(raw, []string{r.StatusKey}) == "Active"
	default:
		return strings.EqualFold(lookupString(raw, []string{r.StatusKey}), "active")
	}
}

// lookupValue returns the first present, non-nil, non-empty-string value
// along the key chain. Dotted keys descend into nested objects.
func lookupValue(raw RawRecord, keys []string) any {
	for _, key := range keys {
		v := lookupPath(raw, key)
		if v == nil {
			continue
		}
		if s, ok := v.(string); ok && strings.TrimSpace(s) == "" {
			continue
		}
		return v
	}
	return nil
}

func lookupString(raw RawRecord, keys []string) string {
	return coerceString(lookupValue(raw, keys))
}

func lookupPath(raw RawRecord, key string) any {
	if !strings.Contains(key, ".") {
		return raw[key]
	}
	var current any = map[string]any(raw)
	for _, part := range strings.Split(key, ".") {
		m, ok := current.(map[string]any)
		if !ok {
			return nil
		}
		current = m[part]
	}
	return current
}
