package adapter

import (
	"fmt"
	"strings"
	"time"

	"github.com/jonesrussell/north-cloud/project-ingestor/internal/models"
)

// Canonical source labels as stored in the projects.source column.
const (
	SourceUNDP          = "UNDP"
	SourceHDX           = "HDX"
	SourceCORDIS        = "CORDIS"
	SourceCORDISHorizon = "CORDIS-Horizon"
	SourceNGO           = "NGO"
	SourceNSF           = "NSF"
	SourceNIH           = "NIH"
	SourceWorldBank     = "WorldBank"
)

// registry maps the lower-case source name accepted on the command line to
// its adapter spec. Misc file adapters are built separately via MiscCSV and
// MiscJSON because their source label varies per dataset.
var registry = map[string]*Spec{
	"undp":           undpSpec(),
	"hdx":            hdxSpec(),
	"cordis":         cordisSpec(),
	"cordis-horizon": cordisHorizonSpec(),
	"ngo":            ngoSpec(),
	"nsf":            nsfSpec(),
	"nih":            nihSpec(),
	"worldbank":      worldBankSpec(),
}

// Lookup returns the adapter spec for a named source, or false when the
// name is unknown.
func Lookup(name string) (*Spec, bool) {
	spec, ok := registry[strings.ToLower(name)]
	return spec, ok
}

// Names lists the registered source names. Map order; callers sort for
// display.
func Names() []string {
	names := make([]string, 0, len(registry))
	for name := range registry {
		names = append(names, name)
	}
	return names
}

func undpSpec() *Spec {
	return &Spec{
		Source:          SourceUNDP,
		IDKeys:          []string{"project_id"},
		TitleKeys:       []string{"title"},
		DescKeys:        []string{"description"},
		StartKeys:       []string{"start"},
		EndKeys:         []string{"end"},
		AmountKeys:      []string{"budget"},
		AmountOnError:   AmountNull,
		CountryKeys:     []string{"operating_unit"},
		RegionKeys:      []string{"region"},
		TypeDefault:     "development",
		SectorKeys:      []string{"focus_area"},
		URLTemplate:     "https://open.undp.org/projects/%s",
		NeedsFunding:    NeedsRule{Mode: NeedsStatusActiveExact, StatusKey: "status"},
		CommitPerRecord: true,
	}
}

func hdxSpec() *Spec {
	return &Spec{
		Source:          SourceHDX,
		IDKeys:          []string{"id"},
		TitleKeys:       []string{"title"},
		DescKeys:        []string{"notes"},
		StartKeys:       []string{"metadata_created"},
		EndKeys:         []string{"metadata_modified"},
		AmountOnError:   AmountNull,
		CountryKeys:     []string{"country"},
		RegionKeys:      []string{"region"},
		TypeDefault:     "humanitarian",
		SectorKeys:      []string{"groups"},
		URLTemplate:     "https://data.humdata.org/dataset/%s",
		NeedsFunding:    NeedsRule{Mode: NeedsAlways},
		CommitPerRecord: true,
	}
}

func cordisSpec() *Spec {
	return &Spec{
		Source:        SourceCORDIS,
		IDKeys:        []string{"rcn", "id"},
		TitleKeys:     []string{"title"},
		DescKeys:      []string{"objective"},
		LocaleText:    true,
		StartKeys:     []string{"startDate"},
		EndKeys:       []string{"endDate"},
		AmountKeys:    []string{"ecMaxContribution"},
		AmountOnError: AmountZero,
		CountryKeys:   []string{"coordinatorCountry"},
		TypeKeys:      []string{"programme"},
		SectorKeys:    []string{"topics"},
		URLTemplate:   "https://cordis.europa.eu/project/id/%s",
		NeedsFunding:  NeedsRule{Mode: NeedsStatusActive, StatusKey: "status"},
	}
}

func cordisHorizonSpec() *Spec {
	return &Spec{
		Source:        SourceCORDISHorizon,
		IDKeys:        []string{"id", "rcn"},
		TitleKeys:     []string{"title", "acronym"},
		DescKeys:      []string{"objective"},
		StartKeys:     []string{"startDate"},
		EndKeys:       []string{"endDate"},
		AmountKeys:    []string{"ecMaxContribution"},
		AmountOnError: AmountZero,
		CountryKeys:   []string{"coordinatorCountry"},
		TypeKeys:      []string{"frameworkProgramme"},
		SectorKeys:    []string{"keywords"},
		URLTemplate:   "https://cordis.europa.eu/project/id/%s",
		NeedsFunding:  NeedsRule{Mode: NeedsStatusActive, StatusKey: "status"},
		Filter:        horizonOngoing,
	}
}

// horizonOngoing keeps projects that are still running. A project counts as
// ongoing when its end date parses and lies in the future, or when the end
// date is malformed (benefit of the doubt). Projects that are both not
// ongoing and explicitly wound down are dropped; everything else loads.
func horizonOngoing(raw RawRecord) bool {
	ongoing := false
	if end := coerceString(raw["endDate"]); end != "" {
		t, err := time.Parse("2006-01-02", truncateDate(end))
		if err != nil {
			ongoing = true
		} else {
			ongoing = t.After(time.Now())
		}
	}
	if ongoing {
		return true
	}
	switch strings.ToLower(coerceString(raw["status"])) {
	case "closed", "terminated", "finished", "completed":
		return false
	}
	return true
}

func ngoSpec() *Spec {
	return &Spec{
		Source:        SourceNGO,
		IDKeys:        []string{"id"},
		TitleKeys:     []string{"title"},
		DescKeys:      []string{"description"},
		StartKeys:     []string{"start_date"},
		EndKeys:       []string{"end_date"},
		AmountKeys:    []string{"funding"},
		AmountOnError: AmountZero,
		CountryKeys:   []string{"country"},
		RegionKeys:    []string{"region"},
		TypeKeys:      []string{"project_type"},
		TypeDefault:   "NGO",
		SectorKeys:    []string{"tags"},
		URLKeys:       []string{"url"},
		NeedsFunding:  NeedsRule{Mode: NeedsStatusActive, StatusKey: "status"},
	}
}

func nsfSpec() *Spec {
	return &Spec{
		Source:        SourceNSF,
		IDKeys:        []string{"id", "awardID"},
		TitleKeys:     []string{"title"},
		DescKeys:      []string{"abstractText"},
		StartKeys:     []string{"startDate"},
		EndKeys:       []string{"endDate"},
		AmountKeys:    []string{"fundsObligatedAmt"},
		AmountOnError: AmountZero,
		CountryKeys:   []string{"country"},
		RegionKeys:    []string{"region"},
		TypeKeys:      []string{"programElement"},
		TypeDefault:   "NSF",
		SectorKeys:    []string{"programElement"},
		URLKeys:       []string{"url"},
		NeedsFunding:  NeedsRule{Mode: NeedsStatusActive, StatusKey: "awardStatus"},
	}
}

func nihSpec() *Spec {
	return &Spec{
		Source:        SourceNIH,
		IDKeys:        []string{"project_num"},
		TitleKeys:     []string{"project_title"},
		DescKeys:      []string{"abstract_text"},
		StartKeys:     []string{"project_start_date"},
		EndKeys:       []string{"project_end_date"},
		TruncateDates: true,
		AmountKeys:    []string{"award_amount"},
		AmountOnError: AmountNull,
		CountryKeys:   []string{"organization.country"},
		TypeKeys:      []string{"terms", "project_terms"},
		SectorKeys:    []string{"terms"},
		NeedsFunding:  NeedsRule{Mode: NeedsStatusActive, StatusKey: "status"},
	}
}

func worldBankSpec() *Spec {
	return &Spec{
		Source:        SourceWorldBank,
		IDKeys:        []string{"id"},
		TitleKeys:     []string{"project_name"},
		DescKeys:      []string{"project_abstract.cdata"},
		StartKeys:     []string{"boardapprovaldate"},
		EndKeys:       []string{"closingdate"},
		AmountKeys:    []string{"totalcommamt"},
		AmountOnError: AmountZero,
		CountryKeys:   []string{"countryshortname"},
		RegionKeys:    []string{"regionname"},
		TypeKeys:      []string{"prodline", "lendinginstr"},
		URLKeys:       []string{"url"},
		NeedsFunding:  NeedsRule{Mode: NeedsStatusActive, StatusKey: "projectstatusdisplay"},
		Finalize:      worldBankFinalize,
	}
}

// worldBankFinalize handles the two fields the feed nests too deeply for a
// key chain: sectors arrive as up to five {"Name": ...} objects, and the
// country falls back to the first element of a list-valued countryname.
func worldBankFinalize(raw RawRecord, p *models.Project) {
	sectors := make([]string, 0, 5)
	for i := 1; i <= 5; i++ {
		entry, ok := raw[fmt.Sprintf("sector%d", i)].(map[string]any)
		if !ok {
			continue
		}
		if name := coerceString(entry["Name"]); name != "" {
			sectors = append(sectors, name)
		}
	}
	if len(sectors) > 0 {
		p.Sectors = sectors
	}

	if p.Country == nil {
		if names, ok := raw["countryname"].([]any); ok && len(names) > 0 {
			if name := coerceString(names[0]); name != "" {
				p.Country = &name
			}
		}
	}
}

// MiscCSV builds the adapter for an ad-hoc CSV dataset. These files share
// no schema, so the id and title chains are long: asset registries,
// organisation lists, and car-park inventories all funnel through the same
// spec. Records are plain inventory data, so needs_funding is always false
// and a missing amount stays NULL.
func MiscCSV(source string) *Spec {
	return &Spec{
		Source: source,
		IDKeys: []string{
			"project_id", "id", "ProjectID", "project_code",
			"AssetID", "CarParkID", "BuildingID", "Name",
			"SerialNumber", "UniqueID", "RecordID", "Reference",
			"OrganisationID", "OrganisationName",
			"Title", "title", "Asset Name", "Asset",
		},
		TitleKeys:     []string{"title", "Title", "Asset Name", "Asset", "Name"},
		DescKeys:      []string{"description", "Description"},
		StartKeys:     []string{"start_date", "StartDate", "CommencementDate"},
		EndKeys:       []string{"end_date", "EndDate", "CompletionDate"},
		AmountKeys:    []string{"funding_amount", "FundingAmount", "Value"},
		AmountOnError: AmountNull,
		CountryKeys:   []string{"country", "Country"},
		RegionKeys:    []string{"region", "Region", "Suburb", "Location"},
		TypeKeys:      []string{"project_type", "Type"},
		SectorKeys:    []string{"sector", "Sector", "Category", "Type"},
		URLKeys:       []string{"source_url", "URL"},
		NeedsFunding:  NeedsRule{Mode: NeedsNever},
	}
}

// MiscJSON builds the adapter for an ad-hoc JSON or GeoJSON dataset. For
// GeoJSON the fetch layer passes each feature's properties object as the
// record.
func MiscJSON(source string) *Spec {
	return &Spec{
		Source:        source,
		IDKeys:        []string{"id", "project_id", "AssetID", "CarParkID", "BuildingID", "Name"},
		TitleKeys:     []string{"title", "Name"},
		DescKeys:      []string{"description", "Description"},
		StartKeys:     []string{"start_date", "StartDate"},
		EndKeys:       []string{"end_date", "EndDate"},
		AmountKeys:    []string{"funding_amount", "Value"},
		AmountOnError: AmountNull,
		CountryKeys:   []string{"country", "Country"},
		RegionKeys:    []string{"region", "Region", "Suburb"},
		TypeKeys:      []string{"project_type", "Type"},
		SectorKeys:    []string{"sector", "Category", "Type"},
		URLKeys:       []string{"source_url", "URL"},
		NeedsFunding:  NeedsRule{Mode: NeedsNever},
	}
}
