// Package fetch reads source datasets from local files and remote APIs and
// hands them to the adapters as generic records.
package fetch

import (
	"encoding/csv"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"sort"

	"github.com/jonesrussell/north-cloud/project-ingestor/internal/adapter"
)

// envelopeKeys are the wrapper keys the feeds use around their record
// lists, tried in order.
var envelopeKeys = []string{"projects", "results", "data", "records"}

// ReadJSONRecords loads records from a JSON file. It accepts the shapes the
// feeds actually produce: a bare array of objects, an object wrapping the
// array under a well-known key, the keyed-map form ({"projects": {"P1":
// {...}}}) where record ids are the keys, and GeoJSON FeatureCollections,
// whose features contribute their properties objects.
func ReadJSONRecords(path string) ([]adapter.RawRecord, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", path, err)
	}
	defer f.Close()

	return DecodeJSONRecords(f)
}

// DecodeJSONRecords is ReadJSONRecords over an arbitrary reader.
func DecodeJSONRecords(r io.Reader) ([]adapter.RawRecord, error) {
	var root any
	if err := json.NewDecoder(r).Decode(&root); err != nil {
		return nil, fmt.Errorf("decode json: %w", err)
	}

	switch doc := root.(type) {
	case []any:
		return recordsFromList(doc), nil
	case map[string]any:
		if doc["type"] == "FeatureCollection" {
			return featureProperties(doc), nil
		}
		for _, key := range envelopeKeys {
			wrapped, ok := doc[key]
			if !ok {
				continue
			}
			switch inner := wrapped.(type) {
			case []any:
				return recordsFromList(inner), nil
			case map[string]any:
				return recordsFromKeyedMap(inner), nil
			}
		}
		return nil, fmt.Errorf("decode json: no record list found")
	default:
		return nil, fmt.Errorf("decode json: unsupported document shape %T", root)
	}
}

func recordsFromList(list []any) []adapter.RawRecord {
	records := make([]adapter.RawRecord, 0, len(list))
	for _, item := range list {
		if m, ok := item.(map[string]any); ok {
			records = append(records, adapter.RawRecord(m))
		}
	}
	return records
}

// recordsFromKeyedMap flattens the id-keyed form. The map key becomes the
// record's id when the record itself carries none. Keys are walked in
// sorted order so loads are deterministic.
func recordsFromKeyedMap(m map[string]any) []adapter.RawRecord {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	records := make([]adapter.RawRecord, 0, len(m))
	for _, k := range keys {
		rec, ok := m[k].(map[string]any)
		if !ok {
			continue
		}
		if _, has := rec["id"]; !has {
			rec["id"] = k
		}
		records = append(records, adapter.RawRecord(rec))
	}
	return records
}

func featureProperties(doc map[string]any) []adapter.RawRecord {
	features, ok := doc["features"].([]any)
	if !ok {
		return []adapter.RawRecord{}
	}
	records := make([]adapter.RawRecord, 0, len(features))
	for _, item := range features {
		feature, ok := item.(map[string]any)
		if !ok {
			continue
		}
		if props, ok := feature["properties"].(map[string]any); ok {
			records = append(records, adapter.RawRecord(props))
		}
	}
	return records
}

// ReadCSVRecords loads a CSV file as one record per row, keyed by the
// header. Short rows are padded with empty strings rather than rejected;
// the ad-hoc council exports are full of them.
func ReadCSVRecords(path string) ([]adapter.RawRecord, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", path, err)
	}
	defer f.Close()

	return DecodeCSVRecords(f)
}

// DecodeCSVRecords is ReadCSVRecords over an arbitrary reader.
func DecodeCSVRecords(r io.Reader) ([]adapter.RawRecord, error) {
	reader := csv.NewReader(r)
	reader.FieldsPerRecord = -1

	header, err := reader.Read()
	if err != nil {
		return nil, fmt.Errorf("read csv header: %w", err)
	}

	var records []adapter.RawRecord
	for {
		row, readErr := reader.Read()
		if readErr == io.EOF {
			break
		}
		if readErr != nil {
			return nil, fmt.Errorf("read csv row: %w", readErr)
		}

		record := make(adapter.RawRecord, len(header))
		for i, name := range header {
			if i < len(row) {
				record[name] = row[i]
			} else {
				record[name] = ""
			}
		}
		records = append(records, record)
	}

	return records, nil
}
