package importer

import (
	"fmt"

	"github.com/xuri/excelize/v2"

	"github.com/jonesrussell/north-cloud/project-ingestor/internal/adapter"
)

// ReadXLSXRecords reads the first sheet of a workbook as one record per
// row, keyed by the header row. Short rows pad with empty strings, matching
// the CSV reader.
func ReadXLSXRecords(path string) ([]adapter.RawRecord, error) {
	f, err := excelize.OpenFile(path)
	if err != nil {
		return nil, fmt.Errorf("open workbook %s: %w", path, err)
	}
	defer f.Close()

	sheets := f.GetSheetList()
	if len(sheets) == 0 {
		return nil, fmt.Errorf("workbook %s has no sheets", path)
	}

	rows, err := f.GetRows(sheets[0])
	if err != nil {
		return nil, fmt.Errorf("read sheet %s: %w", sheets[0], err)
	}
	if len(rows) == 0 {
		return nil, fmt.Errorf("workbook %s has no header row", path)
	}

	header := rows[0]
	records := make([]adapter.RawRecord, 0, len(rows)-1)
	for _, row := range rows[1:] {
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
