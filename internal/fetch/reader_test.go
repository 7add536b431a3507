package fetch

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDecodeJSONRecordsBareArray(t *testing.T) {
	records, err := DecodeJSONRecords(strings.NewReader(
		`[{"id": "a"}, {"id": "b"}]`,
	))
	require.NoError(t, err)
	require.Len(t, records, 2)
	assert.Equal(t, "a", records[0]["id"])
}

func TestDecodeJSONRecordsEnvelope(t *testing.T) {
	for _, key := range []string{"projects", "results", "data"} {
		t.Run(key, func(t *testing.T) {
			records, err := DecodeJSONRecords(strings.NewReader(
				`{"` + key + `": [{"id": "x"}]}`,
			))
			require.NoError(t, err)
			require.Len(t, records, 1)
		})
	}
}

func TestDecodeJSONRecordsKeyedMap(t *testing.T) {
	records, err := DecodeJSONRecords(strings.NewReader(
		`{"projects": {"P2": {"name": "Two"}, "P1": {"name": "One", "id": "custom"}}}`,
	))
	require.NoError(t, err)
	require.Len(t, records, 2)

	// Sorted key order, and an existing id is never overwritten.
	assert.Equal(t, "custom", records[0]["id"])
	assert.Equal(t, "P2", records[1]["id"])
}

func TestDecodeJSONRecordsFeatureCollection(t *testing.T) {
	records, err := DecodeJSONRecords(strings.NewReader(`{
		"type": "FeatureCollection",
		"features": [
			{"geometry": {"type": "Point"}, "properties": {"Name": "Oval"}},
			{"properties": {"Name": "Court"}}
		]
	}`))
	require.NoError(t, err)
	require.Len(t, records, 2)
	assert.Equal(t, "Oval", records[0]["Name"])
}

func TestDecodeJSONRecordsRejectsUnknownShape(t *testing.T) {
	_, err := DecodeJSONRecords(strings.NewReader(`{"meta": {"count": 0}}`))
	assert.Error(t, err)

	_, err = DecodeJSONRecords(strings.NewReader(`"just a string"`))
	assert.Error(t, err)
}

func TestDecodeCSVRecords(t *testing.T) {
	records, err := DecodeCSVRecords(strings.NewReader(
		"AssetID,Title,Value\nA-1,Hall,\"85,000\"\nA-2,Oval\n",
	))
	require.NoError(t, err)
	require.Len(t, records, 2)

	assert.Equal(t, "A-1", records[0]["AssetID"])
	assert.Equal(t, "85,000", records[0]["Value"])

	// Short rows pad with empty strings.
	assert.Equal(t, "", records[1]["Value"])
}

func TestDecodeCSVRecordsEmptyBody(t *testing.T) {
	_, err := DecodeCSVRecords(strings.NewReader(""))
	assert.Error(t, err, "a file with no header is unreadable")
}
