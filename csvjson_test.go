package csvjson

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rowkit/csvjson/codec"
	"github.com/rowkit/csvjson/value"
)

func TestJsonToCsv_CsvToJson_RoundTrip(t *testing.T) {
	rec := NewTestRecord(map[string]interface{}{"name": "Ada", "age": int64(36)}, []string{"name", "age"})
	csvText := JsonToCsv([]*Record{rec}, DefaultOptions())
	assert.Equal(t, "name,age\nAda,36", csvText)

	records, _, err := CsvToJson(csvText, DefaultOptions())
	require.NoError(t, err)
	require.Len(t, records, 1)
	assert.Equal(t, map[string]interface{}{"name": "Ada", "age": int64(36)}, records[0].Map())
}

func TestJsonToNdjson_NdjsonToJson_RoundTrip(t *testing.T) {
	a := NewTestRecord(map[string]interface{}{"z": int64(1), "a": int64(2)}, []string{"z", "a"})
	b := NewTestRecord(map[string]interface{}{"z": int64(3), "a": int64(4)}, []string{"z", "a"})

	ndjson, err := JsonToNdjson([]*Record{a, b})
	require.NoError(t, err)
	assert.Equal(t, "{\"z\":1,\"a\":2}\n{\"z\":3,\"a\":4}", ndjson)

	records, err := NdjsonToJson(ndjson)
	require.NoError(t, err)
	require.Len(t, records, 2)
	assert.Equal(t, []string{"z", "a"}, records[0].Keys())
}

func TestJsonToTsv_TsvToJson(t *testing.T) {
	rec := NewTestRecord(map[string]interface{}{"name": "Ada", "age": int64(36)}, []string{"name", "age"})
	tsv := JsonToTsv([]*Record{rec}, DefaultOptions())
	assert.Equal(t, "name\tage\nAda\t36", tsv)

	records, _, err := TsvToJson(tsv, DefaultOptions())
	require.NoError(t, err)
	require.Len(t, records, 1)
}

func TestValidateTsv_FlagsFieldCountMismatch(t *testing.T) {
	tsv := "a\tb\tc\n1\t2\t3\n4\t5\n"
	problems, err := ValidateTsv(tsv, DefaultOptions())
	require.NoError(t, err)
	require.Len(t, problems, 1)
	assert.Equal(t, 3, problems[0].LineNumber)
}

func TestValidateTsv_NoProblemsOnConsistentRows(t *testing.T) {
	tsv := "a\tb\n1\t2\n3\t4\n"
	problems, err := ValidateTsv(tsv, DefaultOptions())
	require.NoError(t, err)
	assert.Empty(t, problems)
}

// NewTestRecord is a small helper building a Record with a fixed key order,
// since production code always derives order from the first emitted header
// row rather than construct one ad hoc.
func NewTestRecord(fields map[string]interface{}, order []string) *Record {
	rec := codec.NewRecord()
	for _, k := range order {
		rec.Set(k, value.FromInterface(fields[k]))
	}
	return rec
}
