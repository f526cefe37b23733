package codec

import (
	"testing"

	"github.com/rowkit/csvjson/delim"
	"github.com/rowkit/csvjson/fastpath"
	"github.com/rowkit/csvjson/option"
	"github.com/rowkit/csvjson/value"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCsvToJson_Scenario1(t *testing.T) {
	opt := option.Default()
	opt.ParseNumbers = false
	records, fastRows, err := CsvToJson("a,b,c\n1,2,3\n4,5,6", opt, fastpath.New(), delim.New(10))
	require.NoError(t, err)
	require.Nil(t, fastRows)
	require.Len(t, records, 2)

	v, ok := records[0].Get("a")
	require.True(t, ok)
	assert.Equal(t, "1", v.String())
	v, ok = records[1].Get("c")
	require.True(t, ok)
	assert.Equal(t, "6", v.String())
}

func TestCsvToJson_Scenario1_ParseNumbers(t *testing.T) {
	opt := option.Default()
	records, _, err := CsvToJson("a,b,c\n1,2,3\n4,5,6", opt, fastpath.New(), delim.New(10))
	require.NoError(t, err)
	v, _ := records[0].Get("a")
	assert.Equal(t, value.KindInt, v.Kind())
	n, _ := v.Int()
	assert.EqualValues(t, 1, n)
}

func TestCsvToJson_Scenario2_QuotedCommaAndEscapedQuote(t *testing.T) {
	opt := option.Default()
	opt.ParseNumbers = false
	input := "name,note\nAlice,\"Hello, world\"\nBob,\"She said \"\"hi\"\"\""
	records, _, err := CsvToJson(input, opt, fastpath.New(), delim.New(10))
	require.NoError(t, err)
	require.Len(t, records, 2)

	note, _ := records[0].Get("note")
	assert.Equal(t, "Hello, world", note.String())
	note, _ = records[1].Get("note")
	assert.Equal(t, `She said "hi"`, note.String())
}

func TestCsvToJson_Scenario3_AutoDetectAndCacheHit(t *testing.T) {
	opt := option.Default()
	opt.Delimiter = 0
	opt.Candidates = []rune{',', ';'}
	opt.ParseNumbers = false
	cache := delim.New(10)

	records, _, err := CsvToJson("a;b\n1;2", opt, fastpath.New(), cache)
	require.NoError(t, err)
	require.Len(t, records, 1)
	v, _ := records[0].Get("a")
	assert.Equal(t, "1", v.String())

	_, _, err = CsvToJson("a;b\n1;2", opt, fastpath.New(), cache)
	require.NoError(t, err)
	assert.EqualValues(t, 1, cache.GetStats().Hits)
}

func TestJsonToCsv_Scenario4_InjectionGuard(t *testing.T) {
	rec := NewRecord()
	rec.Set("a", value.FromText("=HYPERLINK(...)"))

	opt := option.Default()
	opt.PreventCsvInjection = true
	out := JsonToCsv([]*Record{rec}, opt)
	assert.Equal(t, "a\n'=HYPERLINK(...)", out)
}

func TestRoundTrip_JsonToCsvToJson(t *testing.T) {
	r1 := NewRecord()
	r1.Set("a", value.FromText("1"))
	r1.Set("b", value.FromText("2"))
	r2 := NewRecord()
	r2.Set("a", value.FromText("4"))
	r2.Set("b", value.FromText("5"))

	opt := option.Default()
	csvText := JsonToCsv([]*Record{r1, r2}, opt)

	back, _, err := CsvToJson(csvText, option.Options{
		Delimiter: ',', IncludeHeaders: true, HasHeaders: true, ParseNumbers: false, ParseBooleans: false, Trim: false,
	}, fastpath.New(), delim.New(10))
	require.NoError(t, err)
	require.Len(t, back, 2)

	a, _ := back[0].Get("a")
	assert.Equal(t, "1", a.String())
	b, _ := back[1].Get("b")
	assert.Equal(t, "5", b.String())
}

func TestCsvToJson_MaxRowsExceeded(t *testing.T) {
	opt := option.Default()
	opt.MaxRows = 1
	_, _, err := CsvToJson("a,b\n1,2\n3,4", opt, fastpath.New(), delim.New(10))
	require.Error(t, err)
}

func TestCsvToJson_CompactMode(t *testing.T) {
	opt := option.Default()
	opt.FastPathMode = option.FastPathCompact
	opt.ParseNumbers = false
	_, rows, err := CsvToJson("a,b\n1,2", opt, fastpath.New(), delim.New(10))
	require.NoError(t, err)
	assert.Equal(t, [][]string{{"a", "b"}, {"1", "2"}}, rows)
}

func TestCsvToJson_NoHeadersSynthesizesColumnNames(t *testing.T) {
	opt := option.Default()
	opt.HasHeaders = false
	opt.IncludeHeaders = false
	opt.ParseNumbers = false
	records, _, err := CsvToJson("1,2\n3,4", opt, fastpath.New(), delim.New(10))
	require.NoError(t, err)
	require.Len(t, records, 2)
	v, ok := records[0].Get("column_1")
	require.True(t, ok)
	assert.Equal(t, "1", v.String())
}

func TestJsonToCsv_TemplateProjectionWithDefaults(t *testing.T) {
	rec := NewRecord()
	rec.Set("a", value.FromText("1"))

	opt := option.Default()
	opt.Template = []option.TemplateField{{Key: "a"}, {Key: "b", Default: "missing"}}
	out := JsonToCsv([]*Record{rec}, opt)
	assert.Equal(t, "a,b\n1,missing", out)
}
