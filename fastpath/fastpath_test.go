package fastpath

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func rowsOf(t *testing.T, rows []Row) [][]string {
	t.Helper()
	out := make([][]string, len(rows))
	for i, r := range rows {
		out[i] = []string(r)
	}
	return out
}

func TestParse_Scenario1(t *testing.T) {
	e := New()
	rows, err := e.Parse("a,b,c\n1,2,3\n4,5,6", Options{Delimiter: ','})
	require.NoError(t, err)
	assert.Equal(t, [][]string{
		{"a", "b", "c"},
		{"1", "2", "3"},
		{"4", "5", "6"},
	}, rowsOf(t, rows))
}

func TestParse_Scenario2_QuotedCommaAndEscapedQuote(t *testing.T) {
	e := New()
	input := "name,note\nAlice,\"Hello, world\"\nBob,\"She said \"\"hi\"\"\""
	rows, err := e.Parse(input, Options{Delimiter: ',', RFC4180Compliant: true})
	require.NoError(t, err)
	assert.Equal(t, [][]string{
		{"name", "note"},
		{"Alice", "Hello, world"},
		{"Bob", `She said "hi"`},
	}, rowsOf(t, rows))
}

func TestParse_BlankLinesDropped(t *testing.T) {
	e := New()
	rows, err := e.Parse("a,b\n\n   \n1,2", Options{Delimiter: ','})
	require.NoError(t, err)
	assert.Equal(t, [][]string{{"a", "b"}, {"1", "2"}}, rowsOf(t, rows))
}

func TestParse_DelimiterOnlyLineIsNotBlank(t *testing.T) {
	e := New()
	rows, err := e.Parse("a,b\n,", Options{Delimiter: ','})
	require.NoError(t, err)
	assert.Equal(t, [][]string{{"a", "b"}, {"", ""}}, rowsOf(t, rows))
}

func TestParse_CRLFAndCRAndLFTerminators(t *testing.T) {
	e := New()
	rows, err := e.Parse("a,b\r\n1,2\r3,4\n5,6", Options{Delimiter: ','})
	require.NoError(t, err)
	assert.Equal(t, [][]string{
		{"a", "b"}, {"1", "2"}, {"3", "4"}, {"5", "6"},
	}, rowsOf(t, rows))
}

func TestParse_UnclosedQuotesFails(t *testing.T) {
	e := New()
	_, err := e.Parse("a,b\n\"unterminated,b", Options{Delimiter: ','})
	require.Error(t, err)
}

func TestParse_TrimAfterQuoteRemoval(t *testing.T) {
	e := New()
	rows, err := e.Parse(`a,b` + "\n" + `  "x"  ,  y  `, Options{Delimiter: ',', Trim: true})
	require.NoError(t, err)
	assert.Equal(t, [][]string{{"a", "b"}, {"x", "y"}}, rowsOf(t, rows))
}

func TestIterateRows_MatchesEagerParse(t *testing.T) {
	e := New()
	input := "a,b,c\n1,2,3\n4,5,6\n7,8,9"
	eager, err := e.Parse(input, Options{Delimiter: ','})
	require.NoError(t, err)

	var lazy [][]string
	for row, err := range e.IterateRows(input, Options{Delimiter: ','}) {
		require.NoError(t, err)
		lazy = append(lazy, []string(row))
	}
	assert.Equal(t, rowsOf(t, eager), lazy)
}

func TestParseRows_CallbackDriven(t *testing.T) {
	e := New()
	var got [][]string
	err := e.ParseRows("a,b\n1,2\n3,4", Options{Delimiter: ','}, func(r Row) bool {
		got = append(got, []string(r))
		return len(got) < 2
	})
	require.NoError(t, err)
	assert.Equal(t, [][]string{{"a", "b"}, {"1", "2"}}, got)
}

func TestEngineUpgrade_NeverSimpleWithQuotes(t *testing.T) {
	d := AnalyzeStructure(`a,"b"`, AnalysisOptions{Delimiter: ','})
	assert.NotEqual(t, RecommendedSimple, d.RecommendedEngine)
}

func TestParserCache_HitsAndMisses(t *testing.T) {
	e := New()
	e.Parse("a,b\n1,2", Options{Delimiter: ','})
	e.Parse("c,d\n3,4", Options{Delimiter: ','}) // same descriptor shape -> cache hit

	st := e.GetStats()
	assert.EqualValues(t, 1, st.CacheMisses)
	assert.EqualValues(t, 1, st.CacheHits)
}

func TestTolerantQuoteMode(t *testing.T) {
	e := New()
	// Interior quote not immediately doubled (so the sample never sets
	// HasEscapedQuotes) and not followed by delimiter/newline/EOF: the
	// quote is literal data and the field stays open past it.
	rows, err := e.Parse(`a,"b " c",d`+"\n", Options{Delimiter: ',', RFC4180Compliant: false})
	require.NoError(t, err)
	require.Len(t, rows, 1)
	assert.Equal(t, []string{"a", `b " c`, "d"}, []string(rows[0]))
}

func TestDelimiterOnlyRowEdgeCase(t *testing.T) {
	e := New()
	rows, err := e.Parse(",,,", Options{Delimiter: ','})
	require.NoError(t, err)
	require.Len(t, rows, 1)
	assert.Equal(t, []string{"", "", "", ""}, []string(rows[0]))
}
