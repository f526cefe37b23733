package codec

import (
	"fmt"

	"github.com/rowkit/csvjson/csverr"
	"github.com/rowkit/csvjson/delim"
	"github.com/rowkit/csvjson/fastpath"
	"github.com/rowkit/csvjson/internal/obslog"
	"github.com/rowkit/csvjson/option"
	"github.com/rowkit/csvjson/value"
)

func logExtraFields(gotFields, wantFields int) {
	obslog.Component("codec").
		WithField("fields", gotFields).
		WithField("headers", wantFields).
		Warn("row has more fields than headers; extra fields dropped")
}

// CsvToJson implements spec §4.C.2: resolve the delimiter (explicit or
// auto-detected via the Delimiter Cache), split input into Rows with the
// Fast-Path Engine, derive headers, coerce and project every data row into a
// Record (or a compact [][]string row under FastPathCompact), enforcing
// MaxRows/MaxRecords.
//
// The returned []*Record is nil and fastRows populated when
// opt.FastPathMode == option.FastPathCompact; exactly one of the two return
// slices is non-nil.
func CsvToJson(input string, opt option.Options, engine *fastpath.Engine, cache *delim.Cache) ([]*Record, [][]string, error) {
	if engine == nil {
		engine = fastpath.Default()
	}
	if cache == nil {
		cache = delim.Default()
	}

	delimiter := resolveDelimiter(input, opt, cache)

	rows, err := engine.Parse(input, fastpath.Options{
		Delimiter:        delimiter,
		Trim:             opt.Trim,
		RFC4180Compliant: opt.RFC4180Compliant,
		ForceEngine:      toRecommendedEngine(opt.ForceEngine),
		HasForceEngine:   opt.HasForceEngine,
	})
	if err != nil {
		return nil, nil, err
	}

	if opt.MaxRows > 0 && int64(len(rows)) > opt.MaxRows {
		return nil, nil, csverr.LimitExceeded("maxRows", opt.MaxRows)
	}

	headers, dataRows := splitHeaderRow(rows, opt)

	if opt.MaxRecords > 0 && int64(len(dataRows)) > opt.MaxRecords {
		return nil, nil, csverr.LimitExceeded("maxRecords", opt.MaxRecords)
	}

	projectedHeaders := headers
	if option.HasTemplate(opt.Template) {
		projectedHeaders = option.TemplateKeys(opt.Template)
	}

	if opt.FastPathMode == option.FastPathCompact {
		out := make([][]string, 0, len(dataRows)+1)
		if opt.IncludeHeaders {
			out = append(out, append([]string(nil), projectedHeaders...))
		}
		for _, row := range dataRows {
			out = append(out, materializeCompactRow(row, headers, projectedHeaders, opt))
		}
		return nil, out, nil
	}

	records := make([]*Record, 0, len(dataRows))
	for _, row := range dataRows {
		records = append(records, materializeRecord(row, headers, projectedHeaders, opt))
	}
	return records, nil, nil
}

// resolveDelimiter honors an explicit opt.Delimiter. Otherwise, with
// opt.AutoDetect off it returns delim.DefaultDelimiter without scoring; with
// it on it consults the Delimiter Cache (opt.UseCache) or makes a direct,
// uncached scorer call via a throwaway one-shot cache.
func resolveDelimiter(input string, opt option.Options, cache *delim.Cache) rune {
	if opt.Delimiter != 0 {
		return opt.Delimiter
	}
	if !opt.AutoDetect {
		return delim.DefaultDelimiter
	}
	candidates := opt.Candidates
	if len(candidates) == 0 {
		candidates = delim.DefaultCandidates
	}
	if opt.UseCache {
		return cache.Detect(input, candidates)
	}
	return delim.New(1).Detect(input, candidates)
}

func toRecommendedEngine(forced string) fastpath.RecommendedEngine {
	switch forced {
	case "simple":
		return fastpath.RecommendedSimple
	case "quoteAware":
		return fastpath.RecommendedQuoteAware
	case "standard":
		return fastpath.RecommendedStandard
	default:
		return fastpath.RecommendedSimple
	}
}

// splitHeaderRow implements spec §4.C.2's header rule: when opt.HasHeaders,
// the first row supplies header names (renamed per opt.RenameMap); otherwise
// headers are synthesized as column_1, column_2, ... and every row is data.
func splitHeaderRow(rows []fastpath.Row, opt option.Options) ([]string, []fastpath.Row) {
	if len(rows) == 0 {
		return nil, nil
	}
	if opt.HasHeaders {
		headers := renameHeaders(rows[0], opt.RenameMap)
		return headers, rows[1:]
	}
	headers := make([]string, len(rows[0]))
	for i := range headers {
		headers[i] = fmt.Sprintf("column_%d", i+1)
	}
	return headers, rows
}

func renameHeaders(row fastpath.Row, renameMap map[string]string) []string {
	out := make([]string, len(row))
	for i, h := range row {
		if renameMap != nil {
			if renamed, ok := renameMap[h]; ok {
				out[i] = renamed
				continue
			}
		}
		out[i] = h
	}
	return out
}

// materializeRecord zips one data row onto headers, coercing each field, and
// projects onto the Template's key order when one was supplied. A row with
// fewer fields than headers yields Null for the missing trailing columns; a
// row with more fields than headers silently drops (or, with
// opt.WarnExtraFields, logs and drops) the extras, per spec §4.B edge cases.
func materializeRecord(row fastpath.Row, headers, projectedHeaders []string, opt option.Options) *Record {
	rec := NewRecord()
	coerce := value.CoerceOptions{ParseNumbers: opt.ParseNumbers, ParseBooleans: opt.ParseBooleans, Trim: opt.Trim}

	raw := NewRecord()
	for i, h := range headers {
		if i < len(row) {
			raw.Set(h, value.CoerceFromText(row[i], coerce))
		} else {
			raw.Set(h, value.Null())
		}
	}
	if len(row) > len(headers) && opt.WarnExtraFields {
		logExtraFields(len(row), len(headers))
	}

	if !option.HasTemplate(opt.Template) {
		return raw
	}
	for _, h := range projectedHeaders {
		if v, ok := raw.Get(h); ok {
			rec.Set(h, v)
			continue
		}
		rec.Set(h, value.FromInterface(option.TemplateDefault(opt.Template, h)))
	}
	return rec
}

func materializeCompactRow(row fastpath.Row, headers, projectedHeaders []string, opt option.Options) []string {
	rec := materializeRecord(row, headers, projectedHeaders, opt)
	out := make([]string, len(projectedHeaders))
	for i, h := range projectedHeaders {
		if v, ok := rec.Get(h); ok {
			out[i] = v.String()
		}
	}
	return out
}
