package codec

import (
	"fmt"

	"github.com/rowkit/csvjson/delim"
	"github.com/rowkit/csvjson/fastpath"
	"github.com/rowkit/csvjson/option"
)

// ResolveDelimiter exposes resolveDelimiter for the stream package, which
// needs the same explicit/auto-detect/cache resolution this package's own
// CsvToJson uses, but applied once up front to a sample rather than to the
// whole buffered input.
func ResolveDelimiter(sample string, opt option.Options, cache *delim.Cache) rune {
	return resolveDelimiter(sample, opt, cache)
}

// RenameHeaders exposes renameHeaders for the stream package's header row
// handling.
func RenameHeaders(row fastpath.Row, renameMap map[string]string) []string {
	return renameHeaders(row, renameMap)
}

// SynthesizeColumnHeaders builds the column_1..column_n header set used
// when opt.HasHeaders is false (spec §4.C.2).
func SynthesizeColumnHeaders(n int) []string {
	headers := make([]string, n)
	for i := range headers {
		headers[i] = fmt.Sprintf("column_%d", i+1)
	}
	return headers
}

// MaterializeRow exposes materializeRecord for the stream package's
// per-chunk row materialization.
func MaterializeRow(row fastpath.Row, headers, projectedHeaders []string, opt option.Options) *Record {
	return materializeRecord(row, headers, projectedHeaders, opt)
}

// RenderHeaderLine exposes renderHeaderRow+joinFields together, so
// stream.JsonToCsvStream can emit one header line without re-deriving the
// escaping/renaming rules JsonToCsv already owns.
func RenderHeaderLine(headers []string, opt option.Options) string {
	delimiter := opt.Delimiter
	if delimiter == 0 {
		delimiter = DefaultWriteDelimiter
	}
	return joinFields(renderHeaderRow(headers, opt.RenameMap), delimiter, opt.PreventCsvInjection)
}

// RenderRecordLine projects rec onto headers and renders one escaped CSV
// line, mirroring JsonToCsv's per-row behavior for the streaming path.
func RenderRecordLine(rec *Record, headers []string, opt option.Options) string {
	delimiter := opt.Delimiter
	if delimiter == 0 {
		delimiter = DefaultWriteDelimiter
	}
	return joinFields(projectRow(rec, headers, opt), delimiter, opt.PreventCsvInjection)
}

// DeriveStreamHeaders picks the header set for a streaming JSON->CSV run:
// the Template's keys when one is given, otherwise firstRecord's own key
// order (the streaming equivalent of deriveHeaders, which needs the whole
// slice only to read records[0]).
func DeriveStreamHeaders(firstRecord *Record, opt option.Options) []string {
	if option.HasTemplate(opt.Template) {
		return option.TemplateKeys(opt.Template)
	}
	if firstRecord == nil {
		return nil
	}
	return append([]string(nil), firstRecord.Keys()...)
}
