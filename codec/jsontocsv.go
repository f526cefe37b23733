package codec

import (
	"strings"

	"github.com/rowkit/csvjson/option"
	"github.com/rowkit/csvjson/value"
)

// DefaultWriteDelimiter is used by JsonToCsv when opt.Delimiter is zero —
// there is no sample to auto-detect from when writing, so this falls back
// to the conventional CSV separator rather than the detector's ';' tie-break.
const DefaultWriteDelimiter = ','

// JsonToCsv implements spec §4.C.1: derive headers (from a Template or the
// first record's key order), project every record onto them, escape every
// field, and join rows with '\n' with no trailing newline.
func JsonToCsv(records []*Record, opt option.Options) string {
	delimiter := opt.Delimiter
	if delimiter == 0 {
		delimiter = DefaultWriteDelimiter
	}

	headers := deriveHeaders(records, opt)

	var lines []string
	if opt.IncludeHeaders {
		lines = append(lines, joinFields(renderHeaderRow(headers, opt.RenameMap), delimiter, opt.PreventCsvInjection))
	}
	for _, rec := range records {
		lines = append(lines, joinFields(projectRow(rec, headers, opt), delimiter, opt.PreventCsvInjection))
	}
	return strings.Join(lines, "\n")
}

func deriveHeaders(records []*Record, opt option.Options) []string {
	if option.HasTemplate(opt.Template) {
		return option.TemplateKeys(opt.Template)
	}
	if len(records) == 0 {
		return nil
	}
	return append([]string(nil), records[0].Keys()...)
}

func renderHeaderRow(headers []string, renameMap map[string]string) []value.Value {
	out := make([]value.Value, len(headers))
	for i, h := range headers {
		name := h
		if renameMap != nil {
			if renamed, ok := renameMap[h]; ok {
				name = renamed
			}
		}
		out[i] = value.FromText(name)
	}
	return out
}

// projectRow zips rec onto headers: existing keys contribute their value,
// missing keys (against a Template) fall back to the template's declared
// default, and keys rec doesn't know about (no Template) render empty.
func projectRow(rec *Record, headers []string, opt option.Options) []value.Value {
	out := make([]value.Value, len(headers))
	for i, h := range headers {
		if v, ok := rec.Get(h); ok {
			out[i] = v
			continue
		}
		if option.HasTemplate(opt.Template) {
			out[i] = value.FromInterface(option.TemplateDefault(opt.Template, h))
			continue
		}
		out[i] = value.Null()
	}
	return out
}

func joinFields(fields []value.Value, delimiter rune, preventInjection bool) string {
	parts := make([]string, len(fields))
	for i, f := range fields {
		parts[i] = EscapeField(f, delimiter, preventInjection)
	}
	return strings.Join(parts, string(delimiter))
}
