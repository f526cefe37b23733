package csvjson

import (
	"go.k6.io/k6/js/modules"
)

// Module is the k6/x/csvjson module (spec §6's External Interfaces exposed
// to JS load-test scripts), mirroring the teacher's flat `StreamLoader`
// module shape: one zero-value struct registered once in init(), its
// exported methods called directly from JS via goja reflection. Streaming
// and engine/cache/plugin-instance construction stay Go-only — there is no
// natural JS-side analogue for a pull-based iterator or a raw ChunkSource,
// so the JS surface covers the eager conversions only.
type Module struct{}

// JsonToCsv is the JS-facing jsonToCsv(records, options).
func (Module) JsonToCsv(records []*Record, opt Options) string {
	return JsonToCsv(records, opt)
}

// CsvToJson is the JS-facing csvToJson(csvText, options).
func (Module) CsvToJson(input string, opt Options) ([]*Record, [][]string, error) {
	return CsvToJson(input, opt)
}

// JsonToNdjson is the JS-facing jsonToNdjson(records).
func (Module) JsonToNdjson(records []*Record) (string, error) {
	return JsonToNdjson(records)
}

// NdjsonToJson is the JS-facing ndjsonToJson(input).
func (Module) NdjsonToJson(input string) ([]*Record, error) {
	return NdjsonToJson(input)
}

// JsonToTsv is the JS-facing jsonToTsv(records, options).
func (Module) JsonToTsv(records []*Record, opt Options) string {
	return JsonToTsv(records, opt)
}

// TsvToJson is the JS-facing tsvToJson(tsvText, options).
func (Module) TsvToJson(input string, opt Options) ([]*Record, [][]string, error) {
	return TsvToJson(input, opt)
}

// ValidateTsv is the JS-facing validateTsv(tsvText, options).
func (Module) ValidateTsv(input string, opt Options) (interface{}, error) {
	problems, err := ValidateTsv(input, opt)
	if err != nil {
		return nil, err
	}
	return problems, nil
}

func init() {
	modules.Register("k6/x/csvjson", new(Module))
}
