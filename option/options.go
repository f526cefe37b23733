// Package option defines the Conversion Options struct from spec §3, shared
// by every component so a caller configures one conversion with one value
// the way the teacher's CsvOptions/ProcessCsvOptions are configured once and
// threaded through a single call.
package option

// FastPathMode selects the CSV->JSON emission shape (spec §4.C.2).
type FastPathMode int

const (
	// FastPathObjects emits records (the default).
	FastPathObjects FastPathMode = iota
	// FastPathCompact emits arrays-of-arrays, skipping materialization.
	FastPathCompact
)

// TemplateField describes one entry of a projection Template: the default
// value used when a record is missing that key (spec §4.C.1/§4.C.2).
type TemplateField struct {
	Key     string      `json:"key" js:"key"`
	Default interface{} `json:"default,omitempty" js:"default"`
}

// Options is the Conversion Options struct of spec §3, with the documented
// defaults applied by Default(). The json/js tags follow the teacher's own
// CsvOptions/ProcessCsvOptions convention, so a k6 JS caller can hand this
// struct a plain object literal the same way it hands one to LoadCSV.
type Options struct {
	// Delimiter is the field separator. Zero rune means "auto-detect".
	Delimiter  rune   `json:"delimiter,omitempty" js:"delimiter"`
	Candidates []rune `json:"candidates,omitempty" js:"candidates"`

	IncludeHeaders bool `json:"includeHeaders" js:"includeHeaders"`
	HasHeaders     bool `json:"hasHeaders" js:"hasHeaders"`
	AutoDetect     bool `json:"autoDetect" js:"autoDetect"`
	UseCache       bool `json:"useCache" js:"useCache"`

	PreventCsvInjection bool `json:"preventCsvInjection" js:"preventCsvInjection"`
	ParseNumbers        bool `json:"parseNumbers" js:"parseNumbers"`
	ParseBooleans       bool `json:"parseBooleans" js:"parseBooleans"`
	Trim                bool `json:"trim" js:"trim"`
	RFC4180Compliant    bool `json:"rfc4180Compliant" js:"rfc4180Compliant"`

	// MaxRows/MaxRecords <= 0 means unbounded.
	MaxRows    int64 `json:"maxRows,omitempty" js:"maxRows"`
	MaxRecords int64 `json:"maxRecords,omitempty" js:"maxRecords"`

	RenameMap map[string]string `json:"renameMap,omitempty" js:"renameMap"`
	// Template, when non-empty, fixes the header/key order and supplies
	// per-key defaults for missing values (spec §4.C.1/§4.C.2).
	Template []TemplateField `json:"template,omitempty" js:"template"`

	UseFastPath  bool         `json:"useFastPath" js:"useFastPath"`
	FastPathMode FastPathMode `json:"fastPathMode" js:"fastPathMode"`

	// ForceEngine/HasForceEngine bypass the Fast-Path Engine's own
	// classification (spec §4.B "options.forceEngine overrides all of
	// the above").
	ForceEngine    string `json:"forceEngine,omitempty" js:"forceEngine"`
	HasForceEngine bool   `json:"hasForceEngine,omitempty" js:"hasForceEngine"`

	// WarnExtraFields logs a diagnostic (rather than failing) when a CSV
	// row has more fields than the header set (spec §4.B edge cases).
	WarnExtraFields bool `json:"warnExtraFields,omitempty" js:"warnExtraFields"`
}

// Default returns Options populated with the spec §3 defaults.
func Default() Options {
	return Options{
		Delimiter:           0,
		Candidates:          []rune{';', ',', '\t', '|'},
		IncludeHeaders:      true,
		HasHeaders:          true,
		AutoDetect:          true,
		UseCache:            true,
		PreventCsvInjection: true,
		ParseNumbers:        true,
		ParseBooleans:       false,
		Trim:                true,
		RFC4180Compliant:    true,
		MaxRows:             0,
		MaxRecords:          0,
		RenameMap:           map[string]string{},
		Template:            nil,
		UseFastPath:         true,
		FastPathMode:        FastPathObjects,
	}
}

// TemplateDefault looks up the declared default for key in the template,
// falling back to an empty string when key has no explicit default.
func TemplateDefault(tmpl []TemplateField, key string) interface{} {
	for _, f := range tmpl {
		if f.Key == key {
			if f.Default != nil {
				return f.Default
			}
			return ""
		}
	}
	return ""
}

// TemplateKeys returns the template's key order.
func TemplateKeys(tmpl []TemplateField) []string {
	keys := make([]string, len(tmpl))
	for i, f := range tmpl {
		keys[i] = f.Key
	}
	return keys
}

// HasTemplate reports whether a template was provided.
func HasTemplate(tmpl []TemplateField) bool { return len(tmpl) > 0 }
