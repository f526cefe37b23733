package fastpath

import (
	"strings"

	"github.com/rowkit/csvjson/csverr"
)

// Row is an ordered sequence of raw string fields (spec §3).
type Row []string

// compiledParser is the "compiled" state-machine struct from spec §9: a
// cache value holding the delimiter byte/rune, escape flags, and a
// method-per-tag dispatch, rather than a cached closure over a
// JSON-serialized key (the source's approach).
type compiledParser struct {
	descriptor StructureDescriptor
	kind       EngineKind
	delimiter  rune
	trim       bool
}

func newCompiledParser(d StructureDescriptor, trim bool) *compiledParser {
	return &compiledParser{
		descriptor: d,
		kind:       d.dispatchKind(),
		delimiter:  d.Delimiter,
		trim:       trim,
	}
}

// run drives the state machine over input, invoking emit for every
// non-blank row in order. emit returns false to request early stop (used by
// the lazy iterator when its consumer stops pulling). run returns a
// *csverr.Error for UnclosedQuotes; any other return is nil.
func (p *compiledParser) run(input string, emit func(Row) bool) error {
	data := []rune(input)
	n := len(data)

	quoteAware := p.kind == EngineQuoteAware || p.kind == EngineQuoteAwareEscaped || p.kind == EngineStandard
	escapeEnabled := p.kind == EngineSimpleEscaped || p.kind == EngineQuoteAwareEscaped
	hasEscapedQuotes := p.descriptor.HasEscapedQuotes
	rfcStrict := p.descriptor.RFC4180Compliant

	var field []rune
	var row Row
	insideQuotes := false
	line := 1
	stopped := false

	flushField := func() {
		f := string(field)
		if p.trim {
			f = strings.TrimSpace(f)
		}
		row = append(row, f)
		field = field[:0]
	}

	closeRow := func() {
		flushField()
		blank := len(row) == 1 && strings.TrimSpace(row[0]) == ""
		if !blank {
			if !emit(row) {
				stopped = true
			}
		}
		row = nil
		line++
	}

	i := 0
	for i < n && !stopped {
		c := data[i]

		if escapeEnabled && c == '\\' {
			if i+1 < n {
				next := data[i+1]
				switch next {
				case '\n', '\r':
					field = append(field, '\\')
					i++
				case '\\':
					field = append(field, '\\')
					i += 2
				default:
					field = append(field, next)
					i += 2
				}
			} else {
				field = append(field, '\\')
				i++
			}
			continue
		}

		if quoteAware && c == '"' {
			if !insideQuotes {
				insideQuotes = true
				i++
				continue
			}
			// insideQuotes == true
			if hasEscapedQuotes && i+1 < n && data[i+1] == '"' {
				sig, eof := nextSignificant(data, i+2)
				if eof || sig == '\n' || sig == '\r' {
					insideQuotes = false
					i += 2
				} else {
					field = append(field, '"')
					i += 2
				}
				continue
			}
			if hasEscapedQuotes {
				// single, non-doubled quote: standard closing quote.
				insideQuotes = false
				i++
				continue
			}
			if rfcStrict {
				// Strict RFC 4180: an unescaped interior quote closes the field.
				insideQuotes = false
				i++
				continue
			}
			// Tolerant mode (spec §9 open question): a lone interior quote
			// only closes the field if the next significant character is a
			// delimiter, newline, or EOF; otherwise it is literal data and
			// quoting continues.
			sig, eof := nextSignificant(data, i+1)
			if eof || sig == p.delimiter || sig == '\n' || sig == '\r' {
				insideQuotes = false
				i++
			} else {
				field = append(field, '"')
				i++
			}
			continue
		}

		if insideQuotes {
			field = append(field, c)
			i++
			continue
		}

		switch {
		case c == p.delimiter:
			flushField()
			i++
		case c == '\r':
			if i+1 < n && data[i+1] == '\n' {
				i += 2
			} else {
				i++
			}
			closeRow()
		case c == '\n':
			i++
			closeRow()
		default:
			field = append(field, c)
			i++
		}
	}

	if stopped {
		return nil
	}

	if insideQuotes {
		return csverr.UnclosedQuotes(line)
	}

	if len(field) > 0 || len(row) > 0 {
		closeRow()
	}

	return nil
}

// nextSignificant scans forward from pos skipping spaces/tabs (not
// newlines, since a newline is itself a significant terminator) and
// reports the next meaningful rune, or eof=true if none remain.
func nextSignificant(data []rune, pos int) (r rune, eof bool) {
	for pos < len(data) {
		c := data[pos]
		if c == ' ' || c == '\t' {
			pos++
			continue
		}
		return c, false
	}
	return 0, true
}
