package fastpath

// EngineKind is the tagged enum over parser implementations (spec §9
// "Dynamic dispatch in the parser": "a small tagged enum over {Simple,
// SimpleEscaped, QuoteAware, QuoteAwareEscaped}... match on it at the
// row-emission hot loop").
type EngineKind int

const (
	// EngineSimple is the no-quotes, no-embedded-newlines fast path.
	EngineSimple EngineKind = iota
	// EngineSimpleEscaped is EngineSimple with backslash-escape handling.
	EngineSimpleEscaped
	// EngineQuoteAware is the character-by-character quote state machine.
	EngineQuoteAware
	// EngineQuoteAwareEscaped layers an escapeNext latch on EngineQuoteAware.
	EngineQuoteAwareEscaped
	// EngineStandard uses the same state machine as EngineQuoteAware in
	// this implementation (spec §4.B); retained as a distinct tag for
	// future divergence between "may contain embedded newlines" and
	// "has quotes but provably no embedded newlines".
	EngineStandard
)

func (k EngineKind) String() string {
	switch k {
	case EngineSimple:
		return "SIMPLE"
	case EngineSimpleEscaped:
		return "SIMPLE_ESCAPED"
	case EngineQuoteAware:
		return "QUOTE_AWARE"
	case EngineQuoteAwareEscaped:
		return "QUOTE_AWARE_ESCAPED"
	case EngineStandard:
		return "STANDARD"
	default:
		return "UNKNOWN"
	}
}

// RecommendedEngine maps spec §4.B's three public names onto the internal
// dispatch tag, folding the escape-aware variants under their base kind.
type RecommendedEngine int

const (
	RecommendedSimple RecommendedEngine = iota
	RecommendedQuoteAware
	RecommendedStandard
)

func (r RecommendedEngine) String() string {
	switch r {
	case RecommendedSimple:
		return "SIMPLE"
	case RecommendedQuoteAware:
		return "QUOTE_AWARE"
	case RecommendedStandard:
		return "STANDARD"
	default:
		return "UNKNOWN"
	}
}

// StructureDescriptor is the immutable summary of a CSV sample used as the
// parser cache key (spec §3 "Parser Structure Descriptor"). Two descriptors
// with equal fields are == comparable, which is what makes them usable as a
// Go map key straight away (no JSON-serialize-then-hash indirection, per
// spec §9's "Dynamic dispatch" note).
type StructureDescriptor struct {
	Delimiter           rune
	HasQuotes           bool
	HasEscapedQuotes    bool
	HasNewlinesInFields bool
	HasBackslashes      bool
	FieldConsistency    bool
	AvgFieldsPerLine    float64
	MaxFields           int
	RecommendedEngine   RecommendedEngine
	// RFC4180Compliant gates the tolerant-interior-quote behavior (spec §9
	// "Open question — tolerant quote mode"). It is part of the cache key
	// because it changes the compiled parser's behavior, not just its
	// classification.
	RFC4180Compliant bool
}

// dispatchKind resolves the concrete state-machine tag for this descriptor,
// applying the "upgrade SIMPLE to QUOTE_AWARE if a full-input scan reveals
// any quote" rule from spec §4.B at the call site (AnalyzeStructure already
// applies the upgrade before this is called, so this is a pure mapping).
func (d StructureDescriptor) dispatchKind() EngineKind {
	switch d.RecommendedEngine {
	case RecommendedSimple:
		if d.HasBackslashes {
			return EngineSimpleEscaped
		}
		return EngineSimple
	case RecommendedStandard:
		return EngineStandard
	default:
		if d.HasBackslashes {
			return EngineQuoteAwareEscaped
		}
		return EngineQuoteAware
	}
}
