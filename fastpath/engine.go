// Package fastpath implements the Fast-Path Engine (spec §4.B): structure
// classification from a prefix sample, a compiled-parser cache keyed by the
// immutable StructureDescriptor, and both eager and lazy row emission.
package fastpath

import (
	"iter"
	"sync"

	"github.com/rowkit/csvjson/internal/obslog"
	"github.com/rowkit/csvjson/internal/stats"
)

// Options configures a single parse/iterate call (the subset of spec §3's
// Conversion Options this package cares about).
type Options struct {
	Delimiter        rune // 0 = auto-detect from the engine's own scorer
	Candidates       []rune
	Trim             bool
	RFC4180Compliant bool
	ForceEngine      RecommendedEngine
	HasForceEngine   bool
}

// Stats is the §4.G statistics surface for the Fast-Path Engine.
type Stats struct {
	SimpleParserCount   int64
	QuoteAwareCount     int64
	StandardParserCount int64
	CacheHits           int64
	CacheMisses         int64
	TotalParsers        int64
	HitRate             float64
}

// Engine owns the two independent compiled-parser caches from spec §4.B
// (one for eager parsers, one for streaming row emitters) plus the counters
// behind GetStats. The zero Engine is not usable; construct with New.
type Engine struct {
	mu sync.Mutex

	eagerCache  map[StructureDescriptor]*compiledParser
	streamCache map[StructureDescriptor]*compiledParser

	simpleCount     stats.Counter
	quoteAwareCount stats.Counter
	standardCount   stats.Counter
	eagerHits       stats.Counter
	eagerMisses     stats.Counter
	streamHits      stats.Counter
	streamMisses    stats.Counter
}

// New builds an empty Engine.
func New() *Engine {
	return &Engine{
		eagerCache:  make(map[StructureDescriptor]*compiledParser),
		streamCache: make(map[StructureDescriptor]*compiledParser),
	}
}

var defaultEngine = New()

// Default returns the convenience process-wide Engine instance (spec §9:
// expose explicit dependencies, keep a default for convenience).
func Default() *Engine { return defaultEngine }

func (e *Engine) analysisOptions(opt Options) AnalysisOptions {
	return AnalysisOptions{
		Delimiter:        opt.Delimiter,
		Candidates:       opt.Candidates,
		ForceEngine:      opt.ForceEngine,
		HasForceEngine:   opt.HasForceEngine,
		RFC4180Compliant: opt.RFC4180Compliant,
	}
}

func (e *Engine) recordKind(kind EngineKind) {
	switch kind {
	case EngineSimple, EngineSimpleEscaped:
		e.simpleCount.Inc()
	case EngineQuoteAware, EngineQuoteAwareEscaped:
		e.quoteAwareCount.Inc()
	case EngineStandard:
		e.standardCount.Inc()
	}
}

// compileParser returns the eager-mode compiled parser for descriptor d and
// the given trim setting, building and caching it on a miss (a cached parser
// compiled with the other trim setting counts as a miss and is replaced).
func (e *Engine) compileParser(d StructureDescriptor, trim bool) *compiledParser {
	e.mu.Lock()
	if p, ok := e.eagerCache[d]; ok && p.trim == trim {
		e.mu.Unlock()
		e.eagerHits.Inc()
		return p
	}
	e.mu.Unlock()

	e.eagerMisses.Inc()
	p := newCompiledParser(d, trim)
	e.recordKind(p.kind)

	e.mu.Lock()
	e.eagerCache[d] = p
	e.mu.Unlock()
	return p
}

// compileRowEmitter returns the streaming-mode compiled parser for
// descriptor d, building and caching it on a miss. It is tracked in a cache
// independent from compileParser's, per spec §4.B.
func (e *Engine) compileRowEmitter(d StructureDescriptor, trim bool) *compiledParser {
	e.mu.Lock()
	if p, ok := e.streamCache[d]; ok && p.trim == trim {
		e.mu.Unlock()
		e.streamHits.Inc()
		return p
	}
	e.mu.Unlock()

	e.streamMisses.Inc()
	p := newCompiledParser(d, trim)
	e.recordKind(p.kind)

	e.mu.Lock()
	e.streamCache[d] = p
	e.mu.Unlock()
	return p
}

// Parse is the eager API: classify input, compile (or reuse) a parser, and
// return every row.
func (e *Engine) Parse(input string, opt Options) ([]Row, error) {
	d := AnalyzeStructure(input, e.analysisOptions(opt))
	p := e.compileParser(d, opt.Trim)

	var rows []Row
	err := p.run(input, func(r Row) bool {
		rows = append(rows, append(Row(nil), r...))
		return true
	})
	if err != nil {
		obslog.Component("fastpath").WithField("engine", p.kind.String()).
			Warn("parse failed: ", err)
		return nil, err
	}
	return rows, nil
}

// ParseRows is the callback-driven variant of Parse (spec §4.B). onRow
// returning false stops iteration early without error.
func (e *Engine) ParseRows(input string, opt Options, onRow func(Row) bool) error {
	d := AnalyzeStructure(input, e.analysisOptions(opt))
	p := e.compileParser(d, opt.Trim)
	return p.run(input, onRow)
}

// IterateRows is the lazy API (spec §4.B): a range-over-func sequence of
// (Row, error) pairs. Consumers should stop ranging as soon as a non-nil
// error is yielded; the sequence itself stops yielding further rows once an
// error or an early "no more wanted" break occurs.
func (e *Engine) IterateRows(input string, opt Options) iter.Seq2[Row, error] {
	d := AnalyzeStructure(input, e.analysisOptions(opt))
	p := e.compileRowEmitter(d, opt.Trim)

	return func(yield func(Row, error) bool) {
		runErr := p.run(input, func(r Row) bool {
			return yield(append(Row(nil), r...), nil)
		})
		if runErr != nil {
			yield(nil, runErr)
		}
	}
}

// GetStats returns the §4.G statistics snapshot.
func (e *Engine) GetStats() Stats {
	hits := e.eagerHits.Load() + e.streamHits.Load()
	misses := e.eagerMisses.Load() + e.streamMisses.Load()
	return Stats{
		SimpleParserCount:   e.simpleCount.Load(),
		QuoteAwareCount:     e.quoteAwareCount.Load(),
		StandardParserCount: e.standardCount.Load(),
		CacheHits:           hits,
		CacheMisses:         misses,
		TotalParsers:        hits + misses,
		HitRate:             stats.HitRate(hits, misses),
	}
}

// Reset clears both parser caches and zeroes the statistics counters.
func (e *Engine) Reset() {
	e.mu.Lock()
	e.eagerCache = make(map[StructureDescriptor]*compiledParser)
	e.streamCache = make(map[StructureDescriptor]*compiledParser)
	e.mu.Unlock()

	e.simpleCount.Reset()
	e.quoteAwareCount.Reset()
	e.standardCount.Reset()
	e.eagerHits.Reset()
	e.eagerMisses.Reset()
	e.streamHits.Reset()
	e.streamMisses.Reset()
}
