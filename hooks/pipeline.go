// Package hooks implements the Transform Hooks pipeline (spec §4.D): three
// ordered, append-only lists of callables — beforeConvert, perRow,
// afterConvert — run in registration order against the data flowing through
// a conversion.
//
// The spec's JS source distinguishes sync and async callables; Go collapses
// that distinction naturally (a function call either blocks or doesn't, and
// context.Context carries cancellation either way), the same way
// Carlodf-cetl's transform.Decoder takes a context.Context on every call
// instead of exposing separate sync/async entry points. Every hook here
// therefore has one signature, context-aware, and ApplyAllAsync is a thin
// alias documenting intent at the call site rather than a second code path.
package hooks

import (
	"context"
	"sync"

	"github.com/rowkit/csvjson/csverr"
)

// Context is the per-call metadata bag merged and threaded through every
// hook invocation (spec §4.D: "(data, ctx)" / "(row, index, ctx)").
type Context map[string]interface{}

// BeforeConvertFunc runs once against the whole input/output payload.
type BeforeConvertFunc func(ctx context.Context, data interface{}, rc Context) (interface{}, error)

// AfterConvertFunc has the same shape as BeforeConvertFunc; kept as a
// distinct name so pipeline registration reads intention-first.
type AfterConvertFunc func(ctx context.Context, data interface{}, rc Context) (interface{}, error)

// PerRowFunc runs once per row/record during the codec stage.
type PerRowFunc func(ctx context.Context, row interface{}, index int, rc Context) (interface{}, error)

// Pipeline holds the three ordered hook lists of spec §4.D. The zero value
// is usable.
type Pipeline struct {
	mu     sync.Mutex
	before []BeforeConvertFunc
	perRow []PerRowFunc
	after  []AfterConvertFunc
}

// New builds an empty Pipeline.
func New() *Pipeline { return &Pipeline{} }

// RegisterBeforeConvert appends fn, accepting either a typed
// BeforeConvertFunc or any interface{} so callers assembling pipelines from
// dynamic configuration get the same "not callable" validation failure the
// spec requires of a duck-typed host.
func (p *Pipeline) RegisterBeforeConvert(fn interface{}) error {
	typed, ok := asBeforeConvert(fn)
	if !ok {
		return csverr.Validation(csverr.CodeInvalidOption, "beforeConvert hook is not callable")
	}
	p.mu.Lock()
	p.before = append(p.before, typed)
	p.mu.Unlock()
	return nil
}

// RegisterPerRow appends fn to the perRow list.
func (p *Pipeline) RegisterPerRow(fn interface{}) error {
	typed, ok := asPerRow(fn)
	if !ok {
		return csverr.Validation(csverr.CodeInvalidOption, "perRow hook is not callable")
	}
	p.mu.Lock()
	p.perRow = append(p.perRow, typed)
	p.mu.Unlock()
	return nil
}

// RegisterAfterConvert appends fn to the afterConvert list.
func (p *Pipeline) RegisterAfterConvert(fn interface{}) error {
	typed, ok := asAfterConvert(fn)
	if !ok {
		return csverr.Validation(csverr.CodeInvalidOption, "afterConvert hook is not callable")
	}
	p.mu.Lock()
	p.after = append(p.after, typed)
	p.mu.Unlock()
	return nil
}

func asBeforeConvert(fn interface{}) (BeforeConvertFunc, bool) {
	switch t := fn.(type) {
	case BeforeConvertFunc:
		return t, true
	case func(context.Context, interface{}, Context) (interface{}, error):
		return t, true
	case func(interface{}, Context) (interface{}, error):
		return func(_ context.Context, data interface{}, rc Context) (interface{}, error) { return t(data, rc) }, true
	default:
		return nil, false
	}
}

func asAfterConvert(fn interface{}) (AfterConvertFunc, bool) {
	switch t := fn.(type) {
	case AfterConvertFunc:
		return t, true
	case func(context.Context, interface{}, Context) (interface{}, error):
		return t, true
	case func(interface{}, Context) (interface{}, error):
		return func(_ context.Context, data interface{}, rc Context) (interface{}, error) { return t(data, rc) }, true
	default:
		return nil, false
	}
}

func asPerRow(fn interface{}) (PerRowFunc, bool) {
	switch t := fn.(type) {
	case PerRowFunc:
		return t, true
	case func(context.Context, interface{}, int, Context) (interface{}, error):
		return t, true
	case func(interface{}, int, Context) (interface{}, error):
		return func(_ context.Context, row interface{}, i int, rc Context) (interface{}, error) { return t(row, i, rc) }, true
	default:
		return nil, false
	}
}

// snapshot copies all three lists under the lock, per spec §4.D: "Hook
// lists are append-only during a conversion; snapshotted at pipeline entry
// so late registrations do not affect an in-flight call."
func (p *Pipeline) snapshot() (before []BeforeConvertFunc, perRow []PerRowFunc, after []AfterConvertFunc) {
	p.mu.Lock()
	defer p.mu.Unlock()
	before = append([]BeforeConvertFunc(nil), p.before...)
	perRow = append([]PerRowFunc(nil), p.perRow...)
	after = append([]AfterConvertFunc(nil), p.after...)
	return
}

// ApplyAll runs the snapshotted beforeConvert hooks in order, feeding each
// hook's output to the next.
func (p *Pipeline) ApplyAll(ctx context.Context, data interface{}, rc Context) (interface{}, error) {
	before, _, _ := p.snapshot()
	return runBeforeChain(ctx, before, data, rc)
}

// ApplyAllAsync is ApplyAll under a name matching spec §4.D's sync/async
// pairing; Go's blocking calls plus ctx cancellation already give async
// callers what they need; see the package doc comment.
func (p *Pipeline) ApplyAllAsync(ctx context.Context, data interface{}, rc Context) (interface{}, error) {
	return p.ApplyAll(ctx, data, rc)
}

// ApplyAfter runs the snapshotted afterConvert hooks in order.
func (p *Pipeline) ApplyAfter(ctx context.Context, data interface{}, rc Context) (interface{}, error) {
	_, _, after := p.snapshot()
	return runAfterChain(ctx, after, data, rc)
}

// ApplyAfterAsync mirrors ApplyAllAsync for the afterConvert list.
func (p *Pipeline) ApplyAfterAsync(ctx context.Context, data interface{}, rc Context) (interface{}, error) {
	return p.ApplyAfter(ctx, data, rc)
}

// ApplyPerRow runs the snapshotted perRow hooks in order against one row.
func (p *Pipeline) ApplyPerRow(ctx context.Context, row interface{}, index int, rc Context) (interface{}, error) {
	_, perRow, _ := p.snapshot()
	return runPerRowChain(ctx, perRow, row, index, rc)
}

func runBeforeChain(ctx context.Context, hooks []BeforeConvertFunc, data interface{}, rc Context) (interface{}, error) {
	var err error
	for _, h := range hooks {
		data, err = h(ctx, data, rc)
		if err != nil {
			return nil, err
		}
	}
	return data, nil
}

func runAfterChain(ctx context.Context, hooks []AfterConvertFunc, data interface{}, rc Context) (interface{}, error) {
	var err error
	for _, h := range hooks {
		data, err = h(ctx, data, rc)
		if err != nil {
			return nil, err
		}
	}
	return data, nil
}

func runPerRowChain(ctx context.Context, hooks []PerRowFunc, row interface{}, index int, rc Context) (interface{}, error) {
	var err error
	for _, h := range hooks {
		row, err = h(ctx, row, index, rc)
		if err != nil {
			return nil, err
		}
	}
	return row, nil
}
