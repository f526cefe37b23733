package plugin

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/rowkit/csvjson/csverr"
	"github.com/rowkit/csvjson/internal/obslog"
)

// slowHookThreshold is the spec §4.E telemetry cutoff: "Any individual
// hook or middleware taking > 100 ms emits a warning".
const slowHookThreshold = 100 * time.Millisecond

func (m *Manager) snapshotHooks(name string) []hookEntry {
	m.mu.Lock()
	defer m.mu.Unlock()
	entries := m.hooks[name]
	out := make([]hookEntry, 0, len(entries))
	for _, e := range entries {
		if rp, ok := m.byID[e.pluginID]; ok && rp.enabled {
			out = append(out, e)
		}
	}
	return out
}

func (m *Manager) snapshotMiddlewares() []middlewareEntry {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]middlewareEntry, 0, len(m.middles))
	for _, e := range m.middles {
		if rp, ok := m.byID[e.pluginID]; ok && rp.enabled {
			out = append(out, e)
		}
	}
	return out
}

// ExecuteHook walks name's handler list in registration order (spec
// §4.E). Each handler's return value becomes the next handler's input. A
// handler that errors is reported to the "error" hook (never recursively,
// if name is itself "error") and skipped; later handlers still run
// against the last successfully produced data. ExecuteHook itself never
// fails.
func (m *Manager) ExecuteHook(ctx context.Context, name string, data interface{}, callerCtx Context) interface{} {
	for _, entry := range m.snapshotHooks(name) {
		pc := m.managerContext.merge(callerCtx, Context{"hookName": name, "plugin": entry.pluginID})

		result, err := m.timedHook(ctx, name, entry.fn, data, pc)
		if err != nil {
			if name != HookError {
				m.dispatchError(ctx, name, err, pc)
			} else {
				obslog.Component("plugin").WithField("hook", name).Warn("error hook handler failed: ", err)
			}
			continue
		}
		data = result
		m.hookExecutions.Inc()
	}
	return data
}

func (m *Manager) timedHook(ctx context.Context, name string, fn HookFunc, data interface{}, pc Context) (interface{}, error) {
	start := time.Now()
	result, err := fn(ctx, data, pc)
	m.reportIfSlow("hook", name, time.Since(start))
	return result, err
}

func (m *Manager) dispatchError(ctx context.Context, operation string, cause error, pc Context) {
	errCtx := pc.merge(Context{"operation": operation, "error": cause})
	m.ExecuteHook(ctx, HookError, cause, errCtx)
}

func (m *Manager) reportIfSlow(kind, name string, elapsed time.Duration) {
	if elapsed <= slowHookThreshold {
		return
	}
	obslog.Component("plugin").
		WithField("correlationId", uuid.NewString()).
		WithField("kind", kind).
		WithField("name", name).
		WithField("elapsedMs", elapsed.Milliseconds()).
		Warn("slow plugin execution")
}

// ExecuteMiddlewares runs the onion chain of spec §4.E: each middleware
// receives (ctx, pc, next); calling next() twice raises a fatal
// CodeNextCalledTwice error, never calling it short-circuits the chain
// before finalHandler runs. A middleware error fires the "error" hook and
// propagates to the caller.
func (m *Manager) ExecuteMiddlewares(ctx context.Context, pc Context, finalHandler func(ctx context.Context) error) error {
	entries := m.snapshotMiddlewares()
	err := m.runMiddlewareChain(ctx, entries, 0, pc, finalHandler)
	if err != nil {
		m.dispatchError(ctx, "middleware", err, pc)
	}
	return err
}

func (m *Manager) runMiddlewareChain(ctx context.Context, entries []middlewareEntry, i int, pc Context, finalHandler func(ctx context.Context) error) error {
	if i >= len(entries) {
		return finalHandler(ctx)
	}
	entry := entries[i]

	called := false
	next := func(nextCtx context.Context) error {
		if called {
			return csverr.New(csverr.KindValidation, csverr.CodeNextCalledTwice, "next() called twice in middleware \""+entry.pluginID+"\"")
		}
		called = true
		return m.runMiddlewareChain(nextCtx, entries, i+1, pc, finalHandler)
	}

	start := time.Now()
	err := entry.fn(ctx, pc, next)
	m.reportIfSlow("middleware", entry.pluginID, time.Since(start))

	// A middleware (or anything downstream of its next() call, including
	// coreFn) that errors propagates straight to the top of the chain, where
	// ExecuteMiddlewares or ExecuteWithPlugins fires the "error" hook exactly
	// once (spec §4.E step 4).
	if err != nil {
		return err
	}
	m.middlewareExecutions.Inc()
	return nil
}

// ExecuteWithPlugins is the top-level wrapper of spec §4.E:
//  1. input' <- ExecuteHook("before:"+operation, input, ctx)
//  2. run middlewares; the final handler calls coreFn(input', options)
//  3. result' <- ExecuteHook("after:"+operation, result, ctx) and return
//  4. on any exception, fire the "error" hook with {operation, error,
//     context} and rethrow.
func (m *Manager) ExecuteWithPlugins(
	ctx context.Context,
	operation string,
	input interface{},
	options interface{},
	coreFn func(ctx context.Context, input interface{}, options interface{}) (interface{}, error),
) (interface{}, error) {
	pc := Context{"operation": operation, "options": options}

	transformedInput := m.ExecuteHook(ctx, "before:"+operation, input, pc)

	var result interface{}
	err := m.runMiddlewareChain(ctx, m.snapshotMiddlewares(), 0, pc.merge(Context{"input": transformedInput}), func(innerCtx context.Context) error {
		r, err := coreFn(innerCtx, transformedInput, options)
		if err != nil {
			return err
		}
		result = r
		return nil
	})
	if err != nil {
		m.dispatchError(ctx, operation, err, pc)
		return nil, err
	}

	return m.ExecuteHook(ctx, "after:"+operation, result, pc), nil
}
