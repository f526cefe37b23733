// Package plugin implements the Plugin Manager (spec §4.E): a named
// plugin registry, named-hook dispatch at well-known points in a
// conversion, an onion-style middleware chain with single-shot next()
// discipline, error-hook fan-out, and statistics.
//
// This is a distinct concern from the hooks package (spec §4.D's ordered
// beforeConvert/perRow/afterConvert lists run inside the codec stage);
// plugin.Manager is the outer wrapper spec §2's data-flow diagram
// describes as wrapping "the whole call with before/after hooks and
// middleware".
package plugin

import (
	"context"
	"strconv"
	"sync"

	"github.com/rowkit/csvjson/csverr"
	"github.com/rowkit/csvjson/internal/stats"
)

// Pre-registered hook names (spec §4.E); any other string is also valid.
const (
	HookBeforeCsvToJson  = "before:csvToJson"
	HookAfterCsvToJson   = "after:csvToJson"
	HookBeforeJsonToCsv  = "before:jsonToCsv"
	HookAfterJsonToCsv   = "after:jsonToCsv"
	HookBeforeParse      = "before:parse"
	HookAfterParse       = "after:parse"
	HookBeforeSerialize  = "before:serialize"
	HookAfterSerialize   = "after:serialize"
	HookError            = "error"
	HookValidation       = "validation"
	HookTransformation   = "transformation"
)

// Context is the merged metadata bag handed to every hook/middleware
// invocation (spec §4.E: "managerContext ⊕ callerContext ⊕ {hookName,
// plugin}").
type Context map[string]interface{}

func (c Context) merge(others ...Context) Context {
	out := make(Context, len(c))
	for k, v := range c {
		out[k] = v
	}
	for _, o := range others {
		for k, v := range o {
			out[k] = v
		}
	}
	return out
}

// HookFunc is a named-hook handler: receives the current data and the
// merged context, returns the (possibly transformed) data for the next
// handler.
type HookFunc func(ctx context.Context, data interface{}, pc Context) (interface{}, error)

// NextFunc continues an onion middleware chain.
type NextFunc func(ctx context.Context) error

// MiddlewareFunc is an onion-style handler with an explicit next().
type MiddlewareFunc func(ctx context.Context, pc Context, next NextFunc) error

// Plugin is the descriptor of spec §4.E: `{name, version, description?,
// hooks?, middlewares?, init?, destroy?}`.
type Plugin struct {
	Name        string
	Version     string
	Description string
	Hooks       map[string]HookFunc
	Middlewares []MiddlewareFunc
	Init        func(m *Manager) error
	Destroy     func() error
}

type registeredPlugin struct {
	id      string
	plugin  *Plugin
	enabled bool
}

type hookEntry struct {
	pluginID string
	fn       HookFunc
}

type middlewareEntry struct {
	pluginID string
	fn       MiddlewareFunc
}

// Manager is the long-lived plugin registry (spec §3 "Lifecycle": "Plugin
// Manager is long-lived and holds plugin references for the process
// lifetime unless explicitly removed").
type Manager struct {
	mu sync.Mutex

	order   []string
	byID    map[string]*registeredPlugin
	hooks   map[string][]hookEntry
	middles []middlewareEntry

	managerContext Context

	pluginLoads          stats.Counter
	hookExecutions       stats.Counter
	middlewareExecutions stats.Counter
}

// New builds an empty Manager. managerContext is merged into every hook
// and middleware invocation (spec §4.E).
func New(managerContext Context) *Manager {
	if managerContext == nil {
		managerContext = Context{}
	}
	return &Manager{
		byID:           make(map[string]*registeredPlugin),
		hooks:          make(map[string][]hookEntry),
		managerContext: managerContext,
	}
}

var defaultManager = New(nil)

// Default returns the convenience process-wide Manager instance (spec §9:
// "expose both as explicit dependencies... do not hard-code globals into
// the hot path").
func Default() *Manager { return defaultManager }

// Register validates and installs p under id (spec §4.E): id must be
// unique, Name and Version must be non-empty, and every hook/middleware
// must be a non-nil function. Use is an alias for Register.
func (m *Manager) Register(id string, p *Plugin) error {
	if p == nil {
		return csverr.Validation(csverr.CodeMalformedPlugin, "plugin descriptor is nil")
	}
	if p.Name == "" || p.Version == "" {
		return csverr.Validation(csverr.CodeMalformedPlugin, "plugin must declare name and version")
	}
	for name, fn := range p.Hooks {
		if fn == nil {
			return csverr.Validation(csverr.CodeMalformedPlugin, "hook \""+name+"\" is not callable")
		}
	}
	for i, fn := range p.Middlewares {
		if fn == nil {
			return csverr.Validation(csverr.CodeMalformedPlugin, "middleware at index "+strconv.Itoa(i)+" is not callable")
		}
	}

	m.mu.Lock()
	if _, exists := m.byID[id]; exists {
		m.mu.Unlock()
		return csverr.New(csverr.KindValidation, csverr.CodePluginConflict, "plugin \""+id+"\" is already registered")
	}

	rp := &registeredPlugin{id: id, plugin: p, enabled: true}
	m.byID[id] = rp
	m.order = append(m.order, id)
	for name, fn := range p.Hooks {
		m.hooks[name] = append(m.hooks[name], hookEntry{pluginID: id, fn: fn})
	}
	for _, fn := range p.Middlewares {
		m.middles = append(m.middles, middlewareEntry{pluginID: id, fn: fn})
	}
	m.mu.Unlock()

	m.pluginLoads.Inc()

	if p.Init != nil {
		if err := p.Init(m); err != nil {
			_ = m.Remove(id)
			return err
		}
	}
	return nil
}

// Use is an alias for Register (spec §4.E: "`use` is an alias").
func (m *Manager) Use(id string, p *Plugin) error { return m.Register(id, p) }

// SetEnabled toggles dispatch of a registered plugin's hooks/middlewares
// without removing it.
func (m *Manager) SetEnabled(id string, enabled bool) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	rp, ok := m.byID[id]
	if !ok {
		return csverr.New(csverr.KindValidation, csverr.CodePluginConflict, "plugin \""+id+"\" is not registered")
	}
	rp.enabled = enabled
	return nil
}

// Remove calls destroy(), evicts id's hooks/middlewares/record, and is
// idempotent (spec §4.E).
func (m *Manager) Remove(id string) error {
	m.mu.Lock()
	rp, ok := m.byID[id]
	if !ok {
		m.mu.Unlock()
		return nil
	}
	delete(m.byID, id)
	for i, existing := range m.order {
		if existing == id {
			m.order = append(m.order[:i], m.order[i+1:]...)
			break
		}
	}
	for name, entries := range m.hooks {
		filtered := entries[:0:0]
		for _, e := range entries {
			if e.pluginID != id {
				filtered = append(filtered, e)
			}
		}
		m.hooks[name] = filtered
	}
	filteredMW := m.middles[:0:0]
	for _, e := range m.middles {
		if e.pluginID != id {
			filteredMW = append(filteredMW, e)
		}
	}
	m.middles = filteredMW
	m.mu.Unlock()

	if rp.plugin.Destroy != nil {
		return rp.plugin.Destroy()
	}
	return nil
}

// Clear removes every registered plugin, calling each one's Destroy (spec
// §6 PluginManager surface: "register, use, remove, setEnabled, ...,
// clear"). An error from an individual Destroy call does not stop the
// sweep; the first such error is returned.
func (m *Manager) Clear() error {
	m.mu.Lock()
	ids := append([]string(nil), m.order...)
	m.mu.Unlock()

	var firstErr error
	for _, id := range ids {
		if err := m.Remove(id); err != nil && firstErr == nil {
			firstErr = err
		}
	}
	return firstErr
}
