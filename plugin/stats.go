package plugin

// Stats is the plugin-manager slice of the §4.G statistics surface.
type Stats struct {
	PluginLoads          int64
	HookExecutions       int64
	MiddlewareExecutions int64
	Plugins              int
	Hooks                int
	Middlewares          int
	UniqueHooks          int
}

// GetStats returns a snapshot of the manager's current state and
// cumulative counters.
func (m *Manager) GetStats() Stats {
	m.mu.Lock()
	defer m.mu.Unlock()

	hookCount := 0
	for _, entries := range m.hooks {
		hookCount += len(entries)
	}

	return Stats{
		PluginLoads:          m.pluginLoads.Load(),
		HookExecutions:       m.hookExecutions.Load(),
		MiddlewareExecutions: m.middlewareExecutions.Load(),
		Plugins:              len(m.byID),
		Hooks:                hookCount,
		Middlewares:          len(m.middles),
		UniqueHooks:          len(m.hooks),
	}
}

// ResetStats zeroes the cumulative counters without touching registered
// plugins.
func (m *Manager) ResetStats() {
	m.pluginLoads.Reset()
	m.hookExecutions.Reset()
	m.middlewareExecutions.Reset()
}
