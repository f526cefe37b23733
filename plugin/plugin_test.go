package plugin

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRegister_RejectsMissingNameOrVersion(t *testing.T) {
	m := New(nil)
	err := m.Register("p1", &Plugin{Version: "1.0"})
	require.Error(t, err)
	err = m.Register("p1", &Plugin{Name: "p"})
	require.Error(t, err)
}

func TestRegister_RejectsDuplicateID(t *testing.T) {
	m := New(nil)
	require.NoError(t, m.Register("p1", &Plugin{Name: "p", Version: "1.0"}))
	err := m.Register("p1", &Plugin{Name: "p2", Version: "1.0"})
	require.Error(t, err)
}

func TestExecuteHook_Scenario6_ComposedInRegistrationOrder(t *testing.T) {
	m := New(nil)
	require.NoError(t, m.Register("prefix-z", &Plugin{
		Name: "z", Version: "1.0",
		Hooks: map[string]HookFunc{
			"before:csvToJson": func(_ context.Context, data interface{}, _ Context) (interface{}, error) {
				return "z\n" + data.(string), nil
			},
		},
	}))
	require.NoError(t, m.Register("identity-xy", &Plugin{
		Name: "xy", Version: "1.0",
		Hooks: map[string]HookFunc{
			"before:csvToJson": func(_ context.Context, data interface{}, _ Context) (interface{}, error) {
				return data.(string) + "", nil
			},
		},
	}))

	out := m.ExecuteHook(context.Background(), "before:csvToJson", "x,y\n1,2", nil)
	assert.Equal(t, "z\nx,y\n1,2", out)
}

func TestExecuteHook_ErrorHookNeverRecursesOnItself(t *testing.T) {
	m := New(nil)
	errorHookCalls := 0
	require.NoError(t, m.Register("err-handler", &Plugin{
		Name: "eh", Version: "1.0",
		Hooks: map[string]HookFunc{
			HookError: func(_ context.Context, data interface{}, _ Context) (interface{}, error) {
				errorHookCalls++
				return nil, errors.New("error hook itself failed")
			},
		},
	}))
	require.NoError(t, m.Register("failing", &Plugin{
		Name: "f", Version: "1.0",
		Hooks: map[string]HookFunc{
			"before:csvToJson": func(_ context.Context, data interface{}, _ Context) (interface{}, error) {
				return nil, errors.New("boom")
			},
		},
	}))

	out := m.ExecuteHook(context.Background(), "before:csvToJson", "input", nil)
	assert.Equal(t, "input", out) // failing handler skipped, data unchanged
	assert.Equal(t, 1, errorHookCalls)
}

func TestSetEnabled_SkipsDisabledPluginWithoutReordering(t *testing.T) {
	m := New(nil)
	require.NoError(t, m.Register("a", &Plugin{Name: "a", Version: "1.0", Hooks: map[string]HookFunc{
		"h": func(_ context.Context, data interface{}, _ Context) (interface{}, error) { return data.(string) + "a", nil },
	}}))
	require.NoError(t, m.Register("b", &Plugin{Name: "b", Version: "1.0", Hooks: map[string]HookFunc{
		"h": func(_ context.Context, data interface{}, _ Context) (interface{}, error) { return data.(string) + "b", nil },
	}}))
	require.NoError(t, m.SetEnabled("a", false))

	out := m.ExecuteHook(context.Background(), "h", "", nil)
	assert.Equal(t, "b", out)
}

func TestExecuteMiddlewares_OnionOrderAndNext(t *testing.T) {
	m := New(nil)
	var order []string
	require.NoError(t, m.Register("outer", &Plugin{
		Name: "outer", Version: "1.0",
		Middlewares: []MiddlewareFunc{
			func(ctx context.Context, pc Context, next NextFunc) error {
				order = append(order, "outer-before")
				err := next(ctx)
				order = append(order, "outer-after")
				return err
			},
		},
	}))
	require.NoError(t, m.Register("inner", &Plugin{
		Name: "inner", Version: "1.0",
		Middlewares: []MiddlewareFunc{
			func(ctx context.Context, pc Context, next NextFunc) error {
				order = append(order, "inner-before")
				err := next(ctx)
				order = append(order, "inner-after")
				return err
			},
		},
	}))

	err := m.ExecuteMiddlewares(context.Background(), nil, func(ctx context.Context) error {
		order = append(order, "final")
		return nil
	})
	require.NoError(t, err)
	assert.Equal(t, []string{"outer-before", "inner-before", "final", "inner-after", "outer-after"}, order)
}

func TestExecuteMiddlewares_NextCalledTwiceIsFatal(t *testing.T) {
	m := New(nil)
	require.NoError(t, m.Register("double", &Plugin{
		Name: "d", Version: "1.0",
		Middlewares: []MiddlewareFunc{
			func(ctx context.Context, pc Context, next NextFunc) error {
				_ = next(ctx)
				return next(ctx)
			},
		},
	}))

	err := m.ExecuteMiddlewares(context.Background(), nil, func(ctx context.Context) error { return nil })
	require.Error(t, err)
}

func TestExecuteMiddlewares_NeverCallingNextShortCircuits(t *testing.T) {
	m := New(nil)
	finalCalled := false
	require.NoError(t, m.Register("blocker", &Plugin{
		Name: "b", Version: "1.0",
		Middlewares: []MiddlewareFunc{
			func(ctx context.Context, pc Context, next NextFunc) error { return nil },
		},
	}))

	err := m.ExecuteMiddlewares(context.Background(), nil, func(ctx context.Context) error {
		finalCalled = true
		return nil
	})
	require.NoError(t, err)
	assert.False(t, finalCalled)
}

func TestExecuteWithPlugins_FullWrapper(t *testing.T) {
	m := New(nil)
	out, err := m.ExecuteWithPlugins(context.Background(), "csvToJson", "input", nil,
		func(ctx context.Context, input interface{}, options interface{}) (interface{}, error) {
			return input.(string) + "-converted", nil
		})
	require.NoError(t, err)
	assert.Equal(t, "input-converted", out)
}

func TestExecuteWithPlugins_ErrorHookFiresOnCoreFailure(t *testing.T) {
	m := New(nil)
	errorSeen := false
	require.NoError(t, m.Register("watcher", &Plugin{
		Name: "w", Version: "1.0",
		Hooks: map[string]HookFunc{
			HookError: func(_ context.Context, data interface{}, _ Context) (interface{}, error) {
				errorSeen = true
				return data, nil
			},
		},
	}))

	_, err := m.ExecuteWithPlugins(context.Background(), "csvToJson", "input", nil,
		func(ctx context.Context, input interface{}, options interface{}) (interface{}, error) {
			return nil, errors.New("core failed")
		})
	require.Error(t, err)
	assert.True(t, errorSeen)
}

func TestRemove_IsIdempotentAndCallsDestroy(t *testing.T) {
	m := New(nil)
	destroyCalls := 0
	require.NoError(t, m.Register("p", &Plugin{
		Name: "p", Version: "1.0",
		Destroy: func() error { destroyCalls++; return nil },
	}))
	require.NoError(t, m.Remove("p"))
	require.NoError(t, m.Remove("p")) // idempotent, no second Destroy call
	assert.Equal(t, 1, destroyCalls)
}

func TestGetStats(t *testing.T) {
	m := New(nil)
	require.NoError(t, m.Register("p", &Plugin{Name: "p", Version: "1.0", Hooks: map[string]HookFunc{
		"h1": func(_ context.Context, data interface{}, _ Context) (interface{}, error) { return data, nil },
	}}))
	m.ExecuteHook(context.Background(), "h1", "x", nil)

	st := m.GetStats()
	assert.Equal(t, 1, st.Plugins)
	assert.Equal(t, 1, st.Hooks)
	assert.EqualValues(t, 1, st.PluginLoads)
	assert.EqualValues(t, 1, st.HookExecutions)
}
