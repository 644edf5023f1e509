package dispatch_test

import (
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bjaus/dispatch"
	"github.com/bjaus/dispatch/dispatchtest"
)

type namedAction string

func (a namedAction) Name() string { return string(a) }

func TestRegistryAdd(t *testing.T) {
	t.Parallel()

	t.Run("declared routes are registered visible", func(t *testing.T) {
		t.Parallel()

		reg := dispatch.NewRegistry()
		a := &dispatchtest.Action{
			ActionName: "users",
			Paths: []dispatch.Path{
				dispatch.NewPath(dispatch.MethodGet, "/users"),
				dispatch.NewPath(dispatch.MethodPost, "users"),
			},
			Log: &dispatchtest.Log{},
		}
		require.NoError(t, reg.Add(a))

		got, ok := reg.Action("users")
		require.True(t, ok)
		assert.Same(t, a, got)

		route, ok := reg.Lookup(dispatch.MethodGet, "/users")
		require.True(t, ok)
		assert.Equal(t, "users", route.Action)
		assert.Equal(t, dispatch.Show, route.Visibility)

		route, ok = reg.Lookup(dispatch.MethodPost, "/users")
		require.True(t, ok, "template is normalized to a leading slash")
		assert.Equal(t, "/users", route.Path.Template)
	})

	t.Run("empty name", func(t *testing.T) {
		t.Parallel()

		reg := dispatch.NewRegistry()
		require.ErrorIs(t, reg.Add(namedAction("")), dispatch.ErrEmptyName)
		assert.Empty(t, reg.Actions())
	})

	t.Run("duplicate name", func(t *testing.T) {
		t.Parallel()

		reg := dispatch.NewRegistry()
		require.NoError(t, reg.Add(namedAction("users")))
		err := reg.Add(namedAction("users"))
		require.ErrorIs(t, err, dispatch.ErrDuplicateAction)
		assert.Contains(t, err.Error(), `"users"`)
		assert.Len(t, reg.Actions(), 1)
	})

	t.Run("actions keep registration order", func(t *testing.T) {
		t.Parallel()

		reg := dispatch.NewRegistry()
		for _, name := range []string{"c", "a", "b"} {
			require.NoError(t, reg.Add(namedAction(name)))
		}

		var names []string
		for _, a := range reg.Actions() {
			names = append(names, a.Name())
		}
		assert.Equal(t, []string{"c", "a", "b"}, names)
	})
}

func TestRegistryRegisterRoute(t *testing.T) {
	t.Parallel()

	reg := dispatch.NewRegistry()
	first, second := namedAction("first"), namedAction("second")
	require.NoError(t, reg.Add(first))
	require.NoError(t, reg.Add(second))

	assert.True(t, dispatch.RegisterRoute(reg, first, dispatch.MethodGet, "/a"))
	assert.True(t, dispatch.RegisterRoute(reg, first, dispatch.MethodGet, "/b"))
	assert.False(t, dispatch.RegisterRoute(reg, second, dispatch.MethodGet, "/a", dispatch.Hide), "replacing reports false")

	route, ok := reg.Lookup(dispatch.MethodGet, "/a")
	require.True(t, ok)
	assert.Equal(t, "second", route.Action, "last registration wins")
	assert.Equal(t, dispatch.Hide, route.Visibility)

	routes := reg.Routes(dispatch.MethodGet)
	require.Len(t, routes, 2)
	assert.Equal(t, "/a", routes[0].Path.Template, "replacement keeps position")
	assert.Equal(t, "/b", routes[1].Path.Template)

	_, ok = reg.Lookup(dispatch.MethodPost, "/a")
	assert.False(t, ok, "routes are per method")
	assert.Nil(t, reg.Routes(dispatch.MethodPost))
}

func TestRegistryRoutesReturnsCopy(t *testing.T) {
	t.Parallel()

	reg := dispatch.NewRegistry()
	a := namedAction("a")
	require.NoError(t, reg.Add(a))
	dispatch.RegisterRoute(reg, a, dispatch.MethodGet, "/x")

	routes := reg.Routes(dispatch.MethodGet)
	routes[0].Action = "mutated"

	route, ok := reg.Lookup(dispatch.MethodGet, "/x")
	require.True(t, ok)
	assert.Equal(t, "a", route.Action)
}

func TestRegistryConcurrentRegistration(t *testing.T) {
	t.Parallel()

	reg := dispatch.NewRegistry()
	a := namedAction("a")
	require.NoError(t, reg.Add(a))

	var wg sync.WaitGroup
	for i := range 50 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			dispatch.RegisterRoute(reg, a, dispatch.MethodGet, "/r"+string(rune('a'+i%26)))
			reg.Lookup(dispatch.MethodGet, "/ra")
		}()
	}
	wg.Wait()

	assert.Len(t, reg.Routes(dispatch.MethodGet), 26)
}

func TestVisibilityString(t *testing.T) {
	t.Parallel()

	assert.Equal(t, "show", dispatch.Show.String())
	assert.Equal(t, "hide", dispatch.Hide.String())
}
