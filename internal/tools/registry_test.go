package tools

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func noopTool(name string) *ExecutableTool {
	return NewTool(name, "noop", false,
		func(_ context.Context, _ struct{}) (string, error) { return name, nil })
}

func TestRegister_RejectsDuplicates(t *testing.T) {
	reg := NewRegistry()
	require.NoError(t, reg.Register(noopTool("a")))

	err := reg.Register(noopTool("a"))
	assert.ErrorIs(t, err, ErrDuplicateTool)
}

func TestRegister_RejectsNilAndEmptyName(t *testing.T) {
	reg := NewRegistry()
	assert.Error(t, reg.Register(nil))
	assert.Error(t, reg.Register(noopTool("")))
}

func TestGet_UnknownTool(t *testing.T) {
	reg := NewRegistry()
	_, err := reg.Get("missing")
	assert.ErrorIs(t, err, ErrUnknownTool)
}

func TestAll_SortedByName(t *testing.T) {
	reg := NewRegistry()
	require.NoError(t, reg.Register(noopTool("zeta")))
	require.NoError(t, reg.Register(noopTool("alpha")))
	require.NoError(t, reg.Register(noopTool("mid")))

	all := reg.All()
	require.Len(t, all, 3)
	assert.Equal(t, "alpha", all[0].Name())
	assert.Equal(t, "mid", all[1].Name())
	assert.Equal(t, "zeta", all[2].Name())
}

func TestExecute_DispatchesByName(t *testing.T) {
	reg := NewRegistry()
	require.NoError(t, reg.Register(noopTool("a")))

	out, err := reg.Execute(context.Background(), "a", map[string]any{})
	require.NoError(t, err)
	assert.Equal(t, "a", out)

	_, err = reg.Execute(context.Background(), "b", nil)
	assert.ErrorIs(t, err, ErrUnknownTool)
}
