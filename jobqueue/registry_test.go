package jobqueue

import (
	"context"
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/theleeeo/pgjobq/model"
)

func noop(context.Context, model.Job) error { return nil }

func TestRegistry(t *testing.T) {
	r := NewRegistry()

	require.NoError(t, r.Register("b", noop))
	require.NoError(t, r.Register("a", noop))

	err := r.Register("a", noop)
	require.ErrorIs(t, err, ErrDuplicateHandler)
	assert.Contains(t, err.Error(), `"a"`)

	require.ErrorIs(t, r.Register("", noop), ErrInvalidJob)
	require.Error(t, r.Register("c", nil))

	_, ok := r.Lookup("a")
	assert.True(t, ok)
	_, ok = r.Lookup("c")
	assert.False(t, ok)

	assert.Equal(t, []string{"a", "b"}, r.Names())
}

func TestRegistryMustRegisterPanicsOnDuplicate(t *testing.T) {
	r := NewRegistry()
	r.MustRegister("a", noop)
	assert.Panics(t, func() { r.MustRegister("a", noop) })
}

func TestTyped(t *testing.T) {
	type emailArgs struct {
		To string `json:"to"`
	}

	var got emailArgs
	h := Typed(func(_ context.Context, args emailArgs) error {
		got = args
		return nil
	})

	require.NoError(t, h(context.Background(), model.Job{Name: "email", Args: json.RawMessage(`{"to":"a@b.com"}`)}))
	assert.Equal(t, "a@b.com", got.To)

	err := h(context.Background(), model.Job{Name: "email", Args: json.RawMessage(`{"to":42}`)})
	var pe PermanentError
	require.ErrorAs(t, err, &pe)
}
