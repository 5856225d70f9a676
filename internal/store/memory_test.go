package store_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/spec-kit/helpdesk/internal/store"
)

func TestMemoryStore(t *testing.T) {
	ctx := context.Background()
	st := store.NewMemory()

	t.Run("absent key", func(t *testing.T) {
		_, err := st.Get(ctx, "missing")
		assert.ErrorIs(t, err, store.ErrNotFound)
	})

	t.Run("set and get", func(t *testing.T) {
		require.NoError(t, st.Set(ctx, "k", []byte(`{"a":1}`)))
		got, err := st.Get(ctx, "k")
		require.NoError(t, err)
		assert.Equal(t, []byte(`{"a":1}`), got)
	})

	t.Run("returned slice is a copy", func(t *testing.T) {
		require.NoError(t, st.Set(ctx, "copy", []byte("abc")))
		got, err := st.Get(ctx, "copy")
		require.NoError(t, err)
		got[0] = 'z'

		again, err := st.Get(ctx, "copy")
		require.NoError(t, err)
		assert.Equal(t, []byte("abc"), again)
	})

	t.Run("delete", func(t *testing.T) {
		require.NoError(t, st.Set(ctx, "gone", []byte("x")))
		require.NoError(t, st.Delete(ctx, "gone"))
		_, err := st.Get(ctx, "gone")
		assert.ErrorIs(t, err, store.ErrNotFound)

		// deleting an absent key is not an error
		assert.NoError(t, st.Delete(ctx, "gone"))
	})

	t.Run("ping", func(t *testing.T) {
		assert.NoError(t, st.Ping(ctx))
	})
}
