package resolver

import (
	"context"
	"testing"
	"time"

	"github.com/branched-services/go-evmscript"
	"github.com/ethereum/go-ethereum/common"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestCache(t *testing.T, next evmscript.Resolver) *Cached {
	t.Helper()
	c, err := NewCached(context.Background(), next, time.Minute, WithMaxEntries(16), WithCacheLogger(nil))
	require.NoError(t, err)
	t.Cleanup(func() {
		require.NoError(t, c.Close())
	})
	return c
}

func TestCached(t *testing.T) {
	ctx := context.Background()

	t.Run("forward hits are served from cache", func(t *testing.T) {
		next := newScripted(map[string]common.Address{"alice.eth": alice})
		c := newTestCache(t, next)

		for range 3 {
			addr, err := c.ResolveName(ctx, "alice.eth")
			require.NoError(t, err)
			assert.Equal(t, alice, addr)
		}
		assert.Equal(t, 1, next.Calls())
		assert.Equal(t, 1, c.Len())
	})

	t.Run("reverse hits are served from cache", func(t *testing.T) {
		next := newScripted(map[string]common.Address{"bob.eth": bob})
		c := newTestCache(t, next)

		for range 2 {
			name, err := c.LookupAddress(ctx, bob)
			require.NoError(t, err)
			assert.Equal(t, "bob.eth", name)
		}
		assert.Equal(t, 1, next.Calls())
	})

	t.Run("misses and errors are not cached", func(t *testing.T) {
		next := newScripted(map[string]common.Address{"alice.eth": alice}).failFirst(1, errDown)
		c := newTestCache(t, next)

		_, err := c.ResolveName(ctx, "alice.eth")
		require.ErrorIs(t, err, errDown)
		addr, err := c.ResolveName(ctx, "alice.eth")
		require.NoError(t, err)
		assert.Equal(t, alice, addr)

		_, err = c.ResolveName(ctx, "nobody.eth")
		require.ErrorIs(t, err, evmscript.ErrNameNotFound)
		_, err = c.ResolveName(ctx, "nobody.eth")
		require.ErrorIs(t, err, evmscript.ErrNameNotFound)
		assert.Equal(t, 4, next.Calls())
	})

	t.Run("reset", func(t *testing.T) {
		next := newScripted(map[string]common.Address{"alice.eth": alice})
		c := newTestCache(t, next)

		_, err := c.ResolveName(ctx, "alice.eth")
		require.NoError(t, err)
		require.NoError(t, c.Reset())
		assert.Equal(t, 0, c.Len())

		_, err = c.ResolveName(ctx, "alice.eth")
		require.NoError(t, err)
		assert.Equal(t, 2, next.Calls())
	})

	t.Run("rejects non-positive ttl", func(t *testing.T) {
		_, err := NewCached(ctx, NewStatic(nil), 0)
		require.Error(t, err)
	})
}
