package resolver

import (
	"context"
	"testing"

	"github.com/branched-services/go-evmscript"
	"github.com/ethereum/go-ethereum/common"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStatic(t *testing.T) {
	ctx := context.Background()
	s := NewStatic(map[string]common.Address{
		"Alice.eth": alice,
		"treasury":  alice,
		"bob.eth":   bob,
		"":          carol,
		"burn.eth":  {},
	})

	assert.Equal(t, 3, s.Len())

	t.Run("forward is case-insensitive", func(t *testing.T) {
		addr, err := s.ResolveName(ctx, " ALICE.ETH ")
		require.NoError(t, err)
		assert.Equal(t, alice, addr)
	})

	t.Run("reverse picks the smallest name", func(t *testing.T) {
		name, err := s.LookupAddress(ctx, alice)
		require.NoError(t, err)
		assert.Equal(t, "alice.eth", name)
	})

	t.Run("misses", func(t *testing.T) {
		_, err := s.ResolveName(ctx, "burn.eth")
		require.ErrorIs(t, err, evmscript.ErrNameNotFound)

		_, err = s.LookupAddress(ctx, carol)
		require.ErrorIs(t, err, evmscript.ErrNameNotFound)
	})

	t.Run("usable by the codec", func(t *testing.T) {
		addr, err := evmscript.ResolveToAddress(ctx, s, "bob.eth")
		require.NoError(t, err)
		assert.Equal(t, bob, addr)
		assert.Equal(t, "bob.eth", evmscript.ResolveToDisplayName(ctx, s, bob))
		assert.Equal(t, carol.Hex(), evmscript.ResolveToDisplayName(ctx, s, carol))
	})
}

func TestChain(t *testing.T) {
	ctx := context.Background()

	t.Run("first hit wins", func(t *testing.T) {
		first := newScripted(map[string]common.Address{"alice.eth": alice})
		second := newScripted(map[string]common.Address{"alice.eth": bob, "bob.eth": bob})
		c := NewChain(first, nil, second)

		addr, err := c.ResolveName(ctx, "alice.eth")
		require.NoError(t, err)
		assert.Equal(t, alice, addr)
		assert.Equal(t, 0, second.Calls())

		addr, err = c.ResolveName(ctx, "bob.eth")
		require.NoError(t, err)
		assert.Equal(t, bob, addr)

		name, err := c.LookupAddress(ctx, bob)
		require.NoError(t, err)
		assert.Equal(t, "bob.eth", name)
	})

	t.Run("errors fall through", func(t *testing.T) {
		broken := newScripted(nil).failFirst(10, errDown)
		book := newScripted(map[string]common.Address{"alice.eth": alice})
		addr, err := NewChain(broken, book).ResolveName(ctx, "alice.eth")
		require.NoError(t, err)
		assert.Equal(t, alice, addr)
	})

	t.Run("all miss", func(t *testing.T) {
		_, err := NewChain(NewStatic(nil), NewStatic(nil)).ResolveName(ctx, "nobody.eth")
		require.ErrorIs(t, err, evmscript.ErrNameNotFound)
	})

	t.Run("miss plus failure reports the failure", func(t *testing.T) {
		broken := newScripted(nil).failFirst(10, errDown)
		_, err := NewChain(NewStatic(nil), broken).LookupAddress(ctx, alice)
		require.ErrorIs(t, err, errDown)
		assert.NotErrorIs(t, err, evmscript.ErrNameNotFound)
	})

	t.Run("empty chain", func(t *testing.T) {
		_, err := NewChain().ResolveName(ctx, "alice.eth")
		require.ErrorIs(t, err, evmscript.ErrNameNotFound)
	})
}
