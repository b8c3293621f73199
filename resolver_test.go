package evmscript

import (
	"context"
	"errors"
	"testing"

	"github.com/ethereum/go-ethereum/common"
)

// zeroResolver answers every name with the zero address.
type zeroResolver struct{}

func (zeroResolver) ResolveName(context.Context, string) (common.Address, error) {
	return common.Address{}, nil
}

func (zeroResolver) LookupAddress(context.Context, common.Address) (string, error) {
	return "", nil
}

func TestResolveToAddress(t *testing.T) {
	ctx := context.Background()
	r := newMapResolver().register("alice.eth", addrA)

	t.Run("hex address returned unchanged", func(t *testing.T) {
		addr, err := ResolveToAddress(ctx, r, "0xbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbb")
		if err != nil {
			t.Fatalf("ResolveToAddress failed: %v", err)
		}
		if addr != addrB {
			t.Errorf("Expected %s, got %s", addrB.Hex(), addr.Hex())
		}
		if r.calls != 0 {
			t.Errorf("Expected no resolver calls, got %d", r.calls)
		}
	})

	t.Run("name resolved", func(t *testing.T) {
		addr, err := ResolveToAddress(ctx, r, "alice.eth")
		if err != nil {
			t.Fatalf("ResolveToAddress failed: %v", err)
		}
		if addr != addrA {
			t.Errorf("Expected %s, got %s", addrA.Hex(), addr.Hex())
		}
	})

	tests := []struct {
		name     string
		resolver Resolver
		raw      string
		want     error
	}{
		{"unknown name", r, "bob.eth", ErrNameNotFound},
		{"no resolver", nil, "alice.eth", ErrNoResolver},
		{"empty input", r, "  ", ErrNameNotFound},
		{"zero address result", zeroResolver{}, "burn.eth", ErrNameNotFound},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ResolveToAddress(ctx, tt.resolver, tt.raw)
			var unresolvable *UnresolvableAddressError
			if !errors.As(err, &unresolvable) {
				t.Fatalf("Expected UnresolvableAddressError, got %v", err)
			}
			if !errors.Is(err, tt.want) {
				t.Errorf("Expected %v in chain, got %v", tt.want, err)
			}
		})
	}
}

func TestResolveToDisplayName(t *testing.T) {
	ctx := context.Background()
	r := newMapResolver().register("alice.eth", addrA)
	r.failing[addrC.Hex()] = errProviderDown

	tests := []struct {
		name     string
		resolver Resolver
		addr     common.Address
		want     string
	}{
		{"known address", r, addrA, "alice.eth"},
		{"unknown address", r, addrB, addrB.Hex()},
		{"provider error", r, addrC, addrC.Hex()},
		{"no resolver", nil, addrA, addrA.Hex()},
		{"empty name", zeroResolver{}, addrA, addrA.Hex()},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := ResolveToDisplayName(ctx, tt.resolver, tt.addr); got != tt.want {
				t.Errorf("Expected %s, got %s", tt.want, got)
			}
		})
	}
}

func TestResolveAllKeepsOrder(t *testing.T) {
	ctx := context.Background()
	r := newMapResolver().
		register("alice.eth", addrA).
		register("bob.eth", addrB)

	types := []string{"address", "uint256", "address", "address[]"}
	values := []any{"bob.eth", "7", "alice.eth", []any{"alice.eth"}}

	out, err := resolveAll(ctx, r, types, values)
	if err != nil {
		t.Fatalf("resolveAll failed: %v", err)
	}
	if out[0] != addrB.Hex() || out[2] != addrA.Hex() {
		t.Errorf("Unexpected resolution %v", out)
	}
	if out[1] != "7" {
		t.Errorf("Non-address values should be untouched, got %v", out[1])
	}
	if list, ok := out[3].([]any); !ok || list[0] != "alice.eth" {
		t.Errorf("Only exact address types are resolved, got %v", out[3])
	}
	if values[0] != "bob.eth" {
		t.Error("Input values should not be modified")
	}
}

func TestDisplayAll(t *testing.T) {
	r := newMapResolver().register("alice.eth", addrA)
	got := displayAll(context.Background(), r, []common.Address{addrB, addrA})
	if got[0] != addrB.Hex() || got[1] != "alice.eth" {
		t.Errorf("Unexpected names %v", got)
	}
}
