package evmscript

import (
	"context"
	"errors"
	"strings"

	"github.com/ethereum/go-ethereum/common"
	"golang.org/x/sync/errgroup"
)

// Resolver maps human-readable names to addresses and back. Implementations
// return an error wrapping ErrNameNotFound when there is no record.
//
// The ens sub-package provides an on-chain implementation; tests inject an
// in-memory one.
type Resolver interface {
	ResolveName(ctx context.Context, name string) (common.Address, error)
	LookupAddress(ctx context.Context, addr common.Address) (string, error)
}

// ResolveToAddress returns raw unchanged when it is already a hex address,
// otherwise resolves it as a name. Failures are reported as
// *UnresolvableAddressError.
func ResolveToAddress(ctx context.Context, r Resolver, raw string) (common.Address, error) {
	raw = strings.TrimSpace(raw)
	if common.IsHexAddress(raw) {
		return common.HexToAddress(raw), nil
	}
	if raw == "" {
		return common.Address{}, &UnresolvableAddressError{Name: raw, Err: ErrNameNotFound}
	}
	if r == nil {
		return common.Address{}, &UnresolvableAddressError{Name: raw, Err: ErrNoResolver}
	}

	addr, err := r.ResolveName(ctx, raw)
	if err != nil {
		return common.Address{}, &UnresolvableAddressError{Name: raw, Err: err}
	}
	if addr == (common.Address{}) {
		return common.Address{}, &UnresolvableAddressError{Name: raw, Err: ErrNameNotFound}
	}
	return addr, nil
}

// ResolveToDisplayName reverse-resolves addr. It never fails: any lookup
// error or empty name falls back to the checksummed hex address.
func ResolveToDisplayName(ctx context.Context, r Resolver, addr common.Address) string {
	if r == nil {
		return addr.Hex()
	}
	name, err := r.LookupAddress(ctx, addr)
	if err != nil || name == "" {
		return addr.Hex()
	}
	return name
}

// resolveAll resolves every raw value whose declared type is exactly
// "address". Lookups run concurrently; the result keeps the input order and
// leaves other values untouched. The first failure is returned.
func resolveAll(ctx context.Context, r Resolver, types []string, values []any) ([]any, error) {
	out := make([]any, len(values))
	copy(out, values)

	g, gctx := errgroup.WithContext(ctx)
	for i, typ := range types {
		if typ != "address" {
			continue
		}
		g.Go(func() error {
			raw, ok := values[i].(string)
			if !ok {
				return &ArgumentError{Index: i, Type: typ, Err: &TypeMismatchError{Expected: "address string", Got: jsonKind(values[i])}}
			}
			addr, err := ResolveToAddress(gctx, r, raw)
			if err != nil {
				return &ArgumentError{Index: i, Type: typ, Err: err}
			}
			out[i] = addr.Hex()
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return out, nil
}

// displayAll reverse-resolves the given addresses concurrently.
func displayAll(ctx context.Context, r Resolver, addrs []common.Address) []string {
	names := make([]string, len(addrs))
	var g errgroup.Group
	for i, addr := range addrs {
		g.Go(func() error {
			names[i] = ResolveToDisplayName(ctx, r, addr)
			return nil
		})
	}
	_ = g.Wait()
	return names
}

func isUnresolvable(err error) bool {
	var target *UnresolvableAddressError
	return errors.As(err, &target)
}
