package resolver

import (
	"context"
	"errors"
	"fmt"

	"github.com/branched-services/go-evmscript"
	"github.com/ethereum/go-ethereum/common"
)

// Chain asks each resolver in turn and returns the first hit.
//
// A miss is only reported as evmscript.ErrNameNotFound when every resolver
// missed; if any of them failed otherwise, the joined errors are returned.
type Chain struct {
	resolvers []evmscript.Resolver
}

var _ evmscript.Resolver = (*Chain)(nil)

// NewChain creates a Chain. Nil resolvers are skipped.
func NewChain(resolvers ...evmscript.Resolver) *Chain {
	c := &Chain{}
	for _, r := range resolvers {
		if r != nil {
			c.resolvers = append(c.resolvers, r)
		}
	}
	return c
}

func (c *Chain) ResolveName(ctx context.Context, name string) (common.Address, error) {
	var errs []error
	for _, r := range c.resolvers {
		addr, err := r.ResolveName(ctx, name)
		if err == nil && addr != (common.Address{}) {
			return addr, nil
		}
		if err != nil && !errors.Is(err, evmscript.ErrNameNotFound) {
			errs = append(errs, err)
		}
		if ctx.Err() != nil {
			return common.Address{}, ctx.Err()
		}
	}
	return common.Address{}, chainMiss(name, errs)
}

func (c *Chain) LookupAddress(ctx context.Context, addr common.Address) (string, error) {
	var errs []error
	for _, r := range c.resolvers {
		name, err := r.LookupAddress(ctx, addr)
		if err == nil && name != "" {
			return name, nil
		}
		if err != nil && !errors.Is(err, evmscript.ErrNameNotFound) {
			errs = append(errs, err)
		}
		if ctx.Err() != nil {
			return "", ctx.Err()
		}
	}
	return "", chainMiss(addr.Hex(), errs)
}

func chainMiss(key string, errs []error) error {
	if len(errs) > 0 {
		return errors.Join(errs...)
	}
	return fmt.Errorf("%w: %s", evmscript.ErrNameNotFound, key)
}
