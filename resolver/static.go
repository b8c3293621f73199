// Package resolver provides evmscript.Resolver implementations and
// decorators: a static address book, a fallback chain, retries, caching and
// Prometheus instrumentation.
//
// Decorators compose:
//
//	var r evmscript.Resolver = resolver.NewChain(
//	    resolver.NewStatic(book),
//	    resolver.NewRetrying(ens.NewResolver(client)),
//	)
//	cached, err := resolver.NewCached(ctx, r, 10*time.Minute)
//	if err != nil {
//	    return err
//	}
//	defer cached.Close()
package resolver

import (
	"context"
	"fmt"
	"strings"

	"github.com/branched-services/go-evmscript"
	"github.com/ethereum/go-ethereum/common"
)

// Static resolves names from a fixed address book. Names are matched
// case-insensitively.
type Static struct {
	names   map[string]common.Address
	reverse map[common.Address]string
}

var _ evmscript.Resolver = (*Static)(nil)

// NewStatic creates a Static resolver from name -> address pairs. When
// several names map to one address, the lexically smallest is used for
// reverse lookups.
func NewStatic(book map[string]common.Address) *Static {
	s := &Static{
		names:   make(map[string]common.Address, len(book)),
		reverse: make(map[common.Address]string, len(book)),
	}
	for name, addr := range book {
		key := strings.ToLower(strings.TrimSpace(name))
		if key == "" || addr == (common.Address{}) {
			continue
		}
		s.names[key] = addr
		if existing, ok := s.reverse[addr]; !ok || key < existing {
			s.reverse[addr] = key
		}
	}
	return s
}

// Len returns the number of names in the book.
func (s *Static) Len() int {
	return len(s.names)
}

func (s *Static) ResolveName(_ context.Context, name string) (common.Address, error) {
	addr, ok := s.names[strings.ToLower(strings.TrimSpace(name))]
	if !ok {
		return common.Address{}, fmt.Errorf("%w: %s", evmscript.ErrNameNotFound, name)
	}
	return addr, nil
}

func (s *Static) LookupAddress(_ context.Context, addr common.Address) (string, error) {
	name, ok := s.reverse[addr]
	if !ok {
		return "", fmt.Errorf("%w: %s", evmscript.ErrNameNotFound, addr.Hex())
	}
	return name, nil
}
