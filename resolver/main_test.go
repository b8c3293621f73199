package resolver

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/branched-services/go-evmscript"
	"github.com/ethereum/go-ethereum/common"
	"go.uber.org/goleak"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

var (
	alice   = common.HexToAddress("0xaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaa")
	bob     = common.HexToAddress("0xbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbb")
	carol   = common.HexToAddress("0xcccccccccccccccccccccccccccccccccccccccc")
	errDown = errors.New("provider down")
)

// scriptedResolver fails the first `failures` calls with err, then
// answers from the embedded Static book.
type scriptedResolver struct {
	*Static

	mu       sync.Mutex
	failures int
	err      error
	calls    int
}

func newScripted(book map[string]common.Address) *scriptedResolver {
	return &scriptedResolver{Static: NewStatic(book)}
}

func (s *scriptedResolver) failFirst(n int, err error) *scriptedResolver {
	s.failures = n
	s.err = err
	return s
}

func (s *scriptedResolver) next() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.calls++
	if s.failures > 0 {
		s.failures--
		return s.err
	}
	return nil
}

func (s *scriptedResolver) Calls() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.calls
}

func (s *scriptedResolver) ResolveName(ctx context.Context, name string) (common.Address, error) {
	if err := s.next(); err != nil {
		return common.Address{}, err
	}
	return s.Static.ResolveName(ctx, name)
}

func (s *scriptedResolver) LookupAddress(ctx context.Context, addr common.Address) (string, error) {
	if err := s.next(); err != nil {
		return "", err
	}
	return s.Static.LookupAddress(ctx, addr)
}

var _ evmscript.Resolver = (*scriptedResolver)(nil)
