// Package metadata persists the off-chain metadata of proposals.
//
// A script on its own cannot be decoded: the target signature, title and
// description live off-chain and are correlated with the script by proposal
// id. Store is that correlation.
package metadata

import (
	"context"
	"errors"
	"fmt"
	"regexp"
	"slices"
	"sync"

	"github.com/branched-services/go-evmscript"
)

var (
	// ErrNotFound is returned when no metadata is stored for an id.
	ErrNotFound = errors.New("metadata: not found")

	// ErrInvalidID is returned for ids that are empty or unsafe as file names.
	ErrInvalidID = errors.New("metadata: invalid proposal id")
)

var idPattern = regexp.MustCompile(`^[A-Za-z0-9][A-Za-z0-9_.-]*$`)

// Store reads and writes proposal metadata by proposal id.
type Store interface {
	Get(ctx context.Context, id string) (evmscript.ProposalMetadata, error)
	Put(ctx context.Context, id string, meta evmscript.ProposalMetadata) error
	Delete(ctx context.Context, id string) error
	List(ctx context.Context) ([]string, error)
}

// ValidateID checks that id can be used as a key.
func ValidateID(id string) error {
	if !idPattern.MatchString(id) {
		return fmt.Errorf("%w: %q", ErrInvalidID, id)
	}
	return nil
}

// MemoryStore is an in-memory Store, safe for concurrent use.
type MemoryStore struct {
	mu      sync.RWMutex
	entries map[string]evmscript.ProposalMetadata
}

var _ Store = (*MemoryStore)(nil)

// NewMemoryStore creates an empty MemoryStore.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{entries: make(map[string]evmscript.ProposalMetadata)}
}

func (s *MemoryStore) Get(_ context.Context, id string) (evmscript.ProposalMetadata, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	meta, ok := s.entries[id]
	if !ok {
		return evmscript.ProposalMetadata{}, fmt.Errorf("%w: %s", ErrNotFound, id)
	}
	return meta, nil
}

func (s *MemoryStore) Put(_ context.Context, id string, meta evmscript.ProposalMetadata) error {
	if err := ValidateID(id); err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.entries[id] = meta
	return nil
}

func (s *MemoryStore) Delete(_ context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.entries[id]; !ok {
		return fmt.Errorf("%w: %s", ErrNotFound, id)
	}
	delete(s.entries, id)
	return nil
}

func (s *MemoryStore) List(_ context.Context) ([]string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	ids := make([]string, 0, len(s.entries))
	for id := range s.entries {
		ids = append(ids, id)
	}
	slices.Sort(ids)
	return ids, nil
}
