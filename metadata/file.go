package metadata

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"slices"
	"strings"
	"sync"

	"github.com/branched-services/go-evmscript"
	"gopkg.in/yaml.v3"
)

const fileExt = ".yaml"

// document is the on-disk form of one proposal.
type document struct {
	ID       string                     `yaml:"id"`
	Metadata evmscript.ProposalMetadata `yaml:"metadata"`
}

// FileStore keeps one YAML document per proposal in a directory.
type FileStore struct {
	dir string
	mu  sync.RWMutex
}

var _ Store = (*FileStore)(nil)

// NewFileStore creates a FileStore rooted at dir, creating it if needed.
func NewFileStore(dir string) (*FileStore, error) {
	if dir == "" {
		return nil, errors.New("metadata: directory is required")
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("metadata: create directory: %w", err)
	}
	return &FileStore{dir: dir}, nil
}

// Dir returns the directory backing the store.
func (s *FileStore) Dir() string {
	return s.dir
}

func (s *FileStore) path(id string) string {
	return filepath.Join(s.dir, id+fileExt)
}

func (s *FileStore) Get(ctx context.Context, id string) (evmscript.ProposalMetadata, error) {
	if err := ctx.Err(); err != nil {
		return evmscript.ProposalMetadata{}, err
	}
	if err := ValidateID(id); err != nil {
		return evmscript.ProposalMetadata{}, err
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	data, err := os.ReadFile(s.path(id))
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return evmscript.ProposalMetadata{}, fmt.Errorf("%w: %s", ErrNotFound, id)
		}
		return evmscript.ProposalMetadata{}, fmt.Errorf("metadata: read %s: %w", id, err)
	}

	var doc document
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return evmscript.ProposalMetadata{}, fmt.Errorf("metadata: parse %s: %w", id, err)
	}
	if doc.ID != "" && doc.ID != id {
		return evmscript.ProposalMetadata{}, fmt.Errorf("metadata: %s holds proposal %q", id, doc.ID)
	}
	return doc.Metadata, nil
}

func (s *FileStore) Put(ctx context.Context, id string, meta evmscript.ProposalMetadata) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if err := ValidateID(id); err != nil {
		return err
	}

	data, err := yaml.Marshal(document{ID: id, Metadata: meta})
	if err != nil {
		return fmt.Errorf("metadata: marshal %s: %w", id, err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	tmp, err := os.CreateTemp(s.dir, "."+id+"-*")
	if err != nil {
		return fmt.Errorf("metadata: write %s: %w", id, err)
	}
	defer os.Remove(tmp.Name())

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return fmt.Errorf("metadata: write %s: %w", id, err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("metadata: write %s: %w", id, err)
	}
	if err := os.Rename(tmp.Name(), s.path(id)); err != nil {
		return fmt.Errorf("metadata: write %s: %w", id, err)
	}
	return nil
}

func (s *FileStore) Delete(ctx context.Context, id string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if err := ValidateID(id); err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if err := os.Remove(s.path(id)); err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return fmt.Errorf("%w: %s", ErrNotFound, id)
		}
		return fmt.Errorf("metadata: delete %s: %w", id, err)
	}
	return nil
}

func (s *FileStore) List(ctx context.Context) ([]string, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	entries, err := os.ReadDir(s.dir)
	if err != nil {
		return nil, fmt.Errorf("metadata: list: %w", err)
	}

	var ids []string
	for _, e := range entries {
		name := e.Name()
		if e.IsDir() || !strings.HasSuffix(name, fileExt) {
			continue
		}
		id := strings.TrimSuffix(name, fileExt)
		if ValidateID(id) == nil {
			ids = append(ids, id)
		}
	}
	slices.Sort(ids)
	return ids, nil
}
