package resolver

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/allegro/bigcache/v3"
	"github.com/branched-services/go-evmscript"
	"github.com/ethereum/go-ethereum/common"
	"go.uber.org/zap"
)

const (
	forwardPrefix = "fwd:"
	reversePrefix = "rev:"
)

// Cached memoises successful lookups of the wrapped resolver for a fixed
// time-to-live. Misses and errors are not cached.
type Cached struct {
	next   evmscript.Resolver
	cache  *bigcache.BigCache
	logger *zap.Logger
}

var _ evmscript.Resolver = (*Cached)(nil)

// CacheOption configures a Cached resolver.
type CacheOption func(*bigcache.Config, *Cached)

// WithMaxEntries sizes the cache for n entries per life window.
func WithMaxEntries(n int) CacheOption {
	return func(cfg *bigcache.Config, _ *Cached) {
		if n > 0 {
			cfg.MaxEntriesInWindow = n
		}
	}
}

// WithCacheLogger logs cache failures.
func WithCacheLogger(logger *zap.Logger) CacheOption {
	return func(_ *bigcache.Config, c *Cached) {
		if logger != nil {
			c.logger = logger
		}
	}
}

// NewCached wraps next with a cache whose entries expire after ttl.
// Close releases the cache.
func NewCached(ctx context.Context, next evmscript.Resolver, ttl time.Duration, opts ...CacheOption) (*Cached, error) {
	if ttl <= 0 {
		return nil, fmt.Errorf("resolver: cache ttl must be positive, got %s", ttl)
	}

	cfg := bigcache.DefaultConfig(ttl)
	cfg.Shards = 64
	cfg.MaxEntriesInWindow = 10_000
	cfg.MaxEntrySize = 128
	cfg.CleanWindow = ttl
	cfg.Verbose = false

	c := &Cached{next: next, logger: zap.NewNop()}
	for _, opt := range opts {
		opt(&cfg, c)
	}

	cache, err := bigcache.New(ctx, cfg)
	if err != nil {
		return nil, fmt.Errorf("resolver: create cache: %w", err)
	}
	c.cache = cache
	return c, nil
}

func (c *Cached) ResolveName(ctx context.Context, name string) (common.Address, error) {
	key := forwardPrefix + name
	if entry, err := c.cache.Get(key); err == nil && len(entry) == common.AddressLength {
		return common.BytesToAddress(entry), nil
	} else if err != nil && !errors.Is(err, bigcache.ErrEntryNotFound) {
		c.logger.Warn("cache read failed", zap.String("key", key), zap.Error(err))
	}

	addr, err := c.next.ResolveName(ctx, name)
	if err != nil {
		return common.Address{}, err
	}
	if addr != (common.Address{}) {
		c.set(key, addr.Bytes())
	}
	return addr, nil
}

func (c *Cached) LookupAddress(ctx context.Context, addr common.Address) (string, error) {
	key := reversePrefix + addr.Hex()
	if entry, err := c.cache.Get(key); err == nil {
		return string(entry), nil
	} else if !errors.Is(err, bigcache.ErrEntryNotFound) {
		c.logger.Warn("cache read failed", zap.String("key", key), zap.Error(err))
	}

	name, err := c.next.LookupAddress(ctx, addr)
	if err != nil {
		return "", err
	}
	if name != "" {
		c.set(key, []byte(name))
	}
	return name, nil
}

// Len returns the number of cached entries.
func (c *Cached) Len() int {
	return c.cache.Len()
}

// Reset drops every cached entry.
func (c *Cached) Reset() error {
	return c.cache.Reset()
}

// Close releases the cache.
func (c *Cached) Close() error {
	return c.cache.Close()
}

func (c *Cached) set(key string, value []byte) {
	if err := c.cache.Set(key, value); err != nil {
		c.logger.Warn("cache write failed", zap.String("key", key), zap.Error(err))
	}
}
