package resolver

import (
	"context"
	"errors"
	"time"

	"github.com/avast/retry-go/v4"
	"github.com/branched-services/go-evmscript"
	"github.com/ethereum/go-ethereum/common"
	"go.uber.org/zap"
)

const (
	defaultRetryAttempts = 3
	defaultRetryDelay    = 200 * time.Millisecond
	defaultCallTimeout   = 10 * time.Second
)

// Retrying retries transient failures of the wrapped resolver. Misses
// (evmscript.ErrNameNotFound) and context cancellation are returned at once.
type Retrying struct {
	next        evmscript.Resolver
	attempts    uint
	delay       time.Duration
	callTimeout time.Duration
	logger      *zap.Logger
}

var _ evmscript.Resolver = (*Retrying)(nil)

// RetryOption configures a Retrying resolver.
type RetryOption func(*Retrying)

// WithAttempts sets the total number of attempts. Zero is ignored.
func WithAttempts(n uint) RetryOption {
	return func(r *Retrying) {
		if n > 0 {
			r.attempts = n
		}
	}
}

// WithDelay sets the base back-off delay.
func WithDelay(d time.Duration) RetryOption {
	return func(r *Retrying) {
		r.delay = d
	}
}

// WithCallTimeout bounds each individual attempt.
func WithCallTimeout(d time.Duration) RetryOption {
	return func(r *Retrying) {
		r.callTimeout = d
	}
}

// WithRetryLogger logs each retry at debug level.
func WithRetryLogger(logger *zap.Logger) RetryOption {
	return func(r *Retrying) {
		if logger != nil {
			r.logger = logger
		}
	}
}

// NewRetrying wraps next with retries.
func NewRetrying(next evmscript.Resolver, opts ...RetryOption) *Retrying {
	r := &Retrying{
		next:        next,
		attempts:    defaultRetryAttempts,
		delay:       defaultRetryDelay,
		callTimeout: defaultCallTimeout,
		logger:      zap.NewNop(),
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

func (r *Retrying) ResolveName(ctx context.Context, name string) (common.Address, error) {
	return do(ctx, r, "resolve", name, func(ctx context.Context) (common.Address, error) {
		return r.next.ResolveName(ctx, name)
	})
}

func (r *Retrying) LookupAddress(ctx context.Context, addr common.Address) (string, error) {
	return do(ctx, r, "lookup", addr.Hex(), func(ctx context.Context) (string, error) {
		return r.next.LookupAddress(ctx, addr)
	})
}

func do[T any](ctx context.Context, r *Retrying, op, key string, callback func(context.Context) (T, error)) (T, error) {
	return retry.DoWithData(
		func() (T, error) {
			var (
				cctx   context.Context
				cancel context.CancelFunc
			)
			if r.callTimeout > 0 {
				cctx, cancel = context.WithTimeout(ctx, r.callTimeout)
			} else {
				cctx, cancel = context.WithCancel(ctx)
			}
			defer cancel()
			return callback(cctx)
		},
		retry.Context(ctx),
		retry.Attempts(r.attempts),
		retry.Delay(r.delay),
		retry.DelayType(retry.BackOffDelay),
		retry.LastErrorOnly(true),
		retry.RetryIf(retryable),
		retry.OnRetry(func(n uint, err error) {
			r.logger.Debug("retrying name service call",
				zap.String("op", op),
				zap.String("key", key),
				zap.Uint("attempt", n+1),
				zap.Error(err))
		}),
	)
}

func retryable(err error) bool {
	return !errors.Is(err, evmscript.ErrNameNotFound) &&
		!errors.Is(err, context.Canceled)
}
