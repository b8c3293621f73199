package resolver

import (
	"context"
	"testing"

	"github.com/ethereum/go-ethereum/common"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestInstrumented(t *testing.T) {
	ctx := context.Background()
	reg := prometheus.NewRegistry()
	metrics, err := NewMetrics(reg)
	require.NoError(t, err)

	next := newScripted(map[string]common.Address{"alice.eth": alice}).failFirst(1, errDown)
	r := NewInstrumented(next, metrics)

	_, err = r.ResolveName(ctx, "alice.eth")
	require.ErrorIs(t, err, errDown)
	_, err = r.ResolveName(ctx, "alice.eth")
	require.NoError(t, err)
	_, err = r.ResolveName(ctx, "nobody.eth")
	require.Error(t, err)
	_, err = r.LookupAddress(ctx, alice)
	require.NoError(t, err)

	assert.Equal(t, 1.0, testutil.ToFloat64(metrics.Lookups("resolve", OutcomeError)))
	assert.Equal(t, 1.0, testutil.ToFloat64(metrics.Lookups("resolve", OutcomeHit)))
	assert.Equal(t, 1.0, testutil.ToFloat64(metrics.Lookups("resolve", OutcomeMiss)))
	assert.Equal(t, 1.0, testutil.ToFloat64(metrics.Lookups("lookup", OutcomeHit)))

	count, err := testutil.GatherAndCount(reg, "evmscript_resolver_lookup_duration_seconds")
	require.NoError(t, err)
	assert.Equal(t, 2, count)
}

func TestNewMetricsDuplicateRegistration(t *testing.T) {
	reg := prometheus.NewRegistry()
	_, err := NewMetrics(reg)
	require.NoError(t, err)

	_, err = NewMetrics(reg)
	require.Error(t, err)
}

func TestNewMetricsWithoutRegistry(t *testing.T) {
	m, err := NewMetrics(nil)
	require.NoError(t, err)
	assert.NotNil(t, m.Lookups("resolve", OutcomeHit))
}
