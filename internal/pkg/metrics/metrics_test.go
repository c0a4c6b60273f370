package metrics

import (
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewMetrics(t *testing.T) {
	// 各テストで新しいレジストリを使用
	reg := prometheus.NewRegistry()
	m := NewWithRegistry(reg)

	require.NotNil(t, m)
	assert.NotNil(t, m.HTTPRequestsTotal)
	assert.NotNil(t, m.HTTPRequestDuration)
	assert.NotNil(t, m.HoldsTotal)
	assert.NotNil(t, m.CommitsTotal)
	assert.NotNil(t, m.RefundsTotal)
	assert.NotNil(t, m.SweptHoldsTotal)
	assert.NotNil(t, m.DistributedLockDuration)
}

func TestHTTPRequestsTotal(t *testing.T) {
	reg := prometheus.NewRegistry()
	m := NewWithRegistry(reg)

	m.HTTPRequestsTotal.WithLabelValues("GET", "/api/v1/showtimes/:id/seats", "200").Inc()
	m.HTTPRequestsTotal.WithLabelValues("POST", "/api/v1/showtimes/:id/holds", "201").Inc()
	m.HTTPRequestsTotal.WithLabelValues("POST", "/api/v1/showtimes/:id/holds", "409").Inc()

	families, err := reg.Gather()
	require.NoError(t, err)

	var found bool
	for _, f := range families {
		if f.GetName() == "http_requests_total" {
			found = true
			assert.Equal(t, 3, len(f.GetMetric()))
		}
	}
	assert.True(t, found, "http_requests_total metric not found")
}

func TestHoldAndCommitCounters(t *testing.T) {
	reg := prometheus.NewRegistry()
	m := NewWithRegistry(reg)

	m.IncHold("held")
	m.IncHold("held")
	m.IncHold("unavailable")
	m.IncCommit("sold")
	m.IncCommit("expired")
	m.IncRefund("hold_expired")

	assert.Equal(t, 2.0, testutil.ToFloat64(m.HoldsTotal.WithLabelValues("held")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.HoldsTotal.WithLabelValues("unavailable")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.CommitsTotal.WithLabelValues("expired")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.RefundsTotal.WithLabelValues("hold_expired")))
}

func TestAddSwept(t *testing.T) {
	reg := prometheus.NewRegistry()
	m := NewWithRegistry(reg)

	m.AddSwept(3)
	m.AddSwept(0)
	m.AddSwept(2)

	assert.Equal(t, 5.0, testutil.ToFloat64(m.SweptHoldsTotal))
}

func TestNilMetrics(t *testing.T) {
	// メトリクス未設定でも呼び出せる
	var m *Metrics
	assert.NotPanics(t, func() {
		m.IncHold("held")
		m.IncCommit("sold")
		m.IncRefund("amount_mismatch")
		m.AddSwept(1)
		m.ObserveLock("acquire", "success", 0.01)
	})
}

func TestDistributedLockDuration(t *testing.T) {
	reg := prometheus.NewRegistry()
	m := NewWithRegistry(reg)

	m.ObserveLock("acquire", "success", 0.015)
	m.ObserveLock("acquire", "failed", 0.005)
	m.ObserveLock("release", "success", 0.002)

	families, err := reg.Gather()
	require.NoError(t, err)

	var found bool
	for _, f := range families {
		if f.GetName() == "distributed_lock_duration_seconds" {
			found = true
		}
	}
	assert.True(t, found, "distributed_lock_duration_seconds metric not found")
}

func TestInit_CreatesDefaultMetrics(t *testing.T) {
	// 既存のdefaultMetricsをバックアップ
	oldMetrics := defaultMetrics
	defer func() { defaultMetrics = oldMetrics }()

	// Initを呼ぶとデフォルトレジストリに登録するため、テストでは直接セット
	reg := prometheus.NewRegistry()
	m := NewWithRegistry(reg)
	defaultMetrics = m

	assert.Equal(t, m, Get())
}
