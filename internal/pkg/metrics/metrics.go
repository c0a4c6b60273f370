package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
)

// Metrics はアプリケーションのメトリクスを管理する
type Metrics struct {
	// HTTPリクエストの総数（method, path, status_code）
	HTTPRequestsTotal *prometheus.CounterVec

	// HTTPリクエストのレイテンシ（method, path）
	HTTPRequestDuration *prometheus.HistogramVec

	// 座席保留の試行数（result: held, unavailable, error）
	HoldsTotal *prometheus.CounterVec

	// 保留確定の試行数（result: sold, expired, invalidated, error）
	CommitsTotal *prometheus.CounterVec

	// 返金指示の数（reason: hold_expired, hold_invalidated, amount_mismatch）
	RefundsTotal *prometheus.CounterVec

	// スイープで解放した保留の数
	SweptHoldsTotal prometheus.Counter

	// 分散ロックの操作時間（operation: acquire/release, status: success/failed）
	DistributedLockDuration *prometheus.HistogramVec
}

// New は新しいMetricsインスタンスを作成し、デフォルトレジストリに登録する
func New() *Metrics {
	return NewWithRegistry(prometheus.DefaultRegisterer)
}

// NewWithRegistry は指定したレジストリにメトリクスを登録する
func NewWithRegistry(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		HTTPRequestsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "http_requests_total",
				Help: "Total number of HTTP requests",
			},
			[]string{"method", "path", "status_code"},
		),
		HTTPRequestDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "http_request_duration_seconds",
				Help:    "HTTP request latency in seconds",
				Buckets: []float64{.005, .01, .025, .05, .1, .25, .5, 1, 2.5, 5, 10},
			},
			[]string{"method", "path"},
		),
		HoldsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "seat_holds_total",
				Help: "Total number of seat hold attempts",
			},
			[]string{"result"},
		),
		CommitsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "seat_hold_commits_total",
				Help: "Total number of hold commit attempts",
			},
			[]string{"result"},
		),
		RefundsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "payment_refunds_total",
				Help: "Total number of refund instructions issued",
			},
			[]string{"reason"},
		),
		SweptHoldsTotal: prometheus.NewCounter(
			prometheus.CounterOpts{
				Name: "swept_holds_total",
				Help: "Total number of expired holds released by the sweeper",
			},
		),
		DistributedLockDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "distributed_lock_duration_seconds",
				Help:    "Time spent on distributed lock operations",
				Buckets: []float64{.001, .005, .01, .025, .05, .1, .25, .5, 1},
			},
			[]string{"operation", "status"},
		),
	}

	// レジストリに登録
	reg.MustRegister(
		m.HTTPRequestsTotal,
		m.HTTPRequestDuration,
		m.HoldsTotal,
		m.CommitsTotal,
		m.RefundsTotal,
		m.SweptHoldsTotal,
		m.DistributedLockDuration,
	)

	return m
}

// IncHold は保留結果をカウントする（nil なら何もしない）
func (m *Metrics) IncHold(result string) {
	if m == nil {
		return
	}
	m.HoldsTotal.WithLabelValues(result).Inc()
}

// IncCommit は確定結果をカウントする
func (m *Metrics) IncCommit(result string) {
	if m == nil {
		return
	}
	m.CommitsTotal.WithLabelValues(result).Inc()
}

// IncRefund は返金指示をカウントする
func (m *Metrics) IncRefund(reason string) {
	if m == nil {
		return
	}
	m.RefundsTotal.WithLabelValues(reason).Inc()
}

// AddSwept はスイープで解放した保留数を加算する
func (m *Metrics) AddSwept(n int) {
	if m == nil || n <= 0 {
		return
	}
	m.SweptHoldsTotal.Add(float64(n))
}

// ObserveLock は分散ロック操作の時間を記録する
func (m *Metrics) ObserveLock(operation, status string, seconds float64) {
	if m == nil {
		return
	}
	m.DistributedLockDuration.WithLabelValues(operation, status).Observe(seconds)
}

// デフォルトのメトリクスインスタンス
var defaultMetrics *Metrics

// Init はデフォルトのメトリクスインスタンスを初期化する
func Init() *Metrics {
	defaultMetrics = New()
	return defaultMetrics
}

// Get はデフォルトのメトリクスインスタンスを返す
func Get() *Metrics {
	return defaultMetrics
}
