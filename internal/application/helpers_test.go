package application

import (
	"context"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/sanosuguru/go-showtime-seat-reservation/internal/domain/booking"
	"github.com/sanosuguru/go-showtime-seat-reservation/internal/domain/hold"
	"github.com/sanosuguru/go-showtime-seat-reservation/internal/domain/payment"
	"github.com/sanosuguru/go-showtime-seat-reservation/internal/domain/seat"
	"github.com/sanosuguru/go-showtime-seat-reservation/internal/domain/showtime"
	"github.com/sanosuguru/go-showtime-seat-reservation/internal/infrastructure/memory"
	"github.com/sanosuguru/go-showtime-seat-reservation/internal/pkg/clock"
	"github.com/sanosuguru/go-showtime-seat-reservation/internal/pkg/metrics"
)

var baseTime = time.Date(2025, 3, 1, 18, 0, 0, 0, time.UTC)

// MockRefundIssuer は payment.RefundIssuer のモック
type MockRefundIssuer struct {
	mock.Mock
}

func (m *MockRefundIssuer) IssueRefund(ctx context.Context, refund payment.Refund) error {
	args := m.Called(ctx, refund)
	return args.Error(0)
}

// MockBookingPublisher は BookingPublisher のモック
type MockBookingPublisher struct {
	mock.Mock
}

func (m *MockBookingPublisher) PublishBookingConfirmed(ctx context.Context, b *booking.Booking) error {
	args := m.Called(ctx, b)
	return args.Error(0)
}

// MockShowtimeRepository は showtime.Repository のモック
type MockShowtimeRepository struct {
	mock.Mock
}

func (m *MockShowtimeRepository) Create(ctx context.Context, s *showtime.Showtime) error {
	args := m.Called(ctx, s)
	return args.Error(0)
}

func (m *MockShowtimeRepository) GetByID(ctx context.Context, id string) (*showtime.Showtime, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*showtime.Showtime), args.Error(1)
}

func (m *MockShowtimeRepository) List(ctx context.Context, movieID string, limit, offset int) ([]*showtime.Showtime, error) {
	args := m.Called(ctx, movieID, limit, offset)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*showtime.Showtime), args.Error(1)
}

func (m *MockShowtimeRepository) Update(ctx context.Context, s *showtime.Showtime) error {
	args := m.Called(ctx, s)
	return args.Error(0)
}

// MockStatusCache は StatusCache のモック
type MockStatusCache struct {
	mock.Mock
}

func (m *MockStatusCache) GetStatuses(ctx context.Context, showtimeID string) (map[string]hold.SeatStatus, error) {
	args := m.Called(ctx, showtimeID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(map[string]hold.SeatStatus), args.Error(1)
}

func (m *MockStatusCache) SetStatuses(ctx context.Context, showtimeID string, statuses map[string]hold.SeatStatus, ttl time.Duration) error {
	args := m.Called(ctx, showtimeID, statuses, ttl)
	return args.Error(0)
}

func (m *MockStatusCache) Invalidate(ctx context.Context, showtimeID string) error {
	args := m.Called(ctx, showtimeID)
	return args.Error(0)
}

// failingLedger は追記だけが失敗する台帳
type failingLedger struct {
	*memory.Ledger
	err error
}

func (l *failingLedger) Append(ctx context.Context, b *booking.Booking) (bool, error) {
	if l.err != nil {
		return false, booking.LedgerError("append", l.err)
	}
	return l.Ledger.Append(ctx, b)
}

// testEnv はメモリ上のストアと手動クロックで組み立てたサービス群
type testEnv struct {
	clock       *clock.Manual
	store       *memory.AvailabilityStore
	ledger      *memory.Ledger
	showtimes   *ShowtimeService
	seats       *SeatService
	coordinator *ReservationCoordinator
	bookings    *BookingService
	refunds     *MockRefundIssuer
	metrics     *metrics.Metrics
}

var testCoordinatorConfig = CoordinatorConfig{
	HoldTTL:       10 * time.Minute,
	PaymentWindow: 5 * time.Minute,
}

func setupTestEnv(t *testing.T) *testEnv {
	t.Helper()
	clk := clock.NewManual(baseTime)
	store := memory.NewAvailabilityStore(clk)
	ledger := memory.NewLedger()
	showtimes := NewShowtimeService(memory.NewShowtimeRepository(), seat.DefaultLayout())
	seats := NewSeatService(showtimes, store, ledger, nil, 0, clk)
	refunds := new(MockRefundIssuer)
	m := metrics.NewWithRegistry(prometheus.NewRegistry())
	coordinator := NewReservationCoordinator(showtimes, store, ledger, refunds, testCoordinatorConfig).
		WithCache(seats).
		WithClock(clk).
		WithMetrics(m)
	return &testEnv{
		clock:       clk,
		store:       store,
		ledger:      ledger,
		showtimes:   showtimes,
		seats:       seats,
		coordinator: coordinator,
		bookings:    NewBookingService(ledger, clk),
		refunds:     refunds,
		metrics:     m,
	}
}

func (e *testEnv) createShowtime(t *testing.T, basePrice int) *showtime.Showtime {
	t.Helper()
	st, err := e.showtimes.CreateShowtime(context.Background(), CreateShowtimeInput{
		MovieID:   "movie-1",
		TheaterID: "screen-1",
		StartAt:   baseTime.Add(24 * time.Hour),
		BasePrice: basePrice,
	})
	require.NoError(t, err)
	return st
}

func succeededPayment(ref string, amount int) payment.Result {
	return payment.Result{Reference: ref, Method: payment.MethodCard, Status: payment.StatusSucceeded, Amount: amount}
}
