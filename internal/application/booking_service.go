package application

import (
	"context"

	"go.uber.org/zap"

	"github.com/sanosuguru/go-showtime-seat-reservation/internal/domain/booking"
	"github.com/sanosuguru/go-showtime-seat-reservation/internal/pkg/clock"
	"github.com/sanosuguru/go-showtime-seat-reservation/internal/pkg/logger"
)

// BookingService は予約台帳の参照とキャンセルを扱う
type BookingService struct {
	ledger booking.Ledger
	clock  clock.Clock
}

func NewBookingService(ledger booking.Ledger, clk clock.Clock) *BookingService {
	if clk == nil {
		clk = clock.System{}
	}
	return &BookingService{ledger: ledger, clock: clk}
}

func (s *BookingService) GetBooking(ctx context.Context, id string) (*booking.Booking, error) {
	return s.ledger.GetByID(ctx, id)
}

func (s *BookingService) GetUserBookings(ctx context.Context, userID string, limit, offset int) ([]*booking.Booking, error) {
	if limit <= 0 {
		limit = 20
	}
	if limit > 100 {
		limit = 100
	}
	if offset < 0 {
		offset = 0
	}
	return s.ledger.ListByUser(ctx, userID, limit, offset)
}

func (s *BookingService) GetShowtimeBookings(ctx context.Context, showtimeID string) ([]*booking.Booking, error) {
	return s.ledger.ListByShowtime(ctx, showtimeID)
}

// CancelBooking は予約にキャンセル状態を追記する
// 座席は販売済みのまま（再販はしない）
func (s *BookingService) CancelBooking(ctx context.Context, id, reason string) (*booking.Booking, error) {
	b, err := s.ledger.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	change, err := b.Cancel(reason, s.clock.Now())
	if err != nil {
		return nil, err
	}
	if err := s.ledger.AppendStatus(ctx, change); err != nil {
		return nil, err
	}
	logger.Info("予約をキャンセルしました", zap.String("booking_id", id), zap.String("reason", reason))
	return b, nil
}

func (s *BookingService) GetHistory(ctx context.Context, id string) ([]booking.StatusChange, error) {
	return s.ledger.History(ctx, id)
}
