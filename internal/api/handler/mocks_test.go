package handler

import (
	"context"

	"github.com/stretchr/testify/mock"

	"github.com/sanosuguru/go-showtime-seat-reservation/internal/application"
	"github.com/sanosuguru/go-showtime-seat-reservation/internal/domain/booking"
	"github.com/sanosuguru/go-showtime-seat-reservation/internal/domain/showtime"
)

// MockShowtimeService はShowtimeServiceInterfaceのモック
type MockShowtimeService struct {
	mock.Mock
}

func (m *MockShowtimeService) CreateShowtime(ctx context.Context, input application.CreateShowtimeInput) (*showtime.Showtime, error) {
	args := m.Called(ctx, input)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*showtime.Showtime), args.Error(1)
}

func (m *MockShowtimeService) GetShowtime(ctx context.Context, id string) (*showtime.Showtime, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*showtime.Showtime), args.Error(1)
}

func (m *MockShowtimeService) ListShowtimes(ctx context.Context, movieID string, limit, offset int) ([]*showtime.Showtime, error) {
	args := m.Called(ctx, movieID, limit, offset)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*showtime.Showtime), args.Error(1)
}

func (m *MockShowtimeService) UpdateBasePrice(ctx context.Context, id string, price int) (*showtime.Showtime, error) {
	args := m.Called(ctx, id, price)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*showtime.Showtime), args.Error(1)
}

// MockSeatService はSeatServiceInterfaceのモック
type MockSeatService struct {
	mock.Mock
}

func (m *MockSeatService) GetSeatStatuses(ctx context.Context, showtimeID string) ([]application.SeatView, error) {
	args := m.Called(ctx, showtimeID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]application.SeatView), args.Error(1)
}

func (m *MockSeatService) OccupiedSeats(ctx context.Context, showtimeID string) ([]string, error) {
	args := m.Called(ctx, showtimeID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]string), args.Error(1)
}

// MockHoldService はHoldServiceInterfaceのモック
type MockHoldService struct {
	mock.Mock
}

func (m *MockHoldService) SelectSeats(ctx context.Context, input application.SelectSeatsInput) (*application.Quote, error) {
	args := m.Called(ctx, input)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*application.Quote), args.Error(1)
}

func (m *MockHoldService) GetHold(ctx context.Context, holdID string) (*application.Quote, error) {
	args := m.Called(ctx, holdID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*application.Quote), args.Error(1)
}

func (m *MockHoldService) BeginPayment(ctx context.Context, holdID string) (*application.Quote, error) {
	args := m.Called(ctx, holdID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*application.Quote), args.Error(1)
}

func (m *MockHoldService) ConfirmPayment(ctx context.Context, input application.ConfirmPaymentInput) (*booking.Booking, error) {
	args := m.Called(ctx, input)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*booking.Booking), args.Error(1)
}

func (m *MockHoldService) CancelHold(ctx context.Context, holdID string) (bool, error) {
	args := m.Called(ctx, holdID)
	return args.Bool(0), args.Error(1)
}

// MockBookingService はBookingServiceInterfaceのモック
type MockBookingService struct {
	mock.Mock
}

func (m *MockBookingService) GetBooking(ctx context.Context, id string) (*booking.Booking, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*booking.Booking), args.Error(1)
}

func (m *MockBookingService) GetUserBookings(ctx context.Context, userID string, limit, offset int) ([]*booking.Booking, error) {
	args := m.Called(ctx, userID, limit, offset)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*booking.Booking), args.Error(1)
}

func (m *MockBookingService) CancelBooking(ctx context.Context, id, reason string) (*booking.Booking, error) {
	args := m.Called(ctx, id, reason)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*booking.Booking), args.Error(1)
}

func (m *MockBookingService) GetHistory(ctx context.Context, id string) ([]booking.StatusChange, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]booking.StatusChange), args.Error(1)
}
