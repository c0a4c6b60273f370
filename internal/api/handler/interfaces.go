package handler

import (
	"context"

	"github.com/sanosuguru/go-showtime-seat-reservation/internal/application"
	"github.com/sanosuguru/go-showtime-seat-reservation/internal/domain/booking"
	"github.com/sanosuguru/go-showtime-seat-reservation/internal/domain/showtime"
)

// ShowtimeServiceInterface は上映回サービスのインターフェース
type ShowtimeServiceInterface interface {
	CreateShowtime(ctx context.Context, input application.CreateShowtimeInput) (*showtime.Showtime, error)
	GetShowtime(ctx context.Context, id string) (*showtime.Showtime, error)
	ListShowtimes(ctx context.Context, movieID string, limit, offset int) ([]*showtime.Showtime, error)
	UpdateBasePrice(ctx context.Context, id string, price int) (*showtime.Showtime, error)
}

// SeatServiceInterface は座席状態サービスのインターフェース
type SeatServiceInterface interface {
	GetSeatStatuses(ctx context.Context, showtimeID string) ([]application.SeatView, error)
	OccupiedSeats(ctx context.Context, showtimeID string) ([]string, error)
}

// HoldServiceInterface は座席保留から決済確定までのインターフェース
type HoldServiceInterface interface {
	SelectSeats(ctx context.Context, input application.SelectSeatsInput) (*application.Quote, error)
	GetHold(ctx context.Context, holdID string) (*application.Quote, error)
	BeginPayment(ctx context.Context, holdID string) (*application.Quote, error)
	ConfirmPayment(ctx context.Context, input application.ConfirmPaymentInput) (*booking.Booking, error)
	CancelHold(ctx context.Context, holdID string) (bool, error)
}

// BookingServiceInterface は予約台帳サービスのインターフェース
type BookingServiceInterface interface {
	GetBooking(ctx context.Context, id string) (*booking.Booking, error)
	GetUserBookings(ctx context.Context, userID string, limit, offset int) ([]*booking.Booking, error)
	CancelBooking(ctx context.Context, id, reason string) (*booking.Booking, error)
	GetHistory(ctx context.Context, id string) ([]booking.StatusChange, error)
}
