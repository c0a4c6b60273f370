package rabbitmq

import (
	"time"

	"github.com/sanosuguru/go-showtime-seat-reservation/internal/domain/booking"
	"github.com/sanosuguru/go-showtime-seat-reservation/internal/domain/payment"
)

// BookingConfirmedEvent は booking.confirmed キューのメッセージ
type BookingConfirmedEvent struct {
	BookingID      string    `json:"booking_id"`
	ShowtimeID     string    `json:"showtime_id"`
	UserID         string    `json:"user_id,omitempty"`
	SeatIDs        []string  `json:"seat_ids"`
	Subtotal       int       `json:"subtotal"`
	ConvenienceFee int       `json:"convenience_fee"`
	GST            int       `json:"gst"`
	Total          int       `json:"total"`
	PaymentRef     string    `json:"payment_ref"`
	PaymentMethod  string    `json:"payment_method"`
	ConfirmedAt    time.Time `json:"confirmed_at"`
}

func newBookingConfirmedEvent(b *booking.Booking) BookingConfirmedEvent {
	return BookingConfirmedEvent{
		BookingID:      b.ID,
		ShowtimeID:     b.ShowtimeID,
		UserID:         b.UserID,
		SeatIDs:        b.SeatIDs,
		Subtotal:       b.Charges.Subtotal,
		ConvenienceFee: b.Charges.ConvenienceFee,
		GST:            b.Charges.GST,
		Total:          b.Charges.Total,
		PaymentRef:     b.PaymentRef,
		PaymentMethod:  b.PaymentMethod,
		ConfirmedAt:    b.CreatedAt.UTC(),
	}
}

// RefundMessage は payment.refund キューのメッセージ
type RefundMessage struct {
	PaymentRef string    `json:"payment_ref"`
	HoldID     string    `json:"hold_id"`
	BookingID  string    `json:"booking_id"`
	Amount     int       `json:"amount"`
	Method     string    `json:"method"`
	Reason     string    `json:"reason"`
	IssuedAt   time.Time `json:"issued_at"`
}

func newRefundMessage(r payment.Refund) RefundMessage {
	return RefundMessage{
		PaymentRef: r.PaymentRef,
		HoldID:     r.HoldID,
		BookingID:  r.BookingID,
		Amount:     r.Amount,
		Method:     string(r.Method),
		Reason:     string(r.Reason),
		IssuedAt:   r.IssuedAt.UTC(),
	}
}
