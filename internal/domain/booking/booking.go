package booking

import (
	"time"

	"github.com/sanosuguru/go-showtime-seat-reservation/internal/domain/hold"
)

// Status は予約の状態を表す
type Status string

const (
	StatusConfirmed Status = "confirmed"
	StatusCancelled Status = "cancelled"
)

// Booking は確定済みの予約を表す
// 作成後に変わるのは状態（confirmed -> cancelled）のみ
type Booking struct {
	ID            string
	ShowtimeID    string
	HoldID        string
	SessionID     string
	UserID        string
	SeatIDs       []string
	Lines         []hold.Line
	Charges       Charges
	PaymentRef    string
	PaymentMethod string
	Status        Status
	CreatedAt     time.Time
	UpdatedAt     time.Time
}

// NewFromHold は確定した保留から予約を作成する
// 料金は保留時に固定された明細から計算する
func NewFromHold(h *hold.Hold, userID, paymentRef, paymentMethod string, now time.Time) *Booking {
	return &Booking{
		ID:            h.BookingID,
		ShowtimeID:    h.ShowtimeID,
		HoldID:        h.ID,
		SessionID:     h.SessionID,
		UserID:        userID,
		SeatIDs:       append([]string(nil), h.SeatIDs...),
		Lines:         append([]hold.Line(nil), h.Lines...),
		Charges:       CalculateCharges(h.Subtotal),
		PaymentRef:    paymentRef,
		PaymentMethod: paymentMethod,
		Status:        StatusConfirmed,
		CreatedAt:     now,
		UpdatedAt:     now,
	}
}

// Validate は予約の検証を行う
func (b *Booking) Validate() error {
	if b.ID == "" {
		return ErrBookingIDRequired
	}
	if b.ShowtimeID == "" {
		return ErrShowtimeIDRequired
	}
	if len(b.SeatIDs) == 0 {
		return ErrSeatIDsRequired
	}
	return nil
}

// IsCancelled は予約がキャンセル済みかを返す
func (b *Booking) IsCancelled() bool {
	return b.Status == StatusCancelled
}

// Cancel は予約をキャンセル状態にし、追記すべき状態変更を返す
func (b *Booking) Cancel(reason string, now time.Time) (StatusChange, error) {
	if b.Status == StatusCancelled {
		return StatusChange{}, ErrBookingAlreadyCancelled
	}
	b.Status = StatusCancelled
	b.UpdatedAt = now
	return StatusChange{BookingID: b.ID, Status: StatusCancelled, Reason: reason, At: now}, nil
}

// StatusChange は予約台帳に追記される状態変更
type StatusChange struct {
	BookingID string
	Status    Status
	Reason    string
	At        time.Time
}
