package memory

import (
	"context"
	"sort"
	"sync"

	"github.com/sanosuguru/go-showtime-seat-reservation/internal/domain/booking"
	"github.com/sanosuguru/go-showtime-seat-reservation/internal/domain/hold"
)

// Ledger はプロセス内の追記専用予約台帳
type Ledger struct {
	mu       sync.RWMutex
	bookings map[string]*booking.Booking
	order    []string
	history  map[string][]booking.StatusChange
}

// NewLedger は新しい Ledger を作成する
func NewLedger() *Ledger {
	return &Ledger{
		bookings: make(map[string]*booking.Booking),
		history:  make(map[string][]booking.StatusChange),
	}
}

func cloneBooking(b *booking.Booking) *booking.Booking {
	c := *b
	c.SeatIDs = append([]string(nil), b.SeatIDs...)
	c.Lines = append([]hold.Line(nil), b.Lines...)
	return &c
}

// Append は予約を追記する。既に同じIDがあれば何もしない
func (l *Ledger) Append(ctx context.Context, b *booking.Booking) (bool, error) {
	if err := b.Validate(); err != nil {
		return false, err
	}
	if err := ctx.Err(); err != nil {
		return false, booking.LedgerError("append", err)
	}
	l.mu.Lock()
	defer l.mu.Unlock()
	if _, exists := l.bookings[b.ID]; exists {
		return false, nil
	}
	l.bookings[b.ID] = cloneBooking(b)
	l.order = append(l.order, b.ID)
	l.history[b.ID] = append(l.history[b.ID], booking.StatusChange{
		BookingID: b.ID,
		Status:    b.Status,
		At:        b.CreatedAt,
	})
	return true, nil
}

// AppendStatus は状態変更を追記する
func (l *Ledger) AppendStatus(ctx context.Context, change booking.StatusChange) error {
	if err := ctx.Err(); err != nil {
		return booking.LedgerError("append status", err)
	}
	l.mu.Lock()
	defer l.mu.Unlock()
	b, ok := l.bookings[change.BookingID]
	if !ok {
		return booking.ErrBookingNotFound
	}
	l.history[change.BookingID] = append(l.history[change.BookingID], change)
	b.Status = change.Status
	b.UpdatedAt = change.At
	return nil
}

// GetByID はIDから予約を取得する
func (l *Ledger) GetByID(ctx context.Context, id string) (*booking.Booking, error) {
	if err := ctx.Err(); err != nil {
		return nil, booking.LedgerError("get booking", err)
	}
	l.mu.RLock()
	defer l.mu.RUnlock()
	b, ok := l.bookings[id]
	if !ok {
		return nil, booking.ErrBookingNotFound
	}
	return cloneBooking(b), nil
}

// ListByShowtime は上映回の予約を追記順に返す
func (l *Ledger) ListByShowtime(ctx context.Context, showtimeID string) ([]*booking.Booking, error) {
	if err := ctx.Err(); err != nil {
		return nil, booking.LedgerError("list by showtime", err)
	}
	l.mu.RLock()
	defer l.mu.RUnlock()
	out := make([]*booking.Booking, 0)
	for _, id := range l.order {
		if b := l.bookings[id]; b.ShowtimeID == showtimeID {
			out = append(out, cloneBooking(b))
		}
	}
	return out, nil
}

// ListByUser はユーザーの予約を新しい順に返す
func (l *Ledger) ListByUser(ctx context.Context, userID string, limit, offset int) ([]*booking.Booking, error) {
	if err := ctx.Err(); err != nil {
		return nil, booking.LedgerError("list by user", err)
	}
	l.mu.RLock()
	matched := make([]*booking.Booking, 0)
	for _, id := range l.order {
		if b := l.bookings[id]; b.UserID == userID {
			matched = append(matched, cloneBooking(b))
		}
	}
	l.mu.RUnlock()

	sort.SliceStable(matched, func(i, j int) bool {
		return matched[i].CreatedAt.After(matched[j].CreatedAt)
	})
	if offset >= len(matched) {
		return []*booking.Booking{}, nil
	}
	matched = matched[offset:]
	if limit > 0 && limit < len(matched) {
		matched = matched[:limit]
	}
	return matched, nil
}

// History は状態変更履歴を返す
func (l *Ledger) History(ctx context.Context, id string) ([]booking.StatusChange, error) {
	if err := ctx.Err(); err != nil {
		return nil, booking.LedgerError("history", err)
	}
	l.mu.RLock()
	defer l.mu.RUnlock()
	changes, ok := l.history[id]
	if !ok {
		return nil, booking.ErrBookingNotFound
	}
	return append([]booking.StatusChange(nil), changes...), nil
}

var _ booking.Ledger = (*Ledger)(nil)
