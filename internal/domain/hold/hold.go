package hold

import (
	"time"

	"github.com/sanosuguru/go-showtime-seat-reservation/internal/domain/seat"
)

// State は保留の状態を表す
type State string

const (
	StateActive    State = "active"
	StateCommitted State = "committed"
	StateReleased  State = "released"
)

// Line は保留時に固定された座席ごとの料金
type Line struct {
	SeatID   string
	Category seat.Category
	Price    int
}

// Hold は座席の一時確保（決済中の排他的な権利）を表す
// ID はクライアントに返すトークンとして使われる
type Hold struct {
	ID             string
	ShowtimeID     string
	SessionID      string
	SeatIDs        []string
	Lines          []Line
	Subtotal       int
	BookingID      string // 確定時に使う予約ID（保留作成時に払い出す）
	IdempotencyKey string
	State          State
	ExpiresAt      time.Time
	CreatedAt      time.Time
	UpdatedAt      time.Time
}

// IsExpired は now 時点で有効期限が過ぎているかを返す
// 期限ちょうどの時刻は期限切れとして扱う
func (h *Hold) IsExpired(now time.Time) bool {
	return !now.Before(h.ExpiresAt)
}

// IsActive は now 時点で確定・解放可能な保留かを返す
func (h *Hold) IsActive(now time.Time) bool {
	return h.State == StateActive && !h.IsExpired(now)
}

// CheckCommittable は bookingID での確定が可能かを判定する
// 同じ bookingID で確定済みなら (true, nil) を返す（冪等な再試行）
func (h *Hold) CheckCommittable(bookingID string, now time.Time) (alreadyCommitted bool, err error) {
	switch h.State {
	case StateCommitted:
		if h.BookingID == bookingID {
			return true, nil
		}
		return false, ErrHoldInvalidated
	case StateReleased:
		// スイープ等で期限後に解放された保留は期限切れとして扱う
		if h.IsExpired(now) {
			return false, ErrHoldExpired
		}
		return false, ErrHoldInvalidated
	}
	if bookingID != h.BookingID {
		return false, ErrHoldInvalidated
	}
	if h.IsExpired(now) {
		return false, ErrHoldExpired
	}
	return false, nil
}

// CheckRenewable は延長が可能かを判定する
func (h *Hold) CheckRenewable(now time.Time) error {
	if h.State == StateReleased && h.IsExpired(now) {
		return ErrHoldExpired
	}
	if h.State != StateActive {
		return ErrHoldInvalidated
	}
	if h.IsExpired(now) {
		return ErrHoldExpired
	}
	return nil
}

// Clone はスライスを含めた複製を返す
func (h *Hold) Clone() *Hold {
	c := *h
	c.SeatIDs = append([]string(nil), h.SeatIDs...)
	c.Lines = append([]Line(nil), h.Lines...)
	return &c
}

// Request は保留作成の入力
type Request struct {
	ShowtimeID     string
	SessionID      string
	SeatIDs        []string
	Lines          []Line
	BookingID      string
	IdempotencyKey string
	TTL            time.Duration
}

// Validate は保留作成の入力を検証する
func (r Request) Validate() error {
	if r.ShowtimeID == "" {
		return ErrShowtimeIDRequired
	}
	if r.SessionID == "" {
		return ErrSessionIDRequired
	}
	if len(r.SeatIDs) == 0 {
		return ErrSeatIDsRequired
	}
	if r.BookingID == "" {
		return ErrBookingIDRequired
	}
	if r.TTL <= 0 {
		return ErrInvalidTTL
	}
	seen := make(map[string]struct{}, len(r.SeatIDs))
	for _, id := range r.SeatIDs {
		if _, dup := seen[id]; dup {
			return ErrDuplicateSeat
		}
		seen[id] = struct{}{}
	}
	return nil
}

// Subtotal は明細の合計金額を返す
func (r Request) Subtotal() int {
	total := 0
	for _, l := range r.Lines {
		total += l.Price
	}
	return total
}

// NewHold は入力から新しい保留を作成する
func NewHold(id string, r Request, now time.Time) *Hold {
	return &Hold{
		ID:             id,
		ShowtimeID:     r.ShowtimeID,
		SessionID:      r.SessionID,
		SeatIDs:        append([]string(nil), r.SeatIDs...),
		Lines:          append([]Line(nil), r.Lines...),
		Subtotal:       r.Subtotal(),
		BookingID:      r.BookingID,
		IdempotencyKey: r.IdempotencyKey,
		State:          StateActive,
		ExpiresAt:      now.Add(r.TTL),
		CreatedAt:      now,
		UpdatedAt:      now,
	}
}
