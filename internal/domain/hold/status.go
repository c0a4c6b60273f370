package hold

import "time"

// Kind は座席状態の種類
type Kind string

const (
	KindOpen Kind = "open"
	KindHeld Kind = "held"
	KindSold Kind = "sold"
)

// SeatStatus は (上映回, 座席) ごとの状態
// Open / Held(holder, expiry) / Sold(bookingID) のいずれか1つ
type SeatStatus struct {
	Kind      Kind
	HoldID    string
	Holder    string
	ExpiresAt time.Time
	BookingID string
}

// Open は空席状態を返す
func Open() SeatStatus { return SeatStatus{Kind: KindOpen} }

// Held は保留状態を返す
func Held(holdID, holder string, expiresAt time.Time) SeatStatus {
	return SeatStatus{Kind: KindHeld, HoldID: holdID, Holder: holder, ExpiresAt: expiresAt}
}

// Sold は販売済み状態を返す
func Sold(bookingID string) SeatStatus {
	return SeatStatus{Kind: KindSold, BookingID: bookingID}
}

// At は now 時点の実効状態を返す
// 期限切れの保留はスイープ前でも Open として扱う
// ゼロ値（記録のない座席）も Open
func (s SeatStatus) At(now time.Time) SeatStatus {
	switch {
	case s.Kind == "":
		return Open()
	case s.Kind == KindHeld && !now.Before(s.ExpiresAt):
		return Open()
	}
	return s
}

// IsOpenAt は now 時点で保留可能かを返す
func (s SeatStatus) IsOpenAt(now time.Time) bool {
	return s.At(now).Kind == KindOpen
}

// HeldBy は holdID による有効な保留かを返す
func (s SeatStatus) HeldBy(holdID string) bool {
	return s.Kind == KindHeld && s.HoldID == holdID
}
