package booking

import (
	"errors"
	"fmt"
)

// Booking ドメインのエラー定義
var (
	ErrBookingNotFound         = errors.New("予約が見つかりません")
	ErrBookingAlreadyCancelled = errors.New("予約は既にキャンセルされています")
	ErrBookingIDRequired       = errors.New("予約IDは必須です")
	ErrShowtimeIDRequired      = errors.New("上映回IDは必須です")
	ErrSeatIDsRequired         = errors.New("座席IDは必須です")
	ErrLedgerUnavailable       = errors.New("予約台帳が利用できません")
)

// LedgerError はインフラ起因の失敗を ErrLedgerUnavailable としてラップする
func LedgerError(op string, err error) error {
	return fmt.Errorf("%s: %w: %w", op, ErrLedgerUnavailable, err)
}
