package hold

import (
	"errors"
	"fmt"
)

// Hold ドメインのエラー定義
var (
	ErrSeatUnavailable    = errors.New("座席は他のセッションが確保済みです")
	ErrHoldExpired        = errors.New("座席の確保期限が切れています")
	ErrHoldInvalidated    = errors.New("座席の確保は無効になっています")
	ErrHoldNotFound       = errors.New("座席の確保が見つかりません")
	ErrStoreUnavailable   = errors.New("座席在庫ストアが利用できません")
	ErrShowtimeIDRequired = errors.New("上映回IDは必須です")
	ErrSessionIDRequired  = errors.New("セッションIDは必須です")
	ErrSeatIDsRequired    = errors.New("座席IDは必須です")
	ErrBookingIDRequired  = errors.New("予約IDは必須です")
	ErrInvalidTTL         = errors.New("確保期限は正の値である必要があります")
	ErrDuplicateSeat      = errors.New("同じ座席が重複して指定されています")
)

// SeatUnavailableError は最初に競合した座席を示す
type SeatUnavailableError struct {
	SeatID string
}

func (e *SeatUnavailableError) Error() string {
	return fmt.Sprintf("%s: %s", ErrSeatUnavailable.Error(), e.SeatID)
}

func (e *SeatUnavailableError) Is(target error) bool {
	return target == ErrSeatUnavailable
}

// Unavailable は SeatUnavailableError を作成する
func Unavailable(seatID string) error {
	return &SeatUnavailableError{SeatID: seatID}
}

// StoreError はインフラ起因の失敗を ErrStoreUnavailable としてラップする
func StoreError(op string, err error) error {
	return fmt.Errorf("%s: %w: %w", op, ErrStoreUnavailable, err)
}
