package seat

import (
	"errors"
	"fmt"
)

// Seat ドメインのエラー定義
var (
	ErrSeatNotFound    = errors.New("座席が見つかりません")
	ErrNoSeatsSelected = errors.New("座席が選択されていません")
	ErrDuplicateSeat   = errors.New("同じ座席が重複して指定されています")
	ErrInvalidPrice    = errors.New("価格は0以上である必要があります")
	ErrEmptyLayout     = errors.New("座席レイアウトが空です")
	ErrDuplicateRow    = errors.New("列が重複しています")
)

// NotFoundError は座席マップに存在しない座席を示す
type NotFoundError struct {
	SeatID string
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("%s: %s", ErrSeatNotFound.Error(), e.SeatID)
}

func (e *NotFoundError) Is(target error) bool {
	return target == ErrSeatNotFound
}
