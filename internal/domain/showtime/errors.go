package showtime

import "errors"

// Showtime ドメインのエラー定義
var (
	ErrShowtimeNotFound  = errors.New("上映回が見つかりません")
	ErrMovieIDRequired   = errors.New("映画IDは必須です")
	ErrTheaterIDRequired = errors.New("劇場IDは必須です")
	ErrStartTimeRequired = errors.New("開始時刻は必須です")
	ErrInvalidBasePrice  = errors.New("基本料金は0以上である必要があります")
	ErrInvalidTotalSeats = errors.New("座席数は1以上である必要があります")
)
