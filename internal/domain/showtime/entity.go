package showtime

import "time"

// Showtime は上映回エンティティを表す
type Showtime struct {
	ID         string
	MovieID    string
	TheaterID  string
	StartAt    time.Time
	BasePrice  int
	TotalSeats int
	CreatedAt  time.Time
	UpdatedAt  time.Time
}

// NewShowtime は新しい上映回を作成する
func NewShowtime(movieID, theaterID string, startAt time.Time, basePrice, totalSeats int) *Showtime {
	now := time.Now()
	return &Showtime{
		MovieID:    movieID,
		TheaterID:  theaterID,
		StartAt:    startAt,
		BasePrice:  basePrice,
		TotalSeats: totalSeats,
		CreatedAt:  now,
		UpdatedAt:  now,
	}
}

// Validate は上映回の検証を行う
func (s *Showtime) Validate() error {
	if s.MovieID == "" {
		return ErrMovieIDRequired
	}
	if s.TheaterID == "" {
		return ErrTheaterIDRequired
	}
	if s.StartAt.IsZero() {
		return ErrStartTimeRequired
	}
	if s.BasePrice < 0 {
		return ErrInvalidBasePrice
	}
	if s.TotalSeats <= 0 {
		return ErrInvalidTotalSeats
	}
	return nil
}

// ChangeBasePrice は基本料金を変更する
// 既存の予約には影響しない（価格は保留時に固定される）
func (s *Showtime) ChangeBasePrice(price int) error {
	if price < 0 {
		return ErrInvalidBasePrice
	}
	s.BasePrice = price
	s.UpdatedAt = time.Now()
	return nil
}
