package application

import (
	"context"
	"fmt"
	"time"

	"github.com/sanosuguru/go-showtime-seat-reservation/internal/domain/seat"
	"github.com/sanosuguru/go-showtime-seat-reservation/internal/domain/showtime"
)

// ShowtimeService は上映回カタログを扱う
// 座席マップの提供元（seat.Provider）も兼ねる
type ShowtimeService struct {
	showtimeRepo showtime.Repository
	layout       seat.Layout
}

func NewShowtimeService(repo showtime.Repository, layout seat.Layout) *ShowtimeService {
	return &ShowtimeService{showtimeRepo: repo, layout: layout}
}

type CreateShowtimeInput struct {
	MovieID   string
	TheaterID string
	StartAt   time.Time
	BasePrice int
}

func (s *ShowtimeService) CreateShowtime(ctx context.Context, input CreateShowtimeInput) (*showtime.Showtime, error) {
	st := showtime.NewShowtime(input.MovieID, input.TheaterID, input.StartAt, input.BasePrice, s.layout.Capacity())
	if err := st.Validate(); err != nil {
		return nil, fmt.Errorf("バリデーションエラー: %w", err)
	}
	if err := s.showtimeRepo.Create(ctx, st); err != nil {
		return nil, fmt.Errorf("上映回の作成に失敗しました: %w", err)
	}
	return st, nil
}

func (s *ShowtimeService) GetShowtime(ctx context.Context, id string) (*showtime.Showtime, error) {
	return s.showtimeRepo.GetByID(ctx, id)
}

func (s *ShowtimeService) ListShowtimes(ctx context.Context, movieID string, limit, offset int) ([]*showtime.Showtime, error) {
	if limit <= 0 {
		limit = 20
	}
	if limit > 100 {
		limit = 100
	}
	if offset < 0 {
		offset = 0
	}
	return s.showtimeRepo.List(ctx, movieID, limit, offset)
}

// UpdateBasePrice は基本料金を変更する
// 作成済みの保留の価格は変わらない
func (s *ShowtimeService) UpdateBasePrice(ctx context.Context, id string, price int) (*showtime.Showtime, error) {
	st, err := s.showtimeRepo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := st.ChangeBasePrice(price); err != nil {
		return nil, fmt.Errorf("バリデーションエラー: %w", err)
	}
	if err := s.showtimeRepo.Update(ctx, st); err != nil {
		return nil, err
	}
	return st, nil
}

// SeatMap は上映回の座席マップを返す
func (s *ShowtimeService) SeatMap(ctx context.Context, showtimeID string) (*seat.Map, error) {
	st, err := s.showtimeRepo.GetByID(ctx, showtimeID)
	if err != nil {
		return nil, err
	}
	return seat.NewMap(st.ID, st.BasePrice, s.layout), nil
}

var _ seat.Provider = (*ShowtimeService)(nil)
