package application

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/sanosuguru/go-showtime-seat-reservation/internal/domain/booking"
	"github.com/sanosuguru/go-showtime-seat-reservation/internal/domain/hold"
	"github.com/sanosuguru/go-showtime-seat-reservation/internal/domain/seat"
	redisinfra "github.com/sanosuguru/go-showtime-seat-reservation/internal/infrastructure/redis"
	"github.com/sanosuguru/go-showtime-seat-reservation/internal/pkg/clock"
	"github.com/sanosuguru/go-showtime-seat-reservation/internal/pkg/logger"
)

// StatusCache は座席状態スナップショットのキャッシュ
type StatusCache interface {
	GetStatuses(ctx context.Context, showtimeID string) (map[string]hold.SeatStatus, error)
	SetStatuses(ctx context.Context, showtimeID string, statuses map[string]hold.SeatStatus, ttl time.Duration) error
	Invalidate(ctx context.Context, showtimeID string) error
}

// SeatView は表示用の座席と状態
type SeatView struct {
	seat.Seat
	Status    hold.Kind
	Holder    string
	ExpiresAt *time.Time
}

type SeatService struct {
	seats    seat.Provider
	store    hold.Store
	ledger   booking.Ledger
	cache    StatusCache
	cacheTTL time.Duration
	clock    clock.Clock
}

// NewSeatService は SeatService を作成する。cache は nil でもよい
func NewSeatService(seats seat.Provider, store hold.Store, ledger booking.Ledger, cache StatusCache, cacheTTL time.Duration, clk clock.Clock) *SeatService {
	if clk == nil {
		clk = clock.System{}
	}
	return &SeatService{seats: seats, store: store, ledger: ledger, cache: cache, cacheTTL: cacheTTL, clock: clk}
}

// GetSeatStatuses は上映回の全座席と現在の状態をレイアウト順で返す
// 状態はキャッシュ（保留期限より短い TTL）から返すことがある
func (s *SeatService) GetSeatStatuses(ctx context.Context, showtimeID string) ([]SeatView, error) {
	m, err := s.seats.SeatMap(ctx, showtimeID)
	if err != nil {
		return nil, err
	}
	statuses, err := s.statuses(ctx, showtimeID)
	if err != nil {
		return nil, err
	}

	now := s.clock.Now()
	views := make([]SeatView, 0, m.Len())
	for _, se := range m.Seats() {
		v := SeatView{Seat: se, Status: hold.KindOpen}
		if st, ok := statuses[se.ID]; ok {
			// キャッシュ後に期限切れになった保留は空席として表示
			st = st.At(now)
			v.Status = st.Kind
			if st.Kind == hold.KindHeld {
				v.Holder = st.Holder
				expiresAt := st.ExpiresAt
				v.ExpiresAt = &expiresAt
			}
		}
		views = append(views, v)
	}
	return views, nil
}

func (s *SeatService) statuses(ctx context.Context, showtimeID string) (map[string]hold.SeatStatus, error) {
	if s.cache != nil && s.cacheTTL > 0 {
		cached, err := s.cache.GetStatuses(ctx, showtimeID)
		if err == nil {
			logger.Debug("キャッシュヒット", zap.String("showtime_id", showtimeID), zap.Int("count", len(cached)))
			return cached, nil
		}
		if !errors.Is(err, redisinfra.ErrCacheMiss) {
			logger.Warn("キャッシュ取得エラー", zap.Error(err))
		}
	}

	statuses, err := s.store.Statuses(ctx, showtimeID)
	if err != nil {
		return nil, err
	}

	if s.cache != nil && s.cacheTTL > 0 {
		if cacheErr := s.cache.SetStatuses(ctx, showtimeID, statuses, s.cacheTTL); cacheErr != nil {
			logger.Warn("キャッシュ保存エラー", zap.Error(cacheErr))
		}
	}
	return statuses, nil
}

// OccupiedSeats は確定済み予約の座席IDをレイアウト順で返す
// キャンセル済みの予約の座席も含む。販売済みの座席は再販売されない
func (s *SeatService) OccupiedSeats(ctx context.Context, showtimeID string) ([]string, error) {
	m, err := s.seats.SeatMap(ctx, showtimeID)
	if err != nil {
		return nil, err
	}
	bookings, err := s.ledger.ListByShowtime(ctx, showtimeID)
	if err != nil {
		return nil, fmt.Errorf("予約台帳の取得に失敗: %w", err)
	}
	taken := make(map[string]struct{})
	for _, b := range bookings {
		for _, id := range b.SeatIDs {
			taken[id] = struct{}{}
		}
	}
	occupied := make([]string, 0, len(taken))
	for _, se := range m.Seats() {
		if _, ok := taken[se.ID]; ok {
			occupied = append(occupied, se.ID)
		}
	}
	return occupied, nil
}

// InvalidateCache は上映回のキャッシュを無効化する
func (s *SeatService) InvalidateCache(ctx context.Context, showtimeID string) {
	if s.cache != nil {
		if err := s.cache.Invalidate(ctx, showtimeID); err != nil {
			logger.Warn("キャッシュ無効化エラー", zap.Error(err))
		}
	}
}
