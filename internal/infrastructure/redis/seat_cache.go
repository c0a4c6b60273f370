package redis

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/sanosuguru/go-showtime-seat-reservation/internal/domain/hold"
)

var (
	ErrCacheMiss = errors.New("キャッシュが見つかりません")
)

// SeatCache は上映回ごとの座席状態スナップショットを保持する
// 表示用の読み取りにのみ使い、保留・確定の判定には使わない
type SeatCache struct {
	client *redis.Client
}

// NewSeatCache は新しいSeatCacheインスタンスを作成する
func NewSeatCache(client *redis.Client) *SeatCache {
	return &SeatCache{client: client}
}

type cachedStatus struct {
	Kind      hold.Kind `json:"kind"`
	HoldID    string    `json:"hold_id,omitempty"`
	Holder    string    `json:"holder,omitempty"`
	ExpiresAt time.Time `json:"expires_at,omitempty"`
	BookingID string    `json:"booking_id,omitempty"`
}

// GetStatuses は上映回の座席状態スナップショットを取得する
func (c *SeatCache) GetStatuses(ctx context.Context, showtimeID string) (map[string]hold.SeatStatus, error) {
	data, err := c.client.Get(ctx, c.statusKey(showtimeID)).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, ErrCacheMiss
		}
		return nil, fmt.Errorf("キャッシュ取得に失敗: %w", err)
	}
	var raw map[string]cachedStatus
	if err := json.Unmarshal(data, &raw); err != nil {
		return nil, fmt.Errorf("キャッシュの復元に失敗: %w", err)
	}
	out := make(map[string]hold.SeatStatus, len(raw))
	for seatID, s := range raw {
		out[seatID] = hold.SeatStatus{
			Kind:      s.Kind,
			HoldID:    s.HoldID,
			Holder:    s.Holder,
			ExpiresAt: s.ExpiresAt,
			BookingID: s.BookingID,
		}
	}
	return out, nil
}

// SetStatuses は座席状態スナップショットを保存する
func (c *SeatCache) SetStatuses(ctx context.Context, showtimeID string, statuses map[string]hold.SeatStatus, ttl time.Duration) error {
	raw := make(map[string]cachedStatus, len(statuses))
	for seatID, s := range statuses {
		raw[seatID] = cachedStatus{
			Kind:      s.Kind,
			HoldID:    s.HoldID,
			Holder:    s.Holder,
			ExpiresAt: s.ExpiresAt,
			BookingID: s.BookingID,
		}
	}
	data, err := json.Marshal(raw)
	if err != nil {
		return fmt.Errorf("キャッシュのシリアライズに失敗: %w", err)
	}
	if err := c.client.Set(ctx, c.statusKey(showtimeID), data, ttl).Err(); err != nil {
		return fmt.Errorf("キャッシュ保存に失敗: %w", err)
	}
	return nil
}

// Invalidate は上映回のキャッシュを無効化する
func (c *SeatCache) Invalidate(ctx context.Context, showtimeID string) error {
	err := c.client.Del(ctx, c.statusKey(showtimeID)).Err()
	if err != nil {
		return fmt.Errorf("キャッシュ無効化に失敗: %w", err)
	}
	return nil
}

func (c *SeatCache) statusKey(showtimeID string) string {
	return fmt.Sprintf("seats:status:%s", showtimeID)
}
