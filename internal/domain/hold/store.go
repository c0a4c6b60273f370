package hold

import (
	"context"
	"time"
)

// Store は座席在庫（Availability Store）のインターフェース
// すべての変更操作は上映回単位で直列化され、座席集合に対して全か無かで適用される
type Store interface {
	// TryHold はすべての座席が Open の場合のみ一括で保留する
	// 競合時は最初の競合座席を含む *SeatUnavailableError を返す
	TryHold(ctx context.Context, req Request) (*Hold, error)
	// ReleaseHold は有効な保留を解放する。確定済み・期限切れ・解放済みなら何もしない
	ReleaseHold(ctx context.Context, holdID string) (bool, error)
	// CommitHold は期限内の保留を bookingID で販売済みにする
	CommitHold(ctx context.Context, holdID, bookingID string) (*Hold, error)
	// RenewHold は有効な保留の期限を now+ttl に延長する
	RenewHold(ctx context.Context, holdID string, ttl time.Duration) (*Hold, error)
	// GetHold は保留を取得する
	GetHold(ctx context.Context, holdID string) (*Hold, error)
	// Statuses は上映回の Open 以外の実効座席状態を返す
	Statuses(ctx context.Context, showtimeID string) (map[string]SeatStatus, error)
	// SweepExpired は期限切れの保留を解放し、解放した保留を返す
	SweepExpired(ctx context.Context) ([]*Hold, error)
}
