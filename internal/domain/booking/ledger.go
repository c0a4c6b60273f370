package booking

import "context"

// Ledger は追記専用の予約台帳のインターフェース
type Ledger interface {
	// Append は予約を追記し、この呼び出しで記録した場合 true を返す
	// 同じIDの予約が既にあれば何もせず false（再試行用）
	Append(ctx context.Context, b *Booking) (bool, error)
	// AppendStatus は状態変更を追記する（削除は行わない）
	AppendStatus(ctx context.Context, change StatusChange) error
	// GetByID はIDから予約を取得する（最新の状態を反映）
	GetByID(ctx context.Context, id string) (*Booking, error)
	// ListByShowtime は上映回の予約一覧を取得する
	ListByShowtime(ctx context.Context, showtimeID string) ([]*Booking, error)
	// ListByUser はユーザーの予約一覧を新しい順に取得する
	ListByUser(ctx context.Context, userID string, limit, offset int) ([]*Booking, error)
	// History は予約の状態変更履歴を古い順に取得する
	History(ctx context.Context, id string) ([]StatusChange, error)
}
