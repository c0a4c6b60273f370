package showtime

import "context"

// Repository は上映回カタログのインターフェース
type Repository interface {
	// Create は新しい上映回を作成する
	Create(ctx context.Context, s *Showtime) error
	// GetByID はIDから上映回を取得する
	GetByID(ctx context.Context, id string) (*Showtime, error)
	// List は上映回一覧を取得する（movieID が空なら全件）
	List(ctx context.Context, movieID string, limit, offset int) ([]*Showtime, error)
	// Update は上映回を更新する
	Update(ctx context.Context, s *Showtime) error
}
