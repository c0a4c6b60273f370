package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"

	"github.com/sanosuguru/go-showtime-seat-reservation/internal/domain/showtime"
)

type showtimeRow struct {
	ID         string    `db:"id"`
	MovieID    string    `db:"movie_id"`
	TheaterID  string    `db:"theater_id"`
	StartAt    time.Time `db:"start_at"`
	BasePrice  int       `db:"base_price"`
	TotalSeats int       `db:"total_seats"`
	CreatedAt  time.Time `db:"created_at"`
	UpdatedAt  time.Time `db:"updated_at"`
}

func (r *showtimeRow) toEntity() *showtime.Showtime {
	return &showtime.Showtime{
		ID: r.ID, MovieID: r.MovieID, TheaterID: r.TheaterID,
		StartAt: r.StartAt, BasePrice: r.BasePrice, TotalSeats: r.TotalSeats,
		CreatedAt: r.CreatedAt, UpdatedAt: r.UpdatedAt,
	}
}

const showtimeColumns = `id, movie_id, theater_id, start_at, base_price, total_seats, created_at, updated_at`

// ShowtimeRepository は上映回リポジトリのPostgreSQL実装
type ShowtimeRepository struct {
	db *sqlx.DB
}

func NewShowtimeRepository(db *sqlx.DB) *ShowtimeRepository {
	return &ShowtimeRepository{db: db}
}

// Create は上映回を作成する
func (r *ShowtimeRepository) Create(ctx context.Context, s *showtime.Showtime) error {
	query := `
		INSERT INTO showtimes (movie_id, theater_id, start_at, base_price, total_seats, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		RETURNING id
	`
	err := r.db.QueryRowContext(ctx, query,
		s.MovieID, s.TheaterID, s.StartAt, s.BasePrice, s.TotalSeats, s.CreatedAt, s.UpdatedAt,
	).Scan(&s.ID)
	if err != nil {
		return fmt.Errorf("上映回作成に失敗しました: %w", err)
	}
	return nil
}

// GetByID はIDから上映回を取得する
func (r *ShowtimeRepository) GetByID(ctx context.Context, id string) (*showtime.Showtime, error) {
	var row showtimeRow
	err := r.db.GetContext(ctx, &row, `SELECT `+showtimeColumns+` FROM showtimes WHERE id::text = $1`, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, showtime.ErrShowtimeNotFound
		}
		return nil, fmt.Errorf("上映回取得に失敗しました: %w", err)
	}
	return row.toEntity(), nil
}

// List は上映回を開始時刻順に取得する。movieID が空なら全件対象
func (r *ShowtimeRepository) List(ctx context.Context, movieID string, limit, offset int) ([]*showtime.Showtime, error) {
	query := `
		SELECT ` + showtimeColumns + `
		FROM showtimes
		WHERE ($1 = '' OR movie_id = $1)
		ORDER BY start_at, id
		LIMIT $2 OFFSET $3
	`
	var rows []showtimeRow
	if err := r.db.SelectContext(ctx, &rows, query, movieID, limit, offset); err != nil {
		return nil, fmt.Errorf("上映回一覧取得に失敗しました: %w", err)
	}
	result := make([]*showtime.Showtime, len(rows))
	for i := range rows {
		result[i] = rows[i].toEntity()
	}
	return result, nil
}

// Update は上映回を更新する
func (r *ShowtimeRepository) Update(ctx context.Context, s *showtime.Showtime) error {
	query := `
		UPDATE showtimes
		SET movie_id = $1, theater_id = $2, start_at = $3, base_price = $4, total_seats = $5, updated_at = $6
		WHERE id::text = $7
	`
	result, err := r.db.ExecContext(ctx, query,
		s.MovieID, s.TheaterID, s.StartAt, s.BasePrice, s.TotalSeats, s.UpdatedAt, s.ID,
	)
	if err != nil {
		return fmt.Errorf("上映回更新に失敗しました: %w", err)
	}
	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("更新結果の確認に失敗しました: %w", err)
	}
	if rowsAffected == 0 {
		return showtime.ErrShowtimeNotFound
	}
	return nil
}

var _ showtime.Repository = (*ShowtimeRepository)(nil)
