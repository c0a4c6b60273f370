package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"

	"github.com/sanosuguru/go-showtime-seat-reservation/internal/domain/booking"
)

type bookingRow struct {
	ID             string         `db:"id"`
	ShowtimeID     string         `db:"showtime_id"`
	HoldID         string         `db:"hold_id"`
	SessionID      string         `db:"session_id"`
	UserID         string         `db:"user_id"`
	SeatIDs        pq.StringArray `db:"seat_ids"`
	Lines          []byte         `db:"lines"`
	Subtotal       int            `db:"subtotal"`
	ConvenienceFee int            `db:"convenience_fee"`
	GST            int            `db:"gst"`
	Total          int            `db:"total"`
	PaymentRef     string         `db:"payment_ref"`
	PaymentMethod  string         `db:"payment_method"`
	Status         string         `db:"status"`
	CreatedAt      time.Time      `db:"created_at"`
	UpdatedAt      time.Time      `db:"updated_at"`
}

func (r *bookingRow) toEntity() (*booking.Booking, error) {
	lines, err := decodeLines(r.Lines)
	if err != nil {
		return nil, fmt.Errorf("明細の復元に失敗: %w", err)
	}
	return &booking.Booking{
		ID: r.ID, ShowtimeID: r.ShowtimeID, HoldID: r.HoldID,
		SessionID: r.SessionID, UserID: r.UserID,
		SeatIDs: []string(r.SeatIDs), Lines: lines,
		Charges: booking.Charges{
			Subtotal: r.Subtotal, ConvenienceFee: r.ConvenienceFee, GST: r.GST, Total: r.Total,
		},
		PaymentRef: r.PaymentRef, PaymentMethod: r.PaymentMethod,
		Status:    booking.Status(r.Status),
		CreatedAt: r.CreatedAt, UpdatedAt: r.UpdatedAt,
	}, nil
}

type statusChangeRow struct {
	BookingID string    `db:"booking_id"`
	Status    string    `db:"status"`
	Reason    string    `db:"reason"`
	ChangedAt time.Time `db:"changed_at"`
}

const bookingColumns = `id, showtime_id, hold_id, session_id, user_id, seat_ids, lines, subtotal, convenience_fee, gst, total, payment_ref, payment_method, status, created_at, updated_at`

// Ledger は追記専用予約台帳のPostgreSQL実装
type Ledger struct {
	db *sqlx.DB
}

func NewLedger(db *sqlx.DB) *Ledger {
	return &Ledger{db: db}
}

func insertStatusChange(ctx context.Context, tx *sqlx.Tx, change booking.StatusChange) error {
	_, err := tx.ExecContext(ctx,
		`INSERT INTO booking_status_changes (booking_id, status, reason, changed_at) VALUES ($1, $2, $3, $4)`,
		change.BookingID, string(change.Status), change.Reason, change.At)
	return err
}

// Append は予約を追記する。既に同じIDがあれば何もしない
func (l *Ledger) Append(ctx context.Context, b *booking.Booking) (bool, error) {
	if err := b.Validate(); err != nil {
		return false, err
	}
	lines, err := encodeLines(b.Lines)
	if err != nil {
		return false, booking.LedgerError("append", err)
	}
	var created bool
	err = runInTx(ctx, l.db, func(tx *sqlx.Tx) error {
		result, err := tx.ExecContext(ctx, `
			INSERT INTO bookings (`+bookingColumns+`)
			VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16)
			ON CONFLICT (id) DO NOTHING`,
			b.ID, b.ShowtimeID, b.HoldID, b.SessionID, b.UserID, pq.Array(b.SeatIDs), string(lines),
			b.Charges.Subtotal, b.Charges.ConvenienceFee, b.Charges.GST, b.Charges.Total,
			b.PaymentRef, b.PaymentMethod, string(b.Status), b.CreatedAt, b.UpdatedAt)
		if err != nil {
			return err
		}
		inserted, err := result.RowsAffected()
		if err != nil {
			return err
		}
		if inserted == 0 {
			return nil
		}
		created = true
		return insertStatusChange(ctx, tx, booking.StatusChange{BookingID: b.ID, Status: b.Status, At: b.CreatedAt})
	})
	if err != nil {
		return false, booking.LedgerError("append", err)
	}
	return created, nil
}

// AppendStatus は状態変更を追記する
func (l *Ledger) AppendStatus(ctx context.Context, change booking.StatusChange) error {
	err := runInTx(ctx, l.db, func(tx *sqlx.Tx) error {
		result, err := tx.ExecContext(ctx,
			`UPDATE bookings SET status = $1, updated_at = $2 WHERE id = $3`,
			string(change.Status), change.At, change.BookingID)
		if err != nil {
			return err
		}
		rows, err := result.RowsAffected()
		if err != nil {
			return err
		}
		if rows == 0 {
			return booking.ErrBookingNotFound
		}
		return insertStatusChange(ctx, tx, change)
	})
	if errors.Is(err, booking.ErrBookingNotFound) {
		return err
	}
	if err != nil {
		return booking.LedgerError("append status", err)
	}
	return nil
}

// GetByID はIDから予約を取得する
func (l *Ledger) GetByID(ctx context.Context, id string) (*booking.Booking, error) {
	var row bookingRow
	if err := l.db.GetContext(ctx, &row, `SELECT `+bookingColumns+` FROM bookings WHERE id = $1`, id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, booking.ErrBookingNotFound
		}
		return nil, booking.LedgerError("get booking", err)
	}
	return row.toEntity()
}

func (l *Ledger) selectBookings(ctx context.Context, op, query string, args ...any) ([]*booking.Booking, error) {
	var rows []bookingRow
	if err := l.db.SelectContext(ctx, &rows, query, args...); err != nil {
		return nil, booking.LedgerError(op, err)
	}
	result := make([]*booking.Booking, len(rows))
	for i := range rows {
		b, err := rows[i].toEntity()
		if err != nil {
			return nil, booking.LedgerError(op, err)
		}
		result[i] = b
	}
	return result, nil
}

// ListByShowtime は上映回の予約を追記順に返す
func (l *Ledger) ListByShowtime(ctx context.Context, showtimeID string) ([]*booking.Booking, error) {
	return l.selectBookings(ctx, "list by showtime",
		`SELECT `+bookingColumns+` FROM bookings WHERE showtime_id = $1 ORDER BY created_at, id`, showtimeID)
}

// ListByUser はユーザーの予約を新しい順に返す
func (l *Ledger) ListByUser(ctx context.Context, userID string, limit, offset int) ([]*booking.Booking, error) {
	return l.selectBookings(ctx, "list by user",
		`SELECT `+bookingColumns+` FROM bookings WHERE user_id = $1 ORDER BY created_at DESC, id DESC LIMIT $2 OFFSET $3`,
		userID, limit, offset)
}

// History は状態変更履歴を古い順に返す
func (l *Ledger) History(ctx context.Context, id string) ([]booking.StatusChange, error) {
	var rows []statusChangeRow
	err := l.db.SelectContext(ctx, &rows,
		`SELECT booking_id, status, reason, changed_at FROM booking_status_changes WHERE booking_id = $1 ORDER BY id`, id)
	if err != nil {
		return nil, booking.LedgerError("history", err)
	}
	if len(rows) == 0 {
		return nil, booking.ErrBookingNotFound
	}
	changes := make([]booking.StatusChange, len(rows))
	for i, r := range rows {
		changes[i] = booking.StatusChange{
			BookingID: r.BookingID, Status: booking.Status(r.Status), Reason: r.Reason, At: r.ChangedAt,
		}
	}
	return changes, nil
}

var _ booking.Ledger = (*Ledger)(nil)
