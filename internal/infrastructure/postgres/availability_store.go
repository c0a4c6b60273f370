package postgres

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"

	"github.com/sanosuguru/go-showtime-seat-reservation/internal/domain/hold"
	"github.com/sanosuguru/go-showtime-seat-reservation/internal/domain/seat"
	"github.com/sanosuguru/go-showtime-seat-reservation/internal/pkg/clock"
)

type lineRow struct {
	SeatID   string `json:"seat_id"`
	Category string `json:"category"`
	Price    int    `json:"price"`
}

func encodeLines(lines []hold.Line) ([]byte, error) {
	rows := make([]lineRow, len(lines))
	for i, l := range lines {
		rows[i] = lineRow{SeatID: l.SeatID, Category: string(l.Category), Price: l.Price}
	}
	return json.Marshal(rows)
}

func decodeLines(raw []byte) ([]hold.Line, error) {
	var rows []lineRow
	if err := json.Unmarshal(raw, &rows); err != nil {
		return nil, err
	}
	lines := make([]hold.Line, len(rows))
	for i, r := range rows {
		lines[i] = hold.Line{SeatID: r.SeatID, Category: seat.Category(r.Category), Price: r.Price}
	}
	return lines, nil
}

type holdRow struct {
	ID             string         `db:"id"`
	ShowtimeID     string         `db:"showtime_id"`
	SessionID      string         `db:"session_id"`
	SeatIDs        pq.StringArray `db:"seat_ids"`
	Lines          []byte         `db:"lines"`
	Subtotal       int            `db:"subtotal"`
	BookingID      string         `db:"booking_id"`
	IdempotencyKey string         `db:"idempotency_key"`
	State          string         `db:"state"`
	ExpiresAt      time.Time      `db:"expires_at"`
	CreatedAt      time.Time      `db:"created_at"`
	UpdatedAt      time.Time      `db:"updated_at"`
}

func (r *holdRow) toEntity() (*hold.Hold, error) {
	lines, err := decodeLines(r.Lines)
	if err != nil {
		return nil, fmt.Errorf("明細の復元に失敗: %w", err)
	}
	return &hold.Hold{
		ID: r.ID, ShowtimeID: r.ShowtimeID, SessionID: r.SessionID,
		SeatIDs: []string(r.SeatIDs), Lines: lines, Subtotal: r.Subtotal,
		BookingID: r.BookingID, IdempotencyKey: r.IdempotencyKey,
		State: hold.State(r.State), ExpiresAt: r.ExpiresAt,
		CreatedAt: r.CreatedAt, UpdatedAt: r.UpdatedAt,
	}, nil
}

type seatStatusRow struct {
	SeatID    string     `db:"seat_id"`
	Kind      string     `db:"kind"`
	HoldID    *string    `db:"hold_id"`
	Holder    *string    `db:"holder"`
	ExpiresAt *time.Time `db:"expires_at"`
	BookingID *string    `db:"booking_id"`
}

func (r *seatStatusRow) toStatus() hold.SeatStatus {
	deref := func(s *string) string {
		if s == nil {
			return ""
		}
		return *s
	}
	if hold.Kind(r.Kind) == hold.KindSold {
		return hold.Sold(deref(r.BookingID))
	}
	var exp time.Time
	if r.ExpiresAt != nil {
		exp = *r.ExpiresAt
	}
	return hold.Held(deref(r.HoldID), deref(r.Holder), exp)
}

const holdColumns = `id, showtime_id, session_id, seat_ids, lines, subtotal, booking_id, idempotency_key, state, expires_at, created_at, updated_at`

// AvailabilityStore は座席在庫ストアのPostgreSQL実装
// 変更操作は上映回ごとのアドバイザリロック下のトランザクションで行う
type AvailabilityStore struct {
	db    *sqlx.DB
	clock clock.Clock
	newID func() string
}

func NewAvailabilityStore(db *sqlx.DB, clk clock.Clock) *AvailabilityStore {
	if clk == nil {
		clk = clock.System{}
	}
	return &AvailabilityStore{db: db, clock: clk, newID: uuid.NewString}
}

// storeErr はドメインエラー以外を ErrStoreUnavailable でラップする
func storeErr(op string, err error) error {
	if err == nil {
		return nil
	}
	for _, domainErr := range []error{
		hold.ErrSeatUnavailable, hold.ErrHoldExpired, hold.ErrHoldInvalidated,
		hold.ErrHoldNotFound, hold.ErrStoreUnavailable,
	} {
		if errors.Is(err, domainErr) {
			return err
		}
	}
	return hold.StoreError(op, err)
}

func (s *AvailabilityStore) showtimeOf(ctx context.Context, holdID string) (string, error) {
	var showtimeID string
	err := s.db.GetContext(ctx, &showtimeID, `SELECT showtime_id FROM holds WHERE id = $1`, holdID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return "", hold.ErrHoldNotFound
		}
		return "", err
	}
	return showtimeID, nil
}

func getHold(ctx context.Context, q sqlx.QueryerContext, query string, args ...any) (*hold.Hold, error) {
	var row holdRow
	if err := sqlx.GetContext(ctx, q, &row, query, args...); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, hold.ErrHoldNotFound
		}
		return nil, err
	}
	return row.toEntity()
}

// withHold は保留の上映回をロックし、ロック下で読み直した保留を fn に渡す
func (s *AvailabilityStore) withHold(ctx context.Context, holdID string, fn func(tx *sqlx.Tx, h *hold.Hold, now time.Time) error) error {
	showtimeID, err := s.showtimeOf(ctx, holdID)
	if err != nil {
		return err
	}
	return runInTx(ctx, s.db, func(tx *sqlx.Tx) error {
		if err := lockShowtime(ctx, tx, showtimeID); err != nil {
			return err
		}
		h, err := getHold(ctx, tx, `SELECT `+holdColumns+` FROM holds WHERE id = $1 FOR UPDATE`, holdID)
		if err != nil {
			return err
		}
		return fn(tx, h, s.clock.Now())
	})
}

// TryHold はすべての座席が空いている場合のみ一括で保留する
func (s *AvailabilityStore) TryHold(ctx context.Context, req hold.Request) (*hold.Hold, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}
	var result *hold.Hold
	err := runInTx(ctx, s.db, func(tx *sqlx.Tx) error {
		if err := lockShowtime(ctx, tx, req.ShowtimeID); err != nil {
			return err
		}
		now := s.clock.Now()

		if req.IdempotencyKey != "" {
			existing, err := getHold(ctx, tx,
				`SELECT `+holdColumns+` FROM holds
				 WHERE showtime_id = $1 AND session_id = $2 AND idempotency_key = $3 AND state = 'active'
				 ORDER BY created_at DESC LIMIT 1`,
				req.ShowtimeID, req.SessionID, req.IdempotencyKey)
			if err != nil && !errors.Is(err, hold.ErrHoldNotFound) {
				return err
			}
			if existing != nil && existing.IsActive(now) {
				result = existing
				return nil
			}
		}

		statuses, err := selectStatuses(ctx, tx, req.ShowtimeID, req.SeatIDs)
		if err != nil {
			return err
		}
		// 全座席を確認してから書き込む
		for _, seatID := range req.SeatIDs {
			if st, ok := statuses[seatID]; ok && !st.IsOpenAt(now) {
				return hold.Unavailable(seatID)
			}
		}

		h := hold.NewHold(s.newID(), req, now)
		lines, err := encodeLines(h.Lines)
		if err != nil {
			return err
		}
		_, err = tx.ExecContext(ctx,
			`INSERT INTO holds (`+holdColumns+`) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)`,
			h.ID, h.ShowtimeID, h.SessionID, pq.Array(h.SeatIDs), string(lines), h.Subtotal, h.BookingID,
			h.IdempotencyKey, string(h.State), h.ExpiresAt, h.CreatedAt, h.UpdatedAt)
		if err != nil {
			return fmt.Errorf("保留作成に失敗: %w", err)
		}
		for _, seatID := range h.SeatIDs {
			_, err := tx.ExecContext(ctx, `
				INSERT INTO seat_statuses (showtime_id, seat_id, kind, hold_id, holder, expires_at, booking_id)
				VALUES ($1, $2, 'held', $3, $4, $5, NULL)
				ON CONFLICT (showtime_id, seat_id)
				DO UPDATE SET kind = 'held', hold_id = EXCLUDED.hold_id, holder = EXCLUDED.holder,
				              expires_at = EXCLUDED.expires_at, booking_id = NULL`,
				h.ShowtimeID, seatID, h.ID, h.SessionID, h.ExpiresAt)
			if err != nil {
				return fmt.Errorf("座席状態の更新に失敗: %w", err)
			}
		}
		result = h
		return nil
	})
	if err != nil {
		return nil, storeErr("try hold", err)
	}
	return result, nil
}

func selectStatuses(ctx context.Context, q sqlx.QueryerContext, showtimeID string, seatIDs []string) (map[string]hold.SeatStatus, error) {
	query := `SELECT seat_id, kind, hold_id, holder, expires_at, booking_id FROM seat_statuses WHERE showtime_id = $1`
	args := []any{showtimeID}
	if seatIDs != nil {
		query += ` AND seat_id = ANY($2)`
		args = append(args, pq.Array(seatIDs))
	}
	var rows []seatStatusRow
	if err := sqlx.SelectContext(ctx, q, &rows, query, args...); err != nil {
		return nil, fmt.Errorf("座席状態取得に失敗: %w", err)
	}
	out := make(map[string]hold.SeatStatus, len(rows))
	for i := range rows {
		out[rows[i].SeatID] = rows[i].toStatus()
	}
	return out, nil
}

// release は保留を解放済みにし、まだこの保留のままの座席を空席に戻す
func release(ctx context.Context, tx *sqlx.Tx, h *hold.Hold, now time.Time) error {
	_, err := tx.ExecContext(ctx,
		`DELETE FROM seat_statuses WHERE showtime_id = $1 AND seat_id = ANY($2) AND kind = 'held' AND hold_id = $3`,
		h.ShowtimeID, pq.Array(h.SeatIDs), h.ID)
	if err != nil {
		return fmt.Errorf("座席解放に失敗: %w", err)
	}
	if _, err := tx.ExecContext(ctx, `UPDATE holds SET state = 'released', updated_at = $1 WHERE id = $2`, now, h.ID); err != nil {
		return fmt.Errorf("保留更新に失敗: %w", err)
	}
	h.State = hold.StateReleased
	h.UpdatedAt = now
	return nil
}

// ReleaseHold は有効な保留を解放する
func (s *AvailabilityStore) ReleaseHold(ctx context.Context, holdID string) (bool, error) {
	var wasValid bool
	err := s.withHold(ctx, holdID, func(tx *sqlx.Tx, h *hold.Hold, now time.Time) error {
		if h.State != hold.StateActive {
			return nil
		}
		wasValid = !h.IsExpired(now)
		return release(ctx, tx, h, now)
	})
	if err != nil {
		return false, storeErr("release hold", err)
	}
	return wasValid, nil
}

// CommitHold は期限内の保留を販売済みにする
func (s *AvailabilityStore) CommitHold(ctx context.Context, holdID, bookingID string) (*hold.Hold, error) {
	var result *hold.Hold
	err := s.withHold(ctx, holdID, func(tx *sqlx.Tx, h *hold.Hold, now time.Time) error {
		already, err := h.CheckCommittable(bookingID, now)
		if err != nil {
			return err
		}
		if already {
			result = h
			return nil
		}

		var held int
		err = tx.GetContext(ctx, &held,
			`SELECT COUNT(*) FROM seat_statuses WHERE showtime_id = $1 AND seat_id = ANY($2) AND kind = 'held' AND hold_id = $3`,
			h.ShowtimeID, pq.Array(h.SeatIDs), h.ID)
		if err != nil {
			return fmt.Errorf("座席状態確認に失敗: %w", err)
		}
		if held != len(h.SeatIDs) {
			return hold.ErrHoldInvalidated
		}

		_, err = tx.ExecContext(ctx, `
			UPDATE seat_statuses
			SET kind = 'sold', booking_id = $1, hold_id = NULL, holder = NULL, expires_at = NULL
			WHERE showtime_id = $2 AND seat_id = ANY($3)`,
			bookingID, h.ShowtimeID, pq.Array(h.SeatIDs))
		if err != nil {
			return fmt.Errorf("座席確定に失敗: %w", err)
		}
		if _, err := tx.ExecContext(ctx, `UPDATE holds SET state = 'committed', updated_at = $1 WHERE id = $2`, now, h.ID); err != nil {
			return fmt.Errorf("保留更新に失敗: %w", err)
		}
		h.State = hold.StateCommitted
		h.UpdatedAt = now
		result = h
		return nil
	})
	if err != nil {
		return nil, storeErr("commit hold", err)
	}
	return result, nil
}

// RenewHold は有効な保留の期限を延長する
func (s *AvailabilityStore) RenewHold(ctx context.Context, holdID string, ttl time.Duration) (*hold.Hold, error) {
	if ttl <= 0 {
		return nil, hold.ErrInvalidTTL
	}
	var result *hold.Hold
	err := s.withHold(ctx, holdID, func(tx *sqlx.Tx, h *hold.Hold, now time.Time) error {
		if err := h.CheckRenewable(now); err != nil {
			return err
		}
		h.ExpiresAt = now.Add(ttl)
		h.UpdatedAt = now
		if _, err := tx.ExecContext(ctx, `UPDATE holds SET expires_at = $1, updated_at = $2 WHERE id = $3`, h.ExpiresAt, now, h.ID); err != nil {
			return fmt.Errorf("保留延長に失敗: %w", err)
		}
		_, err := tx.ExecContext(ctx,
			`UPDATE seat_statuses SET expires_at = $1 WHERE showtime_id = $2 AND kind = 'held' AND hold_id = $3`,
			h.ExpiresAt, h.ShowtimeID, h.ID)
		if err != nil {
			return fmt.Errorf("座席状態の延長に失敗: %w", err)
		}
		result = h
		return nil
	})
	if err != nil {
		return nil, storeErr("renew hold", err)
	}
	return result, nil
}

// GetHold は保留を取得する
func (s *AvailabilityStore) GetHold(ctx context.Context, holdID string) (*hold.Hold, error) {
	h, err := getHold(ctx, s.db, `SELECT `+holdColumns+` FROM holds WHERE id = $1`, holdID)
	if err != nil {
		return nil, storeErr("get hold", err)
	}
	return h, nil
}

// Statuses は Open 以外の実効座席状態を返す
func (s *AvailabilityStore) Statuses(ctx context.Context, showtimeID string) (map[string]hold.SeatStatus, error) {
	all, err := selectStatuses(ctx, s.db, showtimeID, nil)
	if err != nil {
		return nil, storeErr("statuses", err)
	}
	now := s.clock.Now()
	out := make(map[string]hold.SeatStatus, len(all))
	for seatID, status := range all {
		if eff := status.At(now); eff.Kind != hold.KindOpen {
			out[seatID] = eff
		}
	}
	return out, nil
}

// SweepExpired は期限切れの保留を上映回ごとに解放する
func (s *AvailabilityStore) SweepExpired(ctx context.Context) ([]*hold.Hold, error) {
	var showtimeIDs []string
	err := s.db.SelectContext(ctx, &showtimeIDs,
		`SELECT DISTINCT showtime_id FROM holds WHERE state = 'active' AND expires_at <= $1`, s.clock.Now())
	if err != nil {
		return nil, storeErr("sweep expired", err)
	}

	var swept []*hold.Hold
	for _, showtimeID := range showtimeIDs {
		var released []*hold.Hold
		err := runInTx(ctx, s.db, func(tx *sqlx.Tx) error {
			if err := lockShowtime(ctx, tx, showtimeID); err != nil {
				return err
			}
			now := s.clock.Now()
			var rows []holdRow
			err := tx.SelectContext(ctx, &rows,
				`SELECT `+holdColumns+` FROM holds WHERE showtime_id = $1 AND state = 'active' AND expires_at <= $2 FOR UPDATE`,
				showtimeID, now)
			if err != nil {
				return err
			}
			for i := range rows {
				h, err := rows[i].toEntity()
				if err != nil {
					return err
				}
				if err := release(ctx, tx, h, now); err != nil {
					return err
				}
				released = append(released, h)
			}
			return nil
		})
		if err != nil {
			return swept, storeErr("sweep expired", err)
		}
		swept = append(swept, released...)
	}
	return swept, nil
}

var _ hold.Store = (*AvailabilityStore)(nil)
