package memory

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/sanosuguru/go-showtime-seat-reservation/internal/domain/hold"
	"github.com/sanosuguru/go-showtime-seat-reservation/internal/pkg/clock"
)

// DefaultRetention は確定・解放後の保留を残す既定の期間
const DefaultRetention = 24 * time.Hour

// retired は確定・解放された時刻つきの保留ID
type retired struct {
	holdID string
	at     time.Time
}

// showtimeSeats は1上映回分の座席状態と保留
// mu で上映回単位の変更を直列化する
type showtimeSeats struct {
	mu       sync.Mutex
	statuses map[string]hold.SeatStatus
	holds    map[string]*hold.Hold
	active   map[string]struct{} // スイープ対象の有効な保留
	retired  []retired           // 終了した保留（古い順）
	byKey    map[string]string   // session + idempotency key -> hold id
}

func newShowtimeSeats() *showtimeSeats {
	return &showtimeSeats{
		statuses: make(map[string]hold.SeatStatus),
		holds:    make(map[string]*hold.Hold),
		active:   make(map[string]struct{}),
		byKey:    make(map[string]string),
	}
}

// AvailabilityStore はプロセス内の座席在庫ストア
type AvailabilityStore struct {
	clock     clock.Clock
	newID     func() string
	retention time.Duration

	mu        sync.Mutex
	showtimes map[string]*showtimeSeats
	holdIndex map[string]string // hold id -> showtime id
}

// NewAvailabilityStore は新しい AvailabilityStore を作成する
func NewAvailabilityStore(clk clock.Clock) *AvailabilityStore {
	if clk == nil {
		clk = clock.System{}
	}
	return &AvailabilityStore{
		clock:     clk,
		newID:     uuid.NewString,
		retention: DefaultRetention,
		showtimes: make(map[string]*showtimeSeats),
		holdIndex: make(map[string]string),
	}
}

// WithRetention は終了した保留を残す期間を設定する
// 期間を過ぎた保留はスイープ時に破棄され、以降は ErrHoldNotFound になる
func (s *AvailabilityStore) WithRetention(d time.Duration) *AvailabilityStore {
	if d > 0 {
		s.retention = d
	}
	return s
}

func (s *AvailabilityStore) showtime(showtimeID string) *showtimeSeats {
	s.mu.Lock()
	defer s.mu.Unlock()
	st, ok := s.showtimes[showtimeID]
	if !ok {
		st = newShowtimeSeats()
		s.showtimes[showtimeID] = st
	}
	return st
}

func (s *AvailabilityStore) showtimeOf(holdID string) (*showtimeSeats, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	showtimeID, ok := s.holdIndex[holdID]
	if !ok {
		return nil, false
	}
	return s.showtimes[showtimeID], true
}

// lookup は保留と上映回をロック済みで返す。呼び出し側で st.mu.Unlock すること
// 破棄済みの保留は見つからない扱い
func (s *AvailabilityStore) lookup(holdID string) (*showtimeSeats, *hold.Hold, error) {
	st, ok := s.showtimeOf(holdID)
	if !ok {
		return nil, nil, hold.ErrHoldNotFound
	}
	st.mu.Lock()
	h, ok := st.holds[holdID]
	if !ok {
		st.mu.Unlock()
		return nil, nil, hold.ErrHoldNotFound
	}
	return st, h, nil
}

func idempotencyKey(sessionID, key string) string {
	return sessionID + "\x00" + key
}

// TryHold はすべての座席が空いている場合のみ一括で保留する
func (s *AvailabilityStore) TryHold(ctx context.Context, req hold.Request) (*hold.Hold, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}
	if err := ctx.Err(); err != nil {
		return nil, hold.StoreError("try hold", err)
	}

	st := s.showtime(req.ShowtimeID)
	st.mu.Lock()
	defer st.mu.Unlock()

	now := s.clock.Now()

	if req.IdempotencyKey != "" {
		if id, ok := st.byKey[idempotencyKey(req.SessionID, req.IdempotencyKey)]; ok {
			if h := st.holds[id]; h != nil && h.IsActive(now) {
				return h.Clone(), nil
			}
		}
	}

	// 全座席を確認してから書き込む（部分的な保留を残さない）
	for _, seatID := range req.SeatIDs {
		if cur, ok := st.statuses[seatID]; ok && !cur.IsOpenAt(now) {
			return nil, hold.Unavailable(seatID)
		}
	}

	h := hold.NewHold(s.newID(), req, now)
	for _, seatID := range h.SeatIDs {
		st.statuses[seatID] = hold.Held(h.ID, h.SessionID, h.ExpiresAt)
	}
	st.holds[h.ID] = h
	st.active[h.ID] = struct{}{}
	if req.IdempotencyKey != "" {
		st.byKey[idempotencyKey(req.SessionID, req.IdempotencyKey)] = h.ID
	}

	s.mu.Lock()
	s.holdIndex[h.ID] = req.ShowtimeID
	s.mu.Unlock()

	return h.Clone(), nil
}

// ReleaseHold は有効な保留を解放する
// 期限切れの保留は掃除するが、解放したことにはならない
func (s *AvailabilityStore) ReleaseHold(ctx context.Context, holdID string) (bool, error) {
	if err := ctx.Err(); err != nil {
		return false, hold.StoreError("release hold", err)
	}
	st, h, err := s.lookup(holdID)
	if err != nil {
		return false, err
	}
	defer st.mu.Unlock()

	if h.State != hold.StateActive {
		return false, nil
	}
	now := s.clock.Now()
	wasValid := !h.IsExpired(now)
	st.release(h, now)
	return wasValid, nil
}

// release は保留を解放済みにし、まだこの保留のままの座席を空席に戻す
func (st *showtimeSeats) release(h *hold.Hold, now time.Time) {
	for _, seatID := range h.SeatIDs {
		if st.statuses[seatID].HeldBy(h.ID) {
			delete(st.statuses, seatID)
		}
	}
	h.State = hold.StateReleased
	h.UpdatedAt = now
	st.retire(h.ID, now)
}

// retire は保留をスイープ対象から外し、破棄待ちに積む
func (st *showtimeSeats) retire(holdID string, now time.Time) {
	delete(st.active, holdID)
	st.retired = append(st.retired, retired{holdID: holdID, at: now})
}

// prune は保持期間を過ぎた終了済みの保留を破棄し、破棄したIDを返す
func (st *showtimeSeats) prune(now time.Time, retention time.Duration) []string {
	var pruned []string
	n := 0
	for ; n < len(st.retired); n++ {
		r := st.retired[n]
		if now.Sub(r.at) < retention {
			break
		}
		if h, ok := st.holds[r.holdID]; ok {
			if h.IdempotencyKey != "" {
				key := idempotencyKey(h.SessionID, h.IdempotencyKey)
				if st.byKey[key] == h.ID {
					delete(st.byKey, key)
				}
			}
			delete(st.holds, r.holdID)
		}
		pruned = append(pruned, r.holdID)
	}
	st.retired = append(st.retired[:0:0], st.retired[n:]...)
	return pruned
}

// CommitHold は期限内の保留を販売済みにする
func (s *AvailabilityStore) CommitHold(ctx context.Context, holdID, bookingID string) (*hold.Hold, error) {
	if err := ctx.Err(); err != nil {
		return nil, hold.StoreError("commit hold", err)
	}
	st, h, err := s.lookup(holdID)
	if err != nil {
		return nil, err
	}
	defer st.mu.Unlock()

	now := s.clock.Now()
	already, err := h.CheckCommittable(bookingID, now)
	if err != nil {
		return nil, err
	}
	if already {
		return h.Clone(), nil
	}
	for _, seatID := range h.SeatIDs {
		if !st.statuses[seatID].HeldBy(h.ID) {
			return nil, hold.ErrHoldInvalidated
		}
	}

	for _, seatID := range h.SeatIDs {
		st.statuses[seatID] = hold.Sold(bookingID)
	}
	h.State = hold.StateCommitted
	h.UpdatedAt = now
	st.retire(h.ID, now)
	return h.Clone(), nil
}

// RenewHold は有効な保留の期限を延長する
func (s *AvailabilityStore) RenewHold(ctx context.Context, holdID string, ttl time.Duration) (*hold.Hold, error) {
	if ttl <= 0 {
		return nil, hold.ErrInvalidTTL
	}
	if err := ctx.Err(); err != nil {
		return nil, hold.StoreError("renew hold", err)
	}
	st, h, err := s.lookup(holdID)
	if err != nil {
		return nil, err
	}
	defer st.mu.Unlock()

	now := s.clock.Now()
	if err := h.CheckRenewable(now); err != nil {
		return nil, err
	}
	h.ExpiresAt = now.Add(ttl)
	h.UpdatedAt = now
	for _, seatID := range h.SeatIDs {
		st.statuses[seatID] = hold.Held(h.ID, h.SessionID, h.ExpiresAt)
	}
	return h.Clone(), nil
}

// GetHold は保留を取得する
func (s *AvailabilityStore) GetHold(ctx context.Context, holdID string) (*hold.Hold, error) {
	if err := ctx.Err(); err != nil {
		return nil, hold.StoreError("get hold", err)
	}
	st, h, err := s.lookup(holdID)
	if err != nil {
		return nil, err
	}
	defer st.mu.Unlock()
	return h.Clone(), nil
}

// Statuses は Open 以外の実効座席状態を返す
func (s *AvailabilityStore) Statuses(ctx context.Context, showtimeID string) (map[string]hold.SeatStatus, error) {
	if err := ctx.Err(); err != nil {
		return nil, hold.StoreError("statuses", err)
	}
	st := s.showtime(showtimeID)
	st.mu.Lock()
	defer st.mu.Unlock()

	now := s.clock.Now()
	out := make(map[string]hold.SeatStatus, len(st.statuses))
	for seatID, status := range st.statuses {
		if eff := status.At(now); eff.Kind != hold.KindOpen {
			out[seatID] = eff
		}
	}
	return out, nil
}

// SweepExpired は期限切れの保留をすべて解放する
// あわせて保持期間を過ぎた終了済みの保留を破棄する
func (s *AvailabilityStore) SweepExpired(ctx context.Context) ([]*hold.Hold, error) {
	s.mu.Lock()
	all := make([]*showtimeSeats, 0, len(s.showtimes))
	for _, st := range s.showtimes {
		all = append(all, st)
	}
	s.mu.Unlock()

	var swept []*hold.Hold
	for _, st := range all {
		if err := ctx.Err(); err != nil {
			return swept, hold.StoreError("sweep expired", err)
		}
		st.mu.Lock()
		now := s.clock.Now()
		for id := range st.active {
			h := st.holds[id]
			if h.IsExpired(now) {
				st.release(h, now)
				swept = append(swept, h.Clone())
			}
		}
		if pruned := st.prune(now, s.retention); len(pruned) > 0 {
			s.mu.Lock()
			for _, id := range pruned {
				delete(s.holdIndex, id)
			}
			s.mu.Unlock()
		}
		st.mu.Unlock()
	}
	return swept, nil
}

var _ hold.Store = (*AvailabilityStore)(nil)
