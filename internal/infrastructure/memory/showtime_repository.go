package memory

import (
	"context"
	"sort"
	"sync"

	"github.com/google/uuid"

	"github.com/sanosuguru/go-showtime-seat-reservation/internal/domain/showtime"
)

// ShowtimeRepository はプロセス内の上映回カタログ
type ShowtimeRepository struct {
	mu        sync.RWMutex
	showtimes map[string]showtime.Showtime
}

// NewShowtimeRepository は新しい ShowtimeRepository を作成する
func NewShowtimeRepository() *ShowtimeRepository {
	return &ShowtimeRepository{showtimes: make(map[string]showtime.Showtime)}
}

func (r *ShowtimeRepository) Create(ctx context.Context, s *showtime.Showtime) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if s.ID == "" {
		s.ID = uuid.NewString()
	}
	r.showtimes[s.ID] = *s
	return nil
}

func (r *ShowtimeRepository) GetByID(ctx context.Context, id string) (*showtime.Showtime, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	s, ok := r.showtimes[id]
	if !ok {
		return nil, showtime.ErrShowtimeNotFound
	}
	return &s, nil
}

// List は開始時刻順に返す
func (r *ShowtimeRepository) List(ctx context.Context, movieID string, limit, offset int) ([]*showtime.Showtime, error) {
	r.mu.RLock()
	all := make([]*showtime.Showtime, 0, len(r.showtimes))
	for _, s := range r.showtimes {
		if movieID != "" && s.MovieID != movieID {
			continue
		}
		s := s
		all = append(all, &s)
	}
	r.mu.RUnlock()

	sort.Slice(all, func(i, j int) bool {
		if all[i].StartAt.Equal(all[j].StartAt) {
			return all[i].ID < all[j].ID
		}
		return all[i].StartAt.Before(all[j].StartAt)
	})
	if offset >= len(all) {
		return []*showtime.Showtime{}, nil
	}
	all = all[offset:]
	if limit > 0 && limit < len(all) {
		all = all[:limit]
	}
	return all, nil
}

func (r *ShowtimeRepository) Update(ctx context.Context, s *showtime.Showtime) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.showtimes[s.ID]; !ok {
		return showtime.ErrShowtimeNotFound
	}
	r.showtimes[s.ID] = *s
	return nil
}

var _ showtime.Repository = (*ShowtimeRepository)(nil)
