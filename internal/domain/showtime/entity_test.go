package showtime

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewShowtime(t *testing.T) {
	startAt := time.Now().Add(24 * time.Hour)

	s := NewShowtime("movie-1", "theater-1", startAt, 250, 106)

	assert.Equal(t, "movie-1", s.MovieID)
	assert.Equal(t, "theater-1", s.TheaterID)
	assert.Equal(t, startAt, s.StartAt)
	assert.Equal(t, 250, s.BasePrice)
	assert.Equal(t, 106, s.TotalSeats)
	assert.NotZero(t, s.CreatedAt)
	assert.NotZero(t, s.UpdatedAt)
}

func TestShowtime_Validate(t *testing.T) {
	valid := func() *Showtime {
		return &Showtime{MovieID: "movie-1", TheaterID: "theater-1", StartAt: time.Now(), BasePrice: 250, TotalSeats: 10}
	}
	tests := []struct {
		name        string
		modify      func(s *Showtime)
		expectedErr error
	}{
		{"有効な上映回", func(s *Showtime) {}, nil},
		{"映画IDが空", func(s *Showtime) { s.MovieID = "" }, ErrMovieIDRequired},
		{"劇場IDが空", func(s *Showtime) { s.TheaterID = "" }, ErrTheaterIDRequired},
		{"開始時刻が未設定", func(s *Showtime) { s.StartAt = time.Time{} }, ErrStartTimeRequired},
		{"基本料金が負", func(s *Showtime) { s.BasePrice = -1 }, ErrInvalidBasePrice},
		{"基本料金が0は有効", func(s *Showtime) { s.BasePrice = 0 }, nil},
		{"座席数が0", func(s *Showtime) { s.TotalSeats = 0 }, ErrInvalidTotalSeats},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := valid()
			tt.modify(s)
			err := s.Validate()
			if tt.expectedErr != nil {
				require.Error(t, err)
				assert.ErrorIs(t, err, tt.expectedErr)
			} else {
				require.NoError(t, err)
			}
		})
	}
}

func TestShowtime_ChangeBasePrice(t *testing.T) {
	s := NewShowtime("movie-1", "theater-1", time.Now(), 250, 10)

	require.NoError(t, s.ChangeBasePrice(300))
	assert.Equal(t, 300, s.BasePrice)

	assert.ErrorIs(t, s.ChangeBasePrice(-5), ErrInvalidBasePrice)
	assert.Equal(t, 300, s.BasePrice)
}
