package booking

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sanosuguru/go-showtime-seat-reservation/internal/domain/hold"
	"github.com/sanosuguru/go-showtime-seat-reservation/internal/domain/seat"
)

func testHold() *hold.Hold {
	now := time.Date(2025, 3, 1, 18, 0, 0, 0, time.UTC)
	return hold.NewHold("hold-1", hold.Request{
		ShowtimeID: "show-1",
		SessionID:  "session-1",
		SeatIDs:    []string{"A1", "F1"},
		Lines: []hold.Line{
			{SeatID: "A1", Category: seat.CategoryRegular, Price: 250},
			{SeatID: "F1", Category: seat.CategoryPremium, Price: 350},
		},
		BookingID: "BMS1",
		TTL:       10 * time.Minute,
	}, now)
}

func TestNewFromHold(t *testing.T) {
	now := time.Now()
	b := NewFromHold(testHold(), "user-1", "pay-1", "card", now)

	require.NoError(t, b.Validate())
	assert.Equal(t, "BMS1", b.ID)
	assert.Equal(t, "show-1", b.ShowtimeID)
	assert.Equal(t, "hold-1", b.HoldID)
	assert.Equal(t, "user-1", b.UserID)
	assert.Equal(t, []string{"A1", "F1"}, b.SeatIDs)
	assert.Equal(t, StatusConfirmed, b.Status)
	assert.Equal(t, 600, b.Charges.Subtotal)
	assert.Equal(t, CalculateCharges(600), b.Charges)
}

func TestBooking_Validate(t *testing.T) {
	tests := []struct {
		name        string
		booking     *Booking
		expectedErr error
	}{
		{"有効な予約", &Booking{ID: "BMS1", ShowtimeID: "show-1", SeatIDs: []string{"A1"}}, nil},
		{"予約ID未指定", &Booking{ShowtimeID: "show-1", SeatIDs: []string{"A1"}}, ErrBookingIDRequired},
		{"上映回ID未指定", &Booking{ID: "BMS1", SeatIDs: []string{"A1"}}, ErrShowtimeIDRequired},
		{"座席未指定", &Booking{ID: "BMS1", ShowtimeID: "show-1"}, ErrSeatIDsRequired},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.booking.Validate()
			if tt.expectedErr != nil {
				assert.ErrorIs(t, err, tt.expectedErr)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestBooking_Cancel(t *testing.T) {
	now := time.Now()
	b := NewFromHold(testHold(), "user-1", "pay-1", "upi", now)

	change, err := b.Cancel("顧客都合", now.Add(time.Hour))
	require.NoError(t, err)
	assert.True(t, b.IsCancelled())
	assert.Equal(t, StatusChange{BookingID: "BMS1", Status: StatusCancelled, Reason: "顧客都合", At: now.Add(time.Hour)}, change)

	_, err = b.Cancel("再キャンセル", now)
	assert.ErrorIs(t, err, ErrBookingAlreadyCancelled)
}

func TestNewID(t *testing.T) {
	now := time.UnixMilli(1700000000123)

	id := NewID(now)

	assert.Regexp(t, `^BMS1700000000123[0-9A-F]{6}$`, id)
	assert.NotEqual(t, id, NewID(now))
}
