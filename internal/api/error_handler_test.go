package api

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sanosuguru/go-showtime-seat-reservation/internal/domain/booking"
	"github.com/sanosuguru/go-showtime-seat-reservation/internal/domain/hold"
	"github.com/sanosuguru/go-showtime-seat-reservation/internal/domain/payment"
	"github.com/sanosuguru/go-showtime-seat-reservation/internal/domain/showtime"
)

func TestStatusFor(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want int
	}{
		{"座席確保済み", hold.Unavailable("A3"), http.StatusConflict},
		{"期限切れ", fmt.Errorf("確定: %w", hold.ErrHoldExpired), http.StatusGone},
		{"無効な保留", hold.ErrHoldInvalidated, http.StatusConflict},
		{"決済失敗", payment.ErrPaymentFailed, http.StatusPaymentRequired},
		{"金額不一致", payment.ErrAmountMismatch, http.StatusUnprocessableEntity},
		{"上映回なし", showtime.ErrShowtimeNotFound, http.StatusNotFound},
		{"予約なし", booking.ErrBookingNotFound, http.StatusNotFound},
		{"キャンセル済み", booking.ErrBookingAlreadyCancelled, http.StatusConflict},
		{"ストア障害", hold.StoreError("try hold", errors.New("dial tcp")), http.StatusServiceUnavailable},
		{"台帳障害", booking.LedgerError("append", errors.New("dial tcp")), http.StatusServiceUnavailable},
		{"入力不備", payment.ErrInvalidMethod, http.StatusBadRequest},
		{"未知のエラー", errors.New("boom"), http.StatusInternalServerError},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, StatusFor(tt.err))
		})
	}
}

func TestHTTPError(t *testing.T) {
	t.Run("既存のHTTPErrorはそのまま返す", func(t *testing.T) {
		orig := echo.NewHTTPError(http.StatusUnauthorized, "ユーザーIDが必要です")
		assert.Same(t, orig, HTTPError(orig))
	})

	t.Run("5xxは内部の詳細を隠す", func(t *testing.T) {
		cause := hold.StoreError("commit hold", errors.New("password authentication failed"))
		he := HTTPError(cause)
		assert.Equal(t, http.StatusServiceUnavailable, he.Code)
		assert.Equal(t, http.StatusText(http.StatusServiceUnavailable), he.Message)
		assert.ErrorIs(t, he.Internal, hold.ErrStoreUnavailable)
	})
}

func TestCustomHTTPErrorHandler(t *testing.T) {
	e := echo.New()

	t.Run("競合座席をseat_idで返す", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodPost, "/api/v1/showtimes/s/holds", nil)
		rec := httptest.NewRecorder()
		c := e.NewContext(req, rec)

		CustomHTTPErrorHandler(HTTPError(hold.Unavailable("A3")), c)

		assert.Equal(t, http.StatusConflict, rec.Code)
		var resp ErrorResponse
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
		assert.Equal(t, "A3", resp.SeatID)
		assert.Equal(t, http.StatusConflict, resp.Code)
	})

	t.Run("返金指示の送信失敗は詳細に残す", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodPost, "/api/v1/holds/h/payment", nil)
		rec := httptest.NewRecorder()
		c := e.NewContext(req, rec)

		err := fmt.Errorf("%w: %w", hold.ErrHoldExpired, payment.ErrRefundNotDelivered)
		CustomHTTPErrorHandler(err, c)

		assert.Equal(t, http.StatusGone, rec.Code)
		assert.Contains(t, rec.Body.String(), `"details"`)
	})

	t.Run("未知のエラーは500", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/", nil)
		rec := httptest.NewRecorder()
		c := e.NewContext(req, rec)

		CustomHTTPErrorHandler(errors.New("panic: nil map"), c)

		assert.Equal(t, http.StatusInternalServerError, rec.Code)
		assert.NotContains(t, rec.Body.String(), "nil map")
	})
}
