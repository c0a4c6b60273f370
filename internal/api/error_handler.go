package api

import (
	"errors"
	"net/http"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"

	"github.com/sanosuguru/go-showtime-seat-reservation/internal/domain/booking"
	"github.com/sanosuguru/go-showtime-seat-reservation/internal/domain/hold"
	"github.com/sanosuguru/go-showtime-seat-reservation/internal/domain/payment"
	"github.com/sanosuguru/go-showtime-seat-reservation/internal/domain/seat"
	"github.com/sanosuguru/go-showtime-seat-reservation/internal/domain/showtime"
	"github.com/sanosuguru/go-showtime-seat-reservation/internal/pkg/logger"
)

// ErrorResponse はエラーレスポンスの統一フォーマット
type ErrorResponse struct {
	Error   string `json:"error"`
	Code    int    `json:"code,omitempty"`
	Details string `json:"details,omitempty"`
	SeatID  string `json:"seat_id,omitempty"`
}

// ドメインエラーとHTTPステータスの対応（上から順に判定）
var statusByError = []struct {
	err    error
	status int
}{
	{hold.ErrSeatUnavailable, http.StatusConflict},
	{hold.ErrHoldExpired, http.StatusGone},
	{hold.ErrHoldInvalidated, http.StatusConflict},
	{payment.ErrPaymentFailed, http.StatusPaymentRequired},
	{payment.ErrAmountMismatch, http.StatusUnprocessableEntity},
	{hold.ErrHoldNotFound, http.StatusNotFound},
	{booking.ErrBookingNotFound, http.StatusNotFound},
	{showtime.ErrShowtimeNotFound, http.StatusNotFound},
	{seat.ErrSeatNotFound, http.StatusNotFound},
	{booking.ErrBookingAlreadyCancelled, http.StatusConflict},
	{hold.ErrStoreUnavailable, http.StatusServiceUnavailable},
	{booking.ErrLedgerUnavailable, http.StatusServiceUnavailable},

	{hold.ErrShowtimeIDRequired, http.StatusBadRequest},
	{hold.ErrSessionIDRequired, http.StatusBadRequest},
	{hold.ErrSeatIDsRequired, http.StatusBadRequest},
	{hold.ErrDuplicateSeat, http.StatusBadRequest},
	{seat.ErrNoSeatsSelected, http.StatusBadRequest},
	{seat.ErrDuplicateSeat, http.StatusBadRequest},
	{showtime.ErrMovieIDRequired, http.StatusBadRequest},
	{showtime.ErrTheaterIDRequired, http.StatusBadRequest},
	{showtime.ErrStartTimeRequired, http.StatusBadRequest},
	{showtime.ErrInvalidBasePrice, http.StatusBadRequest},
	{payment.ErrReferenceRequired, http.StatusBadRequest},
	{payment.ErrInvalidMethod, http.StatusBadRequest},
	{payment.ErrInvalidStatus, http.StatusBadRequest},
	{payment.ErrInvalidAmount, http.StatusBadRequest},
}

// StatusFor はドメインエラーに対応するHTTPステータスを返す
func StatusFor(err error) int {
	for _, m := range statusByError {
		if errors.Is(err, m.err) {
			return m.status
		}
	}
	return http.StatusInternalServerError
}

// HTTPError はドメインエラーを echo.HTTPError に変換する
// 元のエラーは Internal に保持する
func HTTPError(err error) *echo.HTTPError {
	var he *echo.HTTPError
	if errors.As(err, &he) {
		return he
	}
	code := StatusFor(err)
	message := err.Error()
	if code >= 500 {
		message = http.StatusText(code)
	}
	return echo.NewHTTPError(code, message).SetInternal(err)
}

// CustomHTTPErrorHandler はカスタムエラーハンドラー
func CustomHTTPErrorHandler(err error, c echo.Context) {
	if c.Response().Committed {
		return
	}

	he := HTTPError(err)
	code := he.Code
	message, ok := he.Message.(string)
	if !ok {
		message = http.StatusText(code)
	}

	resp := ErrorResponse{Error: message, Code: code}
	var unavailable *hold.SeatUnavailableError
	if errors.As(err, &unavailable) {
		resp.SeatID = unavailable.SeatID
	}
	if errors.Is(err, payment.ErrRefundNotDelivered) {
		resp.Details = "返金指示は再送されます"
	}

	// エラーログを出力（5xx エラーの場合）
	if code >= 500 {
		logger.Error("サーバーエラー",
			zap.Int("status", code),
			zap.String("path", c.Request().URL.Path),
			zap.Error(err),
		)
	}

	if err := c.JSON(code, resp); err != nil {
		logger.Error("エラーレスポンス送信失敗", zap.Error(err))
	}
}
