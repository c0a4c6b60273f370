package handler

import (
	"net/http"
	"strconv"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/sanosuguru/go-showtime-seat-reservation/internal/api"
	"github.com/sanosuguru/go-showtime-seat-reservation/internal/domain/booking"
)

type BookingHandler struct {
	service BookingServiceInterface
}

func NewBookingHandler(s BookingServiceInterface) *BookingHandler {
	return &BookingHandler{service: s}
}

type CancelBookingRequest struct {
	Reason string `json:"reason" validate:"max=200"`
}

type BookingResponse struct {
	ID            string          `json:"id" example:"BMS1740830400000A1B2C3"`
	ShowtimeID    string          `json:"showtime_id"`
	HoldToken     string          `json:"hold_token"`
	UserID        string          `json:"user_id,omitempty"`
	SeatIDs       []string        `json:"seat_ids"`
	Lines         []LineResponse  `json:"lines"`
	Charges       ChargesResponse `json:"charges"`
	PaymentRef    string          `json:"payment_ref"`
	PaymentMethod string          `json:"payment_method"`
	Status        string          `json:"status" example:"confirmed"`
	CreatedAt     time.Time       `json:"created_at"`
	UpdatedAt     time.Time       `json:"updated_at"`
}

type StatusChangeResponse struct {
	Status string    `json:"status"`
	Reason string    `json:"reason,omitempty"`
	At     time.Time `json:"at"`
}

func toBookingResponse(b *booking.Booking) BookingResponse {
	return BookingResponse{
		ID: b.ID, ShowtimeID: b.ShowtimeID, HoldToken: b.HoldID, UserID: b.UserID,
		SeatIDs: b.SeatIDs, Lines: toLineResponses(b.Lines), Charges: toChargesResponse(b.Charges),
		PaymentRef: b.PaymentRef, PaymentMethod: b.PaymentMethod,
		Status: string(b.Status), CreatedAt: b.CreatedAt, UpdatedAt: b.UpdatedAt,
	}
}

// GetByID godoc
// @Summary 予約を取得
// @Tags bookings
// @Produce json
// @Param id path string true "予約ID"
// @Success 200 {object} BookingResponse
// @Failure 404 {object} api.ErrorResponse
// @Router /bookings/{id} [get]
func (h *BookingHandler) GetByID(c echo.Context) error {
	b, err := h.service.GetBooking(c.Request().Context(), c.Param("id"))
	if err != nil {
		return api.HTTPError(err)
	}
	return c.JSON(http.StatusOK, toBookingResponse(b))
}

// GetUserBookings godoc
// @Summary ユーザーの予約一覧を取得
// @Tags bookings
// @Produce json
// @Param X-User-ID header string true "ユーザーID"
// @Param limit query int false "取得件数" default(20)
// @Param offset query int false "オフセット" default(0)
// @Success 200 {array} BookingResponse
// @Failure 401 {object} api.ErrorResponse
// @Router /bookings [get]
func (h *BookingHandler) GetUserBookings(c echo.Context) error {
	userID := c.Request().Header.Get(HeaderUserID)
	if userID == "" {
		return echo.NewHTTPError(http.StatusUnauthorized, "ユーザーIDが必要です")
	}
	limit, _ := strconv.Atoi(c.QueryParam("limit"))
	offset, _ := strconv.Atoi(c.QueryParam("offset"))
	bookings, err := h.service.GetUserBookings(c.Request().Context(), userID, limit, offset)
	if err != nil {
		return api.HTTPError(err)
	}
	resp := make([]BookingResponse, len(bookings))
	for i, b := range bookings {
		resp[i] = toBookingResponse(b)
	}
	return c.JSON(http.StatusOK, resp)
}

// Cancel godoc
// @Summary 予約をキャンセル
// @Description キャンセル状態を追記します。座席は再販されません
// @Tags bookings
// @Accept json
// @Produce json
// @Param id path string true "予約ID"
// @Param request body CancelBookingRequest false "理由"
// @Success 200 {object} BookingResponse
// @Failure 404 {object} api.ErrorResponse
// @Failure 409 {object} api.ErrorResponse "キャンセル済み"
// @Router /bookings/{id}/cancel [post]
func (h *BookingHandler) Cancel(c echo.Context) error {
	var req CancelBookingRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "無効なリクエスト")
	}
	if err := c.Validate(&req); err != nil {
		return err
	}
	b, err := h.service.CancelBooking(c.Request().Context(), c.Param("id"), req.Reason)
	if err != nil {
		return api.HTTPError(err)
	}
	return c.JSON(http.StatusOK, toBookingResponse(b))
}

// GetHistory godoc
// @Summary 予約の状態変更履歴
// @Tags bookings
// @Produce json
// @Param id path string true "予約ID"
// @Success 200 {array} StatusChangeResponse
// @Failure 404 {object} api.ErrorResponse
// @Router /bookings/{id}/history [get]
func (h *BookingHandler) GetHistory(c echo.Context) error {
	changes, err := h.service.GetHistory(c.Request().Context(), c.Param("id"))
	if err != nil {
		return api.HTTPError(err)
	}
	resp := make([]StatusChangeResponse, len(changes))
	for i, ch := range changes {
		resp[i] = StatusChangeResponse{Status: string(ch.Status), Reason: ch.Reason, At: ch.At}
	}
	return c.JSON(http.StatusOK, resp)
}
