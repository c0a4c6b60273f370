package handler

import (
	"net/http"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/sanosuguru/go-showtime-seat-reservation/internal/api"
	"github.com/sanosuguru/go-showtime-seat-reservation/internal/application"
	"github.com/sanosuguru/go-showtime-seat-reservation/internal/domain/booking"
	"github.com/sanosuguru/go-showtime-seat-reservation/internal/domain/hold"
	"github.com/sanosuguru/go-showtime-seat-reservation/internal/domain/payment"
)

// リクエストヘッダー
const (
	HeaderSessionID      = api.HeaderSessionID
	HeaderUserID         = api.HeaderUserID
	HeaderIdempotencyKey = api.HeaderIdempotencyKey
)

type HoldHandler struct {
	service HoldServiceInterface
}

func NewHoldHandler(s HoldServiceInterface) *HoldHandler {
	return &HoldHandler{service: s}
}

type SelectSeatsRequest struct {
	SeatIDs []string `json:"seat_ids" validate:"required,min=1,max=10,dive,seatid" example:"F3,F4"`
}

type ConfirmPaymentRequest struct {
	Reference     string `json:"reference" validate:"required" example:"pay_9f8e7d"`
	Method        string `json:"method" validate:"required,oneof=card upi" example:"upi"`
	Status        string `json:"status" validate:"required,oneof=succeeded failed" example:"succeeded"`
	Amount        int    `json:"amount" validate:"min=0" example:"301"`
	FailureReason string `json:"failure_reason,omitempty"`
}

type LineResponse struct {
	SeatID   string `json:"seat_id"`
	Category string `json:"category"`
	Price    int    `json:"price"`
}

type ChargesResponse struct {
	Subtotal       int `json:"subtotal" example:"250"`
	ConvenienceFee int `json:"convenience_fee" example:"5"`
	GST            int `json:"gst" example:"46"`
	Total          int `json:"total" example:"301"`
}

type HoldResponse struct {
	Token      string          `json:"token"`
	ShowtimeID string          `json:"showtime_id"`
	SeatIDs    []string        `json:"seat_ids"`
	Lines      []LineResponse  `json:"lines"`
	Charges    ChargesResponse `json:"charges"`
	State      string          `json:"state"`
	ExpiresAt  time.Time       `json:"expires_at"`
}

func toLineResponses(lines []hold.Line) []LineResponse {
	resp := make([]LineResponse, len(lines))
	for i, l := range lines {
		resp[i] = LineResponse{SeatID: l.SeatID, Category: string(l.Category), Price: l.Price}
	}
	return resp
}

func toChargesResponse(c booking.Charges) ChargesResponse {
	return ChargesResponse{Subtotal: c.Subtotal, ConvenienceFee: c.ConvenienceFee, GST: c.GST, Total: c.Total}
}

func toHoldResponse(q *application.Quote) HoldResponse {
	return HoldResponse{
		Token:      q.Hold.ID,
		ShowtimeID: q.Hold.ShowtimeID,
		SeatIDs:    q.Hold.SeatIDs,
		Lines:      toLineResponses(q.Hold.Lines),
		Charges:    toChargesResponse(q.Charges),
		State:      string(q.Hold.State),
		ExpiresAt:  q.Hold.ExpiresAt,
	}
}

// Create godoc
// @Summary 座席を保留
// @Description 指定座席をすべて保留します。1席でも埋まっていれば何も保留しません
// @Tags holds
// @Accept json
// @Produce json
// @Param id path string true "上映回ID"
// @Param X-Session-ID header string true "セッションID"
// @Param Idempotency-Key header string false "再送用のキー"
// @Param request body SelectSeatsRequest true "座席ID"
// @Success 201 {object} HoldResponse
// @Failure 400 {object} api.ErrorResponse
// @Failure 409 {object} api.ErrorResponse "座席が確保済み（seat_id に最初の競合座席）"
// @Router /showtimes/{id}/holds [post]
func (h *HoldHandler) Create(c echo.Context) error {
	sessionID := c.Request().Header.Get(HeaderSessionID)
	if sessionID == "" {
		return echo.NewHTTPError(http.StatusBadRequest, "セッションIDが必要です")
	}
	var req SelectSeatsRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "無効なリクエスト")
	}
	if err := c.Validate(&req); err != nil {
		return err
	}
	q, err := h.service.SelectSeats(c.Request().Context(), application.SelectSeatsInput{
		ShowtimeID:     c.Param("id"),
		SessionID:      sessionID,
		SeatIDs:        req.SeatIDs,
		IdempotencyKey: c.Request().Header.Get(HeaderIdempotencyKey),
	})
	if err != nil {
		return api.HTTPError(err)
	}
	return c.JSON(http.StatusCreated, toHoldResponse(q))
}

// GetByToken godoc
// @Summary 保留を取得
// @Tags holds
// @Produce json
// @Param token path string true "保留トークン"
// @Success 200 {object} HoldResponse
// @Failure 404 {object} api.ErrorResponse
// @Router /holds/{token} [get]
func (h *HoldHandler) GetByToken(c echo.Context) error {
	q, err := h.service.GetHold(c.Request().Context(), c.Param("token"))
	if err != nil {
		return api.HTTPError(err)
	}
	return c.JSON(http.StatusOK, toHoldResponse(q))
}

// BeginPayment godoc
// @Summary 決済開始
// @Description 保留の残り時間を決済猶予分まで延長します
// @Tags holds
// @Produce json
// @Param token path string true "保留トークン"
// @Success 200 {object} HoldResponse
// @Failure 409 {object} api.ErrorResponse
// @Failure 410 {object} api.ErrorResponse "保留の期限切れ"
// @Router /holds/{token}/payment/begin [post]
func (h *HoldHandler) BeginPayment(c echo.Context) error {
	q, err := h.service.BeginPayment(c.Request().Context(), c.Param("token"))
	if err != nil {
		return api.HTTPError(err)
	}
	return c.JSON(http.StatusOK, toHoldResponse(q))
}

// ConfirmPayment godoc
// @Summary 決済結果を反映して予約を確定
// @Description 保留が期限切れ・無効の場合は返金指示を出し、予約は作成しません
// @Tags holds
// @Accept json
// @Produce json
// @Param token path string true "保留トークン"
// @Param X-User-ID header string false "ユーザーID"
// @Param request body ConfirmPaymentRequest true "決済結果"
// @Success 201 {object} BookingResponse
// @Failure 402 {object} api.ErrorResponse "決済失敗"
// @Failure 409 {object} api.ErrorResponse "保留が無効"
// @Failure 410 {object} api.ErrorResponse "保留の期限切れ（返金済み）"
// @Failure 422 {object} api.ErrorResponse "金額不一致（返金済み）"
// @Failure 503 {object} api.ErrorResponse
// @Router /holds/{token}/payment [post]
func (h *HoldHandler) ConfirmPayment(c echo.Context) error {
	var req ConfirmPaymentRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "無効なリクエスト")
	}
	if err := c.Validate(&req); err != nil {
		return err
	}
	b, err := h.service.ConfirmPayment(c.Request().Context(), application.ConfirmPaymentInput{
		HoldID: c.Param("token"),
		UserID: c.Request().Header.Get(HeaderUserID),
		Payment: payment.Result{
			Reference:     req.Reference,
			Method:        payment.Method(req.Method),
			Status:        payment.Status(req.Status),
			Amount:        req.Amount,
			FailureReason: req.FailureReason,
		},
	})
	if err != nil {
		return api.HTTPError(err)
	}
	return c.JSON(http.StatusCreated, toBookingResponse(b))
}

// Cancel godoc
// @Summary 保留を解除
// @Tags holds
// @Param token path string true "保留トークン"
// @Success 204
// @Failure 404 {object} api.ErrorResponse
// @Router /holds/{token} [delete]
func (h *HoldHandler) Cancel(c echo.Context) error {
	if _, err := h.service.CancelHold(c.Request().Context(), c.Param("token")); err != nil {
		return api.HTTPError(err)
	}
	return c.NoContent(http.StatusNoContent)
}
