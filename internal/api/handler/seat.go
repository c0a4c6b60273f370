package handler

import (
	"net/http"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/sanosuguru/go-showtime-seat-reservation/internal/api"
	"github.com/sanosuguru/go-showtime-seat-reservation/internal/application"
	"github.com/sanosuguru/go-showtime-seat-reservation/internal/domain/hold"
)

type SeatHandler struct {
	service SeatServiceInterface
}

func NewSeatHandler(s SeatServiceInterface) *SeatHandler {
	return &SeatHandler{service: s}
}

// SeatStatusResponse は座席と現在の状態
// 保留者のセッションIDは返さず、リクエスト元の保留かどうかだけを示す
type SeatStatusResponse struct {
	ID        string     `json:"id" example:"F4"`
	Row       string     `json:"row" example:"F"`
	Number    int        `json:"number" example:"4"`
	Category  string     `json:"category" example:"premium"`
	Price     int        `json:"price" example:"350"`
	Status    string     `json:"status" example:"held"`
	HeldByYou bool       `json:"held_by_you,omitempty"`
	ExpiresAt *time.Time `json:"expires_at,omitempty"`
}

type OccupiedSeatsResponse struct {
	ShowtimeID string   `json:"showtime_id"`
	SeatIDs    []string `json:"seat_ids"`
}

func toSeatStatusResponse(v application.SeatView, sessionID string) SeatStatusResponse {
	resp := SeatStatusResponse{
		ID: v.ID, Row: v.Row, Number: v.Number,
		Category: string(v.Category), Price: v.Price,
		Status: string(v.Status),
	}
	if v.Status == hold.KindHeld {
		resp.HeldByYou = sessionID != "" && v.Holder == sessionID
		resp.ExpiresAt = v.ExpiresAt
	}
	return resp
}

// GetStatuses godoc
// @Summary 座席マップと状態を取得
// @Tags seats
// @Produce json
// @Param id path string true "上映回ID"
// @Param X-Session-ID header string false "セッションID"
// @Success 200 {array} SeatStatusResponse
// @Failure 404 {object} api.ErrorResponse
// @Router /showtimes/{id}/seats [get]
func (h *SeatHandler) GetStatuses(c echo.Context) error {
	views, err := h.service.GetSeatStatuses(c.Request().Context(), c.Param("id"))
	if err != nil {
		return api.HTTPError(err)
	}
	sessionID := c.Request().Header.Get(HeaderSessionID)
	resp := make([]SeatStatusResponse, len(views))
	for i, v := range views {
		resp[i] = toSeatStatusResponse(v, sessionID)
	}
	return c.JSON(http.StatusOK, resp)
}

// GetOccupied godoc
// @Summary 確定済みの座席IDを取得
// @Tags seats
// @Produce json
// @Param id path string true "上映回ID"
// @Success 200 {object} OccupiedSeatsResponse
// @Router /showtimes/{id}/occupied [get]
func (h *SeatHandler) GetOccupied(c echo.Context) error {
	showtimeID := c.Param("id")
	ids, err := h.service.OccupiedSeats(c.Request().Context(), showtimeID)
	if err != nil {
		return api.HTTPError(err)
	}
	return c.JSON(http.StatusOK, OccupiedSeatsResponse{ShowtimeID: showtimeID, SeatIDs: ids})
}
