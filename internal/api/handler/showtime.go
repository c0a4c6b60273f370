package handler

import (
	"net/http"
	"strconv"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/sanosuguru/go-showtime-seat-reservation/internal/api"
	"github.com/sanosuguru/go-showtime-seat-reservation/internal/application"
	"github.com/sanosuguru/go-showtime-seat-reservation/internal/domain/showtime"
)

type ShowtimeHandler struct {
	service ShowtimeServiceInterface
}

func NewShowtimeHandler(s ShowtimeServiceInterface) *ShowtimeHandler {
	return &ShowtimeHandler{service: s}
}

type CreateShowtimeRequest struct {
	MovieID   string `json:"movie_id" validate:"required" example:"movie-interstellar"`
	TheaterID string `json:"theater_id" validate:"required" example:"pvr-screen-3"`
	StartAt   string `json:"start_at" validate:"required" example:"2025-03-01T18:30:00+05:30"`
	BasePrice int    `json:"base_price" validate:"min=0" example:"250"`
}

type UpdatePriceRequest struct {
	BasePrice int `json:"base_price" validate:"min=0" example:"300"`
}

type ShowtimeResponse struct {
	ID         string `json:"id"`
	MovieID    string `json:"movie_id"`
	TheaterID  string `json:"theater_id"`
	StartAt    string `json:"start_at"`
	BasePrice  int    `json:"base_price"`
	TotalSeats int    `json:"total_seats"`
	CreatedAt  string `json:"created_at"`
	UpdatedAt  string `json:"updated_at"`
}

func toShowtimeResponse(s *showtime.Showtime) *ShowtimeResponse {
	return &ShowtimeResponse{
		ID:         s.ID,
		MovieID:    s.MovieID,
		TheaterID:  s.TheaterID,
		StartAt:    s.StartAt.Format(time.RFC3339),
		BasePrice:  s.BasePrice,
		TotalSeats: s.TotalSeats,
		CreatedAt:  s.CreatedAt.Format(time.RFC3339),
		UpdatedAt:  s.UpdatedAt.Format(time.RFC3339),
	}
}

// Create godoc
// @Summary 上映回を作成
// @Tags showtimes
// @Accept json
// @Produce json
// @Param request body CreateShowtimeRequest true "上映回情報"
// @Success 201 {object} ShowtimeResponse
// @Failure 400 {object} api.ErrorResponse
// @Router /showtimes [post]
func (h *ShowtimeHandler) Create(c echo.Context) error {
	var req CreateShowtimeRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "リクエストの形式が不正です")
	}
	if err := c.Validate(&req); err != nil {
		return err
	}
	startAt, err := time.Parse(time.RFC3339, req.StartAt)
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "開始時刻の形式が不正です")
	}

	s, err := h.service.CreateShowtime(c.Request().Context(), application.CreateShowtimeInput{
		MovieID:   req.MovieID,
		TheaterID: req.TheaterID,
		StartAt:   startAt,
		BasePrice: req.BasePrice,
	})
	if err != nil {
		return api.HTTPError(err)
	}
	return c.JSON(http.StatusCreated, toShowtimeResponse(s))
}

// GetByID godoc
// @Summary 上映回を取得
// @Tags showtimes
// @Produce json
// @Param id path string true "上映回ID"
// @Success 200 {object} ShowtimeResponse
// @Failure 404 {object} api.ErrorResponse
// @Router /showtimes/{id} [get]
func (h *ShowtimeHandler) GetByID(c echo.Context) error {
	s, err := h.service.GetShowtime(c.Request().Context(), c.Param("id"))
	if err != nil {
		return api.HTTPError(err)
	}
	return c.JSON(http.StatusOK, toShowtimeResponse(s))
}

// List godoc
// @Summary 上映回一覧を取得
// @Tags showtimes
// @Produce json
// @Param movie_id query string false "映画ID"
// @Param limit query int false "取得件数" default(20)
// @Param offset query int false "オフセット" default(0)
// @Success 200 {array} ShowtimeResponse
// @Router /showtimes [get]
func (h *ShowtimeHandler) List(c echo.Context) error {
	limit, _ := strconv.Atoi(c.QueryParam("limit"))
	offset, _ := strconv.Atoi(c.QueryParam("offset"))

	showtimes, err := h.service.ListShowtimes(c.Request().Context(), c.QueryParam("movie_id"), limit, offset)
	if err != nil {
		return api.HTTPError(err)
	}
	resp := make([]*ShowtimeResponse, len(showtimes))
	for i, s := range showtimes {
		resp[i] = toShowtimeResponse(s)
	}
	return c.JSON(http.StatusOK, resp)
}

// UpdatePrice godoc
// @Summary 基本料金を変更
// @Description 変更後に作成された保留にのみ適用されます
// @Tags showtimes
// @Accept json
// @Produce json
// @Param id path string true "上映回ID"
// @Param request body UpdatePriceRequest true "基本料金"
// @Success 200 {object} ShowtimeResponse
// @Failure 400 {object} api.ErrorResponse
// @Failure 404 {object} api.ErrorResponse
// @Router /showtimes/{id}/price [patch]
func (h *ShowtimeHandler) UpdatePrice(c echo.Context) error {
	var req UpdatePriceRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "リクエストの形式が不正です")
	}
	if err := c.Validate(&req); err != nil {
		return err
	}
	s, err := h.service.UpdateBasePrice(c.Request().Context(), c.Param("id"), req.BasePrice)
	if err != nil {
		return api.HTTPError(err)
	}
	return c.JSON(http.StatusOK, toShowtimeResponse(s))
}
