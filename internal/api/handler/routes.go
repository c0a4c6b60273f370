package handler

import "github.com/labstack/echo/v4"

// Handlers はルーティング対象のハンドラー一式
type Handlers struct {
	Showtime *ShowtimeHandler
	Seat     *SeatHandler
	Hold     *HoldHandler
	Booking  *BookingHandler
	Health   *HealthHandler
}

// RegisterRoutes は /api/v1 配下のルートを登録する
func RegisterRoutes(g *echo.Group, h Handlers) {
	g.GET("/health", h.Health.Check)

	g.POST("/showtimes", h.Showtime.Create)
	g.GET("/showtimes", h.Showtime.List)
	g.GET("/showtimes/:id", h.Showtime.GetByID)
	g.PATCH("/showtimes/:id/price", h.Showtime.UpdatePrice)
	g.GET("/showtimes/:id/seats", h.Seat.GetStatuses)
	g.GET("/showtimes/:id/occupied", h.Seat.GetOccupied)
	g.POST("/showtimes/:id/holds", h.Hold.Create)

	g.GET("/holds/:token", h.Hold.GetByToken)
	g.POST("/holds/:token/payment/begin", h.Hold.BeginPayment)
	g.POST("/holds/:token/payment", h.Hold.ConfirmPayment)
	g.DELETE("/holds/:token", h.Hold.Cancel)

	g.GET("/bookings", h.Booking.GetUserBookings)
	g.GET("/bookings/:id", h.Booking.GetByID)
	g.GET("/bookings/:id/history", h.Booking.GetHistory)
	g.POST("/bookings/:id/cancel", h.Booking.Cancel)
}
