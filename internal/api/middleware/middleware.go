package middleware

import (
	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"go.uber.org/zap"

	"github.com/sanosuguru/go-showtime-seat-reservation/internal/api"
	"github.com/sanosuguru/go-showtime-seat-reservation/internal/pkg/logger"
)

// リクエストボディの上限。座席選択と決済結果は小さい JSON のみ
const bodyLimit = "64K"

// SetupMiddleware は共通ミドルウェアを設定する
// 順序: リクエストID → ログ → パニック復帰 → ボディ上限 → CORS
func SetupMiddleware(e *echo.Echo) {
	e.Use(
		RequestIDMiddleware(),
		RequestLogger(),
		middleware.RecoverWithConfig(middleware.RecoverConfig{LogErrorFunc: logPanic}),
		middleware.BodyLimit(bodyLimit),
		middleware.CORSWithConfig(corsConfig()),
	)
}

func corsConfig() middleware.CORSConfig {
	headers := []string{echo.HeaderOrigin, echo.HeaderContentType, echo.HeaderAccept}
	return middleware.CORSConfig{
		AllowOrigins:  []string{"*"},
		AllowMethods:  []string{echo.GET, echo.HEAD, echo.PATCH, echo.POST, echo.DELETE},
		AllowHeaders:  append(headers, api.ReservationHeaders...),
		ExposeHeaders: []string{echo.HeaderXRequestID},
	}
}

// logPanic はパニックをリクエストIDつきで記録し、500 として返す
func logPanic(c echo.Context, err error, stack []byte) error {
	logger.Error("パニックから復帰しました",
		zap.String("request_id", c.Response().Header().Get(echo.HeaderXRequestID)),
		zap.String("method", c.Request().Method),
		zap.String("route", c.Path()),
		zap.Error(err),
		zap.ByteString("stack", stack),
	)
	return err
}
