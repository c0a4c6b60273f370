package middleware

import (
	"strconv"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/sanosuguru/go-showtime-seat-reservation/internal/api"
	"github.com/sanosuguru/go-showtime-seat-reservation/internal/pkg/metrics"
)

// unmatchedRoute は未定義ルートへのリクエストをまとめるラベル
const unmatchedRoute = "unmatched"

// PrometheusMiddleware はルート単位のHTTPメトリクスを収集する
// /metrics 自体のスクレイプは記録しない
func PrometheusMiddleware(m *metrics.Metrics) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			if c.Path() == "/metrics" {
				return next(c)
			}
			start := time.Now()
			err := next(c)

			method := c.Request().Method
			route := routeLabel(c)
			m.HTTPRequestsTotal.WithLabelValues(method, route, strconv.Itoa(responseStatus(c, err))).Inc()
			m.HTTPRequestDuration.WithLabelValues(method, route).Observe(time.Since(start).Seconds())
			return err
		}
	}
}

// routeLabel は上映回IDや保留トークンを含まないルート定義のパスを返す
func routeLabel(c echo.Context) string {
	if p := c.Path(); p != "" {
		return p
	}
	return unmatchedRoute
}

// responseStatus はエラーハンドラーが書き込む前のステータスをドメインエラーから求める
func responseStatus(c echo.Context, err error) int {
	if err != nil {
		return api.HTTPError(err).Code
	}
	return c.Response().Status
}
