package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/labstack/echo/v4"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"github.com/sanosuguru/go-showtime-seat-reservation/internal/api"
	"github.com/sanosuguru/go-showtime-seat-reservation/internal/api/handler"
	"github.com/sanosuguru/go-showtime-seat-reservation/internal/api/middleware"
	"github.com/sanosuguru/go-showtime-seat-reservation/internal/application"
	"github.com/sanosuguru/go-showtime-seat-reservation/internal/config"
	"github.com/sanosuguru/go-showtime-seat-reservation/internal/domain/booking"
	"github.com/sanosuguru/go-showtime-seat-reservation/internal/domain/hold"
	"github.com/sanosuguru/go-showtime-seat-reservation/internal/domain/payment"
	"github.com/sanosuguru/go-showtime-seat-reservation/internal/domain/seat"
	"github.com/sanosuguru/go-showtime-seat-reservation/internal/domain/showtime"
	"github.com/sanosuguru/go-showtime-seat-reservation/internal/infrastructure/memory"
	"github.com/sanosuguru/go-showtime-seat-reservation/internal/infrastructure/postgres"
	"github.com/sanosuguru/go-showtime-seat-reservation/internal/infrastructure/rabbitmq"
	redisinfra "github.com/sanosuguru/go-showtime-seat-reservation/internal/infrastructure/redis"
	"github.com/sanosuguru/go-showtime-seat-reservation/internal/pkg/clock"
	"github.com/sanosuguru/go-showtime-seat-reservation/internal/pkg/logger"
	"github.com/sanosuguru/go-showtime-seat-reservation/internal/pkg/metrics"
	"github.com/sanosuguru/go-showtime-seat-reservation/internal/worker"
)

func main() {
	// .env は存在する場合のみ読み込む
	_ = godotenv.Load()

	cfg := config.Load()
	logger.Set(logger.NewLoggerWithFile(cfg.Env, logger.FileOptions{Path: cfg.Log.File}))
	defer logger.Sync()

	if err := cfg.Validate(); err != nil {
		logger.Fatal("設定エラー", zap.Error(err))
	}

	m := metrics.Init()
	clk := clock.System{}
	checks := map[string]handler.HealthCheck{}

	// ストア
	var (
		showtimes showtime.Repository
		store     hold.Store
		ledger    booking.Ledger
	)
	switch cfg.Reservation.StoreBackend {
	case config.BackendPostgres:
		db, err := postgres.NewConnection(&cfg.Database)
		if err != nil {
			logger.Fatal("データベース接続エラー", zap.Error(err))
		}
		defer db.Close()
		if err := postgres.RunMigrations(db.DB, cfg.Reservation.MigrationsPath); err != nil {
			logger.Fatal("マイグレーションエラー", zap.Error(err))
		}
		showtimes = postgres.NewShowtimeRepository(db)
		store = postgres.NewAvailabilityStore(db, clk)
		ledger = postgres.NewLedger(db)
		checks["postgres"] = func(ctx context.Context) error { return postgres.Ping(ctx, db) }
	default:
		showtimes = memory.NewShowtimeRepository()
		store = memory.NewAvailabilityStore(clk).WithRetention(cfg.Reservation.HoldRetention)
		ledger = memory.NewLedger()
	}
	logger.Info("座席在庫ストア", zap.String("backend", cfg.Reservation.StoreBackend))

	// Redis（スイーパーの排他と座席状態キャッシュ）
	var (
		statusCache application.StatusCache
		locker      worker.Locker
	)
	if cfg.Redis.Enabled {
		client, err := redisinfra.NewClient(redisinfra.ConfigFrom(&cfg.Redis))
		if err != nil {
			logger.Fatal("Redis接続エラー", zap.Error(err))
		}
		defer client.Close()
		statusCache = redisinfra.NewSeatCache(client)
		locker = redisinfra.NewLockManager(client).WithMetrics(m)
		checks["redis"] = func(ctx context.Context) error { return redisinfra.Ping(ctx, client) }
	}

	// RabbitMQ（予約確定イベントと返金指示）
	var (
		refunds   payment.RefundIssuer = application.LogRefundIssuer{}
		publisher application.BookingPublisher
	)
	if cfg.AMQP.Enabled {
		p, err := rabbitmq.Dial(cfg.AMQP.URL)
		if err != nil {
			logger.Fatal("RabbitMQ接続エラー", zap.Error(err))
		}
		defer p.Close()
		refunds = p
		publisher = p
	}

	// サービス
	showtimeService := application.NewShowtimeService(showtimes, seat.DefaultLayout())
	seatService := application.NewSeatService(showtimeService, store, ledger, statusCache, cfg.Reservation.StatusCacheTTL, clk)
	coordinator := application.NewReservationCoordinator(showtimeService, store, ledger, refunds, application.CoordinatorConfig{
		HoldTTL:       cfg.Reservation.HoldTTL,
		PaymentWindow: cfg.Reservation.PaymentWindow,
	}).WithCache(seatService).WithMetrics(m)
	if publisher != nil {
		coordinator = coordinator.WithPublisher(publisher)
	}
	bookingService := application.NewBookingService(ledger, clk)

	// 期限切れ保留の回収
	workerCtx, stopWorkers := context.WithCancel(context.Background())
	defer stopWorkers()
	sweeper := worker.NewExpiredHoldSweeper(coordinator, locker, cfg.Reservation.SweepInterval, cfg.Reservation.SweepLockTTL)
	go sweeper.Start(workerCtx)

	// Echo インスタンス作成
	e := echo.New()
	e.HideBanner = true
	e.Validator = api.NewValidator()
	e.HTTPErrorHandler = api.CustomHTTPErrorHandler
	e.Server.ReadTimeout = cfg.Server.ReadTimeout
	e.Server.WriteTimeout = cfg.Server.WriteTimeout

	// ミドルウェア設定
	middleware.SetupMiddleware(e)
	e.Use(middleware.PrometheusMiddleware(m))

	e.GET("/metrics", echo.WrapHandler(promhttp.Handler()), middleware.MetricsBasicAuth(cfg.Metrics))

	handler.RegisterRoutes(e.Group("/api/v1"), handler.Handlers{
		Showtime: handler.NewShowtimeHandler(showtimeService),
		Seat:     handler.NewSeatHandler(seatService),
		Hold:     handler.NewHoldHandler(coordinator),
		Booking:  handler.NewBookingHandler(bookingService),
		Health:   handler.NewHealthHandler(checks),
	})

	// Graceful shutdown
	go func() {
		logger.Info("サーバーを起動します", zap.String("port", cfg.Server.Port))
		if err := e.Start(fmt.Sprintf(":%s", cfg.Server.Port)); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Fatal("サーバー起動エラー", zap.Error(err))
		}
	}()

	// シグナル待機
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info("サーバーをシャットダウンしています...")
	sweeper.Stop()

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := e.Shutdown(ctx); err != nil {
		logger.Error("サーバーシャットダウンエラー", zap.Error(err))
		return
	}

	logger.Info("サーバーが正常にシャットダウンしました")
}
