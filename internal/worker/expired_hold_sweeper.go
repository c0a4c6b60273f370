package worker

import (
	"context"
	"errors"
	"time"

	"go.uber.org/zap"

	redisinfra "github.com/sanosuguru/go-showtime-seat-reservation/internal/infrastructure/redis"
	"github.com/sanosuguru/go-showtime-seat-reservation/internal/pkg/logger"
)

// sweepLockKey は掃除を1インスタンスに限定するためのロックキー
const sweepLockKey = "worker:expired-hold-sweeper"

// HoldSweeper は期限切れ保留を解放するインターフェース
type HoldSweeper interface {
	SweepExpiredHolds(ctx context.Context) (int, error)
}

// Locker は複数インスタンス間の排他ロック
type Locker interface {
	TryLock(ctx context.Context, key string, ttl time.Duration) (redisinfra.Lease, error)
}

// ExpiredHoldSweeper は期限切れの保留を定期的に解放するワーカー
// 期限判定はストア側で常に行われるため、掃除は座席表示と在庫の整理のためのもの
type ExpiredHoldSweeper struct {
	sweeper  HoldSweeper
	locker   Locker
	lockTTL  time.Duration
	interval time.Duration
	stopCh   chan struct{}
	doneCh   chan struct{}
}

// NewExpiredHoldSweeper は新しいスイーパーを作成
// locker が nil の場合はロックを取らずに掃除する
func NewExpiredHoldSweeper(s HoldSweeper, locker Locker, interval, lockTTL time.Duration) *ExpiredHoldSweeper {
	return &ExpiredHoldSweeper{
		sweeper:  s,
		locker:   locker,
		lockTTL:  lockTTL,
		interval: interval,
		stopCh:   make(chan struct{}),
		doneCh:   make(chan struct{}),
	}
}

// Start はスイーパーを開始
func (w *ExpiredHoldSweeper) Start(ctx context.Context) {
	logger.Info("期限切れ保留スイーパー開始",
		zap.Duration("interval", w.interval),
		zap.Bool("distributed_lock", w.locker != nil),
	)

	ticker := time.NewTicker(w.interval)
	defer ticker.Stop()
	defer close(w.doneCh)

	for {
		select {
		case <-ctx.Done():
			logger.Info("期限切れ保留スイーパー停止（コンテキストキャンセル）")
			return
		case <-w.stopCh:
			logger.Info("期限切れ保留スイーパー停止（シグナル受信）")
			return
		case <-ticker.C:
			w.sweep(ctx)
		}
	}
}

// Stop はスイーパーを停止
func (w *ExpiredHoldSweeper) Stop() {
	close(w.stopCh)
	<-w.doneCh
}

// sweep は期限切れ保留を解放
func (w *ExpiredHoldSweeper) sweep(ctx context.Context) {
	log := logger.Get()

	if w.locker != nil {
		lease, err := w.locker.TryLock(ctx, sweepLockKey, w.lockTTL)
		if err != nil {
			if errors.Is(err, redisinfra.ErrLockNotAcquired) {
				log.Debug("他のインスタンスが掃除中のためスキップ")
			} else {
				log.Warn("スイーパーのロック取得に失敗", zap.Error(err))
			}
			return
		}
		stopRenewal := w.keepAlive(ctx, lease)
		defer func() {
			stopRenewal()
			if err := lease.Release(ctx); err != nil {
				log.Warn("スイーパーのロック解放に失敗", zap.Error(err))
			}
		}()
	}

	count, err := w.sweeper.SweepExpiredHolds(ctx)
	if err != nil {
		log.Error("期限切れ保留の解放失敗", zap.Error(err), zap.Int("released", count))
		return
	}

	if count > 0 {
		log.Info("期限切れ保留を解放", zap.Int("count", count))
	} else {
		log.Debug("期限切れ保留なし")
	}
}

// keepAlive は掃除中に lockTTL の半分ごとにロックを延長する
// 返り値の関数で延長を止める
func (w *ExpiredHoldSweeper) keepAlive(ctx context.Context, lease redisinfra.Lease) func() {
	interval := w.lockTTL / 2
	if interval <= 0 {
		return func() {}
	}
	stop := make(chan struct{})
	finished := make(chan struct{})

	go func() {
		defer close(finished)
		ticker := time.NewTicker(interval)
		defer ticker.Stop()
		for {
			select {
			case <-stop:
				return
			case <-ctx.Done():
				return
			case <-ticker.C:
				if err := lease.Extend(ctx, w.lockTTL); err != nil {
					logger.Warn("スイーパーのロック延長に失敗", zap.Error(err))
					return
				}
			}
		}
	}()

	return func() {
		close(stop)
		<-finished
	}
}
