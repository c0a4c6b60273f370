package application

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/sanosuguru/go-showtime-seat-reservation/internal/domain/booking"
	"github.com/sanosuguru/go-showtime-seat-reservation/internal/domain/hold"
	"github.com/sanosuguru/go-showtime-seat-reservation/internal/domain/payment"
	"github.com/sanosuguru/go-showtime-seat-reservation/internal/domain/seat"
	"github.com/sanosuguru/go-showtime-seat-reservation/internal/pkg/clock"
	"github.com/sanosuguru/go-showtime-seat-reservation/internal/pkg/logger"
	"github.com/sanosuguru/go-showtime-seat-reservation/internal/pkg/metrics"
)

// BookingPublisher は予約確定イベントの送信先
type BookingPublisher interface {
	PublishBookingConfirmed(ctx context.Context, b *booking.Booking) error
}

// CacheInvalidator は座席状態キャッシュの無効化を行う
type CacheInvalidator interface {
	InvalidateCache(ctx context.Context, showtimeID string)
}

// CoordinatorConfig は保留の期限設定
type CoordinatorConfig struct {
	HoldTTL       time.Duration
	PaymentWindow time.Duration
}

// PaymentRejectedError は決済済みだが予約にできなかったことを表す
// Cause は ErrHoldExpired / ErrHoldInvalidated / ErrAmountMismatch のいずれか
type PaymentRejectedError struct {
	Cause     error
	Refund    payment.Refund
	RefundErr error
}

func (e *PaymentRejectedError) Error() string {
	if e.RefundErr != nil {
		return fmt.Sprintf("決済を予約にできませんでした（返金指示の送信に失敗）: %v: %v", e.Cause, e.RefundErr)
	}
	return fmt.Sprintf("決済を予約にできませんでした（返金指示済み）: %v", e.Cause)
}

func (e *PaymentRejectedError) Unwrap() []error {
	if e.RefundErr != nil {
		return []error{e.Cause, e.RefundErr}
	}
	return []error{e.Cause}
}

// Quote は保留と固定済みの請求額
type Quote struct {
	Hold    *hold.Hold
	Charges booking.Charges
}

func newQuote(h *hold.Hold) *Quote {
	return &Quote{Hold: h, Charges: booking.CalculateCharges(h.Subtotal)}
}

// ReservationCoordinator は座席選択から予約確定までを調整する
type ReservationCoordinator struct {
	seats     seat.Provider
	store     hold.Store
	ledger    booking.Ledger
	refunds   payment.RefundIssuer
	publisher BookingPublisher
	cache     CacheInvalidator
	clock     clock.Clock
	metrics   *metrics.Metrics
	cfg       CoordinatorConfig
}

func NewReservationCoordinator(seats seat.Provider, store hold.Store, ledger booking.Ledger, refunds payment.RefundIssuer, cfg CoordinatorConfig) *ReservationCoordinator {
	return &ReservationCoordinator{
		seats:   seats,
		store:   store,
		ledger:  ledger,
		refunds: refunds,
		clock:   clock.System{},
		cfg:     cfg,
	}
}

// WithPublisher は予約確定イベントの送信先を設定する
func (c *ReservationCoordinator) WithPublisher(p BookingPublisher) *ReservationCoordinator {
	c.publisher = p
	return c
}

// WithCache はキャッシュ無効化先を設定する
func (c *ReservationCoordinator) WithCache(inv CacheInvalidator) *ReservationCoordinator {
	c.cache = inv
	return c
}

func (c *ReservationCoordinator) WithClock(clk clock.Clock) *ReservationCoordinator {
	c.clock = clk
	return c
}

func (c *ReservationCoordinator) WithMetrics(m *metrics.Metrics) *ReservationCoordinator {
	c.metrics = m
	return c
}

type SelectSeatsInput struct {
	ShowtimeID     string
	SessionID      string
	SeatIDs        []string
	IdempotencyKey string
}

// SelectSeats は座席を一括で保留し、固定した請求額を返す
func (c *ReservationCoordinator) SelectSeats(ctx context.Context, input SelectSeatsInput) (*Quote, error) {
	m, err := c.seats.SeatMap(ctx, input.ShowtimeID)
	if err != nil {
		return nil, err
	}
	quoted, _, err := m.Quote(input.SeatIDs)
	if err != nil {
		return nil, err
	}
	lines := make([]hold.Line, len(quoted))
	for i, se := range quoted {
		lines[i] = hold.Line{SeatID: se.ID, Category: se.Category, Price: se.Price}
	}

	h, err := c.store.TryHold(ctx, hold.Request{
		ShowtimeID:     input.ShowtimeID,
		SessionID:      input.SessionID,
		SeatIDs:        input.SeatIDs,
		Lines:          lines,
		BookingID:      booking.NewID(c.clock.Now()),
		IdempotencyKey: input.IdempotencyKey,
		TTL:            c.cfg.HoldTTL,
	})
	if err != nil {
		if errors.Is(err, hold.ErrSeatUnavailable) {
			c.metrics.IncHold("unavailable")
		} else {
			c.metrics.IncHold("error")
		}
		return nil, err
	}
	c.metrics.IncHold("held")
	c.invalidate(ctx, h.ShowtimeID)

	logger.Info("座席を保留しました",
		zap.String("hold_id", h.ID),
		zap.String("showtime_id", h.ShowtimeID),
		zap.Strings("seat_ids", h.SeatIDs),
		zap.Time("expires_at", h.ExpiresAt),
	)
	return newQuote(h), nil
}

// GetHold は保留と請求額を返す
func (c *ReservationCoordinator) GetHold(ctx context.Context, holdID string) (*Quote, error) {
	h, err := c.store.GetHold(ctx, holdID)
	if err != nil {
		return nil, err
	}
	return newQuote(h), nil
}

// BeginPayment は決済開始時に保留の残り時間を少なくとも決済猶予分まで延長する
func (c *ReservationCoordinator) BeginPayment(ctx context.Context, holdID string) (*Quote, error) {
	h, err := c.store.GetHold(ctx, holdID)
	if err != nil {
		return nil, err
	}
	now := c.clock.Now()
	if err := h.CheckRenewable(now); err != nil {
		return nil, err
	}
	if h.ExpiresAt.Sub(now) >= c.cfg.PaymentWindow {
		return newQuote(h), nil
	}
	renewed, err := c.store.RenewHold(ctx, holdID, c.cfg.PaymentWindow)
	if err != nil {
		return nil, err
	}
	c.invalidate(ctx, renewed.ShowtimeID)
	return newQuote(renewed), nil
}

type ConfirmPaymentInput struct {
	HoldID  string
	UserID  string
	Payment payment.Result
}

// ConfirmPayment は決済結果を受け取り、保留を確定して予約を記録する
// 保留の確定が成功した後にのみ台帳へ追記する
func (c *ReservationCoordinator) ConfirmPayment(ctx context.Context, input ConfirmPaymentInput) (*booking.Booking, error) {
	if err := input.Payment.Validate(); err != nil {
		return nil, fmt.Errorf("バリデーションエラー: %w", err)
	}
	h, err := c.store.GetHold(ctx, input.HoldID)
	if err != nil {
		return nil, err
	}
	log := logger.With(zap.String("hold_id", h.ID), zap.String("payment_ref", input.Payment.Reference))

	if !input.Payment.Succeeded() {
		if _, err := c.store.ReleaseHold(ctx, h.ID); err != nil {
			log.Warn("決済失敗後の保留解放に失敗しました", zap.Error(err))
		} else {
			c.invalidate(ctx, h.ShowtimeID)
		}
		c.metrics.IncCommit("payment_failed")
		return nil, fmt.Errorf("%w: %s", payment.ErrPaymentFailed, input.Payment.FailureReason)
	}

	charges := booking.CalculateCharges(h.Subtotal)
	if input.Payment.Amount != charges.Total {
		log.Warn("決済金額が一致しません", zap.Int("expected", charges.Total), zap.Int("paid", input.Payment.Amount))
		return nil, c.reject(ctx, h, input.Payment, payment.ErrAmountMismatch, payment.RefundAmountMismatch)
	}

	committed, err := c.store.CommitHold(ctx, h.ID, h.BookingID)
	switch {
	case errors.Is(err, hold.ErrHoldExpired):
		c.metrics.IncCommit("expired")
		c.releaseQuietly(ctx, h)
		return nil, c.reject(ctx, h, input.Payment, err, payment.RefundHoldExpired)
	case errors.Is(err, hold.ErrHoldInvalidated):
		c.metrics.IncCommit("invalidated")
		c.releaseQuietly(ctx, h)
		return nil, c.reject(ctx, h, input.Payment, err, payment.RefundHoldInvalidated)
	case err != nil:
		// 何も確定していないので同じ決済結果で再試行できる
		c.metrics.IncCommit("error")
		log.Error("保留の確定に失敗しました", zap.Error(err))
		return nil, err
	}
	c.metrics.IncCommit("sold")
	c.invalidate(ctx, committed.ShowtimeID)

	b := booking.NewFromHold(committed, input.UserID, input.Payment.Reference, string(input.Payment.Method), c.clock.Now())
	created, err := c.ledger.Append(ctx, b)
	if err != nil {
		// 座席は販売済み。同じ決済結果での再試行で記録される
		log.Error("予約台帳への記録に失敗しました", zap.String("booking_id", b.ID), zap.Error(err))
		return nil, fmt.Errorf("予約の記録に失敗しました: %w: %w", hold.ErrStoreUnavailable, err)
	}
	if stored, err := c.ledger.GetByID(ctx, b.ID); err == nil {
		b = stored
	}

	// 再試行で既に記録済みならイベントは送信済み
	if c.publisher != nil && created {
		if err := c.publisher.PublishBookingConfirmed(ctx, b); err != nil {
			log.Warn("予約確定イベントの送信に失敗しました", zap.String("booking_id", b.ID), zap.Error(err))
		}
	}

	log.Info("予約を確定しました", zap.String("booking_id", b.ID), zap.Int("total", b.Charges.Total))
	return b, nil
}

// reject は返金指示を出し PaymentRejectedError を返す
func (c *ReservationCoordinator) reject(ctx context.Context, h *hold.Hold, result payment.Result, cause error, reason payment.RefundReason) error {
	refund := payment.NewRefund(result, h.ID, h.BookingID, reason, c.clock.Now())
	refundErr := c.refunds.IssueRefund(ctx, refund)
	if refundErr != nil {
		logger.Error("返金指示の送信に失敗しました",
			zap.String("hold_id", h.ID),
			zap.String("payment_ref", result.Reference),
			zap.Int("amount", result.Amount),
			zap.Error(refundErr),
		)
	} else {
		c.metrics.IncRefund(string(reason))
	}
	return &PaymentRejectedError{Cause: cause, Refund: refund, RefundErr: refundErr}
}

// releaseQuietly は期限切れ・無効な保留の後始末を行う（既に無効なら何もしない）
func (c *ReservationCoordinator) releaseQuietly(ctx context.Context, h *hold.Hold) {
	if _, err := c.store.ReleaseHold(ctx, h.ID); err != nil {
		logger.Warn("保留の解放に失敗しました", zap.String("hold_id", h.ID), zap.Error(err))
		return
	}
	c.invalidate(ctx, h.ShowtimeID)
}

// CancelHold は保留を解放する。解放した場合 true
func (c *ReservationCoordinator) CancelHold(ctx context.Context, holdID string) (bool, error) {
	h, err := c.store.GetHold(ctx, holdID)
	if err != nil {
		return false, err
	}
	released, err := c.store.ReleaseHold(ctx, holdID)
	if err != nil {
		return false, err
	}
	if released {
		c.invalidate(ctx, h.ShowtimeID)
		logger.Info("座席の保留を解除しました", zap.String("hold_id", holdID))
	}
	return released, nil
}

// SweepExpiredHolds は期限切れの保留を解放し、解放した数を返す
func (c *ReservationCoordinator) SweepExpiredHolds(ctx context.Context) (int, error) {
	swept, err := c.store.SweepExpired(ctx)
	touched := make(map[string]struct{})
	for _, h := range swept {
		touched[h.ShowtimeID] = struct{}{}
	}
	for showtimeID := range touched {
		c.invalidate(ctx, showtimeID)
	}
	c.metrics.AddSwept(len(swept))
	return len(swept), err
}

func (c *ReservationCoordinator) invalidate(ctx context.Context, showtimeID string) {
	if c.cache != nil {
		c.cache.InvalidateCache(ctx, showtimeID)
	}
}
