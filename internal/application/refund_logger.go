package application

import (
	"context"

	"go.uber.org/zap"

	"github.com/sanosuguru/go-showtime-seat-reservation/internal/domain/payment"
	"github.com/sanosuguru/go-showtime-seat-reservation/internal/pkg/logger"
)

// LogRefundIssuer はメッセージブローカーを使わない構成での返金指示先
// 返金指示をログに残し、運用で処理する
type LogRefundIssuer struct{}

func (LogRefundIssuer) IssueRefund(ctx context.Context, refund payment.Refund) error {
	logger.Warn("返金指示",
		zap.String("payment_ref", refund.PaymentRef),
		zap.String("hold_id", refund.HoldID),
		zap.String("booking_id", refund.BookingID),
		zap.Int("amount", refund.Amount),
		zap.String("method", string(refund.Method)),
		zap.String("reason", string(refund.Reason)),
		zap.Time("issued_at", refund.IssuedAt),
	)
	return nil
}

var _ payment.RefundIssuer = LogRefundIssuer{}
