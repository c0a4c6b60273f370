package payment

import (
	"context"
	"time"
)

// Method は決済手段を表す
type Method string

const (
	MethodCard Method = "card"
	MethodUPI  Method = "upi"
)

// Valid は対応している決済手段かを返す
func (m Method) Valid() bool {
	return m == MethodCard || m == MethodUPI
}

// Status は決済結果の状態
type Status string

const (
	StatusSucceeded Status = "succeeded"
	StatusFailed    Status = "failed"
)

// Result は外部の決済処理から受け取る結果
// このサービス自身は課金を行わない
type Result struct {
	Reference     string
	Method        Method
	Status        Status
	Amount        int
	FailureReason string
}

// Succeeded は決済が成功したかを返す
func (r Result) Succeeded() bool {
	return r.Status == StatusSucceeded
}

// Validate は決済結果の検証を行う
func (r Result) Validate() error {
	if r.Reference == "" {
		return ErrReferenceRequired
	}
	if !r.Method.Valid() {
		return ErrInvalidMethod
	}
	switch r.Status {
	case StatusSucceeded:
		if r.Amount <= 0 {
			return ErrInvalidAmount
		}
	case StatusFailed:
	default:
		return ErrInvalidStatus
	}
	return nil
}

// RefundReason は返金理由
type RefundReason string

const (
	RefundHoldExpired     RefundReason = "hold_expired"
	RefundHoldInvalidated RefundReason = "hold_invalidated"
	RefundAmountMismatch  RefundReason = "amount_mismatch"
)

// Refund は返金指示
type Refund struct {
	PaymentRef string
	HoldID     string
	BookingID  string
	Amount     int
	Method     Method
	Reason     RefundReason
	IssuedAt   time.Time
}

// NewRefund は決済結果から返金指示を作成する
func NewRefund(r Result, holdID, bookingID string, reason RefundReason, now time.Time) Refund {
	return Refund{
		PaymentRef: r.Reference,
		HoldID:     holdID,
		BookingID:  bookingID,
		Amount:     r.Amount,
		Method:     r.Method,
		Reason:     reason,
		IssuedAt:   now,
	}
}

// RefundIssuer は返金指示を外部へ送るインターフェース
type RefundIssuer interface {
	IssueRefund(ctx context.Context, refund Refund) error
}
