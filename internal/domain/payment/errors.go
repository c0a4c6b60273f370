package payment

import "errors"

// Payment ドメインのエラー定義
var (
	ErrPaymentFailed      = errors.New("決済に失敗しました")
	ErrAmountMismatch     = errors.New("決済金額が請求金額と一致しません")
	ErrReferenceRequired  = errors.New("決済参照IDは必須です")
	ErrInvalidMethod      = errors.New("決済手段が不正です")
	ErrInvalidStatus      = errors.New("決済ステータスが不正です")
	ErrInvalidAmount      = errors.New("決済金額が不正です")
	ErrRefundNotDelivered = errors.New("返金指示を送信できませんでした")
)
