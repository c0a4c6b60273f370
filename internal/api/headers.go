package api

// 座席選択・決済で使うリクエストヘッダー
const (
	HeaderSessionID      = "X-Session-ID"
	HeaderUserID         = "X-User-ID"
	HeaderIdempotencyKey = "Idempotency-Key"
)

// ReservationHeaders は CORS で許可するヘッダー
var ReservationHeaders = []string{HeaderSessionID, HeaderUserID, HeaderIdempotencyKey}
