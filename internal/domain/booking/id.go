package booking

import (
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
)

// IDPrefix は予約IDの接頭辞
const IDPrefix = "BMS"

// NewID は予約IDを払い出す
// 形式: BMS + Unixミリ秒 + ランダムな16進6桁（大文字）
func NewID(now time.Time) string {
	u := uuid.New()
	suffix := strings.ToUpper(strings.ReplaceAll(u.String(), "-", "")[:6])
	return IDPrefix + strconv.FormatInt(now.UnixMilli(), 10) + suffix
}
