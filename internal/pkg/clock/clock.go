package clock

import (
	"sync"
	"time"
)

// Clock は現在時刻を返すインターフェース
// 保留の有効期限判定をテストで制御できるようにするための抽象化
type Clock interface {
	Now() time.Time
}

// System は実時間を返す Clock
type System struct{}

// Now は現在時刻を返す
func (System) Now() time.Time { return time.Now() }

// Manual は手動で進める Clock（テスト用）
type Manual struct {
	mu  sync.Mutex
	now time.Time
}

// NewManual は指定時刻から始まる Manual を作成する
func NewManual(start time.Time) *Manual {
	return &Manual{now: start}
}

// Now は現在の時刻を返す
func (m *Manual) Now() time.Time {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.now
}

// Advance は時刻を d だけ進める
func (m *Manual) Advance(d time.Duration) {
	m.mu.Lock()
	m.now = m.now.Add(d)
	m.mu.Unlock()
}

// Set は時刻を t に設定する
func (m *Manual) Set(t time.Time) {
	m.mu.Lock()
	m.now = t
	m.mu.Unlock()
}
