package seat

import (
	"strconv"
	"strings"
	"unicode"
)

// Category は座席種別を表す（料金に影響する）
type Category string

const (
	CategoryRegular  Category = "regular"
	CategoryPremium  Category = "premium"
	CategoryRecliner Category = "recliner"
)

// Section は同じ種別の連続した列の集まり
type Section struct {
	Category    Category
	Rows        []string
	SeatsPerRow int
	Surcharge   int // 基本料金への加算額
}

// Layout は劇場の座席配置
type Layout struct {
	Sections []Section
}

// DefaultLayout は標準的なスクリーンの座席配置を返す
func DefaultLayout() Layout {
	return Layout{Sections: []Section{
		{Category: CategoryRegular, Rows: []string{"A", "B", "C", "D", "E"}, SeatsPerRow: 12, Surcharge: 0},
		{Category: CategoryPremium, Rows: []string{"F", "G", "H"}, SeatsPerRow: 10, Surcharge: 100},
		{Category: CategoryRecliner, Rows: []string{"I", "J"}, SeatsPerRow: 8, Surcharge: 200},
	}}
}

// Capacity は座席の総数を返す
func (l Layout) Capacity() int {
	total := 0
	for _, sec := range l.Sections {
		total += len(sec.Rows) * sec.SeatsPerRow
	}
	return total
}

// Validate はレイアウトの検証を行う
func (l Layout) Validate() error {
	if len(l.Sections) == 0 {
		return ErrEmptyLayout
	}
	seen := make(map[string]struct{})
	for _, sec := range l.Sections {
		if sec.SeatsPerRow <= 0 || len(sec.Rows) == 0 {
			return ErrEmptyLayout
		}
		if sec.Surcharge < 0 {
			return ErrInvalidPrice
		}
		for _, row := range sec.Rows {
			if _, dup := seen[row]; dup {
				return ErrDuplicateRow
			}
			seen[row] = struct{}{}
		}
	}
	return nil
}

// Lookup は座席IDの列からセクションを求める
func (l Layout) Lookup(seatID string) (Section, error) {
	row, number, ok := parseSeatID(seatID)
	if !ok {
		return Section{}, ErrSeatNotFound
	}
	for _, sec := range l.Sections {
		for _, r := range sec.Rows {
			if r != row {
				continue
			}
			if number < 1 || number > sec.SeatsPerRow {
				return Section{}, ErrSeatNotFound
			}
			return sec, nil
		}
	}
	return Section{}, ErrSeatNotFound
}

// parseSeatID は "A12" を ("A", 12) に分解する
func parseSeatID(id string) (string, int, bool) {
	i := strings.IndexFunc(id, unicode.IsDigit)
	if i <= 0 {
		return "", 0, false
	}
	n, err := strconv.Atoi(id[i:])
	if err != nil {
		return "", 0, false
	}
	return id[:i], n, true
}

// ID は列と番号から座席IDを組み立てる
func ID(row string, number int) string {
	return row + strconv.Itoa(number)
}
