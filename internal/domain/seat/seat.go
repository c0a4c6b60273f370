package seat

import "context"

// Seat は上映回の座席マップ上の1席を表す
type Seat struct {
	ID       string
	Row      string
	Number   int
	Category Category
	Price    int
}

// Map は上映回ごとの座席マップ（読み取り専用）
type Map struct {
	ShowtimeID string
	BasePrice  int
	seats      []Seat
	index      map[string]int
}

// NewMap は基本料金とレイアウトから座席マップを作成する
func NewMap(showtimeID string, basePrice int, layout Layout) *Map {
	m := &Map{
		ShowtimeID: showtimeID,
		BasePrice:  basePrice,
		seats:      make([]Seat, 0, layout.Capacity()),
		index:      make(map[string]int, layout.Capacity()),
	}
	for _, sec := range layout.Sections {
		for _, row := range sec.Rows {
			for n := 1; n <= sec.SeatsPerRow; n++ {
				s := Seat{
					ID:       ID(row, n),
					Row:      row,
					Number:   n,
					Category: sec.Category,
					Price:    basePrice + sec.Surcharge,
				}
				m.index[s.ID] = len(m.seats)
				m.seats = append(m.seats, s)
			}
		}
	}
	return m
}

// Seats はレイアウト順の全座席を返す
func (m *Map) Seats() []Seat {
	out := make([]Seat, len(m.seats))
	copy(out, m.seats)
	return out
}

// Len は座席数を返す
func (m *Map) Len() int { return len(m.seats) }

// Seat はIDから座席を取得する
func (m *Map) Seat(id string) (Seat, error) {
	i, ok := m.index[id]
	if !ok {
		return Seat{}, ErrSeatNotFound
	}
	return m.seats[i], nil
}

// Quote は選択座席の明細と小計を返す
// 存在しない座席や重複指定はエラー
func (m *Map) Quote(ids []string) ([]Seat, int, error) {
	if len(ids) == 0 {
		return nil, 0, ErrNoSeatsSelected
	}
	seen := make(map[string]struct{}, len(ids))
	lines := make([]Seat, 0, len(ids))
	subtotal := 0
	for _, id := range ids {
		if _, dup := seen[id]; dup {
			return nil, 0, ErrDuplicateSeat
		}
		seen[id] = struct{}{}
		s, err := m.Seat(id)
		if err != nil {
			return nil, 0, &NotFoundError{SeatID: id}
		}
		lines = append(lines, s)
		subtotal += s.Price
	}
	return lines, subtotal, nil
}

// Provider は上映回の座席マップを提供する
type Provider interface {
	SeatMap(ctx context.Context, showtimeID string) (*Map, error)
}
