// internal/game/types.go
//
// Core type definitions for bingo cards.
// Defines:
//   - Slots: the 25 optional numbers of a card, addressed by position.
//   - Card: a committed, user-registered card.
//   - Winner: a card that satisfies a pattern under the called numbers.
//
// Positions are column-major: position = column*5 + row, with column 0..4
// mapping to the letters B, I, N, G, O. Position 12 is the free cell.

package game

import "fmt"

const (
	GridSize  = 5
	CellCount = GridSize * GridSize

	// FreeCell is the center of the grid (column N, row 2).
	FreeCell = 12

	MinNumber = 1
	MaxNumber = 75
)

// Letters holds the column headers in column order.
var Letters = [GridSize]string{"B", "I", "N", "G", "O"}

// Position converts a (column, row) pair into a linear cell index.
func Position(column, row int) int { return column*GridSize + row }

// ColumnOf returns the column (0..4) a position belongs to.
func ColumnOf(position int) int { return position / GridSize }

// RowOf returns the row (0..4) a position belongs to.
func RowOf(position int) int { return position % GridSize }

// ColumnRange returns the inclusive number range allowed in a column:
// B 1-15, I 16-30, N 31-45, G 46-60, O 61-75.
func ColumnRange(column int) (lo, hi int) {
	lo = column*15 + 1
	return lo, lo + 14
}

// ColumnFor returns the column a called number belongs to, or -1 when the
// number is outside 1..75.
func ColumnFor(n int) int {
	if n < MinNumber || n > MaxNumber {
		return -1
	}
	return (n - 1) / 15
}

// Label renders a number the way a caller announces it ("B7", "O64").
func Label(n int) string {
	c := ColumnFor(n)
	if c < 0 {
		return fmt.Sprint(n)
	}
	return fmt.Sprintf("%s%d", Letters[c], n)
}

// Slots holds one optional number per position. A nil entry is an empty
// cell. Serialises as a JSON array of 25 numbers or nulls.
type Slots [CellCount]*int

// Num returns a pointer to v, for building Slots literals.
func Num(v int) *int { return &v }

// Get returns the value at position and whether the slot is filled.
func (s Slots) Get(position int) (int, bool) {
	if s[position] == nil {
		return 0, false
	}
	return *s[position], true
}

// Set fills the slot at position with v.
func (s *Slots) Set(position, v int) { s[position] = Num(v) }

// Clear empties the slot at position.
func (s *Slots) Clear(position int) { s[position] = nil }

// Clone returns a deep copy so callers never share slot pointers.
func (s Slots) Clone() Slots {
	var out Slots
	for i, p := range s {
		if p != nil {
			out[i] = Num(*p)
		}
	}
	return out
}

// Card is a physical card registered by the user.
type Card struct {
	CardNumber int    `json:"cardNumber"` // 1-based, assigned in creation order
	CardID     string `json:"cardId"`     // user label, mutable
	Numbers    Slots  `json:"numbers"`
}

// Clone returns a copy of c with its own slots.
func (c Card) Clone() Card {
	c.Numbers = c.Numbers.Clone()
	return c
}

// Winner pairs a card with the pattern it satisfies.
type Winner struct {
	Card    Card   `json:"card"`
	Pattern string `json:"pattern"`
}
