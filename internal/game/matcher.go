// internal/game/matcher.go
//
// Win matcher: decides whether a card satisfies a pattern under a set of
// called numbers. Pure functions; safe to call concurrently.

package game

// Called is the set of numbers marked as called.
type Called map[int]struct{}

// NewCalled builds a Called set from a list of numbers.
func NewCalled(nums ...int) Called {
	c := make(Called, len(nums))
	for _, n := range nums {
		c[n] = struct{}{}
	}
	return c
}

// Has reports whether n has been called.
func (c Called) Has(n int) bool {
	_, ok := c[n]
	return ok
}

// IsWinner reports whether every required cell of p maps to a filled card
// value present in called. The free cell is always satisfied. A mask with no
// required cells wins for every card.
func IsWinner(card Card, called Called, p Pattern) bool {
	for row := 0; row < GridSize; row++ {
		for col := 0; col < GridSize; col++ {
			if !p.Required(row, col) {
				continue
			}
			pos := Position(col, row)
			if pos == FreeCell {
				continue
			}
			v, ok := card.Numbers.Get(pos)
			if !ok || !called.Has(v) {
				return false
			}
		}
	}
	return true
}

// CheckAll returns a winner record for each card satisfying p, in input order.
func CheckAll(cards []Card, called Called, p Pattern) []Winner {
	out := make([]Winner, 0)
	for _, c := range cards {
		if IsWinner(c, called, p) {
			out = append(out, Winner{Card: c.Clone(), Pattern: p.Name})
		}
	}
	return out
}
