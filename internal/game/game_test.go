package game

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fullCard returns a valid card: column c, row r holds c*15 + r + 1.
func fullCard(number int) Card {
	var s Slots
	for col := 0; col < GridSize; col++ {
		for row := 0; row < GridSize; row++ {
			pos := Position(col, row)
			if pos == FreeCell {
				s.Set(pos, 0)
				continue
			}
			s.Set(pos, col*15+row+1)
		}
	}
	return Card{CardNumber: number, CardID: "card", Numbers: s}
}

// playable lists every value on c except the free cell.
func playable(c Card) []int {
	var out []int
	for pos := 0; pos < CellCount; pos++ {
		if pos == FreeCell {
			continue
		}
		if v, ok := c.Numbers.Get(pos); ok {
			out = append(out, v)
		}
	}
	return out
}

func TestPositionMapping(t *testing.T) {
	assert.Equal(t, FreeCell, Position(2, 2))
	assert.Equal(t, 0, Position(0, 0))
	assert.Equal(t, 4, Position(0, 4))
	assert.Equal(t, 5, Position(1, 0))
	assert.Equal(t, 24, Position(4, 4))
	assert.Equal(t, 3, ColumnOf(17))
	assert.Equal(t, 2, RowOf(17))
}

func TestColumnRanges(t *testing.T) {
	tests := []struct {
		col    int
		lo, hi int
	}{
		{0, 1, 15}, {1, 16, 30}, {2, 31, 45}, {3, 46, 60}, {4, 61, 75},
	}
	for _, tt := range tests {
		t.Run(Letters[tt.col], func(t *testing.T) {
			lo, hi := ColumnRange(tt.col)
			assert.Equal(t, tt.lo, lo)
			assert.Equal(t, tt.hi, hi)
			assert.Equal(t, tt.col, ColumnFor(tt.lo))
			assert.Equal(t, tt.col, ColumnFor(tt.hi))
		})
	}
	assert.Equal(t, -1, ColumnFor(0))
	assert.Equal(t, -1, ColumnFor(76))
	assert.Equal(t, "G52", Label(52))
}

func TestCatalog(t *testing.T) {
	all := All()
	require.Len(t, all, 8)
	assert.Equal(t, Tree, all[0].Name)
	assert.Equal(t, Blackout, all[len(all)-1].Name)

	for _, p := range all {
		got, err := Get(p.Name)
		require.NoError(t, err)
		assert.Equal(t, p, got)
	}

	_, err := Get("Letter-Z")
	assert.ErrorIs(t, err, ErrUnknownPattern)

	p, err := Lookup("DIAGONALS")
	require.NoError(t, err)
	assert.Equal(t, Diagonals, p.Name)

	p, err = Lookup("c")
	require.NoError(t, err)
	assert.Equal(t, LetterC, p.Name)

	_, err = Lookup("")
	assert.ErrorIs(t, err, ErrUnknownPattern)
}

func TestBlackoutRequiresEveryCell(t *testing.T) {
	p, err := Get(Blackout)
	require.NoError(t, err)
	for row := 0; row < GridSize; row++ {
		for col := 0; col < GridSize; col++ {
			assert.True(t, p.Required(row, col))
		}
	}
}

func TestIsWinnerMatchesDefinition(t *testing.T) {
	card := fullCard(1)
	for _, p := range All() {
		t.Run(p.Name, func(t *testing.T) {
			// Call exactly the required cells.
			called := NewCalled()
			for row := 0; row < GridSize; row++ {
				for col := 0; col < GridSize; col++ {
					pos := Position(col, row)
					if p.Required(row, col) && pos != FreeCell {
						v, _ := card.Numbers.Get(pos)
						called[v] = struct{}{}
					}
				}
			}
			assert.True(t, IsWinner(card, called, p))

			// Dropping any single required number breaks the win.
			required := make([]int, 0, len(called))
			for n := range called {
				required = append(required, n)
			}
			for _, n := range required {
				delete(called, n)
				assert.False(t, IsWinner(card, called, p), "missing %d", n)
				called[n] = struct{}{}
			}
		})
	}
}

func TestIsWinnerFreeCell(t *testing.T) {
	center := Pattern{Name: "center"}
	center.Mask[2][2] = 1

	var empty Card
	assert.True(t, IsWinner(empty, NewCalled(), center))

	card := fullCard(1)
	card.Numbers.Clear(FreeCell)
	assert.True(t, IsWinner(card, NewCalled(), center))
}

func TestIsWinnerEmptyMask(t *testing.T) {
	assert.True(t, IsWinner(Card{}, NewCalled(), Pattern{Name: "none"}))
}

func TestIsWinnerEmptyRequiredCell(t *testing.T) {
	card := fullCard(1)
	called := NewCalled(playable(card)...)
	card.Numbers.Clear(Position(4, 0))

	p, _ := Get(Blackout)
	assert.False(t, IsWinner(card, called, p))
}

func TestBlackoutFullCard(t *testing.T) {
	var s Slots
	s.Set(Position(0, 0), 5)
	s.Set(Position(1, 0), 20)
	s.Set(Position(2, 0), 35)
	s.Set(Position(3, 0), 50)
	s.Set(Position(4, 0), 65)
	s.Set(FreeCell, 0)
	card := Card{CardNumber: 1, Numbers: s}

	blackout, _ := Get(Blackout)
	assert.False(t, IsWinner(card, NewCalled(5, 20, 35, 50, 65), blackout))

	// Filling the rest of the card and calling every value makes it win.
	for col := 0; col < GridSize; col++ {
		for row := 1; row < GridSize; row++ {
			if pos := Position(col, row); pos != FreeCell {
				card.Numbers.Set(pos, col*15+row+10)
			}
		}
	}
	require.Empty(t, Validate(card.Numbers))
	called := NewCalled(playable(card)...)
	assert.Len(t, called, 24)
	assert.True(t, IsWinner(card, called, blackout))
}

func TestCheckAllKeepsOrder(t *testing.T) {
	a, b, c := fullCard(1), fullCard(2), fullCard(3)
	b.Numbers.Set(Position(0, 0), 9) // 9 is never called below
	b.Numbers.Set(Position(0, 4), 1)

	called := NewCalled(playable(a)...)
	p, _ := Get(LetterC)

	winners := CheckAll([]Card{c, b, a}, called, p)
	require.Len(t, winners, 2)
	assert.Equal(t, 3, winners[0].Card.CardNumber)
	assert.Equal(t, 1, winners[1].Card.CardNumber)
	assert.Equal(t, LetterC, winners[0].Pattern)

	assert.Empty(t, CheckAll(nil, called, p))
}

func TestValidateValidCard(t *testing.T) {
	assert.Empty(t, Validate(fullCard(1).Numbers))
}

func TestValidateEmptyCells(t *testing.T) {
	errs := Validate(Slots{})
	require.Len(t, errs, 24)
	for _, e := range errs {
		assert.Equal(t, EmptyCell, e.Kind)
		assert.NotEqual(t, FreeCell, e.Position)
	}
	// column-major order
	assert.Equal(t, 0, errs[0].Position)
	assert.Equal(t, 1, errs[1].Position)
	assert.Equal(t, 4, errs[4].Position)
	assert.Equal(t, 5, errs[5].Position)

	s := fullCard(1).Numbers
	s.Clear(7)
	errs = Validate(s)
	require.Len(t, errs, 1)
	assert.Equal(t, ValidationError{Kind: EmptyCell, Position: 7}, errs[0])
}

func TestValidateInvalidRange(t *testing.T) {
	s := fullCard(1).Numbers
	s.Set(Position(0, 1), 16) // I value in B column
	s.Set(Position(4, 3), 76)

	errs := Validate(s)
	require.Len(t, errs, 2)
	assert.Equal(t, ValidationError{Kind: InvalidRange, Position: 1, Value: 16}, errs[0])
	assert.Equal(t, ValidationError{Kind: InvalidRange, Position: 23, Value: 76}, errs[1])
	assert.Contains(t, errs[0].Error(), "outside 1-15")
}

func TestValidateDuplicates(t *testing.T) {
	s := fullCard(1).Numbers
	s.Set(Position(3, 0), 50)
	s.Set(Position(3, 4), 50)

	errs := Validate(s)
	require.Len(t, errs, 2)
	assert.Equal(t, ValidationError{Kind: DuplicateValue, Position: 15, Value: 50}, errs[0])
	assert.Equal(t, ValidationError{Kind: DuplicateValue, Position: 19, Value: 50}, errs[1])
}

func TestValidateRangeAndDuplicateOnSameCell(t *testing.T) {
	s := fullCard(1).Numbers
	s.Set(Position(1, 0), 3)
	s.Set(Position(1, 1), 3)

	errs := Validate(s)
	require.Len(t, errs, 4)
	assert.Equal(t, []ValidationError{
		{Kind: InvalidRange, Position: 5, Value: 3},
		{Kind: DuplicateValue, Position: 5, Value: 3},
		{Kind: InvalidRange, Position: 6, Value: 3},
		{Kind: DuplicateValue, Position: 6, Value: 3},
	}, errs)
}

func TestValidateIgnoresFreeCell(t *testing.T) {
	s := fullCard(1).Numbers
	s.Set(FreeCell, 31) // same as N row 0
	assert.Empty(t, Validate(s))
	s.Clear(FreeCell)
	assert.Empty(t, Validate(s))
}

func TestSlotsCloneIsDeep(t *testing.T) {
	s := fullCard(1).Numbers
	c := s.Clone()
	*c[0] = 99
	v, _ := s.Get(0)
	assert.Equal(t, 1, v)

	// readable straight off a returned value
	v, ok := s.Clone().Get(0)
	assert.True(t, ok)
	assert.Equal(t, 1, v)
}
