// internal/game/validator.go
//
// Card validator: checks an edit buffer before it is committed to a card.
// Every problem is reported; nothing short-circuits except that an empty
// slot skips the range and duplicate checks for that slot.

package game

import "fmt"

// ErrorKind classifies a validation problem.
type ErrorKind string

const (
	EmptyCell      ErrorKind = "empty_cell"
	InvalidRange   ErrorKind = "invalid_range"
	DuplicateValue ErrorKind = "duplicate_value"
)

// ValidationError describes one problem at one position.
// Value is zero for EmptyCell.
type ValidationError struct {
	Kind     ErrorKind `json:"kind"`
	Position int       `json:"position"`
	Value    int       `json:"value,omitempty"`
}

func (e ValidationError) Error() string {
	cell := fmt.Sprintf("%s%d", Letters[ColumnOf(e.Position)], RowOf(e.Position)+1)
	switch e.Kind {
	case EmptyCell:
		return fmt.Sprintf("cell %s is empty", cell)
	case InvalidRange:
		lo, hi := ColumnRange(ColumnOf(e.Position))
		return fmt.Sprintf("cell %s: %d is outside %d-%d", cell, e.Value, lo, hi)
	case DuplicateValue:
		return fmt.Sprintf("cell %s: %d is repeated in column %s", cell, e.Value, Letters[ColumnOf(e.Position)])
	}
	return string(e.Kind)
}

// Validate checks every playable position in column-major order.
// An empty result means the buffer can be committed.
func Validate(buf Slots) []ValidationError {
	var errs []ValidationError
	for col := 0; col < GridSize; col++ {
		lo, hi := ColumnRange(col)
		for row := 0; row < GridSize; row++ {
			pos := Position(col, row)
			if pos == FreeCell {
				continue
			}
			v, ok := buf.Get(pos)
			if !ok {
				errs = append(errs, ValidationError{Kind: EmptyCell, Position: pos})
				continue
			}
			if v < lo || v > hi {
				errs = append(errs, ValidationError{Kind: InvalidRange, Position: pos, Value: v})
			}
			if repeatedInColumn(&buf, col, pos, v) {
				errs = append(errs, ValidationError{Kind: DuplicateValue, Position: pos, Value: v})
			}
		}
	}
	return errs
}

// repeatedInColumn reports whether v appears in another slot of col,
// ignoring the free cell and pos itself.
func repeatedInColumn(buf *Slots, col, pos, v int) bool {
	for row := 0; row < GridSize; row++ {
		other := Position(col, row)
		if other == pos || other == FreeCell {
			continue
		}
		if w, ok := buf.Get(other); ok && w == v {
			return true
		}
	}
	return false
}
