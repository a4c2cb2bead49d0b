// internal/game/patterns.go
//
// Pattern catalog: the fixed set of named win shapes.
// A mask is indexed mask[row][column]; a 1 means the cell must be marked.
// Patterns are package-level data and are never mutated.

package game

import (
	"errors"
	"strings"
)

// ErrUnknownPattern is returned when a name is not in the catalog.
var ErrUnknownPattern = errors.New("unknown pattern")

// Mask is a 5x5 grid of required cells, indexed [row][column].
type Mask [GridSize][GridSize]uint8

// Pattern is a named win shape.
type Pattern struct {
	Name  string `json:"name"`
	Label string `json:"label"`
	Mask  Mask   `json:"mask"`
}

// Required reports whether the cell at (row, column) must be marked.
func (p Pattern) Required(row, column int) bool { return p.Mask[row][column] == 1 }

const (
	Tree       = "Tree"
	LetterO    = "Letter-O"
	Chessboard = "Chessboard"
	LetterC    = "Letter-C"
	LetterM    = "Letter-M"
	Diamond    = "Diamond"
	Diagonals  = "Diagonals"
	Blackout   = "Blackout"

	// DefaultPattern is active when nothing was persisted.
	DefaultPattern = LetterC
)

// order is the enumeration order used by All (selection lists).
var order = []string{Tree, LetterO, Chessboard, LetterC, LetterM, Diamond, Diagonals, Blackout}

var catalog = map[string]Pattern{
	Tree: {Tree, "Árbol", Mask{
		{0, 0, 1, 0, 0},
		{0, 1, 1, 1, 0},
		{1, 1, 1, 1, 1},
		{0, 0, 1, 0, 0},
		{0, 0, 1, 0, 0},
	}},
	LetterO: {LetterO, "Letra O", Mask{
		{0, 1, 1, 1, 0},
		{1, 0, 0, 0, 1},
		{1, 0, 0, 0, 1},
		{1, 0, 0, 0, 1},
		{0, 1, 1, 1, 0},
	}},
	Chessboard: {Chessboard, "Ajedrez", Mask{
		{1, 0, 1, 0, 1},
		{0, 1, 0, 1, 0},
		{1, 0, 1, 0, 1},
		{0, 1, 0, 1, 0},
		{1, 0, 1, 0, 1},
	}},
	LetterC: {LetterC, "Letra C", Mask{
		{1, 1, 1, 1, 1},
		{1, 0, 0, 0, 0},
		{1, 0, 0, 0, 0},
		{1, 0, 0, 0, 0},
		{1, 1, 1, 1, 1},
	}},
	LetterM: {LetterM, "Letra M", Mask{
		{1, 1, 1, 1, 1},
		{0, 1, 0, 0, 0},
		{0, 0, 1, 0, 0},
		{0, 1, 0, 0, 0},
		{1, 1, 1, 1, 1},
	}},
	Diamond: {Diamond, "Diamante", Mask{
		{0, 0, 1, 0, 0},
		{0, 1, 0, 1, 0},
		{1, 0, 1, 0, 1},
		{0, 1, 0, 1, 0},
		{0, 0, 1, 0, 0},
	}},
	Diagonals: {Diagonals, "Diagonales", Mask{
		{1, 0, 0, 0, 1},
		{0, 1, 0, 1, 0},
		{0, 0, 1, 0, 0},
		{0, 1, 0, 1, 0},
		{1, 0, 0, 0, 1},
	}},
	Blackout: {Blackout, "Apagón", Mask{
		{1, 1, 1, 1, 1},
		{1, 1, 1, 1, 1},
		{1, 1, 1, 1, 1},
		{1, 1, 1, 1, 1},
		{1, 1, 1, 1, 1},
	}},
}

// legacy maps identifiers written by older clients onto catalog names.
var legacy = map[string]string{
	"TREE":      Tree,
	"O":         LetterO,
	"CHESS":     Chessboard,
	"C":         LetterC,
	"M":         LetterM,
	"DIAMOND":   Diamond,
	"DIAGONALS": Diagonals,
	"BLACKOUT":  Blackout,
}

// Get returns the pattern registered under name.
func Get(name string) (Pattern, error) {
	p, ok := catalog[name]
	if !ok {
		return Pattern{}, ErrUnknownPattern
	}
	return p, nil
}

// Lookup resolves a catalog name or a legacy identifier.
func Lookup(name string) (Pattern, error) {
	name = strings.TrimSpace(name)
	if p, err := Get(name); err == nil {
		return p, nil
	}
	if canon, ok := legacy[strings.ToUpper(name)]; ok {
		return catalog[canon], nil
	}
	return Pattern{}, ErrUnknownPattern
}

// All returns every pattern in selection-list order.
func All() []Pattern {
	out := make([]Pattern, 0, len(order))
	for _, name := range order {
		out = append(out, catalog[name])
	}
	return out
}
