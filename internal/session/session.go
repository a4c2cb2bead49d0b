// internal/session/session.go
//
// Session state manager: the single owner of the mutable bingo session.
// Responsibilities:
//   - Card list, called numbers, active pattern, selected card, edit buffer.
//   - Recompute winners after every change to cards, called numbers or pattern.
//   - Persist the session through a store.KV after every state change.
//   - Notify subscribers (see events.go) once a change has been applied.
//
// Notes:
//   - Operations are synchronous. A mutex serialises callers (HTTP handlers
//     run concurrently); observers run after the lock is released.
//   - Persistence is best effort: a failed write is logged and the in-memory
//     state is kept. Writes ignore caller cancellation so an abandoned
//     request still leaves the store current.
//   - Every applied change bumps Snapshot.Version.

package session

import (
	"context"
	"errors"
	"sort"
	"strconv"
	"strings"
	"sync"

	"github.com/rs/zerolog/log"

	"github.com/06AleKey04/bingo/internal/game"
	"github.com/06AleKey04/bingo/internal/store"
)

var (
	ErrNegativeCount      = errors.New("card count must not be negative")
	ErrPositionOutOfRange = errors.New("position must be between 0 and 24")
	ErrNumberOutOfRange   = errors.New("number must be between 1 and 75")
	ErrCardNotFound       = errors.New("card not found")
	ErrNoCardSelected     = errors.New("no card selected")
)

// Manager holds the session state. Build one with Restore.
type Manager struct {
	mu    sync.Mutex
	kv    store.KV
	codec Codec

	cards    []game.Card
	called   game.Called
	pattern  game.Pattern
	selected int
	buffer   game.Slots
	unsaved  bool
	pending  string // card count as typed, not yet applied
	version  uint64

	// derived; replaced wholesale by recompute, never mutated in place
	current  []game.Winner
	blackout []game.Winner
	winners  []game.Winner

	obsMu     sync.Mutex
	observers []observer
}

// SetCardCount grows or shrinks the card list to n cards. New cards get the
// next card numbers and empty grids; shrinking drops the highest numbers.
// When the count changes and cards remain, card 0 becomes selected.
func (m *Manager) SetCardCount(ctx context.Context, n int) error {
	if n < 0 {
		return ErrNegativeCount
	}
	m.update(ctx, EventCards, func() bool {
		m.pending = strconv.Itoa(n)
		switch {
		case n > len(m.cards):
			for i := len(m.cards); i < n; i++ {
				m.cards = append(m.cards, game.Card{CardNumber: i + 1})
			}
		case n < len(m.cards):
			m.cards = m.cards[:n:n]
		default:
			return false
		}
		if len(m.cards) > 0 {
			m.loadBuffer(0)
		}
		return true
	})
	return nil
}

// SelectCard makes cards[index] the card under edit and reloads the buffer
// from its committed numbers, discarding unsaved edits. An index outside
// [0, CardCount) is ignored.
func (m *Manager) SelectCard(ctx context.Context, index int) {
	m.update(ctx, EventSelection, func() bool {
		if index < 0 || index >= len(m.cards) {
			return false
		}
		m.loadBuffer(index)
		return true
	})
}

// EditCell writes value (nil clears) into the edit buffer. The free cell is
// never written. Nothing is persisted until CommitEditBuffer.
func (m *Manager) EditCell(position int, value *int) error {
	if position < 0 || position >= game.CellCount {
		return ErrPositionOutOfRange
	}
	if position == game.FreeCell {
		return nil
	}
	m.mu.Lock()
	if value == nil {
		m.buffer.Clear(position)
	} else {
		m.buffer.Set(position, *value)
	}
	m.unsaved = true
	ev := m.eventLocked(EventBuffer)
	m.mu.Unlock()

	m.emit(ev)
	return nil
}

// SetCardID relabels the committed card with the given card number and
// persists immediately. The card list now differs from what the user last
// committed through the buffer, so the unsaved-changes flag is raised.
func (m *Manager) SetCardID(ctx context.Context, cardNumber int, id string) error {
	found := false
	m.update(ctx, EventCards, func() bool {
		for i := range m.cards {
			if m.cards[i].CardNumber == cardNumber {
				m.cards[i].CardID = id
				m.unsaved = true
				found = true
				return true
			}
		}
		return false
	})
	if !found {
		return ErrCardNotFound
	}
	return nil
}

// CommitEditBuffer validates the buffer and, when it is clean, writes it
// into the selected card with the free cell forced to 0. Validation errors
// are returned without touching the committed card.
func (m *Manager) CommitEditBuffer(ctx context.Context) ([]game.ValidationError, error) {
	var (
		errs     []game.ValidationError
		selected = true
	)
	m.update(ctx, EventCommitted, func() bool {
		if errs = game.Validate(m.buffer); len(errs) > 0 {
			return false
		}
		if m.selected < 0 || m.selected >= len(m.cards) {
			selected = false
			return false
		}
		m.buffer.Set(game.FreeCell, 0)
		m.cards[m.selected].Numbers = m.buffer.Clone()
		m.unsaved = false
		return true
	})
	if len(errs) > 0 {
		return errs, nil
	}
	if !selected {
		return nil, ErrNoCardSelected
	}
	return nil, nil
}

// ToggleCalledNumber marks n as called (on) or not called (off).
func (m *Manager) ToggleCalledNumber(ctx context.Context, n int, on bool) error {
	if game.ColumnFor(n) < 0 {
		return ErrNumberOutOfRange
	}
	m.update(ctx, EventCalled, func() bool {
		if on {
			m.called[n] = struct{}{}
		} else {
			delete(m.called, n)
		}
		return true
	})
	return nil
}

// ResetCalledNumbers clears every called number.
func (m *Manager) ResetCalledNumbers(ctx context.Context) {
	m.update(ctx, EventCalled, func() bool {
		m.called = game.NewCalled()
		return true
	})
}

// SetPattern changes the active pattern. name must be a catalog name.
func (m *Manager) SetPattern(ctx context.Context, name string) error {
	p, err := game.Get(name)
	if err != nil {
		return err
	}
	m.update(ctx, EventPattern, func() bool {
		m.pattern = p
		return true
	})
	return nil
}

// SetPendingCount records the card count as typed by the user without
// applying it. IsSynced reports whether it matches the current count.
func (m *Manager) SetPendingCount(text string) {
	m.mu.Lock()
	m.pending = strings.TrimSpace(text)
	ev := m.eventLocked(EventPending)
	m.mu.Unlock()
	m.emit(ev)
}

// SyncCardCount applies the pending count. Text that is not a
// non-negative integer is ignored.
func (m *Manager) SyncCardCount(ctx context.Context) error {
	m.mu.Lock()
	text := m.pending
	m.mu.Unlock()

	n, err := strconv.Atoi(text)
	if err != nil || n < 0 {
		return nil
	}
	return m.SetCardCount(ctx, n)
}

// Close persists the session one last time.
func (m *Manager) Close(ctx context.Context) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.persistLocked(ctx)
}

// ---------------------------------------------------------------------------
// Queries

// Winners returns the precomputed winner list: current-pattern winners
// followed by Blackout winners, unique per (card id, pattern).
func (m *Manager) Winners() []game.Winner {
	m.mu.Lock()
	defer m.mu.Unlock()
	return cloneWinners(m.winners)
}

// CurrentWinners returns the winners under the active pattern. Empty while
// the active pattern is Blackout.
func (m *Manager) CurrentWinners() []game.Winner {
	m.mu.Lock()
	defer m.mu.Unlock()
	return cloneWinners(m.current)
}

// BlackoutWinners returns the winners under the Blackout pattern.
func (m *Manager) BlackoutWinners() []game.Winner {
	m.mu.Lock()
	defer m.mu.Unlock()
	return cloneWinners(m.blackout)
}

// HasWonCurrent reports whether the card labelled id wins the active pattern.
func (m *Manager) HasWonCurrent(id string) bool { return hasCard(m.CurrentWinners(), id) }

// HasWonBlackout reports whether the card labelled id wins Blackout.
func (m *Manager) HasWonBlackout(id string) bool { return hasCard(m.BlackoutWinners(), id) }

func cloneWinners(ws []game.Winner) []game.Winner {
	out := make([]game.Winner, len(ws))
	for i, w := range ws {
		out[i] = game.Winner{Card: w.Card.Clone(), Pattern: w.Pattern}
	}
	return out
}

func hasCard(ws []game.Winner, id string) bool {
	for _, w := range ws {
		if w.Card.CardID == id {
			return true
		}
	}
	return false
}

// Snapshot returns a copy of the whole session state.
func (m *Manager) Snapshot() Snapshot {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.snapshotLocked()
}

// ---------------------------------------------------------------------------
// internals

// update runs fn under the lock. When fn reports a change the winners are
// recomputed, the session is persisted and an event of kind is emitted.
func (m *Manager) update(ctx context.Context, kind EventKind, fn func() bool) {
	m.mu.Lock()
	if !fn() {
		m.mu.Unlock()
		return
	}
	m.recompute()
	if err := m.persistLocked(context.WithoutCancel(ctx)); err != nil {
		log.Warn().Err(err).Str("event", string(kind)).Msg("persist session")
	}
	ev := m.eventLocked(kind)
	m.mu.Unlock()

	m.emit(ev)
}

// loadBuffer selects cards[i] and copies its numbers into the buffer.
func (m *Manager) loadBuffer(i int) {
	m.selected = i
	m.buffer = m.cards[i].Numbers.Clone()
	m.unsaved = false
}

// recompute refreshes the derived winner lists.
func (m *Manager) recompute() {
	if m.pattern.Name != game.Blackout {
		m.current = game.CheckAll(m.cards, m.called, m.pattern)
	} else {
		m.current = []game.Winner{}
	}
	blackout, _ := game.Get(game.Blackout)
	m.blackout = game.CheckAll(m.cards, m.called, blackout)

	seen := make(map[string]struct{}, len(m.current)+len(m.blackout))
	all := make([]game.Winner, 0, len(m.current)+len(m.blackout))
	for _, list := range [][]game.Winner{m.current, m.blackout} {
		for _, w := range list {
			key := w.Card.CardID + "\x00" + w.Pattern
			if _, dup := seen[key]; dup {
				continue
			}
			seen[key] = struct{}{}
			all = append(all, w)
		}
	}
	m.winners = all

	log.Debug().
		Str("pattern", m.pattern.Name).
		Int("cards", len(m.cards)).
		Int("called", len(m.called)).
		Int("current", len(m.current)).
		Int("blackout", len(m.blackout)).
		Msg("winners recomputed")
}

func (m *Manager) calledSorted() []int {
	out := make([]int, 0, len(m.called))
	for n := range m.called {
		out = append(out, n)
	}
	sort.Ints(out)
	return out
}

func (m *Manager) snapshotLocked() Snapshot {
	cards := make([]game.Card, len(m.cards))
	for i, c := range m.cards {
		cards[i] = c.Clone()
	}
	n, err := strconv.Atoi(m.pending)
	return Snapshot{
		Version:           m.version,
		CardCount:         len(m.cards),
		Cards:             cards,
		Called:            m.calledSorted(),
		Pattern:           m.pattern.Name,
		SelectedIndex:     m.selected,
		Buffer:            m.buffer.Clone(),
		HasUnsavedChanges: m.unsaved,
		PendingCount:      m.pending,
		Synced:            err == nil && n == len(m.cards),
		Winners:           cloneWinners(m.winners),
		CurrentWinners:    cloneWinners(m.current),
		BlackoutWinners:   cloneWinners(m.blackout),
	}
}

// Snapshot is a point-in-time copy of the session, safe to hand to other
// goroutines and to encode as JSON.
type Snapshot struct {
	Version           uint64        `json:"version"` // bumped by every applied change
	CardCount         int           `json:"cardCount"`
	Cards             []game.Card   `json:"cards"`
	Called            []int         `json:"called"`
	Pattern           string        `json:"pattern"`
	SelectedIndex     int           `json:"selectedIndex"`
	Buffer            game.Slots    `json:"buffer"`
	HasUnsavedChanges bool          `json:"hasUnsavedChanges"`
	PendingCount      string        `json:"pendingCount"`
	Synced            bool          `json:"synced"`
	Winners           []game.Winner `json:"winners"`
	CurrentWinners    []game.Winner `json:"currentWinners"`
	BlackoutWinners   []game.Winner `json:"blackoutWinners"`
}
