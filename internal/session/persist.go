// internal/session/persist.go
//
// Session persistence.
//   - Store key names, one per persisted field.
//   - Codec for the card list and the called set (JSONCodec by default).
//   - Restore: rebuild a Manager from a store.KV, tolerating bad values.
//   - persistLocked: write the whole session in one batch.

package session

import (
	"context"
	"encoding/json"
	"fmt"
	"sort"
	"strconv"

	"github.com/rs/zerolog/log"

	"github.com/06AleKey04/bingo/internal/game"
	"github.com/06AleKey04/bingo/internal/store"
)

// Persisted field names, one store key each.
const (
	KeyNumberCards       = "numberCards"
	KeyBingoCards        = "bingoCards"
	KeySelectedNumbers   = "selectedNumbers"
	KeyGameMode          = "gameMode"
	KeySelectedCardIndex = "selectedCardIndex"
)

// Codec turns the card list and the called set into strings and back.
type Codec interface {
	EncodeCards(cards []game.Card) (string, error)
	DecodeCards(s string) ([]game.Card, error)
	EncodeCalled(called game.Called) (string, error)
	DecodeCalled(s string) (game.Called, error)
}

// JSONCodec stores cards as {cardNumber, cardId, numbers[25]} objects and
// the called set as a sorted JSON array.
type JSONCodec struct{}

func (JSONCodec) EncodeCards(cards []game.Card) (string, error) {
	if cards == nil {
		cards = []game.Card{}
	}
	b, err := json.Marshal(cards)
	return string(b), err
}

func (JSONCodec) DecodeCards(s string) ([]game.Card, error) {
	var cards []game.Card
	if err := json.Unmarshal([]byte(s), &cards); err != nil {
		return nil, err
	}
	return cards, nil
}

func (JSONCodec) EncodeCalled(called game.Called) (string, error) {
	nums := make([]int, 0, len(called))
	for n := range called {
		nums = append(nums, n)
	}
	sort.Ints(nums)
	b, err := json.Marshal(nums)
	return string(b), err
}

func (JSONCodec) DecodeCalled(s string) (game.Called, error) {
	var nums []int
	if err := json.Unmarshal([]byte(s), &nums); err != nil {
		return nil, err
	}
	return game.NewCalled(nums...), nil
}

// Restore builds a Manager from whatever kv holds. Absent keys fall back to
// an empty session with the default pattern; unreadable values are logged
// and replaced by their defaults. Only storage read errors are returned.
func Restore(ctx context.Context, kv store.KV, codec Codec) (*Manager, error) {
	if codec == nil {
		codec = JSONCodec{}
	}
	def, _ := game.Get(game.DefaultPattern)
	m := &Manager{
		kv:      kv,
		codec:   codec,
		called:  game.NewCalled(),
		pattern: def,
	}

	count, _, err := kv.GetInt(ctx, KeyNumberCards)
	if err != nil {
		return nil, fmt.Errorf("restore %s: %w", KeyNumberCards, err)
	}
	m.pending = strconv.Itoa(count)

	if s, ok, err := kv.GetString(ctx, KeyBingoCards); err != nil {
		return nil, fmt.Errorf("restore %s: %w", KeyBingoCards, err)
	} else if ok {
		cards, err := codec.DecodeCards(s)
		if err != nil {
			log.Warn().Err(err).Str("key", KeyBingoCards).Msg("discarding unreadable cards")
		} else {
			m.cards = cards
		}
	}
	if count != len(m.cards) {
		log.Debug().Int("stored", count).Int("cards", len(m.cards)).Msg("card count differs from card list")
	}

	if s, ok, err := kv.GetString(ctx, KeySelectedNumbers); err != nil {
		return nil, fmt.Errorf("restore %s: %w", KeySelectedNumbers, err)
	} else if ok {
		called, err := codec.DecodeCalled(s)
		if err != nil {
			log.Warn().Err(err).Str("key", KeySelectedNumbers).Msg("discarding unreadable called numbers")
		} else {
			for n := range called {
				if game.ColumnFor(n) < 0 {
					log.Warn().Int("number", n).Msg("dropping called number out of range")
					delete(called, n)
				}
			}
			m.called = called
		}
	}

	if s, ok, err := kv.GetString(ctx, KeyGameMode); err != nil {
		return nil, fmt.Errorf("restore %s: %w", KeyGameMode, err)
	} else if ok {
		p, err := game.Lookup(s)
		if err != nil {
			log.Warn().Str("pattern", s).Msg("unknown stored pattern, using default")
		} else {
			m.pattern = p
		}
	}

	idx, _, err := kv.GetInt(ctx, KeySelectedCardIndex)
	if err != nil {
		return nil, fmt.Errorf("restore %s: %w", KeySelectedCardIndex, err)
	}
	switch {
	case idx >= 0 && idx < len(m.cards):
		m.loadBuffer(idx)
	case len(m.cards) > 0:
		log.Warn().Int("index", idx).Msg("stored card index out of range, selecting first card")
		m.loadBuffer(0)
	}

	m.recompute()
	log.Info().
		Int("cards", len(m.cards)).
		Int("called", len(m.called)).
		Str("pattern", m.pattern.Name).
		Msg("session restored")
	return m, nil
}

// persistLocked writes the whole session in one batch. Caller holds m.mu.
func (m *Manager) persistLocked(ctx context.Context) error {
	cards, err := m.codec.EncodeCards(m.cards)
	if err != nil {
		return fmt.Errorf("encode cards: %w", err)
	}
	called, err := m.codec.EncodeCalled(m.called)
	if err != nil {
		return fmt.Errorf("encode called numbers: %w", err)
	}
	return m.kv.Edit().
		PutInt(KeyNumberCards, len(m.cards)).
		PutString(KeyBingoCards, cards).
		PutString(KeySelectedNumbers, called).
		PutString(KeyGameMode, m.pattern.Name).
		PutInt(KeySelectedCardIndex, m.selected).
		Apply(ctx)
}
