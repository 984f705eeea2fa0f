package review

import (
	"errors"
	"math"
	"time"

	"github.com/conorfennell/flashreview/internal/domain"
)

var (
	ErrInvalidOutcome = errors.New("review: outcome must be known or unknown")
	ErrEmptyDeck      = errors.New("review: source deck is empty")
)

// Session is the persisted review state: the deck, the traversal order over
// card ids, and the cursor into that order.
type Session struct {
	Deck   []domain.Card `json:"deck" validate:"required,min=1,dive"`
	Order  []int         `json:"order" validate:"required,min=1,unique,dive,gte=0"`
	Cursor int           `json:"cursor" validate:"gte=0"`
}

// Stats summarises review progress over the whole deck.
type Stats struct {
	Known           int `json:"known"`
	Unknown         int `json:"unknown"`
	Reviewed        int `json:"reviewed"`
	Total           int `json:"total"`
	PercentComplete int `json:"percentComplete"`
}

// Export is the blob handed to the export collaborator.
type Export struct {
	Deck       []domain.Card `json:"deck"`
	Order      []int         `json:"order"`
	Cursor     int           `json:"cursor"`
	ExportedAt time.Time     `json:"exportedAt"`
}

// RNG is the source of randomness for shuffling. *rand.Rand from
// math/rand/v2 satisfies it.
type RNG interface {
	IntN(n int) int
}

// Initialize returns the session to review source with. A snapshot is adopted
// unchanged when its deck has as many cards as source; otherwise a fresh
// session is built and rebuilt is true.
func Initialize(source []domain.Pair, snapshot *Session) (s Session, rebuilt bool) {
	if snapshot != nil && len(snapshot.Deck) == len(source) {
		return *snapshot, false
	}
	return fresh(source), true
}

func fresh(source []domain.Pair) Session {
	deck := make([]domain.Card, len(source))
	for i, p := range source {
		deck[i] = domain.NewCard(i, p)
	}
	return Session{
		Deck:   deck,
		Order:  identity(len(source)),
		Cursor: 0,
	}
}

func identity(n int) []int {
	order := make([]int, n)
	for i := range order {
		order[i] = i
	}
	return order
}

// Current returns the card under the cursor.
func (s *Session) Current() domain.Card {
	return s.Deck[s.Order[s.Cursor]]
}

// Advance moves the cursor by delta positions, wrapping in both directions.
func (s *Session) Advance(delta int) {
	n := len(s.Order)
	s.Cursor = ((s.Cursor+delta)%n + n) % n
}

// Mark records outcome on the current card, replacing any earlier mark.
func (s *Session) Mark(outcome domain.Status) error {
	if !outcome.Outcome() {
		return ErrInvalidOutcome
	}
	s.Deck[s.Order[s.Cursor]].Status = outcome
	return nil
}

// Shuffle permutes the review order uniformly and rewinds the cursor.
func (s *Session) Shuffle(rng RNG) {
	order := append([]int(nil), s.Order...)
	for i := len(order) - 1; i > 0; i-- {
		j := rng.IntN(i + 1)
		order[i], order[j] = order[j], order[i]
	}
	s.Order = order
	s.Cursor = 0
}

// Reset clears every status and restores the identity order over source.
func (s *Session) Reset(source []domain.Pair) {
	for i := range s.Deck {
		s.Deck[i].Status = domain.Unset
	}
	s.Order = identity(len(source))
	s.Cursor = 0
}

// Stats aggregates statuses over the deck.
func (s *Session) Stats() Stats {
	var st Stats
	for _, c := range s.Deck {
		switch c.Status {
		case domain.Known:
			st.Known++
		case domain.Unknown:
			st.Unknown++
		}
	}
	st.Reviewed = st.Known + st.Unknown
	st.Total = len(s.Deck)
	if st.Total > 0 {
		st.PercentComplete = int(math.Round(100 * float64(st.Reviewed) / float64(st.Total)))
	}
	return st
}

// Export copies the session into an export blob stamped with now.
func (s *Session) Export(now time.Time) Export {
	c := s.Clone()
	return Export{
		Deck:       c.Deck,
		Order:      c.Order,
		Cursor:     c.Cursor,
		ExportedAt: now,
	}
}

// Clone returns a copy that shares no slices with s.
func (s Session) Clone() Session {
	return Session{
		Deck:   append([]domain.Card(nil), s.Deck...),
		Order:  append([]int(nil), s.Order...),
		Cursor: s.Cursor,
	}
}
