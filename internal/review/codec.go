package review

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/go-playground/validator/v10"
)

var validate = validator.New(validator.WithRequiredStructEnabled())

// Encode serialises the persisted fields of a session.
func Encode(s Session) (string, error) {
	data, err := json.Marshal(s)
	if err != nil {
		return "", fmt.Errorf("failed to encode session: %w", err)
	}
	return string(data), nil
}

// Decode parses a stored or exported snapshot. It reports false for absent,
// malformed or inconsistent text; callers treat that the same as having no
// snapshot at all.
func Decode(text string) (Session, bool) {
	if strings.TrimSpace(text) == "" {
		return Session{}, false
	}
	var s Session
	if err := json.Unmarshal([]byte(text), &s); err != nil {
		return Session{}, false
	}
	if err := s.Validate(); err != nil {
		return Session{}, false
	}
	return s, true
}

// Validate checks the session invariants: every card id equals its deck
// position, the order is a permutation of those ids, and the cursor indexes
// the order.
func (s *Session) Validate() error {
	if err := validate.Struct(s); err != nil {
		return fmt.Errorf("invalid session: %w", err)
	}
	for i, c := range s.Deck {
		if c.ID != i {
			return fmt.Errorf("invalid session: card at position %d has id %d", i, c.ID)
		}
		if !c.Status.Valid() {
			return fmt.Errorf("invalid session: card %d has status %v", i, c.Status)
		}
	}
	if len(s.Order) != len(s.Deck) {
		return fmt.Errorf("invalid session: order has %d ids for %d cards", len(s.Order), len(s.Deck))
	}
	seen := make([]bool, len(s.Deck))
	for _, id := range s.Order {
		if id < 0 || id >= len(s.Deck) || seen[id] {
			return fmt.Errorf("invalid session: order is not a permutation of the deck")
		}
		seen[id] = true
	}
	if s.Cursor >= len(s.Order) {
		return fmt.Errorf("invalid session: cursor %d out of range", s.Cursor)
	}
	return nil
}
