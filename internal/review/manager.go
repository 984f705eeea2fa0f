package review

import (
	"log/slog"
	"time"

	"github.com/conorfennell/flashreview/internal/domain"
)

// DefaultStorageKey is the store key the session is persisted under.
const DefaultStorageKey = "flash_deck_progress_v1"

// Store is the key-value blob store sessions are persisted to.
type Store interface {
	Get(key string) (value string, ok bool, err error)
	Set(key, value string) error
}

// Manager owns the single review session. Every mutating call persists the
// session; persistence failures are logged and otherwise ignored, leaving the
// in-memory session authoritative.
type Manager struct {
	source   []domain.Pair
	store    Store
	key      string
	logger   *slog.Logger
	now      func() time.Time
	session  Session
	revealed bool
}

// Option configures a Manager.
type Option func(*Manager)

// WithKey overrides DefaultStorageKey.
func WithKey(key string) Option {
	return func(m *Manager) { m.key = key }
}

// WithLogger sets the logger used for persistence warnings.
func WithLogger(l *slog.Logger) Option {
	return func(m *Manager) { m.logger = l }
}

// WithClock sets the clock used to stamp exports.
func WithClock(now func() time.Time) Option {
	return func(m *Manager) { m.now = now }
}

// NewManager restores the session for source from store, or starts a fresh
// one. It fails only when source is empty.
func NewManager(source []domain.Pair, store Store, opts ...Option) (*Manager, error) {
	if len(source) == 0 {
		return nil, ErrEmptyDeck
	}
	m := &Manager{
		source: append([]domain.Pair(nil), source...),
		store:  store,
		key:    DefaultStorageKey,
		logger: slog.Default(),
		now:    time.Now,
	}
	for _, opt := range opts {
		opt(m)
	}
	m.load()
	return m, nil
}

func (m *Manager) load() {
	var snapshot *Session
	raw, ok, err := m.store.Get(m.key)
	switch {
	case err != nil:
		m.logger.Warn("Failed to read stored session, starting fresh", "key", m.key, "error", err)
	case ok:
		if s, valid := Decode(raw); valid {
			snapshot = &s
		} else {
			m.logger.Warn("Stored session is malformed, starting fresh", "key", m.key)
		}
	}

	s, rebuilt := Initialize(m.source, snapshot)
	m.session = s
	if rebuilt {
		if snapshot != nil {
			m.logger.Info("Deck size changed, rebuilding session",
				"stored_cards", len(snapshot.Deck),
				"source_cards", len(m.source),
			)
		}
		m.persist()
		return
	}
	m.logger.Info("Session restored", "key", m.key, "cursor", s.Cursor)
}

func (m *Manager) persist() {
	text, err := Encode(m.session)
	if err != nil {
		m.logger.Warn("Failed to encode session", "error", err)
		return
	}
	if err := m.store.Set(m.key, text); err != nil {
		m.logger.Warn("Failed to persist session", "key", m.key, "error", err)
	}
}

// Session returns a copy of the current session.
func (m *Manager) Session() Session {
	return m.session.Clone()
}

// Current returns the card under the cursor.
func (m *Manager) Current() domain.Card {
	return m.session.Current()
}

// Position returns the cursor and the length of the review order.
func (m *Manager) Position() (cursor, total int) {
	return m.session.Cursor, len(m.session.Order)
}

// Stats returns progress over the deck.
func (m *Manager) Stats() Stats {
	return m.session.Stats()
}

// Revealed reports whether the current card's answer is shown.
func (m *Manager) Revealed() bool {
	return m.revealed
}

// Reveal shows the current answer.
func (m *Manager) Reveal() {
	m.revealed = true
}

// Conceal hides the current answer.
func (m *Manager) Conceal() {
	m.revealed = false
}

// Advance moves the cursor by delta with wrap-around.
func (m *Manager) Advance(delta int) {
	m.session.Advance(delta)
	m.revealed = false
	m.persist()
}

// Mark records outcome on the current card without moving the cursor.
func (m *Manager) Mark(outcome domain.Status) error {
	if err := m.session.Mark(outcome); err != nil {
		return err
	}
	m.persist()
	return nil
}

// Shuffle randomises the review order and rewinds to its first card.
func (m *Manager) Shuffle(rng RNG) {
	m.session.Shuffle(rng)
	m.revealed = false
	m.persist()
}

// Reset erases all progress. Callers are expected to have confirmed it.
func (m *Manager) Reset() {
	m.session.Reset(m.source)
	m.revealed = false
	m.persist()
	m.logger.Info("Session progress reset", "cards", len(m.source))
}

// Export returns the session as an export blob stamped with the current time.
func (m *Manager) Export() Export {
	return m.session.Export(m.now().UTC())
}
