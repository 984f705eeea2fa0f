// Package controls translates discrete user gestures into review operations.
// Rendering adapters map their own events (buttons, keys, form posts) onto
// an Action and hand it to a Controller.
package controls

import (
	"errors"
	"fmt"
	"math/rand/v2"
	"strings"

	"github.com/conorfennell/flashreview/internal/domain"
	"github.com/conorfennell/flashreview/internal/review"
)

// ErrUnknownAction is returned for names and keys that map to no action.
var ErrUnknownAction = errors.New("controls: unknown action")

// ResetPrompt is the question shown before progress is erased.
const ResetPrompt = "Reset progress for this session?"

// Action is one of the fixed gestures a user can make.
type Action string

const (
	Toggle  Action = "toggle"
	Next    Action = "next"
	Prev    Action = "prev"
	Known   Action = "known"
	Unknown Action = "unknown"
	Shuffle Action = "shuffle"
	Reset   Action = "reset"
	Export  Action = "export"
)

// Actions lists every action in display order.
var Actions = []Action{Toggle, Prev, Next, Unknown, Known, Shuffle, Reset, Export}

var keyBindings = map[string]Action{
	" ":          Toggle,
	"space":      Toggle,
	"arrowright": Next,
	"n":          Next,
	"arrowleft":  Prev,
	"p":          Prev,
	"k":          Known,
	"d":          Unknown,
	"s":          Shuffle,
	"r":          Reset,
	"e":          Export,
}

// ParseAction looks an action up by name.
func ParseAction(name string) (Action, error) {
	for _, a := range Actions {
		if string(a) == name {
			return a, nil
		}
	}
	return "", fmt.Errorf("%w: %q", ErrUnknownAction, name)
}

// ForKey maps a key name to its action. Letters are case-insensitive.
func ForKey(key string) (Action, bool) {
	if key != " " {
		key = strings.ToLower(strings.TrimSpace(key))
	}
	a, ok := keyBindings[key]
	return a, ok
}

// Exporter receives export blobs.
type Exporter interface {
	Export(review.Export) error
}

// Controller applies actions to a review manager.
type Controller struct {
	manager  *review.Manager
	exporter Exporter
	confirm  func(prompt string) bool
	rng      review.RNG
}

// Option configures a Controller.
type Option func(*Controller)

// WithExporter sets where Export sends the blob. Without one Export fails.
func WithExporter(e Exporter) Option {
	return func(c *Controller) { c.exporter = e }
}

// WithConfirm sets the confirmation asked before a reset. Without one resets
// are always declined.
func WithConfirm(confirm func(prompt string) bool) Option {
	return func(c *Controller) { c.confirm = confirm }
}

// WithRNG sets the randomness used for shuffling.
func WithRNG(rng review.RNG) Option {
	return func(c *Controller) { c.rng = rng }
}

// New returns a Controller for m.
func New(m *review.Manager, opts ...Option) *Controller {
	c := &Controller{
		manager: m,
		confirm: func(string) bool { return false },
		rng:     rand.New(rand.NewPCG(rand.Uint64(), rand.Uint64())),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Do applies a. Marking a card moves on to the next one.
func (c *Controller) Do(a Action) error {
	m := c.manager
	switch a {
	case Toggle:
		if m.Revealed() {
			m.Conceal()
		} else {
			m.Reveal()
		}
	case Next:
		m.Advance(1)
	case Prev:
		m.Advance(-1)
	case Known:
		return c.markAndAdvance(domain.Known)
	case Unknown:
		return c.markAndAdvance(domain.Unknown)
	case Shuffle:
		m.Shuffle(c.rng)
	case Reset:
		if c.confirm(ResetPrompt) {
			m.Reset()
		}
	case Export:
		if c.exporter == nil {
			return errors.New("controls: no exporter configured")
		}
		if err := c.exporter.Export(m.Export()); err != nil {
			return fmt.Errorf("failed to export progress: %w", err)
		}
	default:
		return fmt.Errorf("%w: %q", ErrUnknownAction, a)
	}
	return nil
}

func (c *Controller) markAndAdvance(outcome domain.Status) error {
	if err := c.manager.Mark(outcome); err != nil {
		return err
	}
	c.manager.Advance(1)
	return nil
}
