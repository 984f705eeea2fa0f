// Package term runs a review session on a line-oriented terminal: one key
// per line in, a plain-text card and progress summary out.
package term

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"strings"

	"github.com/conorfennell/flashreview/internal/controls"
	"github.com/conorfennell/flashreview/internal/review"
)

const help = "keys: [space]/t show-hide, n next, p prev, k knew it, d didn't know, s shuffle, r reset, e export, q quit"

// Session drives a manager from in and renders to out.
type Session struct {
	manager *review.Manager
	in      *bufio.Scanner
	out     io.Writer
	opts    []controls.Option
}

// New returns a terminal session. opts configure the controller; the reset
// confirmation is always asked on in.
func New(m *review.Manager, in io.Reader, out io.Writer, opts ...controls.Option) *Session {
	return &Session{
		manager: m,
		in:      bufio.NewScanner(in),
		out:     out,
		opts:    opts,
	}
}

// Run renders the current card and applies keys until q, end of input or ctx
// is done.
func (s *Session) Run(ctx context.Context) error {
	opts := append(append([]controls.Option(nil), s.opts...), controls.WithConfirm(s.confirm))
	c := controls.New(s.manager, opts...)

	fmt.Fprintln(s.out, help)
	s.render()
	for {
		if err := ctx.Err(); err != nil {
			return err
		}
		fmt.Fprint(s.out, "> ")
		if !s.in.Scan() {
			fmt.Fprintln(s.out)
			return s.in.Err()
		}
		line := s.in.Text()
		if strings.TrimSpace(line) == "q" {
			return nil
		}

		action, ok := keyAction(line)
		if !ok {
			fmt.Fprintf(s.out, "unknown key %q\n%s\n", line, help)
			continue
		}
		if err := c.Do(action); err != nil {
			fmt.Fprintf(s.out, "%s failed: %v\n", action, err)
			continue
		}
		if action == controls.Export {
			fmt.Fprintln(s.out, "progress exported")
		}
		s.render()
	}
}

// keyAction maps a typed line to an action. An empty line or a lone space
// toggles the answer, and "t" does the same since a trailing space is easy
// to lose in a terminal.
func keyAction(line string) (controls.Action, bool) {
	switch {
	case strings.TrimSpace(line) == "", strings.TrimSpace(line) == "t":
		return controls.Toggle, true
	}
	return controls.ForKey(line)
}

func (s *Session) confirm(prompt string) bool {
	fmt.Fprintf(s.out, "%s [y/N] ", prompt)
	if !s.in.Scan() {
		return false
	}
	answer := strings.ToLower(strings.TrimSpace(s.in.Text()))
	return answer == "y" || answer == "yes"
}

func (s *Session) render() {
	cursor, total := s.manager.Position()
	card := s.manager.Current()
	st := s.manager.Stats()

	fmt.Fprintf(s.out, "\nCard %d / %d", cursor+1, total)
	if card.Status.Outcome() {
		fmt.Fprintf(s.out, " [%s]", card.Status)
	}
	fmt.Fprintf(s.out, "\nQ: %s\n", card.Question)
	if card.Context != "" {
		fmt.Fprintf(s.out, "C: %s\n", card.Context)
	}
	if s.manager.Revealed() {
		fmt.Fprintf(s.out, "A: %s\n", card.Answer)
	}
	fmt.Fprintf(s.out, "%d / %d reviewed (%d%%)  Known: %d  Unknown: %d\n",
		st.Reviewed, st.Total, st.PercentComplete, st.Known, st.Unknown)
}
