// Package session runs the interactive browse loop: show a record, let the
// user pick another, erase the old output and show the new one.
package session

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/muesli/termenv"
	"go.uber.org/zap"

	"github.com/patcli/pat/internal/search"
)

// ErrInterrupted is returned when the user cancels the prompt.
var ErrInterrupted = errors.New("interrupted")

// State is the loop's current phase.
type State int

const (
	Displaying State = iota
	Selecting
)

func (s State) String() string {
	switch s {
	case Displaying:
		return "displaying"
	case Selecting:
		return "selecting"
	}
	return fmt.Sprintf("State(%d)", int(s))
}

// Unset marks the absence of a selection.
const Unset = -1

// Renderer produces the text shown for a record.
type Renderer interface {
	Render(rec *search.Record) (string, error)
}

// Selector asks the user for the next record.
type Selector interface {
	// Select blocks until a record index is chosen. current is the index
	// shown now, or Unset.
	Select(ctx context.Context, current int) (int, error)
	// Residual is the number of lines the last prompt left on screen.
	Residual() int
}

// Session is one interactive run.
type Session struct {
	index    *search.Index
	renderer Renderer
	selector Selector
	out      io.Writer
	erase    func(n int)
	logger   *zap.Logger

	state   State
	current int
	written int
}

// Option configures a Session.
type Option func(*Session)

// WithEraser replaces the terminal line eraser.
func WithEraser(erase func(n int)) Option {
	return func(s *Session) { s.erase = erase }
}

// WithLogger sets the session logger.
func WithLogger(l *zap.Logger) Option {
	return func(s *Session) {
		if l != nil {
			s.logger = l
		}
	}
}

// New creates a session writing to out, starting at initial (or Unset).
func New(index *search.Index, r Renderer, sel Selector, out io.Writer, initial int, opts ...Option) *Session {
	s := &Session{
		index:    index,
		renderer: r,
		selector: sel,
		out:      out,
		logger:   zap.NewNop(),
		state:    Displaying,
		current:  initial,
	}
	term := termenv.NewOutput(out)
	s.erase = func(n int) { term.ClearLines(n) }
	for _, o := range opts {
		o(s)
	}
	return s
}

// State returns the current phase.
func (s *Session) State() State { return s.state }

// Current returns the displayed record index, or Unset.
func (s *Session) Current() int { return s.current }

// Run loops until the selector fails. Cancellation surfaces as
// ErrInterrupted.
func (s *Session) Run(ctx context.Context) error {
	for {
		if err := ctx.Err(); err != nil {
			return ErrInterrupted
		}
		if err := s.Step(ctx); err != nil {
			return err
		}
	}
}

// Step performs one state transition.
func (s *Session) Step(ctx context.Context) error {
	switch s.state {
	case Displaying:
		if err := s.draw(); err != nil {
			return err
		}
		s.state = Selecting
	case Selecting:
		next, err := s.selector.Select(ctx, s.current)
		if err != nil {
			if errors.Is(err, context.Canceled) {
				return ErrInterrupted
			}
			return err
		}
		// The prompt leaves the cursor on its own line; erasing n lines
		// above it reaches the first line of the previous block.
		n := s.written + s.selector.Residual()
		s.logger.Debug("redraw",
			zap.Int("from", s.current),
			zap.Int("to", next),
			zap.Int("erase", n))
		s.erase(n)
		s.current = next
		s.state = Displaying
	}
	return nil
}

// draw prints the current record and remembers how many lines it took,
// counting the newline that ends the block.
func (s *Session) draw() error {
	if s.current == Unset || s.current < 0 || s.current >= s.index.Len() {
		s.written = 0
		return nil
	}
	text, err := s.renderer.Render(s.index.Record(s.current))
	if err != nil {
		return err
	}
	if _, err := fmt.Fprintln(s.out, text); err != nil {
		return err
	}
	s.written = strings.Count(text, "\n") + 1
	return nil
}
