package session

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/patcli/pat/internal/search"
)

// Prompt is the question shown above the result list.
const Prompt = "Search for a feature"

// DefaultMaxRows is the number of results visible at once.
const DefaultMaxRows = 5

type pickerStyles struct {
	prompt   lipgloss.Style
	cursor   lipgloss.Style
	selected lipgloss.Style
	dim      lipgloss.Style
}

func newPickerStyles(lip *lipgloss.Renderer) pickerStyles {
	return pickerStyles{
		prompt:   lip.NewStyle().Bold(true),
		cursor:   lip.NewStyle().Foreground(lipgloss.Color("6")),
		selected: lip.NewStyle().Foreground(lipgloss.Color("6")).Underline(true),
		dim:      lip.NewStyle().Foreground(lipgloss.Color("8")),
	}
}

// pickerModel is the bubbletea model behind TeaSelector.
type pickerModel struct {
	index   *search.Index
	input   textinput.Model
	keys    keyMap
	styles  pickerStyles
	maxRows int

	filter  string
	results []int
	cursor  int
	offset  int

	chosen    int
	done      bool
	cancelled bool
}

func newPickerModel(idx *search.Index, current, maxRows int, styles pickerStyles) pickerModel {
	if maxRows <= 0 {
		maxRows = DefaultMaxRows
	}
	ti := textinput.New()
	ti.Prompt = ""
	ti.Placeholder = "type to filter"
	ti.Focus()

	m := pickerModel{
		index:   idx,
		input:   ti,
		keys:    DefaultKeyMap(),
		styles:  styles,
		maxRows: maxRows,
		chosen:  Unset,
	}
	m.refresh(current)
	return m
}

// refresh recomputes the candidate list for the current filter. With an
// empty filter every record is listed and the cursor starts at current.
func (m *pickerModel) refresh(current int) {
	m.filter = m.input.Value()
	m.cursor, m.offset = 0, 0
	if strings.TrimSpace(m.filter) == "" {
		m.results = make([]int, m.index.Len())
		for i := range m.results {
			m.results[i] = i
		}
		if current >= 0 && current < len(m.results) {
			m.cursor = current
		}
	} else {
		found := m.index.Query(m.filter)
		m.results = make([]int, len(found))
		for i, r := range found {
			m.results[i] = r.Index
		}
	}
	m.scroll()
}

func (m *pickerModel) scroll() {
	if m.cursor < m.offset {
		m.offset = m.cursor
	}
	if m.cursor >= m.offset+m.maxRows {
		m.offset = m.cursor - m.maxRows + 1
	}
}

func (m *pickerModel) move(delta int) {
	if len(m.results) == 0 {
		return
	}
	m.cursor = (m.cursor + delta + len(m.results)) % len(m.results)
	m.scroll()
}

func (m pickerModel) Init() tea.Cmd {
	return textinput.Blink
}

func (m pickerModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	if msg, ok := msg.(tea.KeyMsg); ok {
		switch {
		case key.Matches(msg, m.keys.Quit):
			m.cancelled = true
			return m, tea.Quit
		case key.Matches(msg, m.keys.Confirm):
			if len(m.results) == 0 {
				return m, nil
			}
			m.chosen = m.results[m.cursor]
			m.done = true
			return m, tea.Quit
		case key.Matches(msg, m.keys.Up):
			m.move(-1)
			return m, nil
		case key.Matches(msg, m.keys.Down):
			m.move(1)
			return m, nil
		case key.Matches(msg, m.keys.Top):
			m.cursor = 0
			m.scroll()
			return m, nil
		case key.Matches(msg, m.keys.Bottom):
			if len(m.results) > 0 {
				m.cursor = len(m.results) - 1
				m.scroll()
			}
			return m, nil
		}
	}

	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	if m.input.Value() != m.filter {
		m.refresh(Unset)
	}
	return m, cmd
}

func (m pickerModel) View() string {
	if m.done || m.cancelled {
		return ""
	}
	var b strings.Builder
	b.WriteString(m.styles.cursor.Render("?") + " " + m.styles.prompt.Render(Prompt) + " " + m.input.View())

	if len(m.results) == 0 {
		b.WriteString("\n" + m.styles.dim.Render("  no matches"))
	}
	end := min(m.offset+m.maxRows, len(m.results))
	for i := m.offset; i < end; i++ {
		rec := m.index.Record(m.results[i])
		line := rec.Keywords + " " + m.styles.dim.Render(rec.Key())
		if i == m.cursor {
			line = m.styles.cursor.Render("❯ ") + m.styles.selected.Render(rec.Keywords) + " " + m.styles.dim.Render(rec.Key())
		} else {
			line = "  " + line
		}
		b.WriteString("\n" + line)
	}

	help := make([]string, 0, 4)
	for _, kb := range m.keys.ShortHelp() {
		h := kb.Help()
		help = append(help, h.Key+" "+h.Desc)
	}
	b.WriteString("\n" + m.styles.dim.Render(fmt.Sprintf("%d/%d · %s", min(m.cursor+1, len(m.results)), len(m.results), strings.Join(help, " · "))))
	return b.String()
}

// TeaSelector prompts for a record with an inline bubbletea program.
type TeaSelector struct {
	index    *search.Index
	in       io.Reader
	out      io.Writer
	maxRows  int
	styles   pickerStyles
	residual int
}

// NewTeaSelector returns a selector over idx reading keys from in and
// drawing on out.
func NewTeaSelector(idx *search.Index, in io.Reader, out io.Writer, maxRows int) *TeaSelector {
	return &TeaSelector{
		index:   idx,
		in:      in,
		out:     out,
		maxRows: maxRows,
		styles:  newPickerStyles(lipgloss.NewRenderer(out)),
	}
}

// Select runs the picker until a record is confirmed.
func (s *TeaSelector) Select(ctx context.Context, current int) (int, error) {
	if s.index.Len() == 0 {
		return Unset, errors.New("no records to choose from")
	}
	m := newPickerModel(s.index, current, s.maxRows, s.styles)
	p := tea.NewProgram(m,
		tea.WithContext(ctx),
		tea.WithInput(s.in),
		tea.WithOutput(s.out),
	)
	final, err := p.Run()
	if err != nil {
		if errors.Is(err, tea.ErrProgramKilled) || errors.Is(err, tea.ErrInterrupted) || ctx.Err() != nil {
			return Unset, ErrInterrupted
		}
		return Unset, fmt.Errorf("selection prompt: %w", err)
	}
	fm, ok := final.(pickerModel)
	if !ok || fm.cancelled || !fm.done {
		return Unset, ErrInterrupted
	}
	s.residual = strings.Count(fm.View(), "\n")
	return fm.chosen, nil
}

// Residual reports the lines above the cursor left by the last prompt.
func (s *TeaSelector) Residual() int { return s.residual }
