package render

import (
	"fmt"
	"slices"
	"strings"
	"time"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
	"github.com/muesli/termenv"

	"github.com/patcli/pat/internal/bcd"
	"github.com/patcli/pat/internal/search"
)

// NoResults is printed when a query matches nothing.
const NoResults = "No results found"

const versionWidth = 10

// Headers are the table's column titles.
var Headers = []string{"Browser", "Version Added", "Bug Tracker"}

// SupportRow is one line of the support table.
type SupportRow struct {
	Browser    string
	Version    string
	BugTracker string
}

// Options control what a Renderer shows.
type Options struct {
	// All disables browser exclusion.
	All bool
	// Exclude lists browser ids hidden unless All is set.
	Exclude []string
	// Hyperlinks enables OSC 8 links. URLs are validated regardless.
	Hyperlinks bool
	// Now returns the reference time for release ages. Defaults to time.Now.
	Now func() time.Time
	// Lip is the lipgloss renderer styles are bound to. Defaults to the
	// process-wide renderer.
	Lip *lipgloss.Renderer
}

// Renderer turns records into the text block printed for them.
type Renderer struct {
	browsers *bcd.Browsers
	palette  Palette
	opts     Options

	lip    *lipgloss.Renderer
	dim    lipgloss.Style
	header lipgloss.Style
	cell   lipgloss.Style
	border lipgloss.Style
}

// NewRenderer returns a Renderer that resolves browser names and release
// dates through browsers.
func NewRenderer(browsers *bcd.Browsers, palette Palette, opts Options) *Renderer {
	if opts.Now == nil {
		opts.Now = time.Now
	}
	lip := opts.Lip
	if lip == nil {
		lip = lipgloss.DefaultRenderer()
	}
	if browsers == nil {
		browsers = bcd.NewBrowsers(nil)
	}
	return &Renderer{
		browsers: browsers,
		palette:  palette,
		opts:     opts,
		lip:      lip,
		dim:      lip.NewStyle().Foreground(lipgloss.Color("8")),
		header:   lip.NewStyle().Bold(true).Padding(0, 1),
		cell:     lip.NewStyle().Padding(0, 1),
		border:   lip.NewStyle().Foreground(lipgloss.Color("8")),
	}
}

// ColorEnabled reports whether the bound lipgloss renderer emits colors.
func ColorEnabled(lip *lipgloss.Renderer) bool {
	return lip.ColorProfile() != termenv.Ascii
}

func (r *Renderer) color(c RGB) lipgloss.Style {
	return r.lip.NewStyle().Foreground(lipgloss.Color(c.Hex()))
}

// Rows computes the visible support rows of rec in dataset order.
func (r *Renderer) Rows(rec *search.Record) ([]SupportRow, error) {
	if rec == nil || rec.Statement == nil {
		return nil, nil
	}
	now := r.opts.Now()
	rows := make([]SupportRow, 0, len(rec.Statement.Support))
	for _, bs := range rec.Statement.Support {
		if !r.opts.All && slices.Contains(r.opts.Exclude, bs.Browser) {
			continue
		}
		first, _ := bs.Statement.First()
		bug, err := BugTrackerLink(first.ImplURL.First(), r.opts.Hyperlinks)
		if err != nil {
			return nil, fmt.Errorf("%s bug tracker: %w", bs.Browser, err)
		}
		rows = append(rows, SupportRow{
			Browser:    r.browsers.Name(bs.Browser),
			Version:    r.versionCell(bs.Browser, first.VersionAdded, now),
			BugTracker: bug,
		})
	}
	return rows, nil
}

func (r *Renderer) versionCell(id string, v bcd.VersionAdded, now time.Time) string {
	switch {
	case v.IsUnknown():
		return r.color(r.palette.Unknown).Render("[unknown]")
	case v.IsNone():
		return r.color(r.palette.Unsupported).Render("[none]")
	}
	rel := r.browsers.Release(id, v.Version)
	if rel == nil || rel.ReleaseDate == "" {
		return v.Version
	}
	age, err := AgeInfo(rel.ReleaseDate, now, r.palette)
	if err != nil {
		return v.Version
	}
	return r.color(age.Color).Render(padEnd(v.Version, versionWidth)) + " " + r.dim.Render(age.Label)
}

func padEnd(s string, width int) string {
	if n := len([]rune(s)); n < width {
		return s + strings.Repeat(" ", width-n)
	}
	return s
}

// Header returns the title line: the keywords and, when the record has one,
// a link to its MDN page.
func (r *Renderer) Header(rec *search.Record) (string, error) {
	if rec.Statement == nil || rec.Statement.MDNURL == "" {
		return rec.Keywords, nil
	}
	link, err := Hyperlink("MDN", rec.Statement.MDNURL, r.opts.Hyperlinks)
	if err != nil {
		return "", fmt.Errorf("mdn link: %w", err)
	}
	return rec.Keywords + " [" + link + "]", nil
}

// Breadcrumb returns the dotted path followed by status badges.
func (r *Renderer) Breadcrumb(rec *search.Record) string {
	parts := []string{rec.Key()}
	if st := rec.Statement; st != nil && st.Status != nil {
		if st.Status.Deprecated {
			parts = append(parts, "[deprecated]")
		}
		if st.Status.Experimental {
			parts = append(parts, "[experimental]")
		}
		if !st.Status.StandardTrack {
			parts = append(parts, "[non-standard]")
		}
	}
	return r.dim.Render(strings.Join(parts, " "))
}

// Render produces the full block for rec: a blank line, the header, the
// breadcrumb and the support table starting on the next line. It has no
// trailing newline.
func (r *Renderer) Render(rec *search.Record) (string, error) {
	if rec == nil {
		return NoResults, nil
	}
	header, err := r.Header(rec)
	if err != nil {
		return "", err
	}
	rows, err := r.Rows(rec)
	if err != nil {
		return "", err
	}

	t := table.New().
		Border(lipgloss.NormalBorder()).
		BorderStyle(r.border).
		Headers(Headers...).
		StyleFunc(func(row, _ int) lipgloss.Style {
			if row == table.HeaderRow {
				return r.header
			}
			return r.cell
		})
	for _, row := range rows {
		t.Row(row.Browser, row.Version, row.BugTracker)
	}

	prelude := strings.Join([]string{"", header, r.Breadcrumb(rec), ""}, "\n")
	return prelude + t.String(), nil
}
