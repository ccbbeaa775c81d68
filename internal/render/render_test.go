package render

import (
	"io"
	"os"
	"strings"
	"testing"
	"time"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/x/ansi"
	"github.com/muesli/termenv"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/patcli/pat/internal/bcd"
	"github.com/patcli/pat/internal/search"
)

var fixedNow = time.Date(2026, time.October, 16, 0, 0, 0, 0, time.UTC)

func lipRenderer(profile termenv.Profile) *lipgloss.Renderer {
	lip := lipgloss.NewRenderer(io.Discard)
	lip.SetColorProfile(profile)
	return lip
}

func fixture(t *testing.T) (*bcd.Browsers, *search.Index) {
	t.Helper()
	f, err := os.Open("../bcd/testdata/bcd.json")
	require.NoError(t, err)
	defer f.Close()

	ds, err := bcd.Load(f)
	require.NoError(t, err)
	records, _ := search.BuildRecords(ds.Entries(), search.DefaultExcludedSegments)
	return ds.Browsers, search.Build(records, search.Options{})
}

func record(t *testing.T, idx *search.Index, key string) *search.Record {
	t.Helper()
	for i := 0; i < idx.Len(); i++ {
		if idx.Record(i).Key() == key {
			return idx.Record(i)
		}
	}
	t.Fatalf("record %s not in fixture", key)
	return nil
}

func newTestRenderer(b *bcd.Browsers, opts Options) *Renderer {
	if opts.Lip == nil {
		opts.Lip = lipRenderer(termenv.Ascii)
	}
	opts.Now = func() time.Time { return fixedNow }
	if opts.Exclude == nil {
		opts.Exclude = bcd.DefaultExcludedBrowsers
	}
	return NewRenderer(b, DefaultPalette(), opts)
}

func TestRender_Layout(t *testing.T) {
	browsers, idx := fixture(t)
	r := newTestRenderer(browsers, Options{})

	out, err := r.Render(record(t, idx, "javascript.builtins.RegExp.unicodeSets"))
	require.NoError(t, err)

	lines := strings.Split(out, "\n")
	require.Greater(t, len(lines), 5)
	assert.Equal(t, "", lines[0])
	assert.Equal(t, "RegExp unicodeSets [MDN]", lines[1])
	assert.Equal(t, "javascript.builtins.RegExp.unicodeSets", lines[2])
	// the table's top border follows the breadcrumb directly
	assert.True(t, strings.HasPrefix(lines[3], "┌"), "border line %q", lines[3])
	assert.Contains(t, lines[4], "Browser")
	assert.Contains(t, lines[4], "Version Added")
	assert.Contains(t, lines[4], "Bug Tracker")
	assert.True(t, strings.HasPrefix(lines[5], "├"), "header separator %q", lines[5])
	assert.False(t, strings.HasSuffix(out, "\n"))

	assert.Contains(t, out, "Safari on iOS")
	assert.Contains(t, out, "bugs.webkit.org/show_bug.cgi")
	assert.NotContains(t, out, "Internet Explorer")
	assert.NotContains(t, out, "Quest Browser")
}

func TestRows_ExclusionAndOrder(t *testing.T) {
	browsers, idx := fixture(t)
	rec := record(t, idx, "javascript.builtins.RegExp.unicodeSets")

	rows, err := newTestRenderer(browsers, Options{}).Rows(rec)
	require.NoError(t, err)
	names := make([]string, 0, len(rows))
	for _, row := range rows {
		names = append(names, row.Browser)
	}
	assert.Equal(t, []string{
		"Chrome", "Chrome Android", "Deno", "Edge", "Firefox",
		"Node.js", "Safari", "Safari on iOS",
	}, names)

	all, err := newTestRenderer(browsers, Options{All: true}).Rows(rec)
	require.NoError(t, err)
	assert.Len(t, all, len(rec.Statement.Support))
	assert.Len(t, all, len(rows)+2)
}

func TestRows_VersionCells(t *testing.T) {
	browsers, idx := fixture(t)
	r := newTestRenderer(browsers, Options{All: true})

	rows, err := r.Rows(record(t, idx, "javascript.builtins.Array.flatMap"))
	require.NoError(t, err)
	cells := map[string]string{}
	for _, row := range rows {
		cells[row.Browser] = row.Version
	}
	assert.Equal(t, "[unknown]", cells["Deno"])
	assert.Equal(t, "69", cells["Chrome"], "no release metadata for 69 leaves the bare version")

	rows, err = r.Rows(record(t, idx, "javascript.builtins.RegExp.unicodeSets"))
	require.NoError(t, err)
	for _, row := range rows {
		switch row.Browser {
		case "Internet Explorer":
			assert.Equal(t, "[none]", row.Version)
		case "Chrome":
			assert.Equal(t, "112" + strings.Repeat(" ", 8) + "4 years ago", row.Version)
		}
	}
}

func TestRows_MirrorIsNone(t *testing.T) {
	browsers, idx := fixture(t)
	rows, err := newTestRenderer(browsers, Options{All: true}).Rows(record(t, idx, "api.AbortController"))
	require.NoError(t, err)
	for _, row := range rows {
		if row.Browser == "Quest Browser" {
			assert.Equal(t, "[none]", row.Version)
			return
		}
	}
	t.Fatal("Quest Browser row missing")
}

func TestRender_Colors(t *testing.T) {
	browsers, idx := fixture(t)
	r := newTestRenderer(browsers, Options{Lip: lipRenderer(termenv.TrueColor), All: true, Hyperlinks: true})

	out, err := r.Render(record(t, idx, "javascript.builtins.RegExp.unicodeSets"))
	require.NoError(t, err)

	// red for IE's missing support
	assert.Contains(t, out, "38;2;238;34;34")
	// OSC 8 link to MDN
	assert.Contains(t, out, ansi.SetHyperlink("https://developer.mozilla.org/docs/Web/JavaScript/Reference/Global_Objects/RegExp/unicodeSets"))

	plain := ansi.Strip(out)
	assert.Contains(t, plain, "RegExp unicodeSets [MDN]")
	assert.Contains(t, plain, "[none]")
}

func TestRender_NoHyperlinksWithoutColor(t *testing.T) {
	browsers, idx := fixture(t)
	out, err := newTestRenderer(browsers, Options{}).Render(record(t, idx, "javascript.builtins.RegExp.unicodeSets"))
	require.NoError(t, err)
	assert.NotContains(t, out, "\x1b]8;")
}

func TestRender_StatusBadges(t *testing.T) {
	browsers, idx := fixture(t)
	out, err := newTestRenderer(browsers, Options{}).Render(record(t, idx, "html.elements.marquee"))
	require.NoError(t, err)
	assert.Contains(t, out, "html.elements.marquee [deprecated] [non-standard]")
}

func TestRender_NoMDNURL(t *testing.T) {
	r := newTestRenderer(nil, Options{})
	rec := &search.Record{
		Path:      []string{"api", "Thing"},
		Keywords:  "Thing",
		Statement: &bcd.CompatStatement{},
	}
	out, err := r.Render(rec)
	require.NoError(t, err)
	assert.Equal(t, "Thing", strings.Split(out, "\n")[1])
}

func TestRender_MalformedURLFails(t *testing.T) {
	r := newTestRenderer(nil, Options{})
	rec := &search.Record{
		Path:     []string{"api", "Broken"},
		Keywords: "Broken",
		Statement: &bcd.CompatStatement{
			Support: bcd.SupportMap{{
				Browser:   "chrome",
				Statement: bcd.SupportStatement{{ImplURL: bcd.StringList{"not a url"}}},
			}},
		},
	}
	_, err := r.Render(rec)
	assert.ErrorIs(t, err, ErrInvalidURL)
}

func TestRender_Nil(t *testing.T) {
	out, err := newTestRenderer(nil, Options{}).Render(nil)
	require.NoError(t, err)
	assert.Equal(t, NoResults, out)
}
