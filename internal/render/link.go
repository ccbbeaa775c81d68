package render

import (
	"errors"
	"fmt"
	"net/url"
	"strings"

	"github.com/charmbracelet/x/ansi"
	"github.com/rivo/uniseg"
)

// ErrInvalidURL is returned for links that are not absolute URLs.
var ErrInvalidURL = errors.New("invalid url")

// bugTrackerWidth is the number of grapheme clusters of a bug tracker link
// shown before it is cut off.
const bugTrackerWidth = 80

const ellipsis = "…"

// normalizeURL validates raw and returns its canonical form.
func normalizeURL(raw string) (*url.URL, error) {
	u, err := url.Parse(strings.TrimSpace(raw))
	if err != nil {
		return nil, fmt.Errorf("%w: %q: %v", ErrInvalidURL, raw, err)
	}
	if u.Scheme == "" {
		return nil, fmt.Errorf("%w: %q: missing scheme", ErrInvalidURL, raw)
	}
	if (u.Scheme == "http" || u.Scheme == "https") && u.Host == "" {
		return nil, fmt.Errorf("%w: %q: missing host", ErrInvalidURL, raw)
	}
	return u, nil
}

// Hyperlink wraps text in an OSC 8 hyperlink to rawURL when enabled is set.
// The URL is validated either way.
func Hyperlink(text, rawURL string, enabled bool) (string, error) {
	u, err := normalizeURL(rawURL)
	if err != nil {
		return "", err
	}
	if !enabled {
		return text, nil
	}
	return ansi.SetHyperlink(u.String()) + text + ansi.ResetHyperlink(), nil
}

// Truncate shortens s to at most max grapheme clusters, appending an
// ellipsis when something was cut.
func Truncate(s string, max int) string {
	if max < 0 {
		max = 0
	}
	if uniseg.GraphemeClusterCount(s) <= max {
		return s
	}
	var b strings.Builder
	g := uniseg.NewGraphemes(s)
	for n := 0; n < max && g.Next(); n++ {
		b.WriteString(g.Str())
	}
	b.WriteString(ellipsis)
	return b.String()
}

// BugTrackerLink renders the first implementation URL as a link whose text
// is the URL's host and path.
func BugTrackerLink(implURL string, enabled bool) (string, error) {
	if implURL == "" {
		return "", nil
	}
	u, err := normalizeURL(implURL)
	if err != nil {
		return "", err
	}
	text := Truncate(u.Host+u.EscapedPath(), bugTrackerWidth)
	return Hyperlink(text, implURL, enabled)
}
