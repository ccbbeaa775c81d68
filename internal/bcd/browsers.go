package bcd

import (
	"encoding/json"
	"fmt"
	"strings"
)

// BrowserDescriptor is the static part of a browser's metadata.
type BrowserDescriptor struct {
	ID                   string `json:"-"`
	Name                 string `json:"name"`
	Type                 string `json:"type"`
	AcceptsFlags         bool   `json:"accepts_flags"`
	AcceptsWebExtensions bool   `json:"accepts_webextensions"`
	PreviewName          string `json:"preview_name,omitempty"`
	PrefURL              string `json:"pref_url,omitempty"`
	Upstream             string `json:"upstream,omitempty"`
}

// Release is the dataset's metadata for one browser version.
type Release struct {
	ReleaseDate   string `json:"release_date,omitempty"`
	ReleaseNotes  string `json:"release_notes,omitempty"`
	Status        string `json:"status"`
	Engine        string `json:"engine,omitempty"`
	EngineVersion string `json:"engine_version,omitempty"`
}

// BrowserStatement is a browsers.<id> object as stored in the dataset.
type BrowserStatement struct {
	BrowserDescriptor
	Releases map[string]Release `json:"releases"`
}

// knownBrowsers holds descriptors for every browser the dataset tracks,
// without release data.
var knownBrowsers = []BrowserDescriptor{
	{ID: "chrome", Name: "Chrome", Type: "desktop", AcceptsFlags: true, AcceptsWebExtensions: true, PreviewName: "Canary", PrefURL: "chrome://flags"},
	{ID: "chrome_android", Name: "Chrome Android", Type: "mobile", AcceptsFlags: true, PrefURL: "chrome://flags", Upstream: "chrome"},
	{ID: "deno", Name: "Deno", Type: "server", AcceptsFlags: true},
	{ID: "edge", Name: "Edge", Type: "desktop", AcceptsFlags: true, AcceptsWebExtensions: true, PrefURL: "about:flags", Upstream: "chrome"},
	{ID: "firefox", Name: "Firefox", Type: "desktop", AcceptsFlags: true, AcceptsWebExtensions: true, PreviewName: "Nightly", PrefURL: "about:config"},
	{ID: "firefox_android", Name: "Firefox for Android", Type: "mobile", AcceptsWebExtensions: true, PrefURL: "about:config", Upstream: "firefox"},
	{ID: "ie", Name: "Internet Explorer", Type: "desktop"},
	{ID: "nodejs", Name: "Node.js", Type: "server", AcceptsFlags: true},
	{ID: "oculus", Name: "Quest Browser", Type: "xr", AcceptsFlags: true, PrefURL: "chrome://flags", Upstream: "chrome_android"},
	{ID: "opera", Name: "Opera", Type: "desktop", AcceptsFlags: true, AcceptsWebExtensions: true, PrefURL: "opera://flags", Upstream: "chrome"},
	{ID: "opera_android", Name: "Opera Android", Type: "mobile", Upstream: "chrome_android"},
	{ID: "safari", Name: "Safari", Type: "desktop", AcceptsFlags: true, AcceptsWebExtensions: true, PreviewName: "TP"},
	{ID: "safari_ios", Name: "Safari on iOS", Type: "mobile", AcceptsFlags: true, AcceptsWebExtensions: true, Upstream: "safari"},
	{ID: "samsunginternet_android", Name: "Samsung Internet", Type: "mobile", Upstream: "chrome_android"},
	{ID: "webview_android", Name: "WebView Android", Type: "mobile", Upstream: "chrome_android"},
	{ID: "webview_ios", Name: "WebView on iOS", Type: "mobile", Upstream: "safari_ios"},
}

// DefaultExcludedBrowsers are hidden from tables unless all browsers are
// requested.
var DefaultExcludedBrowsers = []string{"ie", "oculus"}

// KnownBrowsers returns a copy of the static descriptor table.
func KnownBrowsers() []BrowserDescriptor {
	out := make([]BrowserDescriptor, len(knownBrowsers))
	copy(out, knownBrowsers)
	return out
}

// Browsers resolves browser names and release metadata. The static table is
// overlaid with whatever the loaded dataset provides.
type Browsers struct {
	descriptors map[string]BrowserDescriptor
	releases    map[string]map[string]Release
}

// NewBrowsers builds a registry from dataset browser statements, which may be
// nil.
func NewBrowsers(data map[string]BrowserStatement) *Browsers {
	b := &Browsers{
		descriptors: make(map[string]BrowserDescriptor, len(knownBrowsers)),
		releases:    make(map[string]map[string]Release, len(data)),
	}
	for _, d := range knownBrowsers {
		b.descriptors[d.ID] = d
	}
	for id, st := range data {
		d := st.BrowserDescriptor
		d.ID = id
		if base, ok := b.descriptors[id]; ok && d.Name == "" {
			d.Name = base.Name
		}
		b.descriptors[id] = d
		if len(st.Releases) > 0 {
			b.releases[id] = st.Releases
		}
	}
	return b
}

// Descriptor returns the descriptor for id.
func (b *Browsers) Descriptor(id string) (BrowserDescriptor, bool) {
	d, ok := b.descriptors[id]
	return d, ok
}

// Name returns the display name for id, falling back to the id itself.
func (b *Browsers) Name(id string) string {
	if d, ok := b.descriptors[id]; ok && d.Name != "" {
		return d.Name
	}
	return id
}

// Release returns release metadata for a browser version, or nil.
func (b *Browsers) Release(id, version string) *Release {
	rels, ok := b.releases[id]
	if !ok {
		return nil
	}
	rel, ok := rels[version]
	if !ok {
		return nil
	}
	return &rel
}

// Names maps browser ids to display names, preserving order.
func (b *Browsers) Names(ids []string) []string {
	out := make([]string, 0, len(ids))
	for _, id := range ids {
		out = append(out, b.Name(id))
	}
	return out
}

// JoinEnglish joins items the way an English sentence lists them:
// "a", "a and b", "a, b, and c".
func JoinEnglish(items []string) string {
	switch len(items) {
	case 0:
		return ""
	case 1:
		return items[0]
	case 2:
		return items[0] + " and " + items[1]
	}
	return strings.Join(items[:len(items)-1], ", ") + ", and " + items[len(items)-1]
}

func decodeBrowsers(raw json.RawMessage) (map[string]BrowserStatement, error) {
	if len(raw) == 0 {
		return nil, nil
	}
	var out map[string]BrowserStatement
	if err := json.Unmarshal(raw, &out); err != nil {
		return nil, fmt.Errorf("bcd: decode browsers: %w", err)
	}
	return out, nil
}
