package search

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/patcli/pat/internal/bcd"
)

func TestNormalizeKeywords(t *testing.T) {
	tests := []struct {
		name string
		path []string
		want string
	}{
		{"drops common segments", []string{"javascript", "builtins", "RegExp", "unicodeSets"}, "RegExp unicodeSets"},
		{"api prefix", []string{"api", "AbortController", "abort"}, "AbortController abort"},
		{"underscores split words", []string{"javascript", "grammar", "hashbang_comments"}, "hashbang comments"},
		{"punctuation runs collapse", []string{"css", "selectors", "::-webkit-scrollbar"}, "css selectors webkit scrollbar"},
		{"letters and marks kept", []string{"html", "élément"}, "html élément"},
		{"everything excluded", []string{"javascript", "api"}, ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, NormalizeKeywords(tt.path, DefaultExcludedSegments))
		})
	}
}

func TestNormalizeKeywords_ExcludesOnlyWholeSegments(t *testing.T) {
	got := NormalizeKeywords([]string{"api", "apiVersion"}, DefaultExcludedSegments)
	assert.Equal(t, "apiVersion", got)
}

func TestNormalizeText_Idempotent(t *testing.T) {
	for _, in := range []string{"RegExp unicodeSets", "  a--b__c  ", "état", "::-moz-focus-inner"} {
		once := NormalizeText(in)
		assert.Equal(t, once, NormalizeText(once), "input %q", in)
	}
}

func TestNormalizeText_ComposesNFC(t *testing.T) {
	assert.Equal(t, "\u00e9tat", NormalizeText("e\u0301tat"))
}

func TestBuildRecords_SkipsBrokenStatements(t *testing.T) {
	entries := []bcd.Entry{
		{Path: []string{"api", "Good"}, Value: []byte(`{"support":{}}`)},
		{Path: []string{"api", "Broken"}, Value: []byte(`{"support": 42}`)},
	}
	records, skipped := BuildRecords(entries, DefaultExcludedSegments)
	assert.Equal(t, 1, skipped)
	if assert.Len(t, records, 1) {
		assert.Equal(t, "Good", records[0].Keywords)
	}
}

func TestTokenize(t *testing.T) {
	assert.Nil(t, tokenize("   "))
	assert.Equal(t, []string{"regex", "unicode", "sets"}, tokenize("  Regex, UNICODE-sets "))
}
