package search

import (
	"regexp"
	"slices"
	"strings"

	"golang.org/x/text/cases"
	"golang.org/x/text/unicode/norm"

	"github.com/patcli/pat/internal/bcd"
)

// DefaultExcludedSegments are path segments too common to be useful as
// search keywords.
var DefaultExcludedSegments = []string{"javascript", "api", "builtins", "grammar"}

var separators = regexp.MustCompile(`[^\p{L}\p{M}\p{N}]+`)

// NormalizeKeywords turns a dataset path into the keyword string that is
// searched and displayed: excluded segments are dropped and every run of
// characters other than letters, marks and digits becomes one space.
func NormalizeKeywords(path []string, excluded []string) string {
	kept := make([]string, 0, len(path))
	for _, seg := range path {
		if slices.Contains(excluded, seg) {
			continue
		}
		kept = append(kept, seg)
	}
	return NormalizeText(strings.Join(kept, " "))
}

// NormalizeText applies NFC normalization and separator folding to s.
func NormalizeText(s string) string {
	s = norm.NFC.String(s)
	return strings.TrimSpace(separators.ReplaceAllString(s, " "))
}

// BuildRecords decodes flattened entries into records. Entries whose
// statement cannot be decoded are skipped and counted.
func BuildRecords(entries []bcd.Entry, excluded []string) ([]Record, int) {
	records := make([]Record, 0, len(entries))
	skipped := 0
	for _, e := range entries {
		st, err := bcd.DecodeStatement(e.Value)
		if err != nil {
			skipped++
			continue
		}
		records = append(records, Record{
			Path:      e.Path,
			Keywords:  NormalizeKeywords(e.Path, excluded),
			Statement: st,
		})
	}
	return records, skipped
}

func tokenize(q string) []string {
	q = NormalizeText(q)
	if q == "" {
		return nil
	}
	fold := cases.Fold()
	parts := strings.Fields(q)
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		out = append(out, fold.String(p))
	}
	return out
}
