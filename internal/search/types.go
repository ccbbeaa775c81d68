package search

import (
	"strings"

	"github.com/patcli/pat/internal/bcd"
)

// Record is one searchable compatibility statement.
type Record struct {
	Path      []string
	Keywords  string
	Statement *bcd.CompatStatement
}

// Key returns the dotted path of the record, e.g. "javascript.builtins.RegExp".
func (r *Record) Key() string {
	return strings.Join(r.Path, ".")
}

// Result represents one matched record.
type Result struct {
	Record *Record
	// Index is the record's position in the index it came from.
	Index int
	// Rank is the position in the result list, best first.
	Rank    int
	Score   int
	Matched int
	// Words is the number of keyword words of the record.
	Words int
}
