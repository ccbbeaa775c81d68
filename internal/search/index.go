package search

import (
	"math"
	"strings"
	"unicode/utf8"

	"github.com/agnivade/levenshtein"
	"github.com/sahilm/fuzzy"
	"golang.org/x/text/cases"
)

const (
	exactBonus  = 100
	prefixBonus = 50
	tagPenalty  = 20
	typoBase    = -20
	typoStep    = 10
	noMatch     = math.MinInt32
)

type field uint8

const (
	inKeywords field = iota
	inTags
)

type posting struct {
	record int
	field  field
}

// vocabulary adapts the word list to fuzzy.Source.
type vocabulary []string

func (v vocabulary) String(i int) string { return v[i] }
func (v vocabulary) Len() int            { return len(v) }

// Options tune an Index.
type Options struct {
	// Limit caps the number of results a query returns. Zero means no cap.
	Limit int
}

// Index answers fuzzy keyword queries over a fixed set of records.
//
// Every distinct word of the records' keywords and tags is kept once in a
// case-folded vocabulary together with the records it occurs in. A query
// token is scored against each vocabulary word, and a record's score for the
// token is the best score of any of its words.
type Index struct {
	records  []Record
	words    []int
	vocab    vocabulary
	lengths  []int
	postings [][]posting
	opts     Options
}

// Build indexes records. The slice is retained and must not be modified
// afterwards.
func Build(records []Record, opts Options) *Index {
	idx := &Index{
		records: records,
		words:   make([]int, len(records)),
		opts:    opts,
	}
	fold := cases.Fold()
	ids := make(map[string]int)

	add := func(word string, rec int, f field) {
		w := fold.String(word)
		id, ok := ids[w]
		if !ok {
			id = len(idx.vocab)
			ids[w] = id
			idx.vocab = append(idx.vocab, w)
			idx.lengths = append(idx.lengths, utf8.RuneCountInString(w))
			idx.postings = append(idx.postings, nil)
		}
		ps := idx.postings[id]
		for j := len(ps) - 1; j >= 0 && ps[j].record == rec; j-- {
			if ps[j].field == f {
				return
			}
		}
		idx.postings[id] = append(ps, posting{record: rec, field: f})
	}

	for i := range records {
		words := strings.Fields(records[i].Keywords)
		idx.words[i] = len(words)
		for _, w := range words {
			add(w, i, inKeywords)
		}
		if records[i].Statement == nil {
			continue
		}
		for _, tag := range records[i].Statement.Tags {
			for _, w := range strings.Fields(NormalizeText(tag)) {
				add(w, i, inTags)
			}
		}
	}
	return idx
}

// Len returns the number of indexed records.
func (idx *Index) Len() int { return len(idx.records) }

// Record returns the record at position i.
func (idx *Index) Record(i int) *Record { return &idx.records[i] }

// Query returns the records matching text, best first. A blank query or one
// matching nothing yields an empty slice.
func (idx *Index) Query(text string) []Result {
	tokens := tokenize(text)
	if len(tokens) == 0 || len(idx.records) == 0 {
		return []Result{}
	}

	best := make(map[int][]int)
	for ti, tok := range tokens {
		for word, score := range idx.matchToken(tok) {
			for _, p := range idx.postings[word] {
				s := score
				if p.field == inTags {
					s -= tagPenalty
				}
				scores, ok := best[p.record]
				if !ok {
					scores = make([]int, len(tokens))
					for i := range scores {
						scores[i] = noMatch
					}
					best[p.record] = scores
				}
				if s > scores[ti] {
					scores[ti] = s
				}
			}
		}
	}

	out := make([]Result, 0, len(best))
	for rec, scores := range best {
		r := Result{Record: &idx.records[rec], Index: rec, Words: idx.words[rec]}
		for _, s := range scores {
			if s == noMatch {
				continue
			}
			r.Matched++
			r.Score += s
		}
		out = append(out, r)
	}
	SortResults(out)

	if idx.opts.Limit > 0 && len(out) > idx.opts.Limit {
		out = out[:idx.opts.Limit]
	}
	for i := range out {
		out[i].Rank = i
	}
	return out
}

// Best returns the top result for text.
func (idx *Index) Best(text string) (Result, bool) {
	results := idx.Query(text)
	if len(results) == 0 {
		return Result{}, false
	}
	return results[0], true
}

// matchToken scores one folded query token against the vocabulary. Words
// containing the token as a subsequence are scored by the fuzzy matcher with
// bonuses for exact and prefix matches; the rest may still match within a
// small edit distance.
func (idx *Index) matchToken(tok string) map[int]int {
	scores := make(map[int]int)
	for _, m := range fuzzy.FindFrom(tok, idx.vocab) {
		s := m.Score
		switch w := idx.vocab[m.Index]; {
		case w == tok:
			s += exactBonus
		case strings.HasPrefix(w, tok):
			s += prefixBonus
		}
		scores[m.Index] = s
	}

	maxDist := typoBudget(tok)
	if maxDist == 0 {
		return scores
	}
	n := utf8.RuneCountInString(tok)
	for i, w := range idx.vocab {
		if _, ok := scores[i]; ok {
			continue
		}
		if d := idx.lengths[i] - n; d > maxDist || -d > maxDist {
			continue
		}
		if d := levenshtein.ComputeDistance(tok, w); d <= maxDist {
			scores[i] = typoBase - d*typoStep
		}
	}
	return scores
}

func typoBudget(tok string) int {
	switch n := utf8.RuneCountInString(tok); {
	case n >= 7:
		return 2
	case n >= 4:
		return 1
	}
	return 0
}
