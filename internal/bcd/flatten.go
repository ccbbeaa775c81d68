package bcd

import "encoding/json"

// Entry is one terminal value found while flattening, with the keys leading
// to it. Path never includes the terminal key itself.
type Entry struct {
	Path  []string
	Value json.RawMessage
}

// Flatten walks root in document order and returns one Entry per terminal
// key. Branches without any terminal key below them contribute nothing and
// non-object values under non-terminal keys are skipped. A nil isTerminal
// matches no key, so nothing is emitted.
func Flatten(root *Node, isTerminal func(string) bool) []Entry {
	if isTerminal == nil {
		return nil
	}
	var out []Entry
	flatten(root, nil, isTerminal, &out)
	return out
}

func flatten(n *Node, path []string, isTerminal func(string) bool, out *[]Entry) {
	if n == nil || n.Kind != KindBranch {
		return
	}
	for _, f := range n.Fields {
		if isTerminal(f.Key) {
			if f.Node == nil {
				continue
			}
			p := make([]string, len(path))
			copy(p, path)
			*out = append(*out, Entry{Path: p, Value: f.Node.Raw})
			continue
		}
		if f.Node == nil || f.Node.Kind != KindBranch {
			continue
		}
		flatten(f.Node, append(path[:len(path):len(path)], f.Key), isTerminal, out)
	}
}
