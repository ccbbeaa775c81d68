package bcd

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
)

// CompatKey marks the value that holds a feature's compatibility statement.
const CompatKey = "__compat"

// IsCompatKey reports whether key is the terminal compatibility marker.
func IsCompatKey(key string) bool { return key == CompatKey }

// Kind tells which variant of Node is populated.
type Kind uint8

const (
	// KindBranch is an object whose children are walked.
	KindBranch Kind = iota
	// KindLeaf is any other value, kept as raw JSON.
	KindLeaf
)

// Field is one key of a branch, in document order.
type Field struct {
	Key  string
	Node *Node
}

// Node is one value of the dataset tree.
//
// Branches keep their fields in the order they appear in the document so
// that flattening is stable across runs. Leaves carry the raw JSON of the
// value; arrays outside terminal positions are not retained and have a nil
// Raw.
type Node struct {
	Kind   Kind
	Fields []Field
	Raw    json.RawMessage
}

// Lookup returns the child stored under key, or nil.
func (n *Node) Lookup(key string) *Node {
	if n == nil || n.Kind != KindBranch {
		return nil
	}
	for _, f := range n.Fields {
		if f.Key == key {
			return f.Node
		}
	}
	return nil
}

// ErrNotObject is returned when the document root is not a JSON object.
var ErrNotObject = errors.New("bcd: document root is not an object")

// Parse reads a JSON document into a Node tree. Values stored under keys for
// which isTerminal returns true are captured whole as leaves instead of
// being expanded.
func Parse(r io.Reader, isTerminal func(string) bool) (*Node, error) {
	dec := json.NewDecoder(r)
	dec.UseNumber()
	tok, err := dec.Token()
	if err != nil {
		return nil, fmt.Errorf("bcd: read root: %w", err)
	}
	if d, ok := tok.(json.Delim); !ok || d != '{' {
		return nil, ErrNotObject
	}
	return parseObject(dec, isTerminal)
}

func parseObject(dec *json.Decoder, isTerminal func(string) bool) (*Node, error) {
	n := &Node{Kind: KindBranch}
	for dec.More() {
		tok, err := dec.Token()
		if err != nil {
			return nil, fmt.Errorf("bcd: read key: %w", err)
		}
		key, ok := tok.(string)
		if !ok {
			return nil, fmt.Errorf("bcd: unexpected token %v where key expected", tok)
		}

		var child *Node
		if isTerminal != nil && isTerminal(key) {
			var raw json.RawMessage
			if err := dec.Decode(&raw); err != nil {
				return nil, fmt.Errorf("bcd: decode %q: %w", key, err)
			}
			child = &Node{Kind: KindLeaf, Raw: raw}
		} else {
			child, err = parseValue(dec, isTerminal)
			if err != nil {
				return nil, err
			}
		}
		n.Fields = append(n.Fields, Field{Key: key, Node: child})
	}
	// closing '}'
	if _, err := dec.Token(); err != nil {
		return nil, fmt.Errorf("bcd: close object: %w", err)
	}
	return n, nil
}

func parseValue(dec *json.Decoder, isTerminal func(string) bool) (*Node, error) {
	tok, err := dec.Token()
	if err != nil {
		return nil, fmt.Errorf("bcd: read value: %w", err)
	}
	switch v := tok.(type) {
	case json.Delim:
		switch v {
		case '{':
			return parseObject(dec, isTerminal)
		case '[':
			for dec.More() {
				if _, err := parseValue(dec, isTerminal); err != nil {
					return nil, err
				}
			}
			if _, err := dec.Token(); err != nil {
				return nil, fmt.Errorf("bcd: close array: %w", err)
			}
			return &Node{Kind: KindLeaf}, nil
		default:
			return nil, fmt.Errorf("bcd: unexpected delimiter %v", v)
		}
	default:
		raw, err := json.Marshal(v)
		if err != nil {
			return nil, fmt.Errorf("bcd: encode scalar: %w", err)
		}
		return &Node{Kind: KindLeaf, Raw: raw}, nil
	}
}
