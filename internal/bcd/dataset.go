package bcd

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
)

// Meta is the dataset's __meta block.
type Meta struct {
	Version   string `json:"version"`
	Timestamp string `json:"timestamp"`
}

// Dataset is a parsed browser-compat-data document.
type Dataset struct {
	Root     *Node
	Browsers *Browsers
	Meta     Meta
}

// Load parses a whole data.json document.
func Load(r io.Reader) (*Dataset, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("bcd: read dataset: %w", err)
	}
	return LoadBytes(data)
}

// LoadBytes parses a data.json document already held in memory.
func LoadBytes(data []byte) (*Dataset, error) {
	root, err := Parse(bytes.NewReader(data), IsCompatKey)
	if err != nil {
		return nil, err
	}

	var head struct {
		Browsers json.RawMessage `json:"browsers"`
		Meta     Meta            `json:"__meta"`
	}
	if err := json.Unmarshal(data, &head); err != nil {
		return nil, fmt.Errorf("bcd: decode header: %w", err)
	}
	browsers, err := decodeBrowsers(head.Browsers)
	if err != nil {
		return nil, err
	}

	return &Dataset{
		Root:     root,
		Browsers: NewBrowsers(browsers),
		Meta:     head.Meta,
	}, nil
}

// Entries flattens the dataset into one entry per compatibility statement.
func (d *Dataset) Entries() []Entry {
	return Flatten(d.Root, IsCompatKey)
}

// Validate checks that data looks like a dataset document without building
// the tree.
func Validate(data []byte) error {
	trimmed := bytes.TrimSpace(data)
	if len(trimmed) == 0 || trimmed[0] != '{' {
		return ErrNotObject
	}
	if !json.Valid(trimmed) {
		return fmt.Errorf("bcd: dataset is not valid JSON")
	}
	return nil
}
