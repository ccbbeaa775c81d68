package bcd

import (
	"bytes"
	"encoding/json"
	"fmt"
)

// CompatStatement describes one feature: where it is documented and which
// browsers support it.
type CompatStatement struct {
	Description string     `json:"description,omitempty"`
	MDNURL      string     `json:"mdn_url,omitempty"`
	SpecURL     StringList `json:"spec_url,omitempty"`
	Tags        []string   `json:"tags,omitempty"`
	SourceFile  string     `json:"source_file,omitempty"`
	Status      *Status    `json:"status,omitempty"`
	Support     SupportMap `json:"support"`
}

// Status carries the standardization flags of a feature.
type Status struct {
	Experimental  bool `json:"experimental"`
	StandardTrack bool `json:"standard_track"`
	Deprecated    bool `json:"deprecated"`
}

// DecodeStatement decodes the raw value of a compatibility marker.
func DecodeStatement(raw json.RawMessage) (*CompatStatement, error) {
	var st CompatStatement
	if err := json.Unmarshal(raw, &st); err != nil {
		return nil, fmt.Errorf("bcd: decode statement: %w", err)
	}
	return &st, nil
}

// StringList is a value the dataset stores either as one string or as a
// list of strings.
type StringList []string

// First returns the first element, or "" when the list is empty.
func (l StringList) First() string {
	if len(l) == 0 {
		return ""
	}
	return l[0]
}

func (l *StringList) UnmarshalJSON(b []byte) error {
	b = bytes.TrimSpace(b)
	switch {
	case bytes.Equal(b, []byte("null")):
		*l = nil
		return nil
	case len(b) > 0 && b[0] == '[':
		var many []string
		if err := json.Unmarshal(b, &many); err != nil {
			return err
		}
		*l = many
		return nil
	default:
		var one string
		if err := json.Unmarshal(b, &one); err != nil {
			return err
		}
		*l = StringList{one}
		return nil
	}
}

// VersionAdded is the version_added field: a version string, true when
// support exists but the version is unknown, and false or null when there
// is no support.
type VersionAdded struct {
	Version   string
	Supported bool
}

// IsUnknown reports support in an unknown version.
func (v VersionAdded) IsUnknown() bool { return v.Version == "" && v.Supported }

// IsNone reports that the feature is not supported.
func (v VersionAdded) IsNone() bool { return v.Version == "" && !v.Supported }

func (v *VersionAdded) UnmarshalJSON(b []byte) error {
	b = bytes.TrimSpace(b)
	switch string(b) {
	case "null", "false":
		*v = VersionAdded{}
		return nil
	case "true":
		*v = VersionAdded{Supported: true}
		return nil
	}
	var s string
	if err := json.Unmarshal(b, &s); err != nil {
		return fmt.Errorf("bcd: version_added: %w", err)
	}
	*v = VersionAdded{Version: s, Supported: s != ""}
	return nil
}

func (v VersionAdded) MarshalJSON() ([]byte, error) {
	if v.Version != "" {
		return json.Marshal(v.Version)
	}
	return json.Marshal(v.Supported)
}

// Flag is a preference or runtime flag that gates a feature.
type Flag struct {
	Type       string `json:"type"`
	Name       string `json:"name"`
	ValueToSet string `json:"value_to_set,omitempty"`
}

// SimpleSupport is one support statement for one browser.
type SimpleSupport struct {
	VersionAdded          VersionAdded    `json:"version_added"`
	VersionRemoved        json.RawMessage `json:"version_removed,omitempty"`
	PartialImplementation bool            `json:"partial_implementation,omitempty"`
	Prefix                string          `json:"prefix,omitempty"`
	AlternativeName       string          `json:"alternative_name,omitempty"`
	Flags                 []Flag          `json:"flags,omitempty"`
	Notes                 StringList      `json:"notes,omitempty"`
	ImplURL               StringList      `json:"impl_url,omitempty"`
}

// SupportStatement holds one or more statements for a browser. Only the
// first is displayed.
type SupportStatement []SimpleSupport

// First returns the leading statement.
func (s SupportStatement) First() (SimpleSupport, bool) {
	if len(s) == 0 {
		return SimpleSupport{}, false
	}
	return s[0], true
}

func (s *SupportStatement) UnmarshalJSON(b []byte) error {
	b = bytes.TrimSpace(b)
	switch {
	case bytes.Equal(b, []byte("null")):
		*s = nil
		return nil
	case len(b) > 0 && b[0] == '"':
		// unresolved "mirror" marker from the source tree
		*s = nil
		return nil
	case len(b) > 0 && b[0] == '[':
		var many []SimpleSupport
		if err := json.Unmarshal(b, &many); err != nil {
			return err
		}
		*s = many
		return nil
	default:
		var one SimpleSupport
		if err := json.Unmarshal(b, &one); err != nil {
			return err
		}
		*s = SupportStatement{one}
		return nil
	}
}

// BrowserSupport pairs a browser id with its support statement.
type BrowserSupport struct {
	Browser   string
	Statement SupportStatement
}

// SupportMap is the support object of a statement, kept in document order.
type SupportMap []BrowserSupport

// Get returns the statement for a browser id.
func (m SupportMap) Get(id string) (SupportStatement, bool) {
	for _, bs := range m {
		if bs.Browser == id {
			return bs.Statement, true
		}
	}
	return nil, false
}

func (m *SupportMap) UnmarshalJSON(b []byte) error {
	dec := json.NewDecoder(bytes.NewReader(b))
	tok, err := dec.Token()
	if err != nil {
		return err
	}
	if tok == nil {
		*m = nil
		return nil
	}
	if d, ok := tok.(json.Delim); !ok || d != '{' {
		return fmt.Errorf("bcd: support must be an object, got %v", tok)
	}
	var out SupportMap
	for dec.More() {
		kt, err := dec.Token()
		if err != nil {
			return err
		}
		id, ok := kt.(string)
		if !ok {
			return fmt.Errorf("bcd: unexpected support key %v", kt)
		}
		var st SupportStatement
		if err := dec.Decode(&st); err != nil {
			return fmt.Errorf("bcd: support %q: %w", id, err)
		}
		out = append(out, BrowserSupport{Browser: id, Statement: st})
	}
	*m = out
	return nil
}
