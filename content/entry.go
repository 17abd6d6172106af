// Package content holds the client-side model of the site's editable content:
// a dictionary of entries addressed by (section, key), kept in sync with the
// remote content service, plus the helpers the editor builds on top of it.
package content

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strconv"
)

// Type is the kind of value an entry holds.
type Type string

const (
	TypeText  Type = "text"
	TypeImage Type = "image"
	TypeJSON  Type = "json"
)

// ID is the backend-assigned surrogate of an entry. The service sends numbers
// for rows it created and strings for anything else, so both decode here.
type ID string

// UnmarshalJSON accepts a JSON number, a JSON string or null.
func (id *ID) UnmarshalJSON(b []byte) error {
	b = bytes.TrimSpace(b)
	if len(b) == 0 || bytes.Equal(b, []byte("null")) {
		*id = ""
		return nil
	}
	if b[0] == '"' {
		var s string
		if err := json.Unmarshal(b, &s); err != nil {
			return err
		}
		*id = ID(s)
		return nil
	}
	var n json.Number
	if err := json.Unmarshal(b, &n); err != nil {
		return fmt.Errorf("content: id is neither string nor number: %s", b)
	}
	*id = ID(n.String())
	return nil
}

// MarshalJSON writes numeric ids back as numbers so the service sees the same
// shape it produced.
func (id ID) MarshalJSON() ([]byte, error) {
	if id == "" {
		return []byte("null"), nil
	}
	if _, err := strconv.ParseInt(string(id), 10, 64); err == nil {
		return []byte(id), nil
	}
	return json.Marshal(string(id))
}

// String implements fmt.Stringer.
func (id ID) String() string { return string(id) }

// Entry is one addressable piece of content.
type Entry struct {
	ID    ID     `json:"id,omitempty"`
	Value string `json:"value"`
	Type  Type   `json:"type"`
	Order int    `json:"order"`
}

// Section maps keys to entries.
type Section map[string]Entry

// Snapshot is the full content dictionary as returned by the service.
type Snapshot map[string]Section

// Clone returns a deep copy of s.
func (s Snapshot) Clone() Snapshot {
	out := make(Snapshot, len(s))
	for name, sec := range s {
		cp := make(Section, len(sec))
		for k, e := range sec {
			cp[k] = e
		}
		out[name] = cp
	}
	return out
}

// Address is the stable (section, key) identity of an entry.
type Address struct {
	Section string
	Key     string
}

func (a Address) String() string { return a.Section + "." + a.Key }

// ParseAddress splits "section.key". The key may itself contain dots.
func ParseAddress(s string) (Address, bool) {
	for i := 0; i < len(s); i++ {
		if s[i] == '.' {
			if i == 0 || i == len(s)-1 {
				return Address{}, false
			}
			return Address{Section: s[:i], Key: s[i+1:]}, true
		}
	}
	return Address{}, false
}
