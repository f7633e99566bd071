package searchindex

import (
	"bytes"
	"encoding/json"
	"fmt"
)

// Postings lists the documents a term occurs in. The index stores a single
// document as a bare number and several as an array; both decode here.
type Postings []int

// UnmarshalJSON accepts a number or an array of numbers.
func (p *Postings) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if bytes.Equal(data, []byte("null")) {
		*p = nil
		return nil
	}
	if len(data) > 0 && data[0] == '[' {
		var ids []int
		if err := json.Unmarshal(data, &ids); err != nil {
			return fmt.Errorf("%w: postings: %v", ErrInvalidIndex, err)
		}
		*p = ids
		return nil
	}
	var id int
	if err := json.Unmarshal(data, &id); err != nil {
		return fmt.Errorf("%w: postings: %v", ErrInvalidIndex, err)
	}
	*p = Postings{id}
	return nil
}

// Contains reports whether doc is in the postings.
func (p Postings) Contains(doc int) bool {
	for _, id := range p {
		if id == doc {
			return true
		}
	}
	return false
}

// Match locates an object: [docId, typeId, priority, anchor].
type Match struct {
	DocID    int
	TypeID   int
	Priority int
	// Anchor is "" (use the full name), "-" (label-prefixed full name) or a literal anchor.
	Anchor string
}

// UnmarshalJSON decodes the four-element match tuple.
func (m *Match) UnmarshalJSON(data []byte) error {
	var raw []json.RawMessage
	if err := json.Unmarshal(data, &raw); err != nil {
		return fmt.Errorf("%w: object match: %v", ErrInvalidIndex, err)
	}
	if len(raw) < 4 {
		return fmt.Errorf("%w: object match has %d fields, want 4", ErrInvalidIndex, len(raw))
	}
	fields := []any{&m.DocID, &m.TypeID, &m.Priority, &m.Anchor}
	for i, f := range fields {
		if err := json.Unmarshal(raw[i], f); err != nil {
			return fmt.Errorf("%w: object match field %d: %v", ErrInvalidIndex, i, err)
		}
	}
	return nil
}

// ObjName describes an object type: [domain, label, display name].
type ObjName struct {
	Domain  string
	Label   string
	Display string
}

// UnmarshalJSON decodes the three-element objnames entry.
func (o *ObjName) UnmarshalJSON(data []byte) error {
	var parts []string
	if err := json.Unmarshal(data, &parts); err != nil {
		return fmt.Errorf("%w: objnames entry: %v", ErrInvalidIndex, err)
	}
	if len(parts) < 3 {
		return fmt.Errorf("%w: objnames entry has %d fields, want 3", ErrInvalidIndex, len(parts))
	}
	o.Domain, o.Label, o.Display = parts[0], parts[1], parts[2]
	return nil
}

// ObjectEntry is one short name under a prefix.
type ObjectEntry struct {
	Name  string
	Match Match
}

// ObjectGroup holds the objects sharing a namespace prefix.
type ObjectGroup struct {
	Prefix  string
	Entries []ObjectEntry
}

// Objects is the prefix → name → match mapping, kept in asset order so that
// equal-ranked results come out the same way on every run.
type Objects []ObjectGroup

// Len returns the total number of objects.
func (o Objects) Len() int {
	n := 0
	for _, g := range o {
		n += len(g.Entries)
	}
	return n
}

// UnmarshalJSON decodes the nested object mapping preserving key order.
func (o *Objects) UnmarshalJSON(data []byte) error {
	dec := json.NewDecoder(bytes.NewReader(data))
	if err := expectDelim(dec, '{'); err != nil {
		return err
	}
	var groups Objects
	for dec.More() {
		prefix, err := readKey(dec)
		if err != nil {
			return err
		}
		if err := expectDelim(dec, '{'); err != nil {
			return err
		}
		group := ObjectGroup{Prefix: prefix}
		for dec.More() {
			name, err := readKey(dec)
			if err != nil {
				return err
			}
			var m Match
			if err := dec.Decode(&m); err != nil {
				return fmt.Errorf("objects[%q][%q]: %w", prefix, name, err)
			}
			group.Entries = append(group.Entries, ObjectEntry{Name: name, Match: m})
		}
		if err := expectDelim(dec, '}'); err != nil {
			return err
		}
		groups = append(groups, group)
	}
	if err := expectDelim(dec, '}'); err != nil {
		return err
	}
	*o = groups
	return nil
}

func expectDelim(dec *json.Decoder, want json.Delim) error {
	tok, err := dec.Token()
	if err != nil {
		return fmt.Errorf("%w: objects: %v", ErrInvalidIndex, err)
	}
	if d, ok := tok.(json.Delim); !ok || d != want {
		return fmt.Errorf("%w: objects: expected %q, got %v", ErrInvalidIndex, want, tok)
	}
	return nil
}

func readKey(dec *json.Decoder) (string, error) {
	tok, err := dec.Token()
	if err != nil {
		return "", fmt.Errorf("%w: objects: %v", ErrInvalidIndex, err)
	}
	key, ok := tok.(string)
	if !ok {
		return "", fmt.Errorf("%w: objects: expected key, got %v", ErrInvalidIndex, tok)
	}
	return key, nil
}
