// Package metadata implements the bounded key/value annotation map attached
// to a response: at most 16 entries, keys up to 64 characters, values up to
// 512 characters. The bounds are enforced on every write path.
package metadata

import (
	"encoding/json"
	"fmt"
)

// Validation bounds.
const (
	MaxEntries     = 16
	MaxKeyLength   = 64
	MaxValueLength = 512
)

// ErrorKind identifies which bound a mutation violated.
type ErrorKind string

const (
	ErrTooManyKeys  ErrorKind = "too_many_keys"
	ErrKeyTooLong   ErrorKind = "key_too_long"
	ErrValueTooLong ErrorKind = "value_too_long"
)

// Error reports a metadata bound violation.
type Error struct {
	Kind   ErrorKind
	Length int // offending length for key/value violations
}

func (e *Error) Error() string {
	switch e.Kind {
	case ErrTooManyKeys:
		return fmt.Sprintf("metadata cannot have more than %d key-value pairs", MaxEntries)
	case ErrKeyTooLong:
		return fmt.Sprintf("metadata key too long: %d characters (max %d)", e.Length, MaxKeyLength)
	case ErrValueTooLong:
		return fmt.Sprintf("metadata value too long: %d characters (max %d)", e.Length, MaxValueLength)
	default:
		return "metadata validation failed"
	}
}

// Metadata is a validated string-to-string annotation map.
type Metadata struct {
	entries map[string]string
}

// New creates an empty Metadata.
func New() *Metadata {
	return &Metadata{entries: make(map[string]string)}
}

// FromMap builds Metadata from a plain map, validating every bound. The input
// map is copied; a validation failure leaves no observable state behind.
func FromMap(m map[string]string) (*Metadata, error) {
	if len(m) > MaxEntries {
		return nil, &Error{Kind: ErrTooManyKeys}
	}
	for key, value := range m {
		if len(key) > MaxKeyLength {
			return nil, &Error{Kind: ErrKeyTooLong, Length: len(key)}
		}
		if len(value) > MaxValueLength {
			return nil, &Error{Kind: ErrValueTooLong, Length: len(value)}
		}
	}

	entries := make(map[string]string, len(m))
	for key, value := range m {
		entries[key] = value
	}
	return &Metadata{entries: entries}, nil
}

// Insert adds or overwrites a key-value pair. Overwriting an existing key is
// allowed even at the entry cap; inserting a new key at the cap fails.
func (m *Metadata) Insert(key, value string) error {
	if _, exists := m.entries[key]; !exists && len(m.entries) >= MaxEntries {
		return &Error{Kind: ErrTooManyKeys}
	}
	if len(key) > MaxKeyLength {
		return &Error{Kind: ErrKeyTooLong, Length: len(key)}
	}
	if len(value) > MaxValueLength {
		return &Error{Kind: ErrValueTooLong, Length: len(value)}
	}

	if m.entries == nil {
		m.entries = make(map[string]string)
	}
	m.entries[key] = value
	return nil
}

// Get returns the value stored under key.
func (m *Metadata) Get(key string) (string, bool) {
	value, ok := m.entries[key]
	return value, ok
}

// Remove deletes key and returns the removed value, if any.
func (m *Metadata) Remove(key string) (string, bool) {
	value, ok := m.entries[key]
	if ok {
		delete(m.entries, key)
	}
	return value, ok
}

// Len returns the number of entries.
func (m *Metadata) Len() int {
	return len(m.entries)
}

// IsEmpty reports whether the metadata holds no entries.
func (m *Metadata) IsEmpty() bool {
	return len(m.entries) == 0
}

// Map returns a copy of the underlying entries.
func (m *Metadata) Map() map[string]string {
	out := make(map[string]string, len(m.entries))
	for key, value := range m.entries {
		out[key] = value
	}
	return out
}

// ToStorageForm serializes the entries to the flat JSON object persisted in
// the store.
func (m *Metadata) ToStorageForm() (string, error) {
	data, err := json.Marshal(m.entries)
	if err != nil {
		return "", err
	}
	return string(data), nil
}

// FromStorageForm deserializes persisted metadata without re-validating.
// The store only ever holds values that passed FromMap or Insert; tightening
// this is a conscious behavior change for out-of-band-written rows.
func FromStorageForm(raw string) (*Metadata, error) {
	entries := make(map[string]string)
	if err := json.Unmarshal([]byte(raw), &entries); err != nil {
		return nil, err
	}
	return &Metadata{entries: entries}, nil
}

// MarshalJSON renders the wire form, a flat JSON object.
func (m *Metadata) MarshalJSON() ([]byte, error) {
	if m.entries == nil {
		return []byte("{}"), nil
	}
	return json.Marshal(m.entries)
}

// UnmarshalJSON parses and validates the wire form. Request intake runs the
// full validation, unlike FromStorageForm.
func (m *Metadata) UnmarshalJSON(data []byte) error {
	raw := make(map[string]string)
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	parsed, err := FromMap(raw)
	if err != nil {
		return err
	}
	m.entries = parsed.entries
	return nil
}
