package metadata_test

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"testing"

	"responses-api/internal/domain/metadata"
)

func kindOf(t *testing.T, err error) metadata.ErrorKind {
	t.Helper()
	var mdErr *metadata.Error
	if !errors.As(err, &mdErr) {
		t.Fatalf("expected *metadata.Error, got %T (%v)", err, err)
	}
	return mdErr.Kind
}

func TestFromMap_Valid(t *testing.T) {
	tests := []struct {
		name string
		m    map[string]string
	}{
		{"empty map", map[string]string{}},
		{"single entry", map[string]string{"env": "prod"}},
		{"key at limit", map[string]string{strings.Repeat("k", 64): "v"}},
		{"value at limit", map[string]string{"k": strings.Repeat("v", 512)}},
		{"sixteen entries", mapOfSize(16)},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			md, err := metadata.FromMap(tt.m)
			if err != nil {
				t.Fatalf("FromMap() error = %v", err)
			}
			if md.Len() != len(tt.m) {
				t.Errorf("Len() = %d, want %d", md.Len(), len(tt.m))
			}
		})
	}
}

func TestFromMap_BoundViolations(t *testing.T) {
	tests := []struct {
		name string
		m    map[string]string
		kind metadata.ErrorKind
	}{
		{"seventeen entries", mapOfSize(17), metadata.ErrTooManyKeys},
		{"key too long", map[string]string{strings.Repeat("k", 65): "v"}, metadata.ErrKeyTooLong},
		{"value too long", map[string]string{"k": strings.Repeat("v", 513)}, metadata.ErrValueTooLong},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			md, err := metadata.FromMap(tt.m)
			if err == nil {
				t.Fatal("FromMap() expected error, got nil")
			}
			if got := kindOf(t, err); got != tt.kind {
				t.Errorf("error kind = %q, want %q", got, tt.kind)
			}
			if md != nil {
				t.Error("FromMap() returned partial metadata on failure")
			}
		})
	}
}

func TestInsert_CapSemantics(t *testing.T) {
	md, err := metadata.FromMap(mapOfSize(16))
	if err != nil {
		t.Fatalf("FromMap() error = %v", err)
	}

	if err := md.Insert("key17", "value"); err == nil {
		t.Fatal("Insert() of new key at cap expected error")
	} else if got := kindOf(t, err); got != metadata.ErrTooManyKeys {
		t.Errorf("error kind = %q, want %q", got, metadata.ErrTooManyKeys)
	}

	// Overwriting an existing key does not count toward the cap.
	if err := md.Insert("key00", "overwritten"); err != nil {
		t.Fatalf("Insert() overwrite at cap error = %v", err)
	}
	if md.Len() != 16 {
		t.Errorf("Len() = %d after overwrite, want 16", md.Len())
	}
	if v, _ := md.Get("key00"); v != "overwritten" {
		t.Errorf("Get(key00) = %q, want %q", v, "overwritten")
	}
}

func TestInsert_BoundViolations(t *testing.T) {
	md := metadata.New()

	if err := md.Insert(strings.Repeat("k", 65), "v"); kindOf(t, err) != metadata.ErrKeyTooLong {
		t.Error("expected key_too_long")
	}
	if err := md.Insert("k", strings.Repeat("v", 513)); kindOf(t, err) != metadata.ErrValueTooLong {
		t.Error("expected value_too_long")
	}
	if md.Len() != 0 {
		t.Errorf("Len() = %d after rejected inserts, want 0", md.Len())
	}
}

func TestRemove(t *testing.T) {
	md := metadata.New()
	if err := md.Insert("trace", "abc123"); err != nil {
		t.Fatalf("Insert() error = %v", err)
	}

	value, ok := md.Remove("trace")
	if !ok || value != "abc123" {
		t.Errorf("Remove() = (%q, %v), want (abc123, true)", value, ok)
	}
	if _, ok := md.Remove("trace"); ok {
		t.Error("Remove() of missing key reported ok")
	}
	if !md.IsEmpty() {
		t.Error("IsEmpty() = false after removing last entry")
	}
}

func TestStorageForm_RoundTrip(t *testing.T) {
	source := map[string]string{"env": "prod", "team": "infra", "": ""}
	md, err := metadata.FromMap(source)
	if err != nil {
		t.Fatalf("FromMap() error = %v", err)
	}

	raw, err := md.ToStorageForm()
	if err != nil {
		t.Fatalf("ToStorageForm() error = %v", err)
	}

	restored, err := metadata.FromStorageForm(raw)
	if err != nil {
		t.Fatalf("FromStorageForm() error = %v", err)
	}

	got := restored.Map()
	if len(got) != len(source) {
		t.Fatalf("round-trip size = %d, want %d", len(got), len(source))
	}
	for key, want := range source {
		if got[key] != want {
			t.Errorf("round-trip[%q] = %q, want %q", key, got[key], want)
		}
	}
}

func TestFromStorageForm_DoesNotRevalidate(t *testing.T) {
	// Persisted rows are trusted: an over-long value loads without error.
	raw := fmt.Sprintf(`{"k":%q}`, strings.Repeat("v", 600))
	md, err := metadata.FromStorageForm(raw)
	if err != nil {
		t.Fatalf("FromStorageForm() error = %v", err)
	}
	if v, _ := md.Get("k"); len(v) != 600 {
		t.Errorf("loaded value length = %d, want 600", len(v))
	}
}

func TestUnmarshalJSON_Validates(t *testing.T) {
	var md metadata.Metadata
	raw := fmt.Sprintf(`{"k":%q}`, strings.Repeat("v", 513))
	err := json.Unmarshal([]byte(raw), &md)
	if err == nil {
		t.Fatal("Unmarshal expected error for over-long value")
	}
}

func mapOfSize(n int) map[string]string {
	m := make(map[string]string, n)
	for i := 0; i < n; i++ {
		m[fmt.Sprintf("key%02d", i)] = "value"
	}
	return m
}
