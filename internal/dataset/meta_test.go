package dataset

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
)

func writeMeta(t *testing.T, root, content string) {
	t.Helper()
	if err := os.MkdirAll(root, 0o755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(filepath.Join(root, MetaFileName), []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}
}

func TestLoadIndex_BuildsDerivedTables(t *testing.T) {
	root := t.TempDir()
	writeMeta(t, root, `{"ids": {
		"0": {"nb201-string": "A", "isomorph": "0"},
		"1": {"nb201-string": "B", "isomorph": "0"},
		"2": {"nb201-string": "C", "isomorph": "2"}
	}}`)

	idx, err := LoadIndex(root)
	if err != nil {
		t.Fatalf("LoadIndex: %v", err)
	}
	if idx.Len() != 3 {
		t.Fatalf("expected 3 ids, got %d", idx.Len())
	}

	canonical := idx.CanonicalIDs()
	if len(canonical) != 2 || canonical[0] != "0" || canonical[1] != "2" {
		t.Fatalf("unexpected canonical ids: %v", canonical)
	}

	got, err := idx.ResolveCanonical("1")
	if err != nil {
		t.Fatalf("ResolveCanonical: %v", err)
	}
	if got != "0" {
		t.Fatalf("ResolveCanonical(1)=%q want %q", got, "0")
	}
}

func TestLoadIndex_MissingManifest(t *testing.T) {
	_, err := LoadIndex(t.TempDir())
	if err == nil {
		t.Fatalf("expected error for missing meta.json")
	}
	if !errors.Is(err, os.ErrNotExist) {
		t.Fatalf("expected not-exist error, got %v", err)
	}
}

func TestLoadIndex_MalformedManifest(t *testing.T) {
	root := t.TempDir()
	writeMeta(t, root, `{"ids": `)
	if _, err := LoadIndex(root); err == nil {
		t.Fatalf("expected error for malformed meta.json")
	}
}

func TestResolveCanonical_Idempotent(t *testing.T) {
	root := t.TempDir()
	writeMeta(t, root, `{"ids": {
		"0": {"nb201-string": "A", "isomorph": "0"},
		"1": {"nb201-string": "B", "isomorph": "0"},
		"2": {"nb201-string": "C", "isomorph": "2"},
		"3": {"nb201-string": "D", "isomorph": "2"}
	}}`)
	idx, err := LoadIndex(root)
	if err != nil {
		t.Fatalf("LoadIndex: %v", err)
	}

	for _, id := range idx.IDs() {
		once, err := idx.ResolveCanonical(id)
		if err != nil {
			t.Fatalf("ResolveCanonical(%s): %v", id, err)
		}
		twice, err := idx.ResolveCanonical(once)
		if err != nil {
			t.Fatalf("ResolveCanonical(%s): %v", once, err)
		}
		if once != twice {
			t.Fatalf("canonicalization not idempotent: %s -> %s -> %s", id, once, twice)
		}
	}
}

func TestStringRoundTrip(t *testing.T) {
	root := t.TempDir()
	writeMeta(t, root, `{"ids": {
		"0": {"nb201-string": "A", "isomorph": "0"},
		"1": {"nb201-string": "B", "isomorph": "1"}
	}}`)
	idx, err := LoadIndex(root)
	if err != nil {
		t.Fatalf("LoadIndex: %v", err)
	}

	for _, id := range idx.IDs() {
		s, err := idx.IDToString(id)
		if err != nil {
			t.Fatalf("IDToString(%s): %v", id, err)
		}
		back, err := idx.StringToID(s)
		if err != nil {
			t.Fatalf("StringToID(%q): %v", s, err)
		}
		// Up to duplicate-string collisions the resolved id must share the
		// original id's encoding.
		s2, err := idx.IDToString(back)
		if err != nil {
			t.Fatalf("IDToString(%s): %v", back, err)
		}
		if s2 != s {
			t.Fatalf("round trip changed encoding: %q -> %s -> %q", s, back, s2)
		}
	}
}

func TestStringToID_DuplicateEncodingLastWins(t *testing.T) {
	root := t.TempDir()
	// Ids 2 and 10 share an encoding; numeric order makes 10 the winner.
	writeMeta(t, root, `{"ids": {
		"2":  {"nb201-string": "X", "isomorph": "2"},
		"10": {"nb201-string": "X", "isomorph": "10"}
	}}`)
	idx, err := LoadIndex(root)
	if err != nil {
		t.Fatalf("LoadIndex: %v", err)
	}

	id, err := idx.StringToID("X")
	if err != nil {
		t.Fatalf("StringToID: %v", err)
	}
	if id != "10" {
		t.Fatalf("duplicate encoding winner: got %s want 10", id)
	}
}

func TestLookup_UnknownErrors(t *testing.T) {
	root := t.TempDir()
	writeMeta(t, root, `{"ids": {"0": {"nb201-string": "A", "isomorph": "0"}}}`)
	idx, err := LoadIndex(root)
	if err != nil {
		t.Fatalf("LoadIndex: %v", err)
	}

	if _, err := idx.ResolveCanonical("99"); !errors.Is(err, ErrUnknownID) {
		t.Fatalf("expected ErrUnknownID, got %v", err)
	}
	if _, err := idx.IDToString("99"); !errors.Is(err, ErrUnknownID) {
		t.Fatalf("expected ErrUnknownID, got %v", err)
	}
	if _, err := idx.StringToID("nope"); !errors.Is(err, ErrUnknownString) {
		t.Fatalf("expected ErrUnknownString, got %v", err)
	}
}

func TestFindStrings(t *testing.T) {
	root := t.TempDir()
	writeMeta(t, root, `{"ids": {
		"0": {"nb201-string": "|skip_connect~0|+|none~0|nor_conv_3x3~1|", "isomorph": "0"},
		"1": {"nb201-string": "|nor_conv_1x1~0|+|none~0|none~1|", "isomorph": "0"},
		"2": {"nb201-string": "|nor_conv_3x3~0|+|skip_connect~0|none~1|", "isomorph": "2"}
	}}`)
	idx, err := LoadIndex(root)
	if err != nil {
		t.Fatalf("LoadIndex: %v", err)
	}

	got := idx.FindStrings("skip_connect nor_conv_3x3", 0)
	if len(got) != 2 {
		t.Fatalf("expected 2 matches, got %d", len(got))
	}
	if got[0].ID != "0" || got[1].ID != "2" {
		t.Fatalf("unexpected match order: %v", got)
	}
	if got[1].Canonical != true || got[0].Canonical != true {
		t.Fatalf("unexpected canonical flags: %v", got)
	}

	if n := len(idx.FindStrings("skip_connect", 1)); n != 1 {
		t.Fatalf("limit not applied: got %d matches", n)
	}
	if n := len(idx.FindStrings("   ", 0)); n != 0 {
		t.Fatalf("empty query must match nothing, got %d", n)
	}
}
