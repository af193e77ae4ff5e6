package storage

import (
	"os"
	"path/filepath"
	"testing"
)

type record struct {
	ID    int    `json:"id"`
	Login string `json:"login"`
}

func TestJSONFileRoundTrip(t *testing.T) {
	t.Parallel()

	f := NewJSONFile[[]record](filepath.Join(t.TempDir(), "nested", "candidates.json"))

	got, err := f.Load()
	if err != nil {
		t.Fatalf("load missing file: %v", err)
	}
	if got != nil {
		t.Fatalf("expected nil slice for missing file, got %v", got)
	}

	want := []record{{ID: 1, Login: "alice"}, {ID: 2, Login: "bob"}}
	if err := f.Save(want); err != nil {
		t.Fatalf("save: %v", err)
	}

	got, err = f.Load()
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if len(got) != 2 || got[1].Login != "bob" {
		t.Fatalf("unexpected records %+v", got)
	}

	entries, err := os.ReadDir(filepath.Dir(f.Path))
	if err != nil {
		t.Fatalf("read dir: %v", err)
	}
	if len(entries) != 1 {
		t.Fatalf("expected temporary files to be cleaned up, got %d entries", len(entries))
	}
}

func TestJSONFileInvalid(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "broken.json")
	if err := os.WriteFile(path, []byte("{not json"), 0o600); err != nil {
		t.Fatalf("write: %v", err)
	}

	if _, err := NewJSONFile[[]record](path).Load(); err == nil {
		t.Fatalf("expected decode error")
	}
}

func TestJSONFileEmpty(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "empty.json")
	if err := os.WriteFile(path, nil, 0o600); err != nil {
		t.Fatalf("write: %v", err)
	}

	got, err := NewJSONFile[map[string]int](path).Load()
	if err != nil || got != nil {
		t.Fatalf("expected zero value, got %v, %v", got, err)
	}
}
