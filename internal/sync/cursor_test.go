package sync

import (
	"os"
	"path/filepath"
	"testing"

	json "github.com/goccy/go-json"
)

func tempStore(t *testing.T) *CursorStore {
	t.Helper()
	return NewCursorStore(filepath.Join(t.TempDir(), "next.json"))
}

func TestCursorStoreMissingFile(t *testing.T) {
	store := tempStore(t)
	cursor, ok, err := store.Load()
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if ok || cursor != "" {
		t.Errorf("missing file should mean no cursor, got %q", cursor)
	}
}

func TestCursorStoreRoundtrip(t *testing.T) {
	store := tempStore(t)
	if err := store.Save("https://jawbone.com/page/2"); err != nil {
		t.Fatalf("Save: %v", err)
	}

	cursor, ok, err := store.Load()
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if !ok || cursor != "https://jawbone.com/page/2" {
		t.Errorf("Load = %q, %v", cursor, ok)
	}

	// Saves overwrite; there is only one authoritative value.
	if err := store.Save("https://jawbone.com/page/3"); err != nil {
		t.Fatalf("second Save: %v", err)
	}
	cursor, _, _ = store.Load()
	if cursor != "https://jawbone.com/page/3" {
		t.Errorf("after overwrite Load = %q", cursor)
	}
}

func TestCursorFileShape(t *testing.T) {
	store := tempStore(t)
	if err := store.Save("urlB"); err != nil {
		t.Fatal(err)
	}

	data, err := os.ReadFile(store.path)
	if err != nil {
		t.Fatal(err)
	}
	var f struct {
		Next *string `json:"next"`
	}
	if err := json.Unmarshal(data, &f); err != nil {
		t.Fatalf("cursor file is not valid JSON: %v", err)
	}
	if f.Next == nil || *f.Next != "urlB" {
		t.Errorf("cursor file content = %s", data)
	}
}

func TestCursorStoreClear(t *testing.T) {
	store := tempStore(t)
	if err := store.Clear(); err != nil {
		t.Fatalf("Clear with no file: %v", err)
	}

	if err := store.Save("urlB"); err != nil {
		t.Fatal(err)
	}
	if err := store.Clear(); err != nil {
		t.Fatalf("Clear: %v", err)
	}
	if _, ok, _ := store.Load(); ok {
		t.Error("cursor should be gone after Clear")
	}
}

func TestCursorStoreCorruptFile(t *testing.T) {
	store := tempStore(t)
	if err := os.WriteFile(store.path, []byte("{truncated"), 0o644); err != nil {
		t.Fatal(err)
	}
	if _, _, err := store.Load(); err == nil {
		t.Error("a half-written cursor file must not parse as a valid cursor")
	}
}

func TestCursorStoreNullNext(t *testing.T) {
	store := tempStore(t)
	if err := os.WriteFile(store.path, []byte(`{"next": null}`), 0o644); err != nil {
		t.Fatal(err)
	}
	cursor, ok, err := store.Load()
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if ok || cursor != "" {
		t.Errorf(`{"next": null} should mean no cursor, got %q`, cursor)
	}
}
