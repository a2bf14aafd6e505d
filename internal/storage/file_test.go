package storage

import (
	"context"
	"log/slog"
	"os"
	"path/filepath"
	"testing"

	"github.com/Huahuatgc/ribao/internal/config"
)

var testLogger = slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelError}))

func TestFileStoreRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "subs.json")
	ctx := context.Background()

	store, err := NewFileStore(path, testLogger)
	if err != nil {
		t.Fatalf("NewFileStore: %v", err)
	}

	for _, d := range []string{"333", "111", "222"} {
		if err := store.Add(ctx, d); err != nil {
			t.Fatalf("Add(%q): %v", d, err)
		}
	}

	list, err := store.List(ctx)
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	want := []string{"111", "222", "333"}
	if len(list) != len(want) {
		t.Fatalf("List = %v, want %v", list, want)
	}
	for i := range want {
		if list[i] != want[i] {
			t.Errorf("List[%d] = %q, want %q (sorted)", i, list[i], want[i])
		}
	}

	if err := store.Remove(ctx, "222"); err != nil {
		t.Fatalf("Remove: %v", err)
	}
	list, _ = store.List(ctx)
	if len(list) != 2 {
		t.Errorf("List after remove = %v", list)
	}
}

func TestFileStorePersistsAcrossReopen(t *testing.T) {
	path := filepath.Join(t.TempDir(), "subs.json")
	ctx := context.Background()

	store, err := NewFileStore(path, testLogger)
	if err != nil {
		t.Fatalf("NewFileStore: %v", err)
	}
	if err := store.Add(ctx, "123456"); err != nil {
		t.Fatalf("Add: %v", err)
	}
	if err := store.Close(ctx); err != nil {
		t.Fatalf("Close: %v", err)
	}

	reopened, err := NewFileStore(path, testLogger)
	if err != nil {
		t.Fatalf("reopen: %v", err)
	}
	list, err := reopened.List(ctx)
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	if len(list) != 1 || list[0] != "123456" {
		t.Errorf("List after reopen = %v, want [123456]", list)
	}
}

func TestFileStoreIdempotentOps(t *testing.T) {
	path := filepath.Join(t.TempDir(), "subs.json")
	ctx := context.Background()

	store, err := NewFileStore(path, testLogger)
	if err != nil {
		t.Fatalf("NewFileStore: %v", err)
	}

	if err := store.Add(ctx, "111"); err != nil {
		t.Fatal(err)
	}
	if err := store.Add(ctx, "111"); err != nil {
		t.Fatalf("duplicate Add: %v", err)
	}
	list, _ := store.List(ctx)
	if len(list) != 1 {
		t.Errorf("List = %v, duplicate add must not grow the set", list)
	}

	if err := store.Remove(ctx, "999"); err != nil {
		t.Fatalf("Remove of unknown destination: %v", err)
	}
}

func TestFileStoreCorruptFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "subs.json")
	if err := os.WriteFile(path, []byte("{not json"), 0o644); err != nil {
		t.Fatal(err)
	}

	if _, err := NewFileStore(path, testLogger); err == nil {
		t.Fatal("expected an error for a corrupt store file")
	}
}

func TestNewSelectsBackend(t *testing.T) {
	cfg := &config.StorageConfig{
		Type: "file",
		Path: filepath.Join(t.TempDir(), "subs.json"),
	}
	store, err := New(cfg, testLogger)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	if store.Name() != "file" {
		t.Errorf("Name = %q, want file", store.Name())
	}

	if _, err := New(&config.StorageConfig{Type: "redis"}, testLogger); err == nil {
		t.Fatal("expected an error for an unknown backend type")
	}
}
