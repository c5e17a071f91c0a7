package client

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"task-management-app/domain"
)

func TestFileSessionStore(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "session.json")
	store := NewFileSessionStore(path)

	if _, err := store.Load(); !errors.Is(err, ErrNoSession) {
		t.Fatalf("Load before Save: err = %v", err)
	}

	want := Session{Token: "abc", User: domain.User{Id: "u1", Name: "Ada Lovelace", Email: "ada@example.com"}}
	if err := store.Save(want); err != nil {
		t.Fatalf("Save: %v", err)
	}

	info, err := os.Stat(path)
	if err != nil {
		t.Fatalf("Stat: %v", err)
	}
	if perm := info.Mode().Perm(); perm != 0o600 {
		t.Errorf("session file mode = %o, want 600", perm)
	}

	got, err := store.Load()
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if got.Token != want.Token || got.User.Email != want.User.Email || got.User.FirstName() != "Ada" {
		t.Errorf("Load = %+v", got)
	}

	if err := store.Clear(); err != nil {
		t.Fatalf("Clear: %v", err)
	}
	if err := store.Clear(); err != nil {
		t.Errorf("second Clear: %v", err)
	}
	if _, err := store.Load(); !errors.Is(err, ErrNoSession) {
		t.Errorf("Load after Clear: err = %v", err)
	}
}
