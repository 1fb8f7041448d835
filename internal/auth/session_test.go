package auth

import (
	"os"
	"path/filepath"
	"testing"
)

func TestSessionFile(t *testing.T) {
	t.Run("Load Missing File Returns Empty", func(t *testing.T) {
		f := NewSessionFile(filepath.Join(t.TempDir(), "session.json"))

		session, err := f.Load()
		if err != nil {
			t.Fatalf("missing file should not error: %v", err)
		}
		if session.AccessToken != "" || session.RefreshToken != "" {
			t.Errorf("expected empty session, got %+v", session)
		}
		if f.Present() {
			t.Error("Present should be false for missing file")
		}
	})

	t.Run("Save Load Roundtrip", func(t *testing.T) {
		f := NewSessionFile(filepath.Join(t.TempDir(), "session.json"))

		saved := Session{AccessToken: "a", RefreshToken: "r", ShopDomain: "demo.myshopify.com"}
		if err := f.Save(saved); err != nil {
			t.Fatalf("failed to save session: %v", err)
		}

		info, err := os.Stat(f.Path())
		if err != nil {
			t.Fatalf("session file should exist: %v", err)
		}
		if info.Mode().Perm() != 0600 {
			t.Errorf("expected 0600 permissions, got %v", info.Mode().Perm())
		}

		loaded, err := f.Load()
		if err != nil {
			t.Fatalf("failed to load session: %v", err)
		}
		if loaded != saved {
			t.Errorf("roundtrip mismatch: got %+v want %+v", loaded, saved)
		}
		if !f.Present() {
			t.Error("Present should be true after save")
		}
	})

	t.Run("Clear Removes File", func(t *testing.T) {
		f := NewSessionFile(filepath.Join(t.TempDir(), "session.json"))

		if err := f.Save(Session{RefreshToken: "r"}); err != nil {
			t.Fatalf("failed to save: %v", err)
		}
		if err := f.Clear(); err != nil {
			t.Fatalf("failed to clear: %v", err)
		}
		if f.Present() {
			t.Error("Present should be false after clear")
		}

		// Clearing again is not an error.
		if err := f.Clear(); err != nil {
			t.Errorf("clearing a missing file should not error: %v", err)
		}
	})

	t.Run("Corrupt File Errors", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "session.json")
		if err := os.WriteFile(path, []byte("{not json"), 0600); err != nil {
			t.Fatalf("failed to write corrupt file: %v", err)
		}

		f := NewSessionFile(path)
		if _, err := f.Load(); err == nil {
			t.Error("expected error for corrupt session file")
		}
	})
}
