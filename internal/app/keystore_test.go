package app

import (
	"path/filepath"
	"testing"
)

func TestSQLiteKeystoreRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "keystore.db")
	ks, err := NewSQLiteKeystore(path)
	if err != nil {
		t.Fatalf("NewSQLiteKeystore: %v", err)
	}
	defer ks.Close()

	// Absent key reads as empty, not an error.
	if got, err := ks.Get(KeyAPIKey); err != nil || got != "" {
		t.Fatalf("Get(absent) = %q, %v", got, err)
	}

	if err := ks.Set(KeyAPIKey, "secret-1"); err != nil {
		t.Fatalf("Set: %v", err)
	}
	if got, _ := ks.Get(KeyAPIKey); got != "secret-1" {
		t.Fatalf("Get = %q", got)
	}

	// Upsert replaces.
	if err := ks.Set(KeyAPIKey, "secret-2"); err != nil {
		t.Fatalf("Set(update): %v", err)
	}
	if got, _ := ks.Get(KeyAPIKey); got != "secret-2" {
		t.Fatalf("Get after update = %q", got)
	}

	if err := ks.Delete(KeyAPIKey); err != nil {
		t.Fatalf("Delete: %v", err)
	}
	if got, _ := ks.Get(KeyAPIKey); got != "" {
		t.Fatalf("Get after delete = %q", got)
	}
}

func TestSQLiteKeystorePersistsAcrossOpens(t *testing.T) {
	path := filepath.Join(t.TempDir(), "keystore.db")

	ks, err := NewSQLiteKeystore(path)
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	if err := ks.Set(KeyAPIKey, "durable"); err != nil {
		t.Fatalf("Set: %v", err)
	}
	if err := ks.Close(); err != nil {
		t.Fatalf("Close: %v", err)
	}

	ks2, err := NewSQLiteKeystore(path)
	if err != nil {
		t.Fatalf("reopen: %v", err)
	}
	defer ks2.Close()
	if got, _ := ks2.Get(KeyAPIKey); got != "durable" {
		t.Fatalf("Get after reopen = %q", got)
	}
}
