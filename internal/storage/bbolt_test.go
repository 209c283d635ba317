package storage

import (
	"errors"
	"path/filepath"
	"testing"
	"time"
)

func openTestDB(t *testing.T) (*Storage, string) {
	t.Helper()
	dbPath := filepath.Join(t.TempDir(), "test.db")

	db, err := Open(dbPath)
	if err != nil {
		t.Fatalf("Failed to open database: %v", err)
	}
	t.Cleanup(func() { db.Close() })

	if err := db.Initialize(); err != nil {
		t.Fatalf("Failed to initialize: %v", err)
	}
	return db, dbPath
}

func TestOpenAndInitialize(t *testing.T) {
	dbPath := filepath.Join(t.TempDir(), "test.db")

	db, err := Open(dbPath)
	if err != nil {
		t.Fatalf("Failed to open database: %v", err)
	}
	defer db.Close()

	initialized, err := db.IsInitialized()
	if err != nil {
		t.Fatalf("Failed to check initialization: %v", err)
	}
	if initialized {
		t.Error("Fresh database should not be initialized")
	}

	if err := db.Initialize(); err != nil {
		t.Fatalf("Failed to initialize: %v", err)
	}

	initialized, err = db.IsInitialized()
	if err != nil {
		t.Fatalf("Failed to check initialization: %v", err)
	}
	if !initialized {
		t.Error("Database should be initialized")
	}

	// Initialize is idempotent
	if err := db.Initialize(); err != nil {
		t.Fatalf("Second initialize failed: %v", err)
	}
}

func TestSaltAndIterations(t *testing.T) {
	db, _ := openTestDB(t)

	if _, err := db.GetSalt(); !errors.Is(err, ErrNotFound) {
		t.Errorf("Expected ErrNotFound before salt is set, got %v", err)
	}

	salt := []byte("test-salt-32-bytes-long-exactly!")
	if err := db.SetSalt(salt); err != nil {
		t.Fatalf("Failed to set salt: %v", err)
	}

	retrievedSalt, err := db.GetSalt()
	if err != nil {
		t.Fatalf("Failed to get salt: %v", err)
	}
	if string(retrievedSalt) != string(salt) {
		t.Errorf("Salt mismatch: got %v, want %v", retrievedSalt, salt)
	}

	iterations := uint32(100000)
	if err := db.SetIterations(iterations); err != nil {
		t.Fatalf("Failed to set iterations: %v", err)
	}

	retrievedIters, err := db.GetIterations()
	if err != nil {
		t.Fatalf("Failed to get iterations: %v", err)
	}
	if retrievedIters != iterations {
		t.Errorf("Iterations mismatch: got %d, want %d", retrievedIters, iterations)
	}
}

func TestCheckStorage(t *testing.T) {
	db, _ := openTestDB(t)

	if _, err := db.GetCheck(); !errors.Is(err, ErrNotFound) {
		t.Errorf("Expected ErrNotFound, got %v", err)
	}

	sealed := []byte("sealed check value")
	if err := db.SetCheck(sealed); err != nil {
		t.Fatalf("Failed to set check: %v", err)
	}

	retrieved, err := db.GetCheck()
	if err != nil {
		t.Fatalf("Failed to get check: %v", err)
	}
	if string(retrieved) != string(sealed) {
		t.Errorf("Check mismatch: got %q, want %q", retrieved, sealed)
	}
}

func TestSiteOperations(t *testing.T) {
	db, _ := openTestDB(t)

	added := time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)
	for _, realm := range []string{"github.com", "example.com", "zoo.org"} {
		ok, err := db.PutSite(Site{Realm: realm, Added: added})
		if err != nil {
			t.Fatalf("Failed to put %s: %v", realm, err)
		}
		if !ok {
			t.Errorf("Expected %s to be added", realm)
		}
	}

	// Duplicate is ignored and keeps the original entry
	ok, err := db.PutSite(Site{Realm: "example.com", Added: added.Add(time.Hour)})
	if err != nil {
		t.Fatalf("Failed to put duplicate: %v", err)
	}
	if ok {
		t.Error("Duplicate realm should not be added")
	}

	site, err := db.GetSite("example.com")
	if err != nil {
		t.Fatalf("Failed to get site: %v", err)
	}
	if site == nil {
		t.Fatal("Site should not be nil")
	}
	if !site.Added.Equal(added) {
		t.Errorf("Added mismatch: got %v, want %v", site.Added, added)
	}

	sites, err := db.GetSites()
	if err != nil {
		t.Fatalf("Failed to get sites: %v", err)
	}
	want := []string{"example.com", "github.com", "zoo.org"}
	if len(sites) != len(want) {
		t.Fatalf("Expected %d sites, got %d", len(want), len(sites))
	}
	for i, s := range sites {
		if s.Realm != want[i] {
			t.Errorf("Site %d: got %s, want %s", i, s.Realm, want[i])
		}
	}

	deleted, err := db.DeleteSite("github.com")
	if err != nil {
		t.Fatalf("Failed to delete site: %v", err)
	}
	if !deleted {
		t.Error("Expected github.com to be deleted")
	}

	deleted, err = db.DeleteSite("github.com")
	if err != nil {
		t.Fatalf("Failed to delete missing site: %v", err)
	}
	if deleted {
		t.Error("Deleting a missing site should report false")
	}

	site, err = db.GetSite("github.com")
	if err != nil {
		t.Fatalf("Failed to get site: %v", err)
	}
	if site != nil {
		t.Error("Site should be nil after removal")
	}
}

func TestPersistence(t *testing.T) {
	dbPath := filepath.Join(t.TempDir(), "test.db")

	db, err := Open(dbPath)
	if err != nil {
		t.Fatalf("Failed to open database: %v", err)
	}
	if err := db.Initialize(); err != nil {
		t.Fatalf("Failed to initialize: %v", err)
	}
	if err := db.SetSalt([]byte("test-salt-32-bytes-long-exactly!")); err != nil {
		t.Fatalf("Failed to set salt: %v", err)
	}
	if _, err := db.PutSite(Site{Realm: "example.com", Added: time.Now()}); err != nil {
		t.Fatalf("Failed to put site: %v", err)
	}
	db.Close()

	db2, err := Open(dbPath)
	if err != nil {
		t.Fatalf("Failed to reopen database: %v", err)
	}
	defer db2.Close()

	if _, err := db2.GetSalt(); err != nil {
		t.Fatalf("Failed to get salt: %v", err)
	}

	sites, err := db2.GetSites()
	if err != nil {
		t.Fatalf("Failed to get sites: %v", err)
	}
	if len(sites) != 1 || sites[0].Realm != "example.com" {
		t.Errorf("Sites not persisted correctly: %+v", sites)
	}
}

func TestCompact(t *testing.T) {
	db, dbPath := openTestDB(t)

	for _, realm := range []string{"a.com", "b.com", "c.com"} {
		if _, err := db.PutSite(Site{Realm: realm, Added: time.Now()}); err != nil {
			t.Fatalf("Failed to put %s: %v", realm, err)
		}
	}
	if _, err := db.DeleteSite("b.com"); err != nil {
		t.Fatalf("Failed to delete: %v", err)
	}

	if err := db.Compact(); err != nil {
		t.Fatalf("Compact failed: %v", err)
	}
	if db.Path() != dbPath {
		t.Errorf("Path changed: got %s, want %s", db.Path(), dbPath)
	}

	sites, err := db.GetSites()
	if err != nil {
		t.Fatalf("Failed to get sites after compact: %v", err)
	}
	if len(sites) != 2 {
		t.Errorf("Expected 2 sites after compact, got %d", len(sites))
	}

	initialized, err := db.IsInitialized()
	if err != nil || !initialized {
		t.Errorf("Database should stay initialized after compact: %v", err)
	}
}

func TestCloseAfterFailedReopen(t *testing.T) {
	db, _ := openTestDB(t)

	if err := db.Close(); err != nil {
		t.Fatalf("Close failed: %v", err)
	}

	// a directory cannot be opened as a database file
	db.path = t.TempDir()
	if err := db.reopen(); err == nil {
		t.Fatal("Expected reopen of a directory to fail")
	}

	if err := db.Close(); err != nil {
		t.Errorf("Close without a handle should be a no-op, got %v", err)
	}
	if err := db.Compact(); !errors.Is(err, ErrClosed) {
		t.Errorf("Compact without a handle: got %v, want ErrClosed", err)
	}
}
