// Package testutil provides shared test helpers for setting up workspaces and databases.
package testutil

import (
	"os"
	"testing"

	"github.com/solheim/lesa/internal/index"
	"github.com/solheim/lesa/internal/storage"
)

// TestDB creates a temporary SQLite database that is automatically cleaned up.
func TestDB(t *testing.T) *index.DB {
	t.Helper()
	dbFile, err := os.CreateTemp("", "lesa-test-*.db")
	if err != nil {
		t.Fatal(err)
	}
	dbFile.Close()
	t.Cleanup(func() { os.Remove(dbFile.Name()) })

	db, err := index.Open(dbFile.Name())
	if err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { db.Close() })
	return db
}

// TestWorkspace creates a temporary workspace directory with a storage.Provider.
func TestWorkspace(t *testing.T) (string, storage.Provider) {
	t.Helper()
	wsDir := t.TempDir()
	store, err := storage.NewFS(wsDir)
	if err != nil {
		t.Fatal(err)
	}
	return wsDir, store
}
