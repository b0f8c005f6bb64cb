// Package testutil provides shared test helpers for setting up workspaces and databases.
package testutil

import (
	"os"
	"testing"

	"github.com/kitfox/den/internal/index"
	"github.com/kitfox/den/internal/workspace"
)

// TestDB creates a temporary SQLite database that is automatically cleaned up.
func TestDB(t *testing.T) *index.DB {
	t.Helper()
	dbFile, err := os.CreateTemp("", "den-test-*.db")
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

// TestWorkspace creates a temporary workspace directory with a workspace.Provider.
func TestWorkspace(t *testing.T) (string, workspace.Provider) {
	t.Helper()
	root := t.TempDir()
	ws, err := workspace.NewFS(root)
	if err != nil {
		t.Fatal(err)
	}
	return root, ws
}
