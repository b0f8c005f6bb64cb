package workspace

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func tempWorkspace(t *testing.T) *FS {
	t.Helper()
	dir := t.TempDir()
	fs, err := NewFS(dir)
	if err != nil {
		t.Fatalf("NewFS: %v", err)
	}
	return fs
}

func TestWriteAndRead(t *testing.T) {
	s := tempWorkspace(t)
	content := []byte("# Hello\nWorld\n")
	if err := s.Write("knowledge/note.md", content); err != nil {
		t.Fatalf("Write: %v", err)
	}
	got, err := s.Read("knowledge/note.md")
	if err != nil {
		t.Fatalf("Read: %v", err)
	}
	if string(got) != string(content) {
		t.Errorf("content mismatch: got %q", got)
	}
}

func TestAppendCreatesWithHeader(t *testing.T) {
	s := tempWorkspace(t)
	header := []byte("---\ntitle: Journal 2026-08-30\n---\n\n")
	entry := []byte("## 09:15 — heartbeat\nAll quiet.\n")
	if err := s.Append("memory/2026-08-30.md", header, entry); err != nil {
		t.Fatalf("Append: %v", err)
	}
	got, err := s.Read("memory/2026-08-30.md")
	if err != nil {
		t.Fatalf("Read: %v", err)
	}
	if !strings.HasPrefix(string(got), string(header)) {
		t.Errorf("missing header, got %q", got)
	}
	if !strings.HasSuffix(string(got), string(entry)) {
		t.Errorf("missing entry, got %q", got)
	}
}

func TestAppendToExistingSkipsHeader(t *testing.T) {
	s := tempWorkspace(t)
	header := []byte("---\ntitle: J\n---\n\n")
	_ = s.Append("memory/day.md", header, []byte("first\n"))
	if err := s.Append("memory/day.md", header, []byte("second\n")); err != nil {
		t.Fatalf("Append: %v", err)
	}
	got, _ := s.Read("memory/day.md")
	if strings.Count(string(got), "title: J") != 1 {
		t.Errorf("header duplicated: %q", got)
	}
	if !strings.Contains(string(got), "first\nsecond\n") {
		t.Errorf("entries not in order: %q", got)
	}
}

func TestDelete(t *testing.T) {
	s := tempWorkspace(t)
	_ = s.Write("del.md", []byte("bye"))
	if err := s.Delete("del.md"); err != nil {
		t.Fatalf("Delete: %v", err)
	}
	if _, err := s.Read("del.md"); err == nil {
		t.Error("expected error reading deleted file")
	}
}

func TestMove(t *testing.T) {
	s := tempWorkspace(t)
	_ = s.Write("old.md", []byte("data"))
	if err := s.Move("old.md", "knowledge/new.md"); err != nil {
		t.Fatalf("Move: %v", err)
	}
	got, err := s.Read("knowledge/new.md")
	if err != nil {
		t.Fatalf("Read after move: %v", err)
	}
	if string(got) != "data" {
		t.Errorf("content = %q", got)
	}
	if _, err := s.Read("old.md"); err == nil {
		t.Error("old path should not exist")
	}
}

func TestList(t *testing.T) {
	s := tempWorkspace(t)
	_ = s.Write("knowledge/a.md", []byte("a"))
	_ = s.Write("memory/b.md", []byte("b"))
	_ = s.Write("commented-posts.json", []byte("not md"))

	items, err := s.List("")
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	if len(items) != 2 {
		t.Errorf("len = %d, want 2", len(items))
	}

	sub, err := s.List(MemoryDir)
	if err != nil {
		t.Fatalf("List(memory): %v", err)
	}
	if len(sub) != 1 || sub[0].Path != "memory/b.md" {
		t.Errorf("memory listing = %v", sub)
	}
}

func TestTraversalBlocked(t *testing.T) {
	s := tempWorkspace(t)

	cases := []string{
		"../../etc/passwd",
		"../outside.md",
		"/etc/shadow",
	}
	for _, p := range cases {
		if _, err := s.Read(p); err == nil {
			t.Errorf("expected error for path %q", p)
		}
		if err := s.Write(p, []byte("x")); err == nil {
			t.Errorf("expected error for write to %q", p)
		}
	}
}

func TestAtomicWriteNoCorruption(t *testing.T) {
	// Overwrite must leave either old or new content, never a mix, and no
	// leftover temp files (the rename is atomic on POSIX).
	s := tempWorkspace(t)
	_ = s.Write("atomic.md", []byte("original content"))

	updated := []byte("updated content")
	if err := s.Write("atomic.md", updated); err != nil {
		t.Fatalf("Write: %v", err)
	}
	got, _ := s.Read("atomic.md")
	if string(got) != string(updated) {
		t.Errorf("expected updated content, got %q", got)
	}

	matches, _ := filepath.Glob(filepath.Join(s.root, ".den-tmp-*"))
	if len(matches) != 0 {
		t.Errorf("leftover temp files: %v", matches)
	}
}

func TestNewFS_NonExistentDir(t *testing.T) {
	_, err := NewFS("/tmp/den-does-not-exist-" + t.Name())
	if err == nil {
		t.Error("expected error for non-existent dir")
	}
}

func TestNewFS_FileNotDir(t *testing.T) {
	f, _ := os.CreateTemp("", "den-test-*")
	_ = f.Close()
	defer os.Remove(f.Name())
	_, err := NewFS(f.Name())
	if err == nil {
		t.Error("expected error when root is a file")
	}
}
