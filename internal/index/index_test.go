package index

import (
	"os"
	"testing"
	"time"

	"github.com/kitfox/den/internal/models"
)

func testDB(t *testing.T) *DB {
	t.Helper()
	f, err := os.CreateTemp("", "den-test-*.db")
	if err != nil {
		t.Fatal(err)
	}
	f.Close()
	t.Cleanup(func() { os.Remove(f.Name()) })

	db, err := Open(f.Name())
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	t.Cleanup(func() { db.Close() })
	return db
}

func TestSchemaCreation(t *testing.T) {
	db := testDB(t)
	var count int
	for _, table := range []string{"notes", "links", "engagements", "post_counts"} {
		if err := db.conn.QueryRow(`SELECT count(*) FROM ` + table).Scan(&count); err != nil {
			t.Fatalf("%s table missing: %v", table, err)
		}
	}
}

func TestUpsertAndGetChecksum(t *testing.T) {
	db := testDB(t)
	row := NoteRow{
		Path:      "knowledge/moltbook-api.md",
		Title:     "Moltbook API",
		Checksum:  "abc123",
		Tags:      []string{"moltbook", "api"},
		UpdatedAt: time.Now(),
	}
	if err := db.UpsertNote(row, "Notes on the Moltbook comment endpoints.", []string{"knowledge/captcha.md"}); err != nil {
		t.Fatalf("UpsertNote: %v", err)
	}
	cs, err := db.GetChecksum("knowledge/moltbook-api.md")
	if err != nil {
		t.Fatalf("GetChecksum: %v", err)
	}
	if cs != "abc123" {
		t.Errorf("checksum = %q, want %q", cs, "abc123")
	}
}

func TestGetNote(t *testing.T) {
	db := testDB(t)
	_ = db.UpsertNote(NoteRow{Path: "a.md", Title: "A", Checksum: "1", Tags: []string{"t"}, UpdatedAt: time.Now()}, "body", nil)

	n, err := db.GetNote("a.md")
	if err != nil {
		t.Fatalf("GetNote: %v", err)
	}
	if n == nil || n.Title != "A" || len(n.Tags) != 1 || n.Tags[0] != "t" {
		t.Errorf("note = %+v", n)
	}

	missing, err := db.GetNote("nope.md")
	if err != nil {
		t.Fatalf("GetNote missing: %v", err)
	}
	if missing != nil {
		t.Errorf("expected nil for missing note, got %+v", missing)
	}
}

func TestListNotes_FilterAndSort(t *testing.T) {
	db := testDB(t)
	base := time.Now()
	_ = db.UpsertNote(NoteRow{Path: "b.md", Title: "Beta", Checksum: "1", Tags: []string{"research"}, UpdatedAt: base.Add(-time.Hour)}, "", nil)
	_ = db.UpsertNote(NoteRow{Path: "a.md", Title: "Alpha", Checksum: "2", Tags: []string{"research", "dye"}, UpdatedAt: base}, "", nil)
	_ = db.UpsertNote(NoteRow{Path: "c.md", Title: "Gamma", Checksum: "3", Tags: []string{}, UpdatedAt: base.Add(-2 * time.Hour)}, "", nil)

	rows, total, err := db.ListNotes(10, 0, "", "")
	if err != nil {
		t.Fatalf("ListNotes: %v", err)
	}
	if total != 3 || len(rows) != 3 {
		t.Fatalf("total = %d, len = %d", total, len(rows))
	}
	// Default sort is newest first.
	if rows[0].Path != "a.md" {
		t.Errorf("rows[0] = %q, want a.md", rows[0].Path)
	}

	rows, total, err = db.ListNotes(10, 0, "dye", "")
	if err != nil {
		t.Fatalf("ListNotes(tag): %v", err)
	}
	if total != 1 || rows[0].Path != "a.md" {
		t.Errorf("tag filter = %+v, total %d", rows, total)
	}

	rows, _, err = db.ListNotes(10, 0, "", "title")
	if err != nil {
		t.Fatalf("ListNotes(title): %v", err)
	}
	if rows[0].Title != "Alpha" {
		t.Errorf("title sort rows[0] = %q", rows[0].Title)
	}

	rows, _, err = db.ListNotes(2, 2, "", "path")
	if err != nil {
		t.Fatalf("ListNotes(page): %v", err)
	}
	if len(rows) != 1 || rows[0].Path != "c.md" {
		t.Errorf("pagination = %+v", rows)
	}
}

func TestBacklinks(t *testing.T) {
	db := testDB(t)
	_ = db.UpsertNote(NoteRow{Path: "a.md", Checksum: "1", Tags: []string{}, UpdatedAt: time.Now()}, "body", []string{"b.md"})
	_ = db.UpsertNote(NoteRow{Path: "c.md", Checksum: "2", Tags: []string{}, UpdatedAt: time.Now()}, "body", []string{"b.md"})

	bl, err := db.Backlinks("b.md")
	if err != nil {
		t.Fatalf("Backlinks: %v", err)
	}
	if len(bl) != 2 {
		t.Fatalf("expected 2 backlinks, got %d", len(bl))
	}
}

func TestGraph(t *testing.T) {
	db := testDB(t)
	_ = db.UpsertNote(NoteRow{Path: "a.md", Title: "A", Checksum: "1", Tags: []string{}, UpdatedAt: time.Now()}, "", []string{"b.md"})
	_ = db.UpsertNote(NoteRow{Path: "b.md", Title: "B", Checksum: "2", Tags: []string{}, UpdatedAt: time.Now()}, "", nil)

	nodes, links, err := db.Graph()
	if err != nil {
		t.Fatalf("Graph: %v", err)
	}
	if len(nodes) != 2 || len(links) != 1 {
		t.Fatalf("nodes = %d, links = %d", len(nodes), len(links))
	}
	if links[0].Source != "a.md" || links[0].Target != "b.md" {
		t.Errorf("link = %+v", links[0])
	}
}

func TestDeleteNote(t *testing.T) {
	db := testDB(t)
	_ = db.UpsertNote(NoteRow{Path: "del.md", Checksum: "x", Tags: []string{}, UpdatedAt: time.Now()}, "body", []string{"target.md"})

	if err := db.DeleteNote("del.md"); err != nil {
		t.Fatalf("DeleteNote: %v", err)
	}
	cs, _ := db.GetChecksum("del.md")
	if cs != "" {
		t.Errorf("deleted note still has checksum %q", cs)
	}
	bl, _ := db.Backlinks("target.md")
	if len(bl) != 0 {
		t.Errorf("expected 0 backlinks after delete, got %d", len(bl))
	}
}

func TestUpsertUpdatesExisting(t *testing.T) {
	db := testDB(t)
	now := time.Now()
	_ = db.UpsertNote(NoteRow{Path: "up.md", Title: "Old", Checksum: "1", Tags: []string{}, UpdatedAt: now}, "old body", []string{"x.md"})
	_ = db.UpsertNote(NoteRow{Path: "up.md", Title: "New", Checksum: "2", Tags: []string{"new"}, UpdatedAt: now}, "new body", []string{"y.md"})

	cs, _ := db.GetChecksum("up.md")
	if cs != "2" {
		t.Errorf("checksum = %q, want %q", cs, "2")
	}
	bl, _ := db.Backlinks("x.md")
	if len(bl) != 0 {
		t.Error("old link should be removed on upsert")
	}
	bl, _ = db.Backlinks("y.md")
	if len(bl) != 1 {
		t.Error("new link should exist")
	}
}

func TestSearch_Basic(t *testing.T) {
	db := testDB(t)
	_ = db.UpsertNote(NoteRow{Path: "s.md", Title: "Search Me", Checksum: "1", Tags: []string{}, UpdatedAt: time.Now()}, "uniqueword appears here", nil)

	results, err := db.Search("uniqueword", 10)
	if err != nil {
		t.Fatalf("Search: %v", err)
	}
	if len(results) != 1 || results[0].Path != "s.md" {
		t.Errorf("search results = %+v, want 1 hit for s.md", results)
	}
}

func TestRecordEngagement_Idempotent(t *testing.T) {
	db := testDB(t)
	e := models.Engagement{Platform: "moltbook", PostID: "p-42", Kind: "comment"}

	fresh, err := db.RecordEngagement(e)
	if err != nil {
		t.Fatalf("RecordEngagement: %v", err)
	}
	if !fresh {
		t.Error("first record should report fresh")
	}

	fresh, err = db.RecordEngagement(e)
	if err != nil {
		t.Fatalf("RecordEngagement repeat: %v", err)
	}
	if fresh {
		t.Error("repeat record should not report fresh")
	}

	ok, _ := db.Engaged("moltbook", "p-42", "comment")
	if !ok {
		t.Error("Engaged should report true")
	}
	ok, _ = db.Engaged("moltbook", "p-42", "reply")
	if ok {
		t.Error("different kind should not be engaged")
	}
}

func TestEngaged_SurfacesDBErrors(t *testing.T) {
	db := testDB(t)
	if _, err := db.conn.Exec(`DROP TABLE engagements`); err != nil {
		t.Fatalf("drop table: %v", err)
	}

	seen, err := db.Engaged("moltbook", "p1", "comment")
	if err == nil {
		t.Fatal("Engaged on a broken table should error, not read as unengaged")
	}
	if seen {
		t.Error("seen should be false alongside the error")
	}
}

func TestCommentCount_SurfacesDBErrors(t *testing.T) {
	db := testDB(t)
	if _, err := db.conn.Exec(`DROP TABLE post_counts`); err != nil {
		t.Fatalf("drop table: %v", err)
	}

	_, ok, err := db.CommentCount("moltbook", "p1")
	if err == nil {
		t.Fatal("CommentCount on a broken table should error, not read as unseen")
	}
	if ok {
		t.Error("ok should be false alongside the error")
	}
}

func TestRecentEngagements_Order(t *testing.T) {
	db := testDB(t)
	old := models.Engagement{Platform: "clawk", PostID: "c-1", Kind: "reply", At: time.Now().Add(-time.Hour)}
	recent := models.Engagement{Platform: "moltbook", PostID: "p-2", Kind: "comment", At: time.Now()}
	_, _ = db.RecordEngagement(old)
	_, _ = db.RecordEngagement(recent)

	got, err := db.RecentEngagements(10)
	if err != nil {
		t.Fatalf("RecentEngagements: %v", err)
	}
	if len(got) != 2 {
		t.Fatalf("len = %d", len(got))
	}
	if got[0].PostID != "p-2" {
		t.Errorf("newest first expected, got %+v", got)
	}
}

func TestCommentCounts(t *testing.T) {
	db := testDB(t)

	if _, ok, _ := db.CommentCount("moltbook", "p-1"); ok {
		t.Error("unseen post should not have a count")
	}

	if err := db.SetCommentCount("moltbook", "p-1", 3); err != nil {
		t.Fatalf("SetCommentCount: %v", err)
	}
	if err := db.SetCommentCount("moltbook", "p-1", 5); err != nil {
		t.Fatalf("SetCommentCount update: %v", err)
	}

	n, ok, err := db.CommentCount("moltbook", "p-1")
	if err != nil {
		t.Fatalf("CommentCount: %v", err)
	}
	if !ok || n != 5 {
		t.Errorf("count = %d, ok = %v, want 5", n, ok)
	}
}
