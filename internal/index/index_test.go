package index

import (
	"os"
	"testing"
	"time"

	"github.com/solheim/lesa/internal/models"
)

func testDB(t *testing.T) *DB {
	t.Helper()
	f, err := os.CreateTemp("", "lesa-test-*.db")
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
	if err := db.conn.QueryRow(`SELECT count(*) FROM documents`).Scan(&count); err != nil {
		t.Fatalf("documents table missing: %v", err)
	}
	if err := db.conn.QueryRow(`SELECT count(*) FROM headings`).Scan(&count); err != nil {
		t.Fatalf("headings table missing: %v", err)
	}
}

func TestUpsertAndGetChecksum(t *testing.T) {
	db := testDB(t)
	row := DocumentRow{
		Path:      "hello.md",
		Title:     "Hello World",
		Checksum:  "abc123",
		UpdatedAt: time.Now(),
	}
	hs := []models.Heading{{Level: 1, Text: "Hello World", ID: "hello-world"}}
	if err := db.UpsertDocument(row, "# Hello World\n\nbody", hs); err != nil {
		t.Fatalf("UpsertDocument: %v", err)
	}
	cs, err := db.GetChecksum("hello.md")
	if err != nil {
		t.Fatalf("GetChecksum: %v", err)
	}
	if cs != "abc123" {
		t.Errorf("checksum = %q, want %q", cs, "abc123")
	}
}

func TestHeadingsStoredInOrder(t *testing.T) {
	db := testDB(t)
	hs := []models.Heading{
		{Level: 1, Text: "Top", ID: "top"},
		{Level: 2, Text: "Middle", ID: "middle"},
		{Level: 2, Text: "Middle", ID: "middle-1"},
		{Level: 3, Text: "Leaf", ID: "leaf"},
	}
	if err := db.UpsertDocument(DocumentRow{Path: "o.md", Checksum: "1", UpdatedAt: time.Now()}, "body", hs); err != nil {
		t.Fatalf("UpsertDocument: %v", err)
	}

	got, err := db.Headings("o.md")
	if err != nil {
		t.Fatalf("Headings: %v", err)
	}
	if len(got) != 4 {
		t.Fatalf("len = %d, want 4", len(got))
	}
	for i := range hs {
		if got[i] != hs[i] {
			t.Errorf("headings[%d] = %+v, want %+v", i, got[i], hs[i])
		}
	}
}

func TestDeleteDocument(t *testing.T) {
	db := testDB(t)
	hs := []models.Heading{{Level: 1, Text: "Delete Me", ID: "delete-me"}}
	_ = db.UpsertDocument(DocumentRow{Path: "del.md", Checksum: "x", UpdatedAt: time.Now()}, "body", hs)

	if err := db.DeleteDocument("del.md"); err != nil {
		t.Fatalf("DeleteDocument: %v", err)
	}
	cs, _ := db.GetChecksum("del.md")
	if cs != "" {
		t.Errorf("deleted document still has checksum %q", cs)
	}
	got, _ := db.Headings("del.md")
	if len(got) != 0 {
		t.Errorf("expected 0 headings after delete, got %d", len(got))
	}
}

func TestUpsertUpdatesExisting(t *testing.T) {
	db := testDB(t)
	now := time.Now()
	_ = db.UpsertDocument(DocumentRow{Path: "up.md", Title: "Old", Checksum: "1", UpdatedAt: now}, "old body",
		[]models.Heading{{Level: 1, Text: "Old", ID: "old"}})
	_ = db.UpsertDocument(DocumentRow{Path: "up.md", Title: "New", Checksum: "2", UpdatedAt: now}, "new body",
		[]models.Heading{{Level: 1, Text: "New", ID: "new"}})

	cs, _ := db.GetChecksum("up.md")
	if cs != "2" {
		t.Errorf("checksum = %q, want %q", cs, "2")
	}
	got, _ := db.Headings("up.md")
	if len(got) != 1 || got[0].ID != "new" {
		t.Errorf("headings not replaced on upsert: %+v", got)
	}
}

func TestGetChecksum_NotFound(t *testing.T) {
	db := testDB(t)
	cs, err := db.GetChecksum("nonexistent.md")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cs != "" {
		t.Errorf("expected empty checksum, got %q", cs)
	}
}

func TestGetDocument(t *testing.T) {
	db := testDB(t)
	_ = db.UpsertDocument(DocumentRow{Path: "g.md", Title: "Get", Checksum: "g1", UpdatedAt: time.Now()}, "body", nil)

	d, err := db.GetDocument("g.md")
	if err != nil {
		t.Fatalf("GetDocument: %v", err)
	}
	if d == nil || d.Title != "Get" {
		t.Errorf("document = %+v", d)
	}

	d, err = db.GetDocument("missing.md")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if d != nil {
		t.Errorf("expected nil for missing path, got %+v", d)
	}
}

func TestListDocuments(t *testing.T) {
	db := testDB(t)
	_ = db.UpsertDocument(DocumentRow{Path: "b.md", Title: "B", Checksum: "1", UpdatedAt: time.Now()}, "", nil)
	_ = db.UpsertDocument(DocumentRow{Path: "a.md", Title: "A", Checksum: "2", UpdatedAt: time.Now()}, "", nil)

	docs, err := db.ListDocuments()
	if err != nil {
		t.Fatalf("ListDocuments: %v", err)
	}
	if len(docs) != 2 || docs[0].Path != "a.md" || docs[1].Path != "b.md" {
		t.Errorf("documents not ordered by path: %+v", docs)
	}
}

func TestSearch_Basic(t *testing.T) {
	db := testDB(t)
	_ = db.UpsertDocument(DocumentRow{Path: "s.md", Title: "Search Me", Checksum: "1", UpdatedAt: time.Now()}, "uniqueword appears here", nil)

	results, err := db.Search("uniqueword", 10)
	if err != nil {
		t.Fatalf("Search: %v", err)
	}
	if len(results) != 1 || results[0].Path != "s.md" {
		t.Errorf("search results = %+v, want 1 hit for s.md", results)
	}
}
