package index

import (
	"fmt"
	"time"

	"github.com/solheim/lesa/internal/models"
)

// DocumentRow represents a row in the documents table.
type DocumentRow struct {
	Path      string
	Title     string
	Checksum  string
	UpdatedAt time.Time
}

// SearchResult represents one search hit.
type SearchResult struct {
	Path    string
	Title   string
	Snippet string
}

// UpsertDocument inserts or replaces a document, its FTS entry, and its
// heading outline within a transaction.
func (db *DB) UpsertDocument(d DocumentRow, body string, headings []models.Heading) error {
	tx, err := db.conn.Begin()
	if err != nil {
		return fmt.Errorf("index: begin tx: %w", err)
	}
	defer tx.Rollback() //nolint:errcheck // best-effort on failure path

	// Upsert documents table (includes body for fallback search).
	_, err = tx.Exec(`
		INSERT INTO documents (path, title, checksum, body, updated_at)
		VALUES (?, ?, ?, ?, ?)
		ON CONFLICT(path) DO UPDATE SET
			title      = excluded.title,
			checksum   = excluded.checksum,
			body       = excluded.body,
			updated_at = excluded.updated_at
	`, d.Path, d.Title, d.Checksum, body, d.UpdatedAt)
	if err != nil {
		return fmt.Errorf("index: upsert document: %w", err)
	}

	// FTS upsert (no-op when FTS5 tag is absent).
	if err := ftsUpsert(tx, d.Path, d.Title, body); err != nil {
		return err
	}

	// Replace headings: delete old then bulk insert in document order.
	_, _ = tx.Exec(`DELETE FROM headings WHERE path = ?`, d.Path)
	if len(headings) > 0 {
		stmt, err := tx.Prepare(`INSERT INTO headings (path, position, level, text, slug) VALUES (?, ?, ?, ?, ?)`)
		if err != nil {
			return fmt.Errorf("index: prepare heading insert: %w", err)
		}
		defer stmt.Close()
		for i, h := range headings {
			if _, err := stmt.Exec(d.Path, i, h.Level, h.Text, h.ID); err != nil {
				return fmt.Errorf("index: insert heading: %w", err)
			}
		}
	}

	return tx.Commit()
}

// DeleteDocument removes a document, its FTS entry, and its headings.
func (db *DB) DeleteDocument(path string) error {
	tx, err := db.conn.Begin()
	if err != nil {
		return fmt.Errorf("index: begin tx: %w", err)
	}
	defer tx.Rollback() //nolint:errcheck

	ftsDelete(tx, path)
	_, _ = tx.Exec(`DELETE FROM headings WHERE path = ?`, path)
	_, _ = tx.Exec(`DELETE FROM documents WHERE path = ?`, path)

	return tx.Commit()
}

// GetDocument returns the indexed row for a path, or nil when absent.
func (db *DB) GetDocument(path string) (*DocumentRow, error) {
	var d DocumentRow
	err := db.conn.QueryRow(`
		SELECT path, title, checksum, updated_at FROM documents WHERE path = ?
	`, path).Scan(&d.Path, &d.Title, &d.Checksum, &d.UpdatedAt)
	if err != nil {
		return nil, nil
	}
	return &d, nil
}

// GetChecksum returns the stored checksum for a document, or empty string if not found.
func (db *DB) GetChecksum(path string) (string, error) {
	var cs string
	err := db.conn.QueryRow(`SELECT checksum FROM documents WHERE path = ?`, path).Scan(&cs)
	if err != nil {
		return "", nil // not found is fine
	}
	return cs, nil
}

// ListDocuments returns every indexed document ordered by path.
func (db *DB) ListDocuments() ([]DocumentRow, error) {
	rows, err := db.conn.Query(`SELECT path, title, checksum, updated_at FROM documents ORDER BY path`)
	if err != nil {
		return nil, fmt.Errorf("index: list documents: %w", err)
	}
	defer rows.Close()

	var out []DocumentRow
	for rows.Next() {
		var d DocumentRow
		if err := rows.Scan(&d.Path, &d.Title, &d.Checksum, &d.UpdatedAt); err != nil {
			return nil, err
		}
		out = append(out, d)
	}
	return out, rows.Err()
}

// Headings returns the stored outline for a document in source order.
func (db *DB) Headings(path string) ([]models.Heading, error) {
	rows, err := db.conn.Query(`
		SELECT level, text, slug FROM headings WHERE path = ? ORDER BY position
	`, path)
	if err != nil {
		return nil, fmt.Errorf("index: headings: %w", err)
	}
	defer rows.Close()

	var out []models.Heading
	for rows.Next() {
		var h models.Heading
		if err := rows.Scan(&h.Level, &h.Text, &h.ID); err != nil {
			return nil, err
		}
		out = append(out, h)
	}
	return out, rows.Err()
}

// AllPaths returns every indexed document path.
func (db *DB) AllPaths() (map[string]struct{}, error) {
	rows, err := db.conn.Query(`SELECT path FROM documents`)
	if err != nil {
		return nil, fmt.Errorf("index: all paths: %w", err)
	}
	defer rows.Close()
	out := make(map[string]struct{})
	for rows.Next() {
		var p string
		if err := rows.Scan(&p); err != nil {
			return nil, err
		}
		out[p] = struct{}{}
	}
	return out, rows.Err()
}

// AllChecksums returns path to checksum for every indexed document.
func (db *DB) AllChecksums() (map[string]string, error) {
	rows, err := db.conn.Query(`SELECT path, checksum FROM documents`)
	if err != nil {
		return nil, fmt.Errorf("index: all checksums: %w", err)
	}
	defer rows.Close()
	out := make(map[string]string)
	for rows.Next() {
		var p, cs string
		if err := rows.Scan(&p, &cs); err != nil {
			return nil, err
		}
		out[p] = cs
	}
	return out, rows.Err()
}
