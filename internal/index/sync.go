package index

import (
	"log/slog"
	"time"

	"github.com/solheim/lesa/internal/checksum"
	"github.com/solheim/lesa/internal/markdown"
	"github.com/solheim/lesa/internal/storage"
)

// Sync walks the workspace and brings the index up to date:
//   - new/changed files are indexed with their heading outline
//   - files removed from disk are deleted from the index
func Sync(db *DB, store storage.Provider, logger *slog.Logger) error {
	metas, err := store.List("")
	if err != nil {
		return err
	}

	checksums, err := db.AllChecksums()
	if err != nil {
		return err
	}

	disk := make(map[string]struct{}, len(metas))
	for _, m := range metas {
		disk[m.Path] = struct{}{}

		if checksums[m.Path] == m.Checksum {
			continue
		}

		data, err := store.Read(m.Path)
		if err != nil {
			logger.Warn("sync: read failed", slog.String("path", m.Path), slog.String("error", err.Error()))
			continue
		}
		if err := indexFile(db, m.Path, data); err != nil {
			logger.Warn("sync: index failed", slog.String("path", m.Path), slog.String("error", err.Error()))
		} else {
			logger.Debug("sync: indexed", slog.String("path", m.Path))
		}
	}

	// Remove stale entries.
	for p := range checksums {
		if _, ok := disk[p]; !ok {
			if err := db.DeleteDocument(p); err != nil {
				logger.Warn("sync: delete failed", slog.String("path", p), slog.String("error", err.Error()))
			} else {
				logger.Debug("sync: removed stale", slog.String("path", p))
			}
		}
	}

	return nil
}

// indexFile derives the title and outline from data and upserts it into the DB.
func indexFile(db *DB, path string, data []byte) error {
	body := string(data)

	row := DocumentRow{
		Path:      path,
		Title:     markdown.DocumentTitle(path, body),
		Checksum:  checksum.Sum(data),
		UpdatedAt: time.Now().UTC(),
	}
	return db.UpsertDocument(row, body, markdown.SourceHeadings(body))
}
