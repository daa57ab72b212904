package index

import "github.com/solheim/lesa/internal/models"

// DocumentIndex defines the interface for document indexing operations.
// Consumers should depend on this interface rather than the concrete *DB type
// to facilitate testing with mocks.
type DocumentIndex interface {
	UpsertDocument(d DocumentRow, body string, headings []models.Heading) error
	DeleteDocument(path string) error
	GetDocument(path string) (*DocumentRow, error)
	GetChecksum(path string) (string, error)
	ListDocuments() ([]DocumentRow, error)
	Headings(path string) ([]models.Heading, error)
	Search(query string, limit int) ([]SearchResult, error)
	AllPaths() (map[string]struct{}, error)
	AllChecksums() (map[string]string, error)
	Close() error
}

// Verify *DB satisfies DocumentIndex at compile time.
var _ DocumentIndex = (*DB)(nil)
