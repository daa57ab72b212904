// Package storage defines the workspace file-system abstraction.
package storage

import "github.com/solheim/lesa/internal/models"

// Provider is the interface for workspace file operations.
type Provider interface {
	// List returns metadata for every Markdown document under dir
	// (relative to the workspace root).
	List(dir string) ([]models.DocumentMetadata, error)
	// Read returns the raw bytes of the file at path (relative to the workspace root).
	Read(path string) ([]byte, error)
	// Write atomically writes content to path (relative to the workspace root).
	Write(path string, content []byte) error
	// Delete removes the file at path (relative to the workspace root).
	Delete(path string) error
	// Move renames oldPath to newPath (both relative to the workspace root).
	Move(oldPath, newPath string) error
	// Root returns the absolute workspace root directory.
	Root() string
}

// IsDocument reports whether path has one of the recognized Markdown
// document extensions.
func IsDocument(path string) bool {
	for _, ext := range DocumentExtensions {
		if len(path) > len(ext) && hasSuffixFold(path, ext) {
			return true
		}
	}
	return false
}

// DocumentExtensions are the file extensions treated as documents.
var DocumentExtensions = []string{".md", ".markdown", ".txt"}

func hasSuffixFold(s, suffix string) bool {
	if len(s) < len(suffix) {
		return false
	}
	tail := s[len(s)-len(suffix):]
	for i := 0; i < len(suffix); i++ {
		c := tail[i]
		if c >= 'A' && c <= 'Z' {
			c += 'a' - 'A'
		}
		if c != suffix[i] {
			return false
		}
	}
	return true
}
