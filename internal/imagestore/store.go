// Package imagestore keeps pasted and uploaded images for the open
// document, addressed by opaque tokens referenced from Markdown as
// `local:<token>`.
package imagestore

import (
	"encoding/base64"
	"fmt"
	"strings"
	"sync"

	"github.com/google/uuid"

	"github.com/solheim/lesa/internal/apperr"
)

// Accepted image MIME types, shared with the workspace image resolver.
var MIMEByExt = map[string]string{
	".png":  "image/png",
	".jpg":  "image/jpeg",
	".jpeg": "image/jpeg",
	".gif":  "image/gif",
	".webp": "image/webp",
	".svg":  "image/svg+xml",
	".bmp":  "image/bmp",
	".ico":  "image/x-icon",
}

// Entry is one stored image.
type Entry struct {
	Token string
	MIME  string
	Data  []byte
}

// DataURI returns the entry encoded as a data URI.
func (e Entry) DataURI() string {
	return "data:" + e.MIME + ";base64," + base64.StdEncoding.EncodeToString(e.Data)
}

// Store is a per-document in-memory image store. Safe for concurrent use.
type Store struct {
	mu      sync.RWMutex
	entries map[string]Entry
}

// New returns an empty store.
func New() *Store {
	return &Store{entries: make(map[string]Entry)}
}

// Put stores image bytes and returns the minted token. Only the MIME
// types in MIMEByExt are accepted.
func (s *Store) Put(data []byte, mime string) (string, error) {
	if !acceptedMIME(mime) {
		return "", fmt.Errorf("imagestore: %q: %w", mime, apperr.ErrUnsupportedImage)
	}
	token := "img_" + uuid.NewString()
	s.mu.Lock()
	s.entries[token] = Entry{Token: token, MIME: mime, Data: data}
	s.mu.Unlock()
	return token, nil
}

// Get returns the entry for token.
func (s *Store) Get(token string) (Entry, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	e, ok := s.entries[token]
	return e, ok
}

// Resolve maps a token to its data URI, in the shape the render pipeline
// expects from an image resolver.
func (s *Store) Resolve(token string) (string, bool) {
	e, ok := s.Get(token)
	if !ok {
		return "", false
	}
	return e.DataURI(), true
}

// Markdown returns the image markup referencing token.
func (s *Store) Markdown(token, alt string) string {
	return fmt.Sprintf("![%s](local:%s)", alt, token)
}

// Reset drops all entries, used when switching documents.
func (s *Store) Reset() {
	s.mu.Lock()
	s.entries = make(map[string]Entry)
	s.mu.Unlock()
}

// Len reports the number of stored images.
func (s *Store) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.entries)
}

func acceptedMIME(mime string) bool {
	for _, m := range MIMEByExt {
		if m == mime {
			return true
		}
	}
	return false
}

// ExtForMIME returns the canonical file extension for an accepted MIME
// type, or "" when the type is not accepted.
func ExtForMIME(mime string) string {
	switch mime {
	case "image/jpeg":
		return ".jpg"
	default:
		for ext, m := range MIMEByExt {
			if m == mime {
				return ext
			}
		}
	}
	return ""
}

// TokenFromRef extracts the token from a `local:<token>` reference.
func TokenFromRef(ref string) (string, bool) {
	if strings.HasPrefix(ref, "local:") {
		return strings.TrimPrefix(ref, "local:"), true
	}
	return "", false
}
