package apperr

import "errors"

var (
	ErrNotFound          = errors.New("not found")
	ErrConflict          = errors.New("conflict")
	ErrAlreadyExists     = errors.New("already exists")
	ErrEmptyDocument     = errors.New("document is empty")
	ErrUnsupportedFormat = errors.New("unsupported export format")
	ErrUnsupportedImage  = errors.New("unsupported image type")
)
