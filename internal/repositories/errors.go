package repositories

import (
	"errors"
	"fmt"
	"strings"

	"github.com/anonto42/aora/backend/internal/docstore"
)

var (
	// ErrNotFound indicates that an expected document is absent
	ErrNotFound = errors.New("not found")
	// ErrUpload indicates a storage gateway failure
	ErrUpload = errors.New("upload failed")
	// ErrWrite indicates a document store write failure
	ErrWrite = errors.New("write failed")
	// ErrRead indicates a document store read failure
	ErrRead = errors.New("read failed")
	// ErrInvalidMedia indicates a media URL that the storage gateway did not issue for the post
	ErrInvalidMedia = errors.New("invalid media")
	// ErrDuplicateField indicates a unique profile field is already taken
	ErrDuplicateField = errors.New("duplicate field")
)

// DuplicateFieldError names the field that is already registered
type DuplicateFieldError struct {
	Field string
}

func (e *DuplicateFieldError) Error() string {
	if e.Field == "" {
		return "Value is already in use"
	}
	return strings.ToUpper(e.Field[:1]) + e.Field[1:] + " is already in use"
}

func (e *DuplicateFieldError) Is(target error) bool {
	return target == ErrDuplicateField
}

func readError(op string, err error) error {
	if errors.Is(err, docstore.ErrNotFound) {
		return fmt.Errorf("%s: %w", op, ErrNotFound)
	}
	return fmt.Errorf("%w: %s: %w", ErrRead, op, err)
}

func writeError(op string, err error) error {
	return fmt.Errorf("%w: %s: %w", ErrWrite, op, err)
}
