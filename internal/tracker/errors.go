package tracker

import (
	"errors"
	"fmt"
	"sort"
	"strings"

	"github.com/creatorstation/tracker/internal/codec"
)

// ErrImportInProgress is returned when an import overlaps another one.
var ErrImportInProgress = errors.New("another import is already in progress")

// ImportFormatError is an alias so callers only need this package.
type ImportFormatError = codec.ImportFormatError

// ValidationError carries field-level messages keyed by JSON field name.
type ValidationError struct {
	Fields FieldErrors
}

func (e *ValidationError) Error() string {
	keys := make([]string, 0, len(e.Fields))
	for k := range e.Fields {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	parts := make([]string, len(keys))
	for i, k := range keys {
		parts[i] = k + ": " + e.Fields[k]
	}
	return "invalid influencer: " + strings.Join(parts, "; ")
}

// NotFoundError means the referenced influencer does not exist (anymore).
type NotFoundError struct {
	ID string
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("influencer %q not found", e.ID)
}

// PersistenceError reports a failed durable write. The in-memory state that
// triggered the write is kept.
type PersistenceError struct {
	Key string
	Err error
}

func (e *PersistenceError) Error() string {
	return fmt.Sprintf("could not save %s, changes may not survive a reload: %v", e.Key, e.Err)
}

func (e *PersistenceError) Unwrap() error {
	return e.Err
}
