package registry

import (
	"errors"
	"fmt"

	"github.com/femtoclaw/talon/internal/manifest"
)

var (
	// ErrIndexCorrupt indicates the persisted index cannot be decoded or
	// violates an index invariant.
	ErrIndexCorrupt = errors.New("index corrupt")

	// ErrConflict indicates a package with the same name is already indexed.
	ErrConflict = errors.New("conflict")

	// ErrNotFound indicates no package with the given name is indexed.
	ErrNotFound = errors.New("not found")

	// ErrIO is the filesystem failure sentinel shared with the manifest package.
	ErrIO = manifest.ErrIO
)

// IOError wraps a filesystem error with the operation and path.
type IOError = manifest.IOError

// ConflictError names the package that is already indexed.
type ConflictError struct {
	Name string
}

func (e *ConflictError) Error() string {
	return fmt.Sprintf("talon %q is already registered", e.Name)
}

func (e *ConflictError) Is(target error) bool { return target == ErrConflict }

// NotFoundError names the package that is not indexed.
type NotFoundError struct {
	Name string
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("talon %q not found", e.Name)
}

func (e *NotFoundError) Is(target error) bool { return target == ErrNotFound }
