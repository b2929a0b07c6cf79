package manifest

import (
	"errors"
	"fmt"
	"strings"
)

var (
	// ErrManifestMissing indicates the directory has no TALON.md.
	ErrManifestMissing = errors.New("manifest missing")

	// ErrMissingRequiredField indicates name, version or description is absent.
	ErrMissingRequiredField = errors.New("missing required field")

	// ErrInvalidName indicates the name is not a lowercase hyphenated token.
	ErrInvalidName = errors.New("invalid name")

	// ErrInvalidVersion indicates the version is not a MAJOR.MINOR.PATCH semver.
	ErrInvalidVersion = errors.New("invalid version")

	// ErrInvalidManifest indicates a malformed metadata block: no delimiters,
	// broken YAML, or fields of the wrong shape.
	ErrInvalidManifest = errors.New("invalid manifest")

	// ErrIO wraps filesystem failures (permission denied, disk full, ...).
	ErrIO = errors.New("i/o failure")
)

// MissingError is returned when a directory has no manifest file.
type MissingError struct {
	Dir string
}

func (e *MissingError) Error() string {
	return fmt.Sprintf("%s not found in %s", FileName, e.Dir)
}

func (e *MissingError) Is(target error) bool { return target == ErrManifestMissing }

// MissingFieldError names the required field that is absent or empty.
type MissingFieldError struct {
	Field string
}

func (e *MissingFieldError) Error() string {
	return fmt.Sprintf("missing required field %q", e.Field)
}

func (e *MissingFieldError) Is(target error) bool { return target == ErrMissingRequiredField }

// InvalidNameError carries the rejected name verbatim.
type InvalidNameError struct {
	Name string
}

func (e *InvalidNameError) Error() string {
	return fmt.Sprintf("invalid name %q: must be lowercase letters and digits separated by single hyphens", e.Name)
}

func (e *InvalidNameError) Is(target error) bool { return target == ErrInvalidName }

// InvalidVersionError carries the rejected version and the semver parse error.
type InvalidVersionError struct {
	Version string
	Err     error
}

func (e *InvalidVersionError) Error() string {
	return fmt.Sprintf("invalid version %q: %v", e.Version, e.Err)
}

func (e *InvalidVersionError) Unwrap() error { return e.Err }

func (e *InvalidVersionError) Is(target error) bool { return target == ErrInvalidVersion }

// SchemaError lists the structural problems found in a metadata block.
type SchemaError struct {
	Issues []ValidationIssue
}

func (e *SchemaError) Error() string {
	msgs := make([]string, 0, len(e.Issues))
	for _, issue := range e.Issues {
		if issue.Path != "" {
			msgs = append(msgs, issue.Path+": "+issue.Message)
		} else {
			msgs = append(msgs, issue.Message)
		}
	}
	return "invalid manifest: " + strings.Join(msgs, "; ")
}

func (e *SchemaError) Is(target error) bool { return target == ErrInvalidManifest }

// IOError wraps an underlying filesystem error with the operation and path.
// errors.Is matches both ErrIO and the wrapped error (e.g. fs.ErrPermission).
type IOError struct {
	Op   string
	Path string
	Err  error
}

func (e *IOError) Error() string {
	return fmt.Sprintf("%s %s: %v", e.Op, e.Path, e.Err)
}

func (e *IOError) Unwrap() error { return e.Err }

func (e *IOError) Is(target error) bool { return target == ErrIO }
