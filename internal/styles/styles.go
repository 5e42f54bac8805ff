package styles

import (
	"errors"
	"fmt"
	"strings"
)

// DefaultName is the built-in general purpose stylesheet.
const DefaultName = "default"

// Sentinel errors for stylesheet lookups.
var (
	ErrNotFound      = errors.New("stylesheet not found")
	ErrInvalidName   = errors.New("invalid stylesheet name")
	ErrInvalidDir    = errors.New("invalid style directory")
	ErrRead          = errors.New("failed to read stylesheet")
	ErrPathTraversal = errors.New("path traversal detected")
)

// Loader loads a stylesheet by name, without the .css extension.
// Implementations return ErrNotFound for unknown names.
type Loader interface {
	Load(name string) (string, error)
}

// ValidateName rejects names that are empty or could address another file:
// path separators and dots are not allowed.
func ValidateName(name string) error {
	if name == "" {
		return fmt.Errorf("%w: empty name", ErrInvalidName)
	}
	if strings.ContainsAny(name, "/\\.") {
		return fmt.Errorf("%w: %q", ErrInvalidName, name)
	}
	return nil
}
