package styles

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// Resolver looks names up in an optional user directory, then in the
// built-in stylesheets.
type Resolver struct {
	custom   Loader // nil without a user directory
	embedded Loader
}

// NewResolver creates a Resolver. An empty dir uses the built-ins only.
func NewResolver(dir string) (*Resolver, error) {
	r := &Resolver{embedded: NewEmbeddedLoader()}
	if dir != "" {
		custom, err := NewDirLoader(dir)
		if err != nil {
			return nil, err
		}
		r.custom = custom
	}
	return r, nil
}

// Load returns the stylesheet called name. Only ErrNotFound from the user
// directory falls back to the built-ins.
func (r *Resolver) Load(name string) (string, error) {
	if r.custom == nil {
		return r.embedded.Load(name)
	}
	css, err := r.custom.Load(name)
	if err == nil {
		return css, nil
	}
	if !errors.Is(err, ErrNotFound) {
		return "", err
	}
	return r.embedded.Load(name)
}

// Resolve returns the stylesheet that ref designates: the contents of a file
// when ref is a path, a named stylesheet otherwise. An empty ref yields "".
func (r *Resolver) Resolve(ref string) (string, error) {
	if ref == "" {
		return "", nil
	}
	if !IsPath(ref) {
		return r.Load(ref)
	}
	data, err := os.ReadFile(ref) // #nosec G304 -- user-provided stylesheet
	if err != nil {
		return "", fmt.Errorf("%w: %w", ErrRead, err)
	}
	return string(data), nil
}

// HasCustomDir reports whether a user directory is configured.
func (r *Resolver) HasCustomDir() bool {
	return r.custom != nil
}

// IsPath reports whether ref names a file rather than a stylesheet.
func IsPath(ref string) bool {
	return strings.ContainsAny(ref, `/\`) || strings.EqualFold(filepath.Ext(ref), ".css")
}

var _ Loader = (*Resolver)(nil)
