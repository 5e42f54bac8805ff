package styles

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// DirLoader loads {dir}/{name}.css from a user directory.
type DirLoader struct {
	dir string
}

// NewDirLoader creates a DirLoader for dir.
// Returns ErrInvalidDir if dir is not a readable directory.
func NewDirLoader(dir string) (*DirLoader, error) {
	if dir == "" {
		return nil, fmt.Errorf("%w: empty path", ErrInvalidDir)
	}

	abs, err := filepath.Abs(dir)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidDir, err)
	}
	// Containment checks compare resolved paths.
	if real, err := filepath.EvalSymlinks(abs); err == nil {
		abs = real
	}

	info, err := os.Stat(abs)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("%w: directory does not exist: %s", ErrInvalidDir, abs)
		}
		return nil, fmt.Errorf("%w: %v", ErrInvalidDir, err)
	}
	if !info.IsDir() {
		return nil, fmt.Errorf("%w: not a directory: %s", ErrInvalidDir, abs)
	}
	return &DirLoader{dir: abs}, nil
}

// Load reads the stylesheet called name from the directory.
func (d *DirLoader) Load(name string) (string, error) {
	if err := ValidateName(name); err != nil {
		return "", err
	}

	path := filepath.Join(d.dir, name+".css")
	if err := d.contains(path); err != nil {
		return "", err
	}

	content, err := os.ReadFile(path) // #nosec G304 -- contained in the style directory
	if err != nil {
		if os.IsNotExist(err) {
			return "", fmt.Errorf("%w: %q", ErrNotFound, name)
		}
		return "", fmt.Errorf("%w: %v", ErrRead, err)
	}
	return string(content), nil
}

// contains fails unless path, symlinks resolved, lies inside the directory.
func (d *DirLoader) contains(path string) error {
	abs, err := filepath.Abs(path)
	if err != nil {
		return fmt.Errorf("%w: cannot resolve path", ErrPathTraversal)
	}
	if real, err := filepath.EvalSymlinks(abs); err == nil {
		abs = real
	}
	if !strings.HasPrefix(abs, d.dir+string(filepath.Separator)) {
		return fmt.Errorf("%w: %s escapes %s", ErrPathTraversal, path, d.dir)
	}
	return nil
}

var _ Loader = (*DirLoader)(nil)
