package styles

import (
	"embed"
	"fmt"
	"io/fs"
	"strings"
)

//go:embed css/*.css
var builtin embed.FS

// EmbeddedLoader loads the built-in stylesheets.
type EmbeddedLoader struct{}

// NewEmbeddedLoader creates an EmbeddedLoader.
func NewEmbeddedLoader() *EmbeddedLoader {
	return &EmbeddedLoader{}
}

// Load returns the built-in stylesheet called name.
func (e *EmbeddedLoader) Load(name string) (string, error) {
	if err := ValidateName(name); err != nil {
		return "", err
	}
	content, err := builtin.ReadFile("css/" + name + ".css")
	if err != nil {
		return "", fmt.Errorf("%w: %q (built-in: %s)", ErrNotFound, name, strings.Join(Names(), ", "))
	}
	return string(content), nil
}

// Names lists the built-in stylesheets in lexical order.
func Names() []string {
	entries, err := fs.ReadDir(builtin, "css")
	if err != nil {
		return nil
	}
	names := make([]string, 0, len(entries))
	for _, e := range entries {
		names = append(names, strings.TrimSuffix(e.Name(), ".css"))
	}
	return names
}

var _ Loader = (*EmbeddedLoader)(nil)
