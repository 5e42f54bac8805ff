// Package yamlutil wraps YAML parsing to isolate the external dependency.
// It also splits YAML front matter off literate document sources.
package yamlutil

import (
	"errors"
	"fmt"
	"strings"

	"github.com/goccy/go-yaml"
)

// MaxInputSize limits YAML input to prevent memory exhaustion (default 1MB).
var MaxInputSize = 1 << 20

var (
	ErrNilData        = errors.New("yamlutil: nil or empty data")
	ErrNilDestination = errors.New("yamlutil: nil destination pointer")
	ErrInputTooLarge  = errors.New("yamlutil: input exceeds maximum size")
)

const frontMatterDelimiter = "---"

func validateInput(data []byte, v any) error {
	if len(data) == 0 {
		return ErrNilData
	}
	if len(data) > MaxInputSize {
		return fmt.Errorf("%w: %d bytes (max %d)", ErrInputTooLarge, len(data), MaxInputSize)
	}
	if v == nil {
		return ErrNilDestination
	}
	return nil
}

// Unmarshal parses data into v, ignoring unknown fields.
func Unmarshal(data []byte, v any) error {
	if err := validateInput(data, v); err != nil {
		return err
	}
	if err := yaml.Unmarshal(data, v); err != nil {
		return fmt.Errorf("yamlutil: %w", err)
	}
	return nil
}

// UnmarshalStrict rejects unknown fields in the input.
func UnmarshalStrict(data []byte, v any) error {
	if err := validateInput(data, v); err != nil {
		return err
	}
	if err := yaml.UnmarshalWithOptions(data, v, yaml.Strict()); err != nil {
		return fmt.Errorf("yamlutil: %w", err)
	}
	return nil
}

// SplitFrontMatter separates a leading "---" delimited YAML block from body.
// ok is false when content has no front matter; body is then content unchanged.
// Line endings are normalized to \n in both returned parts.
func SplitFrontMatter(content string) (front, body string, ok bool) {
	normalized := strings.ReplaceAll(content, "\r\n", "\n")
	if !strings.HasPrefix(normalized, frontMatterDelimiter+"\n") {
		return "", content, false
	}

	rest := normalized[len(frontMatterDelimiter)+1:]
	lines := strings.SplitAfter(rest, "\n")
	offset := 0
	for _, line := range lines {
		trimmed := strings.TrimRight(line, "\n")
		if trimmed == frontMatterDelimiter || trimmed == "..." {
			return rest[:offset], rest[offset+len(line):], true
		}
		offset += len(line)
	}
	return "", content, false
}

// FrontMatterKeys returns the top-level keys of the YAML front matter in content.
// Content without front matter yields nil and no error.
func FrontMatterKeys(content string) ([]string, error) {
	front, _, ok := SplitFrontMatter(content)
	if !ok || strings.TrimSpace(front) == "" {
		return nil, nil
	}

	var fields yaml.MapSlice
	if err := Unmarshal([]byte(front), &fields); err != nil {
		return nil, err
	}

	keys := make([]string, 0, len(fields))
	for _, item := range fields {
		keys = append(keys, fmt.Sprint(item.Key))
	}
	return keys, nil
}
