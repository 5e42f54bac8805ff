package pipeline

import (
	"errors"
	"fmt"
	"strings"

	"golang.org/x/text/encoding"
	"golang.org/x/text/encoding/htmlindex"
	"golang.org/x/text/encoding/unicode"
)

// ErrUnknownEncoding indicates an encoding name not in the WHATWG index.
var ErrUnknownEncoding = errors.New("unknown text encoding")

// LookupEncoding resolves a WHATWG encoding label ("utf-8", "latin1",
// "windows-1252", "shift_jis"). An empty name means UTF-8.
func LookupEncoding(name string) (encoding.Encoding, error) {
	if strings.TrimSpace(name) == "" {
		return unicode.UTF8, nil
	}
	enc, err := htmlindex.Get(name)
	if err != nil {
		return nil, fmt.Errorf("%w: %q", ErrUnknownEncoding, name)
	}
	return enc, nil
}

// ToUTF8 decodes s from the named encoding into UTF-8.
// UTF-8 input is returned unchanged.
func ToUTF8(s, encodingName string) (string, error) {
	enc, err := LookupEncoding(encodingName)
	if err != nil {
		return "", err
	}
	if enc == unicode.UTF8 {
		return s, nil
	}
	out, err := enc.NewDecoder().String(s)
	if err != nil {
		return "", fmt.Errorf("decoding %s: %w", encodingName, err)
	}
	return out, nil
}
