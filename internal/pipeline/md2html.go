package pipeline

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"html"
	"strings"

	"github.com/alecthomas/chroma/v2"
	chromahtml "github.com/alecthomas/chroma/v2/formatters/html"
	"github.com/alecthomas/chroma/v2/styles"
	"github.com/yuin/goldmark"
	highlighting "github.com/yuin/goldmark-highlighting/v2"
	"github.com/yuin/goldmark/extension"
	"github.com/yuin/goldmark/parser"
	gmhtml "github.com/yuin/goldmark/renderer/html"
)

// ErrHTMLConversion indicates HTML conversion failed.
var ErrHTMLConversion = errors.New("HTML conversion failed")

// DefaultHighlightStyle is the chroma style used for standalone documents.
const DefaultHighlightStyle = "github"

// documentTemplate wraps a fragment in a complete HTML5 document.
// Placeholders: title, head extras, body.
const documentTemplate = `<!DOCTYPE html>
<html>
<head>
<meta charset="utf-8">
<title>%s</title>
%s</head>
<body>
%s
</body>
</html>
`

// MarkdownOptions selects goldmark features.
type MarkdownOptions struct {
	// Highlight colors fenced code with chroma CSS classes. Blog output
	// leaves it off so code blocks stay plain for shortcode rewriting.
	Highlight bool

	// RawHTML keeps HTML embedded in the Markdown source. Rendered R Markdown
	// often carries raw <img> and <table> markup from plotting code.
	RawHTML bool
}

// HTMLConverter abstracts Markdown to HTML conversion.
type HTMLConverter interface {
	ToHTML(ctx context.Context, content string) (string, error)
}

// GoldmarkConverter converts Markdown to an HTML fragment using goldmark (pure Go).
type GoldmarkConverter struct {
	md goldmark.Markdown
}

// NewGoldmarkConverter creates a GoldmarkConverter with GFM, footnotes and
// heading IDs, plus the features selected in opts.
func NewGoldmarkConverter(opts MarkdownOptions) *GoldmarkConverter {
	extensions := []goldmark.Extender{
		extension.GFM,      // Tables, strikethrough, autolinks, task lists
		extension.Footnote, // [^1] footnotes
	}
	if opts.Highlight {
		extensions = append(extensions, highlighting.NewHighlighting(
			highlighting.WithStyle(DefaultHighlightStyle),
			highlighting.WithFormatOptions(chromahtml.WithClasses(true)),
		))
	}

	rendererOpts := []goldmark.Option{}
	if opts.RawHTML {
		rendererOpts = append(rendererOpts, goldmark.WithRendererOptions(gmhtml.WithUnsafe()))
	}

	md := goldmark.New(append(rendererOpts,
		goldmark.WithExtensions(extensions...),
		goldmark.WithParserOptions(parser.WithAutoHeadingID()),
	)...)
	return &GoldmarkConverter{md: md}
}

// ToHTML converts Markdown content to an HTML fragment.
// Goldmark has no context support, so conversion runs in a goroutine and
// ToHTML returns early when ctx is done.
func (c *GoldmarkConverter) ToHTML(ctx context.Context, content string) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}

	type result struct {
		html string
		err  error
	}

	done := make(chan result, 1)

	go func() {
		var buf bytes.Buffer
		if err := c.md.Convert([]byte(content), &buf); err != nil {
			done <- result{err: fmt.Errorf("%w: %v", ErrHTMLConversion, err)}
			return
		}
		done <- result{html: buf.String()}
	}()

	select {
	case <-ctx.Done():
		return "", ctx.Err()
	case r := <-done:
		return r.html, r.err
	}
}

// Standalone wraps an HTML fragment in a complete HTML5 document.
// An empty title falls back to "Document". css is inlined in <head>.
func Standalone(fragment, title, css string) string {
	if strings.TrimSpace(title) == "" {
		title = "Document"
	}
	head := ""
	if css != "" {
		head = styleBlock(css) + "\n"
	}
	return fmt.Sprintf(documentTemplate, html.EscapeString(title), head, fragment)
}

// HighlightCSS returns the stylesheet matching the classes emitted when
// MarkdownOptions.Highlight is set. Unknown style names fall back to chroma's
// default style.
func HighlightCSS(style string) (string, error) {
	s := styles.Get(style)
	if s == nil {
		s = styles.Fallback
	}
	return highlightCSS(s)
}

func highlightCSS(s *chroma.Style) (string, error) {
	var buf bytes.Buffer
	if err := chromahtml.New(chromahtml.WithClasses(true)).WriteCSS(&buf, s); err != nil {
		return "", fmt.Errorf("%w: writing highlight CSS: %v", ErrHTMLConversion, err)
	}
	return buf.String(), nil
}
