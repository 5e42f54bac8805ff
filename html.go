package litpipe

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"slices"

	"github.com/alnah/go-litpipe/internal/pipeline"
	"github.com/alnah/go-litpipe/internal/yamlutil"
)

// markdownExts are intermediates handled by the Markdown converter.
var markdownExts = []string{ExtMarkdown, ".markdown"}

// htmlExts are intermediates that already are HTML.
var htmlExts = []string{ExtHTML, ".htm"}

// HTMLJob describes a conversion of a literate Markdown document to HTML.
// Job.Output, when set, is where the rendered Markdown goes; Target is
// where the HTML goes.
type HTMLJob struct {
	Job
	Text     string // inline source; the HTML is returned in memory instead of written
	Target   string // HTML output path ("" = rendered document with .html)
	Title    string // document title ("" = front matter title, then "Document")
	CSS      string // stylesheet contents
	Fragment bool   // emit the body only, without the <html> wrapper
	Encoding string // encoding of the source and rendered text ("" = UTF-8)
}

// HTMLResult is either a written file (Path) or in-memory HTML (HTML).
type HTMLResult struct {
	Path string
	HTML string
}

// HTMLPipeline converts literate Markdown to HTML in-process.
type HTMLPipeline struct {
	Render    Renderer
	Converter pipeline.HTMLConverter

	// Highlight adds the chroma stylesheet to standalone documents. It must
	// match whether Converter emits chroma classes.
	Highlight bool

	// Strict turns a dialect mismatch into ErrVersionMismatch instead of a
	// logged warning.
	Strict bool

	Logger *slog.Logger
}

// NewHTMLPipeline creates an HTMLPipeline with syntax highlighting.
func NewHTMLPipeline(render Renderer, logger *slog.Logger) *HTMLPipeline {
	return &HTMLPipeline{
		Render:    render,
		Converter: pipeline.NewGoldmarkConverter(pipeline.MarkdownOptions{Highlight: true}),
		Highlight: true,
		Logger:    logger,
	}
}

// Convert renders job and converts the result to HTML.
// Render errors are returned unchanged.
func (p *HTMLPipeline) Convert(ctx context.Context, job HTMLJob) (HTMLResult, error) {
	if job.Input == "" && job.Text == "" {
		return HTMLResult{}, ErrEmptyInput
	}
	logger := job.logger(p.Logger)

	rendered, err := p.render().Render(ctx, RenderRequest{
		Input:    job.Input,
		Text:     job.Text,
		Output:   job.Output,
		Encoding: job.Encoding,
	})
	if err != nil {
		return HTMLResult{}, err
	}

	// Rendered .Rhtml documents are already HTML.
	if rendered.Path != "" && hasExt(rendered.Path, htmlExts...) {
		logger.Debug("rendered document is HTML, skipping conversion", "path", rendered.Path)
		if job.Target == "" || samePath(job.Target, rendered.Path) {
			return HTMLResult{Path: rendered.Path}, nil
		}
		if err := copyFile(rendered.Path, job.Target); err != nil {
			return HTMLResult{}, err
		}
		logger.Info("copied rendered HTML", "output", job.Target)
		return HTMLResult{Path: job.Target}, nil
	}

	markdown, err := renderedText(rendered)
	if err != nil {
		return HTMLResult{}, err
	}
	if markdown, err = pipeline.ToUTF8(markdown, job.Encoding); err != nil {
		return HTMLResult{}, err
	}

	if err := checkDialect(markdown); err != nil {
		if p.Strict {
			return HTMLResult{}, err
		}
		logger.Warn(err.Error())
	}

	doc, err := buildHTML(ctx, p.converter(), markdown, documentOptions{
		Title:     job.Title,
		CSS:       job.CSS,
		Fragment:  job.Fragment,
		Highlight: p.Highlight,
	})
	if err != nil {
		return HTMLResult{}, err
	}

	if job.Input == "" {
		return HTMLResult{HTML: doc}, nil
	}

	target := job.Target
	if target == "" {
		target = OutputPath(rendered.Path, ExtHTML)
	}
	if err := os.WriteFile(target, []byte(doc), filePermissions); err != nil { // #nosec G306 -- documents are meant to be readable
		return HTMLResult{}, fmt.Errorf("writing %s: %w", target, err)
	}
	logger.Info("converted to HTML", "output", target)
	return HTMLResult{Path: target}, nil
}

// copyFile writes the contents of src to dst.
func copyFile(src, dst string) error {
	data, err := os.ReadFile(src) // #nosec G304 -- rendered document
	if err != nil {
		return fmt.Errorf("reading %s: %w", src, err)
	}
	if err := os.WriteFile(dst, data, filePermissions); err != nil { // #nosec G306 -- documents are meant to be readable
		return fmt.Errorf("writing %s: %w", dst, err)
	}
	return nil
}

func samePath(a, b string) bool {
	absA, errA := filepath.Abs(a)
	absB, errB := filepath.Abs(b)
	if errA != nil || errB != nil {
		return filepath.Clean(a) == filepath.Clean(b)
	}
	return absA == absB
}

func (p *HTMLPipeline) render() Renderer {
	if p.Render == nil {
		return Passthrough{}
	}
	return p.Render
}

func (p *HTMLPipeline) converter() pipeline.HTMLConverter {
	if p.Converter == nil {
		return pipeline.NewGoldmarkConverter(pipeline.MarkdownOptions{Highlight: p.Highlight})
	}
	return p.Converter
}

// renderedText returns the rendered document as text.
func renderedText(r RenderResult) (string, error) {
	if r.Path == "" {
		return r.Text, nil
	}
	data, err := os.ReadFile(r.Path) // #nosec G304 -- path produced by the renderer
	if err != nil {
		return "", fmt.Errorf("reading rendered document %s: %w", r.Path, err)
	}
	return string(data), nil
}

// checkDialect rejects Markdown written for the newer document format, which
// declares its output formats in front matter and is meant for a different
// toolchain. Documents without front matter pass.
func checkDialect(markdown string) error {
	keys, err := yamlutil.FrontMatterKeys(markdown)
	if err != nil || !slices.Contains(keys, "output") {
		return nil
	}
	return fmt.Errorf("%w: front matter declares an \"output\" format; render it with the toolchain that reads it", ErrVersionMismatch)
}

// documentOptions controls how converted Markdown is packaged.
type documentOptions struct {
	Title     string
	CSS       string
	Fragment  bool
	Highlight bool
}

// frontMatter holds the front matter fields litpipe reads.
type frontMatter struct {
	Title string `yaml:"title"`
}

// buildHTML strips front matter from markdown, converts the body and wraps it
// as a fragment or standalone document.
func buildHTML(ctx context.Context, conv pipeline.HTMLConverter, markdown string, opts documentOptions) (string, error) {
	title := opts.Title
	body := markdown
	if front, rest, ok := yamlutil.SplitFrontMatter(markdown); ok {
		body = rest
		var fm frontMatter
		if err := yamlutil.Unmarshal([]byte(front), &fm); err == nil && title == "" {
			title = fm.Title
		}
	}

	fragment, err := conv.ToHTML(ctx, body)
	if err != nil {
		return "", err
	}

	if opts.Fragment {
		return pipeline.InjectCSS(fragment, opts.CSS), nil
	}

	css := opts.CSS
	if opts.Highlight {
		highlight, err := pipeline.HighlightCSS(pipeline.DefaultHighlightStyle)
		if err != nil {
			return "", err
		}
		css = highlight + css
	}
	return pipeline.Standalone(fragment, title, css), nil
}
