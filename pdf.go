package litpipe

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sync"

	"github.com/alnah/go-litpipe/internal/fileutil"
	"github.com/alnah/go-litpipe/internal/pipeline"
)

// pdfRoute is the compiler family selected for a rendered document.
type pdfRoute int

const (
	routeLaTeX pdfRoute = iota
	routeRST
	routeChrome
)

// PDFPipeline renders literate documents and compiles the result to PDF.
type PDFPipeline struct {
	Render     Renderer
	Invoker    *Invoker
	Typesetter Typesetter  // LaTeX documents
	RST2PDF    string      // reST compiler program ("" = "rst2pdf")
	Engine     string      // default LaTeX engine ("" = DefaultEngine)
	Printer    PagePrinter // chrome compiler; started on first use when nil
	Markdown   pipeline.HTMLConverter
	CSS        string // stylesheet for the chrome route
	Logger     *slog.Logger

	printerOnce sync.Once
}

// NewPDFPipeline creates a PDFPipeline whose LaTeX documents go through
// texi2dvi and whose external tools run through invoker.
func NewPDFPipeline(render Renderer, invoker *Invoker) *PDFPipeline {
	if invoker == nil {
		invoker = NewInvoker(nil)
	}
	return &PDFPipeline{
		Render:     render,
		Invoker:    invoker,
		Typesetter: NewTexi2PDF("", invoker),
		Markdown:   pipeline.NewGoldmarkConverter(pipeline.MarkdownOptions{Highlight: true, RawHTML: true}),
		Logger:     invoker.Logger,
	}
}

// Convert renders job.Input, compiles the rendered document and returns the
// PDF path: the rendered document's path with a .pdf extension.
// Render errors are returned unchanged.
func (p *PDFPipeline) Convert(ctx context.Context, job Job) (string, error) {
	if job.Input == "" {
		return "", ErrEmptyInput
	}
	logger := job.logger(p.Logger)

	rendered, err := p.render().Render(ctx, RenderRequest{Input: job.Input, Output: job.Output})
	if err != nil {
		return "", err
	}
	doc := rendered.Path

	route, engine, err := selectRoute(job.Compiler, doc)
	if err != nil {
		return "", err
	}
	if engine == "" {
		engine = p.engine()
	}

	expected := OutputPath(doc, ExtPDF)
	logger.Info("compiling", "document", doc, "compiler", routeName(route, engine))

	switch route {
	case routeRST:
		args := append([]string{doc, "-o", expected}, job.Options...)
		if _, err := p.invoker().Invoke(ctx, Command{Name: p.rst2pdf(), Args: args}, expected); err != nil {
			return "", err
		}
	case routeChrome:
		if err := p.printChrome(ctx, doc, expected); err != nil {
			return "", err
		}
	default:
		err := p.typesetter().Typeset(ctx, TypesetRequest{
			Dir:     filepath.Dir(doc),
			File:    filepath.Base(doc),
			Engine:  engine,
			Options: job.Options,
		})
		if err != nil {
			return "", err
		}
	}

	if !fileutil.FileExists(expected) {
		return "", fmt.Errorf("%w: %s did not create %s", ErrExternalTool, routeName(route, engine), expected)
	}
	logger.Info("created PDF", "output", expected)
	return expected, nil
}

// Close stops the browser if the chrome route started one.
func (p *PDFPipeline) Close() error {
	if p.Printer == nil {
		return nil
	}
	return p.Printer.Close()
}

// selectRoute picks the compiler for a rendered document. An explicit
// compiler other than rst2pdf or chrome names a LaTeX engine.
func selectRoute(compiler, doc string) (pdfRoute, string, error) {
	switch compiler {
	case "":
		switch {
		case hasExt(doc, ExtRST):
			return routeRST, "", nil
		case hasExt(doc, markdownExts...), hasExt(doc, htmlExts...):
			return routeChrome, "", nil
		}
		return routeLaTeX, "", nil
	case CompilerRST2PDF:
		if !hasExt(doc, ExtRST) {
			return 0, "", fmt.Errorf("%w: %s needs a %s document, got %s", ErrInvalidCompiler, compiler, ExtRST, doc)
		}
		return routeRST, "", nil
	case CompilerChrome:
		if !hasExt(doc, markdownExts...) && !hasExt(doc, htmlExts...) {
			return 0, "", fmt.Errorf("%w: %s needs a Markdown or HTML document, got %s", ErrInvalidCompiler, compiler, doc)
		}
		return routeChrome, "", nil
	}
	return routeLaTeX, compiler, nil
}

func routeName(route pdfRoute, engine string) string {
	switch route {
	case routeRST:
		return CompilerRST2PDF
	case routeChrome:
		return CompilerChrome
	}
	return engine
}

// printChrome packages doc as a standalone HTML page and prints it.
func (p *PDFPipeline) printChrome(ctx context.Context, doc, expected string) error {
	text, err := renderedText(RenderResult{Path: doc})
	if err != nil {
		return err
	}

	page := pipeline.InjectCSS(text, p.CSS)
	if hasExt(doc, markdownExts...) {
		page, err = buildHTML(ctx, p.markdown(), text, documentOptions{CSS: p.CSS, Highlight: true})
		if err != nil {
			return err
		}
	}

	// The page is printed from a temp file, so relative figures must be pinned
	// to the document's directory.
	page, err = pipeline.ResolveRelativeLinks(page, filepath.Dir(doc))
	if err != nil {
		return fmt.Errorf("%w: %v", ErrHTMLConversion, err)
	}

	tmp, cleanup, err := fileutil.WriteTempFile(page, "html")
	if err != nil {
		return err
	}
	defer cleanup()

	data, err := p.printer().PrintFile(ctx, tmp)
	if err != nil {
		return err
	}
	if err := os.WriteFile(expected, data, filePermissions); err != nil { // #nosec G306 -- documents are meant to be readable
		return fmt.Errorf("%w: writing %s: %v", ErrPDFGeneration, expected, err)
	}
	return nil
}

func (p *PDFPipeline) render() Renderer {
	if p.Render == nil {
		return Passthrough{}
	}
	return p.Render
}

func (p *PDFPipeline) invoker() *Invoker {
	if p.Invoker == nil {
		p.Invoker = NewInvoker(p.Logger)
	}
	return p.Invoker
}

func (p *PDFPipeline) typesetter() Typesetter {
	if p.Typesetter == nil {
		p.Typesetter = NewTexi2PDF("", p.invoker())
	}
	return p.Typesetter
}

func (p *PDFPipeline) printer() PagePrinter {
	p.printerOnce.Do(func() {
		if p.Printer == nil {
			p.Printer = NewChromePrinter(DefaultPageTimeout)
		}
	})
	return p.Printer
}

func (p *PDFPipeline) markdown() pipeline.HTMLConverter {
	if p.Markdown == nil {
		p.Markdown = pipeline.NewGoldmarkConverter(pipeline.MarkdownOptions{Highlight: true, RawHTML: true})
	}
	return p.Markdown
}

func (p *PDFPipeline) rst2pdf() string {
	if p.RST2PDF == "" {
		return CompilerRST2PDF
	}
	return p.RST2PDF
}

func (p *PDFPipeline) engine() string {
	if p.Engine == "" {
		return DefaultEngine
	}
	return p.Engine
}
