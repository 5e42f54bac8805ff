package litpipe

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/alnah/go-litpipe/internal/fileutil"
)

// renderedExt maps literate source extensions (lower case) to the markup
// their evaluation produces.
var renderedExt = map[string]string{
	".rnw":   ExtTeX,
	".snw":   ExtTeX,
	".rtex":  ExtTeX,
	".rmd":   ExtMarkdown,
	".rrst":  ExtRST,
	".rhtml": ExtHTML,
}

// RenderRequest asks a Renderer to evaluate one literate document.
// Exactly one of Input and Text is set.
type RenderRequest struct {
	Input    string            // source path
	Text     string            // inline source; the result is returned as text
	Output   string            // requested output path ("" = RenderedPath(Input))
	Encoding string            // source encoding
	Env      map[string]string // evaluation environment, exported to the renderer
}

// RenderResult is the rendered intermediate document.
// Path is set for file requests, Text for inline requests.
type RenderResult struct {
	Path string
	Text string
}

// Renderer evaluates a literate document into an intermediate markup document.
// Errors are returned to pipeline callers unchanged.
type Renderer interface {
	Render(ctx context.Context, req RenderRequest) (RenderResult, error)
}

// RenderFunc adapts a function to the Renderer interface.
type RenderFunc func(ctx context.Context, req RenderRequest) (RenderResult, error)

// Render calls f.
func (f RenderFunc) Render(ctx context.Context, req RenderRequest) (RenderResult, error) {
	return f(ctx, req)
}

// RenderedPath returns where rendering input writes by default: .Rnw becomes
// .tex, .Rmd becomes .md, .Rrst becomes .rst, .Rhtml becomes .html. Inputs
// with other extensions get an "-out" suffix so the source is never overwritten.
func RenderedPath(input string) string {
	ext := filepath.Ext(input)
	if target, ok := renderedExt[strings.ToLower(ext)]; ok {
		return fileutil.ReplaceExt(input, target)
	}
	return strings.TrimSuffix(input, ext) + "-out" + ext
}

// Passthrough is the Renderer for inputs that already are intermediate
// documents (doc.rst, notes.md). It returns the input unchanged, copying it
// first when a different output path is requested.
type Passthrough struct{}

// Render returns the input path (or text) unchanged.
func (Passthrough) Render(_ context.Context, req RenderRequest) (RenderResult, error) {
	if req.Input == "" {
		return RenderResult{Text: req.Text}, nil
	}
	if req.Output == "" || req.Output == req.Input {
		return RenderResult{Path: req.Input}, nil
	}

	data, err := os.ReadFile(req.Input) // #nosec G304 -- user-provided path
	if err != nil {
		return RenderResult{}, fmt.Errorf("reading %s: %w", req.Input, err)
	}
	if err := os.WriteFile(req.Output, data, filePermissions); err != nil { // #nosec G306 -- documents are meant to be readable
		return RenderResult{}, fmt.Errorf("writing %s: %w", req.Output, err)
	}
	return RenderResult{Path: req.Output}, nil
}

// CommandRenderer evaluates documents by running an external program, such as
// Rscript -e "knitr::knit('{input}', '{output}')". The placeholders {input},
// {output} and {encoding} are substituted in each argument. Success is judged
// by the output file existing, like any other external tool.
type CommandRenderer struct {
	Program string
	Args    []string
	Invoker *Invoker // nil = NewInvoker(nil)
}

// NewCommandRenderer creates a CommandRenderer using invoker.
func NewCommandRenderer(program string, args []string, invoker *Invoker) *CommandRenderer {
	return &CommandRenderer{Program: program, Args: args, Invoker: invoker}
}

// Render runs the program on req and returns the rendered document.
func (r *CommandRenderer) Render(ctx context.Context, req RenderRequest) (RenderResult, error) {
	if req.Input == "" {
		return r.renderText(ctx, req)
	}

	output := req.Output
	if output == "" {
		output = RenderedPath(req.Input)
	}

	path, err := r.invoker().Invoke(ctx, r.command(req, output), output)
	if err != nil {
		return RenderResult{}, fmt.Errorf("rendering %s: %w", req.Input, err)
	}
	return RenderResult{Path: path}, nil
}

// renderText round-trips inline text through temp files.
func (r *CommandRenderer) renderText(ctx context.Context, req RenderRequest) (RenderResult, error) {
	input, cleanup, err := fileutil.WriteTempFile(req.Text, "Rmd")
	if err != nil {
		return RenderResult{}, err
	}
	defer cleanup()

	output := RenderedPath(input)
	defer func() { _ = os.Remove(output) }()

	fileReq := req
	fileReq.Input = input
	if _, err := r.invoker().Invoke(ctx, r.command(fileReq, output), output); err != nil {
		return RenderResult{}, fmt.Errorf("rendering inline text: %w", err)
	}

	data, err := os.ReadFile(output) // #nosec G304 -- temp file we created
	if err != nil {
		return RenderResult{}, fmt.Errorf("reading rendered text: %w", err)
	}
	return RenderResult{Text: string(data)}, nil
}

func (r *CommandRenderer) invoker() *Invoker {
	if r.Invoker == nil {
		return NewInvoker(nil)
	}
	return r.Invoker
}

func (r *CommandRenderer) command(req RenderRequest, output string) Command {
	replacer := strings.NewReplacer(
		"{input}", filepath.ToSlash(req.Input),
		"{output}", filepath.ToSlash(output),
		"{encoding}", req.Encoding,
	)
	args := make([]string, len(r.Args))
	for i, a := range r.Args {
		args[i] = replacer.Replace(a)
	}
	return Command{Name: r.Program, Args: args, Env: envList(req.Env)}
}

// envList flattens env into sorted KEY=VALUE entries.
func envList(env map[string]string) []string {
	if len(env) == 0 {
		return nil
	}
	list := make([]string, 0, len(env))
	for k, v := range env {
		list = append(list, k+"="+v)
	}
	sort.Strings(list)
	return list
}
