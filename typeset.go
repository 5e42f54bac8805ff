package litpipe

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/alnah/go-litpipe/internal/envscope"
)

const (
	// EngineEnvVar names the LaTeX engine for texi2dvi and tools built on it.
	EngineEnvVar = "PDFLATEX"

	// DefaultEngine is used when neither the job nor the pipeline names one.
	DefaultEngine = "pdflatex"
)

// TypesetRequest asks a Typesetter to turn a LaTeX file into a PDF.
// The PDF is expected next to File, inside Dir.
type TypesetRequest struct {
	Dir     string   // directory containing File; relative paths in the document resolve here
	File    string   // base name of the .tex file
	Engine  string   // LaTeX engine ("" = typesetter default)
	Options []string // extra arguments
}

// Typesetter is the generic document-to-PDF collaborator.
type Typesetter interface {
	Typeset(ctx context.Context, req TypesetRequest) error
}

// Texi2PDF runs "texi2dvi --pdf" in the document's directory. The engine is
// handed to the child process through its own environment, so the caller's
// process state is never touched.
type Texi2PDF struct {
	Program string // default "texi2dvi"
	Invoker *Invoker // nil = NewInvoker(nil)
}

// NewTexi2PDF creates a Texi2PDF running program through invoker.
func NewTexi2PDF(program string, invoker *Invoker) *Texi2PDF {
	return &Texi2PDF{Program: program, Invoker: invoker}
}

// Typeset compiles req.File and checks that the PDF exists afterwards.
func (t *Texi2PDF) Typeset(ctx context.Context, req TypesetRequest) error {
	program := t.Program
	if program == "" {
		program = "texi2dvi"
	}

	args := append([]string{"--pdf", "--batch"}, req.Options...)
	args = append(args, req.File)

	var env []string
	if req.Engine != "" {
		env = []string{EngineEnvVar + "=" + req.Engine}
	}

	expected := filepath.Join(req.Dir, OutputPath(req.File, ExtPDF))
	_, err := t.invoker().Invoke(ctx, Command{Name: program, Args: args, Dir: req.Dir, Env: env}, expected)
	return err
}

func (t *Texi2PDF) invoker() *Invoker {
	if t.Invoker == nil {
		return NewInvoker(nil)
	}
	return t.Invoker
}

// ProcessTypesetter adapts a typesetting function that can only read process
// state: it resolves file against the working directory and reads the engine
// from EngineEnvVar. Typeset switches directory and sets the variable for the
// duration of the call, then restores both, on success, error or panic.
type ProcessTypesetter func(ctx context.Context, file string, options []string) error

// Typeset runs f inside a scoped environment.
func (f ProcessTypesetter) Typeset(ctx context.Context, req TypesetRequest) error {
	return envscope.Run(EngineEnvVar, func() error {
		if req.Dir != "" {
			if err := os.Chdir(req.Dir); err != nil {
				return fmt.Errorf("entering %s: %w", req.Dir, err)
			}
		}
		if req.Engine != "" {
			if err := os.Setenv(EngineEnvVar, req.Engine); err != nil {
				return fmt.Errorf("selecting engine %s: %w", req.Engine, err)
			}
		}
		return f(ctx, req.File, req.Options)
	})
}
