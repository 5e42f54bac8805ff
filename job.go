package litpipe

import (
	"log/slog"
	"path/filepath"
	"strings"

	"github.com/google/uuid"
)

// Compiler identifiers.
const (
	// CompilerRST2PDF converts reStructuredText to PDF with the rst2pdf program.
	CompilerRST2PDF = "rst2pdf"

	// CompilerChrome prints HTML (or Markdown converted to HTML) with headless Chrome.
	CompilerChrome = "chrome"
)

// Intermediate document extensions.
const (
	ExtRST      = ".rst"
	ExtTeX      = ".tex"
	ExtMarkdown = ".md"
	ExtHTML     = ".html"
	ExtPDF      = ".pdf"
)

// filePermissions is used for every artifact written by the library.
const filePermissions = 0o644 // rw-r--r--: owner read+write, others read

// Job describes one pipeline invocation. It is passed by value and never
// modified once built.
type Job struct {
	ID       string   // correlation ID for logs (generated by NewJob)
	Input    string   // literate source or intermediate document
	Output   string   // explicit render output path (optional)
	Compiler string   // "" = inferred from the rendered document's extension
	Options  []string // extra arguments for the compiler
}

// NewJob returns a Job for input with a fresh correlation ID.
func NewJob(input string) Job {
	return Job{ID: uuid.NewString(), Input: input}
}

// WithCompiler returns a copy of j using compiler.
func (j Job) WithCompiler(compiler string) Job {
	j.Compiler = compiler
	return j
}

// WithOutput returns a copy of j rendering to output.
func (j Job) WithOutput(output string) Job {
	j.Output = output
	return j
}

// WithOptions returns a copy of j with the given compiler options.
func (j Job) WithOptions(opts ...string) Job {
	j.Options = append([]string(nil), opts...)
	return j
}

// logger returns l annotated with the job's identity.
func (j Job) logger(l *slog.Logger) *slog.Logger {
	if l == nil {
		l = slog.Default()
	}
	return l.With("job_id", j.ID, "input", j.Input)
}

// hasExt reports whether path ends with ext, ignoring case.
func hasExt(path string, exts ...string) bool {
	got := strings.ToLower(filepath.Ext(path))
	for _, ext := range exts {
		if got == ext {
			return true
		}
	}
	return false
}
