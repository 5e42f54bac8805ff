package litpipe

import (
	"bytes"
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/exec"
	"strings"

	"github.com/alnah/go-litpipe/internal/fileutil"
	"github.com/alnah/go-litpipe/internal/process"
)

// stderrTailLines bounds how much compiler output ends up in error messages.
const stderrTailLines = 15

// Command describes one external program invocation.
type Command struct {
	Name string   // program name, resolved via PATH unless absolute
	Args []string // passed as discrete argv entries, never through a shell
	Dir  string   // working directory ("" = inherit)
	Env  []string // extra KEY=VALUE entries appended to the process environment
}

// String renders the command with each argument quoted, for logs and errors.
func (c Command) String() string {
	parts := make([]string, 0, len(c.Args)+1)
	parts = append(parts, c.Name)
	for _, a := range c.Args {
		if a == "" || strings.ContainsAny(a, " \t\n'\"\\") {
			a = fmt.Sprintf("%q", a)
		}
		parts = append(parts, a)
	}
	return strings.Join(parts, " ")
}

// CommandRunner abstracts command execution to enable testing without real subprocesses.
type CommandRunner interface {
	Run(ctx context.Context, cmd Command) (stdout string, stderr string, err error)
}

// ExecRunner implements CommandRunner using os/exec.
// The child runs in its own process group, killed as a whole when ctx is done.
type ExecRunner struct{}

// Run starts cmd and waits for it to exit.
func (r *ExecRunner) Run(ctx context.Context, c Command) (string, string, error) {
	cmd := exec.CommandContext(ctx, c.Name, c.Args...) // #nosec G204 -- program comes from configuration
	cmd.Dir = c.Dir
	if len(c.Env) > 0 {
		cmd.Env = append(os.Environ(), c.Env...)
	}
	process.Attach(cmd)

	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	err := cmd.Run()
	return stdout.String(), stderr.String(), err
}

// Invoker runs external compilers and judges success by the artifact they leave.
type Invoker struct {
	Runner CommandRunner
	Logger *slog.Logger
}

// NewInvoker creates an Invoker with a real command runner.
func NewInvoker(logger *slog.Logger) *Invoker {
	return &Invoker{Runner: &ExecRunner{}, Logger: logger}
}

// Invoke runs cmd synchronously and returns expected if that file exists
// afterwards. The program's exit status is not consulted: a missing artifact
// is an ErrExternalTool failure even on exit 0, and an existing artifact is a
// success even on a non-zero exit.
func (i *Invoker) Invoke(ctx context.Context, cmd Command, expected string) (string, error) {
	logger := i.logger()
	logger.Debug("running external tool", "command", cmd.String(), "dir", cmd.Dir, "expect", expected)

	stdout, stderr, runErr := i.runner().Run(ctx, cmd)
	if runErr != nil {
		logger.Debug("external tool exited with error", "program", cmd.Name, "error", runErr)
	}
	if stdout != "" {
		logger.Debug("external tool output", "program", cmd.Name, "stdout", tail(stdout, stderrTailLines))
	}

	if fileutil.FileExists(expected) {
		return expected, nil
	}
	if err := ctx.Err(); err != nil {
		return "", err
	}

	msg := fmt.Sprintf("%s did not create %s", cmd.Name, expected)
	if runErr != nil {
		msg += fmt.Sprintf(" (%v)", runErr)
	}
	if t := tail(stderr, stderrTailLines); t != "" {
		msg += ":\n" + t
	}
	return "", fmt.Errorf("%w: %s", ErrExternalTool, msg)
}

func (i *Invoker) runner() CommandRunner {
	if i.Runner == nil {
		return &ExecRunner{}
	}
	return i.Runner
}

func (i *Invoker) logger() *slog.Logger {
	if i.Logger == nil {
		return slog.Default()
	}
	return i.Logger
}

// OutputPath derives the artifact path of a conversion: same directory and
// base name as input, extension replaced by ext.
func OutputPath(input, ext string) string {
	return fileutil.ReplaceExt(input, ext)
}

// tail returns the last n non-empty lines of s.
func tail(s string, n int) string {
	lines := strings.Split(strings.TrimRight(s, "\n"), "\n")
	if len(lines) > n {
		lines = lines[len(lines)-n:]
	}
	return strings.TrimSpace(strings.Join(lines, "\n"))
}
