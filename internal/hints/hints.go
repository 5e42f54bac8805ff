// Package hints provides actionable error hints for common failure scenarios.
// Hints are formatted consistently as "\n  hint: <text>" for appending to error messages.
package hints

import (
	"os"
	"os/exec"
	"strings"

	"github.com/alnah/go-litpipe/internal/fileutil"
)

// IsInContainer detects if running inside a Docker container or similar.
// Checks for /.dockerenv file which Docker creates automatically.
var IsInContainer = func() bool {
	return fileutil.FileExists("/.dockerenv")
}

// LookPath resolves a program on PATH. Replaced in tests.
var LookPath = exec.LookPath

// toolPackages names where common compilers come from.
var toolPackages = map[string]string{
	"rst2pdf":  "pip install rst2pdf",
	"texi2dvi": "install texinfo (apt install texinfo, brew install texinfo)",
	"pdflatex": "install a TeX distribution (TeX Live, MiKTeX)",
	"xelatex":  "install a TeX distribution (TeX Live, MiKTeX)",
	"lualatex": "install a TeX distribution (TeX Live, MiKTeX)",
	"Rscript":  "install R and the knitr package",
}

// ForExternalTool returns hints when a compiler did not produce its artifact.
// The most common cause is the program not being on PATH.
func ForExternalTool(program string) string {
	if program == "" {
		return ""
	}
	if _, err := LookPath(program); err == nil {
		return format("run with --verbose to see the compiler output")
	}

	hint := program + " not found on PATH"
	if pkg, ok := toolPackages[program]; ok {
		hint += "; " + pkg
	}
	return format(hint)
}

// ForBrowserConnect returns hints for browser connection errors.
// Detects CI/Docker environment and suggests relevant environment variables.
func ForBrowserConnect() string {
	var hints []string

	inCI := os.Getenv("CI") != "" ||
		os.Getenv("GITHUB_ACTIONS") != "" ||
		os.Getenv("GITLAB_CI") != "" ||
		os.Getenv("JENKINS_URL") != ""

	if (inCI || IsInContainer()) && os.Getenv("ROD_NO_SANDBOX") != "1" {
		hints = append(hints, "set ROD_NO_SANDBOX=1 for Docker/CI")
	}

	if os.Getenv("ROD_BROWSER_BIN") == "" {
		hints = append(hints, "set ROD_BROWSER_BIN to use custom Chrome")
	}

	return formatHints(hints)
}

// ForPublishCredentials returns a hint when the publishing endpoint rejects
// or lacks credentials.
func ForPublishCredentials() string {
	return format("set LITPIPE_WP_USER and LITPIPE_WP_PASSWORD (an application password), or add them to .env")
}

// ForConfigNotFound returns hints for config file not found errors.
func ForConfigNotFound(searchedPaths []string) string {
	hint := "use --config /path/to/file.yaml"

	for _, p := range searchedPaths {
		if strings.Contains(p, ".config/litpipe") {
			hint += " or create " + p
			break
		}
	}

	return format(hint)
}

// format creates a single hint string with consistent formatting.
func format(hint string) string {
	if hint == "" {
		return ""
	}
	return "\n  hint: " + hint
}

// formatHints joins multiple hints with consistent formatting.
func formatHints(hints []string) string {
	if len(hints) == 0 {
		return ""
	}
	return format(strings.Join(hints, "; "))
}
