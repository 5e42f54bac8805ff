package main

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"runtime"
	"strings"

	"github.com/go-rod/rod/lib/launcher"

	"github.com/alnah/go-litpipe/internal/config"
	"github.com/alnah/go-litpipe/internal/hints"
	"github.com/alnah/go-litpipe/internal/styles"
)

// doctorResult holds all diagnostic information.
type doctorResult struct {
	Status   string      `json:"status"` // "ready", "warnings", "errors"
	Programs []toolInfo  `json:"programs"`
	Chrome   toolInfo    `json:"chrome"`
	Publish  publishInfo `json:"publish"`
	Styles   stylesInfo  `json:"styles"`
	System   systemInfo  `json:"system"`
	Warnings []string    `json:"warnings,omitempty"`
	Errors   []string    `json:"errors,omitempty"`
}

// toolInfo holds the lookup result for one external program.
type toolInfo struct {
	Name  string `json:"name"`
	Found bool   `json:"found"`
	Path  string `json:"path,omitempty"`
}

// publishInfo reports whether publishing is configured.
type publishInfo struct {
	Endpoint    string `json:"endpoint,omitempty"`
	Credentials bool   `json:"credentials"`
}

// stylesInfo lists the stylesheets --css can name.
type stylesInfo struct {
	Dir     string   `json:"dir,omitempty"`
	BuiltIn []string `json:"builtin"`
}

// systemInfo holds system check results.
type systemInfo struct {
	OS           string `json:"os"`
	Arch         string `json:"arch"`
	TempWritable bool   `json:"temp_writable"`
}

// runDoctorCmd executes the doctor command and returns an exit code.
// Exit codes: 0 = OK (including warnings), 1 = errors found.
func runDoctorCmd(args []string, env *Environment) int {
	fs := newFlagSet("doctor", env.Stderr, func(w io.Writer) { runHelp([]string{"doctor"}, &Environment{Stdout: w}) })
	jsonOutput := fs.Bool("json", false, "print the report as JSON")
	var common commonFlags
	fs.StringVarP(&common.config, "config", "c", "", "config file name or path")
	if err := fs.Parse(args); err != nil {
		return ExitUsage
	}

	common.quiet = true
	s, err := newSession(common, env)
	if err != nil {
		fmt.Fprintf(env.Stderr, "error: %v\n", err)
		return exitCodeFor(err)
	}

	result := runDoctor(s.cfg)

	if *jsonOutput {
		enc := json.NewEncoder(env.Stdout)
		enc.SetIndent("", "  ")
		_ = enc.Encode(result)
	} else {
		printDoctorResult(env.Stdout, result)
	}

	if result.Status == "errors" {
		return ExitGeneral
	}
	return ExitSuccess
}

// runDoctor performs all diagnostic checks against cfg.
func runDoctor(cfg *config.Config) *doctorResult {
	result := &doctorResult{
		Status: "ready",
		System: systemInfo{OS: runtime.GOOS, Arch: runtime.GOARCH},
	}

	checkPrograms(result, cfg)
	checkChrome(result)
	checkPublish(result, cfg)
	checkStyles(result, cfg)
	checkSystem(result)

	if len(result.Errors) > 0 {
		result.Status = "errors"
	} else if len(result.Warnings) > 0 {
		result.Status = "warnings"
	}
	return result
}

// checkPrograms looks up the renderer and compilers on PATH. A missing
// compiler only disables its route, so it is a warning.
func checkPrograms(result *doctorResult, cfg *config.Config) {
	programs := []string{cfg.PDF.RST2PDF, cfg.PDF.Texi2DVI, cfg.PDF.Engine}
	if cfg.Render.Program != "" {
		programs = append([]string{cfg.Render.Program}, programs...)
	}

	for _, name := range programs {
		info := toolInfo{Name: name}
		if path, err := hints.LookPath(name); err == nil {
			info.Found, info.Path = true, path
		} else if name == cfg.Render.Program {
			result.Errors = append(result.Errors, fmt.Sprintf("Renderer %s not found on PATH", name))
		} else {
			result.Warnings = append(result.Warnings, fmt.Sprintf("%s not found on PATH", name))
		}
		result.Programs = append(result.Programs, info)
	}
}

// checkChrome detects the browser used by the chrome compiler.
func checkChrome(result *doctorResult) {
	result.Chrome.Name = "chrome"
	path := os.Getenv("ROD_BROWSER_BIN")
	if path == "" {
		var found bool
		path, found = launcher.LookPath()
		if !found {
			result.Warnings = append(result.Warnings,
				"Chrome/Chromium not found; the chrome compiler will download one or set ROD_BROWSER_BIN")
			return
		}
	}
	if _, err := os.Stat(path); err != nil {
		result.Warnings = append(result.Warnings, fmt.Sprintf("Chrome not found at %s", path))
		return
	}
	result.Chrome.Found, result.Chrome.Path = true, path
}

// checkPublish reports the blog endpoint and whether credentials are set.
func checkPublish(result *doctorResult, cfg *config.Config) {
	result.Publish.Endpoint = cfg.Publish.Endpoint
	result.Publish.Credentials = cfg.Publish.User != "" && cfg.Publish.Password != ""
	if cfg.Publish.Endpoint != "" && !result.Publish.Credentials {
		result.Warnings = append(result.Warnings,
			"Publish endpoint set without credentials; set LITPIPE_WP_USER and LITPIPE_WP_PASSWORD")
	}
}

// checkStyles lists the built-in stylesheets and verifies the style directory.
func checkStyles(result *doctorResult, cfg *config.Config) {
	result.Styles.BuiltIn = styles.Names()
	r, err := styles.NewResolver(cfg.HTML.StyleDir)
	if err != nil {
		result.Warnings = append(result.Warnings, fmt.Sprintf("Style directory unusable: %v", err))
		return
	}
	if r.HasCustomDir() {
		result.Styles.Dir = cfg.HTML.StyleDir
	}
}

// checkSystem verifies the temp directory is writable; the chrome compiler
// prints from a temporary HTML copy.
func checkSystem(result *doctorResult) {
	tmpDir := os.TempDir()
	testFile := filepath.Join(tmpDir, "litpipe-doctor-test")
	if err := os.WriteFile(testFile, []byte("test"), 0o600); err != nil {
		result.Errors = append(result.Errors, fmt.Sprintf("Temp directory not writable: %s", tmpDir))
		return
	}
	_ = os.Remove(testFile)
	result.System.TempWritable = true
}

// printDoctorResult outputs human-readable diagnostic results.
func printDoctorResult(w io.Writer, r *doctorResult) {
	fmt.Fprintln(w, "litpipe doctor")
	fmt.Fprintln(w)

	fmt.Fprintln(w, "Programs")
	for _, p := range append(r.Programs, r.Chrome) {
		if p.Found {
			fmt.Fprintf(w, "  [OK] %s: %s\n", p.Name, p.Path)
		} else {
			fmt.Fprintf(w, "  [MISSING] %s\n", p.Name)
		}
	}
	fmt.Fprintln(w)

	fmt.Fprintln(w, "Publishing")
	if r.Publish.Endpoint == "" {
		fmt.Fprintln(w, "  [--] Endpoint: not configured")
	} else {
		fmt.Fprintf(w, "  [OK] Endpoint: %s\n", r.Publish.Endpoint)
		if r.Publish.Credentials {
			fmt.Fprintln(w, "  [OK] Credentials: set")
		} else {
			fmt.Fprintln(w, "  [WARN] Credentials: missing")
		}
	}
	fmt.Fprintln(w)

	fmt.Fprintln(w, "Styles")
	fmt.Fprintf(w, "  [OK] Built-in: %s\n", strings.Join(r.Styles.BuiltIn, ", "))
	if r.Styles.Dir != "" {
		fmt.Fprintf(w, "  [OK] Directory: %s\n", r.Styles.Dir)
	}
	fmt.Fprintln(w)

	fmt.Fprintln(w, "System")
	fmt.Fprintf(w, "  [OK] Platform: %s/%s\n", r.System.OS, r.System.Arch)
	if r.System.TempWritable {
		fmt.Fprintln(w, "  [OK] Temp directory: writable")
	} else {
		fmt.Fprintln(w, "  [ERROR] Temp directory: not writable")
	}
	fmt.Fprintln(w)

	if len(r.Warnings) > 0 {
		fmt.Fprintln(w, "Warnings:")
		for _, warn := range r.Warnings {
			fmt.Fprintf(w, "  [WARN] %s\n", warn)
		}
		fmt.Fprintln(w)
	}

	if len(r.Errors) > 0 {
		fmt.Fprintln(w, "Errors:")
		for _, err := range r.Errors {
			fmt.Fprintf(w, "  [ERROR] %s\n", err)
		}
		fmt.Fprintln(w)
	}

	switch r.Status {
	case "ready":
		fmt.Fprintln(w, "Status: Ready")
	case "warnings":
		fmt.Fprintln(w, "Status: Ready with warnings")
	case "errors":
		fmt.Fprintln(w, "Status: Not ready (see errors above)")
	}
}
