package main

// Notes:
// - Tests using t.Setenv cannot run in parallel; the rest do.

import (
	"bytes"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/alnah/go-litpipe/internal/config"
)

// ---------------------------------------------------------------------------
// TestLoadEnvConfig
// ---------------------------------------------------------------------------

func TestLoadEnvConfig(t *testing.T) {
	t.Setenv("LITPIPE_RENDER", "Rscript")
	t.Setenv("LITPIPE_ENGINE", "xelatex")
	t.Setenv("LITPIPE_TIMEOUT", "45s")
	t.Setenv("LITPIPE_WATCH_INTERVAL", "soon")
	t.Setenv("LITPIPE_WP_PASSWORD", "abcd efgh")

	env := loadEnvConfig()

	if env.Render != "Rscript" || env.Engine != "xelatex" {
		t.Errorf("Render, Engine = %q, %q", env.Render, env.Engine)
	}
	if env.Timeout != 45*time.Second {
		t.Errorf("Timeout = %v, want 45s", env.Timeout)
	}
	if env.WatchInterval != 0 {
		t.Errorf("WatchInterval = %v, want invalid duration ignored", env.WatchInterval)
	}
	if env.WPPassword != "abcd efgh" {
		t.Errorf("WPPassword = %q", env.WPPassword)
	}
}

func TestEnvDuration_RejectsNonPositive(t *testing.T) {
	t.Setenv("LITPIPE_TIMEOUT", "-5s")
	if got := envDuration("LITPIPE_TIMEOUT"); got != 0 {
		t.Errorf("envDuration() = %v, want 0", got)
	}
}

// ---------------------------------------------------------------------------
// TestApplyEnvConfig
// ---------------------------------------------------------------------------

func TestApplyEnvConfig(t *testing.T) {
	t.Parallel()

	cfg := config.DefaultConfig()
	cfg.PDF.Engine = "lualatex"
	cfg.Publish.User = "from-file"

	applyEnvConfig(&envConfig{
		Engine:        "xelatex",
		WatchInterval: 5 * time.Second,
		WPPassword:    "secret",
	}, cfg)

	if cfg.PDF.Engine != "xelatex" {
		t.Errorf("Engine = %q, want env to override file", cfg.PDF.Engine)
	}
	if cfg.Publish.User != "from-file" {
		t.Errorf("User = %q, want file value kept when env is unset", cfg.Publish.User)
	}
	if cfg.Watch.Interval != 5*time.Second || cfg.Publish.Password != "secret" {
		t.Errorf("Interval, Password = %v, %q", cfg.Watch.Interval, cfg.Publish.Password)
	}
}

// ---------------------------------------------------------------------------
// TestWarnUnknownEnvVars
// ---------------------------------------------------------------------------

func TestWarnUnknownEnvVars(t *testing.T) {
	t.Setenv("LITPIPE_WP_PASSWD", "typo")
	t.Setenv("LITPIPE_ENGINE", "pdflatex")

	var buf bytes.Buffer
	warnUnknownEnvVars(slog.New(slog.NewTextHandler(&buf, nil)))

	out := buf.String()
	if !strings.Contains(out, "LITPIPE_WP_PASSWD") {
		t.Errorf("log = %q, want a warning for the typo", out)
	}
	if strings.Contains(out, "LITPIPE_ENGINE") {
		t.Errorf("log = %q, known variable reported", out)
	}
}

// ---------------------------------------------------------------------------
// TestLoadDotEnv
// ---------------------------------------------------------------------------

func TestLoadDotEnv(t *testing.T) {
	path := filepath.Join(t.TempDir(), ".env")
	content := "LITPIPE_WP_USER=editor\nLITPIPE_ENGINE=lualatex\n"
	if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
		t.Fatalf("setup: %v", err)
	}
	t.Setenv("LITPIPE_WP_USER", "")
	t.Setenv("LITPIPE_ENGINE", "xelatex")
	// godotenv treats an empty value as set, so clear it entirely.
	_ = os.Unsetenv("LITPIPE_WP_USER")

	if err := loadDotEnv(path); err != nil {
		t.Fatalf("loadDotEnv() error = %v", err)
	}
	if got := os.Getenv("LITPIPE_WP_USER"); got != "editor" {
		t.Errorf("LITPIPE_WP_USER = %q, want editor", got)
	}
	if got := os.Getenv("LITPIPE_ENGINE"); got != "xelatex" {
		t.Errorf("LITPIPE_ENGINE = %q, want the existing value kept", got)
	}
}

func TestLoadDotEnv_MissingFile(t *testing.T) {
	t.Parallel()

	if err := loadDotEnv(filepath.Join(t.TempDir(), ".env")); err != nil {
		t.Errorf("loadDotEnv() error = %v, want nil for a missing file", err)
	}
	if err := loadDotEnv(""); err != nil {
		t.Errorf("loadDotEnv(\"\") error = %v", err)
	}
}

// ---------------------------------------------------------------------------
// TestNewSession - Priority
// ---------------------------------------------------------------------------

func TestNewSession_Priority(t *testing.T) {
	dir := t.TempDir()
	cfgPath := filepath.Join(dir, "litpipe.yaml")
	yaml := "pdf:\n  engine: lualatex\n  rst2pdf: rst2pdf-file\n"
	if err := os.WriteFile(cfgPath, []byte(yaml), 0o600); err != nil {
		t.Fatalf("setup: %v", err)
	}
	t.Setenv("LITPIPE_CONFIG", cfgPath)
	t.Setenv("LITPIPE_ENGINE", "xelatex")

	env, _, _ := newTestEnv()
	s, err := newSession(commonFlags{quiet: true}, env)
	if err != nil {
		t.Fatalf("newSession() error = %v", err)
	}

	if s.cfg.PDF.Engine != "xelatex" {
		t.Errorf("Engine = %q, want env over file", s.cfg.PDF.Engine)
	}
	if s.cfg.PDF.RST2PDF != "rst2pdf-file" {
		t.Errorf("RST2PDF = %q, want file over default", s.cfg.PDF.RST2PDF)
	}

	mergeCompileFlags(compileFlags{engine: "pdflatex"}, s.cfg)
	if s.cfg.PDF.Engine != "pdflatex" {
		t.Errorf("Engine = %q, want flag over env", s.cfg.PDF.Engine)
	}
}

func TestNewSession_ConfigNotFound(t *testing.T) {
	t.Setenv("LITPIPE_CONFIG", "")

	env, _, _ := newTestEnv()
	_, err := newSession(commonFlags{config: filepath.Join(t.TempDir(), "none.yaml")}, env)
	if err == nil || !strings.Contains(err.Error(), "hint:") {
		t.Errorf("newSession() error = %v, want config not found with hint", err)
	}
	if exitCodeFor(err) != ExitUsage {
		t.Errorf("exit code = %d, want %d", exitCodeFor(err), ExitUsage)
	}
}
