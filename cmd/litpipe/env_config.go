package main

import (
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"

	"github.com/alnah/go-litpipe/internal/config"
)

// envConfig holds configuration from environment variables.
// Provides CI-friendly overrides and keeps credentials out of config files.
type envConfig struct {
	// Configuration and rendering
	ConfigPath string // LITPIPE_CONFIG: config file path
	Render     string // LITPIPE_RENDER: renderer program
	Encoding   string // LITPIPE_ENCODING: source encoding

	// Compilers
	Engine   string        // LITPIPE_ENGINE: default LaTeX engine
	RST2PDF  string        // LITPIPE_RST2PDF: reST compiler program
	Texi2DVI string        // LITPIPE_TEXI2DVI: LaTeX driver program
	Timeout  time.Duration // LITPIPE_TIMEOUT: chrome page load timeout

	// Documents
	StyleDir string // LITPIPE_STYLE_DIR: directory of named stylesheets

	// Watching
	WatchInterval time.Duration // LITPIPE_WATCH_INTERVAL: pause between polls

	// Publishing
	WPEndpoint string // LITPIPE_WP_ENDPOINT: WordPress REST base URL
	WPUser     string // LITPIPE_WP_USER: WordPress user
	WPPassword string // LITPIPE_WP_PASSWORD: application password
}

// knownEnvVars lists valid LITPIPE_* environment variables.
// Used to detect typos and warn users about unknown variables.
var knownEnvVars = map[string]bool{
	"LITPIPE_CONFIG":         true,
	"LITPIPE_RENDER":         true,
	"LITPIPE_ENCODING":       true,
	"LITPIPE_ENGINE":         true,
	"LITPIPE_RST2PDF":        true,
	"LITPIPE_TEXI2DVI":       true,
	"LITPIPE_TIMEOUT":        true,
	"LITPIPE_STYLE_DIR":      true,
	"LITPIPE_WATCH_INTERVAL": true,
	"LITPIPE_WP_ENDPOINT":    true,
	"LITPIPE_WP_USER":        true,
	"LITPIPE_WP_PASSWORD":    true,
}

// loadDotEnv loads KEY=VALUE pairs from path into the process environment.
// Variables already set win. A missing file is not an error.
func loadDotEnv(path string) error {
	if path == "" {
		return nil
	}
	if err := godotenv.Load(path); err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil
		}
		return fmt.Errorf("loading %s: %w", path, err)
	}
	return nil
}

// loadEnvConfig reads configuration from environment variables.
// Invalid durations are ignored.
func loadEnvConfig() *envConfig {
	return &envConfig{
		ConfigPath:    os.Getenv("LITPIPE_CONFIG"),
		Render:        os.Getenv("LITPIPE_RENDER"),
		Encoding:      os.Getenv("LITPIPE_ENCODING"),
		Engine:        os.Getenv("LITPIPE_ENGINE"),
		RST2PDF:       os.Getenv("LITPIPE_RST2PDF"),
		Texi2DVI:      os.Getenv("LITPIPE_TEXI2DVI"),
		Timeout:       envDuration("LITPIPE_TIMEOUT"),
		StyleDir:      os.Getenv("LITPIPE_STYLE_DIR"),
		WatchInterval: envDuration("LITPIPE_WATCH_INTERVAL"),
		WPEndpoint:    os.Getenv("LITPIPE_WP_ENDPOINT"),
		WPUser:        os.Getenv("LITPIPE_WP_USER"),
		WPPassword:    os.Getenv("LITPIPE_WP_PASSWORD"),
	}
}

func envDuration(name string) time.Duration {
	v := os.Getenv(name)
	if v == "" {
		return 0
	}
	d, err := time.ParseDuration(v)
	if err != nil || d <= 0 {
		return 0
	}
	return d
}

// warnUnknownEnvVars logs a warning for each unrecognized LITPIPE_* variable.
// Helps catch typos like LITPIPE_WP_PASSWD.
func warnUnknownEnvVars(logger *slog.Logger) {
	for _, env := range os.Environ() {
		if !strings.HasPrefix(env, "LITPIPE_") {
			continue
		}
		name, _, _ := strings.Cut(env, "=")
		if !knownEnvVars[name] {
			logger.Warn("unknown environment variable (typo?)", "name", name)
		}
	}
}

// applyEnvConfig overrides config file values with the variables that are set.
// CLI flags are applied afterwards, so: flags > env > config file > defaults.
func applyEnvConfig(env *envConfig, cfg *config.Config) {
	setString(&cfg.Render.Program, env.Render)
	setString(&cfg.Render.Encoding, env.Encoding)
	setString(&cfg.PDF.Engine, env.Engine)
	setString(&cfg.PDF.RST2PDF, env.RST2PDF)
	setString(&cfg.PDF.Texi2DVI, env.Texi2DVI)
	if env.Timeout > 0 {
		cfg.PDF.Timeout = env.Timeout
	}
	setString(&cfg.HTML.StyleDir, env.StyleDir)
	if env.WatchInterval > 0 {
		cfg.Watch.Interval = env.WatchInterval
	}
	setString(&cfg.Publish.Endpoint, env.WPEndpoint)
	setString(&cfg.Publish.User, env.WPUser)
	setString(&cfg.Publish.Password, env.WPPassword)
}

// setString assigns v to dst when v is not empty.
func setString(dst *string, v string) {
	if v != "" {
		*dst = v
	}
}
