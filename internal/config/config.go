package config

import (
	"errors"
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/alnah/go-litpipe/internal/fileutil"
	"github.com/alnah/go-litpipe/internal/yamlutil"
)

// Sentinel errors for config operations.
var (
	ErrConfigNotFound  = errors.New("config file not found")
	ErrEmptyConfigName = errors.New("config name cannot be empty")
	ErrConfigParse     = errors.New("failed to parse config")
	ErrInvalidField    = errors.New("invalid config field")
)

// Defaults applied by DefaultConfig.
const (
	DefaultEngine        = "pdflatex"
	DefaultRST2PDF       = "rst2pdf"
	DefaultTexi2DVI      = "texi2dvi"
	DefaultWatchInterval = time.Second
	DefaultRetries       = 3
	DefaultEncoding      = "utf-8"
	DefaultBrowserTime   = 30 * time.Second
	MaxRetries           = 10
)

// Config holds all configuration for document conversion.
type Config struct {
	Render  RenderConfig  `yaml:"render"`
	PDF     PDFConfig     `yaml:"pdf"`
	HTML    HTMLConfig    `yaml:"html"`
	Publish PublishConfig `yaml:"publish"`
	Watch   WatchConfig   `yaml:"watch"`
}

// RenderConfig defines the program that evaluates literate sources.
// Args may contain the {input} and {output} placeholders.
// An empty Program means sources are already intermediate documents.
type RenderConfig struct {
	Program  string   `yaml:"program"`  // e.g. "Rscript"
	Args     []string `yaml:"args"`     // e.g. ["-e", "knitr::knit('{input}', '{output}')"]
	Encoding string   `yaml:"encoding"` // source encoding passed to the renderer
}

// PDFConfig defines PDF compiler selection.
type PDFConfig struct {
	Engine   string        `yaml:"engine"`   // LaTeX engine: pdflatex, xelatex, lualatex
	RST2PDF  string        `yaml:"rst2pdf"`  // reST-to-PDF program
	Texi2DVI string        `yaml:"texi2dvi"` // LaTeX driver program
	Options  []string      `yaml:"options"`  // extra compiler arguments
	Timeout  time.Duration `yaml:"timeout"`  // headless Chrome page load timeout
}

// HTMLConfig defines standalone HTML output options.
type HTMLConfig struct {
	CSS      string `yaml:"css"`      // stylesheet name or path
	StyleDir string `yaml:"styleDir"` // directory of named stylesheets, tried before the built-ins
	Fragment bool   `yaml:"fragment"` // body only, no <html> wrapper
	Strict   bool   `yaml:"strict"`   // dialect mismatch is an error instead of a warning
}

// PublishConfig defines the blog publishing endpoint.
type PublishConfig struct {
	Endpoint   string          `yaml:"endpoint"` // WordPress REST base, e.g. https://blog.example.com/wp-json/wp/v2
	User       string          `yaml:"user"`
	Password   string          `yaml:"password"` // application password; prefer LITPIPE_WP_PASSWORD
	Publish    bool            `yaml:"publish"`  // false = draft
	Encoding   string          `yaml:"encoding"` // encoding of rendered title/body
	Retries    int             `yaml:"retries"`
	Categories []int           `yaml:"categories"`
	Tags       []int           `yaml:"tags"`
	Shortcode  ShortcodeConfig `yaml:"shortcode"`
}

// ShortcodeConfig toggles the two code block rewrite stages.
type ShortcodeConfig struct {
	Language bool `yaml:"language"` // language-tagged blocks -> [sourcecode language="x"]
	Generic  bool `yaml:"generic"`  // remaining blocks -> [sourcecode] instead of <pre>
}

// WatchConfig defines the polling watch loop.
type WatchConfig struct {
	Interval        time.Duration `yaml:"interval"`
	ContinueOnError bool          `yaml:"continueOnError"`
}

// Validate checks values that would otherwise fail deep inside a pipeline.
// Called automatically by LoadConfig.
func (c *Config) Validate() error {
	for field, program := range map[string]string{
		"render.program": c.Render.Program,
		"pdf.engine":     c.PDF.Engine,
		"pdf.rst2pdf":    c.PDF.RST2PDF,
		"pdf.texi2dvi":   c.PDF.Texi2DVI,
	} {
		if strings.ContainsAny(program, "\x00\n") {
			return fmt.Errorf("%w: %s contains control characters", ErrInvalidField, field)
		}
	}

	if c.PDF.Timeout < 0 {
		return fmt.Errorf("%w: pdf.timeout must be positive, got %v", ErrInvalidField, c.PDF.Timeout)
	}

	if c.Watch.Interval < 0 {
		return fmt.Errorf("%w: watch.interval must be positive, got %v", ErrInvalidField, c.Watch.Interval)
	}

	if c.Publish.Retries < 0 || c.Publish.Retries > MaxRetries {
		return fmt.Errorf("%w: publish.retries must be between 0 and %d, got %d", ErrInvalidField, MaxRetries, c.Publish.Retries)
	}

	if c.Publish.Endpoint != "" {
		u, err := url.Parse(c.Publish.Endpoint)
		if err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
			return fmt.Errorf("%w: publish.endpoint must be an http(s) URL, got %q", ErrInvalidField, c.Publish.Endpoint)
		}
	}

	return nil
}

// DefaultConfig returns a configuration with every program set to its usual name.
func DefaultConfig() *Config {
	return &Config{
		Render: RenderConfig{Encoding: DefaultEncoding},
		PDF: PDFConfig{
			Engine:   DefaultEngine,
			RST2PDF:  DefaultRST2PDF,
			Texi2DVI: DefaultTexi2DVI,
			Timeout:  DefaultBrowserTime,
		},
		Publish: PublishConfig{
			Publish:  true,
			Encoding: DefaultEncoding,
			Retries:  DefaultRetries,
		},
		Watch: WatchConfig{Interval: DefaultWatchInterval},
	}
}

// LoadConfig loads configuration from a file path or config name.
// If nameOrPath contains a path separator, it's treated as a file path.
// Otherwise, it's treated as a config name and searched in standard locations.
// Values missing from the file keep their DefaultConfig value.
func LoadConfig(nameOrPath string) (*Config, error) {
	if nameOrPath == "" {
		return nil, ErrEmptyConfigName
	}

	var configPath string
	var err error

	if fileutil.IsFilePath(nameOrPath) {
		configPath = nameOrPath
	} else {
		configPath, err = resolveConfigPath(nameOrPath)
		if err != nil {
			return nil, err
		}
	}

	data, err := os.ReadFile(configPath) // #nosec G304 -- config path is user-provided
	if err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("%w: %s", ErrConfigNotFound, configPath)
		}
		return nil, fmt.Errorf("reading config file: %w", err)
	}

	cfg := DefaultConfig()
	if err := yamlutil.UnmarshalStrict(data, cfg); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrConfigParse, err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

// SearchPaths returns the locations tried for a config name, in order:
// current directory, then the user config directory, each with .yaml and .yml.
func SearchPaths(name string) []string {
	extensions := []string{".yaml", ".yml"}
	paths := make([]string, 0, len(extensions)*2)

	for _, ext := range extensions {
		paths = append(paths, name+ext)
	}

	if userConfigDir, err := os.UserConfigDir(); err == nil {
		for _, ext := range extensions {
			paths = append(paths, filepath.Join(userConfigDir, "litpipe", name+ext))
		}
	}

	return paths
}

// resolveConfigPath searches for a config file by name in standard locations.
func resolveConfigPath(name string) (string, error) {
	paths := SearchPaths(name)
	for _, p := range paths {
		if fileutil.FileExists(p) {
			return p, nil
		}
	}
	return "", fmt.Errorf("%w: tried %s", ErrConfigNotFound, strings.Join(paths, ", "))
}
