package config

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()

	if cfg.PDF.Engine != DefaultEngine {
		t.Errorf("PDF.Engine = %q, want %q", cfg.PDF.Engine, DefaultEngine)
	}
	if cfg.PDF.RST2PDF != DefaultRST2PDF {
		t.Errorf("PDF.RST2PDF = %q, want %q", cfg.PDF.RST2PDF, DefaultRST2PDF)
	}
	if cfg.PDF.Texi2DVI != DefaultTexi2DVI {
		t.Errorf("PDF.Texi2DVI = %q, want %q", cfg.PDF.Texi2DVI, DefaultTexi2DVI)
	}
	if cfg.Watch.Interval != DefaultWatchInterval {
		t.Errorf("Watch.Interval = %v, want %v", cfg.Watch.Interval, DefaultWatchInterval)
	}
	if cfg.Watch.ContinueOnError {
		t.Error("Watch.ContinueOnError = true, want false")
	}
	if !cfg.Publish.Publish {
		t.Error("Publish.Publish = false, want true")
	}
	if cfg.Publish.Shortcode.Language || cfg.Publish.Shortcode.Generic {
		t.Error("shortcodes enabled by default, want disabled")
	}
	if cfg.Render.Program != "" {
		t.Errorf("Render.Program = %q, want empty", cfg.Render.Program)
	}
	if err := cfg.Validate(); err != nil {
		t.Errorf("DefaultConfig().Validate() = %v, want nil", err)
	}
}

func TestConfig_Validate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(c *Config)
		wantErr bool
		field   string
	}{
		{name: "defaults", mutate: func(*Config) {}},
		{name: "custom engine", mutate: func(c *Config) { c.PDF.Engine = "xelatex" }},
		{name: "engine with newline", mutate: func(c *Config) { c.PDF.Engine = "pdflatex\nrm" }, wantErr: true, field: "pdf.engine"},
		{name: "render program with null", mutate: func(c *Config) { c.Render.Program = "R\x00" }, wantErr: true, field: "render.program"},
		{name: "negative interval", mutate: func(c *Config) { c.Watch.Interval = -time.Second }, wantErr: true, field: "watch.interval"},
		{name: "negative timeout", mutate: func(c *Config) { c.PDF.Timeout = -time.Second }, wantErr: true, field: "pdf.timeout"},
		{name: "retries above max", mutate: func(c *Config) { c.Publish.Retries = MaxRetries + 1 }, wantErr: true, field: "publish.retries"},
		{name: "retries negative", mutate: func(c *Config) { c.Publish.Retries = -1 }, wantErr: true, field: "publish.retries"},
		{name: "https endpoint", mutate: func(c *Config) { c.Publish.Endpoint = "https://blog.example.com/wp-json/wp/v2" }},
		{name: "ftp endpoint", mutate: func(c *Config) { c.Publish.Endpoint = "ftp://blog.example.com" }, wantErr: true, field: "publish.endpoint"},
		{name: "endpoint without host", mutate: func(c *Config) { c.Publish.Endpoint = "https://" }, wantErr: true, field: "publish.endpoint"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := DefaultConfig()
			tt.mutate(cfg)

			err := cfg.Validate()
			if tt.wantErr {
				if !errors.Is(err, ErrInvalidField) {
					t.Fatalf("Validate() error = %v, want ErrInvalidField", err)
				}
				if !strings.Contains(err.Error(), tt.field) {
					t.Errorf("error %q does not name field %q", err, tt.field)
				}
				return
			}
			if err != nil {
				t.Errorf("Validate() unexpected error = %v", err)
			}
		})
	}
}

func TestLoadConfig(t *testing.T) {
	t.Run("empty name returns ErrEmptyConfigName", func(t *testing.T) {
		_, err := LoadConfig("")
		if !errors.Is(err, ErrEmptyConfigName) {
			t.Errorf("error = %v, want ErrEmptyConfigName", err)
		}
	})

	t.Run("valid file path loads config over defaults", func(t *testing.T) {
		dir := t.TempDir()
		configPath := filepath.Join(dir, "test.yaml")
		content := `render:
  program: Rscript
  args: ["-e", "knitr::knit('{input}', '{output}')"]
pdf:
  engine: xelatex
watch:
  interval: 2s
  continueOnError: true
publish:
  endpoint: https://blog.example.com/wp-json/wp/v2
  publish: false
  shortcode:
    language: true
`
		if err := os.WriteFile(configPath, []byte(content), 0o600); err != nil {
			t.Fatalf("setup: %v", err)
		}

		cfg, err := LoadConfig(configPath)
		if err != nil {
			t.Fatalf("LoadConfig() error = %v", err)
		}
		if cfg.Render.Program != "Rscript" || len(cfg.Render.Args) != 2 {
			t.Errorf("Render = %+v, want Rscript with 2 args", cfg.Render)
		}
		if cfg.PDF.Engine != "xelatex" {
			t.Errorf("PDF.Engine = %q, want xelatex", cfg.PDF.Engine)
		}
		if cfg.PDF.RST2PDF != DefaultRST2PDF {
			t.Errorf("PDF.RST2PDF = %q, want default %q", cfg.PDF.RST2PDF, DefaultRST2PDF)
		}
		if cfg.Watch.Interval != 2*time.Second {
			t.Errorf("Watch.Interval = %v, want 2s", cfg.Watch.Interval)
		}
		if !cfg.Watch.ContinueOnError {
			t.Error("Watch.ContinueOnError = false, want true")
		}
		if cfg.Publish.Publish {
			t.Error("Publish.Publish = true, want false")
		}
		if !cfg.Publish.Shortcode.Language || cfg.Publish.Shortcode.Generic {
			t.Errorf("Shortcode = %+v, want language only", cfg.Publish.Shortcode)
		}
	})

	t.Run("nonexistent file path returns ErrConfigNotFound", func(t *testing.T) {
		_, err := LoadConfig("/nonexistent/path/config.yaml")
		if !errors.Is(err, ErrConfigNotFound) {
			t.Errorf("error = %v, want ErrConfigNotFound", err)
		}
	})

	t.Run("invalid YAML returns ErrConfigParse", func(t *testing.T) {
		configPath := filepath.Join(t.TempDir(), "invalid.yaml")
		if err := os.WriteFile(configPath, []byte("pdf: [unclosed"), 0o600); err != nil {
			t.Fatalf("setup: %v", err)
		}

		_, err := LoadConfig(configPath)
		if !errors.Is(err, ErrConfigParse) {
			t.Errorf("error = %v, want ErrConfigParse", err)
		}
	})

	t.Run("unknown field returns ErrConfigParse in strict mode", func(t *testing.T) {
		configPath := filepath.Join(t.TempDir(), "unknown.yaml")
		if err := os.WriteFile(configPath, []byte("pdf:\n  compiler: xelatex\n"), 0o600); err != nil {
			t.Fatalf("setup: %v", err)
		}

		_, err := LoadConfig(configPath)
		if !errors.Is(err, ErrConfigParse) {
			t.Errorf("error = %v, want ErrConfigParse", err)
		}
	})

	t.Run("invalid value returns ErrInvalidField", func(t *testing.T) {
		configPath := filepath.Join(t.TempDir(), "bad.yaml")
		if err := os.WriteFile(configPath, []byte("publish:\n  retries: 99\n"), 0o600); err != nil {
			t.Fatalf("setup: %v", err)
		}

		_, err := LoadConfig(configPath)
		if !errors.Is(err, ErrInvalidField) {
			t.Errorf("error = %v, want ErrInvalidField", err)
		}
	})

	t.Run("config name resolved in current directory", func(t *testing.T) {
		dir := t.TempDir()
		chdir(t, dir)
		if err := os.WriteFile(filepath.Join(dir, "blog.yml"), []byte("html:\n  fragment: true\n"), 0o600); err != nil {
			t.Fatalf("setup: %v", err)
		}

		cfg, err := LoadConfig("blog")
		if err != nil {
			t.Fatalf("LoadConfig() error = %v", err)
		}
		if !cfg.HTML.Fragment {
			t.Error("HTML.Fragment = false, want true")
		}
	})

	t.Run("missing config name lists searched paths", func(t *testing.T) {
		chdir(t, t.TempDir())

		_, err := LoadConfig("does-not-exist")
		if !errors.Is(err, ErrConfigNotFound) {
			t.Fatalf("error = %v, want ErrConfigNotFound", err)
		}
		if !strings.Contains(err.Error(), "does-not-exist.yaml") {
			t.Errorf("error %q does not list searched paths", err)
		}
	})
}

func TestSearchPaths(t *testing.T) {
	paths := SearchPaths("litpipe")
	if len(paths) < 2 {
		t.Fatalf("SearchPaths() = %v, want at least local paths", paths)
	}
	if paths[0] != "litpipe.yaml" || paths[1] != "litpipe.yml" {
		t.Errorf("local paths = %v, want litpipe.yaml then litpipe.yml", paths[:2])
	}
}
