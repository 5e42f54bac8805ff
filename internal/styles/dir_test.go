package styles

import (
	"errors"
	"os"
	"path/filepath"
	"runtime"
	"testing"
)

func writeCSS(t *testing.T, dir, name, content string) {
	t.Helper()
	if err := os.WriteFile(filepath.Join(dir, name), []byte(content), 0o600); err != nil {
		t.Fatalf("setup: %v", err)
	}
}

func TestNewDirLoader(t *testing.T) {
	t.Parallel()

	file := filepath.Join(t.TempDir(), "file.txt")
	if err := os.WriteFile(file, []byte("x"), 0o600); err != nil {
		t.Fatalf("setup: %v", err)
	}

	tests := []struct {
		name    string
		dir     string
		wantErr error
	}{
		{name: "valid directory", dir: t.TempDir()},
		{name: "empty path", dir: "", wantErr: ErrInvalidDir},
		{name: "missing directory", dir: filepath.Join(t.TempDir(), "none"), wantErr: ErrInvalidDir},
		{name: "file instead of directory", dir: file, wantErr: ErrInvalidDir},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			_, err := NewDirLoader(tt.dir)
			if tt.wantErr == nil && err != nil {
				t.Errorf("NewDirLoader() unexpected error: %v", err)
			}
			if tt.wantErr != nil && !errors.Is(err, tt.wantErr) {
				t.Errorf("NewDirLoader() error = %v, want %v", err, tt.wantErr)
			}
		})
	}
}

func TestDirLoader_Load(t *testing.T) {
	t.Parallel()

	t.Run("existing stylesheet", func(t *testing.T) {
		t.Parallel()

		dir := t.TempDir()
		writeCSS(t, dir, "lab.css", "body { color: red; }")
		loader, err := NewDirLoader(dir)
		if err != nil {
			t.Fatalf("NewDirLoader() error = %v", err)
		}

		got, err := loader.Load("lab")
		if err != nil || got != "body { color: red; }" {
			t.Errorf("Load() = %q, %v", got, err)
		}
	})

	t.Run("missing stylesheet", func(t *testing.T) {
		t.Parallel()

		loader, err := NewDirLoader(t.TempDir())
		if err != nil {
			t.Fatalf("NewDirLoader() error = %v", err)
		}
		if _, err := loader.Load("lab"); !errors.Is(err, ErrNotFound) {
			t.Errorf("Load() error = %v, want ErrNotFound", err)
		}
	})

	t.Run("symlink escaping the directory", func(t *testing.T) {
		t.Parallel()
		if runtime.GOOS == "windows" {
			t.Skip("symlinks need privileges on Windows")
		}

		outside := t.TempDir()
		writeCSS(t, outside, "secret.css", "x")
		dir := t.TempDir()
		if err := os.Symlink(filepath.Join(outside, "secret.css"), filepath.Join(dir, "lab.css")); err != nil {
			t.Fatalf("setup: %v", err)
		}
		loader, err := NewDirLoader(dir)
		if err != nil {
			t.Fatalf("NewDirLoader() error = %v", err)
		}

		if _, err := loader.Load("lab"); !errors.Is(err, ErrPathTraversal) {
			t.Errorf("Load() error = %v, want ErrPathTraversal", err)
		}
	})
}
