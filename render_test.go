package litpipe

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"reflect"
	"strings"
	"testing"
)

// ---------------------------------------------------------------------------
// TestRenderedPath - Extension Mapping
// ---------------------------------------------------------------------------

func TestRenderedPath(t *testing.T) {
	t.Parallel()

	tests := []struct {
		input string
		want  string
	}{
		{"report.Rnw", "report.tex"},
		{"report.rnw", "report.tex"},
		{"sweave.Snw", "sweave.tex"},
		{"paper.Rtex", "paper.tex"},
		{"notes.Rmd", "notes.md"},
		{"manual.Rrst", "manual.rst"},
		{"page.Rhtml", "page.html"},
		{"doc.rst", "doc-out.rst"},
		{"dir/plain.tex", filepath.Join("dir", "plain-out.tex")},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.input, func(t *testing.T) {
			t.Parallel()

			if got := RenderedPath(tt.input); filepath.Clean(got) != filepath.Clean(tt.want) {
				t.Errorf("RenderedPath(%q) = %q, want %q", tt.input, got, tt.want)
			}
		})
	}
}

// ---------------------------------------------------------------------------
// TestPassthrough - Intermediate Documents
// ---------------------------------------------------------------------------

func TestPassthrough(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	input := filepath.Join(dir, "doc.rst")
	if err := os.WriteFile(input, []byte("Title\n=====\n"), 0o600); err != nil {
		t.Fatalf("setup: %v", err)
	}

	t.Run("same path", func(t *testing.T) {
		t.Parallel()

		got, err := Passthrough{}.Render(context.Background(), RenderRequest{Input: input})
		if err != nil || got.Path != input {
			t.Errorf("Render() = %+v, %v; want path %q", got, err, input)
		}
	})

	t.Run("copy to output", func(t *testing.T) {
		t.Parallel()

		output := filepath.Join(dir, "copy.rst")
		got, err := Passthrough{}.Render(context.Background(), RenderRequest{Input: input, Output: output})
		if err != nil {
			t.Fatalf("Render() error = %v", err)
		}
		if got.Path != output {
			t.Errorf("Path = %q, want %q", got.Path, output)
		}
		data, err := os.ReadFile(output)
		if err != nil || string(data) != "Title\n=====\n" {
			t.Errorf("copied content = %q, %v", data, err)
		}
	})

	t.Run("inline text", func(t *testing.T) {
		t.Parallel()

		got, err := Passthrough{}.Render(context.Background(), RenderRequest{Text: "# hi"})
		if err != nil || got.Text != "# hi" || got.Path != "" {
			t.Errorf("Render() = %+v, %v; want text only", got, err)
		}
	})

	t.Run("missing input", func(t *testing.T) {
		t.Parallel()

		_, err := Passthrough{}.Render(context.Background(), RenderRequest{
			Input:  filepath.Join(dir, "missing.rst"),
			Output: filepath.Join(dir, "out.rst"),
		})
		if !errors.Is(err, os.ErrNotExist) {
			t.Errorf("Render() error = %v, want not exist", err)
		}
	})
}

// ---------------------------------------------------------------------------
// TestCommandRenderer - External Renderer
// ---------------------------------------------------------------------------

func TestCommandRenderer_Render(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	input := filepath.Join(dir, "report.Rnw")
	want := filepath.Join(dir, "report.tex")

	runner := &MockRunner{Creates: []string{want}}
	r := NewCommandRenderer("Rscript", []string{"-e", "knitr::knit('{input}', '{output}', encoding = '{encoding}')"}, newMockInvoker(runner))

	got, err := r.Render(context.Background(), RenderRequest{
		Input:    input,
		Encoding: "latin1",
		Env:      map[string]string{"SEED": "42", "LANG": "C"},
	})
	if err != nil {
		t.Fatalf("Render() error = %v", err)
	}
	if got.Path != want {
		t.Errorf("Path = %q, want %q", got.Path, want)
	}

	if runner.callCount() != 1 {
		t.Fatalf("runner called %d times, want 1", runner.callCount())
	}
	cmd := runner.Calls[0]
	if cmd.Name != "Rscript" {
		t.Errorf("Name = %q, want Rscript", cmd.Name)
	}
	wantExpr := "knitr::knit('" + filepath.ToSlash(input) + "', '" + filepath.ToSlash(want) + "', encoding = 'latin1')"
	if !reflect.DeepEqual(cmd.Args, []string{"-e", wantExpr}) {
		t.Errorf("Args = %q, want %q", cmd.Args, []string{"-e", wantExpr})
	}
	if !reflect.DeepEqual(cmd.Env, []string{"LANG=C", "SEED=42"}) {
		t.Errorf("Env = %q, want sorted KEY=VALUE", cmd.Env)
	}
}

func TestCommandRenderer_RenderMissingOutput(t *testing.T) {
	t.Parallel()

	input := filepath.Join(t.TempDir(), "report.Rnw")
	r := NewCommandRenderer("Rscript", []string{"{input}"}, newMockInvoker(&MockRunner{Stderr: "Error in knit: object 'x' not found"}))

	_, err := r.Render(context.Background(), RenderRequest{Input: input})
	if !errors.Is(err, ErrExternalTool) {
		t.Fatalf("Render() error = %v, want ErrExternalTool", err)
	}
	if !strings.Contains(err.Error(), "object 'x' not found") {
		t.Errorf("error %q lacks renderer stderr", err)
	}
}

func TestCommandRenderer_RenderWithoutInvoker(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	r := NewCommandRenderer(filepath.Join(dir, "no-such-Rscript"), []string{"{input}"}, nil)

	_, err := r.Render(context.Background(), RenderRequest{Input: filepath.Join(dir, "report.Rmd")})
	if !errors.Is(err, ErrExternalTool) {
		t.Errorf("Render() error = %v, want ErrExternalTool", err)
	}
	_, err = r.Render(context.Background(), RenderRequest{Text: "`r 1+1`"})
	if !errors.Is(err, ErrExternalTool) {
		t.Errorf("Render(text) error = %v, want ErrExternalTool", err)
	}
}

func TestCommandRenderer_RenderText(t *testing.T) {
	t.Parallel()

	runner := &MockRunner{}
	runner.OnRun = func(cmd Command) {
		// Args[0] is the output placeholder; write the rendered text there.
		_ = os.WriteFile(filepath.FromSlash(cmd.Args[0]), []byte("# rendered"), 0o600)
	}
	r := NewCommandRenderer("Rscript", []string{"{output}", "{input}"}, newMockInvoker(runner))

	got, err := r.Render(context.Background(), RenderRequest{Text: "# `r 1+1`"})
	if err != nil {
		t.Fatalf("Render() error = %v", err)
	}
	if got.Text != "# rendered" || got.Path != "" {
		t.Errorf("Render() = %+v, want text only", got)
	}

	input := filepath.FromSlash(runner.Calls[0].Args[1])
	if _, err := os.Stat(input); !errors.Is(err, os.ErrNotExist) {
		t.Errorf("temp input %s not cleaned up", input)
	}
	if _, err := os.Stat(filepath.FromSlash(runner.Calls[0].Args[0])); !errors.Is(err, os.ErrNotExist) {
		t.Error("temp output not cleaned up")
	}
}

func TestRenderFunc(t *testing.T) {
	t.Parallel()

	var f Renderer = RenderFunc(func(_ context.Context, req RenderRequest) (RenderResult, error) {
		return RenderResult{Path: req.Input + ".out"}, nil
	})
	got, err := f.Render(context.Background(), RenderRequest{Input: "x"})
	if err != nil || got.Path != "x.out" {
		t.Errorf("Render() = %+v, %v", got, err)
	}
}
