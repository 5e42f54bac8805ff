package litpipe

import (
	"context"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"sync"

	"github.com/alnah/go-litpipe/internal/wordpress"
)

// ---------------------------------------------------------------------------
// Shared Test Doubles
// ---------------------------------------------------------------------------

// discardLogger keeps test output clean.
func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

// MockRunner records commands and optionally creates files, standing in for
// external programs.
type MockRunner struct {
	mu      sync.Mutex
	Calls   []Command
	Creates []string // files written before returning
	Stdout  string
	Stderr  string
	Err     error
	OnRun   func(Command)
}

func (m *MockRunner) Run(_ context.Context, cmd Command) (string, string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.Calls = append(m.Calls, cmd)
	if m.OnRun != nil {
		m.OnRun(cmd)
	}
	for _, path := range m.Creates {
		_ = os.WriteFile(path, []byte("%PDF-1.4 fake"), 0o600)
	}
	return m.Stdout, m.Stderr, m.Err
}

func (m *MockRunner) callCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.Calls)
}

// newMockInvoker returns an Invoker backed by runner.
func newMockInvoker(runner *MockRunner) *Invoker {
	return &Invoker{Runner: runner, Logger: discardLogger()}
}

// mockRenderer returns a fixed result and counts calls.
type mockRenderer struct {
	Result RenderResult
	Err    error
	Calls  []RenderRequest
}

func (m *mockRenderer) Render(_ context.Context, req RenderRequest) (RenderResult, error) {
	m.Calls = append(m.Calls, req)
	return m.Result, m.Err
}

// mockTypesetter records requests and creates the PDF when Create is set.
type mockTypesetter struct {
	Requests []TypesetRequest
	Create   bool
	Err      error
}

func (m *mockTypesetter) Typeset(_ context.Context, req TypesetRequest) error {
	m.Requests = append(m.Requests, req)
	if m.Create {
		pdf := OutputPath(filepath.Join(req.Dir, req.File), ExtPDF)
		if err := os.WriteFile(pdf, []byte("%PDF-1.4"), 0o600); err != nil {
			return err
		}
	}
	return m.Err
}

// mockPrinter returns fixed PDF bytes.
type mockPrinter struct {
	Data    []byte
	Err     error
	Printed []string
	Pages   []string
	Closed  bool
}

func (m *mockPrinter) PrintFile(_ context.Context, path string) ([]byte, error) {
	m.Printed = append(m.Printed, path)
	if data, err := os.ReadFile(path); err == nil {
		m.Pages = append(m.Pages, string(data))
	}
	return m.Data, m.Err
}

func (m *mockPrinter) Close() error {
	m.Closed = true
	return nil
}

// mockPublisher records posts sent to the blog.
type mockPublisher struct {
	Created []wordpress.Post
	Updated map[int]wordpress.Post
	Pages   []wordpress.Post
	Item    wordpress.Item
	Err     error
}

func (m *mockPublisher) calls() int {
	return len(m.Created) + len(m.Updated) + len(m.Pages)
}

func (m *mockPublisher) CreatePost(_ context.Context, post wordpress.Post) (wordpress.Item, error) {
	m.Created = append(m.Created, post)
	return m.Item, m.Err
}

func (m *mockPublisher) UpdatePost(_ context.Context, id int, post wordpress.Post) (wordpress.Item, error) {
	if m.Updated == nil {
		m.Updated = map[int]wordpress.Post{}
	}
	m.Updated[id] = post
	return m.Item, m.Err
}

func (m *mockPublisher) CreatePage(_ context.Context, page wordpress.Post) (wordpress.Item, error) {
	m.Pages = append(m.Pages, page)
	return m.Item, m.Err
}
