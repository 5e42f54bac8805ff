package litpipe

import (
	"context"
	"fmt"
	"io"
	"net/url"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/go-rod/rod"
	"github.com/go-rod/rod/lib/launcher"
	"github.com/go-rod/rod/lib/proto"
)

// DefaultPageTimeout bounds page loading when ctx has no deadline.
const DefaultPageTimeout = 30 * time.Second

// Page dimensions in inches (US Letter).
const (
	paperWidthInches  = 8.5
	paperHeightInches = 11
	marginInches      = 0.5
)

// PagePrinter prints a local HTML file to PDF bytes.
type PagePrinter interface {
	PrintFile(ctx context.Context, path string) ([]byte, error)
	Close() error
}

var _ PagePrinter = (*ChromePrinter)(nil)

// ChromePrinter implements PagePrinter with headless Chrome through go-rod.
// The browser is started on first use and reused until Close. Rod downloads
// Chromium when no browser is installed; ROD_BROWSER_BIN selects one.
type ChromePrinter struct {
	mu      sync.Mutex
	browser *rod.Browser
	timeout time.Duration
}

// NewChromePrinter creates a ChromePrinter with the given page load timeout.
func NewChromePrinter(timeout time.Duration) *ChromePrinter {
	if timeout <= 0 {
		timeout = DefaultPageTimeout
	}
	return &ChromePrinter{timeout: timeout}
}

func (p *ChromePrinter) ensureBrowser() (*rod.Browser, error) {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.browser != nil {
		return p.browser, nil
	}

	l := launcher.New()
	bin := os.Getenv("ROD_BROWSER_BIN")
	if bin != "" {
		l = l.Bin(bin)
	}
	// Containers and CI runners have no user namespace for the sandbox.
	if os.Getenv("CI") == "true" || bin != "" {
		l = l.NoSandbox(true)
	}

	u, err := l.Launch()
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrBrowserConnect, err)
	}

	browser := rod.New().ControlURL(u)
	if err := browser.Connect(); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrBrowserConnect, err)
	}
	p.browser = browser
	return browser, nil
}

// Close shuts the browser down. Safe to call when it was never started.
func (p *ChromePrinter) Close() error {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.browser == nil {
		return nil
	}
	err := p.browser.Close()
	p.browser = nil
	return err
}

// PrintFile opens path in a new tab and prints it.
func (p *ChromePrinter) PrintFile(ctx context.Context, path string) ([]byte, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	browser, err := p.ensureBrowser()
	if err != nil {
		return nil, err
	}

	abs, err := filepath.Abs(path)
	if err != nil {
		return nil, err
	}
	target := (&url.URL{Scheme: "file", Path: filepath.ToSlash(abs)}).String()

	page, err := browser.Context(ctx).Page(proto.TargetCreateTarget{URL: target})
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrPageLoad, err)
	}
	defer func() { _ = page.Close() }()

	timeout := p.timeout
	if deadline, ok := ctx.Deadline(); ok {
		timeout = time.Until(deadline)
		if timeout <= 0 {
			return nil, context.DeadlineExceeded
		}
	}
	if err := page.Timeout(timeout).WaitLoad(); err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return nil, ctxErr
		}
		return nil, fmt.Errorf("%w: %v", ErrPageLoad, err)
	}

	reader, err := page.PDF(printOptions())
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrPDFGeneration, err)
	}
	data, err := io.ReadAll(reader)
	if err != nil {
		return nil, fmt.Errorf("%w: reading PDF stream: %v", ErrPDFGeneration, err)
	}
	return data, nil
}

// printOptions returns US Letter with half-inch margins and backgrounds on,
// so highlighted code keeps its colors.
func printOptions() *proto.PagePrintToPDF {
	return &proto.PagePrintToPDF{
		PaperWidth:      inches(paperWidthInches),
		PaperHeight:     inches(paperHeightInches),
		MarginTop:       inches(marginInches),
		MarginBottom:    inches(marginInches),
		MarginLeft:      inches(marginInches),
		MarginRight:     inches(marginInches),
		PrintBackground: true,
	}
}

func inches(v float64) *float64 {
	return &v
}
