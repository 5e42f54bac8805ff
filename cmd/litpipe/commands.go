package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"

	"go.uber.org/automaxprocs/maxprocs"

	litpipe "github.com/alnah/go-litpipe"
	"github.com/alnah/go-litpipe/internal/config"
	"github.com/alnah/go-litpipe/internal/hints"
	"github.com/alnah/go-litpipe/internal/pipeline"
	"github.com/alnah/go-litpipe/internal/styles"
	"github.com/alnah/go-litpipe/internal/wordpress"
)

// Sentinel errors for CLI operations.
var (
	ErrNoInput       = errors.New("no input specified")
	ErrTooManyInputs = errors.New("an explicit output path needs a single input")
	ErrReadCSS       = errors.New("failed to read CSS file")
	ErrUnknownFormat = errors.New("unknown output format")
)

// session is the configuration and logger shared by one command run.
type session struct {
	cfg    *config.Config
	logger *slog.Logger
	quiet  bool
	env    *Environment
}

// newLogger returns a text logger whose level follows --verbose and --quiet.
func newLogger(w io.Writer, f commonFlags) *slog.Logger {
	level := slog.LevelInfo
	switch {
	case f.quiet:
		level = slog.LevelError
	case f.verbose:
		level = slog.LevelDebug
	}
	return slog.New(slog.NewTextHandler(w, &slog.HandlerOptions{Level: level}))
}

// newSession loads configuration in priority order: config file, then
// LITPIPE_* variables (after .env), then the command's own flags.
func newSession(f commonFlags, env *Environment) (*session, error) {
	logger := newLogger(env.Stderr, f)

	// Error ignored: maxprocs.Set only fails on an invalid GOMAXPROCS value,
	// in which case the runtime default applies.
	_, _ = maxprocs.Set(maxprocs.Logger(func(format string, args ...any) {
		logger.Debug(fmt.Sprintf(format, args...))
	}))

	if err := loadDotEnv(env.DotEnv); err != nil {
		return nil, err
	}
	envCfg := loadEnvConfig()
	warnUnknownEnvVars(logger)

	path := f.config
	if path == "" {
		path = envCfg.ConfigPath
	}
	cfg := config.DefaultConfig()
	if path != "" {
		loaded, err := config.LoadConfig(path)
		if err != nil {
			if errors.Is(err, config.ErrConfigNotFound) {
				return nil, fmt.Errorf("loading config: %w%s", err, hints.ForConfigNotFound(config.SearchPaths(path)))
			}
			return nil, fmt.Errorf("loading config: %w", err)
		}
		cfg = loaded
	}
	applyEnvConfig(envCfg, cfg)

	return &session{cfg: cfg, logger: logger, quiet: f.quiet, env: env}, nil
}

// report prints a user-facing result line unless --quiet.
func (s *session) report(format string, args ...any) {
	if !s.quiet {
		fmt.Fprintf(s.env.Stdout, format+"\n", args...)
	}
}

// mergeRenderFlags applies renderer flags over cfg.
func mergeRenderFlags(f renderFlags, cfg *config.Config) {
	setString(&cfg.Render.Program, f.program)
	if len(f.args) > 0 {
		cfg.Render.Args = f.args
	}
	setString(&cfg.Render.Encoding, f.encoding)
}

// mergeCompileFlags applies compiler flags over cfg.
func mergeCompileFlags(f compileFlags, cfg *config.Config) {
	setString(&cfg.PDF.Engine, f.engine)
	if len(f.options) > 0 {
		cfg.PDF.Options = f.options
	}
	if f.timeout > 0 {
		cfg.PDF.Timeout = f.timeout
	}
}

// mergeDocumentFlags applies HTML packaging flags over cfg.
func mergeDocumentFlags(f documentFlags, cfg *config.Config) {
	setString(&cfg.HTML.CSS, f.css)
	if f.fragment {
		cfg.HTML.Fragment = true
	}
	if f.strict {
		cfg.HTML.Strict = true
	}
}

// invoker returns the invoker running external programs for s.
func (s *session) invoker() *litpipe.Invoker {
	inv := litpipe.NewInvoker(s.logger)
	if s.env.Runner != nil {
		inv.Runner = s.env.Runner
	}
	return inv
}

// renderer builds the configured renderer. Without a program, sources are
// taken as already rendered. The configured encoding fills requests that
// carry none.
func (s *session) renderer(inv *litpipe.Invoker) litpipe.Renderer {
	rc := s.cfg.Render
	var r litpipe.Renderer = litpipe.Passthrough{}
	if rc.Program != "" {
		r = litpipe.NewCommandRenderer(rc.Program, rc.Args, inv)
	}
	return litpipe.RenderFunc(func(ctx context.Context, req litpipe.RenderRequest) (litpipe.RenderResult, error) {
		if req.Encoding == "" {
			req.Encoding = rc.Encoding
		}
		return r.Render(ctx, req)
	})
}

// pdfPipeline builds a PDF pipeline from the session configuration. cssRef
// styles pages printed by the chrome compiler.
func (s *session) pdfPipeline(cssRef string) (*litpipe.PDFPipeline, error) {
	css, err := s.stylesheet(cssRef)
	if err != nil {
		return nil, err
	}

	inv := s.invoker()
	p := litpipe.NewPDFPipeline(s.renderer(inv), inv)
	p.Typesetter = litpipe.NewTexi2PDF(s.cfg.PDF.Texi2DVI, inv)
	p.RST2PDF = s.cfg.PDF.RST2PDF
	p.Engine = s.cfg.PDF.Engine
	p.CSS = css
	p.Logger = s.logger
	if s.env.Printer != nil {
		p.Printer = s.env.Printer
	} else {
		p.Printer = litpipe.NewChromePrinter(s.cfg.PDF.Timeout)
	}
	return p, nil
}

// htmlPipeline builds an HTML pipeline from the session configuration.
func (s *session) htmlPipeline() *litpipe.HTMLPipeline {
	p := litpipe.NewHTMLPipeline(s.renderer(s.invoker()), s.logger)
	p.Strict = s.cfg.HTML.Strict
	return p
}

// programs lists the external programs a failing job may have needed.
func (s *session) programs() []string {
	return []string{s.cfg.Render.Program, s.cfg.PDF.RST2PDF, s.cfg.PDF.Texi2DVI, s.cfg.PDF.Engine}
}

// withHint appends an actionable hint to err when one applies.
func (s *session) withHint(err error) error {
	switch {
	case errors.Is(err, litpipe.ErrExternalTool):
		return fmt.Errorf("%w%s", err, toolHint(s.programs()))
	case errors.Is(err, litpipe.ErrBrowserConnect):
		return fmt.Errorf("%w%s", err, hints.ForBrowserConnect())
	case errors.Is(err, wordpress.ErrAuth), errors.Is(err, wordpress.ErrMissingEndpoint):
		return fmt.Errorf("%w%s", err, hints.ForPublishCredentials())
	}
	return err
}

// toolHint reports the first configured program missing from PATH, or
// suggests --verbose when they are all installed.
func toolHint(programs []string) string {
	first := ""
	for _, p := range programs {
		if p == "" {
			continue
		}
		if first == "" {
			first = p
		}
		if _, err := hints.LookPath(p); err != nil {
			return hints.ForExternalTool(p)
		}
	}
	return hints.ForExternalTool(first)
}

// stylesheet returns the stylesheet ref designates: a file path, or a name
// looked up in the configured style directory and then the built-ins.
// An empty ref yields "".
func (s *session) stylesheet(ref string) (string, error) {
	if ref == "" {
		return "", nil
	}
	r, err := styles.NewResolver(s.cfg.HTML.StyleDir)
	if err != nil {
		return "", fmt.Errorf("%w: %w", ErrReadCSS, err)
	}
	css, err := r.Resolve(ref)
	if err != nil {
		return "", fmt.Errorf("%w: %w", ErrReadCSS, err)
	}
	return css, nil
}

// ---------------------------------------------------------------------------
// pdf
// ---------------------------------------------------------------------------

// runPDF renders and compiles each input to PDF, in order. The first failure
// stops the run.
func runPDF(ctx context.Context, args []string, env *Environment) error {
	f, files, err := parsePDFFlags(args, env.Stderr)
	if err != nil {
		return usageError(err)
	}
	if len(files) == 0 {
		return ErrNoInput
	}
	if f.render.output != "" && len(files) > 1 {
		return ErrTooManyInputs
	}

	s, err := newSession(f.common, env)
	if err != nil {
		return err
	}
	mergeRenderFlags(f.render, s.cfg)
	mergeCompileFlags(f.compile, s.cfg)

	p, err := s.pdfPipeline(f.compile.css)
	if err != nil {
		return err
	}
	defer func() { _ = p.Close() }()

	for _, file := range files {
		job := litpipe.NewJob(file).
			WithCompiler(f.compile.compiler).
			WithOutput(f.render.output).
			WithOptions(s.cfg.PDF.Options...)
		out, err := p.Convert(ctx, job)
		if err != nil {
			return s.withHint(fmt.Errorf("%s: %w", file, err))
		}
		s.report("Created %s", out)
	}
	return nil
}

// ---------------------------------------------------------------------------
// html
// ---------------------------------------------------------------------------

// runHTML renders and converts each input to HTML, in order.
func runHTML(ctx context.Context, args []string, env *Environment) error {
	f, files, err := parseHTMLFlags(args, env.Stderr)
	if err != nil {
		return usageError(err)
	}
	if len(files) == 0 {
		return ErrNoInput
	}
	if (f.render.output != "" || f.document.target != "") && len(files) > 1 {
		return ErrTooManyInputs
	}

	s, err := newSession(f.common, env)
	if err != nil {
		return err
	}
	mergeRenderFlags(f.render, s.cfg)
	mergeDocumentFlags(f.document, s.cfg)

	css, err := s.stylesheet(s.cfg.HTML.CSS)
	if err != nil {
		return err
	}
	p := s.htmlPipeline()

	for _, file := range files {
		res, err := p.Convert(ctx, s.htmlJob(file, f.render.output, f.document, css))
		if err != nil {
			return s.withHint(fmt.Errorf("%s: %w", file, err))
		}
		s.report("Created %s", res.Path)
	}
	return nil
}

// htmlJob describes the HTML conversion of file.
func (s *session) htmlJob(file, rendered string, f documentFlags, css string) litpipe.HTMLJob {
	return litpipe.HTMLJob{
		Job:      litpipe.NewJob(file).WithOutput(rendered),
		Target:   f.target,
		Title:    f.title,
		CSS:      css,
		Fragment: s.cfg.HTML.Fragment,
		Encoding: s.cfg.Render.Encoding,
	}
}

// ---------------------------------------------------------------------------
// publish
// ---------------------------------------------------------------------------

// runPublish renders one input and posts it to the configured blog.
func runPublish(ctx context.Context, args []string, env *Environment) error {
	f, files, err := parsePublishFlags(args, env.Stderr)
	if err != nil {
		return usageError(err)
	}
	if len(files) != 1 {
		return fmt.Errorf("%w: publish takes exactly one input", ErrNoInput)
	}

	action, err := litpipe.ParsePublishAction(f.action)
	if err != nil {
		return err
	}

	s, err := newSession(f.common, env)
	if err != nil {
		return err
	}
	mergeRenderFlags(f.render, s.cfg)
	setString(&s.cfg.Publish.Endpoint, f.endpoint)
	setString(&s.cfg.Publish.User, f.user)
	if f.draft {
		s.cfg.Publish.Publish = false
	}
	if f.language {
		s.cfg.Publish.Shortcode.Language = true
	}
	if f.generic {
		s.cfg.Publish.Shortcode.Generic = true
	}
	if len(f.categories) > 0 {
		s.cfg.Publish.Categories = f.categories
	}
	if len(f.tags) > 0 {
		s.cfg.Publish.Tags = f.tags
	}

	pc := s.cfg.Publish
	job := litpipe.PublishJob{
		Job:        litpipe.NewJob(files[0]).WithOutput(f.render.output),
		Action:     action,
		ItemID:     f.id,
		Title:      f.title,
		Publish:    pc.Publish,
		Encoding:   pc.Encoding,
		Shortcode:  pipeline.ShortcodeOptions{Language: pc.Shortcode.Language, Generic: pc.Shortcode.Generic},
		Categories: pc.Categories,
		Tags:       pc.Tags,
	}
	// Preconditions are checked before a client is even built.
	if err := job.Validate(); err != nil {
		return err
	}

	client, err := s.publisher()
	if err != nil {
		return s.withHint(err)
	}

	inv := s.invoker()
	p := litpipe.NewPublishPipeline(s.renderer(inv), client, s.logger)
	res, err := p.Publish(ctx, job)
	if err != nil {
		return s.withHint(fmt.Errorf("%s: %w", files[0], err))
	}
	s.report("Published %s (id %d, %s)", res.Link, res.ID, res.Status)
	return nil
}

// publisher returns the injected publisher or a WordPress client.
func (s *session) publisher() (litpipe.Publisher, error) {
	if s.env.Publisher != nil {
		return s.env.Publisher, nil
	}
	pc := s.cfg.Publish
	return wordpress.NewClient(wordpress.Config{
		Endpoint: pc.Endpoint,
		User:     pc.User,
		Password: pc.Password,
		Retries:  pc.Retries,
		Logger:   s.logger,
	})
}

// ---------------------------------------------------------------------------
// watch
// ---------------------------------------------------------------------------

// runWatch compiles the inputs, then recompiles each one whose modification
// time advances, until interrupted.
func runWatch(ctx context.Context, args []string, env *Environment) error {
	f, files, err := parseWatchFlags(args, env.Stderr)
	if err != nil {
		return usageError(err)
	}
	if len(files) == 0 {
		return ErrNoInput
	}
	if (f.render.output != "" || f.document.target != "") && len(files) > 1 {
		return ErrTooManyInputs
	}

	s, err := newSession(f.common, env)
	if err != nil {
		return err
	}
	mergeRenderFlags(f.render, s.cfg)
	mergeCompileFlags(f.compile, s.cfg)
	mergeDocumentFlags(f.document, s.cfg)
	if f.interval > 0 {
		s.cfg.Watch.Interval = f.interval
	}
	if f.continueOnError {
		s.cfg.Watch.ContinueOnError = true
	}

	compile, closeFn, err := s.watchCompiler(f)
	if err != nil {
		return err
	}
	defer closeFn()

	w := litpipe.NewWatcher(files, func(ctx context.Context, path string) (string, error) {
		out, err := compile(ctx, path)
		if err != nil {
			return "", s.withHint(err)
		}
		s.report("Created %s", out)
		return out, nil
	}, s.logger)
	w.Interval = s.cfg.Watch.Interval
	w.ContinueOnError = s.cfg.Watch.ContinueOnError

	err = w.Run(ctx)
	if errors.Is(err, context.Canceled) {
		return nil
	}
	return err
}

// watchCompiler returns the compile function for the --to format and a
// function releasing its resources.
func (s *session) watchCompiler(f *watchFlags) (litpipe.CompileFunc, func(), error) {
	switch f.to {
	case "pdf", "":
		p, err := s.pdfPipeline(f.compile.css)
		if err != nil {
			return nil, nil, err
		}
		compile := func(ctx context.Context, path string) (string, error) {
			job := litpipe.NewJob(path).
				WithCompiler(f.compile.compiler).
				WithOutput(f.render.output).
				WithOptions(s.cfg.PDF.Options...)
			return p.Convert(ctx, job)
		}
		return compile, func() { _ = p.Close() }, nil

	case "html":
		css, err := s.stylesheet(s.cfg.HTML.CSS)
		if err != nil {
			return nil, nil, err
		}
		p := s.htmlPipeline()
		compile := func(ctx context.Context, path string) (string, error) {
			res, err := p.Convert(ctx, s.htmlJob(path, f.render.output, f.document, css))
			return res.Path, err
		}
		return compile, func() {}, nil
	}
	return nil, nil, fmt.Errorf("%w: %q (want pdf or html)", ErrUnknownFormat, f.to)
}
