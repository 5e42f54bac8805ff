package main

import (
	"io"
	"time"

	flag "github.com/spf13/pflag"
)

// commonFlags holds flags shared across commands.
type commonFlags struct {
	config  string
	quiet   bool
	verbose bool
}

// renderFlags select and configure the literate renderer.
type renderFlags struct {
	program  string
	args     []string
	output   string
	encoding string
}

// compileFlags configure the PDF compilers.
type compileFlags struct {
	compiler string
	engine   string
	options  []string
	css      string
	timeout  time.Duration
}

// documentFlags configure HTML packaging.
type documentFlags struct {
	target   string
	title    string
	css      string
	fragment bool
	strict   bool
}

// pdfFlags holds all flags for the pdf command.
type pdfFlags struct {
	common  commonFlags
	render  renderFlags
	compile compileFlags
}

// htmlFlags holds all flags for the html command.
type htmlFlags struct {
	common   commonFlags
	render   renderFlags
	document documentFlags
}

// publishFlags holds all flags for the publish command.
type publishFlags struct {
	common     commonFlags
	render     renderFlags
	action     string
	id         int
	title      string
	draft      bool
	language   bool
	generic    bool
	categories []int
	tags       []int
	endpoint   string
	user       string
}

// watchFlags holds all flags for the watch command.
type watchFlags struct {
	common          commonFlags
	render          renderFlags
	compile         compileFlags
	document        documentFlags
	to              string
	interval        time.Duration
	continueOnError bool
}

// addCommonFlags adds common flags to a FlagSet.
func addCommonFlags(fs *flag.FlagSet, f *commonFlags) {
	fs.StringVarP(&f.config, "config", "c", "", "config file name or path")
	fs.BoolVarP(&f.quiet, "quiet", "q", false, "only show errors")
	fs.BoolVarP(&f.verbose, "verbose", "v", false, "log every external command")
}

// addRenderFlags adds renderer flags to a FlagSet.
func addRenderFlags(fs *flag.FlagSet, f *renderFlags) {
	fs.StringVar(&f.program, "render", "", "renderer program, e.g. Rscript (\"\" = sources are already rendered)")
	fs.StringArrayVar(&f.args, "render-arg", nil, "renderer argument; {input}, {output}, {encoding} are substituted (repeatable)")
	fs.StringVarP(&f.output, "rendered", "r", "", "rendered document path (single input only)")
	fs.StringVarP(&f.encoding, "encoding", "e", "", "source encoding, e.g. latin1")
}

// addCompileFlags adds PDF compiler flags to a FlagSet.
func addCompileFlags(fs *flag.FlagSet, f *compileFlags) {
	fs.StringVar(&f.compiler, "compiler", "", "rst2pdf, chrome or a LaTeX engine (\"\" = from extension)")
	fs.StringVar(&f.engine, "engine", "", "default LaTeX engine: pdflatex, xelatex, lualatex")
	fs.StringArrayVar(&f.options, "opt", nil, "extra compiler argument, e.g. --opt=-v (repeatable)")
	fs.StringVar(&f.css, "pdf-css", "", "stylesheet name or path for the chrome compiler")
	fs.DurationVar(&f.timeout, "timeout", 0, "chrome page load timeout (e.g. 30s)")
}

// addDocumentFlags adds HTML packaging flags to a FlagSet.
func addDocumentFlags(fs *flag.FlagSet, f *documentFlags) {
	fs.StringVarP(&f.target, "output", "o", "", "HTML output path (single input only)")
	fs.StringVar(&f.title, "title", "", "document title (\"\" = front matter title)")
	fs.StringVar(&f.css, "css", "", "stylesheet name or path")
	fs.BoolVar(&f.fragment, "fragment", false, "emit the body only")
	fs.BoolVar(&f.strict, "strict", false, "fail on documents written for another markdown dialect")
}

// newFlagSet creates a FlagSet whose errors and usage go to w.
func newFlagSet(name string, w io.Writer, usage func(io.Writer)) *flag.FlagSet {
	fs := flag.NewFlagSet(name, flag.ContinueOnError)
	fs.SetOutput(w)
	fs.Usage = func() { usage(w) }
	return fs
}

// parsePDFFlags parses pdf command flags and returns positional args.
func parsePDFFlags(args []string, w io.Writer) (*pdfFlags, []string, error) {
	f := &pdfFlags{}
	fs := newFlagSet("pdf", w, printPDFUsage)
	addCommonFlags(fs, &f.common)
	addRenderFlags(fs, &f.render)
	addCompileFlags(fs, &f.compile)

	if err := fs.Parse(args); err != nil {
		return nil, nil, err
	}
	return f, fs.Args(), nil
}

// parseHTMLFlags parses html command flags and returns positional args.
func parseHTMLFlags(args []string, w io.Writer) (*htmlFlags, []string, error) {
	f := &htmlFlags{}
	fs := newFlagSet("html", w, printHTMLUsage)
	addCommonFlags(fs, &f.common)
	addRenderFlags(fs, &f.render)
	addDocumentFlags(fs, &f.document)

	if err := fs.Parse(args); err != nil {
		return nil, nil, err
	}
	return f, fs.Args(), nil
}

// parsePublishFlags parses publish command flags and returns positional args.
func parsePublishFlags(args []string, w io.Writer) (*publishFlags, []string, error) {
	f := &publishFlags{}
	fs := newFlagSet("publish", w, printPublishUsage)
	addCommonFlags(fs, &f.common)
	addRenderFlags(fs, &f.render)

	fs.StringVarP(&f.action, "action", "a", "", "create, update or page (\"\" = create)")
	fs.IntVar(&f.id, "id", 0, "item to update (update only)")
	fs.StringVarP(&f.title, "title", "t", "", "post title (required)")
	fs.BoolVar(&f.draft, "draft", false, "save as draft instead of publishing")
	fs.BoolVar(&f.language, "shortcode-language", false, "rewrite tagged code blocks to [sourcecode language=\"x\"]")
	fs.BoolVar(&f.generic, "shortcode-generic", false, "rewrite remaining code blocks to [sourcecode]")
	fs.IntSliceVar(&f.categories, "category", nil, "category ID (repeatable)")
	fs.IntSliceVar(&f.tags, "tag", nil, "tag ID (repeatable)")
	fs.StringVar(&f.endpoint, "endpoint", "", "WordPress REST base URL")
	fs.StringVar(&f.user, "user", "", "WordPress user")

	if err := fs.Parse(args); err != nil {
		return nil, nil, err
	}
	return f, fs.Args(), nil
}

// parseWatchFlags parses watch command flags and returns positional args.
func parseWatchFlags(args []string, w io.Writer) (*watchFlags, []string, error) {
	f := &watchFlags{}
	fs := newFlagSet("watch", w, printWatchUsage)
	addCommonFlags(fs, &f.common)
	addRenderFlags(fs, &f.render)
	addCompileFlags(fs, &f.compile)
	addDocumentFlags(fs, &f.document)

	fs.StringVar(&f.to, "to", "pdf", "output format: pdf or html")
	fs.DurationVar(&f.interval, "interval", 0, "pause between polls (default 1s)")
	fs.BoolVar(&f.continueOnError, "keep-going", false, "log compile failures and keep watching")

	if err := fs.Parse(args); err != nil {
		return nil, nil, err
	}
	return f, fs.Args(), nil
}
