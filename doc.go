// Package litpipe drives literate documents (R Noweb, R Markdown, R reST,
// R HTML) through rendering and a format-specific compiler.
//
// # Quick Start
//
// Render an .Rnw file with knitr and typeset the result with xelatex:
//
//	logger := slog.New(slog.NewTextHandler(os.Stderr, nil))
//	invoker := litpipe.NewInvoker(logger)
//	render := litpipe.NewCommandRenderer("Rscript",
//	    []string{"-e", "knitr::knit('{input}', '{output}')"}, invoker)
//
//	pdf := litpipe.NewPDFPipeline(render, invoker)
//	defer pdf.Close()
//
//	out, err := pdf.Convert(ctx, litpipe.NewJob("report.Rnw").WithCompiler("xelatex"))
//	// out == "report.pdf"
//
// # Pipelines
//
// Every pipeline renders first. Render errors are returned as-is. Then:
//
//   - PDFPipeline picks a compiler from the rendered extension: .rst goes to
//     rst2pdf, .md and .html go to headless Chrome, anything else is LaTeX
//     typeset with texi2dvi. Job.Compiler overrides the choice; asking for
//     rst2pdf on anything but .rst fails with ErrInvalidCompiler before a
//     process starts.
//   - HTMLPipeline converts rendered Markdown in-process with goldmark.
//   - PublishPipeline converts to an HTML fragment, rewrites code blocks as
//     WordPress shortcodes, transcodes to UTF-8 and creates or updates a post.
//
// # Artifact Contract
//
// External tools are judged by what they leave on disk, not by their exit
// status. Invoker.Invoke returns the expected path only if that file exists
// once the program has exited; otherwise it fails with ErrExternalTool and
// the tail of the program's stderr.
//
// # Process State
//
// LaTeX engines are selected with the PDFLATEX variable. Texi2PDF passes it
// in the child's environment only. A ProcessTypesetter, for typesetters that
// can only read the process environment and working directory, runs inside
// a guard that restores both on every exit path.
//
// # Watching
//
// Watcher compiles every file once, then polls modification times and
// recompiles what changed, sequentially and in order, until its context is
// cancelled or a compile fails.
package litpipe
