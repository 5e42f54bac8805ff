// Package process manages the lifetime of external compiler processes.
//
// Commands configured with Attach run in their own process group so that
// cancelling the invoking context terminates the compiler together with any
// helpers it spawned (texi2dvi runs pdflatex, bibtex and makeindex).
package process
