package main

import (
	"errors"
	"fmt"
	"os"

	litpipe "github.com/alnah/go-litpipe"
	"github.com/alnah/go-litpipe/internal/config"
	"github.com/alnah/go-litpipe/internal/wordpress"
)

// Exit codes for the litpipe CLI.
// Follows Unix conventions: 0=success, 1=general, 2=usage, and custom codes < 126.
const (
	ExitSuccess = 0 // Successful run
	ExitGeneral = 1 // General/unexpected error
	ExitUsage   = 2 // Invalid flags, config, or preconditions
	ExitIO      = 3 // File not found, permission denied
	ExitTool    = 4 // External program or browser did not produce its output
	ExitPublish = 5 // Blog rejected the request or was unreachable
)

// ErrUsage marks flag parsing failures.
var ErrUsage = errors.New("invalid usage")

// usageError wraps a flag parsing error. flag.ErrHelp stays detectable.
func usageError(err error) error {
	return fmt.Errorf("%w: %w", ErrUsage, err)
}

// exitCodeFor returns the appropriate exit code for an error.
// It uses errors.Is to check wrapped errors, so callers must use fmt.Errorf("%w", err).
func exitCodeFor(err error) int {
	if err == nil {
		return ExitSuccess
	}

	// Publishing errors (exit 5)
	if errors.Is(err, litpipe.ErrPublish) ||
		errors.Is(err, wordpress.ErrRequest) ||
		errors.Is(err, wordpress.ErrAuth) ||
		errors.Is(err, wordpress.ErrResponse) ||
		errors.Is(err, wordpress.ErrMissingEndpoint) {
		return ExitPublish
	}

	// External program and browser errors (exit 4)
	if errors.Is(err, litpipe.ErrExternalTool) ||
		errors.Is(err, litpipe.ErrBrowserConnect) ||
		errors.Is(err, litpipe.ErrPageLoad) ||
		errors.Is(err, litpipe.ErrPDFGeneration) {
		return ExitTool
	}

	// I/O errors (exit 3)
	if errors.Is(err, os.ErrNotExist) ||
		errors.Is(err, os.ErrPermission) ||
		errors.Is(err, ErrReadCSS) ||
		errors.Is(err, ErrNoInput) {
		return ExitIO
	}

	// Usage/config/validation errors (exit 2)
	if errors.Is(err, ErrUsage) ||
		errors.Is(err, ErrTooManyInputs) ||
		errors.Is(err, ErrUnknownFormat) ||
		errors.Is(err, config.ErrConfigNotFound) ||
		errors.Is(err, config.ErrConfigParse) ||
		errors.Is(err, config.ErrInvalidField) ||
		errors.Is(err, litpipe.ErrEmptyInput) ||
		errors.Is(err, litpipe.ErrInvalidCompiler) ||
		errors.Is(err, litpipe.ErrVersionMismatch) ||
		errors.Is(err, litpipe.ErrMissingItemID) ||
		errors.Is(err, litpipe.ErrUnexpectedItemID) ||
		errors.Is(err, litpipe.ErrEmptyTitle) ||
		errors.Is(err, litpipe.ErrUnknownAction) ||
		errors.Is(err, litpipe.ErrUnknownEncoding) {
		return ExitUsage
	}

	return ExitGeneral
}
