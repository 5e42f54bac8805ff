package litpipe

import (
	"errors"

	"github.com/alnah/go-litpipe/internal/pipeline"
)

// Sentinel errors for library operations.
var (
	ErrEmptyInput = errors.New("input path cannot be empty")

	// Compiler errors.
	ErrExternalTool    = errors.New("external tool did not produce its output")
	ErrInvalidCompiler = errors.New("compiler cannot handle the rendered document")

	// HTML errors.
	ErrHTMLConversion  = pipeline.ErrHTMLConversion
	ErrVersionMismatch = errors.New("document targets a different markdown dialect")

	// Browser errors (chrome compiler).
	ErrBrowserConnect = errors.New("failed to connect to browser")
	ErrPageLoad       = errors.New("failed to load page")
	ErrPDFGeneration  = errors.New("PDF generation failed")

	// Publish errors.
	ErrMissingItemID    = errors.New("update requires an item ID")
	ErrUnexpectedItemID = errors.New("item ID is only valid for updates")
	ErrEmptyTitle       = errors.New("title cannot be empty")
	ErrUnknownAction    = errors.New("unknown publish action")
	ErrUnknownEncoding  = pipeline.ErrUnknownEncoding
	ErrPublish          = errors.New("publishing failed")
)
