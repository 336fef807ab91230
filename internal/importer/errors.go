package importer

import (
	"errors"
	"fmt"
)

// Causes carried by ImportError. Match them with errors.Is.
var (
	ErrMissingColumn   = errors.New("missing required column")
	ErrMalformedRow    = errors.New("malformed row")
	ErrInvalidDate     = errors.New("invalid date")
	ErrUnsupportedFile = errors.New("unsupported file type")
)

// ImportError reports why an import was aborted. Line is the 1-based line
// (or sheet row) of the source, 0 when the failure is not tied to a row.
type ImportError struct {
	Err    error
	Path   string
	Column string
	Line   int
}

func (e *ImportError) Error() string {
	msg := e.Path
	if e.Line > 0 {
		msg = fmt.Sprintf("%s:%d", msg, e.Line)
	}
	if e.Column != "" {
		msg = fmt.Sprintf("%s: column %q", msg, e.Column)
	}
	return fmt.Sprintf("import %s: %v", msg, e.Err)
}

func (e *ImportError) Unwrap() error {
	return e.Err
}
