package ingest

import (
	"errors"
	"fmt"
)

var (
	ErrUndecodable       = errors.New("document is not a readable pdf")
	ErrUnsupportedFormat = errors.New("unsupported document format")
	ErrEmptyDocument     = errors.New("document contains no extractable text")
	ErrReadFailed        = errors.New("reading document failed")
	ErrParserInitFailed  = errors.New("creating pdf parser failed")
)

// IngestError carries the operation and document that failed alongside one of the
// package sentinel errors.
type IngestError struct {
	Op      string
	URI     string
	BaseErr error
	Detail  string
}

func (e *IngestError) Error() string {
	if e.Detail != "" {
		return fmt.Sprintf("%s (op: %s, uri: %s): %s", e.BaseErr, e.Op, e.URI, e.Detail)
	}
	return fmt.Sprintf("%s (op: %s, uri: %s)", e.BaseErr, e.Op, e.URI)
}

func (e *IngestError) Unwrap() error {
	return e.BaseErr
}

// Is lets errors.Is match the sentinel behind an IngestError.
func (e *IngestError) Is(target error) bool {
	return errors.Is(e.BaseErr, target)
}

func newError(op, uri string, base error, detail string) error {
	return &IngestError{Op: op, URI: uri, BaseErr: base, Detail: detail}
}
