package document

import (
	"errors"
	"fmt"
)

// Extraction failure kinds. Test them with errors.Is.
var (
	ErrFileTooLarge      = errors.New("file too large")
	ErrUnsupportedFormat = errors.New("unsupported format")
	ErrEmptyExtraction   = errors.New("no text could be extracted")
	ErrIO                = errors.New("read failure")
)

// ExtractionError describes why text could not be extracted from a file.
type ExtractionError struct {
	FileName string
	Kind     error
	Err      error
}

func (e *ExtractionError) Error() string {
	if e.Err == nil {
		return fmt.Sprintf("%s: %v", e.FileName, e.Kind)
	}
	return fmt.Sprintf("%s: %v: %v", e.FileName, e.Kind, e.Err)
}

func (e *ExtractionError) Unwrap() []error {
	if e.Err == nil {
		return []error{e.Kind}
	}
	return []error{e.Kind, e.Err}
}

func newError(fileName string, kind, err error) *ExtractionError {
	return &ExtractionError{FileName: fileName, Kind: kind, Err: err}
}

// KindName returns a short label for the extraction failure kind of err, or an empty string.
func KindName(err error) string {
	switch {
	case errors.Is(err, ErrFileTooLarge):
		return "file_too_large"
	case errors.Is(err, ErrUnsupportedFormat):
		return "unsupported_format"
	case errors.Is(err, ErrEmptyExtraction):
		return "empty_extraction"
	case errors.Is(err, ErrIO):
		return "io_error"
	}
	return ""
}
