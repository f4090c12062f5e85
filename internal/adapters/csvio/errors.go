package csvio

import (
	"errors"
	"fmt"
)

var (
	// ErrMissingColumn is returned when a required header is absent.
	ErrMissingColumn = errors.New("missing column")
	// ErrInvalidRow is returned for rows that cannot be interpreted.
	ErrInvalidRow = errors.New("invalid row")
	// ErrInvalidDocument is returned for malformed JSON inputs.
	ErrInvalidDocument = errors.New("invalid document")
)

// RowError locates a problem in a tabular input. Line is 1-based and
// counts the header.
type RowError struct {
	File string
	Line int
	Err  error
}

func (e *RowError) Error() string {
	return fmt.Sprintf("%s line %d: %v", e.File, e.Line, e.Err)
}

func (e *RowError) Unwrap() error { return e.Err }
