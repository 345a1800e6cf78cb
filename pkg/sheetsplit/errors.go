package sheetsplit

import (
	"errors"
	"fmt"
)

var (
	// ErrInvalidWorkbook indicates the input bytes are not a readable xlsx container.
	ErrInvalidWorkbook = errors.New("invalid xlsx workbook")
	// ErrInputTooLarge indicates the input exceeds the configured size limit.
	ErrInputTooLarge = errors.New("input exceeds size limit")

	ErrNoSheets        = errors.New("no sheets selected")
	ErrNoKeyColumns    = errors.New("no key columns selected")
	ErrSheetNotFound   = errors.New("sheet not found")
	ErrColumnNotFound  = errors.New("key column not found")
	ErrDuplicateSheet  = errors.New("sheet selected more than once")
	ErrDuplicateColumn = errors.New("key column selected more than once")
	ErrUnknownMode     = errors.New("unknown split mode")
	ErrNoOutput        = errors.New("no groups to split")
	ErrNameCollision   = errors.New("output name collision")
)

// LoadError is returned when the source workbook cannot be loaded.
type LoadError struct {
	Size  int64
	Limit int64
	Err   error
}

func (e *LoadError) Error() string {
	if e.Limit > 0 && errors.Is(e.Err, ErrInputTooLarge) {
		return fmt.Sprintf("load workbook: %d bytes exceeds limit of %d bytes", e.Size, e.Limit)
	}
	return fmt.Sprintf("load workbook: %v", e.Err)
}

func (e *LoadError) Unwrap() error {
	return e.Err
}

// SplitError attaches the failing sheet and stage to an assembly error.
type SplitError struct {
	Sheet string
	Stage string // "discover", "filter", "copy", "write"
	Err   error
}

func (e *SplitError) Error() string {
	if e.Sheet == "" {
		return fmt.Sprintf("split %s: %v", e.Stage, e.Err)
	}
	return fmt.Sprintf("split %s in sheet %q: %v", e.Stage, e.Sheet, e.Err)
}

func (e *SplitError) Unwrap() error {
	return e.Err
}

func newSplitError(sheet, stage string, err error) *SplitError {
	return &SplitError{Sheet: sheet, Stage: stage, Err: err}
}

// IsRequestError reports whether err was caused by an invalid request rather
// than by the workbook contents or an internal failure.
func IsRequestError(err error) bool {
	for _, target := range []error{
		ErrNoSheets, ErrNoKeyColumns, ErrSheetNotFound, ErrColumnNotFound,
		ErrDuplicateSheet, ErrDuplicateColumn, ErrUnknownMode, ErrNoOutput, ErrNameCollision,
	} {
		if errors.Is(err, target) {
			return true
		}
	}
	return false
}
