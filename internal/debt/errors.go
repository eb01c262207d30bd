package debt

import (
	"errors"
	"fmt"
)

// Domain errors for debt intake and reconciliation
var (
	ErrUnsupportedMedia = errors.New("unsupported file type: only images and PDF are accepted")
	ErrEmptyFile        = errors.New("file is empty")
)

// ValidationError is a field-level rejection of form input. It is always
// recoverable: the caller corrects the field and resubmits. It never
// reaches the store.
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

// FileTooLargeError rejects a single photo whose source exceeds the
// configured cap. Other photos in the same submission still proceed.
type FileTooLargeError struct {
	Index int   // position in the submitted photo list
	Size  int64 // decoded source size in bytes
	Limit int64
}

func (e *FileTooLargeError) Error() string {
	return fmt.Sprintf("photo %d is %d bytes, exceeds the %d byte limit", e.Index, e.Size, e.Limit)
}
