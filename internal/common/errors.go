package common

import (
	"errors"
	"fmt"
)

var (
	ErrNoFilesProvided      = errors.New("no files provided")
	ErrUnsupportedFormat    = errors.New("unsupported format")
	ErrCorruptData          = errors.New("corrupt or unreadable data")
	ErrEncode               = errors.New("encode failed")
	ErrInvalidPageSelection = errors.New("invalid page selection")
	ErrTooManyFiles         = errors.New("too many files")
	ErrFileTooLarge         = errors.New("file too large")
	ErrBatchTooLarge        = errors.New("batch too large")
	ErrUnknownPlatform      = errors.New("unknown platform")
	ErrInvalidRequest       = errors.New("invalid request")
)

// ProcessingError is a per-file failure raised inside a pipeline step.
type ProcessingError struct {
	Operation string
	FileName  string
	Err       error
}

func (e *ProcessingError) Error() string {
	if e.FileName != "" {
		return fmt.Sprintf("%s failed for file %s: %v", e.Operation, e.FileName, e.Err)
	}
	return fmt.Sprintf("%s failed: %v", e.Operation, e.Err)
}

func (e *ProcessingError) Unwrap() error {
	return e.Err
}

// NewProcessingError creates a new processing error
func NewProcessingError(operation, fileName string, err error) *ProcessingError {
	return &ProcessingError{
		Operation: operation,
		FileName:  fileName,
		Err:       err,
	}
}

// RequestError rejects a whole request before any job starts.
type RequestError struct {
	Field string
	Err   error
}

func (e *RequestError) Error() string {
	if e.Field != "" {
		return fmt.Sprintf("invalid request field %s: %v", e.Field, e.Err)
	}
	return fmt.Sprintf("invalid request: %v", e.Err)
}

func (e *RequestError) Unwrap() error {
	return e.Err
}

// NewRequestError creates a new request error
func NewRequestError(field string, err error) *RequestError {
	return &RequestError{
		Field: field,
		Err:   err,
	}
}

// UserMessage maps an error onto the short text shown next to a failed file.
func UserMessage(err error) string {
	switch {
	case err == nil:
		return ""
	case errors.Is(err, ErrUnsupportedFormat):
		return "Unsupported file type. Please use JPEG, PNG, WebP or PDF."
	case errors.Is(err, ErrCorruptData):
		return "The file appears to be damaged and could not be read."
	case errors.Is(err, ErrEncode):
		return "Processing failed. Please try a different file."
	case errors.Is(err, ErrInvalidPageSelection):
		return "Some selected pages do not exist in this document."
	case errors.Is(err, ErrTooManyFiles):
		return fmt.Sprintf("Too many files. Maximum is %d files.", DefaultMaxFileCount)
	case errors.Is(err, ErrFileTooLarge):
		return "File is too large. Maximum size is 50MB."
	case errors.Is(err, ErrBatchTooLarge):
		return "Total size too large. Maximum is 100MB."
	case errors.Is(err, ErrNoFilesProvided):
		return "No files selected."
	}
	return err.Error()
}
