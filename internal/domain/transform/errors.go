package transform

import (
	"context"
	"errors"

	"fileforge/internal/common"
)

// ErrorKind classifies a failed or cancelled result.
type ErrorKind string

const (
	KindUnsupportedFormat    ErrorKind = "unsupported_format"
	KindCorruptData          ErrorKind = "corrupt_data"
	KindEncodeError          ErrorKind = "encode_error"
	KindInvalidPageSelection ErrorKind = "invalid_page_selection"
	KindCancelled            ErrorKind = "cancelled"
	KindInvalidRequest       ErrorKind = "invalid_request"
)

// KindOf maps an error chain onto an ErrorKind.
func KindOf(err error) ErrorKind {
	switch {
	case err == nil:
		return ""
	case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		return KindCancelled
	case errors.Is(err, common.ErrUnsupportedFormat):
		return KindUnsupportedFormat
	case errors.Is(err, common.ErrCorruptData):
		return KindCorruptData
	case errors.Is(err, common.ErrInvalidPageSelection):
		return KindInvalidPageSelection
	case errors.Is(err, common.ErrEncode):
		return KindEncodeError
	}
	var reqErr *common.RequestError
	if errors.As(err, &reqErr) {
		return KindInvalidRequest
	}
	return KindEncodeError
}
