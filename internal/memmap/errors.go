package memmap

import (
	"errors"
	"fmt"
	"strings"
)

var (
	ErrDecode        = errors.New("memmap: decode failed")
	ErrInvalidAccess = errors.New("memmap: invalid access")
	ErrInvalidFormat = errors.New("memmap: invalid hex string or unsigned integer")
	ErrNonASCII      = errors.New("memmap: string contains non-ascii characters")
)

// DecodeError reports a value whose shape does not match the document model.
// Path is the dotted location of the value within the document.
type DecodeError struct {
	Path   string
	Reason string
	Err    error
}

func (e *DecodeError) Error() string {
	if e.Path == "" {
		return fmt.Sprintf("memmap: decode: %s", e.Reason)
	}
	return fmt.Sprintf("memmap: decode %s: %s", e.Path, e.Reason)
}

func (e *DecodeError) Unwrap() []error {
	if e.Err == nil {
		return []error{ErrDecode}
	}
	return []error{ErrDecode, e.Err}
}

func decodeErr(path string, format string, args ...any) *DecodeError {
	return &DecodeError{Path: path, Reason: fmt.Sprintf(format, args...)}
}

func wrapDecodeErr(path string, err error) *DecodeError {
	return &DecodeError{Path: path, Reason: strings.TrimPrefix(err.Error(), "memmap: "), Err: err}
}
