package elaborate

import (
	"errors"
	"fmt"
)

var (
	ErrSchema          = errors.New("elaborate: schema error")
	ErrValueType       = errors.New("elaborate: value type mismatch")
	ErrValueRange      = errors.New("elaborate: value out of range")
	ErrAddressOverflow = errors.New("elaborate: address overflow")
)

// FieldError reports a schema or value violation on one field. Kind is one of
// ErrSchema, ErrValueType or ErrValueRange.
type FieldError struct {
	Field  string
	Kind   error
	Reason string
}

func (e *FieldError) Error() string {
	if e.Field == "" {
		return fmt.Sprintf("%v: %s", e.Kind, e.Reason)
	}
	return fmt.Sprintf("%v: field %q: %s", e.Kind, e.Field, e.Reason)
}

func (e *FieldError) Unwrap() error {
	return e.Kind
}

// OverflowError reports a field whose end address passes the protocol bound.
type OverflowError struct {
	Field      string
	Address    uint64
	Footprint  uint64
	AddressMax uint64
}

func (e *OverflowError) Error() string {
	return fmt.Sprintf(
		"elaborate: field %q with address %d and footprint %d would overflow the protocol maximum address %d",
		e.Field,
		e.Address,
		e.Footprint,
		e.AddressMax,
	)
}

func (e *OverflowError) Unwrap() error {
	return ErrAddressOverflow
}

// Outcome labels an elaboration result for metrics and API responses.
func Outcome(err error) string {
	switch {
	case err == nil:
		return "ok"
	case errors.Is(err, ErrSchema):
		return "schema"
	case errors.Is(err, ErrValueType):
		return "value_type"
	case errors.Is(err, ErrValueRange):
		return "value_range"
	case errors.Is(err, ErrAddressOverflow):
		return "address_overflow"
	default:
		return "error"
	}
}

func schemaError(format string, args ...any) *FieldError {
	return &FieldError{Kind: ErrSchema, Reason: fmt.Sprintf(format, args...)}
}

func typeError(format string, args ...any) *FieldError {
	return &FieldError{Kind: ErrValueType, Reason: fmt.Sprintf(format, args...)}
}

func rangeError(format string, args ...any) *FieldError {
	return &FieldError{Kind: ErrValueRange, Reason: fmt.Sprintf(format, args...)}
}
