package tam

import (
	"fmt"

	"github.com/cockroachdb/errors"
)

// ErrorCode is the GL error a failed operation reports to the API layer
type ErrorCode uint32

const (
	ErrorNone             ErrorCode = 0
	ErrorInvalidValue     ErrorCode = 0x0501
	ErrorInvalidOperation ErrorCode = 0x0502
	ErrorOutOfMemory      ErrorCode = 0x0505

	// ErrorInternal has no GL counterpart. It reports a broken allocator or device, not a
	// misuse of the API.
	ErrorInternal ErrorCode = 0xffff
)

func (c ErrorCode) String() string {
	switch c {
	case ErrorNone:
		return "GL_NO_ERROR"
	case ErrorInvalidValue:
		return "GL_INVALID_VALUE"
	case ErrorInvalidOperation:
		return "GL_INVALID_OPERATION"
	case ErrorOutOfMemory:
		return "GL_OUT_OF_MEMORY"
	case ErrorInternal:
		return "INTERNAL_ERROR"
	default:
		return fmt.Sprintf("ErrorCode(0x%04x)", uint32(c))
	}
}

var (
	// ErrOutOfMemory is returned when no permitted memory domain could hold an allocation
	ErrOutOfMemory = errors.New("out of memory")
	// ErrInvalidValue is returned when the hardware rejects a texture's format or dimensions,
	// or when supplied data disagrees with the size its format requires
	ErrInvalidValue = errors.New("invalid value")
	// ErrInvalidOperation is returned when an operation is not possible for the texture or
	// pixel format it was given
	ErrInvalidOperation = errors.New("invalid operation")
	// ErrInternal is returned when a heap or the device fails in a way the caller could not
	// have caused, such as a double free or a failed transfer
	ErrInternal = errors.New("internal error")
)

// CodeOf maps an error returned by this package to the GL error it reports. Errors carrying
// none of the package's kinds report ErrorInternal.
func CodeOf(err error) ErrorCode {
	switch {
	case err == nil:
		return ErrorNone
	case errors.Is(err, ErrOutOfMemory):
		return ErrorOutOfMemory
	case errors.Is(err, ErrInvalidValue):
		return ErrorInvalidValue
	case errors.Is(err, ErrInvalidOperation):
		return ErrorInvalidOperation
	default:
		return ErrorInternal
	}
}

// errorSlot holds the first error recorded since it was last consumed
type errorSlot struct {
	err error
}

func (s *errorSlot) record(err error) error {
	if err != nil && s.err == nil {
		s.err = err
	}
	return err
}

func (s *errorSlot) consume() error {
	err := s.err
	s.err = nil
	return err
}

// mark tags a non-nil err so that errors.Is also matches kind
func mark(err, kind error) error {
	if err == nil {
		return nil
	}
	return errors.Mark(err, kind)
}
