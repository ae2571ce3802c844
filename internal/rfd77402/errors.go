// internal/rfd77402/errors.go
package rfd77402

import "fmt"

// ErrorCode is the stable result code of a measurement.
type ErrorCode uint8

const (
	Valid           ErrorCode = 0x00
	FailedPixels    ErrorCode = 0x01
	FailedSignal    ErrorCode = 0x02
	FailedSaturated ErrorCode = 0x03
	FailedNotNew    ErrorCode = 0x04
	FailedTimeout   ErrorCode = 0x05
)

func (c ErrorCode) String() string {
	switch c {
	case Valid:
		return "valid"
	case FailedPixels:
		return "failed-pixels"
	case FailedSignal:
		return "failed-signal"
	case FailedSaturated:
		return "failed-saturated"
	case FailedNotNew:
		return "failed-not-new"
	case FailedTimeout:
		return "failed-timeout"
	}
	return fmt.Sprintf("code(%d)", uint8(c))
}

// Code returns the numeric code.
func (c ErrorCode) Code() uint16 { return uint16(c) }

// codedError is a sentinel that carries a stable numeric code.
type codedError struct {
	code uint16
	msg  string
}

func (e *codedError) Error() string { return e.msg }
func (e *codedError) Code() uint16  { return e.code }

// Numeric codes for driver failures. Measurement codes occupy 0x00-0x05.
const (
	CodeTransport       uint16 = 0x10
	CodeChipIDMismatch  uint16 = 0x11
	CodeTooManyMessages uint16 = 0x12
	CodeMailboxTimeout  uint16 = 0x13
)

var (
	// ErrChipIDMismatch means the part at the address is absent or not an RFD77402.
	ErrChipIDMismatch error = &codedError{CodeChipIDMismatch, "rfd77402: chip id mismatch"}

	// ErrModeTimeout means the chip never confirmed a requested mode.
	ErrModeTimeout error = &codedError{uint16(FailedTimeout), "rfd77402: mode transition timed out"}

	// ErrTooManyMessages means the pending mailbox could not be drained.
	ErrTooManyMessages error = &codedError{CodeTooManyMessages, "rfd77402: too many pending mailbox messages"}

	// ErrMailboxTimeout means a calibration message never arrived.
	ErrMailboxTimeout error = &codedError{CodeMailboxTimeout, "rfd77402: mailbox timed out"}
)

// TransportError wraps a failed register transaction.
// The core never retries these.
type TransportError struct {
	Op  string // read8, read16, write8, write16
	Reg uint8
	Err error
}

func (e *TransportError) Error() string {
	return fmt.Sprintf("rfd77402: %s reg=%#02x: %v", e.Op, e.Reg, e.Err)
}

func (e *TransportError) Unwrap() error { return e.Err }

// Code implements the numeric code contract used by status reporting.
func (e *TransportError) Code() uint16 { return CodeTransport }
