package pkg

import (
	"errors"
	"fmt"
)

// Transport and session errors.
var (
	// ErrTransferLength indicates a control transfer moved a different number
	// of bytes than the protocol requires.
	ErrTransferLength = errors.New("unexpected transfer length")

	// ErrTimeout indicates a transfer did not complete within its timeout.
	ErrTimeout = errors.New("transfer timeout")

	// ErrStall indicates the device stalled the control pipe.
	ErrStall = errors.New("endpoint stalled")

	// ErrNoDevice indicates the device is no longer present.
	ErrNoDevice = errors.New("device not present")

	// ErrNoMemory indicates a transfer buffer could not be prepared.
	ErrNoMemory = errors.New("insufficient memory")

	// ErrNotSupported indicates a request the transport cannot carry.
	ErrNotSupported = errors.New("not supported")

	// ErrInvalidParameter indicates an invalid argument.
	ErrInvalidParameter = errors.New("invalid parameter")

	// ErrAlreadyAttached indicates a transport name is already bound to a device.
	ErrAlreadyAttached = errors.New("device already attached")

	// ErrNotAttached indicates the device is not known to the host.
	ErrNotAttached = errors.New("device not attached")

	// ErrClosed indicates use of a closed transport or monitor.
	ErrClosed = errors.New("closed")
)

// TransferError reports a control transfer whose byte count differs from the
// expected length. It matches [ErrTransferLength] with errors.Is.
type TransferError struct {
	Expected int // Bytes the protocol requires
	Actual   int // Bytes the transport reported
}

// Error implements error.
func (e *TransferError) Error() string {
	return fmt.Sprintf("%s: got %d bytes, want %d", ErrTransferLength, e.Actual, e.Expected)
}

// Is reports whether target is ErrTransferLength.
func (e *TransferError) Is(target error) bool {
	return target == ErrTransferLength
}

// CheckLength returns a *TransferError if actual differs from expected.
func CheckLength(expected, actual int) error {
	if expected == actual {
		return nil
	}
	return &TransferError{Expected: expected, Actual: actual}
}
