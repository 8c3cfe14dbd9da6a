package jtech

import "errors"

// Sentinel errors returned by the device client. Callers classify failures
// with errors.Is.
var (
	// ErrAuth means the device rejected the supplied credentials.
	ErrAuth = errors.New("jtech: authentication failed")

	// ErrConnection means the device could not be reached.
	ErrConnection = errors.New("jtech: connection failed")

	// ErrTimeout means the device did not answer within the request timeout.
	ErrTimeout = errors.New("jtech: connection timed out")

	// ErrNotSupported means the endpoint is missing on this firmware/model.
	ErrNotSupported = errors.New("jtech: not supported by device")

	ErrInvalidOutput = errors.New("jtech: invalid output number")
	ErrInvalidSource = errors.New("jtech: invalid source number")
)
