package matrix

import "errors"

var (
	// ErrAuthenticationRequired means the device rejected the stored
	// credentials; the user has to re-enter them. Retrying does not help.
	ErrAuthenticationRequired = errors.New("matrix: reauthentication required")

	// ErrUpdateFailed wraps any unclassified cycle failure. The next tick
	// retries the full connect sequence.
	ErrUpdateFailed = errors.New("matrix: update failed")
)
