package manager

// busyError signals that a generation is already in flight, for 429 mapping.
type busyError struct{}

func (busyError) Error() string { return "a generation is already in flight" }

// IsBusy reports whether err indicates backpressure (return 429).
func IsBusy(err error) bool {
	_, ok := err.(busyError)
	return ok
}

// notReadyError signals that the engine has not finished loading (or failed
// to), for 503 mapping.
type notReadyError struct{ msg string }

func (e notReadyError) Error() string { return e.msg }

// ErrNotReady constructs a notReadyError.
func ErrNotReady(msg string) error { return notReadyError{msg: msg} }

// IsNotReady reports whether err indicates the engine is unavailable.
func IsNotReady(err error) bool {
	_, ok := err.(notReadyError)
	return ok
}
