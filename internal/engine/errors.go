package engine

// runtimeInitError signals a failed one-time runtime bootstrap.
type runtimeInitError struct{ msg string }

func (e runtimeInitError) Error() string { return "runtime init: " + e.msg }

// ErrRuntimeInit constructs a runtimeInitError.
func ErrRuntimeInit(msg string) error { return runtimeInitError{msg: msg} }

// IsRuntimeInit reports whether err indicates a failed runtime bootstrap.
func IsRuntimeInit(err error) bool {
	_, ok := err.(runtimeInitError)
	return ok
}

// configError signals malformed construction inputs (weights, tokenizer,
// generation config).
type configError struct{ msg string }

func (e configError) Error() string { return "engine config: " + e.msg }

// ErrConfig constructs a configError.
func ErrConfig(msg string) error { return configError{msg: msg} }

// IsConfig reports whether err indicates malformed engine inputs.
func IsConfig(err error) bool {
	_, ok := err.(configError)
	return ok
}
