package session

// generationError wraps an engine failure observed while streaming so the
// HTTP layer can distinguish it from load and bootstrap failures. The text
// accumulated before the failure is preserved in the session result.
type generationError struct{ cause error }

func (e generationError) Error() string { return "generation: " + e.cause.Error() }

func (e generationError) Unwrap() error { return e.cause }

// IsGenerationError reports whether err is an engine failure from an
// in-flight generation.
func IsGenerationError(err error) bool {
	_, ok := err.(generationError)
	return ok
}
