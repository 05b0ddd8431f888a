package fetch

// loadError signals a failed artifact download (network or response level)
// so callers can distinguish it from cancellation and engine failures.
type loadError struct {
	url string
	msg string
}

func (e loadError) Error() string { return "fetch " + e.url + ": " + e.msg }

// IsLoadError reports whether err came from a failed artifact download.
func IsLoadError(err error) bool {
	_, ok := err.(loadError)
	return ok
}
