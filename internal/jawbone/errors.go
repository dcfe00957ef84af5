package jawbone

import "fmt"

// AuthError means no usable credential was configured. There is no point
// retrying; the process should exit.
type AuthError struct {
	Reason string
}

func (e *AuthError) Error() string {
	return "jawbone: " + e.Reason
}

// HTTPError is a response with a status outside 200-299.
type HTTPError struct {
	URL        string
	StatusCode int
	Status     string
}

func (e *HTTPError) Error() string {
	return fmt.Sprintf("jawbone: %s returned %s", e.URL, e.Status)
}

// ProtocolError is a 2xx response whose body does not have the expected
// shape, e.g. a listing without an item list.
type ProtocolError struct {
	URL    string
	Reason string
}

func (e *ProtocolError) Error() string {
	return fmt.Sprintf("jawbone: %s: %s", e.URL, e.Reason)
}
