package gateway

import "fmt"

// Kind classifies a NetworkError.
type Kind int

const (
	// Transport means the request never got an HTTP response.
	Transport Kind = iota
	// Status means the backend answered with a non-2xx status.
	Status
	// Decode means the response body could not be decoded.
	Decode
	// Unavailable means the circuit breaker refused the call.
	Unavailable
	// Canceled means the caller's context ended first.
	Canceled
)

func (k Kind) String() string {
	switch k {
	case Transport:
		return "transport"
	case Status:
		return "status"
	case Decode:
		return "decode"
	case Unavailable:
		return "unavailable"
	case Canceled:
		return "canceled"
	default:
		return "unknown"
	}
}

// Error is the NetworkError: the only error type returned by the Client.
type Error struct {
	Kind       Kind
	Method     string
	Endpoint   string
	StatusCode int    // for Status errors
	Detail     string // human readable cause
	RequestID  string
	Err        error // underlying error, if any
}

func (e *Error) Error() string {
	if e.StatusCode != 0 {
		return fmt.Sprintf("cannot %s %s: %d %s", e.Method, e.Endpoint, e.StatusCode, e.Detail)
	}
	return fmt.Sprintf("cannot %s %s: %s: %s", e.Method, e.Endpoint, e.Kind, e.Detail)
}

func (e *Error) Unwrap() error { return e.Err }
