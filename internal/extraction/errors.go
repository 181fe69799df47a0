package extraction

import (
	"errors"
	"fmt"
)

// Client failure kinds. Test them with errors.Is.
var (
	ErrServiceError       = errors.New("extraction service error")
	ErrServiceUnavailable = errors.New("extraction service unavailable")
	ErrNoJSONFound        = errors.New("no json object in reply")
	ErrMalformedJSON      = errors.New("malformed json in reply")
)

// ClientError is returned by Client for every failed call. Raw keeps the service
// reply when one was received.
type ClientError struct {
	Kind     error
	Attempts int
	Raw      string
	Err      error
}

func (e *ClientError) Error() string {
	msg := e.Kind.Error()
	if e.Attempts > 1 {
		msg = fmt.Sprintf("%s after %d attempts", msg, e.Attempts)
	}
	if e.Err != nil {
		msg += ": " + e.Err.Error()
	}
	return msg
}

func (e *ClientError) Unwrap() []error {
	if e.Err == nil {
		return []error{e.Kind}
	}
	return []error{e.Kind, e.Err}
}

// KindName returns a short label for the client failure kind of err, or an empty string.
func KindName(err error) string {
	switch {
	case errors.Is(err, ErrServiceUnavailable):
		return "service_unavailable"
	case errors.Is(err, ErrServiceError):
		return "service_error"
	case errors.Is(err, ErrNoJSONFound):
		return "no_json_found"
	case errors.Is(err, ErrMalformedJSON):
		return "malformed_json"
	}
	return ""
}
