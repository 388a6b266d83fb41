package upstream

import (
	"errors"
	"fmt"
)

// TransportError is returned when an upstream call does not produce a success response.
// StatusCode is zero when the request never got a response (timeout, refused connection).
type TransportError struct {
	Source     string
	StatusCode int
	Err        error
}

func (e *TransportError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s API error: %v", e.Source, e.Err)
	}
	return fmt.Sprintf("%s API error: %d", e.Source, e.StatusCode)
}

func (e *TransportError) Unwrap() error {
	return e.Err
}

// StatusCode extracts the upstream HTTP status from err, if it wraps a TransportError.
func StatusCode(err error) (int, bool) {
	var te *TransportError
	if errors.As(err, &te) {
		return te.StatusCode, true
	}
	return 0, false
}

// ParseError is returned when an upstream answered but its body could not be parsed.
type ParseError struct {
	Source string
	Err    error
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("failed to parse %s response: %v", e.Source, e.Err)
}

func (e *ParseError) Unwrap() error {
	return e.Err
}
