package contract

import (
	"errors"
	"fmt"
	"strings"
)

// ErrMalformedJSON indicates the request body is not valid JSON.
var ErrMalformedJSON = errors.New("invalid JSON input")

// ValidationError lists every problem found in a request. Processing stops
// when one is returned; no partial output is produced.
type ValidationError struct {
	Problems []string
}

func (e *ValidationError) Error() string {
	if len(e.Problems) == 1 {
		return "invalid request: " + e.Problems[0]
	}
	return "invalid request: " + strings.Join(e.Problems, "; ")
}

func (e *ValidationError) addf(format string, args ...any) {
	e.Problems = append(e.Problems, fmt.Sprintf(format, args...))
}

// orNil returns e only when it carries problems.
func (e *ValidationError) orNil() error {
	if e == nil || len(e.Problems) == 0 {
		return nil
	}
	return e
}

// IsValidation reports whether err is a request validation failure.
func IsValidation(err error) bool {
	var ve *ValidationError
	return errors.As(err, &ve) || errors.Is(err, ErrMalformedJSON)
}
