package animate

import (
	"errors"
	"net/http"
	"strings"
)

// Sentinel failure classes. Every error returned by Analyze matches exactly one
// of them with errors.Is.
var (
	ErrCredential    = errors.New("credential missing or rejected")
	ErrEmptyResponse = errors.New("no text content received from model")
	ErrService       = errors.New("model service error")
	ErrUnknown       = errors.New("unknown error while calling model")
)

// Error carries the class, the engine name and the original failure message.
type Error struct {
	Engine  string
	Message string
	Err     error // one of the sentinels above
	Cause   error
}

func (e *Error) Error() string {
	var b strings.Builder
	if e.Engine != "" {
		b.WriteString(e.Engine)
		b.WriteString(": ")
	}
	b.WriteString(e.Err.Error())
	if e.Message != "" {
		b.WriteString(" (")
		b.WriteString(e.Message)
		b.WriteString(")")
	}
	return b.String()
}

func (e *Error) Unwrap() []error {
	if e.Cause == nil {
		return []error{e.Err}
	}
	return []error{e.Err, e.Cause}
}

// Kind returns a short machine-readable class name.
func Kind(err error) string {
	switch {
	case errors.Is(err, ErrCredential):
		return "credential"
	case errors.Is(err, ErrEmptyResponse):
		return "empty_response"
	case errors.Is(err, ErrService):
		return "service"
	default:
		return "unknown"
	}
}

// StatusCode maps a failure class onto an HTTP status.
func StatusCode(err error) int {
	switch {
	case errors.Is(err, ErrCredential):
		return http.StatusUnauthorized
	case errors.Is(err, ErrEmptyResponse), errors.Is(err, ErrService):
		return http.StatusBadGateway
	default:
		return http.StatusInternalServerError
	}
}

// credentialMarkers are matched case-insensitively against the engine failure
// message, in order; the first hit reclassifies the failure as ErrCredential.
var credentialMarkers = []struct {
	substr string
	class  error
}{
	{"api key not valid", ErrCredential},
	{"permission denied", ErrCredential},
	{"authentication", ErrCredential},
	{"incorrect api key", ErrCredential},
	{"unauthenticated", ErrCredential},
}

// classify turns a raw engine failure into an *Error.
func classify(engine string, err error) *Error {
	msg := err.Error()
	if strings.TrimSpace(msg) == "" {
		return &Error{Engine: engine, Err: ErrUnknown, Cause: err}
	}
	lower := strings.ToLower(msg)
	for _, m := range credentialMarkers {
		if strings.Contains(lower, m.substr) {
			return &Error{Engine: engine, Message: msg, Err: m.class, Cause: err}
		}
	}
	return &Error{Engine: engine, Message: msg, Err: ErrService, Cause: err}
}

func credentialError(engine, reason string) *Error {
	return &Error{Engine: engine, Message: reason, Err: ErrCredential}
}

func emptyResponseError(engine string) *Error {
	return &Error{Engine: engine, Err: ErrEmptyResponse}
}
