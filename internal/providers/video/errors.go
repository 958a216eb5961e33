package video

import (
	"errors"
	"fmt"
)

// Kind classifies generation failures.
type Kind string

const (
	KindInvalidRequest      Kind = "invalid_request"
	KindNotConfigured       Kind = "not_configured"
	KindRemoteRequestFailed Kind = "remote_request_failed"
	KindMalformedResponse   Kind = "malformed_response"
	KindGenerationFailed    Kind = "generation_failed"
	KindGenerationTimedOut  Kind = "generation_timed_out"
	KindLocalWriteFailed    Kind = "local_write_failed"
)

// Error is the single error type returned by this package. Callers branch on
// Kind, either directly or through errors.Is against the Err* sentinels.
type Error struct {
	Kind Kind
	// Op names the step that failed, e.g. "create job".
	Op string
	// StatusCode and Body are set for KindRemoteRequestFailed when the
	// service answered with a non-2xx status.
	StatusCode int
	Body       string
	// Status is the terminal remote status for KindGenerationFailed.
	Status JobStatus
	Err    error
}

var (
	ErrInvalidRequest      = &Error{Kind: KindInvalidRequest}
	ErrNotConfigured       = &Error{Kind: KindNotConfigured}
	ErrRemoteRequestFailed = &Error{Kind: KindRemoteRequestFailed}
	ErrMalformedResponse   = &Error{Kind: KindMalformedResponse}
	ErrGenerationFailed    = &Error{Kind: KindGenerationFailed}
	ErrGenerationTimedOut  = &Error{Kind: KindGenerationTimedOut}
	ErrLocalWriteFailed    = &Error{Kind: KindLocalWriteFailed}
)

func (e *Error) Error() string {
	if e == nil {
		return "<nil>"
	}
	msg := "sora: "
	if e.Op != "" {
		msg += e.Op + ": "
	}
	switch e.Kind {
	case KindRemoteRequestFailed:
		if e.StatusCode != 0 {
			msg += fmt.Sprintf("request failed with status %d", e.StatusCode)
			if e.Body != "" {
				msg += ": " + e.Body
			}
			return msg
		}
		msg += "request failed"
	case KindGenerationFailed:
		msg += fmt.Sprintf("video generation ended with status %q", e.Status)
		return msg
	case KindGenerationTimedOut:
		msg += "video generation timed out"
	case KindNotConfigured:
		msg += "service is not configured"
	case KindInvalidRequest:
		msg += "invalid request"
	case KindMalformedResponse:
		msg += "malformed response"
	case KindLocalWriteFailed:
		msg += "write output"
	default:
		msg += string(e.Kind)
	}
	if e.Err != nil {
		msg += ": " + e.Err.Error()
	}
	return msg
}

func (e *Error) Unwrap() error {
	if e == nil {
		return nil
	}
	return e.Err
}

// Is matches any *Error of the same Kind.
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	if !ok || e == nil || t == nil {
		return false
	}
	return e.Kind == t.Kind
}

// KindOf returns the Kind of the first *Error in err's chain, or "".
func KindOf(err error) Kind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return ""
}

func newError(kind Kind, op string, err error) *Error {
	return &Error{Kind: kind, Op: op, Err: err}
}
