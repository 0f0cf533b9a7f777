package sparql

import (
	"errors"
	"fmt"
)

// ErrorKind classifies a failed query execution.
type ErrorKind int

// Query error kinds.
const (
	// KindTransport is a network or connection failure.
	KindTransport ErrorKind = iota + 1
	// KindHTTPStatus is a response outside the 2xx range.
	KindHTTPStatus
	// KindMalformedResponse is a body that is not usable SPARQL-results-JSON.
	KindMalformedResponse
)

func (k ErrorKind) String() string {
	switch k {
	case KindTransport:
		return "transport"
	case KindHTTPStatus:
		return "http status"
	case KindMalformedResponse:
		return "malformed response"
	default:
		return "unknown"
	}
}

// QueryError is returned by executors for every recoverable query failure.
type QueryError struct {
	Kind       ErrorKind
	StatusCode int    // KindHTTPStatus only
	StatusText string // KindHTTPStatus only
	Detail     string
	Cause      error
}

// NewTransportError wraps a network failure.
func NewTransportError(cause error) *QueryError {
	detail := ""
	if cause != nil {
		detail = cause.Error()
	}
	return &QueryError{Kind: KindTransport, Detail: detail, Cause: cause}
}

// NewHTTPStatusError reports a non-2xx response.
func NewHTTPStatusError(code int, text string) *QueryError {
	return &QueryError{
		Kind:       KindHTTPStatus,
		StatusCode: code,
		StatusText: text,
		Detail:     fmt.Sprintf("HTTP %d %s", code, text),
	}
}

// NewMalformedResponseError reports a response body that could not be interpreted.
func NewMalformedResponseError(detail string, cause error) *QueryError {
	return &QueryError{Kind: KindMalformedResponse, Detail: detail, Cause: cause}
}

func (e *QueryError) Error() string {
	return fmt.Sprintf("%s: %s", e.Kind, e.Detail)
}

func (e *QueryError) Unwrap() error {
	return e.Cause
}

// AsQueryError extracts a *QueryError from err's chain.
func AsQueryError(err error) (*QueryError, bool) {
	var qe *QueryError
	if errors.As(err, &qe) {
		return qe, true
	}
	return nil, false
}
