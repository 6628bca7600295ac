package thunderpush

import (
	"fmt"
	"net/http"
)

// ErrorKind classifies an *Error.
type ErrorKind int

const (
	// KindUnknown is a non-2xx status without a more specific kind.
	KindUnknown ErrorKind = iota
	// KindConfiguration is an invalid verb, URL, configuration or argument.
	KindConfiguration
	// KindAuthentication is a 401 response.
	KindAuthentication
	// KindHTTP is a transport failure: DNS, refused connection, timeout,
	// malformed response.
	KindHTTP
	// KindBadRequest is a 400 response.
	KindBadRequest
	// KindNotFound is a 404 response.
	KindNotFound
	// KindProxyAuthentication is a 407 response.
	KindProxyAuthentication
	// KindEncode is a payload that could not be encoded as JSON.
	KindEncode
	// KindDecode is a 200 response whose body is not a JSON object.
	KindDecode
)

func (k ErrorKind) String() string {
	switch k {
	case KindConfiguration:
		return "configuration error"
	case KindAuthentication:
		return "authentication error"
	case KindHTTP:
		return "http error"
	case KindBadRequest:
		return "bad request"
	case KindNotFound:
		return "not found"
	case KindProxyAuthentication:
		return "proxy authentication required"
	case KindEncode:
		return "encode error"
	case KindDecode:
		return "decode error"
	default:
		return "unknown error"
	}
}

// Error is the only error type returned by this package. Match on Kind, or
// use errors.Is with one of the Err* sentinels:
//
//	if errors.Is(err, thunderpush.ErrAuthentication) { ... }
//	if errors.Is(err, thunderpush.ErrThunderPush) { ... } // any *Error
type Error struct {
	Kind ErrorKind

	// StatusCode is the HTTP status for response errors, 0 otherwise.
	StatusCode int

	// Body is the raw response body, trailing newlines removed.
	Body string

	Message string

	// Err is the underlying cause, if any.
	Err error

	root bool
}

var (
	// ErrThunderPush matches every *Error.
	ErrThunderPush = &Error{root: true}

	ErrConfiguration       = &Error{Kind: KindConfiguration}
	ErrAuthentication      = &Error{Kind: KindAuthentication}
	ErrHTTP                = &Error{Kind: KindHTTP}
	ErrBadRequest          = &Error{Kind: KindBadRequest}
	ErrNotFound            = &Error{Kind: KindNotFound}
	ErrProxyAuthentication = &Error{Kind: KindProxyAuthentication}
	ErrUnknown             = &Error{Kind: KindUnknown}
	ErrEncode              = &Error{Kind: KindEncode}
	ErrDecode              = &Error{Kind: KindDecode}
)

func (e *Error) Error() string {
	if e.root {
		return "thunderpush error"
	}
	if e.Message == "" {
		return e.Kind.String()
	}
	return e.Message
}

func (e *Error) Unwrap() error {
	return e.Err
}

// Is reports whether target is an *Error of the same kind, or the
// ErrThunderPush root.
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	if !ok {
		return false
	}
	if t.root {
		return true
	}
	return !e.root && t.Kind == e.Kind
}

func configurationError(format string, args ...any) *Error {
	return &Error{Kind: KindConfiguration, Message: fmt.Sprintf(format, args...)}
}

// httpError wraps a transport failure, recording the cause's message and
// type.
func httpError(err error) *Error {
	return &Error{
		Kind:    KindHTTP,
		Message: fmt.Sprintf("%s (%T)", err.Error(), err),
		Err:     err,
	}
}

// statusError maps a non-success status to its *Error. path is the request
// path, reported for 404s.
func statusError(status int, body, path string) *Error {
	e := &Error{StatusCode: status, Body: body}
	switch status {
	case http.StatusBadRequest:
		e.Kind = KindBadRequest
		e.Message = "Bad request: " + body
	case http.StatusUnauthorized:
		e.Kind = KindAuthentication
		e.Message = body
	case http.StatusNotFound:
		e.Kind = KindNotFound
		e.Message = fmt.Sprintf("404 Not found (%s)", path)
	case http.StatusProxyAuthRequired:
		e.Kind = KindProxyAuthentication
		e.Message = "Proxy Authentication Required"
	default:
		e.Kind = KindUnknown
		e.Message = fmt.Sprintf("Unknown error (status code %d): %s", status, body)
	}
	return e
}
