package thunderpush

import (
	"fmt"

	"github.com/lestrrat-go/blackmagic"
)

// ResultKind tells which successful outcome a Result holds.
type ResultKind int

const (
	// KindPayload is a 200 response carrying a JSON object.
	KindPayload ResultKind = iota + 1
	// KindAccepted is a 202 response; there is no payload.
	KindAccepted
)

func (k ResultKind) String() string {
	switch k {
	case KindPayload:
		return "payload"
	case KindAccepted:
		return "accepted"
	default:
		return "invalid"
	}
}

// Result is the successful outcome of a request. Failures are reported as
// *Error values instead.
type Result struct {
	Kind ResultKind

	// Payload holds the top-level members of the response object. It is nil
	// unless Kind is KindPayload.
	Payload map[string]any
}

// Accepted reports whether the server acknowledged the request without a
// payload.
func (r *Result) Accepted() bool {
	return r != nil && r.Kind == KindAccepted
}

// Has reports whether the payload has a top-level member named key.
func (r *Result) Has(key string) bool {
	if r == nil {
		return false
	}
	_, ok := r.Payload[key]
	return ok
}

// Get assigns the top-level member named key to dst, which must be a
// pointer to a type the decoded JSON value is assignable to (float64 for
// numbers, string, bool, []any, map[string]any, or any).
func (r *Result) Get(key string, dst any) error {
	if r == nil || r.Kind != KindPayload {
		return fmt.Errorf("result has no payload")
	}
	v, ok := r.Payload[key]
	if !ok {
		return fmt.Errorf("payload has no member %q", key)
	}
	if err := blackmagic.AssignIfCompatible(dst, v); err != nil {
		return fmt.Errorf("failed to assign payload member %q: %w", key, err)
	}
	return nil
}
