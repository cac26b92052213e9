package clustererror

import (
	"errors"
	"fmt"
)

// Kind classifies a cluster interaction failure.
type Kind string

const (
	KindNotFound    Kind = "not_found"
	KindForbidden   Kind = "forbidden"
	KindUnreachable Kind = "unreachable"
	KindInvalid     Kind = "invalid"
)

type Error struct {
	Kind     Kind   `json:"kind"`
	Resource string `json:"resource,omitempty"`
	Message  string `json:"message"`
	Err      error  `json:"-"`
}

func (e *Error) Error() string {
	msg := e.Message
	if e.Resource != "" {
		msg = fmt.Sprintf("%s: %s", e.Resource, e.Message)
	}
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", msg, e.Err)
	}
	return msg
}

func (e *Error) Unwrap() error { return e.Err }

func New(kind Kind, resource, message string) *Error {
	return &Error{Kind: kind, Resource: resource, Message: message}
}

func NotFound(resource string) *Error {
	return New(KindNotFound, resource, "not found")
}

func Forbidden(resource string, err error) *Error {
	return &Error{Kind: KindForbidden, Resource: resource, Message: "forbidden", Err: err}
}

func Unreachable(resource string, err error) *Error {
	return &Error{Kind: KindUnreachable, Resource: resource, Message: "cluster unreachable", Err: err}
}

func Invalid(message string) *Error {
	return New(KindInvalid, "", message)
}

// KindOf extracts the Kind from err, unwrapping as needed. Returns the empty
// Kind for non-cluster errors.
func KindOf(err error) Kind {
	var ce *Error
	if errors.As(err, &ce) {
		return ce.Kind
	}
	return ""
}

// IsKind reports whether err carries the given kind.
func IsKind(err error, kind Kind) bool {
	return KindOf(err) == kind
}
