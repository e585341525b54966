// Package apperr holds the error kinds shared by every domain package.
// Domain sentinels wrap one of these so the HTTP layer can map them with
// errors.Is without knowing the domain.
package apperr

import "errors"

var (
	ErrNotFound       = errors.New("not found")
	ErrInvalidRequest = errors.New("invalid request")
	ErrForbidden      = errors.New("forbidden")
	ErrConflict       = errors.New("conflict")
)

// Message returns the user facing part of err: the text after the kind
// prefix when err was built as fmt.Errorf("%w: detail", kind).
func Message(err error) string {
	if err == nil {
		return ""
	}
	msg := err.Error()
	for _, kind := range []error{ErrNotFound, ErrInvalidRequest, ErrForbidden, ErrConflict} {
		prefix := kind.Error() + ": "
		if len(msg) > len(prefix) && msg[:len(prefix)] == prefix {
			return msg[len(prefix):]
		}
	}
	return msg
}
