// Package apperr defines the error taxonomy shared by every operation
// exposed by the interview core. Each failure carries a stable Kind and a
// human-readable message so thin transport layers can map it without
// inspecting concrete types.
package apperr

import (
	"errors"
	"fmt"
)

// Kind classifies a failure.
type Kind string

const (
	KindNotFound               Kind = "not_found"
	KindUnauthorized           Kind = "unauthorized"
	KindForbidden              Kind = "forbidden"
	KindInvalidInput           Kind = "invalid_input"
	KindInvalidTransition      Kind = "invalid_transition"
	KindConcurrentModification Kind = "concurrent_modification"
	KindGenerationFailed       Kind = "generation_failed"
	KindTimeout                Kind = "timeout"
	KindInternal               Kind = "internal"
)

// Error is a classified failure. Data holds optional structured context
// (for example the offending round number).
type Error struct {
	Kind    Kind
	Message string
	Data    map[string]any
	Err     error
}

// New returns an Error of the given kind.
func New(kind Kind, msg string) *Error {
	return &Error{Kind: kind, Message: msg}
}

// Wrap classifies err under kind with a message.
func Wrap(kind Kind, err error, msg string) *Error {
	return &Error{Kind: kind, Message: msg, Err: err}
}

// Wrapf is Wrap with a formatted message.
func Wrapf(kind Kind, err error, format string, args ...any) *Error {
	return &Error{Kind: kind, Message: fmt.Sprintf(format, args...), Err: err}
}

// WithData returns a copy of e carrying an extra key/value pair.
func (e *Error) WithData(key string, value any) *Error {
	cp := *e
	cp.Data = make(map[string]any, len(e.Data)+1)
	for k, v := range e.Data {
		cp.Data[k] = v
	}
	cp.Data[key] = value
	return &cp
}

func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

func (e *Error) Unwrap() error { return e.Err }

// Is reports whether target is an *Error with the same kind and message.
// It lets package-level sentinels survive WithData copies and wrapping.
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	if !ok {
		return false
	}
	return e.Kind == t.Kind && e.Message == t.Message
}

// KindOf returns the kind of the first *Error in err's chain.
// Unclassified errors are KindInternal; nil has no kind.
func KindOf(err error) Kind {
	if err == nil {
		return ""
	}
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return KindInternal
}

// Message returns the human-readable message of the first *Error in err's
// chain, or err.Error() for unclassified errors.
func Message(err error) string {
	if err == nil {
		return ""
	}
	var e *Error
	if errors.As(err, &e) {
		return e.Message
	}
	return err.Error()
}

// DataOf returns the structured data attached to the first *Error in the
// chain, if any.
func DataOf(err error) map[string]any {
	var e *Error
	if errors.As(err, &e) {
		return e.Data
	}
	return nil
}

// IsKind reports whether err is classified as kind.
func IsKind(err error, kind Kind) bool {
	return err != nil && KindOf(err) == kind
}
