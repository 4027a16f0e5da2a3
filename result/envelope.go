package result

import (
	"bytes"
	"encoding/json"
	"fmt"
)

const (
	okTag  = "ok"
	errTag = "err"
)

// Unit is the payload of operations that return nothing on success.
type Unit struct{}

func (Unit) MarshalJSON() ([]byte, error) {
	return []byte("null"), nil
}

func (*Unit) UnmarshalJSON([]byte) error {
	return nil
}

// Envelope is the tagged ok/err union every remote operation returns. Exactly
// one side is set; the zero Envelope is invalid.
type Envelope[T any] struct {
	ok  *T
	err *Error
}

func Ok[T any](value T) Envelope[T] {
	return Envelope[T]{ok: &value}
}

func Err[T any](err *Error) Envelope[T] {
	if err == nil {
		err = &Error{Kind: KindMalformedEnvelope}
	}
	return Envelope[T]{err: err}
}

// IsOk reports whether the envelope holds a success value.
func (e Envelope[T]) IsOk() bool {
	return e.ok != nil
}

// Valid reports whether exactly one side of the union is set.
func (e Envelope[T]) Valid() bool {
	return (e.ok != nil) != (e.err != nil)
}

// Value returns the success value, if any.
func (e Envelope[T]) Value() (T, bool) {
	if e.ok == nil {
		var zero T
		return zero, false
	}
	return *e.ok, true
}

// Failure returns the error side, if any.
func (e Envelope[T]) Failure() (*Error, bool) {
	return e.err, e.err != nil
}

// Unwrap converts the envelope to Go's value/error pair.
func (e Envelope[T]) Unwrap() (T, error) {
	if e.ok != nil {
		return *e.ok, nil
	}
	var zero T
	if e.err != nil {
		return zero, e.err
	}
	return zero, &Error{Kind: KindMalformedEnvelope}
}

// Match calls exactly one of onOk or onErr. An invalid envelope goes to onErr as
// a malformed envelope error.
func Match[T, R any](e Envelope[T], onOk func(T) R, onErr func(*Error) R) R {
	if e.Valid() && e.ok != nil {
		return onOk(*e.ok)
	}
	if e.Valid() {
		return onErr(e.err)
	}
	return onErr(&Error{Kind: KindMalformedEnvelope})
}

func (e Envelope[T]) MarshalJSON() ([]byte, error) {
	switch {
	case !e.Valid():
		return nil, &Error{Kind: KindMalformedEnvelope}
	case e.ok != nil:
		return json.Marshal(map[string]any{okTag: *e.ok})
	default:
		tag := e.err.Tag
		if tag == "" {
			tag = string(e.err.Kind)
		}
		return json.Marshal(map[string]any{errTag: map[string]any{tag: nil}})
	}
}

// Decode parses a raw envelope for operation op. Exactly one of the "ok" and
// "err" members must be present. Anything else is a malformed envelope, which is
// returned as the error and never as either branch. The error side is left
// unresolved: callers match its tag against the kinds they know.
func Decode[T any](op string, raw []byte) (Envelope[T], error) {
	var members map[string]json.RawMessage
	if err := json.Unmarshal(raw, &members); err != nil || members == nil {
		return Envelope[T]{}, malformed(op, "envelope is not an object")
	}

	okRaw, hasOk := members[okTag]
	errRaw, hasErr := members[errTag]
	switch {
	case hasOk && hasErr:
		return Envelope[T]{}, malformed(op, "both ok and err present")
	case !hasOk && !hasErr:
		return Envelope[T]{}, malformed(op, "neither ok nor err present")
	case hasOk:
		var value T
		if err := json.Unmarshal(okRaw, &value); err != nil {
			return Envelope[T]{}, NewError(KindMalformedEnvelope, op, err)
		}
		return Ok(value), nil
	default:
		tag, err := decodeTag(errRaw)
		if err != nil {
			return Envelope[T]{}, NewError(KindMalformedEnvelope, op, err)
		}
		return Err[T](&Error{Tag: tag, Op: op}), nil
	}
}

// decodeTag accepts a variant object with a single member ({"tag": null}) or a
// bare string tag.
func decodeTag(raw json.RawMessage) (string, error) {
	raw = bytes.TrimSpace(raw)
	if len(raw) > 0 && raw[0] == '"' {
		var tag string
		if err := json.Unmarshal(raw, &tag); err != nil {
			return "", err
		}
		if tag == "" {
			return "", fmt.Errorf("empty error tag")
		}
		return tag, nil
	}

	var variant map[string]json.RawMessage
	if err := json.Unmarshal(raw, &variant); err != nil {
		return "", fmt.Errorf("error variant is not an object: %w", err)
	}
	if len(variant) != 1 {
		return "", fmt.Errorf("error variant must have exactly one tag, got %d", len(variant))
	}
	for tag := range variant {
		return tag, nil
	}
	return "", nil
}

func malformed(op, reason string) *Error {
	return NewError(KindMalformedEnvelope, op, fmt.Errorf("%s", reason))
}
