package result

import (
	"fmt"
)

// Kind names an error. Domain kinds use the remote actor's wire tag as value.
type Kind string

const (
	// Domain errors defined by the remote contract.
	KindUserNotAuthenticated Kind = "userNotAuthenticated"
	KindProfileAlreadyExists Kind = "profileAlreadyExists"

	// Protocol errors.
	KindMalformedEnvelope Kind = "malformedEnvelope"
	KindUnknown           Kind = "unknownErrorKind"

	// Local precondition errors, raised before any round-trip.
	KindIdentityNotRegistered Kind = "identityNotRegistered"
	KindInvalidAmount         Kind = "invalidAmount"
	KindUnknownOperation      Kind = "unknownOperation"

	KindTransportFailure Kind = "transportFailure"
)

type Class int

const (
	ClassDomain Class = iota + 1
	ClassProtocol
	ClassLocal
	ClassTransport
)

func (c Class) String() string {
	switch c {
	case ClassDomain:
		return "domain"
	case ClassProtocol:
		return "protocol"
	case ClassLocal:
		return "local"
	case ClassTransport:
		return "transport"
	default:
		return "unresolved"
	}
}

// Class groups a kind. A kind the codec has not resolved yet has class 0.
func (k Kind) Class() Class {
	switch k {
	case KindUserNotAuthenticated, KindProfileAlreadyExists:
		return ClassDomain
	case KindMalformedEnvelope, KindUnknown:
		return ClassProtocol
	case KindIdentityNotRegistered, KindInvalidAmount, KindUnknownOperation:
		return ClassLocal
	case KindTransportFailure:
		return ClassTransport
	default:
		return 0
	}
}

// Error is the failure side of a remote call. Kind is empty until the calling
// workflow resolves the raw Tag against the error kinds it knows about.
type Error struct {
	Kind  Kind
	Tag   string
	Op    string
	Local bool
	Err   error
}

var (
	ErrUserNotAuthenticated  = &Error{Kind: KindUserNotAuthenticated}
	ErrProfileAlreadyExists  = &Error{Kind: KindProfileAlreadyExists}
	ErrMalformedEnvelope     = &Error{Kind: KindMalformedEnvelope}
	ErrUnknownErrorKind      = &Error{Kind: KindUnknown}
	ErrIdentityNotRegistered = &Error{Kind: KindIdentityNotRegistered}
	ErrInvalidAmount         = &Error{Kind: KindInvalidAmount}
	ErrUnknownOperation      = &Error{Kind: KindUnknownOperation}
	ErrTransportFailure      = &Error{Kind: KindTransportFailure}
)

// NewError builds an error of a known kind for operation op.
func NewError(kind Kind, op string, err error) *Error {
	return &Error{Kind: kind, Tag: string(kind), Op: op, Err: err, Local: kind.Class() == ClassLocal}
}

func (e *Error) Error() string {
	kind := string(e.Kind)
	if kind == "" {
		kind = "unresolved error tag " + e.Tag
	}
	msg := kind
	if e.Op != "" {
		msg = fmt.Sprintf("%s: %s", e.Op, kind)
	}
	if e.Kind == KindUnknown && e.Tag != "" {
		msg += " (" + e.Tag + ")"
	}
	if e.Err != nil {
		msg += ": " + e.Err.Error()
	}
	return msg
}

func (e *Error) Unwrap() error {
	return e.Err
}

// Is matches any *Error of the same kind, so errors.Is(err, ErrInvalidAmount) works
// regardless of operation or cause.
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	if !ok || t.Kind == "" {
		return false
	}
	return e.Kind == t.Kind
}

// Class returns the class of the resolved kind.
func (e *Error) Class() Class {
	return e.Kind.Class()
}

// Resolve matches the raw tag against the closed set of kinds known for the
// operation. Unrecognised tags resolve to KindUnknown.
func (e *Error) Resolve(known ...Kind) *Error {
	if e.Kind != "" && e.Kind.Class() != ClassDomain {
		return e
	}
	resolved := *e
	resolved.Kind = MatchTag(e.Tag, known...)
	return &resolved
}

// MatchTag returns the known kind whose wire tag equals tag, or KindUnknown.
func MatchTag(tag string, known ...Kind) Kind {
	for _, k := range known {
		if string(k) == tag {
			return k
		}
	}
	return KindUnknown
}
