package actor

import (
	"context"

	"github.com/jrsteele09/go-actor-client/identities"
)

// Call is a single remote invocation handed to a Transport.
type Call struct {
	RequestID  string
	Operation  string
	Args       []any
	Caller     *identities.Identity // identity snapshot taken at issuance; nil when anonymous
	Credential string               // signed call token; empty when anonymous
}

// Transport delivers calls to the remote actor and returns the raw response.
// Timeouts and cancellation are the transport's concern; any delivery failure
// is returned as an error.
type Transport interface {
	Invoke(ctx context.Context, call Call) ([]byte, error)
}

// TransportFunc adapts a function to the Transport interface.
type TransportFunc func(ctx context.Context, call Call) ([]byte, error)

func (f TransportFunc) Invoke(ctx context.Context, call Call) ([]byte, error) {
	return f(ctx, call)
}
