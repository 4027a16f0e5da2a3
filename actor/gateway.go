package actor

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/jrsteele09/go-actor-client/identities"
	"github.com/jrsteele09/go-actor-client/result"
	"github.com/rs/zerolog/log"
)

const defaultCredentialTTL = 5 * time.Minute

// Session is the view of the session manager the gateway needs.
type Session interface {
	Current() (*identities.Identity, bool)
}

// Gateway binds the session's current identity to remote calls and decodes
// their responses.
type Gateway struct {
	session       Session
	transport     Transport
	actorID       string
	credentialTTL time.Duration
	nowTime       func() time.Time
}

// GatewayOption defines a function type to modify the Gateway instance.
type GatewayOption func(*Gateway)

// WithActorID sets the audience of the call credentials.
func WithActorID(actorID string) GatewayOption {
	return func(g *Gateway) {
		g.actorID = actorID
	}
}

func WithCredentialTTL(ttl time.Duration) GatewayOption {
	return func(g *Gateway) {
		if ttl > 0 {
			g.credentialTTL = ttl
		}
	}
}

// WithNowTime sets the now time function (primarily for testing)
func WithNowTime(nowFunc func() time.Time) GatewayOption {
	return func(g *Gateway) {
		g.nowTime = nowFunc
	}
}

func NewGateway(session Session, transport Transport, options ...GatewayOption) (*Gateway, error) {
	if session == nil {
		return nil, errors.New("[NewGateway] session is required")
	}
	if transport == nil {
		return nil, errors.New("[NewGateway] transport is required")
	}

	g := &Gateway{
		session:       session,
		transport:     transport,
		credentialTTL: defaultCredentialTTL,
		nowTime:       time.Now,
	}
	for _, opt := range options {
		opt(g)
	}
	return g, nil
}

// ActorID returns the audience the gateway issues credentials for.
func (g *Gateway) ActorID() string {
	return g.actorID
}

// Call invokes the named operation and returns the undecoded success payload.
// Unknown operation names fail locally.
func (g *Gateway) Call(ctx context.Context, operationName string, args ...any) (result.Envelope[json.RawMessage], error) {
	op, ok := LookupOperation(operationName)
	if !ok {
		return result.Envelope[json.RawMessage]{}, result.NewError(result.KindUnknownOperation, operationName, nil)
	}
	return Invoke[json.RawMessage](ctx, g, op, args...)
}

// Invoke issues op as the session's current identity. The identity is read
// once, here; switching identities afterwards does not affect the call.
func Invoke[T any](ctx context.Context, g *Gateway, op Operation, args ...any) (result.Envelope[T], error) {
	caller, _ := g.session.Current()
	return InvokeAs[T](ctx, g, caller, op, args...)
}

// InvokeAs issues op as caller, which may be nil for anonymous calls.
//
// An auth-required operation without a caller short-circuits with a local
// userNotAuthenticated envelope and never reaches the transport. Transport
// failures and malformed responses are returned as errors; domain failures are
// returned in the envelope.
func InvokeAs[T any](ctx context.Context, g *Gateway, caller *identities.Identity, op Operation, args ...any) (result.Envelope[T], error) {
	if op.AuthRequired && caller == nil {
		return result.Err[T](&result.Error{
			Kind:  result.KindUserNotAuthenticated,
			Tag:   string(result.KindUserNotAuthenticated),
			Op:    op.Name,
			Local: true,
		}), nil
	}

	call := Call{
		RequestID: uuid.New().String(),
		Operation: op.Name,
		Args:      args,
		Caller:    caller,
	}
	logger := log.With().Str("op", op.Name).Str("request_id", call.RequestID).Logger()

	if caller != nil {
		token, err := IssueCallToken(caller, g.actorID, op.Name, call.RequestID, g.nowTime(), g.credentialTTL)
		if err != nil {
			logger.Err(err).Msg("Failed to issue call credential")
			return result.Envelope[T]{}, result.NewError(result.KindTransportFailure, op.Name, err)
		}
		call.Credential = token
		logger = logger.With().Str("caller", identities.FormatPrincipal(caller.Principal())).Logger()
	}

	raw, err := g.transport.Invoke(ctx, call)
	if err != nil {
		logger.Err(err).Msg("Remote call failed")
		return result.Envelope[T]{}, result.NewError(result.KindTransportFailure, op.Name, err)
	}

	if op.Enveloped {
		env, err := result.Decode[T](op.Name, raw)
		if err != nil {
			logger.Warn().Err(err).Msg("Malformed envelope")
			return result.Envelope[T]{}, err
		}
		return env, nil
	}

	var value T
	if err := json.Unmarshal(raw, &value); err != nil {
		logger.Warn().Err(err).Msg("Malformed response")
		return result.Envelope[T]{}, result.NewError(result.KindMalformedEnvelope, op.Name, err)
	}
	return result.Ok(value), nil
}
