package actor

import (
	"context"
	"math/big"

	"github.com/jrsteele09/go-actor-client/identities"
	"github.com/jrsteele09/go-actor-client/result"
)

// Client is the typed surface of the remote actor. By default calls are made as
// the session's current identity; see As.
type Client struct {
	gateway *Gateway
	bound   bool
	caller  *identities.Identity
}

func NewClient(gateway *Gateway) *Client {
	return &Client{gateway: gateway}
}

func (c *Client) Gateway() *Gateway {
	return c.gateway
}

// As returns a client whose calls are made as caller regardless of later
// session changes. A nil caller makes anonymous calls.
func (c *Client) As(caller *identities.Identity) *Client {
	return &Client{gateway: c.gateway, bound: true, caller: caller}
}

func invoke[T any](ctx context.Context, c *Client, op Operation, args ...any) (result.Envelope[T], error) {
	if c.bound {
		return InvokeAs[T](ctx, c.gateway, c.caller, op, args...)
	}
	return Invoke[T](ctx, c.gateway, op, args...)
}

// GetProfile fetches the caller's profile. Known error kinds: userNotAuthenticated.
func (c *Client) GetProfile(ctx context.Context) (result.Envelope[Profile], error) {
	return invoke[Profile](ctx, c, OpGetProfile)
}

// CreateProfile registers a profile for the caller. Known error kinds:
// userNotAuthenticated, profileAlreadyExists.
func (c *Client) CreateProfile(ctx context.Context, username, bio string) (result.Envelope[result.Unit], error) {
	return invoke[result.Unit](ctx, c, OpCreateProfile, username, bio)
}

func (c *Client) GetAboutUsContent(ctx context.Context) (string, error) {
	env, err := invoke[string](ctx, c, OpGetAboutUsContent)
	if err != nil {
		return "", err
	}
	return env.Unwrap()
}

// GetHomePageContent returns the featured tours shown on the home page.
func (c *Client) GetHomePageContent(ctx context.Context) ([]Tour, error) {
	env, err := invoke[[]Tour](ctx, c, OpGetHomePageContent)
	if err != nil {
		return nil, err
	}
	return env.Unwrap()
}

func (c *Client) GetTours(ctx context.Context) ([]Tour, error) {
	env, err := invoke[[]Tour](ctx, c, OpGetTours)
	if err != nil {
		return nil, err
	}
	return env.Unwrap()
}

func (c *Client) GetToursByCategory(ctx context.Context, categoryID string) ([]Tour, error) {
	env, err := invoke[[]Tour](ctx, c, OpGetToursByCategory, categoryID)
	if err != nil {
		return nil, err
	}
	return env.Unwrap()
}

// ProcessPayment charges amount to cardNumber. The amount is converted to an
// arbitrary-precision integer first; an amount that cannot be converted exactly
// fails locally with invalidAmount and no call is made.
func (c *Client) ProcessPayment(ctx context.Context, cardNumber string, amount float64) (result.Envelope[bool], error) {
	nat, err := ToNat(amount)
	if err != nil {
		return result.Err[bool](result.NewError(result.KindInvalidAmount, OpProcessPayment.Name, err)), nil
	}
	return c.ProcessPaymentNat(ctx, cardNumber, nat)
}

// ProcessPaymentNat charges an amount that is already an arbitrary-precision integer.
func (c *Client) ProcessPaymentNat(ctx context.Context, cardNumber string, amount *big.Int) (result.Envelope[bool], error) {
	if amount == nil || amount.Sign() < 0 {
		return result.Err[bool](result.NewError(result.KindInvalidAmount, OpProcessPayment.Name, errAmountNegative)), nil
	}
	return invoke[bool](ctx, c, OpProcessPayment, cardNumber, new(big.Int).Set(amount))
}
