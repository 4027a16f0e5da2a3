package payments

import (
	"context"
	"math/big"

	"github.com/jrsteele09/go-actor-client/actor"
	"github.com/jrsteele09/go-actor-client/alerts"
	"github.com/jrsteele09/go-actor-client/result"
	"github.com/rs/zerolog/log"
)

// Outcome is the result of a payment attempt as shown to the user.
type Outcome int

const (
	Approved Outcome = iota + 1
	Declined
	Errored
)

func (o Outcome) String() string {
	switch o {
	case Approved:
		return "approved"
	case Declined:
		return "declined"
	default:
		return "error"
	}
}

// Service charges cards through the remote actor and tells the user how it went.
type Service struct {
	client   *actor.Client
	notifier alerts.Notifier
}

func NewService(client *actor.Client, notifier alerts.Notifier) *Service {
	if notifier == nil {
		notifier = alerts.LogNotifier{}
	}
	return &Service{client: client, notifier: notifier}
}

// Pay charges amount to cardNumber. Invalid amounts and unauthenticated
// sessions fail locally without a remote call.
func (s *Service) Pay(ctx context.Context, cardNumber string, amount float64) (Outcome, error) {
	env, err := s.client.ProcessPayment(ctx, cardNumber, amount)
	return s.settle(env, err)
}

// PayNat charges an amount given as an arbitrary-precision integer.
func (s *Service) PayNat(ctx context.Context, cardNumber string, amount *big.Int) (Outcome, error) {
	env, err := s.client.ProcessPaymentNat(ctx, cardNumber, amount)
	return s.settle(env, err)
}

func (s *Service) settle(env result.Envelope[bool], err error) (Outcome, error) {
	if err != nil {
		log.Err(err).Msg("Payment call failed")
		s.notifier.Notify(alerts.Error(alerts.MsgPaymentError))
		return Errored, err
	}

	outcome := result.Match(env,
		func(approved bool) Outcome {
			if approved {
				s.notifier.Notify(alerts.Info(alerts.MsgPaymentSuccessful))
				return Approved
			}
			s.notifier.Notify(alerts.Error(alerts.MsgPaymentFailed))
			return Declined
		},
		func(failure *result.Error) Outcome {
			err = failure
			if failure.Kind == result.KindUserNotAuthenticated {
				s.notifier.Notify(alerts.Error(alerts.MsgUserNotAuthenticated))
			} else {
				s.notifier.Notify(alerts.Error(alerts.MsgPaymentError))
			}
			return Errored
		},
	)
	return outcome, err
}
