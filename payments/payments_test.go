package payments_test

import (
	"context"
	"crypto/ed25519"
	"errors"
	"math/big"
	"testing"

	"github.com/jrsteele09/go-actor-client/actor"
	"github.com/jrsteele09/go-actor-client/actor/actorfake"
	"github.com/jrsteele09/go-actor-client/alerts"
	"github.com/jrsteele09/go-actor-client/identities"
	"github.com/jrsteele09/go-actor-client/identities/repofake"
	"github.com/jrsteele09/go-actor-client/payments"
	"github.com/jrsteele09/go-actor-client/result"
	"github.com/jrsteele09/go-actor-client/sessions"
	"github.com/stretchr/testify/require"
)

const validCard = "4111111111111111"

type testFixture struct {
	session *sessions.Manager
	remote  *actorfake.Actor
	alerts  *alerts.Recorder
	service *payments.Service
	payer   *identities.Identity
}

func setupTestFixture(t *testing.T) *testFixture {
	t.Helper()

	payer, err := identities.FromSeed("plug", make([]byte, ed25519.SeedSize))
	require.NoError(t, err)

	f := &testFixture{
		remote: actorfake.New("tours"),
		alerts: &alerts.Recorder{},
		payer:  payer,
	}
	f.session = sessions.NewManager(repofake.NewFakeIdentityRepo(payer))
	gw, err := actor.NewGateway(f.session, f.remote, actor.WithActorID("tours"))
	require.NoError(t, err)
	f.service = payments.NewService(actor.NewClient(gw), f.alerts)
	return f
}

func TestPay_InvalidAmount(t *testing.T) {
	f := setupTestFixture(t)
	require.NoError(t, f.session.SetCurrent(f.payer))

	for _, amount := range []float64{-5, 3.5} {
		outcome, err := f.service.Pay(context.Background(), validCard, amount)
		require.ErrorIs(t, err, result.ErrInvalidAmount)
		require.Equal(t, payments.Errored, outcome)
	}
	require.Empty(t, f.remote.Calls())
	require.Equal(t, []alerts.Alert{alerts.Error(alerts.MsgPaymentError), alerts.Error(alerts.MsgPaymentError)}, f.alerts.Alerts())
}

func TestPay_Approved(t *testing.T) {
	f := setupTestFixture(t)
	require.NoError(t, f.session.SetCurrent(f.payer))

	outcome, err := f.service.Pay(context.Background(), validCard, 100)
	require.NoError(t, err)
	require.Equal(t, payments.Approved, outcome)
	require.Equal(t, []alerts.Alert{alerts.Info(alerts.MsgPaymentSuccessful)}, f.alerts.Alerts())

	processed := f.remote.Payments()
	require.Len(t, processed, 1)
	require.Equal(t, 0, processed[0].Amount.Cmp(big.NewInt(100)))
}

func TestPay_Declined(t *testing.T) {
	f := setupTestFixture(t)
	require.NoError(t, f.session.SetCurrent(f.payer))

	outcome, err := f.service.Pay(context.Background(), "4111111111111112", 100)
	require.NoError(t, err)
	require.Equal(t, payments.Declined, outcome)
	require.Equal(t, []alerts.Alert{alerts.Error(alerts.MsgPaymentFailed)}, f.alerts.Alerts())
}

func TestPay_Unauthenticated(t *testing.T) {
	f := setupTestFixture(t)

	outcome, err := f.service.Pay(context.Background(), validCard, 100)
	require.ErrorIs(t, err, result.ErrUserNotAuthenticated)
	require.Equal(t, payments.Errored, outcome)
	require.Empty(t, f.remote.Calls())
	require.Equal(t, []alerts.Alert{alerts.Error(alerts.MsgUserNotAuthenticated)}, f.alerts.Alerts())
}

func TestPay_TransportFailure(t *testing.T) {
	f := setupTestFixture(t)
	require.NoError(t, f.session.SetCurrent(f.payer))
	f.remote.Override(actor.OpProcessPayment.Name, func(actor.Call) ([]byte, error) {
		return nil, errors.New("gateway timeout")
	})

	outcome, err := f.service.Pay(context.Background(), validCard, 100)
	require.ErrorIs(t, err, result.ErrTransportFailure)
	require.Equal(t, payments.Errored, outcome)
	require.Equal(t, []alerts.Alert{alerts.Error(alerts.MsgPaymentError)}, f.alerts.Alerts())
}

func TestPayNat(t *testing.T) {
	f := setupTestFixture(t)
	require.NoError(t, f.session.SetCurrent(f.payer))

	huge, ok := new(big.Int).SetString("123456789012345678901234567890", 10)
	require.True(t, ok)

	outcome, err := f.service.PayNat(context.Background(), validCard, huge)
	require.NoError(t, err)
	require.Equal(t, payments.Approved, outcome)
	require.Equal(t, huge.String(), f.remote.Payments()[0].Amount.String())

	_, err = f.service.PayNat(context.Background(), validCard, big.NewInt(-1))
	require.ErrorIs(t, err, result.ErrInvalidAmount)
}
