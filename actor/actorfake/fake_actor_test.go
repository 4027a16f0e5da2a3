package actorfake_test

import (
	"context"
	"crypto/ed25519"
	"testing"
	"time"

	"github.com/jrsteele09/go-actor-client/actor"
	"github.com/jrsteele09/go-actor-client/actor/actorfake"
	"github.com/jrsteele09/go-actor-client/identities"
	"github.com/stretchr/testify/require"
)

func TestAuthenticate(t *testing.T) {
	seed := make([]byte, ed25519.SeedSize)
	seed[0] = 9
	alice, err := identities.FromSeed("plug", seed)
	require.NoError(t, err)
	remote := actorfake.New("tours")

	token, err := actor.IssueCallToken(alice, "tours", actor.OpGetProfile.Name, "req-1", time.Now(), time.Minute)
	require.NoError(t, err)

	require.Equal(t, alice.Principal(), remote.Authenticate(token, actor.OpGetProfile.Name))
	require.Empty(t, remote.Authenticate(token, actor.OpCreateProfile.Name), "token is bound to its operation")
	require.Empty(t, remote.Authenticate("garbage", actor.OpGetProfile.Name))
	require.Empty(t, remote.Authenticate("", actor.OpGetProfile.Name))

	other, err := actor.IssueCallToken(alice, "other-actor", actor.OpGetProfile.Name, "req-2", time.Now(), time.Minute)
	require.NoError(t, err)
	require.Empty(t, remote.Authenticate(other, actor.OpGetProfile.Name))
}

func TestInvoke_TokenForAnotherOperationIsAnonymous(t *testing.T) {
	seed := make([]byte, ed25519.SeedSize)
	seed[0] = 9
	alice, err := identities.FromSeed("plug", seed)
	require.NoError(t, err)
	remote := actorfake.New("tours")
	remote.PutProfile(alice.Principal(), actor.Profile{Username: "alice", Bio: "bio"})

	token, err := actor.IssueCallToken(alice, "tours", actor.OpGetTours.Name, "req-1", time.Now(), time.Minute)
	require.NoError(t, err)

	raw, err := remote.Invoke(context.Background(), actor.Call{
		RequestID:  "req-1",
		Operation:  actor.OpGetProfile.Name,
		Caller:     alice,
		Credential: token,
	})
	require.NoError(t, err)
	require.JSONEq(t, `{"err":{"userNotAuthenticated":null}}`, string(raw))
}
