package main

import (
	"bytes"
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/jrsteele09/go-actor-client/actor"
	"github.com/jrsteele09/go-actor-client/actor/actorfake"
	"github.com/jrsteele09/go-actor-client/actor/httptransport"
	"github.com/jrsteele09/go-actor-client/identities"
	"github.com/jrsteele09/go-actor-client/identities/repofake"
	"github.com/jrsteele09/go-actor-client/result"
	"github.com/jrsteele09/go-actor-client/sessions"
	"github.com/stretchr/testify/require"
)

const testActorID = "tours"

type testFixture struct {
	remote  *actorfake.Actor
	srv     *httptest.Server
	session *sessions.Manager
	client  *actor.Client
	alice   *identities.Identity
}

func setupTestFixture(t *testing.T) *testFixture {
	t.Helper()
	alice, err := identities.FromSeed("plug", bytes.Repeat([]byte{7}, 32))
	require.NoError(t, err)

	remote := actorfake.New(testActorID)
	srv := httptest.NewServer(newServer(remote, testActorID))
	t.Cleanup(srv.Close)

	session := sessions.NewManager(repofake.NewFakeIdentityRepo(alice))
	gw, err := actor.NewGateway(session, httptransport.New(srv.URL, testActorID), actor.WithActorID(testActorID))
	require.NoError(t, err)

	return &testFixture{remote: remote, srv: srv, session: session, client: actor.NewClient(gw), alice: alice}
}

func TestServer_RoundTrip(t *testing.T) {
	f := setupTestFixture(t)
	ctx := context.Background()

	about, err := f.client.GetAboutUsContent(ctx)
	require.NoError(t, err)
	require.Equal(t, actorfake.DefaultAboutUs, about)

	tours, err := f.client.GetToursByCategory(ctx, "nature")
	require.NoError(t, err)
	require.Len(t, tours, 1)

	require.NoError(t, f.session.SetCurrent(f.alice))

	env, err := f.client.CreateProfile(ctx, "alice", "likes walking")
	require.NoError(t, err)
	require.True(t, env.IsOk())

	profile, ok := f.remote.Profile(f.alice.Principal())
	require.True(t, ok)
	require.Equal(t, "alice", profile.Username)

	env, err = f.client.CreateProfile(ctx, "alice", "again")
	require.NoError(t, err)
	failure, failed := env.Failure()
	require.True(t, failed)
	require.Equal(t, result.KindProfileAlreadyExists, failure.Resolve(result.KindProfileAlreadyExists).Kind)

	got, err := f.client.GetProfile(ctx)
	require.NoError(t, err)
	value, ok := got.Value()
	require.True(t, ok)
	require.Equal(t, profile, value)

	paid, err := f.client.ProcessPayment(ctx, "4111111111111111", 120)
	require.NoError(t, err)
	approved, err := paid.Unwrap()
	require.NoError(t, err)
	require.True(t, approved)
}

func TestServer_RejectsBadRequests(t *testing.T) {
	f := setupTestFixture(t)
	post := func(path, auth string) int {
		req, err := http.NewRequest(http.MethodPost, f.srv.URL+path, bytes.NewBufferString(`{"args":[]}`))
		require.NoError(t, err)
		req.Header.Set("Content-Type", "application/json")
		if auth != "" {
			req.Header.Set("Authorization", auth)
		}
		resp, err := http.DefaultClient.Do(req)
		require.NoError(t, err)
		defer resp.Body.Close()
		return resp.StatusCode
	}

	require.Equal(t, http.StatusOK, post(httptransport.CallPath(testActorID, "getTours"), ""))
	require.Equal(t, http.StatusNotFound, post(httptransport.CallPath("other", "getTours"), ""))
	require.Equal(t, http.StatusNotFound, post(httptransport.CallPath(testActorID, "dropTables"), ""))
	require.Equal(t, http.StatusUnauthorized, post(httptransport.CallPath(testActorID, "getTours"), "Bearer garbage"))
	require.Equal(t, http.StatusUnauthorized, post(httptransport.CallPath(testActorID, "getTours"), "Basic abc"))
	require.Equal(t, http.StatusBadRequest, post(httptransport.CallPath(testActorID, "getToursByCategory"), ""))
}

func TestServer_TokenBoundToOperation(t *testing.T) {
	f := setupTestFixture(t)
	token, err := actor.IssueCallToken(f.alice, testActorID, "getTours", "req-1", time.Now(), time.Minute)
	require.NoError(t, err)

	req, err := http.NewRequest(http.MethodPost, f.srv.URL+httptransport.CallPath(testActorID, "getProfile"), bytes.NewBufferString(`{"args":[]}`))
	require.NoError(t, err)
	req.Header.Set("Authorization", "Bearer "+token)
	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	defer resp.Body.Close()
	require.Equal(t, http.StatusUnauthorized, resp.StatusCode)
}

func TestServer_AnonymousPaymentDeclined(t *testing.T) {
	f := setupTestFixture(t)

	env, err := f.client.ProcessPayment(context.Background(), "4111111111111111", 10)
	require.NoError(t, err)
	failure, failed := env.Failure()
	require.True(t, failed)
	require.True(t, failure.Local)
	require.Empty(t, f.remote.Payments())
}
