package result_test

import (
	"encoding/json"
	"errors"
	"testing"

	"github.com/jrsteele09/go-actor-client/result"
	"github.com/stretchr/testify/require"
)

type profile struct {
	Username string `json:"username"`
	Bio      string `json:"bio"`
}

func TestDecode_Ok(t *testing.T) {
	env, err := result.Decode[profile]("getProfile", []byte(`{"ok":{"username":"alice","bio":"bio"}}`))
	require.NoError(t, err)
	require.True(t, env.IsOk())

	p, ok := env.Value()
	require.True(t, ok)
	require.Equal(t, profile{Username: "alice", Bio: "bio"}, p)

	_, failed := env.Failure()
	require.False(t, failed)
}

func TestDecode_UnitOk(t *testing.T) {
	env, err := result.Decode[result.Unit]("createProfile", []byte(`{"ok":null}`))
	require.NoError(t, err)
	require.True(t, env.IsOk())
}

func TestDecode_Err(t *testing.T) {
	tests := []struct {
		name string
		raw  string
		tag  string
	}{
		{"variant object", `{"err":{"profileAlreadyExists":null}}`, "profileAlreadyExists"},
		{"bare string", `{"err":"userNotAuthenticated"}`, "userNotAuthenticated"},
		{"unknown but well formed", `{"err":{"quotaExceeded":null}}`, "quotaExceeded"},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			env, err := result.Decode[result.Unit]("createProfile", []byte(tc.raw))
			require.NoError(t, err)
			require.False(t, env.IsOk())

			failure, ok := env.Failure()
			require.True(t, ok)
			require.Equal(t, tc.tag, failure.Tag)
			require.Equal(t, "createProfile", failure.Op)
			require.Empty(t, failure.Kind, "the codec does not interpret error kinds")
		})
	}
}

func TestDecode_Malformed(t *testing.T) {
	tests := []struct {
		name string
		raw  string
	}{
		{"neither tag", `{}`},
		{"other tag only", `{"value":1}`},
		{"both tags", `{"ok":true,"err":{"userNotAuthenticated":null}}`},
		{"null", `null`},
		{"not json", `<html>`},
		{"array", `[1,2]`},
		{"err variant with two tags", `{"err":{"a":null,"b":null}}`},
		{"err variant empty", `{"err":{}}`},
		{"ok payload of wrong type", `{"ok":"not a profile"}`},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			env, err := result.Decode[profile]("getProfile", []byte(tc.raw))
			require.Error(t, err)
			require.ErrorIs(t, err, result.ErrMalformedEnvelope)
			require.False(t, env.Valid(), "a malformed envelope never resolves to either branch")
			require.False(t, env.IsOk())

			var rErr *result.Error
			require.True(t, errors.As(err, &rErr))
			require.Equal(t, result.ClassProtocol, rErr.Class())
		})
	}
}

func TestResolve(t *testing.T) {
	env, err := result.Decode[result.Unit]("createProfile", []byte(`{"err":{"profileAlreadyExists":null}}`))
	require.NoError(t, err)
	failure, _ := env.Failure()

	known := failure.Resolve(result.KindUserNotAuthenticated, result.KindProfileAlreadyExists)
	require.Equal(t, result.KindProfileAlreadyExists, known.Kind)
	require.ErrorIs(t, known, result.ErrProfileAlreadyExists)
	require.Equal(t, result.ClassDomain, known.Class())

	unknown := failure.Resolve(result.KindUserNotAuthenticated)
	require.Equal(t, result.KindUnknown, unknown.Kind)
	require.ErrorIs(t, unknown, result.ErrUnknownErrorKind)
	require.Equal(t, result.ClassProtocol, unknown.Class())
	require.Contains(t, unknown.Error(), "profileAlreadyExists")

	transport := result.NewError(result.KindTransportFailure, "getProfile", errors.New("connection refused"))
	require.Same(t, transport, transport.Resolve(result.KindUserNotAuthenticated))
}

func TestMatch(t *testing.T) {
	describe := func(env result.Envelope[int]) string {
		return result.Match(env,
			func(v int) string { return "ok" },
			func(e *result.Error) string { return "err:" + string(e.Kind) },
		)
	}

	require.Equal(t, "ok", describe(result.Ok(3)))
	require.Equal(t, "err:invalidAmount", describe(result.Err[int](result.NewError(result.KindInvalidAmount, "processPayment", nil))))
	require.Equal(t, "err:malformedEnvelope", describe(result.Envelope[int]{}))
}

func TestEnvelope_MarshalJSON(t *testing.T) {
	raw, err := json.Marshal(result.Ok(result.Unit{}))
	require.NoError(t, err)
	require.JSONEq(t, `{"ok":null}`, string(raw))

	raw, err = json.Marshal(result.Err[result.Unit](result.NewError(result.KindProfileAlreadyExists, "", nil)))
	require.NoError(t, err)
	require.JSONEq(t, `{"err":{"profileAlreadyExists":null}}`, string(raw))

	_, err = json.Marshal(result.Envelope[int]{})
	require.Error(t, err)

	env, err := result.Decode[profile]("getProfile", mustMarshal(t, result.Ok(profile{Username: "bob"})))
	require.NoError(t, err)
	p, _ := env.Value()
	require.Equal(t, "bob", p.Username)
}

func TestUnwrap(t *testing.T) {
	v, err := result.Ok(7).Unwrap()
	require.NoError(t, err)
	require.Equal(t, 7, v)

	_, err = result.Err[int](result.ErrUserNotAuthenticated).Unwrap()
	require.ErrorIs(t, err, result.ErrUserNotAuthenticated)

	_, err = result.Envelope[int]{}.Unwrap()
	require.ErrorIs(t, err, result.ErrMalformedEnvelope)
}

func mustMarshal(t *testing.T, v any) []byte {
	t.Helper()
	raw, err := json.Marshal(v)
	require.NoError(t, err)
	return raw
}
