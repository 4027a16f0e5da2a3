package seed_test

import (
	"context"
	"testing"

	"github.com/jrsteele09/go-actor-client/providers/seed"
	"github.com/stretchr/testify/require"
)

func TestNew(t *testing.T) {
	p, err := seed.New("plug", "correct horse battery staple", 3)
	require.NoError(t, err)
	require.Equal(t, "plug", p.Name())

	ids, err := p.Identities(context.Background())
	require.NoError(t, err)
	require.Len(t, ids, 3)

	seen := map[string]bool{}
	for _, id := range ids {
		require.Equal(t, "plug", id.Provider())
		require.False(t, seen[id.Principal()], "principals are distinct")
		seen[id.Principal()] = true
	}
}

func TestNew_Deterministic(t *testing.T) {
	a, err := seed.New("plug", "phrase", 2)
	require.NoError(t, err)
	b, err := seed.New("plug", "phrase", 2)
	require.NoError(t, err)
	c, err := seed.New("plug", "other phrase", 2)
	require.NoError(t, err)

	idsA, _ := a.Identities(context.Background())
	idsB, _ := b.Identities(context.Background())
	idsC, _ := c.Identities(context.Background())
	for i := range idsA {
		require.True(t, idsA[i].Equal(idsB[i]))
		require.False(t, idsA[i].Equal(idsC[i]))
	}
}

func TestNew_Validation(t *testing.T) {
	_, err := seed.New("", "phrase", 1)
	require.Error(t, err)

	_, err = seed.New("plug", "", 1)
	require.ErrorIs(t, err, seed.ErrEmptyPhrase)

	_, err = seed.New("plug", "phrase", 0)
	require.ErrorIs(t, err, seed.ErrInvalidCount)
}

func TestIdentities_ReturnsCopy(t *testing.T) {
	p, err := seed.New("plug", "phrase", 1)
	require.NoError(t, err)

	ids, _ := p.Identities(context.Background())
	ids[0] = nil

	again, _ := p.Identities(context.Background())
	require.NotNil(t, again[0])
}

func TestDeriveSeed(t *testing.T) {
	s1 := seed.DeriveSeed([]byte("secret"), []byte("salt"), "index:0")
	s2 := seed.DeriveSeed([]byte("secret"), []byte("salt"), "index:1")
	require.Len(t, s1, 32)
	require.NotEqual(t, s1, s2)
	require.Equal(t, s1, seed.DeriveSeed([]byte("secret"), []byte("salt"), "index:0"))
}

func TestForget(t *testing.T) {
	p, err := seed.New("plug", "phrase", 2)
	require.NoError(t, err)
	ids, _ := p.Identities(context.Background())

	p.Forget(ids[0].Principal())
	p.Forget("unknown")

	left, _ := p.Identities(context.Background())
	require.Len(t, left, 1)
	require.True(t, left[0].Equal(ids[1]))
}
