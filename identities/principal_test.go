package identities_test

import (
	"crypto/ed25519"
	"strings"
	"testing"

	"github.com/jrsteele09/go-actor-client/identities"
	"github.com/stretchr/testify/require"
)

const zeroSeedPrincipal = "535yc-uxytb-gfk7h-tny7p-vjkoe-i4krp-3qmcl-uqfgr-cpgej-yqtjq-rqe"

func seqSeed() []byte {
	seed := make([]byte, ed25519.SeedSize)
	for i := range seed {
		seed[i] = byte(i)
	}
	return seed
}

func TestPrincipalFromPublicKey(t *testing.T) {
	t.Run("zero seed", func(t *testing.T) {
		id, err := identities.FromSeed("plug", make([]byte, ed25519.SeedSize))
		require.NoError(t, err)
		require.Equal(t, zeroSeedPrincipal, id.Principal())
	})

	t.Run("sequential seed", func(t *testing.T) {
		id, err := identities.FromSeed("plug", seqSeed())
		require.NoError(t, err)
		require.Equal(t, "yavxl-ppty4-enezb-hcalr-cdgzv-zoexx-7od3c-urvk6-rfzs4-552ct-7ae", id.Principal())
	})

	t.Run("invalid key", func(t *testing.T) {
		_, err := identities.PrincipalFromPublicKey(ed25519.PublicKey{1, 2, 3})
		require.ErrorIs(t, err, identities.ErrInvalidKey)
	})
}

func TestFormatPrincipal(t *testing.T) {
	tests := []struct {
		name      string
		principal string
		expected  string
	}{
		{"full principal", zeroSeedPrincipal, "535yc-uxytb-...-yqtjq-rqe"},
		{"exactly four segments", "aaaaa-bbbbb-ccccc-ddddd", "aaaaa-bbbbb-...-ccccc-ddddd"},
		{"three segments overlap", "aaaaa-bbbbb-ccccc", "aaaaa-bbbbb-...-bbbbb-ccccc"},
		{"two segments", "2vxsx-fae", "2vxsx-fae-...-2vxsx-fae"},
		{"single segment", "aaaaa", "aaaaa-...-aaaaa"},
		{"empty", "", "-...-"},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			require.Equal(t, tc.expected, identities.FormatPrincipal(tc.principal))
			require.Equal(t, tc.expected, identities.FormatPrincipal(tc.principal), "formatting must be deterministic")
		})
	}
}

func TestFormatPrincipal_PreservesOuterSegments(t *testing.T) {
	id, err := identities.FromSeed("plug", seqSeed())
	require.NoError(t, err)

	formatted := identities.FormatPrincipal(id.Principal())
	segments := strings.Split(id.Principal(), "-")

	require.Equal(t, 1, strings.Count(formatted, "-...-"))
	require.True(t, strings.HasPrefix(formatted, segments[0]+"-"+segments[1]+"-...-"))
	require.True(t, strings.HasSuffix(formatted, "-...-"+segments[len(segments)-2]+"-"+segments[len(segments)-1]))
}

func TestIdentity(t *testing.T) {
	a, err := identities.FromSeed("internet-identity", make([]byte, ed25519.SeedSize))
	require.NoError(t, err)
	b, err := identities.FromSeed("plug", make([]byte, ed25519.SeedSize))
	require.NoError(t, err)
	c, err := identities.FromSeed("plug", seqSeed())
	require.NoError(t, err)

	require.True(t, a.Equal(b), "same key from different providers shares a principal")
	require.False(t, a.Equal(c))
	require.Equal(t, "internet-identity : 535yc-uxytb-...-yqtjq-rqe", a.DisplayName())

	pub := a.PublicKey()
	pub[0] ^= 0xff
	require.NotEqual(t, pub, a.PublicKey(), "PublicKey returns a copy")

	_, err = identities.FromSeed("plug", []byte("short"))
	require.ErrorIs(t, err, identities.ErrInvalidKey)
}
