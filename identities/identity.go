package identities

import (
	"crypto"
	"crypto/ed25519"
	"errors"
	"time"
)

var (
	ErrIdentityNotFound  = errors.New("identity not found")
	ErrDuplicateIdentity = errors.New("identity already registered")
	ErrInvalidKey        = errors.New("invalid identity key")
)

// Identity is a cryptographic credential plus the principal derived from it and
// the name of the provider that issued it. Identities are immutable once created.
type Identity struct {
	principal  string
	provider   string
	signingKey ed25519.PrivateKey
	createdAt  time.Time
}

// New builds an Identity from an Ed25519 private key. The principal is derived
// from the public half of the key.
func New(provider string, signingKey ed25519.PrivateKey) (*Identity, error) {
	if len(signingKey) != ed25519.PrivateKeySize {
		return nil, ErrInvalidKey
	}
	pub, ok := signingKey.Public().(ed25519.PublicKey)
	if !ok {
		return nil, ErrInvalidKey
	}
	principal, err := PrincipalFromPublicKey(pub)
	if err != nil {
		return nil, err
	}
	return &Identity{
		principal:  principal,
		provider:   provider,
		signingKey: append(ed25519.PrivateKey(nil), signingKey...),
		createdAt:  time.Now().UTC(),
	}, nil
}

// FromSeed builds an Identity from a 32 byte Ed25519 seed.
func FromSeed(provider string, seed []byte) (*Identity, error) {
	if len(seed) != ed25519.SeedSize {
		return nil, ErrInvalidKey
	}
	return New(provider, ed25519.NewKeyFromSeed(seed))
}

// Principal returns the canonical textual principal.
func (i *Identity) Principal() string {
	return i.principal
}

// Provider returns the name of the issuing provider (e.g. "internet-identity", "plug").
func (i *Identity) Provider() string {
	return i.provider
}

func (i *Identity) CreatedAt() time.Time {
	return i.createdAt
}

// PublicKey returns a copy of the identity's public key.
func (i *Identity) PublicKey() ed25519.PublicKey {
	pub := i.signingKey.Public().(ed25519.PublicKey)
	return append(ed25519.PublicKey(nil), pub...)
}

// Signer exposes the private key for signing call credentials.
func (i *Identity) Signer() crypto.Signer {
	return i.signingKey
}

// Equal compares identities by principal.
func (i *Identity) Equal(other *Identity) bool {
	if i == nil || other == nil {
		return i == other
	}
	return i.principal == other.principal
}

// DisplayName renders "<provider> : <short principal>" as shown in identity lists.
func (i *Identity) DisplayName() string {
	return i.provider + " : " + FormatPrincipal(i.principal)
}
