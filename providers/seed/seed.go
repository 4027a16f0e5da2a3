// Package seed derives deterministic Ed25519 identities from a seed phrase,
// the way browser wallets restore their accounts.
package seed

import (
	"context"
	"crypto/ed25519"
	"crypto/sha256"
	"errors"
	"fmt"
	"io"
	"strconv"
	"sync"

	"github.com/jrsteele09/go-actor-client/identities"
	"github.com/jrsteele09/go-actor-client/providers"
	"golang.org/x/crypto/hkdf"
)

const derivationSalt = "go-actor-client/seed/v1"

var (
	_ providers.Provider  = (*Provider)(nil)
	_ providers.Forgetter = (*Provider)(nil)
)

var (
	ErrEmptyPhrase  = errors.New("seed phrase is required")
	ErrInvalidCount = errors.New("identity count must be positive")
)

// Provider holds count identities derived from one phrase.
type Provider struct {
	name string

	mu         sync.RWMutex
	identities []*identities.Identity
}

func New(name, phrase string, count int) (*Provider, error) {
	if name == "" {
		return nil, errors.New("[seed.New] name is required")
	}
	if phrase == "" {
		return nil, ErrEmptyPhrase
	}
	if count <= 0 {
		return nil, ErrInvalidCount
	}

	p := &Provider{name: name}
	for i := 0; i < count; i++ {
		id, err := Derive(name, phrase, i)
		if err != nil {
			return nil, err
		}
		p.identities = append(p.identities, id)
	}
	return p, nil
}

func (p *Provider) Name() string {
	return p.name
}

func (p *Provider) Identities(context.Context) ([]*identities.Identity, error) {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return append([]*identities.Identity(nil), p.identities...), nil
}

// Forget drops a derived identity until the provider is rebuilt.
func (p *Provider) Forget(principal string) {
	p.mu.Lock()
	defer p.mu.Unlock()
	for i, id := range p.identities {
		if id.Principal() == principal {
			p.identities = append(p.identities[:i], p.identities[i+1:]...)
			return
		}
	}
}

// Derive returns the identity at index for phrase. The same inputs always
// produce the same principal.
func Derive(provider, phrase string, index int) (*identities.Identity, error) {
	key := DeriveSeed([]byte(phrase), []byte(derivationSalt), "index:"+strconv.Itoa(index))
	id, err := identities.FromSeed(provider, key)
	if err != nil {
		return nil, fmt.Errorf("failed to derive identity %d: %w", index, err)
	}
	return id, nil
}

// DeriveSeed expands secret into an Ed25519 seed with HKDF-SHA256.
func DeriveSeed(secret, salt []byte, info string) []byte {
	seed := make([]byte, ed25519.SeedSize)
	// HKDF-SHA256 can produce up to 8160 bytes; 32 never fails.
	_, _ = io.ReadFull(hkdf.New(sha256.New, secret, salt, []byte(info)), seed)
	return seed
}
