// Package oidc turns an OpenID Connect login into an actor identity. The
// verified issuer and subject are mapped to a deterministic Ed25519 key, so the
// same account always signs in as the same principal.
package oidc

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/coreos/go-oidc/v3/oidc"
	"github.com/jrsteele09/go-actor-client/identities"
	"github.com/jrsteele09/go-actor-client/providers"
	"github.com/jrsteele09/go-actor-client/providers/seed"
	"github.com/rs/zerolog/log"
	"golang.org/x/oauth2"
)

const derivationSalt = "go-actor-client/oidc/v1"

var (
	_ providers.LoginProvider = (*Provider)(nil)
	_ providers.Forgetter     = (*Provider)(nil)
)

var ErrMissingIDToken = errors.New("token response has no id_token")

// Config describes an OIDC client registration.
type Config struct {
	Name         string
	Issuer       string
	ClientID     string
	ClientSecret string
	RedirectURL  string
	// KeySecret is mixed into key derivation. Changing it changes every principal.
	KeySecret string
}

type Provider struct {
	name        string
	oauthConfig *oauth2.Config
	verifier    *oidc.IDTokenVerifier
	keySecret   []byte

	mu         sync.RWMutex
	identities []*identities.Identity
}

// New discovers the issuer's endpoints and keys.
func New(ctx context.Context, cfg Config) (*Provider, error) {
	if cfg.Issuer == "" || cfg.ClientID == "" || cfg.RedirectURL == "" {
		return nil, errors.New("oidc config missing required fields")
	}

	oidcProvider, err := oidc.NewProvider(ctx, cfg.Issuer)
	if err != nil {
		return nil, fmt.Errorf("failed to init oidc provider: %w", err)
	}

	oauthCfg := &oauth2.Config{
		ClientID:     cfg.ClientID,
		ClientSecret: cfg.ClientSecret,
		RedirectURL:  cfg.RedirectURL,
		Endpoint:     oidcProvider.Endpoint(),
		Scopes:       []string{oidc.ScopeOpenID, "profile"},
	}
	verifier := oidcProvider.Verifier(&oidc.Config{
		ClientID: cfg.ClientID,
	})
	return NewWithVerifier(cfg.Name, oauthCfg, verifier, cfg.KeySecret)
}

// NewWithVerifier builds a provider from an explicit oauth2 config and ID token
// verifier, for issuers without discovery.
func NewWithVerifier(name string, oauthCfg *oauth2.Config, verifier *oidc.IDTokenVerifier, keySecret string) (*Provider, error) {
	if name == "" {
		return nil, errors.New("[oidc.NewWithVerifier] name is required")
	}
	if oauthCfg == nil {
		return nil, errors.New("[oidc.NewWithVerifier] oauth2 config is required")
	}
	if verifier == nil {
		return nil, errors.New("[oidc.NewWithVerifier] verifier is required")
	}
	if keySecret == "" {
		return nil, errors.New("[oidc.NewWithVerifier] key secret is required")
	}
	return &Provider{
		name:        name,
		oauthConfig: oauthCfg,
		verifier:    verifier,
		keySecret:   []byte(keySecret),
	}, nil
}

func (p *Provider) Name() string {
	return p.name
}

// AuthCodeURL builds the authorization URL with PKCE parameters.
func (p *Provider) AuthCodeURL(state, codeChallenge string) string {
	return p.oauthConfig.AuthCodeURL(
		state,
		oauth2.AccessTypeOnline,
		oauth2.SetAuthURLParam("code_challenge", codeChallenge),
		oauth2.SetAuthURLParam("code_challenge_method", "S256"),
	)
}

// Login exchanges an authorization code, verifies the returned ID token and
// returns the identity of the signed-in account. The identity is kept by the
// provider until Forget is called.
func (p *Provider) Login(ctx context.Context, code, codeVerifier string) (*identities.Identity, error) {
	opts := []oauth2.AuthCodeOption{}
	if codeVerifier != "" {
		opts = append(opts, oauth2.SetAuthURLParam("code_verifier", codeVerifier))
	}
	token, err := p.oauthConfig.Exchange(ctx, code, opts...)
	if err != nil {
		return nil, fmt.Errorf("token exchange failed: %w", err)
	}

	rawIDToken, ok := token.Extra("id_token").(string)
	if !ok || rawIDToken == "" {
		return nil, ErrMissingIDToken
	}
	return p.LoginWithIDToken(ctx, rawIDToken)
}

// LoginWithIDToken verifies an ID token obtained out of band.
func (p *Provider) LoginWithIDToken(ctx context.Context, rawIDToken string) (*identities.Identity, error) {
	idToken, err := p.verifier.Verify(ctx, rawIDToken)
	if err != nil {
		return nil, fmt.Errorf("id_token verification failed: %w", err)
	}
	if idToken.Subject == "" {
		return nil, errors.New("id_token missing subject")
	}

	key := seed.DeriveSeed(p.keySecret, []byte(derivationSalt), idToken.Issuer+"|"+idToken.Subject)
	id, err := identities.FromSeed(p.name, key)
	if err != nil {
		return nil, err
	}

	p.mu.Lock()
	defer p.mu.Unlock()
	for _, existing := range p.identities {
		if existing.Equal(id) {
			return existing, nil
		}
	}
	p.identities = append(p.identities, id)

	log.Info().
		Str("provider", p.name).
		Str("issuer", idToken.Issuer).
		Str("principal", identities.FormatPrincipal(id.Principal())).
		Msg("OIDC login verified")
	return id, nil
}

// Forget drops a signed-in identity from the provider.
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

// Identities returns the identities signed in through this provider.
func (p *Provider) Identities(context.Context) ([]*identities.Identity, error) {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return append([]*identities.Identity(nil), p.identities...), nil
}
