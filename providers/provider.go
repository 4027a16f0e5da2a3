package providers

import (
	"context"
	"fmt"
	"sort"

	"github.com/jrsteele09/go-actor-client/identities"
	"github.com/jrsteele09/go-actor-client/sessions"
	"github.com/pkg/errors"
	"github.com/rs/zerolog/log"
)

// Provider supplies identities to the registry. Implementations only produce
// identities; they never select or clear the current session.
type Provider interface {
	// Name returns the provider identifier (e.g. "plug", "internet-identity").
	Name() string

	// Identities returns the identities the provider currently holds.
	Identities(ctx context.Context) ([]*identities.Identity, error)
}

// LoginProvider is a provider whose identities come from an interactive
// sign-in, such as an OpenID Connect authorization code flow.
type LoginProvider interface {
	Provider

	// AuthCodeURL returns the authorization URL. State and PKCE parameters are
	// provided by the caller.
	AuthCodeURL(state, codeChallenge string) string

	// Login exchanges an authorization code and returns the signed-in identity.
	Login(ctx context.Context, code, codeVerifier string) (*identities.Identity, error)

	// LoginWithIDToken signs in with an ID token obtained out of band.
	LoginWithIDToken(ctx context.Context, rawIDToken string) (*identities.Identity, error)
}

// Forgetter is implemented by providers that can drop an identity so a later
// Populate does not restore it.
type Forgetter interface {
	Forget(principal string)
}

// Registry holds the configured providers keyed by name.
type Registry struct {
	providers map[string]Provider
}

// NewRegistry registers the given providers by name. Provider names must be unique.
func NewRegistry(list ...Provider) (*Registry, error) {
	m := make(map[string]Provider, len(list))
	for _, p := range list {
		if _, exists := m[p.Name()]; exists {
			return nil, fmt.Errorf("duplicate identity provider: %s", p.Name())
		}
		m[p.Name()] = p
	}
	return &Registry{providers: m}, nil
}

// Get returns the provider by name or an error if not registered.
func (r *Registry) Get(name string) (Provider, error) {
	p, ok := r.providers[name]
	if !ok {
		return nil, fmt.Errorf("unknown identity provider: %s", name)
	}
	return p, nil
}

// LoginProvider returns the named provider if it supports interactive sign-in.
func (r *Registry) LoginProvider(name string) (LoginProvider, error) {
	p, err := r.Get(name)
	if err != nil {
		return nil, err
	}
	lp, ok := p.(LoginProvider)
	if !ok {
		return nil, fmt.Errorf("identity provider %s does not support login", name)
	}
	return lp, nil
}

// Names returns the registered provider names in sorted order.
func (r *Registry) Names() []string {
	names := make([]string, 0, len(r.providers))
	for name := range r.providers {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Populate adds every identity of every registered provider to repo, in
// provider name order. Identities already in the registry are skipped. The
// number of identities added is returned.
func (r *Registry) Populate(ctx context.Context, repo identities.Repo) (int, error) {
	list := make([]Provider, 0, len(r.providers))
	for _, name := range r.Names() {
		list = append(list, r.providers[name])
	}
	return Populate(ctx, repo, list...)
}

// Populate adds the identities of the given providers to repo.
func Populate(ctx context.Context, repo identities.Repo, list ...Provider) (int, error) {
	added := 0
	for _, p := range list {
		ids, err := p.Identities(ctx)
		if err != nil {
			return added, errors.Wrapf(err, "failed to load identities from %s", p.Name())
		}
		for _, id := range ids {
			err := repo.Add(id)
			if errors.Is(err, identities.ErrDuplicateIdentity) {
				log.Debug().Str("provider", p.Name()).Str("principal", identities.FormatPrincipal(id.Principal())).Msg("Identity already registered")
				continue
			}
			if err != nil {
				return added, errors.Wrap(err, "failed to register identity")
			}
			added++
		}
	}
	return added, nil
}

// Logout logs identity out like the package level Logout and makes its issuing
// provider forget it.
func (r *Registry) Logout(repo identities.Repo, session *sessions.Manager, identity *identities.Identity) error {
	if err := Logout(repo, session, identity); err != nil {
		return err
	}
	if f, ok := r.providers[identity.Provider()].(Forgetter); ok {
		f.Forget(identity.Principal())
	}
	return nil
}

// Logout removes identity from the registry and, when it was the current
// identity, clears the session.
func Logout(repo identities.Repo, session *sessions.Manager, identity *identities.Identity) error {
	if identity == nil {
		return identities.ErrIdentityNotFound
	}
	wasCurrent := session.IsCurrent(identity)
	if err := repo.Remove(identity.Principal()); err != nil {
		return err
	}
	if wasCurrent {
		session.ClearCurrent()
	}
	log.Info().Str("principal", identities.FormatPrincipal(identity.Principal())).Bool("was_current", wasCurrent).Msg("Identity logged out")
	return nil
}
