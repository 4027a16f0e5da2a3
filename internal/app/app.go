// Package app wires the identity registry, session, remote actor and workflows
// into one client application.
package app

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/jrsteele09/go-actor-client/actor"
	"github.com/jrsteele09/go-actor-client/actor/httptransport"
	"github.com/jrsteele09/go-actor-client/alerts"
	"github.com/jrsteele09/go-actor-client/content"
	"github.com/jrsteele09/go-actor-client/identities"
	"github.com/jrsteele09/go-actor-client/identities/repofake"
	"github.com/jrsteele09/go-actor-client/internal/config"
	"github.com/jrsteele09/go-actor-client/payments"
	"github.com/jrsteele09/go-actor-client/profiles"
	"github.com/jrsteele09/go-actor-client/providers"
	"github.com/jrsteele09/go-actor-client/sessions"
	"github.com/rs/zerolog/log"
)

// App is the composed client. Services are exported for the command layer.
type App struct {
	Identities identities.Repo
	Session    *sessions.Manager
	Client     *actor.Client
	Profiles   *profiles.Workflow
	Payments   *payments.Service
	Content    *content.Service

	providers *providers.Registry

	mu          sync.RWMutex
	view        View
	ctx         context.Context
	cancel      context.CancelFunc
	unsubscribe func()
	wg          sync.WaitGroup
}

// View is the content last fetched for display.
type View struct {
	AboutUs  string
	HomePage []actor.Tour
	Tours    []actor.Tour
}

// New composes an App talking to the actor through transport. registry may be
// nil when identities are added to the registry directly.
func New(cfg config.Config, transport actor.Transport, registry *providers.Registry, notifier alerts.Notifier) (*App, error) {
	if cfg == nil {
		return nil, errors.New("[app.New] config is required")
	}
	if notifier == nil {
		notifier = alerts.LogNotifier{}
	}

	repo := repofake.NewFakeIdentityRepo()
	session := sessions.NewManager(repo)
	gateway, err := actor.NewGateway(session, transport,
		actor.WithActorID(cfg.GetActorID()),
		actor.WithCredentialTTL(cfg.GetCredentialTTL()),
	)
	if err != nil {
		return nil, err
	}
	client := actor.NewClient(gateway)

	return &App{
		Identities: repo,
		Session:    session,
		Client:     client,
		Profiles:   profiles.NewWorkflow(session, client, notifier),
		Payments:   payments.NewService(client, notifier),
		Content:    content.NewService(client, cfg.GetContentCacheTTL()),
		providers:  registry,
	}, nil
}

// NewFromConfig builds an App against the HTTP actor gateway, with identity
// providers read from the configured providers file.
func NewFromConfig(ctx context.Context, cfg config.Config, notifier alerts.Notifier) (*App, error) {
	file, err := config.LoadProviders(cfg.GetIdentitiesFile())
	if err != nil {
		return nil, err
	}
	registry, err := BuildProviders(ctx, file)
	if err != nil {
		return nil, err
	}
	transport := httptransport.New(cfg.GetActorURL(), cfg.GetActorID(), httptransport.WithTimeout(cfg.GetCallTimeout()))
	return New(cfg, transport, registry, notifier)
}

// Start loads the provider identities, starts following session changes and
// fetches the tour list.
func (a *App) Start(ctx context.Context) error {
	a.mu.Lock()
	if a.cancel != nil {
		a.mu.Unlock()
		return errors.New("app already started")
	}
	a.ctx, a.cancel = context.WithCancel(ctx)
	a.mu.Unlock()

	if a.providers != nil {
		added, err := a.providers.Populate(ctx, a.Identities)
		if err != nil {
			return err
		}
		log.Info().Int("identities", added).Strs("providers", a.providers.Names()).Msg("Identity registry populated")
	}

	a.unsubscribe = a.Session.Subscribe(a.onSessionChange)

	tours := a.Content.Tours(ctx)
	a.mu.Lock()
	a.view.Tours = tours
	a.mu.Unlock()
	return nil
}

// Close stops following session changes and waits for in-flight refreshes.
func (a *App) Close() {
	if a.unsubscribe != nil {
		a.unsubscribe()
	}
	a.mu.RLock()
	cancel := a.cancel
	a.mu.RUnlock()
	if cancel != nil {
		cancel()
	}
	a.wg.Wait()
}

// Wait blocks until the refreshes triggered by session changes have finished.
func (a *App) Wait() {
	a.wg.Wait()
}

// View returns the content last fetched.
func (a *App) View() View {
	a.mu.RLock()
	defer a.mu.RUnlock()
	return View{
		AboutUs:  a.view.AboutUs,
		HomePage: append([]actor.Tour(nil), a.view.HomePage...),
		Tours:    append([]actor.Tour(nil), a.view.Tours...),
	}
}

// Select makes the identity registered under principal current.
func (a *App) Select(principal string) error {
	id, err := a.Identities.Get(principal)
	if err != nil {
		return err
	}
	return a.Session.SetCurrent(id)
}

// Logout removes the identity registered under principal, clearing the
// session when it was current.
func (a *App) Logout(principal string) error {
	id, err := a.Identities.Get(principal)
	if err != nil {
		return err
	}
	if a.providers != nil {
		return a.providers.Logout(a.Identities, a.Session, id)
	}
	return providers.Logout(a.Identities, a.Session, id)
}

// LoginURL returns the authorization URL of the named login provider.
func (a *App) LoginURL(providerName, state, codeChallenge string) (string, error) {
	lp, err := a.loginProvider(providerName)
	if err != nil {
		return "", err
	}
	return lp.AuthCodeURL(state, codeChallenge), nil
}

// Login completes an authorization code sign-in with the named provider,
// registers the resulting identity and makes it current.
func (a *App) Login(ctx context.Context, providerName, code, codeVerifier string) (*identities.Identity, error) {
	lp, err := a.loginProvider(providerName)
	if err != nil {
		return nil, err
	}
	id, err := lp.Login(ctx, code, codeVerifier)
	if err != nil {
		return nil, err
	}
	return id, a.adopt(id)
}

// LoginWithIDToken signs in with an ID token issued to the named provider.
func (a *App) LoginWithIDToken(ctx context.Context, providerName, rawIDToken string) (*identities.Identity, error) {
	lp, err := a.loginProvider(providerName)
	if err != nil {
		return nil, err
	}
	id, err := lp.LoginWithIDToken(ctx, rawIDToken)
	if err != nil {
		return nil, err
	}
	return id, a.adopt(id)
}

func (a *App) loginProvider(name string) (providers.LoginProvider, error) {
	if a.providers == nil {
		return nil, fmt.Errorf("unknown identity provider: %s", name)
	}
	return a.providers.LoginProvider(name)
}

// adopt registers id, unless already registered, and selects it.
func (a *App) adopt(id *identities.Identity) error {
	if err := a.Identities.Add(id); err != nil && !errors.Is(err, identities.ErrDuplicateIdentity) {
		return err
	}
	return a.Session.SetCurrent(id)
}

func (a *App) onSessionChange(change sessions.Change) {
	if !change.Authenticated() {
		a.Profiles.Reset()
		return
	}

	a.mu.RLock()
	ctx := a.ctx
	a.mu.RUnlock()

	a.wg.Add(3)
	go func() {
		defer a.wg.Done()
		if err := a.Profiles.OnSessionChange(ctx, change); err != nil {
			log.Warn().Err(err).Msg("Profile refresh failed")
		}
	}()
	go func() {
		defer a.wg.Done()
		about := a.Content.AboutUs(ctx)
		a.mu.Lock()
		a.view.AboutUs = about
		a.mu.Unlock()
	}()
	go func() {
		defer a.wg.Done()
		home := a.Content.HomePage(ctx)
		a.mu.Lock()
		a.view.HomePage = home
		a.mu.Unlock()
	}()
}
