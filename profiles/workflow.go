package profiles

import (
	"context"
	"errors"
	"strings"
	"sync"

	"github.com/jrsteele09/go-actor-client/actor"
	"github.com/jrsteele09/go-actor-client/alerts"
	"github.com/jrsteele09/go-actor-client/identities"
	"github.com/jrsteele09/go-actor-client/result"
	"github.com/jrsteele09/go-actor-client/sessions"
	"github.com/patrickmn/go-cache"
	"github.com/rs/zerolog/log"
)

var (
	ErrInvalidProfile         = errors.New("username and bio are required")
	ErrRegistrationInProgress = errors.New("registration already in progress")
)

// Error kinds each operation knows about; anything else is unknownErrorKind.
var (
	getProfileKinds    = []result.Kind{result.KindUserNotAuthenticated}
	createProfileKinds = []result.Kind{result.KindUserNotAuthenticated, result.KindProfileAlreadyExists}
)

type State int

const (
	Unregistered State = iota
	Registering
	Registered
	Failed
)

func (s State) String() string {
	switch s {
	case Unregistered:
		return "unregistered"
	case Registering:
		return "registering"
	case Registered:
		return "registered"
	case Failed:
		return "failed"
	default:
		return "unknown"
	}
}

// Session is the view of the session manager the workflow needs.
type Session interface {
	Current() (*identities.Identity, bool)
}

// Workflow registers and fetches the profile of the current identity and keeps
// the result in a local cache keyed by principal. The cache is only written on an
// explicit ok from the remote actor.
type Workflow struct {
	session  Session
	client   *actor.Client
	notifier alerts.Notifier
	profiles *cache.Cache

	mu         sync.Mutex
	state      State
	failure    *result.Error
	generation uint64
}

func NewWorkflow(session Session, client *actor.Client, notifier alerts.Notifier) *Workflow {
	if notifier == nil {
		notifier = alerts.LogNotifier{}
	}
	return &Workflow{
		session:  session,
		client:   client,
		notifier: notifier,
		profiles: cache.New(cache.NoExpiration, 0),
	}
}

// State returns the current state and, when Failed, the reason.
func (w *Workflow) State() (State, *result.Error) {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.state, w.failure
}

// Profile returns the cached profile of the current identity.
func (w *Workflow) Profile() (actor.Profile, bool) {
	caller, ok := w.session.Current()
	if !ok {
		return actor.Profile{}, false
	}
	cached, found := w.profiles.Get(caller.Principal())
	if !found {
		return actor.Profile{}, false
	}
	return cached.(actor.Profile), true
}

// Register creates a profile for the current identity.
//
// On ok the submitted username and bio are cached and the workflow moves to
// Registered. A userNotAuthenticated or profileAlreadyExists error moves it to
// Failed and leaves the cache untouched; the caller decides whether an existing
// profile counts as success (Refresh adopts it).
func (w *Workflow) Register(ctx context.Context, username, bio string) (actor.Profile, error) {
	if strings.TrimSpace(username) == "" || strings.TrimSpace(bio) == "" {
		return actor.Profile{}, ErrInvalidProfile
	}

	caller, _ := w.session.Current()

	w.mu.Lock()
	if w.state == Registering {
		w.mu.Unlock()
		return actor.Profile{}, ErrRegistrationInProgress
	}
	w.state = Registering
	w.failure = nil
	generation := w.generation
	w.mu.Unlock()

	env, err := w.client.As(caller).CreateProfile(ctx, username, bio)
	if err != nil {
		rErr := asResultError(err, actor.OpCreateProfile.Name)
		w.fail(generation, rErr)
		w.notifier.Notify(alerts.Error(alerts.MsgProfileCreationFailed))
		return actor.Profile{}, rErr
	}

	if failure, failed := env.Failure(); failed {
		resolved := failure.Resolve(createProfileKinds...)
		w.fail(generation, resolved)
		switch resolved.Kind {
		case result.KindUserNotAuthenticated:
			w.notifier.Notify(alerts.Error(alerts.MsgUserNotAuthenticated))
		case result.KindProfileAlreadyExists:
			w.notifier.Notify(alerts.Error(alerts.MsgProfileAlreadyExists))
		default:
			log.Warn().Err(resolved).Msg("Unrecognised error creating profile")
			w.notifier.Notify(alerts.Error(alerts.MsgProfileCreationFailed))
		}
		return actor.Profile{}, resolved
	}

	profile := actor.Profile{Username: username, Bio: bio}
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.generation == generation && caller != nil {
		w.profiles.Set(caller.Principal(), profile, cache.NoExpiration)
		w.state = Registered
	}
	return profile, nil
}

// Refresh fetches the current identity's profile. userNotAuthenticated leaves the
// workflow Unregistered without alerting; other failures are logged and returned
// but never alert the user.
func (w *Workflow) Refresh(ctx context.Context) error {
	caller, ok := w.session.Current()
	if !ok {
		w.Reset()
		return nil
	}

	w.mu.Lock()
	generation := w.generation
	w.mu.Unlock()

	env, err := w.client.As(caller).GetProfile(ctx)
	if err != nil {
		log.Warn().Err(err).Msg("Failed to fetch profile")
		return err
	}

	return result.Match(env,
		func(profile actor.Profile) error {
			if strings.TrimSpace(profile.Username) == "" {
				malformed := result.NewError(result.KindMalformedEnvelope, actor.OpGetProfile.Name, ErrInvalidProfile)
				log.Warn().Err(malformed).Msg("Profile without username")
				return malformed
			}
			w.mu.Lock()
			defer w.mu.Unlock()
			if w.generation == generation {
				w.profiles.Set(caller.Principal(), profile, cache.NoExpiration)
				w.state = Registered
				w.failure = nil
			}
			return nil
		},
		func(failure *result.Error) error {
			resolved := failure.Resolve(getProfileKinds...)
			if resolved.Kind == result.KindUserNotAuthenticated {
				log.Debug().Msg("User not authenticated")
				w.mu.Lock()
				defer w.mu.Unlock()
				if w.generation == generation && w.state != Registering {
					w.state = Unregistered
					w.failure = nil
				}
				return nil
			}
			log.Warn().Err(resolved).Msg("Error fetching profile")
			return resolved
		},
	)
}

// Reset forgets cached profiles and returns to Unregistered. Results of calls
// issued before the reset are discarded.
func (w *Workflow) Reset() {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.generation++
	w.state = Unregistered
	w.failure = nil
	w.profiles.Flush()
}

// OnSessionChange resets the workflow and, when an identity is now current,
// fetches its profile.
func (w *Workflow) OnSessionChange(ctx context.Context, change sessions.Change) error {
	w.Reset()
	if !change.Authenticated() {
		return nil
	}
	return w.Refresh(ctx)
}

func (w *Workflow) fail(generation uint64, reason *result.Error) {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.generation == generation {
		w.state = Failed
		w.failure = reason
	}
}

func asResultError(err error, op string) *result.Error {
	var rErr *result.Error
	if errors.As(err, &rErr) {
		return rErr
	}
	return result.NewError(result.KindTransportFailure, op, err)
}
