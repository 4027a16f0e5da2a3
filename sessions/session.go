package sessions

import (
	"errors"
	"sync"

	"github.com/jrsteele09/go-actor-client/identities"
)

var ErrIdentityNotRegistered = errors.New("identity not registered")

// Change describes a transition of the current identity. Either side may be nil
// (unauthenticated).
type Change struct {
	Previous *identities.Identity
	Current  *identities.Identity
}

// Authenticated reports whether the change leaves the session with an identity.
func (c Change) Authenticated() bool {
	return c.Current != nil
}

// Listener is called after every change of the current identity. Listeners
// should treat an authenticated change as a trigger to refetch authenticated
// resources.
type Listener func(Change)

// Manager tracks the single current identity drawn from the identity registry.
// Only SetCurrent and ClearCurrent write the current identity; reads are safe
// from any goroutine.
type Manager struct {
	registry identities.Repo

	mu        sync.RWMutex
	current   *identities.Identity
	listeners map[int]Listener
	nextID    int
}

func NewManager(registry identities.Repo) *Manager {
	return &Manager{
		registry:  registry,
		listeners: make(map[int]Listener),
	}
}

// Registry returns the identity registry backing the session.
func (m *Manager) Registry() identities.Repo {
	return m.registry
}

// SetCurrent makes identity the current identity. The identity must be a member
// of the registry, otherwise ErrIdentityNotRegistered is returned and the
// current identity is left unchanged.
func (m *Manager) SetCurrent(identity *identities.Identity) error {
	if identity == nil || !m.registry.Contains(identity) {
		return ErrIdentityNotRegistered
	}
	registered, err := m.registry.Get(identity.Principal())
	if err != nil {
		return ErrIdentityNotRegistered
	}

	m.mu.Lock()
	previous := m.current
	if previous.Equal(registered) {
		m.mu.Unlock()
		return nil
	}
	m.current = registered
	listeners := m.snapshotListeners()
	m.mu.Unlock()

	notify(listeners, Change{Previous: previous, Current: registered})
	return nil
}

// ClearCurrent logs the session out. Clearing an unauthenticated session is a no-op.
func (m *Manager) ClearCurrent() {
	m.mu.Lock()
	previous := m.current
	if previous == nil {
		m.mu.Unlock()
		return
	}
	m.current = nil
	listeners := m.snapshotListeners()
	m.mu.Unlock()

	notify(listeners, Change{Previous: previous})
}

// Current returns the current identity. An identity that has since been
// removed from the registry is never returned.
func (m *Manager) Current() (*identities.Identity, bool) {
	m.mu.RLock()
	current := m.current
	m.mu.RUnlock()

	if current == nil || !m.registry.Contains(current) {
		return nil, false
	}
	return current, true
}

// IsAuthenticated reports whether a current identity is selected.
func (m *Manager) IsAuthenticated() bool {
	_, ok := m.Current()
	return ok
}

// IsCurrent reports whether identity is the current identity (by principal).
func (m *Manager) IsCurrent(identity *identities.Identity) bool {
	current, ok := m.Current()
	if !ok || identity == nil {
		return false
	}
	return current.Equal(identity)
}

// Subscribe registers a listener and returns a function removing it.
func (m *Manager) Subscribe(listener Listener) (unsubscribe func()) {
	m.mu.Lock()
	defer m.mu.Unlock()

	id := m.nextID
	m.nextID++
	m.listeners[id] = listener
	return func() {
		m.mu.Lock()
		defer m.mu.Unlock()
		delete(m.listeners, id)
	}
}

func (m *Manager) snapshotListeners() []Listener {
	listeners := make([]Listener, 0, len(m.listeners))
	for i := 0; i < m.nextID; i++ {
		if l, ok := m.listeners[i]; ok {
			listeners = append(listeners, l)
		}
	}
	return listeners
}

func notify(listeners []Listener, change Change) {
	for _, l := range listeners {
		l(change)
	}
}
