package repofake

import (
	"sync"

	"github.com/jrsteele09/go-actor-client/identities"
)

var _ identities.Repo = (*FakeIdentityRepo)(nil)

// FakeIdentityRepo is an in-memory, insertion ordered identity registry.
type FakeIdentityRepo struct {
	order      []string
	identities map[string]*identities.Identity
	lock       sync.RWMutex
}

func NewFakeIdentityRepo(initial ...*identities.Identity) *FakeIdentityRepo {
	r := &FakeIdentityRepo{
		identities: make(map[string]*identities.Identity),
	}
	for _, id := range initial {
		_ = r.Add(id)
	}
	return r
}

func (r *FakeIdentityRepo) List() []*identities.Identity {
	r.lock.RLock()
	defer r.lock.RUnlock()

	list := make([]*identities.Identity, 0, len(r.order))
	for _, principal := range r.order {
		list = append(list, r.identities[principal])
	}
	return list
}

func (r *FakeIdentityRepo) Get(principal string) (*identities.Identity, error) {
	r.lock.RLock()
	defer r.lock.RUnlock()

	id, ok := r.identities[principal]
	if !ok {
		return nil, identities.ErrIdentityNotFound
	}
	return id, nil
}

func (r *FakeIdentityRepo) Contains(identity *identities.Identity) bool {
	if identity == nil {
		return false
	}
	r.lock.RLock()
	defer r.lock.RUnlock()

	_, ok := r.identities[identity.Principal()]
	return ok
}

func (r *FakeIdentityRepo) Add(identity *identities.Identity) error {
	if identity == nil {
		return identities.ErrInvalidKey
	}
	r.lock.Lock()
	defer r.lock.Unlock()

	if _, ok := r.identities[identity.Principal()]; ok {
		return identities.ErrDuplicateIdentity
	}
	r.identities[identity.Principal()] = identity
	r.order = append(r.order, identity.Principal())
	return nil
}

func (r *FakeIdentityRepo) Remove(principal string) error {
	r.lock.Lock()
	defer r.lock.Unlock()

	if _, ok := r.identities[principal]; !ok {
		return identities.ErrIdentityNotFound
	}
	delete(r.identities, principal)
	for i, p := range r.order {
		if p == principal {
			r.order = append(r.order[:i], r.order[i+1:]...)
			break
		}
	}
	return nil
}
