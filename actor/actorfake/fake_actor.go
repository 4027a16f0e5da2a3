package actorfake

import (
	"context"
	"encoding/json"
	"fmt"
	"math/big"
	"sync"

	"github.com/google/uuid"
	"github.com/jrsteele09/go-actor-client/actor"
	"github.com/jrsteele09/go-actor-client/result"
)

var _ actor.Transport = (*Actor)(nil)

const DefaultAboutUs = "We run small-group tours led by local guides."

// Responder replaces the actor's answer for one operation.
type Responder func(call actor.Call) ([]byte, error)

// Payment is a processed payment as seen by the actor.
type Payment struct {
	Principal  string
	CardNumber string
	Amount     *big.Int
	Approved   bool
}

// Actor is an in-memory remote actor. Callers are authenticated from the call
// credential; calls without a valid credential are anonymous.
type Actor struct {
	audience  string
	aboutUs   string
	profiles  map[string]actor.Profile
	tours     []actor.Tour
	featured  map[string]struct{}
	calls     []actor.Call
	payments  []Payment
	overrides map[string]Responder
	lock      sync.RWMutex
}

func New(audience string) *Actor {
	a := &Actor{
		audience:  audience,
		aboutUs:   DefaultAboutUs,
		profiles:  make(map[string]actor.Profile),
		featured:  make(map[string]struct{}),
		overrides: make(map[string]Responder),
	}
	for _, t := range defaultTours() {
		a.AddTour(t, t.ID == "t-1")
	}
	return a
}

func defaultTours() []actor.Tour {
	return []actor.Tour{
		{ID: "t-1", Name: "Old Town Walk", Description: "Two hours through the historic centre", Category: "city", AvailableSpots: 12},
		{ID: "t-2", Name: "Volcano Trek", Description: "Sunrise hike to the crater rim", Category: "nature", AvailableSpots: 6},
		{ID: "t-3", Name: "Coffee Farm", Description: "Tasting tour on a family farm", Category: "food", AvailableSpots: 0},
	}
}

// AddTour adds a tour, assigning an id when it has none.
func (a *Actor) AddTour(tour actor.Tour, featured bool) actor.Tour {
	a.lock.Lock()
	defer a.lock.Unlock()

	if tour.ID == "" {
		tour.ID = uuid.New().String()
	}
	a.tours = append(a.tours, tour)
	if featured {
		a.featured[tour.ID] = struct{}{}
	}
	return tour
}

func (a *Actor) SetAboutUs(text string) {
	a.lock.Lock()
	defer a.lock.Unlock()
	a.aboutUs = text
}

// PutProfile stores a profile directly, bypassing createProfile.
func (a *Actor) PutProfile(principal string, profile actor.Profile) {
	a.lock.Lock()
	defer a.lock.Unlock()
	a.profiles[principal] = profile
}

func (a *Actor) Profile(principal string) (actor.Profile, bool) {
	a.lock.RLock()
	defer a.lock.RUnlock()
	p, ok := a.profiles[principal]
	return p, ok
}

func (a *Actor) ProfileCount() int {
	a.lock.RLock()
	defer a.lock.RUnlock()
	return len(a.profiles)
}

// Override makes the actor answer op with responder.
func (a *Actor) Override(op string, responder Responder) {
	a.lock.Lock()
	defer a.lock.Unlock()
	a.overrides[op] = responder
}

// Calls returns every call received, in arrival order.
func (a *Actor) Calls() []actor.Call {
	a.lock.RLock()
	defer a.lock.RUnlock()
	return append([]actor.Call(nil), a.calls...)
}

// CallsTo returns the calls received for op.
func (a *Actor) CallsTo(op string) []actor.Call {
	var calls []actor.Call
	for _, c := range a.Calls() {
		if c.Operation == op {
			calls = append(calls, c)
		}
	}
	return calls
}

func (a *Actor) Payments() []Payment {
	a.lock.RLock()
	defer a.lock.RUnlock()
	return append([]Payment(nil), a.payments...)
}

// Invoke implements actor.Transport.
func (a *Actor) Invoke(ctx context.Context, call actor.Call) ([]byte, error) {
	a.lock.Lock()
	a.calls = append(a.calls, call)
	override := a.overrides[call.Operation]
	a.lock.Unlock()

	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if override != nil {
		return override(call)
	}

	raw, err := json.Marshal(call.Args)
	if err != nil {
		return nil, fmt.Errorf("failed to encode arguments: %w", err)
	}
	var args []json.RawMessage
	if err := json.Unmarshal(raw, &args); err != nil {
		return nil, fmt.Errorf("failed to decode arguments: %w", err)
	}

	return a.Handle(a.Authenticate(call.Credential, call.Operation), call.Operation, args)
}

// Authenticate returns the principal proven by a credential issued for op, or
// "" for anonymous.
func (a *Actor) Authenticate(credential, op string) string {
	if credential == "" {
		return ""
	}
	claims, err := actor.VerifyCallToken(credential, a.audience)
	if err != nil || claims.Operation != op {
		return ""
	}
	return claims.Subject
}

// Handle executes op for principal ("" when anonymous) with JSON encoded arguments.
func (a *Actor) Handle(principal, op string, args []json.RawMessage) ([]byte, error) {
	switch op {
	case actor.OpGetProfile.Name:
		return a.getProfile(principal)
	case actor.OpCreateProfile.Name:
		var username, bio string
		if err := decodeArgs(args, &username, &bio); err != nil {
			return nil, err
		}
		return a.createProfile(principal, username, bio)
	case actor.OpGetAboutUsContent.Name:
		a.lock.RLock()
		defer a.lock.RUnlock()
		return json.Marshal(a.aboutUs)
	case actor.OpGetHomePageContent.Name:
		return json.Marshal(a.filterTours(func(t actor.Tour) bool {
			_, ok := a.featured[t.ID]
			return ok
		}))
	case actor.OpGetTours.Name:
		return json.Marshal(a.filterTours(func(actor.Tour) bool { return true }))
	case actor.OpGetToursByCategory.Name:
		var category string
		if err := decodeArgs(args, &category); err != nil {
			return nil, err
		}
		return json.Marshal(a.filterTours(func(t actor.Tour) bool { return t.Category == category }))
	case actor.OpProcessPayment.Name:
		var card string
		amount := new(big.Int)
		if err := decodeArgs(args, &card, amount); err != nil {
			return nil, err
		}
		return json.Marshal(a.processPayment(principal, card, amount))
	default:
		return nil, fmt.Errorf("actor has no method %q", op)
	}
}

func (a *Actor) getProfile(principal string) ([]byte, error) {
	if principal == "" {
		return json.Marshal(result.Err[actor.Profile](result.ErrUserNotAuthenticated))
	}
	a.lock.RLock()
	defer a.lock.RUnlock()

	p, ok := a.profiles[principal]
	if !ok {
		// A signed-in caller without a profile is reported as unauthenticated,
		// matching the deployed actor.
		return json.Marshal(result.Err[actor.Profile](result.ErrUserNotAuthenticated))
	}
	return json.Marshal(result.Ok(p))
}

func (a *Actor) createProfile(principal, username, bio string) ([]byte, error) {
	if principal == "" {
		return json.Marshal(result.Err[result.Unit](result.ErrUserNotAuthenticated))
	}
	a.lock.Lock()
	defer a.lock.Unlock()

	if _, ok := a.profiles[principal]; ok {
		return json.Marshal(result.Err[result.Unit](result.ErrProfileAlreadyExists))
	}
	a.profiles[principal] = actor.Profile{Username: username, Bio: bio}
	return json.Marshal(result.Ok(result.Unit{}))
}

func (a *Actor) processPayment(principal, card string, amount *big.Int) bool {
	approved := principal != "" && amount.Sign() > 0 && validCard(card)

	a.lock.Lock()
	defer a.lock.Unlock()
	a.payments = append(a.payments, Payment{Principal: principal, CardNumber: card, Amount: amount, Approved: approved})
	return approved
}

func (a *Actor) filterTours(keep func(actor.Tour) bool) []actor.Tour {
	a.lock.RLock()
	defer a.lock.RUnlock()

	tours := make([]actor.Tour, 0, len(a.tours))
	for _, t := range a.tours {
		if keep(t) {
			tours = append(tours, t)
		}
	}
	return tours
}

// validCard applies the Luhn checksum to a 12 to 19 digit card number.
func validCard(card string) bool {
	if len(card) < 12 || len(card) > 19 {
		return false
	}
	sum := 0
	double := false
	for i := len(card) - 1; i >= 0; i-- {
		d := int(card[i] - '0')
		if d < 0 || d > 9 {
			return false
		}
		if double {
			d *= 2
			if d > 9 {
				d -= 9
			}
		}
		sum += d
		double = !double
	}
	return sum%10 == 0
}

func decodeArgs(args []json.RawMessage, targets ...any) error {
	if len(args) != len(targets) {
		return fmt.Errorf("expected %d arguments, got %d", len(targets), len(args))
	}
	for i, target := range targets {
		if err := json.Unmarshal(args[i], target); err != nil {
			return fmt.Errorf("argument %d: %w", i, err)
		}
	}
	return nil
}
