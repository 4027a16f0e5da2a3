package identities

// Repo is the identity registry. List returns identities in a stable order with
// no two sharing a principal. Population is the job of the identity providers.
type Repo interface {
	// List returns all registered identities, oldest registration first
	List() []*Identity

	// Get returns the identity registered under principal
	Get(principal string) (*Identity, error)

	// Contains reports whether an identity with the same principal is registered
	Contains(identity *Identity) bool

	// Add registers an identity, rejecting duplicate principals
	Add(identity *Identity) error

	// Remove unregisters the identity with the given principal
	Remove(principal string) error
}
