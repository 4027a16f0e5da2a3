package actor

// Profile is the user profile stored by the remote actor.
type Profile struct {
	Username string `json:"username"`
	Bio      string `json:"bio"`
}

// Tour is a read-only listing served by the remote actor.
type Tour struct {
	ID             string `json:"id"`
	Name           string `json:"name"`
	Description    string `json:"description"`
	Category       string `json:"category"`
	AvailableSpots int    `json:"availableSpots"`
}
