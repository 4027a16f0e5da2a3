package actor

// Operation describes a remote actor method.
type Operation struct {
	Name         string
	AuthRequired bool // short-circuit locally when the session is unauthenticated
	Enveloped    bool // the response is an ok/err envelope rather than a bare value
}

var (
	OpGetProfile         = Operation{Name: "getProfile", AuthRequired: true, Enveloped: true}
	OpCreateProfile      = Operation{Name: "createProfile", AuthRequired: true, Enveloped: true}
	OpGetAboutUsContent  = Operation{Name: "getAboutUsContent"}
	OpGetHomePageContent = Operation{Name: "getHomePageContent"}
	OpGetTours           = Operation{Name: "getTours"}
	OpGetToursByCategory = Operation{Name: "getToursByCategory"}
	OpProcessPayment     = Operation{Name: "processPayment", AuthRequired: true}
)

// Operations is the catalogue of remote methods keyed by name.
var Operations = map[string]Operation{
	OpGetProfile.Name:         OpGetProfile,
	OpCreateProfile.Name:      OpCreateProfile,
	OpGetAboutUsContent.Name:  OpGetAboutUsContent,
	OpGetHomePageContent.Name: OpGetHomePageContent,
	OpGetTours.Name:           OpGetTours,
	OpGetToursByCategory.Name: OpGetToursByCategory,
	OpProcessPayment.Name:     OpProcessPayment,
}

// LookupOperation returns the catalogued operation with the given name.
func LookupOperation(name string) (Operation, bool) {
	op, ok := Operations[name]
	return op, ok
}
