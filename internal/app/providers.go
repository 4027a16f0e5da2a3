package app

import (
	"context"

	"github.com/jrsteele09/go-actor-client/internal/config"
	"github.com/jrsteele09/go-actor-client/providers"
	"github.com/jrsteele09/go-actor-client/providers/oidc"
	"github.com/jrsteele09/go-actor-client/providers/seed"
	"github.com/pkg/errors"
)

// BuildProviders creates the identity providers listed in file.
func BuildProviders(ctx context.Context, file config.ProvidersFile) (*providers.Registry, error) {
	list := make([]providers.Provider, 0, len(file.Providers))
	for _, entry := range file.Providers {
		p, err := buildProvider(ctx, entry)
		if err != nil {
			return nil, errors.Wrapf(err, "provider %s", entry.Name)
		}
		list = append(list, p)
	}
	return providers.NewRegistry(list...)
}

func buildProvider(ctx context.Context, entry config.ProviderEntry) (providers.Provider, error) {
	if entry.IsOIDC() {
		return oidc.New(ctx, oidc.Config{
			Name:         entry.Name,
			Issuer:       entry.Issuer,
			ClientID:     entry.ClientID,
			ClientSecret: entry.ClientSecret,
			RedirectURL:  entry.RedirectURL,
			KeySecret:    entry.KeySecret,
		})
	}
	return seed.New(entry.Name, entry.Seed, entry.Count)
}
