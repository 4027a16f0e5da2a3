package config

import (
	"fmt"
	"os"

	"github.com/pkg/errors"
	"gopkg.in/yaml.v3"
)

// ProvidersFile lists the identity providers to load at start.
type ProvidersFile struct {
	Providers []ProviderEntry `yaml:"providers"`
}

// ProviderEntry configures one provider. Seed providers set Seed and Count;
// OIDC providers set Issuer, ClientID, RedirectURL and KeySecret.
type ProviderEntry struct {
	Name         string `yaml:"name"`
	Seed         string `yaml:"seed,omitempty"`
	Count        int    `yaml:"count,omitempty"`
	Issuer       string `yaml:"issuer,omitempty"`
	ClientID     string `yaml:"client_id,omitempty"`
	ClientSecret string `yaml:"client_secret,omitempty"`
	RedirectURL  string `yaml:"redirect_url,omitempty"`
	KeySecret    string `yaml:"key_secret,omitempty"`
}

// IsOIDC reports whether the entry describes an OIDC login provider.
func (p ProviderEntry) IsOIDC() bool {
	return p.Issuer != ""
}

// LoadProviders reads the provider file at path. A missing file yields an
// empty configuration.
func LoadProviders(path string) (ProvidersFile, error) {
	data, err := os.ReadFile(path)
	if errors.Is(err, os.ErrNotExist) {
		return ProvidersFile{}, nil
	}
	if err != nil {
		return ProvidersFile{}, errors.Wrap(err, "failed to read providers file")
	}
	return ParseProviders(data)
}

func ParseProviders(data []byte) (ProvidersFile, error) {
	var file ProvidersFile
	if err := yaml.Unmarshal(data, &file); err != nil {
		return ProvidersFile{}, errors.Wrap(err, "failed to parse providers file")
	}

	seen := make(map[string]struct{}, len(file.Providers))
	for i, p := range file.Providers {
		if p.Name == "" {
			return ProvidersFile{}, fmt.Errorf("provider %d: name is required", i)
		}
		if _, ok := seen[p.Name]; ok {
			return ProvidersFile{}, fmt.Errorf("provider %s: duplicate name", p.Name)
		}
		seen[p.Name] = struct{}{}

		if p.IsOIDC() {
			if p.ClientID == "" || p.RedirectURL == "" || p.KeySecret == "" {
				return ProvidersFile{}, fmt.Errorf("provider %s: issuer requires client_id, redirect_url and key_secret", p.Name)
			}
			continue
		}
		if p.Seed == "" {
			return ProvidersFile{}, fmt.Errorf("provider %s: seed is required", p.Name)
		}
		if p.Count == 0 {
			file.Providers[i].Count = 1
		}
		if file.Providers[i].Count < 0 {
			return ProvidersFile{}, fmt.Errorf("provider %s: count must be positive", p.Name)
		}
	}
	return file, nil
}
