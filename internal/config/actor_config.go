package config

import (
	"time"

	"github.com/rs/zerolog/log"
)

type ActorConfig interface {
	GetActorURL() string
	GetActorID() string
	GetCallTimeout() time.Duration
	GetCredentialTTL() time.Duration
}

type Actor struct{}

var _ ActorConfig = Actor{}

// GetActorURL returns the base URL of the actor gateway (e.g., "http://localhost:4943")
func (Actor) GetActorURL() string {
	return GetEnv("ACTOR_URL", "http://localhost:4943")
}

// GetActorID returns the id of the remote actor. It is also the audience of
// the call credentials.
func (Actor) GetActorID() string {
	return GetEnv("ACTOR_ID", "tours")
}

func (Actor) GetCallTimeout() time.Duration {
	return GetDuration("CALL_TIMEOUT", 10*time.Second)
}

func (Actor) GetCredentialTTL() time.Duration {
	return GetDuration("CREDENTIAL_TTL", 5*time.Minute)
}

type ContentConfig interface {
	GetContentCacheTTL() time.Duration
}

type Content struct{}

var _ ContentConfig = Content{}

func (Content) GetContentCacheTTL() time.Duration {
	return GetDuration("CONTENT_CACHE_TTL", 10*time.Minute)
}

// GetDuration parses envVar as a time.Duration, falling back to defaultValue
// when it is unset or invalid.
func GetDuration(envVar string, defaultValue time.Duration) time.Duration {
	value := GetEnv(envVar, "")
	if value == "" {
		return defaultValue
	}
	d, err := time.ParseDuration(value)
	if err != nil || d <= 0 {
		log.Warn().Str("var", envVar).Str("value", value).Msg("Invalid duration, using default")
		return defaultValue
	}
	return d
}
