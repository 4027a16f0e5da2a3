package config

type Config interface {
	EnvConfig
	ActorConfig
	ContentConfig
}

type EnvConfig interface {
	GetAppName() string
	GetEnv() string
	GetLogLevel() string
	GetIdentitiesFile() string
}

type mainConfig struct {
	EnvVars
	Actor
	Content
}

func New() Config {
	return mainConfig{}
}
