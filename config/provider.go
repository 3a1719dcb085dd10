package config

import "github.com/google/wire"

// ProviderSet is the wire provider set for the config package.
// It provides the main *Config and extracts sub-configurations for
// other modules to use.
var ProviderSet = wire.NewSet(
	ProvideConfig,
	ProvideLoggerConfig,
	ProvideDataConfig,
	ProvideObservesConfig,
)

// ProvideConfig loads the configuration from path.
func ProvideConfig(path Path) (*Config, error) {
	return LoadConfig(string(path))
}

// ProvideLoggerConfig provides the logger configuration.
func ProvideLoggerConfig(cfg *Config) *Logger {
	if cfg == nil {
		return nil
	}
	return cfg.Logger
}

// ProvideDataConfig provides the data layer configuration.
func ProvideDataConfig(cfg *Config) *Data {
	if cfg == nil {
		return nil
	}
	return cfg.Data
}

// ProvideObservesConfig provides the observability configuration.
func ProvideObservesConfig(cfg *Config) *Observes {
	if cfg == nil {
		return nil
	}
	return cfg.Observes
}
