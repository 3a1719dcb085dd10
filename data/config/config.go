package config

import (
	"github.com/spf13/viper"
)

// Driver names accepted by data.driver
const (
	DriverMongoDB = "mongodb"
	DriverMemory  = "memory"
)

// Config data config struct
type Config struct {
	Driver   string `yaml:"driver" json:"driver"`
	*MongoDB `yaml:"mongodb" json:"mongodb"`
	*Breaker `yaml:"breaker" json:"breaker"`
}

// GetConfig returns data config
func GetConfig(v *viper.Viper) *Config {
	return &Config{
		Driver:  getStringOrDefault(v, "data.driver", DriverMongoDB),
		MongoDB: getMongoDBConfig(v),
		Breaker: getBreakerConfig(v),
	}
}

// getStringOrDefault returns string value or default
func getStringOrDefault(v *viper.Viper, key, defaultValue string) string {
	if v.IsSet(key) && v.GetString(key) != "" {
		return v.GetString(key)
	}
	return defaultValue
}
