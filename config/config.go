package config

import (
	"errors"
	"fmt"
	"io/fs"
	"strings"
	"sync"

	"github.com/fsnotify/fsnotify"
	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// EnvPrefix prefixes every environment override, e.g. ISSUES_SERVER_PORT.
const EnvPrefix = "ISSUES"

// Path is the explicit config file path, empty to search the defaults.
type Path string

// Config represents the configuration implementation.
type Config struct {
	AppName     string
	Environment string
	Host        string
	Port        int
	Server      *Server
	Logger      *Logger
	Data        *Data
	Observes    *Observes
	Client      *Client
	Viper       *viper.Viper

	mu sync.Mutex
}

// LoadConfig loads .env, the config file and ISSUES_* environment
// variables. A missing config file is not an error unless configPath
// names it explicitly.
func LoadConfig(configPath string) (*Config, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("failed to load .env: %w", err)
	}

	v := viper.New()
	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	setDefaults(v)

	if configPath != "" {
		v.SetConfigFile(configPath)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
	} else {
		v.SetConfigName("config")
		v.SetConfigType("yaml")
		v.AddConfigPath(".")
		v.AddConfigPath("$HOME/.issues")
		v.AddConfigPath("/etc/issues")
		if err := v.ReadInConfig(); err != nil {
			var notFound viper.ConfigFileNotFoundError
			if !errors.As(err, &notFound) {
				return nil, fmt.Errorf("failed to read config file: %w", err)
			}
		}
	}

	return fromViper(v), nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("app_name", "issues")
	v.SetDefault("environment", "release")
	v.SetDefault("server.host", "")
	v.SetDefault("server.port", 5000)
	v.SetDefault("server.cors.allow_origins", []string{"*"})
	v.SetDefault("client.api_url", "http://localhost:5000")
}

func fromViper(v *viper.Viper) *Config {
	return &Config{
		AppName:     v.GetString("app_name"),
		Environment: v.GetString("environment"),
		Host:        v.GetString("server.host"),
		Port:        v.GetInt("server.port"),
		Server:      getServerConfig(v),
		Logger:      getLoggerConfig(v),
		Data:        getDataConfig(v),
		Observes:    getObservesConfig(v),
		Client:      getClientConfig(v),
		Viper:       v,
	}
}

// Addr returns the listen address.
func (c *Config) Addr() string {
	return fmt.Sprintf("%s:%d", c.Host, c.Port)
}

// IsProd reports whether gin runs in release mode.
func (c *Config) IsProd() bool {
	return c.Environment == "" || c.Environment == "release"
}

// Watch re-reads the config file on change and hands the fresh
// configuration to callback. Without a config file it does nothing.
func (c *Config) Watch(callback func(*Config)) {
	if c.Viper == nil || c.Viper.ConfigFileUsed() == "" {
		return
	}
	c.Viper.OnConfigChange(func(fsnotify.Event) {
		c.mu.Lock()
		defer c.mu.Unlock()
		callback(fromViper(c.Viper))
	})
	c.Viper.WatchConfig()
}
