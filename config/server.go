package config

import (
	"time"

	"github.com/spf13/viper"
)

// Server http server settings
type Server struct {
	CORS *CORS `json:"cors" yaml:"cors"`
}

// CORS cross-origin settings
type CORS struct {
	AllowOrigins     []string `json:"allow_origins" yaml:"allow_origins"`
	AllowCredentials bool     `json:"allow_credentials" yaml:"allow_credentials"`
}

func getServerConfig(v *viper.Viper) *Server {
	return &Server{
		CORS: &CORS{
			AllowOrigins:     v.GetStringSlice("server.cors.allow_origins"),
			AllowCredentials: v.GetBool("server.cors.allow_credentials"),
		},
	}
}

// Client terminal client settings
type Client struct {
	APIURL  string        `json:"api_url" yaml:"api_url"`
	Timeout time.Duration `json:"timeout" yaml:"timeout"` // 0 keeps the transport default
}

func getClientConfig(v *viper.Viper) *Client {
	return &Client{
		APIURL:  v.GetString("client.api_url"),
		Timeout: getDurationOrDefault(v, "client.timeout", 0),
	}
}
