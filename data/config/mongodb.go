package config

import (
	"time"

	"github.com/spf13/viper"
)

// MongoDB mongodb config struct
type MongoDB struct {
	URI            string        `json:"uri"`
	Database       string        `json:"database"`
	Collection     string        `json:"collection"`
	ConnectTimeout time.Duration `json:"connect_timeout"`
	Logging        bool          `json:"logging"`
}

// getMongoDBConfig reads MongoDB configuration
func getMongoDBConfig(v *viper.Viper) *MongoDB {
	timeout := 10 * time.Second
	if v.IsSet("data.mongodb.connect_timeout") {
		timeout = v.GetDuration("data.mongodb.connect_timeout")
	}
	return &MongoDB{
		URI:            getStringOrDefault(v, "data.mongodb.uri", "mongodb://127.0.0.1:27017/issue_tracker"),
		Database:       getStringOrDefault(v, "data.mongodb.database", "issue_tracker"),
		Collection:     getStringOrDefault(v, "data.mongodb.collection", "issues"),
		ConnectTimeout: timeout,
		Logging:        v.GetBool("data.mongodb.logging"),
	}
}
