package config

import (
	"time"

	"github.com/spf13/viper"
)

// Breaker circuit breaker settings guarding store calls
type Breaker struct {
	Enabled      bool          `json:"enabled"`
	MaxRequests  uint32        `json:"max_requests"`  // probes allowed while half-open
	Interval     time.Duration `json:"interval"`      // closed-state counter reset period
	Timeout      time.Duration `json:"timeout"`       // open-state duration
	MinRequests  uint32        `json:"min_requests"`  // requests before the ratio is considered
	FailureRatio float64       `json:"failure_ratio"` // trip threshold
}

// getBreakerConfig reads breaker configuration with defaults
func getBreakerConfig(v *viper.Viper) *Breaker {
	b := &Breaker{
		Enabled:      true,
		MaxRequests:  5,
		Interval:     10 * time.Second,
		Timeout:      5 * time.Second,
		MinRequests:  5,
		FailureRatio: 0.6,
	}
	if v.IsSet("data.breaker.enabled") {
		b.Enabled = v.GetBool("data.breaker.enabled")
	}
	if v.IsSet("data.breaker.max_requests") {
		b.MaxRequests = v.GetUint32("data.breaker.max_requests")
	}
	if v.IsSet("data.breaker.interval") {
		b.Interval = v.GetDuration("data.breaker.interval")
	}
	if v.IsSet("data.breaker.timeout") {
		b.Timeout = v.GetDuration("data.breaker.timeout")
	}
	if v.IsSet("data.breaker.min_requests") {
		b.MinRequests = v.GetUint32("data.breaker.min_requests")
	}
	if v.IsSet("data.breaker.failure_ratio") {
		b.FailureRatio = v.GetFloat64("data.breaker.failure_ratio")
	}
	return b
}
