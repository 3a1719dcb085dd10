package config

import (
	"time"

	"github.com/spf13/viper"
)

// Sentry config struct
type Sentry struct {
	Dsn         string `json:"dsn" yaml:"dsn"`
	Environment string `json:"environment" yaml:"environment"`
	Release     string `json:"release" yaml:"release"`
}

// getSentryConfig get sentry config
func getSentryConfig(v *viper.Viper) *Sentry {
	return &Sentry{
		Dsn:         v.GetString("observes.sentry.dsn"),
		Environment: v.GetString("observes.sentry.environment"),
		Release:     v.GetString("observes.sentry.release"),
	}
}

// Tracer config struct for OpenTelemetry
type Tracer struct {
	Endpoint      string        `json:"endpoint" yaml:"endpoint"` // OTLP gRPC endpoint, empty disables tracing
	SamplingRate  float64       `json:"sampling_rate" yaml:"sampling_rate"`
	BatchTimeout  time.Duration `json:"batch_timeout" yaml:"batch_timeout"`
	ExportTimeout time.Duration `json:"export_timeout" yaml:"export_timeout"`
}

// getTracerConfig get tracer config with defaults
func getTracerConfig(v *viper.Viper) *Tracer {
	return &Tracer{
		Endpoint:      v.GetString("observes.tracer.endpoint"),
		SamplingRate:  getFloat64OrDefault(v, "observes.tracer.sampling_rate", 1.0),
		BatchTimeout:  getDurationOrDefault(v, "observes.tracer.batch_timeout", 5*time.Second),
		ExportTimeout: getDurationOrDefault(v, "observes.tracer.export_timeout", 30*time.Second),
	}
}

// Observes config struct
type Observes struct {
	Sentry *Sentry
	Tracer *Tracer
}

// get Observes config
func getObservesConfig(v *viper.Viper) *Observes {
	return &Observes{
		Sentry: getSentryConfig(v),
		Tracer: getTracerConfig(v),
	}
}
