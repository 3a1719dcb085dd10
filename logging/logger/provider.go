package logger

import (
	"github.com/google/wire"
	"github.com/ncobase/issues/logging/logger/config"
	"github.com/ncobase/issues/version"
)

// ProviderSet is the wire provider set for the logger package
var ProviderSet = wire.NewSet(ProvideLogger)

// ProvideLogger builds the application logger stamped with the build version.
func ProvideLogger(cfg *config.Config) (*Logger, func(), error) {
	l, cleanup, err := New(cfg)
	if err != nil {
		return nil, nil, err
	}
	l.SetVersion(version.Version)
	return l, cleanup, nil
}
