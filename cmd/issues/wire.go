//go:build wireinject
// +build wireinject

package main

import (
	"github.com/google/wire"
	"github.com/ncobase/issues/config"
	"github.com/ncobase/issues/data"
	"github.com/ncobase/issues/handler"
	"github.com/ncobase/issues/logging/logger"
	"github.com/ncobase/issues/service"
)

// InitializeApp wires up the entire application with all dependencies.
func InitializeApp(path config.Path) (*App, func(), error) {
	panic(wire.Build(
		config.ProviderSet,
		logger.ProviderSet,
		data.ProviderSet,
		service.ProviderSet,
		handler.ProviderSet,
		NewApp,
	))
}
