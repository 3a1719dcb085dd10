package data

import (
	"context"

	"github.com/google/wire"
	"github.com/ncobase/issues/data/config"
	"github.com/ncobase/issues/logging/logger"
)

// ProviderSet is the wire provider set for the data package.
var ProviderSet = wire.NewSet(ProvideData)

// ProvideData opens the store; the cleanup function closes it.
func ProvideData(conf *config.Config, logger *logger.Logger) (*Data, func(), error) {
	d, err := New(conf, logger)
	if err != nil {
		return nil, nil, err
	}
	cleanup := func() {
		if err := d.Close(); err != nil {
			logger.Error(context.Background(), "failed to close store", "error", err)
		}
	}
	return d, cleanup, nil
}
