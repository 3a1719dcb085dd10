// Package service contains the issue business logic.
package service

import (
	"github.com/google/wire"
	"github.com/ncobase/issues/data"
	"github.com/ncobase/issues/logging/logger"
)

// ProviderSet is the wire provider set for the service layer.
var ProviderSet = wire.NewSet(NewService)

// Service aggregates all business logic services.
type Service struct {
	Issue *IssueService
}

// NewService creates a new service instance with all sub-services initialized.
func NewService(d *data.Data, logger *logger.Logger) *Service {
	return &Service{
		Issue: NewIssueService(d, logger),
	}
}
