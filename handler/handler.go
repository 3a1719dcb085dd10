// Package handler provides the HTTP handlers of the issue store API.
package handler

import (
	"github.com/gin-gonic/gin"
	"github.com/google/wire"
	"github.com/ncobase/issues/logging/logger"
	"github.com/ncobase/issues/service"
)

// ProviderSet is the wire provider set for the handler layer.
var ProviderSet = wire.NewSet(NewHandler)

// Handler aggregates all HTTP handlers.
type Handler struct {
	Issue *IssueHandler
}

// NewHandler creates a new handler instance with all sub-handlers initialized.
func NewHandler(svc *service.Service, logger *logger.Logger) *Handler {
	return &Handler{
		Issue: NewIssueHandler(svc.Issue, logger),
	}
}

// RegisterRoutes registers all HTTP routes.
func (h *Handler) RegisterRoutes(r gin.IRouter) {
	r.GET("/", h.Issue.Root)
	r.GET("/health", h.Issue.Health)

	issues := r.Group("/issues")
	{
		issues.GET("", h.Issue.List)
		issues.POST("", h.Issue.Create)
		issues.PUT("/:id", h.Issue.Update)
		issues.DELETE("/:id", h.Issue.Delete)
	}
}
