package handler

import (
	"errors"
	"io"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/ncobase/issues/ecode"
	"github.com/ncobase/issues/logging/logger"
	"github.com/ncobase/issues/logging/observes"
	"github.com/ncobase/issues/net/resp"
	"github.com/ncobase/issues/service"
	"github.com/ncobase/issues/structs"
)

const (
	runningMessage = "Issue Tracker API is running"
	deletedMessage = "Issue deleted successfully"
)

// IssueHandler handles HTTP requests for issues.
type IssueHandler struct {
	svc    *service.IssueService
	logger *logger.Logger
}

// NewIssueHandler creates a new issue handler.
func NewIssueHandler(svc *service.IssueService, logger *logger.Logger) *IssueHandler {
	return &IssueHandler{
		svc:    svc,
		logger: logger,
	}
}

// Root answers the liveness probe.
func (h *IssueHandler) Root(c *gin.Context) {
	resp.Success(c.Writer, runningMessage)
}

// Health reports whether the store is reachable.
func (h *IssueHandler) Health(c *gin.Context) {
	if err := h.svc.Health(c.Request.Context()); err != nil {
		resp.Fail(c.Writer, resp.ServiceUnavailable("Storage unavailable"))
		return
	}
	resp.Success(c.Writer, map[string]string{"status": "healthy"})
}

// List handles issue listing.
func (h *IssueHandler) List(c *gin.Context) {
	issues, err := h.svc.List(c.Request.Context())
	if err != nil {
		h.fail(c, service.OpList, err)
		return
	}
	resp.Success(c.Writer, issues)
}

// Create handles issue creation.
func (h *IssueHandler) Create(c *gin.Context) {
	var req structs.CreateIssueRequest
	if err := bindJSON(c, &req); err != nil {
		h.fail(c, service.OpCreate, err)
		return
	}

	issue, err := h.svc.Create(c.Request.Context(), &req)
	if err != nil {
		h.fail(c, service.OpCreate, err)
		return
	}
	resp.WithStatusCode(c.Writer, http.StatusCreated, issue)
}

// Update handles partial issue updates.
func (h *IssueHandler) Update(c *gin.Context) {
	id := c.Param("id")

	var req structs.UpdateIssueRequest
	if err := bindJSON(c, &req); err != nil {
		h.fail(c, service.OpUpdate, err)
		return
	}

	issue, err := h.svc.Update(c.Request.Context(), id, &req)
	if err != nil {
		h.fail(c, service.OpUpdate, err)
		return
	}
	resp.Success(c.Writer, issue)
}

// Delete handles issue deletion.
func (h *IssueHandler) Delete(c *gin.Context) {
	if err := h.svc.Delete(c.Request.Context(), c.Param("id")); err != nil {
		h.fail(c, service.OpDelete, err)
		return
	}
	resp.Success(c.Writer, deletedMessage)
}

// bindJSON decodes the body into obj; an empty body decodes as {}.
func bindJSON(c *gin.Context, obj any) error {
	if err := c.ShouldBindJSON(obj); err != nil && !errors.Is(err, io.EOF) {
		return service.NewValidationError("body", "invalid request body")
	}
	return nil
}

// fail maps service errors onto HTTP responses.
func (h *IssueHandler) fail(c *gin.Context, op string, err error) {
	ctx := c.Request.Context()

	var validationErr *service.ValidationError
	switch {
	case errors.As(err, &validationErr):
		h.logger.Warn(ctx, "rejected issue request", "op", op, "error", err)
		resp.Fail(c.Writer, resp.BadRequest(ecode.Failed(op)+": "+validationErr.Error()))
	case errors.Is(err, service.ErrNotFound):
		h.logger.Warn(ctx, "issue not found", "op", op, "id", c.Param("id"))
		resp.Fail(c.Writer, resp.NotFound(ecode.NotExist("Issue")))
	default:
		h.logger.Error(ctx, ecode.Failed(op), "error", err)
		observes.CaptureError(ctx, err)
		resp.Fail(c.Writer, resp.InternalServer(ecode.Failed(op)))
	}
}
