package service

import (
	"context"
	"errors"
	"strings"
	"time"

	govalidator "github.com/go-playground/validator/v10"
	"github.com/ncobase/issues/data"
	"github.com/ncobase/issues/data/repository"
	"github.com/ncobase/issues/logging/logger"
	"github.com/ncobase/issues/logging/observes"
	"github.com/ncobase/issues/structs"
	"github.com/ncobase/issues/validation/validator"
	"go.opentelemetry.io/otel/trace"
)

const (
	statusRule    = "issue_status"
	statusMessage = "%s must be one of New, Assigned, In Progress, Resolved, Closed"
)

// IssueService handles issue-related business logic.
type IssueService struct {
	data      *data.Data
	validator *validator.Validator
	logger    *logger.Logger
	now       func() time.Time
}

// Option configures an IssueService.
type Option func(*IssueService)

// WithClock replaces the clock used for createdAt.
func WithClock(now func() time.Time) Option {
	return func(s *IssueService) {
		s.now = now
	}
}

// NewIssueService creates a new issue service.
func NewIssueService(d *data.Data, logger *logger.Logger, opts ...Option) *IssueService {
	v := validator.New()
	err := v.RegisterRule(statusRule, func(fl govalidator.FieldLevel) bool {
		return structs.Status(fl.Field().String()).IsValid()
	}, statusMessage)
	if err != nil {
		panic(err)
	}

	s := &IssueService{
		data:      d,
		validator: v,
		logger:    logger,
		now:       time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// List returns all issues, newest first.
func (s *IssueService) List(ctx context.Context) ([]*structs.Issue, error) {
	ctx, span := observes.StartSpan(ctx, observes.LayerService, "IssueService.List")
	defer span.End()

	issues, err := s.data.IssueRepo.List(ctx)
	if err != nil {
		return nil, s.storageError(ctx, span, OpList, err)
	}
	return issues, nil
}

// Create validates req and stores a new issue.
func (s *IssueService) Create(ctx context.Context, req *structs.CreateIssueRequest) (*structs.Issue, error) {
	ctx, span := observes.StartSpan(ctx, observes.LayerService, "IssueService.Create")
	defer span.End()

	req.Title = strings.TrimSpace(req.Title)
	req.Owner = strings.TrimSpace(req.Owner)
	if req.Status == "" {
		req.Status = structs.StatusNew
	}

	if fields := s.validator.ValidateStruct(req); len(fields) > 0 {
		err := &ValidationError{Fields: fields}
		s.logger.Debug(ctx, "issue rejected", "op", OpCreate, "error", err)
		return nil, err
	}

	issue := &structs.Issue{
		Title:     req.Title,
		Owner:     req.Owner,
		Status:    req.Status,
		CreatedAt: s.createdAt(),
	}
	if req.Effort != nil {
		issue.Effort = *req.Effort
	}
	if req.DueDate != nil && !req.DueDate.IsZero() {
		due := *req.DueDate
		issue.DueDate = &due
	}

	created, err := s.data.IssueRepo.Create(ctx, issue)
	if err != nil {
		return nil, s.storageError(ctx, span, OpCreate, err)
	}
	s.logger.Info(ctx, "issue created", "id", created.ID)
	return created, nil
}

// createdAt is the clock reading in UTC at the store's millisecond
// precision, rounded up so it never precedes the request.
func (s *IssueService) createdAt() time.Time {
	now := s.now().UTC()
	t := now.Truncate(time.Millisecond)
	if t.Before(now) {
		t = t.Add(time.Millisecond)
	}
	return t
}

func (s *IssueService) storageError(ctx context.Context, span trace.Span, op string, err error) error {
	observes.RecordError(span, err)
	s.logger.Error(ctx, "issue store failure", "op", op, "error", err)
	return &StorageError{Op: op, Err: err}
}

// Update merges the members present in req into the stored issue.
func (s *IssueService) Update(ctx context.Context, id string, req *structs.UpdateIssueRequest) (*structs.Issue, error) {
	patch, err := s.buildPatch(req)
	if err != nil {
		s.logger.Debug(ctx, "issue rejected", "op", OpUpdate, "id", id, "error", err)
		return nil, err
	}

	ctx, span := observes.StartSpan(ctx, observes.LayerService, "IssueService.Update")
	defer span.End()

	updated, err := s.data.IssueRepo.Update(ctx, id, patch)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrNotFound
		}
		return nil, s.storageError(ctx, span, OpUpdate, err)
	}
	return updated, nil
}

// Delete removes the issue with id.
func (s *IssueService) Delete(ctx context.Context, id string) error {
	ctx, span := observes.StartSpan(ctx, observes.LayerService, "IssueService.Delete")
	defer span.End()

	if err := s.data.IssueRepo.Delete(ctx, id); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return ErrNotFound
		}
		return s.storageError(ctx, span, OpDelete, err)
	}
	s.logger.Info(ctx, "issue deleted", "id", id)
	return nil
}

// Health reports whether the store answers.
func (s *IssueService) Health(ctx context.Context) error {
	if err := s.data.Health(ctx); err != nil {
		s.logger.Warn(ctx, "store health check failed", "driver", s.data.Driver(), "error", err)
		return err
	}
	return nil
}

// buildPatch validates the members present in req.
func (s *IssueService) buildPatch(req *structs.UpdateIssueRequest) (structs.IssuePatch, error) {
	var patch structs.IssuePatch
	fields := make(map[string]string)

	check := func(name string, null bool, value any, tag string) bool {
		if null {
			fields[name] = name + " must not be null"
			return false
		}
		if msg := s.validator.ValidateVar(name, value, tag); msg != "" {
			fields[name] = msg
			return false
		}
		return true
	}

	if req.Title.Set {
		title := strings.TrimSpace(req.Title.Value)
		if check("title", req.Title.Null, title, "required") {
			patch.Title = &title
		}
	}
	if req.Owner.Set {
		owner := strings.TrimSpace(req.Owner.Value)
		if check("owner", req.Owner.Null, owner, "required") {
			patch.Owner = &owner
		}
	}
	if req.Status.Set {
		status := req.Status.Value
		if check("status", req.Status.Null, string(status), "required,"+statusRule) {
			patch.Status = &status
		}
	}
	if req.Effort.Set {
		effort := req.Effort.Value
		if check("effort", req.Effort.Null, effort, "gte=0") {
			patch.Effort = &effort
		}
	}
	if req.DueDate.Set {
		if req.DueDate.Null || req.DueDate.Value.IsZero() {
			patch.ClearDueDate = true
		} else {
			due := req.DueDate.Value
			patch.DueDate = &due
		}
	}

	if len(fields) > 0 {
		return structs.IssuePatch{}, &ValidationError{Fields: fields}
	}
	return patch, nil
}
