// Package repository provides issue persistence.
package repository

import (
	"context"
	"errors"

	"github.com/ncobase/issues/structs"
)

var (
	// ErrNotFound is returned when no issue matches the id.
	ErrNotFound = errors.New("issue not found")
	// ErrUnavailable is returned while the store is considered down.
	ErrUnavailable = errors.New("store unavailable")
)

// IssueRepository defines the interface for issue data operations.
type IssueRepository interface {
	// List returns every issue, newest first.
	List(ctx context.Context) ([]*structs.Issue, error)
	// Create stores issue and assigns its ID.
	Create(ctx context.Context, issue *structs.Issue) (*structs.Issue, error)
	FindByID(ctx context.Context, id string) (*structs.Issue, error)
	// Update applies patch atomically and returns the stored result.
	Update(ctx context.Context, id string, patch structs.IssuePatch) (*structs.Issue, error)
	Delete(ctx context.Context, id string) error
	Ping(ctx context.Context) error
}
