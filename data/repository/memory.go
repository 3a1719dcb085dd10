package repository

import (
	"context"
	"sort"
	"sync"

	"github.com/ncobase/issues/logging/logger"
	"github.com/ncobase/issues/structs"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

type memoryEntry struct {
	issue structs.Issue
	seq   uint64
}

type memoryRepository struct {
	mu      sync.RWMutex
	entries map[string]*memoryEntry
	seq     uint64
	logger  *logger.Logger
}

// NewMemoryRepository creates an issue repository held in process memory.
func NewMemoryRepository(logger *logger.Logger) IssueRepository {
	return &memoryRepository{
		entries: make(map[string]*memoryEntry),
		logger:  logger,
	}
}

func (r *memoryRepository) List(_ context.Context) ([]*structs.Issue, error) {
	r.mu.RLock()
	entries := make([]*memoryEntry, 0, len(r.entries))
	for _, e := range r.entries {
		entries = append(entries, e)
	}
	r.mu.RUnlock()

	sort.Slice(entries, func(i, j int) bool {
		a, b := entries[i], entries[j]
		if !a.issue.CreatedAt.Equal(b.issue.CreatedAt) {
			return a.issue.CreatedAt.After(b.issue.CreatedAt)
		}
		return a.seq > b.seq
	})

	issues := make([]*structs.Issue, 0, len(entries))
	for _, e := range entries {
		issues = append(issues, copyIssue(&e.issue))
	}
	return issues, nil
}

func (r *memoryRepository) Create(ctx context.Context, issue *structs.Issue) (*structs.Issue, error) {
	stored := *copyIssue(issue)
	stored.ID = primitive.NewObjectID().Hex()

	r.mu.Lock()
	r.seq++
	r.entries[stored.ID] = &memoryEntry{issue: stored, seq: r.seq}
	r.mu.Unlock()

	r.logger.Info(ctx, "issue created", "id", stored.ID)
	return copyIssue(&stored), nil
}

func (r *memoryRepository) FindByID(_ context.Context, id string) (*structs.Issue, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	e, ok := r.entries[id]
	if !ok {
		return nil, ErrNotFound
	}
	return copyIssue(&e.issue), nil
}

func (r *memoryRepository) Update(ctx context.Context, id string, patch structs.IssuePatch) (*structs.Issue, error) {
	r.mu.Lock()
	e, ok := r.entries[id]
	if !ok {
		r.mu.Unlock()
		return nil, ErrNotFound
	}
	patch.Apply(&e.issue)
	updated := copyIssue(&e.issue)
	r.mu.Unlock()

	r.logger.Info(ctx, "issue updated", "id", id)
	return updated, nil
}

func (r *memoryRepository) Delete(ctx context.Context, id string) error {
	r.mu.Lock()
	_, ok := r.entries[id]
	delete(r.entries, id)
	r.mu.Unlock()

	if !ok {
		return ErrNotFound
	}
	r.logger.Info(ctx, "issue deleted", "id", id)
	return nil
}

func (r *memoryRepository) Ping(_ context.Context) error {
	return nil
}

func copyIssue(issue *structs.Issue) *structs.Issue {
	c := *issue
	if issue.DueDate != nil {
		d := *issue.DueDate
		c.DueDate = &d
	}
	return &c
}
