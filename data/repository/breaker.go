package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/ncobase/issues/data/config"
	"github.com/ncobase/issues/logging/logger"
	"github.com/ncobase/issues/structs"
	"github.com/sony/gobreaker"
)

type breakerRepository struct {
	next IssueRepository
	cb   *gobreaker.CircuitBreaker
}

// NewBreakerRepository guards next with a circuit breaker. While the
// breaker is open calls fail fast with ErrUnavailable.
func NewBreakerRepository(next IssueRepository, conf *config.Breaker, logger *logger.Logger) IssueRepository {
	cb := gobreaker.NewCircuitBreaker(gobreaker.Settings{
		Name:        "issues",
		MaxRequests: conf.MaxRequests,
		Interval:    conf.Interval,
		Timeout:     conf.Timeout,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			if counts.Requests < conf.MinRequests {
				return false
			}
			failureRatio := float64(counts.TotalFailures) / float64(counts.Requests)
			return failureRatio >= conf.FailureRatio
		},
		// A missing issue or a cancelled request says nothing about store health.
		IsSuccessful: func(err error) bool {
			return err == nil ||
				errors.Is(err, ErrNotFound) ||
				errors.Is(err, context.Canceled)
		},
		OnStateChange: func(name string, from, to gobreaker.State) {
			logger.Warn(context.Background(), "store circuit breaker state changed",
				"breaker", name, "from", from.String(), "to", to.String())
		},
	})

	return &breakerRepository{next: next, cb: cb}
}

func execute[T any](b *breakerRepository, fn func() (T, error)) (T, error) {
	res, err := b.cb.Execute(func() (any, error) {
		return fn()
	})
	if err != nil {
		var zero T
		if errors.Is(err, gobreaker.ErrOpenState) || errors.Is(err, gobreaker.ErrTooManyRequests) {
			return zero, fmt.Errorf("%w: %v", ErrUnavailable, err)
		}
		return zero, err
	}
	v, _ := res.(T)
	return v, nil
}

func (b *breakerRepository) List(ctx context.Context) ([]*structs.Issue, error) {
	return execute(b, func() ([]*structs.Issue, error) {
		return b.next.List(ctx)
	})
}

func (b *breakerRepository) Create(ctx context.Context, issue *structs.Issue) (*structs.Issue, error) {
	return execute(b, func() (*structs.Issue, error) {
		return b.next.Create(ctx, issue)
	})
}

func (b *breakerRepository) FindByID(ctx context.Context, id string) (*structs.Issue, error) {
	return execute(b, func() (*structs.Issue, error) {
		return b.next.FindByID(ctx, id)
	})
}

func (b *breakerRepository) Update(ctx context.Context, id string, patch structs.IssuePatch) (*structs.Issue, error) {
	return execute(b, func() (*structs.Issue, error) {
		return b.next.Update(ctx, id, patch)
	})
}

func (b *breakerRepository) Delete(ctx context.Context, id string) error {
	_, err := execute(b, func() (struct{}, error) {
		return struct{}{}, b.next.Delete(ctx, id)
	})
	return err
}

// Ping bypasses the breaker so health checks see the real store.
func (b *breakerRepository) Ping(ctx context.Context) error {
	return b.next.Ping(ctx)
}
