package data

import (
	"context"
	"time"
)

const healthTimeout = 2 * time.Second

// Health pings the store.
func (d *Data) Health(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, healthTimeout)
	defer cancel()
	return d.IssueRepo.Ping(ctx)
}
