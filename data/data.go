// Package data manages the issue store connection and repositories.
package data

import (
	"context"
	"fmt"
	"time"

	"github.com/ncobase/issues/data/config"
	"github.com/ncobase/issues/data/repository"
	"github.com/ncobase/issues/logging/logger"
	"go.mongodb.org/mongo-driver/event"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// Data encapsulates all data layer dependencies.
type Data struct {
	driver    string
	client    *mongo.Client
	IssueRepo repository.IssueRepository
}

// New opens the configured store and wires the issue repository.
func New(conf *config.Config, logger *logger.Logger) (*Data, error) {
	d := &Data{driver: conf.Driver}

	var repo repository.IssueRepository
	switch conf.Driver {
	case config.DriverMemory:
		repo = repository.NewMemoryRepository(logger)
		logger.Info(context.Background(), "using in-memory issue store")
	case config.DriverMongoDB, "":
		client, err := newMongoClient(conf.MongoDB, logger)
		if err != nil {
			return nil, err
		}
		d.client = client
		d.driver = config.DriverMongoDB
		collection := client.Database(conf.MongoDB.Database).Collection(conf.MongoDB.Collection)
		repo = repository.NewIssueRepository(collection, logger)
	default:
		return nil, fmt.Errorf("unsupported data driver %q", conf.Driver)
	}

	if conf.Breaker != nil && conf.Breaker.Enabled {
		repo = repository.NewBreakerRepository(repo, conf.Breaker, logger)
	}
	d.IssueRepo = repo

	return d, nil
}

// NewWithRepository wraps an existing repository, used by tests and tools.
func NewWithRepository(repo repository.IssueRepository) *Data {
	return &Data{driver: config.DriverMemory, IssueRepo: repo}
}

func newMongoClient(conf *config.MongoDB, logger *logger.Logger) (*mongo.Client, error) {
	ctx, cancel := context.WithTimeout(context.Background(), conf.ConnectTimeout)
	defer cancel()

	clientOptions := options.Client().ApplyURI(conf.URI)
	if conf.Logging {
		clientOptions.SetMonitor(&event.CommandMonitor{
			Started: func(ctx context.Context, e *event.CommandStartedEvent) {
				logger.Debug(ctx, "mongodb command", "command", e.CommandName, "request_id", e.RequestID)
			},
			Failed: func(ctx context.Context, e *event.CommandFailedEvent) {
				logger.Warn(ctx, "mongodb command failed", "command", e.CommandName, "error", e.Failure, "duration", e.Duration)
			},
		})
	}

	client, err := mongo.Connect(ctx, clientOptions)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to MongoDB: %w", err)
	}
	if err := client.Ping(ctx, nil); err != nil {
		_ = client.Disconnect(context.Background())
		return nil, fmt.Errorf("failed to ping MongoDB: %w", err)
	}

	logger.Info(ctx, "Connected to MongoDB successfully", "database", conf.Database, "collection", conf.Collection)
	return client, nil
}

// Driver returns the name of the active store driver.
func (d *Data) Driver() string {
	return d.driver
}

// Close closes the store connection.
func (d *Data) Close() error {
	if d.client == nil {
		return nil
	}
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	return d.client.Disconnect(ctx)
}
