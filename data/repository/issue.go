package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/ncobase/issues/logging/logger"
	"github.com/ncobase/issues/structs"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.mongodb.org/mongo-driver/mongo/readpref"
)

// issueDocument is the stored shape of an issue.
type issueDocument struct {
	ID        primitive.ObjectID `bson:"_id,omitempty"`
	Title     string             `bson:"title"`
	Owner     string             `bson:"owner"`
	Status    structs.Status     `bson:"status"`
	CreatedAt time.Time          `bson:"createdAt"`
	Effort    float64            `bson:"effort"`
	DueDate   *structs.Date      `bson:"dueDate,omitempty"`
}

func (d *issueDocument) toIssue() *structs.Issue {
	return &structs.Issue{
		ID:        d.ID.Hex(),
		Title:     d.Title,
		Owner:     d.Owner,
		Status:    d.Status,
		CreatedAt: d.CreatedAt.UTC(),
		Effort:    d.Effort,
		DueDate:   d.DueDate,
	}
}

var newestFirst = bson.D{{Key: "createdAt", Value: -1}, {Key: "_id", Value: -1}}

type issueRepository struct {
	collection *mongo.Collection
	logger     *logger.Logger
}

// NewIssueRepository creates a MongoDB-backed issue repository.
func NewIssueRepository(collection *mongo.Collection, logger *logger.Logger) IssueRepository {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	indexModel := mongo.IndexModel{
		Keys:    newestFirst,
		Options: options.Index().SetName("createdAt_desc"),
	}
	if _, err := collection.Indexes().CreateOne(ctx, indexModel); err != nil {
		logger.Warn(ctx, "failed to create index on createdAt", "error", err)
	}

	return &issueRepository{
		collection: collection,
		logger:     logger,
	}
}

// List retrieves all issues, newest first.
func (r *issueRepository) List(ctx context.Context) ([]*structs.Issue, error) {
	cursor, err := r.collection.Find(ctx, bson.M{}, options.Find().SetSort(newestFirst))
	if err != nil {
		r.logger.Error(ctx, "failed to list issues", "error", err)
		return nil, fmt.Errorf("failed to list issues: %w", err)
	}
	defer cursor.Close(ctx)

	var docs []*issueDocument
	if err := cursor.All(ctx, &docs); err != nil {
		r.logger.Error(ctx, "failed to decode issues", "error", err)
		return nil, fmt.Errorf("failed to decode issues: %w", err)
	}

	issues := make([]*structs.Issue, 0, len(docs))
	for _, doc := range docs {
		issues = append(issues, doc.toIssue())
	}
	return issues, nil
}

// Create inserts a new issue.
func (r *issueRepository) Create(ctx context.Context, issue *structs.Issue) (*structs.Issue, error) {
	doc := &issueDocument{
		ID:        primitive.NewObjectID(),
		Title:     issue.Title,
		Owner:     issue.Owner,
		Status:    issue.Status,
		CreatedAt: issue.CreatedAt,
		Effort:    issue.Effort,
		DueDate:   issue.DueDate,
	}

	if _, err := r.collection.InsertOne(ctx, doc); err != nil {
		r.logger.Error(ctx, "failed to create issue", "error", err)
		return nil, fmt.Errorf("failed to create issue: %w", err)
	}

	r.logger.Info(ctx, "issue created", "id", doc.ID.Hex())
	return doc.toIssue(), nil
}

// FindByID retrieves an issue by ID.
func (r *issueRepository) FindByID(ctx context.Context, id string) (*structs.Issue, error) {
	objectID, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return nil, ErrNotFound
	}

	var doc issueDocument
	if err := r.collection.FindOne(ctx, bson.M{"_id": objectID}).Decode(&doc); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, ErrNotFound
		}
		r.logger.Error(ctx, "failed to find issue", "id", id, "error", err)
		return nil, fmt.Errorf("failed to find issue: %w", err)
	}

	return doc.toIssue(), nil
}

// Update applies patch with a single find-and-modify.
func (r *issueRepository) Update(ctx context.Context, id string, patch structs.IssuePatch) (*structs.Issue, error) {
	if patch.IsEmpty() {
		return r.FindByID(ctx, id)
	}

	objectID, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return nil, ErrNotFound
	}

	result := r.collection.FindOneAndUpdate(
		ctx,
		bson.M{"_id": objectID},
		patchDocument(patch),
		options.FindOneAndUpdate().SetReturnDocument(options.After),
	)
	if err := result.Err(); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, ErrNotFound
		}
		r.logger.Error(ctx, "failed to update issue", "id", id, "error", err)
		return nil, fmt.Errorf("failed to update issue: %w", err)
	}

	var doc issueDocument
	if err := result.Decode(&doc); err != nil {
		return nil, fmt.Errorf("failed to decode updated issue: %w", err)
	}

	r.logger.Info(ctx, "issue updated", "id", id)
	return doc.toIssue(), nil
}

// Delete removes an issue by ID.
func (r *issueRepository) Delete(ctx context.Context, id string) error {
	objectID, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return ErrNotFound
	}

	result, err := r.collection.DeleteOne(ctx, bson.M{"_id": objectID})
	if err != nil {
		r.logger.Error(ctx, "failed to delete issue", "id", id, "error", err)
		return fmt.Errorf("failed to delete issue: %w", err)
	}
	if result.DeletedCount == 0 {
		return ErrNotFound
	}

	r.logger.Info(ctx, "issue deleted", "id", id)
	return nil
}

// Ping checks the primary is reachable.
func (r *issueRepository) Ping(ctx context.Context) error {
	return r.collection.Database().Client().Ping(ctx, readpref.Primary())
}

// patchDocument builds the $set / $unset update for patch.
func patchDocument(patch structs.IssuePatch) bson.M {
	set := bson.M{}
	if patch.Title != nil {
		set["title"] = *patch.Title
	}
	if patch.Owner != nil {
		set["owner"] = *patch.Owner
	}
	if patch.Status != nil {
		set["status"] = *patch.Status
	}
	if patch.Effort != nil {
		set["effort"] = *patch.Effort
	}
	if patch.DueDate != nil {
		set["dueDate"] = *patch.DueDate
	}

	update := bson.M{}
	if len(set) > 0 {
		update["$set"] = set
	}
	if patch.ClearDueDate && patch.DueDate == nil {
		update["$unset"] = bson.M{"dueDate": ""}
	}
	return update
}
