package task

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"taskhub/pkg/apperr"
)

// MongoRepo keeps every lookup owner-scoped: the owner id is part of each
// filter, so a task under another account is indistinguishable from one that
// does not exist.
type MongoRepo struct {
	collection *mongo.Collection
}

func NewMongoRepo(db *mongo.Database) *MongoRepo {
	return &MongoRepo{
		collection: db.Collection("tasks"),
	}
}

func (r *MongoRepo) Create(ctx context.Context, t *Task) error {
	now := time.Now().UTC()
	t.CreatedAt = now
	t.UpdatedAt = now

	result, err := r.collection.InsertOne(ctx, t)
	if err != nil {
		return fmt.Errorf("insert task: %w", err)
	}

	oid, ok := result.InsertedID.(primitive.ObjectID)
	if !ok {
		return errors.New("failed to convert inserted ID to ObjectID")
	}
	t.MongoID = oid
	t.ID = oid.Hex()

	return nil
}

func (r *MongoRepo) FindOne(ctx context.Context, ownerID, taskID string) (*Task, error) {
	filter, err := ownedFilter(ownerID, taskID)
	if err != nil {
		return nil, err
	}

	var t Task
	err = r.collection.FindOne(ctx, filter).Decode(&t)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, apperr.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("fetch task: %w", err)
	}

	t.ID = t.MongoID.Hex()
	return &t, nil
}

// FindByOwner runs a fresh query each call and drains the cursor, so a
// repeated listing is a new consistent-as-of-now snapshot.
func (r *MongoRepo) FindByOwner(ctx context.Context, ownerID string, opts ListOptions) ([]*Task, error) {
	filter := bson.M{"owner": ownerID}
	if opts.Completed != nil {
		filter["completed"] = *opts.Completed
	}

	findOpts := options.Find()
	if opts.SortField != "" {
		direction := 1
		if opts.SortDesc {
			direction = -1
		}
		findOpts.SetSort(bson.D{{Key: opts.SortField, Value: direction}})
	}
	if opts.Limit > 0 {
		findOpts.SetLimit(opts.Limit)
	}
	if opts.Skip > 0 {
		findOpts.SetSkip(opts.Skip)
	}

	cursor, err := r.collection.Find(ctx, filter, findOpts)
	if err != nil {
		return nil, fmt.Errorf("list tasks: %w", err)
	}
	defer cursor.Close(ctx)

	tasks := make([]*Task, 0)
	for cursor.Next(ctx) {
		var t Task
		if cursor.Decode(&t) == nil {
			t.ID = t.MongoID.Hex()
			tasks = append(tasks, &t)
		}
	}
	if err := cursor.Err(); err != nil {
		return nil, fmt.Errorf("list tasks: %w", err)
	}

	return tasks, nil
}

func (r *MongoRepo) Update(ctx context.Context, ownerID, taskID string, fields map[string]any) (*Task, error) {
	filter, err := ownedFilter(ownerID, taskID)
	if err != nil {
		return nil, err
	}

	set := bson.M{"updatedAt": time.Now().UTC()}
	for key, value := range fields {
		set[key] = value
	}

	var updated Task
	err = r.collection.FindOneAndUpdate(
		ctx,
		filter,
		bson.M{"$set": set},
		options.FindOneAndUpdate().SetReturnDocument(options.After),
	).Decode(&updated)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, apperr.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("update task: %w", err)
	}

	updated.ID = updated.MongoID.Hex()
	return &updated, nil
}

func (r *MongoRepo) Delete(ctx context.Context, ownerID, taskID string) (*Task, error) {
	filter, err := ownedFilter(ownerID, taskID)
	if err != nil {
		return nil, err
	}

	var deleted Task
	err = r.collection.FindOneAndDelete(ctx, filter).Decode(&deleted)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, apperr.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("delete task: %w", err)
	}

	deleted.ID = deleted.MongoID.Hex()
	return &deleted, nil
}

func (r *MongoRepo) DeleteByOwner(ctx context.Context, ownerID string) error {
	if _, err := r.collection.DeleteMany(ctx, bson.M{"owner": ownerID}); err != nil {
		return fmt.Errorf("delete tasks by owner: %w", err)
	}
	return nil
}

// ownedFilter treats a malformed task id the same as a missing task.
func ownedFilter(ownerID, taskID string) (bson.M, error) {
	objectID, err := primitive.ObjectIDFromHex(taskID)
	if err != nil {
		return nil, apperr.ErrNotFound
	}
	return bson.M{"_id": objectID, "owner": ownerID}, nil
}
