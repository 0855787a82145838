package account

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"

	"taskhub/pkg/apperr"
)

type MongoRepo struct {
	collection *mongo.Collection
}

func NewMongoRepo(db *mongo.Database) *MongoRepo {
	return &MongoRepo{
		collection: db.Collection("accounts"),
	}
}

func (r *MongoRepo) Create(ctx context.Context, acc *Account) error {
	now := time.Now().UTC()
	acc.CreatedAt = now
	acc.UpdatedAt = now

	result, err := r.collection.InsertOne(ctx, acc)
	if err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return apperr.Validationf("email already in use")
		}
		return fmt.Errorf("insert account: %w", err)
	}

	oid, ok := result.InsertedID.(primitive.ObjectID)
	if !ok {
		return errors.New("failed to convert inserted ID to ObjectID")
	}
	acc.MongoID = oid
	acc.ID = oid.Hex()

	return nil
}

func (r *MongoRepo) GetByID(ctx context.Context, id string) (*Account, error) {
	objectID, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return nil, apperr.ErrNotFound
	}

	var acc Account
	err = r.collection.FindOne(ctx, bson.M{"_id": objectID}).Decode(&acc)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, apperr.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("fetch account: %w", err)
	}

	acc.ID = acc.MongoID.Hex()
	return &acc, nil
}

func (r *MongoRepo) GetByEmail(ctx context.Context, email string) (*Account, error) {
	var acc Account
	err := r.collection.FindOne(ctx, bson.M{"email": email}).Decode(&acc)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, apperr.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("fetch account by email: %w", err)
	}

	acc.ID = acc.MongoID.Hex()
	return &acc, nil
}

// Save replaces the full document. Concurrent saves of the same account are
// last-write-wins; there is no version field.
func (r *MongoRepo) Save(ctx context.Context, acc *Account) error {
	acc.UpdatedAt = time.Now().UTC()

	res, err := r.collection.ReplaceOne(ctx, bson.M{"_id": acc.MongoID}, acc)
	if err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return apperr.Validationf("email already in use")
		}
		return fmt.Errorf("save account: %w", err)
	}
	if res.MatchedCount == 0 {
		return apperr.ErrNotFound
	}

	return nil
}

func (r *MongoRepo) Delete(ctx context.Context, id string) error {
	objectID, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return apperr.ErrNotFound
	}

	res, err := r.collection.DeleteOne(ctx, bson.M{"_id": objectID})
	if err != nil {
		return fmt.Errorf("delete account: %w", err)
	}
	if res.DeletedCount == 0 {
		return apperr.ErrNotFound
	}

	return nil
}
