package account_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo/integration/mtest"

	"taskhub/pkg/account"
	"taskhub/pkg/apperr"
)

func TestMongoRepoGetByEmail(t *testing.T) {
	mt := mtest.New(t, mtest.NewOptions().ClientType(mtest.Mock))

	mt.Run("success", func(mt *mtest.T) {
		oid := primitive.NewObjectID()
		doc := bson.D{
			{Key: "_id", Value: oid},
			{Key: "name", Value: "Ana"},
			{Key: "email", Value: "ana@x.com"},
			{Key: "password", Value: "digest"},
			{Key: "tokens", Value: bson.A{"tok1"}},
		}
		mt.AddMockResponses(mtest.CreateCursorResponse(1, "db.accounts", mtest.FirstBatch, doc))

		repo := account.NewMongoRepo(mt.DB)
		acc, err := repo.GetByEmail(context.Background(), "ana@x.com")

		assert.NoError(mt.T, err)
		assert.Equal(mt.T, oid.Hex(), acc.ID)
		assert.Equal(mt.T, "ana@x.com", acc.Email)
		assert.True(mt.T, acc.HasToken("tok1"))
	})

	mt.Run("not found", func(mt *mtest.T) {
		mt.AddMockResponses(mtest.CreateCursorResponse(0, "db.accounts", mtest.FirstBatch))

		repo := account.NewMongoRepo(mt.DB)
		acc, err := repo.GetByEmail(context.Background(), "ghost@x.com")

		assert.Nil(mt.T, acc)
		assert.ErrorIs(mt.T, err, apperr.ErrNotFound)
	})
}

func TestMongoRepoGetByID(t *testing.T) {
	mt := mtest.New(t, mtest.NewOptions().ClientType(mtest.Mock))

	mt.Run("invalid id is not found", func(mt *mtest.T) {
		repo := account.NewMongoRepo(mt.DB)
		acc, err := repo.GetByID(context.Background(), "not-a-hex-id")

		assert.Nil(mt.T, acc)
		assert.ErrorIs(mt.T, err, apperr.ErrNotFound)
	})

	mt.Run("success", func(mt *mtest.T) {
		oid := primitive.NewObjectID()
		doc := bson.D{
			{Key: "_id", Value: oid},
			{Key: "email", Value: "ana@x.com"},
		}
		mt.AddMockResponses(mtest.CreateCursorResponse(1, "db.accounts", mtest.FirstBatch, doc))

		repo := account.NewMongoRepo(mt.DB)
		acc, err := repo.GetByID(context.Background(), oid.Hex())

		assert.NoError(mt.T, err)
		assert.Equal(mt.T, oid.Hex(), acc.ID)
	})
}

func TestMongoRepoCreate(t *testing.T) {
	mt := mtest.New(t, mtest.NewOptions().ClientType(mtest.Mock))

	mt.Run("duplicate email", func(mt *mtest.T) {
		mt.AddMockResponses(mtest.CreateWriteErrorsResponse(mtest.WriteError{
			Index:   0,
			Code:    11000,
			Message: "duplicate key error",
		}))

		repo := account.NewMongoRepo(mt.DB)
		err := repo.Create(context.Background(), &account.Account{Email: "ana@x.com"})

		assert.Error(mt.T, err)
		assert.Equal(mt.T, "email already in use", err.Error())
	})
}

func TestMongoRepoDelete(t *testing.T) {
	mt := mtest.New(t, mtest.NewOptions().ClientType(mtest.Mock))

	mt.Run("success", func(mt *mtest.T) {
		mt.AddMockResponses(mtest.CreateSuccessResponse(
			bson.E{Key: "n", Value: 1},
			bson.E{Key: "ok", Value: 1},
		))

		repo := account.NewMongoRepo(mt.DB)
		assert.NoError(mt.T, repo.Delete(context.Background(), primitive.NewObjectID().Hex()))
	})

	mt.Run("missing account", func(mt *mtest.T) {
		mt.AddMockResponses(mtest.CreateSuccessResponse(
			bson.E{Key: "n", Value: 0},
			bson.E{Key: "ok", Value: 1},
		))

		repo := account.NewMongoRepo(mt.DB)
		err := repo.Delete(context.Background(), primitive.NewObjectID().Hex())
		assert.ErrorIs(mt.T, err, apperr.ErrNotFound)
	})
}
