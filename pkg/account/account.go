package account

import (
	"context"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Account is the aggregate a registration creates: profile fields plus the
// list of session tokens currently honored for it. The token list has no
// persistence of its own, it is saved atomically with the document.
type Account struct {
	MongoID   primitive.ObjectID `bson:"_id,omitempty" json:"-"`
	ID        string             `bson:"-" json:"id"`
	Name      string             `bson:"name" json:"name"`
	Email     string             `bson:"email" json:"email"`
	Password  string             `bson:"password" json:"-"`
	Age       int                `bson:"age" json:"age"`
	Tokens    []string           `bson:"tokens" json:"-"`
	Avatar    []byte             `bson:"avatar,omitempty" json:"-"`
	CreatedAt time.Time          `bson:"createdAt" json:"createdAt"`
	UpdatedAt time.Time          `bson:"updatedAt" json:"updatedAt"`
}

// AddToken appends a token to the valid set. Order is insertion order and
// carries no meaning.
func (a *Account) AddToken(token string) {
	a.Tokens = append(a.Tokens, token)
}

// RemoveToken drops exactly one matching entry. Absence is not an error.
func (a *Account) RemoveToken(token string) {
	for i, t := range a.Tokens {
		if t == token {
			a.Tokens = append(a.Tokens[:i], a.Tokens[i+1:]...)
			return
		}
	}
}

// ClearTokens empties the valid set (logout everywhere).
func (a *Account) ClearTokens() {
	a.Tokens = a.Tokens[:0]
}

// HasToken reports exact-string membership in the valid set.
func (a *Account) HasToken(token string) bool {
	for _, t := range a.Tokens {
		if t == token {
			return true
		}
	}
	return false
}

type Repository interface {
	Create(ctx context.Context, acc *Account) error
	GetByID(ctx context.Context, id string) (*Account, error)
	GetByEmail(ctx context.Context, email string) (*Account, error)
	Save(ctx context.Context, acc *Account) error
	Delete(ctx context.Context, id string) error
}
