package account_test

import (
	"context"
	"errors"
	"log/slog"
	"os"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"golang.org/x/crypto/bcrypt"

	"taskhub/pkg/account"
	"taskhub/pkg/apperr"
	"taskhub/pkg/mailer"
)

type mockRepo struct {
	mock.Mock
}

func (m *mockRepo) Create(ctx context.Context, acc *account.Account) error {
	return m.Called(ctx, acc).Error(0)
}

func (m *mockRepo) GetByID(ctx context.Context, id string) (*account.Account, error) {
	args := m.Called(ctx, id)
	if acc := args.Get(0); acc != nil {
		return acc.(*account.Account), args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *mockRepo) GetByEmail(ctx context.Context, email string) (*account.Account, error) {
	args := m.Called(ctx, email)
	if acc := args.Get(0); acc != nil {
		return acc.(*account.Account), args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *mockRepo) Save(ctx context.Context, acc *account.Account) error {
	return m.Called(ctx, acc).Error(0)
}

func (m *mockRepo) Delete(ctx context.Context, id string) error {
	return m.Called(ctx, id).Error(0)
}

type mockIssuer struct {
	mock.Mock
}

func (m *mockIssuer) Issue(accountID string) (string, error) {
	args := m.Called(accountID)
	return args.String(0), args.Error(1)
}

type mockTaskDeleter struct {
	mock.Mock
}

func (m *mockTaskDeleter) DeleteByOwner(ctx context.Context, ownerID string) error {
	return m.Called(ctx, ownerID).Error(0)
}

func newTestService(repo *mockRepo, issuer *mockIssuer, tasks *mockTaskDeleter) *account.Service {
	logger := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{}))
	return account.NewService(repo, issuer, tasks, mailer.Noop{}, logger)
}

func TestService_Register(t *testing.T) {
	t.Run("success", func(t *testing.T) {
		repo := new(mockRepo)
		issuer := new(mockIssuer)
		svc := newTestService(repo, issuer, new(mockTaskDeleter))

		repo.On("GetByEmail", mock.Anything, "ana@x.com").Return(nil, apperr.ErrNotFound)
		repo.On("Create", mock.Anything, mock.AnythingOfType("*account.Account")).Return(nil).Run(func(args mock.Arguments) {
			args.Get(1).(*account.Account).ID = "acc1"
		})
		issuer.On("Issue", "acc1").Return("tok1", nil)
		repo.On("Save", mock.Anything, mock.AnythingOfType("*account.Account")).Return(nil)

		acc, token, err := svc.Register(context.Background(), "Ana", "Ana@X.com", "secret123", 30)

		assert.NoError(t, err)
		assert.Equal(t, "tok1", token)
		assert.Equal(t, "ana@x.com", acc.Email)
		assert.True(t, acc.HasToken("tok1"))
		// stored digest, not plaintext
		assert.NotEqual(t, "secret123", acc.Password)
		assert.NoError(t, bcrypt.CompareHashAndPassword([]byte(acc.Password), []byte("secret123")))
		repo.AssertExpectations(t)
	})

	t.Run("email already in use", func(t *testing.T) {
		repo := new(mockRepo)
		svc := newTestService(repo, new(mockIssuer), new(mockTaskDeleter))

		repo.On("GetByEmail", mock.Anything, "ana@x.com").Return(&account.Account{Email: "ana@x.com"}, nil)

		_, _, err := svc.Register(context.Background(), "Ana", "ana@x.com", "secret123", 30)

		assert.Error(t, err)
		assert.Equal(t, "email already in use", err.Error())
		repo.AssertNotCalled(t, "Create")
	})

	t.Run("invalid fields", func(t *testing.T) {
		repo := new(mockRepo)
		svc := newTestService(repo, new(mockIssuer), new(mockTaskDeleter))

		cases := []struct {
			name, email, password string
			age                   int
		}{
			{"", "ana@x.com", "secret123", 0},
			{"Ana", "nope", "secret123", 0},
			{"Ana", "ana@x.com", "short", 0},
			{"Ana", "ana@x.com", "mypassword1", 0},
			{"Ana", "ana@x.com", "secret123", -5},
		}
		for _, c := range cases {
			_, _, err := svc.Register(context.Background(), c.name, c.email, c.password, c.age)
			assert.Error(t, err)
			assert.Equal(t, apperr.KindValidation, err.(*apperr.Error).Kind)
		}
		repo.AssertNotCalled(t, "Create")
	})
}

func TestService_Login(t *testing.T) {
	hashed, err := bcrypt.GenerateFromPassword([]byte("secret123"), bcrypt.DefaultCost)
	assert.NoError(t, err)

	stored := func() *account.Account {
		return &account.Account{ID: "acc1", Email: "ana@x.com", Password: string(hashed)}
	}

	t.Run("success", func(t *testing.T) {
		repo := new(mockRepo)
		issuer := new(mockIssuer)
		svc := newTestService(repo, issuer, new(mockTaskDeleter))

		repo.On("GetByEmail", mock.Anything, "ana@x.com").Return(stored(), nil)
		issuer.On("Issue", "acc1").Return("tok1", nil)
		repo.On("Save", mock.Anything, mock.AnythingOfType("*account.Account")).Return(nil)

		acc, token, err := svc.Login(context.Background(), "ana@x.com", "secret123")

		assert.NoError(t, err)
		assert.Equal(t, "tok1", token)
		assert.True(t, acc.HasToken("tok1"))
	})

	t.Run("unknown email and wrong password are indistinguishable", func(t *testing.T) {
		repo := new(mockRepo)
		svc := newTestService(repo, new(mockIssuer), new(mockTaskDeleter))

		repo.On("GetByEmail", mock.Anything, "ghost@x.com").Return(nil, apperr.ErrNotFound)
		repo.On("GetByEmail", mock.Anything, "ana@x.com").Return(stored(), nil)

		_, _, errGhost := svc.Login(context.Background(), "ghost@x.com", "secret123")
		_, _, errWrong := svc.Login(context.Background(), "ana@x.com", "wrongpass")

		assert.ErrorIs(t, errGhost, apperr.ErrInvalidCredentials)
		assert.ErrorIs(t, errWrong, apperr.ErrInvalidCredentials)
		assert.Equal(t, errGhost.Error(), errWrong.Error())
	})
}

func TestService_Logout(t *testing.T) {
	repo := new(mockRepo)
	svc := newTestService(repo, new(mockIssuer), new(mockTaskDeleter))

	acc := &account.Account{ID: "acc1", Tokens: []string{"tok1", "tok2"}}
	repo.On("Save", mock.Anything, acc).Return(nil)

	assert.NoError(t, svc.Logout(context.Background(), acc, "tok1"))
	assert.Equal(t, []string{"tok2"}, acc.Tokens)

	assert.NoError(t, svc.LogoutAll(context.Background(), acc))
	assert.Empty(t, acc.Tokens)
}

func TestService_Update(t *testing.T) {
	t.Run("disallowed field rejects whole patch", func(t *testing.T) {
		repo := new(mockRepo)
		svc := newTestService(repo, new(mockIssuer), new(mockTaskDeleter))

		acc := &account.Account{ID: "acc1", Name: "Ana", Email: "ana@x.com"}
		_, err := svc.Update(context.Background(), acc, map[string]any{
			"name":   "Bea",
			"tokens": []string{"evil"},
		})

		assert.Error(t, err)
		assert.Equal(t, "Ana", acc.Name)
		repo.AssertNotCalled(t, "Save")
	})

	t.Run("bad value leaves account untouched", func(t *testing.T) {
		repo := new(mockRepo)
		svc := newTestService(repo, new(mockIssuer), new(mockTaskDeleter))

		acc := &account.Account{ID: "acc1", Name: "Ana", Age: 30}
		_, err := svc.Update(context.Background(), acc, map[string]any{
			"name": "Bea",
			"age":  float64(-2),
		})

		assert.Error(t, err)
		assert.Equal(t, "Ana", acc.Name)
		assert.Equal(t, 30, acc.Age)
		repo.AssertNotCalled(t, "Save")
	})

	t.Run("empty patch is a no-op", func(t *testing.T) {
		repo := new(mockRepo)
		svc := newTestService(repo, new(mockIssuer), new(mockTaskDeleter))

		acc := &account.Account{ID: "acc1", Name: "Ana", Email: "ana@x.com"}
		updated, err := svc.Update(context.Background(), acc, map[string]any{})

		assert.NoError(t, err)
		assert.Equal(t, acc, updated)
		repo.AssertNotCalled(t, "Save")
	})

	t.Run("success", func(t *testing.T) {
		repo := new(mockRepo)
		svc := newTestService(repo, new(mockIssuer), new(mockTaskDeleter))

		acc := &account.Account{ID: "acc1", Name: "Ana", Email: "ana@x.com", Age: 30}
		repo.On("GetByEmail", mock.Anything, "bea@x.com").Return(nil, apperr.ErrNotFound)
		repo.On("Save", mock.Anything, acc).Return(nil)

		updated, err := svc.Update(context.Background(), acc, map[string]any{
			"name":  "Bea",
			"email": "Bea@X.com",
			"age":   float64(31),
		})

		assert.NoError(t, err)
		assert.Equal(t, "Bea", updated.Name)
		assert.Equal(t, "bea@x.com", updated.Email)
		assert.Equal(t, 31, updated.Age)
	})
}

func TestService_Delete(t *testing.T) {
	t.Run("tasks deleted before account", func(t *testing.T) {
		repo := new(mockRepo)
		tasks := new(mockTaskDeleter)
		svc := newTestService(repo, new(mockIssuer), tasks)

		tasksDeleted := false
		tasks.On("DeleteByOwner", mock.Anything, "acc1").Return(nil).Run(func(mock.Arguments) {
			tasksDeleted = true
		})
		repo.On("Delete", mock.Anything, "acc1").Return(nil).Run(func(mock.Arguments) {
			assert.True(t, tasksDeleted, "account deleted before its tasks")
		})

		acc := &account.Account{ID: "acc1", Email: "ana@x.com"}
		assert.NoError(t, svc.Delete(context.Background(), acc))

		tasks.AssertExpectations(t)
		repo.AssertExpectations(t)
	})

	t.Run("cascade failure keeps account", func(t *testing.T) {
		repo := new(mockRepo)
		tasks := new(mockTaskDeleter)
		svc := newTestService(repo, new(mockIssuer), tasks)

		tasks.On("DeleteByOwner", mock.Anything, "acc1").Return(errors.New("store down"))

		acc := &account.Account{ID: "acc1", Email: "ana@x.com"}
		assert.Error(t, svc.Delete(context.Background(), acc))
		repo.AssertNotCalled(t, "Delete")
	})
}
