package account

import (
	"context"
	"fmt"
	"log/slog"
	"math"

	"golang.org/x/crypto/bcrypt"

	"taskhub/pkg/apperr"
	"taskhub/pkg/mailer"
)

// Patch keys accepted by Update. Anything else fails the whole request
// before any field is touched.
var allowedUpdates = map[string]bool{
	"name":     true,
	"email":    true,
	"password": true,
	"age":      true,
}

type ServiceInterface interface {
	Register(ctx context.Context, name, email, password string, age int) (*Account, string, error)
	Login(ctx context.Context, email, password string) (*Account, string, error)
	Logout(ctx context.Context, acc *Account, token string) error
	LogoutAll(ctx context.Context, acc *Account) error
	Update(ctx context.Context, acc *Account, patch map[string]any) (*Account, error)
	SetAvatar(ctx context.Context, acc *Account, png []byte) error
	ClearAvatar(ctx context.Context, acc *Account) error
	AvatarByID(ctx context.Context, id string) ([]byte, error)
	Delete(ctx context.Context, acc *Account) error
}

// Issuer mints a signed session token for an account id.
type Issuer interface {
	Issue(accountID string) (string, error)
}

// TaskDeleter removes every task owned by an account; used by Delete to run
// the cascade before the account record goes away.
type TaskDeleter interface {
	DeleteByOwner(ctx context.Context, ownerID string) error
}

type Service struct {
	Repo     Repository
	Tokens   Issuer
	Tasks    TaskDeleter
	Notifier mailer.Notifier
	Logger   *slog.Logger
}

func NewService(repo Repository, tokens Issuer, tasks TaskDeleter, notifier mailer.Notifier, logger *slog.Logger) *Service {
	return &Service{
		Repo:     repo,
		Tokens:   tokens,
		Tasks:    tasks,
		Notifier: notifier,
		Logger:   logger,
	}
}

func (s *Service) Register(ctx context.Context, name, email, password string, age int) (*Account, string, error) {
	if err := ValidateName(name); err != nil {
		return nil, "", err
	}
	canonical, err := ValidateEmail(email)
	if err != nil {
		return nil, "", err
	}
	if err := ValidatePassword(password); err != nil {
		return nil, "", err
	}
	if err := ValidateAge(age); err != nil {
		return nil, "", err
	}

	if _, err := s.Repo.GetByEmail(ctx, canonical); err == nil {
		return nil, "", apperr.Validationf("email already in use")
	}

	hashed, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return nil, "", fmt.Errorf("hashing password: %w", err)
	}

	acc := &Account{
		Name:     name,
		Email:    canonical,
		Password: string(hashed),
		Age:      age,
		Tokens:   make([]string, 0, 1),
	}
	if err := s.Repo.Create(ctx, acc); err != nil {
		return nil, "", err
	}

	token, err := s.issueAndSave(ctx, acc)
	if err != nil {
		return nil, "", err
	}

	s.notify(s.Notifier.SendWelcome, acc.Email, acc.Name)

	return acc, token, nil
}

// Login returns the same InvalidCredentials error for an unknown email and a
// wrong password, so responses don't reveal which addresses are registered.
func (s *Service) Login(ctx context.Context, email, password string) (*Account, string, error) {
	canonical, err := ValidateEmail(email)
	if err != nil {
		return nil, "", apperr.ErrInvalidCredentials
	}

	acc, err := s.Repo.GetByEmail(ctx, canonical)
	if err != nil {
		return nil, "", apperr.ErrInvalidCredentials
	}

	if bcrypt.CompareHashAndPassword([]byte(acc.Password), []byte(password)) != nil {
		return nil, "", apperr.ErrInvalidCredentials
	}

	token, err := s.issueAndSave(ctx, acc)
	if err != nil {
		return nil, "", err
	}

	return acc, token, nil
}

func (s *Service) Logout(ctx context.Context, acc *Account, token string) error {
	acc.RemoveToken(token)
	return s.Repo.Save(ctx, acc)
}

func (s *Service) LogoutAll(ctx context.Context, acc *Account) error {
	acc.ClearTokens()
	return s.Repo.Save(ctx, acc)
}

// Update applies a profile patch. Validation is all-or-nothing: every staged
// value is checked before the first field is assigned.
func (s *Service) Update(ctx context.Context, acc *Account, patch map[string]any) (*Account, error) {
	// An empty patch is a no-op: return the account unchanged.
	if len(patch) == 0 {
		return acc, nil
	}
	for key := range patch {
		if !allowedUpdates[key] {
			return nil, apperr.Validationf("field %q is not updatable", key)
		}
	}

	staged := *acc

	if raw, ok := patch["name"]; ok {
		name, ok := raw.(string)
		if !ok {
			return nil, apperr.Validationf("name must be a string")
		}
		if err := ValidateName(name); err != nil {
			return nil, err
		}
		staged.Name = name
	}

	if raw, ok := patch["email"]; ok {
		email, ok := raw.(string)
		if !ok {
			return nil, apperr.Validationf("email must be a string")
		}
		canonical, err := ValidateEmail(email)
		if err != nil {
			return nil, err
		}
		if canonical != acc.Email {
			if _, err := s.Repo.GetByEmail(ctx, canonical); err == nil {
				return nil, apperr.Validationf("email already in use")
			}
		}
		staged.Email = canonical
	}

	if raw, ok := patch["password"]; ok {
		password, ok := raw.(string)
		if !ok {
			return nil, apperr.Validationf("password must be a string")
		}
		if err := ValidatePassword(password); err != nil {
			return nil, err
		}
		hashed, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
		if err != nil {
			return nil, fmt.Errorf("hashing password: %w", err)
		}
		staged.Password = string(hashed)
	}

	if raw, ok := patch["age"]; ok {
		age, ok := toInt(raw)
		if !ok {
			return nil, apperr.Validationf("age must be an integer")
		}
		if err := ValidateAge(age); err != nil {
			return nil, err
		}
		staged.Age = age
	}

	*acc = staged
	if err := s.Repo.Save(ctx, acc); err != nil {
		return nil, err
	}

	return acc, nil
}

func (s *Service) SetAvatar(ctx context.Context, acc *Account, png []byte) error {
	acc.Avatar = png
	return s.Repo.Save(ctx, acc)
}

func (s *Service) ClearAvatar(ctx context.Context, acc *Account) error {
	acc.Avatar = nil
	return s.Repo.Save(ctx, acc)
}

// AvatarByID is the one unauthenticated profile read; it exposes nothing but
// the image bytes.
func (s *Service) AvatarByID(ctx context.Context, id string) ([]byte, error) {
	acc, err := s.Repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if len(acc.Avatar) == 0 {
		return nil, apperr.ErrNotFound
	}
	return acc.Avatar, nil
}

// Delete removes the account and everything it owns. Tasks go first: if the
// cascade fails the account record stays, so no task ever references a
// deleted owner.
func (s *Service) Delete(ctx context.Context, acc *Account) error {
	if err := s.Tasks.DeleteByOwner(ctx, acc.ID); err != nil {
		return fmt.Errorf("cascade task delete: %w", err)
	}
	if err := s.Repo.Delete(ctx, acc.ID); err != nil {
		return err
	}

	s.notify(s.Notifier.SendGoodbye, acc.Email, acc.Name)

	return nil
}

// notify dispatches mail in the background; a failure is logged and never
// surfaces to the caller.
func (s *Service) notify(send func(email, name string) error, email, name string) {
	go func() {
		if err := send(email, name); err != nil {
			s.Logger.Error("notification failed", "email", email, "error", err)
		}
	}()
}

func (s *Service) issueAndSave(ctx context.Context, acc *Account) (string, error) {
	token, err := s.Tokens.Issue(acc.ID)
	if err != nil {
		return "", fmt.Errorf("issue token: %w", err)
	}

	acc.AddToken(token)
	if err := s.Repo.Save(ctx, acc); err != nil {
		return "", err
	}

	return token, nil
}

func toInt(v any) (int, bool) {
	switch n := v.(type) {
	case float64:
		if n != math.Trunc(n) {
			return 0, false
		}
		return int(n), true
	case int:
		return n, true
	default:
		return 0, false
	}
}
