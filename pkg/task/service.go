package task

import (
	"context"
	"strings"

	"taskhub/pkg/apperr"
)

// Patch keys accepted by Update; anything else rejects the whole patch.
var allowedUpdates = map[string]bool{
	"description": true,
	"completed":   true,
}

type ServiceInterface interface {
	Create(ctx context.Context, ownerID, description string, completed bool) (*Task, error)
	Get(ctx context.Context, ownerID, taskID string) (*Task, error)
	List(ctx context.Context, ownerID string, opts ListOptions) ([]*Task, error)
	Update(ctx context.Context, ownerID, taskID string, patch map[string]any) (*Task, error)
	Delete(ctx context.Context, ownerID, taskID string) (*Task, error)
}

type Service struct {
	Repo Repository
}

func NewService(repo Repository) *Service {
	return &Service{Repo: repo}
}

// Create forces the owner to the authenticated caller; whatever owner the
// request body might have carried never reaches the store.
func (s *Service) Create(ctx context.Context, ownerID, description string, completed bool) (*Task, error) {
	if strings.TrimSpace(description) == "" {
		return nil, apperr.Validationf("description is required")
	}

	t := &Task{
		Description: description,
		Completed:   completed,
		Owner:       ownerID,
	}
	if err := s.Repo.Create(ctx, t); err != nil {
		return nil, err
	}

	return t, nil
}

func (s *Service) Get(ctx context.Context, ownerID, taskID string) (*Task, error) {
	return s.Repo.FindOne(ctx, ownerID, taskID)
}

func (s *Service) List(ctx context.Context, ownerID string, opts ListOptions) ([]*Task, error) {
	return s.Repo.FindByOwner(ctx, ownerID, opts)
}

// Update validates the whole patch before touching the store, so a rejected
// patch leaves the task completely unmodified.
func (s *Service) Update(ctx context.Context, ownerID, taskID string, patch map[string]any) (*Task, error) {
	// An empty patch is a no-op: return the record unchanged.
	if len(patch) == 0 {
		return s.Repo.FindOne(ctx, ownerID, taskID)
	}

	fields := make(map[string]any, len(patch))
	for key, raw := range patch {
		if !allowedUpdates[key] {
			return nil, apperr.Validationf("field %q is not updatable", key)
		}
		switch key {
		case "description":
			description, ok := raw.(string)
			if !ok || strings.TrimSpace(description) == "" {
				return nil, apperr.Validationf("description must be a non-empty string")
			}
			fields[key] = description
		case "completed":
			completed, ok := raw.(bool)
			if !ok {
				return nil, apperr.Validationf("completed must be a boolean")
			}
			fields[key] = completed
		}
	}

	return s.Repo.Update(ctx, ownerID, taskID, fields)
}

func (s *Service) Delete(ctx context.Context, ownerID, taskID string) (*Task, error) {
	return s.Repo.Delete(ctx, ownerID, taskID)
}
