package task

import (
	"context"
	"strconv"
	"strings"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

type Task struct {
	MongoID     primitive.ObjectID `bson:"_id,omitempty" json:"-"`
	ID          string             `bson:"-" json:"id"`
	Description string             `bson:"description" json:"description"`
	Completed   bool               `bson:"completed" json:"completed"`
	Owner       string             `bson:"owner" json:"owner"`
	CreatedAt   time.Time          `bson:"createdAt" json:"createdAt"`
	UpdatedAt   time.Time          `bson:"updatedAt" json:"updatedAt"`
}

// ListOptions narrows and orders a listing. The zero value means "all of the
// caller's tasks, natural order, unbounded".
type ListOptions struct {
	Completed *bool
	SortField string
	SortDesc  bool
	Limit     int64
	Skip      int64
}

// ParseListOptions builds ListOptions from raw query parameters. Parsing is
// deliberately permissive: an unparseable or negative limit/skip means "no
// bound"/zero, never an error, and completed filters true only for the exact
// string "true".
func ParseListOptions(completed, sortBy, limit, skip string) ListOptions {
	var opts ListOptions

	if completed != "" {
		value := completed == "true"
		opts.Completed = &value
	}

	if sortBy != "" {
		field, direction, _ := strings.Cut(sortBy, ":")
		opts.SortField = field
		opts.SortDesc = direction == "desc"
	}

	if n, err := strconv.ParseInt(limit, 10, 64); err == nil && n > 0 {
		opts.Limit = n
	}
	if n, err := strconv.ParseInt(skip, 10, 64); err == nil && n > 0 {
		opts.Skip = n
	}

	return opts
}

type Repository interface {
	Create(ctx context.Context, t *Task) error
	FindOne(ctx context.Context, ownerID, taskID string) (*Task, error)
	FindByOwner(ctx context.Context, ownerID string, opts ListOptions) ([]*Task, error)
	Update(ctx context.Context, ownerID, taskID string, fields map[string]any) (*Task, error)
	Delete(ctx context.Context, ownerID, taskID string) (*Task, error)
	DeleteByOwner(ctx context.Context, ownerID string) error
}
