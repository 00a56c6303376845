package tasks

import (
	"context"

	"github.com/google/uuid"
)

// TaskRepository abstracts task storage
type TaskRepository interface {
	Create(ctx context.Context, params CreateTaskParams) (Task, error)
	FindByID(ctx context.Context, id uuid.UUID) (Task, error)
	ListAll(ctx context.Context) ([]Task, error)
	ListByOwner(ctx context.Context, ownerID uuid.UUID) ([]Task, error)
	Update(ctx context.Context, id uuid.UUID, params UpdateTaskParams) (Task, error)
	Delete(ctx context.Context, id uuid.UUID) error
}
