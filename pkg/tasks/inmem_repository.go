package tasks

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/openshelf/openshelf/pkg/apperr"
)

// InMemTaskRepository is a mutex-guarded in-memory TaskRepository for tests
type InMemTaskRepository struct {
	mu    sync.RWMutex
	tasks map[uuid.UUID]Task
}

// NewInMemTaskRepository creates an empty in-memory task repository
func NewInMemTaskRepository() *InMemTaskRepository {
	return &InMemTaskRepository{tasks: make(map[uuid.UUID]Task)}
}

func (r *InMemTaskRepository) Create(_ context.Context, params CreateTaskParams) (Task, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	now := time.Now().UTC()
	t := Task{
		ID:            uuid.New(),
		Title:         params.Title,
		Description:   params.Description,
		Status:        StatusPending,
		Priority:      params.Priority,
		DueDate:       params.DueDate,
		ReminderDate:  params.ReminderDate,
		EstimatedDays: params.EstimatedDays,
		OwnerID:       params.OwnerID,
		CreatedBy:     params.CreatedBy,
		CreatedAt:     now,
		UpdatedAt:     now,
	}
	r.tasks[t.ID] = t
	return t, nil
}

func (r *InMemTaskRepository) FindByID(_ context.Context, id uuid.UUID) (Task, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	t, ok := r.tasks[id]
	if !ok {
		return Task{}, apperr.NotFound("task", id.String())
	}
	return t, nil
}

func (r *InMemTaskRepository) ListAll(_ context.Context) ([]Task, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]Task, 0, len(r.tasks))
	for _, t := range r.tasks {
		out = append(out, t)
	}
	sortByCreated(out)
	return out, nil
}

func (r *InMemTaskRepository) ListByOwner(_ context.Context, ownerID uuid.UUID) ([]Task, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	var out []Task
	for _, t := range r.tasks {
		if t.OwnerID == ownerID {
			out = append(out, t)
		}
	}
	sortByCreated(out)
	return out, nil
}

func sortByCreated(ts []Task) {
	sort.Slice(ts, func(i, j int) bool {
		return ts[i].CreatedAt.After(ts[j].CreatedAt)
	})
}

func (r *InMemTaskRepository) Update(_ context.Context, id uuid.UUID, params UpdateTaskParams) (Task, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	t, ok := r.tasks[id]
	if !ok {
		return Task{}, apperr.NotFound("task", id.String())
	}

	if params.Title != nil {
		t.Title = *params.Title
	}
	if params.Description != nil {
		t.Description = params.Description
	}
	if params.Status != nil {
		t.Status = *params.Status
	}
	if params.Priority != nil {
		t.Priority = *params.Priority
	}
	if params.DueDate != nil {
		t.DueDate = *params.DueDate
	}
	t.UpdatedAt = time.Now().UTC()
	r.tasks[id] = t
	return t, nil
}

func (r *InMemTaskRepository) Delete(_ context.Context, id uuid.UUID) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.tasks[id]; !ok {
		return apperr.NotFound("task", id.String())
	}
	delete(r.tasks, id)
	return nil
}
