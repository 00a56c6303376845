package tasks

import (
	"context"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/openshelf/openshelf/pkg/account"
	"github.com/openshelf/openshelf/pkg/apperr"
	"github.com/openshelf/openshelf/pkg/rbac"
)

// TaskService orchestrates task operations. Policy decisions always work on
// the actor's current account state, re-read per request.
type TaskService struct {
	repo     TaskRepository
	accounts account.AccountRepository
	now      func() time.Time
}

// TaskServiceOption configures a TaskService
type TaskServiceOption func(*TaskService)

// WithClock overrides the time source, used by tests for due-date math
func WithClock(now func() time.Time) TaskServiceOption {
	return func(s *TaskService) {
		if now != nil {
			s.now = now
		}
	}
}

// NewTaskService creates a task service
func NewTaskService(repo TaskRepository, accounts account.AccountRepository, opts ...TaskServiceOption) *TaskService {
	s := &TaskService{
		repo:     repo,
		accounts: accounts,
		now:      func() time.Time { return time.Now().UTC() },
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

func (s *TaskService) loadActor(ctx context.Context, actorID uuid.UUID) (account.Account, error) {
	actor, err := s.accounts.FindByID(ctx, actorID)
	if err != nil {
		if apperr.IsCode(err, apperr.CodeNotFound) {
			return account.Account{}, apperr.Unauthorized("acting account no longer exists")
		}
		return account.Account{}, err
	}
	return actor, nil
}

// CreateTaskRequest carries the client-supplied task fields. DueInDays defaults
// to DefaultDueInDays when zero or negative.
type CreateTaskRequest struct {
	Title       string
	Description *string
	Priority    Priority
	DueInDays   int
}

// Create records a new task owned by the actor. The reminder fires one day
// before the due date.
func (s *TaskService) Create(ctx context.Context, actorID uuid.UUID, req CreateTaskRequest) (Task, error) {
	if req.Title == "" {
		return Task{}, apperr.InvalidInput("title", "must not be empty")
	}

	priority := req.Priority
	if priority == "" {
		priority = PriorityMedium
	}
	switch priority {
	case PriorityLow, PriorityMedium, PriorityHigh:
	default:
		return Task{}, apperr.InvalidInput("priority", string(req.Priority))
	}

	actor, err := s.loadActor(ctx, actorID)
	if err != nil {
		return Task{}, err
	}
	if !rbac.CanPerform(actor.Actor(), rbac.ActionManageTask, rbac.Target{OwnerID: actor.ID}) {
		return Task{}, apperr.Forbidden("not allowed to create tasks")
	}

	dueInDays := req.DueInDays
	if dueInDays <= 0 {
		dueInDays = DefaultDueInDays
	}
	dueDate := s.now().AddDate(0, 0, dueInDays)

	task, err := s.repo.Create(ctx, CreateTaskParams{
		Title:         req.Title,
		Description:   req.Description,
		Priority:      priority,
		DueDate:       dueDate,
		ReminderDate:  dueDate.AddDate(0, 0, -1),
		EstimatedDays: dueInDays,
		OwnerID:       actor.ID,
		CreatedBy:     actor.Name,
	})
	if err != nil {
		return Task{}, err
	}
	slog.Info("Task created", "task_id", task.ID, "owner_id", actor.ID)
	return task, nil
}

// List returns every task for task managers, and the actor's own otherwise
func (s *TaskService) List(ctx context.Context, actorID uuid.UUID) ([]Task, error) {
	actor, err := s.loadActor(ctx, actorID)
	if err != nil {
		return nil, err
	}
	if rbac.CanPerform(actor.Actor(), rbac.ActionManageTask, rbac.Target{}) {
		return s.repo.ListAll(ctx)
	}
	return s.repo.ListByOwner(ctx, actor.ID)
}

// Get returns a single task, visible to its owner and to task managers
func (s *TaskService) Get(ctx context.Context, taskID, actorID uuid.UUID) (Task, error) {
	task, err := s.repo.FindByID(ctx, taskID)
	if err != nil {
		return Task{}, err
	}
	actor, err := s.loadActor(ctx, actorID)
	if err != nil {
		return Task{}, err
	}
	if actor.ID != task.OwnerID && !rbac.CanPerform(actor.Actor(), rbac.ActionManageTask, rbac.Target{}) {
		return Task{}, apperr.Forbidden("not allowed to view this task")
	}
	return task, nil
}

func (s *TaskService) authorizeMutation(ctx context.Context, taskID, actorID uuid.UUID) (Task, error) {
	task, err := s.repo.FindByID(ctx, taskID)
	if err != nil {
		return Task{}, err
	}
	actor, err := s.loadActor(ctx, actorID)
	if err != nil {
		return Task{}, err
	}
	if !rbac.CanPerform(actor.Actor(), rbac.ActionManageTask, rbac.Target{OwnerID: task.OwnerID}) {
		return Task{}, apperr.Forbidden("not allowed to modify this task")
	}
	return task, nil
}

// Update applies a partial update to a task
func (s *TaskService) Update(ctx context.Context, taskID, actorID uuid.UUID, params UpdateTaskParams) (Task, error) {
	if params.Status != nil {
		switch *params.Status {
		case StatusPending, StatusInProgress, StatusCompleted:
		default:
			return Task{}, apperr.InvalidInput("status", string(*params.Status))
		}
	}
	if params.Priority != nil {
		switch *params.Priority {
		case PriorityLow, PriorityMedium, PriorityHigh:
		default:
			return Task{}, apperr.InvalidInput("priority", string(*params.Priority))
		}
	}
	if params.Title != nil && *params.Title == "" {
		return Task{}, apperr.InvalidInput("title", "must not be empty")
	}

	if _, err := s.authorizeMutation(ctx, taskID, actorID); err != nil {
		return Task{}, err
	}

	updated, err := s.repo.Update(ctx, taskID, params)
	if err != nil {
		return Task{}, err
	}
	slog.Info("Task updated", "task_id", taskID, "actor_id", actorID)
	return updated, nil
}

// Complete transitions a task to the completed state. Idempotent.
func (s *TaskService) Complete(ctx context.Context, taskID, actorID uuid.UUID) (Task, error) {
	task, err := s.authorizeMutation(ctx, taskID, actorID)
	if err != nil {
		return Task{}, err
	}
	if task.Status == StatusCompleted {
		return task, nil
	}

	completed := StatusCompleted
	updated, err := s.repo.Update(ctx, taskID, UpdateTaskParams{Status: &completed})
	if err != nil {
		return Task{}, err
	}
	slog.Info("Task completed", "task_id", taskID, "actor_id", actorID)
	return updated, nil
}

// Delete removes a task permanently
func (s *TaskService) Delete(ctx context.Context, taskID, actorID uuid.UUID) error {
	if _, err := s.authorizeMutation(ctx, taskID, actorID); err != nil {
		return err
	}
	if err := s.repo.Delete(ctx, taskID); err != nil {
		return err
	}
	slog.Info("Task deleted", "task_id", taskID, "actor_id", actorID)
	return nil
}
