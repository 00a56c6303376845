package tasks

import (
	"time"

	"github.com/google/uuid"
)

// Status is a task's progress state
type Status string

const (
	StatusPending    Status = "pending"
	StatusInProgress Status = "in_progress"
	StatusCompleted  Status = "completed"
)

// Priority is a task's urgency level
type Priority string

const (
	PriorityLow    Priority = "low"
	PriorityMedium Priority = "medium"
	PriorityHigh   Priority = "high"
)

// DefaultDueInDays applies when a task is created without a due window
const DefaultDueInDays = 7

// Task is an immutable snapshot of a to-do item
type Task struct {
	ID            uuid.UUID
	Title         string
	Description   *string
	Status        Status
	Priority      Priority
	DueDate       time.Time
	ReminderDate  time.Time
	EstimatedDays int
	OwnerID       uuid.UUID
	CreatedBy     string
	CreatedAt     time.Time
	UpdatedAt     time.Time
}

// CreateTaskParams are the fields persisted at task creation
type CreateTaskParams struct {
	Title         string
	Description   *string
	Priority      Priority
	DueDate       time.Time
	ReminderDate  time.Time
	EstimatedDays int
	OwnerID       uuid.UUID
	CreatedBy     string
}

// UpdateTaskParams apply partial update semantics: nil fields are untouched
type UpdateTaskParams struct {
	Title       *string
	Description *string
	Status      *Status
	Priority    *Priority
	DueDate     *time.Time
}
