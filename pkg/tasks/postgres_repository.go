package tasks

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/openshelf/openshelf/pkg/apperr"
)

const taskColumns = `
	id, title, description, status, priority, due_date, reminder_date,
	estimated_days, owner_id, created_by, created_at, updated_at`

// PostgresTaskRepository implements TaskRepository backed by pgxpool
type PostgresTaskRepository struct {
	db *pgxpool.Pool
}

// NewPostgresTaskRepository creates a new PostgreSQL-based task repository
func NewPostgresTaskRepository(db *pgxpool.Pool) *PostgresTaskRepository {
	return &PostgresTaskRepository{db: db}
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanTask(row rowScanner) (Task, error) {
	var t Task
	var status, priority string
	err := row.Scan(
		&t.ID, &t.Title, &t.Description, &status, &priority, &t.DueDate, &t.ReminderDate,
		&t.EstimatedDays, &t.OwnerID, &t.CreatedBy, &t.CreatedAt, &t.UpdatedAt,
	)
	if err != nil {
		return Task{}, err
	}
	t.Status = Status(status)
	t.Priority = Priority(priority)
	return t, nil
}

func (r *PostgresTaskRepository) Create(ctx context.Context, params CreateTaskParams) (Task, error) {
	query := `
		INSERT INTO tasks (
			title, description, status, priority, due_date, reminder_date,
			estimated_days, owner_id, created_by
		)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
		RETURNING` + taskColumns

	row := r.db.QueryRow(ctx, query,
		params.Title, params.Description, string(StatusPending), string(params.Priority),
		params.DueDate, params.ReminderDate, params.EstimatedDays, params.OwnerID, params.CreatedBy,
	)
	t, err := scanTask(row)
	if err != nil {
		return Task{}, apperr.Internal(err, "failed to create task")
	}
	return t, nil
}

func (r *PostgresTaskRepository) FindByID(ctx context.Context, id uuid.UUID) (Task, error) {
	query := `SELECT` + taskColumns + ` FROM tasks WHERE id = $1`
	t, err := scanTask(r.db.QueryRow(ctx, query, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return Task{}, apperr.NotFound("task", id.String())
		}
		return Task{}, apperr.Internal(err, "failed to find task")
	}
	return t, nil
}

func (r *PostgresTaskRepository) ListAll(ctx context.Context) ([]Task, error) {
	query := `SELECT` + taskColumns + ` FROM tasks ORDER BY created_at DESC`
	return r.list(ctx, query)
}

func (r *PostgresTaskRepository) ListByOwner(ctx context.Context, ownerID uuid.UUID) ([]Task, error) {
	query := `SELECT` + taskColumns + ` FROM tasks WHERE owner_id = $1 ORDER BY created_at DESC`
	return r.list(ctx, query, ownerID)
}

func (r *PostgresTaskRepository) list(ctx context.Context, query string, args ...any) ([]Task, error) {
	rows, err := r.db.Query(ctx, query, args...)
	if err != nil {
		return nil, apperr.Internal(err, "failed to list tasks")
	}
	defer rows.Close()

	var out []Task
	for rows.Next() {
		t, err := scanTask(rows)
		if err != nil {
			return nil, apperr.Internal(err, "failed to scan task")
		}
		out = append(out, t)
	}
	return out, rows.Err()
}

func (r *PostgresTaskRepository) Update(ctx context.Context, id uuid.UUID, params UpdateTaskParams) (Task, error) {
	var status, priority *string
	if params.Status != nil {
		s := string(*params.Status)
		status = &s
	}
	if params.Priority != nil {
		p := string(*params.Priority)
		priority = &p
	}

	query := `
		UPDATE tasks
		SET title       = COALESCE($2, title),
		    description = COALESCE($3, description),
		    status      = COALESCE($4, status),
		    priority    = COALESCE($5, priority),
		    due_date    = COALESCE($6, due_date),
		    updated_at  = NOW() AT TIME ZONE 'UTC'
		WHERE id = $1
		RETURNING` + taskColumns

	row := r.db.QueryRow(ctx, query, id, params.Title, params.Description, status, priority, params.DueDate)
	t, err := scanTask(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return Task{}, apperr.NotFound("task", id.String())
		}
		return Task{}, apperr.Internal(err, "failed to update task")
	}
	return t, nil
}

func (r *PostgresTaskRepository) Delete(ctx context.Context, id uuid.UUID) error {
	tag, err := r.db.Exec(ctx, `DELETE FROM tasks WHERE id = $1`, id)
	if err != nil {
		return apperr.Internal(err, "failed to delete task")
	}
	if tag.RowsAffected() == 0 {
		return apperr.NotFound("task", id.String())
	}
	return nil
}
