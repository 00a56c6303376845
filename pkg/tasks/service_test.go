package tasks

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/openshelf/openshelf/pkg/account"
	"github.com/openshelf/openshelf/pkg/apperr"
	"github.com/openshelf/openshelf/pkg/rbac"
)

func seedAccount(t *testing.T, repo account.AccountRepository, name, email string, role rbac.Role) account.Account {
	t.Helper()

	acct, err := repo.Create(context.Background(), account.CreateAccountParams{
		Name:                     name,
		Email:                    email,
		Mobile:                   "5550100",
		PasswordHash:             "x",
		Role:                     role,
		EmailVerificationToken:   "seed-token-" + email,
		EmailVerificationExpires: time.Now().UTC().Add(15 * time.Minute),
	})
	require.NoError(t, err)
	return acct
}

func setupService(t *testing.T) (*TaskService, account.AccountRepository, *testClock) {
	t.Helper()

	accounts := account.NewInMemAccountRepository()
	clock := &testClock{now: time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)}
	svc := NewTaskService(NewInMemTaskRepository(), accounts, WithClock(clock.Now))
	return svc, accounts, clock
}

type testClock struct {
	now time.Time
}

func (c *testClock) Now() time.Time {
	return c.now
}

func TestCreate(t *testing.T) {
	svc, accounts, clock := setupService(t)
	ctx := context.Background()
	alice := seedAccount(t, accounts, "Alice", "alice@example.com", rbac.RoleRegular)

	desc := "prepare the quarterly report"
	task, err := svc.Create(ctx, alice.ID, CreateTaskRequest{
		Title:       "Quarterly report",
		Description: &desc,
		Priority:    PriorityHigh,
		DueInDays:   3,
	})
	require.NoError(t, err)

	assert.Equal(t, "Quarterly report", task.Title)
	assert.Equal(t, StatusPending, task.Status)
	assert.Equal(t, PriorityHigh, task.Priority)
	assert.Equal(t, alice.ID, task.OwnerID)
	assert.Equal(t, "Alice", task.CreatedBy)
	assert.Equal(t, clock.Now().AddDate(0, 0, 3), task.DueDate)
	// reminder fires a day before the due date
	assert.Equal(t, task.DueDate.AddDate(0, 0, -1), task.ReminderDate)
	assert.Equal(t, 3, task.EstimatedDays)
}

func TestCreate_Defaults(t *testing.T) {
	svc, accounts, clock := setupService(t)
	alice := seedAccount(t, accounts, "Alice", "alice@example.com", rbac.RoleRegular)

	task, err := svc.Create(context.Background(), alice.ID, CreateTaskRequest{Title: "Water plants"})
	require.NoError(t, err)

	assert.Equal(t, PriorityMedium, task.Priority)
	assert.Equal(t, clock.Now().AddDate(0, 0, DefaultDueInDays), task.DueDate)
	assert.Equal(t, DefaultDueInDays, task.EstimatedDays)
}

func TestCreate_EmptyTitle(t *testing.T) {
	svc, accounts, _ := setupService(t)
	alice := seedAccount(t, accounts, "Alice", "alice@example.com", rbac.RoleRegular)

	_, err := svc.Create(context.Background(), alice.ID, CreateTaskRequest{})
	assert.True(t, apperr.IsCode(err, apperr.CodeInvalidInput))
}

func TestCreate_BannedOwnerDenied(t *testing.T) {
	svc, accounts, _ := setupService(t)
	ctx := context.Background()
	alice := seedAccount(t, accounts, "Alice", "alice@example.com", rbac.RoleRegular)
	admin := seedAccount(t, accounts, "Root", "root@example.com", rbac.RoleAdmin)

	require.NoError(t, accounts.SetBan(ctx, alice.ID, &account.BanState{
		Reason: "abuse",
		By:     admin.Ref(),
		At:     time.Now().UTC(),
	}))

	_, err := svc.Create(ctx, alice.ID, CreateTaskRequest{Title: "Sneaky task"})
	assert.True(t, apperr.IsCode(err, apperr.CodeForbidden))
}

func TestList_OwnerSeesOnlyOwn(t *testing.T) {
	svc, accounts, _ := setupService(t)
	ctx := context.Background()
	alice := seedAccount(t, accounts, "Alice", "alice@example.com", rbac.RoleRegular)
	bob := seedAccount(t, accounts, "Bob", "bob@example.com", rbac.RoleRegular)

	_, err := svc.Create(ctx, alice.ID, CreateTaskRequest{Title: "Alice task"})
	require.NoError(t, err)
	_, err = svc.Create(ctx, bob.ID, CreateTaskRequest{Title: "Bob task"})
	require.NoError(t, err)

	tasks, err := svc.List(ctx, alice.ID)
	require.NoError(t, err)
	require.Len(t, tasks, 1)
	assert.Equal(t, "Alice task", tasks[0].Title)
}

func TestList_AdminSeesAll(t *testing.T) {
	svc, accounts, _ := setupService(t)
	ctx := context.Background()
	alice := seedAccount(t, accounts, "Alice", "alice@example.com", rbac.RoleRegular)
	bob := seedAccount(t, accounts, "Bob", "bob@example.com", rbac.RoleRegular)
	admin := seedAccount(t, accounts, "Root", "root@example.com", rbac.RoleAdmin)

	_, err := svc.Create(ctx, alice.ID, CreateTaskRequest{Title: "Alice task"})
	require.NoError(t, err)
	_, err = svc.Create(ctx, bob.ID, CreateTaskRequest{Title: "Bob task"})
	require.NoError(t, err)

	tasks, err := svc.List(ctx, admin.ID)
	require.NoError(t, err)
	assert.Len(t, tasks, 2)
}

func TestGet_OtherOwnerDenied(t *testing.T) {
	svc, accounts, _ := setupService(t)
	ctx := context.Background()
	alice := seedAccount(t, accounts, "Alice", "alice@example.com", rbac.RoleRegular)
	bob := seedAccount(t, accounts, "Bob", "bob@example.com", rbac.RoleRegular)

	task, err := svc.Create(ctx, alice.ID, CreateTaskRequest{Title: "Alice task"})
	require.NoError(t, err)

	_, err = svc.Get(ctx, task.ID, bob.ID)
	assert.True(t, apperr.IsCode(err, apperr.CodeForbidden))

	got, err := svc.Get(ctx, task.ID, alice.ID)
	require.NoError(t, err)
	assert.Equal(t, task.ID, got.ID)
}

func TestUpdate(t *testing.T) {
	svc, accounts, _ := setupService(t)
	ctx := context.Background()
	alice := seedAccount(t, accounts, "Alice", "alice@example.com", rbac.RoleRegular)

	task, err := svc.Create(ctx, alice.ID, CreateTaskRequest{Title: "Draft"})
	require.NoError(t, err)

	inProgress := StatusInProgress
	high := PriorityHigh
	updated, err := svc.Update(ctx, task.ID, alice.ID, UpdateTaskParams{
		Status:   &inProgress,
		Priority: &high,
	})
	require.NoError(t, err)
	assert.Equal(t, StatusInProgress, updated.Status)
	assert.Equal(t, PriorityHigh, updated.Priority)
	assert.Equal(t, "Draft", updated.Title)
}

func TestUpdate_InvalidStatus(t *testing.T) {
	svc, accounts, _ := setupService(t)
	ctx := context.Background()
	alice := seedAccount(t, accounts, "Alice", "alice@example.com", rbac.RoleRegular)

	task, err := svc.Create(ctx, alice.ID, CreateTaskRequest{Title: "Draft"})
	require.NoError(t, err)

	bogus := Status("paused")
	_, err = svc.Update(ctx, task.ID, alice.ID, UpdateTaskParams{Status: &bogus})
	assert.True(t, apperr.IsCode(err, apperr.CodeInvalidInput))
}

func TestComplete_Idempotent(t *testing.T) {
	svc, accounts, _ := setupService(t)
	ctx := context.Background()
	alice := seedAccount(t, accounts, "Alice", "alice@example.com", rbac.RoleRegular)

	task, err := svc.Create(ctx, alice.ID, CreateTaskRequest{Title: "Draft"})
	require.NoError(t, err)

	done, err := svc.Complete(ctx, task.ID, alice.ID)
	require.NoError(t, err)
	assert.Equal(t, StatusCompleted, done.Status)

	again, err := svc.Complete(ctx, task.ID, alice.ID)
	require.NoError(t, err)
	assert.Equal(t, StatusCompleted, again.Status)
}

func TestDelete(t *testing.T) {
	svc, accounts, _ := setupService(t)
	ctx := context.Background()
	alice := seedAccount(t, accounts, "Alice", "alice@example.com", rbac.RoleRegular)
	bob := seedAccount(t, accounts, "Bob", "bob@example.com", rbac.RoleRegular)
	admin := seedAccount(t, accounts, "Root", "root@example.com", rbac.RoleAdmin)

	task, err := svc.Create(ctx, alice.ID, CreateTaskRequest{Title: "Draft"})
	require.NoError(t, err)

	err = svc.Delete(ctx, task.ID, bob.ID)
	assert.True(t, apperr.IsCode(err, apperr.CodeForbidden))

	require.NoError(t, svc.Delete(ctx, task.ID, admin.ID))

	_, err = svc.Get(ctx, task.ID, alice.ID)
	assert.True(t, apperr.IsCode(err, apperr.CodeNotFound))
}
