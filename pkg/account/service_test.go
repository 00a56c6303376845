package account

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/openshelf/openshelf/pkg/apperr"
	"github.com/openshelf/openshelf/pkg/notification"
	"github.com/openshelf/openshelf/pkg/rbac"
	"github.com/openshelf/openshelf/pkg/token"
)

type testClock struct {
	now time.Time
}

func (c *testClock) Now() time.Time {
	return c.now
}

func (c *testClock) Advance(d time.Duration) {
	c.now = c.now.Add(d)
}

func setupService(t *testing.T) (*AccountService, *InMemAccountRepository, *testClock) {
	t.Helper()

	repo := NewInMemAccountRepository()
	clock := &testClock{now: time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)}
	tokens := token.NewSessionTokenService("test-secret", "openshelf", "openshelf")
	svc := NewAccountService(repo, &BcryptHasher{}, nil, tokens, "http://localhost:4000",
		WithClock(clock.Now))
	return svc, repo, clock
}

// setupServiceWithNotifier wires a real notification manager so tests can
// observe the verification-email dispatch.
func setupServiceWithNotifier(t *testing.T, notifier notification.Notifier) (*AccountService, *InMemAccountRepository) {
	t.Helper()

	manager := notification.NewNotificationManager(notifier)
	require.NoError(t, manager.RegisterNotice(notification.NoticeEmailVerification, notification.NoticeTemplate{
		Subject: "Verify your email address",
		Text:    "Hi {{.Name}}, visit {{.Link}}",
	}))

	repo := NewInMemAccountRepository()
	tokens := token.NewSessionTokenService("test-secret", "openshelf", "openshelf")
	svc := NewAccountService(repo, &BcryptHasher{}, manager, tokens, "http://localhost:4000")
	return svc, repo
}

// failingNotifier simulates an unreachable mail server
type failingNotifier struct{}

func (failingNotifier) Send(notification.NoticeType, notification.NotificationData, notification.NoticeTemplate) error {
	return errors.New("smtp unavailable")
}

// seedAccount inserts a verified account directly through the repository so
// tests can act as roles that cannot self-register.
func seedAccount(t *testing.T, repo *InMemAccountRepository, name, email string, role rbac.Role) Account {
	t.Helper()

	hasher := &BcryptHasher{}
	hash, err := hasher.Hash("password123")
	require.NoError(t, err)

	var privilegedID *string
	if role.IsPrivileged() {
		pid := "PRIV00042"
		privilegedID = &pid
	}

	acct, err := repo.Create(context.Background(), CreateAccountParams{
		Name:                     name,
		Email:                    email,
		Mobile:                   "5550100",
		PasswordHash:             hash,
		Role:                     role,
		PrivilegedID:             privilegedID,
		EmailVerificationToken:   "seed-token-" + email,
		EmailVerificationExpires: time.Now().UTC().Add(15 * time.Minute),
	})
	require.NoError(t, err)

	applied, err := repo.MarkEmailVerified(context.Background(), acct.ID, time.Now().UTC())
	require.NoError(t, err)
	require.True(t, applied)

	verified, err := repo.FindByID(context.Background(), acct.ID)
	require.NoError(t, err)
	return verified
}

func TestRegister(t *testing.T) {
	svc, _, _ := setupService(t)
	ctx := context.Background()

	acct, err := svc.Register(ctx, RegisterParams{
		Name:     "Alice",
		Email:    "Alice@Example.com",
		Mobile:   "5550101",
		Password: "password123",
	})
	require.NoError(t, err)

	assert.Equal(t, "alice@example.com", acct.Email)
	assert.Equal(t, rbac.RoleRegular, acct.Role)
	assert.False(t, acct.IsEmailVerified)
	assert.Nil(t, acct.PrivilegedID)
	require.NotNil(t, acct.EmailVerificationToken)
	assert.NotEmpty(t, *acct.EmailVerificationToken)
	// self-registration resolves the creator reference to the account itself
	assert.Equal(t, acct.ID, acct.CreatedBy.ID)
}

func TestRegister_DispatchesVerificationEmail(t *testing.T) {
	mock := &notification.MockNotifier{}
	svc, _ := setupServiceWithNotifier(t, mock)

	acct, err := svc.Register(context.Background(), RegisterParams{
		Name:     "Alice",
		Email:    "alice@example.com",
		Mobile:   "5550101",
		Password: "password123",
	})
	require.NoError(t, err)

	// delivery is asynchronous
	require.Eventually(t, func() bool {
		return len(mock.Sent()) == 1
	}, time.Second, 10*time.Millisecond)

	sent := mock.Sent()[0]
	assert.Equal(t, "alice@example.com", sent.To)
	assert.Equal(t, "Alice", sent.Data["Name"])
	require.NotNil(t, acct.EmailVerificationToken)
	assert.Contains(t, sent.Data["Link"], "/api/users/verify-email?token="+*acct.EmailVerificationToken)
}

func TestRegister_NotifierFailureDoesNotFailRegistration(t *testing.T) {
	svc, repo := setupServiceWithNotifier(t, failingNotifier{})
	ctx := context.Background()

	acct, err := svc.Register(ctx, RegisterParams{
		Name:     "Alice",
		Email:    "alice@example.com",
		Mobile:   "5550101",
		Password: "password123",
	})
	require.NoError(t, err)

	// the account persists regardless of delivery failure
	stored, err := repo.FindByEmail(ctx, "alice@example.com")
	require.NoError(t, err)
	assert.Equal(t, acct.ID, stored.ID)
	assert.False(t, stored.IsEmailVerified)
}

func TestRegister_MissingFields(t *testing.T) {
	svc, _, _ := setupService(t)

	_, err := svc.Register(context.Background(), RegisterParams{
		Name:  "Alice",
		Email: "alice@example.com",
	})
	assert.True(t, apperr.IsCode(err, apperr.CodeInvalidInput))
}

func TestRegister_DuplicateEmail(t *testing.T) {
	svc, _, _ := setupService(t)
	ctx := context.Background()

	params := RegisterParams{
		Name:     "Alice",
		Email:    "alice@example.com",
		Mobile:   "5550101",
		Password: "password123",
	}
	_, err := svc.Register(ctx, params)
	require.NoError(t, err)

	params.Name = "Impostor"
	params.Email = "ALICE@example.com"
	_, err = svc.Register(ctx, params)
	assert.True(t, apperr.IsCode(err, apperr.CodeConflict))
}

func TestRegister_UnknownRole(t *testing.T) {
	svc, _, _ := setupService(t)

	_, err := svc.Register(context.Background(), RegisterParams{
		Name:     "Alice",
		Email:    "alice@example.com",
		Mobile:   "5550101",
		Password: "password123",
		Role:     "wizard",
	})
	assert.True(t, apperr.IsCode(err, apperr.CodeInvalidInput))
}

func TestRegister_PrivilegedSelfRegistrationDenied(t *testing.T) {
	svc, _, _ := setupService(t)

	_, err := svc.Register(context.Background(), RegisterParams{
		Name:     "Mallory",
		Email:    "mallory@example.com",
		Mobile:   "5550102",
		Password: "password123",
		Role:     "admin",
	})
	assert.True(t, apperr.IsCode(err, apperr.CodeForbidden))
}

func TestRegister_PrivilegedByAdmin(t *testing.T) {
	svc, repo, _ := setupService(t)
	ctx := context.Background()
	admin := seedAccount(t, repo, "Root", "root@example.com", rbac.RoleAdmin)

	acct, err := svc.Register(ctx, RegisterParams{
		Name:     "Bob",
		Email:    "bob@example.com",
		Mobile:   "5550103",
		Password: "password123",
		Role:     "manager",
		ActorID:  &admin.ID,
	})
	require.NoError(t, err)

	require.NotNil(t, acct.PrivilegedID)
	assert.True(t, strings.HasPrefix(*acct.PrivilegedID, "PRIV"))
	assert.Len(t, *acct.PrivilegedID, 9)
	assert.Equal(t, admin.ID, acct.CreatedBy.ID)
}

func TestRegister_PrivilegedByRegularDenied(t *testing.T) {
	svc, repo, _ := setupService(t)
	regular := seedAccount(t, repo, "Eve", "eve@example.com", rbac.RoleRegular)

	_, err := svc.Register(context.Background(), RegisterParams{
		Name:     "Mallory",
		Email:    "mallory@example.com",
		Mobile:   "5550104",
		Password: "password123",
		Role:     "superadmin",
		ActorID:  &regular.ID,
	})
	assert.True(t, apperr.IsCode(err, apperr.CodeForbidden))
}

func TestRegister_RegularHasNoPrivilegedID(t *testing.T) {
	svc, _, _ := setupService(t)

	acct, err := svc.Register(context.Background(), RegisterParams{
		Name:     "Carol",
		Email:    "carol@example.com",
		Mobile:   "5550105",
		Password: "password123",
		Role:     "student",
	})
	require.NoError(t, err)
	assert.Nil(t, acct.PrivilegedID)
}

func TestVerifyEmail(t *testing.T) {
	svc, _, _ := setupService(t)
	ctx := context.Background()

	acct, err := svc.Register(ctx, RegisterParams{
		Name:     "Alice",
		Email:    "alice@example.com",
		Mobile:   "5550101",
		Password: "password123",
	})
	require.NoError(t, err)

	verified, alreadyVerified, err := svc.VerifyEmail(ctx, *acct.EmailVerificationToken)
	require.NoError(t, err)
	assert.False(t, alreadyVerified)
	assert.True(t, verified.IsEmailVerified)
	assert.NotNil(t, verified.EmailVerifiedAt)
	assert.Nil(t, verified.EmailVerificationExpires)
}

func TestVerifyEmail_SecondRedemptionReportsAlreadyVerified(t *testing.T) {
	svc, _, _ := setupService(t)
	ctx := context.Background()

	acct, err := svc.Register(ctx, RegisterParams{
		Name:     "Alice",
		Email:    "alice@example.com",
		Mobile:   "5550101",
		Password: "password123",
	})
	require.NoError(t, err)

	_, alreadyVerified, err := svc.VerifyEmail(ctx, *acct.EmailVerificationToken)
	require.NoError(t, err)
	require.False(t, alreadyVerified)

	_, alreadyVerified, err = svc.VerifyEmail(ctx, *acct.EmailVerificationToken)
	require.NoError(t, err)
	assert.True(t, alreadyVerified)
}

func TestVerifyEmail_ExpiredToken(t *testing.T) {
	svc, _, clock := setupService(t)
	ctx := context.Background()

	acct, err := svc.Register(ctx, RegisterParams{
		Name:     "Alice",
		Email:    "alice@example.com",
		Mobile:   "5550101",
		Password: "password123",
	})
	require.NoError(t, err)

	clock.Advance(16 * time.Minute)

	_, _, err = svc.VerifyEmail(ctx, *acct.EmailVerificationToken)
	assert.True(t, apperr.IsCode(err, apperr.CodeExpired))
}

func TestVerifyEmail_UnknownToken(t *testing.T) {
	svc, _, _ := setupService(t)

	_, _, err := svc.VerifyEmail(context.Background(), "no-such-token")
	assert.True(t, apperr.IsCode(err, apperr.CodeNotFound))
}

func TestLogin_UnverifiedDenied(t *testing.T) {
	svc, _, _ := setupService(t)
	ctx := context.Background()

	_, err := svc.Register(ctx, RegisterParams{
		Name:     "Alice",
		Email:    "alice@example.com",
		Mobile:   "5550101",
		Password: "password123",
	})
	require.NoError(t, err)

	_, _, _, err = svc.Login(ctx, "alice@example.com", "password123")
	assert.True(t, apperr.IsCode(err, apperr.CodeForbidden))
}

func TestLogin_WrongPassword(t *testing.T) {
	svc, repo, _ := setupService(t)
	seedAccount(t, repo, "Alice", "alice@example.com", rbac.RoleRegular)

	_, _, _, err := svc.Login(context.Background(), "alice@example.com", "wrong-password")
	assert.True(t, apperr.IsCode(err, apperr.CodeUnauthorized))
}

func TestLogin_UnknownEmail(t *testing.T) {
	svc, _, _ := setupService(t)

	_, _, _, err := svc.Login(context.Background(), "nobody@example.com", "password123")
	assert.True(t, apperr.IsCode(err, apperr.CodeNotFound))
}

func TestLogin_PrivilegedWithoutPrivilegedIDDenied(t *testing.T) {
	svc, repo, _ := setupService(t)
	ctx := context.Background()

	// an admin record missing its privilege marker is a data-integrity
	// fault and must not receive a session
	hash, err := (&BcryptHasher{}).Hash("password123")
	require.NoError(t, err)
	acct, err := repo.Create(ctx, CreateAccountParams{
		Name:                     "Rogue",
		Email:                    "rogue@example.com",
		Mobile:                   "5550100",
		PasswordHash:             hash,
		Role:                     rbac.RoleAdmin,
		EmailVerificationToken:   "seed-token-rogue",
		EmailVerificationExpires: time.Now().UTC().Add(15 * time.Minute),
	})
	require.NoError(t, err)
	applied, err := repo.MarkEmailVerified(ctx, acct.ID, time.Now().UTC())
	require.NoError(t, err)
	require.True(t, applied)

	_, _, _, err = svc.Login(ctx, "rogue@example.com", "password123")
	assert.True(t, apperr.IsCode(err, apperr.CodeForbidden))
}

func TestRegisterVerifyLoginFlow(t *testing.T) {
	svc, _, _ := setupService(t)
	ctx := context.Background()

	acct, err := svc.Register(ctx, RegisterParams{
		Name:     "Alice",
		Email:    "alice@example.com",
		Mobile:   "5550101",
		Password: "password123",
	})
	require.NoError(t, err)

	_, _, _, err = svc.Login(ctx, "alice@example.com", "password123")
	require.True(t, apperr.IsCode(err, apperr.CodeForbidden))

	_, _, err2 := svc.VerifyEmail(ctx, *acct.EmailVerificationToken)
	require.NoError(t, err2)

	loggedIn, sessionToken, expiry, err := svc.Login(ctx, "alice@example.com", "password123")
	require.NoError(t, err)
	assert.Equal(t, acct.ID, loggedIn.ID)
	assert.NotEmpty(t, sessionToken)
	assert.True(t, expiry.After(time.Now()))
}

func TestLogin_SessionClaims(t *testing.T) {
	svc, repo, _ := setupService(t)
	admin := seedAccount(t, repo, "Root", "root@example.com", rbac.RoleAdmin)

	_, sessionToken, _, err := svc.Login(context.Background(), admin.Email, "password123")
	require.NoError(t, err)

	tokens := token.NewSessionTokenService("test-secret", "openshelf", "openshelf")
	parsed, err := tokens.ParseToken(sessionToken)
	require.NoError(t, err)

	claims, ok := parsed.Claims.(interface{ GetSubject() (string, error) })
	require.True(t, ok)
	subject, err := claims.GetSubject()
	require.NoError(t, err)
	assert.Equal(t, admin.ID.String(), subject)
}

func TestSoftDelete_Idempotent(t *testing.T) {
	svc, repo, _ := setupService(t)
	ctx := context.Background()
	alice := seedAccount(t, repo, "Alice", "alice@example.com", rbac.RoleRegular)

	require.NoError(t, svc.SoftDelete(ctx, alice.ID, alice.ID))
	// re-applying is a no-op, not an error
	require.NoError(t, svc.SoftDelete(ctx, alice.ID, alice.ID))

	stored, err := repo.FindByID(ctx, alice.ID)
	require.NoError(t, err)
	assert.True(t, stored.IsDeleted)
}

func TestSoftDelete_OtherAccountDenied(t *testing.T) {
	svc, repo, _ := setupService(t)
	ctx := context.Background()
	alice := seedAccount(t, repo, "Alice", "alice@example.com", rbac.RoleRegular)
	bob := seedAccount(t, repo, "Bob", "bob@example.com", rbac.RoleRegular)

	err := svc.SoftDelete(ctx, alice.ID, bob.ID)
	assert.True(t, apperr.IsCode(err, apperr.CodeForbidden))
}

func TestActivate_RestoresSoftDeleted(t *testing.T) {
	svc, repo, _ := setupService(t)
	ctx := context.Background()
	alice := seedAccount(t, repo, "Alice", "alice@example.com", rbac.RoleRegular)
	admin := seedAccount(t, repo, "Root", "root@example.com", rbac.RoleAdmin)

	require.NoError(t, svc.SoftDelete(ctx, alice.ID, admin.ID))
	require.NoError(t, svc.Activate(ctx, alice.ID, admin.ID))

	stored, err := repo.FindByID(ctx, alice.ID)
	require.NoError(t, err)
	assert.False(t, stored.IsDeleted)
}

func TestHardDelete(t *testing.T) {
	svc, repo, _ := setupService(t)
	ctx := context.Background()
	alice := seedAccount(t, repo, "Alice", "alice@example.com", rbac.RoleRegular)
	admin := seedAccount(t, repo, "Root", "root@example.com", rbac.RoleAdmin)

	require.NoError(t, svc.HardDelete(ctx, alice.ID, admin.ID))

	_, err := repo.FindByID(ctx, alice.ID)
	assert.True(t, apperr.IsCode(err, apperr.CodeNotFound))
}

func TestHardDelete_RegularDenied(t *testing.T) {
	svc, repo, _ := setupService(t)
	ctx := context.Background()
	alice := seedAccount(t, repo, "Alice", "alice@example.com", rbac.RoleRegular)

	err := svc.HardDelete(ctx, alice.ID, alice.ID)
	assert.True(t, apperr.IsCode(err, apperr.CodeForbidden))

	_, err = repo.FindByID(ctx, alice.ID)
	assert.NoError(t, err)
}

func TestUpdateProfile_Self(t *testing.T) {
	svc, repo, _ := setupService(t)
	ctx := context.Background()
	alice := seedAccount(t, repo, "Alice", "alice@example.com", rbac.RoleRegular)

	newName := "Alice Cooper"
	updated, err := svc.UpdateProfile(ctx, alice.ID, alice.ID, UpdateProfileRequest{Name: &newName})
	require.NoError(t, err)
	assert.Equal(t, "Alice Cooper", updated.Name)
	// untouched fields survive
	assert.Equal(t, alice.Email, updated.Email)
	assert.Equal(t, alice.Mobile, updated.Mobile)
}

func TestUpdateProfile_BannedSelfDenied(t *testing.T) {
	svc, repo, _ := setupService(t)
	ctx := context.Background()
	alice := seedAccount(t, repo, "Alice", "alice@example.com", rbac.RoleRegular)
	admin := seedAccount(t, repo, "Root", "root@example.com", rbac.RoleAdmin)

	require.NoError(t, svc.Ban(ctx, alice.ID, admin.ID, "abuse"))

	newName := "New Name"
	_, err := svc.UpdateProfile(ctx, alice.ID, alice.ID, UpdateProfileRequest{Name: &newName})
	assert.True(t, apperr.IsCode(err, apperr.CodeForbidden))

	// an admin can still update the banned account
	updated, err := svc.UpdateProfile(ctx, alice.ID, admin.ID, UpdateProfileRequest{Name: &newName})
	require.NoError(t, err)
	assert.Equal(t, "New Name", updated.Name)
}

func TestUpdateProfile_SoftDeletedTargetNotFound(t *testing.T) {
	svc, repo, _ := setupService(t)
	ctx := context.Background()
	alice := seedAccount(t, repo, "Alice", "alice@example.com", rbac.RoleRegular)
	admin := seedAccount(t, repo, "Root", "root@example.com", rbac.RoleAdmin)

	require.NoError(t, svc.SoftDelete(ctx, alice.ID, admin.ID))

	newName := "Ghost"
	_, err := svc.UpdateProfile(ctx, alice.ID, admin.ID, UpdateProfileRequest{Name: &newName})
	assert.True(t, apperr.IsCode(err, apperr.CodeNotFound))
}

func TestBanAndUnban(t *testing.T) {
	svc, repo, clock := setupService(t)
	ctx := context.Background()
	alice := seedAccount(t, repo, "Alice", "alice@example.com", rbac.RoleRegular)
	admin := seedAccount(t, repo, "Root", "root@example.com", rbac.RoleAdmin)

	require.NoError(t, svc.Ban(ctx, alice.ID, admin.ID, "spamming"))

	banned, err := repo.FindByID(ctx, alice.ID)
	require.NoError(t, err)
	assert.True(t, banned.IsBanned)
	require.NotNil(t, banned.BanReason)
	assert.Equal(t, "spamming", *banned.BanReason)
	require.NotNil(t, banned.BannedBy)
	assert.Equal(t, admin.ID, banned.BannedBy.ID)
	assert.Equal(t, admin.Name, banned.BannedBy.Name)
	require.NotNil(t, banned.BannedAt)
	assert.Equal(t, clock.Now(), *banned.BannedAt)

	require.NoError(t, svc.Unban(ctx, alice.ID, admin.ID))

	unbanned, err := repo.FindByID(ctx, alice.ID)
	require.NoError(t, err)
	assert.False(t, unbanned.IsBanned)
	assert.Nil(t, unbanned.BanReason)
	assert.Nil(t, unbanned.BannedBy)
	assert.Nil(t, unbanned.BannedAt)
}

func TestBan_DefaultReason(t *testing.T) {
	svc, repo, _ := setupService(t)
	ctx := context.Background()
	alice := seedAccount(t, repo, "Alice", "alice@example.com", rbac.RoleRegular)
	admin := seedAccount(t, repo, "Root", "root@example.com", rbac.RoleAdmin)

	require.NoError(t, svc.Ban(ctx, alice.ID, admin.ID, ""))

	banned, err := repo.FindByID(ctx, alice.ID)
	require.NoError(t, err)
	require.NotNil(t, banned.BanReason)
	assert.Equal(t, "No reason provided", *banned.BanReason)
}

func TestBan_NonAdminDeniedWithoutMutation(t *testing.T) {
	svc, repo, _ := setupService(t)
	ctx := context.Background()
	alice := seedAccount(t, repo, "Alice", "alice@example.com", rbac.RoleRegular)
	manager := seedAccount(t, repo, "Mgr", "mgr@example.com", rbac.RoleManager)

	err := svc.Ban(ctx, alice.ID, manager.ID, "because")
	assert.True(t, apperr.IsCode(err, apperr.CodeForbidden))

	stored, err := repo.FindByID(ctx, alice.ID)
	require.NoError(t, err)
	assert.False(t, stored.IsBanned)
	assert.Nil(t, stored.BanReason)
}

func TestSuspendAndUnsuspend(t *testing.T) {
	svc, repo, clock := setupService(t)
	ctx := context.Background()
	alice := seedAccount(t, repo, "Alice", "alice@example.com", rbac.RoleRegular)
	admin := seedAccount(t, repo, "Root", "root@example.com", rbac.RoleAdmin)

	expiresAt := clock.Now().Add(72 * time.Hour)
	require.NoError(t, svc.Suspend(ctx, alice.ID, admin.ID, "under review", &expiresAt))

	suspended, err := repo.FindByID(ctx, alice.ID)
	require.NoError(t, err)
	assert.True(t, suspended.IsSuspended)
	require.NotNil(t, suspended.SuspendReason)
	assert.Equal(t, "under review", *suspended.SuspendReason)
	require.NotNil(t, suspended.SuspendExpiresAt)
	assert.Equal(t, expiresAt, *suspended.SuspendExpiresAt)

	require.NoError(t, svc.Unsuspend(ctx, alice.ID, admin.ID))

	cleared, err := repo.FindByID(ctx, alice.ID)
	require.NoError(t, err)
	assert.False(t, cleared.IsSuspended)
	assert.Nil(t, cleared.SuspendReason)
	assert.Nil(t, cleared.SuspendedBy)
	assert.Nil(t, cleared.SuspendedAt)
	assert.Nil(t, cleared.SuspendExpiresAt)
}

func TestListInactive_RequiresManagerRole(t *testing.T) {
	svc, repo, _ := setupService(t)
	ctx := context.Background()
	alice := seedAccount(t, repo, "Alice", "alice@example.com", rbac.RoleRegular)
	manager := seedAccount(t, repo, "Mgr", "mgr@example.com", rbac.RoleManager)
	admin := seedAccount(t, repo, "Root", "root@example.com", rbac.RoleAdmin)

	require.NoError(t, svc.SoftDelete(ctx, alice.ID, admin.ID))

	_, err := svc.ListInactive(ctx, alice.ID)
	assert.True(t, apperr.IsCode(err, apperr.CodeForbidden))

	inactive, err := svc.ListInactive(ctx, manager.ID)
	require.NoError(t, err)
	require.Len(t, inactive, 1)
	assert.Equal(t, alice.ID, inactive[0].ID)
}

func TestCanViewElevatedFields(t *testing.T) {
	svc, repo, _ := setupService(t)
	ctx := context.Background()
	alice := seedAccount(t, repo, "Alice", "alice@example.com", rbac.RoleRegular)
	librarian := seedAccount(t, repo, "Lib", "lib@example.com", rbac.RoleLibrarian)

	assert.False(t, svc.CanViewElevatedFields(ctx, alice.ID))
	assert.True(t, svc.CanViewElevatedFields(ctx, librarian.ID))
}

func TestActorMissingIsUnauthorized(t *testing.T) {
	svc, repo, _ := setupService(t)
	ctx := context.Background()
	alice := seedAccount(t, repo, "Alice", "alice@example.com", rbac.RoleRegular)
	ghost := seedAccount(t, repo, "Ghost", "ghost@example.com", rbac.RoleAdmin)
	require.NoError(t, repo.Delete(ctx, ghost.ID))

	err := svc.SoftDelete(ctx, alice.ID, ghost.ID)
	assert.True(t, apperr.IsCode(err, apperr.CodeUnauthorized))
}
