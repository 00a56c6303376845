package account

import (
	"context"
	"crypto/rand"
	"encoding/base64"
	"fmt"
	"log/slog"
	"math/big"
	"time"

	"github.com/google/uuid"

	"github.com/openshelf/openshelf/pkg/apperr"
	"github.com/openshelf/openshelf/pkg/notification"
	"github.com/openshelf/openshelf/pkg/rbac"
	"github.com/openshelf/openshelf/pkg/token"
)

// DefaultVerificationExpiry is the verification token validity window
const DefaultVerificationExpiry = 15 * time.Minute

const defaultBanReason = "No reason provided"

// AccountService orchestrates account lifecycle transitions. Every mutation
// consults pkg/rbac before touching the store, and every operation re-reads
// current state; nothing is cached between requests.
type AccountService struct {
	repo               AccountRepository
	hasher             PasswordHasher
	notifier           *notification.NotificationManager
	tokens             *token.SessionTokenService
	baseURL            string
	verificationExpiry time.Duration
	now                func() time.Time
}

// AccountServiceOption configures an AccountService
type AccountServiceOption func(*AccountService)

// WithVerificationExpiry sets the verification token validity window
func WithVerificationExpiry(expiry time.Duration) AccountServiceOption {
	return func(s *AccountService) {
		if expiry > 0 {
			s.verificationExpiry = expiry
		}
	}
}

// WithClock overrides the time source, used by tests to force expiry
func WithClock(now func() time.Time) AccountServiceOption {
	return func(s *AccountService) {
		if now != nil {
			s.now = now
		}
	}
}

// NewAccountService creates an account service
func NewAccountService(
	repo AccountRepository,
	hasher PasswordHasher,
	notifier *notification.NotificationManager,
	tokens *token.SessionTokenService,
	baseURL string,
	opts ...AccountServiceOption,
) *AccountService {
	s := &AccountService{
		repo:               repo,
		hasher:             hasher,
		notifier:           notifier,
		tokens:             tokens,
		baseURL:            baseURL,
		verificationExpiry: DefaultVerificationExpiry,
		now:                func() time.Time { return time.Now().UTC() },
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// generateVerificationToken returns a cryptographically random single-use token
func generateVerificationToken() (string, error) {
	b := make([]byte, 32)
	if _, err := rand.Read(b); err != nil {
		return "", fmt.Errorf("failed to generate token: %w", err)
	}
	return base64.URLEncoding.EncodeToString(b), nil
}

// generatePrivilegedID mints the privilege marker for admin-tier roles
func generatePrivilegedID() (string, error) {
	n, err := rand.Int(rand.Reader, big.NewInt(100000))
	if err != nil {
		return "", fmt.Errorf("failed to generate privileged id: %w", err)
	}
	return fmt.Sprintf("PRIV%05d", n.Int64()), nil
}

// loadActor re-reads the acting account so policy decisions always see
// current role and ban/suspension state
func (s *AccountService) loadActor(ctx context.Context, actorID uuid.UUID) (Account, error) {
	actor, err := s.repo.FindByID(ctx, actorID)
	if err != nil {
		if apperr.IsCode(err, apperr.CodeNotFound) {
			return Account{}, apperr.Unauthorized("acting account no longer exists")
		}
		return Account{}, err
	}
	return actor, nil
}

// RegisterParams are the inputs to Register. ActorID is nil for public
// self-registration and set when an authenticated actor creates the account.
type RegisterParams struct {
	Name     string
	Email    string
	Mobile   string
	Password string
	Role     string
	ActorID  *uuid.UUID
}

// Register creates an unverified account, issues a verification token, and
// dispatches the verification email asynchronously. Email delivery failure
// never rolls back account creation.
func (s *AccountService) Register(ctx context.Context, params RegisterParams) (Account, error) {
	if params.Name == "" || params.Email == "" || params.Mobile == "" || params.Password == "" {
		return Account{}, apperr.New(apperr.CodeInvalidInput, "missing required fields")
	}

	roleStr := params.Role
	if roleStr == "" {
		roleStr = string(rbac.RoleRegular)
	}
	role, ok := rbac.ParseRole(roleStr)
	if !ok {
		return Account{}, apperr.InvalidInput("role", roleStr)
	}

	var createdBy *ActorRef
	if params.ActorID != nil {
		actor, err := s.loadActor(ctx, *params.ActorID)
		if err != nil {
			return Account{}, err
		}
		ref := actor.Ref()
		createdBy = &ref

		if role.IsPrivileged() && !rbac.CanPerform(actor.Actor(), rbac.ActionCreatePrivilegedAccount, rbac.Target{}) {
			return Account{}, apperr.Forbidden("only admin or superadmin can create privileged accounts")
		}
	} else if role.IsPrivileged() {
		return Account{}, apperr.Forbidden("privileged accounts cannot self-register")
	}

	if _, err := s.repo.FindByEmail(ctx, params.Email); err == nil {
		return Account{}, apperr.Conflict("account", params.Email)
	} else if !apperr.IsCode(err, apperr.CodeNotFound) {
		return Account{}, err
	}

	passwordHash, err := s.hasher.Hash(params.Password)
	if err != nil {
		return Account{}, apperr.Internal(err, "failed to hash password")
	}

	var privilegedID *string
	if role.IsPrivileged() {
		pid, err := generatePrivilegedID()
		if err != nil {
			return Account{}, apperr.Internal(err, "failed to assign privileged id")
		}
		privilegedID = &pid
	}

	verificationToken, err := generateVerificationToken()
	if err != nil {
		return Account{}, apperr.Internal(err, "failed to issue verification token")
	}

	acct, err := s.repo.Create(ctx, CreateAccountParams{
		Name:                     params.Name,
		Email:                    params.Email,
		Mobile:                   params.Mobile,
		PasswordHash:             passwordHash,
		Role:                     role,
		PrivilegedID:             privilegedID,
		EmailVerificationToken:   verificationToken,
		EmailVerificationExpires: s.now().Add(s.verificationExpiry),
		CreatedBy:                createdBy,
	})
	if err != nil {
		return Account{}, err
	}

	// self-registration: the creator reference is the account itself,
	// resolvable only once the record has its id
	if createdBy == nil {
		selfRef := acct.Ref()
		if err := s.repo.SetCreatedBy(ctx, acct.ID, selfRef); err != nil {
			slog.Error("Failed to resolve self creator reference", "account_id", acct.ID, "err", err)
		} else {
			acct.CreatedBy = selfRef
		}
	}

	s.dispatchVerificationEmail(acct, verificationToken)

	slog.Info("Account registered", "account_id", acct.ID, "role", acct.Role)
	return acct, nil
}

func (s *AccountService) dispatchVerificationEmail(acct Account, verificationToken string) {
	if s.notifier == nil {
		return
	}
	link := fmt.Sprintf("%s/api/users/verify-email?token=%s", s.baseURL, verificationToken)
	go func() {
		err := s.notifier.Send(notification.NoticeEmailVerification, notification.NotificationData{
			To: acct.Email,
			Data: map[string]string{
				"Name": acct.Name,
				"Link": link,
			},
		})
		if err != nil {
			slog.Error("Failed to send verification email", "account_id", acct.ID, "err", err)
		}
	}()
}

// VerifyEmail redeems a verification token. Redemption is exactly-once: the
// conditional update in the store guarantees a single winner under concurrent
// attempts; later calls report alreadyVerified.
func (s *AccountService) VerifyEmail(ctx context.Context, verificationToken string) (Account, bool, error) {
	acct, err := s.repo.FindByVerificationToken(ctx, verificationToken)
	if err != nil {
		return Account{}, false, err
	}

	if acct.IsEmailVerified {
		slog.Info("Email already verified", "account_id", acct.ID)
		return acct, true, nil
	}

	if acct.EmailVerificationExpires != nil && s.now().After(*acct.EmailVerificationExpires) {
		slog.Warn("Verification token expired", "account_id", acct.ID, "expires_at", acct.EmailVerificationExpires)
		return Account{}, false, apperr.New(apperr.CodeExpired, "verification token has expired")
	}

	verifiedAt := s.now()
	applied, err := s.repo.MarkEmailVerified(ctx, acct.ID, verifiedAt)
	if err != nil {
		return Account{}, false, err
	}
	if !applied {
		// lost the race to a concurrent redemption
		current, err := s.repo.FindByID(ctx, acct.ID)
		if err != nil {
			return Account{}, false, err
		}
		return current, true, nil
	}

	acct.IsEmailVerified = true
	acct.EmailVerifiedAt = &verifiedAt
	acct.EmailVerificationExpires = nil

	slog.Info("Email verified", "account_id", acct.ID)
	return acct, false, nil
}

// Login authenticates an account and issues the signed session credential
func (s *AccountService) Login(ctx context.Context, email, password string) (Account, string, time.Time, error) {
	if email == "" || password == "" {
		return Account{}, "", time.Time{}, apperr.New(apperr.CodeInvalidInput, "email and password are required")
	}

	acct, err := s.repo.FindByEmail(ctx, email)
	if err != nil {
		return Account{}, "", time.Time{}, err
	}

	if !acct.IsEmailVerified {
		return Account{}, "", time.Time{}, apperr.Forbidden("email not verified")
	}

	match, err := s.hasher.Verify(password, acct.PasswordHash)
	if err != nil {
		return Account{}, "", time.Time{}, apperr.Internal(err, "failed to verify password")
	}
	if !match {
		return Account{}, "", time.Time{}, apperr.Unauthorized("incorrect password")
	}

	// data-integrity guard: privileged roles must carry a privileged id
	if acct.Role.IsPrivileged() && acct.PrivilegedID == nil {
		slog.Warn("Privileged account missing privileged id", "account_id", acct.ID, "role", acct.Role)
		return Account{}, "", time.Time{}, apperr.Forbidden("privileged account missing privileged id")
	}

	claims := map[string]interface{}{
		"id":    acct.ID.String(),
		"name":  acct.Name,
		"role":  string(acct.Role),
		"email": acct.Email,
		"createdBy": map[string]interface{}{
			"id":   acct.CreatedBy.ID.String(),
			"name": acct.CreatedBy.Name,
		},
	}
	if acct.PrivilegedID != nil {
		claims["privilegedId"] = *acct.PrivilegedID
	}

	sessionToken, expiry, err := s.tokens.GenerateToken(acct.ID.String(), claims)
	if err != nil {
		return Account{}, "", time.Time{}, apperr.Internal(err, "failed to issue session credential")
	}

	slog.Info("Account logged in", "account_id", acct.ID, "role", acct.Role)
	return acct, sessionToken, expiry, nil
}

// SoftDelete marks an account deleted. Idempotent: re-applying is a no-op.
func (s *AccountService) SoftDelete(ctx context.Context, targetID, actorID uuid.UUID) error {
	target, err := s.repo.FindByID(ctx, targetID)
	if err != nil {
		return err
	}
	actor, err := s.loadActor(ctx, actorID)
	if err != nil {
		return err
	}

	if !rbac.CanPerform(actor.Actor(), rbac.ActionSoftDelete, rbac.Target{OwnerID: target.ID}) {
		return apperr.Forbidden("not allowed to delete this account")
	}

	if target.IsDeleted {
		return nil
	}

	if err := s.repo.SetDeleted(ctx, targetID, true); err != nil {
		return err
	}
	slog.Info("Account soft-deleted", "account_id", targetID, "actor_id", actorID)
	return nil
}

// Activate clears the soft-delete marker; same permission shape as SoftDelete
func (s *AccountService) Activate(ctx context.Context, targetID, actorID uuid.UUID) error {
	target, err := s.repo.FindByID(ctx, targetID)
	if err != nil {
		return err
	}
	actor, err := s.loadActor(ctx, actorID)
	if err != nil {
		return err
	}

	if !rbac.CanPerform(actor.Actor(), rbac.ActionActivate, rbac.Target{OwnerID: target.ID}) {
		return apperr.Forbidden("not allowed to activate this account")
	}

	if !target.IsDeleted {
		return nil
	}

	if err := s.repo.SetDeleted(ctx, targetID, false); err != nil {
		return err
	}
	slog.Info("Account activated", "account_id", targetID, "actor_id", actorID)
	return nil
}

// HardDelete permanently removes an account
func (s *AccountService) HardDelete(ctx context.Context, targetID, actorID uuid.UUID) error {
	if _, err := s.repo.FindByID(ctx, targetID); err != nil {
		return err
	}
	actor, err := s.loadActor(ctx, actorID)
	if err != nil {
		return err
	}

	if !rbac.CanPerform(actor.Actor(), rbac.ActionHardDelete, rbac.Target{OwnerID: targetID}) {
		return apperr.Forbidden("not allowed to permanently delete this account")
	}

	if err := s.repo.Delete(ctx, targetID); err != nil {
		return err
	}
	slog.Info("Account hard-deleted", "account_id", targetID, "actor_id", actorID)
	return nil
}

// UpdateProfileRequest carries the optional profile fields; absent fields are
// untouched, not nulled
type UpdateProfileRequest struct {
	Name         *string
	Email        *string
	Mobile       *string
	Password     *string
	ProfilePhoto *string
}

// UpdateProfile applies a partial update to an account. Owners may update
// their own record unless banned or suspended; admins may update any.
func (s *AccountService) UpdateProfile(ctx context.Context, targetID, actorID uuid.UUID, req UpdateProfileRequest) (Account, error) {
	target, err := s.repo.FindByID(ctx, targetID)
	if err != nil {
		return Account{}, err
	}
	if target.IsDeleted {
		return Account{}, apperr.NotFound("active account", targetID.String())
	}

	actor, err := s.loadActor(ctx, actorID)
	if err != nil {
		return Account{}, err
	}

	action := rbac.ActionUpdateOtherRecord
	if actor.ID == target.ID {
		action = rbac.ActionUpdateOwnRecord
	}
	if !rbac.CanPerform(actor.Actor(), action, rbac.Target{OwnerID: target.ID}) {
		return Account{}, apperr.Forbidden("not allowed to update this account")
	}

	params := UpdateProfileParams{
		Name:         req.Name,
		Email:        req.Email,
		Mobile:       req.Mobile,
		ProfilePhoto: req.ProfilePhoto,
	}
	if req.Password != nil {
		hash, err := s.hasher.Hash(*req.Password)
		if err != nil {
			return Account{}, apperr.Internal(err, "failed to hash password")
		}
		params.PasswordHash = &hash
	}

	updated, err := s.repo.UpdateProfile(ctx, targetID, params)
	if err != nil {
		return Account{}, err
	}
	slog.Info("Account updated", "account_id", targetID, "actor_id", actorID)
	return updated, nil
}

// Ban stamps the ban overlay on an account
func (s *AccountService) Ban(ctx context.Context, targetID, actorID uuid.UUID, reason string) error {
	target, err := s.repo.FindByID(ctx, targetID)
	if err != nil {
		return err
	}
	actor, err := s.loadActor(ctx, actorID)
	if err != nil {
		return err
	}

	if !rbac.CanPerform(actor.Actor(), rbac.ActionBanAccount, rbac.Target{OwnerID: target.ID}) {
		return apperr.Forbidden("not allowed to ban accounts")
	}

	if reason == "" {
		reason = defaultBanReason
	}
	err = s.repo.SetBan(ctx, targetID, &BanState{
		Reason: reason,
		By:     actor.Ref(),
		At:     s.now(),
	})
	if err != nil {
		return err
	}
	slog.Info("Account banned", "account_id", targetID, "actor_id", actorID, "reason", reason)
	return nil
}

// Unban clears all four ban fields atomically
func (s *AccountService) Unban(ctx context.Context, targetID, actorID uuid.UUID) error {
	target, err := s.repo.FindByID(ctx, targetID)
	if err != nil {
		return err
	}
	actor, err := s.loadActor(ctx, actorID)
	if err != nil {
		return err
	}

	if !rbac.CanPerform(actor.Actor(), rbac.ActionBanAccount, rbac.Target{OwnerID: target.ID}) {
		return apperr.Forbidden("not allowed to unban accounts")
	}

	if err := s.repo.SetBan(ctx, targetID, nil); err != nil {
		return err
	}
	slog.Info("Account unbanned", "account_id", targetID, "actor_id", actorID)
	return nil
}

// Suspend stamps the suspension overlay, with an optional expiry
func (s *AccountService) Suspend(ctx context.Context, targetID, actorID uuid.UUID, reason string, expiresAt *time.Time) error {
	target, err := s.repo.FindByID(ctx, targetID)
	if err != nil {
		return err
	}
	actor, err := s.loadActor(ctx, actorID)
	if err != nil {
		return err
	}

	if !rbac.CanPerform(actor.Actor(), rbac.ActionSuspendAccount, rbac.Target{OwnerID: target.ID}) {
		return apperr.Forbidden("not allowed to suspend accounts")
	}

	if reason == "" {
		reason = defaultBanReason
	}
	err = s.repo.SetSuspension(ctx, targetID, &SuspensionState{
		Reason:    reason,
		By:        actor.Ref(),
		At:        s.now(),
		ExpiresAt: expiresAt,
	})
	if err != nil {
		return err
	}
	slog.Info("Account suspended", "account_id", targetID, "actor_id", actorID, "reason", reason)
	return nil
}

// Unsuspend clears all suspension fields atomically
func (s *AccountService) Unsuspend(ctx context.Context, targetID, actorID uuid.UUID) error {
	target, err := s.repo.FindByID(ctx, targetID)
	if err != nil {
		return err
	}
	actor, err := s.loadActor(ctx, actorID)
	if err != nil {
		return err
	}

	if !rbac.CanPerform(actor.Actor(), rbac.ActionSuspendAccount, rbac.Target{OwnerID: target.ID}) {
		return apperr.Forbidden("not allowed to unsuspend accounts")
	}

	if err := s.repo.SetSuspension(ctx, targetID, nil); err != nil {
		return err
	}
	slog.Info("Account unsuspended", "account_id", targetID, "actor_id", actorID)
	return nil
}

// GetByID returns an account; the handler projects fields per the actor's role
func (s *AccountService) GetByID(ctx context.Context, targetID uuid.UUID) (Account, error) {
	return s.repo.FindByID(ctx, targetID)
}

// ListActive returns accounts that are not soft-deleted
func (s *AccountService) ListActive(ctx context.Context) ([]Account, error) {
	return s.repo.ListByDeleted(ctx, false)
}

// ListInactive returns soft-deleted accounts; restricted to account managers
func (s *AccountService) ListInactive(ctx context.Context, actorID uuid.UUID) ([]Account, error) {
	actor, err := s.loadActor(ctx, actorID)
	if err != nil {
		return nil, err
	}
	if !rbac.CanPerform(actor.Actor(), rbac.ActionListAccounts, rbac.Target{}) {
		return nil, apperr.Forbidden("not allowed to list inactive accounts")
	}
	return s.repo.ListByDeleted(ctx, true)
}

// CanViewElevatedFields reports whether the actor sees the full projection
func (s *AccountService) CanViewElevatedFields(ctx context.Context, actorID uuid.UUID) bool {
	actor, err := s.loadActor(ctx, actorID)
	if err != nil {
		return false
	}
	return rbac.CanPerform(actor.Actor(), rbac.ActionViewElevatedFields, rbac.Target{})
}
