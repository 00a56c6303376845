package account

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/openshelf/openshelf/pkg/apperr"
	"github.com/openshelf/openshelf/pkg/rbac"
)

const uniqueViolationCode = "23505"

const accountColumns = `
	id, name, email, mobile, password_hash, profile_photo, role, privileged_id,
	is_email_verified, email_verification_token, email_verification_expires, email_verified_at,
	is_deleted,
	is_banned, ban_reason, banned_by_id, banned_by_name, banned_at,
	is_suspended, suspend_reason, suspended_by_id, suspended_by_name, suspended_at, suspend_expires_at,
	created_by_id, created_by_name, created_at, updated_at`

// PostgresAccountRepository implements AccountRepository backed by pgxpool
type PostgresAccountRepository struct {
	db *pgxpool.Pool
}

// NewPostgresAccountRepository creates a new PostgreSQL-based account repository
func NewPostgresAccountRepository(db *pgxpool.Pool) *PostgresAccountRepository {
	return &PostgresAccountRepository{db: db}
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanAccount(row rowScanner) (Account, error) {
	var a Account
	var role string
	var bannedByID, suspendedByID *uuid.UUID
	var bannedByName, suspendedByName *string

	err := row.Scan(
		&a.ID, &a.Name, &a.Email, &a.Mobile, &a.PasswordHash, &a.ProfilePhoto, &role, &a.PrivilegedID,
		&a.IsEmailVerified, &a.EmailVerificationToken, &a.EmailVerificationExpires, &a.EmailVerifiedAt,
		&a.IsDeleted,
		&a.IsBanned, &a.BanReason, &bannedByID, &bannedByName, &a.BannedAt,
		&a.IsSuspended, &a.SuspendReason, &suspendedByID, &suspendedByName, &a.SuspendedAt, &a.SuspendExpiresAt,
		&a.CreatedBy.ID, &a.CreatedBy.Name, &a.CreatedAt, &a.UpdatedAt,
	)
	if err != nil {
		return Account{}, err
	}

	a.Role = rbac.Role(role)
	if bannedByID != nil {
		a.BannedBy = &ActorRef{ID: *bannedByID, Name: derefString(bannedByName)}
	}
	if suspendedByID != nil {
		a.SuspendedBy = &ActorRef{ID: *suspendedByID, Name: derefString(suspendedByName)}
	}
	return a, nil
}

func derefString(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}

func mapPgError(err error, resource, identifier string) error {
	if errors.Is(err, pgx.ErrNoRows) {
		return apperr.NotFound(resource, identifier)
	}
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) && pgErr.Code == uniqueViolationCode {
		return apperr.Conflict(resource, identifier)
	}
	return apperr.Internal(err, "account store failure")
}

// Create inserts a new account. createdBy may be nil for self-registration;
// the caller resolves it with SetCreatedBy once the id is known.
func (r *PostgresAccountRepository) Create(ctx context.Context, params CreateAccountParams) (Account, error) {
	createdByID := uuid.Nil
	createdByName := "Self"
	if params.CreatedBy != nil {
		createdByID = params.CreatedBy.ID
		createdByName = params.CreatedBy.Name
	}

	query := `
		INSERT INTO accounts (
			name, email, mobile, password_hash, role, privileged_id,
			email_verification_token, email_verification_expires,
			created_by_id, created_by_name
		)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
		RETURNING` + accountColumns

	row := r.db.QueryRow(ctx, query,
		params.Name, params.Email, params.Mobile, params.PasswordHash,
		string(params.Role), params.PrivilegedID,
		params.EmailVerificationToken, params.EmailVerificationExpires,
		createdByID, createdByName,
	)
	a, err := scanAccount(row)
	if err != nil {
		return Account{}, mapPgError(err, "account", params.Email)
	}
	return a, nil
}

// FindByID retrieves an account by id
func (r *PostgresAccountRepository) FindByID(ctx context.Context, id uuid.UUID) (Account, error) {
	query := `SELECT` + accountColumns + ` FROM accounts WHERE id = $1`
	a, err := scanAccount(r.db.QueryRow(ctx, query, id))
	if err != nil {
		return Account{}, mapPgError(err, "account", id.String())
	}
	return a, nil
}

// FindByEmail retrieves an account by email, regardless of deletion state
func (r *PostgresAccountRepository) FindByEmail(ctx context.Context, email string) (Account, error) {
	query := `SELECT` + accountColumns + ` FROM accounts WHERE email = $1`
	a, err := scanAccount(r.db.QueryRow(ctx, query, strings.ToLower(email)))
	if err != nil {
		return Account{}, mapPgError(err, "account", email)
	}
	return a, nil
}

// FindByVerificationToken retrieves the account holding a verification token.
// Verified accounts still match: the service distinguishes "already verified"
// from "no such token".
func (r *PostgresAccountRepository) FindByVerificationToken(ctx context.Context, token string) (Account, error) {
	query := `SELECT` + accountColumns + ` FROM accounts WHERE email_verification_token = $1`
	a, err := scanAccount(r.db.QueryRow(ctx, query, token))
	if err != nil {
		return Account{}, mapPgError(err, "verification token", "")
	}
	return a, nil
}

// MarkEmailVerified flips the verified flag exactly once. The WHERE clause
// guards against concurrent redemption: only the first caller sees a row.
func (r *PostgresAccountRepository) MarkEmailVerified(ctx context.Context, id uuid.UUID, verifiedAt time.Time) (bool, error) {
	query := `
		UPDATE accounts
		SET is_email_verified = TRUE,
		    email_verified_at = $2,
		    email_verification_expires = NULL,
		    updated_at = NOW() AT TIME ZONE 'UTC'
		WHERE id = $1
		AND is_email_verified = FALSE`

	tag, err := r.db.Exec(ctx, query, id, verifiedAt)
	if err != nil {
		return false, apperr.Internal(err, "failed to mark email verified")
	}
	return tag.RowsAffected() > 0, nil
}

// SetCreatedBy stamps the creator reference on an existing account
func (r *PostgresAccountRepository) SetCreatedBy(ctx context.Context, id uuid.UUID, createdBy ActorRef) error {
	query := `
		UPDATE accounts
		SET created_by_id = $2, created_by_name = $3,
		    updated_at = NOW() AT TIME ZONE 'UTC'
		WHERE id = $1`

	_, err := r.db.Exec(ctx, query, id, createdBy.ID, createdBy.Name)
	if err != nil {
		return apperr.Internal(err, "failed to set account creator")
	}
	return nil
}

// UpdateProfile applies a partial update; nil params leave columns untouched
func (r *PostgresAccountRepository) UpdateProfile(ctx context.Context, id uuid.UUID, params UpdateProfileParams) (Account, error) {
	query := `
		UPDATE accounts
		SET name          = COALESCE($2, name),
		    email         = COALESCE($3, email),
		    mobile        = COALESCE($4, mobile),
		    password_hash = COALESCE($5, password_hash),
		    profile_photo = COALESCE($6, profile_photo),
		    updated_at    = NOW() AT TIME ZONE 'UTC'
		WHERE id = $1
		RETURNING` + accountColumns

	row := r.db.QueryRow(ctx, query, id,
		params.Name, params.Email, params.Mobile, params.PasswordHash, params.ProfilePhoto)
	a, err := scanAccount(row)
	if err != nil {
		return Account{}, mapPgError(err, "account", id.String())
	}
	return a, nil
}

// SetDeleted flips the soft-delete marker
func (r *PostgresAccountRepository) SetDeleted(ctx context.Context, id uuid.UUID, deleted bool) error {
	query := `
		UPDATE accounts
		SET is_deleted = $2, updated_at = NOW() AT TIME ZONE 'UTC'
		WHERE id = $1`

	tag, err := r.db.Exec(ctx, query, id, deleted)
	if err != nil {
		return apperr.Internal(err, "failed to update deletion state")
	}
	if tag.RowsAffected() == 0 {
		return apperr.NotFound("account", id.String())
	}
	return nil
}

// Delete permanently removes the record
func (r *PostgresAccountRepository) Delete(ctx context.Context, id uuid.UUID) error {
	tag, err := r.db.Exec(ctx, `DELETE FROM accounts WHERE id = $1`, id)
	if err != nil {
		return apperr.Internal(err, "failed to delete account")
	}
	if tag.RowsAffected() == 0 {
		return apperr.NotFound("account", id.String())
	}
	return nil
}

// SetBan stamps or clears all four ban fields in one statement
func (r *PostgresAccountRepository) SetBan(ctx context.Context, id uuid.UUID, state *BanState) error {
	var (
		reason *string
		byID   *uuid.UUID
		byName *string
		at     *time.Time
	)
	if state != nil {
		reason = &state.Reason
		byID = &state.By.ID
		byName = &state.By.Name
		at = &state.At
	}

	query := `
		UPDATE accounts
		SET is_banned      = $2,
		    ban_reason     = $3,
		    banned_by_id   = $4,
		    banned_by_name = $5,
		    banned_at      = $6,
		    updated_at     = NOW() AT TIME ZONE 'UTC'
		WHERE id = $1`

	tag, err := r.db.Exec(ctx, query, id, state != nil, reason, byID, byName, at)
	if err != nil {
		return apperr.Internal(err, "failed to update ban state")
	}
	if tag.RowsAffected() == 0 {
		return apperr.NotFound("account", id.String())
	}
	return nil
}

// SetSuspension stamps or clears all suspension fields in one statement
func (r *PostgresAccountRepository) SetSuspension(ctx context.Context, id uuid.UUID, state *SuspensionState) error {
	var (
		reason    *string
		byID      *uuid.UUID
		byName    *string
		at        *time.Time
		expiresAt *time.Time
	)
	if state != nil {
		reason = &state.Reason
		byID = &state.By.ID
		byName = &state.By.Name
		at = &state.At
		expiresAt = state.ExpiresAt
	}

	query := `
		UPDATE accounts
		SET is_suspended       = $2,
		    suspend_reason     = $3,
		    suspended_by_id    = $4,
		    suspended_by_name  = $5,
		    suspended_at       = $6,
		    suspend_expires_at = $7,
		    updated_at         = NOW() AT TIME ZONE 'UTC'
		WHERE id = $1`

	tag, err := r.db.Exec(ctx, query, id, state != nil, reason, byID, byName, at, expiresAt)
	if err != nil {
		return apperr.Internal(err, "failed to update suspension state")
	}
	if tag.RowsAffected() == 0 {
		return apperr.NotFound("account", id.String())
	}
	return nil
}

// ListByDeleted returns accounts filtered on the soft-delete marker
func (r *PostgresAccountRepository) ListByDeleted(ctx context.Context, deleted bool) ([]Account, error) {
	query := `SELECT` + accountColumns + ` FROM accounts WHERE is_deleted = $1 ORDER BY created_at DESC`

	rows, err := r.db.Query(ctx, query, deleted)
	if err != nil {
		return nil, apperr.Internal(err, "failed to list accounts")
	}
	defer rows.Close()

	var accounts []Account
	for rows.Next() {
		a, err := scanAccount(rows)
		if err != nil {
			return nil, apperr.Internal(err, "failed to scan account")
		}
		accounts = append(accounts, a)
	}
	return accounts, rows.Err()
}
