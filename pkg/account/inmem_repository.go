package account

import (
	"context"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/openshelf/openshelf/pkg/apperr"
)

// InMemAccountRepository is a mutex-guarded in-memory implementation of
// AccountRepository, used in tests and demo mode. It mirrors the conditional
// update semantics of the Postgres repository.
type InMemAccountRepository struct {
	mu       sync.RWMutex
	accounts map[uuid.UUID]Account
}

// NewInMemAccountRepository creates an empty in-memory account repository
func NewInMemAccountRepository() *InMemAccountRepository {
	return &InMemAccountRepository{
		accounts: make(map[uuid.UUID]Account),
	}
}

func (r *InMemAccountRepository) Create(_ context.Context, params CreateAccountParams) (Account, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	email := strings.ToLower(params.Email)
	for _, a := range r.accounts {
		if a.Email == email {
			return Account{}, apperr.Conflict("account", params.Email)
		}
	}

	now := time.Now().UTC()
	token := params.EmailVerificationToken
	expires := params.EmailVerificationExpires
	a := Account{
		ID:                       uuid.New(),
		Name:                     params.Name,
		Email:                    email,
		Mobile:                   params.Mobile,
		PasswordHash:             params.PasswordHash,
		Role:                     params.Role,
		PrivilegedID:             params.PrivilegedID,
		EmailVerificationToken:   &token,
		EmailVerificationExpires: &expires,
		CreatedBy:                ActorRef{Name: "Self"},
		CreatedAt:                now,
		UpdatedAt:                now,
	}
	if params.CreatedBy != nil {
		a.CreatedBy = *params.CreatedBy
	}

	r.accounts[a.ID] = a
	return a, nil
}

func (r *InMemAccountRepository) FindByID(_ context.Context, id uuid.UUID) (Account, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	a, ok := r.accounts[id]
	if !ok {
		return Account{}, apperr.NotFound("account", id.String())
	}
	return a, nil
}

func (r *InMemAccountRepository) FindByEmail(_ context.Context, email string) (Account, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	email = strings.ToLower(email)
	for _, a := range r.accounts {
		if a.Email == email {
			return a, nil
		}
	}
	return Account{}, apperr.NotFound("account", email)
}

func (r *InMemAccountRepository) FindByVerificationToken(_ context.Context, token string) (Account, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	for _, a := range r.accounts {
		if a.EmailVerificationToken != nil && *a.EmailVerificationToken == token {
			return a, nil
		}
	}
	return Account{}, apperr.NotFound("verification token", "")
}

func (r *InMemAccountRepository) MarkEmailVerified(_ context.Context, id uuid.UUID, verifiedAt time.Time) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	a, ok := r.accounts[id]
	if !ok || a.IsEmailVerified {
		return false, nil
	}

	a.IsEmailVerified = true
	a.EmailVerifiedAt = &verifiedAt
	a.EmailVerificationExpires = nil
	a.UpdatedAt = time.Now().UTC()
	r.accounts[id] = a
	return true, nil
}

func (r *InMemAccountRepository) SetCreatedBy(_ context.Context, id uuid.UUID, createdBy ActorRef) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	a, ok := r.accounts[id]
	if !ok {
		return apperr.NotFound("account", id.String())
	}
	a.CreatedBy = createdBy
	a.UpdatedAt = time.Now().UTC()
	r.accounts[id] = a
	return nil
}

func (r *InMemAccountRepository) UpdateProfile(_ context.Context, id uuid.UUID, params UpdateProfileParams) (Account, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	a, ok := r.accounts[id]
	if !ok {
		return Account{}, apperr.NotFound("account", id.String())
	}

	if params.Email != nil {
		email := strings.ToLower(*params.Email)
		for otherID, other := range r.accounts {
			if otherID != id && other.Email == email {
				return Account{}, apperr.Conflict("account", *params.Email)
			}
		}
		a.Email = email
	}
	if params.Name != nil {
		a.Name = *params.Name
	}
	if params.Mobile != nil {
		a.Mobile = *params.Mobile
	}
	if params.PasswordHash != nil {
		a.PasswordHash = *params.PasswordHash
	}
	if params.ProfilePhoto != nil {
		a.ProfilePhoto = params.ProfilePhoto
	}
	a.UpdatedAt = time.Now().UTC()
	r.accounts[id] = a
	return a, nil
}

func (r *InMemAccountRepository) SetDeleted(_ context.Context, id uuid.UUID, deleted bool) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	a, ok := r.accounts[id]
	if !ok {
		return apperr.NotFound("account", id.String())
	}
	a.IsDeleted = deleted
	a.UpdatedAt = time.Now().UTC()
	r.accounts[id] = a
	return nil
}

func (r *InMemAccountRepository) Delete(_ context.Context, id uuid.UUID) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.accounts[id]; !ok {
		return apperr.NotFound("account", id.String())
	}
	delete(r.accounts, id)
	return nil
}

func (r *InMemAccountRepository) SetBan(_ context.Context, id uuid.UUID, state *BanState) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	a, ok := r.accounts[id]
	if !ok {
		return apperr.NotFound("account", id.String())
	}

	if state == nil {
		a.IsBanned = false
		a.BanReason = nil
		a.BannedBy = nil
		a.BannedAt = nil
	} else {
		reason := state.Reason
		by := state.By
		at := state.At
		a.IsBanned = true
		a.BanReason = &reason
		a.BannedBy = &by
		a.BannedAt = &at
	}
	a.UpdatedAt = time.Now().UTC()
	r.accounts[id] = a
	return nil
}

func (r *InMemAccountRepository) SetSuspension(_ context.Context, id uuid.UUID, state *SuspensionState) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	a, ok := r.accounts[id]
	if !ok {
		return apperr.NotFound("account", id.String())
	}

	if state == nil {
		a.IsSuspended = false
		a.SuspendReason = nil
		a.SuspendedBy = nil
		a.SuspendedAt = nil
		a.SuspendExpiresAt = nil
	} else {
		reason := state.Reason
		by := state.By
		at := state.At
		a.IsSuspended = true
		a.SuspendReason = &reason
		a.SuspendedBy = &by
		a.SuspendedAt = &at
		a.SuspendExpiresAt = state.ExpiresAt
	}
	a.UpdatedAt = time.Now().UTC()
	r.accounts[id] = a
	return nil
}

func (r *InMemAccountRepository) ListByDeleted(_ context.Context, deleted bool) ([]Account, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	var accounts []Account
	for _, a := range r.accounts {
		if a.IsDeleted == deleted {
			accounts = append(accounts, a)
		}
	}
	return accounts, nil
}
