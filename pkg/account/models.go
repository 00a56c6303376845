package account

import (
	"time"

	"github.com/google/uuid"

	"github.com/openshelf/openshelf/pkg/rbac"
)

// ActorRef is a structured reference to the actor that performed an action
type ActorRef struct {
	ID   uuid.UUID `json:"id"`
	Name string    `json:"name"`
}

// Account is an immutable snapshot of a user record
type Account struct {
	ID           uuid.UUID
	Name         string
	Email        string
	Mobile       string
	PasswordHash string
	ProfilePhoto *string
	Role         rbac.Role

	// PrivilegedID is non-nil iff Role is admin, superadmin, or manager
	PrivilegedID *string

	IsEmailVerified          bool
	EmailVerificationToken   *string
	EmailVerificationExpires *time.Time
	EmailVerifiedAt          *time.Time

	IsDeleted bool

	IsBanned  bool
	BanReason *string
	BannedBy  *ActorRef
	BannedAt  *time.Time

	IsSuspended      bool
	SuspendReason    *string
	SuspendedBy      *ActorRef
	SuspendedAt      *time.Time
	SuspendExpiresAt *time.Time

	CreatedBy ActorRef
	CreatedAt time.Time
	UpdatedAt time.Time
}

// Actor returns the account as an rbac actor for policy decisions
func (a Account) Actor() rbac.Actor {
	return rbac.Actor{
		ID:        a.ID,
		Role:      a.Role,
		Banned:    a.IsBanned,
		Suspended: a.IsSuspended,
	}
}

// Ref returns a structured reference to this account
func (a Account) Ref() ActorRef {
	return ActorRef{ID: a.ID, Name: a.Name}
}

// BanState carries the audit fields stamped by a ban
type BanState struct {
	Reason string
	By     ActorRef
	At     time.Time
}

// SuspensionState carries the audit fields stamped by a suspension
type SuspensionState struct {
	Reason    string
	By        ActorRef
	At        time.Time
	ExpiresAt *time.Time
}

// CreateAccountParams are the fields persisted at registration
type CreateAccountParams struct {
	Name                     string
	Email                    string
	Mobile                   string
	PasswordHash             string
	Role                     rbac.Role
	PrivilegedID             *string
	EmailVerificationToken   string
	EmailVerificationExpires time.Time
	CreatedBy                *ActorRef
}

// UpdateProfileParams apply partial update semantics: nil fields are untouched
type UpdateProfileParams struct {
	Name         *string
	Email        *string
	Mobile       *string
	PasswordHash *string
	ProfilePhoto *string
}
