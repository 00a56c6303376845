package account

import (
	"context"
	"time"

	"github.com/google/uuid"
)

// AccountRepository defines the identity store operations the service needs.
// Implementations must enforce email uniqueness at the storage layer and
// apply each mutation as a single atomic update.
type AccountRepository interface {
	Create(ctx context.Context, params CreateAccountParams) (Account, error)
	FindByID(ctx context.Context, id uuid.UUID) (Account, error)
	FindByEmail(ctx context.Context, email string) (Account, error)
	FindByVerificationToken(ctx context.Context, token string) (Account, error)

	// MarkEmailVerified redeems a verification token. The update is
	// conditional on the account being unverified, so concurrent redemption
	// attempts succeed exactly once; applied reports whether this call won.
	MarkEmailVerified(ctx context.Context, id uuid.UUID, verifiedAt time.Time) (applied bool, err error)

	// SetCreatedBy resolves the self-reference after a self-registered
	// account has received its id.
	SetCreatedBy(ctx context.Context, id uuid.UUID, createdBy ActorRef) error

	UpdateProfile(ctx context.Context, id uuid.UUID, params UpdateProfileParams) (Account, error)

	SetDeleted(ctx context.Context, id uuid.UUID, deleted bool) error
	Delete(ctx context.Context, id uuid.UUID) error

	// SetBan stamps the ban fields; a nil state clears all of them atomically
	SetBan(ctx context.Context, id uuid.UUID, state *BanState) error

	// SetSuspension stamps the suspension fields; nil clears all of them atomically
	SetSuspension(ctx context.Context, id uuid.UUID, state *SuspensionState) error

	ListByDeleted(ctx context.Context, deleted bool) ([]Account, error)
}
