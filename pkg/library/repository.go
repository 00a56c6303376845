package library

import (
	"context"

	"github.com/google/uuid"
)

// BranchRepository abstracts branch storage
type BranchRepository interface {
	Create(ctx context.Context, params CreateBranchParams) (Branch, error)
	FindByID(ctx context.Context, id uuid.UUID) (Branch, error)
	Count(ctx context.Context) (int, error)
	ListAll(ctx context.Context) ([]Branch, error)
	Update(ctx context.Context, id uuid.UUID, params UpdateBranchParams) (Branch, error)
	Delete(ctx context.Context, id uuid.UUID) error
}

// ShelfRepository abstracts shelf storage
type ShelfRepository interface {
	Create(ctx context.Context, params CreateShelfParams) (Shelf, error)
	FindByID(ctx context.Context, id uuid.UUID) (Shelf, error)
	// FindByLabel locates a shelf by its coordinate label within a branch
	FindByLabel(ctx context.Context, branchID uuid.UUID, shelfLabel string) (Shelf, error)
	ListByBranch(ctx context.Context, branchID uuid.UUID) ([]Shelf, error)
	Update(ctx context.Context, id uuid.UUID, params UpdateShelfParams) (Shelf, error)
	Delete(ctx context.Context, id uuid.UUID) error
}

// LibrarianRepository abstracts librarian profile storage
type LibrarianRepository interface {
	Create(ctx context.Context, params CreateLibrarianParams) (Librarian, error)
	FindByID(ctx context.Context, id uuid.UUID) (Librarian, error)
	FindByLibrarianID(ctx context.Context, librarianID string) (Librarian, error)
	FindByEmail(ctx context.Context, email string) (Librarian, error)
	ListByName(ctx context.Context, name string) ([]Librarian, error)
	ListAll(ctx context.Context) ([]Librarian, error)
	Update(ctx context.Context, id uuid.UUID, params UpdateLibrarianParams) (Librarian, error)
}
