package library

import (
	"context"
	"crypto/rand"
	"fmt"
	"log/slog"
	"math/big"
	"strings"

	"github.com/google/uuid"

	"github.com/openshelf/openshelf/pkg/account"
	"github.com/openshelf/openshelf/pkg/apperr"
	"github.com/openshelf/openshelf/pkg/rbac"
)

// LibraryService orchestrates branch, shelf, and librarian operations. Policy
// decisions always work on the actor's current account state, re-read per
// request.
type LibraryService struct {
	branches   BranchRepository
	shelves    ShelfRepository
	librarians LibrarianRepository
	accounts   account.AccountRepository
}

// NewLibraryService creates a library service
func NewLibraryService(
	branches BranchRepository,
	shelves ShelfRepository,
	librarians LibrarianRepository,
	accounts account.AccountRepository,
) *LibraryService {
	return &LibraryService{
		branches:   branches,
		shelves:    shelves,
		librarians: librarians,
		accounts:   accounts,
	}
}

func (s *LibraryService) loadActor(ctx context.Context, actorID uuid.UUID) (account.Account, error) {
	actor, err := s.accounts.FindByID(ctx, actorID)
	if err != nil {
		if apperr.IsCode(err, apperr.CodeNotFound) {
			return account.Account{}, apperr.Unauthorized("acting account no longer exists")
		}
		return account.Account{}, err
	}
	return actor, nil
}

// generateLibrarianID mints the LB-prefixed staff id
func generateLibrarianID() (string, error) {
	n, err := rand.Int(rand.Reader, big.NewInt(900000))
	if err != nil {
		return "", fmt.Errorf("failed to generate librarian id: %w", err)
	}
	return fmt.Sprintf("LB%06d", n.Int64()+100000), nil
}

// CreateBranchRequest carries the client-supplied branch fields
type CreateBranchRequest struct {
	Name           string
	Description    *string
	Address        *string
	City           *string
	State          *string
	Country        *string
	PostalCode     *string
	ContactNumber  string
	Email          *string
	Status         BranchStatus
	BranchType     BranchType
	ManagementMode ManagementMode
	LogoURL        *string
}

// CreateBranch opens a new branch. The branch code is derived from the current
// branch count, and opening hours start from the default schedule.
func (s *LibraryService) CreateBranch(ctx context.Context, actorID uuid.UUID, req CreateBranchRequest) (Branch, error) {
	actor, err := s.loadActor(ctx, actorID)
	if err != nil {
		return Branch{}, err
	}
	if !rbac.CanPerform(actor.Actor(), rbac.ActionManageBranch, rbac.Target{}) {
		return Branch{}, apperr.Forbidden("not allowed to create branches")
	}

	if req.Name == "" || req.ContactNumber == "" {
		return Branch{}, apperr.New(apperr.CodeInvalidInput, "branch name and contact number are required")
	}

	total, err := s.branches.Count(ctx)
	if err != nil {
		return Branch{}, err
	}

	status := req.Status
	if status == "" {
		status = BranchStatusActive
	}
	branchType := req.BranchType
	if branchType == "" {
		branchType = BranchTypePhysical
	}
	mode := req.ManagementMode
	if mode == "" {
		mode = ManagementModeDigital
	}

	branch, err := s.branches.Create(ctx, CreateBranchParams{
		BranchCode:     fmt.Sprintf("BR%02d", total+1),
		Name:           req.Name,
		Description:    req.Description,
		Address:        req.Address,
		City:           req.City,
		State:          req.State,
		Country:        req.Country,
		PostalCode:     req.PostalCode,
		ContactNumber:  req.ContactNumber,
		Email:          req.Email,
		Status:         status,
		BranchType:     branchType,
		ManagementMode: mode,
		OpeningHours:   DefaultOpeningHours(),
		LogoURL:        req.LogoURL,
		CreatedBy:      actor.ID,
	})
	if err != nil {
		return Branch{}, err
	}
	slog.Info("Branch created", "branch_id", branch.ID, "branch_code", branch.BranchCode, "actor_id", actor.ID)
	return branch, nil
}

// ListBranches returns every branch; the handler projects fields per role
func (s *LibraryService) ListBranches(ctx context.Context) ([]Branch, error) {
	return s.branches.ListAll(ctx)
}

// GetBranch returns a single branch
func (s *LibraryService) GetBranch(ctx context.Context, branchID uuid.UUID) (Branch, error) {
	return s.branches.FindByID(ctx, branchID)
}

// CanManageBranches reports whether the actor sees the full branch projection
func (s *LibraryService) CanManageBranches(ctx context.Context, actorID uuid.UUID) bool {
	actor, err := s.loadActor(ctx, actorID)
	if err != nil {
		return false
	}
	return rbac.CanPerform(actor.Actor(), rbac.ActionManageBranch, rbac.Target{})
}

// UpdateBranch applies a partial update to a branch
func (s *LibraryService) UpdateBranch(ctx context.Context, branchID, actorID uuid.UUID, params UpdateBranchParams) (Branch, error) {
	actor, err := s.loadActor(ctx, actorID)
	if err != nil {
		return Branch{}, err
	}
	if !rbac.CanPerform(actor.Actor(), rbac.ActionManageBranch, rbac.Target{}) {
		return Branch{}, apperr.Forbidden("not allowed to update branches")
	}

	if _, err := s.branches.FindByID(ctx, branchID); err != nil {
		return Branch{}, err
	}

	params.UpdatedBy = actor.ID
	branch, err := s.branches.Update(ctx, branchID, params)
	if err != nil {
		return Branch{}, err
	}
	slog.Info("Branch updated", "branch_id", branchID, "actor_id", actor.ID)
	return branch, nil
}

// DeleteBranch removes a branch permanently
func (s *LibraryService) DeleteBranch(ctx context.Context, branchID, actorID uuid.UUID) error {
	actor, err := s.loadActor(ctx, actorID)
	if err != nil {
		return err
	}
	if !rbac.CanPerform(actor.Actor(), rbac.ActionManageBranch, rbac.Target{}) {
		return apperr.Forbidden("not allowed to delete branches")
	}

	if err := s.branches.Delete(ctx, branchID); err != nil {
		return err
	}
	slog.Info("Branch deleted", "branch_id", branchID, "actor_id", actor.ID)
	return nil
}

// CreateShelfRequest carries the client-supplied shelf fields. A zero Capacity
// falls back to DefaultShelfCapacity.
type CreateShelfRequest struct {
	BranchID uuid.UUID
	Floor    *string
	Section  *string
	Row      *string
	Capacity int
}

// shelfLabel derives the coordinate label; missing coordinates read as X
func shelfLabel(floor, section, row *string) string {
	part := func(p *string) string {
		if p == nil || *p == "" {
			return "X"
		}
		return *p
	}
	return fmt.Sprintf("F%s-S%s-R%s", part(floor), part(section), part(row))
}

func trimmed(p *string) *string {
	if p == nil {
		return nil
	}
	t := strings.TrimSpace(*p)
	return &t
}

// CreateShelf places a shelf inside a branch. Coordinates are trimmed before
// labeling so padded duplicates collide, and a second shelf at the same
// coordinates in the same branch is rejected.
func (s *LibraryService) CreateShelf(ctx context.Context, actorID uuid.UUID, req CreateShelfRequest) (Shelf, error) {
	actor, err := s.loadActor(ctx, actorID)
	if err != nil {
		return Shelf{}, err
	}
	if !rbac.CanPerform(actor.Actor(), rbac.ActionManageBranch, rbac.Target{}) {
		return Shelf{}, apperr.Forbidden("not allowed to create shelves")
	}

	if req.BranchID == uuid.Nil {
		return Shelf{}, apperr.InvalidInput("branchId", "is required")
	}
	if _, err := s.branches.FindByID(ctx, req.BranchID); err != nil {
		return Shelf{}, err
	}

	floor := trimmed(req.Floor)
	section := trimmed(req.Section)
	row := trimmed(req.Row)
	label := shelfLabel(floor, section, row)

	if _, err := s.shelves.FindByLabel(ctx, req.BranchID, label); err == nil {
		return Shelf{}, apperr.Conflict("shelf", label)
	} else if !apperr.IsCode(err, apperr.CodeNotFound) {
		return Shelf{}, err
	}

	capacity := req.Capacity
	if capacity <= 0 {
		capacity = DefaultShelfCapacity
	}

	shelf, err := s.shelves.Create(ctx, CreateShelfParams{
		BranchID:   req.BranchID,
		Floor:      floor,
		Section:    section,
		Row:        row,
		ShelfLabel: label,
		Capacity:   capacity,
	})
	if err != nil {
		return Shelf{}, err
	}
	slog.Info("Shelf created", "shelf_id", shelf.ID, "branch_id", req.BranchID, "label", label)
	return shelf, nil
}

// ListShelves returns every shelf in a branch
func (s *LibraryService) ListShelves(ctx context.Context, branchID, actorID uuid.UUID) ([]Shelf, error) {
	actor, err := s.loadActor(ctx, actorID)
	if err != nil {
		return nil, err
	}
	if !rbac.CanPerform(actor.Actor(), rbac.ActionManageBranch, rbac.Target{}) {
		return nil, apperr.Forbidden("not allowed to list shelves")
	}
	if _, err := s.branches.FindByID(ctx, branchID); err != nil {
		return nil, err
	}
	return s.shelves.ListByBranch(ctx, branchID)
}

// UpdateShelf changes a shelf's capacity. Coordinates cannot change after
// creation since the label is derived from them.
func (s *LibraryService) UpdateShelf(ctx context.Context, shelfID, actorID uuid.UUID, params UpdateShelfParams) (Shelf, error) {
	actor, err := s.loadActor(ctx, actorID)
	if err != nil {
		return Shelf{}, err
	}
	if !rbac.CanPerform(actor.Actor(), rbac.ActionManageBranch, rbac.Target{}) {
		return Shelf{}, apperr.Forbidden("not allowed to update shelves")
	}
	if params.Capacity != nil && *params.Capacity <= 0 {
		return Shelf{}, apperr.InvalidInput("capacity", "must be positive")
	}

	shelf, err := s.shelves.Update(ctx, shelfID, params)
	if err != nil {
		return Shelf{}, err
	}
	slog.Info("Shelf updated", "shelf_id", shelfID, "actor_id", actor.ID)
	return shelf, nil
}

// DeleteShelf removes a shelf permanently
func (s *LibraryService) DeleteShelf(ctx context.Context, shelfID, actorID uuid.UUID) error {
	actor, err := s.loadActor(ctx, actorID)
	if err != nil {
		return err
	}
	if !rbac.CanPerform(actor.Actor(), rbac.ActionManageBranch, rbac.Target{}) {
		return apperr.Forbidden("not allowed to delete shelves")
	}
	if err := s.shelves.Delete(ctx, shelfID); err != nil {
		return err
	}
	slog.Info("Shelf deleted", "shelf_id", shelfID, "actor_id", actor.ID)
	return nil
}

// CreateLibrarianRequest carries the client-supplied profile fields
type CreateLibrarianRequest struct {
	UserID   uuid.UUID
	BranchID uuid.UUID
	Name     string
	Email    string
	Age      *int
	Mobile   string
	Address  *string
	Photo    *string
	Role     rbac.Role
}

// CreateLibrarianProfile links an existing account to a branch as staff.
// Restricted to admin and superadmin; the linked account and branch must
// both exist.
func (s *LibraryService) CreateLibrarianProfile(ctx context.Context, actorID uuid.UUID, req CreateLibrarianRequest) (Librarian, error) {
	actor, err := s.loadActor(ctx, actorID)
	if err != nil {
		return Librarian{}, err
	}
	if !rbac.CanPerform(actor.Actor(), rbac.ActionCreateLibrarianProfile, rbac.Target{}) {
		return Librarian{}, apperr.Forbidden("only admin or superadmin can create librarian profiles")
	}

	if _, err := s.accounts.FindByID(ctx, req.UserID); err != nil {
		return Librarian{}, err
	}
	if _, err := s.branches.FindByID(ctx, req.BranchID); err != nil {
		return Librarian{}, err
	}

	role := req.Role
	if role == "" {
		role = rbac.RoleLibrarian
	}
	if !role.IsValid() {
		return Librarian{}, apperr.InvalidInput("role", string(req.Role))
	}

	librarianID, err := generateLibrarianID()
	if err != nil {
		return Librarian{}, apperr.Internal(err, "failed to assign librarian id")
	}

	librarian, err := s.librarians.Create(ctx, CreateLibrarianParams{
		LibrarianID: librarianID,
		UserID:      req.UserID,
		BranchID:    req.BranchID,
		Name:        req.Name,
		Email:       req.Email,
		Age:         req.Age,
		Mobile:      req.Mobile,
		Address:     req.Address,
		Photo:       req.Photo,
		Role:        role,
		CreatedBy:   actor.ID,
	})
	if err != nil {
		return Librarian{}, err
	}
	slog.Info("Librarian profile created",
		"librarian_id", librarian.LibrarianID, "user_id", req.UserID, "branch_id", req.BranchID)
	return librarian, nil
}

func (s *LibraryService) authorizeProfileAccess(ctx context.Context, actorID uuid.UUID) (account.Account, error) {
	actor, err := s.loadActor(ctx, actorID)
	if err != nil {
		return account.Account{}, err
	}
	if !rbac.CanPerform(actor.Actor(), rbac.ActionManageLibrarianProfile, rbac.Target{}) {
		return account.Account{}, apperr.Forbidden("not allowed to access librarian profiles")
	}
	return actor, nil
}

// ListLibrarians returns every librarian profile
func (s *LibraryService) ListLibrarians(ctx context.Context, actorID uuid.UUID) ([]Librarian, error) {
	if _, err := s.authorizeProfileAccess(ctx, actorID); err != nil {
		return nil, err
	}
	return s.librarians.ListAll(ctx)
}

// GetLibrarian returns a profile by its record id
func (s *LibraryService) GetLibrarian(ctx context.Context, id, actorID uuid.UUID) (Librarian, error) {
	if _, err := s.authorizeProfileAccess(ctx, actorID); err != nil {
		return Librarian{}, err
	}
	return s.librarians.FindByID(ctx, id)
}

// GetLibrarianByStaffID returns a profile by its LB staff id
func (s *LibraryService) GetLibrarianByStaffID(ctx context.Context, librarianID string, actorID uuid.UUID) (Librarian, error) {
	if _, err := s.authorizeProfileAccess(ctx, actorID); err != nil {
		return Librarian{}, err
	}
	return s.librarians.FindByLibrarianID(ctx, librarianID)
}

// GetLibrarianByEmail returns a profile by email
func (s *LibraryService) GetLibrarianByEmail(ctx context.Context, email string, actorID uuid.UUID) (Librarian, error) {
	if _, err := s.authorizeProfileAccess(ctx, actorID); err != nil {
		return Librarian{}, err
	}
	return s.librarians.FindByEmail(ctx, email)
}

// FindLibrariansByName returns every profile carrying the given name
func (s *LibraryService) FindLibrariansByName(ctx context.Context, name string, actorID uuid.UUID) ([]Librarian, error) {
	if _, err := s.authorizeProfileAccess(ctx, actorID); err != nil {
		return nil, err
	}
	librarians, err := s.librarians.ListByName(ctx, name)
	if err != nil {
		return nil, err
	}
	if len(librarians) == 0 {
		return nil, apperr.NotFound("librarian", name)
	}
	return librarians, nil
}

// UpdateLibrarian applies a partial update to a profile. Librarian and
// assistant roles may only update the profile linked to their own account.
func (s *LibraryService) UpdateLibrarian(ctx context.Context, id, actorID uuid.UUID, params UpdateLibrarianParams) (Librarian, error) {
	actor, err := s.authorizeProfileAccess(ctx, actorID)
	if err != nil {
		return Librarian{}, err
	}

	librarian, err := s.librarians.FindByID(ctx, id)
	if err != nil {
		return Librarian{}, err
	}

	if !actor.Role.IsPrivileged() && librarian.UserID != actor.ID {
		return Librarian{}, apperr.Forbidden("cannot update another librarian's profile")
	}

	updated, err := s.librarians.Update(ctx, id, params)
	if err != nil {
		return Librarian{}, err
	}
	slog.Info("Librarian profile updated", "librarian_id", updated.LibrarianID, "actor_id", actor.ID)
	return updated, nil
}
