package library

import (
	"context"
	"maps"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/openshelf/openshelf/pkg/apperr"
)

// InMemBranchRepository is a mutex-guarded in-memory BranchRepository for tests
type InMemBranchRepository struct {
	mu       sync.RWMutex
	branches map[uuid.UUID]Branch
}

// NewInMemBranchRepository creates an empty in-memory branch repository
func NewInMemBranchRepository() *InMemBranchRepository {
	return &InMemBranchRepository{branches: make(map[uuid.UUID]Branch)}
}

func (r *InMemBranchRepository) Create(_ context.Context, params CreateBranchParams) (Branch, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	now := time.Now().UTC()
	b := Branch{
		ID:             uuid.New(),
		BranchCode:     params.BranchCode,
		Name:           params.Name,
		Description:    params.Description,
		Address:        params.Address,
		City:           params.City,
		State:          params.State,
		Country:        params.Country,
		PostalCode:     params.PostalCode,
		ContactNumber:  params.ContactNumber,
		Email:          params.Email,
		Status:         params.Status,
		BranchType:     params.BranchType,
		ManagementMode: params.ManagementMode,
		OpeningHours:   maps.Clone(params.OpeningHours),
		LogoURL:        params.LogoURL,
		CreatedBy:      params.CreatedBy,
		UpdatedBy:      params.CreatedBy,
		CreatedAt:      now,
		UpdatedAt:      now,
	}
	r.branches[b.ID] = b
	return b, nil
}

func (r *InMemBranchRepository) FindByID(_ context.Context, id uuid.UUID) (Branch, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	b, ok := r.branches[id]
	if !ok {
		return Branch{}, apperr.NotFound("branch", id.String())
	}
	return b, nil
}

func (r *InMemBranchRepository) Count(_ context.Context) (int, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.branches), nil
}

func (r *InMemBranchRepository) ListAll(_ context.Context) ([]Branch, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]Branch, 0, len(r.branches))
	for _, b := range r.branches {
		out = append(out, b)
	}
	sort.Slice(out, func(i, j int) bool {
		return out[i].CreatedAt.After(out[j].CreatedAt)
	})
	return out, nil
}

func (r *InMemBranchRepository) Update(_ context.Context, id uuid.UUID, params UpdateBranchParams) (Branch, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	b, ok := r.branches[id]
	if !ok {
		return Branch{}, apperr.NotFound("branch", id.String())
	}

	if params.Name != nil {
		b.Name = *params.Name
	}
	if params.Description != nil {
		b.Description = params.Description
	}
	if params.Address != nil {
		b.Address = params.Address
	}
	if params.City != nil {
		b.City = params.City
	}
	if params.State != nil {
		b.State = params.State
	}
	if params.Country != nil {
		b.Country = params.Country
	}
	if params.PostalCode != nil {
		b.PostalCode = params.PostalCode
	}
	if params.ContactNumber != nil {
		b.ContactNumber = *params.ContactNumber
	}
	if params.Email != nil {
		b.Email = params.Email
	}
	if params.Status != nil {
		b.Status = *params.Status
	}
	if params.BranchType != nil {
		b.BranchType = *params.BranchType
	}
	if params.ManagementMode != nil {
		b.ManagementMode = *params.ManagementMode
	}
	if params.OpeningHours != nil {
		b.OpeningHours = maps.Clone(params.OpeningHours)
	}
	if params.LogoURL != nil {
		b.LogoURL = params.LogoURL
	}
	b.UpdatedBy = params.UpdatedBy
	b.UpdatedAt = time.Now().UTC()
	r.branches[id] = b
	return b, nil
}

func (r *InMemBranchRepository) Delete(_ context.Context, id uuid.UUID) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.branches[id]; !ok {
		return apperr.NotFound("branch", id.String())
	}
	delete(r.branches, id)
	return nil
}

// InMemShelfRepository is a mutex-guarded in-memory ShelfRepository for tests
type InMemShelfRepository struct {
	mu      sync.RWMutex
	shelves map[uuid.UUID]Shelf
}

// NewInMemShelfRepository creates an empty in-memory shelf repository
func NewInMemShelfRepository() *InMemShelfRepository {
	return &InMemShelfRepository{shelves: make(map[uuid.UUID]Shelf)}
}

func (r *InMemShelfRepository) Create(_ context.Context, params CreateShelfParams) (Shelf, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	for _, existing := range r.shelves {
		if existing.BranchID == params.BranchID && existing.ShelfLabel == params.ShelfLabel {
			return Shelf{}, apperr.Conflict("shelf", params.ShelfLabel)
		}
	}

	now := time.Now().UTC()
	s := Shelf{
		ID:         uuid.New(),
		BranchID:   params.BranchID,
		Floor:      params.Floor,
		Section:    params.Section,
		Row:        params.Row,
		ShelfLabel: params.ShelfLabel,
		Capacity:   params.Capacity,
		CreatedAt:  now,
		UpdatedAt:  now,
	}
	r.shelves[s.ID] = s
	return s, nil
}

func (r *InMemShelfRepository) FindByID(_ context.Context, id uuid.UUID) (Shelf, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	s, ok := r.shelves[id]
	if !ok {
		return Shelf{}, apperr.NotFound("shelf", id.String())
	}
	return s, nil
}

func (r *InMemShelfRepository) FindByLabel(_ context.Context, branchID uuid.UUID, shelfLabel string) (Shelf, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	for _, s := range r.shelves {
		if s.BranchID == branchID && s.ShelfLabel == shelfLabel {
			return s, nil
		}
	}
	return Shelf{}, apperr.NotFound("shelf", shelfLabel)
}

func (r *InMemShelfRepository) ListByBranch(_ context.Context, branchID uuid.UUID) ([]Shelf, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	var out []Shelf
	for _, s := range r.shelves {
		if s.BranchID == branchID {
			out = append(out, s)
		}
	}
	sort.Slice(out, func(i, j int) bool {
		return out[i].ShelfLabel < out[j].ShelfLabel
	})
	return out, nil
}

func (r *InMemShelfRepository) Update(_ context.Context, id uuid.UUID, params UpdateShelfParams) (Shelf, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	s, ok := r.shelves[id]
	if !ok {
		return Shelf{}, apperr.NotFound("shelf", id.String())
	}
	if params.Capacity != nil {
		s.Capacity = *params.Capacity
	}
	s.UpdatedAt = time.Now().UTC()
	r.shelves[id] = s
	return s, nil
}

func (r *InMemShelfRepository) Delete(_ context.Context, id uuid.UUID) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.shelves[id]; !ok {
		return apperr.NotFound("shelf", id.String())
	}
	delete(r.shelves, id)
	return nil
}

// InMemLibrarianRepository is a mutex-guarded in-memory LibrarianRepository for tests
type InMemLibrarianRepository struct {
	mu         sync.RWMutex
	librarians map[uuid.UUID]Librarian
}

// NewInMemLibrarianRepository creates an empty in-memory librarian repository
func NewInMemLibrarianRepository() *InMemLibrarianRepository {
	return &InMemLibrarianRepository{librarians: make(map[uuid.UUID]Librarian)}
}

func (r *InMemLibrarianRepository) Create(_ context.Context, params CreateLibrarianParams) (Librarian, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	for _, existing := range r.librarians {
		if strings.EqualFold(existing.Email, params.Email) {
			return Librarian{}, apperr.Conflict("librarian", params.Email)
		}
	}

	now := time.Now().UTC()
	l := Librarian{
		ID:          uuid.New(),
		LibrarianID: params.LibrarianID,
		UserID:      params.UserID,
		BranchID:    params.BranchID,
		Name:        params.Name,
		Email:       params.Email,
		Age:         params.Age,
		Mobile:      params.Mobile,
		Address:     params.Address,
		Photo:       params.Photo,
		Role:        params.Role,
		CreatedBy:   params.CreatedBy,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	r.librarians[l.ID] = l
	return l, nil
}

func (r *InMemLibrarianRepository) FindByID(_ context.Context, id uuid.UUID) (Librarian, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	l, ok := r.librarians[id]
	if !ok {
		return Librarian{}, apperr.NotFound("librarian", id.String())
	}
	return l, nil
}

func (r *InMemLibrarianRepository) FindByLibrarianID(_ context.Context, librarianID string) (Librarian, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	for _, l := range r.librarians {
		if l.LibrarianID == librarianID {
			return l, nil
		}
	}
	return Librarian{}, apperr.NotFound("librarian", librarianID)
}

func (r *InMemLibrarianRepository) FindByEmail(_ context.Context, email string) (Librarian, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	for _, l := range r.librarians {
		if strings.EqualFold(l.Email, email) {
			return l, nil
		}
	}
	return Librarian{}, apperr.NotFound("librarian", email)
}

func (r *InMemLibrarianRepository) ListByName(_ context.Context, name string) ([]Librarian, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	var out []Librarian
	for _, l := range r.librarians {
		if l.Name == name {
			out = append(out, l)
		}
	}
	sortLibrarians(out)
	return out, nil
}

func (r *InMemLibrarianRepository) ListAll(_ context.Context) ([]Librarian, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]Librarian, 0, len(r.librarians))
	for _, l := range r.librarians {
		out = append(out, l)
	}
	sortLibrarians(out)
	return out, nil
}

func sortLibrarians(ls []Librarian) {
	sort.Slice(ls, func(i, j int) bool {
		return ls[i].CreatedAt.After(ls[j].CreatedAt)
	})
}

func (r *InMemLibrarianRepository) Update(_ context.Context, id uuid.UUID, params UpdateLibrarianParams) (Librarian, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	l, ok := r.librarians[id]
	if !ok {
		return Librarian{}, apperr.NotFound("librarian", id.String())
	}

	if params.BranchID != nil {
		l.BranchID = *params.BranchID
	}
	if params.Name != nil {
		l.Name = *params.Name
	}
	if params.Email != nil {
		l.Email = *params.Email
	}
	if params.Age != nil {
		l.Age = params.Age
	}
	if params.Mobile != nil {
		l.Mobile = *params.Mobile
	}
	if params.Address != nil {
		l.Address = params.Address
	}
	if params.Photo != nil {
		l.Photo = params.Photo
	}
	l.UpdatedAt = time.Now().UTC()
	r.librarians[id] = l
	return l, nil
}
