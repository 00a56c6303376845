package library

import (
	"time"

	"github.com/google/uuid"

	"github.com/openshelf/openshelf/pkg/rbac"
)

// BranchStatus is a branch's operational state
type BranchStatus string

const (
	BranchStatusActive   BranchStatus = "active"
	BranchStatusInactive BranchStatus = "inactive"
)

// BranchType distinguishes physical from digital-only branches
type BranchType string

const (
	BranchTypePhysical BranchType = "physical"
	BranchTypeDigital  BranchType = "digital"
)

// ManagementMode is how a branch's catalog is administered
type ManagementMode string

const (
	ManagementModeDigital ManagementMode = "digital"
	ManagementModeManual  ManagementMode = "manual"
)

// DefaultOpeningHours apply to every branch at creation
func DefaultOpeningHours() map[string]string {
	return map[string]string{
		"Monday":    "09:00-17:00",
		"Tuesday":   "09:00-17:00",
		"Wednesday": "09:00-17:00",
		"Thursday":  "09:00-17:00",
		"Friday":    "09:00-17:00",
		"Saturday":  "10:00-14:00",
		"Sunday":    "Closed",
	}
}

// Branch is an immutable snapshot of a library branch
type Branch struct {
	ID             uuid.UUID
	BranchCode     string
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
	OpeningHours   map[string]string
	LogoURL        *string
	CreatedBy      uuid.UUID
	UpdatedBy      uuid.UUID
	CreatedAt      time.Time
	UpdatedAt      time.Time
}

// CreateBranchParams are the fields persisted at branch creation
type CreateBranchParams struct {
	BranchCode     string
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
	OpeningHours   map[string]string
	LogoURL        *string
	CreatedBy      uuid.UUID
}

// UpdateBranchParams apply partial update semantics: nil fields are untouched
type UpdateBranchParams struct {
	Name           *string
	Description    *string
	Address        *string
	City           *string
	State          *string
	Country        *string
	PostalCode     *string
	ContactNumber  *string
	Email          *string
	Status         *BranchStatus
	BranchType     *BranchType
	ManagementMode *ManagementMode
	OpeningHours   map[string]string
	LogoURL        *string
	UpdatedBy      uuid.UUID
}

// DefaultShelfCapacity applies when a shelf is created without one
const DefaultShelfCapacity = 50

// Shelf is a physical location inside a branch, addressed by its
// floor/section/row coordinates
type Shelf struct {
	ID         uuid.UUID
	BranchID   uuid.UUID
	Floor      *string
	Section    *string
	Row        *string
	ShelfLabel string
	Capacity   int
	CreatedAt  time.Time
	UpdatedAt  time.Time
}

// LocationCode is the branch-qualified shelf address printed on labels
func (s Shelf) LocationCode() string {
	return s.BranchID.String() + "-" + s.ShelfLabel
}

// CreateShelfParams are the fields persisted at shelf creation
type CreateShelfParams struct {
	BranchID   uuid.UUID
	Floor      *string
	Section    *string
	Row        *string
	ShelfLabel string
	Capacity   int
}

// UpdateShelfParams are the mutable shelf fields. Coordinates are fixed at
// creation since they define the shelf's label.
type UpdateShelfParams struct {
	Capacity *int
}

// Librarian is a staff profile linking an account to a branch
type Librarian struct {
	ID          uuid.UUID
	LibrarianID string
	UserID      uuid.UUID
	BranchID    uuid.UUID
	Name        string
	Email       string
	Age         *int
	Mobile      string
	Address     *string
	Photo       *string
	Role        rbac.Role
	CreatedBy   uuid.UUID
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

// CreateLibrarianParams are the fields persisted at profile creation
type CreateLibrarianParams struct {
	LibrarianID string
	UserID      uuid.UUID
	BranchID    uuid.UUID
	Name        string
	Email       string
	Age         *int
	Mobile      string
	Address     *string
	Photo       *string
	Role        rbac.Role
	CreatedBy   uuid.UUID
}

// UpdateLibrarianParams apply partial update semantics: nil fields are untouched
type UpdateLibrarianParams struct {
	BranchID *uuid.UUID
	Name     *string
	Email    *string
	Age      *int
	Mobile   *string
	Address  *string
	Photo    *string
}
