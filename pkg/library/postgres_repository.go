package library

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/openshelf/openshelf/pkg/apperr"
	"github.com/openshelf/openshelf/pkg/rbac"
)

type rowScanner interface {
	Scan(dest ...any) error
}

func mapPgError(err error, resourceType, identifier string) error {
	if errors.Is(err, pgx.ErrNoRows) {
		return apperr.NotFound(resourceType, identifier)
	}
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) && pgErr.Code == "23505" {
		return apperr.Conflict(resourceType, identifier)
	}
	return apperr.Internal(err, "storage operation failed")
}

const branchColumns = `
	id, branch_code, name, description, address, city, state, country, postal_code,
	contact_number, email, status, branch_type, management_mode, opening_hours,
	logo_url, created_by, updated_by, created_at, updated_at`

// PostgresBranchRepository implements BranchRepository backed by pgxpool
type PostgresBranchRepository struct {
	db *pgxpool.Pool
}

// NewPostgresBranchRepository creates a new PostgreSQL-based branch repository
func NewPostgresBranchRepository(db *pgxpool.Pool) *PostgresBranchRepository {
	return &PostgresBranchRepository{db: db}
}

func scanBranch(row rowScanner) (Branch, error) {
	var b Branch
	var status, branchType, managementMode string
	err := row.Scan(
		&b.ID, &b.BranchCode, &b.Name, &b.Description, &b.Address, &b.City, &b.State,
		&b.Country, &b.PostalCode, &b.ContactNumber, &b.Email, &status, &branchType,
		&managementMode, &b.OpeningHours, &b.LogoURL, &b.CreatedBy, &b.UpdatedBy,
		&b.CreatedAt, &b.UpdatedAt,
	)
	if err != nil {
		return Branch{}, err
	}
	b.Status = BranchStatus(status)
	b.BranchType = BranchType(branchType)
	b.ManagementMode = ManagementMode(managementMode)
	return b, nil
}

func (r *PostgresBranchRepository) Create(ctx context.Context, params CreateBranchParams) (Branch, error) {
	query := `
		INSERT INTO branches (
			branch_code, name, description, address, city, state, country, postal_code,
			contact_number, email, status, branch_type, management_mode, opening_hours,
			logo_url, created_by, updated_by
		)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, $16)
		RETURNING` + branchColumns

	row := r.db.QueryRow(ctx, query,
		params.BranchCode, params.Name, params.Description, params.Address, params.City,
		params.State, params.Country, params.PostalCode, params.ContactNumber, params.Email,
		string(params.Status), string(params.BranchType), string(params.ManagementMode),
		params.OpeningHours, params.LogoURL, params.CreatedBy,
	)
	b, err := scanBranch(row)
	if err != nil {
		return Branch{}, mapPgError(err, "branch", params.Name)
	}
	return b, nil
}

func (r *PostgresBranchRepository) FindByID(ctx context.Context, id uuid.UUID) (Branch, error) {
	query := `SELECT` + branchColumns + ` FROM branches WHERE id = $1`
	b, err := scanBranch(r.db.QueryRow(ctx, query, id))
	if err != nil {
		return Branch{}, mapPgError(err, "branch", id.String())
	}
	return b, nil
}

func (r *PostgresBranchRepository) Count(ctx context.Context) (int, error) {
	var count int
	if err := r.db.QueryRow(ctx, `SELECT COUNT(*) FROM branches`).Scan(&count); err != nil {
		return 0, apperr.Internal(err, "failed to count branches")
	}
	return count, nil
}

func (r *PostgresBranchRepository) ListAll(ctx context.Context) ([]Branch, error) {
	query := `SELECT` + branchColumns + ` FROM branches ORDER BY created_at DESC`
	rows, err := r.db.Query(ctx, query)
	if err != nil {
		return nil, apperr.Internal(err, "failed to list branches")
	}
	defer rows.Close()

	var out []Branch
	for rows.Next() {
		b, err := scanBranch(rows)
		if err != nil {
			return nil, apperr.Internal(err, "failed to scan branch")
		}
		out = append(out, b)
	}
	return out, rows.Err()
}

func (r *PostgresBranchRepository) Update(ctx context.Context, id uuid.UUID, params UpdateBranchParams) (Branch, error) {
	var status, branchType, managementMode *string
	if params.Status != nil {
		s := string(*params.Status)
		status = &s
	}
	if params.BranchType != nil {
		t := string(*params.BranchType)
		branchType = &t
	}
	if params.ManagementMode != nil {
		m := string(*params.ManagementMode)
		managementMode = &m
	}

	query := `
		UPDATE branches
		SET name            = COALESCE($2, name),
		    description     = COALESCE($3, description),
		    address         = COALESCE($4, address),
		    city            = COALESCE($5, city),
		    state           = COALESCE($6, state),
		    country         = COALESCE($7, country),
		    postal_code     = COALESCE($8, postal_code),
		    contact_number  = COALESCE($9, contact_number),
		    email           = COALESCE($10, email),
		    status          = COALESCE($11, status),
		    branch_type     = COALESCE($12, branch_type),
		    management_mode = COALESCE($13, management_mode),
		    opening_hours   = COALESCE($14, opening_hours),
		    logo_url        = COALESCE($15, logo_url),
		    updated_by      = $16,
		    updated_at      = NOW() AT TIME ZONE 'UTC'
		WHERE id = $1
		RETURNING` + branchColumns

	var hours any
	if params.OpeningHours != nil {
		hours = params.OpeningHours
	}
	row := r.db.QueryRow(ctx, query, id,
		params.Name, params.Description, params.Address, params.City, params.State,
		params.Country, params.PostalCode, params.ContactNumber, params.Email,
		status, branchType, managementMode, hours, params.LogoURL, params.UpdatedBy,
	)
	b, err := scanBranch(row)
	if err != nil {
		return Branch{}, mapPgError(err, "branch", id.String())
	}
	return b, nil
}

func (r *PostgresBranchRepository) Delete(ctx context.Context, id uuid.UUID) error {
	tag, err := r.db.Exec(ctx, `DELETE FROM branches WHERE id = $1`, id)
	if err != nil {
		return apperr.Internal(err, "failed to delete branch")
	}
	if tag.RowsAffected() == 0 {
		return apperr.NotFound("branch", id.String())
	}
	return nil
}

const shelfColumns = `
	id, branch_id, floor, section, shelf_row, shelf_label, capacity, created_at, updated_at`

// PostgresShelfRepository implements ShelfRepository backed by pgxpool
type PostgresShelfRepository struct {
	db *pgxpool.Pool
}

// NewPostgresShelfRepository creates a new PostgreSQL-based shelf repository
func NewPostgresShelfRepository(db *pgxpool.Pool) *PostgresShelfRepository {
	return &PostgresShelfRepository{db: db}
}

func scanShelf(row rowScanner) (Shelf, error) {
	var s Shelf
	err := row.Scan(
		&s.ID, &s.BranchID, &s.Floor, &s.Section, &s.Row, &s.ShelfLabel,
		&s.Capacity, &s.CreatedAt, &s.UpdatedAt,
	)
	if err != nil {
		return Shelf{}, err
	}
	return s, nil
}

func (r *PostgresShelfRepository) Create(ctx context.Context, params CreateShelfParams) (Shelf, error) {
	query := `
		INSERT INTO shelves (branch_id, floor, section, shelf_row, shelf_label, capacity)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING` + shelfColumns

	row := r.db.QueryRow(ctx, query,
		params.BranchID, params.Floor, params.Section, params.Row,
		params.ShelfLabel, params.Capacity,
	)
	s, err := scanShelf(row)
	if err != nil {
		return Shelf{}, mapPgError(err, "shelf", params.ShelfLabel)
	}
	return s, nil
}

func (r *PostgresShelfRepository) FindByID(ctx context.Context, id uuid.UUID) (Shelf, error) {
	query := `SELECT` + shelfColumns + ` FROM shelves WHERE id = $1`
	s, err := scanShelf(r.db.QueryRow(ctx, query, id))
	if err != nil {
		return Shelf{}, mapPgError(err, "shelf", id.String())
	}
	return s, nil
}

func (r *PostgresShelfRepository) FindByLabel(ctx context.Context, branchID uuid.UUID, shelfLabel string) (Shelf, error) {
	query := `SELECT` + shelfColumns + ` FROM shelves WHERE branch_id = $1 AND shelf_label = $2`
	s, err := scanShelf(r.db.QueryRow(ctx, query, branchID, shelfLabel))
	if err != nil {
		return Shelf{}, mapPgError(err, "shelf", shelfLabel)
	}
	return s, nil
}

func (r *PostgresShelfRepository) ListByBranch(ctx context.Context, branchID uuid.UUID) ([]Shelf, error) {
	query := `SELECT` + shelfColumns + ` FROM shelves WHERE branch_id = $1 ORDER BY shelf_label`
	rows, err := r.db.Query(ctx, query, branchID)
	if err != nil {
		return nil, apperr.Internal(err, "failed to list shelves")
	}
	defer rows.Close()

	var out []Shelf
	for rows.Next() {
		s, err := scanShelf(rows)
		if err != nil {
			return nil, apperr.Internal(err, "failed to scan shelf")
		}
		out = append(out, s)
	}
	return out, rows.Err()
}

func (r *PostgresShelfRepository) Update(ctx context.Context, id uuid.UUID, params UpdateShelfParams) (Shelf, error) {
	query := `
		UPDATE shelves
		SET capacity   = COALESCE($2, capacity),
		    updated_at = NOW() AT TIME ZONE 'UTC'
		WHERE id = $1
		RETURNING` + shelfColumns

	s, err := scanShelf(r.db.QueryRow(ctx, query, id, params.Capacity))
	if err != nil {
		return Shelf{}, mapPgError(err, "shelf", id.String())
	}
	return s, nil
}

func (r *PostgresShelfRepository) Delete(ctx context.Context, id uuid.UUID) error {
	tag, err := r.db.Exec(ctx, `DELETE FROM shelves WHERE id = $1`, id)
	if err != nil {
		return apperr.Internal(err, "failed to delete shelf")
	}
	if tag.RowsAffected() == 0 {
		return apperr.NotFound("shelf", id.String())
	}
	return nil
}

const librarianColumns = `
	id, librarian_id, user_id, branch_id, name, email, age, mobile, address, photo,
	role, created_by, created_at, updated_at`

// PostgresLibrarianRepository implements LibrarianRepository backed by pgxpool
type PostgresLibrarianRepository struct {
	db *pgxpool.Pool
}

// NewPostgresLibrarianRepository creates a new PostgreSQL-based librarian repository
func NewPostgresLibrarianRepository(db *pgxpool.Pool) *PostgresLibrarianRepository {
	return &PostgresLibrarianRepository{db: db}
}

func scanLibrarian(row rowScanner) (Librarian, error) {
	var l Librarian
	var role string
	err := row.Scan(
		&l.ID, &l.LibrarianID, &l.UserID, &l.BranchID, &l.Name, &l.Email, &l.Age,
		&l.Mobile, &l.Address, &l.Photo, &role, &l.CreatedBy, &l.CreatedAt, &l.UpdatedAt,
	)
	if err != nil {
		return Librarian{}, err
	}
	l.Role = rbac.Role(role)
	return l, nil
}

func (r *PostgresLibrarianRepository) Create(ctx context.Context, params CreateLibrarianParams) (Librarian, error) {
	query := `
		INSERT INTO librarians (
			librarian_id, user_id, branch_id, name, email, age, mobile, address,
			photo, role, created_by
		)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
		RETURNING` + librarianColumns

	row := r.db.QueryRow(ctx, query,
		params.LibrarianID, params.UserID, params.BranchID, params.Name, params.Email,
		params.Age, params.Mobile, params.Address, params.Photo, string(params.Role),
		params.CreatedBy,
	)
	l, err := scanLibrarian(row)
	if err != nil {
		return Librarian{}, mapPgError(err, "librarian", params.Email)
	}
	return l, nil
}

func (r *PostgresLibrarianRepository) FindByID(ctx context.Context, id uuid.UUID) (Librarian, error) {
	query := `SELECT` + librarianColumns + ` FROM librarians WHERE id = $1`
	l, err := scanLibrarian(r.db.QueryRow(ctx, query, id))
	if err != nil {
		return Librarian{}, mapPgError(err, "librarian", id.String())
	}
	return l, nil
}

func (r *PostgresLibrarianRepository) FindByLibrarianID(ctx context.Context, librarianID string) (Librarian, error) {
	query := `SELECT` + librarianColumns + ` FROM librarians WHERE librarian_id = $1`
	l, err := scanLibrarian(r.db.QueryRow(ctx, query, librarianID))
	if err != nil {
		return Librarian{}, mapPgError(err, "librarian", librarianID)
	}
	return l, nil
}

func (r *PostgresLibrarianRepository) FindByEmail(ctx context.Context, email string) (Librarian, error) {
	query := `SELECT` + librarianColumns + ` FROM librarians WHERE LOWER(email) = LOWER($1)`
	l, err := scanLibrarian(r.db.QueryRow(ctx, query, email))
	if err != nil {
		return Librarian{}, mapPgError(err, "librarian", email)
	}
	return l, nil
}

func (r *PostgresLibrarianRepository) ListByName(ctx context.Context, name string) ([]Librarian, error) {
	query := `SELECT` + librarianColumns + ` FROM librarians WHERE name = $1 ORDER BY created_at DESC`
	return r.list(ctx, query, name)
}

func (r *PostgresLibrarianRepository) ListAll(ctx context.Context) ([]Librarian, error) {
	query := `SELECT` + librarianColumns + ` FROM librarians ORDER BY created_at DESC`
	return r.list(ctx, query)
}

func (r *PostgresLibrarianRepository) list(ctx context.Context, query string, args ...any) ([]Librarian, error) {
	rows, err := r.db.Query(ctx, query, args...)
	if err != nil {
		return nil, apperr.Internal(err, "failed to list librarians")
	}
	defer rows.Close()

	var out []Librarian
	for rows.Next() {
		l, err := scanLibrarian(rows)
		if err != nil {
			return nil, apperr.Internal(err, "failed to scan librarian")
		}
		out = append(out, l)
	}
	return out, rows.Err()
}

func (r *PostgresLibrarianRepository) Update(ctx context.Context, id uuid.UUID, params UpdateLibrarianParams) (Librarian, error) {
	query := `
		UPDATE librarians
		SET branch_id  = COALESCE($2, branch_id),
		    name       = COALESCE($3, name),
		    email      = COALESCE($4, email),
		    age        = COALESCE($5, age),
		    mobile     = COALESCE($6, mobile),
		    address    = COALESCE($7, address),
		    photo      = COALESCE($8, photo),
		    updated_at = NOW() AT TIME ZONE 'UTC'
		WHERE id = $1
		RETURNING` + librarianColumns

	row := r.db.QueryRow(ctx, query, id,
		params.BranchID, params.Name, params.Email, params.Age,
		params.Mobile, params.Address, params.Photo,
	)
	l, err := scanLibrarian(row)
	if err != nil {
		return Librarian{}, mapPgError(err, "librarian", id.String())
	}
	return l, nil
}
