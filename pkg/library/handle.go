package library

import (
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/render"
	"github.com/google/uuid"
	"github.com/jinzhu/copier"

	"github.com/openshelf/openshelf/pkg/apperr"
	"github.com/openshelf/openshelf/pkg/auth"
	"github.com/openshelf/openshelf/pkg/rbac"
)

// Handle exposes branch, shelf, and librarian management over HTTP
type Handle struct {
	service *LibraryService
}

// NewHandle creates a library HTTP handler
func NewHandle(service *LibraryService) Handle {
	return Handle{service: service}
}

type statusResponse struct {
	Status  bool        `json:"status"`
	Message string      `json:"message"`
	Data    interface{} `json:"data,omitempty"`
}

// publicBranchResponse is the projection every viewer may see
type publicBranchResponse struct {
	BranchCode     string            `json:"branchCode"`
	Name           string            `json:"name"`
	Description    *string           `json:"description,omitempty"`
	Address        *string           `json:"address,omitempty"`
	City           *string           `json:"city,omitempty"`
	State          *string           `json:"state,omitempty"`
	Country        *string           `json:"country,omitempty"`
	PostalCode     *string           `json:"postalCode,omitempty"`
	ContactNumber  string            `json:"contactNumber"`
	Email          *string           `json:"email,omitempty"`
	Status         string            `json:"status"`
	BranchType     string            `json:"branchType"`
	ManagementMode string            `json:"managementMode"`
	OpeningHours   map[string]string `json:"openingHours"`
	LogoURL        *string           `json:"logoUrl,omitempty"`
}

// fullBranchResponse adds audit fields for branch managers
type fullBranchResponse struct {
	publicBranchResponse
	ID        uuid.UUID `json:"id"`
	CreatedBy uuid.UUID `json:"createdBy"`
	UpdatedBy uuid.UUID `json:"updatedBy"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

func toPublicBranch(b Branch) publicBranchResponse {
	var resp publicBranchResponse
	copier.Copy(&resp, &b)
	resp.Status = string(b.Status)
	resp.BranchType = string(b.BranchType)
	resp.ManagementMode = string(b.ManagementMode)
	return resp
}

func toFullBranch(b Branch) fullBranchResponse {
	resp := fullBranchResponse{publicBranchResponse: toPublicBranch(b)}
	resp.ID = b.ID
	resp.CreatedBy = b.CreatedBy
	resp.UpdatedBy = b.UpdatedBy
	resp.CreatedAt = b.CreatedAt
	resp.UpdatedAt = b.UpdatedAt
	return resp
}

type shelfResponse struct {
	ID           uuid.UUID `json:"id"`
	BranchID     uuid.UUID `json:"branchId"`
	Floor        *string   `json:"floor,omitempty"`
	Section      *string   `json:"section,omitempty"`
	Row          *string   `json:"row,omitempty"`
	ShelfLabel   string    `json:"shelfLabel"`
	LocationCode string    `json:"locationCode"`
	Capacity     int       `json:"capacity"`
	CreatedAt    time.Time `json:"createdAt"`
}

func toShelfResponse(s Shelf) shelfResponse {
	var resp shelfResponse
	copier.Copy(&resp, &s)
	resp.LocationCode = s.LocationCode()
	return resp
}

type librarianResponse struct {
	ID          uuid.UUID `json:"id"`
	LibrarianID string    `json:"librarianId"`
	UserID      uuid.UUID `json:"userId"`
	BranchID    uuid.UUID `json:"branchId"`
	Name        string    `json:"name"`
	Email       string    `json:"email"`
	Age         *int      `json:"age,omitempty"`
	Mobile      string    `json:"mobile"`
	Address     *string   `json:"address,omitempty"`
	Photo       *string   `json:"photo,omitempty"`
	Role        string    `json:"role"`
	CreatedBy   uuid.UUID `json:"createdBy"`
	CreatedAt   time.Time `json:"createdAt"`
}

func toLibrarianResponse(l Librarian) librarianResponse {
	var resp librarianResponse
	copier.Copy(&resp, &l)
	resp.Role = string(l.Role)
	return resp
}

func respondErr(w http.ResponseWriter, r *http.Request, err error) {
	var e *apperr.Error
	if !errors.As(err, &e) {
		e = apperr.Internal(err, "internal server error")
	}

	message := e.Message
	if e.Code == apperr.CodeInternal {
		slog.Error("Request failed", "path", r.URL.Path, "err", err)
		message = "internal server error"
	}

	render.Status(r, e.HTTPStatusCode())
	render.JSON(w, r, statusResponse{Status: false, Message: message})
}

func respond(w http.ResponseWriter, r *http.Request, status int, message string, data interface{}) {
	render.Status(r, status)
	render.JSON(w, r, statusResponse{Status: true, Message: message, Data: data})
}

func actorFromRequest(w http.ResponseWriter, r *http.Request) (*auth.Actor, bool) {
	actor, ok := auth.ActorFromContext(r.Context())
	if !ok {
		respondErr(w, r, apperr.Unauthorized("missing actor identity"))
		return nil, false
	}
	return actor, true
}

func idFromURL(w http.ResponseWriter, r *http.Request) (uuid.UUID, bool) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		respondErr(w, r, apperr.InvalidInput("id", "must be a valid UUID"))
		return uuid.Nil, false
	}
	return id, true
}

type createBranchRequest struct {
	Name           string  `json:"name"`
	Description    *string `json:"description"`
	Address        *string `json:"address"`
	City           *string `json:"city"`
	State          *string `json:"state"`
	Country        *string `json:"country"`
	PostalCode     *string `json:"postalCode"`
	ContactNumber  string  `json:"contactNumber"`
	Email          *string `json:"email"`
	Status         string  `json:"status"`
	BranchType     string  `json:"branchType"`
	ManagementMode string  `json:"managementMode"`
	LogoURL        *string `json:"logoUrl"`
}

// CreateBranch opens a new branch
// (POST /api/library/branches)
func (h Handle) CreateBranch(w http.ResponseWriter, r *http.Request) {
	actor, ok := actorFromRequest(w, r)
	if !ok {
		return
	}

	var req createBranchRequest
	if err := render.DecodeJSON(r.Body, &req); err != nil {
		respondErr(w, r, apperr.New(apperr.CodeInvalidInput, "invalid request body"))
		return
	}

	branch, err := h.service.CreateBranch(r.Context(), actor.ID, CreateBranchRequest{
		Name:           req.Name,
		Description:    req.Description,
		Address:        req.Address,
		City:           req.City,
		State:          req.State,
		Country:        req.Country,
		PostalCode:     req.PostalCode,
		ContactNumber:  req.ContactNumber,
		Email:          req.Email,
		Status:         BranchStatus(req.Status),
		BranchType:     BranchType(req.BranchType),
		ManagementMode: ManagementMode(req.ManagementMode),
		LogoURL:        req.LogoURL,
	})
	if err != nil {
		respondErr(w, r, err)
		return
	}
	respond(w, r, http.StatusCreated, "Library branch created successfully", toFullBranch(branch))
}

// ListBranches returns every branch, projected per role. Anonymous callers
// get the public projection.
// (GET /api/library/branches)
func (h Handle) ListBranches(w http.ResponseWriter, r *http.Request) {
	branches, err := h.service.ListBranches(r.Context())
	if err != nil {
		respondErr(w, r, err)
		return
	}

	elevated := false
	if actor, ok := auth.ActorFromContext(r.Context()); ok {
		elevated = h.service.CanManageBranches(r.Context(), actor.ID)
	}

	if elevated {
		out := make([]fullBranchResponse, 0, len(branches))
		for _, b := range branches {
			out = append(out, toFullBranch(b))
		}
		respond(w, r, http.StatusOK, "Branches fetched successfully", out)
		return
	}
	out := make([]publicBranchResponse, 0, len(branches))
	for _, b := range branches {
		out = append(out, toPublicBranch(b))
	}
	respond(w, r, http.StatusOK, "Branches fetched successfully", out)
}

// GetBranch returns a single branch, projected per role like ListBranches
// (GET /api/library/branches/{id})
func (h Handle) GetBranch(w http.ResponseWriter, r *http.Request) {
	id, ok := idFromURL(w, r)
	if !ok {
		return
	}

	branch, err := h.service.GetBranch(r.Context(), id)
	if err != nil {
		respondErr(w, r, err)
		return
	}

	elevated := false
	if actor, ok := auth.ActorFromContext(r.Context()); ok {
		elevated = h.service.CanManageBranches(r.Context(), actor.ID)
	}

	if elevated {
		respond(w, r, http.StatusOK, "Branch fetched successfully", toFullBranch(branch))
		return
	}
	respond(w, r, http.StatusOK, "Branch fetched successfully", toPublicBranch(branch))
}

type updateBranchRequest struct {
	Name           *string           `json:"name"`
	Description    *string           `json:"description"`
	Address        *string           `json:"address"`
	City           *string           `json:"city"`
	State          *string           `json:"state"`
	Country        *string           `json:"country"`
	PostalCode     *string           `json:"postalCode"`
	ContactNumber  *string           `json:"contactNumber"`
	Email          *string           `json:"email"`
	Status         *string           `json:"status"`
	BranchType     *string           `json:"branchType"`
	ManagementMode *string           `json:"managementMode"`
	OpeningHours   map[string]string `json:"openingHours"`
	LogoURL        *string           `json:"logoUrl"`
}

// UpdateBranch applies a partial update to a branch
// (PATCH /api/library/branches/{id})
func (h Handle) UpdateBranch(w http.ResponseWriter, r *http.Request) {
	actor, ok := actorFromRequest(w, r)
	if !ok {
		return
	}
	branchID, ok := idFromURL(w, r)
	if !ok {
		return
	}

	var req updateBranchRequest
	if err := render.DecodeJSON(r.Body, &req); err != nil {
		respondErr(w, r, apperr.New(apperr.CodeInvalidInput, "invalid request body"))
		return
	}

	params := UpdateBranchParams{
		Name:          req.Name,
		Description:   req.Description,
		Address:       req.Address,
		City:          req.City,
		State:         req.State,
		Country:       req.Country,
		PostalCode:    req.PostalCode,
		ContactNumber: req.ContactNumber,
		Email:         req.Email,
		OpeningHours:  req.OpeningHours,
		LogoURL:       req.LogoURL,
	}
	if req.Status != nil {
		s := BranchStatus(*req.Status)
		params.Status = &s
	}
	if req.BranchType != nil {
		t := BranchType(*req.BranchType)
		params.BranchType = &t
	}
	if req.ManagementMode != nil {
		m := ManagementMode(*req.ManagementMode)
		params.ManagementMode = &m
	}

	branch, err := h.service.UpdateBranch(r.Context(), branchID, actor.ID, params)
	if err != nil {
		respondErr(w, r, err)
		return
	}
	respond(w, r, http.StatusOK, "Branch updated successfully", toFullBranch(branch))
}

// DeleteBranch removes a branch permanently
// (DELETE /api/library/branches/{id})
func (h Handle) DeleteBranch(w http.ResponseWriter, r *http.Request) {
	actor, ok := actorFromRequest(w, r)
	if !ok {
		return
	}
	branchID, ok := idFromURL(w, r)
	if !ok {
		return
	}

	if err := h.service.DeleteBranch(r.Context(), branchID, actor.ID); err != nil {
		respondErr(w, r, err)
		return
	}
	respond(w, r, http.StatusOK, "Branch deleted successfully", nil)
}

type createShelfRequest struct {
	BranchID uuid.UUID `json:"branchId"`
	Floor    *string   `json:"floor"`
	Section  *string   `json:"section"`
	Row      *string   `json:"row"`
	Capacity int       `json:"capacity"`
}

// CreateShelf places a shelf inside a branch
// (POST /api/library/shelves)
func (h Handle) CreateShelf(w http.ResponseWriter, r *http.Request) {
	actor, ok := actorFromRequest(w, r)
	if !ok {
		return
	}

	var req createShelfRequest
	if err := render.DecodeJSON(r.Body, &req); err != nil {
		respondErr(w, r, apperr.New(apperr.CodeInvalidInput, "invalid request body"))
		return
	}

	shelf, err := h.service.CreateShelf(r.Context(), actor.ID, CreateShelfRequest{
		BranchID: req.BranchID,
		Floor:    req.Floor,
		Section:  req.Section,
		Row:      req.Row,
		Capacity: req.Capacity,
	})
	if err != nil {
		respondErr(w, r, err)
		return
	}
	respond(w, r, http.StatusCreated, "Shelf created successfully", toShelfResponse(shelf))
}

// ListShelves returns every shelf in a branch
// (GET /api/library/branches/{id}/shelves)
func (h Handle) ListShelves(w http.ResponseWriter, r *http.Request) {
	actor, ok := actorFromRequest(w, r)
	if !ok {
		return
	}
	branchID, ok := idFromURL(w, r)
	if !ok {
		return
	}

	shelves, err := h.service.ListShelves(r.Context(), branchID, actor.ID)
	if err != nil {
		respondErr(w, r, err)
		return
	}

	out := make([]shelfResponse, 0, len(shelves))
	for _, s := range shelves {
		out = append(out, toShelfResponse(s))
	}
	respond(w, r, http.StatusOK, "Shelves fetched successfully", out)
}

type updateShelfRequest struct {
	Capacity *int `json:"capacity"`
}

// UpdateShelf changes a shelf's capacity
// (PATCH /api/library/shelves/{id})
func (h Handle) UpdateShelf(w http.ResponseWriter, r *http.Request) {
	actor, ok := actorFromRequest(w, r)
	if !ok {
		return
	}
	shelfID, ok := idFromURL(w, r)
	if !ok {
		return
	}

	var req updateShelfRequest
	if err := render.DecodeJSON(r.Body, &req); err != nil {
		respondErr(w, r, apperr.New(apperr.CodeInvalidInput, "invalid request body"))
		return
	}

	shelf, err := h.service.UpdateShelf(r.Context(), shelfID, actor.ID, UpdateShelfParams{
		Capacity: req.Capacity,
	})
	if err != nil {
		respondErr(w, r, err)
		return
	}
	respond(w, r, http.StatusOK, "Shelf updated successfully", toShelfResponse(shelf))
}

// DeleteShelf removes a shelf permanently
// (DELETE /api/library/shelves/{id})
func (h Handle) DeleteShelf(w http.ResponseWriter, r *http.Request) {
	actor, ok := actorFromRequest(w, r)
	if !ok {
		return
	}
	shelfID, ok := idFromURL(w, r)
	if !ok {
		return
	}

	if err := h.service.DeleteShelf(r.Context(), shelfID, actor.ID); err != nil {
		respondErr(w, r, err)
		return
	}
	respond(w, r, http.StatusOK, "Shelf deleted successfully", nil)
}

type createLibrarianRequest struct {
	UserID   uuid.UUID `json:"userId"`
	BranchID uuid.UUID `json:"branchId"`
	Name     string    `json:"name"`
	Email    string    `json:"email"`
	Age      *int      `json:"age"`
	Mobile   string    `json:"mobile"`
	Address  *string   `json:"address"`
	Photo    *string   `json:"photo"`
	Role     string    `json:"role"`
}

// CreateLibrarian links an account to a branch as staff
// (POST /api/library/librarians)
func (h Handle) CreateLibrarian(w http.ResponseWriter, r *http.Request) {
	actor, ok := actorFromRequest(w, r)
	if !ok {
		return
	}

	var req createLibrarianRequest
	if err := render.DecodeJSON(r.Body, &req); err != nil {
		respondErr(w, r, apperr.New(apperr.CodeInvalidInput, "invalid request body"))
		return
	}

	librarian, err := h.service.CreateLibrarianProfile(r.Context(), actor.ID, CreateLibrarianRequest{
		UserID:   req.UserID,
		BranchID: req.BranchID,
		Name:     req.Name,
		Email:    req.Email,
		Age:      req.Age,
		Mobile:   req.Mobile,
		Address:  req.Address,
		Photo:    req.Photo,
		Role:     rbac.Role(req.Role),
	})
	if err != nil {
		respondErr(w, r, err)
		return
	}
	respond(w, r, http.StatusCreated, "Librarian profile created successfully", toLibrarianResponse(librarian))
}

// ListLibrarians returns every librarian profile
// (GET /api/library/librarians)
func (h Handle) ListLibrarians(w http.ResponseWriter, r *http.Request) {
	actor, ok := actorFromRequest(w, r)
	if !ok {
		return
	}

	librarians, err := h.service.ListLibrarians(r.Context(), actor.ID)
	if err != nil {
		respondErr(w, r, err)
		return
	}

	out := make([]librarianResponse, 0, len(librarians))
	for _, l := range librarians {
		out = append(out, toLibrarianResponse(l))
	}
	respond(w, r, http.StatusOK, "Librarians fetched successfully", out)
}

// GetLibrarian returns a profile by its record id
// (GET /api/library/librarians/{id})
func (h Handle) GetLibrarian(w http.ResponseWriter, r *http.Request) {
	actor, ok := actorFromRequest(w, r)
	if !ok {
		return
	}
	id, ok := idFromURL(w, r)
	if !ok {
		return
	}

	librarian, err := h.service.GetLibrarian(r.Context(), id, actor.ID)
	if err != nil {
		respondErr(w, r, err)
		return
	}
	respond(w, r, http.StatusOK, "Librarian fetched successfully", toLibrarianResponse(librarian))
}

// GetLibrarianByStaffID returns a profile by its LB staff id
// (GET /api/library/librarians/staff/{librarianId})
func (h Handle) GetLibrarianByStaffID(w http.ResponseWriter, r *http.Request) {
	actor, ok := actorFromRequest(w, r)
	if !ok {
		return
	}

	librarian, err := h.service.GetLibrarianByStaffID(r.Context(), chi.URLParam(r, "librarianId"), actor.ID)
	if err != nil {
		respondErr(w, r, err)
		return
	}
	respond(w, r, http.StatusOK, "Librarian fetched successfully", toLibrarianResponse(librarian))
}

// GetLibrarianByEmail returns a profile by email
// (GET /api/library/librarians/email/{email})
func (h Handle) GetLibrarianByEmail(w http.ResponseWriter, r *http.Request) {
	actor, ok := actorFromRequest(w, r)
	if !ok {
		return
	}

	librarian, err := h.service.GetLibrarianByEmail(r.Context(), chi.URLParam(r, "email"), actor.ID)
	if err != nil {
		respondErr(w, r, err)
		return
	}
	respond(w, r, http.StatusOK, "Librarian fetched successfully", toLibrarianResponse(librarian))
}

// FindLibrariansByName returns every profile carrying the given name
// (GET /api/library/librarians/name/{name})
func (h Handle) FindLibrariansByName(w http.ResponseWriter, r *http.Request) {
	actor, ok := actorFromRequest(w, r)
	if !ok {
		return
	}

	librarians, err := h.service.FindLibrariansByName(r.Context(), chi.URLParam(r, "name"), actor.ID)
	if err != nil {
		respondErr(w, r, err)
		return
	}

	out := make([]librarianResponse, 0, len(librarians))
	for _, l := range librarians {
		out = append(out, toLibrarianResponse(l))
	}
	respond(w, r, http.StatusOK, "Librarians fetched successfully", out)
}

type updateLibrarianRequest struct {
	BranchID *uuid.UUID `json:"branchId"`
	Name     *string    `json:"name"`
	Email    *string    `json:"email"`
	Age      *int       `json:"age"`
	Mobile   *string    `json:"mobile"`
	Address  *string    `json:"address"`
	Photo    *string    `json:"photo"`
}

// UpdateLibrarian applies a partial update to a profile
// (PATCH /api/library/librarians/{id})
func (h Handle) UpdateLibrarian(w http.ResponseWriter, r *http.Request) {
	actor, ok := actorFromRequest(w, r)
	if !ok {
		return
	}
	id, ok := idFromURL(w, r)
	if !ok {
		return
	}

	var req updateLibrarianRequest
	if err := render.DecodeJSON(r.Body, &req); err != nil {
		respondErr(w, r, apperr.New(apperr.CodeInvalidInput, "invalid request body"))
		return
	}

	librarian, err := h.service.UpdateLibrarian(r.Context(), id, actor.ID, UpdateLibrarianParams{
		BranchID: req.BranchID,
		Name:     req.Name,
		Email:    req.Email,
		Age:      req.Age,
		Mobile:   req.Mobile,
		Address:  req.Address,
		Photo:    req.Photo,
	})
	if err != nil {
		respondErr(w, r, err)
		return
	}
	respond(w, r, http.StatusOK, "Librarian updated successfully", toLibrarianResponse(librarian))
}

// Routes mounts the library endpoints. Branch listing stays public; everything
// else requires an authenticated actor.
func (h Handle) Routes(r chi.Router, protected ...func(http.Handler) http.Handler) {
	r.Get("/branches", h.ListBranches)
	r.Get("/branches/{id}", h.GetBranch)

	r.Group(func(r chi.Router) {
		r.Use(protected...)

		r.Post("/branches", h.CreateBranch)
		r.Patch("/branches/{id}", h.UpdateBranch)
		r.Delete("/branches/{id}", h.DeleteBranch)
		r.Get("/branches/{id}/shelves", h.ListShelves)

		r.Post("/shelves", h.CreateShelf)
		r.Patch("/shelves/{id}", h.UpdateShelf)
		r.Delete("/shelves/{id}", h.DeleteShelf)

		r.Post("/librarians", h.CreateLibrarian)
		r.Get("/librarians", h.ListLibrarians)
		r.Get("/librarians/{id}", h.GetLibrarian)
		r.Get("/librarians/staff/{librarianId}", h.GetLibrarianByStaffID)
		r.Get("/librarians/email/{email}", h.GetLibrarianByEmail)
		r.Get("/librarians/name/{name}", h.FindLibrariansByName)
		r.Patch("/librarians/{id}", h.UpdateLibrarian)
	})
}
