package account

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
	"github.com/openshelf/openshelf/pkg/token"
)

// Handle exposes the account lifecycle over HTTP
type Handle struct {
	service *AccountService
	cookies token.CookieSetter
}

// NewHandle creates an account HTTP handler
func NewHandle(service *AccountService, cookies token.CookieSetter) Handle {
	return Handle{
		service: service,
		cookies: cookies,
	}
}

type statusResponse struct {
	Status  bool        `json:"status"`
	Message string      `json:"message"`
	Data    interface{} `json:"data,omitempty"`
}

// publicAccountResponse is the projection every role may see
type publicAccountResponse struct {
	ID           uuid.UUID `json:"id"`
	Name         string    `json:"name"`
	Email        string    `json:"email"`
	Mobile       string    `json:"mobile"`
	Role         string    `json:"role"`
	ProfilePhoto *string   `json:"profilePhoto,omitempty"`
}

// elevatedAccountResponse adds audit and lifecycle fields for admin-tier viewers
type elevatedAccountResponse struct {
	publicAccountResponse
	PrivilegedID     *string    `json:"privilegedId,omitempty"`
	IsEmailVerified  bool       `json:"isEmailVerified"`
	EmailVerifiedAt  *time.Time `json:"emailVerifiedAt,omitempty"`
	IsDeleted        bool       `json:"isDeleted"`
	IsBanned         bool       `json:"isBanned"`
	BanReason        *string    `json:"banReason,omitempty"`
	BannedBy         *ActorRef  `json:"bannedBy,omitempty"`
	BannedAt         *time.Time `json:"bannedAt,omitempty"`
	IsSuspended      bool       `json:"isSuspended"`
	SuspendReason    *string    `json:"suspendReason,omitempty"`
	SuspendedBy      *ActorRef  `json:"suspendedBy,omitempty"`
	SuspendedAt      *time.Time `json:"suspendedAt,omitempty"`
	SuspendExpiresAt *time.Time `json:"suspendExpiresAt,omitempty"`
	CreatedBy        ActorRef   `json:"createdBy"`
	CreatedAt        time.Time  `json:"createdAt"`
}

func toPublicResponse(a Account) publicAccountResponse {
	var resp publicAccountResponse
	copier.Copy(&resp, &a)
	resp.Role = string(a.Role)
	return resp
}

func toElevatedResponse(a Account) elevatedAccountResponse {
	resp := elevatedAccountResponse{publicAccountResponse: toPublicResponse(a)}
	copier.Copy(&resp, &a)
	resp.Role = string(a.Role)
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
		// storage-engine detail never leaves the server
		message = "internal server error"
	}

	render.Status(r, e.HTTPStatusCode())
	render.JSON(w, r, statusResponse{Status: false, Message: message})
}

func respond(w http.ResponseWriter, r *http.Request, status int, message string, data interface{}) {
	render.Status(r, status)
	render.JSON(w, r, statusResponse{Status: true, Message: message, Data: data})
}

type registerRequest struct {
	Name     string `json:"name"`
	Email    string `json:"email"`
	Mobile   string `json:"mobile"`
	Password string `json:"password"`
	Role     string `json:"role"`
}

// Register handles public self-registration
// (POST /api/users/register)
func (h Handle) Register(w http.ResponseWriter, r *http.Request) {
	h.register(w, r, nil)
}

// RegisterPrivileged handles registration performed by an authenticated actor
// (POST /api/users/register-privileged)
func (h Handle) RegisterPrivileged(w http.ResponseWriter, r *http.Request) {
	actor, ok := auth.ActorFromContext(r.Context())
	if !ok {
		respondErr(w, r, apperr.Unauthorized("missing actor identity"))
		return
	}
	h.register(w, r, &actor.ID)
}

func (h Handle) register(w http.ResponseWriter, r *http.Request, actorID *uuid.UUID) {
	var req registerRequest
	if err := render.DecodeJSON(r.Body, &req); err != nil {
		respondErr(w, r, apperr.New(apperr.CodeInvalidInput, "invalid request body"))
		return
	}

	acct, err := h.service.Register(r.Context(), RegisterParams{
		Name:     req.Name,
		Email:    req.Email,
		Mobile:   req.Mobile,
		Password: req.Password,
		Role:     req.Role,
		ActorID:  actorID,
	})
	if err != nil {
		respondErr(w, r, err)
		return
	}

	// the new record is projected per the caller's own role; anonymous
	// self-registration gets the public fields only
	if actorID != nil && h.service.CanViewElevatedFields(r.Context(), *actorID) {
		respond(w, r, http.StatusCreated, "User registered successfully", toElevatedResponse(acct))
		return
	}
	respond(w, r, http.StatusCreated, "User registered successfully", toPublicResponse(acct))
}

// VerifyEmail redeems a verification token
// (GET /api/users/verify-email?token=)
func (h Handle) VerifyEmail(w http.ResponseWriter, r *http.Request) {
	verificationToken := r.URL.Query().Get("token")
	if verificationToken == "" {
		respondErr(w, r, apperr.InvalidInput("token", "is required"))
		return
	}

	_, alreadyVerified, err := h.service.VerifyEmail(r.Context(), verificationToken)
	if err != nil {
		respondErr(w, r, err)
		return
	}

	message := "Email verified successfully"
	if alreadyVerified {
		message = "Email already verified"
	}
	respond(w, r, http.StatusOK, message, nil)
}

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type loginResponse struct {
	Name         string   `json:"name"`
	Email        string   `json:"email"`
	Role         string   `json:"role"`
	PrivilegedID *string  `json:"privilegedId,omitempty"`
	CreatedBy    ActorRef `json:"createdBy"`
	Token        string   `json:"token"`
}

// Login authenticates and sets the session cookie
// (POST /api/users/login)
func (h Handle) Login(w http.ResponseWriter, r *http.Request) {
	var req loginRequest
	if err := render.DecodeJSON(r.Body, &req); err != nil {
		respondErr(w, r, apperr.New(apperr.CodeInvalidInput, "invalid request body"))
		return
	}

	acct, sessionToken, expiry, err := h.service.Login(r.Context(), req.Email, req.Password)
	if err != nil {
		respondErr(w, r, err)
		return
	}

	h.cookies.SetCookie(w, token.SessionCookieName, sessionToken, expiry)

	respond(w, r, http.StatusOK, "User logged in successfully", loginResponse{
		Name:         acct.Name,
		Email:        acct.Email,
		Role:         string(acct.Role),
		PrivilegedID: acct.PrivilegedID,
		CreatedBy:    acct.CreatedBy,
		Token:        sessionToken,
	})
}

// Logout clears the session cookie; always succeeds
// (GET /api/users/logout)
func (h Handle) Logout(w http.ResponseWriter, r *http.Request) {
	h.cookies.ClearCookie(w, token.SessionCookieName)
	respond(w, r, http.StatusOK, "User logged out successfully", nil)
}

func actorAndTarget(w http.ResponseWriter, r *http.Request) (*auth.Actor, uuid.UUID, bool) {
	actor, ok := auth.ActorFromContext(r.Context())
	if !ok {
		respondErr(w, r, apperr.Unauthorized("missing actor identity"))
		return nil, uuid.Nil, false
	}
	targetID, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		respondErr(w, r, apperr.InvalidInput("id", "must be a valid UUID"))
		return nil, uuid.Nil, false
	}
	return actor, targetID, true
}

// SoftDelete marks an account deleted
// (PATCH /api/users/soft-delete/{id})
func (h Handle) SoftDelete(w http.ResponseWriter, r *http.Request) {
	actor, targetID, ok := actorAndTarget(w, r)
	if !ok {
		return
	}
	if err := h.service.SoftDelete(r.Context(), targetID, actor.ID); err != nil {
		respondErr(w, r, err)
		return
	}
	respond(w, r, http.StatusOK, "User soft-deleted successfully", map[string]string{"id": targetID.String()})
}

// HardDelete permanently removes an account
// (DELETE /api/users/hard-delete/{id})
func (h Handle) HardDelete(w http.ResponseWriter, r *http.Request) {
	actor, targetID, ok := actorAndTarget(w, r)
	if !ok {
		return
	}
	if err := h.service.HardDelete(r.Context(), targetID, actor.ID); err != nil {
		respondErr(w, r, err)
		return
	}
	respond(w, r, http.StatusOK, "User hard-deleted successfully", nil)
}

// Activate clears the soft-delete marker
// (PATCH /api/users/make-active/{id})
func (h Handle) Activate(w http.ResponseWriter, r *http.Request) {
	actor, targetID, ok := actorAndTarget(w, r)
	if !ok {
		return
	}
	if err := h.service.Activate(r.Context(), targetID, actor.ID); err != nil {
		respondErr(w, r, err)
		return
	}
	respond(w, r, http.StatusOK, "User activated successfully", nil)
}

type updateRequest struct {
	Name         *string `json:"name"`
	Email        *string `json:"email"`
	Mobile       *string `json:"mobile"`
	Password     *string `json:"password"`
	ProfilePhoto *string `json:"profilePhoto"`
}

// Update applies a partial profile update
// (PATCH /api/users/update/{id})
func (h Handle) Update(w http.ResponseWriter, r *http.Request) {
	actor, targetID, ok := actorAndTarget(w, r)
	if !ok {
		return
	}

	var req updateRequest
	if err := render.DecodeJSON(r.Body, &req); err != nil {
		respondErr(w, r, apperr.New(apperr.CodeInvalidInput, "invalid request body"))
		return
	}

	updated, err := h.service.UpdateProfile(r.Context(), targetID, actor.ID, UpdateProfileRequest{
		Name:         req.Name,
		Email:        req.Email,
		Mobile:       req.Mobile,
		Password:     req.Password,
		ProfilePhoto: req.ProfilePhoto,
	})
	if err != nil {
		respondErr(w, r, err)
		return
	}
	respond(w, r, http.StatusOK, "User updated successfully", toPublicResponse(updated))
}

type banRequest struct {
	Reason string `json:"reason"`
}

// Ban stamps the ban overlay
// (PUT /api/users/ban/{id})
func (h Handle) Ban(w http.ResponseWriter, r *http.Request) {
	actor, targetID, ok := actorAndTarget(w, r)
	if !ok {
		return
	}

	var req banRequest
	_ = render.DecodeJSON(r.Body, &req) // body optional

	if err := h.service.Ban(r.Context(), targetID, actor.ID, req.Reason); err != nil {
		respondErr(w, r, err)
		return
	}
	respond(w, r, http.StatusOK, "User banned successfully", nil)
}

// Unban clears the ban overlay
// (PUT /api/users/unban/{id})
func (h Handle) Unban(w http.ResponseWriter, r *http.Request) {
	actor, targetID, ok := actorAndTarget(w, r)
	if !ok {
		return
	}
	if err := h.service.Unban(r.Context(), targetID, actor.ID); err != nil {
		respondErr(w, r, err)
		return
	}
	respond(w, r, http.StatusOK, "User unbanned successfully", nil)
}

type suspendRequest struct {
	Reason    string     `json:"reason"`
	ExpiresAt *time.Time `json:"expiresAt"`
}

// Suspend stamps the suspension overlay
// (PUT /api/users/suspend/{id})
func (h Handle) Suspend(w http.ResponseWriter, r *http.Request) {
	actor, targetID, ok := actorAndTarget(w, r)
	if !ok {
		return
	}

	var req suspendRequest
	_ = render.DecodeJSON(r.Body, &req) // body optional

	if err := h.service.Suspend(r.Context(), targetID, actor.ID, req.Reason, req.ExpiresAt); err != nil {
		respondErr(w, r, err)
		return
	}
	respond(w, r, http.StatusOK, "User suspended successfully", nil)
}

// Unsuspend clears the suspension overlay
// (PUT /api/users/unsuspend/{id})
func (h Handle) Unsuspend(w http.ResponseWriter, r *http.Request) {
	actor, targetID, ok := actorAndTarget(w, r)
	if !ok {
		return
	}
	if err := h.service.Unsuspend(r.Context(), targetID, actor.ID); err != nil {
		respondErr(w, r, err)
		return
	}
	respond(w, r, http.StatusOK, "User unsuspended successfully", nil)
}

// GetByID returns a single account, projected per the viewer's role
// (GET /api/users/{id})
func (h Handle) GetByID(w http.ResponseWriter, r *http.Request) {
	actor, targetID, ok := actorAndTarget(w, r)
	if !ok {
		return
	}

	acct, err := h.service.GetByID(r.Context(), targetID)
	if err != nil {
		respondErr(w, r, err)
		return
	}

	elevated := h.service.CanViewElevatedFields(r.Context(), actor.ID)
	if elevated {
		respond(w, r, http.StatusOK, "User fetched successfully", toElevatedResponse(acct))
		return
	}
	respond(w, r, http.StatusOK, "User fetched successfully", toPublicResponse(acct))
}

// ListActive returns accounts that are not soft-deleted, projected per role
// (GET /api/users/active)
func (h Handle) ListActive(w http.ResponseWriter, r *http.Request) {
	actor, ok := auth.ActorFromContext(r.Context())
	if !ok {
		respondErr(w, r, apperr.Unauthorized("missing actor identity"))
		return
	}

	accounts, err := h.service.ListActive(r.Context())
	if err != nil {
		respondErr(w, r, err)
		return
	}

	elevated := h.service.CanViewElevatedFields(r.Context(), actor.ID)
	respond(w, r, http.StatusOK, "Active users fetched successfully", projectAccounts(accounts, elevated))
}

// ListInactive returns soft-deleted accounts
// (GET /api/users/inactive)
func (h Handle) ListInactive(w http.ResponseWriter, r *http.Request) {
	actor, ok := auth.ActorFromContext(r.Context())
	if !ok {
		respondErr(w, r, apperr.Unauthorized("missing actor identity"))
		return
	}

	accounts, err := h.service.ListInactive(r.Context(), actor.ID)
	if err != nil {
		respondErr(w, r, err)
		return
	}
	respond(w, r, http.StatusOK, "Inactive users fetched successfully", projectAccounts(accounts, true))
}

func projectAccounts(accounts []Account, elevated bool) interface{} {
	if elevated {
		out := make([]elevatedAccountResponse, 0, len(accounts))
		for _, a := range accounts {
			out = append(out, toElevatedResponse(a))
		}
		return out
	}
	out := make([]publicAccountResponse, 0, len(accounts))
	for _, a := range accounts {
		out = append(out, toPublicResponse(a))
	}
	return out
}

// Routes mounts the account endpoints. The protected group receives the
// verifier/authenticator/actor middlewares from the caller.
func (h Handle) Routes(r chi.Router, protected ...func(http.Handler) http.Handler) {
	r.Post("/register", h.Register)
	r.Get("/verify-email", h.VerifyEmail)
	r.Post("/login", h.Login)
	r.Get("/logout", h.Logout)

	r.Group(func(r chi.Router) {
		r.Use(protected...)

		r.Post("/register-privileged", h.RegisterPrivileged)
		r.Patch("/soft-delete/{id}", h.SoftDelete)
		r.Delete("/hard-delete/{id}", h.HardDelete)
		r.Patch("/make-active/{id}", h.Activate)
		r.Patch("/update/{id}", h.Update)
		r.Put("/ban/{id}", h.Ban)
		r.Put("/unban/{id}", h.Unban)
		r.Put("/suspend/{id}", h.Suspend)
		r.Put("/unsuspend/{id}", h.Unsuspend)
		r.Get("/active", h.ListActive)
		r.Get("/inactive", h.ListInactive)
		r.Get("/{id}", h.GetByID)
	})
}
