package tasks

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
)

// Handle exposes the to-do tracker over HTTP
type Handle struct {
	service *TaskService
}

// NewHandle creates a task HTTP handler
func NewHandle(service *TaskService) Handle {
	return Handle{service: service}
}

type statusResponse struct {
	Status  bool        `json:"status"`
	Message string      `json:"message"`
	Data    interface{} `json:"data,omitempty"`
}

type taskResponse struct {
	ID            uuid.UUID `json:"id"`
	Title         string    `json:"title"`
	Description   *string   `json:"description,omitempty"`
	Status        string    `json:"status"`
	Priority      string    `json:"priority"`
	DueDate       time.Time `json:"dueDate"`
	ReminderDate  time.Time `json:"reminderDate"`
	EstimatedDays int       `json:"estimatedDays"`
	OwnerID       uuid.UUID `json:"ownerId"`
	CreatedBy     string    `json:"createdBy"`
	CreatedAt     time.Time `json:"createdAt"`
	UpdatedAt     time.Time `json:"updatedAt"`
}

func toTaskResponse(t Task) taskResponse {
	var resp taskResponse
	copier.Copy(&resp, &t)
	resp.Status = string(t.Status)
	resp.Priority = string(t.Priority)
	return resp
}

func toTaskResponses(ts []Task) []taskResponse {
	out := make([]taskResponse, 0, len(ts))
	for _, t := range ts {
		out = append(out, toTaskResponse(t))
	}
	return out
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

func taskIDFromURL(w http.ResponseWriter, r *http.Request) (uuid.UUID, bool) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		respondErr(w, r, apperr.InvalidInput("id", "must be a valid UUID"))
		return uuid.Nil, false
	}
	return id, true
}

type createTaskRequest struct {
	Title       string  `json:"title"`
	Description *string `json:"description"`
	Priority    string  `json:"priority"`
	DueInDays   int     `json:"dueInDays"`
}

// Create records a new task owned by the caller
// (POST /api/tasks)
func (h Handle) Create(w http.ResponseWriter, r *http.Request) {
	actor, ok := actorFromRequest(w, r)
	if !ok {
		return
	}

	var req createTaskRequest
	if err := render.DecodeJSON(r.Body, &req); err != nil {
		respondErr(w, r, apperr.New(apperr.CodeInvalidInput, "invalid request body"))
		return
	}

	task, err := h.service.Create(r.Context(), actor.ID, CreateTaskRequest{
		Title:       req.Title,
		Description: req.Description,
		Priority:    Priority(req.Priority),
		DueInDays:   req.DueInDays,
	})
	if err != nil {
		respondErr(w, r, err)
		return
	}
	respond(w, r, http.StatusCreated, "Task created successfully", toTaskResponse(task))
}

// List returns the caller's tasks, or all tasks for task managers
// (GET /api/tasks)
func (h Handle) List(w http.ResponseWriter, r *http.Request) {
	actor, ok := actorFromRequest(w, r)
	if !ok {
		return
	}

	tasks, err := h.service.List(r.Context(), actor.ID)
	if err != nil {
		respondErr(w, r, err)
		return
	}
	respond(w, r, http.StatusOK, "Tasks fetched successfully", toTaskResponses(tasks))
}

// Get returns a single task
// (GET /api/tasks/{id})
func (h Handle) Get(w http.ResponseWriter, r *http.Request) {
	actor, ok := actorFromRequest(w, r)
	if !ok {
		return
	}
	taskID, ok := taskIDFromURL(w, r)
	if !ok {
		return
	}

	task, err := h.service.Get(r.Context(), taskID, actor.ID)
	if err != nil {
		respondErr(w, r, err)
		return
	}
	respond(w, r, http.StatusOK, "Task fetched successfully", toTaskResponse(task))
}

type updateTaskRequest struct {
	Title       *string    `json:"title"`
	Description *string    `json:"description"`
	Status      *string    `json:"status"`
	Priority    *string    `json:"priority"`
	DueDate     *time.Time `json:"dueDate"`
}

// Update applies a partial update to a task
// (PATCH /api/tasks/{id})
func (h Handle) Update(w http.ResponseWriter, r *http.Request) {
	actor, ok := actorFromRequest(w, r)
	if !ok {
		return
	}
	taskID, ok := taskIDFromURL(w, r)
	if !ok {
		return
	}

	var req updateTaskRequest
	if err := render.DecodeJSON(r.Body, &req); err != nil {
		respondErr(w, r, apperr.New(apperr.CodeInvalidInput, "invalid request body"))
		return
	}

	params := UpdateTaskParams{
		Title:       req.Title,
		Description: req.Description,
		DueDate:     req.DueDate,
	}
	if req.Status != nil {
		s := Status(*req.Status)
		params.Status = &s
	}
	if req.Priority != nil {
		p := Priority(*req.Priority)
		params.Priority = &p
	}

	task, err := h.service.Update(r.Context(), taskID, actor.ID, params)
	if err != nil {
		respondErr(w, r, err)
		return
	}
	respond(w, r, http.StatusOK, "Task updated successfully", toTaskResponse(task))
}

// Complete transitions a task to the completed state
// (PATCH /api/tasks/{id}/complete)
func (h Handle) Complete(w http.ResponseWriter, r *http.Request) {
	actor, ok := actorFromRequest(w, r)
	if !ok {
		return
	}
	taskID, ok := taskIDFromURL(w, r)
	if !ok {
		return
	}

	task, err := h.service.Complete(r.Context(), taskID, actor.ID)
	if err != nil {
		respondErr(w, r, err)
		return
	}
	respond(w, r, http.StatusOK, "Task completed successfully", toTaskResponse(task))
}

// Delete removes a task permanently
// (DELETE /api/tasks/{id})
func (h Handle) Delete(w http.ResponseWriter, r *http.Request) {
	actor, ok := actorFromRequest(w, r)
	if !ok {
		return
	}
	taskID, ok := taskIDFromURL(w, r)
	if !ok {
		return
	}

	if err := h.service.Delete(r.Context(), taskID, actor.ID); err != nil {
		respondErr(w, r, err)
		return
	}
	respond(w, r, http.StatusOK, "Task deleted successfully", nil)
}

// Routes mounts the task endpoints; every route requires an authenticated actor
func (h Handle) Routes(r chi.Router, protected ...func(http.Handler) http.Handler) {
	r.Group(func(r chi.Router) {
		r.Use(protected...)

		r.Post("/", h.Create)
		r.Get("/", h.List)
		r.Get("/{id}", h.Get)
		r.Patch("/{id}", h.Update)
		r.Patch("/{id}/complete", h.Complete)
		r.Delete("/{id}", h.Delete)
	})
}
