package handler

import (
	"errors"
	"mime"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/taskmanager/taskmanager-go/internal/export"
	"github.com/taskmanager/taskmanager-go/internal/middleware"
	"github.com/taskmanager/taskmanager-go/internal/model"
	"github.com/taskmanager/taskmanager-go/internal/service"
	"github.com/taskmanager/taskmanager-go/internal/tasklist"
)

// TaskHandler handles HTTP requests for the caller's tasks.
type TaskHandler struct {
	service *service.TaskService
	loc     *time.Location
}

// NewTaskHandler creates a new TaskHandler. loc decides where calendar days start
// for date ranges and analytics.
func NewTaskHandler(svc *service.TaskService, loc *time.Location) *TaskHandler {
	if loc == nil {
		loc = time.UTC
	}
	return &TaskHandler{service: svc, loc: loc}
}

// HandleList handles GET /api/v1/tasks.
func (h *TaskHandler) HandleList(w http.ResponseWriter, r *http.Request) {
	userID, ok := requireUser(w, r)
	if !ok {
		return
	}

	tasks, err := h.service.List(r.Context(), userID, parseQuery(r), h.loc)
	if err != nil {
		h.writeTaskError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, h.service.Present(tasks, h.loc))
}

// HandleCreate handles POST /api/v1/tasks.
func (h *TaskHandler) HandleCreate(w http.ResponseWriter, r *http.Request) {
	userID, ok := requireUser(w, r)
	if !ok {
		return
	}

	var req model.CreateTaskRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	task, err := h.service.Create(r.Context(), userID, req)
	if err != nil {
		h.writeTaskError(w, r, err)
		return
	}

	writeJSON(w, http.StatusCreated, h.present(task))
}

// HandleGet handles GET /api/v1/tasks/{id}.
func (h *TaskHandler) HandleGet(w http.ResponseWriter, r *http.Request) {
	userID, ok := requireUser(w, r)
	if !ok {
		return
	}
	id, ok := taskID(w, r)
	if !ok {
		return
	}

	task, err := h.service.Get(r.Context(), userID, id)
	if err != nil {
		h.writeTaskError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, h.present(task))
}

// HandleUpdate handles PUT /api/v1/tasks/{id}. Any subset of fields may be sent.
func (h *TaskHandler) HandleUpdate(w http.ResponseWriter, r *http.Request) {
	userID, ok := requireUser(w, r)
	if !ok {
		return
	}
	id, ok := taskID(w, r)
	if !ok {
		return
	}

	var req model.UpdateTaskRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	task, err := h.service.Update(r.Context(), userID, id, req)
	if err != nil {
		h.writeTaskError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, h.present(task))
}

// HandleDelete handles DELETE /api/v1/tasks/{id}.
func (h *TaskHandler) HandleDelete(w http.ResponseWriter, r *http.Request) {
	userID, ok := requireUser(w, r)
	if !ok {
		return
	}
	id, ok := taskID(w, r)
	if !ok {
		return
	}

	if err := h.service.Delete(r.Context(), userID, id); err != nil {
		h.writeTaskError(w, r, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

// HandleBulk handles POST /api/v1/tasks/bulk.
func (h *TaskHandler) HandleBulk(w http.ResponseWriter, r *http.Request) {
	userID, ok := requireUser(w, r)
	if !ok {
		return
	}

	var req model.BulkRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	resp, err := h.service.Bulk(r.Context(), userID, req)
	if err != nil {
		h.writeTaskError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, resp)
}

// HandleStats handles GET /api/v1/tasks/stats.
func (h *TaskHandler) HandleStats(w http.ResponseWriter, r *http.Request) {
	userID, ok := requireUser(w, r)
	if !ok {
		return
	}

	stats, err := h.service.Stats(r.Context(), userID)
	if err != nil {
		h.writeTaskError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, stats)
}

// HandleAnalytics handles GET /api/v1/tasks/analytics.
func (h *TaskHandler) HandleAnalytics(w http.ResponseWriter, r *http.Request) {
	userID, ok := requireUser(w, r)
	if !ok {
		return
	}

	analytics, err := h.service.Analytics(r.Context(), userID, h.loc)
	if err != nil {
		h.writeTaskError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, analytics)
}

// HandleExport handles GET /api/v1/tasks/export. The list filters apply and the
// result is sent as a file download.
func (h *TaskHandler) HandleExport(w http.ResponseWriter, r *http.Request) {
	userID, ok := requireUser(w, r)
	if !ok {
		return
	}

	format, err := export.ParseFormat(r.URL.Query().Get("format"))
	if err != nil {
		writeJSON(w, http.StatusBadRequest, errorResponse("Format must be one of json, csv, txt"))
		return
	}

	doc, err := h.service.Export(r.Context(), userID, parseQuery(r), format, h.loc)
	if err != nil {
		h.writeTaskError(w, r, err)
		return
	}

	w.Header().Set("Content-Type", doc.ContentType)
	w.Header().Set("Content-Disposition", mime.FormatMediaType("attachment", map[string]string{"filename": doc.Filename}))
	w.Header().Set("Content-Length", strconv.Itoa(len(doc.Body)))
	w.WriteHeader(http.StatusOK)
	w.Write(doc.Body)
}

func (h *TaskHandler) present(task model.Task) tasklist.View {
	return h.service.Present([]model.Task{task}, h.loc)[0]
}

func (h *TaskHandler) writeTaskError(w http.ResponseWriter, r *http.Request, err error) {
	switch {
	case writeValidationError(w, err):
	case errors.Is(err, service.ErrTaskNotFound):
		writeJSON(w, http.StatusNotFound, errorResponse("Task not found"))
	case errors.Is(err, export.ErrNoTasks):
		writeJSON(w, http.StatusBadRequest, errorResponse("No tasks to export"))
	case errors.Is(err, tasklist.ErrInvalidQuery),
		errors.Is(err, service.ErrNoTaskIDs),
		errors.Is(err, service.ErrTooManyTaskIDs),
		errors.Is(err, service.ErrUnknownBulkAction),
		errors.Is(err, service.ErrInvalidBulkValue):
		writeJSON(w, http.StatusBadRequest, errorResponse(err.Error()))
	default:
		writeInternalError(w, r, err)
	}
}

func requireUser(w http.ResponseWriter, r *http.Request) (string, bool) {
	userID, ok := middleware.UserIDFromContext(r.Context())
	if !ok {
		writeJSON(w, http.StatusUnauthorized, errorResponse("Authentication required"))
	}
	return userID, ok
}

func taskID(w http.ResponseWriter, r *http.Request) (string, bool) {
	id := chi.URLParam(r, "id")
	if id == "" || len(id) > 36 {
		writeJSON(w, http.StatusBadRequest, errorResponse("invalid task id"))
		return "", false
	}
	return id, true
}

func parseQuery(r *http.Request) model.TaskQuery {
	q := r.URL.Query()
	return model.TaskQuery{
		Status:   q.Get("status"),
		Priority: q.Get("priority"),
		Search:   q.Get("search"),
		Range:    q.Get("range"),
		Sort:     q.Get("sort"),
	}
}
