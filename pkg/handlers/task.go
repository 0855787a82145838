package handlers

import (
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/gorilla/mux"

	"taskhub/pkg/apperr"
	"taskhub/pkg/claims"
	"taskhub/pkg/task"
)

type CreateTaskForm struct {
	Description string `json:"description"`
	Completed   bool   `json:"completed"`
}

type TaskHandler struct {
	Service task.ServiceInterface
	Logger  *slog.Logger
}

func NewTaskHandler(service task.ServiceInterface, logger *slog.Logger) *TaskHandler {
	return &TaskHandler{
		Service: service,
		Logger:  logger,
	}
}

func (h *TaskHandler) Create(w http.ResponseWriter, r *http.Request) {
	var auth claims.Auth
	if ok := getAuthFromContext(w, r, &auth); !ok {
		return
	}

	var req CreateTaskForm
	if ok := DecodeJSONBody(w, r, &req); !ok {
		return
	}

	t, err := h.Service.Create(r.Context(), auth.Account.ID, req.Description, req.Completed)
	if err != nil {
		h.writeServiceError(w, "create task", err)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusCreated)
	if err := json.NewEncoder(w).Encode(t); err != nil {
		h.Logger.Error("failed to write JSON response", "error", err)
		return
	}
	h.Logger.Info("task created", "account", auth.Account.ID, "task", t.ID)
}

// List reads completed, sortBy, limit and skip from the query string. All of
// them are optional and bad numeric values silently mean "unbounded".
func (h *TaskHandler) List(w http.ResponseWriter, r *http.Request) {
	var auth claims.Auth
	if ok := getAuthFromContext(w, r, &auth); !ok {
		return
	}

	query := r.URL.Query()
	opts := task.ParseListOptions(
		query.Get("completed"),
		query.Get("sortBy"),
		query.Get("limit"),
		query.Get("skip"),
	)

	tasks, err := h.Service.List(r.Context(), auth.Account.ID, opts)
	if err != nil {
		h.writeServiceError(w, "list tasks", err)
		return
	}

	writeJSON(w, h.Logger, tasks)
}

func (h *TaskHandler) Get(w http.ResponseWriter, r *http.Request) {
	var auth claims.Auth
	if ok := getAuthFromContext(w, r, &auth); !ok {
		return
	}

	taskID, ok := mux.Vars(r)[muxVarID]
	if !ok {
		writeError(w, http.StatusBadRequest, typeMessage, "invalid task id")
		return
	}

	t, err := h.Service.Get(r.Context(), auth.Account.ID, taskID)
	if err != nil {
		h.writeServiceError(w, "get task", err)
		return
	}

	writeJSON(w, h.Logger, t)
}

func (h *TaskHandler) Update(w http.ResponseWriter, r *http.Request) {
	var auth claims.Auth
	if ok := getAuthFromContext(w, r, &auth); !ok {
		return
	}

	taskID, ok := mux.Vars(r)[muxVarID]
	if !ok {
		writeError(w, http.StatusBadRequest, typeMessage, "invalid task id")
		return
	}

	var patch map[string]any
	if ok := DecodeJSONBody(w, r, &patch); !ok {
		return
	}

	t, err := h.Service.Update(r.Context(), auth.Account.ID, taskID, patch)
	if err != nil {
		h.writeServiceError(w, "update task", err)
		return
	}

	if ok := writeJSON(w, h.Logger, t); ok {
		h.Logger.Info("task updated", "account", auth.Account.ID, "task", t.ID)
	}
}

func (h *TaskHandler) Delete(w http.ResponseWriter, r *http.Request) {
	var auth claims.Auth
	if ok := getAuthFromContext(w, r, &auth); !ok {
		return
	}

	taskID, ok := mux.Vars(r)[muxVarID]
	if !ok {
		writeError(w, http.StatusBadRequest, typeMessage, "invalid task id")
		return
	}

	t, err := h.Service.Delete(r.Context(), auth.Account.ID, taskID)
	if err != nil {
		h.writeServiceError(w, "delete task", err)
		return
	}

	if ok := writeJSON(w, h.Logger, t); ok {
		h.Logger.Info("task deleted", "account", auth.Account.ID, "task", t.ID)
	}
}

func (h *TaskHandler) writeServiceError(w http.ResponseWriter, action string, err error) {
	status := apperr.HTTPStatus(err)
	if status == http.StatusInternalServerError {
		h.Logger.Error(action, "error", err)
		writeError(w, status, typeError, "internal server error")
		return
	}
	writeError(w, status, typeError, err.Error())
}
