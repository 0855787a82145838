package handlers

import (
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"path/filepath"
	"strings"

	"github.com/gorilla/mux"

	"taskhub/pkg/account"
	"taskhub/pkg/apperr"
	"taskhub/pkg/avatar"
	"taskhub/pkg/claims"
)

const (
	typeError   string = "error"
	typeMessage string = "message"
	muxVarID    string = "id"

	maxAvatarBytes int64 = 1_000_000
)

type RegisterForm struct {
	Name     string `json:"name"`
	Email    string `json:"email"`
	Password string `json:"password"`
	Age      int    `json:"age"`
}

type LoginForm struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type AccountHandler struct {
	Service account.ServiceInterface
	Logger  *slog.Logger
}

func NewAccountHandler(service account.ServiceInterface, logger *slog.Logger) *AccountHandler {
	return &AccountHandler{
		Service: service,
		Logger:  logger,
	}
}

func (h *AccountHandler) Register(w http.ResponseWriter, r *http.Request) {
	var req RegisterForm
	if ok := DecodeJSONBody(w, r, &req); !ok {
		return
	}

	acc, token, err := h.Service.Register(r.Context(), req.Name, req.Email, req.Password, req.Age)
	if err != nil {
		h.writeServiceError(w, "register", err)
		return
	}

	if ok := WriteResp(w, h.Logger, map[string]any{"account": acc, "token": token}, http.StatusCreated); ok {
		h.Logger.Info("account registered", "account", acc.ID)
	}
}

func (h *AccountHandler) Login(w http.ResponseWriter, r *http.Request) {
	var req LoginForm
	if ok := DecodeJSONBody(w, r, &req); !ok {
		return
	}

	acc, token, err := h.Service.Login(r.Context(), req.Email, req.Password)
	if err != nil {
		h.writeServiceError(w, "login", err)
		return
	}

	if ok := WriteResp(w, h.Logger, map[string]any{"account": acc, "token": token}, http.StatusOK); ok {
		h.Logger.Info("login", "account", acc.ID)
	}
}

func (h *AccountHandler) Logout(w http.ResponseWriter, r *http.Request) {
	var auth claims.Auth
	if ok := getAuthFromContext(w, r, &auth); !ok {
		return
	}

	if err := h.Service.Logout(r.Context(), auth.Account, auth.Token); err != nil {
		h.writeServiceError(w, "logout", err)
		return
	}

	if ok := WriteResp(w, h.Logger, map[string]any{}, http.StatusOK); ok {
		h.Logger.Info("logout", "account", auth.Account.ID)
	}
}

func (h *AccountHandler) LogoutAll(w http.ResponseWriter, r *http.Request) {
	var auth claims.Auth
	if ok := getAuthFromContext(w, r, &auth); !ok {
		return
	}

	if err := h.Service.LogoutAll(r.Context(), auth.Account); err != nil {
		h.writeServiceError(w, "logoutAll", err)
		return
	}

	if ok := WriteResp(w, h.Logger, map[string]any{}, http.StatusOK); ok {
		h.Logger.Info("logout all", "account", auth.Account.ID)
	}
}

func (h *AccountHandler) Me(w http.ResponseWriter, r *http.Request) {
	var auth claims.Auth
	if ok := getAuthFromContext(w, r, &auth); !ok {
		return
	}

	writeJSON(w, h.Logger, auth.Account)
}

func (h *AccountHandler) UpdateMe(w http.ResponseWriter, r *http.Request) {
	var auth claims.Auth
	if ok := getAuthFromContext(w, r, &auth); !ok {
		return
	}

	var patch map[string]any
	if ok := DecodeJSONBody(w, r, &patch); !ok {
		return
	}

	updated, err := h.Service.Update(r.Context(), auth.Account, patch)
	if err != nil {
		h.writeServiceError(w, "update account", err)
		return
	}

	if ok := writeJSON(w, h.Logger, updated); ok {
		h.Logger.Info("account updated", "account", updated.ID)
	}
}

func (h *AccountHandler) DeleteMe(w http.ResponseWriter, r *http.Request) {
	var auth claims.Auth
	if ok := getAuthFromContext(w, r, &auth); !ok {
		return
	}

	if err := h.Service.Delete(r.Context(), auth.Account); err != nil {
		h.writeServiceError(w, "delete account", err)
		return
	}

	if ok := writeJSON(w, h.Logger, auth.Account); ok {
		h.Logger.Info("account deleted", "account", auth.Account.ID)
	}
}

func (h *AccountHandler) UploadAvatar(w http.ResponseWriter, r *http.Request) {
	var auth claims.Auth
	if ok := getAuthFromContext(w, r, &auth); !ok {
		return
	}

	r.Body = http.MaxBytesReader(w, r.Body, maxAvatarBytes)
	if err := r.ParseMultipartForm(maxAvatarBytes); err != nil {
		writeError(w, http.StatusBadRequest, typeError, "upload must be multipart and at most 1MB")
		return
	}

	file, header, err := r.FormFile("avatar")
	if err != nil {
		writeError(w, http.StatusBadRequest, typeError, "avatar file is required")
		return
	}
	defer file.Close()

	ext := strings.ToLower(filepath.Ext(header.Filename))
	if ext != ".jpg" && ext != ".jpeg" && ext != ".png" {
		writeError(w, http.StatusBadRequest, typeError, "file extension must be one of: jpg, jpeg, png")
		return
	}

	data, err := io.ReadAll(file)
	if err != nil {
		writeError(w, http.StatusBadRequest, typeError, "failed to read upload")
		return
	}

	processed, err := avatar.Process(data)
	if err != nil {
		writeError(w, http.StatusBadRequest, typeError, err.Error())
		return
	}

	if err := h.Service.SetAvatar(r.Context(), auth.Account, processed); err != nil {
		h.writeServiceError(w, "set avatar", err)
		return
	}

	if ok := WriteResp(w, h.Logger, map[string]any{}, http.StatusOK); ok {
		h.Logger.Info("avatar set", "account", auth.Account.ID)
	}
}

func (h *AccountHandler) GetAvatar(w http.ResponseWriter, r *http.Request) {
	id, ok := mux.Vars(r)[muxVarID]
	if !ok {
		writeError(w, http.StatusBadRequest, typeMessage, "invalid account id")
		return
	}

	data, err := h.Service.AvatarByID(r.Context(), id)
	if err != nil {
		h.writeServiceError(w, "get avatar", err)
		return
	}

	w.Header().Set("Content-Type", "image/png")
	if _, err := w.Write(data); err != nil {
		h.Logger.Error("failed to write avatar", "error", err)
	}
}

func (h *AccountHandler) DeleteAvatar(w http.ResponseWriter, r *http.Request) {
	var auth claims.Auth
	if ok := getAuthFromContext(w, r, &auth); !ok {
		return
	}

	if err := h.Service.ClearAvatar(r.Context(), auth.Account); err != nil {
		h.writeServiceError(w, "clear avatar", err)
		return
	}

	if ok := WriteResp(w, h.Logger, map[string]any{}, http.StatusOK); ok {
		h.Logger.Info("avatar cleared", "account", auth.Account.ID)
	}
}

func (h *AccountHandler) writeServiceError(w http.ResponseWriter, action string, err error) {
	status := apperr.HTTPStatus(err)
	if status == http.StatusInternalServerError {
		h.Logger.Error(action, "error", err)
		writeError(w, status, typeError, "internal server error")
		return
	}
	writeError(w, status, typeError, err.Error())
}

func DecodeJSONBody(w http.ResponseWriter, r *http.Request, req any) bool {
	if r.Header.Get("Content-Type") != "application/json" {
		writeError(w, http.StatusBadRequest, typeError, "invalid Content-Type")
		return false
	}

	defer r.Body.Close()

	if err := json.NewDecoder(r.Body).Decode(req); err != nil {
		writeError(w, http.StatusBadRequest, typeError, "bad json")
		return false
	}

	return true
}

func WriteResp(w http.ResponseWriter, logger *slog.Logger, body map[string]any, status int) bool {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)

	if err := json.NewEncoder(w).Encode(body); err != nil {
		logger.Error("failed to write JSON response", slog.Any("err", err))
		return false
	}
	return true
}

func writeJSON(w http.ResponseWriter, logger *slog.Logger, data any) bool {
	resp, err := json.Marshal(data)
	if err != nil {
		logger.Error("failed to serialize JSON response", "error", err)
		writeError(w, http.StatusInternalServerError, typeError, "failed json marshal")
		return false
	}

	w.Header().Set("Content-Type", "application/json")

	if _, err := w.Write(resp); err != nil {
		logger.Error("failed to write response to client", "error", err)
		return false
	}
	return true
}

func writeError(w http.ResponseWriter, status int, field, msg string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(map[string]string{field: msg}); err != nil {
		return
	}
}

func getAuthFromContext(w http.ResponseWriter, r *http.Request, auth *claims.Auth) bool {
	val, ok := claims.FromContext(r.Context())
	if !ok {
		writeError(w, http.StatusUnauthorized, typeMessage, "unauthorized")
		return false
	}
	*auth = *val
	return true
}
