package httpapi

import (
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/luyao-shop/storefront/internal/domain"
	"github.com/luyao-shop/storefront/internal/users"
)

type UserHandler struct {
	users   *users.Manager
	session *users.Session
	logger  *slog.Logger
}

func NewUserHandler(users *users.Manager, session *users.Session, logger *slog.Logger) *UserHandler {
	return &UserHandler{users: users, session: session, logger: logger}
}

type registerRequest struct {
	Name     string `json:"name"`
	Email    string `json:"email"`
	Password string `json:"password"`
	Phone    string `json:"phone"`
	Avatar   string `json:"avatar"`
}

func (h *UserHandler) HandleRegister(w http.ResponseWriter, r *http.Request) {
	var req registerRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, h.logger, http.StatusBadRequest, "invalid request body")
		return
	}

	u, err := h.users.Register(r.Context(), users.RegisterInput{
		Name:     req.Name,
		Email:    req.Email,
		Password: req.Password,
		Phone:    req.Phone,
		Avatar:   req.Avatar,
	})
	if err != nil {
		writeDomainError(w, h.logger, err)
		return
	}

	h.logger.Info("user registered", "user_id", u.ID, "email", u.Email)
	writeJSON(w, h.logger, http.StatusCreated, u)
}

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

func (h *UserHandler) HandleLogin(w http.ResponseWriter, r *http.Request) {
	var req loginRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, h.logger, http.StatusBadRequest, "invalid request body")
		return
	}

	u, err := h.users.Login(r.Context(), h.session, req.Email, req.Password)
	if err != nil {
		writeDomainError(w, h.logger, err)
		return
	}

	h.logger.Info("user logged in", "user_id", u.ID)
	writeJSON(w, h.logger, http.StatusOK, u)
}

func (h *UserHandler) HandleLogout(w http.ResponseWriter, r *http.Request) {
	h.users.Logout(r.Context(), h.session)
	w.WriteHeader(http.StatusNoContent)
}

// HandleSession reports the logged-in user, or 204 when nobody is.
func (h *UserHandler) HandleSession(w http.ResponseWriter, r *http.Request) {
	u := h.session.Current()
	if u == nil {
		w.WriteHeader(http.StatusNoContent)
		return
	}
	writeJSON(w, h.logger, http.StatusOK, u)
}

func (h *UserHandler) HandleList(w http.ResponseWriter, r *http.Request) {
	var list []domain.User
	if q := r.URL.Query().Get("q"); q != "" {
		list = h.users.Search(q)
	} else {
		list = h.users.All()
	}
	writeJSON(w, h.logger, http.StatusOK, list)
}

func (h *UserHandler) HandleGet(w http.ResponseWriter, r *http.Request) {
	u, err := h.users.Get(r.PathValue("id"))
	if err != nil {
		writeDomainError(w, h.logger, err)
		return
	}
	writeJSON(w, h.logger, http.StatusOK, u)
}

func (h *UserHandler) HandleUpdate(w http.ResponseWriter, r *http.Request) {
	var patch domain.UserPatch
	if err := json.NewDecoder(r.Body).Decode(&patch); err != nil {
		writeError(w, h.logger, http.StatusBadRequest, "invalid request body")
		return
	}

	u, err := h.users.Update(r.Context(), r.PathValue("id"), patch)
	if err != nil {
		writeDomainError(w, h.logger, err)
		return
	}
	writeJSON(w, h.logger, http.StatusOK, u)
}

func (h *UserHandler) HandleDelete(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")
	if err := h.users.Delete(r.Context(), id); err != nil {
		writeDomainError(w, h.logger, err)
		return
	}

	h.logger.Info("user deleted", "user_id", id)
	w.WriteHeader(http.StatusNoContent)
}
