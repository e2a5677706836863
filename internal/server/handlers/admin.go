package handlers

import (
	"errors"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/medfront/medfront/internal/auth"
	"github.com/medfront/medfront/internal/core"
	"github.com/medfront/medfront/internal/core/store"
	apperrors "github.com/medfront/medfront/internal/errors"
	"github.com/medfront/medfront/internal/server/middleware"
)

// AdminHandler serves the user administration endpoints. All routes run
// behind the super admin role check.
type AdminHandler struct {
	Store *store.Store
}

func NewAdminHandler(s *store.Store) *AdminHandler {
	return &AdminHandler{Store: s}
}

// UserListResponse is one page of users.
type UserListResponse struct {
	Users    []UserInfoResponse `json:"users"`
	Total    int                `json:"total"`
	Page     int                `json:"page"`
	PageSize int                `json:"page_size"`
}

// ListUsers returns one page of users, newest first.
func (h *AdminHandler) ListUsers(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	page, _ := strconv.Atoi(q.Get("page"))
	pageSize, _ := strconv.Atoi(q.Get("page_size"))
	if page < 1 {
		page = 1
	}
	if pageSize < 1 {
		pageSize = core.DefaultPageSize
	}
	if pageSize > core.MaxPageSize {
		pageSize = core.MaxPageSize
	}

	users, total, err := h.Store.ListUsers(r.Context(), page, pageSize)
	if err != nil {
		respondWithError(w, r, apperrors.WrapDatabaseError(r.Context(), err, "could not list users"))
		return
	}

	infos := make([]UserInfoResponse, 0, len(users))
	for i := range users {
		infos = append(infos, userInfo(&users[i]))
	}
	respondJSON(w, http.StatusOK, UserListResponse{
		Users:    infos,
		Total:    total,
		Page:     page,
		PageSize: pageSize,
	})
}

type adminCreateUserRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
	Email    string `json:"email"`
	Role     string `json:"role"`
}

// CreateUser provisions a user with an explicit role.
func (h *AdminHandler) CreateUser(w http.ResponseWriter, r *http.Request) {
	var req adminCreateUserRequest
	if envelope := decodeJSON(r, &req); envelope != nil {
		respondWithError(w, r, envelope)
		return
	}

	req.Username = strings.TrimSpace(req.Username)
	req.Email = strings.TrimSpace(req.Email)
	role := core.UserRole(req.Role)
	if req.Role == "" {
		role = core.RoleUser
	}

	switch {
	case len(req.Username) < 3 || len(req.Username) > 50:
		respondWithError(w, r, apperrors.NewValidationError("username must be between 3 and 50 characters"))
		return
	case len(req.Password) < 6:
		respondWithError(w, r, apperrors.NewValidationError("password must be at least 6 characters"))
		return
	case !emailPattern.MatchString(req.Email):
		respondWithError(w, r, apperrors.NewValidationError("invalid email address"))
		return
	case !role.Valid():
		respondWithError(w, r, apperrors.NewValidationError("unknown role"))
		return
	}

	existing, err := h.Store.GetUser(r.Context(), req.Username)
	if err != nil {
		respondWithError(w, r, apperrors.WrapDatabaseError(r.Context(), err, "could not check username"))
		return
	}
	if existing != nil {
		respondWithError(w, r, apperrors.NewConflictError("username already taken"))
		return
	}

	taken, err := h.Store.EmailExists(r.Context(), req.Email, "")
	if err != nil {
		respondWithError(w, r, apperrors.WrapDatabaseError(r.Context(), err, "could not check email"))
		return
	}
	if taken {
		respondWithError(w, r, apperrors.NewConflictError("email already registered"))
		return
	}

	hashed, err := auth.HashPassword(req.Password)
	if err != nil {
		respondWithError(w, r, apperrors.WrapInternal(r.Context(), err, "could not hash password"))
		return
	}

	user := core.User{
		Username:       req.Username,
		Email:          req.Email,
		HashedPassword: hashed,
		Role:           role,
		CreatedAt:      time.Now().UTC(),
	}
	if err := h.Store.CreateUser(r.Context(), user); err != nil {
		respondWithError(w, r, apperrors.WrapDatabaseError(r.Context(), err, "could not create user"))
		return
	}
	respondJSON(w, http.StatusCreated, userInfo(&user))
}

type adminUpdateUserRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// UpdateUser resets a user's email and/or password.
func (h *AdminHandler) UpdateUser(w http.ResponseWriter, r *http.Request) {
	username := chi.URLParam(r, "username")

	var req adminUpdateUserRequest
	if envelope := decodeJSON(r, &req); envelope != nil {
		respondWithError(w, r, envelope)
		return
	}

	req.Email = strings.TrimSpace(req.Email)
	if req.Email == "" && req.Password == "" {
		respondWithError(w, r, apperrors.NewValidationError("nothing to update"))
		return
	}

	user, err := h.Store.GetUser(r.Context(), username)
	if err != nil {
		respondWithError(w, r, apperrors.WrapDatabaseError(r.Context(), err, "could not load user"))
		return
	}
	if user == nil {
		respondWithError(w, r, apperrors.NewNotFoundError("user not found"))
		return
	}

	if req.Email != "" {
		if !emailPattern.MatchString(req.Email) {
			respondWithError(w, r, apperrors.NewValidationError("invalid email address"))
			return
		}
		taken, err := h.Store.EmailExists(r.Context(), req.Email, username)
		if err != nil {
			respondWithError(w, r, apperrors.WrapDatabaseError(r.Context(), err, "could not check email"))
			return
		}
		if taken {
			respondWithError(w, r, apperrors.NewConflictError("email already registered"))
			return
		}
	}

	hashed := ""
	if req.Password != "" {
		if len(req.Password) < 6 {
			respondWithError(w, r, apperrors.NewValidationError("password must be at least 6 characters"))
			return
		}
		hashed, err = auth.HashPassword(req.Password)
		if err != nil {
			respondWithError(w, r, apperrors.WrapInternal(r.Context(), err, "could not hash password"))
			return
		}
	}

	if err := h.Store.UpdateUserInfo(r.Context(), username, req.Email, hashed); err != nil {
		respondWithError(w, r, apperrors.WrapDatabaseError(r.Context(), err, "could not update user"))
		return
	}
	respondJSON(w, http.StatusOK, MessageResponse{Message: "user updated"})
}

type adminUpdateRoleRequest struct {
	Role string `json:"role"`
}

// UpdateRole changes a user's role. Admins cannot change their own role.
func (h *AdminHandler) UpdateRole(w http.ResponseWriter, r *http.Request) {
	actor := middleware.CurrentUser(r.Context())
	username := chi.URLParam(r, "username")
	if actor != nil && actor.Username == username {
		respondWithError(w, r, apperrors.NewForbiddenError("cannot change your own role"))
		return
	}

	var req adminUpdateRoleRequest
	if envelope := decodeJSON(r, &req); envelope != nil {
		respondWithError(w, r, envelope)
		return
	}

	role := core.UserRole(req.Role)
	if !role.Valid() {
		respondWithError(w, r, apperrors.NewValidationError("unknown role"))
		return
	}

	if err := h.Store.UpdateUserRole(r.Context(), username, role); err != nil {
		if errors.Is(err, store.ErrNotFound) {
			respondWithError(w, r, apperrors.NewNotFoundError("user not found"))
			return
		}
		respondWithError(w, r, apperrors.WrapDatabaseError(r.Context(), err, "could not update role"))
		return
	}
	respondJSON(w, http.StatusOK, MessageResponse{Message: "role updated"})
}

// DeleteUser removes a user. Admins cannot delete themselves.
func (h *AdminHandler) DeleteUser(w http.ResponseWriter, r *http.Request) {
	actor := middleware.CurrentUser(r.Context())
	username := chi.URLParam(r, "username")
	if actor != nil && actor.Username == username {
		respondWithError(w, r, apperrors.NewForbiddenError("cannot delete your own account"))
		return
	}

	if err := h.Store.DeleteUser(r.Context(), username); err != nil {
		if errors.Is(err, store.ErrNotFound) {
			respondWithError(w, r, apperrors.NewNotFoundError("user not found"))
			return
		}
		respondWithError(w, r, apperrors.WrapDatabaseError(r.Context(), err, "could not delete user"))
		return
	}
	respondJSON(w, http.StatusOK, MessageResponse{Message: "user deleted"})
}
