package handlers

import (
	"net/http"
	"regexp"
	"strings"
	"time"

	"github.com/medfront/medfront/internal/auth"
	"github.com/medfront/medfront/internal/core"
	"github.com/medfront/medfront/internal/core/store"
	apperrors "github.com/medfront/medfront/internal/errors"
	"github.com/medfront/medfront/internal/server/middleware"
)

var emailPattern = regexp.MustCompile(`^[^@\s]+@[^@\s]+\.[^@\s]+$`)

// AuthHandler serves registration, login, and profile endpoints.
type AuthHandler struct {
	Store  *store.Store
	Tokens *auth.TokenManager
}

func NewAuthHandler(s *store.Store, tokens *auth.TokenManager) *AuthHandler {
	return &AuthHandler{Store: s, Tokens: tokens}
}

type registerRequest struct {
	Username        string `json:"username"`
	Password        string `json:"password"`
	ConfirmPassword string `json:"confirm_password"`
	Email           string `json:"email"`
}

type loginRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

// AuthResponse carries a bearer token plus the basics the UI needs.
type AuthResponse struct {
	Token     string `json:"token"`
	TokenType string `json:"token_type"`
	ExpiresIn int    `json:"expires_in"`
	Username  string `json:"username"`
	Role      string `json:"role"`
}

// UserInfoResponse is the public shape of a user record.
type UserInfoResponse struct {
	Username  string    `json:"username"`
	Email     string    `json:"email"`
	Role      string    `json:"role"`
	CreatedAt time.Time `json:"created_at"`
}

func userInfo(u *core.User) UserInfoResponse {
	return UserInfoResponse{
		Username:  u.Username,
		Email:     u.Email,
		Role:      string(u.Role),
		CreatedAt: u.CreatedAt,
	}
}

// Register creates a new regular user and returns a fresh token.
func (h *AuthHandler) Register(w http.ResponseWriter, r *http.Request) {
	var req registerRequest
	if envelope := decodeJSON(r, &req); envelope != nil {
		respondWithError(w, r, envelope)
		return
	}

	req.Username = strings.TrimSpace(req.Username)
	req.Email = strings.TrimSpace(req.Email)
	if msg := validateRegistration(req); msg != "" {
		respondWithError(w, r, apperrors.NewValidationError(msg))
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
		Role:           core.RoleUser,
		CreatedAt:      time.Now().UTC(),
	}
	if err := h.Store.CreateUser(r.Context(), user); err != nil {
		respondWithError(w, r, apperrors.WrapDatabaseError(r.Context(), err, "could not create user"))
		return
	}

	h.respondWithToken(w, r, &user, http.StatusCreated)
}

func validateRegistration(req registerRequest) string {
	switch {
	case len(req.Username) < 3 || len(req.Username) > 50:
		return "username must be between 3 and 50 characters"
	case len(req.Password) < 6:
		return "password must be at least 6 characters"
	case req.Password != req.ConfirmPassword:
		return "passwords do not match"
	case !emailPattern.MatchString(req.Email):
		return "invalid email address"
	}
	return ""
}

// Login verifies credentials and returns a bearer token.
func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	var req loginRequest
	if envelope := decodeJSON(r, &req); envelope != nil {
		respondWithError(w, r, envelope)
		return
	}

	user, err := h.Store.GetUser(r.Context(), strings.TrimSpace(req.Username))
	if err != nil {
		respondWithError(w, r, apperrors.WrapDatabaseError(r.Context(), err, "could not load user"))
		return
	}
	if user == nil || !auth.VerifyPassword(user.HashedPassword, req.Password) {
		respondWithError(w, r, apperrors.NewUnauthorizedError("incorrect username or password"))
		return
	}

	h.respondWithToken(w, r, user, http.StatusOK)
}

func (h *AuthHandler) respondWithToken(w http.ResponseWriter, r *http.Request, user *core.User, status int) {
	token, expiresIn, err := h.Tokens.Issue(user.Username)
	if err != nil {
		respondWithError(w, r, apperrors.WrapInternal(r.Context(), err, "could not issue token"))
		return
	}
	respondJSON(w, status, AuthResponse{
		Token:     token,
		TokenType: "bearer",
		ExpiresIn: expiresIn,
		Username:  user.Username,
		Role:      string(user.Role),
	})
}

// Me returns the authenticated user's profile.
func (h *AuthHandler) Me(w http.ResponseWriter, r *http.Request) {
	user := middleware.CurrentUser(r.Context())
	if user == nil {
		respondWithError(w, r, apperrors.NewUnauthorizedError("authentication required"))
		return
	}
	respondJSON(w, http.StatusOK, userInfo(user))
}

type updateMeRequest struct {
	Email           string `json:"email"`
	CurrentPassword string `json:"current_password"`
	NewPassword     string `json:"new_password"`
}

// UpdateMe changes the authenticated user's email or password. Changing
// the password requires the current one.
func (h *AuthHandler) UpdateMe(w http.ResponseWriter, r *http.Request) {
	user := middleware.CurrentUser(r.Context())
	if user == nil {
		respondWithError(w, r, apperrors.NewUnauthorizedError("authentication required"))
		return
	}

	var req updateMeRequest
	if envelope := decodeJSON(r, &req); envelope != nil {
		respondWithError(w, r, envelope)
		return
	}

	var newEmail, newHash string

	if req.Email != "" && req.Email != user.Email {
		if !emailPattern.MatchString(req.Email) {
			respondWithError(w, r, apperrors.NewValidationError("invalid email address"))
			return
		}
		taken, err := h.Store.EmailExists(r.Context(), req.Email, user.Username)
		if err != nil {
			respondWithError(w, r, apperrors.WrapDatabaseError(r.Context(), err, "could not check email"))
			return
		}
		if taken {
			respondWithError(w, r, apperrors.NewConflictError("email already registered"))
			return
		}
		newEmail = req.Email
	}

	if req.NewPassword != "" {
		if !auth.VerifyPassword(user.HashedPassword, req.CurrentPassword) {
			respondWithError(w, r, apperrors.NewUnauthorizedError("current password is incorrect"))
			return
		}
		if len(req.NewPassword) < 6 {
			respondWithError(w, r, apperrors.NewValidationError("password must be at least 6 characters"))
			return
		}
		hashed, err := auth.HashPassword(req.NewPassword)
		if err != nil {
			respondWithError(w, r, apperrors.WrapInternal(r.Context(), err, "could not hash password"))
			return
		}
		newHash = hashed
	}

	if newEmail == "" && newHash == "" {
		respondJSON(w, http.StatusOK, MessageResponse{Message: "nothing to update"})
		return
	}

	if err := h.Store.UpdateUserInfo(r.Context(), user.Username, newEmail, newHash); err != nil {
		respondWithError(w, r, apperrors.WrapDatabaseError(r.Context(), err, "could not update user"))
		return
	}
	respondJSON(w, http.StatusOK, MessageResponse{Message: "profile updated"})
}
