package http

import (
	"log/slog"
	"net/http"
	"strings"

	"github.com/utafrali/shopfront/internal/auth"
	"github.com/utafrali/shopfront/internal/domain"
	"github.com/utafrali/shopfront/internal/imagestore"
	"github.com/utafrali/shopfront/internal/service"
	apperrors "github.com/utafrali/shopfront/pkg/errors"
	"github.com/utafrali/shopfront/pkg/httputil"
	"github.com/utafrali/shopfront/pkg/middleware"
	"github.com/utafrali/shopfront/pkg/validator"
)

// AuthHandler handles registration, login and session endpoints.
type AuthHandler struct {
	users    *service.UserService
	sessions *auth.SessionManager
	logger   *slog.Logger
}

// NewAuthHandler creates a new auth HTTP handler.
func NewAuthHandler(users *service.UserService, sessions *auth.SessionManager, logger *slog.Logger) *AuthHandler {
	return &AuthHandler{
		users:    users,
		sessions: sessions,
		logger:   logger,
	}
}

// --- Request DTOs ---

// RegisterRequest is the request body for registering an account.
type RegisterRequest struct {
	Name     string `json:"name" validate:"required,min=4,max=30"`
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required,min=8"`
}

// LoginRequest is the request body for logging in.
type LoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// UpdatePasswordRequest is the request body for changing a password.
type UpdatePasswordRequest struct {
	OldPassword     string `json:"oldPassword" validate:"required"`
	NewPassword     string `json:"newPassword" validate:"required,min=8"`
	ConfirmPassword string `json:"confirmPassword" validate:"required"`
}

type tokenResponse struct {
	Success bool         `json:"success"`
	User    *domain.User `json:"user"`
	Token   string       `json:"token"`
}

// sendToken issues a session for user, sets the session cookie and writes
// {success, user, token}.
func (h *AuthHandler) sendToken(w http.ResponseWriter, r *http.Request, status int, user *domain.User) {
	session, err := h.sessions.Issue(user)
	if err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}

	http.SetCookie(w, session.Cookie)
	httputil.WriteJSON(w, status, tokenResponse{Success: true, User: user, Token: session.Token})
}

// Register handles POST /api/v1/register. The body is JSON or multipart
// with name, email, password and an optional avatar.
func (h *AuthHandler) Register(w http.ResponseWriter, r *http.Request) {
	var (
		req    RegisterRequest
		avatar *imagestore.UploadInput
	)

	if isMultipart(r) {
		if err := parseMultipart(w, r); err != nil {
			httputil.WriteError(w, r, err, h.logger)
			return
		}
		req = RegisterRequest{
			Name:     strings.TrimSpace(r.FormValue("name")),
			Email:    r.FormValue("email"),
			Password: r.FormValue("password"),
		}
		if err := validator.Validate(&req); err != nil {
			httputil.WriteError(w, r, err, h.logger)
			return
		}

		images, err := formImages(r.MultipartForm, "avatar")
		if err != nil {
			httputil.WriteError(w, r, err, h.logger)
			return
		}
		if len(images) > 1 {
			httputil.WriteError(w, r, apperrors.InvalidInput("only one avatar may be uploaded"), h.logger)
			return
		}
		if len(images) == 1 {
			avatar = images[0]
		}
	} else if err := validator.DecodeAndValidate(w, r, &req); err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}

	user, err := h.users.Register(r.Context(), &service.RegisterInput{
		Name:     req.Name,
		Email:    req.Email,
		Password: req.Password,
		Avatar:   avatar,
	})
	if err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}

	h.sendToken(w, r, http.StatusCreated, user)
}

// Login handles POST /api/v1/login.
func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	var req LoginRequest
	if err := validator.DecodeAndValidate(w, r, &req); err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}

	user, err := h.users.Login(r.Context(), &service.LoginInput{Email: req.Email, Password: req.Password})
	if err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}

	h.sendToken(w, r, http.StatusOK, user)
}

// Logout handles GET /api/v1/logout. It revokes the session token and
// clears the cookie.
func (h *AuthHandler) Logout(w http.ResponseWriter, r *http.Request) {
	if err := h.sessions.Revoke(r.Context(), middleware.ClaimsFromContext(r.Context())); err != nil {
		httputil.WriteError(w, r, apperrors.ServiceUnavailable("could not end the session"), h.logger)
		return
	}

	http.SetCookie(w, h.sessions.ClearCookie())
	httputil.WriteMessage(w, http.StatusOK, "Logged Out")
}

// UpdatePassword handles PUT /api/v1/password/update. A new session is
// issued on success.
func (h *AuthHandler) UpdatePassword(w http.ResponseWriter, r *http.Request) {
	var req UpdatePasswordRequest
	if err := validator.DecodeAndValidate(w, r, &req); err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}

	user, err := h.users.UpdatePassword(r.Context(), userFromContext(r.Context()).ID, &service.UpdatePasswordInput{
		OldPassword:     req.OldPassword,
		NewPassword:     req.NewPassword,
		ConfirmPassword: req.ConfirmPassword,
	})
	if err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}

	// The session that authorized the change is retired.
	if err := h.sessions.Revoke(r.Context(), middleware.ClaimsFromContext(r.Context())); err != nil {
		h.logger.ErrorContext(r.Context(), "failed to revoke session after password change",
			slog.String("user_id", user.ID),
			slog.String("error", err.Error()),
		)
	}

	h.sendToken(w, r, http.StatusOK, user)
}
