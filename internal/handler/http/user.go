package http

import (
	"log/slog"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/utafrali/shopfront/internal/domain"
	"github.com/utafrali/shopfront/internal/imagestore"
	"github.com/utafrali/shopfront/internal/service"
	apperrors "github.com/utafrali/shopfront/pkg/errors"
	"github.com/utafrali/shopfront/pkg/httputil"
	"github.com/utafrali/shopfront/pkg/validator"
)

// UserHandler handles profile and user administration endpoints.
type UserHandler struct {
	service *service.UserService
	logger  *slog.Logger
}

// NewUserHandler creates a new user HTTP handler.
func NewUserHandler(svc *service.UserService, logger *slog.Logger) *UserHandler {
	return &UserHandler{
		service: svc,
		logger:  logger,
	}
}

// UpdateProfileRequest is the request body for updating one's own profile.
type UpdateProfileRequest struct {
	Name  string `json:"name" validate:"required,min=4,max=30"`
	Email string `json:"email" validate:"required,email"`
}

// UpdateUserRequest is the request body for the admin user update.
type UpdateUserRequest struct {
	Name  string `json:"name" validate:"required,min=4,max=30"`
	Email string `json:"email" validate:"required,email"`
	Role  string `json:"role" validate:"required,oneof=user admin"`
}

type userResponse struct {
	Success bool         `json:"success"`
	User    *domain.User `json:"user"`
}

type usersResponse struct {
	Success bool          `json:"success"`
	Users   []domain.User `json:"users"`
}

// Me handles GET /api/v1/me.
func (h *UserHandler) Me(w http.ResponseWriter, r *http.Request) {
	httputil.WriteJSON(w, http.StatusOK, userResponse{Success: true, User: userFromContext(r.Context())})
}

// UpdateProfile handles PUT /api/v1/me/update. The body is JSON or multipart
// with name, email and an optional replacement avatar.
func (h *UserHandler) UpdateProfile(w http.ResponseWriter, r *http.Request) {
	var (
		req    UpdateProfileRequest
		avatar *imagestore.UploadInput
	)

	if isMultipart(r) {
		if err := parseMultipart(w, r); err != nil {
			httputil.WriteError(w, r, err, h.logger)
			return
		}
		req = UpdateProfileRequest{
			Name:  strings.TrimSpace(r.FormValue("name")),
			Email: r.FormValue("email"),
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

	_, err := h.service.UpdateProfile(r.Context(), userFromContext(r.Context()).ID, &service.UpdateProfileInput{
		Name:   req.Name,
		Email:  req.Email,
		Avatar: avatar,
	})
	if err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}

	httputil.WriteOK(w, http.StatusOK)
}

// ListUsers handles GET /api/v1/admin/users.
func (h *UserHandler) ListUsers(w http.ResponseWriter, r *http.Request) {
	users, err := h.service.ListUsers(r.Context())
	if err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}

	httputil.WriteJSON(w, http.StatusOK, usersResponse{Success: true, Users: nonNil(users)})
}

// GetUser handles GET /api/v1/admin/user/{id}.
func (h *UserHandler) GetUser(w http.ResponseWriter, r *http.Request) {
	id, ok := httputil.ParseUUID(w, "user id", chi.URLParam(r, "id"))
	if !ok {
		return
	}

	user, err := h.service.GetUser(r.Context(), id.String())
	if err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}

	httputil.WriteJSON(w, http.StatusOK, userResponse{Success: true, User: user})
}

// UpdateUser handles PUT /api/v1/admin/user/{id}.
func (h *UserHandler) UpdateUser(w http.ResponseWriter, r *http.Request) {
	id, ok := httputil.ParseUUID(w, "user id", chi.URLParam(r, "id"))
	if !ok {
		return
	}

	var req UpdateUserRequest
	if err := validator.DecodeAndValidate(w, r, &req); err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}

	_, err := h.service.UpdateRole(r.Context(), id.String(), &service.UpdateRoleInput{
		Name:  req.Name,
		Email: req.Email,
		Role:  req.Role,
	})
	if err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}

	httputil.WriteOK(w, http.StatusOK)
}

// DeleteUser handles DELETE /api/v1/admin/user/{id}.
func (h *UserHandler) DeleteUser(w http.ResponseWriter, r *http.Request) {
	id, ok := httputil.ParseUUID(w, "user id", chi.URLParam(r, "id"))
	if !ok {
		return
	}

	if err := h.service.DeleteUser(r.Context(), id.String()); err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}

	httputil.WriteMessage(w, http.StatusOK, "User Deleted Successfully")
}
