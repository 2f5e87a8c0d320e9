package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"

	"github.com/utafrali/shopfront/internal/domain"
	"github.com/utafrali/shopfront/internal/imagestore"
	"github.com/utafrali/shopfront/internal/repository"
	apperrors "github.com/utafrali/shopfront/pkg/errors"
)

// bcryptCost is the cost factor for bcrypt password hashing.
const bcryptCost = 12

// minPasswordLength is the minimum password length required.
const minPasswordLength = 8

// UserService implements account and user administration operations.
type UserService struct {
	repo       repository.UserRepository
	images     *imageUploader
	logger     *slog.Logger
	bcryptCost int
	now        func() time.Time
}

// NewUserService creates a new user service.
func NewUserService(repo repository.UserRepository, images imagestore.Store, metrics *Metrics, logger *slog.Logger) *UserService {
	return &UserService{
		repo:       repo,
		images:     &imageUploader{store: images, metrics: metrics, logger: logger},
		logger:     logger,
		bcryptCost: bcryptCost,
		now:        time.Now,
	}
}

// RegisterInput holds the parameters for registering a new user.
type RegisterInput struct {
	Name     string
	Email    string
	Password string
	Avatar   *imagestore.UploadInput
}

// LoginInput holds the parameters for user login.
type LoginInput struct {
	Email    string
	Password string
}

// UpdatePasswordInput holds the parameters for changing a password.
type UpdatePasswordInput struct {
	OldPassword     string
	NewPassword     string
	ConfirmPassword string
}

// UpdateProfileInput holds the parameters for updating a user's own profile.
// A nil Avatar keeps the current one.
type UpdateProfileInput struct {
	Name   string
	Email  string
	Avatar *imagestore.UploadInput
}

// UpdateRoleInput holds the parameters of an administrative user update.
type UpdateRoleInput struct {
	Name  string
	Email string
	Role  string
}

// Register creates a user account with the "user" role.
func (s *UserService) Register(ctx context.Context, input *RegisterInput) (*domain.User, error) {
	if err := validatePassword(input.Password); err != nil {
		return nil, err
	}

	hashedPassword, err := bcrypt.GenerateFromPassword([]byte(input.Password), s.bcryptCost)
	if err != nil {
		return nil, fmt.Errorf("hash password: %w", err)
	}

	user := &domain.User{
		ID:           uuid.New().String(),
		Name:         input.Name,
		Email:        strings.TrimSpace(input.Email),
		PasswordHash: string(hashedPassword),
		Role:         domain.RoleUser,
		CreatedAt:    s.now().UTC(),
	}

	var avatar []domain.Image
	if input.Avatar != nil {
		avatar, err = s.images.uploadAll(ctx, imagestore.FolderAvatars, []*imagestore.UploadInput{input.Avatar})
		if err != nil {
			return nil, err
		}
		user.Avatar = avatar[0]
	}

	if err := s.repo.Create(ctx, user); err != nil {
		s.images.compensate(ctx, avatar)
		return nil, fmt.Errorf("create user: %w", err)
	}

	s.logger.InfoContext(ctx, "user registered",
		slog.String("user_id", user.ID),
	)

	return user, nil
}

// Login authenticates a user by email and password.
func (s *UserService) Login(ctx context.Context, input *LoginInput) (*domain.User, error) {
	if input.Email == "" || input.Password == "" {
		return nil, apperrors.InvalidInput("Please Enter Email & Password")
	}

	user, err := s.repo.GetByEmail(ctx, input.Email)
	if err != nil {
		if errors.Is(err, apperrors.ErrNotFound) {
			return nil, apperrors.Unauthorized("Invalid email or password")
		}
		return nil, fmt.Errorf("get user by email: %w", err)
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(input.Password)); err != nil {
		return nil, apperrors.Unauthorized("Invalid email or password")
	}

	s.logger.InfoContext(ctx, "user logged in",
		slog.String("user_id", user.ID),
	)

	return user, nil
}

// GetUser retrieves a user by ID.
func (s *UserService) GetUser(ctx context.Context, id string) (*domain.User, error) {
	user, err := s.repo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, apperrors.ErrNotFound) {
			return nil, apperrors.NotFound("User", id)
		}
		return nil, fmt.Errorf("get user by id: %w", err)
	}
	return user, nil
}

// UpdatePassword changes a user's password after checking the old one.
func (s *UserService) UpdatePassword(ctx context.Context, userID string, input *UpdatePasswordInput) (*domain.User, error) {
	user, err := s.GetUser(ctx, userID)
	if err != nil {
		return nil, err
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(input.OldPassword)); err != nil {
		return nil, apperrors.InvalidInput("Old password is incorrect")
	}
	if input.NewPassword != input.ConfirmPassword {
		return nil, apperrors.InvalidInput("password does not match")
	}
	if err := validatePassword(input.NewPassword); err != nil {
		return nil, err
	}

	hashedPassword, err := bcrypt.GenerateFromPassword([]byte(input.NewPassword), s.bcryptCost)
	if err != nil {
		return nil, fmt.Errorf("hash new password: %w", err)
	}

	user.PasswordHash = string(hashedPassword)
	if err := s.save(ctx, user); err != nil {
		return nil, err
	}

	s.logger.InfoContext(ctx, "user password changed",
		slog.String("user_id", user.ID),
	)

	return user, nil
}

// UpdateProfile changes a user's own name, email and avatar. A replaced
// avatar is destroyed after the user is saved.
func (s *UserService) UpdateProfile(ctx context.Context, userID string, input *UpdateProfileInput) (*domain.User, error) {
	user, err := s.GetUser(ctx, userID)
	if err != nil {
		return nil, err
	}

	user.Name = input.Name
	user.Email = strings.TrimSpace(input.Email)

	var uploaded []domain.Image
	previous := user.Avatar
	if input.Avatar != nil {
		uploaded, err = s.images.uploadAll(ctx, imagestore.FolderAvatars, []*imagestore.UploadInput{input.Avatar})
		if err != nil {
			return nil, err
		}
		user.Avatar = uploaded[0]
	}

	if err := s.save(ctx, user); err != nil {
		s.images.compensate(ctx, uploaded)
		return nil, err
	}

	if uploaded != nil && previous.PublicID != "" {
		s.images.destroyAll(ctx, []domain.Image{previous})
	}

	s.logger.InfoContext(ctx, "user profile updated",
		slog.String("user_id", user.ID),
		slog.Bool("avatar_replaced", uploaded != nil),
	)

	return user, nil
}

// ListUsers returns every user.
func (s *UserService) ListUsers(ctx context.Context) ([]domain.User, error) {
	users, err := s.repo.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("list users: %w", err)
	}
	return users, nil
}

// UpdateRole changes a user's name, email and role.
func (s *UserService) UpdateRole(ctx context.Context, id string, input *UpdateRoleInput) (*domain.User, error) {
	if !domain.IsValidRole(input.Role) {
		return nil, apperrors.InvalidInput(fmt.Sprintf("invalid role %q, must be %q or %q", input.Role, domain.RoleUser, domain.RoleAdmin))
	}

	user, err := s.GetUser(ctx, id)
	if err != nil {
		return nil, err
	}

	user.Name = input.Name
	user.Email = strings.TrimSpace(input.Email)
	user.Role = input.Role
	if err := s.save(ctx, user); err != nil {
		return nil, err
	}

	s.logger.InfoContext(ctx, "user role updated",
		slog.String("user_id", user.ID),
		slog.String("role", user.Role),
	)

	return user, nil
}

// DeleteUser removes a user and destroys their avatar.
func (s *UserService) DeleteUser(ctx context.Context, id string) error {
	user, err := s.GetUser(ctx, id)
	if err != nil {
		return err
	}

	if err := s.repo.Delete(ctx, id); err != nil {
		if errors.Is(err, apperrors.ErrNotFound) {
			return apperrors.NotFound("User", id)
		}
		return fmt.Errorf("delete user: %w", err)
	}

	if user.Avatar.PublicID != "" {
		s.images.destroyAll(ctx, []domain.Image{user.Avatar})
	}

	s.logger.InfoContext(ctx, "user deleted",
		slog.String("user_id", id),
	)

	return nil
}

func (s *UserService) save(ctx context.Context, user *domain.User) error {
	if err := s.repo.Update(ctx, user); err != nil {
		if errors.Is(err, apperrors.ErrNotFound) {
			return apperrors.NotFound("User", user.ID)
		}
		return fmt.Errorf("update user: %w", err)
	}
	return nil
}

func validatePassword(password string) error {
	if len(password) < minPasswordLength {
		return apperrors.InvalidInput(fmt.Sprintf("password must be at least %d characters", minPasswordLength))
	}
	return nil
}
