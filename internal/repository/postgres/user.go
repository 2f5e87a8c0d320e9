package postgres

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/utafrali/shopfront/internal/domain"
	"github.com/utafrali/shopfront/pkg/database"
	apperrors "github.com/utafrali/shopfront/pkg/errors"
)

const userSelectColumns = `id, name, email, password_hash, avatar, role, created_at`

// UserRepository implements repository.UserRepository using PostgreSQL.
type UserRepository struct {
	db database.DBTX
}

// NewUserRepository creates a new PostgreSQL-backed user repository.
func NewUserRepository(db database.DBTX) *UserRepository {
	return &UserRepository{db: db}
}

// Create inserts a new user. A duplicate e-mail returns an AlreadyExists error.
func (r *UserRepository) Create(ctx context.Context, u *domain.User) (err error) {
	avatarJSON, err := json.Marshal(u.Avatar)
	if err != nil {
		return fmt.Errorf("marshal avatar: %w", err)
	}

	stmt := `
		INSERT INTO users (id, name, email, password_hash, avatar, role, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)`

	ctx, end := database.TraceQuery(ctx, "CreateUser", stmt)
	defer func() { end(err) }()

	_, err = r.db.Exec(ctx, stmt, u.ID, u.Name, u.Email, u.PasswordHash, avatarJSON, u.Role, u.CreatedAt)
	if err != nil {
		if isUniqueViolation(err) {
			return apperrors.AlreadyExists("user", "email", u.Email)
		}
		return fmt.Errorf("insert user: %w", err)
	}
	return nil
}

// GetByID retrieves a user by ID.
func (r *UserRepository) GetByID(ctx context.Context, id string) (*domain.User, error) {
	return r.getOne(ctx, "GetUser", `SELECT `+userSelectColumns+` FROM users WHERE id = $1`, id)
}

// GetByEmail retrieves a user by e-mail, case-insensitively.
func (r *UserRepository) GetByEmail(ctx context.Context, email string) (*domain.User, error) {
	return r.getOne(ctx, "GetUserByEmail", `SELECT `+userSelectColumns+` FROM users WHERE LOWER(email) = LOWER($1)`, email)
}

func (r *UserRepository) getOne(ctx context.Context, op, stmt string, arg any) (_ *domain.User, err error) {
	ctx, end := database.TraceQuery(ctx, op, stmt)
	defer func() { end(err) }()

	u, err := scanUser(r.db.QueryRow(ctx, stmt, arg))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.ErrNotFound
		}
		return nil, fmt.Errorf("get user: %w", err)
	}
	return u, nil
}

// List returns every user, oldest first.
func (r *UserRepository) List(ctx context.Context) (_ []domain.User, err error) {
	stmt := `SELECT ` + userSelectColumns + ` FROM users ORDER BY created_at, id`

	ctx, end := database.TraceQuery(ctx, "ListUsers", stmt)
	defer func() { end(err) }()

	rows, err := r.db.Query(ctx, stmt)
	if err != nil {
		return nil, fmt.Errorf("list users: %w", err)
	}
	defer rows.Close()

	users := []domain.User{}
	for rows.Next() {
		u, err := scanUser(rows)
		if err != nil {
			return nil, fmt.Errorf("scan user row: %w", err)
		}
		users = append(users, *u)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate user rows: %w", err)
	}
	return users, nil
}

// Update writes the mutable user fields.
func (r *UserRepository) Update(ctx context.Context, u *domain.User) (err error) {
	avatarJSON, err := json.Marshal(u.Avatar)
	if err != nil {
		return fmt.Errorf("marshal avatar: %w", err)
	}

	stmt := `
		UPDATE users
		SET name = $1, email = $2, password_hash = $3, avatar = $4, role = $5, updated_at = NOW()
		WHERE id = $6`

	ctx, end := database.TraceQuery(ctx, "UpdateUser", stmt)
	defer func() { end(err) }()

	ct, err := r.db.Exec(ctx, stmt, u.Name, u.Email, u.PasswordHash, avatarJSON, u.Role, u.ID)
	if err != nil {
		if isUniqueViolation(err) {
			return apperrors.AlreadyExists("user", "email", u.Email)
		}
		return fmt.Errorf("update user: %w", err)
	}
	if ct.RowsAffected() == 0 {
		return apperrors.ErrNotFound
	}
	return nil
}

// Delete removes a user by ID.
func (r *UserRepository) Delete(ctx context.Context, id string) (err error) {
	stmt := `DELETE FROM users WHERE id = $1`

	ctx, end := database.TraceQuery(ctx, "DeleteUser", stmt)
	defer func() { end(err) }()

	ct, err := r.db.Exec(ctx, stmt, id)
	if err != nil {
		return fmt.Errorf("delete user: %w", err)
	}
	if ct.RowsAffected() == 0 {
		return apperrors.ErrNotFound
	}
	return nil
}

func scanUser(row pgx.Row) (*domain.User, error) {
	var (
		u          domain.User
		avatarJSON []byte
	)
	if err := row.Scan(&u.ID, &u.Name, &u.Email, &u.PasswordHash, &avatarJSON, &u.Role, &u.CreatedAt); err != nil {
		return nil, err
	}
	if len(avatarJSON) > 0 {
		if err := json.Unmarshal(avatarJSON, &u.Avatar); err != nil {
			return nil, fmt.Errorf("unmarshal avatar: %w", err)
		}
	}
	return &u, nil
}
