package repository

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"user_management/internal/model"

	"github.com/jackc/pgerrcode"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
)

var (
	ErrUserNotFound = errors.New("user not found")
	ErrEmailTaken   = errors.New("email already in use")
)

// DBTX is the subset of *pgxpool.Pool the repositories need
type DBTX interface {
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

// UserRepository defines operations for user data
type UserRepository interface {
	List(ctx context.Context) ([]model.User, error)
	FindByID(ctx context.Context, id int64) (*model.User, error)
	Update(ctx context.Context, id int64, changes model.UserUpdate) (*model.User, error)
	Delete(ctx context.Context, id int64) (*model.User, error)
	FindCredentialsByEmail(ctx context.Context, email string) (*model.Credentials, error)
}

// userColumns is the credential-free projection returned by every read and mutation.
const userColumns = `id, name, email, role, created_at, updated_at`

type userRepository struct {
	db  DBTX
	now func() time.Time
}

// NewUserRepository creates a new UserRepository
func NewUserRepository(db DBTX) UserRepository {
	return &userRepository{db: db, now: time.Now}
}

func scanUser(row pgx.Row) (*model.User, error) {
	u := &model.User{}
	var role string
	if err := row.Scan(&u.ID, &u.Name, &u.Email, &role, &u.CreatedAt, &u.UpdatedAt); err != nil {
		return nil, err
	}
	u.Role = model.Role(role)
	return u, nil
}

// List retrieves every user in storage order
func (r *userRepository) List(ctx context.Context) ([]model.User, error) {
	rows, err := r.db.Query(ctx, `SELECT `+userColumns+` FROM users`)
	if err != nil {
		return nil, fmt.Errorf("failed to query users: %w", err)
	}
	defer rows.Close()

	users := []model.User{}
	for rows.Next() {
		u, err := scanUser(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan user row: %w", err)
		}
		users = append(users, *u)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating user rows: %w", err)
	}
	return users, nil
}

// FindByID retrieves a user by their ID
func (r *userRepository) FindByID(ctx context.Context, id int64) (*model.User, error) {
	u, err := scanUser(r.db.QueryRow(ctx, `SELECT `+userColumns+` FROM users WHERE id = $1 LIMIT 1`, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrUserNotFound
		}
		return nil, fmt.Errorf("failed to find user by ID: %w", err)
	}
	return u, nil
}

// Update applies the supplied fields and always refreshes updated_at.
// A row removed between the existence check and the write is reported as ErrUserNotFound.
func (r *userRepository) Update(ctx context.Context, id int64, changes model.UserUpdate) (*model.User, error) {
	var existing int64
	err := r.db.QueryRow(ctx, `SELECT id FROM users WHERE id = $1 LIMIT 1`, id).Scan(&existing)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrUserNotFound
		}
		return nil, fmt.Errorf("failed to check user existence: %w", err)
	}

	var sets []string
	var args []any
	argCount := 1

	if changes.Name != nil {
		sets = append(sets, fmt.Sprintf("name = $%d", argCount))
		args = append(args, *changes.Name)
		argCount++
	}
	if changes.Email != nil {
		sets = append(sets, fmt.Sprintf("email = $%d", argCount))
		args = append(args, *changes.Email)
		argCount++
	}
	if changes.Role != nil {
		sets = append(sets, fmt.Sprintf("role = $%d", argCount))
		args = append(args, string(*changes.Role))
		argCount++
	}
	sets = append(sets, fmt.Sprintf("updated_at = $%d", argCount))
	args = append(args, r.now().UTC())
	argCount++
	args = append(args, id)

	sql := fmt.Sprintf(`UPDATE users SET %s WHERE id = $%d RETURNING `+userColumns, strings.Join(sets, ", "), argCount)
	u, err := scanUser(r.db.QueryRow(ctx, sql, args...))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrUserNotFound
		}
		if isUniqueViolation(err) {
			return nil, ErrEmailTaken
		}
		return nil, fmt.Errorf("failed to update user: %w", err)
	}
	return u, nil
}

// Delete removes a user and returns the row as it was before deletion
func (r *userRepository) Delete(ctx context.Context, id int64) (*model.User, error) {
	u, err := scanUser(r.db.QueryRow(ctx, `DELETE FROM users WHERE id = $1 RETURNING `+userColumns, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrUserNotFound
		}
		return nil, fmt.Errorf("failed to delete user: %w", err)
	}
	return u, nil
}

// FindCredentialsByEmail retrieves the login view of a user by normalized email
func (r *userRepository) FindCredentialsByEmail(ctx context.Context, email string) (*model.Credentials, error) {
	c := &model.Credentials{}
	var role string
	sql := `SELECT id, email, role, password FROM users WHERE email = $1 LIMIT 1`
	err := r.db.QueryRow(ctx, sql, email).Scan(&c.ID, &c.Email, &role, &c.PasswordHash)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrUserNotFound
		}
		return nil, fmt.Errorf("failed to find user by email: %w", err)
	}
	c.Role = model.Role(role)
	return c, nil
}

func isUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == pgerrcode.UniqueViolation
}
