package repository

import (
	"context"
	"errors"
	"regexp"
	"testing"
	"time"

	"user_management/internal/model"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/pashagolub/pgxmock/v3"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var userCols = []string{"id", "name", "email", "role", "created_at", "updated_at"}

func newMockRepo(t *testing.T) (pgxmock.PgxPoolIface, *userRepository) {
	t.Helper()
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	t.Cleanup(mock.Close)

	repo := NewUserRepository(mock).(*userRepository)
	return mock, repo
}

func strPtr(s string) *string { return &s }

func TestUserRepository_List(t *testing.T) {
	mock, repo := newMockRepo(t)
	created := time.Date(2025, 1, 2, 3, 4, 5, 0, time.UTC)

	mock.ExpectQuery(regexp.QuoteMeta(`SELECT id, name, email, role, created_at, updated_at FROM users`)).
		WillReturnRows(pgxmock.NewRows(userCols).
			AddRow(int64(1), "Ann", "ann@example.com", "admin", created, created).
			AddRow(int64(2), "Bob", "bob@example.com", "user", created, created))

	users, err := repo.List(context.Background())
	require.NoError(t, err)
	require.Len(t, users, 2)
	assert.Equal(t, int64(1), users[0].ID)
	assert.Equal(t, model.RoleAdmin, users[0].Role)
	assert.Equal(t, "bob@example.com", users[1].Email)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestUserRepository_List_Empty(t *testing.T) {
	mock, repo := newMockRepo(t)

	mock.ExpectQuery(regexp.QuoteMeta(`FROM users`)).
		WillReturnRows(pgxmock.NewRows(userCols))

	users, err := repo.List(context.Background())
	require.NoError(t, err)
	assert.NotNil(t, users)
	assert.Empty(t, users)
}

func TestUserRepository_List_QueryError(t *testing.T) {
	mock, repo := newMockRepo(t)

	mock.ExpectQuery(regexp.QuoteMeta(`FROM users`)).
		WillReturnError(errors.New("connection refused"))

	_, err := repo.List(context.Background())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to query users")
	assert.NotErrorIs(t, err, ErrUserNotFound)
}

func TestUserRepository_FindByID(t *testing.T) {
	mock, repo := newMockRepo(t)
	created := time.Date(2025, 1, 2, 3, 4, 5, 0, time.UTC)

	mock.ExpectQuery(regexp.QuoteMeta(`FROM users WHERE id = $1 LIMIT 1`)).
		WithArgs(int64(5)).
		WillReturnRows(pgxmock.NewRows(userCols).
			AddRow(int64(5), "Eve", "eve@example.com", "user", created, created))

	u, err := repo.FindByID(context.Background(), 5)
	require.NoError(t, err)
	assert.Equal(t, &model.User{ID: 5, Name: "Eve", Email: "eve@example.com", Role: model.RoleUser, CreatedAt: created, UpdatedAt: created}, u)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestUserRepository_FindByID_NotFound(t *testing.T) {
	mock, repo := newMockRepo(t)

	mock.ExpectQuery(regexp.QuoteMeta(`FROM users WHERE id = $1 LIMIT 1`)).
		WithArgs(int64(404)).
		WillReturnRows(pgxmock.NewRows(userCols))

	u, err := repo.FindByID(context.Background(), 404)
	assert.Nil(t, u)
	assert.ErrorIs(t, err, ErrUserNotFound)
}

func TestUserRepository_Update_PartialFields(t *testing.T) {
	mock, repo := newMockRepo(t)
	created := time.Date(2025, 1, 2, 3, 4, 5, 0, time.UTC)
	now := time.Date(2025, 6, 1, 0, 0, 0, 0, time.UTC)
	repo.now = func() time.Time { return now }

	mock.ExpectQuery(regexp.QuoteMeta(`SELECT id FROM users WHERE id = $1 LIMIT 1`)).
		WithArgs(int64(5)).
		WillReturnRows(pgxmock.NewRows([]string{"id"}).AddRow(int64(5)))
	mock.ExpectQuery(regexp.QuoteMeta(`UPDATE users SET name = $1, role = $2, updated_at = $3 WHERE id = $4 RETURNING id, name, email, role, created_at, updated_at`)).
		WithArgs("Zed", "admin", now, int64(5)).
		WillReturnRows(pgxmock.NewRows(userCols).
			AddRow(int64(5), "Zed", "zed@example.com", "admin", created, now))

	role := model.RoleAdmin
	u, err := repo.Update(context.Background(), 5, model.UserUpdate{Name: strPtr("Zed"), Role: &role})
	require.NoError(t, err)
	assert.Equal(t, "Zed", u.Name)
	assert.Equal(t, model.RoleAdmin, u.Role)
	assert.Equal(t, now, u.UpdatedAt)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestUserRepository_Update_EmptyChangesTouchesUpdatedAt(t *testing.T) {
	mock, repo := newMockRepo(t)
	created := time.Date(2025, 1, 2, 3, 4, 5, 0, time.UTC)
	now := time.Date(2025, 6, 1, 0, 0, 0, 0, time.UTC)
	repo.now = func() time.Time { return now }

	mock.ExpectQuery(regexp.QuoteMeta(`SELECT id FROM users WHERE id = $1`)).
		WithArgs(int64(5)).
		WillReturnRows(pgxmock.NewRows([]string{"id"}).AddRow(int64(5)))
	mock.ExpectQuery(regexp.QuoteMeta(`UPDATE users SET updated_at = $1 WHERE id = $2 RETURNING`)).
		WithArgs(now, int64(5)).
		WillReturnRows(pgxmock.NewRows(userCols).
			AddRow(int64(5), "Eve", "eve@example.com", "user", created, now))

	u, err := repo.Update(context.Background(), 5, model.UserUpdate{})
	require.NoError(t, err)
	assert.Equal(t, "Eve", u.Name)
	assert.Equal(t, created, u.CreatedAt)
	assert.Equal(t, now, u.UpdatedAt)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestUserRepository_Update_NotFound(t *testing.T) {
	mock, repo := newMockRepo(t)

	mock.ExpectQuery(regexp.QuoteMeta(`SELECT id FROM users WHERE id = $1`)).
		WithArgs(int64(404)).
		WillReturnRows(pgxmock.NewRows([]string{"id"}))

	_, err := repo.Update(context.Background(), 404, model.UserUpdate{Name: strPtr("Nobody")})
	assert.ErrorIs(t, err, ErrUserNotFound)
	// no UPDATE is attempted
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestUserRepository_Update_DeletedConcurrently(t *testing.T) {
	mock, repo := newMockRepo(t)

	mock.ExpectQuery(regexp.QuoteMeta(`SELECT id FROM users WHERE id = $1`)).
		WithArgs(int64(5)).
		WillReturnRows(pgxmock.NewRows([]string{"id"}).AddRow(int64(5)))
	mock.ExpectQuery(regexp.QuoteMeta(`UPDATE users SET`)).
		WithArgs(pgxmock.AnyArg(), int64(5)).
		WillReturnRows(pgxmock.NewRows(userCols))

	_, err := repo.Update(context.Background(), 5, model.UserUpdate{})
	assert.ErrorIs(t, err, ErrUserNotFound)
}

func TestUserRepository_Update_EmailTaken(t *testing.T) {
	mock, repo := newMockRepo(t)

	mock.ExpectQuery(regexp.QuoteMeta(`SELECT id FROM users WHERE id = $1`)).
		WithArgs(int64(5)).
		WillReturnRows(pgxmock.NewRows([]string{"id"}).AddRow(int64(5)))
	mock.ExpectQuery(regexp.QuoteMeta(`UPDATE users SET email = $1, updated_at = $2 WHERE id = $3`)).
		WithArgs("dup@example.com", pgxmock.AnyArg(), int64(5)).
		WillReturnError(&pgconn.PgError{Code: "23505", ConstraintName: "users_email_unique"})

	_, err := repo.Update(context.Background(), 5, model.UserUpdate{Email: strPtr("dup@example.com")})
	assert.ErrorIs(t, err, ErrEmailTaken)
}

func TestUserRepository_Update_DriverError(t *testing.T) {
	mock, repo := newMockRepo(t)

	mock.ExpectQuery(regexp.QuoteMeta(`SELECT id FROM users WHERE id = $1`)).
		WithArgs(int64(5)).
		WillReturnError(errors.New("connection reset"))

	_, err := repo.Update(context.Background(), 5, model.UserUpdate{})
	require.Error(t, err)
	assert.NotErrorIs(t, err, ErrUserNotFound)
	assert.Contains(t, err.Error(), "connection reset")
}

func TestUserRepository_Delete(t *testing.T) {
	mock, repo := newMockRepo(t)
	created := time.Date(2025, 1, 2, 3, 4, 5, 0, time.UTC)

	mock.ExpectQuery(regexp.QuoteMeta(`DELETE FROM users WHERE id = $1 RETURNING id, name, email, role, created_at, updated_at`)).
		WithArgs(int64(5)).
		WillReturnRows(pgxmock.NewRows(userCols).
			AddRow(int64(5), "Eve", "eve@example.com", "user", created, created))
	mock.ExpectQuery(regexp.QuoteMeta(`DELETE FROM users WHERE id = $1`)).
		WithArgs(int64(5)).
		WillReturnRows(pgxmock.NewRows(userCols))

	u, err := repo.Delete(context.Background(), 5)
	require.NoError(t, err)
	assert.Equal(t, int64(5), u.ID)
	assert.Equal(t, "Eve", u.Name)

	// second delete of the same id is a plain not-found
	u, err = repo.Delete(context.Background(), 5)
	assert.Nil(t, u)
	assert.ErrorIs(t, err, ErrUserNotFound)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestUserRepository_FindCredentialsByEmail(t *testing.T) {
	mock, repo := newMockRepo(t)

	mock.ExpectQuery(regexp.QuoteMeta(`SELECT id, email, role, password FROM users WHERE email = $1`)).
		WithArgs("ann@example.com").
		WillReturnRows(pgxmock.NewRows([]string{"id", "email", "role", "password"}).
			AddRow(int64(1), "ann@example.com", "admin", "$2a$10$hash"))

	c, err := repo.FindCredentialsByEmail(context.Background(), "ann@example.com")
	require.NoError(t, err)
	assert.Equal(t, &model.Credentials{ID: 1, Email: "ann@example.com", Role: model.RoleAdmin, PasswordHash: "$2a$10$hash"}, c)

	mock.ExpectQuery(regexp.QuoteMeta(`WHERE email = $1`)).
		WithArgs("ghost@example.com").
		WillReturnRows(pgxmock.NewRows([]string{"id", "email", "role", "password"}))

	_, err = repo.FindCredentialsByEmail(context.Background(), "ghost@example.com")
	assert.ErrorIs(t, err, ErrUserNotFound)
}
