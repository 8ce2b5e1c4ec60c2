package repository

import (
	"context"
	"database/sql"
	"regexp"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/brianvoe/gofakeit/v7"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/shahwaiz14/event-tracker/internal/apperr"
	"github.com/shahwaiz14/event-tracker/internal/user/domain"
)

func newMockDB(t *testing.T) (*sql.DB, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() {
		assert.NoError(t, mock.ExpectationsWereMet())
		db.Close()
	})
	return db, mock
}

var userColumns = []string{"id", "username", "password_hash", "created_at"}

func TestGetByUsername(t *testing.T) {
	db, mock := newMockDB(t)
	id := gofakeit.UUID()
	created := time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC)
	mock.ExpectQuery(regexp.QuoteMeta(`FROM users WHERE username = $1`)).
		WithArgs("alice").
		WillReturnRows(sqlmock.NewRows(userColumns).AddRow(id, "alice", "$2a$04$hash", created))

	u, err := NewPostgresRepository(db).GetByUsername(context.Background(), "alice")
	require.NoError(t, err)
	require.NotNil(t, u)
	assert.Equal(t, domain.User{ID: id, Username: "alice", PasswordHash: "$2a$04$hash", CreatedAt: created}, *u)
}

func TestGetByUsername_Missing(t *testing.T) {
	db, mock := newMockDB(t)
	mock.ExpectQuery(`FROM users`).WithArgs("ghost").WillReturnRows(sqlmock.NewRows(userColumns))

	u, err := NewPostgresRepository(db).GetByUsername(context.Background(), "ghost")
	require.NoError(t, err)
	assert.Nil(t, u)
}

func TestCreate(t *testing.T) {
	db, mock := newMockDB(t)
	u := &domain.User{ID: gofakeit.UUID(), Username: gofakeit.Username(), PasswordHash: "h", CreatedAt: time.Now().UTC()}
	mock.ExpectExec(regexp.QuoteMeta(`INSERT INTO users`)).
		WithArgs(u.ID, u.Username, u.PasswordHash, u.CreatedAt).
		WillReturnResult(sqlmock.NewResult(0, 1))

	require.NoError(t, NewPostgresRepository(db).Create(context.Background(), u))
}

func TestCreate_UsernameTaken(t *testing.T) {
	db, mock := newMockDB(t)
	mock.ExpectExec(`INSERT INTO users`).
		WillReturnError(&pgconn.PgError{Code: "23505", ConstraintName: "users_username_key"})

	err := NewPostgresRepository(db).Create(context.Background(), &domain.User{ID: "x", Username: "alice"})
	assert.ErrorIs(t, err, apperr.ErrUsernameTaken)
}
