package repository

import (
	"context"
	"ctchen222/task-manager/internal/api/models"
	"errors"
	"regexp"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

func newMockDB(t *testing.T) (*sqlx.DB, sqlmock.Sqlmock) {
	t.Helper()
	mockDB, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { _ = mockDB.Close() })
	return sqlx.NewDb(mockDB, "sqlmock"), mock
}

func TestUserRepository_CreateUser(t *testing.T) {
	insert := regexp.QuoteMeta(`INSERT INTO users (username, password_hash, created_at) VALUES (?, ?, ?) RETURNING id`)
	now := time.Date(2024, 1, 2, 3, 4, 5, 0, time.UTC)

	tests := []struct {
		name    string
		setup   func(mock sqlmock.Sqlmock)
		wantErr error
		wantID  int64
	}{
		{
			name: "success",
			setup: func(mock sqlmock.Sqlmock) {
				mock.ExpectQuery(insert).
					WithArgs("alice", sqlmock.AnyArg(), now).
					WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow(7))
			},
			wantID: 7,
		},
		{
			name: "duplicate username",
			setup: func(mock sqlmock.Sqlmock) {
				mock.ExpectQuery(insert).
					WithArgs("alice", sqlmock.AnyArg(), now).
					WillReturnError(&pq.Error{Code: "23505"})
			},
			wantErr: ErrUsernameTaken,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			db, mock := newMockDB(t)
			tt.setup(mock)
			repo := NewUserRepositoryWithCost(db, bcrypt.MinCost)

			user := &models.User{Username: "alice", CreatedAt: now}
			err := repo.CreateUser(context.Background(), user, "secret1")
			if tt.wantErr != nil {
				require.ErrorIs(t, err, tt.wantErr)
			} else {
				require.NoError(t, err)
				assert.Equal(t, tt.wantID, user.ID)
				assert.NoError(t, bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte("secret1")))
				assert.NotEqual(t, "secret1", user.PasswordHash)
			}
			assert.NoError(t, mock.ExpectationsWereMet())
		})
	}
}

func TestUserRepository_CreateUser_DriverError(t *testing.T) {
	db, mock := newMockDB(t)
	mock.ExpectQuery(`INSERT INTO users`).WillReturnError(errors.New("connection reset"))

	err := NewUserRepositoryWithCost(db, bcrypt.MinCost).CreateUser(context.Background(), &models.User{Username: "bob"}, "secret1")
	require.Error(t, err)
	assert.NotErrorIs(t, err, ErrUsernameTaken)
	assert.Contains(t, err.Error(), "failed to create user")
}

func TestUserRepository_GetUserByUsername(t *testing.T) {
	query := regexp.QuoteMeta(`SELECT id, username, password_hash, created_at FROM users WHERE username = ?`)
	created := time.Date(2024, 1, 2, 3, 4, 5, 0, time.UTC)

	t.Run("found", func(t *testing.T) {
		db, mock := newMockDB(t)
		mock.ExpectQuery(query).WithArgs("alice").WillReturnRows(
			sqlmock.NewRows([]string{"id", "username", "password_hash", "created_at"}).
				AddRow(3, "alice", "hash", created))

		user, err := NewUserRepository(db).GetUserByUsername(context.Background(), "alice")
		require.NoError(t, err)
		assert.Equal(t, &models.User{ID: 3, Username: "alice", PasswordHash: "hash", CreatedAt: created}, user)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("missing", func(t *testing.T) {
		db, mock := newMockDB(t)
		mock.ExpectQuery(query).WithArgs("ghost").
			WillReturnRows(sqlmock.NewRows([]string{"id", "username", "password_hash", "created_at"}))

		user, err := NewUserRepository(db).GetUserByUsername(context.Background(), "ghost")
		require.ErrorIs(t, err, ErrUserNotFound)
		assert.Nil(t, user)
	})
}

func TestUserRepository_ExistsByUsername(t *testing.T) {
	db, mock := newMockDB(t)
	mock.ExpectQuery(regexp.QuoteMeta(`SELECT EXISTS (SELECT 1 FROM users WHERE username = ?)`)).
		WithArgs("alice").
		WillReturnRows(sqlmock.NewRows([]string{"exists"}).AddRow(true))

	exists, err := NewUserRepository(db).ExistsByUsername(context.Background(), "alice")
	require.NoError(t, err)
	assert.True(t, exists)
	assert.NoError(t, mock.ExpectationsWereMet())
}
