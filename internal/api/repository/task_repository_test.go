package repository

import (
	"context"
	"ctchen222/task-manager/internal/api/models"
	"ctchen222/task-manager/internal/db"
	"regexp"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/jmoiron/sqlx"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

func newSQLiteDB(t *testing.T) *sqlx.DB {
	t.Helper()
	ctx := context.Background()
	pool, err := db.Open(ctx, db.DriverSQLite, ":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { _ = pool.Close() })
	require.NoError(t, db.Migrate(ctx, pool, db.DriverSQLite))
	return pool
}

func createUser(t *testing.T, pool *sqlx.DB, name string) *models.User {
	t.Helper()
	u := &models.User{Username: name, CreatedAt: time.Now().UTC()}
	require.NoError(t, NewUserRepositoryWithCost(pool, bcrypt.MinCost).CreateUser(context.Background(), u, "secret1"))
	return u
}

func TestTaskRepository_SQLiteLifecycle(t *testing.T) {
	ctx := context.Background()
	pool := newSQLiteDB(t)
	repo := NewTaskRepository(pool)
	alice := createUser(t, pool, "alice")
	bob := createUser(t, pool, "bob")

	now := time.Date(2024, 3, 1, 9, 0, 0, 0, time.UTC)
	desc := "two\nlines"
	task := &models.Task{Title: "Buy milk", Description: &desc, CreatedAt: now, UpdatedAt: now, UserID: alice.ID}
	require.NoError(t, repo.Create(ctx, task))
	require.NotZero(t, task.ID)

	got, err := repo.GetByIDAndUser(ctx, task.ID, alice.ID)
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, "Buy milk", got.Title)
	require.NotNil(t, got.Description)
	assert.Equal(t, desc, *got.Description)
	assert.False(t, got.IsCompleted)
	assert.True(t, got.CreatedAt.Equal(now))
	assert.True(t, got.UpdatedAt.Equal(now))

	// Someone else's id sees nothing.
	other, err := repo.GetByIDAndUser(ctx, task.ID, bob.ID)
	require.NoError(t, err)
	assert.Nil(t, other)
	exists, err := repo.ExistsForUser(ctx, task.ID, bob.ID)
	require.NoError(t, err)
	assert.False(t, exists)

	later := now.Add(time.Minute)
	got.IsCompleted = true
	got.Description = nil
	got.UpdatedAt = later
	ok, err := repo.Update(ctx, got)
	require.NoError(t, err)
	assert.True(t, ok)

	updated, err := repo.GetByIDAndUser(ctx, task.ID, alice.ID)
	require.NoError(t, err)
	assert.True(t, updated.IsCompleted)
	assert.Nil(t, updated.Description)
	assert.True(t, updated.CreatedAt.Equal(now))
	assert.True(t, updated.UpdatedAt.Equal(later))

	stolen := *updated
	stolen.UserID = bob.ID
	ok, err = repo.Update(ctx, &stolen)
	require.NoError(t, err)
	assert.False(t, ok)

	ok, err = repo.Delete(ctx, task.ID, bob.ID)
	require.NoError(t, err)
	assert.False(t, ok)
	ok, err = repo.Delete(ctx, task.ID, alice.ID)
	require.NoError(t, err)
	assert.True(t, ok)

	list, err := repo.ListByUser(ctx, alice.ID)
	require.NoError(t, err)
	assert.Empty(t, list)
}

func TestTaskRepository_ListByUser_NewestFirst(t *testing.T) {
	ctx := context.Background()
	pool := newSQLiteDB(t)
	repo := NewTaskRepository(pool)
	alice := createUser(t, pool, "alice")
	bob := createUser(t, pool, "bob")

	base := time.Date(2024, 3, 1, 9, 0, 0, 0, time.UTC)
	for i, title := range []string{"first", "second", "third"} {
		at := base.Add(time.Duration(i) * time.Hour)
		require.NoError(t, repo.Create(ctx, &models.Task{Title: title, CreatedAt: at, UpdatedAt: at, UserID: alice.ID}))
	}
	require.NoError(t, repo.Create(ctx, &models.Task{Title: "not yours", CreatedAt: base, UpdatedAt: base, UserID: bob.ID}))

	list, err := repo.ListByUser(ctx, alice.ID)
	require.NoError(t, err)
	require.Len(t, list, 3)
	assert.Equal(t, []string{"third", "second", "first"}, []string{list[0].Title, list[1].Title, list[2].Title})
}

func TestUserRepository_SQLiteDuplicate(t *testing.T) {
	pool := newSQLiteDB(t)
	createUser(t, pool, "alice")

	err := NewUserRepositoryWithCost(pool, bcrypt.MinCost).
		CreateUser(context.Background(), &models.User{Username: "alice", CreatedAt: time.Now()}, "secret2")
	require.ErrorIs(t, err, ErrUsernameTaken)
}

func TestTaskRepository_DeleteQueryIsScoped(t *testing.T) {
	pool, mock := newMockDB(t)
	mock.ExpectExec(regexp.QuoteMeta(`DELETE FROM tasks WHERE id = ? AND user_id = ?`)).
		WithArgs(int64(5), int64(2)).
		WillReturnResult(sqlmock.NewResult(0, 0))

	ok, err := NewTaskRepository(pool).Delete(context.Background(), 5, 2)
	require.NoError(t, err)
	assert.False(t, ok)
	assert.NoError(t, mock.ExpectationsWereMet())
}
