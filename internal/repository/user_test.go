package repository

import (
	"context"
	"regexp"
	"testing"
	"time"

	"quill/internal/models"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
)

func TestUserRepository_CreateAndGetByUsername(t *testing.T) {
	db := newTestDB(t)
	repo := NewUserRepository(db)
	ctx := context.Background()

	created := mustCreateUser(t, db, "alice", "alice@example.com")
	assert.NotZero(t, created.ID)
	assert.False(t, created.DateAdded.IsZero())

	found, err := repo.GetByUsername(ctx, "alice")
	require.NoError(t, err)
	require.NotNil(t, found)
	assert.Equal(t, created.ID, found.ID)
	assert.True(t, found.VerifyPassword("secret123"))
	assert.False(t, found.VerifyPassword("wrong"))
	// Only the hash is stored.
	assert.NotContains(t, found.PasswordHash, "secret123")
}

func TestUserRepository_GetByUsernameAbsent(t *testing.T) {
	db := newTestDB(t)
	repo := NewUserRepository(db)

	found, err := repo.GetByUsername(context.Background(), "nobody")
	assert.NoError(t, err)
	assert.Nil(t, found)
}

func TestUserRepository_DuplicateEmail(t *testing.T) {
	db := newTestDB(t)
	repo := NewUserRepository(db)
	ctx := context.Background()

	mustCreateUser(t, db, "alice", "alice@example.com")

	dup := &models.User{Username: "alice2", Name: "Alice", Email: "alice@example.com"}
	require.NoError(t, dup.SetPassword("secret123"))
	err := repo.Create(ctx, dup)

	require.Error(t, err)
	assert.True(t, models.HasCode(err, models.CodeDuplicateUser))

	// Store unchanged: still exactly one user.
	users, err := repo.ListByDateAdded(ctx)
	require.NoError(t, err)
	assert.Len(t, users, 1)
}

func TestUserRepository_DuplicateUsername(t *testing.T) {
	db := newTestDB(t)
	repo := NewUserRepository(db)

	mustCreateUser(t, db, "alice", "alice@example.com")

	dup := &models.User{Username: "alice", Name: "Other", Email: "other@example.com"}
	require.NoError(t, dup.SetPassword("secret123"))
	err := repo.Create(context.Background(), dup)

	assert.True(t, models.HasCode(err, models.CodeDuplicateUser))
}

func TestUserRepository_GetByID(t *testing.T) {
	db := newTestDB(t)
	repo := NewUserRepository(db)
	ctx := context.Background()

	created := mustCreateUser(t, db, "bob", "bob@example.com")

	found, err := repo.GetByID(ctx, created.ID)
	require.NoError(t, err)
	assert.Equal(t, "bob", found.Username)

	_, err = repo.GetByID(ctx, 9999)
	require.Error(t, err)
	assert.True(t, models.HasCode(err, models.CodeNotFound))
}

func TestUserRepository_ListByDateAdded(t *testing.T) {
	db := newTestDB(t)
	repo := NewUserRepository(db)
	ctx := context.Background()

	base := time.Date(2023, 4, 1, 12, 0, 0, 0, time.UTC)
	for i, username := range []string{"third", "first", "second"} {
		offsets := []time.Duration{2 * time.Hour, 0, time.Hour}
		user := &models.User{
			Username:  username,
			Name:      username,
			Email:     username + "@example.com",
			DateAdded: base.Add(offsets[i]),
		}
		require.NoError(t, user.SetPassword("secret123"))
		require.NoError(t, repo.Create(ctx, user))
	}

	users, err := repo.ListByDateAdded(ctx)
	require.NoError(t, err)
	require.Len(t, users, 3)
	assert.Equal(t, "first", users[0].Username)
	assert.Equal(t, "second", users[1].Username)
	assert.Equal(t, "third", users[2].Username)
}

func TestUserRepository_UpdateAndDelete(t *testing.T) {
	db := newTestDB(t)
	repo := NewUserRepository(db)
	ctx := context.Background()

	user := mustCreateUser(t, db, "carol", "carol@example.com")

	user.Name = "Carol C."
	user.FavoriteColor = "green"
	require.NoError(t, repo.Update(ctx, user))

	found, err := repo.GetByID(ctx, user.ID)
	require.NoError(t, err)
	assert.Equal(t, "Carol C.", found.Name)
	assert.Equal(t, "green", found.FavoriteColor)

	require.NoError(t, repo.Delete(ctx, user.ID))
	_, err = repo.GetByID(ctx, user.ID)
	assert.True(t, models.HasCode(err, models.CodeNotFound))
}

func TestUserRepository_UpdateUniqueViolation(t *testing.T) {
	db := newTestDB(t)
	repo := NewUserRepository(db)
	ctx := context.Background()

	mustCreateUser(t, db, "alice", "alice@example.com")
	bob := mustCreateUser(t, db, "bob", "bob@example.com")

	bob.Email = "alice@example.com"
	err := repo.Update(ctx, bob)
	assert.True(t, models.HasCode(err, models.CodeDuplicateUser))
}

func TestUserRepository_GetByID_SQL(t *testing.T) {
	sqlDB, mock, err := sqlmock.New()
	require.NoError(t, err)

	gormDB, err := gorm.Open(postgres.New(postgres.Config{Conn: sqlDB}), &gorm.Config{})
	require.NoError(t, err)
	repo := NewUserRepository(gormDB)

	rows := sqlmock.NewRows([]string{"id", "username", "email"}).
		AddRow(1, "testuser", "test@example.com")
	mock.ExpectQuery(regexp.QuoteMeta(`SELECT * FROM "users" WHERE "users"."id" = $1 ORDER BY "users"."id" LIMIT $2`)).
		WithArgs(1, 1).
		WillReturnRows(rows)

	user, err := repo.GetByID(context.Background(), 1)
	require.NoError(t, err)
	assert.Equal(t, "testuser", user.Username)
	assert.NoError(t, mock.ExpectationsWereMet())
}
