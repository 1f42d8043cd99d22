package repository

import (
	"context"
	"testing"

	"quill/internal/models"

	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// newTestDB opens a fresh in-memory SQLite database migrated to the current
// schema. One connection max, or every pooled connection would see its own
// empty :memory: database.
func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)

	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)

	require.NoError(t, db.AutoMigrate(&models.User{}, &models.Post{}))
	return db
}

// mustCreateUser persists a user with a hashed password and returns it.
func mustCreateUser(t *testing.T, db *gorm.DB, username, email string) *models.User {
	t.Helper()

	user := &models.User{
		Username: username,
		Name:     username,
		Email:    email,
	}
	require.NoError(t, user.SetPassword("secret123"))
	require.NoError(t, NewUserRepository(db).Create(context.Background(), user))
	return user
}
