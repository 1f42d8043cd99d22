package seed

import (
	"testing"

	"quill/internal/models"
	"quill/internal/server"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
		DisableForeignKeyConstraintWhenMigrating: true,
	})
	require.NoError(t, err)
	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)
	require.NoError(t, db.AutoMigrate(&models.User{}, &models.Post{}))
	return db
}

func TestFactoryCreatesUserAndPost(t *testing.T) {
	db := newTestDB(t)
	factory := NewFactory(db, DefaultOptions())

	user, err := factory.CreateUser()
	require.NoError(t, err)
	assert.NotZero(t, user.ID)
	assert.NotEmpty(t, user.Username)
	assert.LessOrEqual(t, len(user.Username), 20)
	assert.True(t, user.VerifyPassword("password123"))

	post, err := factory.CreatePost(user)
	require.NoError(t, err)
	assert.NotZero(t, post.ID)
	assert.Equal(t, user.ID, post.PosterID)
}

func TestEnsureAdminIsIdempotent(t *testing.T) {
	db := newTestDB(t)
	factory := NewFactory(db, DefaultOptions())

	admin, err := factory.EnsureAdmin()
	require.NoError(t, err)
	assert.Equal(t, server.AdminUserID, admin.ID)

	again, err := factory.EnsureAdmin()
	require.NoError(t, err)
	assert.Equal(t, admin.ID, again.ID)

	var count int64
	require.NoError(t, db.Model(&models.User{}).Count(&count).Error)
	assert.EqualValues(t, 1, count)
}

func TestRunPopulates(t *testing.T) {
	db := newTestDB(t)

	opts := Options{Users: 3, PostsPerUser: 2, Password: "password123"}
	require.NoError(t, Run(db, opts))

	var userCount, postCount int64
	require.NoError(t, db.Model(&models.User{}).Count(&userCount).Error)
	require.NoError(t, db.Model(&models.Post{}).Count(&postCount).Error)
	// Generated users plus the admin account.
	assert.EqualValues(t, opts.Users+1, userCount)
	assert.EqualValues(t, (opts.Users+1)*opts.PostsPerUser, postCount)
}
