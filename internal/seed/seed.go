// Package seed provides helpers to create demo data for the application
// database. These helpers are intended for development and testing only.
package seed

import (
	"errors"
	"fmt"
	"log"
	"math/rand"
	"time"

	"quill/internal/models"
	"quill/internal/server"

	"github.com/brianvoe/gofakeit/v6"
	"gorm.io/gorm"
)

// Options controls how much data a seeding run creates.
type Options struct {
	Users        int
	PostsPerUser int
	// Password assigned to every generated account.
	Password string
}

// DefaultOptions returns the preset used by the seed command.
func DefaultOptions() Options {
	return Options{
		Users:        10,
		PostsPerUser: 3,
		Password:     "password123",
	}
}

// Factory builds domain entities and persists them to the database.
type Factory struct {
	db   *gorm.DB
	opts Options
	rand *rand.Rand
}

// NewFactory creates a Factory bound to the provided Gorm DB.
func NewFactory(db *gorm.DB, opts Options) *Factory {
	gofakeit.Seed(time.Now().UnixNano())
	return &Factory{
		db:   db,
		opts: opts,
		rand: rand.New(rand.NewSource(time.Now().UnixNano())),
	}
}

// CreateUser constructs and persists a sample user. Optional override
// functions may modify the generated user before saving.
func (f *Factory) CreateUser(overrides ...func(*models.User)) (*models.User, error) {
	username := gofakeit.Username()
	if len(username) > 20 {
		username = username[:20]
	}
	user := &models.User{
		Username:      username,
		Name:          gofakeit.Name(),
		Email:         gofakeit.Email(),
		FavoriteColor: gofakeit.Color(),
		AboutAuthor:   gofakeit.Sentence(10),
	}
	if err := user.SetPassword(f.opts.Password); err != nil {
		return nil, err
	}

	for _, override := range overrides {
		override(user)
	}

	if err := f.db.Create(user).Error; err != nil {
		return nil, err
	}
	return user, nil
}

// CreatePost constructs and persists a sample post for the given user.
// The posting date is spread over the last 90 days so lists look lived-in.
func (f *Factory) CreatePost(user *models.User, overrides ...func(*models.Post)) (*models.Post, error) {
	title := gofakeit.Sentence(5)
	post := &models.Post{
		Title:    title,
		Content:  gofakeit.Paragraph(1, 3, 5, "\n"),
		Slug:     gofakeit.Adjective() + "-" + gofakeit.NounAbstract(),
		PosterID: user.ID,
		DatePosted: time.Now().
			Add(-time.Duration(f.rand.Intn(90)) * 24 * time.Hour).
			Add(-time.Duration(f.rand.Intn(24)) * time.Hour),
	}

	for _, override := range overrides {
		override(post)
	}

	if err := f.db.Create(post).Error; err != nil {
		return nil, err
	}
	return post, nil
}

// EnsureAdmin creates the admin account if no user occupies the admin id yet.
func (f *Factory) EnsureAdmin() (*models.User, error) {
	var existing models.User
	err := f.db.First(&existing, server.AdminUserID).Error
	if err == nil {
		return &existing, nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, err
	}

	return f.CreateUser(func(u *models.User) {
		u.ID = server.AdminUserID
		u.Username = "admin"
		u.Name = "Site Admin"
		u.Email = "admin@example.com"
	})
}

// Run clears existing rows and populates the database with demo users and
// posts, including the admin account.
func Run(db *gorm.DB, opts Options) error {
	log.Println("Starting database seeding...")

	if err := clearData(db); err != nil {
		return fmt.Errorf("failed to clear data: %w", err)
	}

	factory := NewFactory(db, opts)

	users := make([]*models.User, 0, opts.Users)
	for i := 0; i < opts.Users; i++ {
		user, err := factory.CreateUser()
		if err != nil {
			return fmt.Errorf("failed to create user: %w", err)
		}
		users = append(users, user)
	}
	log.Printf("Created %d users", len(users))

	admin, err := factory.EnsureAdmin()
	if err != nil {
		return fmt.Errorf("failed to create admin user: %w", err)
	}
	users = append(users, admin)

	postCount := 0
	for _, user := range users {
		for i := 0; i < opts.PostsPerUser; i++ {
			if _, err := factory.CreatePost(user); err != nil {
				return fmt.Errorf("failed to create post: %w", err)
			}
			postCount++
		}
	}
	log.Printf("Created %d posts", postCount)

	log.Println("Database seeding completed successfully")
	return nil
}

func clearData(db *gorm.DB) error {
	log.Println("Clearing existing data...")

	if err := db.Exec("DELETE FROM posts").Error; err != nil {
		return err
	}
	return db.Exec("DELETE FROM users").Error
}
