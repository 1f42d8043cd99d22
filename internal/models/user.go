// Package models contains data structures for the application's domain models.
package models

import (
	"time"

	"quill/internal/auth"
)

// User represents a registered account.
//
// The plaintext password is intentionally not a field: it can only flow
// through SetPassword, which stores the derived hash.
type User struct {
	ID            uint      `gorm:"primaryKey"`
	Username      string    `gorm:"size:20;uniqueIndex;not null"`
	Name          string    `gorm:"size:200;not null"`
	Email         string    `gorm:"size:200;uniqueIndex;not null"`
	FavoriteColor string    `gorm:"size:200"`
	AboutAuthor   string    `gorm:"type:text"`
	DateAdded     time.Time `gorm:"<-:create;autoCreateTime"`
	PasswordHash  string    `gorm:"size:128" json:"-"`
	Posts         []Post    `gorm:"foreignKey:PosterID"`
}

// SetPassword hashes the given plaintext and stores only the hash.
func (u *User) SetPassword(plaintext string) error {
	hash, err := auth.HashPassword(plaintext)
	if err != nil {
		return err
	}
	u.PasswordHash = hash
	return nil
}

// VerifyPassword reports whether the plaintext matches the stored hash.
func (u *User) VerifyPassword(plaintext string) bool {
	return auth.CheckPassword(plaintext, u.PasswordHash)
}
