// Package entity defines the domain entities for the auth feature.
package entity

import "time"

// User represents a registered account.
// Email and Username are stored lowercase and are unique.
type User struct {
	ID string `gorm:"primaryKey;size:36"`

	Email string `gorm:"uniqueIndex;size:255;not null"`

	// Password is the bcrypt hash; it is never serialized.
	Password string `gorm:"size:255;not null" json:"-"`

	FullName string `gorm:"size:50;not null"`

	Username string `gorm:"uniqueIndex;size:20;not null"`

	// EmailVerified flips to true once, on successful code verification.
	EmailVerified bool `gorm:"not null;default:false"`

	CreatedAt time.Time
	UpdatedAt time.Time
}
