// Package entity defines the domain entities for the auth feature.
package entity

import "time"

// User is a registered account. The wallet and holdings of the ledger
// feature are keyed by ID.
type User struct {
	ID uint `gorm:"primaryKey"`

	// Email is stored lowercased and is unique.
	Email string `gorm:"uniqueIndex;size:255;not null"`

	// PasswordHash is the bcrypt hash; plaintext is never stored.
	PasswordHash string `gorm:"column:password_hash;size:255;not null"`

	CreatedAt time.Time
	UpdatedAt time.Time
}
