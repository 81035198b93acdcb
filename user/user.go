package user

import (
	"time"
)

// User represents one account. Email is the login identifier and is unique
// across the table. PasswordHash always holds a bcrypt hash, never the
// plaintext. Confirmed starts false and only ever transitions to true.
type User struct {
	ID           uint      `gorm:"primaryKey" json:"id"`
	Email        string    `gorm:"uniqueIndex;not null" json:"email"`
	PasswordHash string    `gorm:"not null" json:"-"`
	Name         string    `gorm:"not null" json:"name"`
	Confirmed    bool      `gorm:"not null;default:false" json:"confirmed"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}

func (User) TableName() string { return "users" }

// Session represents one authenticated browser session. Remember selects the
// long-lived expiry window at creation time.
type Session struct {
	ID        string    `gorm:"primaryKey" json:"id"`
	UserID    uint      `gorm:"index" json:"user_id"`
	IssuedAt  time.Time `json:"issued_at"`
	ExpiresAt time.Time `json:"expires_at"`
	Remember  bool      `json:"remember"`
	Active    bool      `json:"active"`
}

func (Session) TableName() string { return "sessions" }
