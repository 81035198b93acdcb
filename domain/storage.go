package domain

import (
	"github.com/gatehouse-dev/gatehouse/user"
)

// Storage defines the interface for all persistence operations.
type Storage interface {
	UserStorage
	SessionStorage
}

type UserStorage interface {
	CreateUser(u *user.User) error
	GetUser(id uint) (*user.User, error)
	GetUserByEmail(email string) (*user.User, error)
	UpdateUser(u *user.User) error
	DeleteUser(id uint) error
}

type SessionStorage interface {
	CreateSession(s *user.Session) error
	GetSession(id string) (*user.Session, error)
	DeleteSession(id string) error
}

// Hasher defines the interface for password hashing and verification.
type Hasher interface {
	Hash(password string) (string, error)
	Compare(password, hash string) bool
}
