package flow

import (
	"context"

	"github.com/gatehouse-dev/gatehouse/domain"
	"github.com/gatehouse-dev/gatehouse/user"
)

type RegistrationManager struct {
	repo   domain.UserStorage
	hasher domain.Hasher
}

func NewRegistrationManager(repo domain.UserStorage, hasher domain.Hasher) *RegistrationManager {
	return &RegistrationManager{repo: repo, hasher: hasher}
}

// Register creates a new unconfirmed account. Duplicate emails fail
// validation before the store's uniqueness constraint is ever hit.
func (m *RegistrationManager) Register(ctx context.Context, name, email, password string) (*user.User, error) {
	if name == "" {
		return nil, &ValidationError{Field: "name", Message: "Name is required."}
	}
	if email == "" {
		return nil, &ValidationError{Field: "email", Message: "Email is required."}
	}
	if password == "" {
		return nil, &ValidationError{Field: "password", Message: "Password is required."}
	}

	if existing, err := m.repo.GetUserByEmail(email); err == nil && existing != nil {
		return nil, &ValidationError{Field: "email", Message: "That email is taken. Please choose a different one."}
	}

	hashed, err := m.hasher.Hash(password)
	if err != nil {
		return nil, err
	}

	u := &user.User{
		Name:         name,
		Email:        email,
		PasswordHash: hashed,
		Confirmed:    false,
	}
	if err := m.repo.CreateUser(u); err != nil {
		return nil, err
	}

	return u, nil
}
