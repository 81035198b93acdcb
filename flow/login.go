package flow

import (
	"context"

	"github.com/gatehouse-dev/gatehouse/domain"
	"github.com/gatehouse-dev/gatehouse/user"
)

type LoginManager struct {
	repo   domain.UserStorage
	hasher domain.Hasher
}

func NewLoginManager(repo domain.UserStorage, hasher domain.Hasher) *LoginManager {
	return &LoginManager{repo: repo, hasher: hasher}
}

// Authenticate returns the user when the email exists and the password
// matches its hash. Both failure modes return ErrLoginFailed so callers
// cannot tell whether the email exists.
func (m *LoginManager) Authenticate(ctx context.Context, email, password string) (*user.User, error) {
	u, err := m.repo.GetUserByEmail(email)
	if err != nil || u == nil {
		return nil, ErrLoginFailed
	}

	if !m.hasher.Compare(password, u.PasswordHash) {
		return nil, ErrLoginFailed
	}

	return u, nil
}
