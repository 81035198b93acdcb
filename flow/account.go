package flow

import (
	"context"
	"crypto/sha256"
	"crypto/subtle"
	"encoding/hex"
	"fmt"

	"github.com/gatehouse-dev/gatehouse/domain"
	"github.com/gatehouse-dev/gatehouse/token"
	"github.com/gatehouse-dev/gatehouse/user"
)

type AccountManager struct {
	repo domain.UserStorage
}

func NewAccountManager(repo domain.UserStorage) *AccountManager {
	return &AccountManager{repo: repo}
}

// DeletionProof derives the capability value a caller must present to delete
// the account: hex sha256 over id, email and password hash. The derivation
// is part of the external contract; pages that offer a delete link compute
// the same value.
func (m *AccountManager) DeletionProof(u *user.User) string {
	sum := sha256.Sum256([]byte(fmt.Sprintf("%d%s%s", u.ID, u.Email, u.PasswordHash)))
	return hex.EncodeToString(sum[:])
}

// Delete destroys the account if proof matches DeletionProof(u). A mismatch
// surfaces as a token error so the caller renders the same expired page it
// uses for bad tokens.
func (m *AccountManager) Delete(ctx context.Context, u *user.User, proof string) error {
	expected := m.DeletionProof(u)
	if subtle.ConstantTimeCompare([]byte(proof), []byte(expected)) != 1 {
		return token.ErrInvalidOrExpiredToken
	}

	return m.repo.DeleteUser(u.ID)
}
