package flow

import (
	"context"
	"fmt"
	"time"

	"github.com/gatehouse-dev/gatehouse/domain"
	"github.com/gatehouse-dev/gatehouse/mail"
	"github.com/gatehouse-dev/gatehouse/token"
	"github.com/gatehouse-dev/gatehouse/user"
)

type RecoveryManager struct {
	repo    domain.UserStorage
	codec   *token.Codec
	mailer  mail.Mailer
	hasher  domain.Hasher
	baseURL string
	maxAge  time.Duration
}

func NewRecoveryManager(repo domain.UserStorage, codec *token.Codec, mailer mail.Mailer, hasher domain.Hasher, baseURL string) *RecoveryManager {
	return &RecoveryManager{
		repo:    repo,
		codec:   codec,
		mailer:  mailer,
		hasher:  hasher,
		baseURL: baseURL,
		maxAge:  TokenWindow,
	}
}

// Initiate sends a reset link when the email belongs to an account. An
// unknown email is silently ignored so the caller's response is identical
// either way.
func (m *RecoveryManager) Initiate(ctx context.Context, email string) error {
	u, err := m.repo.GetUserByEmail(email)
	if err != nil || u == nil {
		return nil
	}

	tok, err := m.codec.Issue(u.Email, token.SaltReset)
	if err != nil {
		return err
	}

	body := fmt.Sprintf("Click on the below link to reset your password\n%s/forgot-password/%s", m.baseURL, tok)
	if err := m.mailer.Send(ctx, u.Email, "Reset your password.", body); err != nil {
		return &DeliveryError{Err: err}
	}
	return nil
}

// Peek verifies a reset token without consuming anything and returns the
// account it was minted for. Used to gate the change-password form.
func (m *RecoveryManager) Peek(ctx context.Context, tokenStr string) (*user.User, error) {
	email, err := m.codec.Verify(tokenStr, token.SaltReset, m.maxAge)
	if err != nil {
		return nil, err
	}

	u, err := m.repo.GetUserByEmail(email)
	if err != nil || u == nil {
		return nil, ErrNotFound
	}
	return u, nil
}

// Reset verifies the token again and replaces the account's password hash.
func (m *RecoveryManager) Reset(ctx context.Context, tokenStr, newPassword string) (*user.User, error) {
	u, err := m.Peek(ctx, tokenStr)
	if err != nil {
		return nil, err
	}

	if newPassword == "" {
		return nil, &ValidationError{Field: "password", Message: "Password is required."}
	}

	hashed, err := m.hasher.Hash(newPassword)
	if err != nil {
		return nil, err
	}

	u.PasswordHash = hashed
	if err := m.repo.UpdateUser(u); err != nil {
		return nil, err
	}

	return u, nil
}
