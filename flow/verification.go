package flow

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/gatehouse-dev/gatehouse/domain"
	"github.com/gatehouse-dev/gatehouse/mail"
	"github.com/gatehouse-dev/gatehouse/token"
	"github.com/gatehouse-dev/gatehouse/user"
)

// TokenWindow is the verification max age for both confirmation and reset
// tokens. Purpose separation is done entirely by salt, not by window.
const TokenWindow = 7200 * time.Second

type VerificationManager struct {
	repo    domain.UserStorage
	codec   *token.Codec
	mailer  mail.Mailer
	baseURL string
	maxAge  time.Duration
}

func NewVerificationManager(repo domain.UserStorage, codec *token.Codec, mailer mail.Mailer, baseURL string) *VerificationManager {
	return &VerificationManager{
		repo:    repo,
		codec:   codec,
		mailer:  mailer,
		baseURL: baseURL,
		maxAge:  TokenWindow,
	}
}

// Send mints a confirmation token for u and emails the confirmation link.
// A failed send comes back as a DeliveryError; the caller decides how loudly
// to surface it.
func (m *VerificationManager) Send(ctx context.Context, u *user.User) error {
	if u.Confirmed {
		return ErrAlreadyConfirmed
	}

	tok, err := m.codec.Issue(u.Email, token.SaltConfirm)
	if err != nil {
		return err
	}

	body := fmt.Sprintf("Click on the below link to confirm your account\n%s/token/%s", m.baseURL, tok)
	if err := m.mailer.Send(ctx, u.Email, "Your Confirmation Email", body); err != nil {
		return &DeliveryError{Err: err}
	}
	return nil
}

// Confirm verifies a confirmation token and flips the user's confirmed flag.
// The flag only ever moves false -> true; a token for an already confirmed
// account is rejected.
func (m *VerificationManager) Confirm(ctx context.Context, tokenStr string) (*user.User, error) {
	email, err := m.codec.Verify(tokenStr, token.SaltConfirm, m.maxAge)
	if err != nil {
		return nil, err
	}

	u, err := m.repo.GetUserByEmail(email)
	if err != nil || u == nil {
		return nil, ErrNotFound
	}

	if u.Confirmed {
		return nil, ErrAlreadyConfirmed
	}

	u.Confirmed = true
	if err := m.repo.UpdateUser(u); err != nil {
		return nil, err
	}

	return u, nil
}

// IsTokenError reports whether err should surface as the dedicated
// token-expired page rather than a generic failure.
func IsTokenError(err error) bool {
	return errors.Is(err, token.ErrInvalidOrExpiredToken)
}
