package token

import (
	"crypto/hmac"
	"crypto/sha256"
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

// Purpose salts. The salt is mixed into the signing key, so a token minted
// for one purpose can never verify under another. Changing these strings
// invalidates every outstanding token of that purpose.
const (
	SaltConfirm = "confirm-account"
	SaltReset   = "password-reset"
)

// ErrInvalidOrExpiredToken covers bad signatures, malformed payloads and
// tokens older than the caller's max age. Callers get no finer detail.
var ErrInvalidOrExpiredToken = errors.New("token: invalid or expired")

// Codec issues and verifies signed, time-limited tokens carrying an opaque
// string payload. Tokens are stateless: no server-side record exists, so a
// token cannot be revoked before its window elapses. Expiry is not embedded
// in the token; it is enforced against the issue timestamp at verification
// time, so the same token can be checked under different windows.
type Codec struct {
	secret []byte
	now    func() time.Time
}

func NewCodec(secret string) *Codec {
	return &Codec{secret: []byte(secret), now: time.Now}
}

// SetClock overrides the time source. Used by tests.
func (c *Codec) SetClock(now func() time.Time) { c.now = now }

// key derives the per-purpose signing key from the shared secret.
func (c *Codec) key(salt string) []byte {
	mac := hmac.New(sha256.New, c.secret)
	mac.Write([]byte(salt))
	return mac.Sum(nil)
}

// Issue signs payload under the given purpose salt. The jti claim makes
// repeated calls with identical input yield distinct tokens.
func (c *Codec) Issue(payload, salt string) (string, error) {
	claims := jwt.RegisteredClaims{
		Subject:  payload,
		IssuedAt: jwt.NewNumericDate(c.now()),
		ID:       uuid.New().String(),
	}
	tok := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := tok.SignedString(c.key(salt))
	if err != nil {
		return "", fmt.Errorf("token: sign: %w", err)
	}
	return signed, nil
}

// Verify checks the signature under salt and rejects tokens issued more than
// maxAge ago. A token at exactly the boundary is still accepted. Returns the
// recovered payload.
func (c *Codec) Verify(tokenStr, salt string, maxAge time.Duration) (string, error) {
	parsed, err := jwt.ParseWithClaims(tokenStr, &jwt.RegisteredClaims{}, func(t *jwt.Token) (any, error) {
		if t.Method.Alg() != jwt.SigningMethodHS256.Alg() {
			return nil, fmt.Errorf("unexpected signing method: %v", t.Header["alg"])
		}
		return c.key(salt), nil
	})
	if err != nil || !parsed.Valid {
		return "", ErrInvalidOrExpiredToken
	}

	claims, ok := parsed.Claims.(*jwt.RegisteredClaims)
	if !ok || claims.IssuedAt == nil || claims.Subject == "" {
		return "", ErrInvalidOrExpiredToken
	}
	if c.now().Sub(claims.IssuedAt.Time) > maxAge {
		return "", ErrInvalidOrExpiredToken
	}

	return claims.Subject, nil
}
