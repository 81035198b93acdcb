package session

import (
	"errors"
	"time"

	"github.com/gatehouse-dev/gatehouse/domain"
	"github.com/gatehouse-dev/gatehouse/user"
	"github.com/google/uuid"
)

// Default expiry windows. A remembered session outlives the browser session
// it was created in.
const (
	DefaultTTL  = 24 * time.Hour
	RememberTTL = 30 * 24 * time.Hour
)

type Manager struct {
	repo domain.SessionStorage
	ttl  time.Duration
	rttl time.Duration
	now  func() time.Time
}

func NewManager(repo domain.SessionStorage) *Manager {
	return &Manager{repo: repo, ttl: DefaultTTL, rttl: RememberTTL, now: time.Now}
}

// SetClock overrides the time source. Used by tests.
func (m *Manager) SetClock(now func() time.Time) { m.now = now }

func (m *Manager) Create(userID uint, remember bool) (*user.Session, error) {
	ttl := m.ttl
	if remember {
		ttl = m.rttl
	}
	s := &user.Session{
		ID:        uuid.New().String(),
		UserID:    userID,
		IssuedAt:  m.now(),
		ExpiresAt: m.now().Add(ttl),
		Remember:  remember,
		Active:    true,
	}
	if err := m.repo.CreateSession(s); err != nil {
		return nil, err
	}
	return s, nil
}

func (m *Manager) Validate(sessionID string) (*user.Session, error) {
	s, err := m.repo.GetSession(sessionID)
	if err != nil {
		return nil, errors.New("invalid session")
	}

	if !s.Active || s.ExpiresAt.Before(m.now()) {
		return nil, errors.New("session expired or inactive")
	}

	return s, nil
}

func (m *Manager) Delete(sessionID string) error {
	return m.repo.DeleteSession(sessionID)
}
