package flow

import (
	"context"
	"errors"
	"sync"

	"github.com/gatehouse-dev/gatehouse/user"
)

var errNotFound = errors.New("record not found")

type mockStorage struct {
	mu       sync.Mutex
	users    map[uint]*user.User
	sessions map[string]*user.Session
	nextID   uint
}

func newMockStorage() *mockStorage {
	return &mockStorage{
		users:    make(map[uint]*user.User),
		sessions: make(map[string]*user.Session),
	}
}

func (m *mockStorage) CreateUser(u *user.User) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, existing := range m.users {
		if existing.Email == u.Email {
			return errors.New("UNIQUE constraint failed: users.email")
		}
	}
	m.nextID++
	u.ID = m.nextID
	m.users[u.ID] = u
	return nil
}

func (m *mockStorage) GetUser(id uint) (*user.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	u, ok := m.users[id]
	if !ok {
		return nil, errNotFound
	}
	return u, nil
}

func (m *mockStorage) GetUserByEmail(email string) (*user.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, u := range m.users {
		if u.Email == email {
			return u, nil
		}
	}
	return nil, errNotFound
}

func (m *mockStorage) UpdateUser(u *user.User) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.users[u.ID]; !ok {
		return errNotFound
	}
	m.users[u.ID] = u
	return nil
}

func (m *mockStorage) DeleteUser(id uint) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.users, id)
	return nil
}

func (m *mockStorage) CreateSession(s *user.Session) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.sessions[s.ID] = s
	return nil
}

func (m *mockStorage) GetSession(id string) (*user.Session, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	s, ok := m.sessions[id]
	if !ok {
		return nil, errNotFound
	}
	return s, nil
}

func (m *mockStorage) DeleteSession(id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.sessions, id)
	return nil
}

type sentMail struct {
	To      string
	Subject string
	Body    string
}

type mockMailer struct {
	mu   sync.Mutex
	sent []sentMail
	err  error
}

func (m *mockMailer) Send(ctx context.Context, to, subject, body string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.err != nil {
		return m.err
	}
	m.sent = append(m.sent, sentMail{To: to, Subject: subject, Body: body})
	return nil
}

func (m *mockMailer) count() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.sent)
}

func (m *mockMailer) last() sentMail {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.sent[len(m.sent)-1]
}
