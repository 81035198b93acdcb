package flow

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/gatehouse-dev/gatehouse/token"
	"github.com/gatehouse-dev/gatehouse/user"
)

const testBaseURL = "http://example.com"

func confirmationToken(t *testing.T, m *mockMailer) string {
	t.Helper()
	_, tok, found := strings.Cut(m.last().Body, "/token/")
	if !found {
		t.Fatalf("no confirmation link in body: %q", m.last().Body)
	}
	return tok
}

func TestSendAndConfirm(t *testing.T) {
	repo := newMockStorage()
	codec := token.NewCodec("test-secret")
	mailer := &mockMailer{}
	mgr := NewVerificationManager(repo, codec, mailer, testBaseURL)

	u := &user.User{Email: "a@x.com", Name: "Ada", PasswordHash: "x"}
	if err := repo.CreateUser(u); err != nil {
		t.Fatal(err)
	}

	if err := mgr.Send(context.Background(), u); err != nil {
		t.Fatalf("send failed: %v", err)
	}
	if mailer.count() != 1 {
		t.Fatalf("expected 1 mail, got %d", mailer.count())
	}
	if mailer.last().To != "a@x.com" {
		t.Errorf("mail sent to %q", mailer.last().To)
	}

	confirmed, err := mgr.Confirm(context.Background(), confirmationToken(t, mailer))
	if err != nil {
		t.Fatalf("confirm failed: %v", err)
	}
	if !confirmed.Confirmed {
		t.Error("confirmed flag not set")
	}

	stored, err := repo.GetUser(u.ID)
	if err != nil {
		t.Fatal(err)
	}
	if !stored.Confirmed {
		t.Error("confirmed flag not persisted")
	}
}

func TestConfirmRejectsAlreadyConfirmed(t *testing.T) {
	repo := newMockStorage()
	codec := token.NewCodec("test-secret")
	mailer := &mockMailer{}
	mgr := NewVerificationManager(repo, codec, mailer, testBaseURL)

	u := &user.User{Email: "a@x.com", Name: "Ada", PasswordHash: "x"}
	if err := repo.CreateUser(u); err != nil {
		t.Fatal(err)
	}
	if err := mgr.Send(context.Background(), u); err != nil {
		t.Fatal(err)
	}
	tok := confirmationToken(t, mailer)

	if _, err := mgr.Confirm(context.Background(), tok); err != nil {
		t.Fatalf("first confirm failed: %v", err)
	}
	// The token is still cryptographically valid; the account state rejects it.
	if _, err := mgr.Confirm(context.Background(), tok); !errors.Is(err, ErrAlreadyConfirmed) {
		t.Errorf("expected ErrAlreadyConfirmed, got %v", err)
	}
	if err := mgr.Send(context.Background(), u); !errors.Is(err, ErrAlreadyConfirmed) {
		t.Errorf("expected ErrAlreadyConfirmed from resend, got %v", err)
	}
}

func TestConfirmRejectsResetToken(t *testing.T) {
	repo := newMockStorage()
	codec := token.NewCodec("test-secret")
	mgr := NewVerificationManager(repo, codec, &mockMailer{}, testBaseURL)

	u := &user.User{Email: "a@x.com", Name: "Ada", PasswordHash: "x"}
	if err := repo.CreateUser(u); err != nil {
		t.Fatal(err)
	}

	resetTok, err := codec.Issue("a@x.com", token.SaltReset)
	if err != nil {
		t.Fatal(err)
	}

	_, err = mgr.Confirm(context.Background(), resetTok)
	if !IsTokenError(err) {
		t.Errorf("expected token error for cross-purpose token, got %v", err)
	}
}

func TestConfirmRejectsExpiredToken(t *testing.T) {
	repo := newMockStorage()
	codec := token.NewCodec("test-secret")
	mailer := &mockMailer{}
	mgr := NewVerificationManager(repo, codec, mailer, testBaseURL)

	u := &user.User{Email: "a@x.com", Name: "Ada", PasswordHash: "x"}
	if err := repo.CreateUser(u); err != nil {
		t.Fatal(err)
	}

	issued := time.Now()
	codec.SetClock(func() time.Time { return issued })
	if err := mgr.Send(context.Background(), u); err != nil {
		t.Fatal(err)
	}
	tok := confirmationToken(t, mailer)

	codec.SetClock(func() time.Time { return issued.Add(TokenWindow + time.Second) })
	if _, err := mgr.Confirm(context.Background(), tok); !IsTokenError(err) {
		t.Errorf("expected token error past the window, got %v", err)
	}
}

func TestConfirmRejectsVanishedUser(t *testing.T) {
	repo := newMockStorage()
	codec := token.NewCodec("test-secret")
	mgr := NewVerificationManager(repo, codec, &mockMailer{}, testBaseURL)

	tok, err := codec.Issue("ghost@x.com", token.SaltConfirm)
	if err != nil {
		t.Fatal(err)
	}
	if _, err := mgr.Confirm(context.Background(), tok); !errors.Is(err, ErrNotFound) {
		t.Errorf("expected ErrNotFound, got %v", err)
	}
}

func TestSendSurfacesDeliveryError(t *testing.T) {
	repo := newMockStorage()
	codec := token.NewCodec("test-secret")
	mailer := &mockMailer{err: errors.New("smtp down")}
	mgr := NewVerificationManager(repo, codec, mailer, testBaseURL)

	u := &user.User{Email: "a@x.com", Name: "Ada", PasswordHash: "x"}
	if err := repo.CreateUser(u); err != nil {
		t.Fatal(err)
	}

	err := mgr.Send(context.Background(), u)
	var de *DeliveryError
	if !errors.As(err, &de) {
		t.Fatalf("expected DeliveryError, got %v", err)
	}
}
