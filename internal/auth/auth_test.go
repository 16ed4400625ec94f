package auth

import (
	"errors"
	"testing"
)

func newTestService(t *testing.T, password string) *Service {
	t.Helper()
	hash, err := HashPassword(password)
	if err != nil {
		t.Fatalf("HashPassword: %v", err)
	}
	svc, err := NewService(hash, "test-secret", nil)
	if err != nil {
		t.Fatalf("NewService: %v", err)
	}
	return svc
}

func TestLoginAndValidate(t *testing.T) {
	svc := newTestService(t, "correct horse")

	token, err := svc.Login("correct horse")
	if err != nil {
		t.Fatalf("Login: %v", err)
	}
	if token == "" {
		t.Fatal("empty token")
	}
	if err := svc.Validate(token); err != nil {
		t.Fatalf("Validate: %v", err)
	}
}

func TestLogin_WrongPassword(t *testing.T) {
	svc := newTestService(t, "correct horse")

	if _, err := svc.Login("battery staple"); !errors.Is(err, ErrInvalidCreds) {
		t.Fatalf("err = %v, want ErrInvalidCreds", err)
	}
}

func TestLogin_DisabledWithoutHash(t *testing.T) {
	svc, err := NewService("", "secret", nil)
	if err != nil {
		t.Fatalf("NewService: %v", err)
	}
	if svc.Enabled() {
		t.Fatal("service without a password hash must be disabled")
	}
	if _, err := svc.Login("anything"); !errors.Is(err, ErrInvalidCreds) {
		t.Fatalf("err = %v, want ErrInvalidCreds", err)
	}
}

func TestValidate_RejectsGarbageAndForeignTokens(t *testing.T) {
	svc := newTestService(t, "pw")

	if err := svc.Validate("not.a.token"); !errors.Is(err, ErrInvalidCreds) {
		t.Fatalf("err = %v, want ErrInvalidCreds", err)
	}

	// A token signed with a different secret must not validate.
	hash, err := HashPassword("pw")
	if err != nil {
		t.Fatalf("HashPassword: %v", err)
	}
	other, err := NewService(hash, "another-secret", nil)
	if err != nil {
		t.Fatalf("NewService: %v", err)
	}
	foreign, err := other.Login("pw")
	if err != nil {
		t.Fatalf("Login: %v", err)
	}
	if err := svc.Validate(foreign); err == nil {
		t.Fatal("token from a different secret validated")
	}
}

func TestNewService_EphemeralSecret(t *testing.T) {
	hash, err := HashPassword("pw")
	if err != nil {
		t.Fatalf("HashPassword: %v", err)
	}
	svc, err := NewService(hash, "", nil)
	if err != nil {
		t.Fatalf("NewService: %v", err)
	}

	token, err := svc.Login("pw")
	if err != nil {
		t.Fatalf("Login: %v", err)
	}
	if err := svc.Validate(token); err != nil {
		t.Fatalf("Validate with ephemeral secret: %v", err)
	}
}
