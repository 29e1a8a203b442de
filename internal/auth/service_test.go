package auth

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/smsender/smsender/internal/config"
	"github.com/smsender/smsender/internal/directory"
)

func newTestService(t *testing.T, ttl time.Duration) (*Service, *directory.Service) {
	t.Helper()
	ids := directory.NewService(directory.NewMemoryRepository(), time.Second)
	cfg := config.Config{JWTSecret: "test-secret", TokenTTL: ttl}
	return NewService(cfg, ids), ids
}

func TestIssueAndVerify(t *testing.T) {
	svc, ids := newTestService(t, time.Hour)
	ctx := context.Background()

	if _, err := ids.Register(ctx, "a@x.com", "hunter22"); err != nil {
		t.Fatalf("register: %v", err)
	}

	token, expiresAt, err := svc.Issue(ctx, "a@x.com", "hunter22")
	if err != nil {
		t.Fatalf("issue: %v", err)
	}
	if until := time.Until(expiresAt); until < 59*time.Minute || until > time.Hour {
		t.Fatalf("unexpected expiry %v", expiresAt)
	}

	email, err := svc.Verify(token)
	if err != nil {
		t.Fatalf("verify: %v", err)
	}
	if email != "a@x.com" {
		t.Fatalf("expected subject a@x.com, got %s", email)
	}
}

func TestIssueRequiresRegisteredIdentity(t *testing.T) {
	svc, _ := newTestService(t, time.Hour)

	if _, _, err := svc.Issue(context.Background(), "ghost@x.com", "whatever1"); !errors.Is(err, directory.ErrBadCredentials) {
		t.Fatalf("expected ErrBadCredentials, got %v", err)
	}
}

func TestIssueRejectsWrongPassword(t *testing.T) {
	svc, ids := newTestService(t, time.Hour)
	ctx := context.Background()

	if _, err := ids.Register(ctx, "a@x.com", "hunter22"); err != nil {
		t.Fatalf("register: %v", err)
	}
	if _, _, err := svc.Issue(ctx, "a@x.com", "wrong-pw"); !errors.Is(err, directory.ErrBadCredentials) {
		t.Fatalf("expected ErrBadCredentials, got %v", err)
	}
}

func TestVerifyRejectsExpiredToken(t *testing.T) {
	svc, ids := newTestService(t, -time.Minute)
	ctx := context.Background()

	if _, err := ids.Register(ctx, "a@x.com", "hunter22"); err != nil {
		t.Fatalf("register: %v", err)
	}
	token, _, err := svc.Issue(ctx, "a@x.com", "hunter22")
	if err != nil {
		t.Fatalf("issue: %v", err)
	}
	if _, err := svc.Verify(token); !errors.Is(err, ErrInvalidToken) {
		t.Fatalf("expected ErrInvalidToken for expired token, got %v", err)
	}
}

func TestVerifyRejectsTamperedToken(t *testing.T) {
	svc, ids := newTestService(t, time.Hour)
	ctx := context.Background()

	if _, err := ids.Register(ctx, "a@x.com", "hunter22"); err != nil {
		t.Fatalf("register: %v", err)
	}
	token, _, err := svc.Issue(ctx, "a@x.com", "hunter22")
	if err != nil {
		t.Fatalf("issue: %v", err)
	}

	parts := strings.Split(token, ".")
	if len(parts) != 3 {
		t.Fatalf("unexpected token shape")
	}
	tampered := parts[0] + "." + parts[1] + "." + strings.Repeat("A", len(parts[2]))
	if _, err := svc.Verify(tampered); !errors.Is(err, ErrInvalidToken) {
		t.Fatalf("expected ErrInvalidToken for tampered token, got %v", err)
	}

	if _, err := svc.Verify("not-a-token"); !errors.Is(err, ErrInvalidToken) {
		t.Fatalf("expected ErrInvalidToken for malformed token, got %v", err)
	}
}
