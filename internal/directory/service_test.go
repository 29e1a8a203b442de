package directory

import (
	"context"
	"errors"
	"testing"
	"time"
)

func newTestService() *Service {
	return NewService(NewMemoryRepository(), time.Second)
}

func TestRegisterIsIdempotent(t *testing.T) {
	svc := newTestService()
	ctx := context.Background()

	first, err := svc.Register(ctx, "a@x.com", "hunter22")
	if err != nil {
		t.Fatalf("register: %v", err)
	}
	if first.Role != RoleNone {
		t.Fatalf("expected empty role on registration, got %q", first.Role)
	}

	if _, err := svc.Register(ctx, "a@x.com", "other-pw"); !errors.Is(err, ErrAlreadyRegistered) {
		t.Fatalf("expected ErrAlreadyRegistered, got %v", err)
	}

	identities, err := svc.List(ctx)
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(identities) != 1 {
		t.Fatalf("expected exactly one stored record, got %d", len(identities))
	}
}

func TestRegisterNormalizesEmail(t *testing.T) {
	svc := newTestService()
	ctx := context.Background()

	if _, err := svc.Register(ctx, "  A@X.com ", "hunter22"); err != nil {
		t.Fatalf("register: %v", err)
	}
	if _, err := svc.Register(ctx, "a@x.com", "hunter22"); !errors.Is(err, ErrAlreadyRegistered) {
		t.Fatalf("expected normalized duplicate, got %v", err)
	}
}

func TestRegisterRejectsBadInput(t *testing.T) {
	svc := newTestService()
	ctx := context.Background()

	if _, err := svc.Register(ctx, "not-an-email", "hunter22"); err == nil {
		t.Fatalf("expected invalid email error")
	}
	if _, err := svc.Register(ctx, "a@x.com", "short"); err == nil {
		t.Fatalf("expected short password error")
	}
}

func TestAuthenticate(t *testing.T) {
	svc := newTestService()
	ctx := context.Background()

	if _, err := svc.Register(ctx, "a@x.com", "hunter22"); err != nil {
		t.Fatalf("register: %v", err)
	}

	identity, err := svc.Authenticate(ctx, "a@x.com", "hunter22")
	if err != nil {
		t.Fatalf("authenticate: %v", err)
	}
	if identity.Email != "a@x.com" {
		t.Fatalf("unexpected identity %+v", identity)
	}

	if _, err := svc.Authenticate(ctx, "a@x.com", "wrong-pw"); !errors.Is(err, ErrBadCredentials) {
		t.Fatalf("expected ErrBadCredentials, got %v", err)
	}
	if _, err := svc.Authenticate(ctx, "ghost@x.com", "hunter22"); !errors.Is(err, ErrBadCredentials) {
		t.Fatalf("expected ErrBadCredentials for unknown email, got %v", err)
	}
}

func TestSetRoleAndHasRole(t *testing.T) {
	svc := newTestService()
	ctx := context.Background()

	identity, err := svc.Register(ctx, "a@x.com", "hunter22")
	if err != nil {
		t.Fatalf("register: %v", err)
	}

	ok, err := svc.HasRole(ctx, "a@x.com", RoleAdmin)
	if err != nil {
		t.Fatalf("has role: %v", err)
	}
	if ok {
		t.Fatalf("expected no admin role before assignment")
	}

	if err := svc.SetRole(ctx, identity.ID, RoleAdmin); err != nil {
		t.Fatalf("set role: %v", err)
	}

	ok, err = svc.HasRole(ctx, "a@x.com", RoleAdmin)
	if err != nil {
		t.Fatalf("has role: %v", err)
	}
	if !ok {
		t.Fatalf("expected admin role after assignment")
	}

	if err := svc.SetRole(ctx, "00000000-0000-0000-0000-000000000000", RoleConsumer); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound for unknown id, got %v", err)
	}
	if err := svc.SetRole(ctx, identity.ID, Role("superuser")); err == nil {
		t.Fatalf("expected unknown role error")
	}
}

func TestHasRoleUnknownEmail(t *testing.T) {
	svc := newTestService()

	ok, err := svc.HasRole(context.Background(), "ghost@x.com", RoleConsumer)
	if err != nil {
		t.Fatalf("has role: %v", err)
	}
	if ok {
		t.Fatalf("unknown email must not carry any role")
	}
}
