package directory

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"
)

var (
	// ErrAlreadyRegistered indicates the email is taken. Registration treats
	// this as an informational outcome, not a failure.
	ErrAlreadyRegistered = errors.New("user already exists")

	// ErrBadCredentials indicates an unknown email or a wrong password.
	ErrBadCredentials = errors.New("invalid email or password")
)

// Service manages the identity directory.
type Service struct {
	repo         Repository
	storeTimeout time.Duration
}

// NewService creates a directory service. Store calls are bounded by storeTimeout.
func NewService(repo Repository, storeTimeout time.Duration) *Service {
	return &Service{repo: repo, storeTimeout: storeTimeout}
}

// Register creates an identity with no role and a hashed password. Registering
// an email twice leaves exactly one record and reports ErrAlreadyRegistered.
func (s *Service) Register(ctx context.Context, email, password string) (Identity, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	if email == "" || !strings.Contains(email, "@") {
		return Identity{}, errors.New("a valid email is required")
	}
	if len(password) < 6 {
		return Identity{}, errors.New("password must be at least 6 characters")
	}

	ctx, cancel := s.bound(ctx)
	defer cancel()

	if _, err := s.repo.FindByEmail(ctx, email); err == nil {
		return Identity{}, ErrAlreadyRegistered
	} else if !errors.Is(err, ErrNotFound) {
		return Identity{}, err
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return Identity{}, err
	}

	identity := Identity{
		ID:           uuid.New().String(),
		Email:        email,
		Role:         RoleNone,
		PasswordHash: hash,
		CreatedAt:    time.Now().UTC(),
	}

	if err := s.repo.Create(ctx, identity); err != nil {
		if errors.Is(err, ErrDuplicateEmail) {
			// Lost a race with a concurrent registration for the same email.
			return Identity{}, ErrAlreadyRegistered
		}
		return Identity{}, err
	}

	return identity, nil
}

// Authenticate verifies an email/password pair against the stored hash.
func (s *Service) Authenticate(ctx context.Context, email, password string) (Identity, error) {
	ctx, cancel := s.bound(ctx)
	defer cancel()

	identity, err := s.repo.FindByEmail(ctx, strings.ToLower(strings.TrimSpace(email)))
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return Identity{}, ErrBadCredentials
		}
		return Identity{}, err
	}
	if err := bcrypt.CompareHashAndPassword(identity.PasswordHash, []byte(password)); err != nil {
		return Identity{}, ErrBadCredentials
	}
	return identity, nil
}

// Get fetches an identity by email.
func (s *Service) Get(ctx context.Context, email string) (Identity, error) {
	ctx, cancel := s.bound(ctx)
	defer cancel()
	return s.repo.FindByEmail(ctx, email)
}

// List returns all registered identities.
func (s *Service) List(ctx context.Context) ([]Identity, error) {
	ctx, cancel := s.bound(ctx)
	defer cancel()
	return s.repo.List(ctx)
}

// SetRole assigns a role to the identity with the given id.
func (s *Service) SetRole(ctx context.Context, id string, role Role) error {
	if !role.Valid() {
		return errors.New("unknown role")
	}
	ctx, cancel := s.bound(ctx)
	defer cancel()
	return s.repo.SetRole(ctx, id, role)
}

// HasRole reports whether the identity registered under email carries the role.
// An unknown email reports false without error.
func (s *Service) HasRole(ctx context.Context, email string, role Role) (bool, error) {
	ctx, cancel := s.bound(ctx)
	defer cancel()
	identity, err := s.repo.FindByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return false, nil
		}
		return false, err
	}
	return identity.Role == role, nil
}

func (s *Service) bound(ctx context.Context) (context.Context, context.CancelFunc) {
	if s.storeTimeout <= 0 {
		return context.WithCancel(ctx)
	}
	return context.WithTimeout(ctx, s.storeTimeout)
}
