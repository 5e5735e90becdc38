package service

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/immochat/auth-service/internal/domain"
	"github.com/immochat/auth-service/internal/repository"
)

// stubUserRepo is an in-memory UserRepository keyed by user ID.
type stubUserRepo struct {
	users map[string]*domain.User
}

func newStubUserRepo() *stubUserRepo {
	return &stubUserRepo{users: make(map[string]*domain.User)}
}

func (r *stubUserRepo) add(user *domain.User) *domain.User {
	if user.ID == "" {
		user.ID = uuid.New().String()
	}
	if user.Role == "" {
		user.Role = domain.RoleCustomer
	}
	r.users[user.ID] = user
	return user
}

func (r *stubUserRepo) Create(ctx context.Context, user *domain.User) error {
	for _, existing := range r.users {
		if existing.Email == user.Email {
			return fmt.Errorf("duplicate: %w", repository.ErrDuplicateEmail)
		}
	}
	r.add(user)
	return nil
}

func (r *stubUserRepo) GetByEmail(ctx context.Context, email string) (*domain.User, error) {
	for _, user := range r.users {
		if user.Email == email {
			return user, nil
		}
	}
	return nil, repository.ErrNotFound
}

func (r *stubUserRepo) GetByID(ctx context.Context, id string) (*domain.User, error) {
	user, ok := r.users[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	return user, nil
}

func (r *stubUserRepo) UpsertByEmail(ctx context.Context, user *domain.User) (*domain.User, error) {
	for _, existing := range r.users {
		if existing.Email == user.Email {
			if user.Name != "" {
				existing.Name = user.Name
			}
			if user.ImageURL != nil {
				existing.ImageURL = user.ImageURL
			}
			return existing, nil
		}
	}
	return r.add(user), nil
}

func (r *stubUserRepo) UpdatePassword(ctx context.Context, userID, passwordHash string) error {
	user, ok := r.users[userID]
	if !ok {
		return repository.ErrNotFound
	}
	user.PasswordHash = passwordHash
	return nil
}

func (r *stubUserRepo) UpdateRole(ctx context.Context, userID string, role domain.Role) error {
	user, ok := r.users[userID]
	if !ok {
		return repository.ErrNotFound
	}
	user.Role = role
	return nil
}

func (r *stubUserRepo) UpdateLastLogin(ctx context.Context, userID string) error {
	user, ok := r.users[userID]
	if !ok {
		return repository.ErrNotFound
	}
	now := time.Now()
	user.LastLoginAt = &now
	return nil
}

func (r *stubUserRepo) Delete(ctx context.Context, userID string) error {
	if _, ok := r.users[userID]; !ok {
		return repository.ErrNotFound
	}
	delete(r.users, userID)
	return nil
}

// stubIdentityRepo is an in-memory IdentityRepository keyed on the
// (provider, provider_account_id) pair, mirroring the upsert semantics of
// Link.
type stubIdentityRepo struct {
	links map[string]*domain.ExternalIdentity
}

func newStubIdentityRepo() *stubIdentityRepo {
	return &stubIdentityRepo{links: make(map[string]*domain.ExternalIdentity)}
}

func identityKey(provider, providerAccountID string) string {
	return provider + "|" + providerAccountID
}

func (r *stubIdentityRepo) Link(ctx context.Context, identity *domain.ExternalIdentity) (*domain.ExternalIdentity, error) {
	key := identityKey(identity.Provider, identity.ProviderAccountID)
	if existing, ok := r.links[key]; ok {
		if identity.AccessToken != nil {
			existing.AccessToken = identity.AccessToken
		}
		if identity.RefreshToken != nil {
			existing.RefreshToken = identity.RefreshToken
		}
		return existing, nil
	}
	if identity.ID == "" {
		identity.ID = uuid.New().String()
	}
	if identity.CreatedAt.IsZero() {
		identity.CreatedAt = time.Now()
	}
	r.links[key] = identity
	return identity, nil
}

func (r *stubIdentityRepo) GetByProvider(ctx context.Context, provider, providerAccountID string) (*domain.ExternalIdentity, error) {
	identity, ok := r.links[identityKey(provider, providerAccountID)]
	if !ok {
		return nil, repository.ErrNotFound
	}
	return identity, nil
}

// stubOTPRepo is an in-memory OTPRepository mirroring the store semantics:
// Replace drops active codes for the pair, Consume is single-shot.
type stubOTPRepo struct {
	codes map[string]*domain.OneTimeCode
}

func newStubOTPRepo() *stubOTPRepo {
	return &stubOTPRepo{codes: make(map[string]*domain.OneTimeCode)}
}

func (r *stubOTPRepo) Replace(ctx context.Context, code *domain.OneTimeCode) error {
	for id, existing := range r.codes {
		if existing.Email == code.Email && existing.Purpose == code.Purpose && !existing.Used {
			delete(r.codes, id)
		}
	}
	if code.ID == "" {
		code.ID = uuid.New().String()
	}
	if code.CreatedAt.IsZero() {
		code.CreatedAt = time.Now()
	}
	r.codes[code.ID] = code
	return nil
}

func (r *stubOTPRepo) Consume(ctx context.Context, email, code string, purpose domain.OTPPurpose) (*domain.OneTimeCode, error) {
	for _, otp := range r.codes {
		if otp.Email == email && otp.Code == code && otp.Purpose == purpose && !otp.Used && otp.ExpiresAt.After(time.Now()) {
			otp.Used = true
			return otp, nil
		}
	}
	return nil, repository.ErrNotFound
}

func (r *stubOTPRepo) GetByID(ctx context.Context, id string) (*domain.OneTimeCode, error) {
	otp, ok := r.codes[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	return otp, nil
}

func (r *stubOTPRepo) Delete(ctx context.Context, id string) error {
	if _, ok := r.codes[id]; !ok {
		return repository.ErrNotFound
	}
	delete(r.codes, id)
	return nil
}

func (r *stubOTPRepo) DeleteExpired(ctx context.Context) error {
	for id, otp := range r.codes {
		if otp.ExpiresAt.Before(time.Now()) {
			delete(r.codes, id)
		}
	}
	return nil
}

func (r *stubOTPRepo) activeFor(email string, purpose domain.OTPPurpose) *domain.OneTimeCode {
	for _, otp := range r.codes {
		if otp.Email == email && otp.Purpose == purpose && !otp.Used {
			return otp
		}
	}
	return nil
}

// stubSender records dispatched codes and can be told to fail.
type stubSender struct {
	sent []string
	fail bool
}

func (s *stubSender) SendOTP(ctx context.Context, to, code, purpose string) error {
	if s.fail {
		return fmt.Errorf("smtp unavailable")
	}
	s.sent = append(s.sent, code)
	return nil
}
