package service

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"slices"
	"sync"

	dom "github.com/Naresh-BDO/DT-I-Onboarding-Portal-shared/internal/domain"
	"github.com/Naresh-BDO/DT-I-Onboarding-Portal-shared/internal/repo"

	"golang.org/x/crypto/bcrypt"
)

var ErrInvalidCredentials = errors.New("invalid username or password")

// DefaultAdminUsername is the account created by SeedAdmin.
const DefaultAdminUsername = "admin"

// UserService is the credential store: it checks passwords and reports roles.
type UserService struct {
	repo    repo.UserRepo
	compare func(hash, password []byte) error

	dummyOnce sync.Once
	dummyHash []byte
}

// NewUserService returns a new UserService.
func NewUserService(repo repo.UserRepo) *UserService {
	return &UserService{repo: repo, compare: bcrypt.CompareHashAndPassword}
}

// ValidateCredentials checks username (exact match) and password; returns user if valid.
// Unknown usernames still pay for one bcrypt comparison so that both failure
// paths look the same to the caller.
func (s *UserService) ValidateCredentials(ctx context.Context, username, password string) (dom.User, error) {
	if username == "" || password == "" {
		_ = s.compare(s.timingHash(), []byte(password))
		return dom.User{}, ErrInvalidCredentials
	}
	u, err := s.repo.GetByUsername(ctx, username)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			_ = s.compare(s.timingHash(), []byte(password))
			return dom.User{}, ErrInvalidCredentials
		}
		return dom.User{}, fmt.Errorf("lookup user: %w", err)
	}
	if err := s.compare([]byte(u.PasswordHash), []byte(password)); err != nil {
		return dom.User{}, ErrInvalidCredentials
	}
	return u, nil
}

// GetRoles returns the user's roles, de-duplicated and sorted.
func (s *UserService) GetRoles(u dom.User) []string {
	roles := slices.Clone(u.Roles)
	slices.Sort(roles)
	return slices.Compact(roles)
}

func (s *UserService) timingHash() []byte {
	s.dummyOnce.Do(func() {
		h, err := bcrypt.GenerateFromPassword([]byte("timing-equaliser-not-a-password"), bcrypt.DefaultCost)
		if err == nil {
			s.dummyHash = h
		}
	})
	return s.dummyHash
}

// SeedAdmin creates the bootstrap administrator when the store has no users.
// It is a dev convenience and runs once before the HTTP server starts.
// Reports whether an account was created.
func SeedAdmin(ctx context.Context, users repo.UserRepo, password string, logger *slog.Logger) (bool, error) {
	n, err := users.Count(ctx)
	if err != nil {
		return false, err
	}
	if n > 0 {
		return false, nil
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return false, fmt.Errorf("hash seed password: %w", err)
	}
	if _, err := users.Create(ctx, DefaultAdminUsername, string(hash), []string{dom.RoleAdmin}); err != nil {
		return false, fmt.Errorf("create seed admin: %w", err)
	}
	if logger != nil {
		logger.Warn("seeded default admin account; dev-only, change the password or set SEED_ADMIN=false",
			"username", DefaultAdminUsername)
	}
	return true, nil
}
