// Package adminauth provides username/password authentication for the single
// admin console account.
package adminauth

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"granthalaya/api/internal/store"
	"granthalaya/api/internal/util"

	"golang.org/x/crypto/bcrypt"
)

var ErrInvalidCredentials = errors.New("invalid credentials")

// AdminStore defines the storage interface for admin accounts.
type AdminStore interface {
	GetAdminByUsername(ctx context.Context, username string) (store.Admin, error)
	InsertAdmin(ctx context.Context, admin store.Admin) error
}

type Service struct {
	store AdminStore
}

func NewService(store AdminStore) *Service {
	return &Service{store: store}
}

// Login verifies the credentials and returns the matching admin. All failure
// modes collapse into ErrInvalidCredentials so the caller cannot distinguish
// an unknown username from a wrong password.
func (s *Service) Login(ctx context.Context, username, password string) (store.Admin, error) {
	username = strings.TrimSpace(username)
	if username == "" || password == "" {
		return store.Admin{}, ErrInvalidCredentials
	}

	admin, err := s.store.GetAdminByUsername(ctx, username)
	if errors.Is(err, sql.ErrNoRows) {
		return store.Admin{}, ErrInvalidCredentials
	}
	if err != nil {
		return store.Admin{}, fmt.Errorf("lookup admin: %w", err)
	}

	if err := bcrypt.CompareHashAndPassword([]byte(admin.PasswordHash), []byte(password)); err != nil {
		return store.Admin{}, ErrInvalidCredentials
	}
	return admin, nil
}

// Seed ensures the configured bootstrap admin exists. A no-op when the
// username is already taken or no credentials are configured.
func (s *Service) Seed(ctx context.Context, username, password string) error {
	username = strings.TrimSpace(username)
	if username == "" || password == "" {
		return nil
	}

	if _, err := s.store.GetAdminByUsername(ctx, username); err == nil {
		return nil
	} else if !errors.Is(err, sql.ErrNoRows) {
		return fmt.Errorf("lookup admin: %w", err)
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return fmt.Errorf("hash password: %w", err)
	}

	if err := s.store.InsertAdmin(ctx, store.Admin{
		ID:           util.NewID("adm"),
		Username:     username,
		PasswordHash: string(hash),
	}); err != nil {
		return fmt.Errorf("insert admin: %w", err)
	}
	return nil
}
