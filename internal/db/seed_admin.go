package db

import (
	"context"
	"errors"

	"github.com/geocoder89/bootcamphub/internal/config"
	"github.com/geocoder89/bootcamphub/internal/domain/user"
	"github.com/geocoder89/bootcamphub/internal/security"
)

// AdminStore is the slice of the users repo the seeder needs.
type AdminStore interface {
	GetByEmail(ctx context.Context, email string) (user.User, error)
	Create(ctx context.Context, nu user.NewUser) (user.User, error)
}

// EnsureAdminUser creates the configured admin once. It is a no-op when no
// admin credentials are configured or the email is already registered.
func EnsureAdminUser(ctx context.Context, users AdminStore, cfg config.Config) error {
	if cfg.AdminEmail == "" || cfg.AdminPassword == "" {
		return nil
	}

	// check if the user exists

	_, err := users.GetByEmail(ctx, cfg.AdminEmail)

	if err == nil {
		return nil
	}

	if !errors.Is(err, user.ErrNotFound) {
		return err
	}

	hash, err := security.HashPassword(cfg.AdminPassword)

	if err != nil {
		return err
	}

	_, err = users.Create(ctx, user.NewUser{
		Name:         cfg.AdminName,
		Email:        cfg.AdminEmail,
		Role:         user.RoleAdmin,
		PasswordHash: hash,
	})

	if errors.Is(err, user.ErrEmailTaken) {
		return nil
	}

	return err
}
