package seeds

import (
	"context"

	"go.uber.org/zap"
	"gorm.io/gorm"

	authService "schoolportal_backend/internals/features/users/auth/service"
	"schoolportal_backend/internals/seeds/catalog"
	"schoolportal_backend/internals/seeds/data"
	"schoolportal_backend/internals/seeds/users"
)

// Files overrides the embedded seed data; empty fields use the defaults.
type Files struct {
	Catalog []byte
	Users   []byte
}

func RunAllSeeds(ctx context.Context, db *gorm.DB, auth *authService.AuthService, f Files, log *zap.Logger) error {
	log = log.Named("seed")
	if len(f.Catalog) == 0 {
		f.Catalog = data.Catalog
	}
	if len(f.Users) == 0 {
		f.Users = data.Users
	}

	if err := catalog.SeedCatalog(ctx, db, f.Catalog, log); err != nil {
		return err
	}
	return users.SeedUsers(ctx, auth, f.Users, log)
}
