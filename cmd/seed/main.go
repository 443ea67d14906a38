package main

import (
	"context"
	"errors"
	"log"

	"github.com/joho/godotenv"

	"github.com/oksasatya/go-diagram-workspace/config"
	"github.com/oksasatya/go-diagram-workspace/internal/application"
	"github.com/oksasatya/go-diagram-workspace/internal/domain/errs"
	pginfra "github.com/oksasatya/go-diagram-workspace/internal/infrastructure/postgres"
	"github.com/oksasatya/go-diagram-workspace/pkg/helpers"
)

// seed ensures the USER and ADMIN roles exist and, when SEED_ADMIN_* is set,
// creates an admin account. Safe to run repeatedly.
func main() {
	_ = godotenv.Load()
	cfg := config.Load()
	logger := helpers.NewLogger(cfg.AppName+"-seed", cfg.Env)
	ctx := context.Background()

	if cfg.StoreDriver != config.StoreDriverPostgres {
		log.Fatalf("seeding needs STORE_DRIVER=%s, got %q", config.StoreDriverPostgres, cfg.StoreDriver)
	}

	pool, err := pginfra.NewPool(ctx, cfg.PostgresDSN(), cfg.DBMaxConns, cfg.DBMinConns, cfg.DBMaxConnLife)
	if err != nil {
		log.Fatalf("failed to connect to postgres: %v", err)
	}
	defer pool.Close()
	db := pginfra.OpenDB(pool)
	defer func() { _ = db.Close() }()

	if err := pginfra.RunMigrations(db, cfg.MigrationsDir, logger); err != nil {
		log.Fatalf("migration failed: %v", err)
	}

	users := pginfra.NewUserRepository(db)
	roles := pginfra.NewRoleRepository(db)
	if err := roles.EnsureDefaults(ctx); err != nil {
		log.Fatalf("failed to seed roles: %v", err)
	}
	logger.Info("roles ensured: USER, ADMIN")

	if cfg.SeedAdminUsername == "" {
		logger.Info("SEED_ADMIN_USERNAME not set, skipping admin account")
		return
	}

	auth, err := application.NewAuthService(users, roles, cfg.BcryptCost, logger)
	if err != nil {
		log.Fatalf("failed to init auth service: %v", err)
	}
	u, err := auth.Register(ctx, application.RegisterInput{
		Username: cfg.SeedAdminUsername,
		Email:    cfg.SeedAdminEmail,
		Password: cfg.SeedAdminPassword,
	})
	var conflict *errs.ConflictError
	switch {
	case errors.As(err, &conflict):
		existing, gerr := users.GetByUsername(ctx, cfg.SeedAdminUsername)
		if gerr != nil {
			log.Fatalf("admin account conflicts on %s and cannot be loaded: %v", conflict.Field, gerr)
		}
		u = existing
		logger.WithField("username", u.Username).Info("admin account already exists")
	case err != nil:
		log.Fatalf("failed to create admin account: %v", err)
	}

	if err := auth.PromoteToAdmin(ctx, u.ID); err != nil {
		log.Fatalf("failed to grant ADMIN: %v", err)
	}
	logger.WithField("username", u.Username).Info("admin role granted")
}
