// Command seed-admin creates the administrator account if it does not exist.
package main

import (
	"context"
	"log/slog"
	"os"
	"time"

	"github.com/joho/godotenv"

	"github.com/Harsha-vardhan456/bus-complaint-system/internal/config"
	"github.com/Harsha-vardhan456/bus-complaint-system/internal/logging"
	"github.com/Harsha-vardhan456/bus-complaint-system/internal/repository"
	"github.com/Harsha-vardhan456/bus-complaint-system/internal/storage"
	"github.com/Harsha-vardhan456/bus-complaint-system/internal/utils"
)

func main() {
	if err := godotenv.Load(); err != nil && !os.IsNotExist(err) {
		slog.Warn(".env not loaded", "err", err)
	}
	logger := logging.New(os.Getenv("LOG_LEVEL"))
	slog.SetDefault(logger)

	// only the store settings are needed, so JWT_SECRET is not required here
	storeCfg := config.LoadStoreConfig()
	rounds := config.LoadPBKDF2Rounds()
	if rounds < 1000 {
		logger.Error("PBKDF2_ROUNDS too low", "rounds", rounds)
		os.Exit(1)
	}

	name := envOr("ADMIN_NAME", "Admin")
	email := envOr("ADMIN_EMAIL", "admin@example.com")
	password := envOr("ADMIN_PASSWORD", "admin123")
	if utils.ValidatePassword(password) != nil {
		logger.Warn("admin password is shorter than the registration policy; set ADMIN_PASSWORD",
			"min_length", utils.MinPasswordLength)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	store, err := storage.Open(ctx, storeCfg)
	if err != nil {
		logger.Error("store open failed", "err", err)
		os.Exit(1)
	}
	defer store.Close()

	u, created, err := repository.NewUserRepo(store, rounds).EnsureAdmin(ctx, name, email, password)
	if err != nil {
		logger.Error("seed admin failed", "err", err)
		os.Exit(1)
	}
	if created {
		logger.Info("admin user created", "email", u.Email)
	} else {
		logger.Info("admin user already exists", "email", u.Email)
	}
}

func envOr(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}
