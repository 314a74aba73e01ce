// Package storage opens the persistence backend selected by configuration.
package storage

import (
	"context"
	"fmt"

	"github.com/Harsha-vardhan456/bus-complaint-system/internal/config"
	"github.com/Harsha-vardhan456/bus-complaint-system/internal/database"
	"github.com/Harsha-vardhan456/bus-complaint-system/internal/repository"
	"github.com/Harsha-vardhan456/bus-complaint-system/internal/repository/mongostore"
	"github.com/Harsha-vardhan456/bus-complaint-system/internal/repository/sqlstore"
)

// Backend stores users and complaints.
type Backend interface {
	repository.UserStore
	repository.ComplaintStore
	Close() error
}

// Open connects to the configured driver. SQL backends are migrated before
// they are returned.
func Open(ctx context.Context, cfg config.StoreConfig) (Backend, error) {
	switch cfg.Driver {
	case config.DriverMongo:
		s, err := mongostore.NewStore(cfg.MongoURI, cfg.MongoDB)
		if err != nil {
			return nil, fmt.Errorf("open mongo: %w", err)
		}
		return s, nil
	case config.DriverMySQL:
		db, err := database.OpenMySQL(cfg.DBUser, cfg.DBPass, cfg.DBHost, cfg.DBPort, cfg.DBName)
		if err != nil {
			return nil, fmt.Errorf("open mysql: %w", err)
		}
		return migrated(ctx, sqlstore.New(db))
	case config.DriverSQLite:
		db, err := database.OpenSQLite(cfg.SQLitePath)
		if err != nil {
			return nil, fmt.Errorf("open sqlite: %w", err)
		}
		return migrated(ctx, sqlstore.New(db))
	default:
		return nil, fmt.Errorf("unsupported store driver %q", cfg.Driver)
	}
}

func migrated(ctx context.Context, s *sqlstore.Store) (Backend, error) {
	if err := s.Migrate(ctx); err != nil {
		_ = s.Close()
		return nil, err
	}
	return s, nil
}
