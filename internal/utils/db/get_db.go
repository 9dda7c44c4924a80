package db

import (
	"context"
	"fmt"

	"github.com/funnytourism/tourism-api/internal/config"
	"gorm.io/gorm"
)

// GetDB opens the database selected by cfg.Driver.
func GetDB(ctx context.Context, cfg config.DatabaseConfig) (*gorm.DB, error) {
	switch cfg.Driver {
	case "sqlite":
		return OpenSQLite(cfg.Path)
	case "postgres", "":
		username, password, err := retrieveCredentials(ctx, cfg)
		if err != nil {
			return nil, err
		}
		return ConnectDataBase(cfg, username, password)
	default:
		return nil, fmt.Errorf("unsupported database driver %q", cfg.Driver)
	}
}
