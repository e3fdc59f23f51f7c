package app

import (
	"context"
	"fmt"

	"github.com/chatinsight/core/internal/config"
	"github.com/chatinsight/core/internal/database"
	"github.com/chatinsight/core/internal/store"
)

// OpenStore connects the store selected by storage.driver and prepares its
// schema or indexes.
func OpenStore(ctx context.Context, cfg *config.AppConfig) (store.Store, error) {
	switch cfg.Storage.Driver {
	case config.DriverMemory:
		return store.NewMemory(), nil
	case config.DriverMySQL, config.DriverSQLite:
		db, err := database.OpenGorm(cfg, true)
		if err != nil {
			return nil, err
		}
		return store.NewSQL(db), nil
	case config.DriverMongo:
		client, err := database.ConnectMongo(ctx, cfg)
		if err != nil {
			return nil, err
		}
		m := store.NewMongo(client, cfg.Storage.Database)
		if err := m.EnsureIndexes(ctx); err != nil {
			_ = m.Close(ctx)
			return nil, fmt.Errorf("mongo indexes: %w", err)
		}
		return m, nil
	default:
		return nil, fmt.Errorf("unknown storage driver %q", cfg.Storage.Driver)
	}
}
