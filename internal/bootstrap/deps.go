package bootstrap

import (
	"context"
	"fmt"

	"github.com/Domenick1991/airtickets/config"
	"github.com/Domenick1991/airtickets/internal/repository"
	"github.com/Domenick1991/airtickets/internal/repository/memory"
	"github.com/jackc/pgx/v5/pgxpool"
	"go.temporal.io/sdk/client"
	"go.uber.org/zap"
)

// OpenStore connects the configured datastore. The returned func releases
// it.
func OpenStore(ctx context.Context, cfg config.DatabaseConfig, log *zap.Logger) (repository.Store, func(), error) {
	if cfg.Driver == config.DriverMemory {
		log.Warn("using the in-memory store, data is lost on restart")
		return memory.NewStore(), func() {}, nil
	}

	poolCfg, err := pgxpool.ParseConfig(cfg.DSN())
	if err != nil {
		return nil, nil, fmt.Errorf("parse postgres config: %w", err)
	}
	poolCfg.MaxConns = cfg.MaxConns

	pool, err := pgxpool.NewWithConfig(ctx, poolCfg)
	if err != nil {
		return nil, nil, fmt.Errorf("connect postgres: %w", err)
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, nil, fmt.Errorf("ping postgres: %w", err)
	}

	if cfg.AutoMigrate {
		if err := repository.Migrate(ctx, pool); err != nil {
			pool.Close()
			return nil, nil, err
		}
		log.Info("database schema applied")
	}
	return repository.NewPGStore(pool), pool.Close, nil
}

func DialTemporal(cfg config.SchedulerConfig) (client.Client, error) {
	c, err := client.Dial(client.Options{
		HostPort:  cfg.TemporalHost,
		Namespace: cfg.TemporalNamespace,
	})
	if err != nil {
		return nil, fmt.Errorf("connect temporal %s: %w", cfg.TemporalHost, err)
	}
	return c, nil
}
