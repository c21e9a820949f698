package main

import (
	"context"

	"subscription-manager/internal/common/config"
	"subscription-manager/internal/common/database"
	"subscription-manager/internal/common/logger"
	"subscription-manager/internal/common/recordstore"
	"subscription-manager/internal/journal"
	"subscription-manager/internal/subscription"

	"go.uber.org/zap"
)

// app holds what every command needs: configuration, logging and the change pipeline.
type app struct {
	cfg     *config.Config
	zapLog  *zap.Logger
	log     logger.Logger
	changer subscription.Changer
	journal *journal.Journal
	redis   *database.RedisClient
}

func newApp(ctx context.Context) (*app, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, err
	}

	zapLog := logger.New(cfg.Logging.Level, cfg.Logging.Format)
	log := logger.NewZapAdapter(zapLog)

	store := recordstore.NewClient(cfg.RecordStore.BaseURL, cfg.RecordStore.Timeout, log)

	a := &app{
		cfg:     cfg,
		zapLog:  zapLog,
		log:     log,
		changer: subscription.NewUpdater(store, log),
	}

	if cfg.Redis.Enabled {
		rc := database.NewRedis(cfg.Redis)
		if err := rc.Ping(ctx); err != nil {
			log.Warn("redis unreachable, transition journal disabled", map[string]interface{}{
				"address": cfg.Redis.Address,
				"error":   err.Error(),
			})
			_ = rc.Close()
		} else {
			a.redis = rc
			a.journal = journal.New(rc.Client, cfg.Journal.MaxEntries, log)
			a.changer = journal.Wrap(a.changer, a.journal)
		}
	}

	return a, nil
}

func (a *app) Close() {
	if a.redis != nil {
		_ = a.redis.Close()
	}
	_ = a.zapLog.Sync()
}
