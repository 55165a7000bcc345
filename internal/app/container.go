// Package app wires the service container from configuration.
package app

import (
	"github.com/sirupsen/logrus"
	"gorm.io/gorm"

	"shieldpool/internal/config"
	"shieldpool/internal/db"
	"shieldpool/internal/events"
	"shieldpool/internal/repository"
	"shieldpool/internal/services"
)

// Container holds the wired application services.
type Container struct {
	DB          *gorm.DB
	Store       repository.Store
	Publisher   events.Publisher
	PoolService *services.PoolService
	Logger      *logrus.Logger
}

// NewContainer connects the database and message bus and builds the
// services.
func NewContainer(cfg *config.Config, logger *logrus.Logger) (*Container, error) {
	database, err := db.Open(cfg.Database.DSN)
	if err != nil {
		return nil, err
	}

	var publisher events.Publisher = events.NoopPublisher{}
	if cfg.NATS.URL != "" {
		natsPublisher, err := events.NewNATSPublisher(cfg.NATS.URL, logger)
		if err != nil {
			return nil, err
		}
		publisher = natsPublisher
		logger.WithField("url", cfg.NATS.URL).Info("NATS publisher connected")
	} else {
		logger.Info("NATS not configured, events disabled")
	}

	store := repository.NewStore(database)
	poolService := services.NewPoolService(store, publisher, logger, services.PoolDefaults{
		TreeDepth:       cfg.Pool.TreeDepth,
		RootHistorySize: cfg.Pool.RootHistorySize,
		HashAlgorithm:   cfg.Pool.HashAlgorithm,
	})

	return &Container{
		DB:          database,
		Store:       store,
		Publisher:   publisher,
		PoolService: poolService,
		Logger:      logger,
	}, nil
}

// Close releases external connections.
func (c *Container) Close() {
	c.Publisher.Close()
	if sqlDB, err := c.DB.DB(); err == nil {
		sqlDB.Close()
	}
}
