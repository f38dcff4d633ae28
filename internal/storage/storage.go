// Package storage opens the configured persistence backend and owns its
// lifecycle. The process entry point calls Open once and Close on shutdown.
package storage

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"user_service/config"
	"user_service/internal/domain"
	"user_service/internal/repository"
	"user_service/pkg/db"

	"github.com/sirupsen/logrus"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.mongodb.org/mongo-driver/mongo/readpref"
)

type Storage struct {
	Users domain.UserRepository

	sqlDB  *sql.DB
	client *mongo.Client
	log    *logrus.Logger
}

func Open(ctx context.Context, cfg *config.Config, logger *logrus.Logger) (*Storage, error) {
	if cfg.StorageDriver == config.DriverMongo {
		return openMongo(ctx, cfg, logger)
	}
	return openSQL(cfg, logger)
}

// NewSQL wraps an already opened database handle.
func NewSQL(database *sql.DB, logger *logrus.Logger) *Storage {
	return &Storage{
		Users: repository.NewSQLUserRepository(database, logger),
		sqlDB: database,
		log:   logger,
	}
}

func openSQL(cfg *config.Config, logger *logrus.Logger) (*Storage, error) {
	if cfg.AutoMigrate {
		logger.Info("Applying database migrations...")
		if err := db.Migrate(cfg.StorageDriver, cfg.DatabaseURL, logger); err != nil {
			return nil, err
		}
	}

	database, err := db.Connect(db.Config{
		Driver:          cfg.StorageDriver,
		DSN:             cfg.DatabaseURL,
		MaxOpenConns:    cfg.MaxOpenConns,
		MaxIdleConns:    cfg.MaxIdleConns,
		ConnMaxLifetime: cfg.ConnMaxLifetime,
	})
	if err != nil {
		return nil, err
	}
	logger.Infof("Database connection established (driver=%s).", cfg.StorageDriver)
	return NewSQL(database, logger), nil
}

func openMongo(ctx context.Context, cfg *config.Config, logger *logrus.Logger) (*Storage, error) {
	ctx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()

	client, err := mongo.Connect(ctx, options.Client().ApplyURI(cfg.MongoURI))
	if err != nil {
		return nil, fmt.Errorf("failed to connect to MongoDB: %w", err)
	}
	if err := client.Ping(ctx, readpref.Primary()); err != nil {
		_ = client.Disconnect(context.Background())
		return nil, fmt.Errorf("MongoDB ping failed: %w", err)
	}
	logger.Infof("MongoDB connection established (database=%s).", cfg.MongoDatabase)

	return &Storage{
		Users:  repository.NewMongoUserRepository(client.Database(cfg.MongoDatabase), logger),
		client: client,
		log:    logger,
	}, nil
}

func (s *Storage) Ping(ctx context.Context) error {
	if s.client != nil {
		return s.client.Ping(ctx, readpref.Primary())
	}
	return s.sqlDB.PingContext(ctx)
}

func (s *Storage) Close(ctx context.Context) error {
	if s.client != nil {
		if err := s.client.Disconnect(ctx); err != nil {
			return fmt.Errorf("error disconnecting from MongoDB: %w", err)
		}
		s.log.Info("MongoDB connection closed.")
		return nil
	}
	if err := s.sqlDB.Close(); err != nil {
		return fmt.Errorf("error closing database connection: %w", err)
	}
	s.log.Info("Database connection closed.")
	return nil
}
