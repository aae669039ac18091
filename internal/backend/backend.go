// Package backend opens the datastore selected by configuration.
package backend

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/mamadbah2/billing/internal/config"
	"github.com/mamadbah2/billing/internal/repository"
	"github.com/mamadbah2/billing/internal/repository/firestore"
	"github.com/mamadbah2/billing/internal/repository/memory"
	"github.com/mamadbah2/billing/internal/repository/mongodb"
)

// Open connects to the configured backend and returns its repositories. Report
// buckets are keyed in loc.
func Open(ctx context.Context, cfg *config.Config, loc *time.Location, logger *zap.Logger) (*repository.Store, error) {
	if logger == nil {
		logger = zap.NewNop()
	}

	switch cfg.Backend {
	case config.BackendMongoDB:
		repo, err := mongodb.NewMongoDBRepository(ctx, cfg.MongoDB.URI, cfg.MongoDB.DBName, logger.Named("repo.mongodb"))
		if err != nil {
			return nil, err
		}
		if err := repo.EnsureIndexes(ctx); err != nil {
			_ = repo.Close(ctx)
			return nil, err
		}
		logger.Info("using mongodb backend", zap.String("db", cfg.MongoDB.DBName))
		return repo.Store(loc), nil

	case config.BackendFirestore:
		repo, err := firestore.NewFirestoreRepository(ctx, cfg.Firestore, logger.Named("repo.firestore"))
		if err != nil {
			return nil, err
		}
		logger.Info("using firestore backend", zap.String("project", cfg.Firestore.ProjectID))
		return repo.Store(loc), nil

	case config.BackendMemory:
		logger.Warn("using in-memory backend, data is lost on restart")
		return memory.NewStore(loc), nil
	}

	return nil, fmt.Errorf("unsupported data backend %q", cfg.Backend)
}
