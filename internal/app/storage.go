package app

import (
	"context"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/mongo/readpref"

	"github.com/optbazar/optbazar/internal/auth"
	"github.com/optbazar/optbazar/internal/catalog"
	"github.com/optbazar/optbazar/internal/orders"
	"github.com/optbazar/optbazar/internal/platform/db"
	"github.com/optbazar/optbazar/internal/platform/mongodb"
	"github.com/optbazar/optbazar/internal/shared"
)

// Storage bundles the repositories selected by STORAGE_DRIVER.
type Storage struct {
	Driver   string
	Products catalog.Repository
	Orders   orders.Repository
	Admins   auth.Repository
	Audit    shared.AuditRecorder

	ping  func(context.Context) error
	close func()
}

// OpenStorage connects the configured backend, applies its schema and
// builds the repositories on top of it.
func OpenStorage(ctx context.Context, cfg *Config) (*Storage, error) {
	switch cfg.StorageDriver {
	case StorageMongo:
		client, database, err := mongodb.Connect(ctx, cfg.MongoURI, cfg.MongoDatabase)
		if err != nil {
			return nil, err
		}
		if err := mongodb.EnsureIndexes(ctx, database); err != nil {
			_ = client.Disconnect(context.Background())
			return nil, err
		}
		return &Storage{
			Driver:   StorageMongo,
			Products: catalog.NewMongoRepository(database),
			Orders:   orders.NewMongoRepository(database),
			Admins:   auth.NewMongoRepository(database),
			Audit:    shared.NewMongoAuditLogger(database),
			ping: func(ctx context.Context) error {
				return client.Ping(ctx, readpref.Primary())
			},
			close: func() {
				ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
				defer cancel()
				_ = client.Disconnect(ctx)
			},
		}, nil
	case StoragePostgres:
		pool, err := db.New(ctx, cfg.PGDSN)
		if err != nil {
			return nil, err
		}
		if err := db.Migrate(ctx, pool); err != nil {
			pool.Close()
			return nil, err
		}
		return &Storage{
			Driver:   StoragePostgres,
			Products: catalog.NewRepository(pool),
			Orders:   orders.NewRepository(pool),
			Admins:   auth.NewRepository(pool),
			Audit:    shared.NewAuditLogger(pool),
			ping:     pool.Ping,
			close:    pool.Close,
		}, nil
	default:
		return nil, fmt.Errorf("app: unknown storage driver %q", cfg.StorageDriver)
	}
}

// Ping checks the backend connection.
func (s *Storage) Ping(ctx context.Context) error {
	if s == nil || s.ping == nil {
		return nil
	}
	return s.ping(ctx)
}

// Close releases the backend connection.
func (s *Storage) Close() {
	if s == nil || s.close == nil {
		return
	}
	s.close()
}
