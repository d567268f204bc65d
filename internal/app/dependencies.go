package app

import (
	"context"
	"fmt"

	log "github.com/sirupsen/logrus"

	"github.com/vladislavdragonenkov/bookstore/internal/domain"
	"github.com/vladislavdragonenkov/bookstore/internal/storage/memory"
	"github.com/vladislavdragonenkov/bookstore/internal/storage/postgres"
)

// Dependencies содержит все хранилища приложения.
type Dependencies struct {
	Books     domain.BookRepository
	Authors   domain.AuthorRepository
	Customers domain.CustomerRepository
	Carts     domain.CartRepository
	Orders    domain.OrderRepository
	Outbox    domain.OutboxRepository
	IDs       domain.IDAllocator
	Logger    *log.Entry

	store *postgres.Store
}

// NewDependencies собирает хранилища для выбранного драйвера.
func NewDependencies(ctx context.Context, cfg Config, logger *log.Entry) (*Dependencies, error) {
	if logger == nil {
		logger = log.WithField("component", "app")
	}

	switch cfg.StorageDriver {
	case StorageDriverPostgres:
		return newPostgresDependencies(ctx, cfg, logger)
	case StorageDriverMemory, "":
		return newMemoryDependencies(logger), nil
	default:
		return nil, fmt.Errorf("unsupported storage driver: %s", cfg.StorageDriver)
	}
}

func newMemoryDependencies(logger *log.Entry) *Dependencies {
	return &Dependencies{
		Books:     memory.NewBookRepository(),
		Authors:   memory.NewAuthorRepository(),
		Customers: memory.NewCustomerRepository(),
		Carts:     memory.NewCartRepository(),
		Orders:    memory.NewOrderRepository(),
		Outbox:    memory.NewOutboxRepository(),
		IDs:       memory.NewIDAllocator(),
		Logger:    logger,
	}
}

func newPostgresDependencies(ctx context.Context, cfg Config, logger *log.Entry) (*Dependencies, error) {
	store, err := postgres.Open(ctx, cfg.PostgresDSN)
	if err != nil {
		return nil, fmt.Errorf("open postgres storage: %w", err)
	}

	if cfg.PostgresAutoMigrate {
		if err := store.MigrateUp(ctx, 0); err != nil {
			_ = store.Close()
			return nil, fmt.Errorf("apply migrations: %w", err)
		}
	}

	ids, err := postgres.NewIDAllocator(ctx, store)
	if err != nil {
		_ = store.Close()
		return nil, fmt.Errorf("seed id allocator: %w", err)
	}

	logger.Info("postgres storage initialized")
	return &Dependencies{
		Books:     postgres.NewBookRepository(store),
		Authors:   postgres.NewAuthorRepository(store),
		Customers: postgres.NewCustomerRepository(store),
		Carts:     postgres.NewCartRepository(store),
		Orders:    postgres.NewOrderRepository(store),
		Outbox:    postgres.NewOutboxRepository(store),
		IDs:       ids,
		Logger:    logger,
		store:     store,
	}, nil
}

// Close освобождает ресурсы хранилища.
func (d *Dependencies) Close() error {
	if d.store != nil {
		return d.store.Close()
	}
	return nil
}

// PingStorage проверяет доступность хранилища; для in-memory всегда nil.
func (d *Dependencies) PingStorage(ctx context.Context) error {
	if d.store != nil {
		return d.store.Ping(ctx)
	}
	return nil
}
