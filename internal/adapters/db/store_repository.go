// internal/adapters/db/store_repository.go
package db

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/voltdepot/stock-be/internal/core/domain"
	"github.com/voltdepot/stock-be/internal/core/ports"
)

// storeRepository implements ports.StoreRepository
type storeRepository struct {
	q      Querier
	logger *slog.Logger
}

// NewStoreRepository creates a new store registry repository
func NewStoreRepository(q Querier, logger *slog.Logger) ports.StoreRepository {
	return &storeRepository{
		q:      q,
		logger: logger.With(slog.String("repository", "store")),
	}
}

// Save upserts a store record.
func (r *storeRepository) Save(ctx context.Context, store *domain.Store) error {
	store.PrepareForStorage()

	_, err := r.q.Exec(ctx, `
		INSERT INTO stores (id, name, active, created_at)
		VALUES ($1, $2, $3, $4)
		ON CONFLICT (id) DO UPDATE
		SET name = EXCLUDED.name, active = EXCLUDED.active`,
		store.ID, store.Name, store.Active, store.CreatedAt)
	if err != nil {
		return fmt.Errorf("failed to save store: %w", err)
	}

	r.logger.DebugContext(ctx, "store saved",
		slog.String("store_id", store.ID.String()),
		slog.String("name", store.Name))

	return nil
}

// FindByID retrieves a store.
func (r *storeRepository) FindByID(ctx context.Context, storeID uuid.UUID) (*domain.Store, error) {
	store := &domain.Store{}
	err := r.q.QueryRow(ctx,
		`SELECT id, name, active, created_at FROM stores WHERE id = $1`,
		storeID).Scan(&store.ID, &store.Name, &store.Active, &store.CreatedAt)
	if err != nil {
		if err == pgx.ErrNoRows {
			return nil, fmt.Errorf("store %s: %w", storeID, domain.ErrNotFound)
		}
		return nil, fmt.Errorf("failed to find store: %w", err)
	}

	return store, nil
}

// FindAll retrieves every registered store.
func (r *storeRepository) FindAll(ctx context.Context) ([]domain.Store, error) {
	rows, err := r.q.Query(ctx,
		`SELECT id, name, active, created_at FROM stores ORDER BY name`)
	if err != nil {
		return nil, fmt.Errorf("failed to query stores: %w", err)
	}
	defer rows.Close()

	var stores []domain.Store
	for rows.Next() {
		var s domain.Store
		if err := rows.Scan(&s.ID, &s.Name, &s.Active, &s.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan store: %w", err)
		}
		stores = append(stores, s)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating rows: %w", err)
	}

	return stores, nil
}
