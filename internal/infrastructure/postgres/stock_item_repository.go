package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jhoicas/stock-ledger/internal/domain"
	"github.com/jhoicas/stock-ledger/internal/domain/entity"
	"github.com/jhoicas/stock-ledger/internal/domain/repository"
)

var _ repository.StockItemRepository = (*StockItemRepo)(nil)

// StockItemRepo proyección de cantidades con bloqueo optimista por columna version.
type StockItemRepo struct {
	q Querier
}

// NewStockItemRepository construye el adaptador. Pasar pool o tx (Querier).
func NewStockItemRepository(q Querier) *StockItemRepo {
	return &StockItemRepo{q: q}
}

// Get obtiene el ítem de (bodega, variante); nil si no existe.
func (r *StockItemRepo) Get(ctx context.Context, warehouseID, variantID string) (*entity.StockItem, error) {
	query := `
		SELECT id, warehouse_id, variant_id, quantity, version, updated_at
		FROM stock_items WHERE warehouse_id = $1 AND variant_id = $2`
	var s entity.StockItem
	err := r.q.QueryRow(ctx, query, warehouseID, variantID).Scan(
		&s.ID, &s.WarehouseID, &s.VariantID, &s.Quantity, &s.Version, &s.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("get stock item: %w", err)
	}
	return &s, nil
}

// Insert crea el ítem con version 1. Si otro escritor ya lo creó, conflicto de concurrencia.
func (r *StockItemRepo) Insert(ctx context.Context, item *entity.StockItem) error {
	query := `
		INSERT INTO stock_items (id, warehouse_id, variant_id, quantity, version, updated_at)
		VALUES ($1, $2, $3, $4, 1, $5)`
	_, err := r.q.Exec(ctx, query, item.ID, item.WarehouseID, item.VariantID, item.Quantity, item.UpdatedAt)
	if err != nil {
		if isUniqueViolation(err) {
			return domain.ErrConcurrencyConflict
		}
		return fmt.Errorf("insert stock item: %w", err)
	}
	item.Version = 1
	return nil
}

// Update guarda la cantidad solo si la versión no cambió desde la lectura.
func (r *StockItemRepo) Update(ctx context.Context, item *entity.StockItem) error {
	query := `
		UPDATE stock_items SET quantity = $3, version = version + 1, updated_at = $4
		WHERE id = $1 AND version = $2`
	cmd, err := r.q.Exec(ctx, query, item.ID, item.Version, item.Quantity, item.UpdatedAt)
	if err != nil {
		return fmt.Errorf("update stock item: %w", err)
	}
	if cmd.RowsAffected() == 0 {
		return domain.ErrConcurrencyConflict
	}
	item.Version++
	return nil
}
