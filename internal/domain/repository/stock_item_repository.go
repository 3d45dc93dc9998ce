package repository

import (
	"context"

	"github.com/jhoicas/stock-ledger/internal/domain/entity"
)

// StockItemRepository define el puerto para la proyección de cantidades por (bodega, variante).
// Usado dentro de transacciones; no bloquea filas, detecta conflictos por versión.
type StockItemRepository interface {
	// Get devuelve nil, nil si el par aún no tiene ítem.
	Get(ctx context.Context, warehouseID, variantID string) (*entity.StockItem, error)
	// Insert crea el ítem con Version=1. Si otro escritor lo creó antes, domain.ErrConcurrencyConflict.
	Insert(ctx context.Context, item *entity.StockItem) error
	// Update guarda la cantidad si la versión persistida sigue siendo item.Version
	// y la incrementa; en otro caso domain.ErrConcurrencyConflict.
	Update(ctx context.Context, item *entity.StockItem) error
}
