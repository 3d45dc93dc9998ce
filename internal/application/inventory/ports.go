package inventory

import (
	"context"

	"github.com/jhoicas/stock-ledger/internal/domain/repository"
)

// TxRunner ejecuta una función dentro de una transacción de BD, pasando repositorios atados a esa tx.
// Garantiza que un evento y las proyecciones que toca se confirmen juntos.
type TxRunner interface {
	Run(ctx context.Context, fn func(
		eventRepo repository.StockEventRepository,
		itemRepo repository.StockItemRepository,
		userRepo repository.UserRepository,
	) error) error
	// RunTransfer ejecuta una transición de estado de traslado de forma atómica.
	RunTransfer(ctx context.Context, fn func(transferRepo repository.StockTransferRepository) error) error
}
