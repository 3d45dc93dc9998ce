package repository

import (
	"context"
	"time"

	"github.com/jhoicas/stock-ledger/internal/domain/entity"
)

// StockTransferFilter filtros para listar traslados.
type StockTransferFilter struct {
	Status                 string
	OriginWarehouseID      string
	DestinationWarehouseID string
	From                   *time.Time
	To                     *time.Time
	Limit                  int
	Offset                 int
}

// StockTransferRepository define el puerto de persistencia para traslados.
type StockTransferRepository interface {
	Create(ctx context.Context, transfer *entity.StockTransfer) error
	GetByID(ctx context.Context, id string) (*entity.StockTransfer, error)
	GetByIdempotencyKey(ctx context.Context, key string) (*entity.StockTransfer, error)
	// MarkConfirmed pasa el traslado de DRAFT a CONFIRMED. Si ya no está en DRAFT
	// devuelve domain.ErrTransferNotDraft; si la clave ya está ligada, domain.ErrDuplicate.
	MarkConfirmed(ctx context.Context, transfer *entity.StockTransfer) error
	// MarkCanceled pasa el traslado de DRAFT a CANCELED (domain.ErrTransferNotDraft si no aplica).
	MarkCanceled(ctx context.Context, transfer *entity.StockTransfer) error
	List(ctx context.Context, filter StockTransferFilter) ([]*entity.StockTransfer, int, error)
}
