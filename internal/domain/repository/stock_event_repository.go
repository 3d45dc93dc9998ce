package repository

import (
	"context"
	"time"

	"github.com/jhoicas/stock-ledger/internal/domain/entity"
)

// StockEventFilter filtros combinables para listar eventos del ledger.
type StockEventFilter struct {
	Type        string
	WarehouseID string
	VariantID   string
	ReasonCode  string
	From        *time.Time
	To          *time.Time
	Limit       int
	Offset      int
}

// StockEventRepository define el puerto de persistencia del ledger (solo inserción y lectura).
type StockEventRepository interface {
	// Create persiste el evento con sus líneas. Una clave de idempotencia repetida
	// devuelve un error que cumple errors.Is(err, domain.ErrDuplicate).
	Create(ctx context.Context, event *entity.StockEvent) error
	GetByID(ctx context.Context, id string) (*entity.StockEvent, error)
	GetByIdempotencyKey(ctx context.Context, key string) (*entity.StockEvent, error)
	// List devuelve la página pedida (más recientes primero) y el total sin paginar.
	List(ctx context.Context, filter StockEventFilter) ([]*entity.StockEvent, int, error)
}
