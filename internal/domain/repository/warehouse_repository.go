package repository

import (
	"context"

	"github.com/jhoicas/stock-ledger/internal/domain/entity"
)

// WarehouseRepository lectura de bodegas (el CRUD vive en otro servicio).
type WarehouseRepository interface {
	// GetByID devuelve nil, nil si la bodega no existe.
	GetByID(ctx context.Context, id string) (*entity.Warehouse, error)
}
