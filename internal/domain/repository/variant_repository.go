package repository

import (
	"context"

	"github.com/jhoicas/stock-ledger/internal/domain/entity"
)

// VariantRepository lectura de variantes con su producto (catálogo externo).
type VariantRepository interface {
	// GetByID devuelve nil, nil si la variante no existe.
	GetByID(ctx context.Context, id string) (*entity.Variant, error)
}
