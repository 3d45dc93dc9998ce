package repository

import (
	"context"

	"github.com/jhoicas/stock-ledger/internal/domain/entity"
)

// UserRepository lectura de usuarios para re-adjuntar el actor dentro de la transacción.
type UserRepository interface {
	// GetByID devuelve nil, nil si el usuario no existe.
	GetByID(ctx context.Context, id string) (*entity.User, error)
}
