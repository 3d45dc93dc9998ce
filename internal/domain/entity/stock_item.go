package entity

import "time"

// StockItem es la proyección materializada de cantidad por (bodega, variante).
// Quantity nunca es negativa; Version detecta escrituras concurrentes (bloqueo optimista).
type StockItem struct {
	ID          string
	WarehouseID string
	VariantID   string
	Quantity    int64
	Version     int64
	UpdatedAt   time.Time
}

// IsNew indica que el ítem aún no fue persistido (creado perezosamente en este movimiento).
func (s *StockItem) IsNew() bool {
	return s.Version == 0
}
