package repository

import (
	"context"
	"time"
)

// ReportFilter filtro estructural común a todas las vistas de reporte.
type ReportFilter struct {
	WarehouseID       string
	ProductID         string
	CategoryID        string
	BrandID           string
	VariantID         string
	SKU               string
	AttributeValueIDs []string // la variante debe tenerlos todos
}

// SnapshotRow cantidad agregada por (bodega, variante); WarehouseID vacío si se agregó entre bodegas.
type SnapshotRow struct {
	WarehouseID   string
	WarehouseCode string
	VariantID     string
	SKU           string
	ProductID     string
	ProductName   string
	Quantity      int64
}

// LedgerEntry línea del ledger con los datos de su evento.
type LedgerEntry struct {
	EventID        string
	EventType      string
	ReasonCode     string
	OccurredAt     time.Time
	WarehouseID    string
	WarehouseCode  string
	VariantID      string
	SKU            string
	ProductID      string
	QuantityChange int64
}

// BalanceKey clave de saldo por (bodega, variante).
type BalanceKey struct {
	WarehouseID string
	VariantID   string
}

// ExpiringRow stock actual de una variante con fecha de vencimiento de su producto.
type ExpiringRow struct {
	WarehouseID   string
	WarehouseCode string
	VariantID     string
	SKU           string
	ProductID     string
	ProductName   string
	ExpiryDate    time.Time
	Quantity      int64
}

// ReportRepository consultas de agregación sin orden ni paginación (se resuelven en memoria).
type ReportRepository interface {
	// Snapshot cantidades actuales (asOf nil) o reconstruidas desde el ledger hasta asOf inclusive.
	Snapshot(ctx context.Context, filter ReportFilter, asOf *time.Time, aggregate bool) ([]SnapshotRow, error)
	// LedgerEntries líneas del ledger en [from, to] (extremos opcionales).
	LedgerEntries(ctx context.Context, filter ReportFilter, from, to *time.Time) ([]LedgerEntry, error)
	// BalancesBefore suma de deltas estrictamente anteriores a before, por (bodega, variante).
	BalancesBefore(ctx context.Context, filter ReportFilter, before time.Time) (map[BalanceKey]int64, error)
	// Expiring stock con cantidad > 0 cuyo producto vence hasta until inclusive (y desde from si no es nil).
	Expiring(ctx context.Context, filter ReportFilter, from *time.Time, until time.Time) ([]ExpiringRow, error)
}
