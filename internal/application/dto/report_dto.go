package dto

import "time"

// SnapshotRowDTO cantidad por (bodega, variante). WarehouseID vacío en vistas agregadas.
type SnapshotRowDTO struct {
	WarehouseID   string `json:"warehouse_id,omitempty"`
	WarehouseCode string `json:"warehouse_code,omitempty"`
	VariantID     string `json:"variant_id"`
	SKU           string `json:"sku"`
	ProductID     string `json:"product_id"`
	ProductName   string `json:"product_name"`
	Quantity      int64  `json:"quantity"`
}

// HistoryRowDTO línea del ledger con el saldo resultante en su (bodega, variante).
type HistoryRowDTO struct {
	EventID        string    `json:"event_id"`
	EventType      string    `json:"event_type"`
	ReasonCode     string    `json:"reason_code"`
	OccurredAt     time.Time `json:"occurred_at"`
	WarehouseID    string    `json:"warehouse_id"`
	WarehouseCode  string    `json:"warehouse_code"`
	VariantID      string    `json:"variant_id"`
	SKU            string    `json:"sku"`
	QuantityChange int64     `json:"quantity_change"`
	BalanceAfter   int64     `json:"balance_after"`
}

// LowStockRowDTO fila bajo umbral; Deficit = Quantity - Threshold (negativo).
type LowStockRowDTO struct {
	WarehouseID   string `json:"warehouse_id"`
	WarehouseCode string `json:"warehouse_code"`
	VariantID     string `json:"variant_id"`
	SKU           string `json:"sku"`
	ProductID     string `json:"product_id"`
	ProductName   string `json:"product_name"`
	Quantity      int64  `json:"quantity"`
	Threshold     int64  `json:"threshold"`
	Deficit       int64  `json:"deficit"`
}

// ExpiringRowDTO stock con vencimiento dentro de la ventana consultada.
type ExpiringRowDTO struct {
	WarehouseID     string    `json:"warehouse_id"`
	WarehouseCode   string    `json:"warehouse_code"`
	VariantID       string    `json:"variant_id"`
	SKU             string    `json:"sku"`
	ProductID       string    `json:"product_id"`
	ProductName     string    `json:"product_name"`
	ExpiryDate      time.Time `json:"expiry_date"`
	DaysUntilExpiry int       `json:"days_until_expiry"`
	Quantity        int64     `json:"quantity"`
}
