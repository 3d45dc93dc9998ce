package dto

import "time"

// CreateStockEventRequest body para POST /api/stock-events.
// La clave de idempotencia viaja en el header Idempotency-Key.
type CreateStockEventRequest struct {
	Type        string                  `json:"type"`
	WarehouseID string                  `json:"warehouse_id"`
	OccurredAt  *time.Time              `json:"occurred_at,omitempty"`
	ReasonCode  string                  `json:"reason_code"`
	Notes       string                  `json:"notes,omitempty" validate:"max=1000"`
	Lines       []StockEventLineRequest `json:"lines" validate:"dive"`
}

// StockEventLineRequest línea pedida (la cantidad se firma según el tipo).
type StockEventLineRequest struct {
	VariantID string `json:"variant_id" validate:"required"`
	Quantity  int64  `json:"quantity"`
}

// StockEventResponse evento persistido con deltas ya firmados.
type StockEventResponse struct {
	ID             string                   `json:"id"`
	Type           string                   `json:"type"`
	WarehouseID    string                   `json:"warehouse_id"`
	OccurredAt     time.Time                `json:"occurred_at"`
	ReasonCode     string                   `json:"reason_code"`
	Notes          string                   `json:"notes,omitempty"`
	IdempotencyKey string                   `json:"idempotency_key,omitempty"`
	CreatedBy      string                   `json:"created_by"`
	CreatedAt      time.Time                `json:"created_at"`
	Lines          []StockEventLineResponse `json:"lines"`
}

// StockEventLineResponse delta con signo aplicado.
type StockEventLineResponse struct {
	VariantID string `json:"variant_id"`
	Quantity  int64  `json:"quantity"`
}
