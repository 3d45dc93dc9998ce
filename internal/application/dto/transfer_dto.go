package dto

import "time"

// CreateTransferRequest body para POST /api/transfers.
type CreateTransferRequest struct {
	OriginWarehouseID      string                `json:"origin_warehouse_id"`
	DestinationWarehouseID string                `json:"destination_warehouse_id"`
	OccurredAt             *time.Time            `json:"occurred_at,omitempty"`
	Notes                  string                `json:"notes,omitempty" validate:"max=1000"`
	Lines                  []TransferLineRequest `json:"lines" validate:"dive"`
}

// TransferLineRequest línea de traslado.
type TransferLineRequest struct {
	VariantID string `json:"variant_id" validate:"required"`
	Quantity  int64  `json:"quantity"`
}

// TransferResponse traslado con su estado y, si está confirmado, los eventos generados.
type TransferResponse struct {
	ID                     string                 `json:"id"`
	OriginWarehouseID      string                 `json:"origin_warehouse_id"`
	DestinationWarehouseID string                 `json:"destination_warehouse_id"`
	Status                 string                 `json:"status"`
	OccurredAt             time.Time              `json:"occurred_at"`
	Notes                  string                 `json:"notes,omitempty"`
	Lines                  []TransferLineResponse `json:"lines"`
	CreatedBy              string                 `json:"created_by"`
	CreatedAt              time.Time              `json:"created_at"`
	ConfirmedBy            string                 `json:"confirmed_by,omitempty"`
	ConfirmedAt            *time.Time             `json:"confirmed_at,omitempty"`
	CanceledBy             string                 `json:"canceled_by,omitempty"`
	CanceledAt             *time.Time             `json:"canceled_at,omitempty"`
	OutboundEventID        string                 `json:"outbound_event_id,omitempty"`
	InboundEventID         string                 `json:"inbound_event_id,omitempty"`
	IdempotencyKey         string                 `json:"idempotency_key,omitempty"`
}

// TransferLineResponse línea de traslado.
type TransferLineResponse struct {
	VariantID string `json:"variant_id"`
	Quantity  int64  `json:"quantity"`
}
