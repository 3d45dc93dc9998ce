package entity

import "time"

// Estados del traslado entre bodegas.
const (
	TransferStatusDraft     = "DRAFT"
	TransferStatusConfirmed = "CONFIRMED"
	TransferStatusCanceled  = "CANCELED"
)

// IsValidTransferStatus indica si s es un estado de traslado soportado.
func IsValidTransferStatus(s string) bool {
	switch s {
	case TransferStatusDraft, TransferStatusConfirmed, TransferStatusCanceled:
		return true
	}
	return false
}

// StockTransfer traslado en dos fases (borrador → confirmado | cancelado).
// Los estados terminales son inmutables.
type StockTransfer struct {
	ID                     string
	OriginWarehouseID      string
	DestinationWarehouseID string
	Status                 string
	OccurredAt             time.Time
	Notes                  string
	Lines                  []StockTransferLine
	CreatedBy              string
	CreatedAt              time.Time
	ConfirmedBy            string
	ConfirmedAt            *time.Time
	CanceledBy             string
	CanceledAt             *time.Time
	OutboundEventID        string
	InboundEventID         string
	IdempotencyKey         string
}

// StockTransferLine cantidad positiva a trasladar de una variante.
type StockTransferLine struct {
	VariantID string
	Quantity  int64
}

// IsDraft indica si el traslado aún admite transiciones.
func (t *StockTransfer) IsDraft() bool {
	return t.Status == TransferStatusDraft
}
