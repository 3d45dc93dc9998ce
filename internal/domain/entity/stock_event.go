package entity

import "time"

// Tipos de evento del ledger de stock.
const (
	EventTypeInbound  = "INBOUND"  // entrada
	EventTypeOutbound = "OUTBOUND" // salida
	EventTypeAdjust   = "ADJUST"   // ajuste (delta con signo)
)

// Códigos de motivo de un evento.
const (
	ReasonPurchase        = "PURCHASE"
	ReasonSale            = "SALE"
	ReasonReturn          = "RETURN"
	ReasonDamage          = "DAMAGE"
	ReasonCountCorrection = "COUNT_CORRECTION"
	ReasonDiscardExpired  = "DISCARD_EXPIRED"
	ReasonTransferOut     = "TRANSFER_OUT"
	ReasonTransferIn      = "TRANSFER_IN"
	ReasonOther           = "OTHER"
)

// IsValidEventType indica si t es un tipo de evento soportado.
func IsValidEventType(t string) bool {
	switch t {
	case EventTypeInbound, EventTypeOutbound, EventTypeAdjust:
		return true
	}
	return false
}

// IsValidReasonCode indica si r es un motivo soportado.
func IsValidReasonCode(r string) bool {
	switch r {
	case ReasonPurchase, ReasonSale, ReasonReturn, ReasonDamage, ReasonCountCorrection,
		ReasonDiscardExpired, ReasonTransferOut, ReasonTransferIn, ReasonOther:
		return true
	}
	return false
}

// StockEvent es un registro inmutable del ledger: uno o más deltas con signo en una bodega.
// Nunca se actualiza ni se elimina; es dueño de sus líneas.
type StockEvent struct {
	ID             string
	Type           string
	WarehouseID    string
	OccurredAt     time.Time // siempre UTC
	ReasonCode     string
	Notes          string
	IdempotencyKey string // vacío = sin clave
	CreatedBy      string
	CreatedAt      time.Time
	Lines          []StockEventLine
}

// StockEventLine delta con signo (nunca cero) para una variante.
type StockEventLine struct {
	ID        string
	EventID   string
	VariantID string
	Quantity  int64
}
