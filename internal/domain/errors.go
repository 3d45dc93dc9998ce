package domain

import (
	"errors"
	"strings"
)

// Errores de dominio (sin dependencias externas).
var (
	ErrNotFound     = errors.New("recurso no encontrado")
	ErrDuplicate    = errors.New("recurso duplicado")
	ErrForbidden    = errors.New("acceso denegado")
	ErrInvalidInput = errors.New("entrada inválida")

	ErrWarehouseNotFound  = errors.New("bodega no encontrada")
	ErrWarehouseInactive  = errors.New("bodega inactiva")
	ErrVariantNotFound    = errors.New("variante no encontrada")
	ErrVariantInactive    = errors.New("variante inactiva")
	ErrStockEventNotFound = errors.New("evento de stock no encontrado")

	ErrInvalidPayload             = errors.New("payload inválido")
	ErrExpiredItemMovementBlocked = errors.New("movimiento bloqueado: producto vencido")
	ErrInsufficientQuantity       = errors.New("cantidad insuficiente")
	ErrConcurrencyConflict        = errors.New("conflicto de concurrencia, reintente")
	ErrIdempotencyConflict        = errors.New("clave de idempotencia reutilizada con otro payload")

	ErrSameWarehouseTransfer       = errors.New("origen y destino deben ser distintos")
	ErrTransferNotFound            = errors.New("traslado no encontrado")
	ErrTransferNotDraft            = errors.New("el traslado no está en borrador")
	ErrTransferIdempotencyConflict = errors.New("clave de idempotencia ligada a otro traslado")
	ErrTransferPartiallyApplied    = errors.New("el traslado ya tiene la salida aplicada; confirme para completarlo")
)

// Razones estables de InvalidPayload.
const (
	ReasonEmptyLines        = "empty-lines"
	ReasonDuplicateVariant  = "duplicate-variant"
	ReasonNonPositiveQty    = "quantity-must-be-positive"
	ReasonZeroQty           = "quantity-must-not-be-zero"
	ReasonProductInactive   = "product-inactive"
	ReasonInvalidType       = "invalid-event-type"
	ReasonInvalidReason     = "invalid-reason-code"
	ReasonUnknownWarehouse  = "unknown-warehouse"
	ReasonMissingSubject    = "variant-or-product-required"
	ReasonInvalidThreshold  = "threshold-must-be-positive"
	ReasonInvalidDaysAhead  = "days-ahead-must-not-be-negative"
	ReasonUnknownSortField  = "unknown-sort-field"
	ReasonInvalidTimeWindow = "invalid-time-window"

	ReasonReservedIdempotencyKey = "reserved-idempotency-key"
)

type payloadError struct {
	reason string
}

func (e *payloadError) Error() string { return ErrInvalidPayload.Error() + ": " + e.reason }

func (e *payloadError) Unwrap() error { return ErrInvalidPayload }

// InvalidPayload construye un error que cumple errors.Is(err, ErrInvalidPayload) con la razón dada.
func InvalidPayload(reason string) error {
	return &payloadError{reason: strings.TrimSpace(reason)}
}

// PayloadReason devuelve la razón de un InvalidPayload ("" si err no lo es).
func PayloadReason(err error) string {
	var pe *payloadError
	if errors.As(err, &pe) {
		return pe.reason
	}
	return ""
}
