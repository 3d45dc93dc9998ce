package http

import (
	"errors"

	"github.com/gofiber/fiber/v2"
	"github.com/jhoicas/stock-ledger/internal/application/dto"
	"github.com/jhoicas/stock-ledger/internal/domain"
	"github.com/jhoicas/stock-ledger/pkg/logger"
)

// errorMapping traducción estable de un error de dominio a HTTP.
type errorMapping struct {
	err       error
	status    int
	code      string
	retryable bool
}

// errorTable se recorre en orden; los errores más específicos van primero.
var errorTable = []errorMapping{
	{domain.ErrForbidden, fiber.StatusForbidden, "FORBIDDEN", false},
	{domain.ErrWarehouseNotFound, fiber.StatusNotFound, "WAREHOUSE_NOT_FOUND", false},
	{domain.ErrWarehouseInactive, fiber.StatusUnprocessableEntity, "WAREHOUSE_INACTIVE", false},
	{domain.ErrVariantNotFound, fiber.StatusNotFound, "VARIANT_NOT_FOUND", false},
	{domain.ErrVariantInactive, fiber.StatusUnprocessableEntity, "VARIANT_INACTIVE", false},
	{domain.ErrStockEventNotFound, fiber.StatusNotFound, "STOCK_EVENT_NOT_FOUND", false},
	{domain.ErrInvalidPayload, fiber.StatusBadRequest, "INVALID_PAYLOAD", false},
	{domain.ErrExpiredItemMovementBlocked, fiber.StatusUnprocessableEntity, "EXPIRED_ITEM_MOVEMENT_BLOCKED", false},
	{domain.ErrInsufficientQuantity, fiber.StatusConflict, "INSUFFICIENT_QUANTITY", false},
	{domain.ErrConcurrencyConflict, fiber.StatusConflict, "CONCURRENCY_CONFLICT", true},
	{domain.ErrIdempotencyConflict, fiber.StatusConflict, "IDEMPOTENCY_CONFLICT", false},
	{domain.ErrSameWarehouseTransfer, fiber.StatusBadRequest, "SAME_WAREHOUSE_TRANSFER", false},
	{domain.ErrTransferNotFound, fiber.StatusNotFound, "TRANSFER_NOT_FOUND", false},
	{domain.ErrTransferNotDraft, fiber.StatusConflict, "TRANSFER_NOT_DRAFT", false},
	{domain.ErrTransferIdempotencyConflict, fiber.StatusConflict, "TRANSFER_IDEMPOTENCY_CONFLICT", false},
	{domain.ErrTransferPartiallyApplied, fiber.StatusConflict, "TRANSFER_PARTIALLY_APPLIED", false},
	{domain.ErrInvalidInput, fiber.StatusBadRequest, "INVALID_BODY", false},
	{domain.ErrNotFound, fiber.StatusNotFound, "NOT_FOUND", false},
}

// writeError responde con el código estable del error; lo no mapeado es 500 y se registra.
func writeError(c *fiber.Ctx, log *logger.Logger, err error) error {
	for _, m := range errorTable {
		if errors.Is(err, m.err) {
			return c.Status(m.status).JSON(dto.ErrorResponse{
				Code:      m.code,
				Message:   err.Error(),
				Reason:    domain.PayloadReason(err),
				Retryable: m.retryable,
			})
		}
	}
	log.Error().Err(err).Str("path", c.Path()).Str("method", c.Method()).Msg("error interno")
	return c.Status(fiber.StatusInternalServerError).JSON(dto.ErrorResponse{Code: "INTERNAL", Message: "error interno"})
}
