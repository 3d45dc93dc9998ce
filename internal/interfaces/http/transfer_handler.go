package http

import (
	"github.com/gofiber/fiber/v2"
	"github.com/jhoicas/stock-ledger/internal/application/dto"
	"github.com/jhoicas/stock-ledger/internal/application/inventory"
	"github.com/jhoicas/stock-ledger/internal/domain/entity"
	"github.com/jhoicas/stock-ledger/pkg/logger"
)

// TransferHandler maneja traslados entre bodegas (protegido).
type TransferHandler struct {
	uc  *inventory.TransferUseCase
	log *logger.Logger
}

// NewTransferHandler construye el handler.
func NewTransferHandler(uc *inventory.TransferUseCase, log *logger.Logger) *TransferHandler {
	return &TransferHandler{uc: uc, log: log}
}

// Create godoc
// @Summary      Crear traslado en borrador
// @Tags         transfers
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        body  body  dto.CreateTransferRequest  true  "traslado"
// @Success      201  {object}  dto.TransferResponse
// @Failure      400  {object}  dto.ErrorResponse
// @Failure      403  {object}  dto.ErrorResponse
// @Failure      404  {object}  dto.ErrorResponse
// @Router       /api/transfers [post]
func (h *TransferHandler) Create(c *fiber.Ctx) error {
	var in dto.CreateTransferRequest
	if err := parseBody(c, &in); err != nil {
		return writeError(c, h.log, err)
	}
	lines := make([]inventory.TransferLineInput, 0, len(in.Lines))
	for _, l := range in.Lines {
		lines = append(lines, inventory.TransferLineInput{VariantID: l.VariantID, Quantity: l.Quantity})
	}
	transfer, err := h.uc.CreateDraft(c.UserContext(), inventory.CreateTransferInput{
		OriginWarehouseID:      in.OriginWarehouseID,
		DestinationWarehouseID: in.DestinationWarehouseID,
		OccurredAt:             in.OccurredAt,
		Notes:                  in.Notes,
		Lines:                  lines,
	}, ActorFrom(c))
	if err != nil {
		return writeError(c, h.log, err)
	}
	return c.Status(fiber.StatusCreated).JSON(toTransferResponse(transfer))
}

// Confirm godoc
// @Summary      Confirmar traslado
// @Description  Emite OUTBOUND en origen e INBOUND en destino y marca el traslado CONFIRMED.
// @Tags         transfers
// @Security     Bearer
// @Produce      json
// @Param        id               path    string  true   "ID del traslado"
// @Param        Idempotency-Key  header  string  false  "clave de idempotencia"
// @Success      200  {object}  dto.TransferResponse
// @Failure      403  {object}  dto.ErrorResponse
// @Failure      404  {object}  dto.ErrorResponse
// @Failure      409  {object}  dto.ErrorResponse
// @Router       /api/transfers/{id}/confirm [post]
func (h *TransferHandler) Confirm(c *fiber.Ctx) error {
	transfer, err := h.uc.ConfirmTransfer(c.UserContext(), c.Params("id"), c.Get(headerIdempotencyKey), ActorFrom(c))
	if err != nil {
		return writeError(c, h.log, err)
	}
	return c.JSON(toTransferResponse(transfer))
}

// Cancel godoc
// @Summary      Cancelar traslado en borrador
// @Tags         transfers
// @Security     Bearer
// @Produce      json
// @Param        id  path  string  true  "ID del traslado"
// @Success      200  {object}  dto.TransferResponse
// @Failure      403  {object}  dto.ErrorResponse
// @Failure      404  {object}  dto.ErrorResponse
// @Failure      409  {object}  dto.ErrorResponse
// @Router       /api/transfers/{id}/cancel [post]
func (h *TransferHandler) Cancel(c *fiber.Ctx) error {
	transfer, err := h.uc.CancelDraft(c.UserContext(), c.Params("id"), ActorFrom(c))
	if err != nil {
		return writeError(c, h.log, err)
	}
	return c.JSON(toTransferResponse(transfer))
}

// GetByID godoc
// @Summary      Obtener traslado
// @Tags         transfers
// @Security     Bearer
// @Produce      json
// @Param        id            path   string  true   "ID del traslado"
// @Param        warehouse_id  query  string  false  "obligatorio para seller (origen o destino)"
// @Success      200  {object}  dto.TransferResponse
// @Failure      403  {object}  dto.ErrorResponse
// @Failure      404  {object}  dto.ErrorResponse
// @Router       /api/transfers/{id} [get]
func (h *TransferHandler) GetByID(c *fiber.Ctx) error {
	transfer, err := h.uc.GetTransfer(c.UserContext(), c.Params("id"), c.Query("warehouse_id"), ActorFrom(c))
	if err != nil {
		return writeError(c, h.log, err)
	}
	return c.JSON(toTransferResponse(transfer))
}

// List godoc
// @Summary      Listar traslados
// @Tags         transfers
// @Security     Bearer
// @Produce      json
// @Param        status                    query  string  false  "DRAFT | CONFIRMED | CANCELED"
// @Param        origin_warehouse_id       query  string  false  "origen"
// @Param        destination_warehouse_id  query  string  false  "destino"
// @Param        from                      query  string  false  "RFC3339"
// @Param        to                        query  string  false  "RFC3339"
// @Param        page                      query  int     false  "página (base 0)"
// @Param        size                      query  int     false  "tamaño de página"
// @Success      200  {object}  dto.Page[dto.TransferResponse]
// @Failure      400  {object}  dto.ErrorResponse
// @Failure      403  {object}  dto.ErrorResponse
// @Router       /api/transfers [get]
func (h *TransferHandler) List(c *fiber.Ctx) error {
	from, err := queryTime(c, "from")
	if err != nil {
		return writeError(c, h.log, err)
	}
	to, err := queryTime(c, "to")
	if err != nil {
		return writeError(c, h.log, err)
	}
	page, size, err := pageParams(c)
	if err != nil {
		return writeError(c, h.log, err)
	}
	result, err := h.uc.ListTransfers(c.UserContext(), inventory.ListTransfersQuery{
		Status:                 enumValue(c.Query("status")),
		OriginWarehouseID:      c.Query("origin_warehouse_id"),
		DestinationWarehouseID: c.Query("destination_warehouse_id"),
		From:                   from,
		To:                     to,
		Page:                   page,
		Size:                   size,
	}, ActorFrom(c))
	if err != nil {
		return writeError(c, h.log, err)
	}
	return c.JSON(dto.MapPage(*result, toTransferResponse))
}

func toTransferResponse(t *entity.StockTransfer) dto.TransferResponse {
	lines := make([]dto.TransferLineResponse, 0, len(t.Lines))
	for _, l := range t.Lines {
		lines = append(lines, dto.TransferLineResponse{VariantID: l.VariantID, Quantity: l.Quantity})
	}
	return dto.TransferResponse{
		ID:                     t.ID,
		OriginWarehouseID:      t.OriginWarehouseID,
		DestinationWarehouseID: t.DestinationWarehouseID,
		Status:                 t.Status,
		OccurredAt:             t.OccurredAt,
		Notes:                  t.Notes,
		Lines:                  lines,
		CreatedBy:              t.CreatedBy,
		CreatedAt:              t.CreatedAt,
		ConfirmedBy:            t.ConfirmedBy,
		ConfirmedAt:            t.ConfirmedAt,
		CanceledBy:             t.CanceledBy,
		CanceledAt:             t.CanceledAt,
		OutboundEventID:        t.OutboundEventID,
		InboundEventID:         t.InboundEventID,
		IdempotencyKey:         t.IdempotencyKey,
	}
}
