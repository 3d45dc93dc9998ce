package http

import (
	"github.com/gofiber/fiber/v2"
	"github.com/jhoicas/stock-ledger/internal/application/dto"
	"github.com/jhoicas/stock-ledger/internal/application/inventory"
	"github.com/jhoicas/stock-ledger/internal/domain/entity"
	"github.com/jhoicas/stock-ledger/pkg/logger"
)

// StockEventHandler maneja las peticiones HTTP del ledger (protegido).
type StockEventHandler struct {
	uc  *inventory.StockEventUseCase
	log *logger.Logger
}

// NewStockEventHandler construye el handler.
func NewStockEventHandler(uc *inventory.StockEventUseCase, log *logger.Logger) *StockEventHandler {
	return &StockEventHandler{uc: uc, log: log}
}

// Create godoc
// @Summary      Registrar evento de stock
// @Description  INBOUND/OUTBOUND exigen cantidades positivas; ADJUST acepta deltas con signo.
// @Description  Con el mismo Idempotency-Key y payload compatible devuelve el evento existente.
// @Tags         stock-events
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        Idempotency-Key  header  string                       false  "clave de idempotencia"
// @Param        body             body    dto.CreateStockEventRequest  true   "evento"
// @Success      201  {object}  dto.StockEventResponse
// @Failure      400  {object}  dto.ErrorResponse
// @Failure      403  {object}  dto.ErrorResponse
// @Failure      404  {object}  dto.ErrorResponse
// @Failure      409  {object}  dto.ErrorResponse
// @Failure      422  {object}  dto.ErrorResponse
// @Router       /api/stock-events [post]
func (h *StockEventHandler) Create(c *fiber.Ctx) error {
	var in dto.CreateStockEventRequest
	if err := parseBody(c, &in); err != nil {
		return writeError(c, h.log, err)
	}
	lines := make([]inventory.StockEventLineInput, 0, len(in.Lines))
	for _, l := range in.Lines {
		lines = append(lines, inventory.StockEventLineInput{VariantID: l.VariantID, Quantity: l.Quantity})
	}
	event, err := h.uc.CreateStockEvent(c.UserContext(), inventory.StockEventInput{
		Type:        enumValue(in.Type),
		WarehouseID: in.WarehouseID,
		OccurredAt:  in.OccurredAt,
		ReasonCode:  enumValue(in.ReasonCode),
		Notes:       in.Notes,
		Lines:       lines,
	}, c.Get(headerIdempotencyKey), ActorFrom(c))
	if err != nil {
		return writeError(c, h.log, err)
	}
	return c.Status(fiber.StatusCreated).JSON(toStockEventResponse(event))
}

// GetByID godoc
// @Summary      Obtener evento de stock
// @Tags         stock-events
// @Security     Bearer
// @Produce      json
// @Param        id            path   string  true   "ID del evento"
// @Param        warehouse_id  query  string  false  "obligatorio para seller"
// @Success      200  {object}  dto.StockEventResponse
// @Failure      403  {object}  dto.ErrorResponse
// @Failure      404  {object}  dto.ErrorResponse
// @Router       /api/stock-events/{id} [get]
func (h *StockEventHandler) GetByID(c *fiber.Ctx) error {
	event, err := h.uc.GetStockEvent(c.UserContext(), c.Params("id"), c.Query("warehouse_id"), ActorFrom(c))
	if err != nil {
		return writeError(c, h.log, err)
	}
	return c.JSON(toStockEventResponse(event))
}

// List godoc
// @Summary      Listar eventos de stock
// @Tags         stock-events
// @Security     Bearer
// @Produce      json
// @Param        type          query  string  false  "INBOUND | OUTBOUND | ADJUST"
// @Param        warehouse_id  query  string  false  "obligatorio para seller"
// @Param        variant_id    query  string  false  "variante"
// @Param        reason_code   query  string  false  "motivo"
// @Param        from          query  string  false  "RFC3339"
// @Param        to            query  string  false  "RFC3339"
// @Param        page          query  int     false  "página (base 0)"
// @Param        size          query  int     false  "tamaño de página"
// @Success      200  {object}  dto.Page[dto.StockEventResponse]
// @Failure      400  {object}  dto.ErrorResponse
// @Failure      403  {object}  dto.ErrorResponse
// @Router       /api/stock-events [get]
func (h *StockEventHandler) List(c *fiber.Ctx) error {
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
	result, err := h.uc.ListStockEvents(c.UserContext(), inventory.ListStockEventsQuery{
		Type:        enumValue(c.Query("type")),
		WarehouseID: c.Query("warehouse_id"),
		VariantID:   c.Query("variant_id"),
		ReasonCode:  enumValue(c.Query("reason_code")),
		From:        from,
		To:          to,
		Page:        page,
		Size:        size,
	}, ActorFrom(c))
	if err != nil {
		return writeError(c, h.log, err)
	}
	return c.JSON(dto.MapPage(*result, toStockEventResponse))
}

func toStockEventResponse(e *entity.StockEvent) dto.StockEventResponse {
	lines := make([]dto.StockEventLineResponse, 0, len(e.Lines))
	for _, l := range e.Lines {
		lines = append(lines, dto.StockEventLineResponse{VariantID: l.VariantID, Quantity: l.Quantity})
	}
	return dto.StockEventResponse{
		ID:             e.ID,
		Type:           e.Type,
		WarehouseID:    e.WarehouseID,
		OccurredAt:     e.OccurredAt,
		ReasonCode:     e.ReasonCode,
		Notes:          e.Notes,
		IdempotencyKey: e.IdempotencyKey,
		CreatedBy:      e.CreatedBy,
		CreatedAt:      e.CreatedAt,
		Lines:          lines,
	}
}
