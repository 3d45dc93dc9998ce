package http

import (
	"github.com/gofiber/fiber/v2"
	"github.com/jhoicas/stock-ledger/internal/application/report"
	"github.com/jhoicas/stock-ledger/internal/domain/repository"
	"github.com/jhoicas/stock-ledger/pkg/logger"
)

// ReportHandler vistas de solo lectura sobre el ledger (protegido).
type ReportHandler struct {
	uc  *report.ReportUseCase
	log *logger.Logger
}

// NewReportHandler construye el handler.
func NewReportHandler(uc *report.ReportUseCase, log *logger.Logger) *ReportHandler {
	return &ReportHandler{uc: uc, log: log}
}

// reportFilter lee el filtro estructural común de la query.
func reportFilter(c *fiber.Ctx) repository.ReportFilter {
	return repository.ReportFilter{
		WarehouseID:       c.Query("warehouse_id"),
		ProductID:         c.Query("product_id"),
		CategoryID:        c.Query("category_id"),
		BrandID:           c.Query("brand_id"),
		VariantID:         c.Query("variant_id"),
		SKU:               c.Query("sku"),
		AttributeValueIDs: queryMulti(c, "attribute_value_id"),
	}
}

func (h *ReportHandler) snapshotQuery(c *fiber.Ctx) (report.SnapshotQuery, error) {
	asOf, err := queryTime(c, "as_of")
	if err != nil {
		return report.SnapshotQuery{}, err
	}
	aggregate, err := queryBool(c, "aggregate")
	if err != nil {
		return report.SnapshotQuery{}, err
	}
	includeZero, err := queryBool(c, "include_zero")
	if err != nil {
		return report.SnapshotQuery{}, err
	}
	page, size, err := pageParams(c)
	if err != nil {
		return report.SnapshotQuery{}, err
	}
	return report.SnapshotQuery{
		Filter:      reportFilter(c),
		AsOf:        asOf,
		Aggregate:   aggregate,
		IncludeZero: includeZero,
		Sort:        report.ParseSortOrders(queryMulti(c, "sort")),
		Page:        page,
		Size:        size,
	}, nil
}

// Snapshot godoc
// @Summary      Snapshot de inventario
// @Description  Cantidades por (bodega, variante), actuales o reconstruidas a as_of. Orden por defecto: quantity desc.
// @Tags         reports
// @Security     Bearer
// @Produce      json
// @Param        warehouse_id        query  string  false  "obligatorio para seller"
// @Param        product_id          query  string  false  "producto"
// @Param        category_id         query  string  false  "categoría"
// @Param        brand_id            query  string  false  "marca"
// @Param        variant_id          query  string  false  "variante"
// @Param        sku                 query  string  false  "SKU"
// @Param        attribute_value_id  query  []string  false  "valores de atributo (todos requeridos)"
// @Param        as_of               query  string  false  "RFC3339"
// @Param        aggregate           query  bool    false  "sumar entre bodegas"
// @Param        include_zero        query  bool    false  "incluir cantidades en cero"
// @Param        sort                query  []string  false  "campo[,asc|desc]"
// @Param        page                query  int     false  "página (base 0)"
// @Param        size                query  int     false  "tamaño de página"
// @Success      200  {object}  dto.Page[dto.SnapshotRowDTO]
// @Failure      400  {object}  dto.ErrorResponse
// @Failure      403  {object}  dto.ErrorResponse
// @Router       /api/reports/snapshot [get]
func (h *ReportHandler) Snapshot(c *fiber.Ctx) error {
	q, err := h.snapshotQuery(c)
	if err != nil {
		return writeError(c, h.log, err)
	}
	result, err := h.uc.Snapshot(c.UserContext(), q, ActorFrom(c))
	if err != nil {
		return writeError(c, h.log, err)
	}
	return c.JSON(result)
}

// SnapshotPDF godoc
// @Summary      Snapshot de inventario en PDF
// @Tags         reports
// @Security     Bearer
// @Produce      application/pdf
// @Param        warehouse_id  query  string  false  "obligatorio para seller"
// @Param        as_of         query  string  false  "RFC3339"
// @Param        aggregate     query  bool    false  "sumar entre bodegas"
// @Success      200  {file}    binary
// @Failure      400  {object}  dto.ErrorResponse
// @Failure      403  {object}  dto.ErrorResponse
// @Router       /api/reports/snapshot.pdf [get]
func (h *ReportHandler) SnapshotPDF(c *fiber.Ctx) error {
	q, err := h.snapshotQuery(c)
	if err != nil {
		return writeError(c, h.log, err)
	}
	doc, err := h.uc.SnapshotPDF(c.UserContext(), q, ActorFrom(c))
	if err != nil {
		return writeError(c, h.log, err)
	}
	c.Set(fiber.HeaderContentType, "application/pdf")
	c.Set(fiber.HeaderContentDisposition, `inline; filename="snapshot.pdf"`)
	return c.Send(doc)
}

// History godoc
// @Summary      Historial de movimientos
// @Description  Requiere variant_id o product_id. Incluye el saldo resultante por (bodega, variante).
// @Tags         reports
// @Security     Bearer
// @Produce      json
// @Param        variant_id    query  string  false  "variante"
// @Param        product_id    query  string  false  "producto"
// @Param        warehouse_id  query  string  false  "obligatorio para seller"
// @Param        from          query  string  false  "RFC3339"
// @Param        to            query  string  false  "RFC3339"
// @Param        sort          query  []string  false  "campo[,asc|desc]"
// @Param        page          query  int     false  "página (base 0)"
// @Param        size          query  int     false  "tamaño de página"
// @Success      200  {object}  dto.Page[dto.HistoryRowDTO]
// @Failure      400  {object}  dto.ErrorResponse
// @Failure      403  {object}  dto.ErrorResponse
// @Router       /api/reports/history [get]
func (h *ReportHandler) History(c *fiber.Ctx) error {
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
	result, err := h.uc.History(c.UserContext(), report.HistoryQuery{
		Filter: reportFilter(c),
		From:   from,
		To:     to,
		Sort:   report.ParseSortOrders(queryMulti(c, "sort")),
		Page:   page,
		Size:   size,
	}, ActorFrom(c))
	if err != nil {
		return writeError(c, h.log, err)
	}
	return c.JSON(result)
}

// LowStock godoc
// @Summary      Stock bajo umbral
// @Tags         reports
// @Security     Bearer
// @Produce      json
// @Param        threshold     query  int     true   "umbral (> 0)"
// @Param        warehouse_id  query  string  false  "obligatorio para seller"
// @Param        sort          query  []string  false  "campo[,asc|desc]"
// @Param        page          query  int     false  "página (base 0)"
// @Param        size          query  int     false  "tamaño de página"
// @Success      200  {object}  dto.Page[dto.LowStockRowDTO]
// @Failure      400  {object}  dto.ErrorResponse
// @Failure      403  {object}  dto.ErrorResponse
// @Router       /api/reports/low-stock [get]
func (h *ReportHandler) LowStock(c *fiber.Ctx) error {
	threshold, err := queryInt(c, "threshold", 0)
	if err != nil {
		return writeError(c, h.log, err)
	}
	page, size, err := pageParams(c)
	if err != nil {
		return writeError(c, h.log, err)
	}
	result, err := h.uc.LowStock(c.UserContext(), report.LowStockQuery{
		Filter:    reportFilter(c),
		Threshold: int64(threshold),
		Sort:      report.ParseSortOrders(queryMulti(c, "sort")),
		Page:      page,
		Size:      size,
	}, ActorFrom(c))
	if err != nil {
		return writeError(c, h.log, err)
	}
	return c.JSON(result)
}

// Expiring godoc
// @Summary      Stock por vencer
// @Tags         reports
// @Security     Bearer
// @Produce      json
// @Param        warehouse_id     query  string  false  "obligatorio para seller"
// @Param        as_of            query  string  false  "RFC3339 (por defecto ahora)"
// @Param        days_ahead       query  int     false  "ventana en días (por defecto 30)"
// @Param        include_expired  query  bool    false  "incluir ya vencidos"
// @Param        sort             query  []string  false  "campo[,asc|desc]"
// @Param        page             query  int     false  "página (base 0)"
// @Param        size             query  int     false  "tamaño de página"
// @Success      200  {object}  dto.Page[dto.ExpiringRowDTO]
// @Failure      400  {object}  dto.ErrorResponse
// @Failure      403  {object}  dto.ErrorResponse
// @Router       /api/reports/expiring [get]
func (h *ReportHandler) Expiring(c *fiber.Ctx) error {
	asOf, err := queryTime(c, "as_of")
	if err != nil {
		return writeError(c, h.log, err)
	}
	includeExpired, err := queryBool(c, "include_expired")
	if err != nil {
		return writeError(c, h.log, err)
	}
	var daysAhead *int
	if c.Query("days_ahead") != "" {
		d, err := queryInt(c, "days_ahead", 0)
		if err != nil {
			return writeError(c, h.log, err)
		}
		daysAhead = &d
	}
	page, size, err := pageParams(c)
	if err != nil {
		return writeError(c, h.log, err)
	}
	result, err := h.uc.Expiring(c.UserContext(), report.ExpiringQuery{
		Filter:         reportFilter(c),
		AsOf:           asOf,
		DaysAhead:      daysAhead,
		IncludeExpired: includeExpired,
		Sort:           report.ParseSortOrders(queryMulti(c, "sort")),
		Page:           page,
		Size:           size,
	}, ActorFrom(c))
	if err != nil {
		return writeError(c, h.log, err)
	}
	return c.JSON(result)
}
