package http

import (
	"github.com/gofiber/fiber/v2"
	"github.com/jhoicas/stock-ledger/internal/application/inventory"
	"github.com/jhoicas/stock-ledger/internal/application/report"
	"github.com/jhoicas/stock-ledger/internal/domain/entity"
	"github.com/jhoicas/stock-ledger/pkg/logger"
)

// RouterDeps dependencias para el router.
type RouterDeps struct {
	StockEventUC *inventory.StockEventUseCase
	TransferUC   *inventory.TransferUseCase
	ReportUC     *report.ReportUseCase
	JWTSecret    string
	Logger       *logger.Logger
}

// Router registra las rutas de la API.
func Router(app *fiber.App, deps RouterDeps) {
	log := deps.Logger
	if log == nil {
		log = logger.Nop()
	}
	log = log.Named(logger.ComponentHTTP)

	api := app.Group("/api", AuthMiddleware(deps.JWTSecret))
	anyRole := RequireRole(entity.RoleAdmin, entity.RoleManager, entity.RoleSeller)
	management := RequireRole(entity.RoleAdmin, entity.RoleManager)

	// Ledger: seller puede registrar salidas; el caso de uso valida el tipo por rol.
	events := api.Group("/stock-events", anyRole)
	eventHandler := NewStockEventHandler(deps.StockEventUC, log)
	events.Post("/", eventHandler.Create)
	events.Get("/", eventHandler.List)
	events.Get("/:id", eventHandler.GetByID)

	transfers := api.Group("/transfers", anyRole)
	transferHandler := NewTransferHandler(deps.TransferUC, log)
	transfers.Post("/", management, transferHandler.Create)
	transfers.Get("/", transferHandler.List)
	transfers.Get("/:id", transferHandler.GetByID)
	transfers.Post("/:id/confirm", management, transferHandler.Confirm)
	transfers.Post("/:id/cancel", management, transferHandler.Cancel)

	reports := api.Group("/reports", anyRole)
	reportHandler := NewReportHandler(deps.ReportUC, log)
	reports.Get("/snapshot", reportHandler.Snapshot)
	reports.Get("/snapshot.pdf", reportHandler.SnapshotPDF)
	reports.Get("/history", reportHandler.History)
	reports.Get("/low-stock", reportHandler.LowStock)
	reports.Get("/expiring", reportHandler.Expiring)
}
