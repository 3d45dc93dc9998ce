package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gofiber/contrib/swagger"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/adaptor"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/jhoicas/stock-ledger/internal/application/inventory"
	"github.com/jhoicas/stock-ledger/internal/application/report"
	"github.com/jhoicas/stock-ledger/internal/domain/repository"
	"github.com/jhoicas/stock-ledger/internal/infrastructure/memory"
	infrapdf "github.com/jhoicas/stock-ledger/internal/infrastructure/pdf"
	"github.com/jhoicas/stock-ledger/internal/infrastructure/postgres"
	httpRouter "github.com/jhoicas/stock-ledger/internal/interfaces/http"
	"github.com/jhoicas/stock-ledger/pkg/config"
	"github.com/jhoicas/stock-ledger/pkg/logger"
	"github.com/jhoicas/stock-ledger/pkg/metrics"
)

const swaggerFile = "./docs/swagger.json"

// repositories puertos que consumen los casos de uso, según el backend elegido.
type repositories struct {
	txRunner   inventory.TxRunner
	events     repository.StockEventRepository
	transfers  repository.StockTransferRepository
	warehouses repository.WarehouseRepository
	variants   repository.VariantRepository
	reports    repository.ReportRepository
	close      func()
}

func main() {
	cfg, err := config.Load()
	if err != nil {
		panic("cargar configuración: " + err.Error())
	}

	log := logger.New(logger.Config{
		Env:     cfg.App.Env,
		Level:   cfg.App.LogLevel,
		Service: cfg.App.Name,
	})
	log.Info().
		Str("env", cfg.App.Env).
		Str("app", cfg.App.Name).
		Str("storage", cfg.App.Storage).
		Msg("iniciando aplicación")
	if cfg.JWT.Secret == "" {
		log.Warn().Msg("JWT_SECRET vacío: todas las peticiones autenticadas serán rechazadas")
	}

	ctx := context.Background()
	repos, err := buildRepositories(ctx, cfg, log)
	if err != nil {
		log.Fatal().Err(err).Msg("inicializar almacenamiento")
	}
	defer repos.close()

	registry := prometheus.NewRegistry()
	registry.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	var ledgerMetrics *metrics.LedgerMetrics
	if cfg.Metrics.Enabled {
		ledgerMetrics = metrics.NewLedgerMetrics(registry)
	}

	stockEventUC := inventory.NewStockEventUseCase(
		repos.txRunner, repos.events, repos.warehouses, repos.variants, log, ledgerMetrics,
	)
	transferUC := inventory.NewTransferUseCase(
		repos.txRunner, repos.transfers, repos.events, repos.warehouses, repos.variants, stockEventUC, log, ledgerMetrics,
	)
	reportUC := report.NewReportUseCase(
		repos.reports, repos.warehouses, infrapdf.NewSnapshotRenderer(cfg.App.Name),
		report.Config{
			DefaultPageSize:   cfg.Report.DefaultPageSize,
			MaxPageSize:       cfg.Report.MaxPageSize,
			ExpiringDaysAhead: cfg.Report.ExpiringDaysAhead,
		},
	)

	app := fiber.New(fiber.Config{
		AppName:      cfg.App.Name,
		ReadTimeout:  time.Second * 10,
		WriteTimeout: time.Second * 10,
		IdleTimeout:  time.Second * 60,
	})
	app.Use(recover.New())

	// Swagger UI en local: http://localhost:<port>/docs (generar con swag init)
	if _, err := os.Stat(swaggerFile); err == nil {
		app.Use(swagger.New(swagger.Config{
			BasePath: "/",
			FilePath: swaggerFile,
			Path:     "docs",
			Title:    "Stock Ledger API",
		}))
	} else {
		log.Warn().Str("file", swaggerFile).Msg("swagger deshabilitado: no existe el archivo")
	}

	app.Get("/health", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{"status": "ok", "service": cfg.App.Name})
	})
	if cfg.Metrics.Enabled {
		app.Get(cfg.Metrics.Path, adaptor.HTTPHandler(promhttp.HandlerFor(registry, promhttp.HandlerOpts{})))
	}

	httpRouter.Router(app, httpRouter.RouterDeps{
		StockEventUC: stockEventUC,
		TransferUC:   transferUC,
		ReportUC:     reportUC,
		JWTSecret:    cfg.JWT.Secret,
		Logger:       log,
	})

	go func() {
		if err := app.Listen(cfg.HTTP.Addr()); err != nil {
			log.Error().Err(err).Msg("servidor HTTP finalizado")
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info().Msg("señal de apagado recibida, cerrando servidor...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := app.ShutdownWithContext(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("apagado del servidor")
	}

	log.Info().Msg("aplicación detenida")
}

func buildRepositories(ctx context.Context, cfg *config.Config, log *logger.Logger) (*repositories, error) {
	if cfg.App.Storage == config.StorageMemory {
		log.Warn().Msg("almacenamiento en memoria: los datos se pierden al reiniciar")
		store := memory.NewSeeded()
		return &repositories{
			txRunner:   store,
			events:     store.StockEvents(),
			transfers:  store.Transfers(),
			warehouses: store.Warehouses(),
			variants:   store.Variants(),
			reports:    store.Reports(),
			close:      func() {},
		}, nil
	}

	pool, err := postgres.NewPool(ctx, cfg.DB)
	if err != nil {
		return nil, err
	}
	return &repositories{
		txRunner:   postgres.NewTxRunner(pool),
		events:     postgres.NewStockEventRepository(pool),
		transfers:  postgres.NewStockTransferRepository(pool),
		warehouses: postgres.NewWarehouseRepository(pool),
		variants:   postgres.NewVariantRepository(pool),
		reports:    postgres.NewReportRepository(pool),
		close:      pool.Close,
	}, nil
}
