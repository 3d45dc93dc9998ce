package report

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/jhoicas/stock-ledger/internal/application/dto"
	"github.com/jhoicas/stock-ledger/internal/application/inventory"
	"github.com/jhoicas/stock-ledger/internal/domain"
	"github.com/jhoicas/stock-ledger/internal/domain/entity"
	"github.com/jhoicas/stock-ledger/internal/domain/repository"
)

// SnapshotRenderer genera la representación imprimible (PDF) de un snapshot.
type SnapshotRenderer interface {
	RenderSnapshot(ctx context.Context, title string, generatedAt time.Time, rows []dto.SnapshotRowDTO) ([]byte, error)
}

// Config parámetros del motor de reportes.
type Config struct {
	DefaultPageSize   int
	MaxPageSize       int
	ExpiringDaysAhead int
}

// ReportUseCase motor de reportes de solo lectura sobre el ledger y la proyección de stock.
// La capa de consulta devuelve agregados sin orden; el orden multi-criterio y la paginación
// se resuelven aquí en memoria.
type ReportUseCase struct {
	repo          repository.ReportRepository
	warehouseRepo repository.WarehouseRepository
	renderer      SnapshotRenderer
	cfg           Config
	now           func() time.Time
}

// NewReportUseCase construye el motor. renderer puede ser nil si no se exporta PDF.
func NewReportUseCase(
	repo repository.ReportRepository,
	warehouseRepo repository.WarehouseRepository,
	renderer SnapshotRenderer,
	cfg Config,
) *ReportUseCase {
	if cfg.DefaultPageSize <= 0 {
		cfg.DefaultPageSize = dto.DefaultPageSize
	}
	if cfg.MaxPageSize < cfg.DefaultPageSize {
		cfg.MaxPageSize = dto.MaxPageSize
	}
	if cfg.ExpiringDaysAhead <= 0 {
		cfg.ExpiringDaysAhead = 30
	}
	return &ReportUseCase{
		repo:          repo,
		warehouseRepo: warehouseRepo,
		renderer:      renderer,
		cfg:           cfg,
		now:           time.Now,
	}
}

// SnapshotQuery cantidades por (bodega, variante) a la fecha asOf (nil = ahora).
type SnapshotQuery struct {
	Filter      repository.ReportFilter
	AsOf        *time.Time
	Aggregate   bool // suma entre bodegas
	IncludeZero bool
	Sort        []SortOrder
	Page        int
	Size        int
}

// HistoryQuery movimientos de una variante o producto en una ventana opcional.
type HistoryQuery struct {
	Filter repository.ReportFilter
	From   *time.Time
	To     *time.Time
	Sort   []SortOrder
	Page   int
	Size   int
}

// LowStockQuery filas con cantidad menor al umbral.
type LowStockQuery struct {
	Filter    repository.ReportFilter
	Threshold int64
	Sort      []SortOrder
	Page      int
	Size      int
}

// ExpiringQuery stock cuyo producto vence en [asOf, asOf+daysAhead].
type ExpiringQuery struct {
	Filter         repository.ReportFilter
	AsOf           *time.Time
	DaysAhead      *int // nil = valor configurado (30)
	IncludeExpired bool
	Sort           []SortOrder
	Page           int
	Size           int
}

var (
	snapshotDefaultSort = []SortOrder{{Field: "quantity", Ascending: false}}
	historyDefaultSort  = []SortOrder{{Field: "occurredAt", Ascending: true}}
	lowStockDefaultSort = []SortOrder{{Field: "deficit", Ascending: true}}
	expiringDefaultSort = []SortOrder{{Field: "expiryDate", Ascending: true}}
)

var snapshotFields = map[string]comparator[dto.SnapshotRowDTO]{
	"warehouseCode": func(a, b dto.SnapshotRowDTO) int { return strings.Compare(a.WarehouseCode, b.WarehouseCode) },
	"sku":           func(a, b dto.SnapshotRowDTO) int { return strings.Compare(a.SKU, b.SKU) },
	"productName":   func(a, b dto.SnapshotRowDTO) int { return strings.Compare(a.ProductName, b.ProductName) },
	"quantity":      func(a, b dto.SnapshotRowDTO) int { return compareInt64(a.Quantity, b.Quantity) },
}

var historyFields = map[string]comparator[dto.HistoryRowDTO]{
	"occurredAt":     func(a, b dto.HistoryRowDTO) int { return a.OccurredAt.Compare(b.OccurredAt) },
	"quantityChange": func(a, b dto.HistoryRowDTO) int { return compareInt64(a.QuantityChange, b.QuantityChange) },
	"balanceAfter":   func(a, b dto.HistoryRowDTO) int { return compareInt64(a.BalanceAfter, b.BalanceAfter) },
	"warehouseCode":  func(a, b dto.HistoryRowDTO) int { return strings.Compare(a.WarehouseCode, b.WarehouseCode) },
}

var lowStockFields = map[string]comparator[dto.LowStockRowDTO]{
	"warehouseCode": func(a, b dto.LowStockRowDTO) int { return strings.Compare(a.WarehouseCode, b.WarehouseCode) },
	"sku":           func(a, b dto.LowStockRowDTO) int { return strings.Compare(a.SKU, b.SKU) },
	"productName":   func(a, b dto.LowStockRowDTO) int { return strings.Compare(a.ProductName, b.ProductName) },
	"quantity":      func(a, b dto.LowStockRowDTO) int { return compareInt64(a.Quantity, b.Quantity) },
	"deficit":       func(a, b dto.LowStockRowDTO) int { return compareInt64(a.Deficit, b.Deficit) },
}

var expiringFields = map[string]comparator[dto.ExpiringRowDTO]{
	"expiryDate":      func(a, b dto.ExpiringRowDTO) int { return a.ExpiryDate.Compare(b.ExpiryDate) },
	"daysUntilExpiry": func(a, b dto.ExpiringRowDTO) int { return a.DaysUntilExpiry - b.DaysUntilExpiry },
	"quantity":        func(a, b dto.ExpiringRowDTO) int { return compareInt64(a.Quantity, b.Quantity) },
	"sku":             func(a, b dto.ExpiringRowDTO) int { return strings.Compare(a.SKU, b.SKU) },
	"warehouseCode":   func(a, b dto.ExpiringRowDTO) int { return strings.Compare(a.WarehouseCode, b.WarehouseCode) },
}

// Snapshot devuelve la página pedida del snapshot ordenado (por defecto cantidad descendente).
func (uc *ReportUseCase) Snapshot(ctx context.Context, q SnapshotQuery, actor *entity.Actor) (*dto.Page[dto.SnapshotRowDTO], error) {
	rows, err := uc.snapshotRows(ctx, q, actor)
	if err != nil {
		return nil, err
	}
	page, size := dto.NormalizePage(q.Page, q.Size, uc.cfg.DefaultPageSize, uc.cfg.MaxPageSize)
	out := dto.Paginate(rows, page, size)
	return &out, nil
}

// SnapshotPDF genera el PDF del snapshot completo (sin paginar) con el mismo orden.
func (uc *ReportUseCase) SnapshotPDF(ctx context.Context, q SnapshotQuery, actor *entity.Actor) ([]byte, error) {
	if uc.renderer == nil {
		return nil, fmt.Errorf("report: exportación PDF no configurada")
	}
	rows, err := uc.snapshotRows(ctx, q, actor)
	if err != nil {
		return nil, err
	}
	title := "Snapshot de inventario"
	if q.AsOf != nil {
		title += " al " + q.AsOf.UTC().Format("2006-01-02 15:04")
	}
	return uc.renderer.RenderSnapshot(ctx, title, uc.now().UTC(), rows)
}

func (uc *ReportUseCase) snapshotRows(ctx context.Context, q SnapshotQuery, actor *entity.Actor) ([]dto.SnapshotRowDTO, error) {
	if err := uc.authorize(ctx, q.Filter, actor); err != nil {
		return nil, err
	}
	var asOf *time.Time
	if q.AsOf != nil {
		t := q.AsOf.UTC()
		asOf = &t
	}
	raw, err := uc.repo.Snapshot(ctx, q.Filter, asOf, q.Aggregate)
	if err != nil {
		return nil, err
	}
	rows := make([]dto.SnapshotRowDTO, 0, len(raw))
	for _, r := range raw {
		if r.Quantity == 0 && !q.IncludeZero {
			continue
		}
		rows = append(rows, dto.SnapshotRowDTO{
			WarehouseID:   r.WarehouseID,
			WarehouseCode: r.WarehouseCode,
			VariantID:     r.VariantID,
			SKU:           r.SKU,
			ProductID:     r.ProductID,
			ProductName:   r.ProductName,
			Quantity:      r.Quantity,
		})
	}
	if err := applySort(rows, q.Sort, snapshotDefaultSort, snapshotFields); err != nil {
		return nil, err
	}
	return rows, nil
}

// History devuelve las líneas del ledger con su saldo resultante por (bodega, variante).
// Con ventana de inicio, el saldo de apertura se calcula con los movimientos anteriores.
func (uc *ReportUseCase) History(ctx context.Context, q HistoryQuery, actor *entity.Actor) (*dto.Page[dto.HistoryRowDTO], error) {
	if err := uc.authorize(ctx, q.Filter, actor); err != nil {
		return nil, err
	}
	if q.Filter.VariantID == "" && q.Filter.ProductID == "" {
		return nil, domain.InvalidPayload(domain.ReasonMissingSubject)
	}
	if q.From != nil && q.To != nil && q.To.Before(*q.From) {
		return nil, domain.InvalidPayload(domain.ReasonInvalidTimeWindow)
	}

	entries, err := uc.repo.LedgerEntries(ctx, q.Filter, q.From, q.To)
	if err != nil {
		return nil, err
	}
	balances, err := uc.calculateBalanceBefore(ctx, q.Filter, q.From)
	if err != nil {
		return nil, err
	}

	sort.SliceStable(entries, func(i, j int) bool {
		if !entries[i].OccurredAt.Equal(entries[j].OccurredAt) {
			return entries[i].OccurredAt.Before(entries[j].OccurredAt)
		}
		return entries[i].EventID < entries[j].EventID
	})

	rows := make([]dto.HistoryRowDTO, 0, len(entries))
	for _, e := range entries {
		key := repository.BalanceKey{WarehouseID: e.WarehouseID, VariantID: e.VariantID}
		balances[key] += e.QuantityChange
		rows = append(rows, dto.HistoryRowDTO{
			EventID:        e.EventID,
			EventType:      e.EventType,
			ReasonCode:     e.ReasonCode,
			OccurredAt:     e.OccurredAt,
			WarehouseID:    e.WarehouseID,
			WarehouseCode:  e.WarehouseCode,
			VariantID:      e.VariantID,
			SKU:            e.SKU,
			QuantityChange: e.QuantityChange,
			BalanceAfter:   balances[key],
		})
	}
	if err := applySort(rows, q.Sort, historyDefaultSort, historyFields); err != nil {
		return nil, err
	}
	page, size := dto.NormalizePage(q.Page, q.Size, uc.cfg.DefaultPageSize, uc.cfg.MaxPageSize)
	out := dto.Paginate(rows, page, size)
	return &out, nil
}

// calculateBalanceBefore saldo de apertura por (bodega, variante) antes de from.
func (uc *ReportUseCase) calculateBalanceBefore(ctx context.Context, filter repository.ReportFilter, from *time.Time) (map[repository.BalanceKey]int64, error) {
	if from == nil {
		return map[repository.BalanceKey]int64{}, nil
	}
	balances, err := uc.repo.BalancesBefore(ctx, filter, from.UTC())
	if err != nil {
		return nil, err
	}
	if balances == nil {
		balances = map[repository.BalanceKey]int64{}
	}
	return balances, nil
}

// LowStock devuelve filas con cantidad < umbral, por defecto las más deficitarias primero.
func (uc *ReportUseCase) LowStock(ctx context.Context, q LowStockQuery, actor *entity.Actor) (*dto.Page[dto.LowStockRowDTO], error) {
	if err := uc.authorize(ctx, q.Filter, actor); err != nil {
		return nil, err
	}
	if q.Threshold <= 0 {
		return nil, domain.InvalidPayload(domain.ReasonInvalidThreshold)
	}
	raw, err := uc.repo.Snapshot(ctx, q.Filter, nil, false)
	if err != nil {
		return nil, err
	}
	rows := make([]dto.LowStockRowDTO, 0)
	for _, r := range raw {
		if r.Quantity >= q.Threshold {
			continue
		}
		rows = append(rows, dto.LowStockRowDTO{
			WarehouseID:   r.WarehouseID,
			WarehouseCode: r.WarehouseCode,
			VariantID:     r.VariantID,
			SKU:           r.SKU,
			ProductID:     r.ProductID,
			ProductName:   r.ProductName,
			Quantity:      r.Quantity,
			Threshold:     q.Threshold,
			Deficit:       r.Quantity - q.Threshold,
		})
	}
	if err := applySort(rows, q.Sort, lowStockDefaultSort, lowStockFields); err != nil {
		return nil, err
	}
	page, size := dto.NormalizePage(q.Page, q.Size, uc.cfg.DefaultPageSize, uc.cfg.MaxPageSize)
	out := dto.Paginate(rows, page, size)
	return &out, nil
}

// Expiring devuelve stock cuyo producto vence entre asOf y asOf+daysAhead (por fecha),
// opcionalmente incluyendo lo ya vencido, con los días restantes relativos a asOf.
func (uc *ReportUseCase) Expiring(ctx context.Context, q ExpiringQuery, actor *entity.Actor) (*dto.Page[dto.ExpiringRowDTO], error) {
	if err := uc.authorize(ctx, q.Filter, actor); err != nil {
		return nil, err
	}
	daysAhead := uc.cfg.ExpiringDaysAhead
	if q.DaysAhead != nil {
		daysAhead = *q.DaysAhead
	}
	if daysAhead < 0 {
		return nil, domain.InvalidPayload(domain.ReasonInvalidDaysAhead)
	}
	asOf := uc.now()
	if q.AsOf != nil {
		asOf = *q.AsOf
	}
	asOfDate := entity.DateOf(asOf)
	until := asOfDate.AddDate(0, 0, daysAhead)
	var from *time.Time
	if !q.IncludeExpired {
		from = &asOfDate
	}

	raw, err := uc.repo.Expiring(ctx, q.Filter, from, until)
	if err != nil {
		return nil, err
	}
	rows := make([]dto.ExpiringRowDTO, 0, len(raw))
	for _, r := range raw {
		expiry := entity.DateOf(r.ExpiryDate)
		rows = append(rows, dto.ExpiringRowDTO{
			WarehouseID:     r.WarehouseID,
			WarehouseCode:   r.WarehouseCode,
			VariantID:       r.VariantID,
			SKU:             r.SKU,
			ProductID:       r.ProductID,
			ProductName:     r.ProductName,
			ExpiryDate:      expiry,
			DaysUntilExpiry: int(expiry.Sub(asOfDate).Hours() / 24),
			Quantity:        r.Quantity,
		})
	}
	if err := applySort(rows, q.Sort, expiringDefaultSort, expiringFields); err != nil {
		return nil, err
	}
	page, size := dto.NormalizePage(q.Page, q.Size, uc.cfg.DefaultPageSize, uc.cfg.MaxPageSize)
	out := dto.Paginate(rows, page, size)
	return &out, nil
}

// authorize aplica la regla de lectura por rol y valida que la bodega filtrada exista.
func (uc *ReportUseCase) authorize(ctx context.Context, filter repository.ReportFilter, actor *entity.Actor) error {
	if err := inventory.AuthorizeWarehouseRead(actor, filter.WarehouseID); err != nil {
		return err
	}
	if filter.WarehouseID == "" {
		return nil
	}
	wh, err := uc.warehouseRepo.GetByID(ctx, filter.WarehouseID)
	if err != nil {
		return err
	}
	if wh == nil {
		return domain.InvalidPayload(domain.ReasonUnknownWarehouse)
	}
	return nil
}
