package inventory

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jhoicas/stock-ledger/internal/application/dto"
	"github.com/jhoicas/stock-ledger/internal/domain"
	"github.com/jhoicas/stock-ledger/internal/domain/entity"
	"github.com/jhoicas/stock-ledger/internal/domain/repository"
	"github.com/jhoicas/stock-ledger/pkg/logger"
	"github.com/jhoicas/stock-ledger/pkg/metrics"
)

// StockEventUseCase es el escritor del ledger: valida y agrega eventos, actualiza la proyección
// StockItem, impide cantidades negativas e implementa la idempotencia por clave.
type StockEventUseCase struct {
	txRunner      TxRunner
	eventRepo     repository.StockEventRepository
	warehouseRepo repository.WarehouseRepository
	variantRepo   repository.VariantRepository
	log           *logger.Logger
	metrics       *metrics.LedgerMetrics
	now           func() time.Time
}

// NewStockEventUseCase construye el caso de uso. m puede ser nil.
func NewStockEventUseCase(
	txRunner TxRunner,
	eventRepo repository.StockEventRepository,
	warehouseRepo repository.WarehouseRepository,
	variantRepo repository.VariantRepository,
	log *logger.Logger,
	m *metrics.LedgerMetrics,
) *StockEventUseCase {
	if log == nil {
		log = logger.Nop()
	}
	return &StockEventUseCase{
		txRunner:      txRunner,
		eventRepo:     eventRepo,
		warehouseRepo: warehouseRepo,
		variantRepo:   variantRepo,
		log:           log.Named(logger.ComponentStockEvents),
		metrics:       m,
		now:           time.Now,
	}
}

// StockEventInput datos de un movimiento. Quantity de cada línea se interpreta según Type:
// INBOUND y OUTBOUND exigen cantidad positiva; ADJUST acepta cualquier valor distinto de cero.
type StockEventInput struct {
	Type        string
	WarehouseID string
	OccurredAt  *time.Time
	ReasonCode  string
	Notes       string
	Lines       []StockEventLineInput
}

// StockEventLineInput cantidad pedida para una variante.
type StockEventLineInput struct {
	VariantID string
	Quantity  int64
}

// ListStockEventsQuery filtros y página para listar eventos.
type ListStockEventsQuery struct {
	Type        string
	WarehouseID string
	VariantID   string
	ReasonCode  string
	From        *time.Time
	To          *time.Time
	Page        int
	Size        int
}

// resolvedLine línea validada con su delta y la variante cargada.
type resolvedLine struct {
	variantID string
	delta     int64
}

// CreateStockEvent valida la solicitud, aplica los deltas sobre StockItem y persiste el evento
// en una sola transacción. Con la misma clave de idempotencia y un payload compatible devuelve
// el evento ya existente sin escribir nada.
func (uc *StockEventUseCase) CreateStockEvent(
	ctx context.Context,
	in StockEventInput,
	idempotencyKey string,
	actor *entity.Actor,
) (*entity.StockEvent, error) {
	if isTransferKey(idempotencyKey) {
		return nil, domain.InvalidPayload(domain.ReasonReservedIdempotencyKey)
	}
	return uc.createStockEvent(ctx, in, idempotencyKey, actor)
}

// RecordTransferLeg registra una pata de traslado bajo su clave interna transfer:<id>:<dirección>.
// Es la única vía para usar ese prefijo.
func (uc *StockEventUseCase) RecordTransferLeg(
	ctx context.Context,
	in StockEventInput,
	transferKey string,
	actor *entity.Actor,
) (*entity.StockEvent, error) {
	if !isTransferKey(transferKey) {
		return nil, fmt.Errorf("clave de traslado inválida %q", transferKey)
	}
	return uc.createStockEvent(ctx, in, transferKey, actor)
}

func (uc *StockEventUseCase) createStockEvent(
	ctx context.Context,
	in StockEventInput,
	idempotencyKey string,
	actor *entity.Actor,
) (*entity.StockEvent, error) {
	if err := requireActor(actor); err != nil {
		return nil, err
	}
	warehouse, err := uc.loadActiveWarehouse(ctx, in.WarehouseID)
	if err != nil {
		return nil, err
	}
	if err := authorizeEventWrite(actor, in.Type); err != nil {
		return nil, err
	}

	occurredAt := uc.now().UTC()
	if in.OccurredAt != nil && !in.OccurredAt.IsZero() {
		occurredAt = in.OccurredAt.UTC()
	}
	notes := strings.TrimSpace(in.Notes)
	key := strings.TrimSpace(idempotencyKey)

	if key != "" {
		existing, err := uc.eventRepo.GetByIdempotencyKey(ctx, key)
		if err != nil {
			return nil, err
		}
		if existing != nil {
			if !isCompatible(existing, in, warehouse.ID, notes) {
				uc.metrics.IncConflict("idempotency")
				uc.log.WithEvent(existing.ID, key).Warn().Msg("clave de idempotencia reutilizada con payload distinto")
				return nil, domain.ErrIdempotencyConflict
			}
			uc.metrics.IncReplay()
			uc.log.WithEvent(existing.ID, key).Debug().Msg("evento idempotente devuelto")
			return existing, nil
		}
	}

	if !entity.IsValidEventType(in.Type) {
		return nil, domain.InvalidPayload(domain.ReasonInvalidType)
	}
	if !entity.IsValidReasonCode(in.ReasonCode) {
		return nil, domain.InvalidPayload(domain.ReasonInvalidReason)
	}
	if err := validateLineSet(in.Lines); err != nil {
		return nil, err
	}

	lines := make([]resolvedLine, 0, len(in.Lines))
	for _, l := range in.Lines {
		delta, err := resolveDelta(in.Type, l.Quantity)
		if err != nil {
			return nil, err
		}
		lines = append(lines, resolvedLine{variantID: l.VariantID, delta: delta})
	}

	discardExpired := in.Type == entity.EventTypeAdjust && in.ReasonCode == entity.ReasonDiscardExpired
	for _, l := range lines {
		variant, err := uc.loadActiveVariant(ctx, l.variantID)
		if err != nil {
			return nil, err
		}
		if variant.IsExpiredOn(occurredAt) && !discardExpired {
			return nil, fmt.Errorf("%w: variante %s", domain.ErrExpiredItemMovementBlocked, variant.ID)
		}
	}

	now := uc.now().UTC()
	event := &entity.StockEvent{
		ID:             uuid.New().String(),
		Type:           in.Type,
		WarehouseID:    warehouse.ID,
		OccurredAt:     occurredAt,
		ReasonCode:     in.ReasonCode,
		Notes:          notes,
		IdempotencyKey: key,
		CreatedBy:      actor.UserID,
		CreatedAt:      now,
	}
	for _, l := range lines {
		event.Lines = append(event.Lines, entity.StockEventLine{
			ID:        uuid.New().String(),
			EventID:   event.ID,
			VariantID: l.variantID,
			Quantity:  l.delta,
		})
	}

	err = uc.txRunner.Run(ctx, func(
		eventRepo repository.StockEventRepository,
		itemRepo repository.StockItemRepository,
		userRepo repository.UserRepository,
	) error {
		user, err := userRepo.GetByID(ctx, actor.UserID)
		if err != nil {
			return err
		}
		if user == nil {
			return domain.ErrForbidden
		}
		event.CreatedBy = user.ID
		return applyEvent(ctx, eventRepo, itemRepo, event, now)
	})
	if err != nil {
		return nil, uc.translateWriteError(err, event, key)
	}

	uc.metrics.IncEvent(event.Type)
	uc.log.WithEvent(event.ID, key).Info().
		Str("type", event.Type).
		Str("warehouse_id", event.WarehouseID).
		Int("lines", len(event.Lines)).
		Msg("evento de stock registrado")
	return event, nil
}

// applyEvent calcula las nuevas cantidades, rechaza cualquier saldo negativo antes de escribir
// y persiste ítems y evento con los repositorios de la transacción.
func applyEvent(
	ctx context.Context,
	eventRepo repository.StockEventRepository,
	itemRepo repository.StockItemRepository,
	event *entity.StockEvent,
	now time.Time,
) error {
	items := make([]*entity.StockItem, 0, len(event.Lines))
	for _, line := range event.Lines {
		item, err := itemRepo.Get(ctx, event.WarehouseID, line.VariantID)
		if err != nil {
			return err
		}
		if item == nil {
			item = &entity.StockItem{
				ID:          uuid.New().String(),
				WarehouseID: event.WarehouseID,
				VariantID:   line.VariantID,
			}
		}
		newQty := item.Quantity + line.Quantity
		if newQty < 0 {
			return fmt.Errorf("%w: variante %s (disponible %d, delta %d)",
				domain.ErrInsufficientQuantity, line.VariantID, item.Quantity, line.Quantity)
		}
		item.Quantity = newQty
		item.UpdatedAt = now
		items = append(items, item)
	}

	for _, item := range items {
		if item.IsNew() {
			if err := itemRepo.Insert(ctx, item); err != nil {
				return err
			}
			continue
		}
		if err := itemRepo.Update(ctx, item); err != nil {
			return err
		}
	}
	return eventRepo.Create(ctx, event)
}

func (uc *StockEventUseCase) translateWriteError(err error, event *entity.StockEvent, key string) error {
	switch {
	case errors.Is(err, domain.ErrConcurrencyConflict):
		uc.metrics.IncConflict("concurrency")
		uc.log.Warn().Str("warehouse_id", event.WarehouseID).Msg("conflicto de concurrencia en StockItem")
		return domain.ErrConcurrencyConflict
	case errors.Is(err, domain.ErrDuplicate) && key != "":
		uc.metrics.IncConflict("idempotency")
		uc.log.WithEvent(event.ID, key).Warn().Msg("carrera perdida por clave de idempotencia")
		return domain.ErrIdempotencyConflict
	case errors.Is(err, domain.ErrInsufficientQuantity):
		uc.metrics.IncConflict("insufficient")
	}
	return err
}

// GetStockEvent devuelve un evento por ID. Un seller debe indicar la bodega del evento.
func (uc *StockEventUseCase) GetStockEvent(ctx context.Context, id, warehouseID string, actor *entity.Actor) (*entity.StockEvent, error) {
	if err := AuthorizeWarehouseRead(actor, warehouseID); err != nil {
		return nil, err
	}
	event, err := uc.eventRepo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if event == nil {
		return nil, domain.ErrStockEventNotFound
	}
	if actor.IsSeller() && event.WarehouseID != warehouseID {
		return nil, domain.ErrForbidden
	}
	return event, nil
}

// ListStockEvents lista eventos filtrados. Un seller debe filtrar por bodega.
func (uc *StockEventUseCase) ListStockEvents(
	ctx context.Context,
	q ListStockEventsQuery,
	actor *entity.Actor,
) (*dto.Page[*entity.StockEvent], error) {
	if err := AuthorizeWarehouseRead(actor, q.WarehouseID); err != nil {
		return nil, err
	}
	if q.Type != "" && !entity.IsValidEventType(q.Type) {
		return nil, domain.InvalidPayload(domain.ReasonInvalidType)
	}
	if q.ReasonCode != "" && !entity.IsValidReasonCode(q.ReasonCode) {
		return nil, domain.InvalidPayload(domain.ReasonInvalidReason)
	}
	if q.From != nil && q.To != nil && q.To.Before(*q.From) {
		return nil, domain.InvalidPayload(domain.ReasonInvalidTimeWindow)
	}
	page, size := dto.NormalizePage(q.Page, q.Size, dto.DefaultPageSize, dto.MaxPageSize)
	list, total, err := uc.eventRepo.List(ctx, repository.StockEventFilter{
		Type:        q.Type,
		WarehouseID: q.WarehouseID,
		VariantID:   q.VariantID,
		ReasonCode:  q.ReasonCode,
		From:        q.From,
		To:          q.To,
		Limit:       size,
		Offset:      dto.PageOffset(page, size),
	})
	if err != nil {
		return nil, err
	}
	out := dto.NewPage(list, total, page, size)
	return &out, nil
}

func (uc *StockEventUseCase) loadActiveWarehouse(ctx context.Context, id string) (*entity.Warehouse, error) {
	if strings.TrimSpace(id) == "" {
		return nil, domain.ErrWarehouseNotFound
	}
	wh, err := uc.warehouseRepo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if wh == nil {
		return nil, domain.ErrWarehouseNotFound
	}
	if !wh.Active {
		return nil, domain.ErrWarehouseInactive
	}
	return wh, nil
}

func (uc *StockEventUseCase) loadActiveVariant(ctx context.Context, id string) (*entity.Variant, error) {
	return loadActiveVariant(ctx, uc.variantRepo, id)
}

// loadActiveVariant exige variante existente, activa y con producto activo.
func loadActiveVariant(ctx context.Context, repo repository.VariantRepository, id string) (*entity.Variant, error) {
	variant, err := repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if variant == nil {
		return nil, fmt.Errorf("%w: %s", domain.ErrVariantNotFound, id)
	}
	if !variant.Active {
		return nil, fmt.Errorf("%w: %s", domain.ErrVariantInactive, id)
	}
	if !variant.Product.Active {
		return nil, domain.InvalidPayload(domain.ReasonProductInactive)
	}
	return variant, nil
}

// validateLineSet rechaza listas vacías y variantes repetidas.
func validateLineSet(lines []StockEventLineInput) error {
	if len(lines) == 0 {
		return domain.InvalidPayload(domain.ReasonEmptyLines)
	}
	seen := make(map[string]struct{}, len(lines))
	for _, l := range lines {
		if strings.TrimSpace(l.VariantID) == "" {
			return domain.InvalidPayload("variant-id-required")
		}
		if _, dup := seen[l.VariantID]; dup {
			return domain.InvalidPayload(domain.ReasonDuplicateVariant)
		}
		seen[l.VariantID] = struct{}{}
	}
	return nil
}

// resolveDelta aplica la regla de signo por tipo de evento.
func resolveDelta(eventType string, quantity int64) (int64, error) {
	switch eventType {
	case entity.EventTypeInbound:
		if quantity <= 0 {
			return 0, domain.InvalidPayload(domain.ReasonNonPositiveQty)
		}
		return quantity, nil
	case entity.EventTypeOutbound:
		if quantity <= 0 {
			return 0, domain.InvalidPayload(domain.ReasonNonPositiveQty)
		}
		return -quantity, nil
	case entity.EventTypeAdjust:
		if quantity == 0 {
			return 0, domain.InvalidPayload(domain.ReasonZeroQty)
		}
		return quantity, nil
	}
	return 0, domain.InvalidPayload(domain.ReasonInvalidType)
}

// signedDelta delta sin validar, solo para comparar contra un evento ya guardado.
func signedDelta(eventType string, quantity int64) int64 {
	if eventType == entity.EventTypeOutbound {
		return -quantity
	}
	return quantity
}

// isCompatible compara el evento guardado con la solicitud entrante: tipo, bodega, motivo,
// notas y el multiconjunto de (variante, delta) ordenado por variante.
func isCompatible(existing *entity.StockEvent, in StockEventInput, warehouseID, notes string) bool {
	if existing.Type != in.Type || existing.WarehouseID != warehouseID ||
		existing.ReasonCode != in.ReasonCode || existing.Notes != notes {
		return false
	}
	if len(existing.Lines) != len(in.Lines) {
		return false
	}
	type pair struct {
		variantID string
		delta     int64
	}
	stored := make([]pair, 0, len(existing.Lines))
	for _, l := range existing.Lines {
		stored = append(stored, pair{l.VariantID, l.Quantity})
	}
	incoming := make([]pair, 0, len(in.Lines))
	for _, l := range in.Lines {
		incoming = append(incoming, pair{l.VariantID, signedDelta(in.Type, l.Quantity)})
	}
	less := func(ps []pair) func(i, j int) bool {
		return func(i, j int) bool {
			if ps[i].variantID != ps[j].variantID {
				return ps[i].variantID < ps[j].variantID
			}
			return ps[i].delta < ps[j].delta
		}
	}
	sort.SliceStable(stored, less(stored))
	sort.SliceStable(incoming, less(incoming))
	for i := range stored {
		if stored[i] != incoming[i] {
			return false
		}
	}
	return true
}
