package inventory

import (
	"context"
	"errors"
	"fmt"
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

// TransferLegRecorder contrato mínimo del escritor del ledger que necesita el orquestador.
// Lo implementa *StockEventUseCase.
type TransferLegRecorder interface {
	RecordTransferLeg(ctx context.Context, in StockEventInput, transferKey string, actor *entity.Actor) (*entity.StockEvent, error)
}

// TransferUseCase orquesta traslados en dos fases: borrador sin reserva, confirmación que emite
// una salida en origen y una entrada en destino, o cancelación del borrador.
type TransferUseCase struct {
	txRunner      TxRunner
	transferRepo  repository.StockTransferRepository
	eventRepo     repository.StockEventRepository
	warehouseRepo repository.WarehouseRepository
	variantRepo   repository.VariantRepository
	events        TransferLegRecorder
	log           *logger.Logger
	metrics       *metrics.LedgerMetrics
	now           func() time.Time
}

// NewTransferUseCase construye el orquestador. m puede ser nil.
func NewTransferUseCase(
	txRunner TxRunner,
	transferRepo repository.StockTransferRepository,
	eventRepo repository.StockEventRepository,
	warehouseRepo repository.WarehouseRepository,
	variantRepo repository.VariantRepository,
	events TransferLegRecorder,
	log *logger.Logger,
	m *metrics.LedgerMetrics,
) *TransferUseCase {
	if log == nil {
		log = logger.Nop()
	}
	return &TransferUseCase{
		txRunner:      txRunner,
		transferRepo:  transferRepo,
		eventRepo:     eventRepo,
		warehouseRepo: warehouseRepo,
		variantRepo:   variantRepo,
		events:        events,
		log:           log.Named(logger.ComponentTransfers),
		metrics:       m,
		now:           time.Now,
	}
}

// CreateTransferInput datos del borrador.
type CreateTransferInput struct {
	OriginWarehouseID      string
	DestinationWarehouseID string
	OccurredAt             *time.Time
	Notes                  string
	Lines                  []TransferLineInput
}

// TransferLineInput cantidad positiva a mover de una variante.
type TransferLineInput struct {
	VariantID string
	Quantity  int64
}

// ListTransfersQuery filtros y página para listar traslados.
type ListTransfersQuery struct {
	Status                 string
	OriginWarehouseID      string
	DestinationWarehouseID string
	From                   *time.Time
	To                     *time.Time
	Page                   int
	Size                   int
}

// transferKeyPrefix prefijo reservado de las claves internas; CreateStockEvent lo rechaza.
const transferKeyPrefix = "transfer:"

// Claves internas estables por dirección: un reintento de confirmación reutiliza la salida ya aplicada.
func outboundKey(transferID string) string { return transferKeyPrefix + transferID + ":outbound" }
func inboundKey(transferID string) string  { return transferKeyPrefix + transferID + ":inbound" }

func isTransferKey(key string) bool {
	return strings.HasPrefix(strings.TrimSpace(key), transferKeyPrefix)
}

// CreateDraft registra un traslado en DRAFT. No mueve stock.
func (uc *TransferUseCase) CreateDraft(ctx context.Context, in CreateTransferInput, actor *entity.Actor) (*entity.StockTransfer, error) {
	if in.OriginWarehouseID == in.DestinationWarehouseID {
		return nil, domain.ErrSameWarehouseTransfer
	}
	if err := requireActor(actor); err != nil {
		return nil, err
	}
	if _, err := uc.loadActiveWarehouse(ctx, in.OriginWarehouseID); err != nil {
		return nil, err
	}
	if _, err := uc.loadActiveWarehouse(ctx, in.DestinationWarehouseID); err != nil {
		return nil, err
	}
	if err := authorizeManagement(actor); err != nil {
		return nil, err
	}
	if len(in.Lines) == 0 {
		return nil, domain.InvalidPayload(domain.ReasonEmptyLines)
	}
	seen := make(map[string]struct{}, len(in.Lines))
	lines := make([]entity.StockTransferLine, 0, len(in.Lines))
	for _, l := range in.Lines {
		if strings.TrimSpace(l.VariantID) == "" {
			return nil, domain.InvalidPayload("variant-id-required")
		}
		if l.Quantity <= 0 {
			return nil, domain.InvalidPayload(domain.ReasonNonPositiveQty)
		}
		if _, dup := seen[l.VariantID]; dup {
			return nil, domain.InvalidPayload(domain.ReasonDuplicateVariant)
		}
		seen[l.VariantID] = struct{}{}
		if _, err := loadActiveVariant(ctx, uc.variantRepo, l.VariantID); err != nil {
			return nil, err
		}
		lines = append(lines, entity.StockTransferLine{VariantID: l.VariantID, Quantity: l.Quantity})
	}

	now := uc.now().UTC()
	occurredAt := now
	if in.OccurredAt != nil && !in.OccurredAt.IsZero() {
		occurredAt = in.OccurredAt.UTC()
	}
	transfer := &entity.StockTransfer{
		ID:                     uuid.New().String(),
		OriginWarehouseID:      in.OriginWarehouseID,
		DestinationWarehouseID: in.DestinationWarehouseID,
		Status:                 entity.TransferStatusDraft,
		OccurredAt:             occurredAt,
		Notes:                  strings.TrimSpace(in.Notes),
		Lines:                  lines,
		CreatedBy:              actor.UserID,
		CreatedAt:              now,
	}
	if err := uc.txRunner.RunTransfer(ctx, func(transferRepo repository.StockTransferRepository) error {
		return transferRepo.Create(ctx, transfer)
	}); err != nil {
		return nil, err
	}
	uc.metrics.IncTransfer(entity.TransferStatusDraft)
	uc.log.WithTransfer(transfer.ID).Info().Msg("traslado creado en borrador")
	return transfer, nil
}

// ConfirmTransfer aplica el traslado: OUTBOUND en origen y luego INBOUND en destino, cada uno
// en su propia transacción del ledger, y marca el traslado CONFIRMED. Si algún paso falla el
// traslado sigue en DRAFT y la confirmación puede reintentarse sin doble descuento.
func (uc *TransferUseCase) ConfirmTransfer(
	ctx context.Context,
	transferID, idempotencyKey string,
	actor *entity.Actor,
) (*entity.StockTransfer, error) {
	if err := requireActor(actor); err != nil {
		return nil, err
	}
	key := strings.TrimSpace(idempotencyKey)
	if key != "" {
		bound, err := uc.transferRepo.GetByIdempotencyKey(ctx, key)
		if err != nil {
			return nil, err
		}
		if bound != nil {
			if bound.ID != transferID {
				uc.metrics.IncConflict("transfer_idempotency")
				return nil, domain.ErrTransferIdempotencyConflict
			}
			uc.metrics.IncReplay()
			return bound, nil
		}
	}

	transfer, err := uc.transferRepo.GetByID(ctx, transferID)
	if err != nil {
		return nil, err
	}
	if transfer == nil {
		return nil, domain.ErrTransferNotFound
	}
	if !transfer.IsDraft() {
		return nil, domain.ErrTransferNotDraft
	}
	if err := authorizeManagement(actor); err != nil {
		return nil, err
	}

	origin, err := uc.loadWarehouse(ctx, transfer.OriginWarehouseID)
	if err != nil {
		return nil, err
	}
	destination, err := uc.loadWarehouse(ctx, transfer.DestinationWarehouseID)
	if err != nil {
		return nil, err
	}

	lines := make([]StockEventLineInput, 0, len(transfer.Lines))
	for _, l := range transfer.Lines {
		lines = append(lines, StockEventLineInput{VariantID: l.VariantID, Quantity: l.Quantity})
	}
	occurredAt := transfer.OccurredAt

	outbound, err := uc.events.RecordTransferLeg(ctx, StockEventInput{
		Type:        entity.EventTypeOutbound,
		WarehouseID: origin.ID,
		OccurredAt:  &occurredAt,
		ReasonCode:  entity.ReasonTransferOut,
		Notes:       fmt.Sprintf("Transfer %s to %s", transfer.ID, destination.Code),
		Lines:       lines,
	}, outboundKey(transfer.ID), actor)
	if err != nil {
		return nil, err
	}

	inbound, err := uc.events.RecordTransferLeg(ctx, StockEventInput{
		Type:        entity.EventTypeInbound,
		WarehouseID: destination.ID,
		OccurredAt:  &occurredAt,
		ReasonCode:  entity.ReasonTransferIn,
		Notes:       fmt.Sprintf("Transfer %s from %s", transfer.ID, origin.Code),
		Lines:       lines,
	}, inboundKey(transfer.ID), actor)
	if err != nil {
		uc.log.WithTransfer(transfer.ID).Warn().Err(err).
			Str("outbound_event_id", outbound.ID).
			Msg("salida aplicada pero entrada fallida; el traslado sigue en DRAFT")
		return nil, err
	}

	confirmedAt := uc.now().UTC()
	confirmed := *transfer
	confirmed.Status = entity.TransferStatusConfirmed
	confirmed.ConfirmedBy = actor.UserID
	confirmed.ConfirmedAt = &confirmedAt
	confirmed.OutboundEventID = outbound.ID
	confirmed.InboundEventID = inbound.ID
	confirmed.IdempotencyKey = key

	err = uc.txRunner.RunTransfer(ctx, func(transferRepo repository.StockTransferRepository) error {
		return transferRepo.MarkConfirmed(ctx, &confirmed)
	})
	if err != nil {
		if errors.Is(err, domain.ErrDuplicate) {
			uc.metrics.IncConflict("transfer_idempotency")
			return nil, domain.ErrTransferIdempotencyConflict
		}
		return nil, err
	}

	uc.metrics.IncTransfer(entity.TransferStatusConfirmed)
	uc.log.WithTransfer(confirmed.ID).Info().
		Str("outbound_event_id", outbound.ID).
		Str("inbound_event_id", inbound.ID).
		Msg("traslado confirmado")
	return &confirmed, nil
}

// CancelDraft cancela un traslado en DRAFT. No hay efectos sobre stock. Un borrador cuya salida
// ya quedó aplicada por una confirmación parcial no se cancela: solo puede completarse.
func (uc *TransferUseCase) CancelDraft(ctx context.Context, transferID string, actor *entity.Actor) (*entity.StockTransfer, error) {
	if err := authorizeManagement(actor); err != nil {
		return nil, err
	}
	transfer, err := uc.transferRepo.GetByID(ctx, transferID)
	if err != nil {
		return nil, err
	}
	if transfer == nil {
		return nil, domain.ErrTransferNotFound
	}
	if !transfer.IsDraft() {
		return nil, domain.ErrTransferNotDraft
	}
	outbound, err := uc.eventRepo.GetByIdempotencyKey(ctx, outboundKey(transfer.ID))
	if err != nil {
		return nil, err
	}
	if outbound != nil {
		uc.log.WithTransfer(transfer.ID).Warn().
			Str("outbound_event_id", outbound.ID).
			Msg("cancelación rechazada: la salida del traslado ya está aplicada")
		return nil, domain.ErrTransferPartiallyApplied
	}

	canceledAt := uc.now().UTC()
	canceled := *transfer
	canceled.Status = entity.TransferStatusCanceled
	canceled.CanceledBy = actor.UserID
	canceled.CanceledAt = &canceledAt
	if err := uc.txRunner.RunTransfer(ctx, func(transferRepo repository.StockTransferRepository) error {
		return transferRepo.MarkCanceled(ctx, &canceled)
	}); err != nil {
		return nil, err
	}
	uc.metrics.IncTransfer(entity.TransferStatusCanceled)
	uc.log.WithTransfer(canceled.ID).Info().Msg("traslado cancelado")
	return &canceled, nil
}

// GetTransfer devuelve un traslado. Un seller debe indicar la bodega de origen o destino.
func (uc *TransferUseCase) GetTransfer(ctx context.Context, id, warehouseID string, actor *entity.Actor) (*entity.StockTransfer, error) {
	if err := AuthorizeWarehouseRead(actor, warehouseID); err != nil {
		return nil, err
	}
	transfer, err := uc.transferRepo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if transfer == nil {
		return nil, domain.ErrTransferNotFound
	}
	if actor.IsSeller() && transfer.OriginWarehouseID != warehouseID && transfer.DestinationWarehouseID != warehouseID {
		return nil, domain.ErrForbidden
	}
	return transfer, nil
}

// ListTransfers lista traslados. Un seller debe filtrar por origen o destino.
func (uc *TransferUseCase) ListTransfers(
	ctx context.Context,
	q ListTransfersQuery,
	actor *entity.Actor,
) (*dto.Page[*entity.StockTransfer], error) {
	if err := AuthorizeWarehouseRead(actor, q.OriginWarehouseID, q.DestinationWarehouseID); err != nil {
		return nil, err
	}
	if q.Status != "" && !entity.IsValidTransferStatus(q.Status) {
		return nil, domain.InvalidPayload("invalid-transfer-status")
	}
	if q.From != nil && q.To != nil && q.To.Before(*q.From) {
		return nil, domain.InvalidPayload(domain.ReasonInvalidTimeWindow)
	}
	page, size := dto.NormalizePage(q.Page, q.Size, dto.DefaultPageSize, dto.MaxPageSize)
	list, total, err := uc.transferRepo.List(ctx, repository.StockTransferFilter{
		Status:                 q.Status,
		OriginWarehouseID:      q.OriginWarehouseID,
		DestinationWarehouseID: q.DestinationWarehouseID,
		From:                   q.From,
		To:                     q.To,
		Limit:                  size,
		Offset:                 dto.PageOffset(page, size),
	})
	if err != nil {
		return nil, err
	}
	out := dto.NewPage(list, total, page, size)
	return &out, nil
}

func (uc *TransferUseCase) loadWarehouse(ctx context.Context, id string) (*entity.Warehouse, error) {
	wh, err := uc.warehouseRepo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if wh == nil {
		return nil, domain.ErrWarehouseNotFound
	}
	return wh, nil
}

func (uc *TransferUseCase) loadActiveWarehouse(ctx context.Context, id string) (*entity.Warehouse, error) {
	wh, err := uc.loadWarehouse(ctx, id)
	if err != nil {
		return nil, err
	}
	if !wh.Active {
		return nil, domain.ErrWarehouseInactive
	}
	return wh, nil
}
