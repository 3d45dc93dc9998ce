package postgres

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jhoicas/stock-ledger/internal/domain"
	"github.com/jhoicas/stock-ledger/internal/domain/entity"
	"github.com/jhoicas/stock-ledger/internal/domain/repository"
)

var _ repository.StockTransferRepository = (*StockTransferRepo)(nil)

// StockTransferRepo traslados entre bodegas sobre PostgreSQL (usable con pool o tx).
type StockTransferRepo struct {
	q Querier
}

// NewStockTransferRepository construye el adaptador. Pasar pool o tx (Querier).
func NewStockTransferRepository(q Querier) *StockTransferRepo {
	return &StockTransferRepo{q: q}
}

const stockTransferColumns = `id, origin_warehouse_id, destination_warehouse_id, status, occurred_at, notes,
	created_by, created_at, COALESCE(confirmed_by, ''), confirmed_at, COALESCE(canceled_by, ''), canceled_at,
	COALESCE(outbound_event_id, ''), COALESCE(inbound_event_id, ''), COALESCE(idempotency_key, '')`

func scanTransfer(row pgx.Row) (*entity.StockTransfer, error) {
	var t entity.StockTransfer
	var confirmedAt, canceledAt *time.Time
	err := row.Scan(
		&t.ID, &t.OriginWarehouseID, &t.DestinationWarehouseID, &t.Status, &t.OccurredAt, &t.Notes,
		&t.CreatedBy, &t.CreatedAt, &t.ConfirmedBy, &confirmedAt, &t.CanceledBy, &canceledAt,
		&t.OutboundEventID, &t.InboundEventID, &t.IdempotencyKey,
	)
	if err != nil {
		return nil, err
	}
	t.ConfirmedAt = confirmedAt
	t.CanceledAt = canceledAt
	return &t, nil
}

// Create inserta el borrador y sus líneas.
func (r *StockTransferRepo) Create(ctx context.Context, t *entity.StockTransfer) error {
	query := `
		INSERT INTO stock_transfers (id, origin_warehouse_id, destination_warehouse_id, status, occurred_at, notes, created_by, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`
	_, err := r.q.Exec(ctx, query,
		t.ID, t.OriginWarehouseID, t.DestinationWarehouseID, t.Status, t.OccurredAt, t.Notes, t.CreatedBy, t.CreatedAt,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return fmt.Errorf("%w: stock_transfer %s", domain.ErrDuplicate, t.ID)
		}
		return fmt.Errorf("insert stock transfer: %w", err)
	}
	for i, l := range t.Lines {
		_, err := r.q.Exec(ctx, `
			INSERT INTO stock_transfer_lines (transfer_id, position, variant_id, quantity) VALUES ($1, $2, $3, $4)`,
			t.ID, i, l.VariantID, l.Quantity,
		)
		if err != nil {
			return fmt.Errorf("insert stock transfer line: %w", err)
		}
	}
	return nil
}

// GetByID obtiene un traslado con sus líneas.
func (r *StockTransferRepo) GetByID(ctx context.Context, id string) (*entity.StockTransfer, error) {
	return r.getOne(ctx, `SELECT `+stockTransferColumns+` FROM stock_transfers WHERE id = $1`, id)
}

// GetByIdempotencyKey obtiene el traslado confirmado con la clave.
func (r *StockTransferRepo) GetByIdempotencyKey(ctx context.Context, key string) (*entity.StockTransfer, error) {
	return r.getOne(ctx, `SELECT `+stockTransferColumns+` FROM stock_transfers WHERE idempotency_key = $1`, key)
}

func (r *StockTransferRepo) getOne(ctx context.Context, query string, arg any) (*entity.StockTransfer, error) {
	t, err := scanTransfer(r.q.QueryRow(ctx, query, arg))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("get stock transfer: %w", err)
	}
	if err := r.loadLines(ctx, []*entity.StockTransfer{t}); err != nil {
		return nil, err
	}
	return t, nil
}

// MarkConfirmed transición condicional DRAFT → CONFIRMED.
func (r *StockTransferRepo) MarkConfirmed(ctx context.Context, t *entity.StockTransfer) error {
	query := `
		UPDATE stock_transfers
		SET status = $2, confirmed_by = $3, confirmed_at = $4, outbound_event_id = $5, inbound_event_id = $6, idempotency_key = $7
		WHERE id = $1 AND status = $8`
	cmd, err := r.q.Exec(ctx, query,
		t.ID, entity.TransferStatusConfirmed, t.ConfirmedBy, t.ConfirmedAt,
		t.OutboundEventID, t.InboundEventID, nullable(t.IdempotencyKey), entity.TransferStatusDraft,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return fmt.Errorf("%w: idempotency_key %s", domain.ErrDuplicate, t.IdempotencyKey)
		}
		return fmt.Errorf("confirm stock transfer: %w", err)
	}
	return r.checkTransition(ctx, t.ID, cmd.RowsAffected())
}

// MarkCanceled transición condicional DRAFT → CANCELED.
func (r *StockTransferRepo) MarkCanceled(ctx context.Context, t *entity.StockTransfer) error {
	query := `
		UPDATE stock_transfers SET status = $2, canceled_by = $3, canceled_at = $4
		WHERE id = $1 AND status = $5`
	cmd, err := r.q.Exec(ctx, query,
		t.ID, entity.TransferStatusCanceled, t.CanceledBy, t.CanceledAt, entity.TransferStatusDraft,
	)
	if err != nil {
		return fmt.Errorf("cancel stock transfer: %w", err)
	}
	return r.checkTransition(ctx, t.ID, cmd.RowsAffected())
}

// checkTransition distingue traslado inexistente de traslado ya terminal cuando el UPDATE no afectó filas.
func (r *StockTransferRepo) checkTransition(ctx context.Context, id string, affected int64) error {
	if affected > 0 {
		return nil
	}
	var exists bool
	if err := r.q.QueryRow(ctx, `SELECT EXISTS (SELECT 1 FROM stock_transfers WHERE id = $1)`, id).Scan(&exists); err != nil {
		return fmt.Errorf("check stock transfer: %w", err)
	}
	if !exists {
		return domain.ErrTransferNotFound
	}
	return domain.ErrTransferNotDraft
}

// List traslados filtrados, más recientes primero, y el total sin paginar.
func (r *StockTransferRepo) List(ctx context.Context, f repository.StockTransferFilter) ([]*entity.StockTransfer, int, error) {
	w := &where{}
	if f.Status != "" {
		w.add("status = ?", f.Status)
	}
	if f.OriginWarehouseID != "" {
		w.add("origin_warehouse_id = ?", f.OriginWarehouseID)
	}
	if f.DestinationWarehouseID != "" {
		w.add("destination_warehouse_id = ?", f.DestinationWarehouseID)
	}
	if f.From != nil {
		w.add("occurred_at >= ?", *f.From)
	}
	if f.To != nil {
		w.add("occurred_at <= ?", *f.To)
	}

	var total int
	if err := r.q.QueryRow(ctx, `SELECT COUNT(*) FROM stock_transfers`+w.sql(), w.args...).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("count stock transfers: %w", err)
	}
	query := `SELECT ` + stockTransferColumns + ` FROM stock_transfers` + w.sql() +
		` ORDER BY occurred_at DESC, created_at DESC LIMIT ` + w.next(f.Limit) + ` OFFSET ` + w.next(f.Offset)
	rows, err := r.q.Query(ctx, query, w.args...)
	if err != nil {
		return nil, 0, fmt.Errorf("list stock transfers: %w", err)
	}
	defer rows.Close()
	list := make([]*entity.StockTransfer, 0)
	for rows.Next() {
		t, err := scanTransfer(rows)
		if err != nil {
			return nil, 0, fmt.Errorf("scan stock transfer: %w", err)
		}
		list = append(list, t)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, err
	}
	if err := r.loadLines(ctx, list); err != nil {
		return nil, 0, err
	}
	return list, total, nil
}

func (r *StockTransferRepo) loadLines(ctx context.Context, transfers []*entity.StockTransfer) error {
	if len(transfers) == 0 {
		return nil
	}
	ids := make([]string, 0, len(transfers))
	byID := make(map[string]*entity.StockTransfer, len(transfers))
	for _, t := range transfers {
		ids = append(ids, t.ID)
		byID[t.ID] = t
	}
	rows, err := r.q.Query(ctx, `
		SELECT transfer_id, variant_id, quantity
		FROM stock_transfer_lines WHERE transfer_id = ANY($1) ORDER BY transfer_id, position`, ids)
	if err != nil {
		return fmt.Errorf("list stock transfer lines: %w", err)
	}
	defer rows.Close()
	for rows.Next() {
		var transferID string
		var l entity.StockTransferLine
		if err := rows.Scan(&transferID, &l.VariantID, &l.Quantity); err != nil {
			return fmt.Errorf("scan stock transfer line: %w", err)
		}
		if t := byID[transferID]; t != nil {
			t.Lines = append(t.Lines, l)
		}
	}
	return rows.Err()
}
