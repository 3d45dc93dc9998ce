package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jhoicas/stock-ledger/internal/domain"
	"github.com/jhoicas/stock-ledger/internal/domain/entity"
	"github.com/jhoicas/stock-ledger/internal/domain/repository"
)

var _ repository.StockEventRepository = (*StockEventRepo)(nil)

// StockEventRepo ledger de eventos sobre PostgreSQL (usable con pool o tx). Solo inserta y lee.
type StockEventRepo struct {
	q Querier
}

// NewStockEventRepository construye el adaptador. Pasar pool o tx (Querier).
func NewStockEventRepository(q Querier) *StockEventRepo {
	return &StockEventRepo{q: q}
}

const stockEventColumns = `id, type, warehouse_id, occurred_at, reason_code, notes,
	COALESCE(idempotency_key, ''), created_by, created_at`

// Create inserta el evento y sus líneas. Debe llamarse dentro de una tx para que sea atómico.
func (r *StockEventRepo) Create(ctx context.Context, e *entity.StockEvent) error {
	query := `
		INSERT INTO stock_events (id, type, warehouse_id, occurred_at, reason_code, notes, idempotency_key, created_by, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)`
	_, err := r.q.Exec(ctx, query,
		e.ID, e.Type, e.WarehouseID, e.OccurredAt, e.ReasonCode, e.Notes,
		nullable(e.IdempotencyKey), e.CreatedBy, e.CreatedAt,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return fmt.Errorf("%w: stock_event %s", domain.ErrDuplicate, e.IdempotencyKey)
		}
		return fmt.Errorf("insert stock event: %w", err)
	}
	for i, l := range e.Lines {
		_, err := r.q.Exec(ctx, `
			INSERT INTO stock_event_lines (id, event_id, position, variant_id, quantity)
			VALUES ($1, $2, $3, $4, $5)`,
			l.ID, e.ID, i, l.VariantID, l.Quantity,
		)
		if err != nil {
			return fmt.Errorf("insert stock event line: %w", err)
		}
	}
	return nil
}

// GetByID obtiene un evento con sus líneas.
func (r *StockEventRepo) GetByID(ctx context.Context, id string) (*entity.StockEvent, error) {
	return r.getOne(ctx, `SELECT `+stockEventColumns+` FROM stock_events WHERE id = $1`, id)
}

// GetByIdempotencyKey obtiene el evento ligado a la clave.
func (r *StockEventRepo) GetByIdempotencyKey(ctx context.Context, key string) (*entity.StockEvent, error) {
	return r.getOne(ctx, `SELECT `+stockEventColumns+` FROM stock_events WHERE idempotency_key = $1`, key)
}

func (r *StockEventRepo) getOne(ctx context.Context, query string, arg any) (*entity.StockEvent, error) {
	var e entity.StockEvent
	err := r.q.QueryRow(ctx, query, arg).Scan(
		&e.ID, &e.Type, &e.WarehouseID, &e.OccurredAt, &e.ReasonCode, &e.Notes,
		&e.IdempotencyKey, &e.CreatedBy, &e.CreatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("get stock event: %w", err)
	}
	events := []*entity.StockEvent{&e}
	if err := r.loadLines(ctx, events); err != nil {
		return nil, err
	}
	return &e, nil
}

// List devuelve eventos filtrados, más recientes primero, y el total sin paginar.
func (r *StockEventRepo) List(ctx context.Context, f repository.StockEventFilter) ([]*entity.StockEvent, int, error) {
	w := &where{}
	if f.Type != "" {
		w.add("type = ?", f.Type)
	}
	if f.WarehouseID != "" {
		w.add("warehouse_id = ?", f.WarehouseID)
	}
	if f.ReasonCode != "" {
		w.add("reason_code = ?", f.ReasonCode)
	}
	if f.From != nil {
		w.add("occurred_at >= ?", *f.From)
	}
	if f.To != nil {
		w.add("occurred_at <= ?", *f.To)
	}
	if f.VariantID != "" {
		w.add("EXISTS (SELECT 1 FROM stock_event_lines l WHERE l.event_id = stock_events.id AND l.variant_id = ?)", f.VariantID)
	}

	var total int
	if err := r.q.QueryRow(ctx, `SELECT COUNT(*) FROM stock_events`+w.sql(), w.args...).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("count stock events: %w", err)
	}

	query := `SELECT ` + stockEventColumns + ` FROM stock_events` + w.sql() +
		` ORDER BY occurred_at DESC, created_at DESC LIMIT ` + w.next(f.Limit) + ` OFFSET ` + w.next(f.Offset)
	rows, err := r.q.Query(ctx, query, w.args...)
	if err != nil {
		return nil, 0, fmt.Errorf("list stock events: %w", err)
	}
	defer rows.Close()
	list := make([]*entity.StockEvent, 0)
	for rows.Next() {
		var e entity.StockEvent
		if err := rows.Scan(
			&e.ID, &e.Type, &e.WarehouseID, &e.OccurredAt, &e.ReasonCode, &e.Notes,
			&e.IdempotencyKey, &e.CreatedBy, &e.CreatedAt,
		); err != nil {
			return nil, 0, fmt.Errorf("scan stock event: %w", err)
		}
		list = append(list, &e)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, err
	}
	if err := r.loadLines(ctx, list); err != nil {
		return nil, 0, err
	}
	return list, total, nil
}

// loadLines adjunta las líneas de todos los eventos con una sola consulta, en el orden de la solicitud.
func (r *StockEventRepo) loadLines(ctx context.Context, events []*entity.StockEvent) error {
	if len(events) == 0 {
		return nil
	}
	ids := make([]string, 0, len(events))
	byID := make(map[string]*entity.StockEvent, len(events))
	for _, e := range events {
		ids = append(ids, e.ID)
		byID[e.ID] = e
	}
	rows, err := r.q.Query(ctx, `
		SELECT id, event_id, variant_id, quantity
		FROM stock_event_lines WHERE event_id = ANY($1) ORDER BY event_id, position`, ids)
	if err != nil {
		return fmt.Errorf("list stock event lines: %w", err)
	}
	defer rows.Close()
	for rows.Next() {
		var l entity.StockEventLine
		if err := rows.Scan(&l.ID, &l.EventID, &l.VariantID, &l.Quantity); err != nil {
			return fmt.Errorf("scan stock event line: %w", err)
		}
		if e := byID[l.EventID]; e != nil {
			e.Lines = append(e.Lines, l)
		}
	}
	return rows.Err()
}
