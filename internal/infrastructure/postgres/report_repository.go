package postgres

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"github.com/jhoicas/stock-ledger/internal/domain/repository"
)

var _ repository.ReportRepository = (*ReportRepo)(nil)

// ReportRepo agregados de solo lectura para el motor de reportes. No ordena ni pagina.
type ReportRepo struct {
	q Querier
}

// NewReportRepository construye el adaptador de reportes.
func NewReportRepository(q Querier) *ReportRepo {
	return &ReportRepo{q: q}
}

const (
	itemJoins = ` FROM stock_items s
		JOIN warehouses w ON w.id = s.warehouse_id
		JOIN variants v ON v.id = s.variant_id
		JOIN products p ON p.id = v.product_id`
	ledgerJoins = ` FROM stock_event_lines l
		JOIN stock_events e ON e.id = l.event_id
		JOIN warehouses w ON w.id = e.warehouse_id
		JOIN variants v ON v.id = l.variant_id
		JOIN products p ON p.id = v.product_id`
)

// applyReportFilter agrega las condiciones del filtro estructural sobre los alias w, v y p.
func applyReportFilter(w *where, f repository.ReportFilter) {
	if f.WarehouseID != "" {
		w.add("w.id = ?", f.WarehouseID)
	}
	if f.VariantID != "" {
		w.add("v.id = ?", f.VariantID)
	}
	if f.SKU != "" {
		w.add("v.sku = ?", f.SKU)
	}
	if f.ProductID != "" {
		w.add("p.id = ?", f.ProductID)
	}
	if f.CategoryID != "" {
		w.add("p.category_id = ?", f.CategoryID)
	}
	if f.BrandID != "" {
		w.add("p.brand_id = ?", f.BrandID)
	}
	if n := len(f.AttributeValueIDs); n > 0 {
		w.add(`(SELECT COUNT(DISTINCT a.attribute_value_id) FROM variant_attribute_values a
			WHERE a.variant_id = v.id AND a.attribute_value_id = ANY(?)) = `+strconv.Itoa(n), f.AttributeValueIDs)
	}
}

// Snapshot cantidades actuales desde stock_items, o reconstruidas desde el ledger si asOf no es nil.
func (r *ReportRepo) Snapshot(ctx context.Context, f repository.ReportFilter, asOf *time.Time, aggregate bool) ([]repository.SnapshotRow, error) {
	w := &where{}
	applyReportFilter(w, f)
	qty, from := "s.quantity", itemJoins
	if asOf != nil {
		qty, from = "l.quantity", ledgerJoins
		w.add("e.occurred_at <= ?", *asOf)
	}

	var query string
	switch {
	case aggregate:
		query = `SELECT ''::text, ''::text, v.id, v.sku, p.id, p.name, COALESCE(SUM(` + qty + `), 0)` + from + w.sql() +
			` GROUP BY v.id, v.sku, p.id, p.name`
	case asOf != nil:
		query = `SELECT w.id, w.code, v.id, v.sku, p.id, p.name, COALESCE(SUM(` + qty + `), 0)` + from + w.sql() +
			` GROUP BY w.id, w.code, v.id, v.sku, p.id, p.name`
	default:
		query = `SELECT w.id, w.code, v.id, v.sku, p.id, p.name, ` + qty + from + w.sql()
	}

	rows, err := r.q.Query(ctx, query, w.args...)
	if err != nil {
		return nil, fmt.Errorf("snapshot: %w", err)
	}
	defer rows.Close()
	var out []repository.SnapshotRow
	for rows.Next() {
		var s repository.SnapshotRow
		if err := rows.Scan(&s.WarehouseID, &s.WarehouseCode, &s.VariantID, &s.SKU, &s.ProductID, &s.ProductName, &s.Quantity); err != nil {
			return nil, fmt.Errorf("scan snapshot row: %w", err)
		}
		out = append(out, s)
	}
	return out, rows.Err()
}

// LedgerEntries líneas del ledger en la ventana [from, to].
func (r *ReportRepo) LedgerEntries(ctx context.Context, f repository.ReportFilter, from, to *time.Time) ([]repository.LedgerEntry, error) {
	w := &where{}
	applyReportFilter(w, f)
	if from != nil {
		w.add("e.occurred_at >= ?", *from)
	}
	if to != nil {
		w.add("e.occurred_at <= ?", *to)
	}
	query := `SELECT e.id, e.type, e.reason_code, e.occurred_at, w.id, w.code, v.id, v.sku, p.id, l.quantity` +
		ledgerJoins + w.sql()
	rows, err := r.q.Query(ctx, query, w.args...)
	if err != nil {
		return nil, fmt.Errorf("ledger entries: %w", err)
	}
	defer rows.Close()
	var out []repository.LedgerEntry
	for rows.Next() {
		var e repository.LedgerEntry
		if err := rows.Scan(
			&e.EventID, &e.EventType, &e.ReasonCode, &e.OccurredAt, &e.WarehouseID, &e.WarehouseCode,
			&e.VariantID, &e.SKU, &e.ProductID, &e.QuantityChange,
		); err != nil {
			return nil, fmt.Errorf("scan ledger entry: %w", err)
		}
		out = append(out, e)
	}
	return out, rows.Err()
}

// BalancesBefore saldo por (bodega, variante) de los movimientos anteriores a before.
func (r *ReportRepo) BalancesBefore(ctx context.Context, f repository.ReportFilter, before time.Time) (map[repository.BalanceKey]int64, error) {
	w := &where{}
	applyReportFilter(w, f)
	w.add("e.occurred_at < ?", before)
	query := `SELECT w.id, v.id, COALESCE(SUM(l.quantity), 0)` + ledgerJoins + w.sql() + ` GROUP BY w.id, v.id`
	rows, err := r.q.Query(ctx, query, w.args...)
	if err != nil {
		return nil, fmt.Errorf("balances before: %w", err)
	}
	defer rows.Close()
	out := map[repository.BalanceKey]int64{}
	for rows.Next() {
		var k repository.BalanceKey
		var qty int64
		if err := rows.Scan(&k.WarehouseID, &k.VariantID, &qty); err != nil {
			return nil, fmt.Errorf("scan balance: %w", err)
		}
		out[k] = qty
	}
	return out, rows.Err()
}

// Expiring stock positivo cuyo producto vence hasta until (y desde from si se indica).
func (r *ReportRepo) Expiring(ctx context.Context, f repository.ReportFilter, from *time.Time, until time.Time) ([]repository.ExpiringRow, error) {
	w := &where{}
	applyReportFilter(w, f)
	w.conds = append(w.conds, "s.quantity > 0", "p.expiry_date IS NOT NULL")
	w.add("p.expiry_date <= ?::date", until)
	if from != nil {
		w.add("p.expiry_date >= ?::date", *from)
	}
	query := `SELECT w.id, w.code, v.id, v.sku, p.id, p.name, p.expiry_date, s.quantity` + itemJoins + w.sql()
	rows, err := r.q.Query(ctx, query, w.args...)
	if err != nil {
		return nil, fmt.Errorf("expiring: %w", err)
	}
	defer rows.Close()
	var out []repository.ExpiringRow
	for rows.Next() {
		var e repository.ExpiringRow
		if err := rows.Scan(
			&e.WarehouseID, &e.WarehouseCode, &e.VariantID, &e.SKU, &e.ProductID, &e.ProductName, &e.ExpiryDate, &e.Quantity,
		); err != nil {
			return nil, fmt.Errorf("scan expiring row: %w", err)
		}
		out = append(out, e)
	}
	return out, rows.Err()
}
