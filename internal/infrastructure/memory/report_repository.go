package memory

import (
	"context"
	"time"

	"github.com/jhoicas/stock-ledger/internal/domain/entity"
	"github.com/jhoicas/stock-ledger/internal/domain/repository"
)

type reportRepo struct{ v view }

func (r *reportRepo) Snapshot(_ context.Context, f repository.ReportFilter, asOf *time.Time, aggregate bool) ([]repository.SnapshotRow, error) {
	quantities := map[repository.BalanceKey]int64{}
	var order []repository.BalanceKey
	add := func(k repository.BalanceKey, delta int64) {
		if _, ok := quantities[k]; !ok {
			order = append(order, k)
		}
		quantities[k] += delta
	}
	var rows []repository.SnapshotRow
	r.v.read(func(st *state) {
		if asOf == nil {
			for k, it := range st.items {
				add(k, it.Quantity)
			}
		} else {
			for _, e := range st.events {
				if e.OccurredAt.After(*asOf) {
					continue
				}
				for _, l := range e.Lines {
					add(repository.BalanceKey{WarehouseID: e.WarehouseID, VariantID: l.VariantID}, l.Quantity)
				}
			}
		}
		byVariant := map[string]int{}
		for _, k := range order {
			wh, ok := st.warehouses[k.WarehouseID]
			if !ok {
				continue
			}
			variant, ok := st.variants[k.VariantID]
			if !ok || !matchReport(f, wh.ID, variant) {
				continue
			}
			row := repository.SnapshotRow{
				WarehouseID:   wh.ID,
				WarehouseCode: wh.Code,
				VariantID:     variant.ID,
				SKU:           variant.SKU,
				ProductID:     variant.Product.ID,
				ProductName:   variant.Product.Name,
				Quantity:      quantities[k],
			}
			if !aggregate {
				rows = append(rows, row)
				continue
			}
			if idx, seen := byVariant[variant.ID]; seen {
				rows[idx].Quantity += row.Quantity
				continue
			}
			row.WarehouseID, row.WarehouseCode = "", ""
			byVariant[variant.ID] = len(rows)
			rows = append(rows, row)
		}
	})
	return rows, nil
}

func (r *reportRepo) LedgerEntries(_ context.Context, f repository.ReportFilter, from, to *time.Time) ([]repository.LedgerEntry, error) {
	var out []repository.LedgerEntry
	r.v.read(func(st *state) {
		for _, e := range st.events {
			if from != nil && e.OccurredAt.Before(*from) {
				continue
			}
			if to != nil && e.OccurredAt.After(*to) {
				continue
			}
			wh := st.warehouses[e.WarehouseID]
			for _, l := range e.Lines {
				variant, ok := st.variants[l.VariantID]
				if !ok || !matchReport(f, e.WarehouseID, variant) {
					continue
				}
				out = append(out, repository.LedgerEntry{
					EventID:        e.ID,
					EventType:      e.Type,
					ReasonCode:     e.ReasonCode,
					OccurredAt:     e.OccurredAt,
					WarehouseID:    e.WarehouseID,
					WarehouseCode:  wh.Code,
					VariantID:      variant.ID,
					SKU:            variant.SKU,
					ProductID:      variant.Product.ID,
					QuantityChange: l.Quantity,
				})
			}
		}
	})
	return out, nil
}

func (r *reportRepo) BalancesBefore(_ context.Context, f repository.ReportFilter, before time.Time) (map[repository.BalanceKey]int64, error) {
	out := map[repository.BalanceKey]int64{}
	r.v.read(func(st *state) {
		for _, e := range st.events {
			if !e.OccurredAt.Before(before) {
				continue
			}
			for _, l := range e.Lines {
				variant, ok := st.variants[l.VariantID]
				if !ok || !matchReport(f, e.WarehouseID, variant) {
					continue
				}
				out[repository.BalanceKey{WarehouseID: e.WarehouseID, VariantID: l.VariantID}] += l.Quantity
			}
		}
	})
	return out, nil
}

func (r *reportRepo) Expiring(_ context.Context, f repository.ReportFilter, from *time.Time, until time.Time) ([]repository.ExpiringRow, error) {
	var out []repository.ExpiringRow
	r.v.read(func(st *state) {
		for k, it := range st.items {
			if it.Quantity <= 0 {
				continue
			}
			variant, ok := st.variants[k.VariantID]
			if !ok || variant.Product.ExpiryDate == nil || !matchReport(f, k.WarehouseID, variant) {
				continue
			}
			expiry := entity.DateOf(*variant.Product.ExpiryDate)
			if expiry.After(until) || (from != nil && expiry.Before(entity.DateOf(*from))) {
				continue
			}
			wh := st.warehouses[k.WarehouseID]
			out = append(out, repository.ExpiringRow{
				WarehouseID:   k.WarehouseID,
				WarehouseCode: wh.Code,
				VariantID:     variant.ID,
				SKU:           variant.SKU,
				ProductID:     variant.Product.ID,
				ProductName:   variant.Product.Name,
				ExpiryDate:    expiry,
				Quantity:      it.Quantity,
			})
		}
	})
	return out, nil
}

// matchReport aplica el filtro estructural común sobre la bodega y la variante.
func matchReport(f repository.ReportFilter, warehouseID string, v entity.Variant) bool {
	switch {
	case f.WarehouseID != "" && warehouseID != f.WarehouseID,
		f.VariantID != "" && v.ID != f.VariantID,
		f.SKU != "" && v.SKU != f.SKU,
		f.ProductID != "" && v.Product.ID != f.ProductID,
		f.CategoryID != "" && v.Product.CategoryID != f.CategoryID,
		f.BrandID != "" && v.Product.BrandID != f.BrandID:
		return false
	}
	for _, want := range f.AttributeValueIDs {
		found := false
		for _, have := range v.AttributeValueIDs {
			if have == want {
				found = true
				break
			}
		}
		if !found {
			return false
		}
	}
	return true
}
