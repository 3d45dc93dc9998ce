package memory

import (
	"context"

	"github.com/jhoicas/stock-ledger/internal/domain"
	"github.com/jhoicas/stock-ledger/internal/domain/entity"
	"github.com/jhoicas/stock-ledger/internal/domain/repository"
)

type stockItemRepo struct{ v view }

func (r *stockItemRepo) Get(_ context.Context, warehouseID, variantID string) (*entity.StockItem, error) {
	var out *entity.StockItem
	r.v.read(func(st *state) {
		if it, ok := st.items[repository.BalanceKey{WarehouseID: warehouseID, VariantID: variantID}]; ok {
			out = &it
		}
	})
	return out, nil
}

func (r *stockItemRepo) Insert(_ context.Context, item *entity.StockItem) error {
	return r.v.write(func(st *state) error {
		key := repository.BalanceKey{WarehouseID: item.WarehouseID, VariantID: item.VariantID}
		if _, ok := st.items[key]; ok {
			return domain.ErrConcurrencyConflict
		}
		item.Version = 1
		st.items[key] = *item
		return nil
	})
}

func (r *stockItemRepo) Update(_ context.Context, item *entity.StockItem) error {
	return r.v.write(func(st *state) error {
		key := repository.BalanceKey{WarehouseID: item.WarehouseID, VariantID: item.VariantID}
		current, ok := st.items[key]
		if !ok || current.Version != item.Version {
			return domain.ErrConcurrencyConflict
		}
		item.Version++
		st.items[key] = *item
		return nil
	})
}
