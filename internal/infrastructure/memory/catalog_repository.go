package memory

import (
	"context"

	"github.com/jhoicas/stock-ledger/internal/domain/entity"
)

type warehouseRepo struct{ v view }

func (r *warehouseRepo) GetByID(_ context.Context, id string) (*entity.Warehouse, error) {
	var out *entity.Warehouse
	r.v.read(func(st *state) {
		if w, ok := st.warehouses[id]; ok {
			out = &w
		}
	})
	return out, nil
}

type variantRepo struct{ v view }

func (r *variantRepo) GetByID(_ context.Context, id string) (*entity.Variant, error) {
	var out *entity.Variant
	r.v.read(func(st *state) {
		if v, ok := st.variants[id]; ok {
			v.AttributeValueIDs = append([]string(nil), v.AttributeValueIDs...)
			out = &v
		}
	})
	return out, nil
}

type userRepo struct{ v view }

func (r *userRepo) GetByID(_ context.Context, id string) (*entity.User, error) {
	var out *entity.User
	r.v.read(func(st *state) {
		if u, ok := st.users[id]; ok {
			out = &u
		}
	})
	return out, nil
}
