package postgres

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jhoicas/stock-ledger/internal/domain/entity"
	"github.com/jhoicas/stock-ledger/internal/domain/repository"
)

var _ repository.VariantRepository = (*VariantRepo)(nil)

// VariantRepo lectura de variantes con su producto.
type VariantRepo struct {
	q Querier
}

// NewVariantRepository construye el adaptador.
func NewVariantRepository(q Querier) *VariantRepo {
	return &VariantRepo{q: q}
}

// GetByID obtiene la variante, su producto y los valores de atributo asociados.
func (r *VariantRepo) GetByID(ctx context.Context, id string) (*entity.Variant, error) {
	query := `
		SELECT v.id, v.sku, v.active, p.id, p.name, p.active, p.expiry_date,
		       COALESCE(p.category_id, ''), COALESCE(p.brand_id, ''),
		       COALESCE(ARRAY(SELECT attribute_value_id FROM variant_attribute_values a WHERE a.variant_id = v.id), '{}')
		FROM variants v JOIN products p ON p.id = v.product_id
		WHERE v.id = $1`
	var v entity.Variant
	var expiry *time.Time
	err := r.q.QueryRow(ctx, query, id).Scan(
		&v.ID, &v.SKU, &v.Active, &v.Product.ID, &v.Product.Name, &v.Product.Active, &expiry,
		&v.Product.CategoryID, &v.Product.BrandID, &v.AttributeValueIDs,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("get variant: %w", err)
	}
	v.Product.ExpiryDate = expiry
	return &v, nil
}
