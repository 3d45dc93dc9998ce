package entity

import "time"

// Product datos del catálogo que el ledger necesita de un producto.
type Product struct {
	ID         string
	Name       string
	Active     bool
	ExpiryDate *time.Time // nil = no vence
	CategoryID string
	BrandID    string
}

// Variant variante vendible de un producto (SKU).
type Variant struct {
	ID                string
	SKU               string
	Active            bool
	AttributeValueIDs []string
	Product           Product
}

// IsExpiredOn indica si el producto vence estrictamente antes de la fecha (UTC) de at.
func (v *Variant) IsExpiredOn(at time.Time) bool {
	if v.Product.ExpiryDate == nil {
		return false
	}
	return DateOf(*v.Product.ExpiryDate).Before(DateOf(at))
}

// DateOf trunca t a la medianoche UTC de su fecha.
func DateOf(t time.Time) time.Time {
	u := t.UTC()
	return time.Date(u.Year(), u.Month(), u.Day(), 0, 0, 0, 0, time.UTC)
}
