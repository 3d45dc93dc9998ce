package report

import (
	"fmt"
	"sort"
	"strings"

	"github.com/jhoicas/stock-ledger/internal/domain"
)

// SortOrder criterio de orden declarado por el cliente.
type SortOrder struct {
	Field     string
	Ascending bool
}

// comparator devuelve <0, 0 o >0 como strings.Compare.
type comparator[T any] func(a, b T) int

// ParseSortOrders interpreta valores estilo "quantity,desc" (dirección opcional, asc por defecto).
func ParseSortOrders(values []string) []SortOrder {
	orders := make([]SortOrder, 0, len(values))
	for _, v := range values {
		parts := strings.Split(v, ",")
		field := strings.TrimSpace(parts[0])
		if field == "" {
			continue
		}
		asc := true
		if len(parts) > 1 && strings.EqualFold(strings.TrimSpace(parts[1]), "desc") {
			asc = false
		}
		orders = append(orders, SortOrder{Field: field, Ascending: asc})
	}
	return orders
}

// applySort ordena rows por varios criterios. Cada criterio se aplica con un ordenamiento estable
// empezando por el último declarado, de modo que el primero declarado queda como dominante.
// Sin criterios se usa defaults.
func applySort[T any](rows []T, orders, defaults []SortOrder, fields map[string]comparator[T]) error {
	if len(orders) == 0 {
		orders = defaults
	}
	for _, o := range orders {
		if _, ok := fields[o.Field]; !ok {
			return fmt.Errorf("%w: %s", domain.InvalidPayload(domain.ReasonUnknownSortField), o.Field)
		}
	}
	for i := len(orders) - 1; i >= 0; i-- {
		cmp := fields[orders[i].Field]
		asc := orders[i].Ascending
		sort.SliceStable(rows, func(a, b int) bool {
			c := cmp(rows[a], rows[b])
			if asc {
				return c < 0
			}
			return c > 0
		})
	}
	return nil
}

func compareInt64(a, b int64) int {
	switch {
	case a < b:
		return -1
	case a > b:
		return 1
	}
	return 0
}
