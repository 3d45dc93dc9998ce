package memory

import (
	"sort"

	"github.com/jhoicas/stock-ledger/internal/domain/entity"
)

// sortNewestFirst ordena por OccurredAt descendente conservando el orden previo en empates.
func sortNewestFirst(events []*entity.StockEvent) {
	sort.SliceStable(events, func(i, j int) bool {
		return events[i].OccurredAt.After(events[j].OccurredAt)
	})
}

// window aplica offset/limit; limit <= 0 devuelve todo desde offset.
func window[T any](rows []T, offset, limit int) []T {
	if offset < 0 {
		offset = 0
	}
	if offset >= len(rows) {
		return nil
	}
	rows = rows[offset:]
	if limit > 0 && limit < len(rows) {
		rows = rows[:limit]
	}
	return rows
}
