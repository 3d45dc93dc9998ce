package memory

import (
	"context"
	"fmt"

	"github.com/jhoicas/stock-ledger/internal/domain"
	"github.com/jhoicas/stock-ledger/internal/domain/entity"
	"github.com/jhoicas/stock-ledger/internal/domain/repository"
)

type stockEventRepo struct{ v view }

func (r *stockEventRepo) Create(_ context.Context, event *entity.StockEvent) error {
	return r.v.write(func(st *state) error {
		if _, ok := st.eventsByID[event.ID]; ok {
			return fmt.Errorf("%w: stock_event %s", domain.ErrDuplicate, event.ID)
		}
		if event.IdempotencyKey != "" {
			if _, ok := st.eventKeys[event.IdempotencyKey]; ok {
				return fmt.Errorf("%w: idempotency_key %s", domain.ErrDuplicate, event.IdempotencyKey)
			}
			st.eventKeys[event.IdempotencyKey] = event.ID
		}
		stored := cloneEvent(event)
		st.events = append(st.events, stored)
		st.eventsByID[stored.ID] = stored
		return nil
	})
}

func (r *stockEventRepo) GetByID(_ context.Context, id string) (*entity.StockEvent, error) {
	var out *entity.StockEvent
	r.v.read(func(st *state) {
		if e, ok := st.eventsByID[id]; ok {
			out = cloneEvent(e)
		}
	})
	return out, nil
}

func (r *stockEventRepo) GetByIdempotencyKey(_ context.Context, key string) (*entity.StockEvent, error) {
	var out *entity.StockEvent
	r.v.read(func(st *state) {
		if id, ok := st.eventKeys[key]; ok {
			out = cloneEvent(st.eventsByID[id])
		}
	})
	return out, nil
}

func (r *stockEventRepo) List(_ context.Context, f repository.StockEventFilter) ([]*entity.StockEvent, int, error) {
	var matched []*entity.StockEvent
	r.v.read(func(st *state) {
		// más recientes primero; a igual fecha, el último insertado primero
		for i := len(st.events) - 1; i >= 0; i-- {
			if matchEvent(st.events[i], f) {
				matched = append(matched, st.events[i])
			}
		}
	})
	sortNewestFirst(matched)
	total := len(matched)
	out := make([]*entity.StockEvent, 0)
	for _, e := range window(matched, f.Offset, f.Limit) {
		out = append(out, cloneEvent(e))
	}
	return out, total, nil
}

func matchEvent(e *entity.StockEvent, f repository.StockEventFilter) bool {
	if f.Type != "" && e.Type != f.Type {
		return false
	}
	if f.WarehouseID != "" && e.WarehouseID != f.WarehouseID {
		return false
	}
	if f.ReasonCode != "" && e.ReasonCode != f.ReasonCode {
		return false
	}
	if f.From != nil && e.OccurredAt.Before(*f.From) {
		return false
	}
	if f.To != nil && e.OccurredAt.After(*f.To) {
		return false
	}
	if f.VariantID != "" {
		for _, l := range e.Lines {
			if l.VariantID == f.VariantID {
				return true
			}
		}
		return false
	}
	return true
}

func cloneEvent(e *entity.StockEvent) *entity.StockEvent {
	c := *e
	c.Lines = append([]entity.StockEventLine(nil), e.Lines...)
	return &c
}
