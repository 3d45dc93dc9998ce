package memory

import (
	"context"
	"fmt"
	"sort"

	"github.com/jhoicas/stock-ledger/internal/domain"
	"github.com/jhoicas/stock-ledger/internal/domain/entity"
	"github.com/jhoicas/stock-ledger/internal/domain/repository"
)

type transferRepo struct{ v view }

func (r *transferRepo) Create(_ context.Context, t *entity.StockTransfer) error {
	return r.v.write(func(st *state) error {
		if _, ok := st.transfers[t.ID]; ok {
			return fmt.Errorf("%w: stock_transfer %s", domain.ErrDuplicate, t.ID)
		}
		st.transfers[t.ID] = cloneTransfer(t)
		st.transferOrder = append(st.transferOrder, t.ID)
		return nil
	})
}

func (r *transferRepo) GetByID(_ context.Context, id string) (*entity.StockTransfer, error) {
	var out *entity.StockTransfer
	r.v.read(func(st *state) {
		if t, ok := st.transfers[id]; ok {
			out = cloneTransfer(t)
		}
	})
	return out, nil
}

func (r *transferRepo) GetByIdempotencyKey(_ context.Context, key string) (*entity.StockTransfer, error) {
	var out *entity.StockTransfer
	r.v.read(func(st *state) {
		if id, ok := st.transferKeys[key]; ok {
			out = cloneTransfer(st.transfers[id])
		}
	})
	return out, nil
}

func (r *transferRepo) MarkConfirmed(_ context.Context, t *entity.StockTransfer) error {
	return r.v.write(func(st *state) error {
		current, ok := st.transfers[t.ID]
		if !ok {
			return domain.ErrTransferNotFound
		}
		if !current.IsDraft() {
			return domain.ErrTransferNotDraft
		}
		if t.IdempotencyKey != "" {
			if _, bound := st.transferKeys[t.IdempotencyKey]; bound {
				return fmt.Errorf("%w: idempotency_key %s", domain.ErrDuplicate, t.IdempotencyKey)
			}
			st.transferKeys[t.IdempotencyKey] = t.ID
		}
		next := cloneTransfer(current)
		next.Status = entity.TransferStatusConfirmed
		next.ConfirmedBy = t.ConfirmedBy
		next.ConfirmedAt = t.ConfirmedAt
		next.OutboundEventID = t.OutboundEventID
		next.InboundEventID = t.InboundEventID
		next.IdempotencyKey = t.IdempotencyKey
		st.transfers[t.ID] = next
		return nil
	})
}

func (r *transferRepo) MarkCanceled(_ context.Context, t *entity.StockTransfer) error {
	return r.v.write(func(st *state) error {
		current, ok := st.transfers[t.ID]
		if !ok {
			return domain.ErrTransferNotFound
		}
		if !current.IsDraft() {
			return domain.ErrTransferNotDraft
		}
		next := cloneTransfer(current)
		next.Status = entity.TransferStatusCanceled
		next.CanceledBy = t.CanceledBy
		next.CanceledAt = t.CanceledAt
		st.transfers[t.ID] = next
		return nil
	})
}

func (r *transferRepo) List(_ context.Context, f repository.StockTransferFilter) ([]*entity.StockTransfer, int, error) {
	var matched []*entity.StockTransfer
	r.v.read(func(st *state) {
		for i := len(st.transferOrder) - 1; i >= 0; i-- {
			t := st.transfers[st.transferOrder[i]]
			if matchTransfer(t, f) {
				matched = append(matched, t)
			}
		}
	})
	sort.SliceStable(matched, func(i, j int) bool {
		return matched[i].OccurredAt.After(matched[j].OccurredAt)
	})
	total := len(matched)
	out := make([]*entity.StockTransfer, 0)
	for _, t := range window(matched, f.Offset, f.Limit) {
		out = append(out, cloneTransfer(t))
	}
	return out, total, nil
}

func matchTransfer(t *entity.StockTransfer, f repository.StockTransferFilter) bool {
	if f.Status != "" && t.Status != f.Status {
		return false
	}
	if f.OriginWarehouseID != "" && t.OriginWarehouseID != f.OriginWarehouseID {
		return false
	}
	if f.DestinationWarehouseID != "" && t.DestinationWarehouseID != f.DestinationWarehouseID {
		return false
	}
	if f.From != nil && t.OccurredAt.Before(*f.From) {
		return false
	}
	if f.To != nil && t.OccurredAt.After(*f.To) {
		return false
	}
	return true
}

func cloneTransfer(t *entity.StockTransfer) *entity.StockTransfer {
	c := *t
	c.Lines = append([]entity.StockTransferLine(nil), t.Lines...)
	return &c
}
