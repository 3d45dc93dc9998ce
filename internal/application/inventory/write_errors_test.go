package inventory_test

import (
	"context"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/stock-ledger/internal/application/inventory"
	"github.com/jhoicas/stock-ledger/internal/domain"
	"github.com/jhoicas/stock-ledger/internal/domain/entity"
	"github.com/jhoicas/stock-ledger/internal/domain/repository"
	"github.com/jhoicas/stock-ledger/internal/infrastructure/memory"
)

// failingTx envuelve el store en memoria y hace fallar la escritura de ítems o del evento.
type failingTx struct {
	*memory.Store
	itemErr  error
	eventErr error
}

func (r failingTx) Run(ctx context.Context, fn func(
	eventRepo repository.StockEventRepository,
	itemRepo repository.StockItemRepository,
	userRepo repository.UserRepository,
) error) error {
	return r.Store.Run(ctx, func(
		eventRepo repository.StockEventRepository,
		itemRepo repository.StockItemRepository,
		userRepo repository.UserRepository,
	) error {
		return fn(failingEvents{eventRepo, r.eventErr}, failingItems{itemRepo, r.itemErr}, userRepo)
	})
}

type failingItems struct {
	repository.StockItemRepository
	err error
}

func (r failingItems) Insert(ctx context.Context, item *entity.StockItem) error {
	if r.err != nil {
		return r.err
	}
	return r.StockItemRepository.Insert(ctx, item)
}

func (r failingItems) Update(ctx context.Context, item *entity.StockItem) error {
	if r.err != nil {
		return r.err
	}
	return r.StockItemRepository.Update(ctx, item)
}

type failingEvents struct {
	repository.StockEventRepository
	err error
}

func (r failingEvents) Create(ctx context.Context, event *entity.StockEvent) error {
	if r.err != nil {
		return r.err
	}
	return r.StockEventRepository.Create(ctx, event)
}

func saleOf(qty int64) inventory.StockEventInput {
	return inventory.StockEventInput{
		Type:        entity.EventTypeOutbound,
		WarehouseID: "wh-a",
		ReasonCode:  entity.ReasonSale,
		Lines:       []inventory.StockEventLineInput{{VariantID: "v-1", Quantity: qty}},
	}
}

func TestCreateStockEvent_WriteErrors(t *testing.T) {
	tests := []struct {
		name    string
		tx      func(*memory.Store) failingTx
		key     string
		wantErr error
		notErr  error
	}{
		{
			name: "versión desactualizada es conflicto de concurrencia",
			tx: func(s *memory.Store) failingTx {
				return failingTx{Store: s, itemErr: fmt.Errorf("update stock item: %w", domain.ErrConcurrencyConflict)}
			},
			key:     "k-1",
			wantErr: domain.ErrConcurrencyConflict,
		},
		{
			name: "clave duplicada al insertar es conflicto de idempotencia",
			tx: func(s *memory.Store) failingTx {
				return failingTx{Store: s, eventErr: fmt.Errorf("insert stock event: %w", domain.ErrDuplicate)}
			},
			key:     "k-race",
			wantErr: domain.ErrIdempotencyConflict,
		},
		{
			name: "duplicado sin clave se devuelve tal cual",
			tx: func(s *memory.Store) failingTx {
				return failingTx{Store: s, eventErr: fmt.Errorf("insert stock event: %w", domain.ErrDuplicate)}
			},
			wantErr: domain.ErrDuplicate,
			notErr:  domain.ErrIdempotencyConflict,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newFixture(t)
			f.receive(t, "wh-a", "v-1", 10)
			uc := inventory.NewStockEventUseCase(tt.tx(f.store), f.store.StockEvents(), f.store.Warehouses(), f.store.Variants(), nil, nil)

			_, err := uc.CreateStockEvent(context.Background(), saleOf(3), tt.key, seller)
			require.ErrorIs(t, err, tt.wantErr)
			if tt.notErr != nil {
				assert.NotErrorIs(t, err, tt.notErr)
			}
			assert.Equal(t, int64(10), f.quantity(t, "wh-a", "v-1"), "la transacción no debe publicar nada")
		})
	}
}
