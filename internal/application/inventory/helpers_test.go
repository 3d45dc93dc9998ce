package inventory_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/jhoicas/stock-ledger/internal/application/inventory"
	"github.com/jhoicas/stock-ledger/internal/domain/entity"
	"github.com/jhoicas/stock-ledger/internal/infrastructure/memory"
)

var (
	admin   = &entity.Actor{UserID: "u-admin", Role: entity.RoleAdmin}
	manager = &entity.Actor{UserID: "u-manager", Role: entity.RoleManager}
	seller  = &entity.Actor{UserID: "u-seller", Role: entity.RoleSeller}
)

// expiryDate vencimiento del producto perecedero de los tests.
var expiryDate = time.Date(2026, 1, 10, 0, 0, 0, 0, time.UTC)

type fixture struct {
	store     *memory.Store
	events    *inventory.StockEventUseCase
	transfers *inventory.TransferUseCase
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	store := memory.New()
	store.PutWarehouse(entity.Warehouse{ID: "wh-a", Code: "A", Name: "Bodega A", Active: true})
	store.PutWarehouse(entity.Warehouse{ID: "wh-b", Code: "B", Name: "Bodega B", Active: true})
	store.PutWarehouse(entity.Warehouse{ID: "wh-off", Code: "OFF", Name: "Cerrada", Active: false})

	product := entity.Product{ID: "p-1", Name: "Café", Active: true}
	store.PutVariant(entity.Variant{ID: "v-1", SKU: "CAF-250", Active: true, Product: product})
	store.PutVariant(entity.Variant{ID: "v-2", SKU: "CAF-500", Active: true, Product: product})
	store.PutVariant(entity.Variant{ID: "v-off", SKU: "CAF-OLD", Active: false, Product: product})
	store.PutVariant(entity.Variant{
		ID: "v-pi", SKU: "TE-1", Active: true,
		Product: entity.Product{ID: "p-2", Name: "Té", Active: false},
	})
	exp := expiryDate
	store.PutVariant(entity.Variant{
		ID: "v-milk", SKU: "MILK-1L", Active: true,
		Product: entity.Product{ID: "p-3", Name: "Leche", Active: true, ExpiryDate: &exp},
	})

	for _, a := range []*entity.Actor{admin, manager, seller} {
		store.PutUser(entity.User{ID: a.UserID, Email: a.UserID + "@example.com", Name: a.UserID, Role: a.Role, Active: true})
	}

	events := inventory.NewStockEventUseCase(store, store.StockEvents(), store.Warehouses(), store.Variants(), nil, nil)
	transfers := inventory.NewTransferUseCase(store, store.Transfers(), store.StockEvents(), store.Warehouses(), store.Variants(), events, nil, nil)
	return &fixture{store: store, events: events, transfers: transfers}
}

// quantity devuelve la cantidad proyectada (0 si no existe el ítem).
func (f *fixture) quantity(t *testing.T, warehouseID, variantID string) int64 {
	t.Helper()
	item, err := f.store.StockItems().Get(context.Background(), warehouseID, variantID)
	require.NoError(t, err)
	if item == nil {
		return 0
	}
	return item.Quantity
}

// receive registra una entrada de compra sin clave de idempotencia.
func (f *fixture) receive(t *testing.T, warehouseID, variantID string, qty int64) *entity.StockEvent {
	t.Helper()
	ev, err := f.events.CreateStockEvent(context.Background(), inventory.StockEventInput{
		Type:        entity.EventTypeInbound,
		WarehouseID: warehouseID,
		ReasonCode:  entity.ReasonPurchase,
		Lines:       []inventory.StockEventLineInput{{VariantID: variantID, Quantity: qty}},
	}, "", admin)
	require.NoError(t, err)
	return ev
}

func at(day int) *time.Time {
	t := time.Date(2026, 1, day, 12, 0, 0, 0, time.UTC)
	return &t
}
