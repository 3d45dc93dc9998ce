package inventory_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/stock-ledger/internal/application/inventory"
	"github.com/jhoicas/stock-ledger/internal/domain"
	"github.com/jhoicas/stock-ledger/internal/domain/entity"
)

func draftAB(t *testing.T, f *fixture, qty int64) *entity.StockTransfer {
	t.Helper()
	tr, err := f.transfers.CreateDraft(context.Background(), inventory.CreateTransferInput{
		OriginWarehouseID:      "wh-a",
		DestinationWarehouseID: "wh-b",
		Lines:                  []inventory.TransferLineInput{{VariantID: "v-1", Quantity: qty}},
	}, manager)
	require.NoError(t, err)
	return tr
}

func TestTransfer_ConfirmRoundTrip(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	f.receive(t, "wh-a", "v-1", 100)

	draft := draftAB(t, f, 50)
	assert.Equal(t, entity.TransferStatusDraft, draft.Status)
	assert.Equal(t, int64(100), f.quantity(t, "wh-a", "v-1"), "el borrador no reserva stock")

	confirmed, err := f.transfers.ConfirmTransfer(ctx, draft.ID, "k1", admin)
	require.NoError(t, err)
	assert.Equal(t, entity.TransferStatusConfirmed, confirmed.Status)
	assert.Equal(t, admin.UserID, confirmed.ConfirmedBy)
	assert.NotNil(t, confirmed.ConfirmedAt)
	assert.NotEmpty(t, confirmed.OutboundEventID)
	assert.NotEmpty(t, confirmed.InboundEventID)
	assert.Equal(t, int64(50), f.quantity(t, "wh-a", "v-1"))
	assert.Equal(t, int64(50), f.quantity(t, "wh-b", "v-1"))

	out, err := f.events.GetStockEvent(ctx, confirmed.OutboundEventID, "", admin)
	require.NoError(t, err)
	assert.Equal(t, entity.ReasonTransferOut, out.ReasonCode)
	assert.Equal(t, "wh-a", out.WarehouseID)
	in, err := f.events.GetStockEvent(ctx, confirmed.InboundEventID, "", admin)
	require.NoError(t, err)
	assert.Equal(t, entity.ReasonTransferIn, in.ReasonCode)
	assert.Equal(t, "wh-b", in.WarehouseID)

	replay, err := f.transfers.ConfirmTransfer(ctx, draft.ID, "k1", admin)
	require.NoError(t, err)
	assert.Equal(t, confirmed.ID, replay.ID)
	assert.Equal(t, confirmed.OutboundEventID, replay.OutboundEventID)
	assert.Equal(t, int64(50), f.quantity(t, "wh-a", "v-1"))

	_, err = f.transfers.ConfirmTransfer(ctx, draft.ID, "k2", admin)
	assert.ErrorIs(t, err, domain.ErrTransferNotDraft)
}

func TestTransfer_CreateDraftValidation(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	line := []inventory.TransferLineInput{{VariantID: "v-1", Quantity: 1}}

	_, err := f.transfers.CreateDraft(ctx, inventory.CreateTransferInput{
		OriginWarehouseID: "wh-a", DestinationWarehouseID: "wh-a", Lines: line,
	}, manager)
	assert.ErrorIs(t, err, domain.ErrSameWarehouseTransfer)

	_, err = f.transfers.CreateDraft(ctx, inventory.CreateTransferInput{
		OriginWarehouseID: "wh-a", DestinationWarehouseID: "wh-b", Lines: line,
	}, seller)
	assert.ErrorIs(t, err, domain.ErrForbidden)

	_, err = f.transfers.CreateDraft(ctx, inventory.CreateTransferInput{
		OriginWarehouseID: "wh-a", DestinationWarehouseID: "wh-off", Lines: line,
	}, manager)
	assert.ErrorIs(t, err, domain.ErrWarehouseInactive)

	_, err = f.transfers.CreateDraft(ctx, inventory.CreateTransferInput{
		OriginWarehouseID: "wh-a", DestinationWarehouseID: "wh-b",
	}, manager)
	assert.ErrorIs(t, err, domain.ErrInvalidPayload)
	assert.Equal(t, domain.ReasonEmptyLines, domain.PayloadReason(err))

	_, err = f.transfers.CreateDraft(ctx, inventory.CreateTransferInput{
		OriginWarehouseID: "wh-a", DestinationWarehouseID: "wh-b",
		Lines: []inventory.TransferLineInput{{VariantID: "v-1", Quantity: 0}},
	}, manager)
	assert.Equal(t, domain.ReasonNonPositiveQty, domain.PayloadReason(err))
}

func TestTransfer_ConfirmInsufficientStaysDraft(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	f.receive(t, "wh-a", "v-1", 10)
	draft := draftAB(t, f, 50)

	_, err := f.transfers.ConfirmTransfer(ctx, draft.ID, "", admin)
	require.ErrorIs(t, err, domain.ErrInsufficientQuantity)

	got, err := f.transfers.GetTransfer(ctx, draft.ID, "", admin)
	require.NoError(t, err)
	assert.Equal(t, entity.TransferStatusDraft, got.Status)
	assert.Equal(t, int64(10), f.quantity(t, "wh-a", "v-1"))
	assert.Equal(t, int64(0), f.quantity(t, "wh-b", "v-1"))
}

func TestTransfer_CancelThenConfirm(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	f.receive(t, "wh-a", "v-1", 10)
	draft := draftAB(t, f, 5)

	_, err := f.transfers.CancelDraft(ctx, draft.ID, seller)
	assert.ErrorIs(t, err, domain.ErrForbidden)

	canceled, err := f.transfers.CancelDraft(ctx, draft.ID, manager)
	require.NoError(t, err)
	assert.Equal(t, entity.TransferStatusCanceled, canceled.Status)
	assert.Equal(t, manager.UserID, canceled.CanceledBy)

	_, err = f.transfers.ConfirmTransfer(ctx, draft.ID, "", admin)
	assert.ErrorIs(t, err, domain.ErrTransferNotDraft)
	_, err = f.transfers.CancelDraft(ctx, draft.ID, manager)
	assert.ErrorIs(t, err, domain.ErrTransferNotDraft)
	assert.Equal(t, int64(10), f.quantity(t, "wh-a", "v-1"))

	_, err = f.transfers.CancelDraft(ctx, "nope", manager)
	assert.ErrorIs(t, err, domain.ErrTransferNotFound)
}

func TestTransfer_KeyBoundToAnotherTransfer(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	f.receive(t, "wh-a", "v-1", 10)
	first := draftAB(t, f, 2)
	second := draftAB(t, f, 3)

	_, err := f.transfers.ConfirmTransfer(ctx, first.ID, "k1", admin)
	require.NoError(t, err)

	_, err = f.transfers.ConfirmTransfer(ctx, second.ID, "k1", admin)
	require.ErrorIs(t, err, domain.ErrTransferIdempotencyConflict)
	assert.Equal(t, int64(8), f.quantity(t, "wh-a", "v-1"))
}

func TestTransfer_ConfirmRetryAfterPartialFailure(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	f.receive(t, "wh-a", "v-1", 100)
	draft := draftAB(t, f, 50)

	f.store.PutWarehouse(entity.Warehouse{ID: "wh-b", Code: "B", Name: "Bodega B", Active: false})
	_, err := f.transfers.ConfirmTransfer(ctx, draft.ID, "k1", admin)
	require.ErrorIs(t, err, domain.ErrWarehouseInactive)
	assert.Equal(t, int64(50), f.quantity(t, "wh-a", "v-1"), "la salida ya quedó aplicada")

	got, err := f.transfers.GetTransfer(ctx, draft.ID, "", admin)
	require.NoError(t, err)
	assert.Equal(t, entity.TransferStatusDraft, got.Status)

	f.store.PutWarehouse(entity.Warehouse{ID: "wh-b", Code: "B", Name: "Bodega B", Active: true})
	confirmed, err := f.transfers.ConfirmTransfer(ctx, draft.ID, "k1", admin)
	require.NoError(t, err)
	assert.Equal(t, entity.TransferStatusConfirmed, confirmed.Status)
	assert.Equal(t, int64(50), f.quantity(t, "wh-a", "v-1"))
	assert.Equal(t, int64(50), f.quantity(t, "wh-b", "v-1"))

	page, err := f.events.ListStockEvents(ctx, inventory.ListStockEventsQuery{Type: entity.EventTypeOutbound}, admin)
	require.NoError(t, err)
	assert.Equal(t, 1, page.TotalElements)
}

func TestTransfer_ReadAuthorization(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	draft := draftAB(t, f, 1)

	_, err := f.transfers.GetTransfer(ctx, draft.ID, "", seller)
	assert.ErrorIs(t, err, domain.ErrForbidden)

	got, err := f.transfers.GetTransfer(ctx, draft.ID, "wh-b", seller)
	require.NoError(t, err)
	assert.Equal(t, draft.ID, got.ID)

	_, err = f.transfers.GetTransfer(ctx, draft.ID, "wh-off", seller)
	assert.ErrorIs(t, err, domain.ErrForbidden)

	page, err := f.transfers.ListTransfers(ctx, inventory.ListTransfersQuery{OriginWarehouseID: "wh-a"}, seller)
	require.NoError(t, err)
	assert.Equal(t, 1, page.TotalElements)

	_, err = f.transfers.ListTransfers(ctx, inventory.ListTransfersQuery{}, seller)
	assert.ErrorIs(t, err, domain.ErrForbidden)

	page, err = f.transfers.ListTransfers(ctx, inventory.ListTransfersQuery{Status: entity.TransferStatusConfirmed}, admin)
	require.NoError(t, err)
	assert.Equal(t, 0, page.TotalElements)

	_, err = f.transfers.ListTransfers(ctx, inventory.ListTransfersQuery{Status: "LOST"}, admin)
	assert.ErrorIs(t, err, domain.ErrInvalidPayload)
}

func TestTransfer_InternalKeysAreReserved(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	f.receive(t, "wh-a", "v-1", 10)
	draft := draftAB(t, f, 4)

	for _, key := range []string{
		"transfer:" + draft.ID + ":outbound",
		" transfer:" + draft.ID + ":inbound",
	} {
		_, err := f.events.CreateStockEvent(ctx, inventory.StockEventInput{
			Type:        entity.EventTypeOutbound,
			WarehouseID: "wh-a",
			ReasonCode:  entity.ReasonSale,
			Lines:       []inventory.StockEventLineInput{{VariantID: "v-1", Quantity: 1}},
		}, key, seller)
		require.ErrorIs(t, err, domain.ErrInvalidPayload, key)
		assert.Equal(t, domain.ReasonReservedIdempotencyKey, domain.PayloadReason(err))
	}
	assert.Equal(t, int64(10), f.quantity(t, "wh-a", "v-1"))

	confirmed, err := f.transfers.ConfirmTransfer(ctx, draft.ID, "", manager)
	require.NoError(t, err)
	assert.Equal(t, entity.TransferStatusConfirmed, confirmed.Status)
	assert.Equal(t, int64(6), f.quantity(t, "wh-a", "v-1"))
	assert.Equal(t, int64(4), f.quantity(t, "wh-b", "v-1"))
}

func TestTransfer_CancelRefusedAfterPartialConfirm(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	f.receive(t, "wh-a", "v-1", 20)
	draft := draftAB(t, f, 5)

	f.store.PutWarehouse(entity.Warehouse{ID: "wh-b", Code: "B", Name: "Bodega B", Active: false})
	_, err := f.transfers.ConfirmTransfer(ctx, draft.ID, "", admin)
	require.ErrorIs(t, err, domain.ErrWarehouseInactive)

	_, err = f.transfers.CancelDraft(ctx, draft.ID, admin)
	require.ErrorIs(t, err, domain.ErrTransferPartiallyApplied)

	got, err := f.transfers.GetTransfer(ctx, draft.ID, "", admin)
	require.NoError(t, err)
	assert.Equal(t, entity.TransferStatusDraft, got.Status)

	f.store.PutWarehouse(entity.Warehouse{ID: "wh-b", Code: "B", Name: "Bodega B", Active: true})
	_, err = f.transfers.ConfirmTransfer(ctx, draft.ID, "", admin)
	require.NoError(t, err)
	assert.Equal(t, int64(15), f.quantity(t, "wh-a", "v-1"))
	assert.Equal(t, int64(5), f.quantity(t, "wh-b", "v-1"))
}
