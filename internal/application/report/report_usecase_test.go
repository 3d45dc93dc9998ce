package report_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/stock-ledger/internal/application/dto"
	"github.com/jhoicas/stock-ledger/internal/application/inventory"
	"github.com/jhoicas/stock-ledger/internal/application/report"
	"github.com/jhoicas/stock-ledger/internal/domain"
	"github.com/jhoicas/stock-ledger/internal/domain/entity"
	"github.com/jhoicas/stock-ledger/internal/domain/repository"
	"github.com/jhoicas/stock-ledger/internal/infrastructure/memory"
)

var (
	admin  = &entity.Actor{UserID: "u-admin", Role: entity.RoleAdmin}
	seller = &entity.Actor{UserID: "u-seller", Role: entity.RoleSeller}
)

type fixture struct {
	store   *memory.Store
	events  *inventory.StockEventUseCase
	reports *report.ReportUseCase
}

func day(month time.Month, d int) time.Time {
	return time.Date(2026, month, d, 9, 0, 0, 0, time.UTC)
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	store := memory.New()
	store.PutWarehouse(entity.Warehouse{ID: "wh-a", Code: "A", Name: "Bodega A", Active: true})
	store.PutWarehouse(entity.Warehouse{ID: "wh-b", Code: "B", Name: "Bodega B", Active: true})

	coffee := entity.Product{ID: "p-coffee", Name: "Café", Active: true, CategoryID: "cat-bebidas"}
	store.PutVariant(entity.Variant{ID: "v-10", SKU: "CAF-10", Active: true, Product: coffee, AttributeValueIDs: []string{"av-250g"}})
	store.PutVariant(entity.Variant{ID: "v-20", SKU: "CAF-20", Active: true, Product: coffee, AttributeValueIDs: []string{"av-500g", "av-molido"}})
	store.PutVariant(entity.Variant{ID: "v-30", SKU: "CAF-30", Active: true, Product: coffee})
	expiry := time.Date(2026, 3, 11, 0, 0, 0, 0, time.UTC)
	store.PutVariant(entity.Variant{
		ID: "v-milk", SKU: "MILK-1L", Active: true,
		Product: entity.Product{ID: "p-milk", Name: "Leche", Active: true, ExpiryDate: &expiry},
	})
	store.PutUser(entity.User{ID: admin.UserID, Role: admin.Role, Active: true})
	store.PutUser(entity.User{ID: seller.UserID, Role: seller.Role, Active: true})

	events := inventory.NewStockEventUseCase(store, store.StockEvents(), store.Warehouses(), store.Variants(), nil, nil)
	reports := report.NewReportUseCase(store.Reports(), store.Warehouses(), nil, report.Config{})
	return &fixture{store: store, events: events, reports: reports}
}

func (f *fixture) move(t *testing.T, eventType, warehouseID, variantID string, qty int64, at time.Time) {
	t.Helper()
	reason := entity.ReasonPurchase
	switch eventType {
	case entity.EventTypeOutbound:
		reason = entity.ReasonSale
	case entity.EventTypeAdjust:
		reason = entity.ReasonCountCorrection
	}
	_, err := f.events.CreateStockEvent(context.Background(), inventory.StockEventInput{
		Type:        eventType,
		WarehouseID: warehouseID,
		OccurredAt:  &at,
		ReasonCode:  reason,
		Lines:       []inventory.StockEventLineInput{{VariantID: variantID, Quantity: qty}},
	}, "", admin)
	require.NoError(t, err)
}

func quantities(rows []dto.SnapshotRowDTO) []int64 {
	out := make([]int64, 0, len(rows))
	for _, r := range rows {
		out = append(out, r.Quantity)
	}
	return out
}

func TestSnapshot_DefaultSortQuantityDesc(t *testing.T) {
	f := newFixture(t)
	f.move(t, entity.EventTypeInbound, "wh-a", "v-10", 10, day(2, 1))
	f.move(t, entity.EventTypeInbound, "wh-a", "v-30", 30, day(2, 1))
	f.move(t, entity.EventTypeInbound, "wh-a", "v-20", 20, day(2, 1))

	page, err := f.reports.Snapshot(context.Background(), report.SnapshotQuery{}, admin)
	require.NoError(t, err)
	assert.Equal(t, []int64{30, 20, 10}, quantities(page.Content))
	assert.Equal(t, 3, page.TotalElements)
	assert.Equal(t, 0, page.Number)
}

func TestSnapshot_MultiKeySort(t *testing.T) {
	f := newFixture(t)
	f.move(t, entity.EventTypeInbound, "wh-a", "v-10", 5, day(2, 1))
	f.move(t, entity.EventTypeInbound, "wh-b", "v-10", 5, day(2, 1))
	f.move(t, entity.EventTypeInbound, "wh-b", "v-20", 7, day(2, 1))

	page, err := f.reports.Snapshot(context.Background(), report.SnapshotQuery{
		Sort: []report.SortOrder{{Field: "quantity", Ascending: true}, {Field: "warehouseCode", Ascending: false}},
	}, admin)
	require.NoError(t, err)
	require.Len(t, page.Content, 3)
	assert.Equal(t, "B", page.Content[0].WarehouseCode)
	assert.Equal(t, "CAF-10", page.Content[0].SKU)
	assert.Equal(t, "A", page.Content[1].WarehouseCode)
	assert.Equal(t, int64(7), page.Content[2].Quantity)
}

func TestSnapshot_UnknownSortField(t *testing.T) {
	f := newFixture(t)
	f.move(t, entity.EventTypeInbound, "wh-a", "v-10", 5, day(2, 1))

	_, err := f.reports.Snapshot(context.Background(), report.SnapshotQuery{
		Sort: []report.SortOrder{{Field: "price"}},
	}, admin)
	require.ErrorIs(t, err, domain.ErrInvalidPayload)
	assert.Equal(t, domain.ReasonUnknownSortField, domain.PayloadReason(err))
}

func TestSnapshot_Pagination(t *testing.T) {
	f := newFixture(t)
	f.move(t, entity.EventTypeInbound, "wh-a", "v-10", 10, day(2, 1))
	f.move(t, entity.EventTypeInbound, "wh-a", "v-20", 20, day(2, 1))
	f.move(t, entity.EventTypeInbound, "wh-a", "v-30", 30, day(2, 1))

	page, err := f.reports.Snapshot(context.Background(), report.SnapshotQuery{Page: 1, Size: 2}, admin)
	require.NoError(t, err)
	assert.Equal(t, []int64{10}, quantities(page.Content))
	assert.Equal(t, 2, page.TotalPages)

	page, err = f.reports.Snapshot(context.Background(), report.SnapshotQuery{Page: 9, Size: 2}, admin)
	require.NoError(t, err)
	assert.Empty(t, page.Content)
	assert.Equal(t, 3, page.TotalElements)
}

func TestSnapshot_ZeroRowsAndAggregate(t *testing.T) {
	f := newFixture(t)
	f.move(t, entity.EventTypeInbound, "wh-a", "v-10", 5, day(2, 1))
	f.move(t, entity.EventTypeInbound, "wh-b", "v-10", 7, day(2, 1))
	f.move(t, entity.EventTypeInbound, "wh-a", "v-20", 3, day(2, 1))
	f.move(t, entity.EventTypeOutbound, "wh-a", "v-20", 3, day(2, 2))

	page, err := f.reports.Snapshot(context.Background(), report.SnapshotQuery{}, admin)
	require.NoError(t, err)
	assert.Equal(t, 2, page.TotalElements)

	page, err = f.reports.Snapshot(context.Background(), report.SnapshotQuery{IncludeZero: true}, admin)
	require.NoError(t, err)
	assert.Equal(t, 3, page.TotalElements)

	page, err = f.reports.Snapshot(context.Background(), report.SnapshotQuery{Aggregate: true}, admin)
	require.NoError(t, err)
	require.Len(t, page.Content, 1)
	assert.Equal(t, int64(12), page.Content[0].Quantity)
	assert.Empty(t, page.Content[0].WarehouseID)
}

func TestSnapshot_AsOf(t *testing.T) {
	f := newFixture(t)
	f.move(t, entity.EventTypeInbound, "wh-a", "v-10", 10, day(2, 1))
	f.move(t, entity.EventTypeOutbound, "wh-a", "v-10", 4, day(2, 5))
	f.move(t, entity.EventTypeInbound, "wh-a", "v-10", 1, day(2, 9))

	asOf := day(2, 6)
	page, err := f.reports.Snapshot(context.Background(), report.SnapshotQuery{AsOf: &asOf}, admin)
	require.NoError(t, err)
	assert.Equal(t, []int64{6}, quantities(page.Content))

	page, err = f.reports.Snapshot(context.Background(), report.SnapshotQuery{}, admin)
	require.NoError(t, err)
	assert.Equal(t, []int64{7}, quantities(page.Content))
}

func TestSnapshot_Filters(t *testing.T) {
	f := newFixture(t)
	f.move(t, entity.EventTypeInbound, "wh-a", "v-10", 1, day(2, 1))
	f.move(t, entity.EventTypeInbound, "wh-a", "v-20", 2, day(2, 1))
	f.move(t, entity.EventTypeInbound, "wh-b", "v-20", 3, day(2, 1))

	page, err := f.reports.Snapshot(context.Background(), report.SnapshotQuery{
		Filter: repository.ReportFilter{AttributeValueIDs: []string{"av-500g", "av-molido"}},
	}, admin)
	require.NoError(t, err)
	assert.Equal(t, 2, page.TotalElements)

	page, err = f.reports.Snapshot(context.Background(), report.SnapshotQuery{
		Filter: repository.ReportFilter{WarehouseID: "wh-b"},
	}, seller)
	require.NoError(t, err)
	assert.Equal(t, []int64{3}, quantities(page.Content))

	_, err = f.reports.Snapshot(context.Background(), report.SnapshotQuery{}, seller)
	assert.ErrorIs(t, err, domain.ErrForbidden)

	_, err = f.reports.Snapshot(context.Background(), report.SnapshotQuery{
		Filter: repository.ReportFilter{WarehouseID: "wh-x"},
	}, admin)
	require.ErrorIs(t, err, domain.ErrInvalidPayload)
	assert.Equal(t, domain.ReasonUnknownWarehouse, domain.PayloadReason(err))
}

func TestSnapshotPDF_WithoutRenderer(t *testing.T) {
	f := newFixture(t)
	_, err := f.reports.SnapshotPDF(context.Background(), report.SnapshotQuery{}, admin)
	assert.Error(t, err)
}

func TestHistory_BalanceAfter(t *testing.T) {
	f := newFixture(t)
	f.move(t, entity.EventTypeInbound, "wh-a", "v-10", 10, day(2, 1))
	f.move(t, entity.EventTypeOutbound, "wh-a", "v-10", 3, day(2, 3))
	f.move(t, entity.EventTypeInbound, "wh-b", "v-10", 4, day(2, 4))
	f.move(t, entity.EventTypeAdjust, "wh-a", "v-10", 2, day(2, 5))

	page, err := f.reports.History(context.Background(), report.HistoryQuery{
		Filter: repository.ReportFilter{VariantID: "v-10"},
	}, admin)
	require.NoError(t, err)
	require.Len(t, page.Content, 4)
	var balances []int64
	for _, r := range page.Content {
		balances = append(balances, r.BalanceAfter)
	}
	assert.Equal(t, []int64{10, 7, 4, 9}, balances)

	from := day(2, 2)
	page, err = f.reports.History(context.Background(), report.HistoryQuery{
		Filter: repository.ReportFilter{VariantID: "v-10", WarehouseID: "wh-a"},
		From:   &from,
	}, admin)
	require.NoError(t, err)
	require.Len(t, page.Content, 2)
	assert.Equal(t, int64(-3), page.Content[0].QuantityChange)
	assert.Equal(t, int64(7), page.Content[0].BalanceAfter)
	assert.Equal(t, int64(9), page.Content[1].BalanceAfter)

	page, err = f.reports.History(context.Background(), report.HistoryQuery{
		Filter: repository.ReportFilter{VariantID: "v-10", WarehouseID: "wh-a"},
		Sort:   []report.SortOrder{{Field: "occurredAt", Ascending: false}},
	}, admin)
	require.NoError(t, err)
	assert.Equal(t, int64(9), page.Content[0].BalanceAfter)
}

func TestHistory_Validation(t *testing.T) {
	f := newFixture(t)

	_, err := f.reports.History(context.Background(), report.HistoryQuery{}, admin)
	require.ErrorIs(t, err, domain.ErrInvalidPayload)
	assert.Equal(t, domain.ReasonMissingSubject, domain.PayloadReason(err))

	from, to := day(2, 5), day(2, 1)
	_, err = f.reports.History(context.Background(), report.HistoryQuery{
		Filter: repository.ReportFilter{ProductID: "p-coffee"},
		From:   &from,
		To:     &to,
	}, admin)
	assert.Equal(t, domain.ReasonInvalidTimeWindow, domain.PayloadReason(err))
}

func TestLowStock(t *testing.T) {
	f := newFixture(t)
	f.move(t, entity.EventTypeInbound, "wh-a", "v-10", 10, day(2, 1))
	f.move(t, entity.EventTypeInbound, "wh-a", "v-20", 25, day(2, 1))
	f.move(t, entity.EventTypeInbound, "wh-a", "v-30", 2, day(2, 1))

	page, err := f.reports.LowStock(context.Background(), report.LowStockQuery{Threshold: 20}, admin)
	require.NoError(t, err)
	require.Len(t, page.Content, 2)
	assert.Equal(t, "v-30", page.Content[0].VariantID)
	assert.Equal(t, int64(-18), page.Content[0].Deficit)
	assert.Equal(t, "v-10", page.Content[1].VariantID)
	assert.Equal(t, int64(-10), page.Content[1].Deficit)
	assert.Equal(t, int64(20), page.Content[1].Threshold)

	_, err = f.reports.LowStock(context.Background(), report.LowStockQuery{Threshold: 0}, admin)
	assert.Equal(t, domain.ReasonInvalidThreshold, domain.PayloadReason(err))
}

func TestExpiring(t *testing.T) {
	f := newFixture(t)
	f.move(t, entity.EventTypeInbound, "wh-a", "v-milk", 8, day(2, 1))
	f.move(t, entity.EventTypeInbound, "wh-a", "v-10", 8, day(2, 1))
	asOf := day(3, 1)

	days := 15
	page, err := f.reports.Expiring(context.Background(), report.ExpiringQuery{AsOf: &asOf, DaysAhead: &days}, admin)
	require.NoError(t, err)
	require.Len(t, page.Content, 1)
	assert.Equal(t, "v-milk", page.Content[0].VariantID)
	assert.Equal(t, 10, page.Content[0].DaysUntilExpiry)
	assert.Equal(t, int64(8), page.Content[0].Quantity)

	days = 5
	page, err = f.reports.Expiring(context.Background(), report.ExpiringQuery{AsOf: &asOf, DaysAhead: &days}, admin)
	require.NoError(t, err)
	assert.Empty(t, page.Content)

	later := day(3, 20)
	page, err = f.reports.Expiring(context.Background(), report.ExpiringQuery{AsOf: &later, DaysAhead: &days}, admin)
	require.NoError(t, err)
	assert.Empty(t, page.Content)

	page, err = f.reports.Expiring(context.Background(), report.ExpiringQuery{AsOf: &later, DaysAhead: &days, IncludeExpired: true}, admin)
	require.NoError(t, err)
	require.Len(t, page.Content, 1)
	assert.Equal(t, -9, page.Content[0].DaysUntilExpiry)

	days = -1
	_, err = f.reports.Expiring(context.Background(), report.ExpiringQuery{AsOf: &asOf, DaysAhead: &days}, admin)
	assert.Equal(t, domain.ReasonInvalidDaysAhead, domain.PayloadReason(err))
}
