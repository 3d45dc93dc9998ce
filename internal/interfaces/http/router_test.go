package http_test

import (
	"bytes"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/stock-ledger/internal/application/dto"
	"github.com/jhoicas/stock-ledger/internal/application/inventory"
	"github.com/jhoicas/stock-ledger/internal/application/report"
	"github.com/jhoicas/stock-ledger/internal/infrastructure/memory"
	apphttp "github.com/jhoicas/stock-ledger/internal/interfaces/http"
	pkgjwt "github.com/jhoicas/stock-ledger/pkg/jwt"
)

type apiClient struct {
	t   *testing.T
	app *fiber.App
}

func newAPI(t *testing.T) *apiClient {
	t.Helper()
	store := memory.NewSeeded()
	events := inventory.NewStockEventUseCase(store, store.StockEvents(), store.Warehouses(), store.Variants(), nil, nil)
	transfers := inventory.NewTransferUseCase(store, store.Transfers(), store.StockEvents(), store.Warehouses(), store.Variants(), events, nil, nil)
	reports := report.NewReportUseCase(store.Reports(), store.Warehouses(), nil, report.Config{})

	app := fiber.New()
	apphttp.Router(app, apphttp.RouterDeps{
		StockEventUC: events,
		TransferUC:   transfers,
		ReportUC:     reports,
		JWTSecret:    testJWTSecret,
	})
	return &apiClient{t: t, app: app}
}

// do envía la petición como userID/role y decodifica el cuerpo JSON en out (si no es nil).
func (a *apiClient) do(method, path, userID, role string, body any, headers map[string]string, out any) int {
	a.t.Helper()
	var reader io.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		require.NoError(a.t, err)
		reader = bytes.NewReader(raw)
	}
	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	tok, err := pkgjwt.Generate(testJWTSecret, userID, role, testIssuer, testExpMin)
	require.NoError(a.t, err)
	req.Header.Set("Authorization", "Bearer "+tok)
	for k, v := range headers {
		req.Header.Set(k, v)
	}
	resp, err := a.app.Test(req, -1)
	require.NoError(a.t, err)
	defer resp.Body.Close()
	if out != nil {
		require.NoError(a.t, json.NewDecoder(resp.Body).Decode(out))
	}
	return resp.StatusCode
}

func inbound(qty int64) map[string]any {
	return map[string]any{
		"type":         "inbound",
		"warehouse_id": "wh-main",
		"reason_code":  "purchase",
		"lines":        []map[string]any{{"variant_id": "var-coffee-500", "quantity": qty}},
	}
}

func TestAPI_CreateStockEventAndReplay(t *testing.T) {
	api := newAPI(t)
	key := map[string]string{"Idempotency-Key": "k-1"}

	var first dto.StockEventResponse
	status := api.do(http.MethodPost, "/api/stock-events", "user-manager", "manager", inbound(12), key, &first)
	require.Equal(t, http.StatusCreated, status)
	assert.Equal(t, "INBOUND", first.Type)
	assert.Equal(t, "user-manager", first.CreatedBy)
	require.Len(t, first.Lines, 1)
	assert.Equal(t, int64(12), first.Lines[0].Quantity)

	var again dto.StockEventResponse
	status = api.do(http.MethodPost, "/api/stock-events", "user-manager", "manager", inbound(12), key, &again)
	require.Equal(t, http.StatusCreated, status)
	assert.Equal(t, first.ID, again.ID)

	var conflict dto.ErrorResponse
	status = api.do(http.MethodPost, "/api/stock-events", "user-manager", "manager", inbound(13), key, &conflict)
	assert.Equal(t, http.StatusConflict, status)
	assert.Equal(t, "IDEMPOTENCY_CONFLICT", conflict.Code)

	var got dto.StockEventResponse
	status = api.do(http.MethodGet, "/api/stock-events/"+first.ID, "user-admin", "admin", nil, nil, &got)
	require.Equal(t, http.StatusOK, status)
	assert.Equal(t, first.ID, got.ID)
}

func TestAPI_ErrorMapping(t *testing.T) {
	api := newAPI(t)

	var e dto.ErrorResponse
	status := api.do(http.MethodPost, "/api/stock-events", "user-seller", "seller", inbound(1), nil, &e)
	assert.Equal(t, http.StatusForbidden, status)
	assert.Equal(t, "FORBIDDEN", e.Code)

	outbound := map[string]any{
		"type":         "OUTBOUND",
		"warehouse_id": "wh-main",
		"reason_code":  "SALE",
		"lines":        []map[string]any{{"variant_id": "var-coffee-500", "quantity": 1}},
	}
	e = dto.ErrorResponse{}
	status = api.do(http.MethodPost, "/api/stock-events", "user-seller", "seller", outbound, nil, &e)
	assert.Equal(t, http.StatusConflict, status)
	assert.Equal(t, "INSUFFICIENT_QUANTITY", e.Code)

	empty := map[string]any{"type": "INBOUND", "warehouse_id": "wh-main", "reason_code": "PURCHASE"}
	e = dto.ErrorResponse{}
	status = api.do(http.MethodPost, "/api/stock-events", "user-admin", "admin", empty, nil, &e)
	assert.Equal(t, http.StatusBadRequest, status)
	assert.Equal(t, "INVALID_PAYLOAD", e.Code)
	assert.Equal(t, "empty-lines", e.Reason)

	e = dto.ErrorResponse{}
	status = api.do(http.MethodGet, "/api/stock-events/nope", "user-admin", "admin", nil, nil, &e)
	assert.Equal(t, http.StatusNotFound, status)
	assert.Equal(t, "STOCK_EVENT_NOT_FOUND", e.Code)

	e = dto.ErrorResponse{}
	status = api.do(http.MethodGet, "/api/reports/low-stock?threshold=abc", "user-admin", "admin", nil, nil, &e)
	assert.Equal(t, http.StatusBadRequest, status)
	assert.Equal(t, "INVALID_PAYLOAD", e.Code)
}

func TestAPI_TransferFlow(t *testing.T) {
	api := newAPI(t)
	require.Equal(t, http.StatusCreated, api.do(http.MethodPost, "/api/stock-events", "user-admin", "admin", inbound(100), nil, nil))

	draftBody := map[string]any{
		"origin_warehouse_id":      "wh-main",
		"destination_warehouse_id": "wh-store",
		"lines":                    []map[string]any{{"variant_id": "var-coffee-500", "quantity": 40}},
	}
	var e dto.ErrorResponse
	status := api.do(http.MethodPost, "/api/transfers", "user-seller", "seller", draftBody, nil, &e)
	assert.Equal(t, http.StatusForbidden, status)

	var draft dto.TransferResponse
	status = api.do(http.MethodPost, "/api/transfers", "user-manager", "manager", draftBody, nil, &draft)
	require.Equal(t, http.StatusCreated, status)
	assert.Equal(t, "DRAFT", draft.Status)

	var confirmed dto.TransferResponse
	status = api.do(http.MethodPost, "/api/transfers/"+draft.ID+"/confirm", "user-manager", "manager", nil,
		map[string]string{"Idempotency-Key": "confirm-1"}, &confirmed)
	require.Equal(t, http.StatusOK, status)
	assert.Equal(t, "CONFIRMED", confirmed.Status)
	assert.NotEmpty(t, confirmed.OutboundEventID)

	e = dto.ErrorResponse{}
	status = api.do(http.MethodPost, "/api/transfers/"+draft.ID+"/cancel", "user-manager", "manager", nil, nil, &e)
	assert.Equal(t, http.StatusConflict, status)
	assert.Equal(t, "TRANSFER_NOT_DRAFT", e.Code)

	var snapshot dto.Page[dto.SnapshotRowDTO]
	status = api.do(http.MethodGet, "/api/reports/snapshot?warehouse_id=wh-store", "user-seller", "seller", nil, nil, &snapshot)
	require.Equal(t, http.StatusOK, status)
	require.Len(t, snapshot.Content, 1)
	assert.Equal(t, int64(40), snapshot.Content[0].Quantity)

	var all dto.Page[dto.SnapshotRowDTO]
	status = api.do(http.MethodGet, "/api/reports/snapshot?sort=quantity,desc", "user-admin", "admin", nil, nil, &all)
	require.Equal(t, http.StatusOK, status)
	require.Len(t, all.Content, 2)
	assert.Equal(t, int64(60), all.Content[0].Quantity)

	e = dto.ErrorResponse{}
	status = api.do(http.MethodGet, "/api/reports/snapshot", "user-seller", "seller", nil, nil, &e)
	assert.Equal(t, http.StatusForbidden, status)
}
