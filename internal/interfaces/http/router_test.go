package http_test

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/inventario-pos/internal/application/catalog"
	"github.com/jhoicas/inventario-pos/internal/application/dto"
	"github.com/jhoicas/inventario-pos/internal/application/expense"
	"github.com/jhoicas/inventario-pos/internal/application/gate"
	"github.com/jhoicas/inventario-pos/internal/application/inventory"
	"github.com/jhoicas/inventario-pos/internal/application/portation"
	"github.com/jhoicas/inventario-pos/internal/application/reporting"
	"github.com/jhoicas/inventario-pos/internal/application/sales"
	"github.com/jhoicas/inventario-pos/internal/infrastructure/pdf"
	"github.com/jhoicas/inventario-pos/internal/infrastructure/persistence"
	"github.com/jhoicas/inventario-pos/internal/infrastructure/spreadsheet"
	apphttp "github.com/jhoicas/inventario-pos/internal/interfaces/http"
	"github.com/jhoicas/inventario-pos/internal/testutil"
)

// newTestApp arma la API completa sobre una base SQLite temporal.
func newTestApp(t *testing.T) (*fiber.App, *persistence.Store) {
	t.Helper()
	store := testutil.NewStore(t)
	log := zerolog.Nop()
	engine := inventory.NewEngine(inventory.NewLedger())
	svc := portation.NewService(store, store, engine, spreadsheet.New(), log)

	app := apphttp.NewApp("inventario-pos-test", log, apphttp.RouterDeps{
		CategoryUC:    catalog.NewCategoryUseCase(store, store, log),
		ProductUC:     catalog.NewProductUseCase(store, store, engine, log),
		RawMaterialUC: catalog.NewRawMaterialUseCase(store, store, engine, log),
		CustomerUC:    catalog.NewCustomerUseCase(store, store, log),
		CompanyUC:     catalog.NewCompanyUseCase(store, store),
		SaleUC:        sales.NewSaleUseCase(store, store, engine, log),
		InvoiceUC:     sales.NewInvoiceUseCase(store, store, pdf.NewMarotoPDFGenerator(), log),
		ExpenseUC:     expense.NewUseCase(store, store, engine, log),
		InventoryUC:   inventory.NewUseCase(store, store, engine, log),
		Replenishment: inventory.NewReplenishmentUseCase(store),
		ReportUC:      reporting.NewUseCase(store),
		Portation:     svc,
		ImportWorker:  portation.NewWorker(svc, log),
		GateUC:        gate.NewUseCase(store, store, testJWTConfig, log),
	})
	return app, store
}

func doJSON(t *testing.T, app *fiber.App, method, path string, body any, headers ...string) *http.Response {
	t.Helper()
	var r io.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		require.NoError(t, err)
		r = bytes.NewReader(raw)
	}
	req := httptest.NewRequest(method, path, r)
	req.Header.Set("Content-Type", "application/json")
	for i := 0; i+1 < len(headers); i += 2 {
		req.Header.Set(headers[i], headers[i+1])
	}
	resp, err := app.Test(req, -1)
	require.NoError(t, err)
	t.Cleanup(func() { _ = resp.Body.Close() })
	return resp
}

func decode[T any](t *testing.T, resp *http.Response) T {
	t.Helper()
	var out T
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&out))
	return out
}

func TestSalesAPI_VentaYFactura(t *testing.T) {
	app, store := newTestApp(t)

	resp := doJSON(t, app, http.MethodPost, "/api/products", map[string]any{
		"sku": "PROD-001", "name": "Vela lavanda", "sale_price": "12500", "stock": 5,
	})
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	product := decode[dto.ProductDetailResponse](t, resp)
	assert.Equal(t, int64(5), product.Stock)

	resp = doJSON(t, app, http.MethodPost, "/api/sales", map[string]any{
		"payment_method": "efectivo",
		"lines":          []map[string]any{{"product_id": product.ID, "quantity": 2}},
	})
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	sale := decode[dto.SaleResponse](t, resp)
	assert.Equal(t, "INV-000001", sale.InvoiceNumber)
	testutil.RequireDecimal(t, "25000", sale.Total)
	assert.Equal(t, int64(3), testutil.ProductStock(t, store, product.ID))

	resp = doJSON(t, app, http.MethodPost, "/api/sales", map[string]any{
		"payment_method": "efectivo",
		"lines":          []map[string]any{{"product_id": product.ID, "quantity": 10}},
	})
	require.Equal(t, http.StatusConflict, resp.StatusCode)
	errBody := decode[dto.ErrorResponse](t, resp)
	assert.Equal(t, "INSUFFICIENT_STOCK", errBody.Code)
	assert.Equal(t, "3", errBody.Details["available"])

	resp = doJSON(t, app, http.MethodGet, "/api/sales/invoice/inv-000001", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, sale.ID, decode[dto.SaleResponse](t, resp).ID)

	resp = doJSON(t, app, http.MethodGet, fmt.Sprintf("/api/sales/%d/invoice.html", sale.ID), nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	html, _ := io.ReadAll(resp.Body)
	assert.Contains(t, string(html), "INV-000001")

	resp = doJSON(t, app, http.MethodPost, fmt.Sprintf("/api/sales/%d/invoice/confirm", sale.ID), nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.True(t, decode[dto.SaleResponse](t, resp).HasInvoice)

	resp = doJSON(t, app, http.MethodPut, fmt.Sprintf("/api/sales/%d", sale.ID), map[string]any{
		"payment_method": "efectivo",
		"lines":          []map[string]any{{"product_id": product.ID, "quantity": 1}},
	})
	require.Equal(t, http.StatusConflict, resp.StatusCode)
	assert.Equal(t, "STATE_TRANSITION", decode[dto.ErrorResponse](t, resp).Code)
	testutil.AssertLedgerIdentity(t, store)
}

func TestSalesAPI_ValidacionYNoEncontrado(t *testing.T) {
	app, _ := newTestApp(t)

	resp := doJSON(t, app, http.MethodPost, "/api/sales", map[string]any{"payment_method": "efectivo"})
	require.Equal(t, http.StatusUnprocessableEntity, resp.StatusCode)
	body := decode[dto.ErrorResponse](t, resp)
	assert.Equal(t, "VALIDATION", body.Code)
	assert.Equal(t, "required", body.Details["lines"])

	resp = doJSON(t, app, http.MethodGet, "/api/products/999", nil)
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
	assert.Equal(t, "NOT_FOUND", decode[dto.ErrorResponse](t, resp).Code)

	resp = doJSON(t, app, http.MethodGet, "/api/products/abc", nil)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)

	resp = doJSON(t, app, http.MethodGet, "/api/sales?from=15-01-2025", nil)
	assert.Equal(t, http.StatusUnprocessableEntity, resp.StatusCode)

	resp = doJSON(t, app, http.MethodGet, "/health", nil)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.NotEmpty(t, resp.Header.Get(apphttp.HeaderRequestID))
}

func TestInventoryAPI_RequierePuerta(t *testing.T) {
	app, store := newTestApp(t)
	p := testutil.SeedProduct(t, store, "PROD-001", "1000", 4)

	resp := doJSON(t, app, http.MethodPost, "/api/inventory/reset", nil)
	require.Equal(t, http.StatusUnauthorized, resp.StatusCode)

	resp = doJSON(t, app, http.MethodPost, "/api/gate/unlock", map[string]any{"password": "1234"})
	require.Equal(t, http.StatusNotFound, resp.StatusCode, "sin contraseña configurada")

	resp = doJSON(t, app, http.MethodPut, "/api/gate/password", map[string]any{"new": "1234", "hint": "pin"})
	require.Equal(t, http.StatusNoContent, resp.StatusCode)

	resp = doJSON(t, app, http.MethodGet, "/api/gate", nil)
	status := decode[dto.GateStatusResponse](t, resp)
	assert.True(t, status.Configured)
	assert.Equal(t, "pin", status.Hint)

	resp = doJSON(t, app, http.MethodPost, "/api/gate/unlock", map[string]any{"password": "9999"})
	require.Equal(t, http.StatusUnauthorized, resp.StatusCode)

	resp = doJSON(t, app, http.MethodPost, "/api/gate/unlock", map[string]any{"password": "1234"})
	require.Equal(t, http.StatusOK, resp.StatusCode)
	token := decode[dto.TokenResponse](t, resp).Token
	auth := []string{"Authorization", "Bearer " + token}

	resp = doJSON(t, app, http.MethodPost, "/api/inventory/adjust", map[string]any{
		"entity": "product", "id": p.ID, "mode": "entry", "quantity": "3", "reason": "compra",
	}, auth...)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	change := decode[dto.StockChangeResponse](t, resp)
	testutil.RequireDecimal(t, "7", change.NewStock)

	resp = doJSON(t, app, http.MethodPost, "/api/inventory/reset", nil, auth...)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, 1, decode[dto.BulkResultResponse](t, resp).Affected)
	assert.Zero(t, testutil.ProductStock(t, store, p.ID))

	resp = doJSON(t, app, http.MethodGet, "/api/inventory/audit", nil, auth...)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Empty(t, decode[[]dto.LedgerDiscrepancyDTO](t, resp))
}

func TestPortationAPI_ImportarYExportarClientes(t *testing.T) {
	app, store := newTestApp(t)

	var book bytes.Buffer
	require.NoError(t, spreadsheet.New().WriteWorkbook(&book, []portation.Sheet{{
		Name:   "Clientes",
		Header: []string{"Nombre", "Email", "Teléfono"},
		Rows:   [][]any{{"Ana", "ana@mail.co", "300"}, {"Bruno", "", ""}},
	}}))

	var form bytes.Buffer
	mw := multipart.NewWriter(&form)
	part, err := mw.CreateFormFile("file", "clientes.xlsx")
	require.NoError(t, err)
	_, err = part.Write(book.Bytes())
	require.NoError(t, err)
	require.NoError(t, mw.Close())

	req := httptest.NewRequest(http.MethodPost, "/api/imports/clientes?wait=true", &form)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	resp, err := app.Test(req, -1)
	require.NoError(t, err)
	defer resp.Body.Close()
	require.Equal(t, http.StatusOK, resp.StatusCode)
	job := decode[dto.ImportJobResponse](t, resp)
	assert.Equal(t, portation.JobDone, job.Status)
	require.NotNil(t, job.Report)
	assert.Equal(t, 2, job.Report.Imported)

	list, err := store.Customers().List(req.Context(), "")
	require.NoError(t, err)
	assert.Len(t, list, 2)

	resp = doJSON(t, app, http.MethodGet, "/api/imports/jobs/"+job.JobID, nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, portation.JobDone, decode[dto.ImportJobResponse](t, resp).Status)

	resp = doJSON(t, app, http.MethodGet, "/api/exports/customers", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Contains(t, resp.Header.Get("Content-Disposition"), "clientes.xlsx")
	exported, _ := io.ReadAll(resp.Body)
	table, err := spreadsheet.New().ReadTable(bytes.NewReader(exported))
	require.NoError(t, err)
	assert.Len(t, table.Rows, 2)

	resp = doJSON(t, app, http.MethodGet, "/api/exports/facturas", nil)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
}
