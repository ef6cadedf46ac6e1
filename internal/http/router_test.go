package http_test

import (
	"archive/zip"
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"

	"github.com/MrJamesThe3rd/storeledger/internal/advice"
	"github.com/MrJamesThe3rd/storeledger/internal/export"
	storehttp "github.com/MrJamesThe3rd/storeledger/internal/http"
	adviceHandler "github.com/MrJamesThe3rd/storeledger/internal/http/advice"
	catalogHandler "github.com/MrJamesThe3rd/storeledger/internal/http/catalog"
	directoryHandler "github.com/MrJamesThe3rd/storeledger/internal/http/directory"
	reportHandler "github.com/MrJamesThe3rd/storeledger/internal/http/report"
	salesHandler "github.com/MrJamesThe3rd/storeledger/internal/http/sales"
	"github.com/MrJamesThe3rd/storeledger/internal/importer"
	"github.com/MrJamesThe3rd/storeledger/internal/ledger"
)

type fixture struct {
	server  *httptest.Server
	repo    *ledger.MockRepository
	advisor *advice.MockAdvisor
	svc     *ledger.Service
}

func newFixture(t *testing.T) *fixture {
	t.Helper()

	ctrl := gomock.NewController(t)

	repo := ledger.NewMockRepository(ctrl)
	advisor := advice.NewMockAdvisor(ctrl)

	svc := ledger.NewService(repo, ledger.NewEngine(
		ledger.WithIDGenerator(&ledger.SequenceGenerator{Prefix: "id-"}),
	))

	adviceSvc := advice.NewService(advisor, advice.Config{
		MinClientIDLen:  10,
		MaxPayloadBytes: 5000,
		MaxQueryChars:   500,
		CacheTTL:        time.Hour,
		CacheMaxEntries: 100,
		Timeout:         time.Second,
	})

	router := storehttp.New(
		storehttp.Options{AllowedOrigins: []string{"*"}},
		catalogHandler.NewHandler(svc, importer.NewService()),
		salesHandler.NewHandler(svc, time.UTC),
		directoryHandler.NewHandler(svc, time.UTC),
		reportHandler.NewHandler(svc, export.NewService(svc), time.UTC),
		adviceHandler.NewHandler(adviceSvc, 5000, time.Hour),
	)

	srv := httptest.NewServer(router)
	t.Cleanup(srv.Close)

	return &fixture{server: srv, repo: repo, advisor: advisor, svc: svc}
}

func (f *fixture) do(t *testing.T, method, path string, body any) *http.Response {
	t.Helper()

	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}

	req, err := http.NewRequest(method, f.server.URL+path, &buf)
	require.NoError(t, err)

	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	t.Cleanup(func() { resp.Body.Close() })

	return resp
}

func decode[T any](t *testing.T, resp *http.Response) T {
	t.Helper()

	var v T
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&v))

	return v
}

func TestRouter_ProductLifecycle(t *testing.T) {
	f := newFixture(t)
	f.repo.EXPECT().Save(gomock.Any(), gomock.Any()).Return(nil).AnyTimes()

	resp := f.do(t, http.MethodPost, "/api/v1/products", map[string]any{
		"name": "Yerba", "category": "Almacén", "price": "3200.50", "stock": 3, "barcode": "7790001",
	})
	require.Equal(t, http.StatusCreated, resp.StatusCode)

	created := decode[map[string]any](t, resp)
	assert.Equal(t, "id-1", created["id"])
	assert.Equal(t, true, created["lowStock"])
	assert.EqualValues(t, 5, created["threshold"])

	resp = f.do(t, http.MethodGet, "/api/v1/products/scan/7790001", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)

	resp = f.do(t, http.MethodGet, "/api/v1/products/scan/nope", nil)
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)

	resp = f.do(t, http.MethodPut, "/api/v1/products/id-1", map[string]any{
		"name": "Yerba", "category": "Almacén", "price": "3300", "stock": 20, "minStock": 0,
	})
	require.Equal(t, http.StatusOK, resp.StatusCode)

	updated := decode[map[string]any](t, resp)
	assert.Equal(t, false, updated["lowStock"])
	assert.EqualValues(t, 0, updated["minStock"])

	resp = f.do(t, http.MethodPost, "/api/v1/products", map[string]any{
		"name": "Clavos", "category": "Ferretería", "price": "1", "stock": 1,
	})
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)

	resp = f.do(t, http.MethodDelete, "/api/v1/products/id-1", nil)
	assert.Equal(t, http.StatusNoContent, resp.StatusCode)

	resp = f.do(t, http.MethodGet, "/api/v1/products/id-1", nil)
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
}

func TestRouter_Categories(t *testing.T) {
	f := newFixture(t)
	f.repo.EXPECT().Save(gomock.Any(), gomock.Any()).Return(nil).AnyTimes()

	resp := f.do(t, http.MethodPost, "/api/v1/categories", map[string]string{"name": "Bebidas"})
	assert.Equal(t, http.StatusConflict, resp.StatusCode)

	resp = f.do(t, http.MethodPatch, "/api/v1/categories/L%C3%A1cteos", map[string]string{"name": "Bebidas"})
	require.Equal(t, http.StatusOK, resp.StatusCode)

	cats := decode[[]string](t, resp)
	assert.NotContains(t, cats, "Lácteos")

	resp = f.do(t, http.MethodPatch, "/api/v1/categories/Ferreter%C3%ADa", map[string]string{"name": "Otros"})
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
}

func TestRouter_Checkout(t *testing.T) {
	f := newFixture(t)
	f.repo.EXPECT().Save(gomock.Any(), gomock.Any()).Return(nil).AnyTimes()

	a, err := f.svc.UpsertProduct(context.Background(), ledger.ProductParams{
		Name: "A", Category: "Almacén", Price: decimal.RequireFromString("10.00"), Stock: 3,
	})
	require.NoError(t, err)
	b, err := f.svc.UpsertProduct(context.Background(), ledger.ProductParams{
		Name: "B", Category: "Almacén", Price: decimal.RequireFromString("5.50"), Stock: 7,
	})
	require.NoError(t, err)

	cart := map[string]any{"items": []map[string]any{
		{"productId": a.ID, "quantity": 2},
		{"productId": b.ID, "quantity": 1},
	}}

	resp := f.do(t, http.MethodPost, "/api/v1/sales/quote", cart)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	quote := decode[map[string]decimal.Decimal](t, resp)
	assert.True(t, decimal.RequireFromString("25.50").Equal(quote["total"]))

	resp = f.do(t, http.MethodPost, "/api/v1/sales/checkout", cart)
	require.Equal(t, http.StatusCreated, resp.StatusCode)

	sale := decode[ledger.Sale](t, resp)
	assert.True(t, decimal.RequireFromString("25.50").Equal(sale.Total))

	resp = f.do(t, http.MethodPost, "/api/v1/sales/checkout", map[string]any{"items": []any{}})
	assert.Equal(t, http.StatusUnprocessableEntity, resp.StatusCode)

	resp = f.do(t, http.MethodGet, "/api/v1/sales", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Len(t, decode[[]ledger.Sale](t, resp), 1)

	resp = f.do(t, http.MethodGet, "/api/v1/reports/dashboard", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)

	dash := decode[ledger.Dashboard](t, resp)
	assert.True(t, decimal.RequireFromString("25.5").Equal(dash.SalesToday))
	assert.Equal(t, 1, dash.LowStockCount)
}

func TestRouter_CheckoutSaveFailure(t *testing.T) {
	f := newFixture(t)

	gomock.InOrder(
		f.repo.EXPECT().Save(gomock.Any(), gomock.Any()).Return(nil),
		f.repo.EXPECT().Save(gomock.Any(), gomock.Any()).Return(errors.New("disk full")),
	)

	p, err := f.svc.UpsertProduct(context.Background(), ledger.ProductParams{
		Name: "A", Category: "Almacén", Price: decimal.RequireFromString("1"), Stock: 3,
	})
	require.NoError(t, err)

	resp := f.do(t, http.MethodPost, "/api/v1/sales/checkout", map[string]any{
		"items": []map[string]any{{"productId": p.ID, "quantity": 1}},
	})
	assert.Equal(t, http.StatusInternalServerError, resp.StatusCode)
	assert.Empty(t, f.svc.Snapshot().Sales)
}

func TestRouter_SuppliersAndExpenses(t *testing.T) {
	f := newFixture(t)
	f.repo.EXPECT().Save(gomock.Any(), gomock.Any()).Return(nil).AnyTimes()

	resp := f.do(t, http.MethodPost, "/api/v1/suppliers", map[string]string{"name": "Distribuidora"})
	require.Equal(t, http.StatusCreated, resp.StatusCode)

	sup := decode[ledger.Supplier](t, resp)

	resp = f.do(t, http.MethodPost, "/api/v1/expenses", map[string]any{
		"description": "Pedido", "amount": "1500", "category": "supplier", "supplierId": sup.ID,
	})
	require.Equal(t, http.StatusCreated, resp.StatusCode)

	resp = f.do(t, http.MethodPost, "/api/v1/expenses", map[string]any{
		"description": "Pedido", "amount": "1", "category": "rent",
	})
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)

	resp = f.do(t, http.MethodDelete, "/api/v1/suppliers/"+sup.ID, nil)
	require.Equal(t, http.StatusNoContent, resp.StatusCode)

	resp = f.do(t, http.MethodGet, "/api/v1/expenses", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)

	expenses := decode[[]ledger.Expense](t, resp)
	require.Len(t, expenses, 1)
	assert.Equal(t, sup.ID, expenses[0].SupplierID)

	resp = f.do(t, http.MethodGet, "/api/v1/reports/balance?date=2020-01-01", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)

	balance := decode[ledger.Balance](t, resp)
	assert.True(t, balance.Net.IsZero())

	resp = f.do(t, http.MethodGet, "/api/v1/reports/balance?date=yesterday", nil)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
}

func TestRouter_ImportProducts(t *testing.T) {
	f := newFixture(t)
	f.repo.EXPECT().Save(gomock.Any(), gomock.Any()).Return(nil).Times(1)

	var body bytes.Buffer

	mw := multipart.NewWriter(&body)
	require.NoError(t, mw.WriteField("format", "csv"))

	part, err := mw.CreateFormFile("file", "precios.csv")
	require.NoError(t, err)

	_, err = part.Write([]byte("Producto;Categoría;Precio;Stock\nYerba;Almacén;3.200,50;12\nAgua;Bebidas;950;30\n"))
	require.NoError(t, err)
	require.NoError(t, mw.Close())

	req, err := http.NewRequest(http.MethodPost, f.server.URL+"/api/v1/products/import", &body)
	require.NoError(t, err)
	req.Header.Set("Content-Type", mw.FormDataContentType())

	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	defer resp.Body.Close()

	require.Equal(t, http.StatusCreated, resp.StatusCode)
	assert.EqualValues(t, 2, decode[map[string]any](t, resp)["imported"])
	assert.Len(t, f.svc.Snapshot().Products, 2)
}

func TestRouter_ExportDownload(t *testing.T) {
	f := newFixture(t)

	resp := f.do(t, http.MethodGet, "/api/v1/reports/export/download?date=2026-03-14", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "application/zip", resp.Header.Get("Content-Type"))

	var buf bytes.Buffer
	_, err := buf.ReadFrom(resp.Body)
	require.NoError(t, err)

	zr, err := zip.NewReader(bytes.NewReader(buf.Bytes()), int64(buf.Len()))
	require.NoError(t, err)

	var names []string
	for _, zf := range zr.File {
		names = append(names, zf.Name)
	}

	assert.ElementsMatch(t, []string{"ventas_20260314.csv", "gastos_20260314.csv", "resumen_20260314.txt"}, names)
}

func TestRouter_StoreAdvice(t *testing.T) {
	f := newFixture(t)

	f.advisor.EXPECT().Advise(gomock.Any(), gomock.Any(), gomock.Any()).Return("Reponé yerba.", nil).Times(1)

	post := func(clientID, body string) *http.Response {
		req, err := http.NewRequest(http.MethodPost, f.server.URL+"/api/store-advice", strings.NewReader(body))
		require.NoError(t, err)
		req.Header.Set("Content-Type", "application/json")

		if clientID != "" {
			req.Header.Set("x-client-id", clientID)
		}

		resp, err := http.DefaultClient.Do(req)
		require.NoError(t, err)
		t.Cleanup(func() { resp.Body.Close() })

		return resp
	}

	resp := post("", `{}`)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)

	resp = post("client-0123456789", `{"userQuery":"`+strings.Repeat("x", 6000)+`"}`)
	assert.Equal(t, http.StatusRequestEntityTooLarge, resp.StatusCode)

	resp = post("client-0123456789", `{"state":{"products":[]}}`)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "Reponé yerba.", decode[advice.Response](t, resp).Answer)
	assert.Equal(t, "public, max-age=3600", resp.Header.Get("Cache-Control"))

	// Served from cache: the advisor expectation allows a single call.
	resp = post("client-9876543210", `{"state":{"products":[]}}`)
	require.Equal(t, http.StatusOK, resp.StatusCode)
}
