package http

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"salescli/internal/services"
)

func newDataRouter(t *testing.T) (chi.Router, *services.TerritoryService) {
	t.Helper()
	svc, _ := newTestTerritory(t)
	handler := NewDataHandler(svc, nil, testLogger(), newErrorHandler())

	r := chi.NewRouter()
	r.Mount("/api", handler.Routes())
	return r, svc
}

func TestDataHandler_GetCustomers(t *testing.T) {
	router, svc := newDataRouter(t)
	loadSample(t, svc)

	rec := doRequest(router, httptest.NewRequest(http.MethodGet, "/api/customers", nil))

	require.Equal(t, http.StatusOK, rec.Code)
	body := decodeJSON(t, rec)
	assert.Equal(t, "success", body["status"])
	assert.Equal(t, float64(2), body["count"])
	assert.Equal(t, float64(1), body["version"])

	data, ok := body["data"].([]interface{})
	require.True(t, ok)
	require.Len(t, data, 2)
	first := data[0].(map[string]interface{})
	assert.Equal(t, "CN246670", first["customerNumber"])
}

func TestDataHandler_GetCustomersByTerritory(t *testing.T) {
	router, svc := newDataRouter(t)
	loadSample(t, svc)

	rec := doRequest(router, httptest.NewRequest(http.MethodGet, "/api/customers?territory=littleton", nil))
	require.Equal(t, http.StatusOK, rec.Code)
	body := decodeJSON(t, rec)
	assert.Equal(t, float64(1), body["count"])

	rec = doRequest(router, httptest.NewRequest(http.MethodGet, "/api/customers?territory=atlantis", nil))
	require.Equal(t, http.StatusBadRequest, rec.Code)
	body = decodeJSON(t, rec)
	assert.Equal(t, "VALIDATION_FAILED", body["error_code"])
}

func TestDataHandler_GetCustomer(t *testing.T) {
	router, svc := newDataRouter(t)
	loadSample(t, svc)

	rec := doRequest(router, httptest.NewRequest(http.MethodGet, "/api/customers/CN246670", nil))
	require.Equal(t, http.StatusOK, rec.Code)
	body := decodeJSON(t, rec)
	data := body["data"].(map[string]interface{})
	assert.Equal(t, "4EYMED LLC", data["accountName"])
}

func TestDataHandler_GetCustomerNotFound(t *testing.T) {
	router, svc := newDataRouter(t)
	loadSample(t, svc)

	rec := doRequest(router, httptest.NewRequest(http.MethodGet, "/api/customers/CN999999", nil))
	require.Equal(t, http.StatusNotFound, rec.Code)
	body := decodeJSON(t, rec)
	assert.Equal(t, "CUSTOMER_NOT_FOUND", body["error_code"])
}

func TestDataHandler_GetCustomerNoDataset(t *testing.T) {
	router, _ := newDataRouter(t)

	rec := doRequest(router, httptest.NewRequest(http.MethodGet, "/api/customers/CN246670", nil))
	require.Equal(t, http.StatusNotFound, rec.Code)
	body := decodeJSON(t, rec)
	assert.Equal(t, "DATASET_NOT_LOADED", body["error_code"])
}

func TestDataHandler_GetCustomerInvalidNumber(t *testing.T) {
	router, svc := newDataRouter(t)
	loadSample(t, svc)

	for _, number := range []string{"246670", "CN12345", "CN1234567", "cn246670"} {
		rec := doRequest(router, httptest.NewRequest(http.MethodGet, "/api/customers/"+number, nil))
		assert.Equal(t, http.StatusBadRequest, rec.Code, "number %q", number)
	}
}

func TestDataHandler_TerritoryAnalytics(t *testing.T) {
	router, svc := newDataRouter(t)
	loadSample(t, svc)

	rec := doRequest(router, httptest.NewRequest(http.MethodGet, "/api/analytics/territories", nil))
	require.Equal(t, http.StatusOK, rec.Code)
	body := decodeJSON(t, rec)

	data := body["data"].(map[string]interface{})
	require.Contains(t, data, "littleton")
	littleton := data["littleton"].(map[string]interface{})
	assert.Equal(t, float64(1), littleton["customerCount"])
	assert.Equal(t, float64(5000), littleton["totalSales"])
}

func TestDataHandler_RepresentativeAnalytics(t *testing.T) {
	router, svc := newDataRouter(t)
	loadSample(t, svc)

	rec := doRequest(router, httptest.NewRequest(http.MethodGet, "/api/analytics/representatives", nil))
	require.Equal(t, http.StatusOK, rec.Code)
	body := decodeJSON(t, rec)
	assert.Equal(t, float64(2), body["count"])
}

func TestDataHandler_Search(t *testing.T) {
	router, svc := newDataRouter(t)
	loadSample(t, svc)

	tests := []struct {
		name  string
		query string
		count int
	}{
		{name: "free text match", query: "q=4EYMED", count: 1},
		{name: "sales rep filter", query: "salesRep=Kim+Coates", count: 1},
		{name: "territory filter", query: "territory=littleton", count: 1},
		{name: "sales range", query: "minSales=2000", count: 1},
		{name: "query and filter combined", query: "q=LLC&territory=littleton", count: 0},
		{name: "nothing active returns all", query: "", count: 2},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/api/search?"+tt.query, nil)
			rec := doRequest(router, req)

			require.Equal(t, http.StatusOK, rec.Code)
			body := decodeJSON(t, rec)
			assert.Equal(t, float64(tt.count), body["count"])
		})
	}
}

func TestDataHandler_SearchInvalidFilter(t *testing.T) {
	router, svc := newDataRouter(t)
	loadSample(t, svc)

	for _, query := range []string{"minSales=abc", "territory=atlantis", "isQ3PromoTarget=maybe"} {
		rec := doRequest(router, httptest.NewRequest(http.MethodGet, "/api/search?"+query, nil))
		assert.Equal(t, http.StatusBadRequest, rec.Code, "query %q", query)
	}
}

func TestDataHandler_ExportCustomers(t *testing.T) {
	router, svc := newDataRouter(t)
	loadSample(t, svc)

	rec := doRequest(router, httptest.NewRequest(http.MethodGet, "/api/export/customers.csv", nil))

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "text/csv; charset=utf-8", rec.Header().Get("Content-Type"))
	assert.Contains(t, rec.Header().Get("Content-Disposition"), "attachment")
	assert.Contains(t, rec.Body.String(), "CN246670")
	assert.Contains(t, rec.Body.String(), "CN111111")
}

func TestDataHandler_ExportTerritoryStats(t *testing.T) {
	router, svc := newDataRouter(t)
	loadSample(t, svc)

	rec := doRequest(router, httptest.NewRequest(http.MethodGet, "/api/export/territories.csv", nil))

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "text/csv; charset=utf-8", rec.Header().Get("Content-Type"))
	assert.Contains(t, rec.Body.String(), "littleton")
}
