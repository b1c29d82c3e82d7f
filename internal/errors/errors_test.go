package errors

import (
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAPIError(t *testing.T) {
	err := New(http.StatusNotFound, "CUSTOMER_NOT_FOUND", "Customer not found")

	assert.Equal(t, "Customer not found", err.Error())
	assert.Equal(t, http.StatusNotFound, err.StatusCode)
	assert.Equal(t, "CUSTOMER_NOT_FOUND", err.ErrorCode)
}

func TestCustomerNotFoundError(t *testing.T) {
	err := CustomerNotFoundError("CN246670")

	assert.Equal(t, http.StatusNotFound, err.StatusCode)
	assert.Equal(t, "Customer CN246670 not found", err.Message)
	assert.Equal(t, "CN246670", err.Details)
}

func TestWriteError(t *testing.T) {
	rec := httptest.NewRecorder()
	WriteError(rec, ErrDatasetNotLoaded)

	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.Equal(t, "application/json", rec.Header().Get("Content-Type"))

	var resp ErrorResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.False(t, resp.Success)
	assert.Equal(t, "DATASET_NOT_LOADED", resp.Error.ErrorCode)
}

func TestAppError(t *testing.T) {
	cause := fmt.Errorf("open snapshot.json: no such file")
	err := NewStorageError("failed to read snapshot", cause)

	assert.Equal(t, "[STORAGE] failed to read snapshot: open snapshot.json: no such file", err.Error())
	assert.Equal(t, cause, err.Unwrap())

	err.WithContext("path", "snapshot.json")
	assert.Equal(t, "snapshot.json", err.Context["path"])
}

func TestAppError_NoCause(t *testing.T) {
	err := NewAppValidationError("empty query")
	assert.Equal(t, "[VALIDATION] empty query", err.Error())
	assert.Nil(t, err.Unwrap())
}

func TestProblemDetails_MarshalJSON(t *testing.T) {
	pd := NewProblemDetails(http.StatusNotFound, TypeCustomerNotFound, "Customer Not Found", "nope", "/api/customers/CN000001").
		WithExtension("trace_id", "abc123")

	data, err := json.Marshal(pd)
	require.NoError(t, err)

	var decoded map[string]interface{}
	require.NoError(t, json.Unmarshal(data, &decoded))
	assert.Equal(t, TypeCustomerNotFound, decoded["type"])
	assert.Equal(t, float64(http.StatusNotFound), decoded["status"])
	assert.Equal(t, "abc123", decoded["trace_id"])
}

func TestMapDatasetError(t *testing.T) {
	tests := []struct {
		name       string
		err        error
		wantStatus int
		wantCode   string
	}{
		{"no dataset", ErrNoDataset, http.StatusNotFound, "DATASET_NOT_LOADED"},
		{"customer unknown", ErrCustomerUnknown, http.StatusNotFound, "CUSTOMER_NOT_FOUND"},
		{"no customers", ErrNoCustomers, http.StatusUnprocessableEntity, "NO_VALID_CUSTOMERS"},
		{"load busy", ErrLoadAlreadyBusy, http.StatusConflict, "LOAD_IN_PROGRESS"},
		{"bad format", ErrFileFormat, http.StatusUnsupportedMediaType, "UNSUPPORTED_FORMAT"},
		{"too large", ErrFileTooLarge, http.StatusRequestEntityTooLarge, "FILE_TOO_LARGE"},
		{"wrapped", fmt.Errorf("load: %w", ErrNoDataset), http.StatusNotFound, "DATASET_NOT_LOADED"},
		{"unknown", fmt.Errorf("boom"), http.StatusInternalServerError, "INTERNAL_ERROR"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			pd, ok := MapDatasetError(tt.err, "trace-1").(*ProblemDetails)
			require.True(t, ok)
			assert.Equal(t, tt.wantStatus, pd.Status)
			assert.Equal(t, tt.wantCode, pd.Extensions["error_code"])
			assert.Equal(t, "trace-1", pd.Extensions["trace_id"])
		})
	}
}

func TestErrorHandler_HandleError(t *testing.T) {
	h := NewErrorHandler(slog.New(slog.NewTextHandler(io.Discard, nil)), false)

	tests := []struct {
		name       string
		err        error
		wantStatus int
	}{
		{"sentinel maps to 404", ErrNoDataset, http.StatusNotFound},
		{"api error keeps status", ErrIngestionFailed, http.StatusUnprocessableEntity},
		{"unknown maps to 500", fmt.Errorf("boom"), http.StatusInternalServerError},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := httptest.NewRecorder()
			req := httptest.NewRequest(http.MethodGet, "/api/customers", nil)

			h.HandleError(rec, req, tt.err)

			assert.Equal(t, tt.wantStatus, rec.Code)
		})
	}
}

func TestErrorHandler_NotFound(t *testing.T) {
	h := NewErrorHandler(slog.New(slog.NewTextHandler(io.Discard, nil)), false)
	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/nope", nil)

	h.NotFound(rec, req)

	assert.Equal(t, http.StatusNotFound, rec.Code)
}
