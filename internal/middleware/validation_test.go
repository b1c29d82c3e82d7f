package middleware

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	apierrors "salescli/internal/errors"
)

func newValidation(t *testing.T) *ValidationMiddleware {
	t.Helper()
	return NewValidationMiddleware(discardLogger(), apierrors.NewErrorHandler(discardLogger(), false))
}

func TestValidateStruct_CustomerNumber(t *testing.T) {
	type lookup struct {
		CustomerNumber string `json:"customerNumber" validate:"required,customer_number"`
	}

	m := newValidation(t)

	assert.NoError(t, m.ValidateStruct(lookup{CustomerNumber: "CN246670"}))
	assert.Error(t, m.ValidateStruct(lookup{CustomerNumber: "CN1234"}))
	assert.Error(t, m.ValidateStruct(lookup{CustomerNumber: ""}))
}

func TestValidateStruct_Filename(t *testing.T) {
	type upload struct {
		Filename string `json:"filename" validate:"required,filename"`
	}

	m := newValidation(t)

	assert.NoError(t, m.ValidateStruct(upload{Filename: "territory.csv"}))
	assert.Error(t, m.ValidateStruct(upload{Filename: "../etc/passwd"}))
}

func TestValidateRequest_InvalidJSON(t *testing.T) {
	m := newValidation(t)
	handler := m.ValidateRequest(noopHandler())

	req := httptest.NewRequest(http.MethodPost, "/", strings.NewReader("{broken"))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestValidateRequest_SkipsGet(t *testing.T) {
	m := newValidation(t)
	handler := m.ValidateRequest(noopHandler())

	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestValidateRequest_BodyTooLarge(t *testing.T) {
	m := newValidation(t)
	m.SetMaxBodySize(4)
	handler := m.ValidateRequest(noopHandler())

	req := httptest.NewRequest(http.MethodPost, "/", strings.NewReader("0123456789"))
	req.Header.Set("Content-Type", "text/csv")
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusRequestEntityTooLarge, rec.Code)
}

func TestContentTypeValidator(t *testing.T) {
	handler := ContentTypeValidator("text/csv", "application/json")(noopHandler())

	req := httptest.NewRequest(http.MethodPost, "/", strings.NewReader("a,b"))
	req.Header.Set("Content-Type", "text/csv; charset=utf-8")
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)
	require.Equal(t, http.StatusOK, rec.Code)

	req = httptest.NewRequest(http.MethodPost, "/", strings.NewReader("<xml/>"))
	req.Header.Set("Content-Type", "application/xml")
	rec = httptest.NewRecorder()
	handler.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusUnsupportedMediaType, rec.Code)
}

func TestQueryParamValidator_ValidateEnum(t *testing.T) {
	v := NewQueryParamValidator(discardLogger(), apierrors.NewErrorHandler(discardLogger(), false))
	allowed := []string{"littleton", "castle-rock"}

	req := httptest.NewRequest(http.MethodGet, "/?territory=littleton", nil)
	value, ok := v.ValidateEnum(httptest.NewRecorder(), req, "territory", allowed, "")
	require.True(t, ok)
	assert.Equal(t, "littleton", value)

	// Absent parameter yields the default.
	req = httptest.NewRequest(http.MethodGet, "/", nil)
	value, ok = v.ValidateEnum(httptest.NewRecorder(), req, "territory", allowed, "")
	require.True(t, ok)
	assert.Equal(t, "", value)

	req = httptest.NewRequest(http.MethodGet, "/?territory=atlantis", nil)
	rec := httptest.NewRecorder()
	_, ok = v.ValidateEnum(rec, req, "territory", allowed, "")
	require.False(t, ok)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}
