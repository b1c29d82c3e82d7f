package http

import (
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"salescli/internal/dataprocessing"
	apierrors "salescli/internal/errors"
	"salescli/internal/files"
	"salescli/internal/services"
)

const sampleCSV = "PAC,Account Name (CN),Address,Brand,1Q24,2Q24\n" +
	`Kaiti Green,4EYMED LLC (CN246670),9249 Highlands Rd Colorado Springs 80920,SKINPEN,"$1,000","$632"` + "\n" +
	`Kim Coates,Front Range Derm (CN111111),100 Main St Littleton,DAXXIFY,"$5,000",`

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func newTestTerritory(t *testing.T) (*services.TerritoryService, *files.SnapshotStore) {
	t.Helper()
	store := files.NewSnapshotStore(filepath.Join(t.TempDir(), "territory-customers.json"), testLogger())
	svc := services.NewTerritoryService(dataprocessing.NewParser(testLogger()), store, nil, nil, testLogger())
	return svc, store
}

func loadSample(t *testing.T, svc *services.TerritoryService) {
	t.Helper()
	_, err := svc.Load(context.Background(), sampleCSV)
	require.NoError(t, err)
}

func newErrorHandler() *apierrors.ErrorHandler {
	return apierrors.NewErrorHandler(testLogger(), false)
}

func decodeJSON(t *testing.T, rec *httptest.ResponseRecorder) map[string]interface{} {
	t.Helper()
	var body map[string]interface{}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	return body
}

func doRequest(handler http.Handler, req *http.Request) *httptest.ResponseRecorder {
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)
	return rec
}
