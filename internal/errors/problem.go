package errors

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"

	"github.com/go-chi/render"
)

// Dataset-specific errors (using errors package for sentinel errors)
var (
	ErrNoDataset       = errors.New("no dataset loaded")
	ErrNoCustomers     = errors.New("no valid customers in file")
	ErrSnapshotMissing = errors.New("snapshot not found")
	ErrSnapshotCorrupt = errors.New("snapshot corrupted")
	ErrCustomerUnknown = errors.New("customer not found")
	ErrLoadAlreadyBusy = errors.New("load already in progress")
	ErrFileFormat      = errors.New("unsupported file format")
	ErrFileTooLarge    = errors.New("file too large")
)

// IsSnapshotUnavailable reports whether err means the persisted snapshot
// cannot be used, either because it is missing or because it failed to
// decode. Both cases are treated as "no saved data" by callers.
func IsSnapshotUnavailable(err error) bool {
	return errors.Is(err, ErrSnapshotMissing) || errors.Is(err, ErrSnapshotCorrupt)
}

// ProblemDetails implements RFC 7807 Problem Details for HTTP APIs
type ProblemDetails struct {
	Type     string `json:"type"`
	Title    string `json:"title"`
	Status   int    `json:"status"`
	Detail   string `json:"detail,omitempty"`
	Instance string `json:"instance,omitempty"`

	// Additional fields for extensibility
	Extensions map[string]interface{} `json:"-"`
}

// Render implements the render.Renderer interface
func (pd *ProblemDetails) Render(w http.ResponseWriter, r *http.Request) error {
	render.Status(r, pd.Status)
	return nil
}

// MarshalJSON custom marshaler to include extensions
func (pd *ProblemDetails) MarshalJSON() ([]byte, error) {
	data := make(map[string]interface{})

	data["type"] = pd.Type
	data["title"] = pd.Title
	data["status"] = pd.Status

	if pd.Detail != "" {
		data["detail"] = pd.Detail
	}
	if pd.Instance != "" {
		data["instance"] = pd.Instance
	}

	for k, v := range pd.Extensions {
		data[k] = v
	}

	return json.Marshal(data)
}

// NewProblemDetails creates a new RFC 7807 compliant error
func NewProblemDetails(status int, problemType, title, detail, instance string) *ProblemDetails {
	return &ProblemDetails{
		Type:       problemType,
		Title:      title,
		Status:     status,
		Detail:     detail,
		Instance:   instance,
		Extensions: make(map[string]interface{}),
	}
}

// WithExtension adds an extension field to the problem details
func (pd *ProblemDetails) WithExtension(key string, value interface{}) *ProblemDetails {
	pd.Extensions[key] = value
	return pd
}

// MapDatasetError maps domain errors to HTTP problem details
func MapDatasetError(err error, traceID string) render.Renderer {
	instance := fmt.Sprintf("/api/territory#trace-%s", traceID)

	// Check if it's an APIError from errors.go
	var apiErr *APIError
	if errors.As(err, &apiErr) {
		return NewProblemDetails(
			apiErr.StatusCode,
			"/errors/"+apiErr.ErrorCode,
			http.StatusText(apiErr.StatusCode),
			apiErr.Message,
			instance,
		).WithExtension("trace_id", traceID).
			WithExtension("error_code", apiErr.ErrorCode)
	}

	switch {
	case errors.Is(err, ErrNoDataset):
		return NewProblemDetails(
			http.StatusNotFound,
			"/errors/dataset-not-loaded",
			"No Dataset Loaded",
			"No territory dataset has been loaded. Upload a territory file first.",
			instance,
		).WithExtension("trace_id", traceID).
			WithExtension("error_code", "DATASET_NOT_LOADED")

	case errors.Is(err, ErrCustomerUnknown):
		return NewProblemDetails(
			http.StatusNotFound,
			"/errors/customer-not-found",
			"Customer Not Found",
			"No customer with that number exists in the loaded dataset.",
			instance,
		).WithExtension("trace_id", traceID).
			WithExtension("error_code", "CUSTOMER_NOT_FOUND")

	case errors.Is(err, ErrNoCustomers):
		return NewProblemDetails(
			http.StatusUnprocessableEntity,
			"/errors/no-valid-customers",
			"No Valid Customers",
			"The file was parsed but produced no valid customer records.",
			instance,
		).WithExtension("trace_id", traceID).
			WithExtension("error_code", "NO_VALID_CUSTOMERS")

	case errors.Is(err, ErrLoadAlreadyBusy):
		return NewProblemDetails(
			http.StatusConflict,
			"/errors/load-in-progress",
			"Load In Progress",
			"Another territory load is already running.",
			instance,
		).WithExtension("trace_id", traceID).
			WithExtension("error_code", "LOAD_IN_PROGRESS")

	case errors.Is(err, ErrSnapshotMissing):
		return NewProblemDetails(
			http.StatusNotFound,
			"/errors/snapshot-missing",
			"Snapshot Not Found",
			"No saved dataset snapshot exists on disk.",
			instance,
		).WithExtension("trace_id", traceID).
			WithExtension("error_code", "SNAPSHOT_MISSING")

	case errors.Is(err, ErrSnapshotCorrupt):
		return NewProblemDetails(
			http.StatusUnprocessableEntity,
			"/errors/snapshot-corrupted",
			"Snapshot Corrupted",
			"The saved dataset snapshot could not be read and was ignored.",
			instance,
		).WithExtension("trace_id", traceID).
			WithExtension("error_code", "SNAPSHOT_CORRUPTED")

	case errors.Is(err, ErrFileFormat):
		return NewProblemDetails(
			http.StatusUnsupportedMediaType,
			"/errors/unsupported-format",
			"Unsupported File Format",
			"Only .csv and .xlsx territory files are accepted.",
			instance,
		).WithExtension("trace_id", traceID).
			WithExtension("error_code", "UNSUPPORTED_FORMAT")

	case errors.Is(err, ErrFileTooLarge):
		return NewProblemDetails(
			http.StatusRequestEntityTooLarge,
			"/errors/file-too-large",
			"File Too Large",
			"The uploaded file exceeds the maximum allowed size.",
			instance,
		).WithExtension("trace_id", traceID).
			WithExtension("error_code", "FILE_TOO_LARGE")

	default:
		return NewProblemDetails(
			http.StatusInternalServerError,
			"/errors/internal-error",
			"Internal Server Error",
			"An unexpected error occurred while processing your request.",
			instance,
		).WithExtension("trace_id", traceID).
			WithExtension("error_code", "INTERNAL_ERROR")
	}
}
