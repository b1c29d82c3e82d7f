package config

import "time"

// Application constants for the territory sales system
const (
	// Application Info
	AppName    = "Territory Pulse"
	AppVersion = "1.0.0"

	// Territory Data Files
	SnapshotFileName    = "territory-customers.json"
	TerritoryCSVPattern = `(?i).*\.csv$`
	TerritoryXLSPattern = `(?i).*\.xlsx?$`

	// Ingestion Limits
	DefaultMaxUploadSize = 10 * 1024 * 1024 // 10MB
	MaxUploadSizeHard    = 50 * 1024 * 1024 // absolute ceiling regardless of config

	// Rate Limiting
	DefaultRateLimit = 100 // requests per minute
	DefaultBurstSize = 50

	// Network Timeouts
	DefaultHTTPTimeout  = 30 * time.Second
	DefaultLoadTimeout  = 2 * time.Minute
	WebSocketPingPeriod = 30 * time.Second
	WebSocketPongWait   = 60 * time.Second

	// File Paths (relative to executable)
	DefaultDataDir    = "data"
	DefaultLogsDir    = "logs"
	DefaultUploadsDir = "data/uploads"
	DefaultExportsDir = "data/exports"

	// Log Settings
	DefaultLogLevel   = "info"
	DefaultLogFormat  = "json"
	MaxLogFileSize    = 100 * 1024 * 1024 // 100MB
	MaxLogFileAge     = 30                // days
	MaxLogFileBackups = 10
)

// API Endpoints (internal)
const (
	APIBasePath       = "/api"
	TerritoryEndpoint = "/api/territory"
	CustomersEndpoint = "/api/customers"
	AnalyticsEndpoint = "/api/analytics"
	SearchEndpoint    = "/api/search"
	ExportEndpoint    = "/api/export"
	HealthEndpoint    = "/healthz"
	MetricsEndpoint   = "/metrics"
	WebSocketEndpoint = "/ws"
)
