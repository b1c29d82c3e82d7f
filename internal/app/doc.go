// Package app provides application initialization and lifecycle management
// for the territory sales service. It wires configuration, logging,
// observability, the WebSocket hub, and the service layer together at
// startup, and handles graceful shutdown.
//
// # Initialization Flow
//
// The typical initialization sequence:
//
//	1. Load configuration from environment and files
//	2. Initialize logging and OpenTelemetry
//	3. Start the WebSocket hub and snapshot store
//	4. Initialize services with their dependencies
//	5. Set up HTTP handlers and middleware
//	6. Configure the HTTP server
//
// A saved dataset snapshot, if present, is restored before the server
// starts accepting requests.
//
// # Usage
//
// The main entry point is typically:
//
//	application, err := app.NewApplication()
//	if err != nil {
//	    log.Fatal(err)
//	}
//	if err := application.Run(); err != nil {
//	    log.Fatal(err)
//	}
//
// # Graceful Shutdown
//
// Run handles SIGINT and SIGTERM to ensure active requests are completed,
// WebSocket connections are closed cleanly, and telemetry is flushed. All
// initialization errors are returned to the caller; the package never
// calls os.Exit() directly.
package app
