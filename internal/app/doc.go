// Package app provides application initialization and lifecycle
// management. It wires configuration, logging, observability, the data
// loader and all services together at startup, and handles graceful
// shutdown.
//
// # Initialization Flow
//
// The typical initialization sequence:
//
//	1. Load configuration from environment and files
//	2. Initialize logging and observability
//	3. Create the workbook loader
//	4. Initialize services with their dependencies
//	5. Set up HTTP handlers and middleware
//	6. Configure and start the HTTP server
//	7. Set up graceful shutdown handlers
//
// # Usage
//
// The main entry point is typically:
//
//	app, err := app.NewApplication()
//	if err != nil {
//	    log.Fatal(err)
//	}
//	if err := app.Run(ctx, cancel); err != nil {
//	    log.Fatal(err)
//	}
//
// All initialization errors are returned to the caller; the package
// never calls os.Exit() directly.
package app
