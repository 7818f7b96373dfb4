// Package app wires configuration, telemetry and services into the HTTP API
// server and manages its lifecycle.
//
// # Initialization Flow
//
//	1. Load configuration (cmd/cleaner does this before calling in)
//	2. Initialize OpenTelemetry from the telemetry section
//	3. Build the storage layer and services
//	4. Set up the chi router and middleware
//	5. Create the HTTP server
//
// # Middleware Order
//
//	RequestID → RealIP → OTel → Logger → Recoverer → SecurityHeaders → RateLimiter
//
// /metrics is mounted outside the group and only when the Prometheus
// exporter is enabled.
//
// # Usage
//
//	application, err := app.NewApplication(cfg, logger)
//	if err != nil {
//	    return err
//	}
//	return application.Run(ctx)
package app
