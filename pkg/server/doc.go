// Package server provides the HTTP server for the webhook ingestion service.
//
// The server routes requests with gorilla/mux and wraps the router with
// gorilla/handlers for access logging and panic recovery. Access log lines
// are written through the structured logger rather than to stdout.
//
// # Server Setup
//
//	srv := server.NewServer(pipeline, healthStore, metrics, config.Get, logger, "0.0.0.0", "5000")
//	endpoints.RegisterAll(srv)
//	if err := srv.Start(ctx); err != nil {
//	    logger.Fatal("server failed", zap.Error(err))
//	}
//
// Start blocks until ctx is cancelled and then gives in-flight requests a
// short grace period to finish.
//
// # Components
//
// The Server struct holds:
//
//   - Pipeline: the publish pipeline every webhook request runs through
//   - HealthStore: database connectivity probe for /health
//   - Metrics: the Prometheus registry exposed on /metrics
//   - Config: accessor for the live configuration, re-read per request
//   - Router: HTTP request router
//
// # Endpoints
//
// Endpoints are registered via the endpoints subpackage:
//
//   - POST /webhook - publish a message to a topic
//   - GET / - service name and version
//   - GET /health - database connectivity
//   - GET /metrics - Prometheus metrics
package server
