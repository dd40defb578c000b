package endpoints

import (
	"github.com/doodlesbykumbi/threadly-in-go/pkg/server"
)

// RegisterAll registers all endpoints on the server
func RegisterAll(srv *server.Server) {
	RegisterWebhookEndpoint(srv)
	RegisterStatusEndpoints(srv)
	RegisterMetricsEndpoint(srv)
}
