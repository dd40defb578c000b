package endpoints

import (
	"github.com/doodlesbykumbi/threadly-in-go/pkg/server"
)

// RegisterMetricsEndpoint exposes the Prometheus registry, when one is configured
func RegisterMetricsEndpoint(s *server.Server) {
	if s.Metrics == nil {
		return
	}
	s.Router.Handle("/metrics", s.Metrics.Handler()).Methods("GET")
}
