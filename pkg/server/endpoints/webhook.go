package endpoints

import (
	"io"
	"net/http"

	"github.com/doodlesbykumbi/threadly-in-go/pkg/config"
	"github.com/doodlesbykumbi/threadly-in-go/pkg/ingest"
	"github.com/doodlesbykumbi/threadly-in-go/pkg/server"
)

const requestIDHeader = "X-Request-Id"

// RegisterWebhookEndpoint registers the publish endpoint
func RegisterWebhookEndpoint(s *server.Server) {
	s.Router.HandleFunc("/webhook", handlePublish(s.Pipeline, s.Config)).Methods("POST")
}

func handlePublish(pipeline *ingest.Pipeline, cfg func() *config.ThreadlyConfig) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		req := ingest.Request{
			RemoteAddr:   r.RemoteAddr,
			ForwardedFor: r.Header.Get("X-Forwarded-For"),
		}

		// Oversized and truncated bodies are both unusable payloads.
		body, err := io.ReadAll(http.MaxBytesReader(w, r.Body, cfg().MaxPayloadBytes))
		if err != nil {
			respond(w, pipeline.Reject(req, ingest.ReasonInvalidPayload))
			return
		}

		payload, err := ingest.Decode(body)
		if err != nil {
			respond(w, pipeline.Reject(req, ingest.ReasonInvalidPayload))
			return
		}
		req.Payload = payload

		respond(w, pipeline.Publish(r.Context(), req))
	}
}

func respond(w http.ResponseWriter, out ingest.Outcome) {
	w.Header().Set(requestIDHeader, out.RequestID)
	if out.Accepted() {
		respondWithJSON(w, out.Reason.Status(), out.Reason.Body())
		return
	}
	respondWithError(w, out.Reason.Status(), out.Reason.Text())
}
