package server

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net"
	"net/http"
	"time"

	"github.com/gorilla/handlers"
	"github.com/gorilla/mux"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/doodlesbykumbi/threadly-in-go/pkg/config"
	"github.com/doodlesbykumbi/threadly-in-go/pkg/ingest"
	applog "github.com/doodlesbykumbi/threadly-in-go/pkg/log"
	"github.com/doodlesbykumbi/threadly-in-go/pkg/metrics"
	"github.com/doodlesbykumbi/threadly-in-go/pkg/server/store"
)

const shutdownTimeout = 10 * time.Second

type Server struct {
	Pipeline    *ingest.Pipeline
	HealthStore store.HealthStore
	Metrics     *metrics.Metrics
	Config      func() *config.ThreadlyConfig
	Logger      *zap.Logger
	Router      *mux.Router
	srv         *http.Server
}

func NewServer(
	pipeline *ingest.Pipeline,
	health store.HealthStore,
	m *metrics.Metrics,
	cfg func() *config.ThreadlyConfig,
	logger *zap.Logger,
	host string,
	port string,
) *Server {
	if logger == nil {
		logger = zap.NewNop()
	}
	if cfg == nil {
		cfg = config.Get
	}

	router := mux.NewRouter().UseEncodedPath()
	router.Use(recoverWithJSON(logger))
	access := applog.Writer(logger.Named("http"), zapcore.InfoLevel)
	srv := &http.Server{
		Handler: handlers.RecoveryHandler(
			handlers.RecoveryLogger(recoveryLogger{logger}),
		)(handlers.LoggingHandler(access, router)),
		Addr:         net.JoinHostPort(host, port),
		WriteTimeout: 15 * time.Second,
		ReadTimeout:  15 * time.Second,
	}

	return &Server{
		Pipeline:    pipeline,
		HealthStore: health,
		Metrics:     m,
		Config:      cfg,
		Logger:      logger,
		Router:      router,
		srv:         srv,
	}
}

// Handler returns the fully wrapped handler the listener serves.
func (s *Server) Handler() http.Handler {
	return s.srv.Handler
}

func (s *Server) Addr() string {
	return s.srv.Addr
}

// Start serves until ctx is cancelled, then drains in-flight requests.
func (s *Server) Start(ctx context.Context) error {
	errCh := make(chan error, 1)
	go func() {
		s.Logger.Info("listening", zap.String("addr", s.srv.Addr))
		errCh <- s.srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	s.Logger.Info("shutting down")
	if err := s.srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shutdown: %w", err)
	}
	return nil
}

type recoveryLogger struct {
	logger *zap.Logger
}

func (r recoveryLogger) Println(v ...interface{}) {
	r.logger.Error("handler panic", zap.String("panic", fmt.Sprint(v...)))
}

// recoverWithJSON answers a panicking route with the API's 500 error body.
// Panics outside the router fall through to handlers.RecoveryHandler.
func recoverWithJSON(logger *zap.Logger) mux.MiddlewareFunc {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			defer func() {
				if v := recover(); v != nil {
					if v == http.ErrAbortHandler {
						panic(v)
					}
					logger.Error("handler panic",
						zap.String("panic", fmt.Sprint(v)),
						zap.String("path", r.URL.Path),
					)
					w.Header().Set("Content-Type", "application/json")
					w.WriteHeader(http.StatusInternalServerError)
					_ = json.NewEncoder(w).Encode(map[string]string{"error": "Internal server error"})
				}
			}()
			next.ServeHTTP(w, r)
		})
	}
}
