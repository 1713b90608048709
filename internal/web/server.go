// Package web serves the output relation over HTTP for inspection.
package web

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gorilla/mux"
	"go.uber.org/zap"

	"github.com/moj-analytical-services/prepare-ngd-for-address-matching/internal/config"
	"github.com/moj-analytical-services/prepare-ngd-for-address-matching/internal/engine"
	"github.com/moj-analytical-services/prepare-ngd-for-address-matching/internal/pipeline"
)

// Server exposes read-only endpoints over a loaded variants relation.
type Server struct {
	httpServer *http.Server
	router     *mux.Router
	store      *store
	manifest   *pipeline.Manifest
	log        *zap.Logger
}

// NewServer indexes the variants and wires the routes.
func NewServer(cfg config.ServerConfig, variants []engine.AddressVariant, manifest *pipeline.Manifest, log *zap.Logger) *Server {
	s := &Server{
		store:    newStore(variants),
		manifest: manifest,
		log:      log,
	}
	s.setupRoutes()
	s.httpServer = &http.Server{
		Addr:         fmt.Sprintf("%s:%d", cfg.Host, cfg.Port),
		Handler:      s.router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}
	return s
}

func (s *Server) setupRoutes() {
	s.router = mux.NewRouter()

	api := s.router.PathPrefix("/api").Subrouter()
	api.HandleFunc("/variants/{uprn:[0-9]+}", s.getVariants).Methods("GET")
	api.HandleFunc("/search", s.searchVariants).Methods("GET")
	api.HandleFunc("/stats", s.getStats).Methods("GET")
	api.HandleFunc("/manifest", s.getManifest).Methods("GET")

	s.router.Use(cors())
	s.router.Use(requestLogging(s.log))
}

// Handler exposes the router for tests.
func (s *Server) Handler() http.Handler {
	return s.router
}

// Start serves until SIGINT or SIGTERM, then shuts down gracefully.
func (s *Server) Start() error {
	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)

	go func() {
		s.log.Info("server listening", zap.String("addr", s.httpServer.Addr))
		if err := s.httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			s.log.Error("server error", zap.Error(err))
		}
	}()

	<-stop
	s.log.Info("shutting down server")

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()
	return s.httpServer.Shutdown(ctx)
}
