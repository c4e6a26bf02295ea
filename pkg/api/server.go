// Package api expõe o handler de eventos via HTTP para desenvolvimento local.
package api

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"sigs.k8s.io/controller-runtime/pkg/log"
	ctrlmetrics "sigs.k8s.io/controller-runtime/pkg/metrics"

	"subnet-tagger/pkg/handler"
)

// ServerConfig configuração do servidor API
type ServerConfig struct {
	Port    int
	Host    string
	Version string
	Auth    AuthConfig
}

// Server representa o servidor HTTP da API
type Server struct {
	config   *ServerConfig
	router   *chi.Mux
	handlers *Handlers
	server   *http.Server
}

// NewServer cria um novo servidor API
func NewServer(config *ServerConfig, h *handler.Handler) *Server {
	s := &Server{
		config: config,
		router: chi.NewRouter(),
	}

	s.handlers = NewHandlers(h, config)
	s.setupRoutes()

	s.server = &http.Server{
		Addr:         fmt.Sprintf("%s:%d", config.Host, config.Port),
		Handler:      s.router,
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 60 * time.Second,
		IdleTimeout:  120 * time.Second,
	}

	return s
}

// setupRoutes configura as rotas da API
func (s *Server) setupRoutes() {
	r := s.router

	// Middlewares globais
	r.Use(RequestID)
	r.Use(Logger)
	r.Use(Recoverer)

	// Rotas públicas
	r.Get("/health", s.handlers.Health)
	r.Handle("/metrics", promhttp.HandlerFor(ctrlmetrics.Registry, promhttp.HandlerOpts{}))

	// API v1
	r.Route("/api/v1", func(r chi.Router) {
		r.Use(APIKeyAuth(s.config.Auth))

		r.Post("/events", s.handlers.Events)
		r.Post("/plan", s.handlers.Plan)
	})
}

// Start inicia o servidor HTTP
func (s *Server) Start() error {
	log.Log.WithName("api").Info("Starting API server",
		"address", s.server.Addr,
		"endpoints", []string{"POST /api/v1/events", "POST /api/v1/plan", "GET /health", "GET /metrics"},
	)

	return s.server.ListenAndServe()
}

// Shutdown para o servidor graciosamente
func (s *Server) Shutdown(ctx context.Context) error {
	return s.server.Shutdown(ctx)
}

// Router retorna o router Chi (para testes)
func (s *Server) Router() *chi.Mux {
	return s.router
}
