package server

import (
	"context"
	"errors"
	"net/http"

	_ "github.com/akolanti/profile-rag/cmd/api/docs"
	"github.com/akolanti/profile-rag/internal/config"
	"github.com/akolanti/profile-rag/internal/handlers"
	"github.com/akolanti/profile-rag/internal/middleware"
	"github.com/akolanti/profile-rag/pkg/logger_i"
	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	httpSwagger "github.com/swaggo/http-swagger"
)

type Routes struct {
	Handler    *handlers.Handler
	Middleware *middleware.Middleware
	// MCP is mounted at /mcp when set.
	MCP http.Handler
}

func NewRouter(rt Routes) *chi.Mux {
	h, mw := rt.Handler, rt.Middleware
	r := chi.NewRouter()

	r.Method(http.MethodGet, "/", mw.Public(http.HandlerFunc(h.Root)))
	r.Method(http.MethodGet, "/health", mw.Public(http.HandlerFunc(h.Health)))
	r.Handle("/metrics", promhttp.Handler())
	InitSwagger(r)

	r.Method(http.MethodPost, "/query", mw.Protected(http.HandlerFunc(h.Query)))
	r.Method(http.MethodPost, "/query/stream", mw.Protected(http.HandlerFunc(h.QueryStream)))
	r.Method(http.MethodPost, "/ingest", mw.Protected(http.HandlerFunc(h.Ingest)))
	r.Method(http.MethodGet, "/status/{id}", mw.Protected(http.HandlerFunc(h.Status)))

	if rt.MCP != nil {
		r.Handle("/mcp", mw.Protected(rt.MCP))
	}
	return r
}

func InitSwagger(r chi.Router) {
	r.Get("/swagger", func(w http.ResponseWriter, r *http.Request) {
		http.Redirect(w, r, "/swagger/index.html", http.StatusMovedPermanently)
	})
	r.Get("/swagger/*", httpSwagger.WrapHandler)
}

type Server struct {
	srv    *http.Server
	logger *logger_i.Logger
}

func New(listenAddr string, handler http.Handler) *Server {
	return &Server{
		srv: &http.Server{
			Addr:         listenAddr,
			Handler:      handler,
			ReadTimeout:  config.ReadTimeout,
			WriteTimeout: config.WriteTimeout,
			IdleTimeout:  config.IdleTimeout,
		},
		logger: logger_i.NewLogger("server"),
	}
}

// Run serves until ctx is cancelled, then drains connections for at most
// ShutdownContextTimeout.
func (s *Server) Run(ctx context.Context) error {
	errCh := make(chan error, 1)
	go func() {
		s.logger.Info("Server is listening", "address", s.srv.Addr)
		if err := s.srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		if err != nil {
			s.logger.Error("Server crashed", "error", err, "addr", s.srv.Addr)
		}
		return err
	case <-ctx.Done():
	}

	s.logger.Info("Server is shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), config.ShutdownContextTimeout)
	defer cancel()

	s.srv.SetKeepAlivesEnabled(false)
	if err := s.srv.Shutdown(shutdownCtx); err != nil {
		s.logger.Error("Could not shutdown gracefully", "error", err)
		return err
	}
	s.logger.Info("Server stopped")
	return nil
}
