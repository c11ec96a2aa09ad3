// ABOUTME: HTTP server wiring the JSON API behind a chi router with request-ID,
// ABOUTME: logging, recovery, and bearer-auth middleware.
package web

import (
	"context"
	"log"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/mealdash/mealdash/i18n"
	"github.com/mealdash/mealdash/server"
	"github.com/mealdash/mealdash/store"
)

// Server is the mealdash HTTP API server.
type Server struct {
	cfg    *server.Config
	store  *store.Store
	msgs   *i18n.Manager
	router chi.Router
}

// NewServer builds the router and middleware stack around the given store.
func NewServer(cfg *server.Config, st *store.Store, msgs *i18n.Manager) *Server {
	s := &Server{cfg: cfg, store: st, msgs: msgs}

	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(requestLogger)
	r.Use(middleware.Recoverer)
	r.Use(server.AuthMiddleware(cfg.Secret, msgs))

	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		s.writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	})

	r.Route("/api/v1", func(api chi.Router) {
		api.Route("/auth", func(auth chi.Router) {
			auth.Post("/register", s.handleRegister)
			auth.Post("/login", s.handleLogin)
			auth.Post("/refresh", s.handleRefresh)
		})

		api.Route("/users", func(users chi.Router) {
			users.Get("/me", s.handleMe)
			users.Patch("/me", s.handleUpdateMe)
			users.Delete("/me", s.handleDeactivateMe)
			users.Get("/{id}", s.handleGetUser)

			users.Route("/me/addresses", func(addrs chi.Router) {
				addrs.Get("/", s.handleListAddresses)
				addrs.Post("/", s.handleCreateAddress)
				addrs.Get("/{addr_id}", s.handleGetAddress)
				addrs.Put("/{addr_id}", s.handleUpdateAddress)
				addrs.Delete("/{addr_id}", s.handleDeleteAddress)
				addrs.Post("/{addr_id}/default", s.handleSetDefaultAddress)
			})

			users.Get("/me/preferences", s.handleGetPreferences)
			users.Put("/me/preferences", s.handlePutPreferences)
		})
	})

	s.router = r
	return s
}

// Handler returns the root handler, exposed for tests and embedding.
func (s *Server) Handler() http.Handler {
	return s.router
}

// ListenAndServe serves until ctx is canceled, then drains in-flight requests
// before returning.
func (s *Server) ListenAndServe(ctx context.Context) error {
	srv := &http.Server{
		Addr:              s.cfg.Bind,
		Handler:           s.router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		log.Printf("component=web action=listen bind=%s", s.cfg.Bind)
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		log.Printf("component=web action=shutdown")
		return srv.Shutdown(shutdownCtx)
	}
}

// requestLogger logs one line per request in key=value form.
func requestLogger(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		start := time.Now()
		next.ServeHTTP(ww, r)
		log.Printf("component=web request_id=%s method=%s path=%s status=%d bytes=%d duration=%s",
			middleware.GetReqID(r.Context()), r.Method, r.URL.Path,
			ww.Status(), ww.BytesWritten(), time.Since(start))
	})
}
