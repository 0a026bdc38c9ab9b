// Package api exposes the administrative HTTP interface: login, account
// management and the bearer-token middleware every protected route passes
// through.
package api

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/dkachan/equiadmin/internal/logging"
	"github.com/dkachan/equiadmin/internal/server/rights"
	"github.com/dkachan/equiadmin/internal/server/services"
	"github.com/go-chi/chi/v5"
)

const shutdownTimeout = 5 * time.Second

type HTTPServer struct {
	address  string
	logger   logging.Logger
	accounts *services.AccountService
}

func NewHTTPServer(a string, l logging.Logger, as *services.AccountService) (*HTTPServer, error) {
	return &HTTPServer{
		address:  a,
		logger:   l.With("module", "http_server"),
		accounts: as,
	}, nil
}

// Handler builds the route tree. Login and account creation are open;
// everything else passes the bearer middleware and a rights gate before
// reaching business logic.
func (s *HTTPServer) Handler() http.Handler {
	r := chi.NewRouter()

	r.Route("/api", func(r chi.Router) {
		r.Get("/ping", s.handlePing)
		r.Post("/login", s.handleLogin)
		r.Post("/accounts", s.handleCreateAccount)

		r.Group(func(r chi.Router) {
			r.Use(s.authenticate)

			r.Put("/accounts/password", s.handleChangeOwnPassword)
			r.With(s.requireRights(rights.ManageUsers)).Get("/accounts", s.handleListAccounts)
			r.With(s.requireRights(rights.ResetPassword)).Put("/accounts/{loginID}/password", s.handleResetPassword)
			r.With(s.requireRights(rights.ManageUsers)).Put("/accounts/{loginID}/lock", s.handleLockAccount)
			r.With(s.requireRights(rights.ManageUsers)).Delete("/accounts/{loginID}", s.handleDeleteAccount)
		})
	})

	return r
}

func (s *HTTPServer) Run(ctx context.Context) error {
	srv := &http.Server{
		Addr:    s.address,
		Handler: s.Handler(),
	}

	go func() {
		<-ctx.Done()
		s.logger.Info(ctx, "Stopping HTTP server...")

		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		_ = srv.Shutdown(shutdownCtx)
	}()

	s.logger.Info(ctx, "Starting HTTP server", "address", s.address)

	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}

	return nil
}
