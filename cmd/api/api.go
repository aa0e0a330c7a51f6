package main

import (
	"context"
	"errors"
	"expvar"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/rana-ox/testing-d1/docs" //this is required to generate swagger docs
	"github.com/rana-ox/testing-d1/internal/domain/storage"
	"github.com/rana-ox/testing-d1/internal/params"
	httpSwagger "github.com/swaggo/http-swagger/v2"
	"go.uber.org/zap"
)

// challengeVerifier is satisfied by *turnstile.Verifier and turnstile.NoopVerifier.
type challengeVerifier interface {
	Verify(ctx context.Context, fields params.Fields, remoteIP string) error
}

type application struct {
	config   config
	store    *storage.Container
	logger   *zap.SugaredLogger
	verifier challengeVerifier
}

type config struct {
	addr        string
	db          dbConfig
	env         string
	apiURL      string
	staticDir   string
	corsOrigins []string
	auth        authConfig
	turnstile   turnstileConfig
}

type authConfig struct {
	basic basicConfig
}

type basicConfig struct {
	user string
	pass string
}

type turnstileConfig struct {
	secretKey        string
	expectedHostname string
	verifyURL        string
}

type dbConfig struct {
	addr        string
	maxConns    int32
	maxIdleTime string
	autoMigrate bool
}

func (app *application) mount() http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Logger)
	r.Use(app.recoverPanic)

	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   app.config.corsOrigins,
		AllowedMethods:   []string{http.MethodGet, http.MethodPost, http.MethodOptions},
		AllowedHeaders:   []string{"Accept", "Content-Type"},
		AllowCredentials: false,
		MaxAge:           300, // Maximum value not ignored by any of major browsers
	}))

	//Set a timeout value on the request context (ctx), that will signal through ctx.Done() that the request has timed out and further processing should be stopped
	r.Use(middleware.Timeout(60 * time.Second))

	r.Route("/api/feedback", func(r chi.Router) {
		r.Get("/", app.listFeedbackHandler)
		r.Post("/", app.createFeedbackHandler)
		r.MethodNotAllowed(app.methodNotAllowedHandler)
	})

	r.Route("/v1", func(r chi.Router) {
		r.With(app.BasicAuthMiddleware()).Get("/health", app.healthCheckHandler)
		r.With(app.BasicAuthMiddleware()).Get("/debug/vars", expvar.Handler().ServeHTTP)
	})

	r.Get("/swagger/*", httpSwagger.Handler(httpSwagger.URL("/swagger/doc.json")))

	if app.config.staticDir != "" {
		r.Handle("/*", http.FileServer(http.Dir(app.config.staticDir)))
	}

	return r
}

const shutdownTimeout = 5 * time.Second

// run serves mux until ctx is cancelled or the process receives SIGINT or
// SIGTERM, then drains in-flight requests. Closing the database is left to
// the caller, after run returns.
func (app *application) run(ctx context.Context, mux http.Handler) error {
	docs.SwaggerInfo.Version = version
	docs.SwaggerInfo.Host = app.config.apiURL

	srv := &http.Server{
		Addr:         app.config.addr,
		Handler:      mux,
		WriteTimeout: time.Second * 30,
		ReadTimeout:  time.Second * 10,
		IdleTimeout:  time.Minute,
	}

	ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()

	serveErr := make(chan error, 1)
	go func() {
		app.logger.Infow("server has started", "addr", app.config.addr, "env", app.config.env)
		serveErr <- srv.ListenAndServe()
	}()

	select {
	case err := <-serveErr:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
	}

	app.logger.Infow("shutting down", "addr", app.config.addr, "timeout", shutdownTimeout)

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("graceful shutdown: %w", err)
	}

	app.logger.Infow("server has stopped", "addr", app.config.addr)
	return nil
}
