package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	chiMiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/urfave/cli/v2"
	"go.uber.org/zap"

	logpkg "github.com/kailas-cloud/jobsift/internal/logger"
	"github.com/kailas-cloud/jobsift/internal/metrics"
	chiTransport "github.com/kailas-cloud/jobsift/internal/transport/chi"
	healthuc "github.com/kailas-cloud/jobsift/internal/usecase/health"
	"github.com/kailas-cloud/jobsift/internal/usecase/listing"
	"github.com/kailas-cloud/jobsift/internal/version"
)

func serveCommand(c *cli.Context) error {
	comp, err := setup(c)
	if err != nil {
		return err
	}
	defer comp.close()
	logger := comp.logger
	cfg := comp.cfg

	logger.Info("Starting jobsift API server",
		zap.String("version", version.Version),
		zap.String("commit", version.Commit),
		zap.String("env", comp.env),
		zap.Int("http_port", cfg.HTTP.Port),
		zap.String("request_base", cfg.Source.RequestBase),
		zap.Bool("cache", cfg.Cache.Enabled),
	)

	e, err := comp.loadEngine(c.Context)
	if err != nil {
		return fmt.Errorf("load postings: %w", err)
	}
	engine := listing.NewLocked(e)
	logger.Info("Engine ready",
		zap.Int("records", len(engine.AllRecords())),
		zap.Int("facets", engine.Facets().Len()),
	)

	writer, err := comp.reportWriter("")
	if err != nil {
		return err
	}

	// Pass nil interface (not typed nil pointer!) when the cache is disabled.
	var cache healthuc.CachePinger
	if comp.store != nil {
		cache = comp.store
	}
	healthSvc := healthuc.New(cache, comp.client)

	metrics.RegisterHTTPMetrics()
	server := chiTransport.NewServer(engine, comp.loader, writer, healthSvc, cfg.Source.SiteURL, logger)

	r := chi.NewRouter()
	r.Use(jsonRecoverer(logger))
	r.Use(chiMiddleware.RequestID)
	r.Use(wideEventMiddleware(logger))
	r.Use(chiTransport.BearerAuthMiddleware(cfg.Auth.APIKeys))
	r.Use(metrics.Middleware())
	chiTransport.HandlerWithOptions(server, chiTransport.ChiServerOptions{
		BaseRouter: r,
		ErrorHandlerFunc: func(w http.ResponseWriter, _ *http.Request, err error) {
			w.Header().Set("Content-Type", "application/json")
			w.WriteHeader(http.StatusBadRequest)
			_ = json.NewEncoder(w).Encode(chiTransport.ErrorResponse{
				Code:    chiTransport.ErrorResponseCodeBadRequest,
				Message: err.Error(),
			})
		},
	})

	addr := fmt.Sprintf(":%d", cfg.HTTP.Port)
	srv := &http.Server{
		Addr:         addr,
		Handler:      r,
		ReadTimeout:  time.Duration(cfg.HTTP.ReadTimeoutSec) * time.Second,
		WriteTimeout: time.Duration(cfg.HTTP.WriteTimeoutSec) * time.Second,
	}

	ctx, stop := signal.NotifyContext(c.Context, os.Interrupt, syscall.SIGTERM)
	defer stop()

	errCh := make(chan error, 1)
	go func() {
		logger.Info("Starting HTTP server", zap.String("addr", addr))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		if err != nil {
			return fmt.Errorf("http server: %w", err)
		}
	case <-ctx.Done():
		logger.Info("Received shutdown signal")
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), time.Duration(cfg.HTTP.ShutdownSec)*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("Error during shutdown", zap.Error(err))
	}

	logger.Info("Server stopped gracefully")
	return nil
}

// jsonRecoverer is a recovery middleware that returns JSON instead of a plain text stacktrace.
func jsonRecoverer(logger *zap.Logger) func(next http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			defer func() {
				if rvr := recover(); rvr != nil {
					logger.Error("panic recovered",
						zap.Any("panic", rvr),
						zap.String("path", r.URL.Path),
						zap.Stack("stacktrace"),
					)
					w.Header().Set("Content-Type", "application/json")
					w.WriteHeader(http.StatusInternalServerError)
					_ = json.NewEncoder(w).Encode(chiTransport.ErrorResponse{
						Code:    chiTransport.ErrorResponseCodeInternalError,
						Message: "internal error",
					})
				}
			}()
			next.ServeHTTP(w, r)
		})
	}
}

// wideEventMiddleware emits a canonical log line per request and propagates X-Request-ID.
func wideEventMiddleware(logger *zap.Logger) func(next http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()

			requestID := chiMiddleware.GetReqID(r.Context())
			if requestID != "" {
				w.Header().Set("X-Request-ID", requestID)
			}

			reqLogger := logger.With(zap.String("request_id", requestID))
			ctx := logpkg.ContextWithLogger(r.Context(), reqLogger)

			ww := chiMiddleware.NewWrapResponseWriter(w, r.ProtoMajor)
			next.ServeHTTP(ww, r.WithContext(ctx))

			reqLogger.Info("http_request",
				zap.String("method", r.Method),
				zap.String("path", r.URL.Path),
				zap.Int("status", ww.Status()),
				zap.Duration("latency", time.Since(start)),
				zap.String("ip", r.RemoteAddr),
				zap.String("user_agent", r.UserAgent()),
				zap.Int("response_bytes", ww.BytesWritten()),
			)
		})
	}
}
