// cmd/api serves only the tool listing and invocation endpoints.
package main

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gorilla/mux"

	"github.com/andresuchdata/merchant-agent/backend-go/internal/api/handlers"
	"github.com/andresuchdata/merchant-agent/backend-go/internal/app"
	"github.com/andresuchdata/merchant-agent/backend-go/internal/config"
	"github.com/andresuchdata/merchant-agent/backend-go/internal/tools"
	"github.com/andresuchdata/merchant-agent/backend-go/pkg/logger"
)

func main() {
	// Load configuration
	cfg := config.Load()
	logger.SetLevel(cfg.Log.Level)

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Minute)
	application, err := app.New(ctx, cfg)
	cancel()
	if err != nil {
		logger.Log.Fatal().Err(err).Msg("Failed to load artifacts")
	}
	defer application.Close()

	srv := &http.Server{
		Addr:         ":" + cfg.Server.ToolPort,
		Handler:      newRouter(application.Tools),
		ReadTimeout:  time.Duration(cfg.Server.ReadTimeout) * time.Second,
		WriteTimeout: time.Duration(cfg.Server.WriteTimeout) * time.Second,
	}

	go func() {
		logger.Log.Info().Str("port", cfg.Server.ToolPort).Msg("Tool server starting")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Log.Fatal().Err(err).Msg("Failed to start tool server")
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer shutdownCancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Log.Error().Err(err).Msg("Tool server forced to shutdown")
	}
}

func newRouter(dispatcher *tools.Dispatcher) *mux.Router {
	r := mux.NewRouter()

	// Health check endpoint
	r.HandleFunc("/health", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("OK"))
	}).Methods(http.MethodGet)

	r.HandleFunc("/tools", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, map[string]any{"tools": dispatcher.Descriptors()})
	}).Methods(http.MethodGet)

	r.HandleFunc("/tools/{name}", func(w http.ResponseWriter, r *http.Request) {
		args := map[string]any{}
		if r.ContentLength != 0 {
			if err := json.NewDecoder(r.Body).Decode(&args); err != nil {
				writeJSON(w, http.StatusBadRequest, tools.ErrorResult{Error: "arguments must be a JSON object"})
				return
			}
		}

		result, err := dispatcher.Dispatch(r.Context(), mux.Vars(r)["name"], args)
		if err != nil {
			writeJSON(w, handlers.StatusFor(err), tools.ErrorResult{Error: err.Error()})
			return
		}
		writeJSON(w, http.StatusOK, result)
	}).Methods(http.MethodPost)

	return r
}

func writeJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(body); err != nil {
		logger.Log.Error().Err(err).Msg("failed to write response")
	}
}
