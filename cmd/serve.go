package main

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"os/signal"
	"syscall"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/aerocell/towersync/internal/search"
)

var servePort int

// syncEngine is the engine surface the admin server uses.
type syncEngine interface {
	FullSync(ctx context.Context) (search.Stats, error)
	IncrementalSync(ctx context.Context) (search.Stats, error)
	Status(ctx context.Context) ([]search.SyncEntry, error)
}

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the sync admin server",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
		defer stop()

		pool, err := dbPool(ctx)
		if err != nil {
			return err
		}
		defer pool.Close()

		client := meiliClient()
		engine := search.NewEngine(pool, client, cfg.Sync.BatchSize, cfg.Sync.MaxConcurrency, zap.L())

		healthy := func(ctx context.Context) error {
			if err := pool.Ping(ctx); err != nil {
				return eris.Wrap(err, "serve: database unreachable")
			}
			return client.Health(ctx)
		}

		port := servePort
		if port == 0 {
			port = cfg.Server.Port
		}

		srv := &http.Server{
			Addr:    fmt.Sprintf(":%d", port),
			Handler: newRouter(ctx, engine, healthy),
		}

		// Graceful shutdown
		go func() {
			<-ctx.Done()
			zap.L().Info("shutting down server")
			srv.Shutdown(context.Background())
		}()

		zap.L().Info("starting server", zap.Int("port", port))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			return eris.Wrap(err, "server listen")
		}

		return nil
	},
}

// newRouter builds the admin routes. Sync runs are launched against baseCtx,
// not the request context, so they outlive the triggering request.
func newRouter(baseCtx context.Context, engine syncEngine, healthy func(context.Context) error) *chi.Mux {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.Recoverer)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins: []string{"*"},
		AllowedMethods: []string{"GET", "POST"},
	}))

	r.Get("/health", func(w http.ResponseWriter, req *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		if err := healthy(req.Context()); err != nil {
			w.WriteHeader(http.StatusServiceUnavailable)
			json.NewEncoder(w).Encode(map[string]string{"status": "unhealthy", "error": err.Error()})
			return
		}
		json.NewEncoder(w).Encode(map[string]string{"status": "ok"})
	})

	r.Get("/status", func(w http.ResponseWriter, req *http.Request) {
		entries, err := engine.Status(req.Context())
		if err != nil {
			http.Error(w, `{"error":"status query failed"}`, http.StatusInternalServerError)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(entries)
	})

	r.Post("/admin/sync", func(w http.ResponseWriter, req *http.Request) {
		var body struct {
			Mode string `json:"mode"`
		}
		if err := json.NewDecoder(req.Body).Decode(&body); err != nil {
			http.Error(w, `{"error":"invalid request body"}`, http.StatusBadRequest)
			return
		}
		if body.Mode != "full" && body.Mode != "incremental" {
			http.Error(w, `{"error":"mode must be full or incremental"}`, http.StatusBadRequest)
			return
		}

		go func() {
			var stats search.Stats
			var err error
			if body.Mode == "full" {
				stats, err = engine.FullSync(baseCtx)
			} else {
				stats, err = engine.IncrementalSync(baseCtx)
			}
			if err != nil {
				zap.L().Error("admin sync failed", zap.String("mode", body.Mode), zap.Error(err))
				return
			}
			zap.L().Info("admin sync complete",
				zap.String("mode", body.Mode),
				zap.Int64("towers", stats.Towers),
				zap.Int64("entities", stats.Entities))
		}()

		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusAccepted)
		json.NewEncoder(w).Encode(map[string]string{"status": "accepted", "mode": body.Mode})
	})

	return r
}

func init() {
	serveCmd.Flags().IntVar(&servePort, "port", 0, "server port (default from config)")
	rootCmd.AddCommand(serveCmd)
}
