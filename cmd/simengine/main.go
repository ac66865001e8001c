// The simengine command runs the scenario runner service: it stores
// scenarios, simulates dispatch runs, and serves the snapshot API the
// stream gateway polls.
package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	log "github.com/sirupsen/logrus"

	"github.com/fleetlab/dispatch-live/internal/config"
	"github.com/fleetlab/dispatch-live/internal/handlers"
	"github.com/fleetlab/dispatch-live/internal/middleware"
	"github.com/fleetlab/dispatch-live/internal/scenario"
	"github.com/fleetlab/dispatch-live/internal/sim"
)

func main() {
	cfg := config.Load()

	var store scenario.Store
	if cfg.MongoURI != "" {
		client, err := scenario.ConnectMongo(cfg.MongoURI)
		if err != nil {
			log.WithError(err).Fatal("failed to connect to MongoDB")
		}
		defer func() {
			ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			if err := client.Disconnect(ctx); err != nil {
				log.WithError(err).Error("mongo disconnect error")
			}
		}()
		store = scenario.NewMongoStore(client, cfg.MongoDB)
		log.WithField("database", cfg.MongoDB).Info("using MongoDB scenario store")
	} else {
		store = scenario.NewMemoryStore()
		log.Info("using in-memory scenario store")
	}

	engine := sim.NewEngine(store, cfg.SimTick)
	defer engine.StopAll()

	mux := http.NewServeMux()
	mux.HandleFunc("/api/health", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("ok"))
	})
	handlers.NewScenarioHandler(store, engine).Register(mux)

	srv := &http.Server{
		Addr:              ":" + cfg.EnginePort,
		Handler:           middleware.Logging(mux),
		ReadHeaderTimeout: 5 * time.Second,
	}

	go func() {
		log.WithFields(log.Fields{
			"port": cfg.EnginePort,
			"tick": cfg.SimTick,
		}).Info("simulation engine listening")
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.WithError(err).Fatal("server error")
		}
	}()

	sigs := make(chan os.Signal, 1)
	signal.Notify(sigs, syscall.SIGINT, syscall.SIGTERM)
	<-sigs
	log.Info("shutdown initiated")

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		log.WithError(err).Error("HTTP server shutdown error")
	} else {
		log.Info("HTTP server shut down cleanly")
	}
}
