// The server command runs the stream gateway: it polls the simulation engine
// for scenario snapshots and pushes them to display clients over server-sent
// events.
package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	log "github.com/sirupsen/logrus"

	"github.com/fleetlab/dispatch-live/internal/auth"
	"github.com/fleetlab/dispatch-live/internal/config"
	"github.com/fleetlab/dispatch-live/internal/middleware"
	"github.com/fleetlab/dispatch-live/internal/stream"
	"github.com/fleetlab/dispatch-live/internal/upstream"
)

func main() {
	cfg := config.Load()

	source := upstream.NewClient(cfg.RunnerURL, cfg.PollTimeout)

	var publisher stream.Publisher
	if cfg.MQTTBroker != "" {
		mqttPub, err := stream.NewMQTTPublisher(cfg.MQTTBroker, cfg.MQTTClientID)
		if err != nil {
			log.WithError(err).Fatal("failed to connect to MQTT broker")
		}
		defer mqttPub.Disconnect()
		publisher = mqttPub
	}

	broadcaster := stream.NewBroadcaster(source, publisher, cfg.PollInterval, cfg.PollTimeout)
	handler := stream.NewHandler(broadcaster)

	var authService *auth.Service
	if cfg.StreamAuthSecret != "" {
		authService = auth.NewService(cfg.StreamAuthSecret)
		log.Info("stream authentication enabled")
	}
	authMiddleware := middleware.NewAuthMiddleware(authService)

	mux := http.NewServeMux()
	mux.HandleFunc("/api/health", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("ok"))
	})
	mux.Handle("/api/scenario/vehicles", authMiddleware.Authenticate(http.HandlerFunc(handler.ServeVehicles)))

	srv := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           middleware.Logging(mux),
		ReadHeaderTimeout: 5 * time.Second,
	}

	go func() {
		log.WithFields(log.Fields{
			"port":       cfg.Port,
			"runner_url": cfg.RunnerURL,
			"interval":   cfg.PollInterval,
		}).Info("stream gateway listening")
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
