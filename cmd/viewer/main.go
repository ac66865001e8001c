// The viewer command is a headless display client: it subscribes to a
// scenario's snapshot stream and writes interpolated render frames to
// stdout as JSON lines.
package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	log "github.com/sirupsen/logrus"

	"github.com/fleetlab/dispatch-live/internal/config"
	"github.com/fleetlab/dispatch-live/internal/view"
)

// jsonSink writes one JSON line per frame.
type jsonSink struct {
	enc *json.Encoder
}

func (s jsonSink) Render(f view.Frame) {
	if err := s.enc.Encode(f); err != nil {
		log.WithError(err).Error("write frame")
	}
}

func main() {
	var (
		scenarioID = flag.String("scenario", "", "scenario id to watch (required)")
		gatewayURL = flag.String("gateway", "", "stream gateway base URL (default http://localhost:<PORT>)")
		token      = flag.String("token", "", "bearer token for the stream, if the gateway requires one")
	)
	flag.Parse()

	if *scenarioID == "" {
		fmt.Fprintln(os.Stderr, "usage: viewer -scenario <id> [-gateway URL] [-token TOKEN]")
		os.Exit(2)
	}

	cfg := config.Load()
	base := *gatewayURL
	if base == "" {
		base = "http://localhost:" + cfg.Port
	}
	streamURL := fmt.Sprintf("%s/api/scenario/vehicles?scenarioID=%s", base, *scenarioID)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigs := make(chan os.Signal, 1)
	signal.Notify(sigs, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		<-sigs
		log.Info("interrupt received, stopping view")
		cancel()
	}()

	snapshots, err := view.Subscribe(ctx, streamURL, *token)
	if err != nil {
		log.WithError(err).Fatal("failed to subscribe to stream")
	}
	log.WithFields(log.Fields{
		"scenario_id": *scenarioID,
		"stream_url":  streamURL,
	}).Info("subscribed to scenario stream")

	session := view.NewSession(jsonSink{enc: json.NewEncoder(os.Stdout)}, cfg.RenderTick, cfg.SimulationSpeed)
	if err := session.Run(ctx, snapshots); err != nil && err != context.Canceled {
		log.WithError(err).Fatal("view session error")
	}
	log.Info("view session ended")
}
