package stream

import (
	"encoding/json"
	"fmt"
	"net/http"

	log "github.com/sirupsen/logrus"
)

// Handler serves snapshot streams over server-sent events.
type Handler struct {
	broadcaster *Broadcaster
}

// NewHandler creates the SSE handler for the given broadcaster.
func NewHandler(broadcaster *Broadcaster) *Handler {
	return &Handler{broadcaster: broadcaster}
}

// ServeVehicles streams scenario snapshots for the scenario named by the
// scenarioID query parameter. Each event carries one full serialized
// snapshot; a completed scenario ends the stream with an explicit "end"
// event, while an upstream failure just closes the connection.
func (h *Handler) ServeVehicles(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	scenarioID := r.URL.Query().Get("scenarioID")
	if scenarioID == "" {
		http.Error(w, "scenarioID is required", http.StatusBadRequest)
		return
	}

	flusher, ok := w.(http.Flusher)
	if !ok {
		http.Error(w, "streaming unsupported", http.StatusInternalServerError)
		return
	}

	sub, err := h.broadcaster.Subscribe(r.Context(), scenarioID)
	if err != nil {
		if IsNotFound(err) {
			http.Error(w, "scenario not found", http.StatusNotFound)
			return
		}
		log.WithError(err).WithField("scenario_id", scenarioID).Error("subscribe failed")
		http.Error(w, "upstream unavailable", http.StatusBadGateway)
		return
	}
	defer sub.Stop()

	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")
	w.Header().Set("Access-Control-Allow-Origin", "*")

	log.WithField("scenario_id", scenarioID).Info("stream opened")

	for snapshot := range sub.Snapshots() {
		data, err := json.Marshal(snapshot)
		if err != nil {
			log.WithError(err).Error("marshal snapshot")
			continue
		}
		if _, err := fmt.Fprintf(w, "data: %s\n\n", data); err != nil {
			return
		}
		flusher.Flush()
	}

	if sub.State() == StateTerminated && sub.Err() == nil {
		fmt.Fprint(w, "event: end\ndata: {\"reason\":\"completed\"}\n\n")
		flusher.Flush()
	}

	log.WithFields(log.Fields{
		"scenario_id": scenarioID,
		"failed":      sub.State() == StateFailed,
	}).Info("stream closed")
}
