package stream

import (
	"encoding/json"
	"fmt"
	"time"

	mqtt "github.com/eclipse/paho.mqtt.golang"
	log "github.com/sirupsen/logrus"

	"github.com/fleetlab/dispatch-live/internal/models"
)

// Publisher republishes stream events to an out-of-band channel for other
// consumers (dashboards, recorders). Publishing is fire-and-forget: a lost
// event never affects the subscriber stream.
type Publisher interface {
	Snapshot(scenario *models.Scenario)
	Closed(scenarioID, reason string)
}

// NopPublisher discards all events. Used when no broker is configured.
type NopPublisher struct{}

func (NopPublisher) Snapshot(*models.Scenario) {}

func (NopPublisher) Closed(string, string) {}

// MQTTPublisher pushes snapshots to scenario/<id>/snapshot and termination
// events to scenario/<id>/events.
type MQTTPublisher struct {
	client mqtt.Client
}

// NewMQTTPublisher connects to the broker and returns a publisher bound to
// it.
func NewMQTTPublisher(broker, clientID string) (*MQTTPublisher, error) {
	opts := mqtt.NewClientOptions().
		AddBroker(broker).
		SetClientID(clientID).
		SetConnectTimeout(5 * time.Second).
		SetAutoReconnect(true)

	client := mqtt.NewClient(opts)
	if token := client.Connect(); token.Wait() && token.Error() != nil {
		return nil, fmt.Errorf("connect to mqtt broker %s: %w", broker, token.Error())
	}
	log.WithField("broker", broker).Info("connected to MQTT broker")
	return &MQTTPublisher{client: client}, nil
}

// Snapshot publishes one full scenario snapshot.
func (p *MQTTPublisher) Snapshot(scenario *models.Scenario) {
	data, err := json.Marshal(scenario)
	if err != nil {
		log.WithError(err).Error("marshal snapshot for mqtt")
		return
	}
	p.client.Publish(fmt.Sprintf("scenario/%s/snapshot", scenario.ID), 0, false, data)
}

// Closed publishes a stream termination event.
func (p *MQTTPublisher) Closed(scenarioID, reason string) {
	payload, _ := json.Marshal(map[string]string{"scenarioId": scenarioID, "reason": reason})
	p.client.Publish(fmt.Sprintf("scenario/%s/events", scenarioID), 0, false, payload)
}

// Disconnect closes the broker connection.
func (p *MQTTPublisher) Disconnect() {
	p.client.Disconnect(250)
}
