package view

import (
	"context"
	"time"

	log "github.com/sirupsen/logrus"

	"github.com/fleetlab/dispatch-live/internal/models"
)

// Session drives one scenario view: it consumes a snapshot channel and runs
// the render tick, pushing a frame to the sink on every tick. Snapshot
// handling and rendering interleave in a single goroutine, so the motion
// table needs no locking.
type Session struct {
	state       *State
	sink        Sink
	speedFactor float64
	tick        time.Duration
}

// NewSession creates a session rendering to sink at the given tick period.
// speedFactor is the simulation-speed multiplier; values <= 0 fall back to 1.
func NewSession(sink Sink, tick time.Duration, speedFactor float64) *Session {
	if speedFactor <= 0 {
		speedFactor = 1
	}
	if tick <= 0 {
		tick = 50 * time.Millisecond
	}
	return &Session{
		state:       NewState(),
		sink:        sink,
		speedFactor: speedFactor,
		tick:        tick,
	}
}

// Run consumes snapshots until the channel closes, the scenario turns
// terminal, or the context is cancelled. The render tick stops with the
// session; a closed channel is the normal end of stream and returns nil.
func (s *Session) Run(ctx context.Context, snapshots <-chan models.Scenario) error {
	ticker := time.NewTicker(s.tick)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()

		case snap, ok := <-snapshots:
			if !ok {
				log.Info("snapshot stream closed")
				return nil
			}
			terminal := s.state.Reconcile(snap, time.Now())
			if terminal {
				// Render the final authoritative state once, then
				// tear down.
				s.sink.Render(s.state.Frame(time.Now(), s.speedFactor))
				log.WithField("scenario_id", snap.ID).Info("scenario complete, stopping view")
				return nil
			}

		case now := <-ticker.C:
			if len(s.state.Motions) == 0 {
				continue
			}
			s.sink.Render(s.state.Frame(now, s.speedFactor))
		}
	}
}
