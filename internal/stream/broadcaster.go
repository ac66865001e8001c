// Package stream is the server side of the snapshot push: it polls the
// simulation engine for one scenario per subscription and republishes every
// snapshot to the subscriber until the scenario completes, the upstream
// fails, or the subscriber goes away.
package stream

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"time"

	log "github.com/sirupsen/logrus"

	"github.com/fleetlab/dispatch-live/internal/models"
	"github.com/fleetlab/dispatch-live/internal/upstream"
)

// State of a subscription's poll loop.
type State int32

const (
	// StateIdle is the state before the initial snapshot has been pushed.
	StateIdle State = iota
	// StatePolling means the loop is live and fetching on its cadence.
	StatePolling
	// StateTerminated means the stream closed without error: either the
	// scenario completed or the subscriber cancelled.
	StateTerminated
	// StateFailed means an upstream fetch failed and the stream closed.
	StateFailed
)

// Broadcaster creates snapshot subscriptions against an upstream source.
type Broadcaster struct {
	source       upstream.Source
	publisher    Publisher
	interval     time.Duration
	fetchTimeout time.Duration
}

// NewBroadcaster wires a broadcaster to its upstream source. interval is the
// poll cadence; fetchTimeout bounds each fetch and must stay below the
// interval so polls never overlap. publisher may be nil.
func NewBroadcaster(source upstream.Source, publisher Publisher, interval, fetchTimeout time.Duration) *Broadcaster {
	if interval <= 0 {
		interval = 2 * time.Second
	}
	if fetchTimeout <= 0 || fetchTimeout >= interval {
		fetchTimeout = interval / 2
	}
	if publisher == nil {
		publisher = NopPublisher{}
	}
	return &Broadcaster{
		source:       source,
		publisher:    publisher,
		interval:     interval,
		fetchTimeout: fetchTimeout,
	}
}

// Subscription is one open snapshot stream. Snapshots delivers every fetched
// snapshot in order and is closed when the stream ends; after the close,
// State and Err describe how it ended.
type Subscription struct {
	scenarioID string
	snapshots  chan *models.Scenario
	state      atomic.Int32
	err        error
	cancel     context.CancelFunc
	closeOnce  sync.Once
}

// Snapshots returns the snapshot channel. It is closed on stream end.
func (s *Subscription) Snapshots() <-chan *models.Scenario { return s.snapshots }

// State returns the current stream state.
func (s *Subscription) State() State { return State(s.state.Load()) }

// Err returns the upstream error that failed the stream, or nil for a
// graceful end. Only meaningful once the snapshot channel has closed.
func (s *Subscription) Err() error { return s.err }

// Stop cancels the subscription. Safe to call any number of times and from
// any state; the poll loop observes the cancellation and releases the
// snapshot channel exactly once.
func (s *Subscription) Stop() {
	s.cancel()
}

// close is only ever called by the goroutine that owns the snapshot channel,
// so the channel close cannot race a send.
func (s *Subscription) close(state State, err error) {
	s.closeOnce.Do(func() {
		s.err = err
		s.state.Store(int32(state))
		s.cancel()
		close(s.snapshots)
	})
}

// Subscribe opens a stream for the given scenario. The initial snapshot is
// fetched synchronously; if that fetch fails no subscription is created and
// the error is returned directly. The subscription is torn down when ctx is
// cancelled, Stop is called, the scenario completes, or a poll fails.
func (b *Broadcaster) Subscribe(ctx context.Context, scenarioID string) (*Subscription, error) {
	cctx, cancel := context.WithCancel(ctx)

	sub := &Subscription{
		scenarioID: scenarioID,
		snapshots:  make(chan *models.Scenario, 4),
		cancel:     cancel,
	}

	initial, err := b.fetch(cctx, scenarioID)
	if err != nil {
		cancel()
		return nil, err
	}

	sub.snapshots <- initial
	b.publisher.Snapshot(initial)

	if initial.AllServed() {
		log.WithField("scenario_id", scenarioID).Info("scenario already complete")
		b.publisher.Closed(scenarioID, "completed")
		sub.close(StateTerminated, nil)
		return sub, nil
	}

	sub.state.Store(int32(StatePolling))
	go b.run(cctx, sub)
	return sub, nil
}

func (b *Broadcaster) run(ctx context.Context, sub *Subscription) {
	ticker := time.NewTicker(b.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			sub.close(StateTerminated, nil)
			return

		case <-ticker.C:
			snapshot, err := b.fetch(ctx, sub.scenarioID)
			if err != nil {
				// A late result from a cancelled fetch is not a
				// stream failure.
				if ctx.Err() != nil {
					sub.close(StateTerminated, nil)
					return
				}
				log.WithError(err).WithField("scenario_id", sub.scenarioID).Warn("poll failed, closing stream")
				b.publisher.Closed(sub.scenarioID, "failed")
				sub.close(StateFailed, err)
				return
			}

			if !b.push(ctx, sub, snapshot) {
				sub.close(StateTerminated, nil)
				return
			}
			b.publisher.Snapshot(snapshot)

			if snapshot.AllServed() {
				log.WithField("scenario_id", sub.scenarioID).Info("all customers served, closing stream")
				b.publisher.Closed(sub.scenarioID, "completed")
				sub.close(StateTerminated, nil)
				return
			}
		}
	}
}

// push delivers a snapshot to the subscriber, giving up when the
// subscription is cancelled. Reports whether the snapshot was delivered.
func (b *Broadcaster) push(ctx context.Context, sub *Subscription, snapshot *models.Scenario) bool {
	select {
	case sub.snapshots <- snapshot:
		return true
	case <-ctx.Done():
		return false
	}
}

func (b *Broadcaster) fetch(ctx context.Context, scenarioID string) (*models.Scenario, error) {
	fctx, cancel := context.WithTimeout(ctx, b.fetchTimeout)
	defer cancel()
	return b.source.FetchScenario(fctx, scenarioID)
}

// IsNotFound reports whether a subscribe error was an unknown scenario id.
func IsNotFound(err error) bool {
	return errors.Is(err, upstream.ErrNotFound)
}
