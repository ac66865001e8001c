// Package scenario stores scenario documents for the simulation engine. The
// stream gateway never touches this package; it sees scenarios only through
// the engine's HTTP API.
package scenario

import (
	"context"
	"errors"

	"github.com/fleetlab/dispatch-live/internal/models"
)

// ErrNotFound is returned when no scenario with the given id exists.
var ErrNotFound = errors.New("scenario not found")

// Store defines the persistence operations the engine needs.
type Store interface {
	Insert(ctx context.Context, scenario models.Scenario) error
	Get(ctx context.Context, id string) (*models.Scenario, error)
	Update(ctx context.Context, scenario models.Scenario) error
}
