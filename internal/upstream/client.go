// Package upstream is the HTTP client for the simulation engine's scenario
// API. It is the only place that talks to the engine on behalf of the stream
// gateway.
package upstream

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/fleetlab/dispatch-live/internal/models"
)

// ErrNotFound is returned when the engine does not know the scenario id.
var ErrNotFound = errors.New("scenario not found")

// Source provides scenario snapshots by id. The stream broadcaster only
// depends on this interface.
type Source interface {
	FetchScenario(ctx context.Context, id string) (*models.Scenario, error)
}

// Client fetches scenario snapshots from a running simulation engine.
type Client struct {
	baseURL string
	httpc   *http.Client
}

// NewClient creates a client for the engine at baseURL. Every fetch is
// bounded by timeout so a slow engine can never hold a poll tick past the
// next one.
func NewClient(baseURL string, timeout time.Duration) *Client {
	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		httpc:   &http.Client{Timeout: timeout},
	}
}

// FetchScenario retrieves the latest snapshot of a scenario. A 404 from the
// engine maps to ErrNotFound; any other failure is returned as-is.
func (c *Client) FetchScenario(ctx context.Context, id string) (*models.Scenario, error) {
	url := fmt.Sprintf("%s/Scenarios/get_scenario/%s", c.baseURL, id)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("build scenario request: %w", err)
	}

	resp, err := c.httpc.Do(req)
	if err != nil {
		return nil, fmt.Errorf("fetch scenario %s: %w", id, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusNotFound {
		return nil, ErrNotFound
	}
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("fetch scenario %s: unexpected status %d", id, resp.StatusCode)
	}

	var scenario models.Scenario
	if err := json.NewDecoder(resp.Body).Decode(&scenario); err != nil {
		return nil, fmt.Errorf("decode scenario %s: %w", id, err)
	}
	return &scenario, nil
}
