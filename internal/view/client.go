package view

import (
	"bufio"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"

	log "github.com/sirupsen/logrus"

	"github.com/fleetlab/dispatch-live/internal/models"
)

// Subscribe opens the gateway's snapshot stream and decodes it into a
// channel. The channel closes when the server ends the stream or ctx is
// cancelled. token is an optional bearer token; pass "" when the gateway
// runs open.
func Subscribe(ctx context.Context, streamURL, token string) (<-chan models.Scenario, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, streamURL, nil)
	if err != nil {
		return nil, fmt.Errorf("build stream request: %w", err)
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("open stream: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		resp.Body.Close()
		return nil, fmt.Errorf("open stream: unexpected status %d", resp.StatusCode)
	}

	snapshots := make(chan models.Scenario, 4)
	go func() {
		defer close(snapshots)
		defer resp.Body.Close()

		scanner := bufio.NewScanner(resp.Body)
		scanner.Buffer(make([]byte, 64*1024), 4*1024*1024)

		event := "message"
		for scanner.Scan() {
			line := scanner.Text()
			switch {
			case line == "":
				event = "message"
			case strings.HasPrefix(line, "event: "):
				event = strings.TrimPrefix(line, "event: ")
			case strings.HasPrefix(line, "data: "):
				data := strings.TrimPrefix(line, "data: ")
				if event != "message" {
					log.WithFields(log.Fields{"event": event, "data": data}).Info("stream event")
					continue
				}
				var snap models.Scenario
				if err := json.Unmarshal([]byte(data), &snap); err != nil {
					log.WithError(err).Warn("skipping malformed snapshot")
					continue
				}
				select {
				case snapshots <- snap:
				case <-ctx.Done():
					return
				}
			}
		}
		if err := scanner.Err(); err != nil && ctx.Err() == nil {
			log.WithError(err).Warn("stream read ended with error")
		}
	}()

	return snapshots, nil
}
