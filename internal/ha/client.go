// Package ha pushes ledger state into Home Assistant as sensor entities via
// its REST API.
package ha

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"time"
)

// Client talks to a Home Assistant instance with a long-lived access token.
type Client struct {
	baseURL string
	token   string
	http    *http.Client
}

func NewClient(baseURL, token string) *Client {
	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		token:   token,
		http:    &http.Client{Timeout: 10 * time.Second},
	}
}

// SensorState is the payload Home Assistant expects for a state update.
type SensorState struct {
	State      string         `json:"state"`
	Attributes map[string]any `json:"attributes,omitempty"`
}

// UpsertSensor creates or updates sensor.<entityID>.
func (c *Client) UpsertSensor(ctx context.Context, entityID string, state SensorState) error {
	body, err := json.Marshal(state)
	if err != nil {
		return fmt.Errorf("marshal sensor state: %w", err)
	}

	url := fmt.Sprintf("%s/api/states/sensor.%s", c.baseURL, entityID)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("build sensor request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+c.token)
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("post sensor %s: %w", entityID, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 300 {
		snippet, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return fmt.Errorf("post sensor %s: status %d: %s", entityID, resp.StatusCode, snippet)
	}

	slog.DebugContext(ctx, "Sensor updated", "entity_id", entityID, "state", state.State)
	return nil
}

// Notify creates a persistent notification in the Home Assistant UI.
func (c *Client) Notify(ctx context.Context, title, message string) error {
	body, err := json.Marshal(map[string]string{"title": title, "message": message})
	if err != nil {
		return fmt.Errorf("marshal notification: %w", err)
	}

	url := c.baseURL + "/api/services/persistent_notification/create"
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("build notification request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+c.token)
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("post notification: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 300 {
		snippet, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return fmt.Errorf("post notification: status %d: %s", resp.StatusCode, snippet)
	}
	return nil
}
