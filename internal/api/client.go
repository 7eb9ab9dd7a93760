package api

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/pefman/terraform-tracker/internal/models"
)

// ErrMalformed is returned when the room server answers with a body that is
// not a valid room payload.
var ErrMalformed = errors.New("malformed room payload")

// StatusError reports a non-200 answer from the room server.
type StatusError struct {
	Code int
	Body string
}

func (e *StatusError) Error() string {
	if e.Body == "" {
		return fmt.Sprintf("api status %d", e.Code)
	}
	return fmt.Sprintf("api status %d: %s", e.Code, e.Body)
}

// Config holds API configuration
type Config struct {
	BaseURL string
	// Timeout bounds regular reads and writes.
	Timeout time.Duration
	// BeaconTimeout bounds the best-effort write sent on exit.
	BeaconTimeout time.Duration
}

// Client talks to the room server over its GET/POST contract.
type Client struct {
	config Config
	http   *http.Client
}

func NewClient(baseURL string) *Client {
	return NewClientWithConfig(Config{BaseURL: baseURL})
}

func NewClientWithConfig(cfg Config) *Client {
	if cfg.Timeout <= 0 {
		cfg.Timeout = 8 * time.Second
	}
	if cfg.BeaconTimeout <= 0 {
		cfg.BeaconTimeout = time.Second
	}
	return &Client{
		config: cfg,
		http:   &http.Client{Timeout: cfg.Timeout},
	}
}

func (c *Client) roomURL(roomID string) string {
	if roomID == "" {
		roomID = models.DefaultRoomID
	}
	base := strings.TrimRight(c.config.BaseURL, "/")
	return base + "/?roomId=" + url.QueryEscape(roomID)
}

// Fetch reads the room's roster. An unknown room yields an empty roster.
func (c *Client) Fetch(ctx context.Context, roomID string) (models.Roster, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.roomURL(roomID), nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Accept", "application/json")
	resp, err := c.http.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return nil, statusError(resp)
	}
	var body struct {
		Players models.Roster `json:"players"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformed, err)
	}
	if body.Players == nil {
		body.Players = models.Roster{}
	}
	return body.Players, nil
}

// Save replaces the room's roster on the server.
func (c *Client) Save(ctx context.Context, roomID string, players models.Roster) error {
	return c.post(ctx, c.http, roomID, players)
}

// Beacon is a fire-and-forget Save used while the client is shutting down.
// It never waits longer than BeaconTimeout and does not read the answer body.
func (c *Client) Beacon(ctx context.Context, roomID string, players models.Roster) error {
	ctx, cancel := context.WithTimeout(ctx, c.config.BeaconTimeout)
	defer cancel()
	hc := &http.Client{Timeout: c.config.BeaconTimeout}
	return c.post(ctx, hc, roomID, players)
}

func (c *Client) post(ctx context.Context, hc *http.Client, roomID string, players models.Roster) error {
	if roomID == "" {
		roomID = models.DefaultRoomID
	}
	payload, err := json.Marshal(models.Room{RoomID: roomID, Players: players.Clone()})
	if err != nil {
		return err
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.roomURL(roomID), bytes.NewReader(payload))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")
	resp, err := hc.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return statusError(resp)
	}
	return nil
}

func statusError(resp *http.Response) error {
	b, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
	var body struct {
		Error string `json:"error"`
	}
	msg := strings.TrimSpace(string(b))
	if json.Unmarshal(b, &body) == nil && body.Error != "" {
		msg = body.Error
	}
	return &StatusError{Code: resp.StatusCode, Body: msg}
}
