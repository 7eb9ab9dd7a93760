package api

import (
	"context"
	"encoding/json"
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/gorilla/websocket"

	"github.com/pefman/terraform-tracker/internal/models"
)

// StreamURL turns the room server base URL into its websocket monitor URL.
func (c *Client) StreamURL(roomID string) (string, error) {
	u, err := url.Parse(strings.TrimRight(c.config.BaseURL, "/"))
	if err != nil {
		return "", err
	}
	switch u.Scheme {
	case "https":
		u.Scheme = "wss"
	default:
		u.Scheme = "ws"
	}
	if roomID == "" {
		roomID = models.DefaultRoomID
	}
	u.Path = strings.TrimRight(u.Path, "/") + "/ws"
	u.RawQuery = url.Values{"roomId": {roomID}}.Encode()
	return u.String(), nil
}

// Stream subscribes to pushed room snapshots and calls fn for each until ctx
// is cancelled or the connection drops.
func (c *Client) Stream(ctx context.Context, roomID string, fn func(models.Roster)) error {
	wsURL, err := c.StreamURL(roomID)
	if err != nil {
		return err
	}
	dialer := websocket.Dialer{HandshakeTimeout: c.config.Timeout}
	conn, _, err := dialer.DialContext(ctx, wsURL, nil)
	if err != nil {
		return fmt.Errorf("dial %s: %w", wsURL, err)
	}
	defer conn.Close()

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()
	go func() {
		<-ctx.Done()
		_ = conn.WriteControl(websocket.CloseMessage, websocket.FormatCloseMessage(websocket.CloseNormalClosure, "bye"), time.Now().Add(time.Second))
		_ = conn.Close()
	}()

	for {
		_, msg, err := conn.ReadMessage()
		if err != nil {
			if ctx.Err() != nil {
				return nil
			}
			return err
		}
		var body struct {
			Players models.Roster `json:"players"`
		}
		if err := json.Unmarshal(msg, &body); err != nil {
			return fmt.Errorf("%w: %v", ErrMalformed, err)
		}
		fn(body.Players)
	}
}
