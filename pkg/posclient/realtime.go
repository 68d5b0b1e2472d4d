package posclient

import (
	"context"
	"encoding/json"
	"fmt"
	"net/url"
	"strings"
	"time"

	"go-pos-ws/internal/ws"

	"github.com/gorilla/websocket"
	"github.com/rs/zerolog/log"
)

// Subscription is an open realtime connection. Events is closed when the
// connection ends, either through Close, ctx cancellation or a server drop.
type Subscription struct {
	Events <-chan ws.Event
	conn   *websocket.Conn
	done   chan struct{}
}

// Close ends the subscription with a normal close frame.
func (s *Subscription) Close() error {
	select {
	case <-s.done:
		return nil
	default:
	}
	_ = s.conn.WriteControl(
		websocket.CloseMessage,
		websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""),
		time.Now().Add(time.Second),
	)
	return s.conn.Close()
}

// Done is closed once the read loop has exited.
func (s *Subscription) Done() <-chan struct{} { return s.done }

func (c *Client) realtimeURL() (string, error) {
	u, err := url.Parse(c.baseURL)
	if err != nil {
		return "", err
	}
	// Convert HTTP URL to WebSocket URL
	switch {
	case strings.HasPrefix(u.Scheme, "https"):
		u.Scheme = "wss"
	default:
		u.Scheme = "ws"
	}
	u.Path = strings.TrimRight(u.Path, "/") + "/ws"
	u.RawQuery = url.Values{"token": {c.Token()}}.Encode()
	return u.String(), nil
}

// Subscribe opens the workspace event stream of the signed-in member.
func (c *Client) Subscribe(ctx context.Context) (*Subscription, error) {
	endpoint, err := c.realtimeURL()
	if err != nil {
		return nil, err
	}

	dialer := websocket.Dialer{
		HandshakeTimeout: 10 * time.Second,
	}
	conn, resp, err := dialer.DialContext(ctx, endpoint, nil)
	if err != nil {
		if resp != nil {
			return nil, &APIError{Status: resp.StatusCode, Message: "websocket dial: " + err.Error()}
		}
		return nil, fmt.Errorf("websocket dial: %w", err)
	}

	events := make(chan ws.Event, 16)
	sub := &Subscription{Events: events, conn: conn, done: make(chan struct{})}

	go func() {
		select {
		case <-ctx.Done():
			sub.Close()
		case <-sub.done:
		}
	}()
	go func() {
		defer close(sub.done)
		defer close(events)
		for {
			_, data, err := conn.ReadMessage()
			if err != nil {
				return
			}
			var e ws.Event
			if err := json.Unmarshal(data, &e); err != nil {
				log.Warn().Err(err).Msg("realtime: undecodable event")
				continue
			}
			select {
			case events <- e:
			case <-ctx.Done():
				return
			}
		}
	}()
	return sub, nil
}

// Events subscribes and hands back only the stream; it ends with ctx or
// the connection.
func (c *Client) Events(ctx context.Context) (<-chan ws.Event, error) {
	sub, err := c.Subscribe(ctx)
	if err != nil {
		return nil, err
	}
	return sub.Events, nil
}
