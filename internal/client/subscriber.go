package client

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/gorilla/websocket"

	"tasker/internal/notify"
)

const (
	DefaultReconnectAttempts = 5
	DefaultReconnectDelay    = time.Second
)

// Event is a notification as received from the server.
type Event struct {
	Name string          `json:"event"`
	Data json.RawMessage `json:"data"`
}

// TaskID returns the id carried by the event payload, if any.
func (e Event) TaskID() string {
	var payload struct {
		ID string `json:"id"`
	}
	if err := json.Unmarshal(e.Data, &payload); err != nil {
		return ""
	}
	return payload.ID
}

// Subscriber listens on the server's WebSocket endpoint, invalidates the
// shared cache as events arrive and hands each event to OnEvent.
type Subscriber struct {
	URL      string
	Token    string
	Attempts int
	Delay    time.Duration

	// OnEvent runs on the subscriber goroutine after the cache was invalidated.
	OnEvent func(Event)
	// OnConnect runs after every successful (re)connect.
	OnConnect func()

	cache  *Cache
	dialer *websocket.Dialer
}

// Subscribe returns a subscriber bound to c's server and cache.
func (c *Client) Subscribe() *Subscriber {
	return &Subscriber{
		URL:      websocketURL(c.baseURL),
		Token:    c.token,
		Attempts: DefaultReconnectAttempts,
		Delay:    DefaultReconnectDelay,
		cache:    c.cache,
		dialer:   websocket.DefaultDialer,
	}
}

func websocketURL(baseURL string) string {
	switch {
	case strings.HasPrefix(baseURL, "https://"):
		return "wss://" + strings.TrimPrefix(baseURL, "https://") + "/ws"
	case strings.HasPrefix(baseURL, "http://"):
		return "ws://" + strings.TrimPrefix(baseURL, "http://") + "/ws"
	default:
		return baseURL + "/ws"
	}
}

// Run connects and processes events until ctx is cancelled or the server
// stays unreachable for the configured number of attempts. The attempt
// counter resets after every successful connection. Events emitted while
// disconnected are lost, so the whole cache is dropped on each connect.
func (s *Subscriber) Run(ctx context.Context) error {
	failures := 0
	for {
		conn, err := s.dial(ctx)
		if err != nil {
			if ctx.Err() != nil {
				return ctx.Err()
			}
			failures++
			if failures >= s.Attempts {
				return fmt.Errorf("failed to connect after %d attempts: %w", failures, err)
			}
			log.Printf("[ws] connect failed (attempt %d/%d): %v", failures, s.Attempts, err)
		} else {
			failures = 0
			s.cache.Clear()
			if s.OnConnect != nil {
				s.OnConnect()
			}
			err = s.listen(ctx, conn)
			if ctx.Err() != nil {
				return ctx.Err()
			}
			log.Printf("[ws] disconnected: %v", err)
		}

		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(s.Delay):
		}
	}
}

func (s *Subscriber) dial(ctx context.Context) (*websocket.Conn, error) {
	target := s.URL
	header := http.Header{}
	if s.Token != "" {
		header.Set("Authorization", "Bearer "+s.Token)
		if u, err := url.Parse(target); err == nil {
			q := u.Query()
			q.Set("access_token", s.Token)
			u.RawQuery = q.Encode()
			target = u.String()
		}
	}

	conn, _, err := s.dialer.DialContext(ctx, target, header)
	return conn, err
}

func (s *Subscriber) listen(ctx context.Context, conn *websocket.Conn) error {
	done := make(chan struct{})
	defer close(done)
	go func() {
		select {
		case <-ctx.Done():
			conn.Close()
		case <-done:
		}
	}()
	defer conn.Close()

	for {
		var e Event
		if err := conn.ReadJSON(&e); err != nil {
			return err
		}
		s.apply(e)
	}
}

func (s *Subscriber) apply(e Event) {
	switch e.Name {
	case notify.TaskCreated, notify.TaskDeleted:
		s.cache.Invalidate(KeyTasks, KeyStatistics)
	case notify.TaskUpdated:
		keys := []string{KeyTasks, KeyStatistics}
		if id := e.TaskID(); id != "" {
			keys = append(keys, TaskKey(id))
		}
		s.cache.Invalidate(keys...)
	}

	if s.OnEvent != nil {
		s.OnEvent(e)
	}
}
