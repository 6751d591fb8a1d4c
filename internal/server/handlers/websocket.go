// internal/server/handlers/websocket.go

package handlers

import (
	"encoding/json"
	"fmt"
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/websocket"
	"github.com/nats-io/nats.go"
	"go.uber.org/zap"

	"localvibe/internal/domain/events"
)

// Subscriber subscribes to event subjects. *nats.Conn satisfies it.
type Subscriber interface {
	Subscribe(subject string, cb nats.MsgHandler) (*nats.Subscription, error)
}

// WebSocketConfig contains configuration for WebSocket connections
type WebSocketConfig struct {
	// Time allowed to write a message to the peer
	WriteWait time.Duration

	// Time allowed to read the next pong message from the peer
	PongWait time.Duration

	// Send pings to peer with this period
	PingPeriod time.Duration

	// Maximum message size allowed from peer
	MaxMessageSize int64

	// Messages buffered per client before new ones are dropped
	SendBuffer int
}

// DefaultWebSocketConfig returns the default WebSocket configuration
func DefaultWebSocketConfig() WebSocketConfig {
	return WebSocketConfig{
		WriteWait:      10 * time.Second,
		PongWait:       60 * time.Second,
		PingPeriod:     (60 * time.Second * 9) / 10,
		MaxMessageSize: 4096,
		SendBuffer:     256,
	}
}

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin: func(r *http.Request) bool {
		return true
	},
}

// feedClient is one browser connected to the live feed
type feedClient struct {
	conn          *websocket.Conn
	send          chan []byte
	config        WebSocketConfig
	logger        *zap.Logger
	subscriptions []*nats.Subscription
	closeOnce     sync.Once
	done          chan struct{}
}

// FeedWebSocketHandler relays itinerary and catalog events to browsers
func FeedWebSocketHandler(bus Subscriber, eventsTopic string, logger *zap.Logger) http.HandlerFunc {
	config := DefaultWebSocketConfig()

	return func(w http.ResponseWriter, r *http.Request) {
		conn, err := upgrader.Upgrade(w, r, nil)
		if err != nil {
			logger.Warn("Failed to upgrade to WebSocket", zap.Error(err))
			return
		}

		client := &feedClient{
			conn:   conn,
			send:   make(chan []byte, config.SendBuffer),
			config: config,
			logger: logger,
			done:   make(chan struct{}),
		}

		if err := client.subscribe(bus, eventsTopic); err != nil {
			logger.Error("Failed to subscribe to feed topics", zap.Error(err))
			client.closeConnection()
			return
		}

		welcome, err := json.Marshal(map[string]interface{}{
			"type": "welcome",
			"time": time.Now().UTC(),
		})
		if err != nil {
			logger.Error("Failed to marshal welcome message", zap.Error(err))
			client.closeConnection()
			return
		}
		client.enqueue(welcome)

		go client.writePump()
		go client.readPump()

		logger.Debug("Feed client connected", zap.String("remote", r.RemoteAddr))
	}
}

// subscribe relays every itinerary and catalog event to the client
func (c *feedClient) subscribe(bus Subscriber, eventsTopic string) error {
	for _, kind := range []string{"itinerary.>", "catalog.>"} {
		subject := events.Subject(eventsTopic, kind)
		sub, err := bus.Subscribe(subject, func(msg *nats.Msg) {
			c.enqueue(msg.Data)
		})
		if err != nil {
			return fmt.Errorf("failed to subscribe to %s: %w", subject, err)
		}
		c.subscriptions = append(c.subscriptions, sub)
	}
	return nil
}

// enqueue drops the message when the client is closed or too slow
func (c *feedClient) enqueue(data []byte) {
	select {
	case <-c.done:
	case c.send <- data:
	default:
		c.logger.Debug("Dropping feed message for slow client")
	}
}

// readPump discards client messages and keeps the connection alive
func (c *feedClient) readPump() {
	defer c.closeConnection()

	c.conn.SetReadLimit(c.config.MaxMessageSize)
	c.conn.SetReadDeadline(time.Now().Add(c.config.PongWait))
	c.conn.SetPongHandler(func(string) error {
		c.conn.SetReadDeadline(time.Now().Add(c.config.PongWait))
		return nil
	})

	for {
		if _, _, err := c.conn.ReadMessage(); err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure) {
				c.logger.Debug("WebSocket error", zap.Error(err))
			}
			return
		}
	}
}

// writePump pumps queued events to the WebSocket connection
func (c *feedClient) writePump() {
	ticker := time.NewTicker(c.config.PingPeriod)
	defer func() {
		ticker.Stop()
		c.closeConnection()
	}()

	for {
		select {
		case <-c.done:
			return

		case message := <-c.send:
			c.conn.SetWriteDeadline(time.Now().Add(c.config.WriteWait))

			w, err := c.conn.NextWriter(websocket.TextMessage)
			if err != nil {
				return
			}
			w.Write(message)

			// Add queued messages to the current WebSocket message
			n := len(c.send)
			for i := 0; i < n; i++ {
				w.Write([]byte{'\n'})
				w.Write(<-c.send)
			}

			if err := w.Close(); err != nil {
				return
			}

		case <-ticker.C:
			c.conn.SetWriteDeadline(time.Now().Add(c.config.WriteWait))
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}

// closeConnection unsubscribes and closes the socket exactly once
func (c *feedClient) closeConnection() {
	c.closeOnce.Do(func() {
		close(c.done)
		for _, sub := range c.subscriptions {
			sub.Unsubscribe()
		}
		c.conn.Close()
	})
}
