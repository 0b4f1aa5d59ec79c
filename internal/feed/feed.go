// Package feed exposes the internal event bus to external consumers over
// WebSocket. Grounded on original_source/PythonScraper/api/websocket.py's
// ConnectionManager (per-connection channel subscriptions, "all" catch-all,
// subscribe/unsubscribe/ping control messages) reworked onto
// gorilla/websocket with the hub/read-pump/write-pump shape shown in
// jbrackens-AttaboyGO's internal/infra/websocket.go.
package feed

import (
	"context"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/gorilla/websocket"

	"github.com/oddsentry/oddsentry/internal/bus"
)

const (
	writeWait  = 10 * time.Second
	pongWait   = 60 * time.Second
	pingPeriod = (pongWait * 9) / 10
	sendBuffer = 64
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin:     func(r *http.Request) bool { return true },
}

// outboundMessage is the shape sent to clients, mirroring the Python
// handler's {"type": ..., "data": ..., "timestamp": ...}.
type outboundMessage struct {
	Type      string    `json:"type"`
	Data      any       `json:"data,omitempty"`
	Channels  []string  `json:"channels,omitempty"`
	Message   string    `json:"message,omitempty"`
	Timestamp time.Time `json:"timestamp"`
}

// controlMessage is the shape clients send to manage their subscriptions.
type controlMessage struct {
	Action   string   `json:"action"` // "subscribe", "unsubscribe", "ping"
	Channels []string `json:"channels"`
}

// Hub upgrades HTTP connections to WebSocket and fans bus events out to
// each connection's subscribed channels.
type Hub struct {
	bus  *bus.Bus
	log  *slog.Logger
	addr string
	srv  *http.Server
}

func New(addr string, b *bus.Bus, log *slog.Logger) *Hub {
	h := &Hub{bus: b, log: log, addr: addr}
	mux := http.NewServeMux()
	mux.HandleFunc("/ws", h.ServeHTTP)
	h.srv = &http.Server{Addr: addr, Handler: mux, ReadHeaderTimeout: 5 * time.Second}
	return h
}

// Run starts the feed's HTTP listener and blocks until ctx is cancelled,
// then shuts down gracefully.
func (h *Hub) Run(ctx context.Context) error {
	errCh := make(chan error, 1)
	go func() {
		h.log.Info("feed: listening", "addr", h.addr)
		if err := h.srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			errCh <- err
		}
	}()

	select {
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		return h.srv.Shutdown(shutdownCtx)
	case err := <-errCh:
		return err
	}
}

// ServeHTTP upgrades the request and runs the connection until it
// disconnects or ctx is cancelled.
func (h *Hub) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		h.log.Warn("feed: upgrade failed", "error", err)
		return
	}

	channels := map[string]struct{}{"all": {}}
	if q := r.URL.Query().Get("channels"); q != "" {
		for _, c := range strings.Split(q, ",") {
			channels[strings.TrimSpace(c)] = struct{}{}
		}
	}

	c := &client{conn: conn, channels: channels, send: make(chan outboundMessage, sendBuffer), log: h.log}
	sub := h.bus.Subscribe([]string{"all"}, sendBuffer)

	ctx, cancel := context.WithCancel(r.Context())
	defer cancel()

	go c.writePump(ctx)
	go c.busPump(ctx, sub)
	c.readPump(ctx, cancel) // blocks until the connection closes

	sub.Close()
	close(c.send)
}

type client struct {
	conn     *websocket.Conn
	channels map[string]struct{}
	send     chan outboundMessage
	log      *slog.Logger
}

// readPump handles inbound control messages (subscribe/unsubscribe/ping) and
// keepalive pongs, matching the Python handler's receive_json loop.
func (c *client) readPump(ctx context.Context, cancel context.CancelFunc) {
	defer cancel()
	c.conn.SetReadDeadline(time.Now().Add(pongWait))
	c.conn.SetPongHandler(func(string) error {
		c.conn.SetReadDeadline(time.Now().Add(pongWait))
		return nil
	})

	c.send <- outboundMessage{Type: "connected", Message: "connected to oddsentry realtime feed", Timestamp: time.Now()}

	for {
		var msg controlMessage
		if err := c.conn.ReadJSON(&msg); err != nil {
			return
		}
		switch msg.Action {
		case "subscribe":
			for _, ch := range msg.Channels {
				c.channels[ch] = struct{}{}
			}
			c.send <- outboundMessage{Type: "subscribed", Channels: msg.Channels, Timestamp: time.Now()}
		case "unsubscribe":
			for _, ch := range msg.Channels {
				delete(c.channels, ch)
			}
			c.send <- outboundMessage{Type: "unsubscribed", Channels: msg.Channels, Timestamp: time.Now()}
		case "ping":
			c.send <- outboundMessage{Type: "pong", Timestamp: time.Now()}
		}
	}
}

// busPump forwards bus events matching this client's subscribed channels
// onto its send queue.
func (c *client) busPump(ctx context.Context, sub *bus.Subscription) {
	for {
		select {
		case <-ctx.Done():
			return
		case ev, ok := <-sub.Events():
			if !ok {
				return
			}
			if !c.subscribesTo(ev) {
				continue
			}
			msg := outboundMessage{Type: string(ev.Type), Data: ev.Payload, Timestamp: time.Now()}
			select {
			case c.send <- msg:
			default:
				c.log.Warn("feed: client send buffer full, dropping event")
			}
		}
	}
}

func (c *client) subscribesTo(ev bus.Event) bool {
	if _, ok := c.channels["all"]; ok {
		return true
	}
	if _, ok := c.channels[string(ev.Type)]; ok {
		return true
	}
	if ev.MatchID != "" {
		if _, ok := c.channels["match:"+ev.MatchID]; ok {
			return true
		}
	}
	if ev.SportTag != "" {
		if _, ok := c.channels["sport:"+ev.SportTag]; ok {
			return true
		}
	}
	return false
}

// writePump drains the send queue to the socket and emits periodic pings,
// the standard gorilla/websocket keepalive pairing for readPump.
func (c *client) writePump(ctx context.Context) {
	ticker := time.NewTicker(pingPeriod)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case msg, ok := <-c.send:
			c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				c.conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}
			if err := c.conn.WriteJSON(msg); err != nil {
				return
			}
		case <-ticker.C:
			c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}
