package ws

import (
	"context"
	"encoding/json"
	"net/http"
	"sync"

	"github.com/gorilla/websocket"
	"github.com/playmatatu/poolsim/internal/table"
	"go.uber.org/zap"
)

// Hub maintains the set of connected viewers and fans session updates out
// to them.
type Hub struct {
	session  *table.Session
	upgrader websocket.Upgrader

	clients    map[*Client]struct{}
	register   chan *Client
	unregister chan *Client
	done       chan struct{}
	mu         sync.RWMutex

	log *zap.Logger
}

// NewHub creates a hub over session. checkOrigin may be nil to accept any
// origin.
func NewHub(session *table.Session, checkOrigin func(r *http.Request) bool, log *zap.Logger) *Hub {
	if log == nil {
		log = zap.NewNop()
	}
	if checkOrigin == nil {
		checkOrigin = func(*http.Request) bool { return true }
	}
	return &Hub{
		session: session,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 4096,
			CheckOrigin:     checkOrigin,
		},
		clients:    make(map[*Client]struct{}),
		register:   make(chan *Client),
		unregister: make(chan *Client),
		done:       make(chan struct{}),
		log:        log,
	}
}

// Message is the envelope for everything sent to and from viewers.
type Message struct {
	Type string          `json:"type"`
	Data json.RawMessage `json:"data,omitempty"`
}

// Run registers clients and forwards session updates until ctx is done.
// A hub runs once.
func (h *Hub) Run(ctx context.Context) error {
	updates, cancel := h.session.Subscribe(256)
	defer cancel()
	defer close(h.done)

	for {
		select {
		case <-ctx.Done():
			h.closeAll()
			return ctx.Err()

		case client := <-h.register:
			h.mu.Lock()
			h.clients[client] = struct{}{}
			n := len(h.clients)
			h.mu.Unlock()
			h.log.Info("viewer connected", zap.String("remote", client.remote), zap.Int("viewers", n))
			client.sendJSON("table_state", h.session.Current())

		case client := <-h.unregister:
			h.mu.Lock()
			if _, ok := h.clients[client]; ok {
				delete(h.clients, client)
				close(client.send)
			}
			n := len(h.clients)
			h.mu.Unlock()
			h.log.Info("viewer disconnected", zap.String("remote", client.remote), zap.Int("viewers", n))

		case u, ok := <-updates:
			if !ok {
				return nil
			}
			h.Broadcast("frame", u)
		}
	}
}

// Broadcast sends a typed message to every viewer. Viewers whose buffer is
// full miss the message.
func (h *Hub) Broadcast(msgType string, payload interface{}) {
	data, err := encode(msgType, payload)
	if err != nil {
		h.log.Error("encode broadcast", zap.String("type", msgType), zap.Error(err))
		return
	}

	h.mu.RLock()
	defer h.mu.RUnlock()
	for client := range h.clients {
		select {
		case client.send <- data:
		default:
			h.log.Debug("viewer send buffer full, dropping message", zap.String("remote", client.remote))
		}
	}
}

// ClientCount returns the number of connected viewers.
func (h *Hub) ClientCount() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.clients)
}

// ServeWS upgrades the request and attaches the viewer to the hub.
func (h *Hub) ServeWS(w http.ResponseWriter, r *http.Request) {
	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		h.log.Warn("websocket upgrade failed", zap.Error(err))
		return
	}

	client := &Client{
		hub:    h,
		conn:   conn,
		remote: r.RemoteAddr,
		send:   make(chan []byte, 256),
	}
	select {
	case h.register <- client:
	case <-h.done:
		conn.Close()
		return
	}

	go client.writePump()
	go client.readPump()
}

func (h *Hub) closeAll() {
	h.mu.Lock()
	defer h.mu.Unlock()
	for client := range h.clients {
		delete(h.clients, client)
		close(client.send)
	}
}

func encode(msgType string, payload interface{}) ([]byte, error) {
	msg := Message{Type: msgType}
	if payload != nil {
		raw, err := json.Marshal(payload)
		if err != nil {
			return nil, err
		}
		msg.Data = raw
	}
	return json.Marshal(msg)
}
