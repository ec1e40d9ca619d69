package ws

import (
	"encoding/json"
	"time"

	"github.com/gorilla/websocket"
	"github.com/playmatatu/poolsim/internal/table"
	"go.uber.org/zap"
)

const (
	writeWait  = 10 * time.Second
	pongWait   = 60 * time.Second
	pingPeriod = 30 * time.Second
	maxMessage = 65536
)

// Client is one connected viewer.
type Client struct {
	hub    *Hub
	conn   *websocket.Conn
	remote string
	send   chan []byte
}

// PlaceCueBallData is the payload of a place_cue_ball message.
type PlaceCueBallData struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

// writePump writes messages to the WebSocket connection
func (c *Client) writePump() {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		c.conn.Close()
	}()

	for {
		select {
		case message, ok := <-c.send:
			c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				c.conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}
			if err := c.conn.WriteMessage(websocket.TextMessage, message); err != nil {
				c.hub.log.Debug("websocket write failed", zap.String("remote", c.remote), zap.Error(err))
				return
			}

		case <-ticker.C:
			c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				c.hub.log.Debug("websocket ping failed", zap.String("remote", c.remote), zap.Error(err))
				return
			}
		}
	}
}

// readPump reads viewer commands until the connection drops.
func (c *Client) readPump() {
	defer func() {
		select {
		case c.hub.unregister <- c:
		case <-c.hub.done:
		}
		c.conn.Close()
	}()

	c.conn.SetReadLimit(maxMessage)
	c.conn.SetReadDeadline(time.Now().Add(pongWait))
	c.conn.SetPongHandler(func(string) error {
		c.conn.SetReadDeadline(time.Now().Add(pongWait))
		return nil
	})

	for {
		_, message, err := c.conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				c.hub.log.Warn("websocket closed unexpectedly", zap.String("remote", c.remote), zap.Error(err))
			}
			return
		}

		var msg Message
		if err := json.Unmarshal(message, &msg); err != nil {
			c.sendError("Invalid message")
			continue
		}
		c.handleMessage(msg)
	}
}

// handleMessage applies one viewer command to the session.
func (c *Client) handleMessage(msg Message) {
	session := c.hub.session

	switch msg.Type {
	case "take_shot":
		var req table.ShotRequest
		if err := json.Unmarshal(msg.Data, &req); err != nil {
			c.sendError("Invalid shot data")
			return
		}
		if req.Power < 0 || req.Power > 100 {
			c.sendError("Power must be between 0 and 100")
			return
		}
		shotID, err := session.Shoot(req)
		if err != nil {
			c.sendError(err.Error())
			return
		}
		c.sendJSON("shot_accepted", map[string]string{"shot_id": shotID})

	case "place_cue_ball":
		var data PlaceCueBallData
		if err := json.Unmarshal(msg.Data, &data); err != nil {
			c.sendError("Invalid placement data")
			return
		}
		if err := session.PlaceCueBall(data.X, data.Y); err != nil {
			c.sendError(err.Error())
		}

	case "rack":
		if err := session.Rack(); err != nil {
			c.sendError(err.Error())
		}

	case "get_state":
		c.sendJSON("table_state", session.Current())

	default:
		c.sendError("Unknown message type")
	}
}

// sendJSON queues a typed message for this viewer only. Detached clients
// are skipped since their send channel is closed.
func (c *Client) sendJSON(msgType string, payload interface{}) {
	data, err := encode(msgType, payload)
	if err != nil {
		c.hub.log.Error("encode message", zap.String("type", msgType), zap.Error(err))
		return
	}

	c.hub.mu.RLock()
	defer c.hub.mu.RUnlock()
	if _, ok := c.hub.clients[c]; !ok {
		return
	}
	select {
	case c.send <- data:
	default:
		c.hub.log.Debug("viewer send buffer full, dropping message", zap.String("remote", c.remote))
	}
}

// sendError sends an error message to the client
func (c *Client) sendError(message string) {
	c.sendJSON("error", map[string]string{"message": message})
}
