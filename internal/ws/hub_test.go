package ws

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/playmatatu/poolsim/internal/game"
	"github.com/playmatatu/poolsim/internal/table"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func startHub(t *testing.T) (*Hub, *websocket.Conn) {
	t.Helper()

	session := table.NewSession(game.DefaultConfig(), 2*time.Millisecond, nil)
	hub := NewHub(session, nil, nil)

	ctx, cancel := context.WithCancel(context.Background())
	go session.Run(ctx)
	go hub.Run(ctx)

	srv := httptest.NewServer(http.HandlerFunc(hub.ServeWS))
	url := "ws" + strings.TrimPrefix(srv.URL, "http")
	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	require.NoError(t, err)

	t.Cleanup(func() {
		conn.Close()
		srv.Close()
		cancel()
	})
	return hub, conn
}

func readMessage(t *testing.T, conn *websocket.Conn) Message {
	t.Helper()
	conn.SetReadDeadline(time.Now().Add(5 * time.Second))
	var msg Message
	require.NoError(t, conn.ReadJSON(&msg))
	return msg
}

func TestHubSendsStateOnConnect(t *testing.T) {
	hub, conn := startHub(t)

	msg := readMessage(t, conn)
	assert.Equal(t, "table_state", msg.Type)

	var u table.Update
	require.NoError(t, json.Unmarshal(msg.Data, &u))
	assert.Equal(t, game.StateIdle, u.Frame.State)
	assert.Len(t, u.Frame.Snapshot.Balls, game.NumBalls)

	assert.Eventually(t, func() bool { return hub.ClientCount() == 1 }, time.Second, 5*time.Millisecond)
}

func TestHubStreamsShotToRest(t *testing.T) {
	_, conn := startHub(t)
	readMessage(t, conn)

	require.NoError(t, conn.WriteJSON(map[string]interface{}{
		"type": "take_shot",
		"data": map[string]interface{}{"angleDegrees": 90, "power": 5},
	}))

	var shotID string
	var final *table.Update
	for final == nil || shotID == "" {
		msg := readMessage(t, conn)
		switch msg.Type {
		case "shot_accepted":
			var data map[string]string
			require.NoError(t, json.Unmarshal(msg.Data, &data))
			shotID = data["shot_id"]
		case "frame":
			var u table.Update
			require.NoError(t, json.Unmarshal(msg.Data, &u))
			if u.Final {
				final = &u
			}
		default:
			t.Fatalf("unexpected message %q: %s", msg.Type, msg.Data)
		}
	}

	assert.Equal(t, shotID, final.ShotID)
	assert.True(t, final.Frame.Snapshot.AllStopped)
}

func TestHubRejectsBadCommands(t *testing.T) {
	_, conn := startHub(t)
	readMessage(t, conn)

	cases := []string{
		`not json`,
		`{"type":"juggle"}`,
		`{"type":"take_shot","data":{"power":500}}`,
		`{"type":"place_cue_ball","data":{"x":250,"y":0}}`,
	}
	for _, raw := range cases {
		require.NoError(t, conn.WriteMessage(websocket.TextMessage, []byte(raw)))
		msg := readMessage(t, conn)
		assert.Equal(t, "error", msg.Type, raw)
	}
}
