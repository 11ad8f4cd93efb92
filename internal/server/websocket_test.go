package server

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/zeusync/futbolin/internal/config"
	"github.com/zeusync/futbolin/internal/core/events/bus"
	"github.com/zeusync/futbolin/internal/game"
)

type inbound struct {
	Type  string          `json:"type"`
	Event string          `json:"event"`
	Data  json.RawMessage `json:"data"`
	Error string          `json:"error"`
}

func dial(t *testing.T, s *Server, header http.Header) (*websocket.Conn, *http.Response, error) {
	t.Helper()
	ts := httptest.NewServer(s.Handler())
	t.Cleanup(ts.Close)
	u := "ws" + strings.TrimPrefix(ts.URL, "http") + "/ws"
	return websocket.DefaultDialer.Dial(u, header)
}

func readMessage(t *testing.T, conn *websocket.Conn) inbound {
	t.Helper()
	require.NoError(t, conn.SetReadDeadline(time.Now().Add(2*time.Second)))
	var msg inbound
	require.NoError(t, conn.ReadJSON(&msg))
	return msg
}

func readFrame(t *testing.T, conn *websocket.Conn) game.Snapshot {
	t.Helper()
	msg := readMessage(t, conn)
	require.Equal(t, MsgFrame, msg.Type)
	var snap game.Snapshot
	require.NoError(t, json.Unmarshal(msg.Data, &snap))
	return snap
}

func TestWebSocketFrames(t *testing.T) {
	s, sim := newTestServer(t, nil)
	conn, _, err := dial(t, s, nil)
	require.NoError(t, err)
	defer conn.Close()

	first := readFrame(t, conn)
	assert.EqualValues(t, 7, first.Tick, "latest snapshot is sent on connect")

	sim.frames <- game.Snapshot{Tick: 8, Digest: 1}
	sim.frames <- game.Snapshot{Tick: 9, Digest: 2}
	sim.frames <- game.Snapshot{Tick: 10, Digest: 2}
	sim.frames <- game.Snapshot{Tick: 11, Digest: 3}

	assert.EqualValues(t, 9, readFrame(t, conn).Tick, "unchanged digests are skipped")
	assert.EqualValues(t, 11, readFrame(t, conn).Tick)
	assert.Equal(t, 1, s.Hub().Len())
}

func TestWebSocketCommands(t *testing.T) {
	s, sim := newTestServer(t, nil)
	conn, _, err := dial(t, s, nil)
	require.NoError(t, err)
	defer conn.Close()
	readFrame(t, conn)

	require.NoError(t, conn.WriteJSON(game.Command{Kind: game.CmdKeyDown, Key: game.KeyKickB}))
	require.NoError(t, conn.WriteMessage(websocket.TextMessage, []byte(`{"type":"kick","team":"a","rod":1}`)))

	assert.Eventually(t, func() bool { return len(sim.commands()) == 2 }, 2*time.Second, 10*time.Millisecond)
	assert.Equal(t, []game.Command{
		{Kind: game.CmdKeyDown, Key: game.KeyKickB},
		{Kind: game.CmdKick, Team: game.TeamA, Rod: 1},
	}, sim.commands())

	require.NoError(t, conn.WriteMessage(websocket.TextMessage, []byte(`{"type":"kick","team":"z"}`)))
	msg := readMessage(t, conn)
	assert.Equal(t, MsgError, msg.Type)
	assert.Contains(t, msg.Error, ErrInvalidMessage.Error())

	sim.mu.Lock()
	sim.submitErr = game.ErrQueueFull
	sim.mu.Unlock()
	require.NoError(t, conn.WriteJSON(game.Command{Kind: game.CmdResetBall}))
	msg = readMessage(t, conn)
	assert.Equal(t, MsgError, msg.Type)
	assert.Equal(t, game.ErrQueueFull.Error(), msg.Error)
}

func TestWebSocketForwardsEvents(t *testing.T) {
	cfg := config.Default()
	sim := newFakeSim()
	events := bus.New()
	s := NewServer(cfg, sim, events, nil)
	_, err := events.SubscribeAll(s.Hub().forwardEvent)
	require.NoError(t, err)

	conn, _, err := dial(t, s, nil)
	require.NoError(t, err)
	defer conn.Close()
	readFrame(t, conn)
	require.Eventually(t, func() bool { return s.Hub().Len() == 1 }, 2*time.Second, 10*time.Millisecond)

	goal := game.GoalEvent{Team: game.TeamB, Score: game.Score{B: 1}, Texture: "numbers/1.png"}
	require.NoError(t, events.Publish(bus.NewEvent(game.EventGoalScored, "test", goal)))

	msg := readMessage(t, conn)
	assert.Equal(t, MsgEvent, msg.Type)
	assert.Equal(t, game.EventGoalScored, msg.Event)
	var got game.GoalEvent
	require.NoError(t, json.Unmarshal(msg.Data, &got))
	assert.Equal(t, goal, got)
}

func TestWebSocketOriginCheck(t *testing.T) {
	s, _ := newTestServer(t, func(c *config.Config) {
		c.Server.AllowedOrigins = []string{"http://table.local"}
	})

	_, resp, err := dial(t, s, http.Header{"Origin": {"http://evil.example"}})
	require.Error(t, err)
	require.NotNil(t, resp)
	assert.Equal(t, http.StatusForbidden, resp.StatusCode)

	conn, _, err := dial(t, s, http.Header{"Origin": {"http://table.local"}})
	require.NoError(t, err)
	defer conn.Close()
	readFrame(t, conn)
}

func TestHubCloseAllDisconnects(t *testing.T) {
	s, sim := newTestServer(t, nil)
	conn, _, err := dial(t, s, nil)
	require.NoError(t, err)
	defer conn.Close()
	readFrame(t, conn)
	require.Eventually(t, func() bool { return s.Hub().Len() == 1 }, 2*time.Second, 10*time.Millisecond)

	s.Hub().closeAll()

	require.NoError(t, conn.SetReadDeadline(time.Now().Add(2*time.Second)))
	_, _, err = conn.ReadMessage()
	assert.True(t, websocket.IsCloseError(err, websocket.CloseGoingAway), "got %v", err)
	assert.Eventually(t, func() bool { return s.Hub().Len() == 0 }, 2*time.Second, 10*time.Millisecond)
	assert.Eventually(t, func() bool {
		sim.mu.Lock()
		defer sim.mu.Unlock()
		return sim.cancelled == 1
	}, 2*time.Second, 10*time.Millisecond)
}
