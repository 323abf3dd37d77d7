package web

import (
	"context"
	"encoding/json"
	"net"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/coder/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	rrnet "github.com/peterkuimelis/roborally/internal/net"
)

const testBoards = `
boards:
  - name: Checkmate
    width: 12
    height: 12
    layers:
      OMovers:
        - {x: 2, y: 3, width: 2, type: Normal_Conveyor_West}
      OEvents:
        - {x: 5, y: 5, type: Flag1}
  - name: Broken
    width: 4
    height: 4
    layers:
      OEvents:
        - {x: 0, y: 0, type: Lava}
`

func newTestServer(t *testing.T) *httptest.Server {
	t.Helper()
	path := filepath.Join(t.TempDir(), "boards.yaml")
	require.NoError(t, os.WriteFile(path, []byte(testBoards), 0o644))
	ts := httptest.NewServer(NewServer(path, nil))
	t.Cleanup(ts.Close)
	return ts
}

func getJSON(t *testing.T, url string, v any) {
	t.Helper()
	resp, err := http.Get(url)
	require.NoError(t, err)
	defer resp.Body.Close()
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "application/json", resp.Header.Get("Content-Type"))
	require.NoError(t, json.NewDecoder(resp.Body).Decode(v))
}

func TestCardsEndpoint(t *testing.T) {
	ts := newTestServer(t)

	var cards []CardInfo
	getJSON(t, ts.URL+"/api/cards", &cards)
	require.Len(t, cards, 7)

	total := 0
	for _, c := range cards {
		total += c.Count
		assert.Len(t, c.Priorities, c.Count)
	}
	assert.Equal(t, 84, total)

	assert.Equal(t, "MOVE1", cards[0].Type)
	assert.Equal(t, 18, cards[0].Count)
	uturn := cards[6]
	assert.Equal(t, "U_TURN", uturn.Type)
	assert.Equal(t, "uTurn", uturn.Asset)
	assert.Equal(t, []int{10, 20, 30, 40, 50, 60}, uturn.Priorities)
}

func TestBoardsEndpoint(t *testing.T) {
	ts := newTestServer(t)

	var boards []BoardInfo
	getJSON(t, ts.URL+"/api/boards", &boards)
	require.Len(t, boards, 1, "boards that fail to build are skipped")

	b := boards[0]
	assert.Equal(t, 1, b.Number)
	assert.Equal(t, "Checkmate", b.Name)
	assert.Equal(t, 12, b.Width)
	assert.Len(t, b.Tiles, 3)
	assert.Len(t, b.Spawns, 4)
}

func TestBoardsEndpointMissingFile(t *testing.T) {
	ts := httptest.NewServer(NewServer(filepath.Join(t.TempDir(), "nope.yaml"), nil))
	defer ts.Close()

	resp, err := http.Get(ts.URL + "/api/boards")
	require.NoError(t, err)
	resp.Body.Close()
	assert.Equal(t, http.StatusInternalServerError, resp.StatusCode)
}

func TestWebSocketProxy(t *testing.T) {
	ts := newTestServer(t)

	ln, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)
	defer ln.Close()

	joined := make(chan rrnet.ClientMessage, 1)
	answered := make(chan rrnet.ClientMessage, 1)
	go func() {
		conn, err := ln.Accept()
		if err != nil {
			return
		}
		defer conn.Close()
		dec := json.NewDecoder(conn)
		enc := json.NewEncoder(conn)

		var join rrnet.ClientMessage
		if dec.Decode(&join) != nil {
			return
		}
		joined <- join
		_ = enc.Encode(rrnet.ServerMessage{Type: "welcome", Seat: 2})

		var answer rrnet.ClientMessage
		if dec.Decode(&answer) != nil {
			return
		}
		answered <- answer
	}()

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	ws, _, err := websocket.Dial(ctx, "ws"+strings.TrimPrefix(ts.URL, "http")+"/ws", nil)
	require.NoError(t, err)
	defer ws.CloseNow()

	connect, _ := json.Marshal(map[string]string{"type": "connect", "addr": ln.Addr().String(), "name": "Twonky"})
	require.NoError(t, ws.Write(ctx, websocket.MessageText, connect))

	assert.Equal(t, "Twonky", (<-joined).Name)

	_, data, err := ws.Read(ctx)
	require.NoError(t, err)
	var welcome rrnet.ServerMessage
	require.NoError(t, json.Unmarshal(data, &welcome))
	assert.Equal(t, "welcome", welcome.Type)
	assert.Equal(t, 2, welcome.Seat)

	reply, _ := json.Marshal(rrnet.ClientMessage{Type: "power_down", Answer: true})
	require.NoError(t, ws.Write(ctx, websocket.MessageText, reply))
	got := <-answered
	assert.Equal(t, "power_down", got.Type)
	assert.True(t, got.Answer)
}

func TestWebSocketRequiresConnect(t *testing.T) {
	ts := newTestServer(t)
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	ws, _, err := websocket.Dial(ctx, "ws"+strings.TrimPrefix(ts.URL, "http")+"/ws", nil)
	require.NoError(t, err)
	defer ws.CloseNow()

	require.NoError(t, ws.Write(ctx, websocket.MessageText, []byte(`{"type":"hello"}`)))
	_, _, err = ws.Read(ctx)
	assert.Equal(t, websocket.StatusPolicyViolation, websocket.CloseStatus(err))
}
