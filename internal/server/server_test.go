package server

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"

	"github.com/natak-game/natak-server-go/internal/config"
	"github.com/natak-game/natak-server-go/internal/game"
	"github.com/natak-game/natak-server-go/internal/store"
)

type testServer struct {
	*httptest.Server
	engine *game.Engine
}

// statusBody is the subset of a status response the tests inspect.
type statusBody struct {
	GameID        string   `json:"game_id"`
	Phase         string   `json:"phase"`
	ValidActions  []string `json:"valid_actions"`
	CurrentPlayer int      `json:"current_player"`
	Players       []struct {
		Color int `json:"color"`
	} `json:"players"`
	Me *struct {
		Hand map[string]int `json:"hand"`
	} `json:"me"`
}

func newTestServer(t *testing.T, tokens *TokenIssuer) *testServer {
	t.Helper()
	logger := zaptest.NewLogger(t)
	engine := game.NewEngine(store.NewMemoryStore(logger), logger)
	srv := NewServer(engine, tokens, config.HTTPConfig{AllowedOrigins: []string{"*"}}, logger)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		srv.Run(ctx)
		close(done)
	}()

	ts := httptest.NewServer(srv.Handler())
	t.Cleanup(func() {
		ts.Close()
		cancel()
		<-done
	})
	return &testServer{Server: ts, engine: engine}
}

func (ts *testServer) do(t *testing.T, method, path, token string, body interface{}) *http.Response {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req, err := http.NewRequest(method, ts.URL+path, &buf)
	require.NoError(t, err)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	resp, err := ts.Client().Do(req)
	require.NoError(t, err)
	t.Cleanup(func() { resp.Body.Close() })
	return resp
}

func decode(t *testing.T, resp *http.Response, v interface{}) {
	t.Helper()
	require.NoError(t, json.NewDecoder(resp.Body).Decode(v))
}

func (ts *testServer) create(t *testing.T, players int) createResponse {
	t.Helper()
	seed := uint64(7)
	resp := ts.do(t, http.MethodPost, apiPrefix, "", createRequest{Players: players, Seed: &seed})
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	var out struct {
		GameID string            `json:"game_id"`
		Tokens map[string]string `json:"tokens"`
	}
	decode(t, resp, &out)
	require.NotEmpty(t, out.GameID)
	return createResponse{GameID: out.GameID, Tokens: out.Tokens}
}

func (ts *testServer) locations(t *testing.T, gameID, colour, kind, token string) []int {
	t.Helper()
	resp := ts.do(t, http.MethodGet, fmt.Sprintf("%s/%s/%s/available-%s-locations", apiPrefix, gameID, colour, kind), token, nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	var out locationsResponse
	decode(t, resp, &out)
	return out.Locations
}

func seatPath(gameID, colour, action string) string {
	return fmt.Sprintf("%s/%s/%s/%s", apiPrefix, gameID, colour, action)
}

func TestHealth(t *testing.T) {
	ts := newTestServer(t, nil)
	resp := ts.do(t, http.MethodGet, "/healthz", "", nil)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
}

func TestCreateGame(t *testing.T) {
	ts := newTestServer(t, nil)
	created := ts.create(t, 3)

	resp := ts.do(t, http.MethodGet, apiPrefix+"/"+created.GameID, "", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	var status statusBody
	decode(t, resp, &status)
	assert.Equal(t, created.GameID, status.GameID)
	assert.Equal(t, "SETUP_SETTLEMENT", status.Phase)
	assert.Len(t, status.Players, 3)
	assert.Nil(t, status.Me, "spectators have no private view")
	assert.Empty(t, created.Tokens, "no tokens without a signing key")
}

func TestCreateGame_InvalidPlayerCount(t *testing.T) {
	ts := newTestServer(t, nil)
	resp := ts.do(t, http.MethodPost, apiPrefix, "", createRequest{Players: 7})
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)

	var body errorResponse
	decode(t, resp, &body)
	assert.Equal(t, "bad_request", body.Code)
}

func TestUnknownGame(t *testing.T) {
	ts := newTestServer(t, nil)
	resp := ts.do(t, http.MethodGet, apiPrefix+"/missing", "", nil)
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)

	resp = ts.do(t, http.MethodPost, seatPath("missing", "red", "roll"), "", nil)
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
}

func TestSetupThroughAPI(t *testing.T) {
	ts := newTestServer(t, nil)
	id := ts.create(t, 2).GameID

	villages := ts.locations(t, id, "red", "village", "")
	require.NotEmpty(t, villages)
	resp := ts.do(t, http.MethodPost, seatPath(id, "red", "build/village"), "", commandRequest{Location: &villages[0]})
	require.Equal(t, http.StatusOK, resp.StatusCode)
	var status statusBody
	decode(t, resp, &status)
	assert.Equal(t, "SETUP_ROAD", status.Phase)
	require.NotNil(t, status.Me)

	roads := ts.locations(t, id, "red", "road", "")
	require.NotEmpty(t, roads)
	resp = ts.do(t, http.MethodPost, seatPath(id, "RED", "build/road"), "", commandRequest{Location: &roads[0]})
	require.Equal(t, http.StatusOK, resp.StatusCode)
	decode(t, resp, &status)
	assert.Equal(t, int(game.ColorBlue), status.CurrentPlayer)
	assert.Equal(t, "SETUP_SETTLEMENT", status.Phase)

	resp = ts.do(t, http.MethodGet, apiPrefix+"/"+id+"/2", "", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	decode(t, resp, &status)
	assert.Contains(t, status.ValidActions, "BUILD_SETTLEMENT")
}

func TestCommandErrors(t *testing.T) {
	ts := newTestServer(t, nil)
	id := ts.create(t, 2).GameID
	loc := 0

	tests := []struct {
		name   string
		path   string
		body   interface{}
		status int
	}{
		{name: "not players turn", path: seatPath(id, "blue", "build/village"), body: commandRequest{Location: &loc}, status: http.StatusConflict},
		{name: "wrong phase", path: seatPath(id, "red", "roll"), status: http.StatusConflict},
		{name: "unknown colour", path: seatPath(id, "purple", "roll"), status: http.StatusBadRequest},
		{name: "seat not in game", path: seatPath(id, "yellow", "build/village"), body: commandRequest{Location: &loc}, status: http.StatusBadRequest},
		{name: "missing location", path: seatPath(id, "red", "build/village"), body: commandRequest{}, status: http.StatusBadRequest},
		{name: "unknown field", path: seatPath(id, "red", "build/village"), body: map[string]int{"where": 3}, status: http.StatusBadRequest},
		{name: "bad resource", path: seatPath(id, "red", "trade/bank"), body: commandRequest{Give: "gold", Get: "ore"}, status: http.StatusBadRequest},
		{name: "bad placement", path: seatPath(id, "red", "build/village"), body: commandRequest{Location: intPtr(-1)}, status: http.StatusUnprocessableEntity},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			resp := ts.do(t, http.MethodPost, tt.path, "", tt.body)
			assert.Equal(t, tt.status, resp.StatusCode)
		})
	}
}

func intPtr(n int) *int { return &n }

func TestSaveWithoutStorage(t *testing.T) {
	ts := newTestServer(t, nil)
	id := ts.create(t, 2).GameID
	resp := ts.do(t, http.MethodPost, apiPrefix+"/"+id+"/save", "", nil)
	assert.Equal(t, http.StatusNotImplemented, resp.StatusCode)
}

func TestCloseGame(t *testing.T) {
	ts := newTestServer(t, NewTokenIssuer("test-key", time.Hour))
	created := ts.create(t, 2)
	id := created.GameID

	resp := ts.do(t, http.MethodDelete, apiPrefix+"/"+id, "", nil)
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)

	resp = ts.do(t, http.MethodDelete, apiPrefix+"/"+id, created.Tokens["BLUE"], nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)

	resp = ts.do(t, http.MethodGet, apiPrefix+"/"+id, "", nil)
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
	resp = ts.do(t, http.MethodDelete, apiPrefix+"/"+id, created.Tokens["RED"], nil)
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
}

func TestSeatTokens(t *testing.T) {
	ts := newTestServer(t, NewTokenIssuer("test-key", time.Hour))
	created := ts.create(t, 2)
	require.Len(t, created.Tokens, 2)
	id := created.GameID
	villages := ts.locations(t, id, "red", "village", created.Tokens["RED"])
	body := commandRequest{Location: &villages[0]}

	resp := ts.do(t, http.MethodPost, seatPath(id, "red", "build/village"), "", body)
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)

	resp = ts.do(t, http.MethodPost, seatPath(id, "red", "build/village"), created.Tokens["BLUE"], body)
	assert.Equal(t, http.StatusForbidden, resp.StatusCode)

	resp = ts.do(t, http.MethodPost, seatPath(id, "red", "build/village"), created.Tokens["RED"], body)
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	// spectating stays open
	resp = ts.do(t, http.MethodGet, apiPrefix+"/"+id, "", nil)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
}

func TestEventFeed(t *testing.T) {
	ts := newTestServer(t, nil)
	id := ts.create(t, 2).GameID

	wsURL := "ws" + strings.TrimPrefix(ts.URL, "http") + apiPrefix + "/" + id + "/events"
	conn, _, err := websocket.DefaultDialer.Dial(wsURL, nil)
	require.NoError(t, err)
	defer conn.Close()

	conn.SetReadDeadline(time.Now().Add(5 * time.Second))
	var greeting watchGreeting
	require.NoError(t, conn.ReadJSON(&greeting))
	assert.Equal(t, greetingType, greeting.Type)
	assert.Equal(t, id, greeting.GameID)

	villages := ts.locations(t, id, "red", "village", "")
	resp := ts.do(t, http.MethodPost, seatPath(id, "red", "build/village"), "", commandRequest{Location: &villages[0]})
	require.Equal(t, http.StatusOK, resp.StatusCode)

	seen := map[string]bool{}
	for !seen["SETTLEMENT_BUILT"] {
		var evt struct {
			Type   string `json:"type"`
			ID     string `json:"id"`
			GameID string `json:"game_id"`
		}
		require.NoError(t, conn.ReadJSON(&evt))
		assert.Equal(t, id, evt.GameID)
		assert.NotEmpty(t, evt.ID)
		seen[evt.Type] = true
	}
}

func TestStats(t *testing.T) {
	ts := newTestServer(t, nil)
	id := ts.create(t, 2).GameID

	resp := ts.do(t, http.MethodGet, apiPrefix+"/"+id+"/stats", "", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	var stats struct {
		GameID string         `json:"game_id"`
		Rolls  map[string]int `json:"rolls"`
	}
	decode(t, resp, &stats)
	assert.Equal(t, id, stats.GameID)
	assert.Empty(t, stats.Rolls)

	resp = ts.do(t, http.MethodGet, apiPrefix+"/missing/stats", "", nil)
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
}

func TestEventFeed_UnknownGame(t *testing.T) {
	ts := newTestServer(t, nil)
	wsURL := "ws" + strings.TrimPrefix(ts.URL, "http") + apiPrefix + "/missing/events"
	_, resp, err := websocket.DefaultDialer.Dial(wsURL, nil)
	require.Error(t, err)
	require.NotNil(t, resp)
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
}

func TestHTTPStatus(t *testing.T) {
	tests := []struct {
		err  error
		want int
	}{
		{game.ErrGameNotFound, http.StatusNotFound},
		{fmt.Errorf("wrapped: %w", game.ErrNotPlayersTurn), http.StatusConflict},
		{game.ErrInvalidAction, http.StatusConflict},
		{game.ErrInsufficientResources, http.StatusUnprocessableEntity},
		{game.ErrTradeEmbargoed, http.StatusUnprocessableEntity},
		{game.ErrInvalidPlayerCount, http.StatusBadRequest},
		{ErrUnauthorized, http.StatusUnauthorized},
		{ErrForbidden, http.StatusForbidden},
		{game.ErrStorageDisabled, http.StatusNotImplemented},
		{context.DeadlineExceeded, http.StatusServiceUnavailable},
		{fmt.Errorf("disk on fire"), http.StatusInternalServerError},
	}
	for _, tt := range tests {
		got, _ := httpStatus(tt.err)
		assert.Equal(t, tt.want, got, tt.err.Error())
	}
}
