package api

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"math/rand"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"foodgame/internal/engine"
	"foodgame/internal/events"
	"foodgame/internal/generation"
	"foodgame/internal/metrics"
	"foodgame/internal/models"
	"foodgame/internal/store"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/sirupsen/logrus/hooks/test"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type testServer struct {
	api     *GameAPI
	hub     *events.Hub
	metrics *metrics.MetricsCollector
}

func newTestServer(t *testing.T, opts Options) *testServer {
	t.Helper()
	gin.SetMode(gin.TestMode)

	logger, _ := test.NewNullLogger()
	collector := metrics.NewMetricsCollector()
	hub := events.NewHub(logger)

	genOpts := generation.Options{Logger: logger, Recorder: collector}
	menus, err := generation.NewMenuGenerator(genOpts)
	require.NoError(t, err)
	consequences, err := generation.NewConsequenceGenerator(genOpts)
	require.NoError(t, err)
	profiles := generation.NewProfileGenerator(genOpts, generation.NewFakerNames(rand.NewSource(7)))

	eng := engine.New(store.NewGameStore(), profiles, menus, consequences,
		engine.WithLogger(logger),
		engine.WithPublisher(hub),
		engine.WithRecorder(collector),
	)

	opts.Logger = logger
	opts.Metrics = collector
	opts.Hub = hub
	return &testServer{api: NewGameAPI(eng, opts), hub: hub, metrics: collector}
}

func (s *testServer) do(t *testing.T, method, path string, body interface{}) *httptest.ResponseRecorder {
	t.Helper()
	var reader *bytes.Reader
	if body != nil {
		data, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(data)
	} else {
		reader = bytes.NewReader(nil)
	}
	req, err := http.NewRequest(method, path, reader)
	require.NoError(t, err)
	req.Header.Set("Content-Type", "application/json")

	w := httptest.NewRecorder()
	s.api.Router.ServeHTTP(w, req)
	return w
}

func (s *testServer) startGame(t *testing.T) string {
	t.Helper()
	w := s.do(t, "POST", "/game/start", nil)
	require.Equal(t, http.StatusOK, w.Code)

	var response map[string]string
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &response))
	require.NotEmpty(t, response["game_id"])
	return response["game_id"]
}

func (s *testServer) generateOrder(t *testing.T, gameID string) engine.OrderResult {
	t.Helper()
	w := s.do(t, "POST", "/game/"+gameID+"/generate-order", nil)
	require.Equal(t, http.StatusOK, w.Code)

	var result engine.OrderResult
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &result))
	return result
}

func TestHealth(t *testing.T) {
	s := newTestServer(t, Options{})
	s.startGame(t)

	w := s.do(t, "GET", "/health", nil)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"status":"ok","games":1}`, w.Body.String())
}

func TestStartGameAndState(t *testing.T) {
	s := newTestServer(t, Options{})
	gameID := s.startGame(t)

	w := s.do(t, "GET", "/game/"+gameID+"/state", nil)
	require.Equal(t, http.StatusOK, w.Code)

	var state models.GameState
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &state))
	assert.Equal(t, gameID, state.PlayerID)
	assert.Equal(t, 1000.0, state.Money)
	assert.Equal(t, 50.0, state.Reputation)
	assert.Empty(t, state.ActiveOrders)
}

func TestGenerateOrderUsesFallbacks(t *testing.T) {
	s := newTestServer(t, Options{})
	gameID := s.startGame(t)

	result := s.generateOrder(t, gameID)
	assert.Equal(t, models.OrderStatusPending, result.Order.Status)
	assert.Equal(t, []string{"Safe Default Item"}, result.Order.ItemsOrdered)
	assert.Equal(t, 9.99, result.Order.TotalPrice)
	assert.Equal(t, result.Customer.ID, result.Order.CustomerID)
	require.Len(t, result.MenuItems, 1)

	w := s.do(t, "GET", "/game/"+gameID+"/state", nil)
	var raw map[string]interface{}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &raw))
	orders := raw["active_orders"].([]interface{})
	require.Len(t, orders, 1)
	createdAt := orders[0].(map[string]interface{})["created_at"].(string)
	_, err := time.Parse(models.TimestampLayout, createdAt)
	assert.NoError(t, err)
}

func TestServeOrderSuccess(t *testing.T) {
	s := newTestServer(t, Options{})
	gameID := s.startGame(t)
	order := s.generateOrder(t, gameID).Order

	w := s.do(t, "POST", "/game/"+gameID+"/serve-order/"+order.ID, gin.H{"items_served": order.ItemsOrdered})
	require.Equal(t, http.StatusOK, w.Code)

	var result engine.ServeResult
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &result))
	assert.True(t, result.Success)
	require.NotNil(t, result.Reward)
	assert.Equal(t, 1, result.GameState.CompletedOrders)
	assert.Equal(t, 0, result.GameState.ActiveOrders)
	assert.Equal(t, models.OrderStatusServed, result.Order.Status)

	// the same order cannot be served twice
	w = s.do(t, "POST", "/game/"+gameID+"/serve-order/"+order.ID, gin.H{"items_served": order.ItemsOrdered})
	assert.Equal(t, http.StatusNotFound, w.Code)
	assert.JSONEq(t, `{"error":"order not found"}`, w.Body.String())
}

func TestServeOrderWrongItem(t *testing.T) {
	s := newTestServer(t, Options{})
	gameID := s.startGame(t)
	order := s.generateOrder(t, gameID).Order

	w := s.do(t, "POST", "/game/"+gameID+"/serve-order/"+order.ID, gin.H{"items_served": []string{"Burger"}})
	require.Equal(t, http.StatusOK, w.Code)

	var result engine.ServeResult
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &result))
	assert.False(t, result.Success)
	require.NotNil(t, result.Consequence)
	assert.Equal(t, "Customer is unhappy about the WRONG_ITEM violation", result.Consequence.Description)
	assert.Equal(t, 1, result.GameState.Mistakes)
	assert.Equal(t, 950.0, result.GameState.Money)
}

func TestServeOrderBadRequest(t *testing.T) {
	s := newTestServer(t, Options{})
	gameID := s.startGame(t)

	w := s.do(t, "POST", "/game/"+gameID+"/serve-order/any", gin.H{"items": []string{"x"}})
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestNotFound(t *testing.T) {
	s := newTestServer(t, Options{})

	for _, tc := range []struct {
		method string
		path   string
		body   interface{}
	}{
		{"GET", "/game/missing/state", nil},
		{"POST", "/game/missing/generate-order", nil},
		{"POST", "/game/missing/serve-order/o1", gin.H{"items_served": []string{}}},
		{"GET", "/game/missing/events", nil},
	} {
		w := s.do(t, tc.method, tc.path, tc.body)
		assert.Equal(t, http.StatusNotFound, w.Code, tc.path)
		assert.JSONEq(t, `{"error":"game not found"}`, w.Body.String(), tc.path)
	}
}

func TestLeaderboard(t *testing.T) {
	s := newTestServer(t, Options{})
	for i := 0; i < 12; i++ {
		s.startGame(t)
	}

	w := s.do(t, "GET", "/game/leaderboard", nil)
	require.Equal(t, http.StatusOK, w.Code)

	var board []models.GameState
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &board))
	assert.Len(t, board, 10)
}

func TestRateLimitOnGenerateOrder(t *testing.T) {
	s := newTestServer(t, Options{RequestsPerSecond: 0.001, Burst: 2})
	gameID := s.startGame(t)

	assert.Equal(t, http.StatusOK, s.do(t, "POST", "/game/"+gameID+"/generate-order", nil).Code)
	assert.Equal(t, http.StatusOK, s.do(t, "POST", "/game/"+gameID+"/generate-order", nil).Code)

	w := s.do(t, "POST", "/game/"+gameID+"/generate-order", nil)
	assert.Equal(t, http.StatusTooManyRequests, w.Code)

	// other routes are not limited
	assert.Equal(t, http.StatusOK, s.do(t, "GET", "/game/"+gameID+"/state", nil).Code)
}

func TestHTTPMetricsRecorded(t *testing.T) {
	s := newTestServer(t, Options{})
	s.do(t, "GET", "/health", nil)
	s.do(t, "GET", "/health", nil)

	count, err := testutil.GatherAndCount(s.metrics.Registry(), "foodgame_http_requests_total")
	require.NoError(t, err)
	assert.Equal(t, 1, count)
}

// stubGame fails in ways the real engine should not
type stubGame struct {
	err     error
	explode bool
}

func (g stubGame) StartGame() (string, error) {
	if g.explode {
		panic("start exploded")
	}
	return "", g.err
}

func (g stubGame) GenerateOrder(context.Context, string) (*engine.OrderResult, error) {
	return nil, g.err
}

func (g stubGame) ServeOrder(context.Context, string, string, []string) (*engine.ServeResult, error) {
	return nil, g.err
}

func (g stubGame) State(string) (models.GameState, error) { return models.GameState{}, g.err }
func (g stubGame) Leaderboard(int) []models.GameState     { return nil }
func (g stubGame) GameCount() int                         { return 0 }

func TestInternalErrorsAreHidden(t *testing.T) {
	gin.SetMode(gin.TestMode)
	logger, hook := test.NewNullLogger()
	api := NewGameAPI(stubGame{err: errors.Join(engine.ErrInternal, errors.New("secret detail"))}, Options{Logger: logger})

	w := httptest.NewRecorder()
	req, _ := http.NewRequest("POST", "/game/g1/serve-order/o1", strings.NewReader(`{"items_served":["a"]}`))
	api.Router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusInternalServerError, w.Code)
	assert.JSONEq(t, `{"error":"internal server error"}`, w.Body.String())
	assert.NotEmpty(t, hook.AllEntries())
}

func TestHandlerPanicIsRecovered(t *testing.T) {
	gin.SetMode(gin.TestMode)
	logger, _ := test.NewNullLogger()
	api := NewGameAPI(stubGame{explode: true}, Options{Logger: logger})

	w := httptest.NewRecorder()
	req, _ := http.NewRequest("POST", "/game/start", nil)
	api.Router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusInternalServerError, w.Code)
	assert.JSONEq(t, `{"error":"internal server error"}`, w.Body.String())
}

func TestEventsWebSocket(t *testing.T) {
	s := newTestServer(t, Options{})
	gameID := s.startGame(t)

	server := httptest.NewServer(s.api.Router)
	defer server.Close()

	url := "ws" + strings.TrimPrefix(server.URL, "http") + "/game/" + gameID + "/events"
	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	require.NoError(t, err)
	defer conn.Close()

	require.Eventually(t, func() bool { return s.hub.Subscribers(gameID) == 1 }, time.Second, 10*time.Millisecond)

	order := s.generateOrder(t, gameID).Order

	require.NoError(t, conn.SetReadDeadline(time.Now().Add(2*time.Second)))
	var ev events.Event
	require.NoError(t, conn.ReadJSON(&ev))
	assert.Equal(t, events.OrderCreated, ev.Type)
	assert.Equal(t, gameID, ev.GameID)
	assert.Equal(t, order.ID, ev.OrderID)
}
