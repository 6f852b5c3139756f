package client

import (
	"context"
	"errors"
	"math/rand"
	"net/http"
	"net/http/httptest"
	"testing"

	"foodgame/internal/api"
	"foodgame/internal/engine"
	"foodgame/internal/generation"
	"foodgame/internal/models"
	"foodgame/internal/store"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus/hooks/test"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newServer(t *testing.T) *httptest.Server {
	t.Helper()
	gin.SetMode(gin.TestMode)

	logger, _ := test.NewNullLogger()
	genOpts := generation.Options{Logger: logger}
	menus, err := generation.NewMenuGenerator(genOpts)
	require.NoError(t, err)
	consequences, err := generation.NewConsequenceGenerator(genOpts)
	require.NoError(t, err)
	profiles := generation.NewProfileGenerator(genOpts, generation.NewFakerNames(rand.NewSource(1)))

	eng := engine.New(store.NewGameStore(), profiles, menus, consequences, engine.WithLogger(logger))
	server := httptest.NewServer(api.NewGameAPI(eng, api.Options{Logger: logger}).Router)
	t.Cleanup(server.Close)
	return server
}

func TestClientPlaysARound(t *testing.T) {
	server := newServer(t)
	c := New(server.URL)
	ctx := context.Background()

	gameID, err := c.StartGame(ctx)
	require.NoError(t, err)
	require.NotEmpty(t, gameID)

	games, err := c.Health(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, games)

	order, err := c.GenerateOrder(ctx, gameID)
	require.NoError(t, err)
	assert.Equal(t, []string{"Safe Default Item"}, order.Order.ItemsOrdered)
	assert.Equal(t, models.OrderStatusPending, order.Order.Status)

	result, err := c.ServeOrder(ctx, gameID, order.Order.ID, order.Order.ItemsOrdered)
	require.NoError(t, err)
	assert.True(t, result.Success)
	require.NotNil(t, result.Reward)
	assert.Equal(t, 1, result.GameState.CompletedOrders)

	state, err := c.State(ctx, gameID)
	require.NoError(t, err)
	assert.Equal(t, gameID, state.PlayerID)
	assert.Empty(t, state.ActiveOrders)

	board, err := c.Leaderboard(ctx)
	require.NoError(t, err)
	require.Len(t, board, 1)
	assert.Equal(t, gameID, board[0].PlayerID)
}

func TestClientNotFound(t *testing.T) {
	server := newServer(t)
	c := New(server.URL)

	_, err := c.State(context.Background(), "missing")
	require.Error(t, err)
	assert.True(t, errors.Is(err, models.ErrNotFound))
	assert.Equal(t, "game not found", err.Error())
}

func TestClientServerError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusInternalServerError)
		w.Write([]byte(`{"error":"internal server error"}`))
	}))
	defer server.Close()

	_, err := New(server.URL).StartGame(context.Background())

	var apiErr *APIError
	require.True(t, errors.As(err, &apiErr))
	assert.Equal(t, http.StatusInternalServerError, apiErr.Status)
	assert.Equal(t, "internal server error", apiErr.Message)
	assert.False(t, errors.Is(err, models.ErrNotFound))
}

func TestNewBaseURL(t *testing.T) {
	t.Setenv("FOODGAME_API_URL", "http://example.test:9000/")
	assert.Equal(t, "http://example.test:9000", New("").BaseURL)
	assert.Equal(t, "http://other", New("http://other").BaseURL)

	t.Setenv("FOODGAME_API_URL", "")
	assert.Equal(t, DefaultBaseURL, New("").BaseURL)
}
