package main

import (
	"bytes"
	"math/rand"
	"net/http/httptest"
	"strings"
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

func newGameServer(t *testing.T) *httptest.Server {
	t.Helper()
	gin.SetMode(gin.TestMode)

	logger, _ := test.NewNullLogger()
	genOpts := generation.Options{Logger: logger}
	menus, err := generation.NewMenuGenerator(genOpts)
	require.NoError(t, err)
	consequences, err := generation.NewConsequenceGenerator(genOpts)
	require.NoError(t, err)
	profiles := generation.NewProfileGenerator(genOpts, generation.NewFakerNames(rand.NewSource(3)))

	eng := engine.New(store.NewGameStore(), profiles, menus, consequences, engine.WithLogger(logger))
	server := httptest.NewServer(api.NewGameAPI(eng, api.Options{Logger: logger}).Router)
	t.Cleanup(server.Close)
	return server
}

func runPlay(t *testing.T, args ...string) string {
	t.Helper()
	t.Cleanup(func() {
		mistake = false
		jsonOut = false
	})

	var out bytes.Buffer
	rootCmd.SetOut(&out)
	rootCmd.SetArgs(append([]string{"play"}, args...))
	require.NoError(t, rootCmd.Execute())
	return out.String()
}

func TestPlayServesEveryRound(t *testing.T) {
	server := newGameServer(t)

	out := runPlay(t, "--server", server.URL, "--rounds", "2")

	assert.Equal(t, 2, strings.Count(out, "SERVED"))
	assert.NotContains(t, out, "FAILED")
	assert.Contains(t, out, "Order served successfully!")
	assert.Contains(t, out, "final score")
}

func TestPlayWithMistakes(t *testing.T) {
	server := newGameServer(t)

	out := runPlay(t, "--server", server.URL, "--rounds", "1", "--mistake")

	assert.Contains(t, out, "FAILED")
	assert.Contains(t, out, "Customer is unhappy about the WRONG_ITEM violation")
	assert.Contains(t, out, "final score 0, money 950.00")
}

func TestPlayJSONOutput(t *testing.T) {
	server := newGameServer(t)

	out := runPlay(t, "--server", server.URL, "--rounds", "1", "--json")

	assert.Contains(t, out, `"success": true`)
	assert.Contains(t, out, `"status": "SERVED"`)
}

func TestRenderOutcome(t *testing.T) {
	served := renderOutcome("Ada", &engine.ServeResult{
		Success: true,
		Reward:  &engine.Reward{Money: 11.5, Message: "Order served successfully! Customer satisfaction: 80%"},
	})
	assert.Contains(t, served, "Ada: Order served successfully! Customer satisfaction: 80% (+11.50)")

	failed := renderOutcome("Ada", &engine.ServeResult{
		Consequence:          &models.Consequence{Description: "Customer is furious"},
		CustomerSatisfaction: 30,
	})
	assert.Contains(t, failed, "Ada: Customer is furious (satisfaction 30%)")
}
