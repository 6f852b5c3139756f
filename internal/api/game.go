package api

import (
	"context"
	"errors"
	"io"
	"net/http"
	"time"

	"foodgame/internal/engine"
	"foodgame/internal/events"
	"foodgame/internal/models"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
)

// Game is the engine surface exposed over HTTP
type Game interface {
	StartGame() (string, error)
	GenerateOrder(ctx context.Context, gameID string) (*engine.OrderResult, error)
	ServeOrder(ctx context.Context, gameID, orderID string, itemsServed []string) (*engine.ServeResult, error)
	State(gameID string) (models.GameState, error)
	Leaderboard(n int) []models.GameState
	GameCount() int
}

// HTTPRecorder receives request metrics
type HTTPRecorder interface {
	RecordHTTPRequest(method, path string, status int, duration time.Duration)
}

// Options configures the API
type Options struct {
	Logger            logrus.FieldLogger
	Metrics           HTTPRecorder
	Hub               *events.Hub
	AllowedOrigins    []string
	RequestsPerSecond float64
	Burst             int
}

// GameAPI serves the restaurant game over HTTP
type GameAPI struct {
	Router  *gin.Engine
	game    Game
	hub     *events.Hub
	log     logrus.FieldLogger
	limiter *RateLimiter
}

// serveOrderRequest is the body of a serve-order call
type serveOrderRequest struct {
	ItemsServed []string `json:"items_served" binding:"required"`
}

// NewGameAPI creates a new game API instance
func NewGameAPI(game Game, opts Options) *GameAPI {
	if opts.Logger == nil {
		l := logrus.New()
		l.SetOutput(io.Discard)
		opts.Logger = l
	}

	router := gin.New()
	router.Use(requestLogger(opts.Logger, opts.Metrics))
	router.Use(gin.CustomRecovery(recoverInternal(opts.Logger)))
	router.Use(cors.New(corsConfig(opts.AllowedOrigins)))

	api := &GameAPI{
		Router:  router,
		game:    game,
		hub:     opts.Hub,
		log:     opts.Logger,
		limiter: NewRateLimiter(opts.RequestsPerSecond, opts.Burst, opts.Logger),
	}

	api.setupRoutes()
	return api
}

// setupRoutes configures all API endpoints
func (a *GameAPI) setupRoutes() {
	a.Router.GET("/health", a.Health)

	game := a.Router.Group("/game")
	{
		game.POST("/start", a.StartGame)
		game.GET("/leaderboard", a.Leaderboard)
		game.POST("/:game_id/generate-order", a.limiter.Middleware(), a.GenerateOrder)
		game.POST("/:game_id/serve-order/:order_id", a.ServeOrder)
		game.GET("/:game_id/state", a.State)
		if a.hub != nil {
			game.GET("/:game_id/events", a.Events)
		}
	}
}

func corsConfig(origins []string) cors.Config {
	cfg := cors.DefaultConfig()
	if len(origins) == 0 || (len(origins) == 1 && origins[0] == "*") {
		cfg.AllowAllOrigins = true
	} else {
		cfg.AllowOrigins = origins
	}
	cfg.AllowCredentials = !cfg.AllowAllOrigins
	return cfg
}

// Health reports liveness and the number of games
func (a *GameAPI) Health(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok", "games": a.game.GameCount()})
}

// StartGame creates a new game
func (a *GameAPI) StartGame(c *gin.Context) {
	id, err := a.game.StartGame()
	if err != nil {
		a.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"game_id": id})
}

// GenerateOrder creates a customer and order for a game
func (a *GameAPI) GenerateOrder(c *gin.Context) {
	result, err := a.game.GenerateOrder(c.Request.Context(), c.Param("game_id"))
	if err != nil {
		a.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, result)
}

// ServeOrder resolves an order with the items delivered
func (a *GameAPI) ServeOrder(c *gin.Context) {
	var req serveOrderRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	result, err := a.game.ServeOrder(c.Request.Context(), c.Param("game_id"), c.Param("order_id"), req.ItemsServed)
	if err != nil {
		a.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, result)
}

// State returns the full state of a game
func (a *GameAPI) State(c *gin.Context) {
	state, err := a.game.State(c.Param("game_id"))
	if err != nil {
		a.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, state)
}

// Leaderboard returns the best games by score
func (a *GameAPI) Leaderboard(c *gin.Context) {
	c.JSON(http.StatusOK, a.game.Leaderboard(0))
}

// respondError maps missing resources to 404 and hides everything else behind a 500
func (a *GameAPI) respondError(c *gin.Context, err error) {
	var notFound *models.NotFoundError
	if errors.As(err, &notFound) {
		c.JSON(http.StatusNotFound, gin.H{"error": notFound.Error()})
		return
	}
	a.log.WithFields(logrus.Fields{
		"method":   c.Request.Method,
		"path":     c.Request.URL.Path,
		"game_id":  c.Param("game_id"),
		"order_id": c.Param("order_id"),
	}).WithError(err).Error("request failed")
	c.JSON(http.StatusInternalServerError, gin.H{"error": "internal server error"})
}
