// Package client talks to a running game server over HTTP.
package client

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"os"
	"strings"
	"time"

	"foodgame/internal/engine"
	"foodgame/internal/models"
)

// DefaultBaseURL is used when FOODGAME_API_URL is unset
const DefaultBaseURL = "http://localhost:8000"

// APIError is a non-2xx response that is not a missing resource
type APIError struct {
	Status  int
	Message string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("server returned %d: %s", e.Status, e.Message)
}

// Client handles requests to the game API
type Client struct {
	httpClient *http.Client
	BaseURL    string
}

// New creates a client. An empty baseURL falls back to FOODGAME_API_URL, then DefaultBaseURL.
func New(baseURL string) *Client {
	if baseURL == "" {
		baseURL = os.Getenv("FOODGAME_API_URL")
	}
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}

	return &Client{
		httpClient: &http.Client{
			Timeout: 30 * time.Second,
		},
		BaseURL: strings.TrimRight(baseURL, "/"),
	}
}

// Health checks if the API is up and returns the number of games
func (c *Client) Health(ctx context.Context) (int, error) {
	var resp struct {
		Status string `json:"status"`
		Games  int    `json:"games"`
	}
	if err := c.do(ctx, http.MethodGet, "/health", nil, &resp); err != nil {
		return 0, err
	}
	return resp.Games, nil
}

// StartGame creates a game and returns its id
func (c *Client) StartGame(ctx context.Context) (string, error) {
	var resp struct {
		GameID string `json:"game_id"`
	}
	if err := c.do(ctx, http.MethodPost, "/game/start", nil, &resp); err != nil {
		return "", err
	}
	return resp.GameID, nil
}

// GenerateOrder asks the server for a new customer and order
func (c *Client) GenerateOrder(ctx context.Context, gameID string) (*engine.OrderResult, error) {
	var result engine.OrderResult
	if err := c.do(ctx, http.MethodPost, "/game/"+gameID+"/generate-order", nil, &result); err != nil {
		return nil, err
	}
	return &result, nil
}

// ServeOrder delivers items for an order
func (c *Client) ServeOrder(ctx context.Context, gameID, orderID string, items []string) (*engine.ServeResult, error) {
	body := map[string][]string{"items_served": items}
	if items == nil {
		body["items_served"] = []string{}
	}

	var result engine.ServeResult
	if err := c.do(ctx, http.MethodPost, "/game/"+gameID+"/serve-order/"+orderID, body, &result); err != nil {
		return nil, err
	}
	return &result, nil
}

// State fetches the full state of a game
func (c *Client) State(ctx context.Context, gameID string) (*models.GameState, error) {
	var state models.GameState
	if err := c.do(ctx, http.MethodGet, "/game/"+gameID+"/state", nil, &state); err != nil {
		return nil, err
	}
	return &state, nil
}

// Leaderboard fetches the best games by score
func (c *Client) Leaderboard(ctx context.Context) ([]models.GameState, error) {
	var board []models.GameState
	if err := c.do(ctx, http.MethodGet, "/game/leaderboard", nil, &board); err != nil {
		return nil, err
	}
	return board, nil
}

func (c *Client) do(ctx context.Context, method, path string, body, out interface{}) error {
	var reader io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("encode request: %w", err)
		}
		reader = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.BaseURL+path, reader)
	if err != nil {
		return fmt.Errorf("build request: %w", err)
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("%s %s: %w", method, path, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return decodeError(resp)
	}

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("decode response: %w", err)
	}
	return nil
}

// decodeError turns a 404 back into a NotFoundError so callers can match models.ErrNotFound
func decodeError(resp *http.Response) error {
	var payload struct {
		Error string `json:"error"`
	}
	_ = json.NewDecoder(resp.Body).Decode(&payload)

	if resp.StatusCode == http.StatusNotFound && strings.HasSuffix(payload.Error, " not found") {
		return &models.NotFoundError{Resource: strings.TrimSuffix(payload.Error, " not found")}
	}
	return &APIError{Status: resp.StatusCode, Message: payload.Error}
}
