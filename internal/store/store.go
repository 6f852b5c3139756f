// Package store holds every running game in memory for the life of the process.
package store

import (
	"fmt"
	"sort"
	"sync"

	"foodgame/internal/models"
)

// DefaultLeaderboardSize is the number of games on the leaderboard
const DefaultLeaderboardSize = 10

// entry guards one game so updates to different games do not contend. Readers
// use the snapshot published after every update, so they never wait on an
// update that is blocked on I/O.
type entry struct {
	mu    sync.Mutex
	state *models.GameState

	snapMu sync.RWMutex
	snap   models.GameState
}

func newEntry(state *models.GameState) *entry {
	e := &entry{state: state}
	e.publish()
	return e
}

// publish copies the live state for readers. Callers hold e.mu.
func (e *entry) publish() {
	snap := e.state.Clone()
	e.snapMu.Lock()
	e.snap = snap
	e.snapMu.Unlock()
}

func (e *entry) snapshot() models.GameState {
	e.snapMu.RLock()
	defer e.snapMu.RUnlock()
	return e.snap.Clone()
}

// GameStore is a thread-safe in-memory game store
type GameStore struct {
	mu    sync.RWMutex
	games map[string]*entry
}

// NewGameStore creates an empty game store
func NewGameStore() *GameStore {
	return &GameStore{games: make(map[string]*entry)}
}

// Create registers a new game under its player id
func (s *GameStore) Create(state *models.GameState) error {
	if state == nil || state.PlayerID == "" {
		return fmt.Errorf("game id is required")
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.games[state.PlayerID]; ok {
		return fmt.Errorf("game %s already exists", state.PlayerID)
	}
	s.games[state.PlayerID] = newEntry(state)
	return nil
}

func (s *GameStore) lookup(id string) (*entry, error) {
	s.mu.RLock()
	e, ok := s.games[id]
	s.mu.RUnlock()
	if !ok {
		return nil, models.ErrGameNotFound
	}
	return e, nil
}

// Update runs fn with exclusive access to the game and publishes the result
// to readers. fn must not keep the pointer after returning.
func (s *GameStore) Update(id string, fn func(*models.GameState) error) error {
	e, err := s.lookup(id)
	if err != nil {
		return err
	}
	e.mu.Lock()
	defer e.mu.Unlock()
	err = fn(e.state)
	e.publish()
	return err
}

// Snapshot returns a deep copy of the game as of its last completed update
func (s *GameStore) Snapshot(id string) (models.GameState, error) {
	e, err := s.lookup(id)
	if err != nil {
		return models.GameState{}, err
	}
	return e.snapshot(), nil
}

// Exists reports whether the game is known
func (s *GameStore) Exists(id string) bool {
	_, err := s.lookup(id)
	return err == nil
}

// Count returns the number of games
func (s *GameStore) Count() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.games)
}

// Leaderboard returns up to n games ordered by score descending, ties broken by
// id. It reads published snapshots and does not wait on in-flight updates.
func (s *GameStore) Leaderboard(n int) []models.GameState {
	if n <= 0 {
		n = DefaultLeaderboardSize
	}

	s.mu.RLock()
	entries := make([]*entry, 0, len(s.games))
	for _, e := range s.games {
		entries = append(entries, e)
	}
	s.mu.RUnlock()

	games := make([]models.GameState, 0, len(entries))
	for _, e := range entries {
		games = append(games, e.snapshot())
	}

	sort.Slice(games, func(i, j int) bool {
		if games[i].Score != games[j].Score {
			return games[i].Score > games[j].Score
		}
		return games[i].PlayerID < games[j].PlayerID
	})
	if len(games) > n {
		games = games[:n]
	}
	return games
}
