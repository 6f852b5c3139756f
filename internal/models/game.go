package models

// Game defaults for a fresh session
const (
	StartingMoney      = 1000.0
	StartingReputation = 50.0
)

// MistakeRecord logs a failed order
type MistakeRecord struct {
	OrderID     string    `json:"order_id"`
	Violation   Violation `json:"violation"`
	Consequence string    `json:"consequence"`
	Timestamp   Timestamp `json:"timestamp"`
}

// GameState is the full state of one player's game
type GameState struct {
	PlayerID             string                     `json:"player_id"`
	Score                int                        `json:"score"`
	ActiveOrders         []Order                    `json:"active_orders"`
	CompletedOrders      int                        `json:"completed_orders"`
	Mistakes             []MistakeRecord            `json:"mistakes"`
	Money                float64                    `json:"money"`
	Reputation           float64                    `json:"reputation"`
	Customers            map[string]CustomerProfile `json:"customers"`
	DailyCustomersServed int                        `json:"daily_customers_served"`
	TotalCustomersServed int                        `json:"total_customers_served"`
	ServiceDay           string                     `json:"service_day,omitempty"`
}

// GameSummary is the compact state returned with every serve outcome
type GameSummary struct {
	Score           int     `json:"score"`
	Money           float64 `json:"money"`
	Reputation      float64 `json:"reputation"`
	Mistakes        int     `json:"mistakes"`
	CompletedOrders int     `json:"completed_orders"`
	ActiveOrders    int     `json:"active_orders"`
}

// NewGameState creates an empty game with the given balances
func NewGameState(playerID string, money, reputation float64) *GameState {
	return &GameState{
		PlayerID:     playerID,
		ActiveOrders: []Order{},
		Mistakes:     []MistakeRecord{},
		Money:        money,
		Reputation:   reputation,
		Customers:    make(map[string]CustomerProfile),
	}
}

// FindActiveOrder returns the index of an active order or -1
func (g *GameState) FindActiveOrder(orderID string) int {
	for i := range g.ActiveOrders {
		if g.ActiveOrders[i].ID == orderID {
			return i
		}
	}
	return -1
}

// RemoveActiveOrder drops an order from the active set
func (g *GameState) RemoveActiveOrder(orderID string) bool {
	idx := g.FindActiveOrder(orderID)
	if idx < 0 {
		return false
	}
	orders := make([]Order, 0, len(g.ActiveOrders)-1)
	orders = append(orders, g.ActiveOrders[:idx]...)
	orders = append(orders, g.ActiveOrders[idx+1:]...)
	g.ActiveOrders = orders
	return true
}

// Summary returns the compact counters of the game
func (g *GameState) Summary() GameSummary {
	return GameSummary{
		Score:           g.Score,
		Money:           g.Money,
		Reputation:      g.Reputation,
		Mistakes:        len(g.Mistakes),
		CompletedOrders: g.CompletedOrders,
		ActiveOrders:    len(g.ActiveOrders),
	}
}

// Clone returns a deep copy safe to hand outside the store
func (g *GameState) Clone() GameState {
	out := *g
	out.ActiveOrders = make([]Order, len(g.ActiveOrders))
	for i, o := range g.ActiveOrders {
		out.ActiveOrders[i] = o.Clone()
	}
	out.Mistakes = append([]MistakeRecord{}, g.Mistakes...)
	out.Customers = make(map[string]CustomerProfile, len(g.Customers))
	for id, c := range g.Customers {
		out.Customers[id] = c.Clone()
	}
	return out
}
