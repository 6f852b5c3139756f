// Package engine starts games, generates orders and resolves served orders.
package engine

import (
	"context"
	"errors"
	"fmt"
	"io"
	"math"
	"runtime/debug"
	"time"

	"foodgame/internal/events"
	"foodgame/internal/models"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
)

// DefaultViolationChance is the probability of an injected kitchen error per serve
const DefaultViolationChance = 0.3

// ErrInternal is returned when serving fails unexpectedly. The game is left untouched.
var ErrInternal = errors.New("internal error")

// Review comments for the success path
const (
	excellentReview     = "Excellent service!"
	disappointingReview = "Disappointing experience"
)

// Store is the game state the engine mutates
type Store interface {
	Create(state *models.GameState) error
	Update(id string, fn func(*models.GameState) error) error
	Snapshot(id string) (models.GameState, error)
	Exists(id string) bool
	Count() int
	Leaderboard(n int) []models.GameState
}

// ProfileSource generates a new customer
type ProfileSource interface {
	GenerateProfile(ctx context.Context) models.CustomerProfile
}

// MenuSource returns the menu for a restriction set
type MenuSource interface {
	MenuFor(ctx context.Context, restrictions []models.RestrictionType) []models.MenuItem
}

// ConsequenceSource returns the consequence of a violation
type ConsequenceSource interface {
	ConsequenceFor(ctx context.Context, violation models.Violation) models.Consequence
}

// Dice is the random source for injected violations
type Dice interface {
	Float64() float64
	Intn(n int) int
}

// Publisher receives game events
type Publisher interface {
	Publish(ev events.Event)
}

// Recorder receives game metrics
type Recorder interface {
	RecordGameStarted()
	RecordOrderGenerated()
	RecordOrderResolved(status string, satisfaction float64)
	RecordViolation(violation string)
}

type nopPublisher struct{}

func (nopPublisher) Publish(events.Event) {}

type nopRecorder struct{}

func (nopRecorder) RecordGameStarted()                  {}
func (nopRecorder) RecordOrderGenerated()               {}
func (nopRecorder) RecordOrderResolved(string, float64) {}
func (nopRecorder) RecordViolation(string)              {}

// Reward describes the payout of a successful serve
type Reward struct {
	Money   float64 `json:"money"`
	Tip     float64 `json:"tip"`
	Score   int     `json:"score"`
	Message string  `json:"message"`
}

// ServeResult is the outcome of serving an order
type ServeResult struct {
	Success              bool                `json:"success"`
	Consequence          *models.Consequence `json:"consequence,omitempty"`
	Reward               *Reward             `json:"reward,omitempty"`
	CustomerSatisfaction float64             `json:"customer_satisfaction"`
	CustomerMood         models.MoodState    `json:"customer_mood"`
	GameState            models.GameSummary  `json:"game_state"`
	Order                models.Order        `json:"order"`
}

// OrderResult is a freshly generated order with its menu and customer
type OrderResult struct {
	Order     models.Order           `json:"order"`
	MenuItems []models.MenuItem      `json:"menu_items"`
	Customer  models.CustomerProfile `json:"customer"`
}

// Engine owns the game rules
type Engine struct {
	store        Store
	profiles     ProfileSource
	menus        MenuSource
	consequences ConsequenceSource

	dice            Dice
	clock           func() time.Time
	newID           func() string
	publisher       Publisher
	recorder        Recorder
	log             logrus.FieldLogger
	violationChance float64
	startingMoney   float64
	startingRep     float64
	leaderboardSize int
}

// Option configures an Engine
type Option func(*Engine)

// WithDice sets the random source for injected violations
func WithDice(d Dice) Option {
	return func(e *Engine) { e.dice = d }
}

// WithClock sets the time source
func WithClock(clock func() time.Time) Option {
	return func(e *Engine) { e.clock = clock }
}

// WithIDGenerator sets the generator for game and order ids
func WithIDGenerator(newID func() string) Option {
	return func(e *Engine) { e.newID = newID }
}

// WithPublisher sets the event publisher
func WithPublisher(p Publisher) Option {
	return func(e *Engine) { e.publisher = p }
}

// WithRecorder sets the metrics recorder
func WithRecorder(r Recorder) Option {
	return func(e *Engine) { e.recorder = r }
}

// WithLogger sets the logger
func WithLogger(l logrus.FieldLogger) Option {
	return func(e *Engine) { e.log = l }
}

// WithViolationChance sets the probability of an injected violation
func WithViolationChance(p float64) Option {
	return func(e *Engine) { e.violationChance = p }
}

// WithStartingBalances sets the money and reputation of new games
func WithStartingBalances(money, reputation float64) Option {
	return func(e *Engine) {
		e.startingMoney = money
		e.startingRep = reputation
	}
}

// WithLeaderboardSize sets the default number of leaderboard entries
func WithLeaderboardSize(n int) Option {
	return func(e *Engine) { e.leaderboardSize = n }
}

// New creates an engine. Without WithDice no violation is ever injected.
func New(store Store, profiles ProfileSource, menus MenuSource, consequences ConsequenceSource, opts ...Option) *Engine {
	discard := logrus.New()
	discard.SetOutput(io.Discard)

	e := &Engine{
		store:           store,
		profiles:        profiles,
		menus:           menus,
		consequences:    consequences,
		clock:           time.Now,
		newID:           uuid.NewString,
		publisher:       nopPublisher{},
		recorder:        nopRecorder{},
		log:             discard,
		violationChance: DefaultViolationChance,
		startingMoney:   models.StartingMoney,
		startingRep:     models.StartingReputation,
		leaderboardSize: 10,
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

func (e *Engine) now() time.Time {
	return e.clock().UTC()
}

// StartGame creates a new game and returns its id
func (e *Engine) StartGame() (string, error) {
	id := e.newID()
	if err := e.store.Create(models.NewGameState(id, e.startingMoney, e.startingRep)); err != nil {
		return "", fmt.Errorf("failed to create game: %w", err)
	}
	e.recorder.RecordGameStarted()
	e.log.WithField("game_id", id).Info("game started")
	return id, nil
}

// State returns a snapshot of the game
func (e *Engine) State(gameID string) (models.GameState, error) {
	return e.store.Snapshot(gameID)
}

// GameCount returns the number of games started
func (e *Engine) GameCount() int {
	return e.store.Count()
}

// Leaderboard returns the top n games by score. n <= 0 uses the default size.
func (e *Engine) Leaderboard(n int) []models.GameState {
	if n <= 0 {
		n = e.leaderboardSize
	}
	return e.store.Leaderboard(n)
}

// GenerateOrder creates a customer, fetches their menu and opens a pending order
func (e *Engine) GenerateOrder(ctx context.Context, gameID string) (*OrderResult, error) {
	if !e.store.Exists(gameID) {
		return nil, models.ErrGameNotFound
	}

	customer := e.profiles.GenerateProfile(ctx)
	menu := e.menus.MenuFor(ctx, customer.DietaryRestrictions)

	now := models.NewTimestamp(e.now())
	customer.VisitHistory = append(customer.VisitHistory, now)
	lastVisit := now
	customer.LastVisit = &lastVisit

	items := make([]string, len(menu))
	for i, item := range menu {
		items[i] = item.Name
	}
	total := models.MenuTotal(menu)
	if len(menu) == 0 || math.IsNaN(total) || math.IsInf(total, 0) || total < 0 {
		e.log.WithFields(logrus.Fields{
			"game_id":     gameID,
			"customer_id": customer.ID,
			"items":       len(menu),
		}).Error("menu has no items or an invalid total")
		return nil, fmt.Errorf("%w: invalid menu total", ErrInternal)
	}

	order := models.Order{
		ID:              e.newID(),
		CustomerID:      customer.ID,
		CustomerProfile: customer.Clone(),
		Restrictions:    append([]models.RestrictionType{}, customer.DietaryRestrictions...),
		ItemsOrdered:    items,
		Status:          models.OrderStatusPending,
		CreatedAt:       now,
		TotalPrice:      total,
	}

	err := e.store.Update(gameID, func(g *models.GameState) error {
		g.Customers[customer.ID] = customer.Clone()
		g.ActiveOrders = append(g.ActiveOrders, order.Clone())
		return nil
	})
	if err != nil {
		return nil, err
	}

	e.recorder.RecordOrderGenerated()
	e.publish(events.OrderCreated, gameID, order.ID, order)
	e.log.WithFields(logrus.Fields{
		"game_id":     gameID,
		"order_id":    order.ID,
		"customer_id": customer.ID,
		"items":       len(items),
	}).Info("order generated")

	return &OrderResult{Order: order, MenuItems: menu, Customer: customer}, nil
}

// ServeOrder resolves an active order with the items actually delivered. The
// game is locked for the whole resolution and changes are committed only once
// every value has been computed.
func (e *Engine) ServeOrder(ctx context.Context, gameID, orderID string, itemsServed []string) (result *ServeResult, err error) {
	log := e.log.WithFields(logrus.Fields{"game_id": gameID, "order_id": orderID})

	defer func() {
		if r := recover(); r != nil {
			log.WithField("panic", r).Errorf("serve order panicked\n%s", debug.Stack())
			result, err = nil, ErrInternal
		}
	}()

	err = e.store.Update(gameID, func(g *models.GameState) error {
		var rerr error
		result, rerr = e.resolve(ctx, g, orderID, itemsServed)
		return rerr
	})
	if err != nil {
		if !errors.Is(err, models.ErrNotFound) {
			log.WithError(err).Error("serve order failed")
			return nil, fmt.Errorf("%w: %v", ErrInternal, err)
		}
		return nil, err
	}

	if result.Success {
		e.recorder.RecordOrderResolved(string(models.OrderStatusServed), result.CustomerSatisfaction)
		e.publish(events.OrderServed, gameID, orderID, result)
	} else {
		e.recorder.RecordOrderResolved(string(models.OrderStatusFailed), result.CustomerSatisfaction)
		e.publish(events.OrderFailed, gameID, orderID, result)
	}
	log.WithFields(logrus.Fields{
		"success":      result.Success,
		"satisfaction": result.CustomerSatisfaction,
	}).Info("order served")
	return result, nil
}

func (e *Engine) resolve(ctx context.Context, g *models.GameState, orderID string, itemsServed []string) (*ServeResult, error) {
	idx := g.FindActiveOrder(orderID)
	if idx < 0 {
		return nil, models.ErrOrderNotFound
	}
	order := g.ActiveOrders[idx].Clone()

	now := e.now()
	order.WaitTime = order.WaitMinutes(now)

	stored, ok := g.Customers[order.CustomerID]
	if !ok {
		return nil, models.ErrCustomerNotFound
	}
	customer := stored.Clone()

	violations := e.detectViolations(&order, itemsServed)
	if len(violations) > 0 {
		return e.fail(ctx, g, order, customer, violations, now)
	}
	return e.succeed(g, order, customer, itemsServed, now)
}

// detectViolations lists wrong and missing items, then an injected restriction breach
func (e *Engine) detectViolations(order *models.Order, itemsServed []string) []models.Violation {
	var violations []models.Violation

	served := make(map[string]bool, len(itemsServed))
	for _, item := range itemsServed {
		served[item] = true
		if !order.Includes(item) {
			violations = append(violations, models.ViolationWrongItem)
		}
	}
	for _, item := range order.ItemsOrdered {
		if !served[item] {
			violations = append(violations, models.ViolationWrongItem)
		}
	}

	if e.dice != nil && e.dice.Float64() < e.violationChance && len(order.Restrictions) > 0 {
		r := order.Restrictions[e.dice.Intn(len(order.Restrictions))]
		violations = append(violations, models.RestrictionViolation(r))
	}
	return violations
}

func (e *Engine) fail(ctx context.Context, g *models.GameState, order models.Order, customer models.CustomerProfile, violations []models.Violation, now time.Time) (*ServeResult, error) {
	violation := violations[0]
	consequence := e.consequences.ConsequenceFor(ctx, violation)
	stamp := models.NewTimestamp(now)

	satisfaction := ViolationSatisfaction(len(violations))
	customer.SatisfactionHistory = append(customer.SatisfactionHistory, satisfaction)
	if satisfaction < 30 {
		customer.ReviewsGiven = append(customer.ReviewsGiven, models.CustomerReview{
			Rating:           reviewRating(satisfaction),
			Comment:          consequence.Description,
			Timestamp:        stamp,
			OrderID:          order.ID,
			IncidentReported: true,
		})
	}

	score := g.Score + consequence.ScoreImpact
	if score < 0 {
		score = 0
	}
	money := math.Max(0, g.Money+consequence.MoneyImpact)
	reputation := clamp(g.Reputation+consequence.ReputationDelta(), 0, 100)
	mistake := models.MistakeRecord{
		OrderID:     order.ID,
		Violation:   violation,
		Consequence: consequence.Description,
		Timestamp:   stamp,
	}
	if err := order.Transition(models.OrderStatusFailed); err != nil {
		return nil, err
	}

	g.Score = score
	g.Money = money
	g.Reputation = reputation
	g.Mistakes = append(g.Mistakes, mistake)
	g.Customers[customer.ID] = customer
	g.RemoveActiveOrder(order.ID)

	for _, v := range violations {
		e.recorder.RecordViolation(string(v))
	}

	return &ServeResult{
		Success:              false,
		Consequence:          &consequence,
		CustomerSatisfaction: satisfaction,
		CustomerMood:         customer.CurrentMood,
		GameState:            g.Summary(),
		Order:                order,
	}, nil
}

func (e *Engine) succeed(g *models.GameState, order models.Order, customer models.CustomerProfile, itemsServed []string, now time.Time) (*ServeResult, error) {
	satisfaction := ServeSatisfaction(&customer, order.WaitTime)
	tip := order.TotalPrice * customer.TipTendency * (satisfaction / 100)
	earned := order.TotalPrice + tip
	stamp := models.NewTimestamp(now)

	customer.SatisfactionHistory = append(customer.SatisfactionHistory, satisfaction)
	customer.TotalSpent += earned
	if visits := len(customer.VisitHistory); visits > 0 {
		customer.AverageSpending = customer.TotalSpent / float64(visits)
	}
	if satisfaction > 80 {
		for _, item := range itemsServed {
			if !customer.HasFavorite(item) {
				customer.FavoriteItems = append(customer.FavoriteItems, item)
			}
		}
	}
	if satisfaction > 90 || satisfaction < 30 {
		comment := excellentReview
		if satisfaction < 30 {
			comment = disappointingReview
		}
		customer.ReviewsGiven = append(customer.ReviewsGiven, models.CustomerReview{
			Rating:           reviewRating(satisfaction),
			Comment:          comment,
			Timestamp:        stamp,
			OrderID:          order.ID,
			IncidentReported: satisfaction < 30,
		})
	}

	points := 100 + int(math.Floor(satisfaction/2))
	reputation := math.Min(100, g.Reputation+(satisfaction-50)/20)
	day := now.Format("2006-01-02")
	daily := g.DailyCustomersServed
	if g.ServiceDay != day {
		daily = 0
	}
	if err := order.Transition(models.OrderStatusServed); err != nil {
		return nil, err
	}

	g.Score += points
	g.Money += earned
	g.CompletedOrders++
	g.Reputation = reputation
	g.ServiceDay = day
	g.DailyCustomersServed = daily + 1
	g.TotalCustomersServed++
	g.Customers[customer.ID] = customer
	g.RemoveActiveOrder(order.ID)

	return &ServeResult{
		Success: true,
		Reward: &Reward{
			Money:   earned,
			Tip:     tip,
			Score:   points,
			Message: fmt.Sprintf("Order served successfully! Customer satisfaction: %.0f%%", satisfaction),
		},
		CustomerSatisfaction: satisfaction,
		CustomerMood:         customer.CurrentMood,
		GameState:            g.Summary(),
		Order:                order,
	}, nil
}

func (e *Engine) publish(eventType, gameID, orderID string, payload interface{}) {
	e.publisher.Publish(events.NewEvent(eventType, gameID, orderID, payload, e.now()))
}

func reviewRating(satisfaction float64) int {
	rating := int(satisfaction / 20)
	if rating < 1 {
		return 1
	}
	return rating
}
