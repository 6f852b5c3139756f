package models

import (
	"encoding/json"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseRestriction(t *testing.T) {
	for _, r := range AllRestrictions {
		parsed, err := ParseRestriction(string(r))
		require.NoError(t, err)
		assert.Equal(t, r, parsed)
	}

	_, err := ParseRestriction("gluten")
	assert.Error(t, err)
	_, err = ParseTrait("GRUMPY")
	assert.Error(t, err)
}

func TestViolation(t *testing.T) {
	tests := []struct {
		name        string
		input       string
		valid       bool
		restriction RestrictionType
	}{
		{"wrong item", "WRONG_ITEM", true, ""},
		{"restriction", "NUT", true, RestrictionNut},
		{"unknown", "SPICY", false, ""},
		{"empty", "", false, ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			v, err := ParseViolation(tt.input)
			if !tt.valid {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			r, ok := v.Restriction()
			assert.Equal(t, tt.restriction != "", ok)
			if ok {
				assert.Equal(t, tt.restriction, r)
			}
		})
	}

	assert.Equal(t, Violation("HALAL"), RestrictionViolation(RestrictionHalal))
}

func TestMistakeRecordDecodesViolation(t *testing.T) {
	var record MistakeRecord
	require.NoError(t, json.Unmarshal([]byte(`{"order_id":"o1","violation":"NUT","consequence":"rash","timestamp":"2024-03-09T17:05:07.000000Z"}`), &record))
	assert.Equal(t, RestrictionViolation(RestrictionNut), record.Violation)

	err := json.Unmarshal([]byte(`{"order_id":"o1","violation":"SPICY"}`), &record)
	assert.ErrorContains(t, err, `unknown violation "SPICY"`)

	assert.Error(t, json.Unmarshal([]byte(`{"violation":3}`), &record))
}

func TestRestrictionKey(t *testing.T) {
	a := RestrictionKey([]RestrictionType{RestrictionVegan, RestrictionGluten})
	b := RestrictionKey([]RestrictionType{RestrictionGluten, RestrictionVegan})

	assert.Equal(t, "GLUTEN,VEGAN", a)
	assert.Equal(t, a, b)
	assert.Equal(t, "", RestrictionKey(nil))
}

func TestTimestampJSON(t *testing.T) {
	ts := NewTimestamp(time.Date(2024, 3, 9, 18, 5, 7, 123456789, time.FixedZone("X", 3600)))

	data, err := json.Marshal(ts)
	require.NoError(t, err)
	assert.Equal(t, `"2024-03-09T17:05:07.123456Z"`, string(data))

	var back Timestamp
	require.NoError(t, json.Unmarshal(data, &back))
	assert.True(t, ts.Equal(back.Time))

	require.NoError(t, json.Unmarshal([]byte(`"2024-03-09T17:05:07Z"`), &back))
	assert.Equal(t, "2024-03-09T17:05:07.000000Z", back.String())

	assert.Error(t, json.Unmarshal([]byte(`12`), &back))
	assert.Error(t, json.Unmarshal([]byte(`"yesterday"`), &back))
}

func TestOrderTransition(t *testing.T) {
	order := Order{ID: "o1", Status: OrderStatusPending}

	assert.Error(t, order.Transition(OrderStatusPending))
	require.NoError(t, order.Transition(OrderStatusServed))
	assert.Equal(t, OrderStatusServed, order.Status)
	assert.Error(t, order.Transition(OrderStatusFailed))
}

func TestOrderWaitMinutes(t *testing.T) {
	created := time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC)
	order := Order{CreatedAt: NewTimestamp(created)}

	assert.Equal(t, 0, order.WaitMinutes(created.Add(59*time.Second)))
	assert.Equal(t, 12, order.WaitMinutes(created.Add(12*time.Minute+30*time.Second)))
	assert.Equal(t, 0, order.WaitMinutes(created.Add(-time.Minute)))
}

func TestGameStateCloneIsDeep(t *testing.T) {
	game := NewGameState("g1", StartingMoney, StartingReputation)
	customer := NewCustomerProfile("c1", "Ada Lovelace")
	customer.FavoriteItems = append(customer.FavoriteItems, "Soup")
	game.Customers["c1"] = customer
	game.ActiveOrders = append(game.ActiveOrders, Order{ID: "o1", ItemsOrdered: []string{"Soup"}, CustomerProfile: customer})

	clone := game.Clone()
	clone.ActiveOrders[0].ItemsOrdered[0] = "Salad"
	c := clone.Customers["c1"]
	c.FavoriteItems[0] = "Salad"
	clone.Money = 0

	assert.Equal(t, "Soup", game.ActiveOrders[0].ItemsOrdered[0])
	assert.Equal(t, "Soup", game.Customers["c1"].FavoriteItems[0])
	assert.Equal(t, StartingMoney, game.Money)
}

func TestRemoveActiveOrder(t *testing.T) {
	game := NewGameState("g1", 0, 0)
	game.ActiveOrders = []Order{{ID: "a"}, {ID: "b"}, {ID: "c"}}

	assert.True(t, game.RemoveActiveOrder("b"))
	assert.False(t, game.RemoveActiveOrder("b"))
	assert.Equal(t, 1, game.FindActiveOrder("c"))
	assert.Equal(t, 2, game.Summary().ActiveOrders)
}

func TestCustomerProfileValidate(t *testing.T) {
	valid := NewCustomerProfile("c1", "Grace Hopper")
	require.NoError(t, valid.Validate())

	tests := []struct {
		name   string
		mutate func(*CustomerProfile)
	}{
		{"missing name", func(c *CustomerProfile) { c.Name = "" }},
		{"patience too low", func(c *CustomerProfile) { c.PatienceThreshold = 0 }},
		{"patience too high", func(c *CustomerProfile) { c.PatienceThreshold = 11 }},
		{"tip too high", func(c *CustomerProfile) { c.TipTendency = 0.6 }},
		{"unknown trait", func(c *CustomerProfile) { c.PersonalityTraits = []PersonalityTrait{"GRUMPY"} }},
		{"unknown restriction", func(c *CustomerProfile) { c.DietaryRestrictions = []RestrictionType{"SPICY"} }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			profile := valid.Clone()
			tt.mutate(&profile)
			assert.Error(t, profile.Validate())
		})
	}
}

func TestNotFoundErrors(t *testing.T) {
	err := fmt.Errorf("serve: %w", ErrOrderNotFound)

	assert.True(t, errors.Is(err, ErrNotFound))
	assert.True(t, errors.Is(err, ErrOrderNotFound))
	assert.False(t, errors.Is(err, ErrGameNotFound))
	assert.Equal(t, "customer not found", ErrCustomerNotFound.Error())
}

func TestMenuHelpers(t *testing.T) {
	menu := []MenuItem{
		{Name: "Tofu Bowl", Price: 10, Restrictions: []RestrictionType{RestrictionVegan}},
		{Name: "Fruit Cup", Price: 5.5},
	}

	assert.Equal(t, 15.5, MenuTotal(menu))

	copied := CloneMenu(menu)
	copied[0].Restrictions[0] = RestrictionNut
	assert.Equal(t, RestrictionVegan, menu[0].Restrictions[0])

	assert.Error(t, ValidateMenuItem(&MenuItem{Name: " "}))
	assert.Error(t, ValidateMenuItem(&MenuItem{Name: "Soup", Price: -1}))
	assert.Error(t, ValidateMenuItem(&MenuItem{Name: "Soup", Price: 1e308}))
	assert.Error(t, ValidateMenuItem(&MenuItem{Name: "Soup", Price: MaxMenuItemPrice + 0.01}))
	assert.Error(t, ValidateMenuItem(&MenuItem{Name: "Soup", PreparationTime: MaxPreparationMinutes + 1}))
	assert.NoError(t, ValidateMenuItem(&MenuItem{Name: "Soup", Price: MaxMenuItemPrice}))
	assert.NoError(t, ValidateMenuItem(&menu[0]))
}
