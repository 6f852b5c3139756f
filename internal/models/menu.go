package models

import (
	"fmt"
	"math"
	"strings"
)

// Upper bounds for generated menu items
const (
	MaxMenuItemPrice      = 10000.0
	MaxPreparationMinutes = 24 * 60
)

// MenuItem represents a dish generated for a restriction set
type MenuItem struct {
	Name            string            `json:"name"`
	Description     string            `json:"description"`
	Price           float64           `json:"price"`
	Restrictions    []RestrictionType `json:"restrictions"`
	PreparationTime int               `json:"preparation_time"`
}

// ValidateMenuItem validates a menu item
func ValidateMenuItem(item *MenuItem) error {
	if strings.TrimSpace(item.Name) == "" {
		return fmt.Errorf("menu item name is required")
	}
	if math.IsNaN(item.Price) || item.Price < 0 || item.Price > MaxMenuItemPrice {
		return fmt.Errorf("menu item price %.2f out of range [0,%.0f]", item.Price, MaxMenuItemPrice)
	}
	if item.PreparationTime < 0 || item.PreparationTime > MaxPreparationMinutes {
		return fmt.Errorf("menu item preparation time %d out of range [0,%d]", item.PreparationTime, MaxPreparationMinutes)
	}
	for _, r := range item.Restrictions {
		if !r.Valid() {
			return fmt.Errorf("menu item has unknown restriction %q", r)
		}
	}
	return nil
}

// CloneMenu copies a menu so callers cannot alias cached items
func CloneMenu(items []MenuItem) []MenuItem {
	out := make([]MenuItem, len(items))
	for i, item := range items {
		out[i] = item
		out[i].Restrictions = append([]RestrictionType(nil), item.Restrictions...)
	}
	return out
}

// MenuTotal sums the item prices
func MenuTotal(items []MenuItem) float64 {
	var total float64
	for _, item := range items {
		total += item.Price
	}
	return total
}
