package models

import (
	"fmt"
	"time"
)

// Order represents a customer order in a game
type Order struct {
	ID              string            `json:"id"`
	CustomerID      string            `json:"customer_id"`
	CustomerProfile CustomerProfile   `json:"customer_profile"`
	Restrictions    []RestrictionType `json:"restrictions"`
	ItemsOrdered    []string          `json:"items_ordered"`
	Status          OrderStatus       `json:"status"`
	CreatedAt       Timestamp         `json:"created_at"`
	WaitTime        int               `json:"wait_time"`
	TotalPrice      float64           `json:"total_price"`
}

// Includes checks if an item name was part of the order
func (o *Order) Includes(item string) bool {
	for _, name := range o.ItemsOrdered {
		if name == item {
			return true
		}
	}
	return false
}

// WaitMinutes returns the whole minutes elapsed since the order was created
func (o *Order) WaitMinutes(now time.Time) int {
	elapsed := now.Sub(o.CreatedAt.Time)
	if elapsed < 0 {
		return 0
	}
	return int(elapsed / time.Minute)
}

// Transition moves a pending order into a terminal status
func (o *Order) Transition(to OrderStatus) error {
	if o.Status.Terminal() {
		return fmt.Errorf("order %s already %s", o.ID, o.Status)
	}
	if !to.Terminal() {
		return fmt.Errorf("order %s cannot move to %s", o.ID, to)
	}
	o.Status = to
	return nil
}

// Clone returns a deep copy of the order
func (o Order) Clone() Order {
	out := o
	out.CustomerProfile = o.CustomerProfile.Clone()
	out.Restrictions = append([]RestrictionType{}, o.Restrictions...)
	out.ItemsOrdered = append([]string{}, o.ItemsOrdered...)
	return out
}
