package models

import "fmt"

// Customer profile defaults
const (
	DefaultPatienceThreshold = 5
	DefaultTipTendency       = 0.15
	DefaultInfluenceScore    = 1
	DefaultReturnProbability = 0.5
)

// CustomerReview is a review left after an order
type CustomerReview struct {
	Rating           int       `json:"rating"`
	Comment          string    `json:"comment"`
	Timestamp        Timestamp `json:"timestamp"`
	OrderID          string    `json:"order_id"`
	IncidentReported bool      `json:"incident_reported"`
}

// CustomerProfile describes a generated customer and their history
type CustomerProfile struct {
	ID                  string             `json:"id"`
	Name                string             `json:"name"`
	PersonalityTraits   []PersonalityTrait `json:"personality_traits"`
	CurrentMood         MoodState          `json:"current_mood"`
	DietaryRestrictions []RestrictionType  `json:"dietary_restrictions"`
	VisitHistory        []Timestamp        `json:"visit_history"`
	FavoriteItems       []string           `json:"favorite_items"`
	DislikedItems       []string           `json:"disliked_items"`
	AverageSpending     float64            `json:"average_spending"`
	TotalSpent          float64            `json:"total_spent"`
	ReviewsGiven        []CustomerReview   `json:"reviews_given"`
	CurrentTier         CustomerTier       `json:"current_tier"`
	PatienceThreshold   int                `json:"patience_threshold"`
	TipTendency         float64            `json:"tip_tendency"`
	InfluenceScore      int                `json:"influence_score"`
	LastVisit           *Timestamp         `json:"last_visit"`
	ReturnProbability   float64            `json:"return_probability"`
	SatisfactionHistory []float64          `json:"satisfaction_history"`
}

// NewCustomerProfile returns a profile with default history and ranges
func NewCustomerProfile(id, name string) CustomerProfile {
	return CustomerProfile{
		ID:                  id,
		Name:                name,
		PersonalityTraits:   []PersonalityTrait{},
		CurrentMood:         MoodNeutral,
		DietaryRestrictions: []RestrictionType{},
		VisitHistory:        []Timestamp{},
		FavoriteItems:       []string{},
		DislikedItems:       []string{},
		ReviewsGiven:        []CustomerReview{},
		CurrentTier:         TierFirstTime,
		PatienceThreshold:   DefaultPatienceThreshold,
		TipTendency:         DefaultTipTendency,
		InfluenceScore:      DefaultInfluenceScore,
		ReturnProbability:   DefaultReturnProbability,
		SatisfactionHistory: []float64{},
	}
}

// HasTrait checks if the customer has a specific personality trait
func (c *CustomerProfile) HasTrait(trait PersonalityTrait) bool {
	for _, t := range c.PersonalityTraits {
		if t == trait {
			return true
		}
	}
	return false
}

// HasFavorite checks if an item is already a favorite
func (c *CustomerProfile) HasFavorite(item string) bool {
	for _, f := range c.FavoriteItems {
		if f == item {
			return true
		}
	}
	return false
}

// Validate checks the declared ranges of a profile
func (c *CustomerProfile) Validate() error {
	if c.ID == "" {
		return fmt.Errorf("customer id is required")
	}
	if c.Name == "" {
		return fmt.Errorf("customer name is required")
	}
	if c.PatienceThreshold < 1 || c.PatienceThreshold > 10 {
		return fmt.Errorf("patience threshold %d out of range [1,10]", c.PatienceThreshold)
	}
	if c.TipTendency < 0 || c.TipTendency > 0.5 {
		return fmt.Errorf("tip tendency %.2f out of range [0,0.5]", c.TipTendency)
	}
	if c.InfluenceScore < 1 || c.InfluenceScore > 100 {
		return fmt.Errorf("influence score %d out of range [1,100]", c.InfluenceScore)
	}
	for _, t := range c.PersonalityTraits {
		if !t.Valid() {
			return fmt.Errorf("unknown personality trait %q", t)
		}
	}
	for _, r := range c.DietaryRestrictions {
		if !r.Valid() {
			return fmt.Errorf("unknown restriction %q", r)
		}
	}
	return nil
}

// Clone returns a deep copy of the profile
func (c CustomerProfile) Clone() CustomerProfile {
	out := c
	out.PersonalityTraits = append([]PersonalityTrait{}, c.PersonalityTraits...)
	out.DietaryRestrictions = append([]RestrictionType{}, c.DietaryRestrictions...)
	out.VisitHistory = append([]Timestamp{}, c.VisitHistory...)
	out.FavoriteItems = append([]string{}, c.FavoriteItems...)
	out.DislikedItems = append([]string{}, c.DislikedItems...)
	out.ReviewsGiven = append([]CustomerReview{}, c.ReviewsGiven...)
	out.SatisfactionHistory = append([]float64{}, c.SatisfactionHistory...)
	if c.LastVisit != nil {
		lv := *c.LastVisit
		out.LastVisit = &lv
	}
	return out
}
