package engine

import "foodgame/internal/models"

// Satisfaction bounds
const (
	MinSatisfaction = 0.0
	MaxSatisfaction = 100.0
)

// Outcome flags an evaluated order for the generic satisfaction formula
type Outcome struct {
	Perfect          bool
	HasMistakes      bool
	DietaryViolation bool
}

// Satisfaction is the generic formula: base 70 adjusted for impatience, taste and
// accuracy. A dietary violation always yields 0.
func Satisfaction(customer *models.CustomerProfile, outcome Outcome, waitMinutes int) float64 {
	if outcome.DietaryViolation {
		return MinSatisfaction
	}

	s := 70.0
	if customer.HasTrait(models.TraitImpatient) {
		patience := customer.PatienceThreshold
		if patience < 1 {
			patience = models.DefaultPatienceThreshold
		}
		s -= float64(waitMinutes) / float64(patience) * 10
	}
	if customer.HasTrait(models.TraitFoodie) {
		s += 10
	}
	if outcome.Perfect {
		s += 20
	} else if outcome.HasMistakes {
		s -= 30
	}
	return clampSatisfaction(s)
}

// ServeSatisfaction is the serve-path formula: 80 minus 2 per minute waited
func ServeSatisfaction(customer *models.CustomerProfile, waitMinutes int) float64 {
	wait := float64(waitMinutes)
	s := 80 - 2*wait
	if customer.HasTrait(models.TraitImpatient) {
		s -= 3 * wait
	}
	if customer.HasTrait(models.TraitFoodie) {
		s += 10
	}
	return clampSatisfaction(s)
}

// ViolationSatisfaction drops 20 points from 50 per violation
func ViolationSatisfaction(violations int) float64 {
	return clampSatisfaction(50 - 20*float64(violations))
}

func clampSatisfaction(s float64) float64 {
	return clamp(s, MinSatisfaction, MaxSatisfaction)
}

func clamp(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
