package generation

import (
	"fmt"

	"foodgame/internal/models"
)

// Fallback values used whenever generation fails. They depend only on their
// inputs so repeated failures yield identical results.

// FallbackProfile fills a profile with a calm, gluten-free regular
func FallbackProfile(id, name string) models.CustomerProfile {
	profile := models.NewCustomerProfile(id, name)
	profile.PersonalityTraits = []models.PersonalityTrait{models.TraitPatient, models.TraitRegular}
	profile.DietaryRestrictions = []models.RestrictionType{models.RestrictionGluten}
	profile.PatienceThreshold = models.DefaultPatienceThreshold
	profile.TipTendency = models.DefaultTipTendency
	return profile
}

// FallbackMenu returns a single safe item for the restriction set
func FallbackMenu(restrictions []models.RestrictionType) []models.MenuItem {
	return []models.MenuItem{
		{
			Name:            "Safe Default Item",
			Description:     "A simple item that meets all dietary restrictions",
			Price:           9.99,
			Restrictions:    normalizeRestrictions(restrictions),
			PreparationTime: 10,
		},
	}
}

// FallbackConsequence returns the stock penalty for a violation
func FallbackConsequence(violation models.Violation) models.Consequence {
	reputation := models.DefaultReputationImpact
	return models.Consequence{
		Type:             DefaultConsequenceType(violation),
		Description:      fmt.Sprintf("Customer is unhappy about the %s violation", violation),
		VisualEffect:     "angry_customer",
		SoundEffect:      "complaint",
		MoneyImpact:      -50,
		ScoreImpact:      -100,
		ReputationImpact: &reputation,
	}
}

// DefaultConsequenceType maps a violation to the consequence it usually causes
func DefaultConsequenceType(violation models.Violation) models.ConsequenceType {
	if violation == models.ViolationWrongItem {
		return models.ConsequenceRefund
	}
	restriction, ok := violation.Restriction()
	if !ok {
		return models.ConsequenceAnger
	}
	switch restriction {
	case models.RestrictionNut:
		return models.ConsequenceSeizure
	case models.RestrictionHalal, models.RestrictionKosher:
		return models.ConsequenceReligiousOffense
	case models.RestrictionLactose:
		return models.ConsequenceFlatulence
	case models.RestrictionGluten:
		return models.ConsequenceToiletExplosion
	case models.RestrictionVegan, models.RestrictionVegetarian:
		return models.ConsequenceAnger
	}
	return models.ConsequenceAnger
}
