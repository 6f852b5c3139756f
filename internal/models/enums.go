package models

import "fmt"

// RestrictionType is a dietary restriction tag
type RestrictionType string

const (
	RestrictionGluten     RestrictionType = "GLUTEN"
	RestrictionLactose    RestrictionType = "LACTOSE"
	RestrictionVegan      RestrictionType = "VEGAN"
	RestrictionVegetarian RestrictionType = "VEGETARIAN"
	RestrictionHalal      RestrictionType = "HALAL"
	RestrictionKosher     RestrictionType = "KOSHER"
	RestrictionNut        RestrictionType = "NUT"
)

// AllRestrictions lists every restriction in declaration order
var AllRestrictions = []RestrictionType{
	RestrictionGluten,
	RestrictionLactose,
	RestrictionVegan,
	RestrictionVegetarian,
	RestrictionHalal,
	RestrictionKosher,
	RestrictionNut,
}

// Valid reports whether r is a known restriction
func (r RestrictionType) Valid() bool {
	switch r {
	case RestrictionGluten, RestrictionLactose, RestrictionVegan, RestrictionVegetarian,
		RestrictionHalal, RestrictionKosher, RestrictionNut:
		return true
	}
	return false
}

// ParseRestriction converts a raw tag into a RestrictionType
func ParseRestriction(s string) (RestrictionType, error) {
	r := RestrictionType(s)
	if !r.Valid() {
		return "", fmt.Errorf("unknown restriction %q", s)
	}
	return r, nil
}

// PersonalityTrait describes how a customer behaves
type PersonalityTrait string

const (
	TraitPatient         PersonalityTrait = "PATIENT"
	TraitImpatient       PersonalityTrait = "IMPATIENT"
	TraitPicky           PersonalityTrait = "PICKY"
	TraitGenerous        PersonalityTrait = "GENEROUS"
	TraitInfluencer      PersonalityTrait = "INFLUENCER"
	TraitKaren           PersonalityTrait = "KAREN"
	TraitRegular         PersonalityTrait = "REGULAR"
	TraitFoodie          PersonalityTrait = "FOODIE"
	TraitHealthConscious PersonalityTrait = "HEALTH_CONSCIOUS"
)

// Valid reports whether t is a known trait
func (t PersonalityTrait) Valid() bool {
	switch t {
	case TraitPatient, TraitImpatient, TraitPicky, TraitGenerous, TraitInfluencer,
		TraitKaren, TraitRegular, TraitFoodie, TraitHealthConscious:
		return true
	}
	return false
}

// ParseTrait converts a raw value into a PersonalityTrait
func ParseTrait(s string) (PersonalityTrait, error) {
	t := PersonalityTrait(s)
	if !t.Valid() {
		return "", fmt.Errorf("unknown personality trait %q", s)
	}
	return t, nil
}

// MoodState is the customer's current emotional state
type MoodState string

const (
	MoodHappy   MoodState = "HAPPY"
	MoodNeutral MoodState = "NEUTRAL"
	MoodAnnoyed MoodState = "ANNOYED"
	MoodAngry   MoodState = "ANGRY"
	MoodHangry  MoodState = "HANGRY"
)

// Valid reports whether m is a known mood
func (m MoodState) Valid() bool {
	switch m {
	case MoodHappy, MoodNeutral, MoodAnnoyed, MoodAngry, MoodHangry:
		return true
	}
	return false
}

// CustomerTier is the loyalty classification of a customer
type CustomerTier string

const (
	TierFirstTime CustomerTier = "FIRST_TIME"
	TierRegular   CustomerTier = "REGULAR"
	TierFrequent  CustomerTier = "FREQUENT"
	TierVIP       CustomerTier = "VIP"
)

// Valid reports whether t is a known tier
func (t CustomerTier) Valid() bool {
	switch t {
	case TierFirstTime, TierRegular, TierFrequent, TierVIP:
		return true
	}
	return false
}

// OrderStatus represents the lifecycle state of an order
type OrderStatus string

const (
	OrderStatusPending OrderStatus = "PENDING"
	OrderStatusServed  OrderStatus = "SERVED"
	OrderStatusFailed  OrderStatus = "FAILED"
)

// Terminal reports whether no further transition is allowed
func (s OrderStatus) Terminal() bool {
	switch s {
	case OrderStatusServed, OrderStatusFailed:
		return true
	case OrderStatusPending:
		return false
	}
	return false
}

// ConsequenceType classifies the narrated penalty of a violation
type ConsequenceType string

const (
	ConsequenceRefund           ConsequenceType = "REFUND"
	ConsequenceToiletExplosion  ConsequenceType = "TOILET_EXPLOSION"
	ConsequenceAnger            ConsequenceType = "ANGER"
	ConsequenceFlatulence       ConsequenceType = "FLATULENCE"
	ConsequenceReligiousOffense ConsequenceType = "RELIGIOUS_OFFENSE"
	ConsequenceSeizure          ConsequenceType = "SEIZURE"
)

// Valid reports whether c is a known consequence type
func (c ConsequenceType) Valid() bool {
	switch c {
	case ConsequenceRefund, ConsequenceToiletExplosion, ConsequenceAnger,
		ConsequenceFlatulence, ConsequenceReligiousOffense, ConsequenceSeizure:
		return true
	}
	return false
}
