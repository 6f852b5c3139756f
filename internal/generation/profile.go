package generation

import (
	"context"
	"fmt"
	"sort"
	"time"

	"foodgame/internal/models"

	"github.com/google/uuid"
	"github.com/hashicorp/go-multierror"
	"github.com/sirupsen/logrus"
	"github.com/tidwall/gjson"
)

const profileSystemPrompt = "You are creating customer profiles for a restaurant game. You only respond with valid JSON."

const profilePrompt = `Generate a unique restaurant customer profile with:
1. Two personality traits chosen from: PATIENT, IMPATIENT, PICKY, GENEROUS, INFLUENCER, KAREN, REGULAR, FOODIE, HEALTH_CONSCIOUS
2. 1-2 dietary restrictions chosen from: GLUTEN, LACTOSE, VEGAN, VEGETARIAN, HALAL, KOSHER, NUT
3. A patience level (whole number 1-10)
4. A tip tendency (0-0.5)

Return ONLY a valid JSON object in this exact format:
{
    "personality_traits": ["TRAIT", "TRAIT"],
    "dietary_restrictions": ["RESTRICTION"],
    "patience_level": 5,
    "tip_tendency": 0.15
}`

// ProfileGenerator creates a fresh customer for every order
type ProfileGenerator struct {
	client *client
	names  NameSource
	newID  func() string
}

// NewProfileGenerator creates a profile generator. Profiles are never cached.
func NewProfileGenerator(opts Options, names NameSource) *ProfileGenerator {
	opts = opts.withDefaults()
	return &ProfileGenerator{
		client: newClient(opts),
		names:  names,
		newID:  uuid.NewString,
	}
}

// GenerateProfile returns a new customer, falling back on any generation failure
func (g *ProfileGenerator) GenerateProfile(ctx context.Context) models.CustomerProfile {
	start := time.Now()
	id, name := g.newID(), g.names.Name()

	profile, err := g.generate(ctx, id, name)
	if err != nil {
		g.client.log.WithFields(logrus.Fields{
			"kind":        "profile",
			"customer_id": id,
		}).WithError(err).Warn("profile generation failed, using fallback")
		g.client.recorder.RecordGeneration("profile", true, time.Since(start))
		return FallbackProfile(id, name)
	}

	g.client.recorder.RecordGeneration("profile", false, time.Since(start))
	return profile
}

func (g *ProfileGenerator) generate(ctx context.Context, id, name string) (models.CustomerProfile, error) {
	doc, err := g.client.complete(ctx, profileSystemPrompt, profilePrompt)
	if err != nil {
		return models.CustomerProfile{}, err
	}

	profile := models.NewCustomerProfile(id, name)
	if err := parseProfile(doc, &profile); err != nil {
		return models.CustomerProfile{}, err
	}
	if err := profile.Validate(); err != nil {
		return models.CustomerProfile{}, err
	}
	return profile, nil
}

func parseProfile(doc gjson.Result, profile *models.CustomerProfile) error {
	var errs *multierror.Error

	traits := doc.Get("personality_traits")
	if !traits.IsArray() || len(traits.Array()) == 0 {
		errs = multierror.Append(errs, fmt.Errorf("personality_traits must be a non-empty array"))
	} else {
		seen := make(map[models.PersonalityTrait]bool)
		for _, t := range traits.Array() {
			if t.Type != gjson.String {
				errs = multierror.Append(errs, fmt.Errorf("personality_traits must contain strings"))
				continue
			}
			trait, err := models.ParseTrait(enumTag(t.String()))
			if err != nil {
				errs = multierror.Append(errs, err)
				continue
			}
			if !seen[trait] {
				seen[trait] = true
				profile.PersonalityTraits = append(profile.PersonalityTraits, trait)
			}
		}
	}

	restrictions := doc.Get("dietary_restrictions")
	if !restrictions.IsArray() {
		errs = multierror.Append(errs, fmt.Errorf("dietary_restrictions must be an array"))
	} else {
		var parsed []models.RestrictionType
		for _, r := range restrictions.Array() {
			if r.Type != gjson.String {
				errs = multierror.Append(errs, fmt.Errorf("dietary_restrictions must contain strings"))
				continue
			}
			restriction, err := models.ParseRestriction(enumTag(r.String()))
			if err != nil {
				errs = multierror.Append(errs, err)
				continue
			}
			parsed = append(parsed, restriction)
		}
		profile.DietaryRestrictions = normalizeRestrictions(parsed)
	}

	patience, err := intField(doc, "patience_level")
	if err != nil {
		errs = multierror.Append(errs, err)
	} else if patience < 1 || patience > 10 {
		errs = multierror.Append(errs, fmt.Errorf("patience_level %d out of range [1,10]", patience))
	} else {
		profile.PatienceThreshold = patience
	}

	tip, err := numberField(doc, "tip_tendency")
	if err != nil {
		errs = multierror.Append(errs, err)
	} else if tip < 0 || tip > 0.5 {
		errs = multierror.Append(errs, fmt.Errorf("tip_tendency %.3f out of range [0,0.5]", tip))
	} else {
		profile.TipTendency = tip
	}

	return errs.ErrorOrNil()
}

// normalizeRestrictions dedupes and sorts a restriction set
func normalizeRestrictions(restrictions []models.RestrictionType) []models.RestrictionType {
	seen := make(map[models.RestrictionType]bool, len(restrictions))
	out := make([]models.RestrictionType, 0, len(restrictions))
	for _, r := range restrictions {
		if !seen[r] {
			seen[r] = true
			out = append(out, r)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	return out
}
