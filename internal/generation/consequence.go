package generation

import (
	"context"
	"fmt"
	"math"
	"time"

	"foodgame/internal/models"

	lru "github.com/hashicorp/golang-lru/v2"
	"github.com/hashicorp/go-multierror"
	"github.com/sirupsen/logrus"
	"github.com/tidwall/gjson"
	"golang.org/x/sync/singleflight"
)

const consequenceSystemPrompt = "You are a creative game designer specializing in humorous consequences. You only respond with valid JSON."

const consequencePromptTemplate = `Generate a creative and humorous consequence for %s.
Include:
1. A funny description of what happens
2. A visual effect for the game
3. A sound effect suggestion
4. A monetary penalty
5. A score impact
6. A consequence type chosen from: REFUND, TOILET_EXPLOSION, ANGER, FLATULENCE, RELIGIOUS_OFFENSE, SEIZURE

Return ONLY a valid JSON object in this exact format:
{
    "consequence": {
        "type": "ANGER",
        "description": "funny description here",
        "visual_effect": "effect name",
        "sound_effect": "sound name",
        "money_impact": -50,
        "score_impact": -100,
        "reputation_impact": -5
    }
}`

// ConsequenceGenerator narrates violations, cached by violation
type ConsequenceGenerator struct {
	client *client
	cache  *lru.Cache[models.Violation, models.Consequence]
	group  singleflight.Group
}

// NewConsequenceGenerator creates a consequence generator with a bounded cache
func NewConsequenceGenerator(opts Options) (*ConsequenceGenerator, error) {
	opts = opts.withDefaults()
	cache, err := lru.New[models.Violation, models.Consequence](opts.CacheSize)
	if err != nil {
		return nil, fmt.Errorf("failed to create consequence cache: %w", err)
	}
	return &ConsequenceGenerator{client: newClient(opts), cache: cache}, nil
}

// ConsequenceFor returns the consequence of violation
func (g *ConsequenceGenerator) ConsequenceFor(ctx context.Context, violation models.Violation) models.Consequence {
	if c, ok := g.cache.Get(violation); ok {
		g.client.recorder.RecordCacheLookup("consequence", true)
		return c.Clone()
	}
	g.client.recorder.RecordCacheLookup("consequence", false)

	v, _, _ := g.group.Do(string(violation), func() (interface{}, error) {
		if c, ok := g.cache.Get(violation); ok {
			return c, nil
		}
		start := time.Now()
		c, err := g.generate(context.WithoutCancel(ctx), violation)
		if err != nil {
			g.client.log.WithFields(logrus.Fields{
				"kind":      "consequence",
				"violation": violation,
			}).WithError(err).Warn("consequence generation failed, using fallback")
			g.client.recorder.RecordGeneration("consequence", true, time.Since(start))
			return FallbackConsequence(violation), nil
		}
		g.client.recorder.RecordGeneration("consequence", false, time.Since(start))
		g.cache.Add(violation, c)
		return c, nil
	})

	return v.(models.Consequence).Clone()
}

// Len returns the number of cached consequences
func (g *ConsequenceGenerator) Len() int {
	return g.cache.Len()
}

func (g *ConsequenceGenerator) generate(ctx context.Context, violation models.Violation) (models.Consequence, error) {
	subject := fmt.Sprintf("serving food that violates a %s dietary restriction", violation)
	if violation == models.ViolationWrongItem {
		subject = "serving a customer a dish they never ordered"
	}

	doc, err := g.client.complete(ctx, consequenceSystemPrompt, fmt.Sprintf(consequencePromptTemplate, subject))
	if err != nil {
		return models.Consequence{}, err
	}
	return parseConsequence(doc.Get("consequence"), violation)
}

func parseConsequence(raw gjson.Result, violation models.Violation) (models.Consequence, error) {
	if !raw.IsObject() {
		return models.Consequence{}, fmt.Errorf("consequence must be an object")
	}

	var errs *multierror.Error
	description, err := stringField(raw, "description")
	errs = appendErr(errs, err)
	visual, err := stringField(raw, "visual_effect")
	errs = appendErr(errs, err)
	sound, err := stringField(raw, "sound_effect")
	errs = appendErr(errs, err)
	money, err := numberField(raw, "money_impact")
	errs = appendErr(errs, err)
	score, err := intField(raw, "score_impact")
	errs = appendErr(errs, err)

	c := models.Consequence{
		Type:         DefaultConsequenceType(violation),
		Description:  description,
		VisualEffect: visual,
		SoundEffect:  sound,
		MoneyImpact:  money,
		ScoreImpact:  score,
	}

	// reputation_impact is optional; the engine applies the default when absent
	if rep := raw.Get("reputation_impact"); rep.Exists() && rep.Type != gjson.Null {
		v, err := numberField(raw, "reputation_impact")
		if err != nil {
			errs = multierror.Append(errs, err)
		} else {
			c.ReputationImpact = &v
		}
	}

	if t := raw.Get("type"); t.Exists() && t.Type == gjson.String {
		ct := models.ConsequenceType(enumTag(t.String()))
		if ct.Valid() {
			c.Type = ct
		}
	}

	if err := errs.ErrorOrNil(); err != nil {
		return models.Consequence{}, err
	}
	if math.Abs(c.MoneyImpact) > 1e9 || c.ScoreImpact > 1e9 || c.ScoreImpact < -1e9 {
		return models.Consequence{}, fmt.Errorf("consequence impacts out of range")
	}
	return c, nil
}
