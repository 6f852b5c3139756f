package generation

import (
	"context"
	"fmt"
	"strings"
	"time"

	"foodgame/internal/models"

	lru "github.com/hashicorp/golang-lru/v2"
	"github.com/hashicorp/go-multierror"
	"github.com/sirupsen/logrus"
	"github.com/tidwall/gjson"
	"golang.org/x/sync/singleflight"
)

const menuSystemPrompt = "You are a creative chef who specializes in dietary restrictions. You only respond with valid JSON."

const menuPromptTemplate = `Generate 3 creative food items that would be safe for someone with these dietary restrictions: %s.
For each item, provide:
1. A creative name
2. A brief description
3. A reasonable price
4. Preparation time in minutes

Return ONLY a valid JSON object in this exact format:
{
    "items": [
        {
            "name": "item name",
            "description": "brief description",
            "price": 0.00,
            "preparation_time": 0
        }
    ]
}`

// MenuGenerator produces menus for a restriction set, cached by restriction key
type MenuGenerator struct {
	client *client
	cache  *lru.Cache[string, []models.MenuItem]
	group  singleflight.Group
}

// NewMenuGenerator creates a menu generator with a bounded cache
func NewMenuGenerator(opts Options) (*MenuGenerator, error) {
	opts = opts.withDefaults()
	cache, err := lru.New[string, []models.MenuItem](opts.CacheSize)
	if err != nil {
		return nil, fmt.Errorf("failed to create menu cache: %w", err)
	}
	return &MenuGenerator{client: newClient(opts), cache: cache}, nil
}

// MenuFor returns the menu for restrictions. Only generated menus are cached;
// a fallback is recomputed on the next request so the service can recover.
func (g *MenuGenerator) MenuFor(ctx context.Context, restrictions []models.RestrictionType) []models.MenuItem {
	restrictions = normalizeRestrictions(restrictions)
	key := models.RestrictionKey(restrictions)

	if items, ok := g.cache.Get(key); ok {
		g.client.recorder.RecordCacheLookup("menu", true)
		return models.CloneMenu(items)
	}
	g.client.recorder.RecordCacheLookup("menu", false)

	v, _, _ := g.group.Do(key, func() (interface{}, error) {
		if items, ok := g.cache.Get(key); ok {
			return items, nil
		}
		start := time.Now()
		items, err := g.generate(context.WithoutCancel(ctx), restrictions)
		if err != nil {
			g.client.log.WithFields(logrus.Fields{
				"kind":         "menu",
				"restrictions": key,
			}).WithError(err).Warn("menu generation failed, using fallback")
			g.client.recorder.RecordGeneration("menu", true, time.Since(start))
			return FallbackMenu(restrictions), nil
		}
		g.client.recorder.RecordGeneration("menu", false, time.Since(start))
		g.cache.Add(key, items)
		return items, nil
	})

	return models.CloneMenu(v.([]models.MenuItem))
}

// Len returns the number of cached menus
func (g *MenuGenerator) Len() int {
	return g.cache.Len()
}

func (g *MenuGenerator) generate(ctx context.Context, restrictions []models.RestrictionType) ([]models.MenuItem, error) {
	tags := make([]string, len(restrictions))
	for i, r := range restrictions {
		tags[i] = string(r)
	}
	listed := strings.Join(tags, ", ")
	if listed == "" {
		listed = "none"
	}

	doc, err := g.client.complete(ctx, menuSystemPrompt, fmt.Sprintf(menuPromptTemplate, listed))
	if err != nil {
		return nil, err
	}
	return parseMenu(doc, restrictions)
}

func parseMenu(doc gjson.Result, restrictions []models.RestrictionType) ([]models.MenuItem, error) {
	list := doc.Get("items")
	if !list.IsArray() || len(list.Array()) == 0 {
		return nil, fmt.Errorf("items must be a non-empty array")
	}

	var errs *multierror.Error
	items := make([]models.MenuItem, 0, len(list.Array()))
	seen := make(map[string]bool)
	for i, raw := range list.Array() {
		if !raw.IsObject() {
			errs = multierror.Append(errs, fmt.Errorf("items[%d] must be an object", i))
			continue
		}
		item, err := parseMenuItem(raw, restrictions)
		if err != nil {
			errs = multierror.Append(errs, fmt.Errorf("items[%d]: %w", i, err))
			continue
		}
		if seen[item.Name] {
			errs = multierror.Append(errs, fmt.Errorf("items[%d]: duplicate name %q", i, item.Name))
			continue
		}
		seen[item.Name] = true
		items = append(items, item)
	}
	if err := errs.ErrorOrNil(); err != nil {
		return nil, err
	}
	return items, nil
}

func parseMenuItem(raw gjson.Result, restrictions []models.RestrictionType) (models.MenuItem, error) {
	var errs *multierror.Error

	name, err := stringField(raw, "name")
	errs = appendErr(errs, err)
	description, err := stringField(raw, "description")
	errs = appendErr(errs, err)
	price, err := numberField(raw, "price")
	errs = appendErr(errs, err)
	prep, err := intField(raw, "preparation_time")
	errs = appendErr(errs, err)

	if err := errs.ErrorOrNil(); err != nil {
		return models.MenuItem{}, err
	}

	item := models.MenuItem{
		Name:            name,
		Description:     description,
		Price:           price,
		Restrictions:    append([]models.RestrictionType(nil), restrictions...),
		PreparationTime: prep,
	}
	if err := models.ValidateMenuItem(&item); err != nil {
		return models.MenuItem{}, err
	}
	return item, nil
}

func appendErr(errs *multierror.Error, err error) *multierror.Error {
	if err == nil {
		return errs
	}
	return multierror.Append(errs, err)
}
