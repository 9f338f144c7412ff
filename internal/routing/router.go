package routing

import (
	"errors"
	"fmt"
	"math"

	"github.com/davidbz/pricelab/internal/domain"
)

// MaxMixEntries is the largest number of models a mix may route across.
const MaxMixEntries = 3

// Recommended mix shares for the value, quality and cheapest picks.
const (
	recommendedValueWeight    = 70
	recommendedQualityWeight  = 20
	recommendedCheapestWeight = 10
)

var (
	// ErrEmptyMix indicates a mix with no entries.
	ErrEmptyMix = errors.New("routing mix cannot be empty")

	// ErrMixTooLarge indicates a mix with more than MaxMixEntries entries.
	ErrMixTooLarge = errors.New("routing mix has too many entries")
)

// MixEntry routes a share of traffic to one catalog model.
type MixEntry struct {
	ModelKey string  `json:"model_key"`
	Weight   float64 `json:"weight"`
}

// Leg is one resolved mix entry after weight normalization.
type Leg struct {
	Model          domain.ModelRecord `json:"model"`
	Weight         int                `json:"weight"`
	Cost           float64            `json:"cost"`
	PriceAvailable bool               `json:"price_available"`
}

// Blend is the weighted cost and price of a mix.
type Blend struct {
	Legs  []Leg   `json:"legs"`
	Cost  float64 `json:"cost"`
	Price float64 `json:"price"`
}

// NormalizeWeights clamps weights to non-negative values and rescales them
// to integers summing to exactly 100. The first weight absorbs rounding.
// When every weight is zero the split is equal.
func NormalizeWeights(weights []float64) []int {
	n := len(weights)
	if n == 0 {
		return nil
	}

	safe := make([]float64, n)
	total := 0.0
	for i, w := range weights {
		if math.IsNaN(w) || w < 0 {
			w = 0
		}
		safe[i] = w
		total += w
	}

	out := make([]int, n)

	if total <= 0 || math.IsInf(total, 1) {
		equal := int(math.Round(100 / float64(n)))
		for i := range out {
			out[i] = equal
		}
		out[0] = 100 - equal*(n-1)
		return out
	}

	sum := 0
	for i, w := range safe {
		out[i] = int(math.Round(w / total * 100))
		sum += out[i]
	}
	out[0] += 100 - sum

	return out
}

// Router resolves routing mixes against a catalog.
type Router struct {
	catalog domain.Catalog
}

// NewRouter creates a new router.
func NewRouter(catalog domain.Catalog) *Router {
	return &Router{
		catalog: catalog,
	}
}

// Blend computes the weighted cost per request of mix and marks it up by
// margin. A model with unknown pricing contributes zero cost and is
// flagged on its leg.
func (r *Router) Blend(mix []MixEntry, usage domain.UsageProfile, margin domain.Margin) (Blend, error) {
	if len(mix) == 0 {
		return Blend{}, ErrEmptyMix
	}
	if len(mix) > MaxMixEntries {
		return Blend{}, fmt.Errorf("%w: %d > %d", ErrMixTooLarge, len(mix), MaxMixEntries)
	}
	if err := margin.Validate(); err != nil {
		return Blend{}, err
	}
	if err := usage.Validate(); err != nil {
		return Blend{}, err
	}

	raw := make([]float64, len(mix))
	models := make([]domain.ModelRecord, len(mix))
	for i, entry := range mix {
		model, err := r.catalog.Get(entry.ModelKey)
		if err != nil {
			return Blend{}, fmt.Errorf("mix entry %d: %w", i, err)
		}
		models[i] = model
		raw[i] = entry.Weight
	}

	weights := NormalizeWeights(raw)
	blend := Blend{Legs: make([]Leg, len(mix))}

	for i, model := range models {
		cost, err := domain.CostPerRequest(model, usage)
		available := err == nil
		if err != nil && !errors.Is(err, domain.ErrPriceUnavailable) {
			return Blend{}, err
		}

		blend.Legs[i] = Leg{
			Model:          model,
			Weight:         weights[i],
			Cost:           cost,
			PriceAvailable: available,
		}
		blend.Cost += cost * float64(weights[i]) / 100
	}

	price, err := domain.PriceFromCost(blend.Cost, margin)
	if err != nil {
		return Blend{}, err
	}
	blend.Price = price

	return blend, nil
}

// RecommendedMix routes most traffic to the best-value model with smaller
// shares to the best-quality and cheapest models. An empty pick is an
// error, never a substitute model.
func RecommendedMix(set domain.StrategySet) ([]MixEntry, error) {
	value, err := set.Pick(domain.StrategyBalanced)
	if err != nil {
		return nil, err
	}
	quality, err := set.Pick(domain.StrategyQuality)
	if err != nil {
		return nil, err
	}
	cheapest, err := set.Pick(domain.StrategyCheapest)
	if err != nil {
		return nil, err
	}

	return []MixEntry{
		{ModelKey: value.Model.Key, Weight: recommendedValueWeight},
		{ModelKey: quality.Model.Key, Weight: recommendedQualityWeight},
		{ModelKey: cheapest.Model.Key, Weight: recommendedCheapestWeight},
	}, nil
}
