package domain

import (
	"fmt"
	"math"
)

// DefaultQualityFloor is the minimum quality score for best-value picks.
const DefaultQualityFloor = 1450.0

// Strategy names one of the three selector picks.
type Strategy string

const (
	StrategyCheapest Strategy = "cheapest"
	StrategyBalanced Strategy = "balanced"
	StrategyQuality  Strategy = "quality"
)

// Strategies lists the picks in display order.
func Strategies() []Strategy {
	return []Strategy{StrategyCheapest, StrategyBalanced, StrategyQuality}
}

// ScoredModel is a model with its cost for the usage being evaluated.
type ScoredModel struct {
	Model      ModelRecord `json:"model"`
	Cost       float64     `json:"cost"`
	ValueScore float64     `json:"value_score,omitempty"`
}

// StrategySet holds the selector picks; a nil pick had no candidates.
type StrategySet struct {
	Cheapest    *ScoredModel `json:"cheapest"`
	BestQuality *ScoredModel `json:"best_quality"`
	BestValue   *ScoredModel `json:"best_value"`
}

// Pick returns the model chosen for strategy or ErrEmptyCandidatePool.
func (s StrategySet) Pick(strategy Strategy) (*ScoredModel, error) {
	var pick *ScoredModel
	switch strategy {
	case StrategyCheapest:
		pick = s.Cheapest
	case StrategyBalanced:
		pick = s.BestValue
	case StrategyQuality:
		pick = s.BestQuality
	default:
		return nil, fmt.Errorf("unknown strategy: %s", strategy)
	}

	if pick == nil {
		return nil, fmt.Errorf("%w: %s", ErrEmptyCandidatePool, strategy)
	}
	return pick, nil
}

// Selector picks cheapest, best-quality and best-value models.
type Selector struct {
	qualityFloor float64
}

// NewSelector creates a selector with the given best-value quality floor.
func NewSelector(qualityFloor float64) *Selector {
	return &Selector{qualityFloor: qualityFloor}
}

// QualityFloor returns the configured floor.
func (s *Selector) QualityFloor() float64 {
	return s.qualityFloor
}

// Select evaluates models for usage. Models with unknown prices are
// skipped; ties go to the model listed first.
func (s *Selector) Select(models []ModelRecord, usage UsageProfile) (StrategySet, error) {
	if err := usage.Validate(); err != nil {
		return StrategySet{}, err
	}

	scored := make([]ScoredModel, 0, len(models))
	for _, m := range models {
		cost, err := CostPerRequest(m, usage)
		if err != nil {
			continue
		}
		scored = append(scored, ScoredModel{Model: m, Cost: cost})
	}

	var set StrategySet
	if len(scored) == 0 {
		return set, nil
	}

	cheapest := scored[0]
	for _, m := range scored[1:] {
		if m.Cost < cheapest.Cost {
			cheapest = m
		}
	}
	set.Cheapest = &cheapest

	qualityPool := make([]ScoredModel, 0, len(scored))
	for _, m := range scored {
		if m.Model.HasQuality() {
			qualityPool = append(qualityPool, m)
		}
	}
	if len(qualityPool) == 0 {
		return set, nil
	}

	best := qualityPool[0]
	for _, m := range qualityPool[1:] {
		if m.Model.Quality() > best.Model.Quality() {
			best = m
		}
	}
	set.BestQuality = &best

	valuePool := make([]ScoredModel, 0, len(qualityPool))
	for _, m := range qualityPool {
		if m.Model.Quality() >= s.qualityFloor {
			valuePool = append(valuePool, m)
		}
	}
	if len(valuePool) == 0 {
		valuePool = qualityPool
	}

	value := valuePool[0]
	value.ValueScore = valueScore(value)
	for _, m := range valuePool[1:] {
		if score := valueScore(m); score > value.ValueScore {
			value = m
			value.ValueScore = score
		}
	}
	set.BestValue = &value

	return set, nil
}

// valueScore is quality per unit of cost. A free model with any quality
// beats every priced one.
func valueScore(m ScoredModel) float64 {
	if m.Cost == 0 {
		if m.Model.Quality() > 0 {
			return math.MaxFloat64
		}
		return 0
	}
	return m.Model.Quality() / m.Cost
}
