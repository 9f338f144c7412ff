package domain

import (
	"errors"
	"fmt"
)

// PlanPolicy holds the constants the strategy planner prices with.
type PlanPolicy struct {
	// LifetimeMarkup inflates the one-time price to cover usage past the
	// expected lifetime.
	LifetimeMarkup float64 `json:"lifetime_markup" yaml:"lifetime_markup"`

	// UsageUnit is the number of requests a usage-based price is quoted for.
	UsageUnit int `json:"usage_unit" yaml:"usage_unit"`
}

// DefaultPlanPolicy returns the stock planner constants.
func DefaultPlanPolicy() PlanPolicy {
	return PlanPolicy{
		LifetimeMarkup: 1.2,
		UsageUnit:      1000,
	}
}

// PlanInput is everything the planner needs besides the catalog.
type PlanInput struct {
	Usage          UsageProfile `json:"usage"`
	Volume         UsageVolume  `json:"volume"`
	Margin         Margin       `json:"margin"`
	LifetimeMonths int          `json:"lifetime_months"`
}

// MethodPrices is one price per billing method.
type MethodPrices struct {
	OneTime      float64 `json:"one_time"`
	Subscription float64 `json:"subscription"`
	UsageBased   float64 `json:"usage_based"`
}

// For returns the price for method.
func (p MethodPrices) For(method BillingMethod) (float64, error) {
	switch method {
	case OneTime:
		return p.OneTime, nil
	case Subscription:
		return p.Subscription, nil
	case UsageBased:
		return p.UsageBased, nil
	default:
		return 0, fmt.Errorf("%w: %q", ErrInvalidBillingMethod, method)
	}
}

// StrategyPlan prices one strategy's model for a user base.
type StrategyPlan struct {
	Strategy         Strategy     `json:"strategy"`
	Model            ModelRecord  `json:"model"`
	CostPerRequest   float64      `json:"cost_per_request"`
	TotalMonthlyCost float64      `json:"total_monthly_cost"`
	CostPerUser      float64      `json:"cost_per_user"`
	Prices           MethodPrices `json:"prices"`
}

// Plan is the planner output. A nil strategy had no candidate model.
type Plan struct {
	Cheapest            *StrategyPlan `json:"cheapest"`
	Balanced            *StrategyPlan `json:"balanced"`
	Quality             *StrategyPlan `json:"quality"`
	PatternMultiplier   float64       `json:"pattern_multiplier"`
	RecommendedStrategy Strategy      `json:"recommended_strategy"`
	RecommendedMethod   BillingMethod `json:"recommended_method"`
}

// Get returns the plan for strategy or ErrEmptyCandidatePool.
func (p Plan) Get(strategy Strategy) (*StrategyPlan, error) {
	var sp *StrategyPlan
	switch strategy {
	case StrategyCheapest:
		sp = p.Cheapest
	case StrategyBalanced:
		sp = p.Balanced
	case StrategyQuality:
		sp = p.Quality
	default:
		return nil, fmt.Errorf("unknown strategy: %s", strategy)
	}
	if sp == nil {
		return nil, fmt.Errorf("%w: %s", ErrEmptyCandidatePool, strategy)
	}
	return sp, nil
}

// PlanStrategies picks a model per strategy and prices each for the
// billing methods. Subscription covers one user-month, one-time covers
// the expected lifetime, usage-based covers PlanPolicy.UsageUnit requests.
func PlanStrategies(models []ModelRecord, selector *Selector, in PlanInput, policy PlanPolicy) (Plan, error) {
	if err := in.Margin.Validate(); err != nil {
		return Plan{}, err
	}
	if in.LifetimeMonths < 0 {
		return Plan{}, fmt.Errorf("%w: lifetime months must be non-negative", ErrInvalidUsage)
	}
	if policy.UsageUnit <= 0 {
		policy.UsageUnit = DefaultPlanPolicy().UsageUnit
	}

	set, err := selector.Select(models, in.Usage)
	if err != nil {
		return Plan{}, err
	}

	volume := in.Volume.withDefaults()
	plan := Plan{
		PatternMultiplier:   volume.PatternMultiplier,
		RecommendedStrategy: StrategyBalanced,
		RecommendedMethod:   Subscription,
	}

	for _, strategy := range Strategies() {
		pick, pickErr := set.Pick(strategy)
		if errors.Is(pickErr, ErrEmptyCandidatePool) {
			continue
		}
		if pickErr != nil {
			return Plan{}, pickErr
		}

		sp, planErr := planStrategy(strategy, pick.Model, in, volume, policy)
		if planErr != nil {
			return Plan{}, fmt.Errorf("failed to plan %s strategy: %w", strategy, planErr)
		}

		switch strategy {
		case StrategyCheapest:
			plan.Cheapest = sp
		case StrategyBalanced:
			plan.Balanced = sp
		case StrategyQuality:
			plan.Quality = sp
		}
	}

	return plan, nil
}

func planStrategy(
	strategy Strategy,
	model ModelRecord,
	in PlanInput,
	volume UsageVolume,
	policy PlanPolicy,
) (*StrategyPlan, error) {
	projection, err := ProjectUsage(model, in.Usage, volume)
	if err != nil {
		return nil, err
	}

	subscription, err := PriceFromCost(projection.PerUserMonthly, in.Margin)
	if err != nil {
		return nil, err
	}

	lifetimeCost := projection.PerUserMonthly * float64(in.LifetimeMonths) * policy.LifetimeMarkup
	oneTime, err := PriceFromCost(lifetimeCost, in.Margin)
	if err != nil {
		return nil, err
	}

	usage, err := PriceFromCost(projection.PerRequest*float64(policy.UsageUnit), in.Margin)
	if err != nil {
		return nil, err
	}

	return &StrategyPlan{
		Strategy:         strategy,
		Model:            model,
		CostPerRequest:   projection.PerRequest,
		TotalMonthlyCost: projection.TotalMonthly,
		CostPerUser:      projection.PerUserMonthly,
		Prices: MethodPrices{
			OneTime:      oneTime,
			Subscription: subscription,
			UsageBased:   usage,
		},
	}, nil
}
