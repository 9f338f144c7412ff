package marketing

import (
	"errors"
	"fmt"
	"math"

	"github.com/davidbz/pricelab/internal/domain"
)

var (
	// ErrInvalidRetention indicates a retention period below one month.
	ErrInvalidRetention = errors.New("retention months must be at least 1")

	// ErrInvalidTargetMargin indicates a net margin target outside [0, 100].
	ErrInvalidTargetMargin = errors.New("target net margin must be within [0, 100] percent")

	// ErrInvalidCostBasis indicates a negative monthly cost or user count.
	ErrInvalidCostBasis = errors.New("cost basis and dau must be non-negative")
)

// Phase is one month of the customer lifecycle curve. Multiplier scales
// the base monthly API cost for that month.
type Phase struct {
	Name       string  `json:"name"       yaml:"name"`
	Label      string  `json:"label"      yaml:"label"`
	Multiplier float64 `json:"multiplier" yaml:"multiplier"`
}

// DefaultCurve front-loads usage: a peak month, a drop, then steady state.
func DefaultCurve() []Phase {
	return []Phase{
		{Name: "Month 1", Label: "Peak", Multiplier: 1.5},
		{Name: "Month 2", Label: "Drop", Multiplier: 1.2},
		{Name: "Month 3", Label: "Stable", Multiplier: 0.75},
		{Name: "Month 4", Label: "Stable", Multiplier: 0.75},
	}
}

// SuggestionPolicy derives a starting price when the caller sets none.
type SuggestionPolicy struct {
	OneTimeMonths      int     `json:"one_time_months"     yaml:"one_time_months"`
	OneTimeMultiplier  float64 `json:"one_time_multiplier" yaml:"one_time_multiplier"`
	SubscriptionMargin float64 `json:"subscription_margin" yaml:"subscription_margin"`
	UsageMarkupPct     float64 `json:"usage_markup_pct"    yaml:"usage_markup_pct"`
}

// Policy configures the budget calculator.
type Policy struct {
	Curve              []Phase          `json:"curve"                yaml:"curve"`
	Channels           ChannelTable     `json:"channels"             yaml:"channels"`
	PaybackCapMonths   float64          `json:"payback_cap_months"   yaml:"payback_cap_months"`
	GrossProfitEpsilon float64          `json:"gross_profit_epsilon" yaml:"gross_profit_epsilon"`
	OneTimeCostMonths  int              `json:"one_time_cost_months" yaml:"one_time_cost_months"`
	Suggestion         SuggestionPolicy `json:"suggestion"           yaml:"suggestion"`
}

// DefaultPolicy returns the stock budget policy.
func DefaultPolicy() Policy {
	return Policy{
		Curve:              DefaultCurve(),
		Channels:           DefaultChannelTable(),
		PaybackCapMonths:   100,
		GrossProfitEpsilon: 0.001,
		OneTimeCostMonths:  12,
		Suggestion: SuggestionPolicy{
			OneTimeMonths:      12,
			OneTimeMultiplier:  4,
			SubscriptionMargin: 0.7,
			UsageMarkupPct:     100,
		},
	}
}

// Validate checks the policy is usable.
func (p Policy) Validate() error {
	if len(p.Curve) == 0 {
		return errors.New("lifecycle curve cannot be empty")
	}
	for _, phase := range p.Curve {
		if phase.Multiplier < 0 {
			return fmt.Errorf("phase %s has a negative multiplier", phase.Name)
		}
	}
	if p.PaybackCapMonths <= 0 {
		return errors.New("payback cap must be positive")
	}
	if p.GrossProfitEpsilon <= 0 {
		return errors.New("gross profit epsilon must be positive")
	}
	if p.OneTimeCostMonths < 1 {
		return errors.New("one-time cost months must be at least 1")
	}
	if err := domain.Margin(p.Suggestion.SubscriptionMargin).Validate(); err != nil {
		return fmt.Errorf("suggested subscription margin: %w", err)
	}
	return nil
}

// Input is one budget calculation.
type Input struct {
	// MonthlyBaseCost is the API cost of one user for one average month.
	MonthlyBaseCost float64 `json:"monthly_base_cost"`

	Method domain.BillingMethod `json:"method"`

	// Price is the per-user price for one-time and subscription billing,
	// or the markup percentage over cost for usage-based billing. Nil
	// means use the suggested price.
	Price *float64 `json:"price,omitempty"`

	RetentionMonths    int     `json:"retention_months"`
	TargetNetMarginPct float64 `json:"target_net_margin_pct"`
	DAU                int     `json:"dau"`
}

// MonthPoint is one month of the lifecycle projection.
type MonthPoint struct {
	Phase   Phase   `json:"phase"`
	Cost    float64 `json:"cost"`
	Revenue float64 `json:"revenue"`
	Profit  float64 `json:"profit"`
}

// Result is the budget calculation output.
type Result struct {
	Lifecycle             []MonthPoint         `json:"lifecycle"`
	Method                domain.BillingMethod `json:"method"`
	Price                 float64              `json:"price"`
	PriceSuggested        bool                 `json:"price_suggested"`
	AvgMonthlyCost        float64              `json:"avg_monthly_cost"`
	AvgMonthlyRevenue     float64              `json:"avg_monthly_revenue"`
	AvgMonthlyGrossProfit float64              `json:"avg_monthly_gross_profit"`
	EffectiveMonths       int                  `json:"effective_months"`
	LTV                   float64              `json:"ltv"`
	TotalAPICostLTV       float64              `json:"total_api_cost_ltv"`
	GrossProfitLTV        float64              `json:"gross_profit_ltv"`
	TargetNetProfitLTV    float64              `json:"target_net_profit_ltv"`
	AllowableCAC          float64              `json:"allowable_cac"`
	PaybackMonths         *float64             `json:"payback_months"`
	PaybackUnbounded      bool                 `json:"payback_unbounded"`
	TotalBudget           float64              `json:"total_budget"`
	Channels              []Channel            `json:"channels"`
}

// Calculator computes lifetime value and acquisition budgets.
type Calculator struct {
	policy Policy
}

// NewCalculator creates a calculator with policy.
func NewCalculator(policy Policy) (*Calculator, error) {
	if err := policy.Validate(); err != nil {
		return nil, fmt.Errorf("invalid marketing policy: %w", err)
	}
	return &Calculator{policy: policy}, nil
}

// Policy returns the calculator policy.
func (c *Calculator) Policy() Policy {
	return c.policy
}

// AverageMonthlyCost is the base cost averaged over the lifecycle curve.
func (c *Calculator) AverageMonthlyCost(baseCost float64) float64 {
	total := 0.0
	for _, phase := range c.policy.Curve {
		total += baseCost * phase.Multiplier
	}
	return total / float64(len(c.policy.Curve))
}

// SuggestPrice returns a starting price for method given the average
// monthly cost. For usage-based billing it is a markup percentage.
func (c *Calculator) SuggestPrice(method domain.BillingMethod, avgMonthlyCost float64) (float64, error) {
	s := c.policy.Suggestion
	switch method {
	case domain.OneTime:
		return math.Ceil(avgMonthlyCost * float64(s.OneTimeMonths) * s.OneTimeMultiplier), nil
	case domain.Subscription:
		return math.Ceil(avgMonthlyCost / (1 - s.SubscriptionMargin)), nil
	case domain.UsageBased:
		return s.UsageMarkupPct, nil
	default:
		return 0, fmt.Errorf("%w: %q", domain.ErrInvalidBillingMethod, method)
	}
}

// Budget computes LTV, allowable CAC, payback and total budget.
func (c *Calculator) Budget(in Input) (Result, error) {
	if err := c.validate(in); err != nil {
		return Result{}, err
	}

	avgCost := c.AverageMonthlyCost(in.MonthlyBaseCost)

	res := Result{Method: in.Method}
	if in.Price != nil {
		res.Price = *in.Price
	} else {
		suggested, err := c.SuggestPrice(in.Method, avgCost)
		if err != nil {
			return Result{}, err
		}
		res.Price = suggested
		res.PriceSuggested = true
	}

	res.Lifecycle = make([]MonthPoint, 0, len(c.policy.Curve))
	for _, phase := range c.policy.Curve {
		cost := in.MonthlyBaseCost * phase.Multiplier
		revenue := c.monthlyRevenue(in.Method, cost, res.Price)
		res.Lifecycle = append(res.Lifecycle, MonthPoint{
			Phase:   phase,
			Cost:    cost,
			Revenue: revenue,
			Profit:  revenue - cost,
		})
	}

	res.AvgMonthlyCost = avgCost
	res.AvgMonthlyRevenue = c.monthlyRevenue(in.Method, avgCost, res.Price)
	res.AvgMonthlyGrossProfit = res.AvgMonthlyRevenue - avgCost

	costMonths := in.RetentionMonths
	res.EffectiveMonths = in.RetentionMonths
	if in.Method == domain.OneTime {
		res.EffectiveMonths = 1
		costMonths = c.policy.OneTimeCostMonths
	}

	res.LTV = res.AvgMonthlyRevenue * float64(res.EffectiveMonths)
	res.TotalAPICostLTV = avgCost * float64(costMonths)
	res.GrossProfitLTV = res.LTV - res.TotalAPICostLTV
	res.TargetNetProfitLTV = res.LTV * in.TargetNetMarginPct / 100
	res.AllowableCAC = math.Max(0, res.GrossProfitLTV-res.TargetNetProfitLTV)

	monthlyProfit := res.AvgMonthlyGrossProfit
	if monthlyProfit <= 0 {
		monthlyProfit = c.policy.GrossProfitEpsilon
	}
	payback := res.AllowableCAC / monthlyProfit
	if payback > c.policy.PaybackCapMonths {
		res.PaybackUnbounded = true
	} else {
		res.PaybackMonths = &payback
	}

	res.TotalBudget = res.AllowableCAC * float64(in.DAU)
	res.Channels = c.policy.Channels.Lookup(res.AllowableCAC)

	return res, nil
}

func (c *Calculator) monthlyRevenue(method domain.BillingMethod, cost, price float64) float64 {
	if method == domain.UsageBased {
		return cost * (1 + price/100)
	}
	return price
}

func (c *Calculator) validate(in Input) error {
	switch in.Method {
	case domain.OneTime, domain.Subscription, domain.UsageBased:
	default:
		return fmt.Errorf("%w: %q", domain.ErrInvalidBillingMethod, in.Method)
	}
	if in.Method != domain.OneTime && in.RetentionMonths < 1 {
		return fmt.Errorf("%w: got %d", ErrInvalidRetention, in.RetentionMonths)
	}
	if math.IsNaN(in.TargetNetMarginPct) || in.TargetNetMarginPct < 0 || in.TargetNetMarginPct > 100 {
		return fmt.Errorf("%w: got %v", ErrInvalidTargetMargin, in.TargetNetMarginPct)
	}
	if in.MonthlyBaseCost < 0 || in.DAU < 0 {
		return ErrInvalidCostBasis
	}
	return nil
}
