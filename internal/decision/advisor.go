package decision

import (
	"errors"
	"fmt"

	"github.com/davidbz/pricelab/internal/complexity"
	"github.com/davidbz/pricelab/internal/domain"
)

// ErrUnknownTier indicates an estimate tier with no request counts in the policy.
var ErrUnknownTier = errors.New("no request counts for complexity tier")

// TierVolume is how many requests each paid plan includes for a tier.
type TierVolume struct {
	PackRequests    int `json:"pack_requests"    yaml:"pack_requests"`
	MonthlyRequests int `json:"monthly_requests" yaml:"monthly_requests"`
}

// Copy is the descriptive text attached to one proposal.
type Copy struct {
	Title    string `json:"title"     yaml:"title"`
	FreeTier string `json:"free_tier" yaml:"free_tier"`
	Reason   string `json:"reason"    yaml:"reason"`
	Pros     string `json:"pros"      yaml:"pros"`
	Cons     string `json:"cons"      yaml:"cons"`
}

// Policy holds the decision-maker constants.
type Policy struct {
	Volumes             map[complexity.Tier]TierVolume `json:"volumes"                yaml:"volumes"`
	OneTimeMarkup       float64                        `json:"one_time_markup"        yaml:"one_time_markup"`
	SubscriptionMarkup  float64                        `json:"subscription_markup"    yaml:"subscription_markup"`
	UsageMarkup         float64                        `json:"usage_markup"           yaml:"usage_markup"`
	DefaultTasksPerUser int                            `json:"default_tasks_per_user" yaml:"default_tasks_per_user"`
	Recommended         domain.BillingMethod           `json:"recommended"            yaml:"recommended"`
	Copy                map[domain.BillingMethod]Copy  `json:"copy"                   yaml:"copy"`

	// FreeTiers overrides Copy.FreeTier per estimated usage type.
	FreeTiers map[string]map[domain.BillingMethod]string `json:"free_tiers" yaml:"free_tiers"`
}

// DefaultPolicy returns the stock decision-maker constants.
func DefaultPolicy() Policy {
	return Policy{
		Volumes: map[complexity.Tier]TierVolume{
			complexity.TierHigh: {PackRequests: 80, MonthlyRequests: 180},
			complexity.TierMid:  {PackRequests: 100, MonthlyRequests: 250},
			complexity.TierLow:  {PackRequests: 120, MonthlyRequests: 320},
		},
		OneTimeMarkup:       2.2,
		SubscriptionMarkup:  3.4,
		UsageMarkup:         3.0,
		DefaultTasksPerUser: 10,
		Recommended:         domain.UsageBased,
		Copy: map[domain.BillingMethod]Copy{
			domain.OneTime: {
				Title:    "One-time Pack (market entry)",
				FreeTier: "No free tier",
				Reason:   "A pack tuned for instant checkout. Converts users with simple needs quickly and secures early cash flow.",
				Pros:     "Fast purchase decisions, low refund risk",
				Cons:     "Weak repeat usage, limited LTV growth",
			},
			domain.Subscription: {
				Title:    "Monthly Subscription (growth)",
				FreeTier: "10 free requests per month",
				Reason:   "Built around repeat usage. The free tier drives trial and growing usage leads to natural upgrades.",
				Pros:     "Stable recurring revenue, retention-driven growth",
				Cons:     "Initial conversion barrier, churn needs managing",
			},
			domain.UsageBased: {
				Title:    "Usage-based (scalable)",
				FreeTier: "5,000 free tokens per month",
				Reason:   "Charges track usage, so pricing feels fair and heavy users carry the revenue. Spreads cost risk well.",
				Pros:     "Revenue tracks cost closely, scales well",
				Cons:     "Pricing needs explaining, billing UI is more complex",
			},
		},
		FreeTiers: map[string]map[domain.BillingMethod]string{
			"heavy": {
				domain.Subscription: "3 free requests per month",
				domain.UsageBased:   "1,000 free tokens per month",
			},
			"moderate": {
				domain.Subscription: "10 free requests per month",
				domain.UsageBased:   "5,000 free tokens per month",
			},
			"simple": {
				domain.Subscription: "20 free requests per month",
				domain.UsageBased:   "10,000 free tokens per month",
			},
		},
	}
}

// Validate checks every tier has request counts and markups are positive.
func (p Policy) Validate() error {
	for _, tier := range []complexity.Tier{complexity.TierHigh, complexity.TierMid, complexity.TierLow} {
		v, ok := p.Volumes[tier]
		if !ok {
			return fmt.Errorf("%w: %s", ErrUnknownTier, tier)
		}
		if v.PackRequests < 1 || v.MonthlyRequests < 1 {
			return fmt.Errorf("tier %s: request counts must be positive", tier)
		}
	}
	if p.OneTimeMarkup <= 0 || p.SubscriptionMarkup <= 0 || p.UsageMarkup <= 0 {
		return errors.New("markups must be positive")
	}
	if p.DefaultTasksPerUser < 0 {
		return errors.New("default tasks per user must be non-negative")
	}
	if p.Recommended != "" {
		method, err := domain.ParseBillingMethod(string(p.Recommended))
		if err != nil {
			return fmt.Errorf("recommended: %w", err)
		}
		if method != p.Recommended {
			return fmt.Errorf("recommended: %w: use %q", domain.ErrInvalidBillingMethod, method)
		}
	}
	return nil
}

// Input is one decision request.
type Input struct {
	Code         string
	Description  string
	Model        domain.ModelRecord
	Rate         domain.ExchangeRate
	TasksPerUser int
}

// Proposal is one recommended pricing plan.
type Proposal struct {
	Rank        int                  `json:"rank"`
	Method      domain.BillingMethod `json:"method"`
	Title       string               `json:"title"`
	Price       domain.Amount        `json:"price"`
	Unit        string               `json:"unit"`
	Requests    int                  `json:"requests,omitempty"`
	FreeTier    string               `json:"free_tier"`
	Reason      string               `json:"reason"`
	Pros        string               `json:"pros"`
	Cons        string               `json:"cons"`
	Recommended bool                 `json:"recommended"`
}

// Decision is the advisor output.
type Decision struct {
	Estimate           complexity.Estimate `json:"estimate"`
	ModelKey           string              `json:"model_key"`
	CostPerRequest     domain.Amount       `json:"cost_per_request"`
	TasksPerUser       int                 `json:"tasks_per_user"`
	MonthlyCostPerUser domain.Amount       `json:"monthly_cost_per_user"`
	Proposals          []Proposal          `json:"proposals"`
}

// Advisor turns a product description into three pricing proposals.
type Advisor struct {
	estimator *complexity.Estimator
	policy    Policy
}

// NewAdvisor creates an advisor.
func NewAdvisor(estimator *complexity.Estimator, policy Policy) (*Advisor, error) {
	if estimator == nil {
		return nil, errors.New("estimator cannot be nil")
	}
	if err := policy.Validate(); err != nil {
		return nil, fmt.Errorf("invalid decision policy: %w", err)
	}
	return &Advisor{estimator: estimator, policy: policy}, nil
}

// Advise estimates usage from the code and description, costs the model
// and builds the one-time, subscription and usage-based proposals.
func (a *Advisor) Advise(in Input) (Decision, error) {
	if err := in.Rate.Validate(); err != nil {
		return Decision{}, err
	}
	if in.TasksPerUser < 0 {
		return Decision{}, fmt.Errorf("%w: tasks per user must be non-negative", domain.ErrInvalidUsage)
	}

	estimate := a.estimator.Estimate(in.Code, in.Description)

	cost, err := domain.CostPerRequest(in.Model, estimate.Usage)
	if err != nil {
		return Decision{}, err
	}

	volume, ok := a.policy.Volumes[estimate.Tier]
	if !ok {
		return Decision{}, fmt.Errorf("%w: %s", ErrUnknownTier, estimate.Tier)
	}

	tasks := in.TasksPerUser
	if tasks == 0 {
		tasks = a.policy.DefaultTasksPerUser
	}

	return Decision{
		Estimate:           estimate,
		ModelKey:           in.Model.Key,
		CostPerRequest:     domain.NewAmount(cost, in.Rate),
		TasksPerUser:       tasks,
		MonthlyCostPerUser: domain.NewAmount(cost*float64(tasks)*domain.DefaultDaysPerMonth, in.Rate),
		Proposals: []Proposal{
			a.proposal(1, domain.OneTime, cost*float64(volume.PackRequests)*a.policy.OneTimeMarkup,
				"pack", volume.PackRequests, estimate.UsageType, in.Rate),
			a.proposal(2, domain.Subscription, cost*float64(volume.MonthlyRequests)*a.policy.SubscriptionMarkup,
				"month", volume.MonthlyRequests, estimate.UsageType, in.Rate),
			a.proposal(3, domain.UsageBased, cost*a.policy.UsageMarkup,
				"request", 0, estimate.UsageType, in.Rate),
		},
	}, nil
}

func (a *Advisor) proposal(
	rank int,
	method domain.BillingMethod,
	price float64,
	unit string,
	requests int,
	usageType string,
	rate domain.ExchangeRate,
) Proposal {
	text := a.policy.Copy[method]
	if free, ok := a.policy.FreeTiers[usageType][method]; ok {
		text.FreeTier = free
	}
	return Proposal{
		Rank:        rank,
		Method:      method,
		Title:       text.Title,
		Price:       domain.NewAmount(price, rate),
		Unit:        unit,
		Requests:    requests,
		FreeTier:    text.FreeTier,
		Reason:      text.Reason,
		Pros:        text.Pros,
		Cons:        text.Cons,
		Recommended: method == a.policy.Recommended,
	}
}
