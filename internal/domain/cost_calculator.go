package domain

import (
	"errors"
	"fmt"
)

const tokensPerMillion = 1_000_000.0

// CostPerRequest computes the reference-currency cost of one request.
// It returns ErrPriceUnavailable when either token price is unknown.
func CostPerRequest(model ModelRecord, usage UsageProfile) (float64, error) {
	if err := usage.Validate(); err != nil {
		return 0, err
	}

	if !model.HasPricing() {
		return 0, fmt.Errorf("%w: %s", ErrPriceUnavailable, model.Key)
	}

	inputCost := float64(usage.InputTokens) / tokensPerMillion * *model.InputPricePerMillion
	outputCost := float64(usage.OutputTokens) / tokensPerMillion * *model.OutputPricePerMillion

	return inputCost + outputCost, nil
}

// ConvertedCostPerRequest computes the cost of one request in the target
// currency. The conversion is redone on every call from the source cost.
func ConvertedCostPerRequest(model ModelRecord, usage UsageProfile, rate ExchangeRate) (float64, error) {
	if err := rate.Validate(); err != nil {
		return 0, err
	}

	cost, err := CostPerRequest(model, usage)
	if err != nil {
		return 0, err
	}

	return rate.Convert(cost), nil
}

// Amount is a money figure in both the reference and the target currency.
type Amount struct {
	Source    float64 `json:"source"`
	Converted float64 `json:"converted"`
}

// NewAmount converts a reference-currency value with rate.
func NewAmount(source float64, rate ExchangeRate) Amount {
	return Amount{Source: source, Converted: rate.Convert(source)}
}

// UsageVolume describes how much traffic a product sees.
type UsageVolume struct {
	DAU               int     `json:"dau"`
	TasksPerUser      int     `json:"tasks_per_user"`
	DaysPerMonth      int     `json:"days_per_month"`
	PatternMultiplier float64 `json:"pattern_multiplier"`
}

// DefaultDaysPerMonth is used when a volume leaves DaysPerMonth unset.
const DefaultDaysPerMonth = 30

func (v UsageVolume) withDefaults() UsageVolume {
	if v.DaysPerMonth <= 0 {
		v.DaysPerMonth = DefaultDaysPerMonth
	}
	if v.PatternMultiplier <= 0 {
		v.PatternMultiplier = 1
	}
	return v
}

// Validate rejects non-positive user counts and negative task counts.
func (v UsageVolume) Validate() error {
	if v.DAU <= 0 {
		return fmt.Errorf("%w: dau must be positive", ErrInvalidUsage)
	}
	if v.TasksPerUser < 0 {
		return fmt.Errorf("%w: tasks per user must be non-negative", ErrInvalidUsage)
	}
	return nil
}

// CostProjection is the reference-currency cost of a usage volume.
type CostProjection struct {
	PerRequest       float64 `json:"per_request"`
	ScaledPerRequest float64 `json:"scaled_per_request"`
	PerUserDaily     float64 `json:"per_user_daily"`
	PerUserMonthly   float64 `json:"per_user_monthly"`
	TotalMonthly     float64 `json:"total_monthly"`
	MonthlyRequests  int     `json:"monthly_requests"`
}

// ProjectUsage scales the per-request cost to a user base. The usage
// pattern multiplier inflates token counts, not request counts.
func ProjectUsage(model ModelRecord, usage UsageProfile, volume UsageVolume) (CostProjection, error) {
	if err := volume.Validate(); err != nil {
		return CostProjection{}, err
	}
	volume = volume.withDefaults()

	perRequest, err := CostPerRequest(model, usage)
	if err != nil {
		return CostProjection{}, err
	}

	scaled := perRequest * volume.PatternMultiplier
	perUserDaily := scaled * float64(volume.TasksPerUser)
	perUserMonthly := perUserDaily * float64(volume.DaysPerMonth)
	monthlyRequests := volume.DAU * volume.TasksPerUser * volume.DaysPerMonth

	return CostProjection{
		PerRequest:       perRequest,
		ScaledPerRequest: scaled,
		PerUserDaily:     perUserDaily,
		PerUserMonthly:   perUserMonthly,
		TotalMonthly:     perUserMonthly * float64(volume.DAU),
		MonthlyRequests:  monthlyRequests,
	}, nil
}

// CostRow is one model's per-request cost at a set of named token presets.
// A nil entry means the price is unknown.
type CostRow struct {
	Model ModelRecord        `json:"model"`
	Costs map[string]*Amount `json:"costs"`
}

// CostTable computes per-request costs for every model at each preset.
func CostTable(models []ModelRecord, presets map[string]UsageProfile, rate ExchangeRate) ([]CostRow, error) {
	if err := rate.Validate(); err != nil {
		return nil, err
	}

	rows := make([]CostRow, 0, len(models))
	for _, m := range models {
		row := CostRow{Model: m, Costs: make(map[string]*Amount, len(presets))}
		for name, usage := range presets {
			cost, err := CostPerRequest(m, usage)
			if errors.Is(err, ErrPriceUnavailable) {
				row.Costs[name] = nil
				continue
			}
			if err != nil {
				return nil, fmt.Errorf("preset %s: %w", name, err)
			}
			amount := NewAmount(cost, rate)
			row.Costs[name] = &amount
		}
		rows = append(rows, row)
	}

	return rows, nil
}
