package simulator

import (
	"github.com/davidbz/pricelab/internal/catalog"
	"github.com/davidbz/pricelab/internal/decision"
	"github.com/davidbz/pricelab/internal/domain"
	"github.com/davidbz/pricelab/internal/marketing"
	"github.com/davidbz/pricelab/internal/routing"
)

// Where a calculation's token usage came from.
const (
	UsageFromRequest  = "request"
	UsageFromSession  = "session"
	UsageFromDefault  = "default"
	UsageFromEstimate = "estimate"
	UsageFromDecision = "decision"
	UsageFromPlan     = "plan"
)

// RateInfo describes the exchange rate in effect.
type RateInfo struct {
	Rate     domain.ExchangeRate `json:"rate"`
	Default  domain.ExchangeRate `json:"default"`
	Currency string              `json:"currency"`
}

// ModelsResult lists the catalog.
type ModelsResult struct {
	Models   []domain.ModelRecord `json:"models"`
	Metadata catalog.Metadata     `json:"metadata"`
}

// CostTableResult is the per-preset cost of every model.
type CostTableResult struct {
	Presets map[string]domain.UsageProfile `json:"presets"`
	Rows    []domain.CostRow               `json:"rows"`
	Rate    RateInfo                       `json:"rate"`
}

// CostRequest costs one model. Volume is optional; Pattern names a usage
// pattern from the policy.
type CostRequest struct {
	ModelKey string              `json:"model_key"`
	Usage    domain.UsageProfile `json:"usage"`
	Volume   *domain.UsageVolume `json:"volume,omitempty"`
	Pattern  string              `json:"pattern,omitempty"`
}

// CostResult is the cost of one model.
type CostResult struct {
	Model      domain.ModelRecord     `json:"model"`
	Usage      domain.UsageProfile    `json:"usage"`
	PerRequest domain.Amount          `json:"per_request"`
	Projection *domain.CostProjection `json:"projection,omitempty"`
	Rate       RateInfo               `json:"rate"`
}

// QuoteRequest prices one model under every billing method.
type QuoteRequest struct {
	ModelKey string              `json:"model_key"`
	Usage    domain.UsageProfile `json:"usage"`
	Margin   *float64            `json:"margin,omitempty"`
	Volume   domain.VolumeParams `json:"volume"`
}

// QuoteResult holds the method quotes plus the margin and volume tables.
type QuoteResult struct {
	ModelKey        string               `json:"model_key"`
	Cost            domain.Amount        `json:"cost"`
	Margin          domain.Margin        `json:"margin"`
	Quotes          []domain.Quote       `json:"quotes"`
	ConvertedQuotes []domain.Quote       `json:"converted_quotes"`
	Ladder          []domain.MarginPrice `json:"margin_ladder"`
	VolumeTotals    []domain.VolumeTotal `json:"volume_totals"`
	Rate            RateInfo             `json:"rate"`
}

// StrategyResult is the selector output and the mix it suggests. A nil
// mix means one of the picks had no candidates.
type StrategyResult struct {
	Usage          domain.UsageProfile `json:"usage"`
	QualityFloor   float64             `json:"quality_floor"`
	Picks          domain.StrategySet  `json:"picks"`
	RecommendedMix []routing.MixEntry  `json:"recommended_mix"`
}

// PlanRequest prices the three strategies for a user base. Zero values
// take the defaults.
type PlanRequest struct {
	Usage          *domain.UsageProfile `json:"usage,omitempty"`
	DAU            int                  `json:"dau"`
	TasksPerUser   int                  `json:"tasks_per_user"`
	Pattern        string               `json:"pattern,omitempty"`
	Margin         *float64             `json:"margin,omitempty"`
	LifetimeMonths int                  `json:"lifetime_months"`
}

// PlanResult is the strategy plan with the inputs it was computed from.
type PlanResult struct {
	Plan  domain.Plan      `json:"plan"`
	Input domain.PlanInput `json:"input"`
	Rate  RateInfo         `json:"rate"`
}

// BlendRequest prices a routing mix.
type BlendRequest struct {
	Mix    []routing.MixEntry  `json:"mix"`
	Usage  domain.UsageProfile `json:"usage"`
	Margin *float64            `json:"margin,omitempty"`
}

// BlendResult is the blended cost and price in both currencies.
type BlendResult struct {
	Blend routing.Blend `json:"blend"`
	Cost  domain.Amount `json:"cost"`
	Price domain.Amount `json:"price"`
	Rate  RateInfo      `json:"rate"`
}

// BudgetRequest computes a marketing budget. When MonthlyBaseCost is nil
// it is derived from the model and usage; omitted usage, model and DAU fall
// back to the session snapshot. Zero DAU and retention take the defaults.
type BudgetRequest struct {
	ModelKey           string               `json:"model_key,omitempty"`
	Usage              *domain.UsageProfile `json:"usage,omitempty"`
	MonthlyBaseCost    *float64             `json:"monthly_base_cost,omitempty"`
	TasksPerUser       int                  `json:"tasks_per_user"`
	Pattern            string               `json:"pattern,omitempty"`
	Method             domain.BillingMethod `json:"method"`
	Price              *float64             `json:"price,omitempty"`
	RetentionMonths    int                  `json:"retention_months"`
	TargetNetMarginPct float64              `json:"target_net_margin_pct"`
	DAU                int                  `json:"dau"`
}

// BudgetResult is the budget with the cost basis it used.
type BudgetResult struct {
	ModelKey        string              `json:"model_key,omitempty"`
	Usage           domain.UsageProfile `json:"usage"`
	UsageSource     string              `json:"usage_source"`
	MonthlyBaseCost float64             `json:"monthly_base_cost"`
	DAU             int                 `json:"dau"`
	Budget          marketing.Result    `json:"budget"`
	AllowableCAC    domain.Amount       `json:"allowable_cac"`
	TotalBudget     domain.Amount       `json:"total_budget"`
	Rate            RateInfo            `json:"rate"`
}

// DecideRequest asks the decision maker for pricing proposals.
type DecideRequest struct {
	Code         string `json:"code"`
	Description  string `json:"description"`
	ModelKey     string `json:"model_key,omitempty"`
	TasksPerUser int    `json:"tasks_per_user"`
}

// DecideResult wraps the decision with the rate it was converted at.
type DecideResult struct {
	Decision decision.Decision `json:"decision"`
	Rate     RateInfo          `json:"rate"`
}
