package domain

import (
	"fmt"
	"strings"
)

// ModelRecord describes a model's token prices and quality score.
// Prices are in the reference currency (USD) per one million tokens.
type ModelRecord struct {
	Key                   string   `json:"key"                                yaml:"key"`
	Name                  string   `json:"name"                               yaml:"name"`
	Provider              string   `json:"provider"                           yaml:"provider"`
	Tier                  string   `json:"tier"                               yaml:"tier"`
	InputPricePerMillion  *float64 `json:"input_price_per_million,omitempty"  yaml:"input_price_per_million"`
	OutputPricePerMillion *float64 `json:"output_price_per_million,omitempty" yaml:"output_price_per_million"`
	QualityScore          *float64 `json:"quality_score,omitempty"            yaml:"quality_score"`
	QualityModel          string   `json:"quality_model,omitempty"            yaml:"quality_model"`
}

// HasPricing reports whether both token prices are known.
func (m ModelRecord) HasPricing() bool {
	return m.InputPricePerMillion != nil && m.OutputPricePerMillion != nil
}

// HasQuality reports whether the model carries a quality score.
func (m ModelRecord) HasQuality() bool {
	return m.QualityScore != nil
}

// Quality returns the quality score, or zero when unknown.
func (m ModelRecord) Quality() float64 {
	if m.QualityScore == nil {
		return 0
	}
	return *m.QualityScore
}

// Model tiers used by the default catalog.
const (
	TierQuality  = "Quality"
	TierBalanced = "Balanced"
	TierCheapest = "Cheapest"
)

// UsageProfile is the token usage of a single request.
type UsageProfile struct {
	InputTokens  int `json:"input_tokens"  yaml:"input_tokens"`
	OutputTokens int `json:"output_tokens" yaml:"output_tokens"`
}

// Validate rejects negative token counts.
func (u UsageProfile) Validate() error {
	if u.InputTokens < 0 || u.OutputTokens < 0 {
		return fmt.Errorf("%w: token counts must be non-negative (in=%d, out=%d)",
			ErrInvalidUsage, u.InputTokens, u.OutputTokens)
	}
	return nil
}

// Scale multiplies both token counts by factor and rounds down.
func (u UsageProfile) Scale(factor float64) UsageProfile {
	return UsageProfile{
		InputTokens:  int(float64(u.InputTokens) * factor),
		OutputTokens: int(float64(u.OutputTokens) * factor),
	}
}

// BillingMethod is how a customer is charged.
type BillingMethod string

const (
	// OneTime sells a pack of requests once.
	OneTime BillingMethod = "one_time"

	// Subscription charges a monthly fee for a fixed request volume.
	Subscription BillingMethod = "subscription"

	// UsageBased charges per request.
	UsageBased BillingMethod = "usage_based"
)

// BillingMethods lists every method in display order.
func BillingMethods() []BillingMethod {
	return []BillingMethod{OneTime, Subscription, UsageBased}
}

// ParseBillingMethod accepts the canonical names plus a few common aliases.
func ParseBillingMethod(s string) (BillingMethod, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "one_time", "onetime", "one-time", "pack":
		return OneTime, nil
	case "subscription", "monthly":
		return Subscription, nil
	case "usage_based", "usage", "usage-based":
		return UsageBased, nil
	default:
		return "", fmt.Errorf("%w: %q", ErrInvalidBillingMethod, s)
	}
}

// Float returns a pointer to v, for building catalog records in code.
func Float(v float64) *float64 {
	return &v
}
