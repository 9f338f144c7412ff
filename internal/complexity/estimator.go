package complexity

import (
	"errors"
	"fmt"
	"strings"

	"github.com/davidbz/pricelab/internal/domain"
)

// Tier is the estimated logic complexity of a product.
type Tier string

const (
	TierHigh Tier = "High"
	TierMid  Tier = "Mid"
	TierLow  Tier = "Low"
)

// Rule maps a keyword set to a tier and its token defaults.
type Rule struct {
	Tier         Tier     `json:"tier"          yaml:"tier"`
	UsageType    string   `json:"usage_type"    yaml:"usage_type"`
	Keywords     []string `json:"keywords"      yaml:"keywords"`
	InputTokens  int      `json:"input_tokens"  yaml:"input_tokens"`
	OutputTokens int      `json:"output_tokens" yaml:"output_tokens"`
}

// Rules is an ordered rule table plus the fallback used when nothing matches.
type Rules struct {
	Ordered  []Rule `json:"rules"    yaml:"rules"`
	Fallback Rule   `json:"fallback" yaml:"fallback"`
}

// DefaultRules returns the stock keyword table.
func DefaultRules() Rules {
	return Rules{
		Ordered: []Rule{
			{
				Tier:         TierHigh,
				UsageType:    "heavy",
				Keywords:     []string{"image", "video", "analyze", "vision"},
				InputTokens:  15000,
				OutputTokens: 5000,
			},
			{
				Tier:         TierMid,
				UsageType:    "moderate",
				Keywords:     []string{"stream", "chat", "conversation"},
				InputTokens:  8000,
				OutputTokens: 3000,
			},
		},
		Fallback: Rule{
			Tier:         TierLow,
			UsageType:    "simple",
			InputTokens:  3000,
			OutputTokens: 1000,
		},
	}
}

// Validate checks that token defaults are non-negative and every rule has
// at least one keyword.
func (r Rules) Validate() error {
	for i, rule := range append(append([]Rule{}, r.Ordered...), r.Fallback) {
		if rule.Tier == "" {
			return fmt.Errorf("rule %d: tier cannot be empty", i)
		}
		if rule.InputTokens < 0 || rule.OutputTokens < 0 {
			return fmt.Errorf("rule %d: token defaults must be non-negative", i)
		}
		if i < len(r.Ordered) && len(rule.Keywords) == 0 {
			return fmt.Errorf("rule %d: keywords cannot be empty", i)
		}
	}
	return nil
}

// Estimate is the estimator output.
type Estimate struct {
	Tier           Tier                `json:"tier"`
	UsageType      string              `json:"usage_type"`
	Usage          domain.UsageProfile `json:"usage"`
	MatchedKeyword string              `json:"matched_keyword,omitempty"`
}

// Estimator maps free text to a usage profile.
type Estimator struct {
	rules Rules
}

// NewEstimator creates an estimator over rules. Keywords are matched
// case-insensitively.
func NewEstimator(rules Rules) (*Estimator, error) {
	if err := rules.Validate(); err != nil {
		return nil, fmt.Errorf("invalid complexity rules: %w", err)
	}

	lowered := Rules{Fallback: rules.Fallback, Ordered: make([]Rule, len(rules.Ordered))}
	for i, rule := range rules.Ordered {
		keywords := make([]string, 0, len(rule.Keywords))
		for _, kw := range rule.Keywords {
			if kw = strings.ToLower(strings.TrimSpace(kw)); kw != "" {
				keywords = append(keywords, kw)
			}
		}
		if len(keywords) == 0 {
			return nil, errors.New("rule keywords cannot be blank")
		}
		rule.Keywords = keywords
		lowered.Ordered[i] = rule
	}

	return &Estimator{rules: lowered}, nil
}

// Estimate concatenates texts and returns the first rule with a keyword
// present, or the fallback.
func (e *Estimator) Estimate(texts ...string) Estimate {
	combined := strings.ToLower(strings.Join(texts, " "))

	for _, rule := range e.rules.Ordered {
		for _, kw := range rule.Keywords {
			if strings.Contains(combined, kw) {
				return newEstimate(rule, kw)
			}
		}
	}

	return newEstimate(e.rules.Fallback, "")
}

func newEstimate(rule Rule, keyword string) Estimate {
	return Estimate{
		Tier:      rule.Tier,
		UsageType: rule.UsageType,
		Usage: domain.UsageProfile{
			InputTokens:  rule.InputTokens,
			OutputTokens: rule.OutputTokens,
		},
		MatchedKeyword: keyword,
	}
}
