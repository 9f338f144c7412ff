package complexity_test

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/davidbz/pricelab/internal/complexity"
)

func TestEstimator_Estimate(t *testing.T) {
	estimator, err := complexity.NewEstimator(complexity.DefaultRules())
	require.NoError(t, err)

	tests := []struct {
		name         string
		texts        []string
		tier         complexity.Tier
		usageType    string
		inputTokens  int
		outputTokens int
	}{
		{
			name:         "image analysis is high",
			texts:        []string{"analyze this image"},
			tier:         complexity.TierHigh,
			usageType:    "heavy",
			inputTokens:  15000,
			outputTokens: 5000,
		},
		{
			name:         "matching is case-insensitive",
			texts:        []string{"Upload a VIDEO clip"},
			tier:         complexity.TierHigh,
			usageType:    "heavy",
			inputTokens:  15000,
			outputTokens: 5000,
		},
		{
			name:         "chat is mid",
			texts:        []string{"a customer support chat bot"},
			tier:         complexity.TierMid,
			usageType:    "moderate",
			inputTokens:  8000,
			outputTokens: 3000,
		},
		{
			name:         "high wins over mid",
			texts:        []string{"chat about an image"},
			tier:         complexity.TierHigh,
			usageType:    "heavy",
			inputTokens:  15000,
			outputTokens: 5000,
		},
		{
			name:         "code and plan are concatenated",
			texts:        []string{"func main() {}", "streaming conversation"},
			tier:         complexity.TierMid,
			usageType:    "moderate",
			inputTokens:  8000,
			outputTokens: 3000,
		},
		{
			name:         "no keyword is low",
			texts:        []string{"summarize a todo list"},
			tier:         complexity.TierLow,
			usageType:    "simple",
			inputTokens:  3000,
			outputTokens: 1000,
		},
		{
			name:         "empty input is low",
			texts:        nil,
			tier:         complexity.TierLow,
			usageType:    "simple",
			inputTokens:  3000,
			outputTokens: 1000,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			estimate := estimator.Estimate(tt.texts...)

			require.Equal(t, tt.tier, estimate.Tier)
			require.Equal(t, tt.usageType, estimate.UsageType)
			require.Equal(t, tt.inputTokens, estimate.Usage.InputTokens)
			require.Equal(t, tt.outputTokens, estimate.Usage.OutputTokens)
		})
	}
}

func TestEstimator_CustomRules(t *testing.T) {
	rules := complexity.Rules{
		Ordered: []complexity.Rule{
			{Tier: complexity.TierHigh, Keywords: []string{"  Bild "}, InputTokens: 100, OutputTokens: 50},
		},
		Fallback: complexity.Rule{Tier: complexity.TierLow, InputTokens: 1, OutputTokens: 1},
	}

	estimator, err := complexity.NewEstimator(rules)
	require.NoError(t, err)

	estimate := estimator.Estimate("ein bild analysieren")
	require.Equal(t, complexity.TierHigh, estimate.Tier)
	require.Equal(t, "bild", estimate.MatchedKeyword)
	require.Equal(t, 100, estimate.Usage.InputTokens)

	// Default keywords no longer apply.
	estimate = estimator.Estimate("analyze this image")
	require.Equal(t, complexity.TierLow, estimate.Tier)
	require.Empty(t, estimate.MatchedKeyword)
}

func TestNewEstimator_InvalidRules(t *testing.T) {
	tests := []struct {
		name  string
		rules complexity.Rules
	}{
		{
			name: "rule without keywords",
			rules: complexity.Rules{
				Ordered:  []complexity.Rule{{Tier: complexity.TierHigh}},
				Fallback: complexity.Rule{Tier: complexity.TierLow},
			},
		},
		{
			name: "blank keywords",
			rules: complexity.Rules{
				Ordered:  []complexity.Rule{{Tier: complexity.TierHigh, Keywords: []string{" "}}},
				Fallback: complexity.Rule{Tier: complexity.TierLow},
			},
		},
		{
			name: "negative tokens",
			rules: complexity.Rules{
				Fallback: complexity.Rule{Tier: complexity.TierLow, InputTokens: -1},
			},
		},
		{
			name:  "fallback without tier",
			rules: complexity.Rules{},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := complexity.NewEstimator(tt.rules)
			require.Error(t, err)
		})
	}
}
