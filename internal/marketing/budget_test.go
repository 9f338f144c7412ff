package marketing_test

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/davidbz/pricelab/internal/domain"
	"github.com/davidbz/pricelab/internal/marketing"
)

func price(v float64) *float64 {
	return &v
}

func newCalculator(t *testing.T) *marketing.Calculator {
	t.Helper()

	calc, err := marketing.NewCalculator(marketing.DefaultPolicy())
	require.NoError(t, err)
	return calc
}

func TestCalculator_Budget_Subscription(t *testing.T) {
	calc := newCalculator(t)

	res, err := calc.Budget(marketing.Input{
		MonthlyBaseCost:    10,
		Method:             domain.Subscription,
		Price:              price(50),
		RetentionMonths:    6,
		TargetNetMarginPct: 20,
		DAU:                1000,
	})
	require.NoError(t, err)

	require.Len(t, res.Lifecycle, 4)
	require.InDelta(t, 15.0, res.Lifecycle[0].Cost, 1e-9)
	require.InDelta(t, 35.0, res.Lifecycle[0].Profit, 1e-9)

	require.InDelta(t, 10.5, res.AvgMonthlyCost, 1e-9)
	require.InDelta(t, 50.0, res.AvgMonthlyRevenue, 1e-9)
	require.InDelta(t, 39.5, res.AvgMonthlyGrossProfit, 1e-9)
	require.Equal(t, 6, res.EffectiveMonths)
	require.InDelta(t, 300.0, res.LTV, 1e-9)
	require.InDelta(t, 63.0, res.TotalAPICostLTV, 1e-9)
	require.InDelta(t, 237.0, res.GrossProfitLTV, 1e-9)
	require.InDelta(t, 60.0, res.TargetNetProfitLTV, 1e-9)
	require.InDelta(t, 177.0, res.AllowableCAC, 1e-9)
	require.NotNil(t, res.PaybackMonths)
	require.InDelta(t, 177/39.5, *res.PaybackMonths, 1e-9)
	require.False(t, res.PaybackUnbounded)
	require.InDelta(t, 177_000.0, res.TotalBudget, 1e-6)
	require.False(t, res.PriceSuggested)

	require.Len(t, res.Channels, 2)
	require.Equal(t, "Google Search", res.Channels[0].Name)
}

func TestCalculator_Budget_OneTime(t *testing.T) {
	calc := newCalculator(t)

	res, err := calc.Budget(marketing.Input{
		MonthlyBaseCost:    10,
		Method:             domain.OneTime,
		Price:              price(100),
		RetentionMonths:    6,
		TargetNetMarginPct: 20,
		DAU:                1000,
	})
	require.NoError(t, err)

	// One payment, but API cost runs for a year.
	require.Equal(t, 1, res.EffectiveMonths)
	require.InDelta(t, 100.0, res.LTV, 1e-9)
	require.InDelta(t, 126.0, res.TotalAPICostLTV, 1e-9)
	require.InDelta(t, -26.0, res.GrossProfitLTV, 1e-9)
	require.InDelta(t, 0.0, res.AllowableCAC, 0)
	require.NotNil(t, res.PaybackMonths)
	require.InDelta(t, 0.0, *res.PaybackMonths, 0)
	require.InDelta(t, 0.0, res.TotalBudget, 0)
	require.Equal(t, "N/A", res.Channels[0].Name)
}

func TestCalculator_Budget_UsageBased(t *testing.T) {
	calc := newCalculator(t)

	res, err := calc.Budget(marketing.Input{
		MonthlyBaseCost:    10,
		Method:             domain.UsageBased,
		Price:              price(100),
		RetentionMonths:    6,
		TargetNetMarginPct: 20,
		DAU:                10,
	})
	require.NoError(t, err)

	require.InDelta(t, 21.0, res.AvgMonthlyRevenue, 1e-9)
	require.InDelta(t, 126.0, res.LTV, 1e-9)
	require.InDelta(t, 37.8, res.AllowableCAC, 1e-9)
	require.InDelta(t, 3.6, *res.PaybackMonths, 1e-9)
	require.InDelta(t, 378.0, res.TotalBudget, 1e-6)
	require.Equal(t, "Google Search", res.Channels[0].Name)

	// A higher net target leaves 63 - 0.3*126 = 25.2, under the 30 threshold.
	res, err = calc.Budget(marketing.Input{
		MonthlyBaseCost:    10,
		Method:             domain.UsageBased,
		Price:              price(100),
		RetentionMonths:    6,
		TargetNetMarginPct: 30,
		DAU:                10,
	})
	require.NoError(t, err)
	require.InDelta(t, 25.2, res.AllowableCAC, 1e-9)
	require.Equal(t, "X / Threads", res.Channels[0].Name)
}

func TestCalculator_Budget_NeverNegativeCAC(t *testing.T) {
	calc := newCalculator(t)

	for _, method := range domain.BillingMethods() {
		for _, p := range []float64{0, 1, 5, 50} {
			for _, target := range []float64{0, 50, 100} {
				res, err := calc.Budget(marketing.Input{
					MonthlyBaseCost:    20,
					Method:             method,
					Price:              price(p),
					RetentionMonths:    3,
					TargetNetMarginPct: target,
					DAU:                100,
				})
				require.NoError(t, err)
				require.GreaterOrEqual(t, res.AllowableCAC, 0.0)
				require.GreaterOrEqual(t, res.TotalBudget, 0.0)
				if res.PaybackMonths != nil {
					require.GreaterOrEqual(t, *res.PaybackMonths, 0.0)
				}
			}
		}
	}
}

func TestCalculator_Budget_UnboundedPayback(t *testing.T) {
	policy := marketing.DefaultPolicy()
	policy.PaybackCapMonths = 10

	calc, err := marketing.NewCalculator(policy)
	require.NoError(t, err)

	// Monthly gross profit 0.1 against an allowable CAC of 2.4.
	res, err := calc.Budget(marketing.Input{
		MonthlyBaseCost:    10,
		Method:             domain.Subscription,
		Price:              price(10.6),
		RetentionMonths:    24,
		TargetNetMarginPct: 0,
		DAU:                1,
	})
	require.NoError(t, err)
	require.InDelta(t, 2.4, res.AllowableCAC, 1e-6)
	require.True(t, res.PaybackUnbounded)
	require.Nil(t, res.PaybackMonths)
}

func TestCalculator_SuggestedPrice(t *testing.T) {
	calc := newCalculator(t)

	tests := []struct {
		method   domain.BillingMethod
		expected float64
	}{
		{method: domain.OneTime, expected: 51},     // ceil(1.05 * 12 * 4)
		{method: domain.Subscription, expected: 4}, // ceil(1.05 / 0.3)
		{method: domain.UsageBased, expected: 100},
	}

	for _, tt := range tests {
		t.Run(string(tt.method), func(t *testing.T) {
			res, err := calc.Budget(marketing.Input{
				MonthlyBaseCost:    1,
				Method:             tt.method,
				RetentionMonths:    6,
				TargetNetMarginPct: 20,
				DAU:                1,
			})
			require.NoError(t, err)
			require.True(t, res.PriceSuggested)
			require.InDelta(t, tt.expected, res.Price, 0)
		})
	}
}

func TestCalculator_Budget_Validation(t *testing.T) {
	calc := newCalculator(t)

	tests := []struct {
		name        string
		input       marketing.Input
		expectedErr error
	}{
		{
			name:        "unknown method",
			input:       marketing.Input{Method: "barter", RetentionMonths: 1},
			expectedErr: domain.ErrInvalidBillingMethod,
		},
		{
			name:        "zero retention for subscription",
			input:       marketing.Input{Method: domain.Subscription},
			expectedErr: marketing.ErrInvalidRetention,
		},
		{
			name:        "target margin above 100",
			input:       marketing.Input{Method: domain.OneTime, TargetNetMarginPct: 120},
			expectedErr: marketing.ErrInvalidTargetMargin,
		},
		{
			name:        "negative base cost",
			input:       marketing.Input{Method: domain.OneTime, MonthlyBaseCost: -1},
			expectedErr: marketing.ErrInvalidCostBasis,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := calc.Budget(tt.input)
			require.ErrorIs(t, err, tt.expectedErr)
		})
	}
}

func TestChannelTable_Lookup(t *testing.T) {
	table := marketing.DefaultChannelTable()

	tests := []struct {
		cac      float64
		expected string
	}{
		{cac: -1, expected: "N/A"},
		{cac: 0, expected: "N/A"},
		{cac: 0.01, expected: "SEO & Content"},
		{cac: 4.99, expected: "SEO & Content"},
		{cac: 5, expected: "X / Threads"},
		{cac: 29.99, expected: "X / Threads"},
		{cac: 30, expected: "Google Search"},
		{cac: 30.01, expected: "Google Search"},
		{cac: 5000, expected: "Google Search"},
	}

	for _, tt := range tests {
		t.Run(fmt.Sprintf("cac %v", tt.cac), func(t *testing.T) {
			channels := table.Lookup(tt.cac)
			require.NotEmpty(t, channels)
			require.Equal(t, tt.expected, channels[0].Name)
		})
	}

	require.Nil(t, marketing.ChannelTable{}.Lookup(10))
}

func TestNewCalculator_InvalidPolicy(t *testing.T) {
	policy := marketing.DefaultPolicy()
	policy.Curve = nil

	_, err := marketing.NewCalculator(policy)
	require.Error(t, err)

	policy = marketing.DefaultPolicy()
	policy.Suggestion.SubscriptionMargin = 1

	_, err = marketing.NewCalculator(policy)
	require.ErrorIs(t, err, domain.ErrInvalidMargin)
}
