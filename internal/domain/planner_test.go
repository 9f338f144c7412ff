package domain_test

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/davidbz/pricelab/internal/domain"
)

func TestPlanStrategies(t *testing.T) {
	models := []domain.ModelRecord{
		model("premium", 3.00, 15.00, domain.Float(1470)),
		model("budget", 0.14, 0.28, domain.Float(1455)),
		model("tiny", 0.075, 0.30, domain.Float(1400)),
	}
	selector := domain.NewSelector(domain.DefaultQualityFloor)

	input := domain.PlanInput{
		Usage: domain.UsageProfile{InputTokens: 500, OutputTokens: 300},
		Volume: domain.UsageVolume{
			DAU:               1000,
			TasksPerUser:      10,
			PatternMultiplier: 1.3,
		},
		Margin:         0.7,
		LifetimeMonths: 12,
	}

	t.Run("prices each strategy", func(t *testing.T) {
		plan, err := domain.PlanStrategies(models, selector, input, domain.DefaultPlanPolicy())
		require.NoError(t, err)

		require.Equal(t, "tiny", plan.Cheapest.Model.Key)
		require.Equal(t, "budget", plan.Balanced.Model.Key)
		require.Equal(t, "premium", plan.Quality.Model.Key)
		require.Equal(t, domain.StrategyBalanced, plan.RecommendedStrategy)
		require.Equal(t, domain.Subscription, plan.RecommendedMethod)
		require.InDelta(t, 1.3, plan.PatternMultiplier, 0)

		premium := plan.Quality
		perRequest := 0.006
		costPerUser := perRequest * 1.3 * 10 * 30

		require.InDelta(t, perRequest, premium.CostPerRequest, 1e-12)
		require.InDelta(t, costPerUser, premium.CostPerUser, 1e-9)
		require.InDelta(t, costPerUser*1000, premium.TotalMonthlyCost, 1e-6)
		require.InDelta(t, costPerUser/0.3, premium.Prices.Subscription, 1e-9)
		require.InDelta(t, costPerUser*12*1.2/0.3, premium.Prices.OneTime, 1e-9)
		require.InDelta(t, perRequest*1000/0.3, premium.Prices.UsageBased, 1e-9)

		price, err := premium.Prices.For(domain.Subscription)
		require.NoError(t, err)
		require.InDelta(t, premium.Prices.Subscription, price, 0)
	})

	t.Run("missing quality scores leave strategies empty", func(t *testing.T) {
		unscored := []domain.ModelRecord{model("a", 1, 1, nil)}

		plan, err := domain.PlanStrategies(unscored, selector, input, domain.DefaultPlanPolicy())
		require.NoError(t, err)
		require.NotNil(t, plan.Cheapest)
		require.Nil(t, plan.Balanced)
		require.Nil(t, plan.Quality)

		_, getErr := plan.Get(domain.StrategyQuality)
		require.ErrorIs(t, getErr, domain.ErrEmptyCandidatePool)
	})

	t.Run("invalid margin is rejected", func(t *testing.T) {
		bad := input
		bad.Margin = 1
		_, err := domain.PlanStrategies(models, selector, bad, domain.DefaultPlanPolicy())
		require.ErrorIs(t, err, domain.ErrInvalidMargin)
	})

	t.Run("zero dau is rejected", func(t *testing.T) {
		bad := input
		bad.Volume.DAU = 0
		_, err := domain.PlanStrategies(models, selector, bad, domain.DefaultPlanPolicy())
		require.ErrorIs(t, err, domain.ErrInvalidUsage)
	})
}
