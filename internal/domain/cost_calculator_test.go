package domain_test

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/davidbz/pricelab/internal/domain"
)

func gpt4o() domain.ModelRecord {
	return domain.ModelRecord{
		Key:                   "gpt-4o",
		Name:                  "GPT-4o",
		Provider:              "OpenAI",
		Tier:                  domain.TierQuality,
		InputPricePerMillion:  domain.Float(2.50),
		OutputPricePerMillion: domain.Float(10.00),
		QualityScore:          domain.Float(1460),
	}
}

func TestCostPerRequest(t *testing.T) {
	tests := []struct {
		name         string
		model        domain.ModelRecord
		usage        domain.UsageProfile
		expectedCost float64
		expectedErr  error
	}{
		{
			name:         "calculate cost for priced model",
			model:        gpt4o(),
			usage:        domain.UsageProfile{InputTokens: 500, OutputTokens: 300},
			expectedCost: 0.00425, // 0.00125 + 0.003
		},
		{
			name:         "zero tokens returns zero cost",
			model:        gpt4o(),
			usage:        domain.UsageProfile{},
			expectedCost: 0,
		},
		{
			name:         "one million tokens each",
			model:        gpt4o(),
			usage:        domain.UsageProfile{InputTokens: 1_000_000, OutputTokens: 1_000_000},
			expectedCost: 12.50,
		},
		{
			name: "missing output price is unavailable",
			model: domain.ModelRecord{
				Key:                  "tbd",
				InputPricePerMillion: domain.Float(1),
			},
			usage:       domain.UsageProfile{InputTokens: 10, OutputTokens: 10},
			expectedErr: domain.ErrPriceUnavailable,
		},
		{
			name:        "missing both prices is unavailable",
			model:       domain.ModelRecord{Key: "tbd"},
			usage:       domain.UsageProfile{InputTokens: 10},
			expectedErr: domain.ErrPriceUnavailable,
		},
		{
			name:        "negative tokens are rejected",
			model:       gpt4o(),
			usage:       domain.UsageProfile{InputTokens: -1},
			expectedErr: domain.ErrInvalidUsage,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cost, err := domain.CostPerRequest(tt.model, tt.usage)

			if tt.expectedErr != nil {
				require.ErrorIs(t, err, tt.expectedErr)
				return
			}

			require.NoError(t, err)
			require.InDelta(t, tt.expectedCost, cost, 1e-12)
		})
	}
}

func TestCostPerRequest_Monotonic(t *testing.T) {
	model := gpt4o()
	prev := -1.0

	for tokens := 0; tokens <= 10_000; tokens += 250 {
		inCost, err := domain.CostPerRequest(model, domain.UsageProfile{InputTokens: tokens, OutputTokens: 100})
		require.NoError(t, err)
		require.GreaterOrEqual(t, inCost, prev)
		prev = inCost
	}

	prev = -1.0
	for tokens := 0; tokens <= 10_000; tokens += 250 {
		outCost, err := domain.CostPerRequest(model, domain.UsageProfile{InputTokens: 100, OutputTokens: tokens})
		require.NoError(t, err)
		require.GreaterOrEqual(t, outCost, prev)
		prev = outCost
	}
}

func TestConvertedCostPerRequest(t *testing.T) {
	usage := domain.UsageProfile{InputTokens: 500, OutputTokens: 300}

	t.Run("converts with the given rate", func(t *testing.T) {
		cost, err := domain.ConvertedCostPerRequest(gpt4o(), usage, 1350)
		require.NoError(t, err)
		require.InDelta(t, 0.00425*1350, cost, 1e-9)
	})

	t.Run("recomputes when the rate changes", func(t *testing.T) {
		holder, err := domain.NewRateHolder(1000)
		require.NoError(t, err)

		first, err := domain.ConvertedCostPerRequest(gpt4o(), usage, holder.Get())
		require.NoError(t, err)

		require.NoError(t, holder.Set(2000))
		second, err := domain.ConvertedCostPerRequest(gpt4o(), usage, holder.Get())
		require.NoError(t, err)

		require.InDelta(t, first*2, second, 1e-12)
	})

	t.Run("rejects non-positive rate", func(t *testing.T) {
		_, err := domain.ConvertedCostPerRequest(gpt4o(), usage, 0)
		require.ErrorIs(t, err, domain.ErrInvalidExchangeRate)
	})

	t.Run("unavailable price stays unavailable", func(t *testing.T) {
		_, err := domain.ConvertedCostPerRequest(domain.ModelRecord{Key: "tbd"}, usage, 1350)
		require.ErrorIs(t, err, domain.ErrPriceUnavailable)
	})
}

func TestProjectUsage(t *testing.T) {
	usage := domain.UsageProfile{InputTokens: 500, OutputTokens: 300}

	t.Run("projects monthly cost for a user base", func(t *testing.T) {
		projection, err := domain.ProjectUsage(gpt4o(), usage, domain.UsageVolume{
			DAU:          1000,
			TasksPerUser: 10,
		})
		require.NoError(t, err)

		require.InDelta(t, 0.00425, projection.PerRequest, 1e-12)
		require.InDelta(t, 0.0425, projection.PerUserDaily, 1e-12)
		require.InDelta(t, 1.275, projection.PerUserMonthly, 1e-9)
		require.InDelta(t, 1275.0, projection.TotalMonthly, 1e-6)
		require.Equal(t, 300_000, projection.MonthlyRequests)
	})

	t.Run("pattern multiplier scales token cost", func(t *testing.T) {
		projection, err := domain.ProjectUsage(gpt4o(), usage, domain.UsageVolume{
			DAU:               1,
			TasksPerUser:      1,
			DaysPerMonth:      1,
			PatternMultiplier: 1.3,
		})
		require.NoError(t, err)
		require.InDelta(t, 0.00425*1.3, projection.ScaledPerRequest, 1e-12)
		require.InDelta(t, 0.00425*1.3, projection.TotalMonthly, 1e-12)
	})

	t.Run("zero dau is rejected", func(t *testing.T) {
		_, err := domain.ProjectUsage(gpt4o(), usage, domain.UsageVolume{})
		require.ErrorIs(t, err, domain.ErrInvalidUsage)
	})
}

func TestCostTable(t *testing.T) {
	models := []domain.ModelRecord{gpt4o(), {Key: "tbd", Name: "Unpriced"}}
	presets := map[string]domain.UsageProfile{
		"small":  {InputTokens: 200, OutputTokens: 100},
		"medium": {InputTokens: 500, OutputTokens: 300},
	}

	rows, err := domain.CostTable(models, presets, 1000)
	require.NoError(t, err)
	require.Len(t, rows, 2)

	require.Equal(t, "gpt-4o", rows[0].Model.Key)
	require.NotNil(t, rows[0].Costs["medium"])
	require.InDelta(t, 0.00425, rows[0].Costs["medium"].Source, 1e-12)
	require.InDelta(t, 4.25, rows[0].Costs["medium"].Converted, 1e-9)

	require.Contains(t, rows[1].Costs, "small")
	require.Nil(t, rows[1].Costs["small"])
}

func TestRateHolder(t *testing.T) {
	holder, err := domain.NewRateHolder(1350)
	require.NoError(t, err)
	require.InDelta(t, 1350.0, float64(holder.Get()), 0)

	require.NoError(t, holder.Set(1400))
	require.InDelta(t, 1400.0, float64(holder.Get()), 0)

	require.ErrorIs(t, holder.Set(-1), domain.ErrInvalidExchangeRate)
	require.InDelta(t, 1400.0, float64(holder.Get()), 0)

	require.InDelta(t, 1350.0, float64(holder.Reset()), 0)

	_, err = domain.NewRateHolder(0)
	require.ErrorIs(t, err, domain.ErrInvalidExchangeRate)
}
