package domain_test

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/davidbz/pricelab/internal/domain"
)

func model(key string, in, out float64, quality *float64) domain.ModelRecord {
	return domain.ModelRecord{
		Key:                   key,
		Name:                  key,
		InputPricePerMillion:  domain.Float(in),
		OutputPricePerMillion: domain.Float(out),
		QualityScore:          quality,
	}
}

func TestSelector_Select(t *testing.T) {
	usage := domain.UsageProfile{InputTokens: 500, OutputTokens: 300}
	selector := domain.NewSelector(domain.DefaultQualityFloor)

	t.Run("picks cheapest, best quality and best value", func(t *testing.T) {
		models := []domain.ModelRecord{
			model("premium", 3.00, 15.00, domain.Float(1470)),
			model("mid", 2.50, 10.00, domain.Float(1460)),
			model("budget", 0.14, 0.28, domain.Float(1455)),
			model("tiny", 0.075, 0.30, domain.Float(1400)),
		}

		set, err := selector.Select(models, usage)
		require.NoError(t, err)

		require.Equal(t, "tiny", set.Cheapest.Model.Key)
		require.Equal(t, "premium", set.BestQuality.Model.Key)
		// tiny has the best raw ratio but sits under the floor.
		require.Equal(t, "budget", set.BestValue.Model.Key)
		require.InDelta(t, 1455/set.BestValue.Cost, set.BestValue.ValueScore, 1e-6)
	})

	t.Run("falls back to every scored model when none clears the floor", func(t *testing.T) {
		models := []domain.ModelRecord{
			model("a", 1, 1, domain.Float(1000)),
			model("b", 0.1, 0.1, domain.Float(900)),
		}

		set, err := selector.Select(models, usage)
		require.NoError(t, err)
		require.Equal(t, "b", set.BestValue.Model.Key)
	})

	t.Run("ties go to the first model", func(t *testing.T) {
		models := []domain.ModelRecord{
			model("first", 1, 1, domain.Float(1500)),
			model("second", 1, 1, domain.Float(1500)),
		}

		set, err := selector.Select(models, usage)
		require.NoError(t, err)
		require.Equal(t, "first", set.Cheapest.Model.Key)
		require.Equal(t, "first", set.BestQuality.Model.Key)
		require.Equal(t, "first", set.BestValue.Model.Key)
	})

	t.Run("skips models with unknown pricing", func(t *testing.T) {
		models := []domain.ModelRecord{
			{Key: "unpriced", QualityScore: domain.Float(2000)},
			model("priced", 1, 1, domain.Float(1500)),
		}

		set, err := selector.Select(models, usage)
		require.NoError(t, err)
		require.Equal(t, "priced", set.Cheapest.Model.Key)
		require.Equal(t, "priced", set.BestQuality.Model.Key)
	})

	t.Run("no quality scores leaves quality picks empty", func(t *testing.T) {
		models := []domain.ModelRecord{
			model("a", 1, 1, nil),
			model("b", 0.5, 0.5, nil),
		}

		set, err := selector.Select(models, usage)
		require.NoError(t, err)
		require.NotNil(t, set.Cheapest)
		require.Equal(t, "b", set.Cheapest.Model.Key)
		require.Nil(t, set.BestQuality)
		require.Nil(t, set.BestValue)

		_, pickErr := set.Pick(domain.StrategyQuality)
		require.ErrorIs(t, pickErr, domain.ErrEmptyCandidatePool)
	})

	t.Run("empty catalog returns all nil", func(t *testing.T) {
		set, err := selector.Select(nil, usage)
		require.NoError(t, err)
		require.Nil(t, set.Cheapest)
		require.Nil(t, set.BestQuality)
		require.Nil(t, set.BestValue)
	})

	t.Run("free model wins best value", func(t *testing.T) {
		models := []domain.ModelRecord{
			model("paid", 1, 1, domain.Float(1500)),
			model("free", 0, 0, domain.Float(1450)),
		}

		set, err := selector.Select(models, usage)
		require.NoError(t, err)
		require.Equal(t, "free", set.BestValue.Model.Key)
	})

	t.Run("negative usage is rejected", func(t *testing.T) {
		_, err := selector.Select(nil, domain.UsageProfile{OutputTokens: -3})
		require.ErrorIs(t, err, domain.ErrInvalidUsage)
	})
}

func TestStrategySet_Pick(t *testing.T) {
	cheap := &domain.ScoredModel{Model: domain.ModelRecord{Key: "c"}}
	set := domain.StrategySet{Cheapest: cheap}

	pick, err := set.Pick(domain.StrategyCheapest)
	require.NoError(t, err)
	require.Same(t, cheap, pick)

	_, err = set.Pick(domain.StrategyBalanced)
	require.ErrorIs(t, err, domain.ErrEmptyCandidatePool)

	_, err = set.Pick("unknown")
	require.Error(t, err)
}
