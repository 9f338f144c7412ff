package main

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/davidbz/pricelab/internal/cache/redis"
	"github.com/davidbz/pricelab/internal/catalog"
	"github.com/davidbz/pricelab/internal/config"
	"github.com/davidbz/pricelab/internal/domain"
	"github.com/davidbz/pricelab/internal/observability"
	"github.com/davidbz/pricelab/internal/simulator"
)

// globalFlags are shared by every subcommand.
type globalFlags struct {
	catalogPath string
	policyPath  string
	rate        float64
	session     string
	verbose     bool
}

func rootCmd() *cobra.Command {
	flags := &globalFlags{}

	cmd := &cobra.Command{
		Use:   "pricectl",
		Short: "Price AI features from the command line",
		Long: `pricectl costs models, selects routing strategies, blends mixes,
computes marketing budgets and proposes billing methods. Every command
prints JSON.`,
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	cmd.PersistentFlags().StringVar(&flags.catalogPath, "catalog", "", "catalog YAML file (default: embedded catalog)")
	cmd.PersistentFlags().StringVar(&flags.policyPath, "policy", "", "policy YAML file overlaid on the embedded policy")
	cmd.PersistentFlags().Float64Var(&flags.rate, "rate", 0, "exchange rate (default: PRICING_EXCHANGE_RATE)")
	cmd.PersistentFlags().StringVar(&flags.session, "session", simulator.DefaultSession, "session whose stored results are used")
	cmd.PersistentFlags().BoolVar(&flags.verbose, "verbose", false, "log to stderr")

	cmd.AddCommand(modelsCmd(flags))
	cmd.AddCommand(costCmd(flags))
	cmd.AddCommand(quoteCmd(flags))
	cmd.AddCommand(strategiesCmd(flags))
	cmd.AddCommand(planCmd(flags))
	cmd.AddCommand(blendCmd(flags))
	cmd.AddCommand(budgetCmd(flags))
	cmd.AddCommand(estimateCmd(flags))
	cmd.AddCommand(decideCmd(flags))

	return cmd
}

// newService builds the simulator from the environment and flags and
// returns a context carrying the session.
func newService(flags *globalFlags) (context.Context, *simulator.Service, error) {
	cfg := config.Load()

	if flags.verbose {
		if _, err := observability.InitLogger(&config.LogConfig{Level: "debug", Format: "console"}); err != nil {
			return nil, nil, err
		}
	} else {
		observability.SetLogger(zap.NewNop())
	}
	if flags.catalogPath != "" {
		cfg.Pricing.CatalogFile = flags.catalogPath
	}
	if flags.policyPath != "" {
		cfg.Pricing.PolicyFile = flags.policyPath
	}
	if flags.rate != 0 {
		cfg.Pricing.ExchangeRate = flags.rate
	}

	cat, err := catalog.Load(cfg.Pricing.CatalogFile)
	if err != nil {
		return nil, nil, err
	}

	policy, err := config.LoadPolicy(cfg.Pricing.PolicyFile)
	if err != nil {
		return nil, nil, err
	}

	rates, err := domain.NewRateHolder(domain.ExchangeRate(cfg.Pricing.ExchangeRate))
	if err != nil {
		return nil, nil, err
	}

	var store simulator.ResultStore = simulator.NewMemoryStore()
	if cfg.Redis.Enabled {
		store = redis.NewResultStore(redis.NewClient(&cfg.Redis), time.Duration(cfg.Redis.ResultTTL)*time.Second)
	}

	svc, err := simulator.NewService(cat, rates, policy, &cfg.Pricing, store)
	if err != nil {
		return nil, nil, err
	}

	session := flags.session
	if session == "" {
		session = simulator.DefaultSession
	}
	return observability.WithSessionID(context.Background(), session), svc, nil
}

func printJSON(cmd *cobra.Command, v any) error {
	enc := json.NewEncoder(cmd.OutOrStdout())
	enc.SetIndent("", "  ")
	if err := enc.Encode(v); err != nil {
		return fmt.Errorf("failed to encode output: %w", err)
	}
	return nil
}
