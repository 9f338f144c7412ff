package main

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"github.com/davidbz/pricelab/internal/domain"
	"github.com/davidbz/pricelab/internal/routing"
	"github.com/davidbz/pricelab/internal/simulator"
)

func addUsageFlags(cmd *cobra.Command) {
	cmd.Flags().Int("input", 500, "input tokens per request")
	cmd.Flags().Int("output", 300, "output tokens per request")
}

func usageFrom(cmd *cobra.Command) domain.UsageProfile {
	in, _ := cmd.Flags().GetInt("input")
	out, _ := cmd.Flags().GetInt("output")
	return domain.UsageProfile{InputTokens: in, OutputTokens: out}
}

// optionalFloat returns nil unless the flag was set explicitly.
func optionalFloat(cmd *cobra.Command, name string) *float64 {
	if !cmd.Flags().Changed(name) {
		return nil
	}
	v, _ := cmd.Flags().GetFloat64(name)
	return &v
}

func modelsCmd(flags *globalFlags) *cobra.Command {
	return &cobra.Command{
		Use:   "models",
		Short: "List the model catalog",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx, svc, err := newService(flags)
			if err != nil {
				return err
			}
			return printJSON(cmd, svc.Models(ctx))
		},
	}
}

func costCmd(flags *globalFlags) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "cost [model]",
		Short: "Cost one request, or a month of traffic with --dau",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, svc, err := newService(flags)
			if err != nil {
				return err
			}

			req := simulator.CostRequest{Usage: usageFrom(cmd)}
			if len(args) == 1 {
				req.ModelKey = args[0]
			}
			if dau, _ := cmd.Flags().GetInt("dau"); dau > 0 {
				tasks, _ := cmd.Flags().GetInt("tasks")
				req.Volume = &domain.UsageVolume{DAU: dau, TasksPerUser: tasks}
				req.Pattern, _ = cmd.Flags().GetString("pattern")
			}

			res, err := svc.Cost(ctx, req)
			if err != nil {
				return err
			}
			return printJSON(cmd, res)
		},
	}
	addUsageFlags(cmd)
	cmd.Flags().Int("dau", 0, "daily active users; enables the monthly projection")
	cmd.Flags().Int("tasks", 10, "tasks per user per day")
	cmd.Flags().String("pattern", "", "usage pattern from the policy (e.g. heavy_start, steady)")
	return cmd
}

func quoteCmd(flags *globalFlags) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "quote [model]",
		Short: "Quote one-time, subscription and usage prices at a margin",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, svc, err := newService(flags)
			if err != nil {
				return err
			}

			req := simulator.QuoteRequest{
				Usage:  usageFrom(cmd),
				Margin: optionalFloat(cmd, "margin"),
			}
			if len(args) == 1 {
				req.ModelKey = args[0]
			}
			req.Volume.PackSize, _ = cmd.Flags().GetInt("pack-size")
			req.Volume.MonthlyVolume, _ = cmd.Flags().GetInt("monthly-volume")
			req.Volume.UsageVolume, _ = cmd.Flags().GetInt("usage-volume")

			res, err := svc.Quote(ctx, req)
			if err != nil {
				return err
			}
			return printJSON(cmd, res)
		},
	}
	addUsageFlags(cmd)
	cmd.Flags().Float64("margin", 0, "margin in [0, 1) (default: PRICING_DEFAULT_MARGIN)")
	cmd.Flags().Int("pack-size", 0, "requests per one-time pack (default: 100)")
	cmd.Flags().Int("monthly-volume", 0, "requests included per subscription month (default: 1000)")
	cmd.Flags().Int("usage-volume", 0, "requests billed for the usage-based revenue")
	return cmd
}

func planCmd(flags *globalFlags) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "plan",
		Short: "Plan the cheapest, balanced and quality strategies for a traffic volume",
		Long: `Plan the three model strategies for a daily audience. Omitted tokens fall
back to the session's last estimate, then to the medium token size.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx, svc, err := newService(flags)
			if err != nil {
				return err
			}

			req := simulator.PlanRequest{Margin: optionalFloat(cmd, "margin")}
			req.DAU, _ = cmd.Flags().GetInt("dau")
			req.TasksPerUser, _ = cmd.Flags().GetInt("tasks")
			req.Pattern, _ = cmd.Flags().GetString("pattern")
			req.LifetimeMonths, _ = cmd.Flags().GetInt("lifetime")

			if cmd.Flags().Changed("input") || cmd.Flags().Changed("output") {
				usage := usageFrom(cmd)
				req.Usage = &usage
			}

			res, err := svc.Plan(ctx, req)
			if err != nil {
				return err
			}
			return printJSON(cmd, res)
		},
	}
	addUsageFlags(cmd)
	cmd.Flags().Int("dau", 0, "daily active users (default: 1000)")
	cmd.Flags().Int("tasks", 0, "tasks per user per day (default: policy)")
	cmd.Flags().String("pattern", "", "usage pattern from the policy (e.g. heavy_start, steady)")
	cmd.Flags().Float64("margin", 0, "margin in [0, 1) (default: PRICING_DEFAULT_MARGIN)")
	cmd.Flags().Int("lifetime", 0, "customer lifetime in months (default: 12)")
	return cmd
}

func strategiesCmd(flags *globalFlags) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "strategies",
		Short: "Pick the cheapest, best-quality and best-value models",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx, svc, err := newService(flags)
			if err != nil {
				return err
			}
			res, err := svc.Strategies(ctx, usageFrom(cmd))
			if err != nil {
				return err
			}
			return printJSON(cmd, res)
		},
	}
	addUsageFlags(cmd)
	return cmd
}

// parseMix reads "model=weight" pairs.
func parseMix(pairs []string) ([]routing.MixEntry, error) {
	mix := make([]routing.MixEntry, 0, len(pairs))
	for _, pair := range pairs {
		key, weight, ok := strings.Cut(pair, "=")
		if !ok || strings.TrimSpace(key) == "" {
			return nil, fmt.Errorf("invalid mix entry %q: want model=weight", pair)
		}
		w, err := strconv.ParseFloat(strings.TrimSpace(weight), 64)
		if err != nil {
			return nil, fmt.Errorf("invalid weight in %q: %w", pair, err)
		}
		mix = append(mix, routing.MixEntry{ModelKey: strings.TrimSpace(key), Weight: w})
	}
	return mix, nil
}

func blendCmd(flags *globalFlags) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "blend model=weight...",
		Short: "Price a weighted routing mix",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			mix, err := parseMix(args)
			if err != nil {
				return err
			}
			ctx, svc, err := newService(flags)
			if err != nil {
				return err
			}
			res, err := svc.Blend(ctx, simulator.BlendRequest{
				Mix:    mix,
				Usage:  usageFrom(cmd),
				Margin: optionalFloat(cmd, "margin"),
			})
			if err != nil {
				return err
			}
			return printJSON(cmd, res)
		},
	}
	addUsageFlags(cmd)
	cmd.Flags().Float64("margin", 0, "margin in [0, 1) (default: PRICING_DEFAULT_MARGIN)")
	return cmd
}

func budgetCmd(flags *globalFlags) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "budget",
		Short: "Compute LTV, allowable CAC and the marketing budget",
		Long: `Compute the marketing budget for a billing method. Without --base-cost
the monthly cost is derived from the model and token usage; omitted tokens
fall back to the session's last estimate.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx, svc, err := newService(flags)
			if err != nil {
				return err
			}

			req := simulator.BudgetRequest{
				MonthlyBaseCost: optionalFloat(cmd, "base-cost"),
				Price:           optionalFloat(cmd, "price"),
			}
			req.ModelKey, _ = cmd.Flags().GetString("model")
			req.Pattern, _ = cmd.Flags().GetString("pattern")
			req.TasksPerUser, _ = cmd.Flags().GetInt("tasks")
			req.RetentionMonths, _ = cmd.Flags().GetInt("retention")
			req.TargetNetMarginPct, _ = cmd.Flags().GetFloat64("target-margin")
			req.DAU, _ = cmd.Flags().GetInt("dau")

			methodName, _ := cmd.Flags().GetString("method")
			method, err := domain.ParseBillingMethod(methodName)
			if err != nil {
				return err
			}
			req.Method = method

			if cmd.Flags().Changed("input") || cmd.Flags().Changed("output") {
				usage := usageFrom(cmd)
				req.Usage = &usage
			}

			res, err := svc.Budget(ctx, req)
			if err != nil {
				return err
			}
			return printJSON(cmd, res)
		},
	}
	addUsageFlags(cmd)
	cmd.Flags().String("model", "", "model key (default: session model or PRICING_DEFAULT_MODEL)")
	cmd.Flags().String("method", string(domain.Subscription), "billing method: one_time, subscription, usage_based")
	cmd.Flags().Float64("base-cost", 0, "monthly cost per user; skips the model cost")
	cmd.Flags().Float64("price", 0, "price, or markup percent for usage billing (default: suggested)")
	cmd.Flags().Int("tasks", 0, "tasks per user per day (default: session or policy)")
	cmd.Flags().String("pattern", "", "usage pattern from the policy")
	cmd.Flags().Int("retention", 0, "retention in months (default: 6)")
	cmd.Flags().Float64("target-margin", 20, "target net margin percent")
	cmd.Flags().Int("dau", 0, "daily active users (default: session or 1000)")
	return cmd
}

func estimateCmd(flags *globalFlags) *cobra.Command {
	return &cobra.Command{
		Use:   "estimate text...",
		Short: "Estimate token usage from a feature description",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, svc, err := newService(flags)
			if err != nil {
				return err
			}
			return printJSON(cmd, svc.Estimate(ctx, args...))
		},
	}
}

func decideCmd(flags *globalFlags) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "decide description...",
		Short: "Propose one-time, subscription and usage pricing",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, svc, err := newService(flags)
			if err != nil {
				return err
			}

			req := simulator.DecideRequest{Description: strings.Join(args, " ")}
			req.Code, _ = cmd.Flags().GetString("code")
			req.ModelKey, _ = cmd.Flags().GetString("model")
			req.TasksPerUser, _ = cmd.Flags().GetInt("tasks")

			res, err := svc.Decide(ctx, req)
			if err != nil {
				return err
			}
			return printJSON(cmd, res)
		},
	}
	cmd.Flags().String("code", "", "source code that implements the feature")
	cmd.Flags().String("model", "", "model key (default: PRICING_DEFAULT_MODEL)")
	cmd.Flags().Int("tasks", 0, "tasks per user per day (default: policy)")
	return cmd
}
