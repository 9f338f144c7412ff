package simulator

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/davidbz/pricelab/internal/catalog"
	"github.com/davidbz/pricelab/internal/complexity"
	"github.com/davidbz/pricelab/internal/config"
	"github.com/davidbz/pricelab/internal/decision"
	"github.com/davidbz/pricelab/internal/domain"
	"github.com/davidbz/pricelab/internal/marketing"
	"github.com/davidbz/pricelab/internal/observability"
	"github.com/davidbz/pricelab/internal/routing"
)

const (
	defaultDAU             = 1000
	defaultLifetimeMonths  = 12
	defaultRetentionMonths = 6
	defaultTokenSize       = "medium"
)

// Catalog is a model catalog that knows its provenance.
type Catalog interface {
	domain.Catalog
	Metadata() catalog.Metadata
}

// Service runs the calculators against the catalog, the current exchange
// rate and the policy tables, and hands results between them per session.
type Service struct {
	catalog   Catalog
	rates     *domain.RateHolder
	policy    *config.Policy
	pricing   *config.PricingConfig
	selector  *domain.Selector
	router    *routing.Router
	estimator *complexity.Estimator
	advisor   *decision.Advisor
	budget    *marketing.Calculator
	store     ResultStore
	now       func() time.Time

	// sessions holds one *sync.Mutex per session ID so snapshot updates
	// within this process do not drop each other's fields.
	sessions sync.Map
}

// NewService creates the simulator service (DI constructor).
func NewService(
	cat Catalog,
	rates *domain.RateHolder,
	policy *config.Policy,
	pricing *config.PricingConfig,
	store ResultStore,
) (*Service, error) {
	if err := domain.Margin(pricing.DefaultMargin).Validate(); err != nil {
		return nil, fmt.Errorf("default margin: %w", err)
	}
	if _, err := cat.Get(pricing.DefaultModel); err != nil {
		return nil, fmt.Errorf("default model: %w", err)
	}

	estimator, err := complexity.NewEstimator(policy.Complexity)
	if err != nil {
		return nil, err
	}

	advisor, err := decision.NewAdvisor(estimator, policy.Decision)
	if err != nil {
		return nil, err
	}

	marketingPolicy := policy.Marketing
	if pricing.PaybackCapMonths > 0 {
		marketingPolicy.PaybackCapMonths = pricing.PaybackCapMonths
	}
	budget, err := marketing.NewCalculator(marketingPolicy)
	if err != nil {
		return nil, err
	}

	return &Service{
		catalog:   cat,
		rates:     rates,
		policy:    policy,
		pricing:   pricing,
		selector:  domain.NewSelector(pricing.QualityFloor),
		router:    routing.NewRouter(cat),
		estimator: estimator,
		advisor:   advisor,
		budget:    budget,
		store:     store,
		now:       time.Now,
	}, nil
}

// Models lists the catalog in order.
func (s *Service) Models(_ context.Context) ModelsResult {
	return ModelsResult{
		Models:   s.catalog.List(),
		Metadata: s.catalog.Metadata(),
	}
}

// Model looks up one catalog model.
func (s *Service) Model(_ context.Context, key string) (domain.ModelRecord, error) {
	return s.catalog.Get(key)
}

// CostTable costs every model at each token size preset.
func (s *Service) CostTable(ctx context.Context) (CostTableResult, error) {
	rate := s.rates.Get()

	rows, err := domain.CostTable(s.catalog.List(), s.policy.TokenSizes, rate)
	if err != nil {
		return CostTableResult{}, err
	}

	logger := observability.FromContext(ctx)
	for _, row := range rows {
		if !row.Model.HasPricing() {
			logger.Warn("model has no pricing", observability.String("model", row.Model.Key))
		}
	}
	logger.Info("cost table computed", observability.Int("models", len(rows)))

	return CostTableResult{
		Presets: s.policy.TokenSizes,
		Rows:    rows,
		Rate:    s.rateInfo(rate),
	}, nil
}

// Cost computes the per-request cost of one model and, when a volume is
// given, its projection over the user base.
func (s *Service) Cost(ctx context.Context, req CostRequest) (CostResult, error) {
	model, err := s.model(req.ModelKey)
	if err != nil {
		return CostResult{}, err
	}
	ctx = observability.WithModel(ctx, model.Key)
	logger := observability.FromContext(ctx)
	rate := s.rates.Get()

	cost, err := domain.CostPerRequest(model, req.Usage)
	if err != nil {
		logCostError(ctx, err)
		return CostResult{}, err
	}

	res := CostResult{
		Model:      model,
		Usage:      req.Usage,
		PerRequest: domain.NewAmount(cost, rate),
		Rate:       s.rateInfo(rate),
	}

	if req.Volume != nil {
		volume := *req.Volume
		if req.Pattern != "" {
			multiplier, patternErr := s.policy.PatternMultiplier(req.Pattern)
			if patternErr != nil {
				return CostResult{}, patternErr
			}
			volume.PatternMultiplier = multiplier
		}

		projection, projErr := domain.ProjectUsage(model, req.Usage, volume)
		if projErr != nil {
			return CostResult{}, projErr
		}
		res.Projection = &projection
	}

	logger.Info("cost calculated",
		observability.Float64("cost", cost),
		observability.Float64("converted_cost", res.PerRequest.Converted),
	)

	return res, nil
}

// Quote prices one model under every billing method.
func (s *Service) Quote(ctx context.Context, req QuoteRequest) (QuoteResult, error) {
	model, err := s.model(req.ModelKey)
	if err != nil {
		return QuoteResult{}, err
	}
	ctx = observability.WithModel(ctx, model.Key)

	margin, err := s.margin(req.Margin)
	if err != nil {
		return QuoteResult{}, err
	}
	rate := s.rates.Get()

	cost, err := domain.CostPerRequest(model, req.Usage)
	if err != nil {
		logCostError(ctx, err)
		return QuoteResult{}, err
	}

	volume := req.Volume
	if volume.PackSize == 0 {
		volume.PackSize = domain.DefaultPackSize
	}
	if volume.MonthlyVolume == 0 {
		volume.MonthlyVolume = domain.DefaultMonthlyVolume
	}

	quotes, err := domain.QuoteAll(cost, margin, volume)
	if err != nil {
		return QuoteResult{}, err
	}
	converted := make([]domain.Quote, len(quotes))
	for i, q := range quotes {
		converted[i] = q.Converted(rate)
	}

	ladder, err := domain.MarginLadder(cost, s.policy.Margins())
	if err != nil {
		return QuoteResult{}, err
	}

	unitPrice, err := domain.PriceFromCost(cost, margin)
	if err != nil {
		return QuoteResult{}, err
	}

	observability.FromContext(ctx).Info("quote calculated",
		observability.Float64("cost", cost),
		observability.Float64("margin", float64(margin)),
		observability.Float64("unit_price", unitPrice),
	)

	return QuoteResult{
		ModelKey:        model.Key,
		Cost:            domain.NewAmount(cost, rate),
		Margin:          margin,
		Quotes:          quotes,
		ConvertedQuotes: converted,
		Ladder:          ladder,
		VolumeTotals:    domain.VolumeProjection(unitPrice, s.policy.VolumePresets),
		Rate:            s.rateInfo(rate),
	}, nil
}

// Strategies runs the selector and derives the recommended routing mix.
func (s *Service) Strategies(ctx context.Context, usage domain.UsageProfile) (StrategyResult, error) {
	set, err := s.selector.Select(s.catalog.List(), usage)
	if err != nil {
		return StrategyResult{}, err
	}

	logger := observability.FromContext(ctx)

	mix, err := routing.RecommendedMix(set)
	if errors.Is(err, domain.ErrEmptyCandidatePool) {
		logger.Warn("no recommended mix", observability.Error(err))
		mix = nil
	} else if err != nil {
		return StrategyResult{}, err
	}

	logger.Info("strategies selected",
		observability.Bool("cheapest", set.Cheapest != nil),
		observability.Bool("best_quality", set.BestQuality != nil),
		observability.Bool("best_value", set.BestValue != nil),
	)

	return StrategyResult{
		Usage:          usage,
		QualityFloor:   s.selector.QualityFloor(),
		Picks:          set,
		RecommendedMix: mix,
	}, nil
}

// Plan prices the cheapest, balanced and quality strategies for a user
// base and stores the plan for the session.
func (s *Service) Plan(ctx context.Context, req PlanRequest) (PlanResult, error) {
	snapshot, _ := s.loadSnapshot(ctx)

	usage, source, err := s.resolveUsage(req.Usage, snapshot)
	if err != nil {
		return PlanResult{}, err
	}

	margin, err := s.margin(req.Margin)
	if err != nil {
		return PlanResult{}, err
	}

	multiplier, err := s.policy.PatternMultiplier(req.Pattern)
	if err != nil {
		return PlanResult{}, err
	}

	in := domain.PlanInput{
		Usage: usage,
		Volume: domain.UsageVolume{
			DAU:               orDefault(req.DAU, defaultDAU),
			TasksPerUser:      orDefault(req.TasksPerUser, s.policy.Decision.DefaultTasksPerUser),
			PatternMultiplier: multiplier,
		},
		Margin:         margin,
		LifetimeMonths: orDefault(req.LifetimeMonths, defaultLifetimeMonths),
	}

	plan, err := domain.PlanStrategies(s.catalog.List(), s.selector, in, s.policy.Plan)
	if err != nil {
		return PlanResult{}, err
	}

	logger := observability.FromContext(ctx)
	for _, strategy := range domain.Strategies() {
		if _, getErr := plan.Get(strategy); getErr != nil {
			logger.Warn("strategy unavailable", observability.String("strategy", string(strategy)))
		}
	}
	logger.Info("plan calculated",
		observability.String("usage_source", source),
		observability.Int("dau", in.Volume.DAU),
		observability.Float64("margin", float64(margin)),
	)

	s.remember(ctx, func(snap *Snapshot) {
		snap.Plan = &plan
		snap.Usage = &usage
		snap.UsageSource = UsageFromPlan
		snap.TasksPerUser = in.Volume.TasksPerUser
		snap.DAU = in.Volume.DAU
		if plan.Balanced != nil {
			snap.ModelKey = plan.Balanced.Model.Key
		}
	})

	return PlanResult{
		Plan:  plan,
		Input: in,
		Rate:  s.rateInfo(s.rates.Get()),
	}, nil
}

// Blend prices a routing mix.
func (s *Service) Blend(ctx context.Context, req BlendRequest) (BlendResult, error) {
	margin, err := s.margin(req.Margin)
	if err != nil {
		return BlendResult{}, err
	}
	rate := s.rates.Get()

	blend, err := s.router.Blend(req.Mix, req.Usage, margin)
	if err != nil {
		return BlendResult{}, err
	}

	logger := observability.FromContext(ctx)
	for _, leg := range blend.Legs {
		if !leg.PriceAvailable {
			logger.Warn("mix model has no pricing; counted as zero cost",
				observability.String("model", leg.Model.Key),
				observability.Int("weight", leg.Weight),
			)
		}
	}
	logger.Info("blend calculated",
		observability.Float64("cost", blend.Cost),
		observability.Float64("price", blend.Price),
	)

	return BlendResult{
		Blend: blend,
		Cost:  domain.NewAmount(blend.Cost, rate),
		Price: domain.NewAmount(blend.Price, rate),
		Rate:  s.rateInfo(rate),
	}, nil
}

// Estimate maps free text to a usage profile and stores it for the session.
func (s *Service) Estimate(ctx context.Context, texts ...string) complexity.Estimate {
	estimate := s.estimator.Estimate(texts...)

	observability.FromContext(ctx).Info("usage estimated",
		observability.String("tier", string(estimate.Tier)),
		observability.String("keyword", estimate.MatchedKeyword),
		observability.Int("input_tokens", estimate.Usage.InputTokens),
		observability.Int("output_tokens", estimate.Usage.OutputTokens),
	)

	usage := estimate.Usage
	s.remember(ctx, func(snap *Snapshot) {
		snap.Usage = &usage
		snap.UsageSource = UsageFromEstimate
	})

	return estimate
}

// Decide builds pricing proposals and stores the decision for the session.
func (s *Service) Decide(ctx context.Context, req DecideRequest) (DecideResult, error) {
	model, err := s.model(req.ModelKey)
	if err != nil {
		return DecideResult{}, err
	}
	ctx = observability.WithModel(ctx, model.Key)
	rate := s.rates.Get()

	d, err := s.advisor.Advise(decision.Input{
		Code:         req.Code,
		Description:  req.Description,
		Model:        model,
		Rate:         rate,
		TasksPerUser: req.TasksPerUser,
	})
	if err != nil {
		logCostError(ctx, err)
		return DecideResult{}, err
	}

	observability.FromContext(ctx).Info("decision proposed",
		observability.String("tier", string(d.Estimate.Tier)),
		observability.Float64("cost", d.CostPerRequest.Source),
		observability.Int("proposals", len(d.Proposals)),
	)

	usage := d.Estimate.Usage
	s.remember(ctx, func(snap *Snapshot) {
		snap.Decision = &d
		snap.Usage = &usage
		snap.UsageSource = UsageFromDecision
		snap.ModelKey = model.Key
		snap.TasksPerUser = d.TasksPerUser
	})

	return DecideResult{Decision: d, Rate: s.rateInfo(rate)}, nil
}

// Budget computes LTV, allowable CAC and the marketing budget. Omitted
// model, usage and tasks come from the session snapshot.
func (s *Service) Budget(ctx context.Context, req BudgetRequest) (BudgetResult, error) {
	method := req.Method
	if method == "" {
		method = domain.Subscription
	}
	rate := s.rates.Get()

	res := BudgetResult{Rate: s.rateInfo(rate)}
	snapshot, _ := s.loadSnapshot(ctx)

	dau := req.DAU
	if dau == 0 {
		dau = orDefault(snapshot.DAU, defaultDAU)
	}
	retention := orDefault(req.RetentionMonths, defaultRetentionMonths)

	if req.MonthlyBaseCost != nil {
		res.MonthlyBaseCost = *req.MonthlyBaseCost
		res.UsageSource = UsageFromRequest
	} else {
		key := req.ModelKey
		if key == "" {
			key = snapshot.ModelKey
		}
		model, err := s.model(key)
		if err != nil {
			return BudgetResult{}, err
		}
		ctx = observability.WithModel(ctx, model.Key)

		usage, source, err := s.resolveUsage(req.Usage, snapshot)
		if err != nil {
			return BudgetResult{}, err
		}

		multiplier, err := s.policy.PatternMultiplier(req.Pattern)
		if err != nil {
			return BudgetResult{}, err
		}

		tasks := req.TasksPerUser
		if tasks == 0 {
			tasks = orDefault(snapshot.TasksPerUser, s.policy.Decision.DefaultTasksPerUser)
		}

		projection, err := domain.ProjectUsage(model, usage, domain.UsageVolume{
			DAU:               max(dau, 1),
			TasksPerUser:      tasks,
			PatternMultiplier: multiplier,
		})
		if err != nil {
			logCostError(ctx, err)
			return BudgetResult{}, err
		}

		res.ModelKey = model.Key
		res.Usage = usage
		res.UsageSource = source
		res.MonthlyBaseCost = projection.PerUserMonthly
	}

	budget, err := s.budget.Budget(marketing.Input{
		MonthlyBaseCost:    res.MonthlyBaseCost,
		Method:             method,
		Price:              req.Price,
		RetentionMonths:    retention,
		TargetNetMarginPct: req.TargetNetMarginPct,
		DAU:                dau,
	})
	if err != nil {
		return BudgetResult{}, err
	}

	res.DAU = dau
	res.Budget = budget
	res.AllowableCAC = domain.NewAmount(budget.AllowableCAC, rate)
	res.TotalBudget = domain.NewAmount(budget.TotalBudget, rate)

	logger := observability.FromContext(ctx)
	if budget.PaybackUnbounded {
		logger.Warn("payback period unbounded", observability.Float64("allowable_cac", budget.AllowableCAC))
	}
	logger.Info("budget calculated",
		observability.String("method", string(method)),
		observability.String("usage_source", res.UsageSource),
		observability.Float64("ltv", budget.LTV),
		observability.Float64("allowable_cac", budget.AllowableCAC),
		observability.Float64("total_budget", budget.TotalBudget),
	)

	return res, nil
}

// ExchangeRate returns the rate in effect.
func (s *Service) ExchangeRate(_ context.Context) RateInfo {
	return s.rateInfo(s.rates.Get())
}

// SetExchangeRate replaces the process-wide rate.
func (s *Service) SetExchangeRate(ctx context.Context, rate domain.ExchangeRate) (RateInfo, error) {
	previous := s.rates.Get()
	if err := s.rates.Set(rate); err != nil {
		return RateInfo{}, err
	}

	observability.FromContext(ctx).Info("exchange rate updated",
		observability.Float64("previous", float64(previous)),
		observability.Float64("rate", float64(rate)),
	)
	return s.rateInfo(rate), nil
}

// ResetExchangeRate restores the configured default rate.
func (s *Service) ResetExchangeRate(ctx context.Context) RateInfo {
	rate := s.rates.Reset()
	observability.FromContext(ctx).Info("exchange rate reset", observability.Float64("rate", float64(rate)))
	return s.rateInfo(rate)
}

// Results returns the session snapshot.
func (s *Service) Results(ctx context.Context) (Snapshot, error) {
	return s.store.Load(ctx, sessionFrom(ctx))
}

// model resolves key, using the configured default model for an empty key.
func (s *Service) model(key string) (domain.ModelRecord, error) {
	if key == "" {
		key = s.pricing.DefaultModel
	}
	return s.catalog.Get(key)
}

func (s *Service) margin(m *float64) (domain.Margin, error) {
	margin := domain.Margin(s.pricing.DefaultMargin)
	if m != nil {
		margin = domain.Margin(*m)
	}
	if err := margin.Validate(); err != nil {
		return 0, err
	}
	return margin, nil
}

func (s *Service) rateInfo(rate domain.ExchangeRate) RateInfo {
	return RateInfo{
		Rate:     rate,
		Default:  s.rates.Default(),
		Currency: s.pricing.Currency,
	}
}

func (s *Service) resolveUsage(explicit *domain.UsageProfile, snapshot Snapshot) (domain.UsageProfile, string, error) {
	if explicit != nil {
		return *explicit, UsageFromRequest, nil
	}
	if snapshot.Usage != nil {
		return *snapshot.Usage, UsageFromSession, nil
	}
	if usage, ok := s.policy.TokenSizes[defaultTokenSize]; ok {
		return usage, UsageFromDefault, nil
	}
	return domain.UsageProfile{}, "", fmt.Errorf("%w: no token usage given", domain.ErrInvalidUsage)
}

func (s *Service) loadSnapshot(ctx context.Context) (Snapshot, error) {
	snapshot, err := s.store.Load(ctx, sessionFrom(ctx))
	if err != nil && !errors.Is(err, ErrNoResult) {
		observability.FromContext(ctx).Warn("failed to load session result", observability.Error(err))
	}
	return snapshot, err
}

// remember applies fn to the session snapshot and saves it. Store
// failures are logged; the calculation result is still returned. Updates
// to one session are serialized within this process; processes sharing a
// Redis store still race, and the last writer wins.
func (s *Service) remember(ctx context.Context, fn func(*Snapshot)) {
	mu := s.sessionLock(sessionFrom(ctx))
	mu.Lock()
	defer mu.Unlock()

	snapshot, err := s.loadSnapshot(ctx)
	if err != nil && !errors.Is(err, ErrNoResult) {
		return
	}

	snapshot.SessionID = sessionFrom(ctx)
	fn(&snapshot)
	snapshot.UpdatedAt = s.now()

	if err := s.store.Save(ctx, snapshot); err != nil {
		observability.FromContext(ctx).Warn("failed to save session result", observability.Error(err))
	}
}

func (s *Service) sessionLock(session string) *sync.Mutex {
	mu, _ := s.sessions.LoadOrStore(session, &sync.Mutex{})
	return mu.(*sync.Mutex)
}

func sessionFrom(ctx context.Context) string {
	if id := observability.GetSessionID(ctx); id != "" {
		return id
	}
	return DefaultSession
}

func logCostError(ctx context.Context, err error) {
	if errors.Is(err, domain.ErrPriceUnavailable) {
		observability.FromContext(ctx).Warn("cost unavailable", observability.Error(err))
	}
}

func orDefault(v, fallback int) int {
	if v == 0 {
		return fallback
	}
	return v
}
