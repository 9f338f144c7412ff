package http

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/davidbz/pricelab/internal/domain"
	"github.com/davidbz/pricelab/internal/marketing"
	"github.com/davidbz/pricelab/internal/observability"
	"github.com/davidbz/pricelab/internal/routing"
	"github.com/davidbz/pricelab/internal/simulator"
)

const maxBodyBytes = 1 << 20

// errInvalidBody marks a request body that could not be decoded.
var errInvalidBody = errors.New("invalid request body")

// StrategiesRequest selects strategies for a token usage.
type StrategiesRequest struct {
	Usage domain.UsageProfile `json:"usage"`
}

// EstimateRequest is the free text to estimate usage from.
type EstimateRequest struct {
	Code        string `json:"code"`
	Description string `json:"description"`
}

// ExchangeRateRequest replaces the exchange rate.
type ExchangeRateRequest struct {
	Rate domain.ExchangeRate `json:"rate"`
}

// ErrorResponse is the body of every failed request.
type ErrorResponse struct {
	Error string `json:"error"`
}

// Handler handles HTTP requests.
type Handler struct {
	service *simulator.Service
}

// NewHandler creates a new HTTP handler (DI constructor).
func NewHandler(service *simulator.Service) *Handler {
	return &Handler{
		service: service,
	}
}

// HandleModels lists the catalog.
func (h *Handler) HandleModels(w http.ResponseWriter, r *http.Request) {
	writeJSON(r.Context(), w, http.StatusOK, h.service.Models(r.Context()))
}

// HandleModel returns one model by key.
func (h *Handler) HandleModel(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	model, err := h.service.Model(ctx, chi.URLParam(r, "key"))
	if err != nil {
		writeError(ctx, w, err)
		return
	}
	writeJSON(ctx, w, http.StatusOK, model)
}

// HandleCostTable returns every model's cost at the token presets.
func (h *Handler) HandleCostTable(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	table, err := h.service.CostTable(ctx)
	if err != nil {
		writeError(ctx, w, err)
		return
	}
	writeJSON(ctx, w, http.StatusOK, table)
}

// HandleCost costs one model.
func (h *Handler) HandleCost(w http.ResponseWriter, r *http.Request) {
	handle(w, r, h.service.Cost)
}

// HandleQuote prices one model under every billing method.
func (h *Handler) HandleQuote(w http.ResponseWriter, r *http.Request) {
	handle(w, r, h.service.Quote)
}

// HandleStrategies runs the strategy selector.
func (h *Handler) HandleStrategies(w http.ResponseWriter, r *http.Request) {
	handle(w, r, func(ctx context.Context, req StrategiesRequest) (simulator.StrategyResult, error) {
		return h.service.Strategies(ctx, req.Usage)
	})
}

// HandlePlan prices the strategies for a user base.
func (h *Handler) HandlePlan(w http.ResponseWriter, r *http.Request) {
	handle(w, r, h.service.Plan)
}

// HandleBlend prices a routing mix.
func (h *Handler) HandleBlend(w http.ResponseWriter, r *http.Request) {
	handle(w, r, h.service.Blend)
}

// HandleBudget computes the marketing budget.
func (h *Handler) HandleBudget(w http.ResponseWriter, r *http.Request) {
	handle(w, r, h.service.Budget)
}

// HandleEstimate estimates token usage from free text.
func (h *Handler) HandleEstimate(w http.ResponseWriter, r *http.Request) {
	handle(w, r, func(ctx context.Context, req EstimateRequest) (any, error) {
		return h.service.Estimate(ctx, req.Code, req.Description), nil
	})
}

// HandleDecide returns the pricing proposals for free text.
func (h *Handler) HandleDecide(w http.ResponseWriter, r *http.Request) {
	handle(w, r, h.service.Decide)
}

// HandleGetExchangeRate returns the rate in effect.
func (h *Handler) HandleGetExchangeRate(w http.ResponseWriter, r *http.Request) {
	writeJSON(r.Context(), w, http.StatusOK, h.service.ExchangeRate(r.Context()))
}

// HandleSetExchangeRate replaces the rate.
func (h *Handler) HandleSetExchangeRate(w http.ResponseWriter, r *http.Request) {
	handle(w, r, func(ctx context.Context, req ExchangeRateRequest) (simulator.RateInfo, error) {
		return h.service.SetExchangeRate(ctx, req.Rate)
	})
}

// HandleResetExchangeRate restores the configured rate.
func (h *Handler) HandleResetExchangeRate(w http.ResponseWriter, r *http.Request) {
	writeJSON(r.Context(), w, http.StatusOK, h.service.ResetExchangeRate(r.Context()))
}

// HandleResults returns the session's stored results.
func (h *Handler) HandleResults(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	snapshot, err := h.service.Results(ctx)
	if err != nil {
		writeError(ctx, w, err)
		return
	}
	writeJSON(ctx, w, http.StatusOK, snapshot)
}

// HandleHealth handles health check requests.
func (h *Handler) HandleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(r.Context(), w, http.StatusOK, map[string]string{
		"status": "healthy",
	})
}

// handle decodes a JSON body into Req, runs fn and writes its result.
func handle[Req, Res any](w http.ResponseWriter, r *http.Request, fn func(context.Context, Req) (Res, error)) {
	ctx := r.Context()

	var req Req
	if err := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes)).Decode(&req); err != nil {
		writeError(ctx, w, fmt.Errorf("%w: %v", errInvalidBody, err))
		return
	}

	res, err := fn(ctx, req)
	if err != nil {
		writeError(ctx, w, err)
		return
	}
	writeJSON(ctx, w, http.StatusOK, res)
}

func writeJSON(ctx context.Context, w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		// Status is already written; log only.
		observability.FromContext(ctx).Error("failed to encode response", observability.Error(err))
	}
}

func writeError(ctx context.Context, w http.ResponseWriter, err error) {
	status := statusFor(err)

	logger := observability.FromContext(ctx)
	if status >= http.StatusInternalServerError {
		logger.Error("request failed", observability.Error(err))
	} else {
		logger.Info("request rejected", observability.Int("status", status), observability.Error(err))
	}

	writeJSON(ctx, w, status, ErrorResponse{Error: err.Error()})
}

// statusFor maps domain errors to HTTP status codes.
func statusFor(err error) int {
	switch {
	case errors.Is(err, domain.ErrNotFound), errors.Is(err, simulator.ErrNoResult):
		return http.StatusNotFound
	case errors.Is(err, errInvalidBody),
		errors.Is(err, domain.ErrInvalidMargin),
		errors.Is(err, domain.ErrInvalidUsage),
		errors.Is(err, domain.ErrInvalidExchangeRate),
		errors.Is(err, domain.ErrInvalidBillingMethod),
		errors.Is(err, routing.ErrEmptyMix),
		errors.Is(err, routing.ErrMixTooLarge),
		errors.Is(err, marketing.ErrInvalidRetention),
		errors.Is(err, marketing.ErrInvalidTargetMargin),
		errors.Is(err, marketing.ErrInvalidCostBasis):
		return http.StatusBadRequest
	case errors.Is(err, domain.ErrPriceUnavailable), errors.Is(err, domain.ErrEmptyCandidatePool):
		return http.StatusUnprocessableEntity
	default:
		return http.StatusInternalServerError
	}
}
