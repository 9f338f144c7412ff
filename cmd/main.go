package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/dig"
	"go.uber.org/zap"

	"github.com/davidbz/pricelab/internal/cache/redis"
	"github.com/davidbz/pricelab/internal/catalog"
	"github.com/davidbz/pricelab/internal/config"
	"github.com/davidbz/pricelab/internal/domain"
	"github.com/davidbz/pricelab/internal/http"
	"github.com/davidbz/pricelab/internal/http/middleware"
	"github.com/davidbz/pricelab/internal/observability"
	"github.com/davidbz/pricelab/internal/simulator"
)

const shutdownTimeout = 10 * time.Second

func main() {
	container := buildContainer()

	err := container.Invoke(func(_ *zap.Logger, server *http.Server) {
		ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
		defer stop()

		go func() {
			<-ctx.Done()
			shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
			defer cancel()
			if err := server.Shutdown(shutdownCtx); err != nil {
				observability.FromContext(shutdownCtx).Error("shutdown failed", observability.Error(err))
			}
		}()

		if err := server.Start(); err != nil {
			log.Fatalf("Server failed to start: %v", err)
		}
	})
	if err != nil {
		log.Fatalf("Failed to start application: %v", err)
	}
}

func buildContainer() *dig.Container {
	container := dig.New()

	// Configuration
	if err := container.Provide(config.Load); err != nil {
		log.Fatalf("Failed to provide config: %v", err)
	}
	if err := container.Provide(config.ParseDependenciesConfig); err != nil {
		log.Fatalf("Failed to provide config dependencies: %v", err)
	}
	if err := container.Provide(func(cfg *config.PricingConfig) (*config.Policy, error) {
		return config.LoadPolicy(cfg.PolicyFile)
	}); err != nil {
		log.Fatalf("Failed to provide policy: %v", err)
	}

	// Observability
	if err := container.Provide(observability.InitLogger); err != nil {
		log.Fatalf("Failed to provide logger: %v", err)
	}

	// Catalog and exchange rate
	if err := container.Provide(func(cfg *config.PricingConfig) (simulator.Catalog, error) {
		return catalog.Load(cfg.CatalogFile)
	}); err != nil {
		log.Fatalf("Failed to provide catalog: %v", err)
	}
	if err := container.Provide(func(cfg *config.PricingConfig) (*domain.RateHolder, error) {
		return domain.NewRateHolder(domain.ExchangeRate(cfg.ExchangeRate))
	}); err != nil {
		log.Fatalf("Failed to provide exchange rate: %v", err)
	}

	// Result store: Redis when enabled, process memory otherwise.
	if err := container.Provide(func(cfg *config.RedisConfig) simulator.ResultStore {
		if !cfg.Enabled {
			return simulator.NewMemoryStore()
		}
		client := redis.NewClient(cfg)
		return redis.NewResultStore(client, time.Duration(cfg.ResultTTL)*time.Second)
	}); err != nil {
		log.Fatalf("Failed to provide result store: %v", err)
	}

	// Domain Services
	if err := container.Provide(simulator.NewService); err != nil {
		log.Fatalf("Failed to provide simulator service: %v", err)
	}

	// HTTP Layer
	if err := container.Provide(middleware.BuildMiddlewareChain); err != nil {
		log.Fatalf("Failed to provide middleware chain: %v", err)
	}
	if err := container.Provide(http.NewHandler); err != nil {
		log.Fatalf("Failed to provide HTTP handler: %v", err)
	}
	if err := container.Provide(http.NewServer); err != nil {
		log.Fatalf("Failed to provide HTTP server: %v", err)
	}

	return container
}
