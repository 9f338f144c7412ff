package config

import (
	_ "embed"
	"errors"
	"fmt"
	"os"
	"sort"

	"gopkg.in/yaml.v3"

	"github.com/davidbz/pricelab/internal/complexity"
	"github.com/davidbz/pricelab/internal/decision"
	"github.com/davidbz/pricelab/internal/domain"
	"github.com/davidbz/pricelab/internal/marketing"
)

//go:embed default_policy.yaml
var defaultPolicy []byte

// Policy holds the business rule tables. The embedded default is loaded
// first and an override file is decoded on top of it, so an override only
// needs the sections it changes.
type Policy struct {
	Complexity    complexity.Rules               `yaml:"complexity"`
	Marketing     marketing.Policy               `yaml:"marketing"`
	Decision      decision.Policy                `yaml:"decision"`
	Plan          domain.PlanPolicy              `yaml:"plan"`
	UsagePatterns map[string]float64             `yaml:"usage_patterns"`
	MarginPresets []float64                      `yaml:"margin_presets"`
	TokenSizes    map[string]domain.UsageProfile `yaml:"token_sizes"`
	VolumePresets []int                          `yaml:"volume_presets"`
}

// LoadPolicy returns the embedded policy, overlaid with the file at path
// when path is set.
func LoadPolicy(path string) (*Policy, error) {
	var p Policy
	if err := yaml.Unmarshal(defaultPolicy, &p); err != nil {
		return nil, fmt.Errorf("parsing default policy: %w", err)
	}

	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("reading policy %s: %w", path, err)
		}
		if err := yaml.Unmarshal(data, &p); err != nil {
			return nil, fmt.Errorf("parsing policy %s: %w", path, err)
		}
	}

	if err := p.Validate(); err != nil {
		return nil, err
	}
	return &p, nil
}

// Validate checks every table.
func (p *Policy) Validate() error {
	if err := p.Complexity.Validate(); err != nil {
		return fmt.Errorf("complexity rules: %w", err)
	}
	if err := p.Marketing.Validate(); err != nil {
		return fmt.Errorf("marketing policy: %w", err)
	}
	if err := p.Decision.Validate(); err != nil {
		return fmt.Errorf("decision policy: %w", err)
	}
	if p.Plan.LifetimeMarkup <= 0 || p.Plan.UsageUnit <= 0 {
		return errors.New("plan policy: lifetime markup and usage unit must be positive")
	}
	for name, multiplier := range p.UsagePatterns {
		if multiplier <= 0 {
			return fmt.Errorf("usage pattern %s: multiplier must be positive", name)
		}
	}
	for _, m := range p.MarginPresets {
		if err := domain.Margin(m).Validate(); err != nil {
			return fmt.Errorf("margin preset: %w", err)
		}
	}
	for name, usage := range p.TokenSizes {
		if err := usage.Validate(); err != nil {
			return fmt.Errorf("token size %s: %w", name, err)
		}
	}
	for _, v := range p.VolumePresets {
		if v < 1 {
			return fmt.Errorf("volume preset %d must be positive", v)
		}
	}
	return nil
}

// Margins returns the margin presets as domain margins.
func (p *Policy) Margins() []domain.Margin {
	out := make([]domain.Margin, len(p.MarginPresets))
	for i, m := range p.MarginPresets {
		out[i] = domain.Margin(m)
	}
	return out
}

// PatternMultiplier looks up a usage pattern. An empty name is 1.
func (p *Policy) PatternMultiplier(name string) (float64, error) {
	if name == "" {
		return 1, nil
	}
	multiplier, ok := p.UsagePatterns[name]
	if !ok {
		return 0, fmt.Errorf("%w: unknown usage pattern %q", domain.ErrInvalidUsage, name)
	}
	return multiplier, nil
}

// PatternNames returns the usage pattern names sorted.
func (p *Policy) PatternNames() []string {
	names := make([]string, 0, len(p.UsagePatterns))
	for name := range p.UsagePatterns {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
