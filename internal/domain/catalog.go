package domain

import (
	"errors"
	"fmt"
)

// InMemoryCatalog stores model records in load order with a key index.
// It is immutable after construction and safe for concurrent reads.
type InMemoryCatalog struct {
	models []ModelRecord
	index  map[string]int
}

// NewInMemoryCatalog builds a catalog, rejecting empty or duplicate keys
// and negative prices.
func NewInMemoryCatalog(models []ModelRecord) (*InMemoryCatalog, error) {
	c := &InMemoryCatalog{
		models: make([]ModelRecord, 0, len(models)),
		index:  make(map[string]int, len(models)),
	}

	for _, m := range models {
		if m.Key == "" {
			return nil, errors.New("model key cannot be empty")
		}
		if _, exists := c.index[m.Key]; exists {
			return nil, fmt.Errorf("duplicate model key: %s", m.Key)
		}
		if negative(m.InputPricePerMillion) || negative(m.OutputPricePerMillion) {
			return nil, fmt.Errorf("model %s has a negative price", m.Key)
		}
		if negative(m.QualityScore) {
			return nil, fmt.Errorf("model %s has a negative quality score", m.Key)
		}

		c.index[m.Key] = len(c.models)
		c.models = append(c.models, m)
	}

	return c, nil
}

// Get retrieves a model by key.
func (c *InMemoryCatalog) Get(key string) (ModelRecord, error) {
	i, exists := c.index[key]
	if !exists {
		return ModelRecord{}, fmt.Errorf("%w: %s", ErrNotFound, key)
	}
	return c.models[i], nil
}

// List returns a copy of every model in catalog order.
func (c *InMemoryCatalog) List() []ModelRecord {
	out := make([]ModelRecord, len(c.models))
	copy(out, c.models)
	return out
}

// ListByTier returns the models of one tier in catalog order.
func (c *InMemoryCatalog) ListByTier(tier string) []ModelRecord {
	var out []ModelRecord
	for _, m := range c.models {
		if m.Tier == tier {
			out = append(out, m)
		}
	}
	return out
}

func negative(v *float64) bool {
	return v != nil && *v < 0
}
