// Package catalog loads model price and quality records from YAML.
package catalog

import (
	_ "embed"
	"errors"
	"fmt"
	"os"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/davidbz/pricelab/internal/domain"
)

//go:embed default_catalog.yaml
var defaultCatalog []byte

// File is the on-disk catalog layout.
type File struct {
	AsOf              string               `yaml:"as_of"`
	QualityAsOf       string               `yaml:"quality_as_of"`
	ReferenceCurrency string               `yaml:"reference_currency"`
	Models            []domain.ModelRecord `yaml:"models"`
}

// Metadata describes where the catalog figures come from.
type Metadata struct {
	AsOf              string `json:"as_of"`
	QualityAsOf       string `json:"quality_as_of"`
	ReferenceCurrency string `json:"reference_currency"`
}

// Catalog is an immutable model catalog with its provenance.
type Catalog struct {
	*domain.InMemoryCatalog
	meta Metadata
}

// Metadata returns the catalog provenance.
func (c *Catalog) Metadata() Metadata {
	return c.meta
}

// Default parses the embedded catalog.
func Default() (*Catalog, error) {
	return Parse(defaultCatalog)
}

// Load reads a catalog file. An empty path loads the embedded default.
func Load(path string) (*Catalog, error) {
	if path == "" {
		return Default()
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading catalog %s: %w", path, err)
	}

	c, err := Parse(data)
	if err != nil {
		return nil, fmt.Errorf("catalog %s: %w", path, err)
	}
	return c, nil
}

// Parse decodes and validates catalog YAML.
func Parse(data []byte) (*Catalog, error) {
	if strings.TrimSpace(string(data)) == "" {
		return nil, errors.New("catalog is empty")
	}

	var f File
	if err := yaml.Unmarshal(data, &f); err != nil {
		return nil, fmt.Errorf("parsing catalog: %w", err)
	}
	if len(f.Models) == 0 {
		return nil, errors.New("catalog has no models")
	}

	models, err := domain.NewInMemoryCatalog(f.Models)
	if err != nil {
		return nil, err
	}

	currency := f.ReferenceCurrency
	if currency == "" {
		currency = "USD"
	}

	return &Catalog{
		InMemoryCatalog: models,
		meta: Metadata{
			AsOf:              f.AsOf,
			QualityAsOf:       f.QualityAsOf,
			ReferenceCurrency: currency,
		},
	}, nil
}
