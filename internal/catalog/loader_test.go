package catalog_test

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/davidbz/pricelab/internal/catalog"
	"github.com/davidbz/pricelab/internal/domain"
)

func TestDefault(t *testing.T) {
	c, err := catalog.Default()
	require.NoError(t, err)

	models := c.List()
	require.Len(t, models, 8)
	require.Equal(t, "gpt-4o", models[0].Key)
	require.Equal(t, "qwen-turbo", models[7].Key)

	gpt, err := c.Get("gpt-4o")
	require.NoError(t, err)
	require.InDelta(t, 2.5, *gpt.InputPricePerMillion, 0)
	require.InDelta(t, 10.0, *gpt.OutputPricePerMillion, 0)
	require.True(t, gpt.HasQuality())

	meta := c.Metadata()
	require.NotEmpty(t, meta.AsOf)
	require.NotEmpty(t, meta.QualityAsOf)
	require.Equal(t, "USD", meta.ReferenceCurrency)

	require.Len(t, c.ListByTier(domain.TierCheapest), 3)

	_, err = c.Get("gpt-5")
	require.ErrorIs(t, err, domain.ErrNotFound)
}

func TestParse(t *testing.T) {
	data := []byte(`
as_of: "2025-02-01"
models:
  - key: priced
    name: Priced
    input_price_per_million: 1
    output_price_per_million: 2
  - key: unpriced
    name: Unpriced
    input_price_per_million: 1
`)

	c, err := catalog.Parse(data)
	require.NoError(t, err)
	require.Equal(t, "2025-02-01", c.Metadata().AsOf)
	require.Equal(t, "USD", c.Metadata().ReferenceCurrency)

	unpriced, err := c.Get("unpriced")
	require.NoError(t, err)
	require.False(t, unpriced.HasPricing())
	require.False(t, unpriced.HasQuality())
}

func TestParse_Invalid(t *testing.T) {
	tests := []struct {
		name string
		data string
	}{
		{name: "empty", data: "  \n"},
		{name: "no models", data: "as_of: x\n"},
		{name: "malformed", data: "models: [\n"},
		{name: "duplicate key", data: "models:\n  - key: a\n  - key: a\n"},
		{name: "negative price", data: "models:\n  - key: a\n    input_price_per_million: -1\n"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := catalog.Parse([]byte(tt.data))
			require.Error(t, err)
		})
	}
}

func TestLoad(t *testing.T) {
	path := filepath.Join(t.TempDir(), "catalog.yaml")
	require.NoError(t, os.WriteFile(path, []byte("models:\n  - key: only\n"), 0o600))

	c, err := catalog.Load(path)
	require.NoError(t, err)
	require.Len(t, c.List(), 1)

	c, err = catalog.Load("")
	require.NoError(t, err)
	require.Len(t, c.List(), 8)

	_, err = catalog.Load(filepath.Join(t.TempDir(), "missing.yaml"))
	require.Error(t, err)
}
