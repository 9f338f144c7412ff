package domain

import (
	"fmt"
	"math"
)

// Margin is a target gross margin fraction in [0, 1).
type Margin float64

// Validate rejects margins outside [0, 1). A margin of 1 has no price.
func (m Margin) Validate() error {
	v := float64(m)
	if math.IsNaN(v) || v < 0 || v >= 1 {
		return fmt.Errorf("%w: %v must be in [0, 1)", ErrInvalidMargin, v)
	}
	return nil
}

// PriceFromCost marks a cost up so that the margin equals m.
func PriceFromCost(cost float64, m Margin) (float64, error) {
	if err := m.Validate(); err != nil {
		return 0, err
	}
	return cost / (1 - float64(m)), nil
}

// VolumeParams are the per-method quantities; zero or negative values are
// raised to 1.
type VolumeParams struct {
	PackSize      int `json:"pack_size"`
	MonthlyVolume int `json:"monthly_volume"`
	UsageVolume   int `json:"usage_volume"`
}

// Default volumes used when a caller does not supply them.
const (
	DefaultPackSize      = 100
	DefaultMonthlyVolume = 300
)

func (v VolumeParams) normalized() VolumeParams {
	return VolumeParams{
		PackSize:      max(v.PackSize, 1),
		MonthlyVolume: max(v.MonthlyVolume, 1),
		UsageVolume:   max(v.UsageVolume, 1),
	}
}

// volumeFor is the number of units the method's price covers.
func (v VolumeParams) volumeFor(method BillingMethod) (int, error) {
	switch method {
	case OneTime:
		return v.PackSize, nil
	case Subscription:
		return v.MonthlyVolume, nil
	case UsageBased:
		return 1, nil
	default:
		return 0, fmt.Errorf("%w: %q", ErrInvalidBillingMethod, method)
	}
}

// PriceForMethod returns what a customer pays under method: the pack price,
// the monthly fee, or the price of a single request.
func PriceForMethod(costPerUnit float64, m Margin, method BillingMethod, params VolumeParams) (float64, error) {
	unitPrice, err := PriceFromCost(costPerUnit, m)
	if err != nil {
		return 0, err
	}

	units, err := params.normalized().volumeFor(method)
	if err != nil {
		return 0, err
	}

	return unitPrice * float64(units), nil
}

// Quote is the revenue picture of one billing method at an assumed volume.
type Quote struct {
	Method     BillingMethod `json:"method"`
	UnitCost   float64       `json:"unit_cost"`
	UnitPrice  float64       `json:"unit_price"`
	Price      float64       `json:"price"`
	Volume     int           `json:"volume"`
	Revenue    float64       `json:"revenue"`
	Cost       float64       `json:"cost"`
	Margin     float64       `json:"margin"`
	MarginRate float64       `json:"margin_rate"`
}

// QuoteForMethod prices method and reports revenue and margin for the
// method's volume: the pack size, the monthly volume, or the usage volume.
func QuoteForMethod(costPerUnit float64, m Margin, method BillingMethod, params VolumeParams) (Quote, error) {
	unitPrice, err := PriceFromCost(costPerUnit, m)
	if err != nil {
		return Quote{}, err
	}

	params = params.normalized()
	units, err := params.volumeFor(method)
	if err != nil {
		return Quote{}, err
	}

	volume := units
	if method == UsageBased {
		volume = params.UsageVolume
	}

	revenue := unitPrice * float64(volume)
	cost := costPerUnit * float64(volume)
	margin := revenue - cost

	return Quote{
		Method:     method,
		UnitCost:   costPerUnit,
		UnitPrice:  unitPrice,
		Price:      unitPrice * float64(units),
		Volume:     volume,
		Revenue:    revenue,
		Cost:       cost,
		Margin:     margin,
		MarginRate: MarginRate(margin, revenue),
	}, nil
}

// QuoteAll quotes every billing method.
func QuoteAll(costPerUnit float64, m Margin, params VolumeParams) ([]Quote, error) {
	quotes := make([]Quote, 0, len(BillingMethods()))
	for _, method := range BillingMethods() {
		q, err := QuoteForMethod(costPerUnit, m, method, params)
		if err != nil {
			return nil, err
		}
		quotes = append(quotes, q)
	}
	return quotes, nil
}

// Converted returns the quote with every money field converted by rate.
func (q Quote) Converted(rate ExchangeRate) Quote {
	q.UnitCost = rate.Convert(q.UnitCost)
	q.UnitPrice = rate.Convert(q.UnitPrice)
	q.Price = rate.Convert(q.Price)
	q.Revenue = rate.Convert(q.Revenue)
	q.Cost = rate.Convert(q.Cost)
	q.Margin = rate.Convert(q.Margin)
	return q
}

// MarginRate is margin over revenue, or 0 when revenue is 0.
func MarginRate(margin, revenue float64) float64 {
	if revenue == 0 {
		return 0
	}
	return margin / revenue
}

// MarginPrice is the per-request price at one margin preset.
type MarginPrice struct {
	Margin Margin  `json:"margin"`
	Price  float64 `json:"price"`
}

// MarginLadder prices a cost at each margin preset.
func MarginLadder(cost float64, margins []Margin) ([]MarginPrice, error) {
	out := make([]MarginPrice, 0, len(margins))
	for _, m := range margins {
		price, err := PriceFromCost(cost, m)
		if err != nil {
			return nil, err
		}
		out = append(out, MarginPrice{Margin: m, Price: price})
	}
	return out, nil
}

// VolumeTotal is a unit amount multiplied out to a request volume.
type VolumeTotal struct {
	Requests int     `json:"requests"`
	Total    float64 `json:"total"`
}

// VolumeProjection multiplies unit by each volume.
func VolumeProjection(unit float64, volumes []int) []VolumeTotal {
	out := make([]VolumeTotal, 0, len(volumes))
	for _, n := range volumes {
		out = append(out, VolumeTotal{Requests: n, Total: unit * float64(n)})
	}
	return out
}
