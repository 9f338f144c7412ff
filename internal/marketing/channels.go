package marketing

// Channel is a marketing channel suited to a CAC range.
type Channel struct {
	Name        string `json:"name"        yaml:"name"`
	Description string `json:"description" yaml:"description"`
	Efficiency  string `json:"efficiency"  yaml:"efficiency"`
}

// ChannelTier applies to CAC values up to MaxCAC. A nil MaxCAC matches
// everything. Inclusive makes the bound "<=" instead of "<".
type ChannelTier struct {
	MaxCAC    *float64  `json:"max_cac,omitempty" yaml:"max_cac"`
	Inclusive bool      `json:"inclusive"         yaml:"inclusive"`
	Channels  []Channel `json:"channels"          yaml:"channels"`
}

func (t ChannelTier) matches(cac float64) bool {
	switch {
	case t.MaxCAC == nil:
		return true
	case t.Inclusive:
		return cac <= *t.MaxCAC
	default:
		return cac < *t.MaxCAC
	}
}

// ChannelTable is an ordered list of tiers; the first match wins.
type ChannelTable []ChannelTier

// Lookup returns the channels of the first tier matching cac.
func (t ChannelTable) Lookup(cac float64) []Channel {
	for _, tier := range t {
		if tier.matches(cac) {
			return tier.Channels
		}
	}
	return nil
}

func bound(v float64) *float64 {
	return &v
}

// DefaultChannelTable returns the stock CAC thresholds.
func DefaultChannelTable() ChannelTable {
	return ChannelTable{
		{
			MaxCAC:    bound(0),
			Inclusive: true,
			Channels: []Channel{
				{
					Name:        "N/A",
					Description: "Margin is below the net profit target; no budget for paid acquisition.",
					Efficiency:  "None",
				},
			},
		},
		{
			MaxCAC: bound(5),
			Channels: []Channel{
				{Name: "SEO & Content", Description: "Optimize organic acquisition.", Efficiency: "High"},
				{Name: "Viral Loops", Description: "In-product referral and invite system.", Efficiency: "High"},
			},
		},
		{
			MaxCAC: bound(30),
			Channels: []Channel{
				{Name: "X / Threads", Description: "Influencer marketing aimed at AI audiences.", Efficiency: "High"},
				{Name: "Meta Ads", Description: "Interest-based targeting.", Efficiency: "Mid"},
			},
		},
		{
			Channels: []Channel{
				{Name: "Google Search", Description: "High-intent keyword ads.", Efficiency: "High"},
				{Name: "LinkedIn", Description: "Targeting B2B decision makers.", Efficiency: "High"},
			},
		},
	}
}
