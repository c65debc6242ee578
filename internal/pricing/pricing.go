// Package pricing resolves the effective price for a facility/category pair
// and computes booking costs. Everything here is deterministic and side-effect
// free; bad input falls back to safe defaults instead of failing, because a
// pricing lookup must never block a booking.
package pricing

// GlobalDefaultPrice is the last-resort price per kg per day when neither the
// facility nor the category defines one.
const GlobalDefaultPrice = 1.0

type categoryConfig struct {
	Min     float64
	Max     float64
	Default float64
}

var categories = map[string]categoryConfig{
	"Fruits & Vegetables":   {Min: 0.8, Max: 1.2, Default: 1.0},
	"Dairy Products":        {Min: 1.5, Max: 2.5, Default: 2.0},
	"Frozen Goods":          {Min: 3.0, Max: 5.0, Default: 4.0},
	"Grains":                {Min: 0.8, Max: 1.5, Default: 1.0},
	"Multi-purpose Storage": {Min: 0.8, Max: 1.5, Default: 1.0},
}

// Categories returns the known storage category names.
func Categories() []string {
	out := make([]string, 0, len(categories))
	for name := range categories {
		out = append(out, name)
	}
	return out
}

// DefaultPrice returns the default price per kg per day for a category, or
// GlobalDefaultPrice for an unrecognized one.
func DefaultPrice(category string) float64 {
	if cfg, ok := categories[category]; ok {
		return cfg.Default
	}
	return GlobalDefaultPrice
}

// ResolvePrice picks the effective price for a booking.
// Priority: facility override > category default > global fallback.
// A non-positive facility price counts as "not set".
func ResolvePrice(facilityPrice float64, category string) float64 {
	if facilityPrice > 0 {
		return facilityPrice
	}
	return DefaultPrice(category)
}

// TotalCost is the standard cost formula: quantity * price * days.
// No rounding happens here; presentation layers round for display.
func TotalCost(quantity int, pricePerKgPerDay float64, durationDays int) float64 {
	return float64(quantity) * pricePerKgPerDay * float64(durationDays)
}

// PriceBounds reports whether a provider-set price sits inside the advisory
// range for a category. Unknown categories get a deliberately wide range so
// the check rarely blocks anyone.
func PriceBounds(category string, price float64) (inBounds bool, min, max float64) {
	cfg, ok := categories[category]
	if !ok {
		cfg = categoryConfig{Min: 0.1, Max: 10}
	}
	return price >= cfg.Min && price <= cfg.Max, cfg.Min, cfg.Max
}
