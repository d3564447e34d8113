package policy

import "github.com/avax-reflights/refundservice/internal/domain"

// staticPolicies is the built-in fallback table used when the remote policy
// service is unreachable or does not know the airline. Rule order is part of
// the contract: the calculator scans top to bottom and the first match wins.
var staticPolicies = map[string]domain.RefundPolicy{
	"SkyLink Airways": {
		Airline: "SkyLink Airways",
		Rules: []domain.RefundRule{
			{Timeframe: "24+ hours", Percentage: 100, Description: "Full refund available"},
			{Timeframe: "2-24 hours", Percentage: 75, Description: "Partial refund available"},
			{Timeframe: "0-2 hours", Percentage: 25, Description: "Minimal refund available"},
		},
	},
	"ChainFly": {
		Airline: "ChainFly",
		Rules: []domain.RefundRule{
			{Timeframe: "48+ hours", Percentage: 90, Description: "Near-full refund available"},
			{Timeframe: "6-48 hours", Percentage: 60, Description: "Partial refund available"},
			{Timeframe: "0-6 hours", Percentage: 20, Description: "Minimal refund available"},
		},
	},
	"AeroChain": {
		Airline: "AeroChain",
		Rules: []domain.RefundRule{
			{Timeframe: "24+ hours", Percentage: 85, Description: "Standard refund available"},
			{Timeframe: "4-24 hours", Percentage: 50, Description: "Half refund available"},
			{Timeframe: "0-4 hours", Percentage: 10, Description: "Token refund available"},
		},
	},
}

// StaticPolicy returns the built-in fallback policy for an airline, if any.
// The returned policy is a copy so callers cannot mutate the table.
func StaticPolicy(airline string) (*domain.RefundPolicy, bool) {
	p, ok := staticPolicies[airline]
	if !ok {
		return nil, false
	}

	rules := make([]domain.RefundRule, len(p.Rules))
	copy(rules, p.Rules)

	return &domain.RefundPolicy{Airline: p.Airline, Rules: rules}, true
}

// StaticAirlines lists the airlines covered by the fallback table
func StaticAirlines() []string {
	airlines := make([]string, 0, len(staticPolicies))
	for name := range staticPolicies {
		airlines = append(airlines, name)
	}
	return airlines
}
