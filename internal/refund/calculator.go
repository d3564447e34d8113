package refund

import (
	"math"
	"time"

	"github.com/avax-reflights/refundservice/internal/domain"
)

// Default calculation parameters. These mirror the platform-wide refund
// terms and can be overridden through configuration.
const (
	DefaultFeeRate            = 0.05
	DefaultFeeFloor           = 0.01
	DefaultProcessingEstimate = "2-4 hours"
)

// Calculator computes refund eligibility from a ticket and an airline policy.
type Calculator struct {
	feeRate            float64
	feeFloor           float64
	processingEstimate string
}

// Option configures a Calculator.
type Option func(*Calculator)

// WithFeeRate overrides the processing fee rate applied to the gross refund.
func WithFeeRate(rate float64) Option {
	return func(c *Calculator) {
		if rate >= 0 {
			c.feeRate = rate
		}
	}
}

// WithFeeFloor overrides the minimum processing fee.
func WithFeeFloor(floor float64) Option {
	return func(c *Calculator) {
		if floor >= 0 {
			c.feeFloor = floor
		}
	}
}

// WithProcessingEstimate overrides the estimated processing time copy.
func WithProcessingEstimate(estimate string) Option {
	return func(c *Calculator) {
		if estimate != "" {
			c.processingEstimate = estimate
		}
	}
}

// NewCalculator creates a calculator with the default refund terms.
func NewCalculator(opts ...Option) *Calculator {
	c := &Calculator{
		feeRate:            DefaultFeeRate,
		feeFloor:           DefaultFeeFloor,
		processingEstimate: DefaultProcessingEstimate,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// HoursUntilDeparture returns the fractional hours between now and the
// ticket's departure, clamped at zero once the flight has departed.
func HoursUntilDeparture(departure, now time.Time) float64 {
	hours := departure.Sub(now).Hours()
	if hours < 0 {
		return 0
	}
	return hours
}

// Calculate computes refund eligibility for a ticket under the given policy
// at the given instant. It is a pure function of its inputs.
//
// Rules are scanned in listed order and the first rule whose window contains
// the fractional hours-until-departure wins. If no rule matches, the last
// rule applies as the default. A nil or empty policy yields an ineligible
// result with a policy-not-found reason.
func (c *Calculator) Calculate(ticket domain.Ticket, policy *domain.RefundPolicy, now time.Time) domain.RefundEligibility {
	hours := HoursUntilDeparture(ticket.DepartureTime, now)

	if policy == nil || len(policy.Rules) == 0 {
		return domain.RefundEligibility{
			Eligible:         false,
			Reason:           domain.ReasonPolicyNotFound,
			HoursUntilFlight: int(math.Floor(hours)),
		}
	}

	rule := matchRule(policy.Rules, hours)

	gross := ticket.Price * float64(rule.Percentage) / 100
	fee := gross * c.feeRate
	if fee < c.feeFloor {
		fee = c.feeFloor
	}
	final := gross - fee
	if final < 0 {
		final = 0
	}

	return domain.RefundEligibility{
		Eligible:                rule.Percentage > 0,
		Percentage:              rule.Percentage,
		RefundAmount:            final,
		ProcessingFee:           fee,
		Rule:                    &rule,
		HoursUntilFlight:        int(math.Floor(hours)),
		EstimatedProcessingTime: c.processingEstimate,
	}
}

// matchRule performs the first-match scan over the rule list. Matching uses
// the unfloored hour value. Rules whose timeframe fails to parse are skipped;
// validated policies never hit that path. When nothing matches, the last rule
// is the deliberate fallback, not an error.
func matchRule(rules []domain.RefundRule, hours float64) domain.RefundRule {
	for _, rule := range rules {
		window, err := rule.Window()
		if err != nil {
			continue
		}
		if window.Contains(hours) {
			return rule
		}
	}
	return rules[len(rules)-1]
}
