package domain

import (
	"fmt"
	"math"
	"strconv"
	"strings"
	"time"
)

// CabinClass represents the booked cabin class of a ticket
type CabinClass string

const (
	CabinClassEconomy  CabinClass = "economy"
	CabinClassBusiness CabinClass = "business"
	CabinClassFirst    CabinClass = "first"
)

// IsValid checks if the cabin class is one of the known values
func (c CabinClass) IsValid() bool {
	switch c {
	case CabinClassEconomy, CabinClassBusiness, CabinClassFirst:
		return true
	default:
		return false
	}
}

// Ticket represents a booked flight ticket as supplied by the caller.
// It is immutable for the duration of a calculation.
type Ticket struct {
	ID            string     `json:"id"`
	FlightNumber  string     `json:"flight_number"`
	Airline       string     `json:"airline"`
	DepartureTime time.Time  `json:"departure_time"`
	Price         float64    `json:"price"` // Native currency units (AVAX)
	BookingTime   time.Time  `json:"booking_time"`
	Class         CabinClass `json:"class"`
}

// RefundRule is one row of an airline refund policy: an hour window before
// departure, the refund percentage inside that window, and display copy.
type RefundRule struct {
	Timeframe   string `json:"timeframe"`
	Percentage  int    `json:"percentage"`
	Description string `json:"description"`
}

// Window parses the rule's timeframe into an hour interval.
func (r RefundRule) Window() (HourWindow, error) {
	return ParseTimeframe(r.Timeframe)
}

// RefundPolicy represents an airline's ordered refund rule table.
// Rules are evaluated in listed order and the first matching rule wins.
type RefundPolicy struct {
	Airline string       `json:"airline"`
	Rules   []RefundRule `json:"rules"`
}

// Validate checks the policy shape and rejects malformed rule timeframes.
// Remote payloads must pass validation before they are used for matching,
// so an unparseable timeframe can never silently fail to match.
func (p *RefundPolicy) Validate() error {
	if p.Airline == "" {
		return NewInvalidInputError("policy airline is required", "")
	}
	if len(p.Rules) == 0 {
		return NewInvalidInputError("policy has no rules", fmt.Sprintf("airline: %s", p.Airline))
	}
	for i, rule := range p.Rules {
		if rule.Percentage < 0 || rule.Percentage > 100 {
			return NewInvalidInputError("rule percentage out of range",
				fmt.Sprintf("airline: %s, rule %d, percentage %d", p.Airline, i, rule.Percentage))
		}
		if _, err := rule.Window(); err != nil {
			return NewInvalidInputError("rule timeframe is malformed",
				fmt.Sprintf("airline: %s, rule %d: %v", p.Airline, i, err))
		}
	}
	return nil
}

// HourWindow is a half-open interval [Min, Max) of hours before departure.
// Open-ended windows ("24+ hours") have Max set to +Inf.
type HourWindow struct {
	Min float64
	Max float64
}

// Contains reports whether the given hour value falls inside the window.
func (w HourWindow) Contains(hours float64) bool {
	return hours >= w.Min && hours < w.Max
}

// ParseTimeframe parses a rule timeframe string into an HourWindow.
// Supported forms: "24+ hours" meaning [24, +Inf) and "2-24 hours"
// meaning [2, 24). The "hours"/"hour" suffix is optional.
func ParseTimeframe(s string) (HourWindow, error) {
	trimmed := strings.TrimSpace(s)
	lower := strings.ToLower(trimmed)
	lower = strings.TrimSuffix(lower, "hours")
	lower = strings.TrimSuffix(lower, "hour")
	lower = strings.TrimSpace(lower)

	if lower == "" {
		return HourWindow{}, fmt.Errorf("empty timeframe %q", s)
	}

	if strings.HasSuffix(lower, "+") {
		min, err := strconv.Atoi(strings.TrimSpace(strings.TrimSuffix(lower, "+")))
		if err != nil {
			return HourWindow{}, fmt.Errorf("invalid open-ended timeframe %q: %w", s, err)
		}
		if min < 0 {
			return HourWindow{}, fmt.Errorf("negative bound in timeframe %q", s)
		}
		return HourWindow{Min: float64(min), Max: math.Inf(1)}, nil
	}

	parts := strings.SplitN(lower, "-", 2)
	if len(parts) != 2 {
		return HourWindow{}, fmt.Errorf("invalid timeframe %q: expected \"N+\" or \"A-B\"", s)
	}
	min, err := strconv.Atoi(strings.TrimSpace(parts[0]))
	if err != nil {
		return HourWindow{}, fmt.Errorf("invalid lower bound in timeframe %q: %w", s, err)
	}
	max, err := strconv.Atoi(strings.TrimSpace(parts[1]))
	if err != nil {
		return HourWindow{}, fmt.Errorf("invalid upper bound in timeframe %q: %w", s, err)
	}
	if min < 0 {
		return HourWindow{}, fmt.Errorf("negative bound in timeframe %q", s)
	}
	if min >= max {
		return HourWindow{}, fmt.Errorf("empty interval in timeframe %q", s)
	}
	return HourWindow{Min: float64(min), Max: float64(max)}, nil
}

// RefundEligibility is the result of one eligibility calculation.
// It is ephemeral and recomputed on every request or countdown tick.
type RefundEligibility struct {
	Eligible                bool        `json:"eligible"`
	Reason                  string      `json:"reason,omitempty"`
	Percentage              int         `json:"percentage"`
	RefundAmount            float64     `json:"refund_amount"`
	ProcessingFee           float64     `json:"processing_fee"`
	Rule                    *RefundRule `json:"rule,omitempty"`
	HoursUntilFlight        int         `json:"hours_until_flight"`
	EstimatedProcessingTime string      `json:"estimated_processing_time,omitempty"`
}

// RefundRequest is the payload handed to the submission collaborator once
// the user accepts an eligible result.
type RefundRequest struct {
	TicketID     string     `json:"ticket_id"`
	RefundAmount float64    `json:"refund_amount"`
	Reason       string     `json:"reason"`
	Policy       RefundRule `json:"policy"`
}
