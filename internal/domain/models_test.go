package domain

import (
	"math"
	"testing"
)

func TestParseTimeframe_OpenEnded(t *testing.T) {
	w, err := ParseTimeframe("24+ hours")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if w.Min != 24 || !math.IsInf(w.Max, 1) {
		t.Fatalf("expected [24, +Inf), got [%v, %v)", w.Min, w.Max)
	}
	if !w.Contains(24) {
		t.Error("lower bound should be inclusive")
	}
	if !w.Contains(10000) {
		t.Error("open-ended window should contain large values")
	}
	if w.Contains(23.999) {
		t.Error("window should not contain values below the lower bound")
	}
}

func TestParseTimeframe_Range(t *testing.T) {
	w, err := ParseTimeframe("2-24 hours")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if w.Min != 2 || w.Max != 24 {
		t.Fatalf("expected [2, 24), got [%v, %v)", w.Min, w.Max)
	}
	if !w.Contains(2) {
		t.Error("lower bound should be inclusive")
	}
	if w.Contains(24) {
		t.Error("upper bound should be exclusive")
	}
	if !w.Contains(23.5) {
		t.Error("fractional values inside the window should match")
	}
}

func TestParseTimeframe_SuffixOptional(t *testing.T) {
	for _, s := range []string{"0-2", "0-2 hours", "0-2 Hours", " 0-2 hour "} {
		if _, err := ParseTimeframe(s); err != nil {
			t.Errorf("ParseTimeframe(%q): unexpected error: %v", s, err)
		}
	}
}

func TestParseTimeframe_Malformed(t *testing.T) {
	for _, s := range []string{"", "hours", "abc", "2-", "-24", "24-2", "5-5", "x+ hours", "1-2-3"} {
		if _, err := ParseTimeframe(s); err == nil {
			t.Errorf("ParseTimeframe(%q): expected error", s)
		}
	}
}

func TestRefundPolicy_Validate(t *testing.T) {
	valid := RefundPolicy{
		Airline: "ChainFly",
		Rules: []RefundRule{
			{Timeframe: "24+ hours", Percentage: 100, Description: "Full refund"},
			{Timeframe: "0-24 hours", Percentage: 50, Description: "Half refund"},
		},
	}
	if err := valid.Validate(); err != nil {
		t.Fatalf("valid policy rejected: %v", err)
	}

	noAirline := RefundPolicy{Rules: valid.Rules}
	if err := noAirline.Validate(); err == nil {
		t.Error("expected error for missing airline")
	}

	noRules := RefundPolicy{Airline: "ChainFly"}
	if err := noRules.Validate(); err == nil {
		t.Error("expected error for empty rule list")
	}

	badPct := RefundPolicy{
		Airline: "ChainFly",
		Rules:   []RefundRule{{Timeframe: "0+ hours", Percentage: 150}},
	}
	if err := badPct.Validate(); err == nil {
		t.Error("expected error for percentage out of range")
	}

	badTimeframe := RefundPolicy{
		Airline: "ChainFly",
		Rules:   []RefundRule{{Timeframe: "whenever", Percentage: 50}},
	}
	if err := badTimeframe.Validate(); err == nil {
		t.Error("expected error for malformed timeframe")
	}
}

func TestCabinClass_IsValid(t *testing.T) {
	for _, c := range []CabinClass{CabinClassEconomy, CabinClassBusiness, CabinClassFirst} {
		if !c.IsValid() {
			t.Errorf("expected %q to be valid", c)
		}
	}
	if CabinClass("premium").IsValid() {
		t.Error("unknown cabin class should be invalid")
	}
}
