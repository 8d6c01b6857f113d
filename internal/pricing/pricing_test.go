package pricing

import (
	"testing"

	"github.com/shopspring/decimal"
)

func dec(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

func TestNextDisabledLeavesPriceUntouched(t *testing.T) {
	got := Next(dec("4.50"), false, dec("0.50"), ptr(dec("10")))
	if !got.Equal(dec("4.50")) {
		t.Fatalf("expected 4.50, got %s", got)
	}
}

func TestNextAddsStep(t *testing.T) {
	got := Next(dec("4.50"), true, dec("0.50"), ptr(dec("10")))
	if !got.Equal(dec("5.00")) {
		t.Fatalf("expected 5.00, got %s", got)
	}
}

func TestNextClampsToMaxPrice(t *testing.T) {
	got := Next(dec("9.80"), true, dec("0.50"), ptr(dec("10")))
	if !got.Equal(dec("10")) {
		t.Fatalf("expected 10, got %s", got)
	}
}

func TestNextAtMaxPriceStaysThere(t *testing.T) {
	got := Next(dec("10"), true, dec("0.50"), ptr(dec("10")))
	if !got.Equal(dec("10")) {
		t.Fatalf("expected 10, got %s", got)
	}
}

func TestNextWithoutCeilingKeepsRising(t *testing.T) {
	got := Next(dec("99.50"), true, dec("0.25"), nil)
	if !got.Equal(dec("99.75")) {
		t.Fatalf("expected 99.75, got %s", got)
	}
}

func ptr(d decimal.Decimal) *decimal.Decimal {
	return &d
}
