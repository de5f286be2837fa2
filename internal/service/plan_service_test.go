package service

import (
	"testing"
	"time"
)

func TestExpectedProfit_LinearAccrual(t *testing.T) {
	purchase := time.Date(2026, 1, 1, 12, 0, 0, 0, time.UTC)

	cases := []struct {
		name        string
		totalProfit float64
		duration    int
		elapsed     time.Duration
		want        float64
	}{
		{"before first day", 100, 10, 12 * time.Hour, 0},
		{"exactly one day", 100, 10, 24 * time.Hour, 10},
		{"three days", 100, 10, 3 * 24 * time.Hour, 30},
		{"partial fourth day floors to three", 100, 10, 3*24*time.Hour + 23*time.Hour, 30},
		{"full duration", 100, 10, 10 * 24 * time.Hour, 100},
		{"past expiry caps at total", 100, 10, 25 * 24 * time.Hour, 100},
		{"fractional daily profit", 500, 3, 2 * 24 * time.Hour, 1000.0 / 3},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got := ExpectedProfit(tc.totalProfit, tc.duration, purchase, purchase.Add(tc.elapsed))
			if diff := got - tc.want; diff > 1e-9 || diff < -1e-9 {
				t.Fatalf("expected %v, got %v", tc.want, got)
			}
		})
	}
}

func TestExpectedProfit_DegenerateInputs(t *testing.T) {
	purchase := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)

	if got := ExpectedProfit(100, 0, purchase, purchase.AddDate(0, 0, 5)); got != 0 {
		t.Fatalf("zero duration should accrue nothing, got %v", got)
	}
	if got := ExpectedProfit(100, 10, purchase, purchase.Add(-time.Hour)); got != 0 {
		t.Fatalf("clock before purchase should accrue nothing, got %v", got)
	}
}
