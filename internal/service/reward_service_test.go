package service

import (
	"errors"
	"testing"
	"time"
)

func TestPickSpinValue_Empty(t *testing.T) {
	if _, err := PickSpinValue(nil); !errors.Is(err, ErrNoSpinValues) {
		t.Fatalf("expected ErrNoSpinValues, got %v", err)
	}
}

func TestPickSpinValue_AlwaysFromList(t *testing.T) {
	values := []int64{50, 100, 150, 200, 250, 300, 500, 1000}
	allowed := make(map[int64]bool, len(values))
	for _, v := range values {
		allowed[v] = true
	}

	seen := make(map[int64]bool)
	for i := 0; i < 1000; i++ {
		got, err := PickSpinValue(values)
		if err != nil {
			t.Fatalf("pick: %v", err)
		}
		if !allowed[got] {
			t.Fatalf("picked %d which is not in the value list", got)
		}
		seen[got] = true
	}

	// 1000 draws over 8 values; hitting only one would mean the picker is
	// not actually random.
	if len(seen) < 2 {
		t.Fatalf("expected multiple distinct values over 1000 draws, got %d", len(seen))
	}
}

func TestPickSpinValue_SingleValue(t *testing.T) {
	got, err := PickSpinValue([]int64{500})
	if err != nil {
		t.Fatalf("pick: %v", err)
	}
	if got != 500 {
		t.Fatalf("expected 500, got %d", got)
	}
}

func TestStartOfDay(t *testing.T) {
	loc := time.FixedZone("PKT", 5*3600)
	at := time.Date(2026, 3, 15, 23, 59, 59, 0, loc)

	got := startOfDay(at)
	want := time.Date(2026, 3, 15, 0, 0, 0, 0, loc)
	if !got.Equal(want) {
		t.Fatalf("expected %v, got %v", want, got)
	}

	justAfterMidnight := time.Date(2026, 3, 16, 0, 0, 1, 0, loc)
	if startOfDay(justAfterMidnight).Equal(got) {
		t.Fatalf("midnight crossing should start a new day")
	}
}
