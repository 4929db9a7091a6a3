package leave

import (
	"testing"
	"time"
)

func TestCalculateDays(t *testing.T) {
	start := time.Date(2025, 1, 10, 9, 0, 0, 0, time.UTC)
	end := time.Date(2025, 1, 10, 18, 0, 0, 0, time.UTC)

	days, err := CalculateDays(start, end)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if days != 1 {
		t.Fatalf("expected 1 day, got %v", days)
	}

	end = time.Date(2025, 1, 12, 0, 0, 0, 0, time.UTC)
	days, err = CalculateDays(start, end)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if days != 3 {
		t.Fatalf("expected 3 days, got %v", days)
	}
}

func TestCalculateDaysInvalid(t *testing.T) {
	start := time.Date(2025, 2, 10, 0, 0, 0, 0, time.UTC)
	end := time.Date(2025, 2, 9, 0, 0, 0, 0, time.UTC)

	if _, err := CalculateDays(start, end); err == nil {
		t.Fatal("expected error for invalid range")
	}
}

func TestMonthRange(t *testing.T) {
	tests := []struct {
		name      string
		in        time.Time
		wantFirst string
		wantLast  string
	}{
		{name: "february", in: time.Date(2024, 2, 15, 10, 0, 0, 0, time.UTC), wantFirst: "2024-02-01", wantLast: "2024-02-29"},
		{name: "december", in: time.Date(2025, 12, 31, 23, 0, 0, 0, time.UTC), wantFirst: "2025-12-01", wantLast: "2025-12-31"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			first, last := MonthRange(tt.in)
			if got := first.Format(wireDateLayout); got != tt.wantFirst {
				t.Fatalf("first = %s, want %s", got, tt.wantFirst)
			}
			if got := last.Format(wireDateLayout); got != tt.wantLast {
				t.Fatalf("last = %s, want %s", got, tt.wantLast)
			}
		})
	}
}
