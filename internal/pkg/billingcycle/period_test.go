package billingcycle

import (
	"errors"
	"testing"
)

func TestParsePeriod(t *testing.T) {
	tests := []struct {
		in      string
		want    Period
		wantErr bool
	}{
		{in: "daily", want: PeriodDaily},
		{in: "weekly", want: PeriodWeekly},
		{in: "monthly", want: PeriodMonthly},
		{in: "yearly", want: PeriodYearly},
		{in: " Monthly ", want: PeriodMonthly},
		{in: "quarterly", wantErr: true},
		{in: "", wantErr: true},
		{in: "month", wantErr: true},
	}

	for _, tt := range tests {
		got, err := ParsePeriod(tt.in)
		if tt.wantErr {
			if !errors.Is(err, ErrUnsupportedPeriod) {
				t.Fatalf("ParsePeriod(%q) err = %v, want ErrUnsupportedPeriod", tt.in, err)
			}
			continue
		}
		if err != nil {
			t.Fatalf("ParsePeriod(%q) unexpected error: %v", tt.in, err)
		}
		if got != tt.want {
			t.Fatalf("ParsePeriod(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestPeriodDays(t *testing.T) {
	tests := []struct {
		p    Period
		want int
	}{
		{p: PeriodDaily, want: 1},
		{p: PeriodWeekly, want: 7},
		{p: PeriodMonthly, want: 28},
		{p: PeriodYearly, want: 365},
	}

	for _, tt := range tests {
		got, err := tt.p.Days()
		if err != nil {
			t.Fatalf("Days(%q) unexpected error: %v", tt.p, err)
		}
		if got != tt.want {
			t.Fatalf("Days(%q) = %d, want %d", tt.p, got, tt.want)
		}
	}

	if _, err := Period("biweekly").Days(); !errors.Is(err, ErrUnsupportedPeriod) {
		t.Fatalf("expected ErrUnsupportedPeriod for biweekly, got %v", err)
	}
}

func TestPeriodFromDays(t *testing.T) {
	for _, days := range []int{1, 7, 28, 365} {
		p, err := PeriodFromDays(days)
		if err != nil {
			t.Fatalf("PeriodFromDays(%d) unexpected error: %v", days, err)
		}
		back, _ := p.Days()
		if back != days {
			t.Fatalf("PeriodFromDays(%d).Days() = %d", days, back)
		}
	}

	// 13 is not a canonical period and must not round to anything.
	if _, err := PeriodFromDays(13); !errors.Is(err, ErrUnsupportedPeriod) {
		t.Fatalf("expected ErrUnsupportedPeriod for 13 days, got %v", err)
	}
}
